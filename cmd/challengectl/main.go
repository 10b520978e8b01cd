// Command challengectl drives the challenge API from a terminal: check the
// gate, record today's tasks, look at the ranking.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdin).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
