package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/comitanigiacomo/kanso-challenge/internal/client"
	"github.com/comitanigiacomo/kanso-challenge/internal/config"
)

type cli struct {
	in      io.Reader
	verbose bool
	timeout time.Duration
	logger  *zap.Logger
	api     *client.Client

	readOnce sync.Once
	input    chan string
}

func newRootCmd(in io.Reader) *cobra.Command {
	c := &cli{in: in, logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "challengectl",
		Short:         "Command line companion for the seven-day challenge API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := zap.NewProductionConfig()
			cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			if c.verbose {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.logger = logger

			if cmd.Annotations["offline"] == "true" {
				return nil
			}

			cliCfg, err := config.LoadCLI()
			if err != nil {
				return fmt.Errorf("set KANSO_API_URL to the API base url and KANSO_API_KEY to your access token: %w", err)
			}
			c.api = client.New(cliCfg.APIURL, cliCfg.APIKey)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
	}

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 15*time.Second, "request timeout")

	root.AddCommand(
		c.statusCmd(),
		c.progressCmd(),
		c.canCompleteCmd(),
		c.startCmd(),
		c.completeCmd(),
		c.recordCmd(),
		c.rankingCmd(),
		c.profileCmd(),
		dayCmd(),
	)

	return root
}
