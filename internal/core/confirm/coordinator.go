// Package confirm turns "ask the user to confirm" into a call that waits for
// the answer. One dialog is open at a time; asking again replaces it.
package confirm

import (
	"context"
	"errors"
	"sync"
)

var ErrSuperseded = errors.New("confirmation superseded by a newer request")

type Prompt struct {
	Title        string
	Message      string
	ConfirmLabel string
	CancelLabel  string
}

type request struct {
	prompt Prompt
	result chan bool
}

type Coordinator struct {
	mu      sync.Mutex
	pending *request
}

func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// Ask opens the dialog and returns the deferred outcome. The channel yields
// exactly one value, or is closed without one if a newer Ask replaces it.
func (c *Coordinator) Ask(p Prompt) <-chan bool {
	if p.ConfirmLabel == "" {
		p.ConfirmLabel = "Confirmar"
	}
	if p.CancelLabel == "" {
		p.CancelLabel = "Cancelar"
	}

	req := &request{prompt: p, result: make(chan bool, 1)}

	c.mu.Lock()
	if c.pending != nil {
		close(c.pending.result)
	}
	c.pending = req
	c.mu.Unlock()

	return req.result
}

// Confirm blocks until the user answers, the request is superseded, or ctx ends.
func (c *Coordinator) Confirm(ctx context.Context, p Prompt) (bool, error) {
	return c.Wait(ctx, c.Ask(p))
}

// Wait blocks on a result returned by Ask. When ctx ends first the dialog is
// closed so a late Resolve finds nothing open.
func (c *Coordinator) Wait(ctx context.Context, result <-chan bool) (bool, error) {
	select {
	case ok, open := <-result:
		if !open {
			return false, ErrSuperseded
		}
		return ok, nil
	case <-ctx.Done():
		c.drop(result)
		return false, ctx.Err()
	}
}

// Resolve delivers the user's choice and closes the dialog. It reports false
// when no dialog is open.
func (c *Coordinator) Resolve(confirmed bool) bool {
	c.mu.Lock()
	req := c.pending
	c.pending = nil
	c.mu.Unlock()

	if req == nil {
		return false
	}
	req.result <- confirmed
	return true
}

func (c *Coordinator) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// Pending returns the prompt currently shown, if any.
func (c *Coordinator) Pending() (Prompt, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return Prompt{}, false
	}
	return c.pending.prompt, true
}

func (c *Coordinator) drop(result <-chan bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil && (<-chan bool)(c.pending.result) == result {
		close(c.pending.result)
		c.pending = nil
	}
}
