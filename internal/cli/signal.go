package cli

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ShutdownContext is cancelled on SIGINT/SIGTERM and remembers which signal arrived.
type ShutdownContext struct {
	context.Context
	cancel context.CancelFunc

	mu  sync.Mutex
	sig os.Signal
}

// NewShutdownContext starts watching for termination signals until ctx ends or Stop is called.
func NewShutdownContext(parent context.Context) *ShutdownContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &ShutdownContext{Context: ctx, cancel: cancel}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(ch)
		select {
		case sig := <-ch:
			sc.mu.Lock()
			sc.sig = sig
			sc.mu.Unlock()
			cancel()
		case <-ctx.Done():
		}
	}()
	return sc
}

// Stop releases the signal handler.
func (sc *ShutdownContext) Stop() {
	sc.cancel()
}

// Signal returns the signal that cancelled the context, or nil.
func (sc *ShutdownContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sig
}
