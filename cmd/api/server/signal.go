package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// shutdownSignals are the signals that trigger a graceful shutdown.
var shutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// WithSignal returns a context that is canceled on SIGINT or SIGTERM.
// The returned stop func releases the signal handler; a second signal
// after stop falls through to the default behavior and kills the process.
func WithSignal(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, shutdownSignals...)
}
