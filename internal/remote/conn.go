package remote

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Prober is satisfied by backends that expose a liveness check.
type Prober interface {
	Health(ctx context.Context) error
}

// Conn is the readiness gate of a remote backend. It flips to ready once the
// backend answered a health probe and never flips back.
type Conn struct {
	ready atomic.Bool
	done  chan struct{}
}

var _ Gate = (*Conn)(nil)

// Dial starts probing p in the background until it answers or ctx ends.
func Dial(ctx context.Context, p Prober, maxInterval time.Duration, logger *slog.Logger) *Conn {
	c := &Conn{done: make(chan struct{})}
	go func() {
		defer close(c.done)
		b := backoff.NewExponentialBackOff()
		b.MaxInterval = maxInterval
		_, err := backoff.Retry(ctx, func() (struct{}, error) {
			return struct{}{}, p.Health(ctx)
		},
			backoff.WithBackOff(b),
			backoff.WithMaxElapsedTime(0),
			backoff.WithNotify(func(err error, next time.Duration) {
				logger.Warn("backend not reachable yet", "error", err, "retry_in", next)
			}),
		)
		if err != nil {
			logger.Error("backend dial aborted", "error", err)
			return
		}
		c.ready.Store(true)
		logger.Info("backend connection ready")
	}()
	return c
}

func (c *Conn) Ready() bool { return c.ready.Load() }

// Done is closed when probing stopped, successfully or not.
func (c *Conn) Done() <-chan struct{} { return c.done }
