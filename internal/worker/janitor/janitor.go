// Package janitor evicts checkout sessions the customer walked away from and
// retries journaling orders that were sent but not recorded.
package janitor

import (
	"context"
	"log/slog"
	"time"
)

type evictor interface {
	RecordUnjournaled(ctx context.Context) int
	EvictIdle(ttl time.Duration) int
}

type Janitor struct {
	sessions evictor
	ttl      time.Duration
	interval time.Duration
}

func New(sessions evictor, ttl, interval time.Duration) *Janitor {
	return &Janitor{sessions: sessions, ttl: ttl, interval: interval}
}

// Run sweeps every interval until ctx is done.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := j.sessions.RecordUnjournaled(ctx); n > 0 {
				slog.InfoContext(ctx, "Recorded previously unjournaled orders", "count", n)
			}
			if n := j.sessions.EvictIdle(j.ttl); n > 0 {
				slog.InfoContext(ctx, "Evicted idle checkout sessions", "count", n)
			}
		}
	}
}
