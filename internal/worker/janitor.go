package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-arena/internal/pkg"
)

// Sweeper removes whatever expired before now and reports how many were dropped.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// Janitor periodically sweeps idle sessions and stale queue entries.
type Janitor struct {
	logger   *slog.Logger
	clock    pkg.Clock
	interval time.Duration
	sweepers map[string]Sweeper
}

func NewJanitor(logger *slog.Logger, clock pkg.Clock, interval time.Duration, sweepers map[string]Sweeper) *Janitor {
	return &Janitor{
		logger:   logger.With("component", "janitor"),
		clock:    clock,
		interval: interval,
		sweepers: sweepers,
	}
}

// Run sweeps once right away and then on every tick until ctx is done.
func (that *Janitor) Run(ctx context.Context) {
	that.logger.Info("janitor started", "interval", that.interval.String())

	ticker := time.NewTicker(that.interval)
	defer ticker.Stop()

	for {
		that.RunOnce(ctx)

		select {
		case <-ctx.Done():
			that.logger.Info("janitor stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce runs every sweeper. A failing sweeper does not stop the others.
func (that *Janitor) RunOnce(ctx context.Context) map[string]int {
	now := that.clock.Now()
	evicted := make(map[string]int, len(that.sweepers))

	for name, sweeper := range that.sweepers {
		count, err := sweeper.Sweep(ctx, now)
		if err != nil {
			that.logger.Error("sweep failed", "target", name, "error", err)
			continue
		}

		evicted[name] = count
		if count > 0 {
			that.logger.Info("expired entries removed", "target", name, "count", count)
		}
	}

	return evicted
}
