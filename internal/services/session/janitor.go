package session

import (
	"context"
	"log/slog"
	"time"
)

// Janitor periodically expires idle rooms
type Janitor struct {
	coordinator *Coordinator
	interval    time.Duration
	maxIdle     time.Duration
	logger      *slog.Logger
}

// NewJanitor creates a Janitor sweeping every interval for rooms idle longer than maxIdle
func NewJanitor(coordinator *Coordinator, interval, maxIdle time.Duration, logger *slog.Logger) *Janitor {
	return &Janitor{
		coordinator: coordinator,
		interval:    interval,
		maxIdle:     maxIdle,
		logger:      logger.With(slog.String("component", "janitor")),
	}
}

// Run sweeps until ctx is cancelled
func (j *Janitor) Run(ctx context.Context) {
	if j.maxIdle <= 0 || j.interval <= 0 {
		j.logger.Info("idle room sweep disabled")
		return
	}

	j.logger.Info("idle room sweep started",
		slog.Duration("interval", j.interval),
		slog.Duration("max_idle", j.maxIdle))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("idle room sweep stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	removed, err := j.coordinator.SweepIdle(ctx, j.maxIdle)
	if err != nil {
		j.logger.Error("idle room sweep failed", slog.String("error", err.Error()))
	}
	if removed > 0 {
		j.logger.Info("idle rooms expired", slog.Int("removed", removed))
	}
}
