package reconcile

import (
	"context"
	"time"

	"wallpaper-backend/internal/shared/telemetry"
)

// Sweeper runs Sweep on a fixed interval.
type Sweeper struct {
	Svc      *Service
	Interval time.Duration
}

// Run blocks until ctx is cancelled. A non-positive interval disables it.
func (w *Sweeper) Run(ctx context.Context) {
	if w == nil || w.Svc == nil || w.Interval <= 0 {
		return
	}
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	telemetry.Info("reconcile.sweeper.started", map[string]any{"interval": w.Interval.String()})
	for {
		select {
		case <-ctx.Done():
			telemetry.Info("reconcile.sweeper.stopped", nil)
			return
		case <-ticker.C:
			if _, err := w.Svc.Sweep(ctx); err != nil && ctx.Err() == nil {
				telemetry.Error("reconcile.sweep.failed", map[string]any{"err": err})
			}
		}
	}
}
