// Package janitor removes pipeline work directories left behind by crashed or interrupted runs.
package janitor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"mathgen-backend/internal/generation"
	"mathgen-backend/internal/shared/metrics"
	"mathgen-backend/internal/shared/telemetry"
)

// Janitor sweeps WorkRoot on a cron schedule.
type Janitor struct {
	WorkRoot string
	MaxAge   time.Duration
	Schedule string
	Now      func() time.Time

	cron *cron.Cron
}

// New constructs a Janitor.
func New(workRoot, schedule string, maxAge time.Duration) *Janitor {
	return &Janitor{
		WorkRoot: workRoot,
		MaxAge:   maxAge,
		Schedule: schedule,
		cron:     cron.New(),
	}
}

// Run sweeps once, then on every tick of the schedule until ctx is done.
func (j *Janitor) Run(ctx context.Context) error {
	if _, err := j.cron.AddFunc(j.Schedule, func() {
		if _, err := j.Sweep(ctx); err != nil {
			telemetry.Warn("janitor.sweep_failed", map[string]any{"error": err})
		}
	}); err != nil {
		return err
	}

	if _, err := j.Sweep(ctx); err != nil {
		telemetry.Warn("janitor.sweep_failed", map[string]any{"error": err})
	}
	telemetry.Info("janitor.started", map[string]any{"schedule": j.Schedule, "max_age": j.MaxAge.String()})
	j.cron.Start()

	<-ctx.Done()
	stopCtx := j.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
	}
	telemetry.Info("janitor.stopped", nil)
	return nil
}

// Sweep removes generated_* directories older than MaxAge and returns how many it removed.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(j.WorkRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	cutoff := j.now().Add(-j.MaxAge)
	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), generation.WorkDirPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(j.WorkRoot, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			telemetry.Warn("janitor.remove_failed", map[string]any{"path": path, "error": err})
			continue
		}
		removed++
		metrics.JanitorRemoved.Inc()
	}
	if removed > 0 {
		telemetry.Info("janitor.swept", map[string]any{"removed": removed, "work_root": j.WorkRoot})
	}
	return removed, nil
}

func (j *Janitor) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}
