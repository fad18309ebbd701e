package jobs

import (
	"context"
	"log/slog"
	"time"
)

// Refresher reloads cached filter options.
type Refresher interface {
	RefreshFilterOptions(ctx context.Context) error
}

// OptionsWarmer keeps the filter-option cache populated so list screens never
// wait on the DISTINCT scans.
type OptionsWarmer struct {
	source   Refresher
	interval time.Duration
	timeout  time.Duration
}

// NewOptionsWarmer creates a new warmer. Each refresh is bounded by the
// interval.
func NewOptionsWarmer(source Refresher, interval time.Duration) *OptionsWarmer {
	return &OptionsWarmer{
		source:   source,
		interval: interval,
		timeout:  interval,
	}
}

// Start begins the background refresh loop and returns when ctx is done.
func (w *OptionsWarmer) Start(ctx context.Context) {
	if w.interval <= 0 {
		slog.Info("filter option warmer disabled")
		return
	}
	slog.Info("filter option warmer started", "interval", w.interval)

	// Run immediately on start
	w.refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("filter option warmer stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *OptionsWarmer) refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	if err := w.source.RefreshFilterOptions(ctx); err != nil {
		slog.Warn("refresh filter options", "error", err)
		return
	}
	slog.Debug("filter options refreshed", "took", time.Since(start))
}
