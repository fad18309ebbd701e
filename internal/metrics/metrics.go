package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"outreach/internal/models"
)

var (
	prospectingStatusDesc = prometheus.NewDesc(
		"outreach_prospecting_records",
		"Current prospecting record count by processing status",
		[]string{"status"},
		nil,
	)

	processingPausedDesc = prometheus.NewDesc(
		"outreach_processing_paused",
		"Whether enrichment processing is paused (1) or running (0)",
		nil,
		nil,
	)

	promotedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outreach_promoted_domains_total",
		Help: "Cart entries considered for promotion by outcome",
	}, []string{"outcome"})

	retiredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outreach_retired_records_total",
		Help: "Records affected by retirement by step",
	}, []string{"step"})
)

// StatsSource reads the values exported at scrape time.
type StatsSource interface {
	ProspectingStats(ctx context.Context) (models.ProspectingStats, error)
	ProcessingPaused(ctx context.Context) (bool, error)
}

// StatusCollector is a custom Prometheus collector that reads prospecting
// status counts from the database on each scrape.
type StatusCollector struct {
	src     StatsSource
	timeout time.Duration
}

// Describe sends the metric descriptors to the channel.
func (c *StatusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- prospectingStatusDesc
	ch <- processingPausedDesc
}

// Collect queries the database and emits one gauge per status.
func (c *StatusCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	stats, err := c.src.ProspectingStats(ctx)
	if err != nil {
		slog.Error("failed to collect prospecting metrics", "error", err)
	} else {
		for status, n := range map[string]int64{
			models.ProcessingPending:    stats.Pending,
			models.ProcessingProcessing: stats.Processing,
			models.ProcessingCompleted:  stats.Completed,
			models.ProcessingFailed:     stats.Failed,
		} {
			ch <- prometheus.MustNewConstMetric(prospectingStatusDesc, prometheus.GaugeValue, float64(n), status)
		}
	}

	paused, err := c.src.ProcessingPaused(ctx)
	if err != nil {
		slog.Error("failed to collect processing state", "error", err)
		return
	}
	v := 0.0
	if paused {
		v = 1
	}
	ch <- prometheus.MustNewConstMetric(processingPausedDesc, prometheus.GaugeValue, v)
}

var initOnce sync.Once

// Init registers the collectors with the default registry.
// Must be called once at startup.
func Init(src StatsSource) {
	initOnce.Do(func() {
		prometheus.MustRegister(
			&StatusCollector{src: src, timeout: 5 * time.Second},
			promotedTotal,
			retiredTotal,
		)
	})
}

// ObservePromotion records the outcome counts of a cart promotion.
func ObservePromotion(inserted, skipped int) {
	promotedTotal.WithLabelValues("inserted").Add(float64(inserted))
	promotedTotal.WithLabelValues("skipped").Add(float64(skipped))
}

// ObserveRetirement records the outcome counts of a retirement.
func ObserveRetirement(archived, blacklisted, removed int) {
	retiredTotal.WithLabelValues("archived").Add(float64(archived))
	retiredTotal.WithLabelValues("blacklisted").Add(float64(blacklisted))
	retiredTotal.WithLabelValues("removed").Add(float64(removed))
}
