// Package telemetry provides Prometheus metrics, OpenTelemetry tracing setup,
// and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	CandidatesSeen    prometheus.Counter
	CandidatesSkipped prometheus.Counter
	CandidatesTrimmed prometheus.Counter
	CandidatesFailed  prometheus.Counter

	// Histograms (seconds)
	FFmpegDuration prometheus.Observer
	RunDuration    prometheus.Observer
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		CandidatesSeen = promauto.NewCounter(prometheus.CounterOpts{Name: "trim_candidates_total", Help: "Number of trim candidates considered"})
		CandidatesSkipped = promauto.NewCounter(prometheus.CounterOpts{Name: "trim_candidates_skipped_total", Help: "Number of candidates skipped (ambiguous marker or unparseable filename)"})
		CandidatesTrimmed = promauto.NewCounter(prometheus.CounterOpts{Name: "trim_candidates_trimmed_total", Help: "Number of candidates trimmed and reconciled"})
		CandidatesFailed = promauto.NewCounter(prometheus.CounterOpts{Name: "trim_candidates_failed_total", Help: "Number of candidates whose reconciliation failed"})
		FFmpegDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "trim_ffmpeg_duration_seconds", Help: "ffmpeg stream-copy trim duration seconds", Buckets: prometheus.DefBuckets})
		RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "trim_run_duration_seconds", Help: "Full reconciliation run duration seconds", Buckets: prometheus.DefBuckets})
	})
}

// Correlation ID helpers ----------------------------------------------------

type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns the correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	if s, ok := ctx.Value(corrKey).(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with a corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
