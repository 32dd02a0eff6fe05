package sessions

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/JaimeStill/counsel/internal/analysis"
	"github.com/JaimeStill/counsel/internal/extract"
	"github.com/JaimeStill/counsel/pkg/metrics"
)

// Upload outcomes recorded by the uploads counter.
const (
	outcomeAnalyzed   = "analyzed"
	outcomeRejected   = "rejected"
	outcomeSuperseded = "superseded"
	outcomeFailed     = "failed"
)

// Metrics records session activity. A nil *Metrics records nothing.
type Metrics struct {
	uploads   *prometheus.CounterVec
	clauses   *prometheus.CounterVec
	duration  prometheus.Histogram
	questions *prometheus.CounterVec
}

// NewMetrics registers the session collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		uploads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "sessions",
			Name:      "uploads_total",
			Help:      "Document uploads by outcome.",
		}, []string{"outcome"}),
		clauses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "sessions",
			Name:      "clauses_total",
			Help:      "Clauses identified in committed reports by type and risk.",
		}, []string{"type", "risk"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metrics.Namespace,
			Subsystem: "sessions",
			Name:      "analysis_duration_seconds",
			Help:      "Time from upload acceptance to committed report.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		questions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "sessions",
			Name:      "questions_total",
			Help:      "Answered questions by whether a provision was matched.",
		}, []string{"matched"}),
	}
}

func (m *Metrics) observeUpload(report *analysis.Report, err error, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.uploads.WithLabelValues(uploadOutcome(err)).Inc()
	if err != nil {
		return
	}

	m.duration.Observe(elapsed.Seconds())
	for _, c := range report.Clauses {
		m.clauses.WithLabelValues(string(c.Type), c.Risk.String()).Inc()
	}
}

func (m *Metrics) observeQuestion(ex *Exchange) {
	if m == nil || ex == nil {
		return
	}
	m.questions.WithLabelValues(strconv.FormatBool(ex.Matched)).Inc()
}

func uploadOutcome(err error) string {
	switch {
	case err == nil:
		return outcomeAnalyzed
	case errors.Is(err, ErrSuperseded):
		return outcomeSuperseded
	case errors.Is(err, extract.ErrInvalidPayloadType),
		errors.Is(err, extract.ErrPayloadTooLarge),
		errors.Is(err, analysis.ErrEmptyDocument):
		return outcomeRejected
	}
	return outcomeFailed
}
