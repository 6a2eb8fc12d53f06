package scoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes ledger and aggregation counters.  A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	submissions     *prometheus.CounterVec
	ledgerRecords   prometheus.Gauge
	unattributed    prometheus.Gauge
	aggregationTime *prometheus.HistogramVec
}

// NewMetrics registers the scoring metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		submissions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jury_score_submissions_total",
				Help: "Score batch submissions by outcome.",
			},
			[]string{"status"},
		),
		ledgerRecords: f.NewGauge(prometheus.GaugeOpts{
			Name: "jury_score_ledger_records",
			Help: "Score records in the local ledger snapshot.",
		}),
		unattributed: f.NewGauge(prometheus.GaugeOpts{
			Name: "jury_score_unattributed_records",
			Help: "Score records left out of aggregation because their jury member is unknown.",
		}),
		aggregationTime: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jury_score_aggregation_duration_seconds",
				Help:    "Time spent computing aggregate views.",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"operation"},
		),
	}
}

func (m *Metrics) submission(status string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(status).Inc()
}

func (m *Metrics) records(n int) {
	if m == nil {
		return
	}
	m.ledgerRecords.Set(float64(n))
}

func (m *Metrics) unattributedScores(n int) {
	if m == nil {
		return
	}
	m.unattributed.Set(float64(n))
}

func (m *Metrics) observe(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.aggregationTime.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
