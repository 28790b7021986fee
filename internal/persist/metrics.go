package persist

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultOK    = "ok"
	resultError = "error"
)

// Metrics records committer activity.
type Metrics struct {
	commits   *prometheus.CounterVec
	duration  prometheus.Histogram
	coalesced prometheus.Counter
}

// NewMetrics creates the committer metrics and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		commits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "habitgrid_commits_total",
				Help: "Total number of document commits by result",
			},
			[]string{"result"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "habitgrid_commit_duration_seconds",
				Help:    "Duration of document commits",
				Buckets: prometheus.DefBuckets,
			},
		),
		coalesced: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "habitgrid_commits_coalesced_total",
				Help: "Snapshots replaced by a newer one before they were committed",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.commits, m.duration, m.coalesced)
	}
	return m
}

func (m *Metrics) observe(start time.Time, err error) {
	if m == nil {
		return
	}
	m.duration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.commits.WithLabelValues(resultError).Inc()
		return
	}
	m.commits.WithLabelValues(resultOK).Inc()
}

func (m *Metrics) coalesce() {
	if m == nil {
		return
	}
	m.coalesced.Inc()
}
