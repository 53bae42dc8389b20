package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Audit outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeEmpty   = "empty"
)

// Recorder publishes audit metrics to a Prometheus registry
type Recorder struct {
	registry *prometheus.Registry
	audits   *prometheus.CounterVec
	duration prometheus.Histogram
	flagged  *prometheus.GaugeVec
	rows     prometheus.Gauge
}

// NewRecorder creates a recorder with its own registry, so several
// recorders (tests, servers) never collide on registration
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		audits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hfcheck_audits_total",
			Help: "Audit runs by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hfcheck_audit_duration_seconds",
			Help:    "Wall time of an audit run, fetch included.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		flagged: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hfcheck_flagged_records",
			Help: "Records flagged by the latest audit, per check.",
		}, []string{"check"}),
		rows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hfcheck_dataset_rows",
			Help: "Rows in the latest merged dataset.",
		}),
	}
	r.registry.MustRegister(r.audits, r.duration, r.flagged, r.rows)
	return r
}

// ObserveAudit counts a finished run and records its duration
func (r *Recorder) ObserveAudit(outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.audits.WithLabelValues(outcome).Inc()
	r.duration.Observe(elapsed.Seconds())
}

// SetFlagged records how many records a check flagged
func (r *Recorder) SetFlagged(check string, n int) {
	if r == nil {
		return
	}
	r.flagged.WithLabelValues(check).Set(float64(n))
}

// SetRows records the merged dataset size
func (r *Recorder) SetRows(n int) {
	if r == nil {
		return
	}
	r.rows.Set(float64(n))
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
