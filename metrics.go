package vss

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// MetricsNamespace is the Prometheus namespace for all VSS metrics
	MetricsNamespace = "vss"

	LabelOperation = "operation"
	LabelGroup     = "group"
	LabelStatus    = "status"

	StatusSuccess = "success"
	StatusError   = "error"
	StatusValid   = "valid"
	StatusInvalid = "invalid"

	OpSplit       = "split"
	OpVerify      = "verify"
	OpReconstruct = "reconstruct"
)

// Metrics holds the Prometheus collectors for dealer and party operations.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	shares     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. Pass
// prometheus.DefaultRegisterer to expose them on the default handler.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Name:      "operations_total",
				Help:      "Total number of VSS operations by type, group and status",
			},
			[]string{LabelOperation, LabelGroup, LabelStatus},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: MetricsNamespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of VSS operations in seconds",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{LabelOperation, LabelGroup},
		),
		shares: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Name:      "shares_dealt_total",
				Help:      "Total number of shares produced by split",
			},
			[]string{LabelGroup},
		),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.operations, m.duration, m.shares} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) observe(op, group, status string, started time.Time) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, group, status).Inc()
	m.duration.WithLabelValues(op, group).Observe(time.Since(started).Seconds())
}

func (m *Metrics) dealt(group string, n int) {
	if m == nil {
		return
	}
	m.shares.WithLabelValues(group).Add(float64(n))
}
