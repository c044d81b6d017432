// Package metrics exposes counters describing one analysis run in the
// Prometheus format. Batch runs export them through the node exporter
// textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iwvelando/roomrev/internal/normalize"
)

const namespace = "roomrev"

// Pipeline collects run metrics. A nil *Pipeline discards everything.
type Pipeline struct {
	registry *prometheus.Registry

	rowsAccepted prometheus.Counter
	rowsRejected *prometheus.CounterVec
	warnings     *prometheus.CounterVec
	buckets      prometheus.Gauge
	duration     prometheus.Gauge
	lastRun      prometheus.Gauge
}

// NewPipeline registers the run metrics with reg, or with a fresh registry
// when reg is nil.
func NewPipeline(reg *prometheus.Registry) *Pipeline {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	p := &Pipeline{
		registry: reg,
		rowsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_accepted_total",
			Help:      "Rows normalized into canonical records.",
		}),
		rowsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_rejected_total",
			Help:      "Rows rejected, by the field that failed.",
		}, []string{"field"}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warnings_total",
			Help:      "Soft warnings raised while normalizing and analyzing, by source.",
		}, []string{"source"}),
		buckets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "buckets",
			Help:      "Aggregate buckets produced by the last run.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
	reg.MustRegister(p.rowsAccepted, p.rowsRejected, p.warnings, p.buckets, p.duration, p.lastRun)
	return p
}

// Registry returns the registry holding the run metrics.
func (p *Pipeline) Registry() *prometheus.Registry {
	if p == nil {
		return nil
	}
	return p.registry
}

// ObserveNormalization counts accepted rows, rejected rows by field and
// normalization warnings.
func (p *Pipeline) ObserveNormalization(result normalize.Result) {
	if p == nil {
		return
	}
	p.rowsAccepted.Add(float64(len(result.Records)))
	for _, r := range result.Rejected {
		p.rowsRejected.WithLabelValues(r.Field).Inc()
	}
	p.warnings.WithLabelValues("normalize").Add(float64(len(result.Warnings)))
}

// AddWarnings counts warnings raised by another stage.
func (p *Pipeline) AddWarnings(source string, n int) {
	if p == nil {
		return
	}
	p.warnings.WithLabelValues(source).Add(float64(n))
}

// SetBuckets records the number of aggregate buckets.
func (p *Pipeline) SetBuckets(n int) {
	if p == nil {
		return
	}
	p.buckets.Set(float64(n))
}

// ObserveRun records the duration and completion time of a run.
func (p *Pipeline) ObserveRun(started, finished time.Time) {
	if p == nil {
		return
	}
	p.duration.Set(finished.Sub(started).Seconds())
	p.lastRun.Set(float64(finished.Unix()))
}

// WriteTextfile writes every metric of the registry to path in the text
// exposition format.
func (p *Pipeline) WriteTextfile(path string) error {
	if p == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
