package measure

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMeasure is a DefaultMeasure also exporting every metric to prometheus.
type PrometheusMeasure struct {
	*DefaultMeasure
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewPrometheusMeasure registers the step collectors, prefixed by namespace, on reg.
func NewPrometheusMeasure(reg prometheus.Registerer, namespace string) (*PrometheusMeasure, error) {
	pm := &PrometheusMeasure{
		DefaultMeasure: NewDefaultMeasure(),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "step_duration_seconds",
				Help:      "Duration from step start to the step handing control back, in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"step"},
		),
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "steps_total",
				Help:      "Total number of completed step invocations.",
			},
			[]string{"step"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "step_failures_total",
				Help:      "Total number of step invocations that failed.",
			},
			[]string{"step"},
		),
	}

	for _, c := range []prometheus.Collector{pm.duration, pm.total, pm.failures} {
		err := reg.Register(c)
		if err != nil {
			return nil, errors.Wrap(err, "unable to register step collector")
		}
	}

	return pm, nil
}

func (pm *PrometheusMeasure) AddMetric(name string) Metric {
	return &prometheusMetric{
		Metric:   pm.DefaultMeasure.AddMetric(name),
		duration: pm.duration.WithLabelValues(name),
		total:    pm.total.WithLabelValues(name),
		failures: pm.failures.WithLabelValues(name),
	}
}

type prometheusMetric struct {
	Metric
	duration prometheus.Observer
	total    prometheus.Counter
	failures prometheus.Counter
}

func (mt *prometheusMetric) AddDuration(elapsed time.Duration) {
	mt.Metric.AddDuration(elapsed)
	mt.duration.Observe(elapsed.Seconds())
	mt.total.Inc()
}

func (mt *prometheusMetric) AddFailure() {
	mt.Metric.AddFailure()
	mt.failures.Inc()
}

var _ Measure = (*PrometheusMeasure)(nil)
