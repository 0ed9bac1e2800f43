package observability

import (
	"fmt"
	"time"

	"github.com/aretw0/mbtassist/pkg/generator"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values for mbt_generations_total.
const (
	OutcomeOK        = "ok"
	OutcomeNoStart   = "no_start"
	OutcomeTruncated = "truncated"
)

// Metrics records generator runs.
type Metrics struct {
	generations *prometheus.CounterVec
	paths       prometheus.Counter
	duration    prometheus.Histogram
	lastPaths   prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mbt_generations_total",
				Help: "Total number of test generation runs by outcome",
			},
			[]string{"outcome"},
		),
		paths: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mbt_paths_generated_total",
			Help: "Total number of paths enumerated",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mbt_generation_duration_seconds",
			Help:    "Duration of test generation runs",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		lastPaths: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mbt_last_path_count",
			Help: "Number of paths produced by the most recent run",
		}),
	}

	for _, c := range []prometheus.Collector{m.generations, m.paths, m.duration, m.lastPaths} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	return m, nil
}

var _ generator.Observer = (*Metrics)(nil)

// ObserveGeneration implements generator.Observer.
func (m *Metrics) ObserveGeneration(res generator.Result, elapsed time.Duration) {
	outcome := OutcomeOK
	switch {
	case res.NoStart:
		outcome = OutcomeNoStart
	case res.Truncated:
		outcome = OutcomeTruncated
	}
	m.generations.WithLabelValues(outcome).Inc()
	m.paths.Add(float64(len(res.Paths)))
	m.duration.Observe(elapsed.Seconds())
	m.lastPaths.Set(float64(len(res.Paths)))
}
