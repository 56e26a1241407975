// Package metrics exports growth and trial statistics as Prometheus
// collectors. Collectors register on the Registerer passed to New, so tests
// and one-shot CLI runs can use a private registry.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"

	"ontogeny/internal/genome"
	"ontogeny/internal/graph"
	"ontogeny/internal/growth"
)

type Metrics struct {
	instructions *prometheus.CounterVec
	spawned      prometheus.Counter
	cycles       prometheus.Counter
	population   prometheus.Gauge
	trialError   prometheus.Histogram
}

// New builds the collector set on reg. A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		instructions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ontogeny_growth_instructions_total",
			Help: "Genome instructions executed by growing nodes, by opcode",
		}, []string{"opcode"}),
		spawned: factory.NewCounter(prometheus.CounterOpts{
			Name: "ontogeny_growth_spawned_total",
			Help: "Growing nodes created by Ser and Par",
		}),
		cycles: factory.NewCounter(prometheus.CounterOpts{
			Name: "ontogeny_growth_cycles_total",
			Help: "Completed growth cycles",
		}),
		population: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ontogeny_growth_population",
			Help: "Growing nodes alive at the end of the last cycle",
		}),
		trialError: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ontogeny_trial_squared_error",
			Help:    "Squared error of one evaluation trial against its target",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10), // 0.01 to ~2600
		}),
	}
}

var _ growth.Observer = (*Metrics)(nil)

func (m *Metrics) Executed(_ graph.Handle, kind genome.Kind) {
	m.instructions.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) Spawned(_, _ graph.Handle, _ genome.Kind) {
	m.spawned.Inc()
}

func (m *Metrics) CycleDone(_ *graph.Graph, stats growth.CycleStats) {
	m.cycles.Inc()
	m.population.Set(float64(stats.Population))
}

// ObserveTrial records one trial's squared error.
func (m *Metrics) ObserveTrial(squaredError float64) {
	m.trialError.Observe(squaredError)
}

// WriteText writes every family gathered from g in the Prometheus text format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
