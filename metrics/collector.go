// Package metrics exposes simulation progress as Prometheus metrics.
//
// A Collector implements both sis.Observer (events and trial outcomes) and
// sis.Sink (latest infected fraction per label), so one value can be
// attached to an engine and to a trial's snapshot stream.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/katalvlaran/ssis/sis"
)

// Outcome label values of TrialsTotal.
const (
	OutcomeExtinct  = "extinct"
	OutcomeCensored = "censored"
)

// Collector holds all simulation metrics
type Collector struct {
	EventsTotal      *prometheus.CounterVec
	TrialsTotal      *prometheus.CounterVec
	TrialEvents      prometheus.Histogram
	FinalInfected    prometheus.Histogram
	ExtinctionTime   prometheus.Histogram
	InfectedFraction *prometheus.GaugeVec
	SimulatedTime    *prometheus.GaugeVec

	registry *prometheus.Registry
}

// NewCollector creates a Collector registered on a fresh registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{registry: reg}
	c.init(reg)

	return c
}

func (c *Collector) init(reg prometheus.Registerer) {
	c.EventsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ssis_events_total",
			Help: "Total number of applied SIS transitions",
		},
		[]string{"kind"},
	)

	c.TrialsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ssis_trials_total",
			Help: "Total number of finished trials by outcome",
		},
		[]string{"outcome"},
	)

	c.TrialEvents = promauto.With(reg).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ssis_trial_events",
			Help:    "Number of events applied per trial",
			Buckets: prometheus.ExponentialBuckets(10, 10, 7),
		},
	)

	c.FinalInfected = promauto.With(reg).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ssis_trial_final_infected",
			Help:    "Infected node count at the end of each trial",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
		},
	)

	c.ExtinctionTime = promauto.With(reg).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ssis_extinction_time",
			Help:    "Simulation time at which extinct trials died out",
			Buckets: prometheus.ExponentialBuckets(0.1, 4, 8),
		},
	)

	c.InfectedFraction = promauto.With(reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ssis_infected_fraction",
			Help: "Infected fraction at the latest snapshot",
		},
		[]string{"label"},
	)

	c.SimulatedTime = promauto.With(reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ssis_simulated_time",
			Help: "Simulation clock at the latest snapshot",
		},
		[]string{"label"},
	)
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveEvent implements sis.Observer.
func (c *Collector) ObserveEvent(ev sis.Event) {
	c.EventsTotal.WithLabelValues(ev.Kind().String()).Inc()
}

// ObserveTrial implements sis.Observer.
func (c *Collector) ObserveTrial(res sis.TrialResult) {
	outcome := OutcomeCensored
	if res.Extinct {
		outcome = OutcomeExtinct
		c.ExtinctionTime.Observe(res.FinalT)
	}
	c.TrialsTotal.WithLabelValues(outcome).Inc()
	c.TrialEvents.Observe(float64(res.Events))
	c.FinalInfected.Observe(float64(res.FinalInfected))
}

// WriteSnapshot implements sis.Sink.
func (c *Collector) WriteSnapshot(s sis.Snapshot) error {
	c.InfectedFraction.WithLabelValues(s.Label).Set(s.Fraction)
	c.SimulatedTime.WithLabelValues(s.Label).Set(s.T)
	return nil
}

var (
	_ sis.Observer = (*Collector)(nil)
	_ sis.Sink     = (*Collector)(nil)
)
