package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RunMetricsCollector handles all extraction-run metrics
type RunMetricsCollector struct {
	runsTotal          prometheus.Counter
	runDurationSeconds prometheus.Histogram
	lotsTotal          *prometheus.GaugeVec
	repairIterations   prometheus.Histogram
	rebalanceMoves     prometheus.Histogram
}

// NewRunMetricsCollector creates a new run metrics collector
func NewRunMetricsCollector() *RunMetricsCollector {
	return &RunMetricsCollector{
		runsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "runs_total",
				Help:      "Total completed extraction runs",
			},
		),
		runDurationSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "run_duration_seconds",
				Help:      "End-to-end extraction run duration in seconds",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
		),
		lotsTotal: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "lots_total",
				Help:      "Lots in the latest run by assignment outcome",
			},
			[]string{"outcome"},
		),
		repairIterations: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "repair_iterations",
				Help:      "Repair loop iterations per run",
				Buckets:   []float64{0, 1, 2, 3, 5, 8, 10},
			},
		),
		rebalanceMoves: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "rebalance_moves",
				Help:      "Fairness rebalance moves per run",
				Buckets:   []float64{0, 1, 5, 10, 20, 30, 50},
			},
		),
	}
}

// Register registers all metrics with the given registry
func (c *RunMetricsCollector) Register(registry *prometheus.Registry) error {
	collectors := []prometheus.Collector{
		c.runsTotal,
		c.runDurationSeconds,
		c.lotsTotal,
		c.repairIterations,
		c.rebalanceMoves,
	}
	for _, col := range collectors {
		if err := registry.Register(col); err != nil {
			return err
		}
	}
	return nil
}

// RecordRun records the outcome of one extraction run
func (c *RunMetricsCollector) RecordRun(duration time.Duration, assigned, unassigned, repairIterations, rebalanceMoves int) {
	c.runsTotal.Inc()
	c.runDurationSeconds.Observe(duration.Seconds())
	c.lotsTotal.WithLabelValues("assigned").Set(float64(assigned))
	c.lotsTotal.WithLabelValues("unassigned").Set(float64(unassigned))
	c.repairIterations.Observe(float64(repairIterations))
	c.rebalanceMoves.Observe(float64(rebalanceMoves))
}
