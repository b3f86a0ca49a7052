package services

import (
	"github.com/tmurata/inspection-dispatch/internal/domain/shared"
)

// Default engine parameters. All of them are runtime settable through
// configuration; the defaults match long-standing floor practice.
const (
	// DefaultProductCapHours caps one inspector's cumulative hours on a
	// single product per day (same-part fatigue cap).
	DefaultProductCapHours = 4.0

	// DefaultRequiredPivotHours is the inspection-time pivot for crew
	// sizing: at or under the pivot one inspector suffices.
	DefaultRequiredPivotHours = 3.0

	// DefaultEpsilonHours is the slack kept under every shift cap.
	DefaultEpsilonHours = 0.05

	// DefaultImbalanceRatio triggers the fairness rebalance when
	// max-min spread exceeds this fraction of the mean load.
	DefaultImbalanceRatio = 0.15

	// DefaultRepairIterationCap bounds the repair fixed-point loop.
	DefaultRepairIterationCap = 10

	// DefaultRebalanceCap bounds reassignments per run in Phase 3.
	DefaultRebalanceCap = 50

	// Overload/underload bands for the fairness rebalance, relative to the
	// mean total.
	rebalanceOverloadedRatio  = 1.10
	rebalanceUnderloadedRatio = 0.90
)

// Params are the tunable knobs of the assignment engine.
type Params struct {
	ProductCapHours    float64
	RequiredPivotHours float64
	Epsilon            float64
	ImbalanceRatio     float64
	RepairIterationCap int
	RebalanceCap       int
	Break              shared.BreakWindow

	// Stage3BlankWildcard switches the final dedup stage to treat blank
	// distinguishing columns as wildcards that match any value.
	Stage3BlankWildcard bool
}

// DefaultParams returns the production defaults.
func DefaultParams() Params {
	return Params{
		ProductCapHours:    DefaultProductCapHours,
		RequiredPivotHours: DefaultRequiredPivotHours,
		Epsilon:            DefaultEpsilonHours,
		ImbalanceRatio:     DefaultImbalanceRatio,
		RepairIterationCap: DefaultRepairIterationCap,
		RebalanceCap:       DefaultRebalanceCap,
		Break:              shared.DefaultBreakWindow(),
	}
}
