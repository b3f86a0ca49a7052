package config

import (
	"fmt"

	"github.com/tmurata/inspection-dispatch/internal/application/dispatch/services"
	"github.com/tmurata/inspection-dispatch/internal/domain/shared"
)

// EngineConfig holds the assignment-engine tuning parameters
type EngineConfig struct {
	// Same-part fatigue cap in hours per inspector per product
	ProductCapHours float64 `mapstructure:"product_cap_hours" validate:"gt=0"`

	// Crew-size pivot: lots up to this many hours get a single inspector
	RequiredPivotHours float64 `mapstructure:"required_pivot_hours" validate:"gt=0"`

	// Work-hour slack subtracted from each shift cap
	Epsilon float64 `mapstructure:"epsilon" validate:"gte=0"`

	// Fairness trigger: rebalance when (max-min) > ratio * mean
	ImbalanceRatio float64 `mapstructure:"imbalance_threshold_ratio" validate:"gt=0"`

	RepairIterationCap int `mapstructure:"repair_iteration_cap" validate:"min=1"`
	RebalanceCap       int `mapstructure:"rebalance_cap" validate:"min=0"`

	// Midday break window, HH:MM
	BreakStart string `mapstructure:"break_start" validate:"omitempty,hhmm"`
	BreakEnd   string `mapstructure:"break_end" validate:"omitempty,hhmm"`

	// Treat blank distinguishing keys as wildcards in the final dedup stage
	Stage3BlankWildcard bool `mapstructure:"stage3_blank_wildcard"`
}

// ToParams converts the config section into engine parameters
func (c EngineConfig) ToParams() (services.Params, error) {
	params := services.DefaultParams()
	params.ProductCapHours = c.ProductCapHours
	params.RequiredPivotHours = c.RequiredPivotHours
	params.Epsilon = c.Epsilon
	params.ImbalanceRatio = c.ImbalanceRatio
	params.RepairIterationCap = c.RepairIterationCap
	params.RebalanceCap = c.RebalanceCap
	params.Stage3BlankWildcard = c.Stage3BlankWildcard

	if c.BreakStart != "" && c.BreakEnd != "" {
		start, err := shared.ParseMinuteOfDay(c.BreakStart)
		if err != nil {
			return params, fmt.Errorf("invalid engine.break_start: %w", err)
		}
		end, err := shared.ParseMinuteOfDay(c.BreakEnd)
		if err != nil {
			return params, fmt.Errorf("invalid engine.break_end: %w", err)
		}
		params.Break = shared.BreakWindow{Start: start, End: end}
	}
	return params, nil
}
