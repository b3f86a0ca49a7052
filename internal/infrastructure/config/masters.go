package config

import (
	"time"

	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
)

// MastersConfig holds the master-input file locations and cache settings
type MastersConfig struct {
	ProductMaster   string `mapstructure:"product_master" validate:"required"`
	InspectorMaster string `mapstructure:"inspector_master" validate:"required"`
	SkillMatrix     string `mapstructure:"skill_matrix" validate:"required"`
	VacationSheet   string `mapstructure:"vacation_sheet" validate:"required"`

	// Snapshot cache TTL; values under five minutes are raised to it
	CacheTTL time.Duration `mapstructure:"cache_ttl"`

	// Disk-tier cache directory; empty disables the disk tier
	CacheDir string `mapstructure:"cache_dir"`

	// Watch master files and invalidate snapshots on change
	Watch bool `mapstructure:"watch"`

	// Fixed-pin rules, applied per (product, optional process name)
	FixedPins []FixedPinConfig `mapstructure:"fixed_pins" validate:"dive"`
}

// FixedPinConfig is one configured fixed-pin rule
type FixedPinConfig struct {
	ProductNumber string   `mapstructure:"product_number" validate:"required"`
	ProcessName   string   `mapstructure:"process_name"`
	Inspectors    []string `mapstructure:"inspectors" validate:"min=1"`
}

// PinRules converts the configured pins into domain rules
func (c MastersConfig) PinRules() []inspection.FixedPinRule {
	rules := make([]inspection.FixedPinRule, 0, len(c.FixedPins))
	for _, pin := range c.FixedPins {
		rules = append(rules, inspection.FixedPinRule{
			ProductNumber: pin.ProductNumber,
			ProcessName:   pin.ProcessName,
			InspectorIDs:  pin.Inspectors,
		})
	}
	return rules
}

// FeedsConfig holds the collaborator feed locations and keyword filters
type FeedsConfig struct {
	Inventory string `mapstructure:"inventory" validate:"required"`
	Cleaning  string `mapstructure:"cleaning"`
	Advance   string `mapstructure:"advance"`

	// Shipment-aggregate horizon in days ahead of the run date
	HorizonDays int `mapstructure:"horizon_days" validate:"min=0"`

	ExcludedProducts   []string `mapstructure:"excluded_products"`
	TargetKeywords     []string `mapstructure:"target_keywords"`
	CompletionKeywords []string `mapstructure:"completion_keywords"`
}
