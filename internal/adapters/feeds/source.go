package feeds

import (
	"context"
	"fmt"
	"time"

	"github.com/tmurata/inspection-dispatch/internal/application/common"
	"github.com/tmurata/inspection-dispatch/internal/application/dispatch/services"
	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
)

// ShipmentReader supplies the shipment aggregate for a date range. The GORM
// shipment repository is the production implementation.
type ShipmentReader interface {
	FindByDateRange(ctx context.Context, from, to time.Time) ([]inspection.ShipmentRow, error)
}

// Paths names the CSV-backed collaborator feeds.
type Paths struct {
	Inventory string
	Cleaning  string
	Advance   string
}

// Filters carries the keyword configuration applied during resolution.
type Filters struct {
	ExcludedProducts   []string
	TargetKeywords     []string
	CompletionKeywords []string
}

// Source assembles the resolver inputs for a run date: shipment aggregate
// from the relational store, the three CSV feeds, and the configured keyword
// filters.
type Source struct {
	shipments   ShipmentReader
	paths       Paths
	filters     Filters
	horizonDays int
}

// NewSource wires an input source. horizonDays bounds how far ahead shipment
// rows are considered; non-positive means same-day only.
func NewSource(shipments ShipmentReader, paths Paths, filters Filters, horizonDays int) *Source {
	if horizonDays < 0 {
		horizonDays = 0
	}
	return &Source{shipments: shipments, paths: paths, filters: filters, horizonDays: horizonDays}
}

// LoadInputs loads every collaborator frame. The inventory feed is the only
// hard requirement surfaced upward; the cleaning and advance feeds degrade to
// empty with a warning, matching their optional role.
func (s *Source) LoadInputs(ctx context.Context, runDate time.Time) (services.ResolverInputs, error) {
	logger := common.LoggerFromContext(ctx)
	inputs := services.ResolverInputs{
		ExcludedProducts:   s.filters.ExcludedProducts,
		TargetKeywords:     s.filters.TargetKeywords,
		CompletionKeywords: s.filters.CompletionKeywords,
	}

	shipments, err := s.shipments.FindByDateRange(ctx, runDate, runDate.AddDate(0, 0, s.horizonDays))
	if err != nil {
		return inputs, fmt.Errorf("loading shipment aggregate: %w", err)
	}
	inputs.Shipments = shipments

	inventory, err := LoadInventory(s.paths.Inventory)
	if err != nil {
		// Leaving Inventory nil makes the resolver produce an empty lot
		// set with its own warning.
		logger.Log("WARN", fmt.Sprintf("Inventory feed unavailable: %v", err), nil)
		return inputs, nil
	}
	inputs.Inventory = inventory

	if s.paths.Cleaning != "" {
		cleaning, err := LoadCleaningRequests(s.paths.Cleaning)
		if err != nil {
			logger.Log("WARN", fmt.Sprintf("Cleaning feed unavailable: %v", err), nil)
		} else {
			inputs.CleaningRequests = cleaning
		}
	}

	if s.paths.Advance != "" {
		advance, err := LoadAdvanceRegistrations(s.paths.Advance)
		if err != nil {
			logger.Log("WARN", fmt.Sprintf("Advance register unavailable: %v", err), nil)
		} else {
			inputs.AdvanceEntries = advance
		}
	}
	return inputs, nil
}

var _ services.InputSource = (*Source)(nil)
