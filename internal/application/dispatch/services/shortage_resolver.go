package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tmurata/inspection-dispatch/internal/application/common"
	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
)

// ResolverInputs are the pre-loaded frames consumed by one resolution pass.
// The shipment aggregate arrives already filtered to the requested date range;
// shortage quantities are authoritative and never recomputed here.
type ResolverInputs struct {
	Shipments        []inspection.ShipmentRow
	Inventory        []inspection.InventoryLot
	ExcludedProducts []string

	// TargetKeywords qualifies a lot for inspection when its current
	// process name contains at least one keyword. Empty = no filter.
	TargetKeywords []string

	// CompletionKeywords marks completion/packaging processes excluded
	// from advance-lot candidates.
	CompletionKeywords []string

	CleaningRequests []inspection.CleaningRequest
	AdvanceEntries   []inspection.AdvanceRegistration
}

// ResolvedLots is the resolver output: the working lot set with provenance
// tags, the non-inspection side channel, and pin rules derived from advance
// registrations.
type ResolvedLots struct {
	Lots          []inspection.Lot
	NonInspection []inspection.NonInspectionLot
	AdvancePins   []inspection.FixedPinRule
}

// ShortageResolver derives the working set of lots from shipment shortages,
// the cleaning-request feed, and registered advance-inspection entries.
type ShortageResolver struct{}

// NewShortageResolver creates a resolver.
func NewShortageResolver() *ShortageResolver {
	return &ShortageResolver{}
}

// Resolve produces the merged lot set for the run date.
// A missing inventory structure yields an empty result with a warning rather
// than an error; per-input problems degrade to best effort.
func (r *ShortageResolver) Resolve(ctx context.Context, in ResolverInputs) (*ResolvedLots, error) {
	logger := common.LoggerFromContext(ctx)
	out := &ResolvedLots{}

	if in.Inventory == nil {
		logger.Log("WARN", "inventory feed missing, resolving empty lot set", nil)
		return out, nil
	}

	excluded := make(map[string]bool, len(in.ExcludedProducts))
	for _, p := range in.ExcludedProducts {
		if p = strings.TrimSpace(p); p != "" {
			excluded[p] = true
		}
	}

	inventoryByProduct := groupInventory(in.Inventory)

	normal, nonInspection := r.resolveShortages(in, inventoryByProduct, excluded)
	out.Lots = append(out.Lots, normal...)
	out.NonInspection = nonInspection

	advance, pins := r.resolveAdvance(ctx, in, inventoryByProduct, excluded)
	out.Lots = append(out.Lots, advance...)
	out.AdvancePins = pins

	cleaning := r.resolveCleaning(in, excluded, out.Lots)
	out.Lots = append(out.Lots, cleaning...)

	logger.Log("INFO", fmt.Sprintf("Resolved %d lots (%d non-inspection)", len(out.Lots), len(out.NonInspection)), nil)
	return out, nil
}

func groupInventory(inventory []inspection.InventoryLot) map[string][]inspection.InventoryLot {
	byProduct := make(map[string][]inspection.InventoryLot)
	for _, lot := range inventory {
		pn := strings.TrimSpace(lot.ProductNumber)
		if pn == "" {
			continue
		}
		byProduct[pn] = append(byProduct[pn], lot)
	}
	for pn := range byProduct {
		lots := byProduct[pn]
		sort.SliceStable(lots, func(i, j int) bool {
			return lots[i].InstructionDate.Before(lots[j].InstructionDate)
		})
		byProduct[pn] = lots
	}
	return byProduct
}

// resolveShortages walks each shorted product's inventory oldest-first,
// keeping every lot whose prior cumulative quantity is still under the
// required amount.
func (r *ShortageResolver) resolveShortages(
	in ResolverInputs,
	inventoryByProduct map[string][]inspection.InventoryLot,
	excluded map[string]bool,
) ([]inspection.Lot, []inspection.NonInspectionLot) {

	// Aggregate negative shortages per product; the earliest shipping date
	// among a product's shorted rows becomes the lots' shipping date.
	type shortage struct {
		total    int // negative
		shipDate time.Time
		row      inspection.ShipmentRow
	}
	shortages := make(map[string]*shortage)
	order := make([]string, 0)
	for _, row := range in.Shipments {
		pn := strings.TrimSpace(row.ProductNumber)
		if pn == "" || row.ShortageQuantity >= 0 || excluded[pn] {
			continue
		}
		s, ok := shortages[pn]
		if !ok {
			s = &shortage{shipDate: row.ShippingDate, row: row}
			shortages[pn] = s
			order = append(order, pn)
		}
		s.total += row.ShortageQuantity
		if row.ShippingDate.Before(s.shipDate) {
			s.shipDate = row.ShippingDate
			s.row = row
		}
	}

	var lots []inspection.Lot
	var nonInspection []inspection.NonInspectionLot
	for _, pn := range order {
		s := shortages[pn]
		required := -s.total
		priorCum := 0
		for _, inv := range inventoryByProduct[pn] {
			if priorCum >= required {
				break
			}
			lot := inspection.Lot{
				ProductionLotID:      inv.ProductionLotID,
				ProductNumber:        pn,
				ProductName:          firstNonEmpty(inv.ProductName, s.row.ProductName),
				Customer:             firstNonEmpty(inv.Customer, s.row.Customer),
				ShippingDate:         inspection.DateShipping(s.shipDate),
				LotQuantity:          inv.LotQuantity,
				InstructionDate:      inv.InstructionDate,
				Machine:              inv.Machine,
				CurrentProcessNumber: inv.CurrentProcessNumber,
				CurrentProcessName:   inv.CurrentProcessName,
				SecondaryProcess:     inv.SecondaryProcess,
				ProcessName:          inv.ProcessName,
				Provenance:           inspection.ProvenanceNormal,
				ShortageAfter:        s.total + priorCum,
			}
			priorCum += inv.LotQuantity

			if matchesAnyKeyword(inv.CurrentProcessName, in.TargetKeywords) {
				lots = append(lots, lot)
			} else {
				nonInspection = append(nonInspection, inspection.NonInspectionLot{
					ShippingDate:       lot.ShippingDate,
					ProductNumber:      pn,
					ProductionLotID:    inv.ProductionLotID,
					InstructionDate:    inv.InstructionDate,
					CurrentProcessName: inv.CurrentProcessName,
				})
			}
		}
	}

	sort.SliceStable(nonInspection, func(i, j int) bool {
		a, b := nonInspection[i], nonInspection[j]
		if a.ShippingDate.String() != b.ShippingDate.String() {
			return a.ShippingDate.String() < b.ShippingDate.String()
		}
		if a.ProductNumber != b.ProductNumber {
			return a.ProductNumber < b.ProductNumber
		}
		return a.InstructionDate.Before(b.InstructionDate)
	})
	return lots, nonInspection
}

// resolveAdvance materializes registered advance-inspection entries into lots
// capped at max-lots-per-day, oldest instruction first.
func (r *ShortageResolver) resolveAdvance(
	ctx context.Context,
	in ResolverInputs,
	inventoryByProduct map[string][]inspection.InventoryLot,
	excluded map[string]bool,
) ([]inspection.Lot, []inspection.FixedPinRule) {
	logger := common.LoggerFromContext(ctx)

	var lots []inspection.Lot
	var pins []inspection.FixedPinRule
	for _, entry := range in.AdvanceEntries {
		pn := strings.TrimSpace(entry.ProductNumber)
		if pn == "" || excluded[pn] || entry.MaxLotsPerDay <= 0 {
			continue
		}

		keywords := splitProcessFilter(entry.ProcessFilter)
		taken := 0
		for _, inv := range inventoryByProduct[pn] {
			if taken >= entry.MaxLotsPerDay {
				break
			}
			if containsAnyKeyword(inv.CurrentProcessName, in.CompletionKeywords) {
				continue
			}
			if len(keywords) > 0 {
				if allBlank(inv.CurrentProcessName, inv.SecondaryProcess, inv.ProcessName) {
					continue
				}
				if !matchesAnyKeyword(inv.CurrentProcessName, keywords) &&
					!matchesAnyKeyword(inv.SecondaryProcess, keywords) &&
					!matchesAnyKeyword(inv.ProcessName, keywords) {
					continue
				}
			}
			lots = append(lots, inspection.Lot{
				ProductionLotID:      inv.ProductionLotID,
				ProductNumber:        pn,
				ProductName:          inv.ProductName,
				Customer:             inv.Customer,
				ShippingDate:         inspection.AdvanceShipping(),
				LotQuantity:          inv.LotQuantity,
				InstructionDate:      inv.InstructionDate,
				Machine:              inv.Machine,
				CurrentProcessNumber: inv.CurrentProcessNumber,
				CurrentProcessName:   inv.CurrentProcessName,
				SecondaryProcess:     inv.SecondaryProcess,
				ProcessName:          inv.ProcessName,
				Provenance:           inspection.ProvenanceAdvance,
			})
			taken++
		}

		if taken == 0 {
			logger.Log("DEBUG", "advance registration produced no lots", map[string]interface{}{
				"product": pn,
			})
		}
		if len(entry.FixedInspectors) > 0 && taken > 0 {
			pins = append(pins, inspection.FixedPinRule{
				ProductNumber: pn,
				InspectorIDs:  entry.FixedInspectors,
			})
		}
	}
	return lots, pins
}

// resolveCleaning ingests the cleaning-request feed, skipping rows that
// duplicate an already resolved lot. A normal lot's shipping date is never
// overwritten by a cleaning duplicate.
func (r *ShortageResolver) resolveCleaning(
	in ResolverInputs,
	excluded map[string]bool,
	existing []inspection.Lot,
) []inspection.Lot {

	existingIDs := make(map[string]bool)
	existingTuples := make(map[string]bool)
	for i := range existing {
		lot := &existing[i]
		if lot.HasLotID() {
			existingIDs[strings.TrimSpace(lot.ProductionLotID)] = true
		}
		existingTuples[lot.FallbackKey()] = true
	}

	var lots []inspection.Lot
	for _, req := range in.CleaningRequests {
		pn := strings.TrimSpace(req.ProductNumber)
		if pn == "" || excluded[pn] {
			continue
		}
		lot := inspection.Lot{
			ProductionLotID:        req.ProductionLotID,
			ProductNumber:          pn,
			ProductName:            req.ProductName,
			ShippingDate:           inspection.CleaningShipping(),
			LotQuantity:            req.Quantity,
			InstructionDate:        req.InstructionDate,
			Machine:                req.Machine,
			CurrentProcessNumber:   req.CurrentProcessNumber,
			CurrentProcessName:     req.CurrentProcessName,
			CleaningInstructionRow: req.CleaningInstructionRow,
			Provenance:             inspection.ProvenanceCleaning,
		}
		if lot.HasLotID() {
			if existingIDs[strings.TrimSpace(lot.ProductionLotID)] {
				continue
			}
			existingIDs[strings.TrimSpace(lot.ProductionLotID)] = true
		} else {
			if existingTuples[lot.FallbackKey()] {
				continue
			}
			existingTuples[lot.FallbackKey()] = true
		}
		lots = append(lots, lot)
	}
	return lots
}

// matchesAnyKeyword implements the inspection-target rule: an empty keyword
// list disables the filter entirely.
func matchesAnyKeyword(value string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	return containsAnyKeyword(value, keywords)
}

// containsAnyKeyword is the plain substring test; empty list matches nothing.
func containsAnyKeyword(value string, keywords []string) bool {
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw == "" {
			continue
		}
		if strings.Contains(value, kw) {
			return true
		}
	}
	return false
}

// splitProcessFilter splits a registered process filter on ASCII or
// full-width slashes.
func splitProcessFilter(filter string) []string {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil
	}
	parts := strings.FieldsFunc(filter, func(r rune) bool {
		return r == '/' || r == '／'
	})
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func allBlank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
