package services

import (
	"fmt"

	"github.com/tmurata/inspection-dispatch/internal/application/common"
	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
)

// Violation kinds found by the repair scan.
const (
	violationShiftCap   = "shift-cap"
	violationProductCap = "product-cap"
)

type violation struct {
	rowIndex    int
	inspectorID string
	kind        string
	excess      float64
}

func (v violation) describe() string {
	return fmt.Sprintf("%s exceeded by %.2fh for inspector %s", v.kind, v.excess, v.inspectorID)
}

// scanViolations replays the rows in ship-date order against a fresh
// DailyState and flags each row whose booking pushes an inspector over the
// shift cap or the same-part cap. Attributing the excess to the row that
// crossed the cap means repair edits later rows first, keeping earlier ship
// dates intact. Duplicate violations on one row collapse to the largest
// excess.
func (r *engineRun) scanViolations() []violation {
	replay := inspection.NewDailyState()
	var found []violation

	for _, row := range r.rows {
		members := row.Members()
		if len(members) == 0 {
			continue
		}
		var worst *violation
		for _, id := range members {
			replay.Charge(id, row.Lot.ProductNumber, row.DividedTime)

			if max, ok := r.maxHours[id]; ok {
				if excess := replay.DailyHours[id] - (max - r.params.Epsilon); excess > 1e-9 {
					worst = worseOf(worst, violation{row.Index, id, violationShiftCap, excess})
				}
			}
			if excess := replay.ProductHoursFor(id, row.Lot.ProductNumber) - r.params.ProductCapHours; excess > 1e-9 {
				worst = worseOf(worst, violation{row.Index, id, violationProductCap, excess})
			}
		}
		if worst != nil {
			found = append(found, *worst)
		}
	}
	return found
}

func worseOf(current *violation, candidate violation) *violation {
	if current == nil || candidate.excess > current.excess {
		return &candidate
	}
	return current
}

// repairLoop is Phase 2: a bounded fixed-point loop that rebuilds DailyState,
// scans for violations in ship-date order, and repairs or releases each
// offending row. It also tries to top up provisional rows left short by the
// first pass.
func (r *engineRun) repairLoop(logger common.RunLogger) {
	for iter := 0; iter < r.params.RepairIterationCap; iter++ {
		r.repairIterations = iter + 1
		r.state = inspection.RebuildDailyState(r.rows, r.today)

		progress := r.upgradeProvisionalRows()

		violations := r.scanViolations()
		if len(violations) == 0 && !progress {
			return
		}

		for _, v := range violations {
			if r.repairRow(v) {
				progress = true
			} else {
				row := r.rows[v.rowIndex]
				r.releaseRow(row)
				row.MarkUnassigned(inspection.StatusUnassignedRule, v.describe())
				logger.Log("WARN", "no repair path, row released", map[string]interface{}{
					"lot":       row.Lot.Key(),
					"violation": v.describe(),
				})
				progress = true
			}
		}

		if !progress {
			return
		}
	}
}

// upgradeProvisionalRows tries to grow under-crewed rows to their required
// size now that earlier repairs may have freed capacity.
func (r *engineRun) upgradeProvisionalRows() bool {
	progress := false
	for _, row := range r.rows {
		if !row.Provisional || row.Status != inspection.StatusAssigned {
			continue
		}
		exclude := make(map[string]bool)
		for _, id := range row.Members() {
			exclude[id] = true
		}
		missing := row.RequiredCrewSize - row.CrewSize()
		pool := r.candidatesFor(row, row.DividedTime, exclude)
		r.sortLeastLoaded(pool)
		for _, ins := range pool {
			if missing == 0 {
				break
			}
			if row.AddMember(ins.ID) {
				r.state.Charge(ins.ID, row.Lot.ProductNumber, row.DividedTime)
				missing--
				progress = true
			}
		}
		if missing == 0 {
			row.Provisional = false
		}
	}
	return progress
}

// repairRow applies the repair ladder to one violating row:
// swap a member out of a multi-member crew, replace a short solo row, or
// augment a long solo row with a second member.
func (r *engineRun) repairRow(v violation) bool {
	row := r.rows[v.rowIndex]
	if row.Status != inspection.StatusAssigned {
		return true // already released by an earlier repair
	}
	crew := row.CrewSize()

	switch {
	case crew >= 2:
		return r.repairBySwap(row, v.inspectorID)
	case crew == 1 && row.InspectionTime < r.params.RequiredPivotHours:
		return r.repairByReplace(row, v.inspectorID)
	case crew == 1:
		return r.repairByAugment(row, v.inspectorID)
	default:
		return false
	}
}

// repairBySwap replaces the violating member with the least-loaded candidate
// outside the current crew.
func (r *engineRun) repairBySwap(row *inspection.AssignmentRow, x string) bool {
	exclude := make(map[string]bool)
	for _, id := range row.Members() {
		exclude[id] = true
	}
	pool := r.candidatesFor(row, row.DividedTime, exclude)
	if len(pool) == 0 {
		return false
	}
	r.sortLeastLoaded(pool)
	y := pool[0]

	if !row.ReplaceMember(x, y.ID) {
		return false
	}
	r.state.Release(x, row.Lot.ProductNumber, row.DividedTime)
	r.state.Charge(y.ID, row.Lot.ProductNumber, row.DividedTime)
	r.recordCleaningIfNeeded(row, y.ID)
	row.RecomputeTeamInfo(r.masters.Roster)
	r.diag("lot %s: swapped %s -> %s", row.Lot.Key(), x, y.ID)
	return true
}

// repairByReplace swaps out the sole member of a short row using the full
// inspection time.
func (r *engineRun) repairByReplace(row *inspection.AssignmentRow, x string) bool {
	exclude := map[string]bool{x: true}
	pool := r.candidatesFor(row, row.InspectionTime, exclude)
	if len(pool) == 0 {
		return false
	}
	r.sortLeastLoaded(pool)
	y := pool[0]

	r.state.Release(x, row.Lot.ProductNumber, row.DividedTime)
	row.SetCrew([]string{y.ID})
	row.DividedTime = row.InspectionTime
	r.state.Charge(y.ID, row.Lot.ProductNumber, row.DividedTime)
	r.recordCleaningIfNeeded(row, y.ID)
	row.RecomputeTeamInfo(r.masters.Roster)
	r.diag("lot %s: replaced %s -> %s", row.Lot.Key(), x, y.ID)
	return true
}

// repairByAugment adds a second member to a long solo row, halving the share.
func (r *engineRun) repairByAugment(row *inspection.AssignmentRow, x string) bool {
	if row.CrewSize() >= inspection.MaxCrewSlots {
		return false
	}
	half := row.InspectionTime / 2
	exclude := map[string]bool{x: true}
	pool := r.candidatesFor(row, half, exclude)
	if len(pool) == 0 {
		return false
	}
	r.sortLeastLoaded(pool)
	y := pool[0]

	r.state.Release(x, row.Lot.ProductNumber, row.DividedTime)
	row.DividedTime = half
	r.state.Charge(x, row.Lot.ProductNumber, half)
	if !row.AddMember(y.ID) {
		return false
	}
	r.state.Charge(y.ID, row.Lot.ProductNumber, half)
	r.recordCleaningIfNeeded(row, y.ID)
	row.RecomputeTeamInfo(r.masters.Roster)
	r.diag("lot %s: augmented with %s, share halved", row.Lot.Key(), y.ID)
	return true
}

func (r *engineRun) recordCleaningIfNeeded(row *inspection.AssignmentRow, id string) {
	switch row.Lot.ShippingDate.Class(r.today) {
	case inspection.ClassToday, inspection.ClassCleaning, inspection.ClassAdvance:
		r.state.RecordCleaning(row.Lot.ProductNumber, id)
	}
}
