package services

import (
	"fmt"
	"sort"

	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
)

// candidatesFor derives the filtered candidate pool for a row. Products in the
// skill matrix draw qualified inspectors; new products (and products whose
// qualified pool is empty) fall through to the new-product team.
// share is the per-member hours the candidate would take on.
func (r *engineRun) candidatesFor(row *inspection.AssignmentRow, share float64, exclude map[string]bool) []inspection.Inspector {
	lot := &row.Lot
	var pool []inspection.Inspector

	if r.masters.Skills.HasProduct(lot.ProductNumber) {
		for _, ins := range r.masters.Roster.All() {
			if r.masters.Skills.Qualified(lot.ProductNumber, lot.CurrentProcessNumber, ins.ID) {
				pool = append(pool, ins)
			}
		}
	}
	if len(pool) == 0 {
		pool = r.masters.Roster.NewProductTeam()
	}

	var out []inspection.Inspector
	for _, ins := range pool {
		if exclude[ins.ID] {
			continue
		}
		if r.passesFilters(ins, lot.ProductNumber, share) {
			out = append(out, ins)
		}
	}
	return out
}

// passesFilters applies the universal candidate filters: present today,
// positive shift capacity, shift cap with epsilon slack, and the same-part
// fatigue cap.
func (r *engineRun) passesFilters(ins inspection.Inspector, productNumber string, share float64) bool {
	if r.masters.Vacations.IsAbsent(ins, r.today) {
		return false
	}
	max, ok := r.maxHours[ins.ID]
	if !ok || max <= 0 {
		return false
	}
	if r.state.DailyHours[ins.ID]+share > max-r.params.Epsilon {
		return false
	}
	if r.state.ProductHoursFor(ins.ID, productNumber)+share > r.params.ProductCapHours {
		return false
	}
	return true
}

// sortLeastLoaded orders candidates by the lexicographic least-loaded key
// (total hours, assignment count, last assignment ordinal), with the ID as a
// deterministic final tie-break.
func (r *engineRun) sortLeastLoaded(pool []inspection.Inspector) {
	sort.SliceStable(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		if r.state.DailyHours[a.ID] != r.state.DailyHours[b.ID] {
			return r.state.DailyHours[a.ID] < r.state.DailyHours[b.ID]
		}
		if r.state.AssignmentCount[a.ID] != r.state.AssignmentCount[b.ID] {
			return r.state.AssignmentCount[a.ID] < r.state.AssignmentCount[b.ID]
		}
		if r.state.LastAssignedSeq[a.ID] != r.state.LastAssignedSeq[b.ID] {
			return r.state.LastAssignedSeq[a.ID] < r.state.LastAssignedSeq[b.ID]
		}
		return a.ID < b.ID
	})
}

// expertAnchor extracts the least-loaded skill-3 candidate, if any.
func (r *engineRun) expertAnchor(row *inspection.AssignmentRow, pool []inspection.Inspector) (inspection.Inspector, bool) {
	var experts []inspection.Inspector
	for _, ins := range pool {
		if r.masters.Skills.Level(row.Lot.ProductNumber, row.Lot.CurrentProcessNumber, ins.ID) == inspection.SkillLevelExpert {
			experts = append(experts, ins)
		}
	}
	if len(experts) == 0 {
		return inspection.Inspector{}, false
	}
	r.sortLeastLoaded(experts)
	return experts[0], true
}

// assignCrew picks the crew for one sized row and books the time.
func (r *engineRun) assignCrew(row *inspection.AssignmentRow) {
	exclude := make(map[string]bool)

	// Mandatory fixed-pin inclusions. Pinned inspectors failing a filter
	// are dropped and recorded; the engine proceeds with the remainder.
	var crew []string
	for _, pinned := range r.masters.Pins.Match(row.Lot.ProductNumber, row.Lot.CurrentProcessName) {
		ins, ok := r.masters.Roster.Resolve(pinned)
		if !ok {
			r.pinDrops = append(r.pinDrops, pinned)
			r.diag("pin %s on %s: unknown inspector", pinned, row.Lot.ProductNumber)
			continue
		}
		if !r.passesFilters(ins, row.Lot.ProductNumber, row.DividedTime) {
			r.pinDrops = append(r.pinDrops, ins.ID)
			r.diag("pin %s on %s: dropped by filters", ins.ID, row.Lot.ProductNumber)
			continue
		}
		if len(crew) < inspection.MaxCrewSlots {
			crew = append(crew, ins.ID)
			exclude[ins.ID] = true
		}
	}

	pool := r.candidatesFor(row, row.DividedTime, exclude)

	if len(crew) == 0 && len(pool) == 0 {
		row.MarkUnassigned(inspection.StatusUnassignedNoCandidate,
			fmt.Sprintf("no candidate passes filters for %.2fh share", row.DividedTime))
		return
	}

	free := row.RequiredCrewSize - len(crew)
	if free > 0 {
		crew = append(crew, r.pickFreeSlots(row, pool, free)...)
	}

	if len(crew) < row.RequiredCrewSize {
		// Degenerate pool: assign everyone available and leave the row
		// provisional so repair can try to top it up.
		row.Provisional = true
		r.diag("lot %s: pool %d smaller than required crew %d", row.Lot.Key(), len(crew), row.RequiredCrewSize)
	}

	row.SetCrew(crew)
	r.bookRow(row)
}

// pickFreeSlots fills the non-pinned slots according to the crew-size rules:
// crews of two and three anchor on the least-loaded skill-3 inspector when one
// exists; everything else is filled least-loaded first.
func (r *engineRun) pickFreeSlots(row *inspection.AssignmentRow, pool []inspection.Inspector, free int) []string {
	var picked []string
	take := func(ins inspection.Inspector) {
		picked = append(picked, ins.ID)
		rest := pool[:0]
		for _, p := range pool {
			if p.ID != ins.ID {
				rest = append(rest, p)
			}
		}
		pool = rest
	}

	if row.RequiredCrewSize >= 2 && row.RequiredCrewSize <= 3 && free > 0 {
		if anchor, ok := r.expertAnchor(row, pool); ok {
			take(anchor)
			free--
		}
	}
	r.sortLeastLoaded(pool)
	for free > 0 && len(pool) > 0 {
		take(pool[0])
		free--
	}
	return picked
}

// bookRow charges the crew's shares into DailyState and records the
// same-day-cleaning traceability set for cleaning, advance, and today lots.
func (r *engineRun) bookRow(row *inspection.AssignmentRow) {
	cleaningClass := false
	switch row.Lot.ShippingDate.Class(r.today) {
	case inspection.ClassToday, inspection.ClassCleaning, inspection.ClassAdvance:
		cleaningClass = true
	}
	for _, id := range row.Members() {
		r.state.Charge(id, row.Lot.ProductNumber, row.DividedTime)
		if cleaningClass {
			r.state.RecordCleaning(row.Lot.ProductNumber, id)
		}
	}
}
