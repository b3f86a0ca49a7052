package inspection

import (
	"strings"
)

// MaxCrewSlots is the hard upper bound on crew size per lot.
const MaxCrewSlots = 10

// AssignabilityStatus is the per-row outcome tag. Rows never raise; they carry
// their failure mode instead.
type AssignabilityStatus string

const (
	// StatusAssigned - crew selected, all constraints hold
	StatusAssigned AssignabilityStatus = "ASSIGNED"

	// StatusUnassignedRule - a constraint blocked the row and no repair path existed
	StatusUnassignedRule AssignabilityStatus = "UNASSIGNED_RULE"

	// StatusUnassignedCapacity - candidate pool too small for the required crew
	StatusUnassignedCapacity AssignabilityStatus = "UNASSIGNED_CAPACITY"

	// StatusUnassignedNoCandidate - candidate pool empty after filters
	StatusUnassignedNoCandidate AssignabilityStatus = "UNASSIGNED_NO_CANDIDATE"
)

// AssignmentRow is the per-lot output of the engine: sizing, crew slots, and
// the assignability outcome.
type AssignmentRow struct {
	Index int // position in the engine's row order
	Lot   Lot

	SecondsPerUnit   float64
	InspectionTime   float64 // hours
	RequiredCrewSize int
	DividedTime      float64 // hours per crew member

	Slots    [MaxCrewSlots]string // inspector IDs, leading slots filled
	TeamInfo string
	Status   AssignabilityStatus

	// Provisional marks rows whose pool was smaller than the required crew;
	// the repair phase may still upgrade them.
	Provisional bool

	// Diagnostics accumulates which constraint blocked what, for reporting.
	Diagnostics []string
}

// Members returns the non-empty crew slots in order.
func (r *AssignmentRow) Members() []string {
	var out []string
	for _, s := range r.Slots {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// CrewSize returns the count of filled slots.
func (r *AssignmentRow) CrewSize() int {
	return len(r.Members())
}

// SetCrew fills the slots from the given inspectors and updates sizing.
func (r *AssignmentRow) SetCrew(ids []string) {
	r.Slots = [MaxCrewSlots]string{}
	n := len(ids)
	if n > MaxCrewSlots {
		n = MaxCrewSlots
	}
	copy(r.Slots[:], ids[:n])
}

// ReplaceMember swaps one crew member in place, preserving slot order.
func (r *AssignmentRow) ReplaceMember(oldID, newID string) bool {
	for i, s := range r.Slots {
		if s == oldID {
			r.Slots[i] = newID
			return true
		}
	}
	return false
}

// AddMember appends an inspector to the first free slot.
func (r *AssignmentRow) AddMember(id string) bool {
	for i, s := range r.Slots {
		if s == "" {
			r.Slots[i] = id
			return true
		}
	}
	return false
}

// ClearCrew empties every slot and zeroes the divided time.
func (r *AssignmentRow) ClearCrew() {
	r.Slots = [MaxCrewSlots]string{}
	r.DividedTime = 0
	r.TeamInfo = ""
}

// MarkUnassigned releases the row with the given status and reason.
func (r *AssignmentRow) MarkUnassigned(status AssignabilityStatus, reason string) {
	r.ClearCrew()
	r.Status = status
	if reason != "" {
		r.Diagnostics = append(r.Diagnostics, reason)
	}
}

// RecomputeTeamInfo rebuilds the display string from the final slot contents,
// preferring inspector names over IDs.
func (r *AssignmentRow) RecomputeTeamInfo(roster *Roster) {
	members := r.Members()
	names := make([]string, 0, len(members))
	for _, id := range members {
		if ins, ok := roster.ByID(id); ok && ins.Name != "" {
			names = append(names, ins.Name)
		} else {
			names = append(names, id)
		}
	}
	r.TeamInfo = strings.Join(names, " / ")
}

// RecomputeDividedTime resizes the per-member share after crew edits.
// Rows without members keep a zero share.
func (r *AssignmentRow) RecomputeDividedTime() {
	n := r.CrewSize()
	if n == 0 {
		r.DividedTime = 0
		return
	}
	r.DividedTime = r.InspectionTime / float64(n)
}
