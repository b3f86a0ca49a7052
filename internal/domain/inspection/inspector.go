package inspection

import (
	"github.com/tmurata/inspection-dispatch/internal/domain/shared"
)

// Inspector is one member of the visual-inspection team.
type Inspector struct {
	ID             string
	Name           string
	ShiftStart     shared.MinuteOfDay
	ShiftEnd       shared.MinuteOfDay
	NewProductTeam bool
}

// MaxDailyHours is the inspector's working time for the day: the shift span,
// minus one hour when the shift fully contains the midday break window.
// Inspectors with a non-positive result never become candidates.
func (i Inspector) MaxDailyHours(brk shared.BreakWindow) float64 {
	span := (i.ShiftEnd - i.ShiftStart).Hours()
	if brk.ContainedIn(i.ShiftStart, i.ShiftEnd) {
		span -= 1.0
	}
	return span
}

// Roster is the loaded inspector master.
type Roster struct {
	inspectors []Inspector
	byID       map[string]Inspector
	byName     map[string]Inspector
}

// NewRoster indexes inspectors by ID and by display name.
func NewRoster(inspectors []Inspector) *Roster {
	r := &Roster{
		inspectors: inspectors,
		byID:       make(map[string]Inspector, len(inspectors)),
		byName:     make(map[string]Inspector, len(inspectors)),
	}
	for _, ins := range inspectors {
		r.byID[ins.ID] = ins
		if ins.Name != "" {
			r.byName[ins.Name] = ins
		}
	}
	return r
}

// All returns every inspector in master order.
func (r *Roster) All() []Inspector {
	return r.inspectors
}

// ByID looks up an inspector by ID.
func (r *Roster) ByID(id string) (Inspector, bool) {
	ins, ok := r.byID[id]
	return ins, ok
}

// Resolve accepts either an inspector ID or a display name.
// Master sheets reference inspectors both ways.
func (r *Roster) Resolve(idOrName string) (Inspector, bool) {
	if ins, ok := r.byID[idOrName]; ok {
		return ins, true
	}
	ins, ok := r.byName[idOrName]
	return ins, ok
}

// NewProductTeam returns the members flagged as new-product team, the fallback
// candidate pool for products missing from the skill matrix.
func (r *Roster) NewProductTeam() []Inspector {
	var team []Inspector
	for _, ins := range r.inspectors {
		if ins.NewProductTeam {
			team = append(team, ins)
		}
	}
	return team
}
