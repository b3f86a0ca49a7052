package inspection

import "time"

// DailyState is the engine-owned, run-scoped accounting of inspector load.
// It is created per run, owned by one engine instance, and never persisted.
type DailyState struct {
	DailyHours         map[string]float64            // inspector -> hours allocated today
	ProductHours       map[string]map[string]float64 // inspector -> product -> hours
	CleaningInspectors map[string]map[string]bool    // product -> inspectors who touched today's cleaning
	AssignmentCount    map[string]int                // inspector -> fairness tally
	LastAssignedSeq    map[string]int                // inspector -> ordinal of most recent assignment

	seq int
}

// NewDailyState creates empty run-scoped state.
func NewDailyState() *DailyState {
	return &DailyState{
		DailyHours:         make(map[string]float64),
		ProductHours:       make(map[string]map[string]float64),
		CleaningInspectors: make(map[string]map[string]bool),
		AssignmentCount:    make(map[string]int),
		LastAssignedSeq:    make(map[string]int),
	}
}

// Charge books hours for one inspector on one product.
func (s *DailyState) Charge(inspectorID, productNumber string, hours float64) {
	s.DailyHours[inspectorID] += hours
	if s.ProductHours[inspectorID] == nil {
		s.ProductHours[inspectorID] = make(map[string]float64)
	}
	s.ProductHours[inspectorID][productNumber] += hours
	s.AssignmentCount[inspectorID]++
	s.seq++
	s.LastAssignedSeq[inspectorID] = s.seq
}

// Release returns previously booked hours. Negative residue from float noise
// is clamped to zero.
func (s *DailyState) Release(inspectorID, productNumber string, hours float64) {
	s.DailyHours[inspectorID] -= hours
	if s.DailyHours[inspectorID] < 0 {
		s.DailyHours[inspectorID] = 0
	}
	if ph := s.ProductHours[inspectorID]; ph != nil {
		ph[productNumber] -= hours
		if ph[productNumber] < 0 {
			ph[productNumber] = 0
		}
	}
	if s.AssignmentCount[inspectorID] > 0 {
		s.AssignmentCount[inspectorID]--
	}
}

// RecordCleaning remembers that an inspector touched today's cleaning (or
// advance/today) work for a product. Kept for traceability, not scheduling.
func (s *DailyState) RecordCleaning(productNumber, inspectorID string) {
	if s.CleaningInspectors[productNumber] == nil {
		s.CleaningInspectors[productNumber] = make(map[string]bool)
	}
	s.CleaningInspectors[productNumber][inspectorID] = true
}

// TouchedCleaning reports whether the inspector handled today's cleaning work
// for the product.
func (s *DailyState) TouchedCleaning(productNumber, inspectorID string) bool {
	return s.CleaningInspectors[productNumber][inspectorID]
}

// ProductHoursFor returns the inspector's cumulative hours on one product.
func (s *DailyState) ProductHoursFor(inspectorID, productNumber string) float64 {
	if ph := s.ProductHours[inspectorID]; ph != nil {
		return ph[productNumber]
	}
	return 0
}

// RebuildDailyState reconstructs state from the current assignment rows.
// Rebuilding is idempotent: running it on the engine's final rows yields the
// engine-held state.
func RebuildDailyState(rows []*AssignmentRow, today time.Time) *DailyState {
	s := NewDailyState()
	for _, row := range rows {
		members := row.Members()
		if len(members) == 0 {
			continue
		}
		cleaningClass := false
		switch row.Lot.ShippingDate.Class(today) {
		case ClassToday, ClassCleaning, ClassAdvance:
			cleaningClass = true
		}
		for _, id := range members {
			s.Charge(id, row.Lot.ProductNumber, row.DividedTime)
			if cleaningClass {
				s.RecordCleaning(row.Lot.ProductNumber, id)
			}
		}
	}
	return s
}
