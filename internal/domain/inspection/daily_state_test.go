package inspection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
)

func TestDailyStateChargeAndRelease(t *testing.T) {
	s := inspection.NewDailyState()

	s.Charge("A", "P", 2.5)
	s.Charge("A", "P", 1.0)
	s.Charge("A", "Q", 0.5)

	assert.InDelta(t, 4.0, s.DailyHours["A"], 1e-9)
	assert.InDelta(t, 3.5, s.ProductHoursFor("A", "P"), 1e-9)
	assert.Equal(t, 3, s.AssignmentCount["A"])

	s.Release("A", "P", 1.0)
	assert.InDelta(t, 3.0, s.DailyHours["A"], 1e-9)
	assert.InDelta(t, 2.5, s.ProductHoursFor("A", "P"), 1e-9)
	assert.Equal(t, 2, s.AssignmentCount["A"])
}

func TestDailyStateReleaseClampsAtZero(t *testing.T) {
	s := inspection.NewDailyState()
	s.Charge("A", "P", 1.0)

	// Over-release from float drift must not go negative.
	s.Release("A", "P", 1.5)
	assert.Zero(t, s.DailyHours["A"])
	assert.Zero(t, s.ProductHoursFor("A", "P"))
	assert.Zero(t, s.AssignmentCount["A"])

	s.Release("B", "P", 1.0)
	assert.Zero(t, s.AssignmentCount["B"])
}

func TestDailyStateCleaningTrace(t *testing.T) {
	s := inspection.NewDailyState()
	assert.False(t, s.TouchedCleaning("P", "A"))

	s.RecordCleaning("P", "A")
	assert.True(t, s.TouchedCleaning("P", "A"))
	assert.False(t, s.TouchedCleaning("P", "B"))
	assert.False(t, s.TouchedCleaning("Q", "A"))
}

func TestRebuildDailyStateIsIdempotent(t *testing.T) {
	row := func(lotID, product string, ship inspection.ShippingDate, divided float64, crew []string) *inspection.AssignmentRow {
		r := &inspection.AssignmentRow{
			Lot: inspection.Lot{
				ProductionLotID: lotID,
				ProductNumber:   product,
				ShippingDate:    ship,
			},
			DividedTime: divided,
			Status:      inspection.StatusAssigned,
		}
		r.SetCrew(crew)
		return r
	}
	rows := []*inspection.AssignmentRow{
		row("L1", "P", inspection.DateShipping(today), 3.0, []string{"A", "B"}),
		row("L2", "Q", inspection.CleaningShipping(), 1.5, []string{"A"}),
		row("L3", "P", inspection.DateShipping(today.AddDate(0, 0, 9)), 2.0, []string{"C"}),
		row("L4", "P", inspection.DateShipping(today), 0, nil), // released row, no crew
	}

	first := inspection.RebuildDailyState(rows, today)
	second := inspection.RebuildDailyState(rows, today)
	assert.Equal(t, first, second)

	assert.InDelta(t, 4.5, first.DailyHours["A"], 1e-9)
	assert.InDelta(t, 3.0, first.DailyHours["B"], 1e-9)
	assert.InDelta(t, 3.0, first.ProductHoursFor("A", "P"), 1e-9)

	// Cleaning trace covers cleaning and today classes, not far dates.
	assert.True(t, first.TouchedCleaning("Q", "A"))
	assert.True(t, first.TouchedCleaning("P", "A"))
	assert.False(t, first.TouchedCleaning("P", "C"))
}
