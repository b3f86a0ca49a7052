package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmurata/inspection-dispatch/internal/application/common"
	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
)

func TestRebalance_MovesWorkFromOverloadedToUnderloaded(t *testing.T) {
	// Loads {7.0, 7.0, 6.5, 2.0, 1.0}, mean 4.7. The 6.0h spread is far over
	// the 0.15 threshold, so at least one assignment must move from a
	// >=1.10*mean inspector to a <=0.90*mean one.
	roster := []inspection.Inspector{
		repairShift("I1", "Itou"), repairShift("I2", "Ueda"),
		repairShift("I3", "Endo"), repairShift("I4", "Oda"),
		repairShift("I5", "Kato"),
	}
	products := []string{"P1", "P2", "P3", "P4", "P5", "P6", "P7", "P8"}
	var rates []inspection.ProductRate
	var skills []inspection.SkillRow
	for _, p := range products {
		rates = append(rates, inspection.ProductRate{ProductNumber: p, ProcessNumber: "10", SecondsPerUnit: 60})
		levels := make(map[string]inspection.SkillLevel, len(roster))
		for _, ins := range roster {
			levels[ins.ID] = inspection.SkillLevelCapable
		}
		skills = append(skills, inspection.SkillRow{ProductNumber: p, ProcessNumber: "10", Levels: levels})
	}
	masters := &inspection.MasterBundle{
		Products:  inspection.NewProductMaster(rates),
		Roster:    inspection.NewRoster(roster),
		Skills:    inspection.NewSkillMatrix(skills),
		Vacations: inspection.NewVacationCalendar(nil),
		Pins:      inspection.NewFixedPinTable(nil),
	}

	rows := []*inspection.AssignmentRow{
		assignedRow("L1", "P1", repairToday, 3.5, []string{"I1"}),
		assignedRow("L2", "P2", repairToday, 3.5, []string{"I1"}),
		assignedRow("L3", "P3", repairToday, 3.5, []string{"I2"}),
		assignedRow("L4", "P4", repairToday, 3.5, []string{"I2"}),
		assignedRow("L5", "P5", repairToday, 3.25, []string{"I3"}),
		assignedRow("L6", "P6", repairToday, 3.25, []string{"I3"}),
		assignedRow("L7", "P7", repairToday, 2.0, []string{"I4"}),
		assignedRow("L8", "P8", repairToday, 1.0, []string{"I5"}),
	}
	run := newRepairRun(masters, rows)
	require.InDelta(t, 7.0, run.state.DailyHours["I1"], 1e-9)
	before := make(map[string][]string)
	for _, row := range rows {
		before[row.Lot.Key()] = row.Members()
	}

	run.rebalance(common.LoggerFromContext(context.Background()))

	assert.Positive(t, run.rebalanceMoves)

	// Every move left the caps intact.
	for id, hours := range run.state.DailyHours {
		assert.LessOrEqual(t, hours, run.maxHours[id]-run.params.Epsilon+1e-9, "shift cap for %s", id)
	}
	for id, perProduct := range run.state.ProductHours {
		for p, hours := range perProduct {
			assert.LessOrEqual(t, hours, run.params.ProductCapHours+1e-9, "same-part cap for %s on %s", id, p)
		}
	}

	// At least one crew changed hands towards an underloaded inspector, and
	// row order is untouched.
	moved := 0
	for i, row := range rows {
		assert.Equal(t, i, row.Index)
		if !assert.ObjectsAreEqual(before[row.Lot.Key()], row.Members()) {
			moved++
		}
	}
	assert.Positive(t, moved)
	assert.Greater(t, run.state.DailyHours["I5"], 1.0)
}

func TestRebalance_BalancedLoadsAreLeftAlone(t *testing.T) {
	roster := []inspection.Inspector{repairShift("I1", "Itou"), repairShift("I2", "Ueda")}
	levels := map[string]inspection.SkillLevel{
		"I1": inspection.SkillLevelCapable,
		"I2": inspection.SkillLevelCapable,
	}
	masters := &inspection.MasterBundle{
		Products: inspection.NewProductMaster([]inspection.ProductRate{
			{ProductNumber: "P1", ProcessNumber: "10", SecondsPerUnit: 60},
			{ProductNumber: "P2", ProcessNumber: "10", SecondsPerUnit: 60},
		}),
		Roster: inspection.NewRoster(roster),
		Skills: inspection.NewSkillMatrix([]inspection.SkillRow{
			{ProductNumber: "P1", ProcessNumber: "10", Levels: levels},
			{ProductNumber: "P2", ProcessNumber: "10", Levels: levels},
		}),
		Vacations: inspection.NewVacationCalendar(nil),
		Pins:      inspection.NewFixedPinTable(nil),
	}

	rows := []*inspection.AssignmentRow{
		assignedRow("L1", "P1", repairToday, 3.0, []string{"I1"}),
		assignedRow("L2", "P2", repairToday, 3.0, []string{"I2"}),
	}
	run := newRepairRun(masters, rows)

	run.rebalance(common.LoggerFromContext(context.Background()))

	assert.Zero(t, run.rebalanceMoves)
	assert.Equal(t, []string{"I1"}, rows[0].Members())
	assert.Equal(t, []string{"I2"}, rows[1].Members())
}
