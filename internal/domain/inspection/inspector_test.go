package inspection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
	"github.com/tmurata/inspection-dispatch/internal/domain/shared"
)

func minute(t *testing.T, s string) shared.MinuteOfDay {
	t.Helper()
	m, err := shared.ParseMinuteOfDay(s)
	require.NoError(t, err)
	return m
}

func TestInspectorMaxDailyHours(t *testing.T) {
	brk := shared.DefaultBreakWindow()

	full := inspection.Inspector{ID: "A", ShiftStart: minute(t, "08:00"), ShiftEnd: minute(t, "17:00")}
	assert.InDelta(t, 8.0, full.MaxDailyHours(brk), 1e-9)

	// Shift ends before the break, so nothing is deducted.
	morning := inspection.Inspector{ID: "B", ShiftStart: minute(t, "08:00"), ShiftEnd: minute(t, "12:00")}
	assert.InDelta(t, 4.0, morning.MaxDailyHours(brk), 1e-9)

	empty := inspection.Inspector{ID: "C", ShiftStart: minute(t, "08:00"), ShiftEnd: minute(t, "08:00")}
	assert.Zero(t, empty.MaxDailyHours(brk))
}

func TestRosterResolveByIDOrName(t *testing.T) {
	roster := inspection.NewRoster([]inspection.Inspector{
		{ID: "A", Name: "Aoki"},
		{ID: "B", Name: "Banda", NewProductTeam: true},
	})

	byID, ok := roster.Resolve("A")
	require.True(t, ok)
	assert.Equal(t, "Aoki", byID.Name)

	byName, ok := roster.Resolve("Banda")
	require.True(t, ok)
	assert.Equal(t, "B", byName.ID)

	_, ok = roster.Resolve("nobody")
	assert.False(t, ok)

	team := roster.NewProductTeam()
	require.Len(t, team, 1)
	assert.Equal(t, "B", team[0].ID)
}

func TestVacationCalendarMatchesIDAndName(t *testing.T) {
	cal := inspection.NewVacationCalendar([]inspection.VacationEntry{
		{InspectorIDOrName: "A", Date: today, AbsenceCode: "PTO"},
		{InspectorIDOrName: "Banda", Date: today, AbsenceCode: "SICK"},
		{InspectorIDOrName: "C", Date: today, AbsenceCode: ""}, // blank code ignored
	})

	a := inspection.Inspector{ID: "A", Name: "Aoki"}
	b := inspection.Inspector{ID: "B", Name: "Banda"}
	c := inspection.Inspector{ID: "C", Name: "Chiba"}

	assert.True(t, cal.IsAbsent(a, today))
	assert.True(t, cal.IsAbsent(b, today))
	assert.False(t, cal.IsAbsent(c, today))
	assert.False(t, cal.IsAbsent(a, today.AddDate(0, 0, 1)))
}
