package masters_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmurata/inspection-dispatch/internal/adapters/masters"
	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
)

func TestParseProductRates(t *testing.T) {
	sheet := strings.Join([]string{
		"product_number,process_number,seconds_per_unit",
		"P,10,60",
		",,",
		"Q,,45.5",
	}, "\n")

	rates, err := masters.ParseProductRates(strings.NewReader(sheet))
	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.Equal(t, inspection.ProductRate{ProductNumber: "P", ProcessNumber: "10", SecondsPerUnit: 60}, rates[0])
	assert.Equal(t, inspection.ProductRate{ProductNumber: "Q", SecondsPerUnit: 45.5}, rates[1])
}

func TestParseProductRatesRejectsBadRate(t *testing.T) {
	sheet := strings.Join([]string{
		"product_number,process_number,seconds_per_unit",
		"P,10,sixty",
	}, "\n")

	_, err := masters.ParseProductRates(strings.NewReader(sheet))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestParseInspectors(t *testing.T) {
	// Title row, header on row 2, data from row 3. Column 8 carries the
	// new-product team mark.
	sheet := strings.Join([]string{
		"inspector master export,,,,,,,",
		"id,name,shift_start,shift_end,a,b,c,new_product_team",
		"A,Aoki,08:00,17:00,,,,★",
		"B,Banda,09:00,15:00,,,,",
		",,,,,,,",
	}, "\n")

	inspectors, err := masters.ParseInspectors(strings.NewReader(sheet))
	require.NoError(t, err)
	require.Len(t, inspectors, 2)

	assert.Equal(t, "A", inspectors[0].ID)
	assert.Equal(t, "Aoki", inspectors[0].Name)
	assert.True(t, inspectors[0].NewProductTeam)
	assert.InDelta(t, 8.0, inspectors[0].ShiftStart.Hours(), 1e-9)
	assert.InDelta(t, 17.0, inspectors[0].ShiftEnd.Hours(), 1e-9)

	assert.Equal(t, "B", inspectors[1].ID)
	assert.False(t, inspectors[1].NewProductTeam)
}

func TestParseInspectorsRejectsBadShift(t *testing.T) {
	sheet := strings.Join([]string{
		"title",
		"id,name,shift_start,shift_end",
		"A,Aoki,morning,17:00",
	}, "\n")

	_, err := masters.ParseInspectors(strings.NewReader(sheet))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
}

func TestParseSkillRows(t *testing.T) {
	sheet := strings.Join([]string{
		"product_number,process_number,A,B,C",
		"P,10,3,1,",
		"P,,2,,1",
		",,1,1,1",
	}, "\n")

	rows, err := masters.ParseSkillRows(strings.NewReader(sheet))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "P", rows[0].ProductNumber)
	assert.Equal(t, "10", rows[0].ProcessNumber)
	assert.Equal(t, map[string]inspection.SkillLevel{
		"A": inspection.SkillLevelExpert,
		"B": inspection.SkillLevelBeginner,
	}, rows[0].Levels)

	assert.Empty(t, rows[1].ProcessNumber)
	assert.Equal(t, inspection.SkillLevelBeginner, rows[1].Levels["C"])
}

func TestParseSkillRowsRejectsBadGrade(t *testing.T) {
	sheet := strings.Join([]string{
		"product_number,process_number,A",
		"P,10,4",
	}, "\n")

	_, err := masters.ParseSkillRows(strings.NewReader(sheet))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid grade")
}

func TestParseVacationEntries(t *testing.T) {
	sheet := strings.Join([]string{
		"inspector,date,absence_code",
		"A,2025-06-16,PTO",
		"Banda,2025-06-17,",
		",,",
	}, "\n")

	entries, err := masters.ParseVacationEntries(strings.NewReader(sheet))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "A", entries[0].InspectorIDOrName)
	assert.Equal(t, "PTO", entries[0].AbsenceCode)
	assert.Equal(t, "Banda", entries[1].InspectorIDOrName)
	assert.Empty(t, entries[1].AbsenceCode)
}
