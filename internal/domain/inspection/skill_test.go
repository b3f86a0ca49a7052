package inspection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
)

func TestSkillMatrixLevelResolution(t *testing.T) {
	m := inspection.NewSkillMatrix([]inspection.SkillRow{
		{ProductNumber: "P", ProcessNumber: "", Levels: map[string]inspection.SkillLevel{
			"A": inspection.SkillLevelBeginner,
			"B": inspection.SkillLevelCapable,
		}},
		{ProductNumber: "P", ProcessNumber: "10", Levels: map[string]inspection.SkillLevel{
			"A": inspection.SkillLevelExpert,
		}},
	})

	// The process-specific row wins over the blank wildcard row.
	assert.Equal(t, inspection.SkillLevelExpert, m.Level("P", "10", "A"))

	// Inspectors absent from the specific row fall back to the wildcard.
	assert.Equal(t, inspection.SkillLevelCapable, m.Level("P", "10", "B"))

	// Unknown process resolves through the wildcard row.
	assert.Equal(t, inspection.SkillLevelBeginner, m.Level("P", "99", "A"))

	assert.Equal(t, inspection.SkillLevelNone, m.Level("P", "10", "Z"))
	assert.Equal(t, inspection.SkillLevelNone, m.Level("MISSING", "10", "A"))
}

func TestSkillMatrixHasProduct(t *testing.T) {
	m := inspection.NewSkillMatrix([]inspection.SkillRow{
		{ProductNumber: "P", Levels: map[string]inspection.SkillLevel{"A": inspection.SkillLevelBeginner}},
		{ProductNumber: "  ", Levels: map[string]inspection.SkillLevel{"A": inspection.SkillLevelExpert}},
	})

	assert.True(t, m.HasProduct("P"))
	assert.True(t, m.HasProduct(" P "))
	assert.False(t, m.HasProduct("NEW-1"))

	assert.True(t, m.Qualified("P", "10", "A"))
	assert.False(t, m.Qualified("P", "10", "B"))
}

func TestFixedPinTableMatch(t *testing.T) {
	pins := inspection.NewFixedPinTable([]inspection.FixedPinRule{
		{ProductNumber: "P", ProcessName: "", InspectorIDs: []string{"A", "B"}},
		{ProductNumber: "P", ProcessName: "VISUAL", InspectorIDs: []string{"B", "C"}},
		{ProductNumber: "Q", ProcessName: "VISUAL", InspectorIDs: []string{"D"}},
		{ProductNumber: "", InspectorIDs: []string{"E"}},       // no product, dropped
		{ProductNumber: "R", InspectorIDs: []string{" ", ""}}, // no inspectors, dropped
	})

	// Blank-process rule matches any process; duplicates collapse in order.
	assert.Equal(t, []string{"A", "B", "C"}, pins.Match("P", "VISUAL"))
	assert.Equal(t, []string{"A", "B"}, pins.Match("P", "POLISH"))
	assert.Empty(t, pins.Match("Q", "POLISH"))
	assert.Empty(t, pins.Match("R", "VISUAL"))

	pins.Add(inspection.FixedPinRule{ProductNumber: "Q", InspectorIDs: []string{"F"}})
	assert.Equal(t, []string{"D", "F"}, pins.Match("Q", "VISUAL"))
}
