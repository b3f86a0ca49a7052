package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmurata/inspection-dispatch/internal/application/dispatch/services"
	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
)

func dedupe(t *testing.T, wildcard bool, lots []inspection.Lot) []inspection.Lot {
	t.Helper()
	return services.NewLotDeduper(wildcard).Dedupe(context.Background(), lots, testToday)
}

func TestDeduper_LotIDKeepsHighestPriorityRow(t *testing.T) {
	later := testToday.AddDate(0, 0, 30)
	lots := []inspection.Lot{
		normalLot("L1", "P", 100, inspection.DateShipping(later)),
		normalLot("L1", "P", 100, inspection.DateShipping(testToday)),
		normalLot("L2", "P", 100, inspection.DateShipping(later)),
	}

	out := dedupe(t, false, lots)

	require.Len(t, out, 2)
	assert.Equal(t, "L1", out[0].ProductionLotID)
	assert.Equal(t, inspection.ClassToday, out[0].ShippingDate.Class(testToday))
	assert.Equal(t, "L2", out[1].ProductionLotID)
}

func TestDeduper_TupleStageKeepsCleaningOverFarDate(t *testing.T) {
	// Same (product, machine, instruction date) without a lot number: the
	// same-day-cleaning row beats the far calendar date.
	instr := testToday.AddDate(0, 0, -3)
	cleaning := inspection.Lot{
		ProductNumber:   "P",
		Machine:         "M1",
		InstructionDate: instr,
		LotQuantity:     50,
		ShippingDate:    inspection.CleaningShipping(),
		Provenance:      inspection.ProvenanceCleaning,
	}
	farDate := inspection.Lot{
		ProductNumber:   "P",
		Machine:         "M1",
		InstructionDate: instr,
		LotQuantity:     50,
		ShippingDate:    inspection.DateShipping(time.Date(2099, 12, 31, 0, 0, 0, 0, time.UTC)),
		Provenance:      inspection.ProvenanceNormal,
	}

	out := dedupe(t, false, []inspection.Lot{farDate, cleaning})

	require.Len(t, out, 1)
	assert.Equal(t, inspection.ShippingKindCleaning, out[0].ShippingDate.Kind())
}

func TestDeduper_FinalStageBlankColumnModes(t *testing.T) {
	// One cleaning row with a filled distinguishing key, one normal row with
	// an all-blank key, same product. Exact matching keeps both; wildcard
	// matching merges them and the cleaning row wins.
	cleaning := inspection.Lot{
		ProductionLotID: "L1",
		ProductNumber:   "P",
		Machine:         "M1",
		LotQuantity:     50,
		ShippingDate:    inspection.CleaningShipping(),
		Provenance:      inspection.ProvenanceCleaning,
	}
	blank := inspection.Lot{
		ProductNumber: "P",
		LotQuantity:   50,
		ShippingDate:  inspection.DateShipping(time.Date(2099, 12, 31, 0, 0, 0, 0, time.UTC)),
		Provenance:    inspection.ProvenanceNormal,
	}

	t.Run("exact mode keeps distinct keys apart", func(t *testing.T) {
		out := dedupe(t, false, []inspection.Lot{cleaning, blank})
		assert.Len(t, out, 2)
	})

	t.Run("wildcard mode merges blank keys", func(t *testing.T) {
		out := dedupe(t, true, []inspection.Lot{cleaning, blank})
		require.Len(t, out, 1)
		assert.Equal(t, inspection.ShippingKindCleaning, out[0].ShippingDate.Kind())
	})
}

func TestDeduper_SameCategoryRowsAreNotMerged(t *testing.T) {
	// Two normal-date rows of the same product never trigger the mixed-pair
	// rule, whatever their dates.
	lots := []inspection.Lot{
		normalLot("L1", "P", 100, inspection.DateShipping(testToday)),
		normalLot("L2", "P", 100, inspection.DateShipping(testToday.AddDate(0, 0, 10))),
	}

	out := dedupe(t, true, lots)

	assert.Len(t, out, 2)
}
