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

func invLot(lotID, product string, qty int, instr time.Time, process string) inspection.InventoryLot {
	return inspection.InventoryLot{
		ProductNumber:      product,
		ProductName:        product + " name",
		Quantity:           qty,
		LotQuantity:        qty,
		InstructionDate:    instr,
		Machine:            "M1",
		CurrentProcessName: process,
		ProductionLotID:    lotID,
	}
}

func resolve(t *testing.T, in services.ResolverInputs) *services.ResolvedLots {
	t.Helper()
	out, err := services.NewShortageResolver().Resolve(context.Background(), in)
	require.NoError(t, err)
	return out
}

func TestResolver_MissingInventoryYieldsEmptySet(t *testing.T) {
	out := resolve(t, services.ResolverInputs{
		Shipments: []inspection.ShipmentRow{{ProductNumber: "P", ShortageQuantity: -10, ShippingDate: testToday}},
	})

	assert.Empty(t, out.Lots)
	assert.Empty(t, out.NonInspection)
}

func TestResolver_WalksInventoryOldestFirstUntilShortageCovered(t *testing.T) {
	d := func(daysAgo int) time.Time { return testToday.AddDate(0, 0, -daysAgo) }
	out := resolve(t, services.ResolverInputs{
		Shipments: []inspection.ShipmentRow{
			{ProductNumber: "P", ShippingDate: testToday.AddDate(0, 0, 2), ShortageQuantity: -100},
		},
		Inventory: []inspection.InventoryLot{
			// Deliberately out of order; resolution sorts by instruction date.
			invLot("L2", "P", 60, d(2), "VISUAL"),
			invLot("L1", "P", 60, d(5), "VISUAL"),
			invLot("L3", "P", 60, d(1), "VISUAL"),
		},
	})

	// 60 + 60 covers the 100-unit shortage; the newest lot is not needed.
	require.Len(t, out.Lots, 2)
	assert.Equal(t, "L1", out.Lots[0].ProductionLotID)
	assert.Equal(t, "L2", out.Lots[1].ProductionLotID)
	assert.Equal(t, -100, out.Lots[0].ShortageAfter)
	assert.Equal(t, -40, out.Lots[1].ShortageAfter)
	for _, lot := range out.Lots {
		assert.Equal(t, inspection.ProvenanceNormal, lot.Provenance)
		assert.Equal(t, inspection.ShippingKindDate, lot.ShippingDate.Kind())
	}
}

func TestResolver_NonTargetProcessGoesToSideChannel(t *testing.T) {
	out := resolve(t, services.ResolverInputs{
		Shipments: []inspection.ShipmentRow{
			{ProductNumber: "P", ShippingDate: testToday, ShortageQuantity: -100},
		},
		Inventory: []inspection.InventoryLot{
			invLot("L1", "P", 60, testToday.AddDate(0, 0, -2), "VISUAL CHECK"),
			invLot("L2", "P", 60, testToday.AddDate(0, 0, -1), "PACKING"),
		},
		TargetKeywords: []string{"VISUAL"},
	})

	require.Len(t, out.Lots, 1)
	assert.Equal(t, "L1", out.Lots[0].ProductionLotID)
	require.Len(t, out.NonInspection, 1)
	assert.Equal(t, "L2", out.NonInspection[0].ProductionLotID)
	assert.Equal(t, "PACKING", out.NonInspection[0].CurrentProcessName)
}

func TestResolver_ExcludedProductsAreSkipped(t *testing.T) {
	out := resolve(t, services.ResolverInputs{
		Shipments: []inspection.ShipmentRow{
			{ProductNumber: "P", ShippingDate: testToday, ShortageQuantity: -100},
		},
		Inventory: []inspection.InventoryLot{
			invLot("L1", "P", 100, testToday.AddDate(0, 0, -1), "VISUAL"),
		},
		ExcludedProducts: []string{"P"},
	})

	assert.Empty(t, out.Lots)
}

func TestResolver_AdvanceRegistrationCapAndFilter(t *testing.T) {
	d := func(daysAgo int) time.Time { return testToday.AddDate(0, 0, -daysAgo) }
	out := resolve(t, services.ResolverInputs{
		Inventory: []inspection.InventoryLot{
			invLot("L1", "Q", 40, d(4), "VISUAL"),
			invLot("L2", "Q", 40, d(3), "PACKED"),
			invLot("L3", "Q", 40, d(2), "VISUAL"),
			invLot("L4", "Q", 40, d(1), "VISUAL"),
		},
		CompletionKeywords: []string{"PACKED"},
		AdvanceEntries: []inspection.AdvanceRegistration{{
			ProductNumber:   "Q",
			MaxLotsPerDay:   2,
			ProcessFilter:   "VISUAL／POLISH",
			FixedInspectors: []string{"A", "B"},
		}},
	})

	// Cap of two, oldest instruction first, completion process excluded.
	require.Len(t, out.Lots, 2)
	assert.Equal(t, "L1", out.Lots[0].ProductionLotID)
	assert.Equal(t, "L3", out.Lots[1].ProductionLotID)
	for _, lot := range out.Lots {
		assert.Equal(t, inspection.ProvenanceAdvance, lot.Provenance)
		assert.Equal(t, inspection.ShippingKindAdvance, lot.ShippingDate.Kind())
	}

	// Fixed inspectors surface as a pin rule for the product.
	require.Len(t, out.AdvancePins, 1)
	assert.Equal(t, "Q", out.AdvancePins[0].ProductNumber)
	assert.Equal(t, []string{"A", "B"}, out.AdvancePins[0].InspectorIDs)
}

func TestResolver_CleaningRequestsSkipAlreadyResolvedLots(t *testing.T) {
	out := resolve(t, services.ResolverInputs{
		Shipments: []inspection.ShipmentRow{
			{ProductNumber: "P", ShippingDate: testToday, ShortageQuantity: -50},
		},
		Inventory: []inspection.InventoryLot{
			invLot("L1", "P", 60, testToday.AddDate(0, 0, -1), "VISUAL"),
		},
		CleaningRequests: []inspection.CleaningRequest{
			// Duplicate of the resolved shortage lot, dropped.
			{ProductNumber: "P", ProductionLotID: "L1", Quantity: 60},
			// Fresh cleaning work, kept with the sentinel date.
			{ProductNumber: "R", Quantity: 30, Machine: "M2", CleaningInstructionRow: "7"},
		},
	})

	require.Len(t, out.Lots, 2)
	assert.Equal(t, "L1", out.Lots[0].ProductionLotID)

	cleaning := out.Lots[1]
	assert.Equal(t, "R", cleaning.ProductNumber)
	assert.Equal(t, inspection.ProvenanceCleaning, cleaning.Provenance)
	assert.Equal(t, inspection.ShippingKindCleaning, cleaning.ShippingDate.Kind())

	// A normal lot's shipping date is never overwritten by the duplicate.
	assert.Equal(t, inspection.ShippingKindDate, out.Lots[0].ShippingDate.Kind())
}
