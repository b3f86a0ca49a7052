package services_test

import (
	"time"

	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
	"github.com/tmurata/inspection-dispatch/internal/domain/shared"
)

// testToday is a Monday; the next business day is Tuesday the 17th.
var testToday = time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)

func mustMinute(s string) shared.MinuteOfDay {
	m, err := shared.ParseMinuteOfDay(s)
	if err != nil {
		panic(err)
	}
	return m
}

// fullShift returns an inspector working 08:00-17:00, which nets 8.0h after
// the midday break.
func fullShift(id, name string) inspection.Inspector {
	return inspection.Inspector{
		ID:         id,
		Name:       name,
		ShiftStart: mustMinute("08:00"),
		ShiftEnd:   mustMinute("17:00"),
	}
}

// zeroShift returns an inspector with no working time today.
func zeroShift(id, name string) inspection.Inspector {
	return inspection.Inspector{
		ID:         id,
		Name:       name,
		ShiftStart: mustMinute("08:00"),
		ShiftEnd:   mustMinute("08:00"),
	}
}

type bundleSpec struct {
	rates     []inspection.ProductRate
	roster    []inspection.Inspector
	skills    []inspection.SkillRow
	vacations []inspection.VacationEntry
	pins      []inspection.FixedPinRule
}

func newBundle(b bundleSpec) *inspection.MasterBundle {
	return &inspection.MasterBundle{
		Products:  inspection.NewProductMaster(b.rates),
		Roster:    inspection.NewRoster(b.roster),
		Skills:    inspection.NewSkillMatrix(b.skills),
		Vacations: inspection.NewVacationCalendar(b.vacations),
		Pins:      inspection.NewFixedPinTable(b.pins),
	}
}

// skillRow builds a matrix row for one product and process.
func skillRow(product, process string, levels map[string]inspection.SkillLevel) inspection.SkillRow {
	return inspection.SkillRow{ProductNumber: product, ProcessNumber: process, Levels: levels}
}

// normalLot builds a shortage-derived lot shipping on the given date.
func normalLot(lotID, product string, qty int, ship inspection.ShippingDate) inspection.Lot {
	return inspection.Lot{
		ProductionLotID:      lotID,
		ProductNumber:        product,
		LotQuantity:          qty,
		ShippingDate:         ship,
		CurrentProcessNumber: "10",
		CurrentProcessName:   "VISUAL",
		Provenance:           inspection.ProvenanceNormal,
	}
}
