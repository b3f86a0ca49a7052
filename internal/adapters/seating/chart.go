package seating

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
)

// seatColumns is the seat-chart grid width. Layout is cosmetic; the round
// trip keys on seat IDs and source keys, never on grid position.
const seatColumns = 6

// SeatLot is one lot placed on (or removed from) a seat. The source keys tie
// the lot back to its assignment row so edits re-map precisely even when two
// rows share a product.
type SeatLot struct {
	LotID              string  `json:"lot_id"`
	LotKey             string  `json:"lot_key"`
	SourceRowIndex     int     `json:"source_row_index"`
	SourceRowKey       string  `json:"source_row_key"`
	SourceInspectorCol string  `json:"source_inspector_col"`
	ProductNumber      string  `json:"product_number"`
	ProductName        string  `json:"product_name"`
	ShippingDate       string  `json:"shipping_date"`
	InspectionTime     float64 `json:"inspection_time"`
}

// Seat is one inspector's position on the chart with their lots for the day.
type Seat struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Row  int       `json:"row"`
	Col  int       `json:"col"`
	Lots []SeatLot `json:"lots"`
}

// Chart is the published seat-chart artifact.
type Chart struct {
	ChartID        string    `json:"chart_id"`
	RunDate        string    `json:"run_date"`
	Seats          []Seat    `json:"seats"`
	UnassignedLots []SeatLot `json:"unassigned_lots"`
}

// Publish renders the assignment matrix as a seat chart. Every roster member
// gets a seat; assigned lots land on their crew members' seats, rows without
// a crew land in unassigned_lots with an empty inspector column.
func Publish(rows []*inspection.AssignmentRow, roster *inspection.Roster, runDate string) *Chart {
	chart := &Chart{
		ChartID: uuid.New().String(),
		RunDate: runDate,
	}

	seatIndex := make(map[string]int)
	for i, ins := range roster.All() {
		seatIndex[ins.ID] = len(chart.Seats)
		chart.Seats = append(chart.Seats, Seat{
			ID:   ins.ID,
			Name: ins.Name,
			Row:  i / seatColumns,
			Col:  i % seatColumns,
		})
	}

	for _, row := range rows {
		if row.Status != inspection.StatusAssigned {
			chart.UnassignedLots = append(chart.UnassignedLots, seatLotFor(row, ""))
			continue
		}
		for slot, id := range row.Slots {
			if id == "" {
				continue
			}
			lot := seatLotFor(row, strconv.Itoa(slot))
			if si, ok := seatIndex[id]; ok {
				chart.Seats[si].Lots = append(chart.Seats[si].Lots, lot)
			} else {
				// Crew member missing from the roster snapshot; keep the
				// lot visible rather than dropping it from the chart.
				chart.UnassignedLots = append(chart.UnassignedLots, lot)
			}
		}
	}
	return chart
}

func seatLotFor(row *inspection.AssignmentRow, col string) SeatLot {
	return SeatLot{
		LotID:              row.Lot.ProductionLotID,
		LotKey:             row.Lot.Key(),
		SourceRowIndex:     row.Index,
		SourceRowKey:       rowKey(row),
		SourceInspectorCol: col,
		ProductNumber:      row.Lot.ProductNumber,
		ProductName:        row.Lot.ProductName,
		ShippingDate:       row.Lot.ShippingDate.String(),
		InspectionTime:     row.InspectionTime,
	}
}

// rowKey identifies one assignment row across the round trip. The lot key
// alone is not unique when dedup keeps sibling rows of one product, so the
// engine row index is folded in.
func rowKey(row *inspection.AssignmentRow) string {
	return fmt.Sprintf("%d|%s", row.Index, row.Lot.Key())
}
