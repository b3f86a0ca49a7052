package seating

import (
	"strconv"
	"strings"

	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
)

// Ingest applies a (possibly edited) seat chart back onto the assignment
// matrix. Seat lots re-map to rows by (source_row_key, source_inspector_col)
// first, then by lot key. Lots found under unassigned_lots clear their slot,
// or every slot when the inspector column is empty. Crew size, divided time
// and team info are recomputed for every touched row. An unedited round trip
// leaves the matrix untouched.
func Ingest(chart *Chart, rows []*inspection.AssignmentRow, roster *inspection.Roster) {
	byRowKey := make(map[string]*inspection.AssignmentRow, len(rows))
	byLotKey := make(map[string]*inspection.AssignmentRow, len(rows))
	for _, row := range rows {
		byRowKey[rowKey(row)] = row
		if _, ok := byLotKey[row.Lot.Key()]; !ok {
			byLotKey[row.Lot.Key()] = row
		}
	}

	locate := func(lot SeatLot) *inspection.AssignmentRow {
		if row, ok := byRowKey[lot.SourceRowKey]; ok {
			return row
		}
		return byLotKey[lot.LotKey]
	}

	touched := make(map[*inspection.AssignmentRow]bool)

	for _, lot := range chart.UnassignedLots {
		row := locate(lot)
		if row == nil {
			continue
		}
		if col, ok := slotIndex(lot.SourceInspectorCol); ok {
			if row.Slots[col] != "" {
				row.Slots[col] = ""
				touched[row] = true
			}
		} else if row.CrewSize() > 0 {
			row.Slots = [inspection.MaxCrewSlots]string{}
			touched[row] = true
		}
	}

	for _, seat := range chart.Seats {
		for _, lot := range seat.Lots {
			row := locate(lot)
			if row == nil {
				continue
			}
			if col, ok := slotIndex(lot.SourceInspectorCol); ok {
				if row.Slots[col] != seat.ID {
					row.Slots[col] = seat.ID
					touched[row] = true
				}
			} else if !hasMember(row, seat.ID) {
				if row.AddMember(seat.ID) {
					touched[row] = true
				}
			}
		}
	}

	for row := range touched {
		dedupeSlots(row)
		if row.CrewSize() > 0 {
			row.Status = inspection.StatusAssigned
			row.Provisional = false
		} else {
			row.MarkUnassigned(inspection.StatusUnassignedRule, "crew removed on seat chart")
		}
		row.RecomputeDividedTime()
		row.RecomputeTeamInfo(roster)
	}
}

func slotIndex(col string) (int, bool) {
	col = strings.TrimSpace(col)
	if col == "" {
		return 0, false
	}
	n, err := strconv.Atoi(col)
	if err != nil || n < 0 || n >= inspection.MaxCrewSlots {
		return 0, false
	}
	return n, true
}

func hasMember(row *inspection.AssignmentRow, id string) bool {
	for _, s := range row.Slots {
		if s == id {
			return true
		}
	}
	return false
}

// dedupeSlots drops repeated inspector IDs introduced by chart edits, keeping
// the first occurrence.
func dedupeSlots(row *inspection.AssignmentRow) {
	seen := make(map[string]bool)
	for i, s := range row.Slots {
		if s == "" {
			continue
		}
		if seen[s] {
			row.Slots[i] = ""
			continue
		}
		seen[s] = true
	}
}
