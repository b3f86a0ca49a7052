package seating_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmurata/inspection-dispatch/internal/adapters/seating"
	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
)

func chartRow(index int, lotID, product string, inspectionTime float64, crew []string) *inspection.AssignmentRow {
	row := &inspection.AssignmentRow{
		Index: index,
		Lot: inspection.Lot{
			ProductionLotID: lotID,
			ProductNumber:   product,
			ShippingDate:    inspection.ParseShippingDate("2025-06-16"),
		},
		InspectionTime:   inspectionTime,
		RequiredCrewSize: len(crew),
		Status:           inspection.StatusAssigned,
	}
	if len(crew) == 0 {
		row.Status = inspection.StatusUnassignedCapacity
	} else {
		row.SetCrew(crew)
		row.DividedTime = inspectionTime / float64(len(crew))
	}
	return row
}

func testRoster() *inspection.Roster {
	return inspection.NewRoster([]inspection.Inspector{
		{ID: "A", Name: "Aoki"},
		{ID: "B", Name: "Banda"},
		{ID: "C", Name: "Chiba"},
	})
}

func snapshotRows(rows []*inspection.AssignmentRow) []inspection.AssignmentRow {
	out := make([]inspection.AssignmentRow, len(rows))
	for i, r := range rows {
		out[i] = *r
	}
	return out
}

func TestChart_PublishPlacesLotsOnCrewSeats(t *testing.T) {
	roster := testRoster()
	rows := []*inspection.AssignmentRow{
		chartRow(0, "L1", "P", 6.0, []string{"A", "B"}),
		chartRow(1, "L2", "Q", 2.0, nil),
	}

	chart := seating.Publish(rows, roster, "2025-06-16")

	require.Len(t, chart.Seats, 3)
	assert.NotEmpty(t, chart.ChartID)
	assert.Equal(t, "2025-06-16", chart.RunDate)

	var seatA, seatC seating.Seat
	for _, s := range chart.Seats {
		switch s.ID {
		case "A":
			seatA = s
		case "C":
			seatC = s
		}
	}
	require.Len(t, seatA.Lots, 1)
	assert.Equal(t, "L1", seatA.Lots[0].LotID)
	assert.Equal(t, "0", seatA.Lots[0].SourceInspectorCol)
	assert.Empty(t, seatC.Lots)

	require.Len(t, chart.UnassignedLots, 1)
	assert.Equal(t, "L2", chart.UnassignedLots[0].LotID)
	assert.Empty(t, chart.UnassignedLots[0].SourceInspectorCol)
}

func TestChart_UneditedRoundTripIsNoOp(t *testing.T) {
	roster := testRoster()
	rows := []*inspection.AssignmentRow{
		chartRow(0, "L1", "P", 6.0, []string{"A", "B"}),
		chartRow(1, "L2", "P", 3.0, []string{"C"}),
		chartRow(2, "L3", "Q", 2.0, nil),
	}
	for _, row := range rows {
		row.RecomputeTeamInfo(roster)
	}
	before := snapshotRows(rows)

	chart := seating.Publish(rows, roster, "2025-06-16")
	seating.Ingest(chart, rows, roster)

	assert.Equal(t, before, snapshotRows(rows))
}

func TestChart_IngestAppliesSeatEdit(t *testing.T) {
	roster := testRoster()
	rows := []*inspection.AssignmentRow{
		chartRow(0, "L1", "P", 6.0, []string{"A", "B"}),
	}

	chart := seating.Publish(rows, roster, "2025-06-16")

	// Move B's half of L1 onto C's seat.
	var moved seating.SeatLot
	for si, seat := range chart.Seats {
		if seat.ID != "B" {
			continue
		}
		require.Len(t, seat.Lots, 1)
		moved = seat.Lots[0]
		chart.Seats[si].Lots = nil
	}
	for si, seat := range chart.Seats {
		if seat.ID == "C" {
			chart.Seats[si].Lots = append(chart.Seats[si].Lots, moved)
		}
	}

	seating.Ingest(chart, rows, roster)

	assert.Equal(t, []string{"A", "C"}, rows[0].Members())
	assert.Equal(t, inspection.StatusAssigned, rows[0].Status)
	assert.InDelta(t, 3.0, rows[0].DividedTime, 1e-9)
	assert.Equal(t, "Aoki / Chiba", rows[0].TeamInfo)
}

func TestChart_IngestUnassignedLotClearsSlots(t *testing.T) {
	roster := testRoster()
	rows := []*inspection.AssignmentRow{
		chartRow(0, "L1", "P", 6.0, []string{"A", "B"}),
	}

	chart := seating.Publish(rows, roster, "2025-06-16")

	// Pull both halves of L1 off their seats into the unassigned pool; the
	// floor removed the whole crew, so the column is blanked out.
	var pulled seating.SeatLot
	for si, seat := range chart.Seats {
		if len(seat.Lots) > 0 {
			pulled = seat.Lots[0]
			chart.Seats[si].Lots = nil
		}
	}
	pulled.SourceInspectorCol = ""
	chart.UnassignedLots = append(chart.UnassignedLots, pulled)

	seating.Ingest(chart, rows, roster)

	assert.Equal(t, inspection.StatusUnassignedRule, rows[0].Status)
	assert.Empty(t, rows[0].Members())
	assert.Zero(t, rows[0].DividedTime)
}

func TestChart_WriteAndReadChart(t *testing.T) {
	roster := testRoster()
	rows := []*inspection.AssignmentRow{
		chartRow(0, "L1", "P", 6.0, []string{"A", "B"}),
	}
	chart := seating.Publish(rows, roster, "2025-06-16")

	path := filepath.Join(t.TempDir(), "chart.json")
	require.NoError(t, seating.WriteChart(path, chart))

	loaded, err := seating.ReadChart(path)
	require.NoError(t, err)
	assert.Equal(t, chart, loaded)
}
