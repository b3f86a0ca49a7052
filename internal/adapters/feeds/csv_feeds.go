package feeds

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
)

const dateLayout = "2006-01-02"

func openFeed(path, name string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s feed: %w", name, err)
	}
	defer f.Close()
	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s feed: %w", name, err)
	}
	return records, nil
}

func feedCell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func feedInt(record []string, idx int) int {
	n, err := strconv.Atoi(feedCell(record, idx))
	if err != nil {
		return 0
	}
	return n
}

func feedDate(record []string, idx int) time.Time {
	d, err := time.Parse(dateLayout, feedCell(record, idx))
	if err != nil {
		return time.Time{}
	}
	return d
}

// LoadInventory parses the inventory feed. Layout (header row then data):
//
//	product_number, product_name, customer, quantity, lot_quantity,
//	instruction_date, machine, current_process_number, current_process_name,
//	secondary_process, process_name, production_lot_id
//
// Unparsable quantities and dates degrade to zero values; the resolver treats
// them as blank source cells rather than aborting the feed.
func LoadInventory(path string) ([]inspection.InventoryLot, error) {
	records, err := openFeed(path, "inventory")
	if err != nil {
		return nil, err
	}
	var lots []inspection.InventoryLot
	for _, record := range skipHeader(records) {
		if feedCell(record, 0) == "" {
			continue
		}
		lots = append(lots, inspection.InventoryLot{
			ProductNumber:        feedCell(record, 0),
			ProductName:          feedCell(record, 1),
			Customer:             feedCell(record, 2),
			Quantity:             feedInt(record, 3),
			LotQuantity:          feedInt(record, 4),
			InstructionDate:      feedDate(record, 5),
			Machine:              feedCell(record, 6),
			CurrentProcessNumber: feedCell(record, 7),
			CurrentProcessName:   feedCell(record, 8),
			SecondaryProcess:     feedCell(record, 9),
			ProcessName:          feedCell(record, 10),
			ProductionLotID:      feedCell(record, 11),
		})
	}
	return lots, nil
}

// LoadCleaningRequests parses the same-day cleaning feed. Layout:
//
//	product_number, product_name, quantity, instruction_date, machine,
//	cleaning_instruction_row, current_process_number, current_process_name,
//	production_lot_id
func LoadCleaningRequests(path string) ([]inspection.CleaningRequest, error) {
	records, err := openFeed(path, "cleaning")
	if err != nil {
		return nil, err
	}
	var reqs []inspection.CleaningRequest
	for _, record := range skipHeader(records) {
		if feedCell(record, 0) == "" {
			continue
		}
		reqs = append(reqs, inspection.CleaningRequest{
			ProductNumber:          feedCell(record, 0),
			ProductName:            feedCell(record, 1),
			Quantity:               feedInt(record, 2),
			InstructionDate:        feedDate(record, 3),
			Machine:                feedCell(record, 4),
			CleaningInstructionRow: feedCell(record, 5),
			CurrentProcessNumber:   feedCell(record, 6),
			CurrentProcessName:     feedCell(record, 7),
			ProductionLotID:        feedCell(record, 8),
		})
	}
	return reqs, nil
}

// LoadAdvanceRegistrations parses the advance-inspection register. Layout:
//
//	product_number, max_lots_per_day, process_filter, fixed_inspectors
//
// where fixed_inspectors separates names with "/" (ASCII or full-width).
func LoadAdvanceRegistrations(path string) ([]inspection.AdvanceRegistration, error) {
	records, err := openFeed(path, "advance")
	if err != nil {
		return nil, err
	}
	var entries []inspection.AdvanceRegistration
	for _, record := range skipHeader(records) {
		if feedCell(record, 0) == "" {
			continue
		}
		entries = append(entries, inspection.AdvanceRegistration{
			ProductNumber:   feedCell(record, 0),
			MaxLotsPerDay:   feedInt(record, 1),
			ProcessFilter:   feedCell(record, 2),
			FixedInspectors: splitNames(feedCell(record, 3)),
		})
	}
	return entries, nil
}

func skipHeader(records [][]string) [][]string {
	if len(records) == 0 {
		return nil
	}
	return records[1:]
}

func splitNames(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '/' || r == '／'
	})
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
