package masters

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
	"github.com/tmurata/inspection-dispatch/internal/domain/shared"
)

// Loader versions. Bumping a version invalidates every disk-cached snapshot
// of that master, so bump whenever the parsed representation changes shape.
const (
	productLoaderVersion   = 1
	inspectorLoaderVersion = 1
	skillLoaderVersion     = 1
	vacationLoaderVersion  = 1
)

const dateLayout = "2006-01-02"

// newProductTeamMark flags a new-product team member in the inspector master.
const newProductTeamMark = "★"

func readCSV(r io.Reader, name string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // master sheets carry ragged trailing columns
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return records, nil
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// ParseProductRates parses the product master. Layout:
//
//	product_number, process_number, seconds_per_unit
//
// with a single header row. Rows with an unparsable rate are rejected with
// their row number so the sheet owner can fix them.
func ParseProductRates(r io.Reader) ([]inspection.ProductRate, error) {
	records, err := readCSV(r, "product master")
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("product master: missing header row")
	}

	var rates []inspection.ProductRate
	for i, record := range records[1:] {
		rowNum := i + 2
		product := cell(record, 0)
		if product == "" {
			continue
		}
		rateStr := cell(record, 2)
		rate, err := strconv.ParseFloat(rateStr, 64)
		if err != nil {
			return nil, fmt.Errorf("product master row %d: invalid seconds_per_unit %q: %w", rowNum, rateStr, err)
		}
		rates = append(rates, inspection.ProductRate{
			ProductNumber:  product,
			ProcessNumber:  cell(record, 1),
			SecondsPerUnit: rate,
		})
	}
	return rates, nil
}

// ParseInspectors parses the inspector master. The sheet carries a title row,
// then the header on row 2, then one row per inspector:
//
//	id, name, shift_start, shift_end, _, _, _, new_product_team
//
// where new_product_team holds the star mark for flagged members. Shift times
// are HH:MM.
func ParseInspectors(r io.Reader) ([]inspection.Inspector, error) {
	records, err := readCSV(r, "inspector master")
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("inspector master: missing header row (expected on row 2)")
	}

	var inspectors []inspection.Inspector
	for i, record := range records[2:] {
		rowNum := i + 3
		id := cell(record, 0)
		if id == "" {
			continue
		}
		start, err := shared.ParseMinuteOfDay(cell(record, 2))
		if err != nil {
			return nil, fmt.Errorf("inspector master row %d: invalid shift_start: %w", rowNum, err)
		}
		end, err := shared.ParseMinuteOfDay(cell(record, 3))
		if err != nil {
			return nil, fmt.Errorf("inspector master row %d: invalid shift_end: %w", rowNum, err)
		}
		inspectors = append(inspectors, inspection.Inspector{
			ID:             id,
			Name:           cell(record, 1),
			ShiftStart:     start,
			ShiftEnd:       end,
			NewProductTeam: cell(record, 7) == newProductTeamMark,
		})
	}
	return inspectors, nil
}

// ParseSkillRows parses the skill matrix. The header names the first two
// columns product_number and process_number; every remaining column header is
// an inspector ID. Cells hold grades 1..3, blank meaning unqualified.
func ParseSkillRows(r io.Reader) ([]inspection.SkillRow, error) {
	records, err := readCSV(r, "skill matrix")
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("skill matrix: missing header row")
	}

	header := records[0]
	if len(header) < 3 {
		return nil, fmt.Errorf("skill matrix: header needs product, process and at least one inspector column")
	}
	inspectorCols := make(map[int]string) // column index -> inspector ID
	for col := 2; col < len(header); col++ {
		if id := strings.TrimSpace(header[col]); id != "" {
			inspectorCols[col] = id
		}
	}

	var rows []inspection.SkillRow
	for i, record := range records[1:] {
		rowNum := i + 2
		product := cell(record, 0)
		if product == "" {
			continue
		}
		levels := make(map[string]inspection.SkillLevel)
		for col, id := range inspectorCols {
			grade := cell(record, col)
			if grade == "" {
				continue
			}
			n, err := strconv.Atoi(grade)
			if err != nil || n < 1 || n > 3 {
				return nil, fmt.Errorf("skill matrix row %d: invalid grade %q for inspector %s", rowNum, grade, id)
			}
			levels[id] = inspection.SkillLevel(n)
		}
		rows = append(rows, inspection.SkillRow{
			ProductNumber: product,
			ProcessNumber: cell(record, 1),
			Levels:        levels,
		})
	}
	return rows, nil
}

// ParseVacationEntries parses the vacation sheet:
//
//	inspector, date, absence_code
//
// with a single header row. Any non-empty code marks the inspector absent for
// the whole day; rows with blank codes are planning leftovers and are kept
// out by the calendar itself.
func ParseVacationEntries(r io.Reader) ([]inspection.VacationEntry, error) {
	records, err := readCSV(r, "vacation sheet")
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("vacation sheet: missing header row")
	}

	var entries []inspection.VacationEntry
	for i, record := range records[1:] {
		rowNum := i + 2
		who := cell(record, 0)
		if who == "" {
			continue
		}
		dateStr := cell(record, 1)
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("vacation sheet row %d: invalid date %q: %w", rowNum, dateStr, err)
		}
		entries = append(entries, inspection.VacationEntry{
			InspectorIDOrName: who,
			Date:              date,
			AbsenceCode:       cell(record, 2),
		})
	}
	return entries, nil
}
