package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
)

// GormRunRepository implements RunRepository using GORM
type GormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a new GORM run repository
func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// SaveRun persists the run header, every assignment row and the
// non-inspection side list in a single transaction
func (r *GormRunRepository) SaveRun(ctx context.Context, run *inspection.RunRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		header := &RunModel{
			RunID:       run.RunID,
			RunDate:     run.RunDate.Format("2006-01-02"),
			StartedAt:   run.StartedAt,
			FinishedAt:  run.FinishedAt,
			Diagnostics: encodeStrings(run.Diagnostics),
		}
		if err := tx.Create(header).Error; err != nil {
			return fmt.Errorf("failed to create run: %w", err)
		}

		for _, row := range run.Rows {
			model, err := r.rowToModel(run.RunID, row)
			if err != nil {
				return err
			}
			if err := tx.Create(model).Error; err != nil {
				return fmt.Errorf("failed to create run row %d: %w", row.Index, err)
			}
		}

		for _, lot := range run.NonInspection {
			model := &NonInspectionLotModel{
				RunID:              run.RunID,
				ShippingDate:       lot.ShippingDate.String(),
				ProductNumber:      lot.ProductNumber,
				ProductionLotID:    lot.ProductionLotID,
				InstructionDate:    formatDate(lot.InstructionDate),
				CurrentProcessName: lot.CurrentProcessName,
			}
			if err := tx.Create(model).Error; err != nil {
				return fmt.Errorf("failed to create non-inspection lot: %w", err)
			}
		}
		return nil
	})
}

// FindRun retrieves a stored run with its rows and side list
func (r *GormRunRepository) FindRun(ctx context.Context, runID string) (*inspection.RunRecord, error) {
	var header RunModel
	result := r.db.WithContext(ctx).Where("run_id = ?", runID).First(&header)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find run: %w", result.Error)
	}

	var rowModels []AssignmentRowModel
	if err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("row_index ASC").
		Find(&rowModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load run rows: %w", err)
	}

	var sideModels []NonInspectionLotModel
	if err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("id ASC").
		Find(&sideModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load non-inspection lots: %w", err)
	}

	return r.modelToRun(&header, rowModels, sideModels)
}

// ListRunsByDate retrieves run headers for a calendar date, newest first
func (r *GormRunRepository) ListRunsByDate(ctx context.Context, date time.Time) ([]*inspection.RunRecord, error) {
	var headers []RunModel
	result := r.db.WithContext(ctx).
		Where("run_date = ?", date.Format("2006-01-02")).
		Order("started_at DESC").
		Find(&headers)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list runs: %w", result.Error)
	}

	runs := make([]*inspection.RunRecord, 0, len(headers))
	for i := range headers {
		run, err := r.modelToRun(&headers[i], nil, nil)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func (r *GormRunRepository) rowToModel(runID string, row *inspection.AssignmentRow) (*AssignmentRowModel, error) {
	inspectors, err := json.Marshal(row.Members())
	if err != nil {
		return nil, fmt.Errorf("failed to encode inspectors: %w", err)
	}
	return &AssignmentRowModel{
		RunID:              runID,
		RowIndex:           row.Index,
		ShippingDate:       row.Lot.ShippingDate.String(),
		ProductNumber:      row.Lot.ProductNumber,
		ProductName:        row.Lot.ProductName,
		Customer:           row.Lot.Customer,
		ProductionLotID:    row.Lot.ProductionLotID,
		LotQuantity:        row.Lot.LotQuantity,
		InstructionDate:    formatDate(row.Lot.InstructionDate),
		Machine:            row.Lot.Machine,
		CurrentProcessName: row.Lot.CurrentProcessName,
		Provenance:         string(row.Lot.Provenance),
		SecondsPerUnit:     row.SecondsPerUnit,
		InspectionTime:     row.InspectionTime,
		CrewSize:           row.CrewSize(),
		DividedTime:        row.DividedTime,
		Inspectors:         string(inspectors),
		TeamInfo:           row.TeamInfo,
		Status:             string(row.Status),
		Diagnostics:        encodeStrings(row.Diagnostics),
	}, nil
}

func (r *GormRunRepository) modelToRun(header *RunModel, rowModels []AssignmentRowModel, sideModels []NonInspectionLotModel) (*inspection.RunRecord, error) {
	runDate, err := time.Parse("2006-01-02", header.RunDate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run date %q: %w", header.RunDate, err)
	}

	run := &inspection.RunRecord{
		RunID:       header.RunID,
		RunDate:     runDate,
		StartedAt:   header.StartedAt,
		FinishedAt:  header.FinishedAt,
		Diagnostics: decodeStrings(header.Diagnostics),
	}

	for i := range rowModels {
		row, err := r.modelToRow(&rowModels[i])
		if err != nil {
			return nil, err
		}
		run.Rows = append(run.Rows, row)
	}

	for _, m := range sideModels {
		run.NonInspection = append(run.NonInspection, inspection.NonInspectionLot{
			ShippingDate:       inspection.ParseShippingDate(m.ShippingDate),
			ProductNumber:      m.ProductNumber,
			ProductionLotID:    m.ProductionLotID,
			InstructionDate:    parseDate(m.InstructionDate),
			CurrentProcessName: m.CurrentProcessName,
		})
	}
	return run, nil
}

func (r *GormRunRepository) modelToRow(m *AssignmentRowModel) (*inspection.AssignmentRow, error) {
	var inspectors []string
	if m.Inspectors != "" {
		if err := json.Unmarshal([]byte(m.Inspectors), &inspectors); err != nil {
			return nil, fmt.Errorf("failed to decode inspectors for row %d: %w", m.RowIndex, err)
		}
	}

	row := &inspection.AssignmentRow{
		Index: m.RowIndex,
		Lot: inspection.Lot{
			ProductionLotID:    m.ProductionLotID,
			ProductNumber:      m.ProductNumber,
			ProductName:        m.ProductName,
			Customer:           m.Customer,
			ShippingDate:       inspection.ParseShippingDate(m.ShippingDate),
			LotQuantity:        m.LotQuantity,
			InstructionDate:    parseDate(m.InstructionDate),
			Machine:            m.Machine,
			CurrentProcessName: m.CurrentProcessName,
			Provenance:         inspection.Provenance(m.Provenance),
		},
		SecondsPerUnit: m.SecondsPerUnit,
		InspectionTime: m.InspectionTime,
		DividedTime:    m.DividedTime,
		TeamInfo:       m.TeamInfo,
		Status:         inspection.AssignabilityStatus(m.Status),
		Diagnostics:    decodeStrings(m.Diagnostics),
	}
	row.RequiredCrewSize = m.CrewSize
	row.SetCrew(inspectors)
	return row, nil
}

func encodeStrings(values []string) string {
	if len(values) == 0 {
		return ""
	}
	data, err := json.Marshal(values)
	if err != nil {
		return ""
	}
	return string(data)
}

func decodeStrings(encoded string) []string {
	if encoded == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(encoded), &values); err != nil {
		return nil
	}
	return values
}

func formatDate(d time.Time) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return d
}

var _ inspection.RunRepository = (*GormRunRepository)(nil)
