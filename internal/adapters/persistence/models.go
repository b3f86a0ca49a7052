package persistence

import (
	"time"
)

// RunModel represents the dispatch_runs table
type RunModel struct {
	RunID       string    `gorm:"column:run_id;primaryKey"`
	RunDate     string    `gorm:"column:run_date;not null;index"` // ISO date string
	StartedAt   time.Time `gorm:"column:started_at;not null"`
	FinishedAt  time.Time `gorm:"column:finished_at;not null"`
	Diagnostics string    `gorm:"column:diagnostics;type:text"` // JSON array as text
}

func (RunModel) TableName() string {
	return "dispatch_runs"
}

// AssignmentRowModel represents the dispatch_run_rows table
type AssignmentRowModel struct {
	ID                 int       `gorm:"column:id;primaryKey;autoIncrement"`
	RunID              string    `gorm:"column:run_id;not null;index;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Run                *RunModel `gorm:"foreignKey:RunID;references:RunID"`
	RowIndex           int       `gorm:"column:row_index;not null"`
	ShippingDate       string    `gorm:"column:shipping_date;not null"` // raw tag or ISO date
	ProductNumber      string    `gorm:"column:product_number;not null"`
	ProductName        string    `gorm:"column:product_name"`
	Customer           string    `gorm:"column:customer"`
	ProductionLotID    string    `gorm:"column:production_lot_id"`
	LotQuantity        int       `gorm:"column:lot_quantity;not null"`
	InstructionDate    string    `gorm:"column:instruction_date"` // ISO date or empty
	Machine            string    `gorm:"column:machine"`
	CurrentProcessName string    `gorm:"column:current_process_name"`
	Provenance         string    `gorm:"column:provenance;not null"`
	SecondsPerUnit     float64   `gorm:"column:seconds_per_unit"`
	InspectionTime     float64   `gorm:"column:inspection_time"`
	CrewSize           int       `gorm:"column:crew_size"`
	DividedTime        float64   `gorm:"column:divided_time"`
	Inspectors         string    `gorm:"column:inspectors;type:text"` // JSON array as text
	TeamInfo           string    `gorm:"column:team_info"`
	Status             string    `gorm:"column:status;not null"`
	Diagnostics        string    `gorm:"column:diagnostics;type:text"` // JSON array as text
}

func (AssignmentRowModel) TableName() string {
	return "dispatch_run_rows"
}

// NonInspectionLotModel represents the dispatch_non_inspection_lots table
type NonInspectionLotModel struct {
	ID                 int       `gorm:"column:id;primaryKey;autoIncrement"`
	RunID              string    `gorm:"column:run_id;not null;index;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Run                *RunModel `gorm:"foreignKey:RunID;references:RunID"`
	ShippingDate       string    `gorm:"column:shipping_date"`
	ProductNumber      string    `gorm:"column:product_number;not null"`
	ProductionLotID    string    `gorm:"column:production_lot_id"`
	InstructionDate    string    `gorm:"column:instruction_date"`
	CurrentProcessName string    `gorm:"column:current_process_name"`
}

func (NonInspectionLotModel) TableName() string {
	return "dispatch_non_inspection_lots"
}

// ShipmentRowModel represents the shipment_aggregate table fed by the
// planning system. The dispatcher only reads it.
type ShipmentRowModel struct {
	ID                     int       `gorm:"column:id;primaryKey;autoIncrement"`
	ProductNumber          string    `gorm:"column:product_number;not null;index"`
	ProductName            string    `gorm:"column:product_name"`
	Customer               string    `gorm:"column:customer"`
	ShippingDate           time.Time `gorm:"column:shipping_date;not null;index"`
	ShippingQuantity       int       `gorm:"column:shipping_quantity;not null"`
	StockQuantity          int       `gorm:"column:stock_quantity;not null"`
	ShortageQuantity       int       `gorm:"column:shortage_quantity;not null"`
	PackagedCompletedTotal int       `gorm:"column:packaged_completed_total;not null"`
}

func (ShipmentRowModel) TableName() string {
	return "shipment_aggregate"
}

// AllModels returns every model for migration
func AllModels() []interface{} {
	return []interface{}{
		&RunModel{},
		&AssignmentRowModel{},
		&NonInspectionLotModel{},
		&ShipmentRowModel{},
	}
}
