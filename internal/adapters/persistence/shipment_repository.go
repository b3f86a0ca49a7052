package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
)

// GormShipmentRepository reads the shipment aggregate maintained by the
// planning system. Shortage quantities are taken as-is, never recomputed.
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GORM shipment repository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// FindByDateRange retrieves shipment rows with shipping dates inside
// [from, to], ordered by shipping date then product number
func (r *GormShipmentRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]inspection.ShipmentRow, error) {
	var models []ShipmentRowModel
	result := r.db.WithContext(ctx).
		Where("shipping_date >= ? AND shipping_date <= ?", from, to).
		Order("shipping_date ASC, product_number ASC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load shipment aggregate: %w", result.Error)
	}

	rows := make([]inspection.ShipmentRow, 0, len(models))
	for _, m := range models {
		rows = append(rows, inspection.ShipmentRow{
			ProductNumber:          m.ProductNumber,
			ProductName:            m.ProductName,
			Customer:               m.Customer,
			ShippingDate:           m.ShippingDate,
			ShippingQuantity:       m.ShippingQuantity,
			StockQuantity:          m.StockQuantity,
			ShortageQuantity:       m.ShortageQuantity,
			PackagedCompletedTotal: m.PackagedCompletedTotal,
		})
	}
	return rows, nil
}
