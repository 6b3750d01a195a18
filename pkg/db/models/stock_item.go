package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/awisniewski/tiredepot-backend/pkg/enums"
)

// StockItem tracks on-hand and reserved counts for one tire or part SKU.
// QuantityOnHand never goes negative; ReservedQty counts stock promised to
// placed orders, so available-to-promise = QuantityOnHand - ReservedQty.
type StockItem struct {
	ID               uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Category         enums.StockCategory `gorm:"type:stock_category;not null"`
	Name             string              `gorm:"type:text;not null"`
	Size             *string             `gorm:"type:text"`
	QuantityOnHand   int                 `gorm:"column:quantity_on_hand;not null;default:0"`
	ReservedQty      int                 `gorm:"column:reserved_qty;not null;default:0"`
	ReorderThreshold int                 `gorm:"column:reorder_threshold;not null;default:1"`
	Location         *string             `gorm:"type:text"`
	UnitPrice        decimal.Decimal     `gorm:"type:numeric(10,2);not null;default:0"`
	CreatedAt        time.Time           `gorm:"type:timestamptz;default:now()"`
	UpdatedAt        time.Time           `gorm:"type:timestamptz;autoUpdateTime"`
}

// AvailableToPromise is the quantity unreserved orders can still claim.
func (s StockItem) AvailableToPromise() int {
	return s.QuantityOnHand - s.ReservedQty
}

// IsLowStock reports whether the item sits at or below its reorder threshold.
func (s StockItem) IsLowStock() bool {
	return s.QuantityOnHand <= s.ReorderThreshold
}
