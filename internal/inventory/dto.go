package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/awisniewski/tiredepot-backend/pkg/db/models"
	"github.com/awisniewski/tiredepot-backend/pkg/enums"
)

// CreateItemInput captures the fields required to register a stock item.
type CreateItemInput struct {
	Category         enums.StockCategory `json:"category" validate:"required"`
	Name             string              `json:"name" validate:"required,max=200"`
	Size             *string             `json:"size,omitempty" validate:"omitempty,max=50"`
	QuantityOnHand   int                 `json:"quantity_on_hand" validate:"gte=0"`
	ReorderThreshold int                 `json:"reorder_threshold" validate:"gte=0"`
	Location         *string             `json:"location,omitempty" validate:"omitempty,max=100"`
	UnitPrice        decimal.Decimal     `json:"unit_price"`
}

// UpdateItemInput carries the mutable stock item attributes. Quantities move
// through Adjust, never through here.
type UpdateItemInput struct {
	Name             *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	Size             *string          `json:"size,omitempty" validate:"omitempty,max=50"`
	ReorderThreshold *int             `json:"reorder_threshold,omitempty" validate:"omitempty,gte=0"`
	Location         *string          `json:"location,omitempty" validate:"omitempty,max=100"`
	UnitPrice        *decimal.Decimal `json:"unit_price,omitempty"`
}

// AdjustInput describes a manual stock movement.
type AdjustInput struct {
	ItemID uuid.UUID `json:"item_id" validate:"required"`
	Delta  int       `json:"delta" validate:"required"`
	Reason string    `json:"reason" validate:"required,max=200"`
}

// ItemFilters describe the inputs supported by the stock item list.
type ItemFilters struct {
	Category *enums.StockCategory
	Query    string
}

// ItemList wraps a page of stock items plus the next page cursor.
type ItemList struct {
	Items      []models.StockItem `json:"items"`
	NextCursor string             `json:"next_cursor,omitempty"`
}
