package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/awisniewski/tiredepot-backend/pkg/db/models"
	"github.com/awisniewski/tiredepot-backend/pkg/enums"
)

// LineInput names one stock item and quantity inside a new order.
type LineInput struct {
	StockItemID uuid.UUID `json:"stock_item_id" validate:"required"`
	Quantity    int       `json:"quantity" validate:"required,gt=0"`
}

// PlaceInput captures the fields required to place an order.
type PlaceInput struct {
	ClientID uuid.UUID   `json:"client_id" validate:"required"`
	Lines    []LineInput `json:"lines" validate:"required,min=1,dive"`
	Notes    *string     `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// Filters describe the inputs supported by the order list.
type Filters struct {
	ClientID *uuid.UUID
	Status   *enums.OrderStatus
	DateFrom *time.Time
	DateTo   *time.Time
}

// OrderList wraps a page of orders plus the next page cursor.
type OrderList struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// OrderEvent is the payload emitted on order lifecycle changes.
type OrderEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	ClientID    uuid.UUID         `json:"client_id"`
	Status      enums.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	LineCount   int               `json:"line_count"`
}
