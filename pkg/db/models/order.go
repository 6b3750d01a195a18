package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/awisniewski/tiredepot-backend/pkg/enums"
)

// Order is a parts/tires purchase for a client. Placing an order reserves
// stock; fulfillment commits the reservations all-or-nothing.
type Order struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID    uuid.UUID         `gorm:"type:uuid;not null;index"`
	Status      enums.OrderStatus `gorm:"type:order_status;not null;default:'placed'"`
	TotalAmount decimal.Decimal   `gorm:"type:numeric(12,2);not null;default:0"`
	Notes       *string           `gorm:"type:text"`
	LineItems   []OrderLineItem   `gorm:"foreignKey:OrderID"`
	CreatedAt   time.Time         `gorm:"type:timestamptz;default:now()"`
	UpdatedAt   time.Time         `gorm:"type:timestamptz;autoUpdateTime"`
}
