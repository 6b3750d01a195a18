package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Client is the aggregate root every deposit, appointment and order refers to.
// Clients are soft-deleted so historical records keep resolving.
type Client struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string          `gorm:"type:text;not null"`
	Phone     *string         `gorm:"type:text"`
	Email     *string         `gorm:"type:text"`
	Discount  decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	Notes     *string         `gorm:"type:text"`
	CreatedAt time.Time       `gorm:"type:timestamptz;default:now()"`
	UpdatedAt time.Time       `gorm:"type:timestamptz;autoUpdateTime"`
	DeletedAt gorm.DeletedAt  `gorm:"index"`
}
