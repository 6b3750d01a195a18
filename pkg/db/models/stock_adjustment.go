package models

import (
	"time"

	"github.com/google/uuid"
)

// StockAdjustment is the append-only audit record written alongside every
// successful ledger mutation. Report collaborators read these rows directly.
type StockAdjustment struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StockItemID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Delta        int       `gorm:"not null"`
	Reason       string    `gorm:"type:text;not null"`
	ResultingQty int       `gorm:"column:resulting_qty;not null"`
	CreatedAt    time.Time `gorm:"type:timestamptz;default:now()"`
}
