package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/awisniewski/tiredepot-backend/pkg/enums"
)

// Deposit is a set of customer tires held in shop storage pending pickup.
// Among deposits with status "stored" the location is unique; released and
// forfeited deposits keep the column as history but no longer occupy it.
type Deposit struct {
	ID         uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID   uuid.UUID           `gorm:"type:uuid;not null;index"`
	TireSize   string              `gorm:"type:text;not null"`
	TireType   string              `gorm:"type:text;not null"`
	Quantity   int                 `gorm:"not null;default:4"`
	Location   string              `gorm:"type:text;not null;index"`
	Status     enums.DepositStatus `gorm:"type:deposit_status;not null;default:'stored'"`
	IntakeAt   time.Time           `gorm:"column:intake_at;type:timestamptz;not null"`
	DueAt      time.Time           `gorm:"column:due_at;type:timestamptz;not null"`
	ReleasedAt *time.Time          `gorm:"column:released_at;type:timestamptz"`
	Notes      *string             `gorm:"type:text"`
	CreatedAt  time.Time           `gorm:"type:timestamptz;default:now()"`
	UpdatedAt  time.Time           `gorm:"type:timestamptz;autoUpdateTime"`
}

// IsActive reports whether the deposit still occupies shop storage.
func (d Deposit) IsActive() bool {
	return !d.Status.IsTerminal()
}

// IsOverdue reports whether the deposit is past due at the given instant.
// Terminal deposits are never overdue. Overdue-ness is monotonic: once true
// for some now, it stays true for any later now while the deposit is active.
func (d Deposit) IsOverdue(now time.Time) bool {
	if d.Status.IsTerminal() {
		return false
	}
	return now.After(d.DueAt)
}
