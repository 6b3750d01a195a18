package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/awisniewski/tiredepot-backend/pkg/enums"
)

// Notification stores one in-app alert row produced by the trigger sweep.
// SubjectID points at the aggregate (deposit, stock item, appointment) the
// alert is about; the pair (type, subject) is deduplicated per sweep window.
type Notification struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Type      enums.AlertType `gorm:"type:alert_type;not null"`
	SubjectID uuid.UUID       `gorm:"column:subject_id;type:uuid;not null;index"`
	Title     string          `gorm:"type:text;not null"`
	Message   string          `gorm:"type:text;not null"`
	ReadAt    *time.Time      `gorm:"type:timestamptz"`
	CreatedAt time.Time       `gorm:"type:timestamptz;default:now()"`
}
