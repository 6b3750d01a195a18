package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/awisniewski/tiredepot-backend/pkg/enums"
)

// Appointment books a client into one shop resource (bay/lift) for a
// closed-open [StartAt, EndAt) window.
type Appointment struct {
	ID          uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID    uuid.UUID               `gorm:"type:uuid;not null;index"`
	VehicleID   *uuid.UUID              `gorm:"type:uuid"`
	Resource    string                  `gorm:"type:text;not null;index"`
	ServiceType *string                 `gorm:"type:text"`
	StartAt     time.Time               `gorm:"column:start_at;type:timestamptz;not null"`
	EndAt       time.Time               `gorm:"column:end_at;type:timestamptz;not null"`
	Status      enums.AppointmentStatus `gorm:"type:appointment_status;not null;default:'scheduled'"`
	Notes       *string                 `gorm:"type:text"`
	CreatedAt   time.Time               `gorm:"type:timestamptz;default:now()"`
	UpdatedAt   time.Time               `gorm:"type:timestamptz;autoUpdateTime"`
}

// Overlaps reports whether the closed-open windows of both appointments clash.
func (a Appointment) Overlaps(start, end time.Time) bool {
	return a.StartAt.Before(end) && start.Before(a.EndAt)
}
