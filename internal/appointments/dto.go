package appointments

import (
	"time"

	"github.com/google/uuid"

	"github.com/awisniewski/tiredepot-backend/pkg/db/models"
	"github.com/awisniewski/tiredepot-backend/pkg/enums"
)

// ScheduleInput captures the fields required to book a resource window.
type ScheduleInput struct {
	ClientID    uuid.UUID  `json:"client_id" validate:"required"`
	VehicleID   *uuid.UUID `json:"vehicle_id,omitempty"`
	Resource    string     `json:"resource" validate:"required,max=100"`
	ServiceType *string    `json:"service_type,omitempty" validate:"omitempty,max=100"`
	StartAt     time.Time  `json:"start_at" validate:"required"`
	EndAt       time.Time  `json:"end_at" validate:"required"`
	Notes       *string    `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// RescheduleInput moves an existing booking to a new window and optionally a
// new resource.
type RescheduleInput struct {
	Resource string    `json:"resource,omitempty" validate:"omitempty,max=100"`
	StartAt  time.Time `json:"start_at" validate:"required"`
	EndAt    time.Time `json:"end_at" validate:"required"`
}

// Filters describe the inputs supported by the appointment list.
type Filters struct {
	ClientID *uuid.UUID
	Resource string
	Status   *enums.AppointmentStatus
	From     *time.Time
	To       *time.Time
}

// AppointmentList wraps a page of appointments plus the next page cursor.
type AppointmentList struct {
	Appointments []models.Appointment `json:"appointments"`
	NextCursor   string               `json:"next_cursor,omitempty"`
}

// AppointmentEvent is the payload emitted on scheduling lifecycle changes.
type AppointmentEvent struct {
	AppointmentID uuid.UUID               `json:"appointment_id"`
	ClientID      uuid.UUID               `json:"client_id"`
	Resource      string                  `json:"resource"`
	StartAt       time.Time               `json:"start_at"`
	EndAt         time.Time               `json:"end_at"`
	Status        enums.AppointmentStatus `json:"status"`
}
