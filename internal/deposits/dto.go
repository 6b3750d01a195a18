package deposits

import (
	"time"

	"github.com/google/uuid"

	"github.com/awisniewski/tiredepot-backend/pkg/db/models"
	"github.com/awisniewski/tiredepot-backend/pkg/enums"
)

// IntakeInput captures the fields recorded when tires enter storage.
type IntakeInput struct {
	ClientID uuid.UUID `json:"client_id" validate:"required"`
	TireSize string    `json:"tire_size" validate:"required,max=50"`
	TireType string    `json:"tire_type" validate:"required,max=50"`
	Quantity int       `json:"quantity" validate:"omitempty,gt=0"`
	Location string    `json:"location" validate:"required,max=100"`
	DueAt    time.Time `json:"due_at" validate:"required"`
	Notes    *string   `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// ReleaseInput optionally backdates the handover timestamp.
type ReleaseInput struct {
	ReleasedAt *time.Time `json:"released_at,omitempty"`
}

// Filters describe the inputs supported by the deposit list.
type Filters struct {
	ClientID *uuid.UUID
	Status   *enums.DepositStatus
	Location string
}

// DepositList wraps a page of deposits plus the next page cursor.
type DepositList struct {
	Deposits   []models.Deposit `json:"deposits"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// CreateLocationInput registers a named storage slot.
type CreateLocationInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Capacity    int     `json:"capacity" validate:"omitempty,gt=0"`
}

// DepositStatusEvent is the payload emitted on every lifecycle change.
type DepositStatusEvent struct {
	DepositID uuid.UUID           `json:"deposit_id"`
	ClientID  uuid.UUID           `json:"client_id"`
	Location  string              `json:"location"`
	Status    enums.DepositStatus `json:"status"`
	DueAt     time.Time           `json:"due_at"`
}
