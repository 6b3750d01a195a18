package clients

import (
	"github.com/shopspring/decimal"

	"github.com/awisniewski/tiredepot-backend/pkg/db/models"
)

// CreateInput captures the fields required to register a client.
type CreateInput struct {
	Name     string           `json:"name" validate:"required,max=200"`
	Phone    *string          `json:"phone,omitempty" validate:"omitempty,max=30"`
	Email    *string          `json:"email,omitempty" validate:"omitempty,email"`
	Discount *decimal.Decimal `json:"discount,omitempty"`
	Notes    *string          `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// UpdateInput carries the mutable client attributes.
type UpdateInput struct {
	Name     *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	Phone    *string          `json:"phone,omitempty" validate:"omitempty,max=30"`
	Email    *string          `json:"email,omitempty" validate:"omitempty,email"`
	Discount *decimal.Decimal `json:"discount,omitempty"`
	Notes    *string          `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// ClientList wraps a page of clients plus the next page cursor.
type ClientList struct {
	Clients    []models.Client `json:"clients"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// AddVehicleInput registers a vehicle under a client.
type AddVehicleInput struct {
	Make               string  `json:"make" validate:"required,max=100"`
	Model              string  `json:"model" validate:"required,max=100"`
	Year               *int    `json:"year,omitempty" validate:"omitempty,gte=1900"`
	RegistrationNumber *string `json:"registration_number,omitempty" validate:"omitempty,max=20"`
	TireSize           *string `json:"tire_size,omitempty" validate:"omitempty,max=50"`
}
