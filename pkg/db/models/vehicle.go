package models

import (
	"time"

	"github.com/google/uuid"
)

// Vehicle belongs to a client and can be attached to appointments.
type Vehicle struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID           uuid.UUID `gorm:"type:uuid;not null;index"`
	Make               string    `gorm:"type:text;not null"`
	Model              string    `gorm:"type:text;not null"`
	Year               *int      `gorm:"type:int"`
	RegistrationNumber *string   `gorm:"type:text;uniqueIndex"`
	TireSize           *string   `gorm:"type:text"`
	CreatedAt          time.Time `gorm:"type:timestamptz;default:now()"`
}
