package models

import (
	"time"

	"github.com/google/uuid"
)

// StorageLocation is a named slot in the tire hotel.
type StorageLocation struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"type:text;not null;uniqueIndex"`
	Description *string   `gorm:"type:text"`
	Capacity    int       `gorm:"not null;default:1"`
	CreatedAt   time.Time `gorm:"type:timestamptz;default:now()"`
}
