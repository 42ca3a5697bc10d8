package model

import "time"

// Availability is a recorded power state change at a place. Rows are only ever
// appended, and two consecutive rows of one place never share IsAvailable.
type Availability struct {
	PlaceID     string    `gorm:"primaryKey;size:64"`
	CreatedAt   time.Time `gorm:"primaryKey;not null"` // moment of change, UTC
	IsAvailable bool      `gorm:"not null"`
}
