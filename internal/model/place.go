package model

import (
	"fmt"
	"time"
)

// DefaultUnavailabilityThresholdMinutes is used when a place has no threshold configured.
const DefaultUnavailabilityThresholdMinutes = 7

// CheckType selects how a place's host is probed.
type CheckType string

const (
	CheckTypePing CheckType = "ping"
	CheckTypeHTTP CheckType = "http"
)

// Place is a monitored physical location.
type Place struct {
	ID                             string    `gorm:"primaryKey;size:64"`
	Name                           string    `gorm:"size:256;not null"`
	Timezone                       string    `gorm:"size:64;not null"`
	Host                           string    `gorm:"size:256;not null"`
	CheckType                      CheckType `gorm:"size:16;not null;default:ping"`
	UnavailabilityThresholdMinutes *int      `gorm:"column:unavailability_threshold_minutes"`
	DisableMonthlyStats            bool      `gorm:"not null;default:false"`
	ScheduleGroupID                *int      `gorm:"index"`
	IsDisabled                     bool      `gorm:"not null;default:false"`
	CreatedAt                      time.Time `gorm:"not null"`
}

// Threshold is the probe budget after which the place counts as unavailable.
func (p Place) Threshold() time.Duration {
	minutes := DefaultUnavailabilityThresholdMinutes
	if p.UnavailabilityThresholdMinutes != nil && *p.UnavailabilityThresholdMinutes > 0 {
		minutes = *p.UnavailabilityThresholdMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// Location loads the place's IANA timezone.
func (p Place) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil, fmt.Errorf("place %s: failed to load timezone %q: %w", p.ID, p.Timezone, err)
	}
	return loc, nil
}
