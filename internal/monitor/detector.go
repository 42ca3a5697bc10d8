package monitor

import (
	"context"
	"fmt"
	"time"

	"power-status-backend/internal/model"
)

// LatestReader is the slice of the store the detector needs.
type LatestReader interface {
	LatestAvailability(ctx context.Context, placeID string) (*model.Availability, error)
}

// Decision is the outcome of comparing a fresh reading with the log.
type Decision struct {
	Changed bool
	// Event is the row to append. Only set when Changed.
	Event model.Availability
	// Previous is the last recorded event, nil for a place never observed.
	Previous *model.Availability
}

// Detector decides whether a reading is a state change worth recording.
type Detector struct {
	events LatestReader
}

// NewDetector creates a detector reading from events.
func NewDetector(events LatestReader) *Detector {
	return &Detector{events: events}
}

// Evaluate compares observed with the latest recorded state of the place. The
// first reading of a place is always a change.
func (d *Detector) Evaluate(ctx context.Context, placeID string, observed bool, now time.Time) (Decision, error) {
	latest, err := d.events.LatestAvailability(ctx, placeID)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to read last state: %w", err)
	}

	if latest != nil && latest.IsAvailable == observed {
		return Decision{Previous: latest}, nil
	}

	return Decision{
		Changed: true,
		Event: model.Availability{
			PlaceID:     placeID,
			CreatedAt:   now.UTC(),
			IsAvailable: observed,
		},
		Previous: latest,
	}, nil
}
