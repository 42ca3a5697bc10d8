package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"power-status-backend/internal/model"
	"power-status-backend/internal/store"
)

// SuspiciousDisableWindow is how soon after the previous change an outage is
// reported as possibly not a real one.
const SuspiciousDisableWindow = 45 * time.Minute

// ErrNoEvents is returned when a change is announced for a place with an empty log.
var ErrNoEvents = errors.New("no availability events for place")

// Payload is the message every gateway sends for a change.
type Payload struct {
	PlaceID           string     `json:"placeId"`
	PlaceName         string     `json:"placeName"`
	IsAvailable       bool       `json:"isAvailable"`
	ChangedAt         time.Time  `json:"changedAt"`
	PreviousChangedAt *time.Time `json:"previousChangedAt,omitempty"`
	// PreviousStateSeconds is how long the state before this change lasted.
	PreviousStateSeconds int64 `json:"previousStateSeconds,omitempty"`
	Suspicious           bool  `json:"suspicious"`
}

// PayloadBuilder assembles payloads from the store.
type PayloadBuilder struct {
	store store.Store
}

// NewPayloadBuilder creates a builder reading from st.
func NewPayloadBuilder(st store.Store) *PayloadBuilder {
	return &PayloadBuilder{store: st}
}

// Build describes the latest change of the place.
func (b *PayloadBuilder) Build(ctx context.Context, placeID string) (*Payload, error) {
	place, err := b.store.GetPlace(ctx, placeID)
	if err != nil {
		return nil, err
	}

	events, err := b.store.QueryAvailability(ctx, placeID, store.EventQuery{Limit: 2, Order: store.OrderDesc})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("place %s: %w", placeID, ErrNoEvents)
	}

	return newPayload(place, events), nil
}

func newPayload(place *model.Place, newestFirst []model.Availability) *Payload {
	latest := newestFirst[0]
	payload := &Payload{
		PlaceID:     place.ID,
		PlaceName:   place.Name,
		IsAvailable: latest.IsAvailable,
		ChangedAt:   latest.CreatedAt.UTC(),
	}
	if len(newestFirst) < 2 {
		return payload
	}

	previous := newestFirst[1]
	previousAt := previous.CreatedAt.UTC()
	lasted := latest.CreatedAt.Sub(previous.CreatedAt)
	payload.PreviousChangedAt = &previousAt
	payload.PreviousStateSeconds = int64(lasted.Seconds())
	payload.Suspicious = !latest.IsAvailable && lasted <= SuspiciousDisableWindow
	return payload
}
