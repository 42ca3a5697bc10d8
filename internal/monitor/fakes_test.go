package monitor

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"power-status-backend/internal/model"
	"power-status-backend/internal/notification"
	"power-status-backend/internal/store"
)

// memStore is an in-memory store.Store.
type memStore struct {
	mu         sync.Mutex
	places     []model.Place
	events     map[string][]model.Availability
	AppendFunc func(placeID string, isAvailable bool, at time.Time) error
}

func newMemStore(places ...model.Place) *memStore {
	return &memStore{places: places, events: map[string][]model.Availability{}}
}

func (m *memStore) ListPlaces(ctx context.Context) ([]model.Place, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Place, len(m.places))
	copy(out, m.places)
	return out, nil
}

func (m *memStore) GetPlace(ctx context.Context, id string) (*model.Place, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.places {
		if m.places[i].ID == id {
			p := m.places[i]
			return &p, nil
		}
	}
	return nil, store.ErrPlaceNotFound
}

func (m *memStore) AppendAvailability(ctx context.Context, placeID string, isAvailable bool, at time.Time) error {
	if m.AppendFunc != nil {
		if err := m.AppendFunc(placeID, isAvailable, at); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[placeID] = append(m.events[placeID], model.Availability{PlaceID: placeID, CreatedAt: at.UTC(), IsAvailable: isAvailable})
	return nil
}

func (m *memStore) QueryAvailability(ctx context.Context, placeID string, q store.EventQuery) ([]model.Availability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Availability
	for _, e := range m.events[placeID] {
		if q.From != nil && e.CreatedAt.Before(*q.From) {
			continue
		}
		if q.Till != nil && !e.CreatedAt.Before(*q.Till) {
			continue
		}
		out = append(out, e)
	}
	if q.Order == store.OrderDesc {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *memStore) LatestAvailability(ctx context.Context, placeID string) (*model.Availability, error) {
	events, err := m.QueryAvailability(ctx, placeID, store.EventQuery{Limit: 1, Order: store.OrderDesc})
	if err != nil || len(events) == 0 {
		return nil, err
	}
	return &events[0], nil
}

func (m *memStore) DB() *gorm.DB { return nil }

func (m *memStore) Events(placeID string) []model.Availability {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Availability, len(m.events[placeID]))
	copy(out, m.events[placeID])
	return out
}

type mockProber struct {
	ProbeFunc func(ctx context.Context, place model.Place, budget time.Duration) (bool, error)
}

func (m *mockProber) Probe(ctx context.Context, place model.Place, budget time.Duration) (bool, error) {
	return m.ProbeFunc(ctx, place, budget)
}

type recordingPublisher struct {
	mu      sync.Mutex
	changes []notification.Change
}

func (r *recordingPublisher) Publish(change notification.Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, change)
}

func (r *recordingPublisher) Changes() []notification.Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notification.Change, len(r.changes))
	copy(out, r.changes)
	return out
}
