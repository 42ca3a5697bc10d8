package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"power-status-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	ListPlaces(ctx context.Context) ([]model.Place, error)
	GetPlace(ctx context.Context, id string) (*model.Place, error)
	AppendAvailability(ctx context.Context, placeID string, isAvailable bool, at time.Time) error
	QueryAvailability(ctx context.Context, placeID string, q EventQuery) ([]model.Availability, error)
	LatestAvailability(ctx context.Context, placeID string) (*model.Availability, error)
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying connection for collaborators that manage their own tables.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// ListPlaces returns every configured place, disabled ones included.
func (s *gormStore) ListPlaces(ctx context.Context) ([]model.Place, error) {
	var places []model.Place
	if err := s.db.WithContext(ctx).Order("id").Find(&places).Error; err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}
	return places, nil
}

// GetPlace returns a single place or ErrPlaceNotFound.
func (s *gormStore) GetPlace(ctx context.Context, id string) (*model.Place, error) {
	var place model.Place
	err := s.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&place).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch place %s: %w", id, err)
	}
	if place.ID == "" {
		return nil, ErrPlaceNotFound
	}
	return &place, nil
}

// AppendAvailability records a state change. Callers are responsible for only
// appending actual changes.
func (s *gormStore) AppendAvailability(ctx context.Context, placeID string, isAvailable bool, at time.Time) error {
	record := model.Availability{
		PlaceID:     placeID,
		CreatedAt:   at.UTC(),
		IsAvailable: isAvailable,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to append availability for place %s: %w", placeID, err)
	}
	return nil
}

// QueryAvailability returns the events of a place matching q.
func (s *gormStore) QueryAvailability(ctx context.Context, placeID string, q EventQuery) ([]model.Availability, error) {
	tx := s.db.WithContext(ctx).Where("place_id = ?", placeID)
	if q.From != nil {
		tx = tx.Where("created_at >= ?", q.From.UTC())
	}
	if q.Till != nil {
		tx = tx.Where("created_at < ?", q.Till.UTC())
	}
	if q.Order == OrderDesc {
		tx = tx.Order("created_at DESC")
	} else {
		tx = tx.Order("created_at ASC")
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var events []model.Availability
	if err := tx.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to query availability for place %s: %w", placeID, err)
	}
	return events, nil
}

// LatestAvailability returns the most recent event of a place, or nil if the
// place has never been observed.
func (s *gormStore) LatestAvailability(ctx context.Context, placeID string) (*model.Availability, error) {
	events, err := s.QueryAvailability(ctx, placeID, EventQuery{Limit: 1, Order: OrderDesc})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &events[0], nil
}

// IsNotFound reports whether err means the requested record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPlaceNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
