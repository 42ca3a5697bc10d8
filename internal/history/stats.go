package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"power-status-backend/internal/model"
	"power-status-backend/internal/store"
)

// ErrMonthlyStatsDisabled is returned for places that opted out of monthly stats.
var ErrMonthlyStatsDisabled = errors.New("monthly stats are disabled for this place")

// EventReader is the slice of the store the history service needs.
type EventReader interface {
	QueryAvailability(ctx context.Context, placeID string, q store.EventQuery) ([]model.Availability, error)
}

// PlaceStats is the recent history of a place, split at local midnight.
type PlaceStats struct {
	Today                    []Interval `json:"today"`
	Yesterday                []Interval `json:"yesterday"`
	LastStateBeforeToday     *bool      `json:"lastStateBeforeToday,omitempty"`
	LastStateBeforeYesterday *bool      `json:"lastStateBeforeYesterday,omitempty"`
}

// MonthlyStats totals a calendar month in the place's timezone.
type MonthlyStats struct {
	Month     string     `json:"month"`
	From      time.Time  `json:"from"`
	Till      time.Time  `json:"till"`
	Intervals []Interval `json:"intervals"`
	Summary   Summary    `json:"-"`
}

// Service derives history views from the event log.
type Service struct {
	events EventReader
}

// NewService creates a history service.
func NewService(events EventReader) *Service {
	return &Service{events: events}
}

// PlaceStats returns today's and yesterday's intervals for place as of now.
func (s *Service) PlaceStats(ctx context.Context, place model.Place, now time.Time) (*PlaceStats, error) {
	loc, err := place.Location()
	if err != nil {
		return nil, err
	}

	local := now.In(loc)
	todayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	yesterdayStart := todayStart.AddDate(0, 0, -1)

	today, err := s.window(ctx, place.ID, todayStart, now)
	if err != nil {
		return nil, err
	}
	yesterday, err := s.window(ctx, place.ID, yesterdayStart, todayStart)
	if err != nil {
		return nil, err
	}
	beforeToday, err := s.lastStateBefore(ctx, place.ID, todayStart)
	if err != nil {
		return nil, err
	}
	beforeYesterday, err := s.lastStateBefore(ctx, place.ID, yesterdayStart)
	if err != nil {
		return nil, err
	}

	return &PlaceStats{
		Today:                    today,
		Yesterday:                yesterday,
		LastStateBeforeToday:     beforeToday,
		LastStateBeforeYesterday: beforeYesterday,
	}, nil
}

// MonthlyStats totals the month starting at monthStart, cut off at now for the
// current month. monthStart is interpreted in the place's timezone.
func (s *Service) MonthlyStats(ctx context.Context, place model.Place, monthStart, now time.Time) (*MonthlyStats, error) {
	if place.DisableMonthlyStats {
		return nil, ErrMonthlyStatsDisabled
	}
	loc, err := place.Location()
	if err != nil {
		return nil, err
	}

	local := monthStart.In(loc)
	from := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	till := from.AddDate(0, 1, 0)
	if now.Before(till) {
		till = now
	}

	stats := &MonthlyStats{
		Month:     from.Format("2006-01"),
		From:      from,
		Till:      till,
		Intervals: []Interval{},
	}
	if !till.After(from) {
		return stats, nil
	}

	stats.Intervals, err = s.window(ctx, place.ID, from, till)
	if err != nil {
		return nil, err
	}
	before, err := s.lastStateBefore(ctx, place.ID, from)
	if err != nil {
		return nil, err
	}
	stats.Summary = Summarize(stats.Intervals, before, from, till)
	return stats, nil
}

func (s *Service) window(ctx context.Context, placeID string, from, till time.Time) ([]Interval, error) {
	events, err := s.events.QueryAvailability(ctx, placeID, store.EventQuery{
		From:  &from,
		Till:  &till,
		Order: store.OrderDesc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load history window: %w", err)
	}
	return Reconstruct(from, till, events), nil
}

func (s *Service) lastStateBefore(ctx context.Context, placeID string, at time.Time) (*bool, error) {
	events, err := s.events.QueryAvailability(ctx, placeID, store.EventQuery{
		Till:  &at,
		Limit: 1,
		Order: store.OrderDesc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load state before %s: %w", at.Format(time.RFC3339), err)
	}
	if len(events) == 0 {
		return nil, nil
	}
	state := events[0].IsAvailable
	return &state, nil
}
