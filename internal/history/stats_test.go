package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"power-status-backend/internal/model"
	"power-status-backend/internal/store"
)

// memEvents answers queries from an oldest-first slice.
type memEvents struct {
	events []model.Availability
	err    error
}

func (m *memEvents) QueryAvailability(_ context.Context, placeID string, q store.EventQuery) ([]model.Availability, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.Availability
	for _, e := range m.events {
		if e.PlaceID != placeID {
			continue
		}
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

func kyiv(t *testing.T) *time.Location {
	loc, err := time.LoadLocation("Europe/Kyiv")
	require.NoError(t, err)
	return loc
}

func TestService_PlaceStats(t *testing.T) {
	loc := kyiv(t)
	place := model.Place{ID: "kyiv-1", Timezone: "Europe/Kyiv"}
	now := time.Date(2026, 10, 19, 15, 0, 0, 0, loc)

	events := &memEvents{events: []model.Availability{
		{PlaceID: "kyiv-1", CreatedAt: time.Date(2026, 10, 17, 20, 0, 0, 0, loc).UTC(), IsAvailable: true},
		{PlaceID: "kyiv-1", CreatedAt: time.Date(2026, 10, 18, 9, 0, 0, 0, loc).UTC(), IsAvailable: false},
		{PlaceID: "kyiv-1", CreatedAt: time.Date(2026, 10, 18, 13, 0, 0, 0, loc).UTC(), IsAvailable: true},
		{PlaceID: "kyiv-1", CreatedAt: time.Date(2026, 10, 19, 8, 30, 0, 0, loc).UTC(), IsAvailable: false},
	}}

	stats, err := NewService(events).PlaceStats(context.Background(), place, now)
	require.NoError(t, err)

	require.Len(t, stats.Today, 2)
	assert.True(t, time.Date(2026, 10, 19, 0, 0, 0, 0, loc).Equal(stats.Today[0].Start))
	assert.True(t, stats.Today[0].IsEnabled)
	assert.True(t, now.Equal(stats.Today[1].End))
	assert.False(t, stats.Today[1].IsEnabled)

	require.Len(t, stats.Yesterday, 3)
	assert.True(t, time.Date(2026, 10, 18, 0, 0, 0, 0, loc).Equal(stats.Yesterday[0].Start))
	assert.True(t, time.Date(2026, 10, 19, 0, 0, 0, 0, loc).Equal(stats.Yesterday[2].End))

	require.NotNil(t, stats.LastStateBeforeToday)
	assert.True(t, *stats.LastStateBeforeToday)
	require.NotNil(t, stats.LastStateBeforeYesterday)
	assert.True(t, *stats.LastStateBeforeYesterday)
}

func TestService_PlaceStats_NoHistory(t *testing.T) {
	place := model.Place{ID: "new", Timezone: "Europe/Kyiv"}

	stats, err := NewService(&memEvents{}).PlaceStats(context.Background(), place, time.Now())
	require.NoError(t, err)
	assert.Empty(t, stats.Today)
	assert.Empty(t, stats.Yesterday)
	assert.Nil(t, stats.LastStateBeforeToday)
	assert.Nil(t, stats.LastStateBeforeYesterday)
}

func TestService_PlaceStats_Errors(t *testing.T) {
	_, err := NewService(&memEvents{}).PlaceStats(context.Background(), model.Place{ID: "x", Timezone: "Mars/Olympus"}, time.Now())
	assert.Error(t, err)

	_, err = NewService(&memEvents{err: errors.New("db down")}).PlaceStats(context.Background(), model.Place{ID: "x", Timezone: "UTC"}, time.Now())
	assert.ErrorContains(t, err, "db down")
}

func TestService_MonthlyStats(t *testing.T) {
	loc := kyiv(t)
	place := model.Place{ID: "kyiv-1", Timezone: "Europe/Kyiv"}
	month := time.Date(2026, 10, 1, 0, 0, 0, 0, loc)

	t.Run("current month is cut at now", func(t *testing.T) {
		now := time.Date(2026, 10, 2, 0, 0, 0, 0, loc)
		events := &memEvents{events: []model.Availability{
			{PlaceID: "kyiv-1", CreatedAt: time.Date(2026, 9, 30, 12, 0, 0, 0, loc).UTC(), IsAvailable: true},
			{PlaceID: "kyiv-1", CreatedAt: time.Date(2026, 10, 1, 6, 0, 0, 0, loc).UTC(), IsAvailable: false},
			{PlaceID: "kyiv-1", CreatedAt: time.Date(2026, 10, 1, 10, 0, 0, 0, loc).UTC(), IsAvailable: true},
		}}

		stats, err := NewService(events).MonthlyStats(context.Background(), place, month, now)
		require.NoError(t, err)
		assert.Equal(t, "2026-10", stats.Month)
		assert.True(t, now.Equal(stats.Till))
		assert.Len(t, stats.Intervals, 3)
		assert.Equal(t, 20*time.Hour, stats.Summary.Available)
		assert.Equal(t, 4*time.Hour, stats.Summary.Unavailable)
	})

	t.Run("month without changes uses prior state", func(t *testing.T) {
		now := time.Date(2026, 12, 5, 0, 0, 0, 0, loc)
		events := &memEvents{events: []model.Availability{
			{PlaceID: "kyiv-1", CreatedAt: time.Date(2026, 9, 30, 12, 0, 0, 0, loc).UTC(), IsAvailable: false},
		}}

		stats, err := NewService(events).MonthlyStats(context.Background(), place, month, now)
		require.NoError(t, err)
		assert.Empty(t, stats.Intervals)
		assert.Equal(t, stats.Till.Sub(stats.From), stats.Summary.Unavailable)
		assert.True(t, time.Date(2026, 11, 1, 0, 0, 0, 0, loc).Equal(stats.Till))
	})

	t.Run("future month is empty", func(t *testing.T) {
		now := time.Date(2026, 9, 15, 0, 0, 0, 0, loc)
		stats, err := NewService(&memEvents{}).MonthlyStats(context.Background(), place, month, now)
		require.NoError(t, err)
		assert.Empty(t, stats.Intervals)
		assert.Equal(t, Summary{}, stats.Summary)
	})

	t.Run("disabled", func(t *testing.T) {
		disabled := place
		disabled.DisableMonthlyStats = true
		_, err := NewService(&memEvents{}).MonthlyStats(context.Background(), disabled, month, month)
		assert.ErrorIs(t, err, ErrMonthlyStatsDisabled)
	})
}
