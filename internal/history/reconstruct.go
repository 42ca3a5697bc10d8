package history

import (
	"time"

	"power-status-backend/internal/model"
)

// Interval is a stretch of time with a constant power state.
type Interval struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	IsEnabled bool      `json:"isEnabled"`
}

// Duration returns the length of the interval.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Reconstruct turns the change events recorded inside [start, end) into a
// gapless run of intervals covering the whole window. Events must be ordered
// newest first and lie inside the window.
//
// The stretch before the first event is assumed to hold the opposite of that
// event's state. This only holds if no flip went unrecorded just before the
// window; a place that was down and unprobed across start would be reported
// wrong for that first stretch.
//
// No events yields no intervals: the window's state cannot be told from it.
func Reconstruct(start, end time.Time, eventsNewestFirst []model.Availability) []Interval {
	n := len(eventsNewestFirst)
	if n == 0 {
		return []Interval{}
	}

	events := make([]model.Availability, n)
	for i, e := range eventsNewestFirst {
		events[n-1-i] = e
	}

	intervals := make([]Interval, 0, n+1)
	intervals = append(intervals, Interval{
		Start:     start,
		End:       events[0].CreatedAt,
		IsEnabled: !events[0].IsAvailable,
	})
	for i := 0; i < n-1; i++ {
		intervals = append(intervals, Interval{
			Start:     events[i].CreatedAt,
			End:       events[i+1].CreatedAt,
			IsEnabled: events[i].IsAvailable,
		})
	}
	intervals = append(intervals, Interval{
		Start:     events[n-1].CreatedAt,
		End:       end,
		IsEnabled: events[n-1].IsAvailable,
	})
	return intervals
}

// Summary totals the time spent in each state.
type Summary struct {
	Available   time.Duration
	Unavailable time.Duration
}

// Summarize adds up intervals. When there are none, the whole window is
// attributed to lastStateBefore if it is known.
func Summarize(intervals []Interval, lastStateBefore *bool, windowStart, windowEnd time.Time) Summary {
	var s Summary
	if len(intervals) == 0 {
		if lastStateBefore == nil || !windowEnd.After(windowStart) {
			return s
		}
		if *lastStateBefore {
			s.Available = windowEnd.Sub(windowStart)
		} else {
			s.Unavailable = windowEnd.Sub(windowStart)
		}
		return s
	}

	for _, i := range intervals {
		if i.IsEnabled {
			s.Available += i.Duration()
		} else {
			s.Unavailable += i.Duration()
		}
	}
	return s
}
