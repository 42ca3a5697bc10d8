package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slot(start, end string) Moment {
	return Moment{Time: Span{Start: start, End: end}}
}

func testWeekly() *Weekly {
	return &Weekly{
		Monday: Day{
			PowerOff:        []Moment{slot("04:00", "08:00"), slot("12:00", "16:00")},
			PowerOn:         []Moment{slot("bogus", "08:00"), slot("08:00", "12:00"), slot("16:00", "20:00")},
			PowerOnPossible: []Moment{slot("20:00", "24:00")},
		},
		Tuesday: Day{
			PowerOff:        []Moment{slot("00:00", "04:00")},
			PowerOn:         []Moment{slot("04:00", "08:00")},
			PowerOnPossible: []Moment{slot("08:00", "12:00")},
		},
	}
}

func kyiv(t *testing.T) *time.Location {
	loc, err := time.LoadLocation("Europe/Kyiv")
	require.NoError(t, err)
	return loc
}

func assertMoment(t *testing.T, expected time.Time, actual *time.Time) {
	t.Helper()
	if assert.NotNil(t, actual) {
		assert.True(t, expected.Equal(*actual), "expected %s, got %s", expected, *actual)
	}
}

func TestPredict(t *testing.T) {
	loc := kyiv(t)
	monday := func(h, m int) time.Time { return time.Date(2026, 10, 19, h, m, 0, 0, loc) }
	tuesday := func(h, m int) time.Time { return time.Date(2026, 10, 20, h, m, 0, 0, loc) }

	t.Run("possible after confirmed is dropped", func(t *testing.T) {
		p := Predict(testWeekly(), monday(10, 0), loc, DefaultMargin)

		assertMoment(t, monday(16, 0), p.EnableMoment)
		assertMoment(t, monday(12, 0), p.DisableMoment)
		assert.Nil(t, p.PossibleEnableMoment)
		assert.Nil(t, p.PossibleDisableMoment)
	})

	t.Run("possible before confirmed is kept", func(t *testing.T) {
		p := Predict(testWeekly(), monday(17, 0), loc, DefaultMargin)

		assertMoment(t, tuesday(4, 0), p.EnableMoment)
		assertMoment(t, monday(20, 0), p.PossibleEnableMoment)
		assertMoment(t, tuesday(0, 0), p.DisableMoment)
	})

	t.Run("possible equal to confirmed is dropped", func(t *testing.T) {
		p := Predict(testWeekly(), monday(17, 0), loc, DefaultMargin)
		assert.Nil(t, p.PossibleDisableMoment)
	})

	t.Run("moments within the margin are excluded", func(t *testing.T) {
		p := Predict(testWeekly(), monday(11, 31), loc, DefaultMargin)
		assertMoment(t, tuesday(0, 0), p.DisableMoment)

		p = Predict(testWeekly(), monday(11, 30), loc, DefaultMargin)
		assertMoment(t, monday(12, 0), p.DisableMoment)
	})

	t.Run("now in another zone", func(t *testing.T) {
		p := Predict(testWeekly(), monday(10, 0).UTC(), loc, DefaultMargin)
		assertMoment(t, monday(12, 0), p.DisableMoment)
	})

	t.Run("end of day slot is next midnight", func(t *testing.T) {
		weekly := &Weekly{Monday: Day{PowerOnPossible: []Moment{slot("22:00", "24:00")}}}
		p := Predict(weekly, monday(23, 0), loc, DefaultMargin)
		assertMoment(t, tuesday(0, 0), p.PossibleDisableMoment)
		assert.Nil(t, p.PossibleEnableMoment)
	})

	t.Run("nothing scheduled", func(t *testing.T) {
		assert.Equal(t, Prediction{}, Predict(&Weekly{}, monday(10, 0), loc, DefaultMargin))
		assert.Equal(t, Prediction{}, Predict(nil, monday(10, 0), loc, DefaultMargin))
	})
}
