package schedule

import (
	"time"

	"power-status-backend/internal/parse"
)

// DefaultMargin is the schedule's declared inaccuracy. Moments closer than
// this to now are not worth announcing.
const DefaultMargin = 29 * time.Minute

type civilDay struct {
	year  int
	month time.Month
	day   int
	slots Day
}

// Predict finds the next moments of each kind after now+margin, looking at
// today and tomorrow in loc. A possible moment is dropped unless it comes
// strictly before the confirmed one of the same direction.
func Predict(weekly *Weekly, now time.Time, loc *time.Location, margin time.Duration) Prediction {
	if weekly == nil {
		return Prediction{}
	}

	local := now.In(loc)
	tomorrow := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
	days := []civilDay{
		{year: local.Year(), month: local.Month(), day: local.Day(), slots: weekly.Day(local.Weekday())},
		{year: tomorrow.Year(), month: tomorrow.Month(), day: tomorrow.Day(), slots: weekly.Day(tomorrow.Weekday())},
	}

	earliest := func(pick func(Day) []string) *time.Time {
		var best *time.Time
		for _, d := range days {
			for _, raw := range pick(d.slots) {
				clock, err := parse.ParseClock(raw)
				if err != nil {
					continue
				}
				t := clock.On(d.year, d.month, d.day, loc)
				if t.Sub(now) <= margin {
					continue
				}
				if best == nil || t.Before(*best) {
					best = &t
				}
			}
		}
		return best
	}

	p := Prediction{
		EnableMoment:          earliest(func(d Day) []string { return starts(d.PowerOn) }),
		PossibleEnableMoment:  earliest(func(d Day) []string { return starts(d.PowerOnPossible) }),
		DisableMoment:         earliest(func(d Day) []string { return starts(d.PowerOff) }),
		PossibleDisableMoment: earliest(func(d Day) []string { return ends(d.PowerOnPossible) }),
	}

	if p.EnableMoment != nil && p.PossibleEnableMoment != nil && !p.PossibleEnableMoment.Before(*p.EnableMoment) {
		p.PossibleEnableMoment = nil
	}
	if p.DisableMoment != nil && p.PossibleDisableMoment != nil && !p.PossibleDisableMoment.Before(*p.DisableMoment) {
		p.PossibleDisableMoment = nil
	}
	return p
}

func starts(moments []Moment) []string {
	out := make([]string, len(moments))
	for i, m := range moments {
		out[i] = m.Time.Start
	}
	return out
}

func ends(moments []Moment) []string {
	out := make([]string, len(moments))
	for i, m := range moments {
		out[i] = m.Time.End
	}
	return out
}
