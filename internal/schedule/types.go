package schedule

import "time"

// Span is a slot of a schedule day, as "HH:mm" strings in the schedule's
// local time.
type Span struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Moment wraps a Span the way the upstream API nests it.
type Moment struct {
	Time Span `json:"time"`
}

// Day lists the slots of one weekday.
type Day struct {
	PowerOff        []Moment `json:"power_off"`
	PowerOn         []Moment `json:"power_on"`
	PowerOnPossible []Moment `json:"power_on_possible"`
}

// Weekly is the rotating schedule of one group.
type Weekly struct {
	Monday    Day `json:"monday"`
	Tuesday   Day `json:"tuesday"`
	Wednesday Day `json:"wednesday"`
	Thursday  Day `json:"thursday"`
	Friday    Day `json:"friday"`
	Saturday  Day `json:"saturday"`
	Sunday    Day `json:"sunday"`
}

// Day returns the slots of weekday d.
func (w *Weekly) Day(d time.Weekday) Day {
	switch d {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	default:
		return w.Sunday
	}
}

// Entry is the cached schedule of a group.
type Entry struct {
	GroupID   int
	FetchedAt time.Time
	Weekly    *Weekly
}

// Prediction holds the next expected state changes. Any field may be nil.
type Prediction struct {
	EnableMoment          *time.Time `json:"enableMoment,omitempty"`
	PossibleEnableMoment  *time.Time `json:"possibleEnableMoment,omitempty"`
	DisableMoment         *time.Time `json:"disableMoment,omitempty"`
	PossibleDisableMoment *time.Time `json:"possibleDisableMoment,omitempty"`
}
