package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	clockRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	monthRe = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
)

// Clock is a wall-clock time of day. Hour may be 24 only with Minute 0,
// meaning the midnight that ends the day.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:mm" in 24h format. "24:00" is accepted.
func ParseClock(raw string) (Clock, error) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return Clock{}, fmt.Errorf("unable to parse clock time: %q", raw)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])

	if minute > 59 || hour > 24 || (hour == 24 && minute != 0) {
		return Clock{}, fmt.Errorf("clock time out of range: %q", raw)
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

// On returns the instant the clock shows on the given civil date in loc.
// 24:00 rolls over to the next day's midnight.
func (c Clock) On(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, c.Hour, c.Minute, 0, 0, loc)
}

// ParseMonth parses "YYYY-MM" into the first instant of that month in loc.
func ParseMonth(raw string, loc *time.Location) (time.Time, error) {
	m := monthRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return time.Time{}, fmt.Errorf("unable to parse month: %q", raw)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month out of range: %q", raw)
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc), nil
}
