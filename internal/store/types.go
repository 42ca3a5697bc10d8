package store

import (
	"errors"
	"time"
)

// ErrPlaceNotFound is returned when a place id does not exist.
var ErrPlaceNotFound = errors.New("place not found")

// SortOrder is the chronological order of returned availability events.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// EventQuery narrows an availability query. From is inclusive, Till is
// exclusive, and a zero Limit means no limit.
type EventQuery struct {
	From  *time.Time
	Till  *time.Time
	Limit int
	Order SortOrder
}
