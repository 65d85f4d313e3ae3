package analytics

import "errors"

var (
	ErrInvalidGroupID = errors.New("invalid group id")

	// ErrNoEvents means the day had no member events and produces no stat.
	ErrNoEvents = errors.New("no events for day")

	ErrInvalidMonth = errors.New("invalid month")

	ErrDayNotClosed = errors.New("day is not closed yet")
)
