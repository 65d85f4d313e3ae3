package query

import "errors"

var (
	ErrInvalidGroupID = errors.New("invalid group id")
	ErrInvalidRange   = errors.New("invalid date range")
	ErrInvalidPeriod  = errors.New("period must be today or week")
	ErrNoApps         = errors.New("at least one app is required")
)
