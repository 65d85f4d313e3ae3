package event

import (
	"errors"

	"github.com/Udonxai/weak-link/internal/group"
)

var (
	// ErrDuplicateEvent means an event with the same id is already stored.
	ErrDuplicateEvent = errors.New("duplicate event")

	ErrInvalidEventID = errors.New("invalid event id")

	ErrInvalidUserID = errors.New("invalid user id")

	ErrInvalidGroupID = errors.New("invalid group id")

	ErrInvalidAppIdentifier = errors.New("invalid app identifier")

	ErrInvalidTimeRange = errors.New("invalid time range")

	ErrAppNotTracked = errors.New("app is not tracked by the group")

	ErrNotMember = group.ErrNotMember
)
