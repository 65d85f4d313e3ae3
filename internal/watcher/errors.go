package watcher

import "errors"

var (
	ErrInvalidUserID = errors.New("invalid user id")

	ErrInvalidGroupID = errors.New("invalid group id")

	ErrWatcherIdle = errors.New("watcher is idle")

	ErrWatcherSuspended = errors.New("watcher is suspended")

	// ErrTickSkipped is returned when a tick is still in flight.
	ErrTickSkipped = errors.New("previous tick still in flight")

	ErrProbeUnavailable = errors.New("foreground app probe unavailable")

	// ErrAlreadyRecorded is returned by a Recorder when the break's ID is
	// already stored, for example after a lost reply.
	ErrAlreadyRecorded = errors.New("break already recorded")

	// ErrStoreWrite means the break was dropped after the retry.
	ErrStoreWrite = errors.New("failed to store break event")

	// ErrSessionClosed is returned by a tick whose session was disabled or
	// replaced while it ran. Nothing is written after that point.
	ErrSessionClosed = errors.New("watch session closed")
)
