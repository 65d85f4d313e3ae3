package watcher

import (
	"time"

	"github.com/google/uuid"
)

const (
	// UnknownApp is what probes report when detection is unavailable. It never
	// matches a watch-list.
	UnknownApp = "unknown"

	DefaultInterval = 5 * time.Second

	maxRecordAttempts = 2
)

type State int32

const (
	StateIdle State = iota
	StatePolling
	StateSuspended
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StatePolling:
		return "POLLING"
	case StateSuspended:
		return "SUSPENDED"
	default:
		return "UNKNOWN"
	}
}

// Session identifies whose breaks are being watched.
type Session struct {
	UserID  uuid.UUID
	GroupID uuid.UUID
}

func (s Session) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrInvalidUserID
	}
	if s.GroupID == uuid.Nil {
		return ErrInvalidGroupID
	}
	return nil
}

type Config struct {
	Session     Session
	Interval    time.Duration
	TickTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.TickTimeout <= 0 || c.TickTimeout > c.Interval {
		c.TickTimeout = c.Interval
	}
	return c
}

// Break is one emitted detection, handed to the Recorder. ID is fixed at
// emission and is the same on every attempt.
type Break struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	GroupID       uuid.UUID
	AppIdentifier string
	AppName       string
	ObservedAt    time.Time
}
