package event

import (
	"time"

	"github.com/google/uuid"
)

const (
	MessageTypeBreakRecorded = "break_recorded"

	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// BreakEvent is one append-only row of the event store. Timestamp is assigned
// by the server; ObservedAt is the device clock, kept for diagnostics.
type BreakEvent struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	UserID        uuid.UUID  `db:"user_id" json:"user_id"`
	GroupID       uuid.UUID  `db:"group_id" json:"group_id"`
	AppIdentifier string     `db:"app_identifier" json:"app_identifier"`
	AppName       string     `db:"app_name" json:"app_name"`
	Timestamp     time.Time  `db:"timestamp" json:"timestamp"`
	ObservedAt    *time.Time `db:"observed_at" json:"observed_at,omitempty"`
}

func NewBreakEvent(userID, groupID uuid.UUID, appIdentifier, appName string, now time.Time) *BreakEvent {
	return &BreakEvent{
		ID:            uuid.New(),
		UserID:        userID,
		GroupID:       groupID,
		AppIdentifier: appIdentifier,
		AppName:       appName,
		Timestamp:     now.UTC(),
	}
}

func (e *BreakEvent) Validate() error {
	if e.UserID == uuid.Nil {
		return ErrInvalidUserID
	}
	if e.GroupID == uuid.Nil {
		return ErrInvalidGroupID
	}
	if e.AppIdentifier == "" {
		return ErrInvalidAppIdentifier
	}
	return nil
}

// Filter selects events in [Since, Until). Nil fields do not filter.
type Filter struct {
	GroupID *uuid.UUID
	UserID  *uuid.UUID
	Since   *time.Time
	Until   *time.Time
	Limit   int
}

func (f *Filter) normalize() error {
	if f.Since != nil && f.Until != nil && !f.Since.Before(*f.Until) {
		return ErrInvalidTimeRange
	}
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	return nil
}

// BreakRecorded is published to Kafka after every append, keyed by group id.
type BreakRecorded struct {
	EventID       uuid.UUID `json:"event_id"`
	UserID        uuid.UUID `json:"user_id"`
	GroupID       uuid.UUID `json:"group_id"`
	AppIdentifier string    `json:"app_identifier"`
	AppName       string    `json:"app_name"`
	Timestamp     time.Time `json:"timestamp"`
}

func (e *BreakEvent) Recorded() BreakRecorded {
	return BreakRecorded{
		EventID:       e.ID,
		UserID:        e.UserID,
		GroupID:       e.GroupID,
		AppIdentifier: e.AppIdentifier,
		AppName:       e.AppName,
		Timestamp:     e.Timestamp,
	}
}
