package group

import (
	"time"

	"github.com/google/uuid"
)

type Member struct {
	GroupID  uuid.UUID `db:"group_id" json:"group_id"`
	UserID   uuid.UUID `db:"user_id" json:"user_id"`
	Username string    `db:"username" json:"username"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}

// DisplayName falls back to a short form of the user id.
func (m Member) DisplayName() string {
	if m.Username != "" {
		return m.Username
	}
	return m.UserID.String()[:8]
}
