package query

import (
	"time"

	"github.com/Udonxai/weak-link/internal/leaderboard"
	"github.com/google/uuid"
)

const (
	PeriodToday = "today"
	PeriodWeek  = "week"

	// maxDailyRange bounds daily-stats requests.
	maxDailyRange = 366
)

// MemberLosses is a member's loss count for one month; members without a
// monthly row have zero.
type MemberLosses struct {
	UserID      uuid.UUID `db:"user_id"`
	Username    string    `db:"username"`
	LossesCount int       `db:"losses_count"`
}

type Leaderboard struct {
	Month   time.Time
	Entries []leaderboard.Ranked
}

// BreakCount is a member's live break count for a period.
type BreakCount struct {
	UserID   uuid.UUID `db:"user_id" json:"user_id"`
	Username string    `db:"username" json:"username"`
	Count    int       `db:"count" json:"count"`
}

type BreakCounts struct {
	Period string       `json:"period"`
	From   time.Time    `json:"from"`
	To     time.Time    `json:"to"`
	Counts []BreakCount `json:"counts"`
}

// AppSelection is one app picked by the group owner.
type AppSelection struct {
	AppIdentifier string `json:"app_identifier" example:"com.instagram.android"`
	AppName       string `json:"app_name,omitempty" example:"Instagram"`
	Platform      string `json:"platform,omitempty" example:"android"`
}

type Health struct {
	Healthy      bool              `json:"healthy"`
	Dependencies map[string]string `json:"dependencies"`
}
