package analytics

import (
	"time"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// DailyStat names the weakest link of a group for one calendar day.
type DailyStat struct {
	GroupID     uuid.UUID `db:"group_id" json:"group_id"`
	LoserUserID uuid.UUID `db:"loser_user_id" json:"loser_user_id"`
	StatDate    time.Time `db:"stat_date" json:"stat_date"`
	LoserCount  int       `db:"loser_count" json:"loser_count"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// MonthlyStat counts the days a user lost within a month.
type MonthlyStat struct {
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	GroupID     uuid.UUID `db:"group_id" json:"group_id"`
	MonthStart  time.Time `db:"month_start" json:"month_start"`
	LossesCount int       `db:"losses_count" json:"losses_count"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type UserCount struct {
	UserID uuid.UUID `db:"user_id" json:"user_id"`
	Count  int       `db:"count" json:"count"`
}

type RolloverResult struct {
	Groups int `json:"groups"`
	Days   int `json:"days"`
	Months int `json:"months"`
}
