package query

import (
	"time"

	"github.com/google/uuid"
)

type LeaderboardEntryResponse struct {
	Rank        int       `json:"rank" example:"1"`
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username" example:"alice"`
	LossesCount int       `json:"losses_count" example:"0"`
	Perfect     bool      `json:"perfect"`
	WeakLink    bool      `json:"weak_link"`
}

type LeaderboardResponse struct {
	GroupID uuid.UUID                  `json:"group_id"`
	Month   string                     `json:"month" example:"2026-03"`
	Entries []LeaderboardEntryResponse `json:"entries"`
}

type DailyStatResponse struct {
	Date        string    `json:"date" example:"2026-03-14"`
	LoserUserID uuid.UUID `json:"loser_user_id"`
	LoserCount  int       `json:"loser_count" example:"3"`
}

type DailyStatsResponse struct {
	GroupID uuid.UUID           `json:"group_id"`
	From    string              `json:"from" example:"2026-03-01"`
	To      string              `json:"to" example:"2026-03-31"`
	Stats   []DailyStatResponse `json:"stats"`
}

type BreakResponse struct {
	EventID       uuid.UUID `json:"event_id"`
	UserID        uuid.UUID `json:"user_id"`
	AppIdentifier string    `json:"app_identifier" example:"com.instagram.android"`
	AppName       string    `json:"app_name" example:"Instagram"`
	Timestamp     time.Time `json:"timestamp"`
}

type BreaksResponse struct {
	GroupID uuid.UUID       `json:"group_id"`
	Count   int             `json:"count"`
	Events  []BreakResponse `json:"events"`
}

type TrackedAppResponse struct {
	AppIdentifier string `json:"app_identifier" example:"com.instagram.android"`
	AppName       string `json:"app_name" example:"Instagram"`
	Platform      string `json:"platform" example:"android"`
}

type TrackedAppsResponse struct {
	GroupID uuid.UUID            `json:"group_id"`
	Apps    []TrackedAppResponse `json:"apps"`
}

type AddTrackedAppsRequest struct {
	Apps []AppSelection `json:"apps"`
}

type AddTrackedAppsResponse struct {
	Added int                  `json:"added" example:"2"`
	Apps  []TrackedAppResponse `json:"apps"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_request"`
	Message string `json:"message,omitempty" example:"month must be YYYY-MM"`
}
