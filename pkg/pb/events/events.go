// Package events holds the wire messages and service descriptor of the
// break service. Messages travel as JSON over gRPC.
package events

import (
	"google.golang.org/protobuf/types/known/timestamppb"
)

type RecordBreakRequest struct {
	EventId       string                 `json:"event_id,omitempty"`
	UserId        string                 `json:"user_id"`
	GroupId       string                 `json:"group_id"`
	AppIdentifier string                 `json:"app_identifier"`
	AppName       string                 `json:"app_name,omitempty"`
	ObservedAt    *timestamppb.Timestamp `json:"observed_at,omitempty"`
}

type RecordBreakResponse struct {
	EventId   string                 `json:"event_id"`
	AppName   string                 `json:"app_name"`
	Timestamp *timestamppb.Timestamp `json:"timestamp"`
}

type ListTrackedAppsRequest struct {
	GroupId string `json:"group_id"`
}

type TrackedApp struct {
	GroupId       string `json:"group_id"`
	AppIdentifier string `json:"app_identifier"`
	AppName       string `json:"app_name"`
	Platform      string `json:"platform,omitempty"`
}

type ListTrackedAppsResponse struct {
	Apps []*TrackedApp `json:"apps"`
}

type ListBreaksRequest struct {
	GroupId string                 `json:"group_id,omitempty"`
	UserId  string                 `json:"user_id,omitempty"`
	Since   *timestamppb.Timestamp `json:"since,omitempty"`
	Until   *timestamppb.Timestamp `json:"until,omitempty"`
	Limit   int32                  `json:"limit,omitempty"`
}

type BreakEvent struct {
	EventId       string                 `json:"event_id"`
	UserId        string                 `json:"user_id"`
	GroupId       string                 `json:"group_id"`
	AppIdentifier string                 `json:"app_identifier"`
	AppName       string                 `json:"app_name"`
	Timestamp     *timestamppb.Timestamp `json:"timestamp"`
}

type ListBreaksResponse struct {
	Events []*BreakEvent `json:"events"`
}
