package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Udonxai/weak-link/internal/watchlist"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Publisher interface {
	Publish(ctx context.Context, key, messageType string, value any) error
}

type Memberships interface {
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
}

type Service struct {
	repo      Repository
	apps      watchlist.Source
	members   Memberships
	publisher Publisher
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(repo Repository, apps watchlist.Source, members Memberships, publisher Publisher, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		apps:      apps,
		members:   members,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}
}

// RecordInput describes one break. EventID is chosen by the caller so a
// resent request is recognized; uuid.Nil lets the service pick one.
type RecordInput struct {
	EventID       uuid.UUID
	UserID        uuid.UUID
	GroupID       uuid.UUID
	AppIdentifier string
	AppName       string
	ObservedAt    *time.Time
}

// RecordBreak appends a break for a tracked app and fans it out. The event is
// durable once this returns; a failed publish is only logged. A request whose
// EventID is already stored returns ErrDuplicateEvent and publishes nothing.
func (s *Service) RecordBreak(ctx context.Context, in RecordInput) (*BreakEvent, error) {
	switch {
	case in.UserID == uuid.Nil:
		return nil, ErrInvalidUserID
	case in.GroupID == uuid.Nil:
		return nil, ErrInvalidGroupID
	case in.AppIdentifier == "":
		return nil, ErrInvalidAppIdentifier
	}

	member, err := s.members.IsMember(ctx, in.GroupID, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !member {
		return nil, ErrNotMember
	}

	apps, err := s.apps.ListTrackedApps(ctx, in.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load watch-list: %w", err)
	}
	tracked, ok := watchlist.NewWatchList(in.GroupID, apps).Lookup(in.AppIdentifier)
	if !ok {
		s.logger.Debug("Break for untracked app rejected",
			zap.String("group_id", in.GroupID.String()),
			zap.String("app_identifier", in.AppIdentifier),
		)
		return nil, ErrAppNotTracked
	}

	name := in.AppName
	if name == "" {
		name = tracked.DisplayName()
	}

	ev := NewBreakEvent(in.UserID, in.GroupID, in.AppIdentifier, name, s.now())
	ev.ObservedAt = in.ObservedAt
	if in.EventID != uuid.Nil {
		ev.ID = in.EventID
	}

	if err := s.repo.Append(ctx, ev); err != nil {
		if errors.Is(err, ErrDuplicateEvent) {
			s.logger.Info("Break already recorded",
				zap.String("event_id", ev.ID.String()))
			return nil, err
		}
		s.logger.Error("failed to append break",
			zap.String("event_id", ev.ID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to append break: %w", err)
	}

	// Breaks of one group go to one partition.
	key := ev.GroupID.String()
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, key, MessageTypeBreakRecorded, ev.Recorded()); err != nil {
			s.logger.Error("failed to publish break",
				zap.String("event_id", ev.ID.String()),
				zap.Error(err))
		}
	}

	s.logger.Info("Break recorded",
		zap.String("event_id", ev.ID.String()),
		zap.String("user_id", ev.UserID.String()),
		zap.String("group_id", ev.GroupID.String()),
		zap.String("app_name", ev.AppName),
	)
	return ev, nil
}

func (s *Service) ListTrackedApps(ctx context.Context, groupID uuid.UUID) ([]watchlist.TrackedApp, error) {
	if groupID == uuid.Nil {
		return nil, ErrInvalidGroupID
	}
	apps, err := s.apps.ListTrackedApps(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracked apps: %w", err)
	}
	return watchlist.NewWatchList(groupID, apps).Apps(), nil
}

func (s *Service) ListBreaks(ctx context.Context, filter Filter) ([]BreakEvent, error) {
	events, err := s.repo.Query(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list breaks", zap.Error(err))
		return nil, fmt.Errorf("failed to list breaks: %w", err)
	}
	return events, nil
}
