package event

import (
	"context"
	"fmt"
	"strings"

	"github.com/Udonxai/weak-link/pkg/postgres"
	"go.uber.org/zap"
)

type Repository interface {
	Append(ctx context.Context, event *BreakEvent) error
	Query(ctx context.Context, filter Filter) ([]BreakEvent, error)
}

type repository struct {
	db     postgres.Querier
	logger *zap.Logger
}

func NewRepository(db postgres.Querier, logger *zap.Logger) Repository {
	return &repository{
		db:     db,
		logger: logger,
	}
}

// Append returns once the row is committed.
func (r *repository) Append(ctx context.Context, event *BreakEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO events (id, user_id, group_id, app_identifier, app_name, timestamp, observed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		event.ID,
		event.UserID,
		event.GroupID,
		event.AppIdentifier,
		event.AppName,
		event.Timestamp,
		event.ObservedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			r.logger.Warn("Duplicate event ignored",
				zap.String("event_id", event.ID.String()),
			)
			return ErrDuplicateEvent
		}
		r.logger.Error("Failed to append event", zap.Error(err))
		return fmt.Errorf("failed to append event: %w", err)
	}

	r.logger.Debug("Event appended",
		zap.String("event_id", event.ID.String()),
		zap.String("user_id", event.UserID.String()),
		zap.String("group_id", event.GroupID.String()),
		zap.String("app_identifier", event.AppIdentifier),
	)

	return nil
}

// Query returns events ordered by timestamp ascending. Rows sharing a
// timestamp are ordered by id so pages are stable.
func (r *repository) Query(ctx context.Context, filter Filter) ([]BreakEvent, error) {
	if err := filter.normalize(); err != nil {
		return nil, err
	}

	var (
		conditions []string
		args       []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.GroupID != nil {
		add("group_id = $%d", *filter.GroupID)
	}
	if filter.UserID != nil {
		add("user_id = $%d", *filter.UserID)
	}
	if filter.Since != nil {
		add("timestamp >= $%d", *filter.Since)
	}
	if filter.Until != nil {
		add("timestamp < $%d", *filter.Until)
	}

	query := `
		SELECT id, user_id, group_id, app_identifier, app_name, timestamp, observed_at
		FROM events
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY timestamp ASC, id ASC LIMIT $%d", len(args))

	var events []BreakEvent
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}

	return events, nil
}
