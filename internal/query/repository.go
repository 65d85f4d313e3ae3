package query

import (
	"context"
	"fmt"
	"time"

	"github.com/Udonxai/weak-link/pkg/postgres"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Repository holds the read-side joins over members, stats and events.
type Repository interface {
	MonthlyLosses(ctx context.Context, groupID uuid.UUID, monthStart time.Time) ([]MemberLosses, error)
	BreakCounts(ctx context.Context, groupID uuid.UUID, from, to time.Time) ([]BreakCount, error)
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

func (r *repository) MonthlyLosses(ctx context.Context, groupID uuid.UUID, monthStart time.Time) ([]MemberLosses, error) {
	query := `
		SELECT m.user_id, m.username, COALESCE(s.losses_count, 0) AS losses_count
		FROM group_members m
		LEFT JOIN monthly_stats s
		  ON s.group_id = m.group_id
		 AND s.user_id = m.user_id
		 AND s.month_start = $2
		WHERE m.group_id = $1
	`

	var rows []MemberLosses
	err := r.db.SelectContext(ctx, &rows, query, groupID, monthStart.Format("2006-01-02"))
	if err != nil {
		r.logger.Error("Failed to get monthly losses",
			zap.Error(err),
			zap.String("group_id", groupID.String()),
		)
		return nil, fmt.Errorf("failed to get monthly losses: %w", err)
	}

	return rows, nil
}

// BreakCounts lists every member with their breaks in [from, to), zero
// included, fewest first.
func (r *repository) BreakCounts(ctx context.Context, groupID uuid.UUID, from, to time.Time) ([]BreakCount, error) {
	query := `
		SELECT m.user_id, m.username, COUNT(e.id) AS count
		FROM group_members m
		LEFT JOIN events e
		  ON e.group_id = m.group_id
		 AND e.user_id = m.user_id
		 AND e.timestamp >= $2
		 AND e.timestamp < $3
		WHERE m.group_id = $1
		GROUP BY m.user_id, m.username
		ORDER BY count ASC, m.user_id::text ASC
	`

	var rows []BreakCount
	if err := r.db.SelectContext(ctx, &rows, query, groupID, from, to); err != nil {
		r.logger.Error("Failed to count breaks",
			zap.Error(err),
			zap.String("group_id", groupID.String()),
		)
		return nil, fmt.Errorf("failed to count breaks: %w", err)
	}

	return rows, nil
}
