package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/Udonxai/weak-link/pkg/postgres"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	GroupsWithEvents(ctx context.Context, from, to time.Time) ([]uuid.UUID, error)
	CountBreaksByUser(ctx context.Context, groupID uuid.UUID, from, to time.Time) ([]UserCount, error)
	UpsertDailyStat(ctx context.Context, stat *DailyStat) error
	// DeleteDailyStat removes the stat of (groupID, date) and reports whether
	// a row existed.
	DeleteDailyStat(ctx context.Context, groupID uuid.UUID, date time.Time) (bool, error)
	// ListDailyStats returns stats with from <= stat_date <= to, by date.
	ListDailyStats(ctx context.Context, groupID uuid.UUID, from, to time.Time) ([]DailyStat, error)
	UpsertMonthlyStat(ctx context.Context, stat *MonthlyStat) error
	ListMonthlyStats(ctx context.Context, groupID uuid.UUID, monthStart time.Time) ([]MonthlyStat, error)
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

func (r *repository) GroupsWithEvents(ctx context.Context, from, to time.Time) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT group_id
		FROM events
		WHERE timestamp >= $1 AND timestamp < $2
		ORDER BY group_id
	`

	var groups []uuid.UUID
	if err := r.db.SelectContext(ctx, &groups, query, from, to); err != nil {
		return nil, fmt.Errorf("failed to list active groups: %w", err)
	}

	return groups, nil
}

func (r *repository) CountBreaksByUser(ctx context.Context, groupID uuid.UUID, from, to time.Time) ([]UserCount, error) {
	query := `
		SELECT user_id, COUNT(*) AS count
		FROM events
		WHERE group_id = $1 AND timestamp >= $2 AND timestamp < $3
		GROUP BY user_id
		ORDER BY user_id
	`

	var counts []UserCount
	if err := r.db.SelectContext(ctx, &counts, query, groupID, from, to); err != nil {
		return nil, fmt.Errorf("failed to count breaks: %w", err)
	}

	return counts, nil
}

// UpsertDailyStat overwrites the loser of (group_id, stat_date).
func (r *repository) UpsertDailyStat(ctx context.Context, stat *DailyStat) error {
	query := `
		INSERT INTO daily_stats (group_id, loser_user_id, stat_date, loser_count, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (group_id, stat_date)
		DO UPDATE SET
			loser_user_id = EXCLUDED.loser_user_id,
			loser_count = EXCLUDED.loser_count,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		stat.GroupID,
		stat.LoserUserID,
		stat.StatDate.Format(dateLayout),
		stat.LoserCount,
		stat.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert daily stat", zap.Error(err))
		return fmt.Errorf("failed to upsert daily stat: %w", err)
	}

	r.logger.Debug("Daily stat upserted",
		zap.String("group_id", stat.GroupID.String()),
		zap.String("stat_date", stat.StatDate.Format(dateLayout)),
		zap.String("loser_user_id", stat.LoserUserID.String()),
		zap.Int("loser_count", stat.LoserCount),
	)

	return nil
}

func (r *repository) DeleteDailyStat(ctx context.Context, groupID uuid.UUID, date time.Time) (bool, error) {
	query := `
		DELETE FROM daily_stats
		WHERE group_id = $1 AND stat_date = $2
	`

	res, err := r.db.ExecContext(ctx, query, groupID, date.Format(dateLayout))
	if err != nil {
		r.logger.Error("Failed to delete daily stat", zap.Error(err))
		return false, fmt.Errorf("failed to delete daily stat: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete daily stat: %w", err)
	}
	if n > 0 {
		r.logger.Info("Stale daily stat removed",
			zap.String("group_id", groupID.String()),
			zap.String("stat_date", date.Format(dateLayout)),
		)
	}

	return n > 0, nil
}

func (r *repository) ListDailyStats(ctx context.Context, groupID uuid.UUID, from, to time.Time) ([]DailyStat, error) {
	query := `
		SELECT group_id, loser_user_id, stat_date, loser_count, updated_at
		FROM daily_stats
		WHERE group_id = $1 AND stat_date >= $2 AND stat_date <= $3
		ORDER BY stat_date
	`

	var stats []DailyStat
	err := r.db.SelectContext(ctx, &stats, query, groupID, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to list daily stats: %w", err)
	}

	return stats, nil
}

// UpsertMonthlyStat stores a recomputed count; the rollup is the source of
// truth, so the stored value is replaced rather than incremented.
func (r *repository) UpsertMonthlyStat(ctx context.Context, stat *MonthlyStat) error {
	query := `
		INSERT INTO monthly_stats (user_id, group_id, month_start, losses_count, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, group_id, month_start)
		DO UPDATE SET
			losses_count = EXCLUDED.losses_count,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		stat.UserID,
		stat.GroupID,
		stat.MonthStart.Format(dateLayout),
		stat.LossesCount,
		stat.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert monthly stat", zap.Error(err))
		return fmt.Errorf("failed to upsert monthly stat: %w", err)
	}

	return nil
}

func (r *repository) ListMonthlyStats(ctx context.Context, groupID uuid.UUID, monthStart time.Time) ([]MonthlyStat, error) {
	query := `
		SELECT user_id, group_id, month_start, losses_count, updated_at
		FROM monthly_stats
		WHERE group_id = $1 AND month_start = $2
		ORDER BY user_id
	`

	var stats []MonthlyStat
	err := r.db.SelectContext(ctx, &stats, query, groupID, MonthStart(monthStart).Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to list monthly stats: %w", err)
	}

	return stats, nil
}
