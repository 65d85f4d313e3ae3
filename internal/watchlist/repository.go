package watchlist

import (
	"context"
	"fmt"

	"github.com/Udonxai/weak-link/pkg/postgres"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]TrackedApp, error)
	// Add inserts apps in one transaction, ignoring identifiers the group
	// already tracks, and reports how many rows were new. On error nothing is
	// stored.
	Add(ctx context.Context, apps []TrackedApp) (int, error)
}

type repository struct {
	db     postgres.TxQuerier
	logger *zap.Logger
}

func NewRepository(db postgres.TxQuerier, logger *zap.Logger) Repository {
	return &repository{
		db:     db,
		logger: logger,
	}
}

func (r *repository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]TrackedApp, error) {
	query := `
		SELECT id, group_id, app_identifier, app_name, platform, created_at
		FROM tracked_apps
		WHERE group_id = $1
		ORDER BY created_at ASC, app_identifier ASC
	`

	var apps []TrackedApp
	if err := r.db.SelectContext(ctx, &apps, query, groupID); err != nil {
		return nil, fmt.Errorf("failed to list tracked apps: %w", err)
	}

	return apps, nil
}

func (r *repository) Add(ctx context.Context, apps []TrackedApp) (int, error) {
	for i := range apps {
		if err := apps[i].Validate(); err != nil {
			return 0, err
		}
	}

	query := `
		INSERT INTO tracked_apps (id, group_id, app_identifier, app_name, platform)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (group_id, app_identifier) DO NOTHING
	`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	inserted := 0
	for i := range apps {
		app := &apps[i]
		if app.ID == uuid.Nil {
			app.ID = uuid.New()
		}

		result, err := tx.ExecContext(ctx, query,
			app.ID,
			app.GroupID,
			app.AppIdentifier,
			app.DisplayName(),
			app.Platform,
		)
		if err != nil {
			r.logger.Error("Failed to insert tracked app",
				zap.Error(err),
				zap.String("group_id", app.GroupID.String()),
				zap.String("app_identifier", app.AppIdentifier),
			)
			return 0, fmt.Errorf("failed to insert tracked app: %w", err)
		}

		n, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if n == 0 {
			r.logger.Debug("Tracked app already present",
				zap.String("group_id", app.GroupID.String()),
				zap.String("app_identifier", app.AppIdentifier),
			)
			continue
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit tracked apps: %w", err)
	}

	return inserted, nil
}
