package group

import (
	"context"
	"fmt"

	"github.com/Udonxai/weak-link/pkg/postgres"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Repository reads memberships. The table is owned by the group service.
type Repository interface {
	Members(ctx context.Context, groupID uuid.UUID) ([]Member, error)
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
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

func (r *repository) Members(ctx context.Context, groupID uuid.UUID) ([]Member, error) {
	if groupID == uuid.Nil {
		return nil, ErrInvalidGroupID
	}

	query := `
		SELECT group_id, user_id, username, joined_at
		FROM group_members
		WHERE group_id = $1
		ORDER BY user_id ASC
	`

	var members []Member
	if err := r.db.SelectContext(ctx, &members, query, groupID); err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}

	return members, nil
}

func (r *repository) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2
		)
	`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, groupID, userID); err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}

	return exists, nil
}
