package event

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type fakeResult struct{}

func (fakeResult) LastInsertId() (int64, error) { return 0, errors.New("not implemented") }
func (fakeResult) RowsAffected() (int64, error) { return 1, nil }

type fakeDB struct {
	ExecFn    func(ctx context.Context, query string, args ...any) (sql.Result, error)
	SelectFn  func(ctx context.Context, dest any, query string, args ...any) error
	lastQuery string
	lastArgs  []any
}

func (f *fakeDB) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return sql.ErrNoRows
}

func (f *fakeDB) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	f.lastQuery = query
	f.lastArgs = args
	if f.SelectFn != nil {
		return f.SelectFn(ctx, dest, query, args...)
	}
	return nil
}

func (f *fakeDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.lastQuery = query
	f.lastArgs = args
	if f.ExecFn != nil {
		return f.ExecFn(ctx, query, args...)
	}
	return fakeResult{}, nil
}

func TestRepository_Append(t *testing.T) {
	db := &fakeDB{}
	repo := NewRepository(db, zap.NewNop())

	ev := NewBreakEvent(uuid.New(), uuid.New(), "com.instagram.android", "Instagram", time.Now())
	if err := repo.Append(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(db.lastQuery, "INSERT INTO events") {
		t.Fatalf("unexpected query: %s", db.lastQuery)
	}
	if len(db.lastArgs) != 7 || db.lastArgs[0] != ev.ID {
		t.Fatalf("unexpected args: %v", db.lastArgs)
	}
}

func TestRepository_Append_Duplicate(t *testing.T) {
	db := &fakeDB{
		ExecFn: func(ctx context.Context, query string, args ...any) (sql.Result, error) {
			return nil, &pq.Error{Code: "23505"}
		},
	}
	repo := NewRepository(db, zap.NewNop())

	err := repo.Append(context.Background(), NewBreakEvent(uuid.New(), uuid.New(), "a", "A", time.Now()))
	if !errors.Is(err, ErrDuplicateEvent) {
		t.Fatalf("expected ErrDuplicateEvent, got %v", err)
	}
}

func TestRepository_Append_Invalid(t *testing.T) {
	db := &fakeDB{}
	repo := NewRepository(db, zap.NewNop())

	err := repo.Append(context.Background(), NewBreakEvent(uuid.New(), uuid.New(), "", "", time.Now()))
	if !errors.Is(err, ErrInvalidAppIdentifier) {
		t.Fatalf("expected ErrInvalidAppIdentifier, got %v", err)
	}
	if db.lastQuery != "" {
		t.Fatalf("no query expected")
	}
}

func TestRepository_Query_BuildsFilter(t *testing.T) {
	db := &fakeDB{}
	repo := NewRepository(db, zap.NewNop())

	groupID := uuid.New()
	userID := uuid.New()
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	until := since.Add(24 * time.Hour)

	_, err := repo.Query(context.Background(), Filter{
		GroupID: &groupID,
		UserID:  &userID,
		Since:   &since,
		Until:   &until,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, part := range []string{
		"group_id = $1",
		"user_id = $2",
		"timestamp >= $3",
		"timestamp < $4",
		"ORDER BY timestamp ASC, id ASC LIMIT $5",
	} {
		if !strings.Contains(db.lastQuery, part) {
			t.Fatalf("expected %q in query: %s", part, db.lastQuery)
		}
	}
	if db.lastArgs[4] != DefaultListLimit {
		t.Fatalf("expected default limit, got %v", db.lastArgs[4])
	}
}

func TestRepository_Query_NoFilterCapsLimit(t *testing.T) {
	db := &fakeDB{}
	repo := NewRepository(db, zap.NewNop())

	if _, err := repo.Query(context.Background(), Filter{Limit: 10 * MaxListLimit}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(db.lastQuery, "WHERE") {
		t.Fatalf("unexpected WHERE: %s", db.lastQuery)
	}
	if db.lastArgs[0] != MaxListLimit {
		t.Fatalf("expected capped limit, got %v", db.lastArgs[0])
	}
}

func TestRepository_Query_InvalidRange(t *testing.T) {
	repo := NewRepository(&fakeDB{}, zap.NewNop())

	now := time.Now()
	_, err := repo.Query(context.Background(), Filter{Since: &now, Until: &now})
	if !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("expected ErrInvalidTimeRange, got %v", err)
	}
}
