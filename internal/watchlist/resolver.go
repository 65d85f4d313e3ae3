package watchlist

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Source is the backing store of a resolver: the repository on the server,
// the event-service client on a device.
type Source interface {
	ListTrackedApps(ctx context.Context, groupID uuid.UUID) ([]TrackedApp, error)
}

type SourceFunc func(ctx context.Context, groupID uuid.UUID) ([]TrackedApp, error)

func (f SourceFunc) ListTrackedApps(ctx context.Context, groupID uuid.UUID) ([]TrackedApp, error) {
	return f(ctx, groupID)
}

// RepositorySource adapts a Repository to Source.
func RepositorySource(repo Repository) Source {
	return SourceFunc(repo.ListByGroup)
}

// Resolver caches one WatchList per group. A failed refetch keeps the
// previous snapshot and returns it with ErrStaleWatchList.
type Resolver struct {
	source Source
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[uuid.UUID]*WatchList
}

func NewResolver(source Source, logger *zap.Logger) *Resolver {
	return &Resolver{
		source: source,
		logger: logger,
		cache:  make(map[uuid.UUID]*WatchList),
	}
}

// Resolve returns the cached list, fetching it on first use.
func (r *Resolver) Resolve(ctx context.Context, groupID uuid.UUID) (*WatchList, error) {
	if groupID == uuid.Nil {
		return nil, ErrInvalidGroupID
	}

	r.mu.RLock()
	wl, ok := r.cache[groupID]
	r.mu.RUnlock()
	if ok {
		return wl, nil
	}

	return r.Refetch(ctx, groupID)
}

// Refetch always goes to the source.
func (r *Resolver) Refetch(ctx context.Context, groupID uuid.UUID) (*WatchList, error) {
	if groupID == uuid.Nil {
		return nil, ErrInvalidGroupID
	}

	apps, err := r.source.ListTrackedApps(ctx, groupID)
	if err != nil {
		last := r.lastKnown(groupID)
		r.logger.Warn("Failed to fetch watch-list, keeping last known",
			zap.Error(err),
			zap.String("group_id", groupID.String()),
			zap.Int("apps", last.Len()),
		)
		return last, fmt.Errorf("%w: %v", ErrStaleWatchList, err)
	}

	wl := NewWatchList(groupID, apps)

	r.mu.Lock()
	r.cache[groupID] = wl
	r.mu.Unlock()

	r.logger.Debug("Watch-list fetched",
		zap.String("group_id", groupID.String()),
		zap.Int("apps", wl.Len()),
	)

	return wl, nil
}

// Invalidate drops the cached list so the next Resolve refetches.
func (r *Resolver) Invalidate(groupID uuid.UUID) {
	r.mu.Lock()
	delete(r.cache, groupID)
	r.mu.Unlock()
}

func (r *Resolver) lastKnown(groupID uuid.UUID) *WatchList {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if wl, ok := r.cache[groupID]; ok {
		return wl
	}
	return NewWatchList(groupID, nil)
}
