package analytics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Udonxai/weak-link/internal/group"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Members interface {
	Members(ctx context.Context, groupID uuid.UUID) ([]group.Member, error)
}

type Config struct {
	Location     *time.Location
	LookbackDays int
	Workers      int
	Grace        time.Duration
}

// Aggregator derives daily losers and monthly loss counts from the event log.
// Every write is a deterministic upsert, so concurrent or repeated runs over
// the same closed days converge on the same rows.
type Aggregator struct {
	repo    Repository
	members Members
	cfg     Config
	now     func() time.Time
	logger  *zap.Logger
}

func NewAggregator(repo Repository, members Members, cfg Config, logger *zap.Logger) *Aggregator {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.LookbackDays < 1 {
		cfg.LookbackDays = 1
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Aggregator{
		repo:    repo,
		members: members,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  logger,
	}
}

func (a *Aggregator) Location() *time.Location {
	return a.cfg.Location
}

// AggregateDay recomputes the loser of one closed day. Only events of current
// members count. Returns ErrNoEvents when no member had a break; a loser
// stored for that day by an earlier run is removed.
func (a *Aggregator) AggregateDay(ctx context.Context, groupID uuid.UUID, date time.Time) (*DailyStat, error) {
	stat, _, err := a.aggregateDay(ctx, groupID, date)
	return stat, err
}

// aggregateDay also reports whether a stored loser was removed.
func (a *Aggregator) aggregateDay(ctx context.Context, groupID uuid.UUID, date time.Time) (*DailyStat, bool, error) {
	if groupID == uuid.Nil {
		return nil, false, ErrInvalidGroupID
	}
	if !IsClosed(date, a.now(), a.cfg.Location, a.cfg.Grace) {
		return nil, false, ErrDayNotClosed
	}

	members, err := a.members.Members(ctx, groupID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load members: %w", err)
	}
	isMember := make(map[uuid.UUID]bool, len(members))
	for _, m := range members {
		isMember[m.UserID] = true
	}

	from, to := DayBounds(date, a.cfg.Location)
	counts, err := a.repo.CountBreaksByUser(ctx, groupID, from, to)
	if err != nil {
		return nil, false, err
	}

	memberCounts := make([]UserCount, 0, len(counts))
	for _, c := range counts {
		if isMember[c.UserID] {
			memberCounts = append(memberCounts, c)
		}
	}

	day := DateOf(from, a.cfg.Location)
	loser, ok := DailyLoser(memberCounts)
	if !ok {
		removed, err := a.repo.DeleteDailyStat(ctx, groupID, day)
		if err != nil {
			return nil, false, err
		}
		return nil, removed, ErrNoEvents
	}

	stat := &DailyStat{
		GroupID:     groupID,
		LoserUserID: loser.UserID,
		StatDate:    day,
		LoserCount:  loser.Count,
		UpdatedAt:   a.now(),
	}
	if err := a.repo.UpsertDailyStat(ctx, stat); err != nil {
		return nil, false, err
	}

	return stat, false, nil
}

// RecomputeMonth rebuilds every member's loss count for the month from the
// stored daily stats. Users whose stored count no longer matches are
// rewritten, including back to zero.
func (a *Aggregator) RecomputeMonth(ctx context.Context, groupID uuid.UUID, monthStart time.Time) ([]MonthlyStat, error) {
	if groupID == uuid.Nil {
		return nil, ErrInvalidGroupID
	}
	month := MonthStart(monthStart)

	daily, err := a.repo.ListDailyStats(ctx, groupID, month, MonthEnd(month))
	if err != nil {
		return nil, err
	}
	rollup := MonthlyRollup(groupID, month, daily)

	existing, err := a.repo.ListMonthlyStats(ctx, groupID, month)
	if err != nil {
		return nil, err
	}
	stored := make(map[uuid.UUID]int, len(existing))
	for _, s := range existing {
		stored[s.UserID] = s.LossesCount
	}

	now := a.now()
	seen := make(map[uuid.UUID]bool, len(rollup))
	for i := range rollup {
		stat := &rollup[i]
		seen[stat.UserID] = true
		stat.UpdatedAt = now
		if n, ok := stored[stat.UserID]; ok && n == stat.LossesCount {
			continue
		}
		if err := a.repo.UpsertMonthlyStat(ctx, stat); err != nil {
			return nil, err
		}
	}

	for _, s := range existing {
		if seen[s.UserID] || s.LossesCount == 0 {
			continue
		}
		a.logger.Warn("Monthly losses dropped on recompute",
			zap.String("group_id", groupID.String()),
			zap.String("user_id", s.UserID.String()),
			zap.Int("stored", s.LossesCount),
		)
		zero := MonthlyStat{UserID: s.UserID, GroupID: groupID, MonthStart: month, UpdatedAt: now}
		if err := a.repo.UpsertMonthlyStat(ctx, &zero); err != nil {
			return nil, err
		}
	}

	return rollup, nil
}

// Rollover aggregates the closed days of the lookback window for every group
// with events in it, then recomputes the months those days fall in. Groups
// run concurrently; one failing group does not stop the others.
func (a *Aggregator) Rollover(ctx context.Context, now time.Time) (RolloverResult, error) {
	days := ClosedDays(now, a.cfg.Location, a.cfg.LookbackDays, a.cfg.Grace)
	from, _ := DayBounds(days[0], a.cfg.Location)
	_, to := DayBounds(days[len(days)-1], a.cfg.Location)

	groups, err := a.repo.GroupsWithEvents(ctx, from, to)
	if err != nil {
		return RolloverResult{}, err
	}

	var (
		aggregated atomic.Int64
		months     atomic.Int64
		errsMu     sync.Mutex
		errs       []error
	)

	var g errgroup.Group
	g.SetLimit(a.cfg.Workers)

	for _, groupID := range groups {
		g.Go(func() error {
			d, m, err := a.rolloverGroup(ctx, groupID, days)
			aggregated.Add(int64(d))
			months.Add(int64(m))
			if err != nil {
				a.logger.Error("Rollover failed for group",
					zap.String("group_id", groupID.String()),
					zap.Error(err),
				)
				errsMu.Lock()
				errs = append(errs, fmt.Errorf("group %s: %w", groupID, err))
				errsMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	result := RolloverResult{
		Groups: len(groups),
		Days:   int(aggregated.Load()),
		Months: int(months.Load()),
	}

	a.logger.Info("Rollover completed",
		zap.String("from", days[0].Format(dateLayout)),
		zap.String("to", days[len(days)-1].Format(dateLayout)),
		zap.Int("groups", result.Groups),
		zap.Int("days", result.Days),
		zap.Int("months", result.Months),
		zap.Int("failed_groups", len(errs)),
	)

	return result, errors.Join(errs...)
}

func (a *Aggregator) rolloverGroup(ctx context.Context, groupID uuid.UUID, days []time.Time) (int, int, error) {
	aggregated := 0
	touched := make(map[time.Time]bool)

	for _, day := range days {
		if err := ctx.Err(); err != nil {
			return aggregated, 0, err
		}
		_, removed, err := a.aggregateDay(ctx, groupID, day)
		switch {
		case errors.Is(err, ErrNoEvents):
			if removed {
				touched[MonthStart(day)] = true
			}
			continue
		case err != nil:
			return aggregated, 0, fmt.Errorf("day %s: %w", day.Format(dateLayout), err)
		}
		aggregated++
		touched[MonthStart(day)] = true
	}

	months := 0
	for month := range touched {
		if _, err := a.RecomputeMonth(ctx, groupID, month); err != nil {
			return aggregated, months, fmt.Errorf("month %s: %w", month.Format("2006-01"), err)
		}
		months++
	}

	return aggregated, months, nil
}

// Run calls Rollover immediately and then every interval until ctx is done.
func (a *Aggregator) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := a.Rollover(ctx, a.now()); err != nil {
			a.logger.Error("Rollover finished with errors", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			a.logger.Info("Aggregation scheduler stopped")
			return nil
		case <-ticker.C:
		}
	}
}
