package query

import (
	"context"
	"fmt"
	"time"

	"github.com/Udonxai/weak-link/internal/analytics"
	"github.com/Udonxai/weak-link/internal/event"
	"github.com/Udonxai/weak-link/internal/group"
	"github.com/Udonxai/weak-link/internal/leaderboard"
	"github.com/Udonxai/weak-link/internal/watchlist"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DailyStatsRepository interface {
	ListDailyStats(ctx context.Context, groupID uuid.UUID, from, to time.Time) ([]analytics.DailyStat, error)
}

type BreakRepository interface {
	Query(ctx context.Context, filter event.Filter) ([]event.BreakEvent, error)
}

type TrackedAppRepository interface {
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]watchlist.TrackedApp, error)
	Add(ctx context.Context, apps []watchlist.TrackedApp) (int, error)
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Service struct {
	repo   Repository
	daily  DailyStatsRepository
	breaks BreakRepository
	apps   TrackedAppRepository
	db     HealthChecker
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

func NewService(
	repo Repository,
	daily DailyStatsRepository,
	breaks BreakRepository,
	apps TrackedAppRepository,
	db HealthChecker,
	loc *time.Location,
	logger *zap.Logger,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:   repo,
		daily:  daily,
		breaks: breaks,
		apps:   apps,
		db:     db,
		loc:    loc,
		now:    time.Now,
		logger: logger,
	}
}

// Leaderboard ranks every member of the group by their losses in month. A
// zero month means the current one.
func (s *Service) Leaderboard(ctx context.Context, groupID uuid.UUID, month time.Time) (*Leaderboard, error) {
	if groupID == uuid.Nil {
		return nil, ErrInvalidGroupID
	}
	if month.IsZero() {
		month = analytics.DateOf(s.now(), s.loc)
	}

	month = analytics.MonthStart(month)

	rows, err := s.repo.MonthlyLosses(ctx, groupID, month)
	if err != nil {
		return nil, err
	}

	entries := make([]leaderboard.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, leaderboard.Entry{
			UserID:      r.UserID,
			Username:    group.Member{UserID: r.UserID, Username: r.Username}.DisplayName(),
			LossesCount: r.LossesCount,
		})
	}

	ranked := leaderboard.Rank(entries)
	s.logger.Debug("Leaderboard built",
		zap.String("group_id", groupID.String()),
		zap.String("month", month.Format("2006-01")),
		zap.Int("members", len(ranked)),
	)
	return &Leaderboard{Month: month, Entries: ranked}, nil
}

// DailyStats lists the daily losers between two dates, both inclusive.
func (s *Service) DailyStats(ctx context.Context, groupID uuid.UUID, from, to time.Time) ([]analytics.DailyStat, error) {
	if groupID == uuid.Nil {
		return nil, ErrInvalidGroupID
	}
	if to.Before(from) || to.Sub(from) > maxDailyRange*24*time.Hour {
		return nil, ErrInvalidRange
	}

	stats, err := s.daily.ListDailyStats(ctx, groupID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily stats: %w", err)
	}
	return stats, nil
}

func (s *Service) Breaks(ctx context.Context, filter event.Filter) ([]event.BreakEvent, error) {
	if filter.GroupID == nil || *filter.GroupID == uuid.Nil {
		return nil, ErrInvalidGroupID
	}
	return s.breaks.Query(ctx, filter)
}

// BreakCounts counts live breaks per member since the start of today, or of
// the day six days ago for the week, in the aggregation time zone.
func (s *Service) BreakCounts(ctx context.Context, groupID uuid.UUID, period string) (*BreakCounts, error) {
	if groupID == uuid.Nil {
		return nil, ErrInvalidGroupID
	}

	now := s.now()
	from, _ := analytics.DayBounds(analytics.DateOf(now, s.loc), s.loc)
	switch period {
	case PeriodToday, "":
		period = PeriodToday
	case PeriodWeek:
		from = from.AddDate(0, 0, -6)
	default:
		return nil, ErrInvalidPeriod
	}

	counts, err := s.repo.BreakCounts(ctx, groupID, from, now)
	if err != nil {
		return nil, err
	}
	for i := range counts {
		counts[i].Username = group.Member{UserID: counts[i].UserID, Username: counts[i].Username}.DisplayName()
	}

	return &BreakCounts{
		Period: period,
		From:   from,
		To:     now,
		Counts: counts,
	}, nil
}

func (s *Service) TrackedApps(ctx context.Context, groupID uuid.UUID) ([]watchlist.TrackedApp, error) {
	if groupID == uuid.Nil {
		return nil, ErrInvalidGroupID
	}
	apps, err := s.apps.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return watchlist.NewWatchList(groupID, apps).Apps(), nil
}

// AddTrackedApps stores the selection and returns how many apps were new.
// Identifiers the group already tracks are ignored.
func (s *Service) AddTrackedApps(ctx context.Context, groupID uuid.UUID, selection []AppSelection) (int, error) {
	if groupID == uuid.Nil {
		return 0, ErrInvalidGroupID
	}
	if len(selection) == 0 {
		return 0, ErrNoApps
	}

	apps := make([]watchlist.TrackedApp, 0, len(selection))
	for _, sel := range selection {
		app := watchlist.TrackedApp{
			ID:            uuid.New(),
			GroupID:       groupID,
			AppIdentifier: sel.AppIdentifier,
			AppName:       sel.AppName,
			Platform:      sel.Platform,
			CreatedAt:     s.now().UTC(),
		}
		if err := app.Validate(); err != nil {
			return 0, err
		}
		if app.AppName == "" {
			app.AppName = watchlist.DisplayName(app.AppIdentifier)
		}
		if app.Platform == "" {
			app.Platform = watchlist.PlatformAndroid
		}
		apps = append(apps, app)
	}

	added, err := s.apps.Add(ctx, apps)
	if err != nil {
		return 0, err
	}

	s.logger.Info("Tracked apps added",
		zap.String("group_id", groupID.String()),
		zap.Int("requested", len(apps)),
		zap.Int("added", added),
	)
	return added, nil
}

func (s *Service) HealthCheck(ctx context.Context) (bool, map[string]string) {
	status := make(map[string]string)

	if err := s.db.HealthCheck(ctx); err != nil {
		s.logger.Warn("Postgres health check failed", zap.Error(err))
		status["postgres"] = err.Error()
		return false, status
	}

	status["postgres"] = "ok"
	return true, status
}
