package query

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Udonxai/weak-link/internal/analytics"
	"github.com/Udonxai/weak-link/internal/event"
	"github.com/Udonxai/weak-link/internal/watchlist"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QueryService is what the HTTP handlers need from *Service.
type QueryService interface {
	Leaderboard(ctx context.Context, groupID uuid.UUID, month time.Time) (*Leaderboard, error)
	DailyStats(ctx context.Context, groupID uuid.UUID, from, to time.Time) ([]analytics.DailyStat, error)
	Breaks(ctx context.Context, filter event.Filter) ([]event.BreakEvent, error)
	BreakCounts(ctx context.Context, groupID uuid.UUID, period string) (*BreakCounts, error)
	TrackedApps(ctx context.Context, groupID uuid.UUID) ([]watchlist.TrackedApp, error)
	AddTrackedApps(ctx context.Context, groupID uuid.UUID, selection []AppSelection) (int, error)
	HealthCheck(ctx context.Context) (bool, map[string]string)
}

type Handler struct {
	service QueryService
	logger  *zap.Logger
}

func NewHandler(service QueryService, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) Register(app fiber.Router) {
	app.Get("/health", h.Health)

	groups := app.Group("/groups/:group_id")
	groups.Get("/leaderboard", h.GetLeaderboard)
	groups.Get("/daily-stats", h.GetDailyStats)
	groups.Get("/breaks", h.GetBreaks)
	groups.Get("/break-counts", h.GetBreakCounts)
	groups.Get("/tracked-apps", h.GetTrackedApps)
	groups.Post("/tracked-apps", h.AddTrackedApps)
}

// GetLeaderboard godoc
// @Summary Monthly leaderboard
// @Description Ranks every member by the days they were the weak link, fewest first
// @Tags Leaderboard
// @Produce json
// @Param group_id path string true "Group id"
// @Param month query string false "Month as YYYY-MM, defaults to the current month"
// @Success 200 {object} LeaderboardResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /groups/{group_id}/leaderboard [get]
func (h *Handler) GetLeaderboard(c *fiber.Ctx) error {
	groupID, err := groupParam(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var month time.Time
	if raw := c.Query("month", ""); raw != "" {
		month, err = analytics.ParseMonth(raw)
		if err != nil {
			return badRequest(c, "month must be YYYY-MM")
		}
	}

	board, err := h.service.Leaderboard(c.Context(), groupID, month)
	if err != nil {
		return h.fail(c, err)
	}

	resp := LeaderboardResponse{
		GroupID: groupID,
		Month:   board.Month.Format("2006-01"),
		Entries: make([]LeaderboardEntryResponse, 0, len(board.Entries)),
	}
	for _, r := range board.Entries {
		resp.Entries = append(resp.Entries, LeaderboardEntryResponse{
			Rank:        r.Rank,
			UserID:      r.UserID,
			Username:    r.Username,
			LossesCount: r.LossesCount,
			Perfect:     r.Perfect,
			WeakLink:    r.WeakLink,
		})
	}

	return c.Status(http.StatusOK).JSON(resp)
}

// GetDailyStats godoc
// @Summary Daily losers
// @Description Lists the weak link of every aggregated day in the range, both ends inclusive
// @Tags Leaderboard
// @Produce json
// @Param group_id path string true "Group id"
// @Param from query string true "First date, YYYY-MM-DD"
// @Param to query string true "Last date, YYYY-MM-DD"
// @Success 200 {object} DailyStatsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /groups/{group_id}/daily-stats [get]
func (h *Handler) GetDailyStats(c *fiber.Ctx) error {
	groupID, err := groupParam(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	fromStr, toStr := c.Query("from", ""), c.Query("to", "")
	if fromStr == "" || toStr == "" {
		return badRequest(c, "from and to are required")
	}
	from, err := analytics.ParseDate(fromStr)
	if err != nil {
		return badRequest(c, "invalid 'from' parameter")
	}
	to, err := analytics.ParseDate(toStr)
	if err != nil {
		return badRequest(c, "invalid 'to' parameter")
	}

	stats, err := h.service.DailyStats(c.Context(), groupID, from, to)
	if err != nil {
		return h.fail(c, err)
	}

	resp := DailyStatsResponse{
		GroupID: groupID,
		From:    fromStr,
		To:      toStr,
		Stats:   make([]DailyStatResponse, 0, len(stats)),
	}
	for _, s := range stats {
		resp.Stats = append(resp.Stats, DailyStatResponse{
			Date:        s.StatDate.Format("2006-01-02"),
			LoserUserID: s.LoserUserID,
			LoserCount:  s.LoserCount,
		})
	}

	return c.Status(http.StatusOK).JSON(resp)
}

// GetBreaks godoc
// @Summary Break events
// @Description Lists a group's breaks in [since, until), oldest first
// @Tags Breaks
// @Produce json
// @Param group_id path string true "Group id"
// @Param user_id query string false "Only this member"
// @Param since query string false "RFC3339 lower bound, inclusive"
// @Param until query string false "RFC3339 upper bound, exclusive"
// @Param limit query int false "Max events, default 100, max 1000"
// @Success 200 {object} BreaksResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /groups/{group_id}/breaks [get]
func (h *Handler) GetBreaks(c *fiber.Ctx) error {
	groupID, err := groupParam(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	filter := event.Filter{GroupID: &groupID}

	if raw := c.Query("user_id", ""); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(c, "invalid 'user_id' parameter")
		}
		filter.UserID = &userID
	}
	if filter.Since, err = timeQuery(c, "since"); err != nil {
		return badRequest(c, "invalid 'since' parameter")
	}
	if filter.Until, err = timeQuery(c, "until"); err != nil {
		return badRequest(c, "invalid 'until' parameter")
	}
	if raw := c.Query("limit", ""); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return badRequest(c, "invalid 'limit' parameter")
		}
		filter.Limit = limit
	}

	events, err := h.service.Breaks(c.Context(), filter)
	if err != nil {
		return h.fail(c, err)
	}

	resp := BreaksResponse{
		GroupID: groupID,
		Count:   len(events),
		Events:  make([]BreakResponse, 0, len(events)),
	}
	for _, e := range events {
		resp.Events = append(resp.Events, BreakResponse{
			EventID:       e.ID,
			UserID:        e.UserID,
			AppIdentifier: e.AppIdentifier,
			AppName:       e.AppName,
			Timestamp:     e.Timestamp,
		})
	}

	return c.Status(http.StatusOK).JSON(resp)
}

// GetBreakCounts godoc
// @Summary Live break counts
// @Description Counts every member's breaks today or over the last seven days
// @Tags Breaks
// @Produce json
// @Param group_id path string true "Group id"
// @Param period query string false "today | week" default(today)
// @Success 200 {object} BreakCounts
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /groups/{group_id}/break-counts [get]
func (h *Handler) GetBreakCounts(c *fiber.Ctx) error {
	groupID, err := groupParam(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	counts, err := h.service.BreakCounts(c.Context(), groupID, c.Query("period", PeriodToday))
	if err != nil {
		return h.fail(c, err)
	}

	return c.Status(http.StatusOK).JSON(counts)
}

// GetTrackedApps godoc
// @Summary Tracked apps
// @Description Lists the apps that count as breaks for the group
// @Tags Tracked apps
// @Produce json
// @Param group_id path string true "Group id"
// @Success 200 {object} TrackedAppsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /groups/{group_id}/tracked-apps [get]
func (h *Handler) GetTrackedApps(c *fiber.Ctx) error {
	groupID, err := groupParam(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	apps, err := h.service.TrackedApps(c.Context(), groupID)
	if err != nil {
		return h.fail(c, err)
	}

	return c.Status(http.StatusOK).JSON(TrackedAppsResponse{
		GroupID: groupID,
		Apps:    toAppResponses(apps),
	})
}

// AddTrackedApps godoc
// @Summary Select tracked apps
// @Description Adds apps to the group's watch-list. Apps already tracked are ignored.
// @Tags Tracked apps
// @Accept json
// @Produce json
// @Param group_id path string true "Group id"
// @Param request body AddTrackedAppsRequest true "Selected apps"
// @Success 200 {object} AddTrackedAppsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /groups/{group_id}/tracked-apps [post]
func (h *Handler) AddTrackedApps(c *fiber.Ctx) error {
	groupID, err := groupParam(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req AddTrackedAppsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}

	added, err := h.service.AddTrackedApps(c.Context(), groupID, req.Apps)
	if err != nil {
		return h.fail(c, err)
	}

	apps, err := h.service.TrackedApps(c.Context(), groupID)
	if err != nil {
		return h.fail(c, err)
	}

	return c.Status(http.StatusOK).JSON(AddTrackedAppsResponse{
		Added: added,
		Apps:  toAppResponses(apps),
	})
}

// Health godoc
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} Health
// @Failure 503 {object} Health
// @Router /health [get]
func (h *Handler) Health(c *fiber.Ctx) error {
	healthy, deps := h.service.HealthCheck(c.Context())
	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	return c.Status(code).JSON(Health{Healthy: healthy, Dependencies: deps})
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrInvalidGroupID),
		errors.Is(err, ErrInvalidRange),
		errors.Is(err, ErrInvalidPeriod),
		errors.Is(err, ErrNoApps),
		errors.Is(err, event.ErrInvalidTimeRange),
		errors.Is(err, watchlist.ErrInvalidGroupID),
		errors.Is(err, watchlist.ErrInvalidAppIdentifier):
		return badRequest(c, err.Error())
	default:
		h.logger.Error("Query failed",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error: "internal_server_error",
		})
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
		Error:   "invalid_request",
		Message: msg,
	})
}

func groupParam(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("group_id"))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrInvalidGroupID
	}
	return id, nil
}

func timeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key, "")
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toAppResponses(apps []watchlist.TrackedApp) []TrackedAppResponse {
	out := make([]TrackedAppResponse, 0, len(apps))
	for _, a := range apps {
		out = append(out, TrackedAppResponse{
			AppIdentifier: a.AppIdentifier,
			AppName:       a.DisplayName(),
			Platform:      a.Platform,
		})
	}
	return out
}
