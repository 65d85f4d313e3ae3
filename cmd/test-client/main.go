package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Udonxai/weak-link/internal/config"
	"github.com/Udonxai/weak-link/internal/event"
	"github.com/Udonxai/weak-link/pkg/logger"
	pb "github.com/Udonxai/weak-link/pkg/pb/events"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// test-client checks a running event service end to end: health, the
// group's watch-list, one recorded break and the break listing.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log, err := logger.NewLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer log.Sync()
	log = logger.WithService(log, "test-client")

	userID, err := uuid.Parse(cfg.Watcher.UserID)
	if err != nil {
		log.Fatal("USER_ID must be a member uuid", zap.Error(err))
	}
	groupID, err := uuid.Parse(cfg.Watcher.GroupID)
	if err != nil {
		log.Fatal("GROUP_ID must be a group uuid", zap.Error(err))
	}

	client, err := event.Dial(cfg.Watcher.EventServiceAddr, log)
	if err != nil {
		log.Fatal("Failed to connect", zap.Error(err))
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	health, err := grpc_health_v1.NewHealthClient(client.Conn()).Check(ctx, &grpc_health_v1.HealthCheckRequest{
		Service: pb.BreakService_ServiceName,
	})
	if err != nil {
		log.Fatal("Health check failed", zap.Error(err))
	}
	log.Info("Health check", zap.Stringer("status", health.GetStatus()))

	apps, err := client.ListTrackedApps(ctx, groupID)
	if err != nil {
		log.Fatal("Failed to list tracked apps", zap.Error(err))
	}
	for _, app := range apps {
		log.Info("Tracked app",
			zap.String("app_identifier", app.AppIdentifier),
			zap.String("app_name", app.DisplayName()),
		)
	}
	if len(apps) == 0 {
		log.Warn("Group tracks no apps, nothing to record")
		return
	}

	observed := time.Now()
	ev, err := client.RecordBreak(ctx, event.RecordInput{
		UserID:        userID,
		GroupID:       groupID,
		AppIdentifier: apps[0].AppIdentifier,
		ObservedAt:    &observed,
	})
	if err != nil {
		log.Fatal("Failed to record break", zap.Error(err))
	}
	log.Info("Break recorded",
		zap.String("event_id", ev.ID.String()),
		zap.String("app_name", ev.AppName),
		zap.Time("timestamp", ev.Timestamp),
	)

	since := ev.Timestamp.Add(-time.Hour)
	events, err := client.ListBreaks(ctx, event.Filter{GroupID: &groupID, UserID: &userID, Since: &since})
	if err != nil {
		log.Fatal("Failed to list breaks", zap.Error(err))
	}
	log.Info("Recent breaks", zap.Int("count", len(events)))
}
