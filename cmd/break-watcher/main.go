package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Udonxai/weak-link/internal/config"
	"github.com/Udonxai/weak-link/internal/event"
	"github.com/Udonxai/weak-link/internal/watcher"
	"github.com/Udonxai/weak-link/internal/watchlist"
	"github.com/Udonxai/weak-link/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// break-watcher is the device agent. It polls the foreground app and records
// a break whenever a tracked app comes to the front.
//
//	SIGUSR1  host went to the background (suspend polling)
//	SIGUSR2  host is back in the foreground
//	SIGHUP   refetch the watch-list now
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

	log = logger.WithSession(logger.WithService(log, "break-watcher"), cfg.Watcher.UserID, cfg.Watcher.GroupID)

	userID, err := uuid.Parse(cfg.Watcher.UserID)
	if err != nil {
		log.Fatal("USER_ID must be set to the member's uuid", zap.Error(err))
	}
	groupID, err := uuid.Parse(cfg.Watcher.GroupID)
	if err != nil {
		log.Fatal("GROUP_ID must be set to the group's uuid", zap.Error(err))
	}

	client, err := event.Dial(cfg.Watcher.EventServiceAddr, log)
	if err != nil {
		log.Fatal("Failed to connect to event service", zap.Error(err))
	}
	defer client.Close()

	resolver := watchlist.NewResolver(client, log)
	probe := watcher.NewCommandProbe(cfg.Watcher.ProbeCommand, log)
	recorder := watcher.RecorderFunc(func(ctx context.Context, b watcher.Break) error {
		observed := b.ObservedAt
		_, err := client.RecordBreak(ctx, event.RecordInput{
			EventID:       b.ID,
			UserID:        b.UserID,
			GroupID:       b.GroupID,
			AppIdentifier: b.AppIdentifier,
			AppName:       b.AppName,
			ObservedAt:    &observed,
		})
		if errors.Is(err, event.ErrDuplicateEvent) {
			return watcher.ErrAlreadyRecorded
		}
		return err
	})

	w := watcher.New(probe, recorder, resolver, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	enableCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = w.Enable(enableCtx, watcher.Config{
		Session:     watcher.Session{UserID: userID, GroupID: groupID},
		Interval:    cfg.Watcher.PollInterval,
		TickTimeout: cfg.Watcher.TickTimeout,
	})
	cancel()
	if err != nil {
		log.Fatal("Failed to start watching", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return w.Run(gctx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.Watcher.RefreshInterval)
		defer ticker.Stop()

		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)

		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
			case <-hup:
				log.Info("Watch-list refresh requested")
			}
			refresh(gctx, w, log)
		}
	})

	g.Go(func() error {
		host := make(chan os.Signal, 1)
		signal.Notify(host, syscall.SIGUSR1, syscall.SIGUSR2)
		defer signal.Stop(host)

		for {
			select {
			case <-gctx.Done():
				return nil
			case sig := <-host:
				w.SetHostActive(sig == syscall.SIGUSR2)
			}
		}
	})

	if err := g.Wait(); err != nil {
		log.Error("Watcher stopped with error", zap.Error(err))
	}

	w.Disable()
	log.Info("Break watcher stopped")
}

func refresh(ctx context.Context, w *watcher.Watcher, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := w.RefreshWatchList(ctx)
	switch {
	case err == nil:
		log.Debug("Watch-list refreshed", zap.Stringer("state", w.State()))
	case errors.Is(err, watchlist.ErrStaleWatchList):
		log.Warn("Watch-list refresh failed, keeping last known list", zap.Error(err))
	default:
		log.Error("Watch-list refresh failed", zap.Error(err))
	}
}
