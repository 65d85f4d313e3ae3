package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/Udonxai/weak-link/internal/analytics"
	"github.com/Udonxai/weak-link/internal/config"
	"github.com/Udonxai/weak-link/internal/group"
	"github.com/Udonxai/weak-link/internal/notify"
	"github.com/Udonxai/weak-link/pkg/kafka"
	"github.com/Udonxai/weak-link/pkg/logger"
	"github.com/Udonxai/weak-link/pkg/postgres"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

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

	log = logger.WithService(log, "analytics-service")
	log.Info("Starting Analytics Service",
		zap.String("environment", cfg.Environment),
		zap.String("consumer_group", cfg.Kafka.ConsumerGroup),
		zap.String("timezone", cfg.Aggregation.TimeZone),
		zap.Duration("interval", cfg.Aggregation.Interval),
	)

	db, err := postgres.New(postgres.Config{
		DSN:             cfg.Postgres.PostgresDSN(),
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	}, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer db.Close()

	members := group.NewRepository(db, log)

	aggregator := analytics.NewAggregator(
		analytics.NewRepository(db, log),
		members,
		analytics.Config{
			Location:     cfg.Aggregation.Location(),
			LookbackDays: cfg.Aggregation.LookbackDays,
			Workers:      cfg.Aggregation.Workers,
			Grace:        cfg.Aggregation.Grace,
		},
		log.Named("aggregator"),
	)

	dispatcher := notify.NewDispatcher(members, notify.NewLogSender(log.Named("notify")), log)

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:           cfg.Kafka.Brokers,
		Topics:            []string{cfg.Kafka.Topic},
		GroupID:           cfg.Kafka.ConsumerGroup,
		AutoCommit:        true,
		CommitInterval:    1 * time.Second,
		SessionTimeout:    cfg.Kafka.SessionTimeout,
		RebalanceStrategy: "sticky",
	}, dispatcher.Handler(), log)
	if err != nil {
		log.Fatal("Failed to create Kafka consumer", zap.Error(err))
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.Start(gctx)
	})

	g.Go(func() error {
		select {
		case <-consumer.WaitReady():
			log.Info("Kafka consumer is ready and consuming messages")
		case <-gctx.Done():
		}
		return nil
	})

	g.Go(func() error {
		return aggregator.Run(gctx, cfg.Aggregation.Interval)
	})

	if err := g.Wait(); err != nil {
		log.Error("Analytics Service stopped with error", zap.Error(err))
		return
	}

	log.Info("Analytics Service stopped")
}
