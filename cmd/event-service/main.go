package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Udonxai/weak-link/internal/config"
	"github.com/Udonxai/weak-link/internal/event"
	"github.com/Udonxai/weak-link/internal/group"
	"github.com/Udonxai/weak-link/internal/watchlist"
	"github.com/Udonxai/weak-link/pkg/kafka"
	"github.com/Udonxai/weak-link/pkg/logger"
	pb "github.com/Udonxai/weak-link/pkg/pb/events"
	"github.com/Udonxai/weak-link/pkg/postgres"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

const healthCheckInterval = 15 * time.Second

func main() {

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Error loading config: %v", err))
	}

	log, err := logger.NewLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		panic(fmt.Sprintf("Error initializing logger: %v", err))
	}

	defer log.Sync()

	log = logger.WithService(log, "event-service")
	log.Info("Starting Event Service",
		zap.String("environment", cfg.Environment),
		zap.String("grpc_port", cfg.GRPCPort),
	)

	db, err := postgres.New(postgres.Config{
		DSN:             cfg.Postgres.PostgresDSN(),
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime}, log)

	if err != nil {
		log.Fatal("Error initializing postgres client", zap.Error(err))
	}

	defer db.Close()

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:          cfg.Kafka.Brokers,
		Topic:            cfg.Kafka.Topic,
		Retries:          cfg.Kafka.ProducerRetries,
		Timeout:          cfg.Kafka.ProducerTimeout,
		RequiredAcks:     cfg.Kafka.RequiredAcks,
		Compression:      cfg.Kafka.CompressionType,
		IdempotentWrites: cfg.Kafka.IdempotentWrites,
		MaxMessageBytes:  cfg.Kafka.MaxMessageBytes,
	}, log)

	if err != nil {
		log.Fatal("Error initializing kafka", zap.Error(err))
	}

	defer producer.Close()

	eventRepo := event.NewRepository(db, log)
	apps := watchlist.RepositorySource(watchlist.NewRepository(db, log))
	members := group.NewRepository(db, log)
	eventService := event.NewService(eventRepo, apps, members, producer, log)
	eventHandler := event.NewHandler(eventService, log)

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(
		loggingInterceptor(log),
		recoveryInterceptor(log)),
	)

	pb.RegisterBreakServiceServer(grpcServer, eventHandler)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(pb.BreakService_ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go watchDatabase(ctx, db, healthServer, log)

	listener, err := net.Listen("tcp", ":"+cfg.GRPCPort)

	if err != nil {
		log.Fatal("Error initializing gRPC listener", zap.Error(err))
	}

	go func() {
		log.Info("Starting gRPC server", zap.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(listener); err != nil {
			log.Fatal("Error initializing gRPC server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down gRPC server")
	stop()
	healthServer.Shutdown()

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

	defer cancel()

	select {
	case <-stopped:
		log.Info("gRPC server stopped")
	case <-shutdownCtx.Done():
		log.Warn("shutdown gRPC server timed out")
		grpcServer.Stop()
	}
	log.Info("Event Service stopped")
}

// watchDatabase flips the health status while Postgres is unreachable.
func watchDatabase(ctx context.Context, db *postgres.DB, hs *health.Server, log *zap.Logger) {
	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	serving := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := db.HealthCheck(pingCtx)
		cancel()

		switch {
		case err != nil && serving:
			log.Warn("Postgres unreachable, reporting NOT_SERVING", zap.Error(err))
			hs.SetServingStatus(pb.BreakService_ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
			serving = false
		case err == nil && !serving:
			log.Info("Postgres reachable again")
			hs.SetServingStatus(pb.BreakService_ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
			serving = true
		}
	}
}

func loggingInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		duration := time.Since(start)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Duration("duration", duration),
		}

		if err != nil {
			fields = append(fields, zap.Error(err), zap.Stringer("code", status.Code(err)))
			log.Error("gRPC call failed", fields...)
		} else {
			log.Info("gRPC call", fields...)
		}

		return resp, err
	}
}

func recoveryInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Panic recovered",
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
				)
				err = status.Error(codes.Internal, "internal server error")
			}
		}()

		return handler(ctx, req)
	}
}
