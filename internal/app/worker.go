package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"gaha-portal/internal/messaging/kafka"
	"gaha-portal/internal/messaging/kafka/producer"
	"gaha-portal/internal/securitylog"
	"gaha-portal/internal/shared/connection"

	"go.uber.org/zap"
)

const defaultSecurityLogRetentionDays = 90

func RunWorker() error {
	logger := zap.L().Named("app.worker")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	kafkaWriter, err := connection.ConnectKafkaWithRetry(kafkaBroker, 5)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(gormDB)
	securityLogService := securitylog.NewService(securitylog.NewRepository(gormDB))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go producer.ProcessOutboxEvents(
		ctx,
		outboxRepo,
		kafkaWriter,
		logger,
		3*time.Second,
	)

	go purgeSecurityLog(ctx, securityLogService, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()

	return nil
}

// purgeSecurityLog trims security events past the retention window once a
// day, plus once at startup so a long-stopped worker catches up.
func purgeSecurityLog(ctx context.Context, svc securitylog.Service, logger *zap.Logger) {
	log := logger.Named("securitylog.purge")
	retention := securityLogRetention()

	run := func() {
		deleted, err := svc.Purge(ctx, retention)
		if err != nil {
			log.Error("purge security events failed", zap.Error(err))
			return
		}
		if deleted > 0 {
			log.Info("purged security events", zap.Int64("deleted", deleted))
		}
	}

	run()

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("security log purge stopped")
			return
		case <-ticker.C:
			run()
		}
	}
}

func securityLogRetention() time.Duration {
	days := defaultSecurityLogRetentionDays
	if v := os.Getenv("SECURITY_LOG_RETENTION_DAYS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			days = parsed
		}
	}
	return time.Duration(days) * 24 * time.Hour
}
