package app

import (
	"os"
	"strings"
	"time"

	"gaha-portal/internal/employee"
	"gaha-portal/internal/messaging/kafka"
	"gaha-portal/internal/securitylog"
	"gaha-portal/internal/shared/connection"
	"gaha-portal/internal/timeclock"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func BuildApp(router *gin.Engine) error {
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

	if err := gormDB.AutoMigrate(
		&employee.Employee{},
		&timeclock.TimeEntry{},
		&securitylog.SecurityEvent{},
		&kafka.OutboxEvent{},
	); err != nil {
		return err
	}

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}

	router.Use(cors.New(corsConfig()))

	return registerModules(router, gormDB, redisClient)
}

// corsConfig allows the agency's web client; origins come from env so
// staging and production can differ.
func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	origins := os.Getenv("CORS_ORIGINS")
	if origins == "" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = splitOrigins(origins)
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", "Idempotency-Key", "X-Request-ID")
	cfg.MaxAge = 12 * time.Hour
	return cfg
}

func splitOrigins(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
