package app

import (
	"gaha-portal/internal/auth"
	"gaha-portal/internal/authz"
	"gaha-portal/internal/employee"
	"gaha-portal/internal/messaging/kafka"
	"gaha-portal/internal/middleware"
	"gaha-portal/internal/securitylog"
	"gaha-portal/internal/timeclock"
	"gaha-portal/internal/twofactor"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	employeeRepo := employee.NewRepository(gormDB)
	timeclockRepo := timeclock.NewRepository(gormDB)
	securityLogRepo := securitylog.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(gormDB)

	// --- Authorization Core ---
	authzService, err := authz.NewService()
	if err != nil {
		return err
	}

	// --- Services ---
	lockout := auth.NewLockout(rdb)
	blacklist := auth.NewBlacklist(rdb)
	securityLogService := securitylog.NewService(securityLogRepo)
	authService := auth.NewService(employeeRepo, lockout, blacklist, securityLogService)
	employeeService := employee.NewServiceWithOutbox(gormDB, employeeRepo, outboxRepo, rdb)
	timeclockService := timeclock.NewServiceWithOutbox(gormDB, timeclockRepo, outboxRepo)
	twofactorService := twofactor.NewService(employeeRepo, rdb)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	employeeHandler := employee.NewHandler(employeeService)
	timeclockHandler := timeclock.NewHandlerWithRedis(timeclockService, authzService, rdb)
	twofactorHandler := twofactor.NewHandler(twofactorService)

	// --- Shared Middleware ---
	router.Use(middleware.ContextLogger(zap.L()))
	authed := middleware.AuthMiddleware(blacklist)
	idempotent := middleware.Idempotency(rdb)

	// --- Routes Registration ---
	// The web client predates this service, so paths stay at the root
	// instead of under an /api prefix.
	root := router.Group("")
	{
		auth.RegisterRoutes(root, authHandler, authed)
		employee.RegisterRoutes(root, employeeHandler, authed, authzService)
		timeclock.RegisterRoutes(root, timeclockHandler, authed, idempotent, authzService)
		twofactor.RegisterRoutes(root, twofactorHandler, authed)
	}

	return nil
}
