package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medready/paramedic-ops-api/internal/handler"
	internalmiddleware "github.com/medready/paramedic-ops-api/internal/middleware"
	"github.com/medready/paramedic-ops-api/internal/repository"
	"github.com/medready/paramedic-ops-api/internal/service"
	"github.com/medready/paramedic-ops-api/pkg/cache"
	"github.com/medready/paramedic-ops-api/pkg/config"
	"github.com/medready/paramedic-ops-api/pkg/database"
	"github.com/medready/paramedic-ops-api/pkg/logger"
	corsmiddleware "github.com/medready/paramedic-ops-api/pkg/middleware/cors"
	reqidmiddleware "github.com/medready/paramedic-ops-api/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	cohortRepo := repository.NewCohortRepository(db)
	siteRepo := repository.NewSiteRepository(db)
	internshipRepo := repository.NewInternshipRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, auditRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "paramedic-ops-api",
	})
	attendanceSvc := service.NewAttendanceService(attendanceRepo, nil, logr)

	thresholds := service.RiskThresholds{
		CriticalAbsences:   cfg.Risk.CriticalAbsences,
		CriticalMissStreak: cfg.Risk.CriticalMissStreak,
		WarningAbsences:    cfg.Risk.WarningAbsences,
	}
	var riskSvc *service.RiskService
	if cfg.Risk.SweepCacheEnabled {
		riskSvc = service.NewRiskService(attendanceRepo, cohortRepo, cacheRepo, cfg.Risk.SweepCacheTTL, thresholds, logr)
	} else {
		riskSvc = service.NewRiskService(attendanceRepo, cohortRepo, nil, cfg.Risk.SweepCacheTTL, thresholds, logr)
	}
	capacitySvc := service.NewCapacityService(siteRepo, auditRepo, nil, logr, cfg.Capacity.DefaultMaxPerDay)
	closeoutSvc := service.NewCloseoutService(internshipRepo, auditRepo, nil, logr, cfg.Closeout.RequiredHours)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	riskHandler := handler.NewRiskHandler(riskSvc, metricsSvc)
	capacityHandler := handler.NewCapacityHandler(capacitySvc)
	siteHandler := handler.NewSiteHandler(capacitySvc)
	closeoutHandler := handler.NewCloseoutHandler(closeoutSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "component": "database"})
			return
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "component": "redis"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "time": time.Now().UTC()})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	routes := handler.NewRouter(
		authHandler,
		attendanceHandler,
		riskHandler,
		capacityHandler,
		siteHandler,
		closeoutHandler,
		authSvc,
		authSvc,
		cfg.Cron.SharedSecret,
	)
	routes.Register(r, cfg.APIPrefix)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
