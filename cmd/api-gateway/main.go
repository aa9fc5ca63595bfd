package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/canteen-vms-api/api/swagger"
	"github.com/noah-isme/canteen-vms-api/internal/handler"
	"github.com/noah-isme/canteen-vms-api/internal/middleware"
	"github.com/noah-isme/canteen-vms-api/internal/models"
	"github.com/noah-isme/canteen-vms-api/internal/repository"
	"github.com/noah-isme/canteen-vms-api/internal/service"
	"github.com/noah-isme/canteen-vms-api/pkg/cache"
	"github.com/noah-isme/canteen-vms-api/pkg/config"
	"github.com/noah-isme/canteen-vms-api/pkg/database"
	"github.com/noah-isme/canteen-vms-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/canteen-vms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/canteen-vms-api/pkg/middleware/requestid"
)

// @title Canteen VMS API
// @version 1.0.0
// @description Vendor attendance and meal-booking tracking for canteen operations
// @BasePath /api/v1
// @schemes http

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
	defer db.Close() //nolint:errcheck

	// Summary caching degrades gracefully when Redis is unavailable.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close() //nolint:errcheck
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	canteenRepo := repository.NewCanteenRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, attendanceRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	attendanceSvc := service.NewAttendanceService(attendanceRepo, cacheRepo, validate, logr, service.AttendanceServiceConfig{
		PunchStatusTTL: cfg.Cache.PunchStatusTTL,
		Metrics:        metricsSvc,
	})
	bookingSvc := service.NewBookingService(bookingRepo, attendanceRepo, validate, logr)
	canteenSvc := service.NewCanteenService(canteenRepo, logr)
	reportSvc := service.NewReportService(attendanceRepo, cacheRepo, validate, logr, service.ReportServiceConfig{
		SummaryTTL:   cfg.Cache.SummaryTTL,
		MaxRangeDays: cfg.Reports.MaxRangeDays,
		Metrics:      metricsSvc,
	})

	authHandler := handler.NewAuthHandler(authSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, metricsSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc, metricsSvc)
	canteenHandler := handler.NewCanteenHandler(canteenSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db, redisClient)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	protected.GET("/attendance/today", attendanceHandler.Today)
	protected.POST("/attendance/punch-in", attendanceHandler.PunchIn)
	protected.POST("/attendance/punch-out", attendanceHandler.PunchOut)

	protected.GET("/bookings/access", bookingHandler.Access)
	protected.GET("/bookings", bookingHandler.List)
	protected.POST("/bookings", bookingHandler.Book)

	protected.GET("/canteens", canteenHandler.List)
	protected.GET("/canteens/:id", canteenHandler.Get)

	reports := protected.Group("/reports")
	reports.GET("/individual", reportHandler.Individual)
	reports.GET("/canteen", middleware.RequireRoles(models.RoleCCS, models.RoleECS, models.RoleITAdmin), reportHandler.Canteen)
	reports.GET("/summary", reportHandler.Summary)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
