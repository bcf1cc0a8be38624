package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/firesafety/incident-system/internal/api/handler"
	"github.com/firesafety/incident-system/internal/api/middleware"
	"github.com/firesafety/incident-system/internal/core/domain"
	"github.com/firesafety/incident-system/internal/core/ports"
	"github.com/firesafety/incident-system/internal/core/service"
	"github.com/firesafety/incident-system/internal/infrastructure/config"
	mongodb "github.com/firesafety/incident-system/internal/infrastructure/db/mongo"
	redisdb "github.com/firesafety/incident-system/internal/infrastructure/db/redis"
	"github.com/firesafety/incident-system/pkg/logger"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, notifier ports.Notifier) (*echo.Echo, error) {
	log := logger.Get()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("firesafety"))

	// --- Repositories ---
	userRepo := mongodb.NewUserRepository(db)
	tokenRepo := mongodb.NewTokenRepository(db)
	alertRepo := mongodb.NewAlertRepository(db)
	sensorRepo := mongodb.NewSensorRepository(db)

	// --- Services ---
	codec, err := service.NewTokenCodec(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	sessionService := service.NewSessionService(
		userRepo, tokenRepo, codec, notifier,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL, log,
	)
	alertCache := redisdb.NewAlertCache(rdb, cfg.Redis.CacheTTL, log)
	alertService := service.NewAlertService(alertRepo, userRepo, alertCache, notifier, log)
	sensorService := service.NewSensorService(sensorRepo, userRepo, log)
	uploadService := service.NewUploadService(sensorService, alertService, cfg.UploadDir, log)
	reportService := service.NewReportService(alertService, cfg.ReportDir, cfg.ReportAutoSave, log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(sessionService)
	alertHandler := handler.NewAlertHandler(alertService)
	sensorHandler := handler.NewSensorHandler(sensorService)
	uploadHandler := handler.NewUploadHandler(uploadService)
	reportHandler := handler.NewReportHandler(reportService)

	auth := middleware.Auth(sessionService)

	// --- Auth routes ---
	authGroup := e.Group("/api/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/info", authHandler.Info, auth)
	authGroup.PATCH("/change-password", authHandler.ChangePassword, auth)

	// --- Alert routes ---
	alerts := e.Group("/api/alerts", auth)
	alerts.GET("", alertHandler.List, middleware.RequirePermission(domain.PermAlertRead))
	alerts.GET("/:id", alertHandler.Get, middleware.RequirePermission(domain.PermAlertRead))
	alerts.GET("/status/:status", alertHandler.ListByStatus, middleware.RequirePermission(domain.PermAlertRead))
	alerts.GET("/sensor/:sensorId", alertHandler.ListBySensor, middleware.RequirePermission(domain.PermAlertRead))
	alerts.POST("", alertHandler.Create, middleware.RequirePermission(domain.PermAlertCreate))
	alerts.PUT("/:id", alertHandler.Update, middleware.RequirePermission(domain.PermAlertUpdate))
	alerts.DELETE("/:id", alertHandler.Delete, middleware.RequirePermission(domain.PermAlertDelete))
	alerts.PUT("/:id/assign", alertHandler.Assign, middleware.RequirePermission(domain.PermAlertAssign))
	alerts.PUT("/:id/status", alertHandler.ChangeStatus, middleware.RequirePermission(domain.PermAlertUpdate))
	alerts.POST("/:id/photos", alertHandler.AddPhoto, middleware.RequirePermission(domain.PermAlertUpdate))
	alerts.DELETE("/:id/photos", alertHandler.RemovePhoto, middleware.RequirePermission(domain.PermAlertUpdate))

	// --- Sensor routes ---
	sensors := e.Group("/api/sensors", auth)
	sensors.GET("", sensorHandler.List, middleware.RequirePermission(domain.PermSensorRead))
	sensors.GET("/:id", sensorHandler.Get, middleware.RequirePermission(domain.PermSensorRead))
	sensors.POST("", sensorHandler.Create, middleware.RequirePermission(domain.PermSensorWrite))
	sensors.PUT("/:id", sensorHandler.Update, middleware.RequirePermission(domain.PermSensorWrite))
	sensors.DELETE("/:id", sensorHandler.Delete, middleware.RequirePermission(domain.PermSensorWrite))

	// --- CSV import ---
	upload := e.Group("/api/upload", auth)
	upload.POST("/sensors", uploadHandler.ImportSensors, middleware.RequirePermission(domain.PermSensorWrite))
	upload.POST("/alerts", uploadHandler.ImportAlerts, middleware.RequirePermission(domain.PermAlertCreate))

	// --- Reports ---
	reports := e.Group("/api/reports", auth)
	reports.GET("/alerts/:id/pdf", reportHandler.AlertPDF, middleware.RequirePermission(domain.PermAlertRead))

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e, nil
}
