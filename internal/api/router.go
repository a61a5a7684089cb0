package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/breachscan/tender-system/internal/api/handler"
	"github.com/breachscan/tender-system/internal/api/middleware"
	"github.com/breachscan/tender-system/internal/core/domain"
	"github.com/breachscan/tender-system/internal/core/service"
	"github.com/breachscan/tender-system/internal/infrastructure/analyzer"
	"github.com/breachscan/tender-system/internal/infrastructure/collector"
	"github.com/breachscan/tender-system/internal/infrastructure/config"
	mongodb "github.com/breachscan/tender-system/internal/infrastructure/db/mongo"
	redisdb "github.com/breachscan/tender-system/internal/infrastructure/db/redis"
)

// NewRouter builds the Echo instance with all dependencies wired in strict
// order: repositories → services → handlers → routes. Dependencies flow one
// way; the identity stores are the only writers of user state.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("tender_system"))

	// --- Repositories ---
	users := mongodb.NewUserRepository(db)
	requests := mongodb.NewRequestRepository(db)
	tenders := mongodb.NewTenderRepository(db)
	analyses := mongodb.NewAnalysisRepository(db)
	analysisCache := redisdb.NewAnalysisCache(rdb)

	// --- Collaborators ---
	collectorClient := collector.NewClient(cfg.Collector.BaseURL, cfg.Collector.Timeout)
	analyzerClient := analyzer.NewClient(cfg.Analyzer.BaseURL, cfg.Analyzer.Timeout)

	// --- Services ---
	authService := service.NewAuthService(users, requests, cfg.JWTSecret, cfg.TokenTTL)
	elevationService := service.NewElevationService(requests, users,
		log.With().Str("component", "elevation").Logger())
	tenderService := service.NewTenderService(tenders, collectorClient,
		log.With().Str("component", "scanner").Logger())
	analysisService := service.NewAnalysisService(tenders, analysisCache, analyses, analyzerClient,
		log.With().Str("component", "analysis").Logger())

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService, cfg.TokenTTL, cfg.Production())
	adminHandler := handler.NewAdminHandler(elevationService)
	tenderHandler := handler.NewTenderHandler(tenderService, analysisService)

	authenticated := middleware.Auth(cfg.JWTSecret, authService)

	// --- Public routes ---
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)

	// --- Session routes ---
	e.GET("/me", authHandler.Me, authenticated)
	e.POST("/logout", authHandler.Logout, authenticated)
	e.POST("/change-password", authHandler.ChangePassword, authenticated)

	// --- Role elevation ---
	e.POST("/admin-request", adminHandler.Submit, authenticated)
	e.GET("/admin-requests", adminHandler.List, authenticated,
		middleware.RequireCapability(domain.CapManageAdmins))
	e.POST("/admin-requests/:action/:username", adminHandler.Decide, authenticated,
		middleware.RequireCapability(domain.CapManageAdmins))

	// --- Tenders ---
	e.POST("/parse", tenderHandler.TriggerScan, authenticated,
		middleware.RequireCapability(domain.CapManageScanning))
	e.GET("/tenders", tenderHandler.Fetch, authenticated,
		middleware.RequireCapability(domain.CapViewTable))
	e.POST("/tenders/:id/analyze", tenderHandler.Analyze, authenticated,
		middleware.RequireCapability(domain.CapDoAnalysis))

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())

	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	return e
}
