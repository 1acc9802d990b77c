package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"go-admissions-backend/config"
	_ "go-admissions-backend/docs" // Important for Swagger
	v1 "go-admissions-backend/internal/delivery/http/v1"
	"go-admissions-backend/internal/repository/cms"
	"go-admissions-backend/internal/repository/postgres"
	"go-admissions-backend/internal/usecase"
	"go-admissions-backend/pkg/auth"
	"go-admissions-backend/pkg/database"
	"go-admissions-backend/pkg/email"
	"go-admissions-backend/pkg/logger"
	"go-admissions-backend/pkg/redis"
	"go-admissions-backend/pkg/synclog"
	"go-admissions-backend/pkg/validation"
)

// @title           Admissions Backend API
// @version         1.0
// @description     Profile reconciliation backend fronting a headless CMS, using Clean Architecture.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init()
	logger.Log.Info("Starting admissions backend", "port", cfg.Port)

	events := synclog.Init("admissions-backend")
	defer events.Sync()

	// 3. Optional Postgres sink for sync-event auditing
	if cfg.SyncLogToDB && cfg.SyncLogDBUrl != "" {
		dbPool, err := database.NewPostgresConnection(cfg.SyncLogDBUrl)
		if err != nil {
			logger.Log.Error("Failed to connect to audit database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()
		events.SetPersistFunc(postgres.NewSyncEventRepository(dbPool).Record)
	}

	// 4. Redis for rate limiting (in-memory fallback when absent)
	if err := redis.Initialize(redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, rate limiting falls back to in-memory", "error", err)
	}
	defer redis.Close()

	// 5. Upstream CMS client and repositories
	cmsClient := cms.NewClient(cms.Config{
		BaseURL:      cfg.CMSUrl,
		ServiceToken: cfg.CMSAPIToken,
		Timeout:      cfg.CMSTimeout,
	}, logger.With("component", "cms"), events)

	userRepo := cms.NewUserRepository(cmsClient)
	profileRepo := cms.NewProfileRepository(cmsClient)
	skillRepo := cms.NewSkillRepository(cmsClient)
	educationRepo := cms.NewEducationRepository(cmsClient)
	experienceRepo := cms.NewExperienceRepository(cmsClient)
	jobRepo := cms.NewJobRepository(cmsClient)
	catalogRepo := cms.NewCatalogRepository(cmsClient)

	// 6. Setup Email Service
	emailService := email.NewEmailService(cfg)
	if !emailService.IsConfigured() {
		logger.Log.Warn("Email service not fully configured - contact form will be unavailable")
	}

	// 7. Setup UseCases
	validate := validator.New()
	validation.RegisterValidators(validate)
	profileUC := usecase.NewProfileUsecase(profileRepo, skillRepo, educationRepo, experienceRepo, validate, logger.With("component", "profiles"))
	jobUC := usecase.NewJobUsecase(jobRepo)
	catalogUC := usecase.NewCatalogUsecase(catalogRepo)
	contactUC := usecase.NewContactUsecase(emailService)

	// 8. Setup Auth Provider (JWKS for RS256 tokens)
	jwksProvider := auth.NewProvider(cfg.JWKSIssuerURL + "/.well-known/jwks.json")

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		ProfileUC:    profileUC,
		JobUC:        jobUC,
		CatalogUC:    catalogUC,
		ContactUC:    contactUC,
		UserRepo:     userRepo,
		JWKSProvider: jwksProvider,
		Config:       cfg,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
