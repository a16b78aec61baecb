// @title           SkinScan Backend API
// @version         1.0.0
// @description     Backend API for AI skin scans. Images are stored in object storage, analyzed by a hosted vision model, and the per-user scan history is pushed live over Server-Sent Events.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"skinscan-backend/internal/analysis"
	"skinscan-backend/internal/config"
	"skinscan-backend/internal/database"
	"skinscan-backend/internal/handlers"
	"skinscan-backend/internal/logging"
	"skinscan-backend/internal/middleware"
	"skinscan-backend/internal/services"
	"skinscan-backend/internal/storage"
	"skinscan-backend/internal/supabase"
	"skinscan-backend/internal/web"
)

const appName = "SkinScan"

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Init(cfg.LogLevel)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to initialize database client", "error", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := database.NewMigrator(dbClient.DB(), logger).Run(ctx); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
	logger.Info("migrations completed successfully")

	objects, err := newObjectStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize object storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}

	broker := services.NewBroker()
	feed, err := supabase.NewChangeFeed(cfg.DatabaseURL, broker, logger)
	if err != nil {
		logger.Error("failed to start change feed", "error", err)
		os.Exit(1)
	}
	defer feed.Close()
	go feed.Run(ctx)

	analyzeService := analysis.NewService(
		analysis.NewOpenAIModel(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel),
		dbClient,
		logger,
	)

	// The upload flow calls the analyze handler in-process unless a
	// separately deployed one is configured.
	var analyzer services.Analyzer = analyzeService
	if cfg.AnalyzeFunctionURL != "" {
		analyzer = analysis.NewRemoteInvoker(cfg.AnalyzeFunctionURL)
		logger.Info("using remote analyze handler", "url", cfg.AnalyzeFunctionURL)
	}

	scanService := services.NewScanService(objects, dbClient, analyzer, services.ScanServiceOptions{
		CleanupOrphanedUploads: cfg.CleanupOrphanedUploads,
		Logger:                 logger,
	})
	historyService := services.NewHistoryService(dbClient, broker, logger)

	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		logger.Error("failed to initialize Supabase client", "error", err)
		os.Exit(1)
	}

	scansHandler := handlers.NewScansHandler(scanService, historyService, cfg.MaxUploadBytes)
	analyzeHandler := handlers.NewAnalyzeHandler(analyzeService)
	sessionHandler := handlers.NewSessionHandler(supabaseClient)
	pagesHandler := handlers.NewPagesHandler(appName)
	uploadLimiter := middleware.NewUserRateLimiter(cfg.UploadRatePerMinute, cfg.UploadBurst)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORSMiddleware())
	router.SetHTMLTemplate(web.Templates())

	// Health check and pages (no auth)
	router.GET("/health", handlers.HealthHandler(dbClient))
	router.GET("/", pagesHandler.Index)
	router.GET("/dashboard", pagesHandler.Dashboard)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	// Scans
	api.POST("/scans", uploadLimiter.Middleware(), scansHandler.Upload)
	api.GET("/scans", scansHandler.List)
	api.GET("/scans/stream", scansHandler.Stream)

	// Analysis
	api.POST("/analyze-skin", analyzeHandler.Analyze)

	// Session
	api.GET("/session", sessionHandler.Current)
	api.POST("/session/logout", sessionHandler.Logout)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func newObjectStore(ctx context.Context, cfg *config.Config) (services.ObjectStore, error) {
	if cfg.StorageBackend == config.StorageBackendMinio {
		return storage.NewMinioStore(ctx,
			cfg.MinioEndpoint,
			cfg.MinioAccessKey,
			cfg.MinioSecretKey,
			cfg.SupabaseStorageBucket,
			cfg.MinioPublicURL,
			cfg.MinioUseSSL,
		)
	}
	return supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, cfg.SupabaseStorageBucket)
}
