package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"alfredoptarigan/nps-analyzer/internal/config"
	"alfredoptarigan/nps-analyzer/internal/handlers"
	"alfredoptarigan/nps-analyzer/internal/logger"
	"alfredoptarigan/nps-analyzer/internal/repositories"
	"alfredoptarigan/nps-analyzer/internal/services"
)

func main() {
	startedAt := time.Now()

	// Load configuration
	cfg := config.Load()

	appLog, err := logger.New(cfg.Server.Env)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer appLog.Sync()
	appLog.Info("✅ Config loaded", "env", cfg.Server.Env, "db_driver", cfg.Database.Driver)

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		appLog.Fatal("❌ Failed to initialize database", "error", err)
	}

	// Initialize repositories
	historyRepo := repositories.NewHistoryRepository(db)
	evalRepo := repositories.NewEvaluationRepository(db)
	uploadRepo := repositories.NewUploadRepository(db)
	appLog.Info("✅ Repositories initialized")

	// Initialize services
	clock := time.Now

	storageService := services.NewStorageService(cfg.Storage.UploadPath, cfg.Storage.MaxFileSize)
	if err := storageService.EnsureUploadDir(); err != nil {
		appLog.Fatal("❌ Failed to create upload directory", "error", err)
	}

	backupService := services.NewBackupService(
		cfg.Backup.Path,
		cfg.Backup.Retention,
		clock,
		historyRepo,
		uploadRepo,
		evalRepo,
		appLog,
	)
	historyStore := services.NewHistoryStore(
		db,
		historyRepo,
		evalRepo,
		uploadRepo,
		backupService,
		clock,
		appLog,
	)
	ingestService := services.NewIngestService(
		services.NewCSVParser(clock, appLog),
		historyStore,
		appLog,
	)
	appLog.Info("✅ Services initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Gemini is optional: without a key the comment summary endpoint answers 503.
	var geminiService services.GeminiService
	if cfg.GeminiEnabled() {
		geminiService, err = services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, appLog)
		if err != nil {
			appLog.Fatal("❌ Failed to initialize Gemini AI", "error", err)
		}
		appLog.Info("✅ Gemini AI initialized", "model", cfg.Gemini.Model)
	} else {
		appLog.Warn("⚠️ GEMINI_API_KEY not set, comment summaries disabled")
	}
	commentService := services.NewCommentInsightService(
		evalRepo,
		geminiService,
		cfg.Gemini.RetryMaxAttempts,
		clock,
		appLog,
	)

	// Start backup scheduler
	scheduler := services.NewScheduler(backupService, cfg.Backup.Schedule, appLog)
	if err := scheduler.Start(ctx); err != nil {
		appLog.Fatal("❌ Failed to start backup scheduler", "error", err)
	}

	// Initialize handlers
	validate := validator.New()
	h := handlers.Handlers{
		Upload:  handlers.NewUploadHandler(storageService, ingestService, appLog),
		History: handlers.NewHistoryHandler(historyStore, validate, appLog),
		Health:  handlers.NewHealthHandler(historyStore, cfg.Server.Env, cfg.Database.Driver, startedAt, appLog),
		Backup:  handlers.NewBackupHandler(backupService, appLog),
		Insight: handlers.NewInsightHandler(commentService, validate, appLog),
	}
	appLog.Info("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "NPS Analyzer API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    handlers.UploadBodyLimit(cfg.Storage.MaxFileSize),
		ErrorHandler: handlers.ErrorHandler,
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, X-Request-ID",
	}))
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))

	// Routes
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        cfg.RateLimit.Max,
		Expiration: cfg.RateLimit.Expiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "too many requests, try again later",
			})
		},
	}))
	handlers.RegisterRoutes(api, h)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":   "NPS Analyzer API",
			"version":   "1.0.0",
			"endpoints": handlers.Endpoints,
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		appLog.Info("🛑 Shutting down server...")
		cancel()
		scheduler.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLog.Error("❌ Server forced to shutdown", "error", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	appLog.Info("🚀 Server starting", "addr", addr)

	if err := app.Listen(addr); err != nil {
		appLog.Fatal("❌ Failed to start server", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	appLog.Info("✅ Server stopped")
}
