package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"greenlight/approval-portal/approval-portal-backend/internal/auth"
	"greenlight/approval-portal/approval-portal-backend/internal/config"
	"greenlight/approval-portal/approval-portal-backend/internal/documents"
	"greenlight/approval-portal/approval-portal-backend/internal/notifications"
	wsnotify "greenlight/approval-portal/approval-portal-backend/internal/notifications/websocket"
	"greenlight/approval-portal/approval-portal-backend/internal/projects"
	"greenlight/approval-portal/approval-portal-backend/pkg/storage"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, relying on environment")
	}

	// Load configuration
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Connect to database
	dbURL := cfg.Database.GetDatabaseURL()
	logger.Info("Connecting to database",
		zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// gorm shares the same connection pool for the profiles table
	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to initialize ORM", zap.Error(err))
	}

	// Blob store for step documents
	ctx := context.Background()
	s3Client, err := storage.NewAWSS3Client(ctx, storage.Options{
		Region:        cfg.Storage.Region,
		Endpoint:      cfg.Storage.Endpoint,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	})
	if err != nil {
		logger.Fatal("Failed to initialize blob storage", zap.Error(err))
	}

	// Notifications
	wsManager := wsnotify.NewManager(logger)
	notifyService := notifications.NewService(wsManager, logger)
	notifyHandler := notifications.NewHandler(notifyService)

	// Session store
	var credentials auth.CredentialSource = auth.NewDisabledCredentialSource()
	if cfg.Identity.EnableFallbackLogins {
		credentials = auth.NewStaticCredentialSource()
	}
	identityProvider := auth.NewGoTrueProvider(cfg.Identity.BaseURL, cfg.Identity.APIKey)
	profileRepo := auth.NewProfileRepository(gormDB)
	authService := auth.NewService(identityProvider, profileRepo, credentials,
		auth.NewMemorySessionStorage(), notifyService, logger, cfg.Security.JWTSecret)
	authHandler := auth.NewHandler(authService, logger)

	// Restore any surviving session before serving traffic
	if err := authService.Restore(ctx); err != nil && err != auth.ErrNoSession {
		logger.Warn("session restore failed", zap.Error(err))
	}

	// Projects
	if err := projects.InitSchema(db); err != nil {
		logger.Warn("project schema init failed, fallback data will serve reads", zap.Error(err))
	}
	projectRepo := projects.NewPostgresRepository(db)
	fallbackStore := projects.NewMemoryStore()
	projectService := projects.NewService(projectRepo, fallbackStore, notifyService, logger)
	projectHandler := projects.NewHandler(projectService, logger)

	// Documents
	documentService := documents.NewService(s3Client, cfg.Storage.Bucket, notifyService, logger)
	documentHandler := documents.NewHandler(documentService, logger)

	// Expired fallback sessions get swept periodically
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 5m", authService.PruneExpired); err != nil {
		logger.Fatal("Failed to schedule session sweep", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Setup Router
	router := gin.Default()

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Register Routes
	auth.RegisterRoutes(router, authHandler)

	api := router.Group("/api/v1")
	{
		requireAdmin := auth.RequireAdmin(authService)
		projectHandler.RegisterRoutes(api, requireAdmin)
		documentHandler.RegisterRoutes(api, requireAdmin)
		notifyHandler.RegisterRoutes(api)
	}

	// Status notification stream
	router.GET("/ws", func(c *gin.Context) {
		if _, err := wsManager.HandleConnection(c.Writer, c.Request); err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
		}
	})

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	// Start Server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()
	logger.Info("Approval portal API listening", zap.String("addr", cfg.Server.GetServerAddr()))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	wsManager.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
