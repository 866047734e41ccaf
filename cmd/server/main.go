// Package main runs the event discovery and ticketing HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cosmic-sparc/backend/config"
	"github.com/cosmic-sparc/backend/internal/analytics"
	"github.com/cosmic-sparc/backend/internal/auth"
	"github.com/cosmic-sparc/backend/internal/checkin"
	"github.com/cosmic-sparc/backend/internal/events"
	"github.com/cosmic-sparc/backend/internal/middleware"
	"github.com/cosmic-sparc/backend/internal/notify"
	"github.com/cosmic-sparc/backend/internal/registrations"
	"github.com/cosmic-sparc/backend/internal/tickets"
	"github.com/cosmic-sparc/backend/pkg/database"
	"github.com/cosmic-sparc/backend/pkg/queue"
	"github.com/cosmic-sparc/backend/pkg/redis"
	"github.com/cosmic-sparc/backend/pkg/response"
	"github.com/cosmic-sparc/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			MediaBucket:     cfg.AWS.MediaBucket,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, s3Client, logger)

	// Events
	eventRepo := events.NewRepository(pool)
	eventHandler := events.NewHandler(eventRepo, authRepo, s3Client, logger)

	// Registrations
	jobQueue := queue.NewQueue(rdb.Client, logger)
	enqueuer := notify.NewEnqueuer(jobQueue)
	registrationRepo := registrations.NewRepository(pool)
	registrationSvc := registrations.NewService(registrationRepo, eventRepo, enqueuer, logger)
	registrationHandler := registrations.NewHandler(registrationSvc, registrationRepo, logger)

	// Tickets and check-in
	ticketHandler := tickets.NewHandler(registrationRepo, logger)
	checkinSvc := checkin.NewService(registrationRepo, logger)
	checkinHandler := checkin.NewHandler(checkinSvc, logger)

	// Notification logs (admin view)
	notifyRepo := notify.NewRepository(pool)
	notifyHandler := notify.NewHandler(notifyRepo)

	// Event stats (admin view)
	statsHandler := analytics.NewHandler(pool, registrationRepo, eventRepo)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signup", authHandler.Signup)
		authGroup.POST("/login", authHandler.Login)
	}

	// Public: event discovery, registration, tickets
	router.GET("/api/events", eventHandler.List)
	router.GET("/api/events/:slug", eventHandler.GetBySlug)
	router.POST("/api/registrations", middleware.OptionalJWT(jwtService), registrationHandler.Register)
	router.GET("/api/tickets/:ticketId", registrationHandler.GetByTicketID)
	router.GET("/api/tickets/:ticketId/qr.png", ticketHandler.QRImage)

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/me", authHandler.Me)
		api.POST("/me/avatar", authHandler.UploadAvatar)
		api.GET("/me/tickets", registrationHandler.MyTickets)
		api.GET("/me/events", eventHandler.MyAssignments)

		// Users (admin)
		api.GET("/users", middleware.RequireRole("admin"), authHandler.List)
		api.PATCH("/users/:id/role", middleware.RequireRole("admin"), authHandler.UpdateRole)

		// Event management (admin)
		admin := api.Group("/events", middleware.RequireRole("admin"))
		{
			admin.GET("", eventHandler.ListAll)
			admin.POST("", eventHandler.Create)
			admin.PATCH("/:id", eventHandler.Update)
			admin.PUT("/:id/form-schema", eventHandler.UpdateFormSchema)
			admin.DELETE("/:id", eventHandler.Delete)
			admin.POST("/:id/restore", eventHandler.Restore)
			admin.POST("/:id/image", eventHandler.UploadImage)
			admin.POST("/:id/ticketeers", eventHandler.AssignTicketeer)
			admin.GET("/:id/ticketeers", eventHandler.ListTicketeers)
			admin.DELETE("/:id/ticketeers/:assignmentId", eventHandler.RemoveTicketeer)
			admin.GET("/:id/notifications", notifyHandler.ListByEvent)
			admin.GET("/:id/stats", statsHandler.GetByEvent)
		}

		// Door operations (admin, or ticketeer assigned to the event)
		door := api.Group("/events/:id", events.RequireTicketeerAccess(eventRepo))
		{
			door.GET("/registrations", registrationHandler.ListByEvent)
			door.POST("/checkin/verify", checkinHandler.Verify)
			door.POST("/checkin", checkinHandler.Scan)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
