// Package main runs the background worker: notification dispatch and the
// deleted-event sweep.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cosmic-sparc/backend/config"
	"github.com/cosmic-sparc/backend/internal/events"
	"github.com/cosmic-sparc/backend/internal/notify"
	"github.com/cosmic-sparc/backend/internal/registrations"
	"github.com/cosmic-sparc/backend/internal/worker"
	"github.com/cosmic-sparc/backend/pkg/database"
	"github.com/cosmic-sparc/backend/pkg/queue"
	"github.com/cosmic-sparc/backend/pkg/redis"
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

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	eventRepo := events.NewRepository(pool)
	regRepo := registrations.NewRepository(pool)
	logRepo := notify.NewRepository(pool)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	enqueuer := notify.NewEnqueuer(jobQueue)

	mailer := notify.NewMailer(cfg.Email, logger)
	wa := notify.NewWhatsAppSender(cfg.WhatsApp, logger)
	dispatcher := notify.NewDispatcher(regRepo, eventRepo, logRepo, mailer, wa, logger)
	consumer := worker.NewConsumer(jobQueue, dispatcher, logger)
	sweeper := worker.NewSweeper(eventRepo, regRepo, enqueuer,
		time.Duration(cfg.Sweep.GraceHours)*time.Hour,
		time.Duration(cfg.Sweep.IntervalHours)*time.Hour,
		logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.Run(workerCtx)
	go sweeper.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
