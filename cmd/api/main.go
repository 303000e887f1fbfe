package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/jobdesk/backend/internal/config"
	"github.com/example/jobdesk/backend/internal/db"
	"github.com/example/jobdesk/backend/internal/dispatch"
	httpserver "github.com/example/jobdesk/backend/internal/http"
	"github.com/example/jobdesk/backend/internal/models"
	"github.com/example/jobdesk/backend/internal/mq"
	"github.com/example/jobdesk/backend/internal/notify"
	"github.com/example/jobdesk/backend/internal/repository"
	"github.com/example/jobdesk/backend/internal/service"
	"github.com/example/jobdesk/backend/internal/worker"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	autoMigrate(database, logger)

	var publisher mq.Publisher
	if rabbit, err := mq.NewRabbitPublisher(cfg.MQURL, cfg.MQJobExchange); err != nil {
		logger.Warn("rabbitmq unavailable, continuing without events", zap.Error(err))
	} else {
		publisher = rabbit
	}

	dispatcher := dispatch.New(publisher, logger)
	jobRepo := repository.NewJobRepository(database)
	noteRepo := repository.NewReturnNoteRepository(database)
	billRepo := repository.NewBillRepository(database)
	jobService := service.NewJobService(jobRepo, noteRepo, billRepo, dispatcher, logger)
	apiServer := httpserver.NewServer(jobRepo, billRepo, jobService, cfg.ListLimit)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if consumer, err := mq.NewRabbitConsumer(cfg.MQURL, cfg.MQJobExchange, cfg.MQNotifyQueue, "job.*"); err != nil {
		logger.Warn("rabbitmq consumer unavailable, notifications disabled", zap.Error(err))
	} else {
		gateway := notify.NewClient(cfg.MessagingURL)
		notifier := worker.NewNotificationWorker(consumer, gateway, logger)
		go func() {
			if err := notifier.Run(ctx); err != nil {
				logger.Error("notification worker stopped", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:    cfg.HTTPPort,
		Handler: apiServer.Engine,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	if publisher != nil {
		if closer, ok := publisher.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}
	logger.Info("bye")
}

func autoMigrate(database *gorm.DB, logger *zap.Logger) {
	if err := database.AutoMigrate(&models.Job{}, &models.ReturnNote{}, &models.Bill{}); err != nil {
		logger.Fatal("auto migrate", zap.Error(err))
	}
}

func init() {
	if mode := os.Getenv("GIN_MODE"); mode == "" {
		gin.SetMode(gin.ReleaseMode)
	}
}
