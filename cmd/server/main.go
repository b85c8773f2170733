package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"taskhive/internal/cache"
	"taskhive/internal/config"
	"taskhive/internal/database"
	"taskhive/internal/handler"
	"taskhive/internal/middleware"
	"taskhive/internal/queue"
	"taskhive/internal/repository"
	"taskhive/internal/router"
	"taskhive/internal/service"
	"taskhive/internal/token"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Env == "dev" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		log.SetLevel(logrus.DebugLevel)
	}

	db, err := database.Open(database.Config{
		User:            cfg.DBUser,
		Pass:            cfg.DBPass,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		Name:            cfg.DBName,
		MaxOpenConns:    cfg.DBMaxOpen,
		MaxIdleConns:    cfg.DBMaxIdle,
		ConnMaxLifetime: cfg.DBMaxLifetime,
	})
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, caching and rate limiting disabled")
	}

	codec := token.NewCodec(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	store := cache.New(rdb, log)

	users := repository.NewUserRepo(db)
	sessions := repository.NewRefreshTokenRepo(db)
	tasks := repository.NewTaskRepo(db)
	shares := repository.NewTaskShareRepo(db)
	attachments := repository.NewAttachmentRepo(db)

	var events service.EventPublisher
	if cfg.AMQPURL != "" {
		events = queue.NewPublisher(cfg.AMQPURL, log)
	}

	authSvc := service.NewAuthService(users, sessions, codec, cfg.BcryptCost, log)
	taskSvc := service.NewTaskService(tasks, shares, store, events, log)
	shareSvc := service.NewShareService(tasks, shares, users)
	attachmentSvc := service.NewAttachmentService(attachments, tasks, shares, log)

	h := router.Handlers{
		Auth:        handler.NewAuthHandler(authSvc, log),
		Tasks:       handler.NewTaskHandler(taskSvc, log),
		Shares:      handler.NewShareHandler(shareSvc, log),
		Attachments: handler.NewAttachmentHandler(attachmentSvc, cfg.UploadDir, log),
		Health:      handler.NewHealthHandler(db, rdb),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	router.Register(e, h, codec, rdb)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeper := service.NewSessionSweeper(sessions, cfg.SweepInterval, log)
	go sweeper.Run(ctx)

	if cfg.AMQPURL != "" {
		go queue.StartTaskEventConsumer(ctx, cfg.AMQPURL, log)
	}

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server stopped")
		}
	}()
	log.WithField("port", cfg.Port).Info("server started")

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
