package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/carrent/rental-backend/internal/app"
	"github.com/carrent/rental-backend/internal/config"
	"github.com/carrent/rental-backend/internal/db"
	"github.com/carrent/rental-backend/internal/logger"
	"github.com/carrent/rental-backend/internal/notify"
	"github.com/carrent/rental-backend/internal/pkg/storage"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN, db.PoolOptions{MaxConns: int32(cfg.DBMaxConns)})
	if err != nil {
		log.WithError(err).Fatal("failed to connect to db")
	}
	defer pool.Close()

	// Connect Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.WithError(err).Warn("redis close failed")
		}
	}()

	// Notifications go to NSQ when configured, otherwise to the log.
	var notifier notify.Notifier = notify.NewLogNotifier(log)
	if cfg.NSQDAddr != "" {
		nsqNotifier, err := notify.NewNSQNotifier(cfg.NSQDAddr, notify.DefaultTopic, log)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to nsqd")
		}
		defer nsqNotifier.Close()
		notifier = nsqNotifier
	}

	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		log.WithError(err).Fatal("failed to init storage")
	}

	container := app.NewContainer(app.Config{
		IsProduction:           cfg.IsProduction,
		ProdOrigins:            cfg.ProdOrigins,
		DBPool:                 pool,
		Redis:                  rdb,
		Notifier:               notifier,
		Storage:                store,
		Logger:                 log,
		JWTSecret:              cfg.JWTSecret,
		JWTTTL:                 cfg.JWTAccessTokenTTL,
		BcryptCost:             cfg.BcryptCost,
		ExtensionPaymentWindow: cfg.ExtensionPaymentWindow,
		Reset:                  cfg.Reset,
	})

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	log.Info("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server forced to shutdown")
	}

	log.Info("server exited gracefully")
}
