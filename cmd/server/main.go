package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sliceworks/pizza-backend/internal/auth"
	"github.com/sliceworks/pizza-backend/internal/config"
	"github.com/sliceworks/pizza-backend/internal/database"
	"github.com/sliceworks/pizza-backend/internal/factory"
	"github.com/sliceworks/pizza-backend/internal/handler"
	"github.com/sliceworks/pizza-backend/internal/logger"
	"github.com/sliceworks/pizza-backend/internal/metrics"
	"github.com/sliceworks/pizza-backend/internal/queue"
	"github.com/sliceworks/pizza-backend/internal/repository"
	"github.com/sliceworks/pizza-backend/internal/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	zlog, cleanup := logger.New(cfg.LogLevel, cfg.LogJSON)
	defer cleanup()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	rdb := config.NewRedisClient()
	if rdb == nil {
		zlog.Warn("redis unavailable, cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	menu := repository.NewMenuRepo(db)
	orders := repository.NewOrderRepo(db)
	franchises := repository.NewFranchiseRepo(db)

	sessions := auth.NewSessions(cfg.JWTSecret, tokens)
	factoryClient := factory.New(cfg.FactoryURL)
	events := queue.NewPublisher(cfg.AMQPURL, zlog)

	e := echo.New()
	e.HideBanner = true
	e.Use(logger.RequestLogger(zlog))
	e.Use(metrics.Middleware())

	router.Register(e, router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, users, sessions, zlog),
		User:      handler.NewUserHandler(cfg, users, sessions, zlog),
		Order:     handler.NewOrderHandler(menu, orders, factoryClient, events, zlog, cfg.ListPageSize),
		Franchise: handler.NewFranchiseHandler(franchises, sessions, zlog, cfg.ListPageSize),

		Sessions: sessions,
		Redis:    rdb,

		MenuCacheTTL:   time.Duration(cfg.MenuCacheTTLSec) * time.Second,
		LoginRateLimit: cfg.LoginRateLimit,
	})

	addr := ":" + cfg.Port
	zlog.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
