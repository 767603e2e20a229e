package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"userorg-backend/internal/auth"
	"userorg-backend/internal/cache"
	"userorg-backend/internal/config"
	"userorg-backend/internal/events"
	"userorg-backend/internal/handlers"
	"userorg-backend/internal/services"
	"userorg-backend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Database connection (with retries)
	var db *sqlx.DB
	for i := 0; i < 10; i++ {
		db, err = sqlx.Connect("postgres", cfg.DSN())
		if err == nil {
			break
		}
		logger.Warn("db connection attempt failed", zap.Int("attempt", i+1), zap.Error(err))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("connected to database")

	store := storage.NewStorage(db)

	// Registration events (only when NATS is configured)
	var publisher auth.EventPublisher
	if cfg.NATSURL != "" {
		natsPub, err := events.Connect(cfg.NATSURL, logger)
		if err != nil {
			logger.Fatal("failed to connect to NATS", zap.Error(err))
		}
		defer natsPub.Close()
		publisher = natsPub
	} else {
		logger.Warn("NATS_URL not set; registration events disabled")
	}

	// Organisation read cache (only when Redis is configured)
	var orgCache cache.Client
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logger.Fatal("failed to connect to Redis", zap.Error(err))
		}
		defer redisCache.Close()
		orgCache = redisCache
	} else {
		logger.Warn("REDIS_URL not set; organisation cache disabled")
	}

	hasher := auth.NewHasher(cfg.BcryptCost)
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiresIn)
	geo := services.NewGeoWeatherClient(cfg.WeatherAPIKey)

	authHandler := auth.NewHandler(store, hasher, issuer, publisher, logger)
	apiHandler := handlers.New(store, orgCache, geo, logger)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)
	apiHandler.RegisterRoutes(r, auth.Middleware(issuer))

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("server starting", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}
