package main

import (
	"context"   // Shutdown and Redis ping
	"errors"    // Server close detection
	"net/http"  // HTTP server
	"os"        // Signals
	"os/signal" // Graceful shutdown
	"syscall"   // SIGTERM
	"time"      // Timeouts

	"crowdfund_ledger/internal/api"             // HTTP handlers
	"crowdfund_ledger/internal/cache"           // Snapshot caches
	"crowdfund_ledger/internal/config"          // Configuration
	"crowdfund_ledger/internal/db"              // Database connection
	"crowdfund_ledger/internal/ledger"          // Ledger service
	"crowdfund_ledger/internal/middleware"      // Rate limiting
	"crowdfund_ledger/internal/store"           // Store interface
	"crowdfund_ledger/internal/store/gormstore" // MySQL store
	"crowdfund_ledger/internal/store/memory"    // In-memory store

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode) // Set Mode to Release if in production
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := openStore(cfg)
	snapshots := openCache(ctx, cfg)

	svc := ledger.New(st, snapshots, ledger.Options{
		VerificationThreshold: cfg.VerificationThreshold,
		MaxAttempts:           cfg.SettlementMaxAttempts,
		CacheTTL:              cfg.CacheTTL,
		Logger:                logrus.StandardLogger(),
	})

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiter.StartCleanup(ctx, 10*time.Minute)

	r := api.NewRouter(svc, cfg, limiter)
	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logrus.WithFields(logrus.Fields{
			"port":  cfg.AppPort,
			"store": cfg.StoreDriver,
			"cache": cfg.CacheDriver,
		}).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Graceful shutdown failed")
	}
	logrus.Info("Server stopped")
}

// openStore connects the configured record store
func openStore(cfg *config.Config) store.Store {
	if cfg.StoreDriver == config.DriverMemory {
		logrus.Warn("Using in-memory store, data is lost on restart")
		return memory.New()
	}
	conn, err := db.Connect(cfg.DSN(), cfg.IsProd)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	return gormstore.New(conn)
}

// openCache connects the configured snapshot cache
func openCache(ctx context.Context, cfg *config.Config) cache.Cache {
	if cfg.CacheDriver == config.DriverMemory {
		return cache.NewMemory(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})
	// Test Redis connection
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}
	return cache.NewRedis(redisClient, "crowdfund:")
}
