package main

import (
	"context"   // Context for shutdown and Redis operations
	"errors"    // Error inspection
	"net/http"  // HTTP server
	"os"        // Signals
	"os/signal" // Signal notification
	"syscall"   // SIGTERM
	"time"      // Shutdown deadline

	"ecommerce_backend/internal/api"        // Custom package for API handlers
	"ecommerce_backend/internal/checkout"   // Checkout orchestration
	"ecommerce_backend/internal/config"     // Custom package for configuration
	"ecommerce_backend/internal/db"         // Database bootstrap
	"ecommerce_backend/internal/logging"    // Logger setup
	"ecommerce_backend/internal/metrics"    // Prometheus collectors
	"ecommerce_backend/internal/middleware" // Custom package for middleware
	"ecommerce_backend/internal/payment"    // Payment gateway
	"ecommerce_backend/internal/storage"    // Photo storage

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration
	closeLogs := logging.Setup(cfg)
	defer closeLogs()

	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET is required")
	}

	// Connect to the database and make sure the schema is current
	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	photos, err := storage.New(context.Background(), cfg, gdb)
	if err != nil {
		logrus.Fatalf("failed to set up photo storage: %v", err)
	}

	var gateway payment.Gateway
	bt, err := payment.NewBraintree(payment.Config{
		Environment: cfg.BraintreeEnvironment,
		MerchantID:  cfg.BraintreeMerchantID,
		PublicKey:   cfg.BraintreePublicKey,
		PrivateKey:  cfg.BraintreePrivateKey,
	})
	if err != nil {
		// Catalog and accounts still work; payment endpoints answer 502
		logrus.WithError(err).Warn("payment gateway not configured")
		gateway = payment.Unavailable{}
	} else {
		gateway = bt
	}

	m := metrics.New()
	checkoutSvc := checkout.NewService(gateway, checkout.NewGormRecorder(gdb), checkout.NewRedisNonceGuard(redisClient), m)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics(m))
	r.MaxMultipartMemory = 8 << 20 // Photos are capped well below this

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	api.RegisterRoutes(r, api.Deps{
		DB:        gdb,
		Redis:     redisClient,
		Photos:    photos,
		Gateway:   gateway,
		Checkout:  checkoutSvc,
		Metrics:   m,
		JWTSecret: cfg.JWTSecret,
	})

	// Flag checkouts that never finished
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go checkoutSvc.RunSweeper(sweepCtx, cfg.SweepInterval, cfg.IntentTTL)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logrus.WithFields(logrus.Fields{"port": cfg.AppPort}).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down")

	stopSweep()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("HTTP server did not stop cleanly")
	}
	_ = redisClient.Close()
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logrus.Info("server stopped")
}
