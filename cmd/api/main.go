// cmd/api/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/EAS-COD-System/eas-tracker/internal/api"
	"github.com/EAS-COD-System/eas-tracker/internal/cache"
	"github.com/EAS-COD-System/eas-tracker/internal/config"
	"github.com/EAS-COD-System/eas-tracker/internal/repository/jsonfile"
	"github.com/EAS-COD-System/eas-tracker/internal/service"
	"github.com/EAS-COD-System/eas-tracker/internal/snapshot"
	"github.com/EAS-COD-System/eas-tracker/internal/storage"
	"github.com/EAS-COD-System/eas-tracker/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize datastore
	store, err := jsonfile.Open(filepath.Join(cfg.App.DataDir, cfg.App.DataFile))
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to open datastore")
	}

	// Offsite replication is optional; snapshots stay local without it
	var replica storage.ObjectStorage
	if cfg.Offsite.Enabled {
		s3, err := storage.NewS3Client(storage.S3Config{
			Endpoint:  cfg.Offsite.Endpoint,
			AccessKey: cfg.Offsite.AccessKey,
			SecretKey: cfg.Offsite.SecretKey,
			Bucket:    cfg.Offsite.Bucket,
			Region:    cfg.Offsite.Region,
			UseSSL:    cfg.Offsite.UseSSL,
		})
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to initialize offsite storage")
		}
		replica = s3
	}

	snapStore, err := snapshot.Open(cfg.App.SnapshotDir, store, replica)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to open snapshot store")
	}
	policy := snapshot.Policy{
		KeepCount: cfg.Snapshot.KeepCount,
		KeepDays:  cfg.Snapshot.KeepDays,
	}

	analyticsCache, err := cache.NewAnalyticsCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Analytics cache unavailable, running without it")
		analyticsCache = cache.NewNoopAnalyticsCache()
	}

	// Initialize services
	services := &api.Services{
		Products:    service.NewProductService(store, analyticsCache),
		Countries:   service.NewCountryService(store),
		AdSpend:     service.NewAdSpendService(store, analyticsCache),
		Remittances: service.NewRemittanceService(store, analyticsCache),
		Influencers: service.NewInfluencerService(store, analyticsCache),
		Shipments:   service.NewShipmentService(store, analyticsCache),
		Stock:       service.NewStockService(store),
		Finance:     service.NewFinanceService(store),
		Analytics:   service.NewAnalyticsService(store, analyticsCache),
		Snapshots:   service.NewSnapshotService(snapStore, policy),
	}

	router := api.NewRouter(services, cfg)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Snapshot.AutoEnabled {
		runner := snapshot.NewRunner(
			snapStore,
			time.Duration(cfg.Snapshot.IntervalMinutes)*time.Minute,
			policy,
		)
		go runner.Run(ctx)
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
