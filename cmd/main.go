package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"hardwarestore/docs"
	"hardwarestore/internal/caching"
	"hardwarestore/internal/config"
	"hardwarestore/internal/handlers"
	"hardwarestore/internal/jobs"
	"hardwarestore/internal/jobs/background"
	"hardwarestore/internal/metrics"
	"hardwarestore/internal/middleware"
	"hardwarestore/internal/services"
	"hardwarestore/pkg/database"
	"hardwarestore/pkg/logger"
)

const version = "1.0.0"

func main() {
	if err := run(); err != nil {
		logger.New(logger.Options{ServiceName: "hardwarestore"}).Error(context.Background(), "server exited", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		ServiceName: "hardwarestore",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(ctx, cfg.Database.Options(), log)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := database.InitSchema(ctx, store, cfg.Admin.Seed(), log); err != nil {
		return err
	}

	var cache caching.CacheService
	if cfg.Redis.Enabled() {
		cache = caching.NewRedisCacheService(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
	} else {
		log.Info(ctx, "REDIS_ADDR not set, keeping auth state in memory")
		cache = caching.NewMemoryCacheService()
	}
	defer cache.Close()

	var storage services.ObjectStorage
	if cfg.MinIO.Enabled() {
		storage, err = services.NewMinioStorage(cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey,
			cfg.MinIO.Bucket, cfg.MinIO.UseSSL)
		if err != nil {
			return err
		}
	}

	storeMetrics := metrics.NewStoreMetrics(prometheus.DefaultRegisterer)

	authSvc := services.NewAuthService(store, cache, services.AuthConfig{
		Secret:      cfg.JWT.Secret,
		TTL:         cfg.JWT.TTL,
		Issuer:      cfg.JWT.Issuer,
		LoginLimit:  cfg.Redis.LoginLimit,
		LoginWindow: cfg.Redis.LoginWindow,
	}, log)
	inventorySvc := services.NewInventoryService(store, storeMetrics, log)
	saleSvc := services.NewSaleService(store, storeMetrics, log)
	backupSvc := services.NewBackupService(store, storage, log)

	api := &handlers.API{
		Auth:       handlers.NewAuthHandlers(authSvc),
		Categories: handlers.NewCategoryHandlers(services.NewCategoryService(store, log)),
		Inventory:  handlers.NewInventoryHandlers(inventorySvc),
		Sales:      handlers.NewSaleHandlers(saleSvc),
		Staff:      handlers.NewStaffHandlers(services.NewStaffService(store, log)),
		Budget:     handlers.NewBudgetHandlers(services.NewBudgetService(store, log)),
		Reports:    handlers.NewReportHandlers(services.NewReportService(store), saleSvc),
		Backup:     handlers.NewBackupHandlers(backupSvc),
		Health:     handlers.NewHealthHandlers(store, cache, version),
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handlers.ErrorHandler(log)
	e.Validator = handlers.NewRequestValidator()

	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())
	e.Use(middleware.RequestID(log))
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.APIVersion(version))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	docs.SwaggerInfo.Version = version
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	handlers.RegisterRoutes(e, api, authSvc, log)

	if cfg.Jobs.Enabled {
		scheduler, err := background.NewJobScheduler(metrics.NewCronJobMetrics(prometheus.DefaultRegisterer), log, 10*time.Minute)
		if err != nil {
			return err
		}
		alerts := jobs.NewInventoryAlertService(inventorySvc, log)
		if err := scheduler.Register("low_stock_alert", cfg.Jobs.LowStockInterval, alerts.ScheduledLowStockCheck); err != nil {
			return err
		}
		if storage != nil {
			if err := scheduler.Register("backup_upload", cfg.Jobs.BackupInterval, jobs.NewBackupJob(backupSvc, log).Run); err != nil {
				return err
			}
		}
		scheduler.Start()
		defer func() {
			if err := scheduler.Stop(); err != nil {
				log.Error(context.Background(), "scheduler shutdown failed", err)
			}
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info(log.WithFields(ctx, map[string]any{
			"addr":    cfg.App.Address(),
			"backend": string(store.Backend()),
			"version": version,
		}), "hardware store server starting")
		if err := e.Start(cfg.App.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
