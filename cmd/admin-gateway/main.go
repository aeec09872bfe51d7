package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/tuvia-the-goat/gym-aman-admin-api/api/swagger"
	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/handler"
	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/live"
	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/middleware"
	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/models"
	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/repository"
	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/service"
	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/upstream"
	"github.com/tuvia-the-goat/gym-aman-admin-api/pkg/cache"
	"github.com/tuvia-the-goat/gym-aman-admin-api/pkg/config"
	"github.com/tuvia-the-goat/gym-aman-admin-api/pkg/logger"
	corsmiddleware "github.com/tuvia-the-goat/gym-aman-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/tuvia-the-goat/gym-aman-admin-api/pkg/middleware/requestid"
	"github.com/tuvia-the-goat/gym-aman-admin-api/pkg/storage"

	"go.uber.org/zap"
)

// @title Gym Aman Admin Gateway
// @version 0.1.0
// @description Analytics, listings, and exports over the gym access-control backend
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logr.Sugar().Fatalw("invalid timezone", "timezone", cfg.Timezone, "error", err)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	var cacheSvc *service.CacheService
	if cfg.Analytics.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, running without cache", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Analytics.CacheTTL, logr, true)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	upstreamClient := upstream.NewClient(cfg.Upstream, logr)
	snapshotSvc := service.NewSnapshotService(upstreamClient, metricsSvc, cfg.Analytics.CacheTTL, logr)
	analyticsSvc := service.NewAnalyticsService(snapshotSvc, cacheSvc, metricsSvc, logr, loc)
	authSvc := service.NewAuthService(cfg.JWT.Secret, logr)

	var liveSub *live.Subscriber
	if cfg.Live.Enabled {
		liveSub, err = live.Dial(ctx, cfg.Live.URL, logr)
		if err != nil {
			logr.Sugar().Warnw("push channel unavailable, running without live refresh", "error", err)
		} else {
			defer liveSub.Close() //nolint:errcheck
			liveSub.Subscribe(func(entry models.Entry) {
				metricsSvc.RecordLiveEvent()
				baseID := entry.BaseID
				// Redis round trips must stay off the push channel's read pump.
				go func() {
					snapshotSvc.Invalidate(baseID)
					if cacheSvc != nil {
						if err := cacheSvc.Invalidate(context.Background(), "analytics:*"); err != nil {
							logr.Warn("analytics cache invalidation failed", zap.Error(err))
						}
					}
				}()
			})
		}
	}

	feedSvc := service.NewFeedService(upstreamClient, liveSub, cfg.Feeds, logr)
	defer feedSvc.CloseAll()

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		store, err := storage.NewArtifactStore(cfg.Exports.StorageDir, cfg.Exports.SignedURLTTL)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewDownloadSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc = service.NewExportService(upstreamClient, snapshotSvc, store, signer, validate, logr, cfg.Exports)
		exportSvc.Start(ctx)
		defer exportSvc.Stop()
	}

	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc)
	traineeHandler := handler.NewTraineeHandler(feedSvc, validate)
	entriesHandler := handler.NewEntriesHandler(feedSvc, validate)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authSvc))
	api.Use(middleware.RequireRoles(models.RoleGeneralAdmin, models.RoleGymAdmin))
	{
		analytics := api.Group("/analytics")
		analytics.GET("/overview", analyticsHandler.Overview)
		analytics.GET("/top", analyticsHandler.Top)
		analytics.GET("/ages", analyticsHandler.Ages)
		analytics.GET("/bases", analyticsHandler.Bases)
		analytics.GET("/trainees/:id", analyticsHandler.Trainee)
		analytics.GET("/system", analyticsHandler.System)

		api.GET("/trainees", traineeHandler.List)
		api.GET("/entries", entriesHandler.List)

		if exportSvc != nil {
			api.POST("/exports/entries", exportHandler.Create)
			api.GET("/exports/:id", exportHandler.Status)
		}
	}

	if exportSvc != nil {
		// Signed token is the credential here; browsers navigate to it directly.
		r.GET(cfg.APIPrefix+"/exports/:id/download", exportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
