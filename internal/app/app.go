package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Algoraver22/employee-hr-platform/internal/config"
	"github.com/Algoraver22/employee-hr-platform/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildApp opens the infrastructure named by cfg, wires the modules onto
// router and returns the cleanup funcs to run after the server drains.
func BuildApp(ctx context.Context, router *gin.Engine, cfg *config.Config, logger *zap.Logger) ([]cleanupFunc, error) {
	log := logger.Named("app")
	var cleanup []cleanupFunc

	// 1. Setup Infrastructure
	store, err := openRecordStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	cleanup = append(cleanup, store.close)

	rdb := openRedis(cfg, log)
	if rdb != nil {
		cleanup = append(cleanup, func(context.Context) error { return rdb.Close() })
	}

	images, err := openImageStore(ctx, cfg, log)
	if err != nil {
		return cleanup, fmt.Errorf("open image store: %w", err)
	}

	infra := infrastructure{
		store:        store,
		redis:        rdb,
		images:       images,
		listCacheTTL: cfg.ListCacheTTL,
	}

	// Mongo cannot share a transaction with the outbox, so lifecycle events
	// go to the broker directly when one is configured.
	if store.db == nil {
		writer, err := openKafkaWriter(cfg, log)
		if err != nil {
			log.Warn("kafka unavailable, lifecycle events disabled", zap.Error(err))
		} else if writer != nil {
			infra.writer = writer
			cleanup = append(cleanup, func(context.Context) error { return writer.Close() })
		}
	}

	// 2. Middlewares
	router.Use(
		middleware.ContextLogger(logger),
		middleware.CORS(),
		middleware.Metrics(),
	)

	started := time.Now()
	router.GET("/", rootHandler)
	router.GET("/health", healthHandler(started))
	router.GET("/metrics", middleware.MetricsHandler())

	// 3. Register Modules & Routes
	registerModules(router, infra, cfg, logger)

	return cleanup, nil
}
