package app

import (
	"time"

	"github.com/Algoraver22/employee-hr-platform/internal/config"
	"github.com/Algoraver22/employee-hr-platform/internal/dashboard"
	"github.com/Algoraver22/employee-hr-platform/internal/employee"
	"github.com/Algoraver22/employee-hr-platform/internal/messaging/kafka"
	"github.com/Algoraver22/employee-hr-platform/internal/profileimage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type infrastructure struct {
	store        *recordStore
	redis        *redis.Client
	images       profileimage.Store
	writer       *kafkago.Writer
	listCacheTTL time.Duration
}

func registerModules(router *gin.Engine, infra infrastructure, cfg *config.Config, logger *zap.Logger) {
	// --- Services ---
	deps := employee.Dependencies{
		DB:           infra.store.db,
		Repo:         infra.store.repo,
		Images:       infra.images,
		Redis:        infra.redis,
		ListCacheTTL: infra.listCacheTTL,
	}
	if infra.store.db != nil {
		deps.Outbox = kafka.NewOutboxRepository(infra.store.db)
	}
	if infra.writer != nil {
		deps.Publisher = employee.NewKafkaEventPublisher(infra.writer)
	}

	employeeService := employee.New(deps, logger)
	dashboardService := dashboard.NewService(infra.store.repo, infra.redis, 0, logger)

	// --- Handlers ---
	employeeHandler := employee.NewHandler(employeeService, logger)
	dashboardHandler := dashboard.NewHandler(dashboardService, logger)

	// --- Routes Registration ---
	api := router.Group("/api")
	{
		dashboard.RegisterRoutes(api, dashboardHandler)
		employee.RegisterRoutes(api, employeeHandler, employee.RouteOptions{
			MutationRPS:   cfg.RateLimit.RPS,
			MutationBurst: cfg.RateLimit.Burst,
			Redis:         infra.redis,
		})
	}
}
