package employee

import (
	"time"

	"github.com/Algoraver22/employee-hr-platform/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

type RouteOptions struct {
	// Mutations are limited per client IP.
	MutationRPS   float64
	MutationBurst int
	// Redis backs POST idempotency keys; nil disables them.
	Redis          *redis.Client
	IdempotencyTTL time.Duration
}

// RegisterRoutes mounts the record endpoints. Mutations share one per-IP
// limiter.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler, opts RouteOptions) {
	if opts.MutationRPS <= 0 {
		opts.MutationRPS = 5
	}
	if opts.MutationBurst < 1 {
		opts.MutationBurst = 10
	}
	if opts.IdempotencyTTL <= 0 {
		opts.IdempotencyTTL = 24 * time.Hour
	}

	limit := middleware.RateLimitByIP(rate.Limit(opts.MutationRPS), opts.MutationBurst)

	employees := r.Group("/employees")
	{
		employees.GET("", handler.GetAll)
		employees.GET("/:id", handler.GetByID)
		employees.GET("/:id/profile-image", handler.ProfileImage)

		employees.POST("",
			limit,
			middleware.Idempotency(opts.Redis, opts.IdempotencyTTL),
			handler.Create,
		)
		employees.PUT("/:id", limit, handler.Update)
		employees.DELETE("/:id", limit, handler.Delete)
	}
}
