package middleware

import (
	"net/http"

	"github.com/Algoraver22/employee-hr-platform/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// CORS allows any origin. Preflight requests are answered here and never
// reach the handlers.
func CORS() gin.HandlerFunc {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Content-Type",
			"Authorization",
			"Cache-Control",
			IdempotencyKeyHeader,
			contextutil.RequestIDHeader,
		},
		ExposedHeaders:       []string{contextutil.RequestIDHeader},
		AllowCredentials:     false,
		OptionsSuccessStatus: http.StatusOK,
	})

	return func(ctx *gin.Context) {
		c.HandlerFunc(ctx.Writer, ctx.Request)
		if ctx.Request.Method == http.MethodOptions && ctx.GetHeader("Access-Control-Request-Method") != "" {
			ctx.AbortWithStatus(http.StatusOK)
			return
		}
		ctx.Next()
	}
}
