package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func rootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Employee Management System API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"status":    "healthy",
	})
}

func healthHandler(started time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"uptime": time.Since(started).Seconds(),
		})
	}
}
