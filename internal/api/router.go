// Package api wires the gin router: middleware chain, gateway routes,
// health and metrics endpoints.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/keving3ng/notion-gateway/internal/handlers"
	"github.com/keving3ng/notion-gateway/internal/logger"
	"github.com/keving3ng/notion-gateway/internal/telemetry"
)

// Handlers groups the route handlers the router mounts.
type Handlers struct {
	Posts   *handlers.PostsHandler
	Recipes *handlers.RecipesHandler
	Image   *handlers.ImageHandler
}

func NewRouter(h Handlers, corsOrigins []string, log logger.Logger, metrics *telemetry.Metrics) *gin.Engine {
	router := gin.New()

	// CORS first so every response, including 429s and errors, carries
	// the headers.
	router.Use(CORSMiddleware(corsOrigins))
	router.Use(RequestIDMiddleware())
	router.Use(RequestLoggerMiddleware(log))
	router.Use(RecoveryMiddleware(log))
	router.Use(metricsMiddleware(metrics))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(telemetry.Handler()))

	apiGroup := router.Group("/api")
	apiGroup.GET("/posts", h.Posts.List)
	apiGroup.GET("/posts/:slug", h.Posts.GetBySlug)
	apiGroup.GET("/recipes", h.Recipes.List)
	apiGroup.GET("/recipes/:id", h.Recipes.GetByID)
	apiGroup.GET("/image/:blockId", h.Image.Get)

	return router
}

func metricsMiddleware(metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.ObserveRequest(endpoint, c.Writer.Status(), time.Since(start))
	}
}
