package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func NewRouter(h *Handler, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.GET("/cards", h.ListCategories)
	api.GET("/cards/:category", h.ListCards)
	api.GET("/cards/:category/:id", h.GetCard)
	api.POST("/cards/:category/:id/sync", h.ResyncCard)
	api.POST("/sync/:source", h.TriggerSource)
	api.GET("/videos", h.ListVideos)
	api.GET("/videos/categories", h.ListVideoCategories)

	return router
}

// requestLogger writes one log line per request, at error level when a
// handler attached errors to the context.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			logger.Error("http request with errors", append(attrs, "errors", c.Errors.Errors())...)
			return
		}
		logger.Debug("http request", attrs...)
	}
}
