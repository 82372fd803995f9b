package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	Catalog  *CatalogHandler
	Auth     *AuthHandler
	Bookings *BookingHandler
	Workflow *WorkflowHandler
}

func NewRouter(h Handlers, logger logrus.FieldLogger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	api := router.Group("/api")
	h.Catalog.Register(api.Group("/catalog"))
	h.Auth.Register(api.Group("/auth"))
	h.Bookings.Register(api.Group("/bookings"))
	h.Workflow.Register(api)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return router
}

func requestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
		if len(c.Errors) > 0 {
			entry.WithError(c.Errors.Last()).Error("request failed")
			return
		}
		entry.Debug("request handled")
	}
}
