package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RouterConfig struct {
	OutputDir      string
	MaxUploadBytes int64
	Version        string
}

func NewRouter(cfg RouterConfig, pipeline Pipeline, logger *zap.Logger) *gin.Engine {
	h := NewHandler(pipeline, logger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))

	r.Static("/outputs", cfg.OutputDir)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": cfg.Version,
		})
	})

	api := r.Group("/api/v1")
	api.Use(LimitBody(cfg.MaxUploadBytes))
	{
		api.POST("/reference-image", h.ReferenceImage)
		api.POST("/motion-sequence", h.MotionSequence)
		api.POST("/animate", h.Animate)
	}

	return r
}
