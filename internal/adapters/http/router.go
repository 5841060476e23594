package http

import (
	"context"
	"net/http"

	"github.com/confmesh/signaling/internal/adapters/signal"
	"github.com/confmesh/signaling/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func SetupRouter(ctx context.Context, cfg *config.Config, ctl *signal.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/ws", func(c *gin.Context) {
		ctl.HandleSignal(ctx, c)
	})

	api := r.Group("/api")
	api.GET("/ice", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"iceServers": cfg.WebRTCICEServers()})
	})
	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, ctl.Registry.List())
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
