package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/zhenyao-cai/EduChatbot/internal/config"
	"github.com/zhenyao-cai/EduChatbot/internal/core"
)

// NewServer builds the HTTP server: health, WebSocket upgrade and the
// read-only lobby query API.
func NewServer(hub *core.Hub, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, logger)))

	lobbies := NewLobbyHandlers(hub.Registry(), logger)
	api := router.Group("/api")
	{
		api.GET("/lobbies/:code/members", lobbies.GetMembers)
		api.GET("/lobbies/:code/host", lobbies.GetHost)
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
