package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/zhenyao-cai/EduChatbot/internal/core"
)

// LobbyHandlers provides read-only HTTP queries over live lobbies.
type LobbyHandlers struct {
	registry *core.Registry
	log      *zerolog.Logger
}

// NewLobbyHandlers creates a new lobby handlers instance.
func NewLobbyHandlers(registry *core.Registry, logger *zerolog.Logger) *LobbyHandlers {
	return &LobbyHandlers{
		registry: registry,
		log:      logger,
	}
}

// GetMembers handles GET /api/lobbies/:code/members.
func (h *LobbyHandlers) GetMembers(c *gin.Context) {
	lobby := h.registry.Get(c.Param("code"))
	if lobby == nil {
		c.JSON(stdhttp.StatusNotFound, gin.H{"error": "lobby not found"})
		return
	}
	c.JSON(stdhttp.StatusOK, gin.H{
		"lobbyId":  lobby.Code,
		"userList": lobby.Roster(),
	})
}

// GetHost handles GET /api/lobbies/:code/host.
func (h *LobbyHandlers) GetHost(c *gin.Context) {
	lobby := h.registry.Get(c.Param("code"))
	if lobby == nil {
		c.JSON(stdhttp.StatusNotFound, gin.H{"error": "lobby not found"})
		return
	}
	c.JSON(stdhttp.StatusOK, gin.H{
		"lobbyId":  lobby.Code,
		"hostName": lobby.Host,
	})
}
