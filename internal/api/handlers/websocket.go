package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/slimepool/internal/ws"
)

// HandleSessionWebSocket streams a session's frames and accepts aim and
// launch commands.
func HandleSessionWebSocket(hub *ws.Hub) gin.HandlerFunc {
	return hub.HandleWebSocket
}
