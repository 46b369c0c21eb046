package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/slimepool/internal/auth"
	"github.com/playmatatu/slimepool/internal/config"
)

// PlayerIDKey is the gin context key holding the authenticated player id.
const PlayerIDKey = "player_id"

// RequirePlayer validates the bearer JWT and sets player_id in context.
// WebSocket clients cannot set headers, so a token query parameter is
// accepted as well.
func RequirePlayer(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		} else {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		playerID, err := auth.ParseToken(cfg.JWTSecret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(PlayerIDKey, playerID)
		c.Next()
	}
}

// PlayerID returns the id set by RequirePlayer.
func PlayerID(c *gin.Context) int {
	return c.GetInt(PlayerIDKey)
}
