package middleware

import (
	"log"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/slimepool/internal/config"
)

// CORSMiddleware lets the game client call the API from its own origin.
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "X-Session-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if cfg.Environment == "development" {
		corsConfig.AllowOriginFunc = isLocalOrigin
		log.Printf("[CORS] development: allowing localhost origins")
	} else {
		corsConfig.AllowOrigins = allowedOrigins(cfg)
		log.Printf("[CORS] %s: allowed origins %v", cfg.Environment, corsConfig.AllowOrigins)
	}

	return cors.New(corsConfig)
}

// WebSocketCORSCheck rejects upgrade requests from foreign origins. Plain
// HTTP requests pass through untouched.
func WebSocketCORSCheck(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isUpgrade(c.Request) {
			c.Next()
			return
		}

		origin := c.GetHeader("Origin")
		switch {
		case origin == "":
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "WebSocket origin required"})
		case !originAllowed(cfg, origin):
			log.Printf("[CORS] rejected websocket origin %s", origin)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "WebSocket origin not allowed"})
		default:
			c.Next()
		}
	}
}

func isUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Connection"), "upgrade") &&
		strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

func originAllowed(cfg *config.Config, origin string) bool {
	if cfg.Environment == "development" {
		return isLocalOrigin(origin)
	}
	return slices.Contains(allowedOrigins(cfg), origin)
}

func isLocalOrigin(origin string) bool {
	return strings.HasPrefix(origin, "http://localhost:") ||
		strings.HasPrefix(origin, "http://127.0.0.1:")
}

func allowedOrigins(cfg *config.Config) []string {
	origins := []string{
		"https://slimepool.playmatatu.com",
		"https://playmatatu.com",
	}
	if cfg.FrontendURL != "" && !slices.Contains(origins, cfg.FrontendURL) {
		origins = append(origins, cfg.FrontendURL)
	}
	return origins
}
