package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/slimepool/internal/api/handlers"
	"github.com/playmatatu/slimepool/internal/config"
	"github.com/playmatatu/slimepool/internal/middleware"
	"github.com/playmatatu/slimepool/internal/ws"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, cfg *config.Config, sessions *handlers.Sessions, hub *ws.Hub) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	requirePlayer := middleware.RequirePlayer(cfg)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(sessions.Manager))
		v1.GET("/leaderboard", handlers.GetLeaderboard(sessions.Players))

		player := v1.Group("/players")
		{
			player.POST("", handlers.RegisterPlayer(sessions.Players, cfg))
			player.POST("/login", handlers.Login(sessions.Players, cfg))
			player.GET("/me", requirePlayer, handlers.GetMe(sessions.Players))
		}

		game := v1.Group("/sessions", requirePlayer)
		{
			game.POST("", handlers.CreateSession(sessions))
			game.GET("/:id", handlers.GetSession(sessions))
			game.DELETE("/:id", handlers.DeleteSession(sessions))
			game.PUT("/:id/moves/:ball", handlers.SetMove(sessions))
			game.DELETE("/:id/moves/:ball", handlers.ClearMove(sessions))
			game.POST("/:id/launch", handlers.Launch(sessions))
			game.POST("/:id/upgrades/:kind", handlers.BuyUpgrade(sessions))
			game.POST("/:id/restart", handlers.Restart(sessions))
		}

		// token comes from the query string here; browsers cannot set headers on upgrade
		if hub != nil {
			v1.GET("/sessions/:id/ws", middleware.WebSocketCORSCheck(cfg), requirePlayer, handlers.HandleSessionWebSocket(hub))
		}
	}
}
