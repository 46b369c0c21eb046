package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/slimepool/internal/middleware"
	"github.com/playmatatu/slimepool/internal/models"
	"github.com/playmatatu/slimepool/internal/players"
)

// PlayerStore is what the handlers need from players.Repository.
type PlayerStore interface {
	Create(ctx context.Context, name, pinHash string) (*models.Player, error)
	GetByName(ctx context.Context, name string) (*models.Player, error)
	GetByID(ctx context.Context, id int) (*models.Player, error)
	Results(ctx context.Context, playerID, limit int) ([]models.GameResult, error)
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

// generateDisplayName creates a short fun display name
func generateDisplayName() string {
	adjectives := []string{"Bouncy", "Swift", "Sticky", "Jolly", "Mighty", "Wobbly", "Clever", "Happy", "Gooey", "Zesty"}
	nouns := []string{"Slime", "Blob", "Drop", "Puddle", "Jelly", "Ooze", "Bubble", "Glob", "Splat", "Drift"}
	return fmt.Sprintf("%s %s %d", adjectives[rand.IntN(len(adjectives))], nouns[rand.IntN(len(nouns))], rand.IntN(1000))
}

// GetMe returns the authenticated player's profile and recent games.
func GetMe(store PlayerStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := middleware.PlayerID(c)

		p, err := store.GetByID(ctx, id)
		if errors.Is(err, players.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
			return
		}
		if err != nil {
			log.Printf("[PLAYER] Failed to load player %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		results, err := store.Results(ctx, id, parseLimit(c.Query("limit"), 10, 50))
		if err != nil {
			log.Printf("[PLAYER] Failed to load results for %d: %v", id, err)
			results = nil
		}
		if results == nil {
			results = []models.GameResult{}
		}

		c.JSON(http.StatusOK, gin.H{
			"player":  p,
			"results": results,
		})
	}
}

// GetLeaderboard lists players by best round.
func GetLeaderboard(store PlayerStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := store.Leaderboard(c.Request.Context(), parseLimit(c.Query("limit"), 10, 100))
		if err != nil {
			log.Printf("[PLAYER] Failed to load leaderboard: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if entries == nil {
			entries = []models.LeaderboardEntry{}
		}
		c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
	}
}
