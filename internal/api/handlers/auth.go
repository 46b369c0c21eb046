package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/slimepool/internal/auth"
	"github.com/playmatatu/slimepool/internal/config"
	"github.com/playmatatu/slimepool/internal/models"
	"github.com/playmatatu/slimepool/internal/players"
)

const maxDisplayNameLen = 32

type credentials struct {
	Name string `json:"name"`
	PIN  string `json:"pin"`
}

// RegisterPlayer creates a player and returns a token for it. An empty name
// gets a generated one.
func RegisterPlayer(store PlayerStore, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentials
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name and pin required"})
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			name = generateDisplayName()
		}
		if utf8.RuneCountInString(name) > maxDisplayNameLen {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name too long"})
			return
		}
		if err := auth.ValidatePIN(req.PIN); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		hash, err := auth.HashPIN(req.PIN)
		if err != nil {
			log.Printf("[AUTH] Failed to hash PIN: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		p, err := store.Create(c.Request.Context(), name, hash)
		if errors.Is(err, players.ErrNameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "name already taken"})
			return
		}
		if err != nil {
			log.Printf("[AUTH] Failed to create player %q: %v", name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		log.Printf("[AUTH] Registered player %d (%s)", p.ID, p.DisplayName)
		respondWithToken(c, http.StatusCreated, p, cfg)
	}
}

// Login checks name and PIN and issues a token.
func Login(store PlayerStore, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentials
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name and pin required"})
			return
		}

		p, err := store.GetByName(c.Request.Context(), strings.TrimSpace(req.Name))
		if err != nil && !errors.Is(err, players.ErrNotFound) {
			log.Printf("[AUTH] Failed to load player %q: %v", req.Name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if p == nil || !auth.VerifyPIN(p.PINHash, req.PIN) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid name or pin"})
			return
		}

		respondWithToken(c, http.StatusOK, p, cfg)
	}
}

func respondWithToken(c *gin.Context, status int, p *models.Player, cfg *config.Config) {
	ttl := time.Duration(cfg.SessionTimeoutMin) * time.Minute
	token, expires, err := auth.IssueToken(cfg.JWTSecret, p.ID, p.DisplayName, ttl)
	if err != nil {
		log.Printf("[AUTH] Failed to issue token for %d: %v", p.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{
		"player":     p,
		"token":      token,
		"expires_at": expires,
	})
}
