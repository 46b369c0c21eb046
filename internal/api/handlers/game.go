package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/slimepool/internal/game"
	"github.com/playmatatu/slimepool/internal/middleware"
	"github.com/playmatatu/slimepool/internal/players"
	"github.com/playmatatu/slimepool/internal/session"
)

// FrameSink receives frames produced by REST commands so websocket watchers
// see them too.
type FrameSink interface {
	BroadcastFrame(sessionID string, f session.Frame)
}

// Sessions bundles what the session endpoints need. Reaper and Frames may be
// nil.
type Sessions struct {
	Manager *session.Manager
	Players PlayerStore
	Reaper  *session.Reaper
	Frames  FrameSink
}

type sessionView struct {
	session.Frame
	Shop []session.ShopItem `json:"shop"`
}

func viewOf(s *session.Session) sessionView {
	f := s.Frame(0)
	return sessionView{Frame: f, Shop: session.Shop(f.Levels)}
}

// CreateSession starts a new game for the authenticated player.
func CreateSession(deps *Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		playerID := middleware.PlayerID(c)

		p, err := deps.Players.GetByID(ctx, playerID)
		if errors.Is(err, players.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
			return
		}
		if err != nil {
			log.Printf("[GAME] Failed to load player %d: %v", playerID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		s, err := deps.Manager.Create(ctx, players.ProgressOf(p))
		if err != nil {
			log.Printf("[GAME] Failed to create session for %d: %v", playerID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		deps.touch(c, s.ID)

		c.Header("X-Session-ID", s.ID)
		c.JSON(http.StatusCreated, viewOf(s))
	}
}

// GetSession returns the current view of a session, including the shop.
func GetSession(deps *Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := deps.load(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, viewOf(s))
	}
}

// SetMove records an aim vector for one slime.
func SetMove(deps *Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		ball, err := strconv.Atoi(c.Param("ball"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ball index"})
			return
		}
		var req struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "x and y required"})
			return
		}

		s, ok := deps.load(c)
		if !ok {
			return
		}
		if err := s.SetMove(ball, game.NewVec2(req.X, req.Y)); err != nil {
			sessionError(c, err)
			return
		}
		deps.changed(c, s)
	}
}

// ClearMove drops the aim vector for one slime.
func ClearMove(deps *Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		ball, err := strconv.Atoi(c.Param("ball"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ball index"})
			return
		}
		s, ok := deps.load(c)
		if !ok {
			return
		}
		if err := s.ClearMove(ball); err != nil {
			sessionError(c, err)
			return
		}
		deps.changed(c, s)
	}
}

// Launch fires the pending moves.
func Launch(deps *Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := deps.load(c)
		if !ok {
			return
		}
		if err := s.Launch(); err != nil {
			sessionError(c, err)
			return
		}
		log.Printf("[GAME] Player %d launched in session %s", s.PlayerID, s.ID)
		deps.changed(c, s)
	}
}

// BuyUpgrade buys the next level of an upgrade with banked money.
func BuyUpgrade(deps *Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, err := game.ParseUpgradeKind(c.Param("kind"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s, ok := deps.load(c)
		if !ok {
			return
		}
		level, err := deps.Manager.BuyUpgrade(c.Request.Context(), s, kind)
		if err != nil {
			sessionError(c, err)
			return
		}
		log.Printf("[GAME] Player %d bought %s level %d", s.PlayerID, kind, level)
		deps.changed(c, s)
	}
}

// Restart abandons the current game and deals a new one.
func Restart(deps *Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := deps.load(c)
		if !ok {
			return
		}
		if err := deps.Manager.Restart(c.Request.Context(), s); err != nil {
			// the new game is live in memory; only persistence failed
			log.Printf("[GAME] Failed to save restarted session %s: %v", s.ID, err)
		}
		deps.changed(c, s)
	}
}

// DeleteSession ends a session for good. A game still in progress is banked
// into the player's record first.
func DeleteSession(deps *Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := deps.load(c)
		if !ok {
			return
		}
		if err := deps.Manager.Remove(c.Request.Context(), s.ID); err != nil {
			sessionError(c, err)
			return
		}
		log.Printf("[GAME] Player %d deleted session %s", s.PlayerID, s.ID)
		c.Status(http.StatusNoContent)
	}
}

func (d *Sessions) load(c *gin.Context) (*session.Session, bool) {
	s, err := d.Manager.GetForPlayer(c.Request.Context(), c.Param("id"), middleware.PlayerID(c))
	if err != nil {
		sessionError(c, err)
		return nil, false
	}
	return s, true
}

// changed pushes the new frame to websocket watchers and answers with the
// session view.
func (d *Sessions) changed(c *gin.Context, s *session.Session) {
	d.touch(c, s.ID)
	view := viewOf(s)
	if d.Frames != nil {
		d.Frames.BroadcastFrame(s.ID, view.Frame)
	}
	c.JSON(http.StatusOK, view)
}

func (d *Sessions) touch(c *gin.Context, id string) {
	if d.Reaper == nil {
		return
	}
	if err := d.Reaper.Touch(c.Request.Context(), id); err != nil {
		log.Printf("[GAME] Failed to touch session %s: %v", id, err)
	}
}

func sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, session.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "not your session"})
	case errors.Is(err, session.ErrNotPlaying):
		c.JSON(http.StatusConflict, gin.H{"error": "table is in motion or the game is over"})
	case errors.Is(err, session.ErrMaxLevel):
		c.JSON(http.StatusConflict, gin.H{"error": "upgrade already at max level"})
	case errors.Is(err, session.ErrInsufficientFunds):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "not enough money"})
	case errors.Is(err, session.ErrUnknownBall):
		c.JSON(http.StatusBadRequest, gin.H{"error": "no such ball"})
	case errors.Is(err, session.ErrNotPlayerBall):
		c.JSON(http.StatusBadRequest, gin.H{"error": "only slimes can be aimed"})
	case errors.Is(err, session.ErrInvalidAim):
		c.JSON(http.StatusBadRequest, gin.H{"error": "aim must be finite"})
	default:
		log.Printf("[GAME] Session error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
