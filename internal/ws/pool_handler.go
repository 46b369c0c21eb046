package ws

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/slimepool/internal/game"
	"github.com/playmatatu/slimepool/internal/session"
)

const (
	pongWait       = 60 * time.Second
	maxMessageSize = 4096
)

// readPump reads commands from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Read error for player %d: %v", c.playerID, err)
			}
			return
		}

		msg, err := DecodeIn(messageType, data)
		if err != nil {
			c.sendError("invalid message")
			continue
		}
		c.handleMessage(msg)
	}
}

// handleMessage applies one client command to the session and pushes the
// resulting frame to everyone watching it.
func (c *Client) handleMessage(msg InMessage) {
	ctx := context.Background()

	s, ok := c.hub.manager.Loaded(c.sessionID)
	if !ok {
		// evicted while connected; reload it
		var err error
		s, err = c.hub.manager.GetForPlayer(ctx, c.sessionID, c.playerID)
		if err != nil {
			log.Printf("[WS] Session %s unavailable for player %d: %v", c.sessionID, c.playerID, err)
			c.sendError("session not available")
			return
		}
	}

	var err error
	switch msg.Type {
	case "aim":
		err = s.SetMove(msg.Ball, game.NewVec2(msg.X, msg.Y))
	case "clear_aim":
		err = s.ClearMove(msg.Ball)
	case "launch":
		err = s.Launch()
		if err == nil {
			log.Printf("[WS] Player %d launched in session %s", c.playerID, c.sessionID)
		}
	case "get_state":
		f := s.Frame(0)
		c.sendMessage(OutMessage{Type: "frame", Frame: &f})
		return
	default:
		c.sendError("unknown message type: " + msg.Type)
		return
	}

	if err != nil {
		c.sendError(commandError(err))
		return
	}

	if c.hub.reaper != nil {
		if err := c.hub.reaper.Touch(ctx, c.sessionID); err != nil {
			log.Printf("[WS] Failed to touch session %s: %v", c.sessionID, err)
		}
	}
	c.hub.BroadcastFrame(c.sessionID, s.Frame(0))
}

func commandError(err error) string {
	switch {
	case errors.Is(err, session.ErrNotPlaying):
		return "table is in motion or the game is over"
	case errors.Is(err, session.ErrUnknownBall):
		return "no such ball"
	case errors.Is(err, session.ErrNotPlayerBall):
		return "only slimes can be aimed"
	case errors.Is(err, session.ErrInvalidAim):
		return "aim must be finite"
	}
	return err.Error()
}
