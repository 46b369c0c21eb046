package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/playmatatu/slimepool/internal/session"
	"github.com/redis/go-redis/v9"
)

// StartEventSubscriber relays session events published on redis to the
// connected clients, so every server instance sees every event.
func StartEventSubscriber(ctx context.Context, rdb *redis.Client, hub *Hub) {
	if rdb == nil {
		log.Println("[WS] Redis client not set; event subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, session.EventsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started", session.EventsChannel)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var e session.Event
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					log.Printf("[WS] invalid event payload: %v", err)
					continue
				}
				if e.SessionID == "" {
					log.Printf("[WS] event %s without session id", e.Type)
					continue
				}
				if hub.RoomSize(e.SessionID) == 0 {
					continue
				}
				log.Printf("[WS] event received: type=%s session=%s", e.Type, e.SessionID)
				hub.BroadcastEvent(e)
			}
		}
	}()
}
