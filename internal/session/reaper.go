package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const idleKey = "session_idle"

// Reaper evicts sessions nobody has touched for a while. Deadlines live in a
// redis sorted set scored by unix time.
type Reaper struct {
	rdb     *redis.Client
	manager *Manager
	idle    time.Duration
}

// NewReaper creates a reaper for m and registers it as m's idle schedule, so
// sessions the manager replaces or removes leave the schedule too.
func NewReaper(rdb *redis.Client, m *Manager, idle time.Duration) *Reaper {
	r := &Reaper{rdb: rdb, manager: m, idle: idle}
	m.mu.Lock()
	m.idle = r
	m.mu.Unlock()
	return r
}

// Touch pushes the session's eviction deadline to idle from now.
func (r *Reaper) Touch(ctx context.Context, id string) error {
	deadline := time.Now().Add(r.idle).Unix()
	return r.rdb.ZAdd(ctx, idleKey, redis.Z{Score: float64(deadline), Member: id}).Err()
}

// Forget drops the session from the schedule.
func (r *Reaper) Forget(ctx context.Context, id string) error {
	return r.rdb.ZRem(ctx, idleKey, id).Err()
}

// Sweep evicts every session whose deadline is at or before now and returns
// how many were evicted.
func (r *Reaper) Sweep(ctx context.Context, now time.Time) (int, error) {
	members, err := r.rdb.ZRangeByScore(ctx, idleKey, &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", now.Unix())}).Result()
	if err != nil {
		return 0, fmt.Errorf("fetch idle sessions: %w", err)
	}

	evicted := 0
	for _, id := range members {
		// Another worker may have claimed it already.
		if removed, _ := r.rdb.ZRem(ctx, idleKey, id).Result(); removed == 0 {
			continue
		}

		if s, ok := r.manager.Loaded(id); ok {
			if s.State() == StateRunning || now.Sub(s.LastActivity()) < r.idle {
				if err := r.Touch(ctx, id); err != nil {
					log.Printf("[IDLE] Failed to reschedule %s: %v", id, err)
				}
				continue
			}
		}

		if err := r.manager.Evict(ctx, id); err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				continue
			}
			log.Printf("[IDLE] Failed to evict %s: %v", id, err)
			continue
		}
		evicted++
		log.Printf("[IDLE] Evicted idle session %s", id)
	}
	return evicted, nil
}

// Start runs Sweep every poll interval until ctx is cancelled.
func (r *Reaper) Start(ctx context.Context, poll time.Duration) {
	log.Println("[IDLE] Idle reaper started")
	go func() {
		ticker := time.NewTicker(poll)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[IDLE] Idle reaper stopping")
				return
			case now := <-ticker.C:
				if _, err := r.Sweep(ctx, now); err != nil {
					log.Printf("[IDLE] %v", err)
				}
			}
		}
	}()
}
