package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/playmatatu/slimepool/internal/game"
)

// Store persists session snapshots between process restarts.
type Store interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context, id string) (Snapshot, error)
	Delete(ctx context.Context, id string) error
}

// Recorder keeps the player's durable record.
type Recorder interface {
	RecordResult(ctx context.Context, r Result) error
	SaveProgress(ctx context.Context, p Progress) error
}

// Event is published when something notable happens in a session.
type Event struct {
	Type      string    `json:"type" msgpack:"type"`
	SessionID string    `json:"session_id" msgpack:"session_id"`
	PlayerID  int       `json:"player_id" msgpack:"player_id"`
	Round     int       `json:"round" msgpack:"round"`
	Money     int       `json:"money" msgpack:"money"`
	At        time.Time `json:"at" msgpack:"at"`
}

const (
	EventRoundSpawned = "round_spawned"
	EventGameOver     = "game_over"
	EventRestarted    = "restarted"
)

// IdleSchedule tracks sessions that may go idle. Reaper implements it.
type IdleSchedule interface {
	Forget(ctx context.Context, id string) error
}

// Publisher fans session events out to other processes.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Manager holds the live sessions.
type Manager struct {
	sessions map[string]*Session
	byPlayer map[int]string
	store    Store
	recorder Recorder
	events   Publisher
	idle     IdleSchedule
	mu       sync.RWMutex
}

// NewManager creates a manager. Any collaborator may be nil.
func NewManager(store Store, recorder Recorder, events Publisher) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		byPlayer: make(map[int]string),
		store:    store,
		recorder: recorder,
		events:   events,
	}
}

func generateSessionID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return "sess_" + hex.EncodeToString(b)
}

// Create starts a new session for the player. A session the player already
// had is saved and dropped from memory.
func (m *Manager) Create(ctx context.Context, progress Progress) (*Session, error) {
	s := New(generateSessionID(), progress)

	m.mu.Lock()
	old := m.installLocked(s)
	m.mu.Unlock()

	m.retire(ctx, old)
	if err := m.Save(ctx, s); err != nil {
		return nil, err
	}

	log.Printf("[SESSION] Created %s for player %d", s.ID, progress.PlayerID)
	return s, nil
}

// Get returns a session from memory, falling back to the store.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return s, nil
	}

	if m.store == nil {
		return nil, ErrSessionNotFound
	}
	snap, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	s, err = Restore(snap)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if existing, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	old := m.installLocked(s)
	m.mu.Unlock()

	m.retire(ctx, old)
	log.Printf("[SESSION] Loaded %s from store", id)
	return s, nil
}

// installLocked makes s the player's live session and returns the session it
// displaced, if any. Callers hold mu.
func (m *Manager) installLocked(s *Session) *Session {
	var old *Session
	if oldID, ok := m.byPlayer[s.PlayerID]; ok && oldID != s.ID {
		old = m.sessions[oldID]
		delete(m.sessions, oldID)
	}
	m.sessions[s.ID] = s
	m.byPlayer[s.PlayerID] = s.ID
	return old
}

// retire persists a displaced session and takes it off the idle schedule.
// The snapshot stays in the store so the player can switch back.
func (m *Manager) retire(ctx context.Context, old *Session) {
	if old == nil {
		return
	}
	if err := m.Save(ctx, old); err != nil {
		log.Printf("[SESSION] Failed to save replaced session %s: %v", old.ID, err)
	}
	m.forget(ctx, old.ID)
}

func (m *Manager) forget(ctx context.Context, id string) {
	if m.idle == nil {
		return
	}
	if err := m.idle.Forget(ctx, id); err != nil {
		log.Printf("[SESSION] Failed to unschedule %s: %v", id, err)
	}
}

// GetForPlayer returns the session only if playerID owns it.
func (m *Manager) GetForPlayer(ctx context.Context, id string, playerID int) (*Session, error) {
	s, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.PlayerID != playerID {
		return nil, ErrNotOwner
	}
	return s, nil
}

// Loaded returns the session only if it is in memory.
func (m *Manager) Loaded(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Active returns the sessions currently in memory.
func (m *Manager) Active() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Save persists the session snapshot.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	if m.store == nil {
		return nil
	}
	snap, err := s.Snapshot()
	if err != nil {
		return err
	}
	return m.store.Save(ctx, snap)
}

// Evict saves a session and drops it from memory. The snapshot stays in the
// store so the player can resume.
func (m *Manager) Evict(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
		if m.byPlayer[s.PlayerID] == id {
			delete(m.byPlayer, s.PlayerID)
		}
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	if err := m.Save(ctx, s); err != nil {
		return err
	}
	if m.recorder != nil {
		if err := m.recorder.SaveProgress(ctx, s.Progress()); err != nil {
			log.Printf("[SESSION] Failed to save progress for %s: %v", id, err)
		}
	}
	return nil
}

// Remove deletes a session everywhere. A game still in progress is banked
// and recorded first.
func (m *Manager) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
		if m.byPlayer[s.PlayerID] == id {
			delete(m.byPlayer, s.PlayerID)
		}
	}
	m.mu.Unlock()

	if ok {
		if res := s.Abandon(); res != nil {
			m.finish(ctx, s, *res)
		}
	}
	m.forget(ctx, id)

	if m.store == nil {
		if !ok {
			return ErrSessionNotFound
		}
		return nil
	}
	return m.store.Delete(ctx, id)
}

// Advance steps a running session and handles round and game-over
// bookkeeping.
func (m *Manager) Advance(ctx context.Context, s *Session, ticks int) Step {
	step := s.Advance(ticks)

	if step.RoundSpawned {
		f := s.Frame(0)
		m.publish(ctx, Event{Type: EventRoundSpawned, SessionID: s.ID, PlayerID: s.PlayerID, Round: f.Round, Money: f.Money})
		if err := m.Save(ctx, s); err != nil {
			log.Printf("[SESSION] Failed to save %s: %v", s.ID, err)
		}
	}
	if step.Result != nil {
		m.finish(ctx, s, *step.Result)
		m.publish(ctx, Event{Type: EventGameOver, SessionID: s.ID, PlayerID: s.PlayerID, Round: step.Result.Round, Money: step.Result.Money})
	}
	return step
}

// Restart begins a new game in the session.
func (m *Manager) Restart(ctx context.Context, s *Session) error {
	if res := s.Restart(); res != nil {
		m.finish(ctx, s, *res)
	}
	m.publish(ctx, Event{Type: EventRestarted, SessionID: s.ID, PlayerID: s.PlayerID, Round: 1})
	return m.Save(ctx, s)
}

// BuyUpgrade buys the next level of kind and records the new progress.
func (m *Manager) BuyUpgrade(ctx context.Context, s *Session, kind game.UpgradeKind) (int, error) {
	level, err := s.BuyUpgrade(kind)
	if err != nil {
		return level, err
	}
	if m.recorder != nil {
		if err := m.recorder.SaveProgress(ctx, s.Progress()); err != nil {
			log.Printf("[SESSION] Failed to save progress for %s: %v", s.ID, err)
		}
	}
	return level, m.Save(ctx, s)
}

func (m *Manager) finish(ctx context.Context, s *Session, r Result) {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.RecordResult(ctx, r); err != nil {
		log.Printf("[SESSION] Failed to record result for %s: %v", s.ID, err)
	}
	if err := m.recorder.SaveProgress(ctx, s.Progress()); err != nil {
		log.Printf("[SESSION] Failed to save progress for %s: %v", s.ID, err)
	}
}

func (m *Manager) publish(ctx context.Context, e Event) {
	if m.events == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	if err := m.events.Publish(ctx, e); err != nil {
		log.Printf("[SESSION] Failed to publish %s for %s: %v", e.Type, e.SessionID, err)
	}
}

// IsNotFound reports whether err means the session does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}
