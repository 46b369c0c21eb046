package session

import (
	"errors"
	"fmt"
	"log"
	"maps"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/playmatatu/slimepool/internal/game"
)

// State is the phase of a session.
type State string

const (
	StatePlaying State = "playing" // waiting for aim moves
	StateRunning State = "running" // balls in motion
)

var (
	ErrNotPlaying        = errors.New("session is not accepting moves")
	ErrUnknownBall       = errors.New("no ball at that index")
	ErrNotPlayerBall     = errors.New("only slimes can be launched")
	ErrInvalidAim        = errors.New("aim must be a finite vector")
	ErrInsufficientFunds = errors.New("not enough money for this upgrade")
	ErrMaxLevel          = errors.New("upgrade is already at max level")
	ErrSessionNotFound   = errors.New("session not found")
	ErrNotOwner          = errors.New("session belongs to another player")
)

// Result is what a finished game contributes to the player's record.
type Result struct {
	SessionID  string `json:"session_id"`
	PlayerID   int    `json:"player_id"`
	Money      int    `json:"money"`
	Round      int    `json:"round"`
	TotalMoney int    `json:"total_money"`
	BestRound  int    `json:"best_round"`
}

// Progress is the part of a session that outlives a single game.
type Progress struct {
	PlayerID   int         `json:"player_id"`
	Levels     game.Levels `json:"levels"`
	TotalMoney int         `json:"total_money"`
	BestRound  int         `json:"best_round"`
}

// Step reports what happened during one call to Advance.
type Step struct {
	Ticks        int
	Sounds       game.SoundSet
	RoundSpawned bool
	Result       *Result // set when the game ended during this step
}

// Session is one player's run of games on a single table. All access to the
// world goes through the session lock.
type Session struct {
	ID       string
	PlayerID int

	mu           sync.RWMutex
	world        *game.World
	state        State
	moves        map[int]game.Vec2
	totalMoney   int
	bestRound    int
	banked       bool
	createdAt    time.Time
	lastActivity time.Time
}

// New starts a session with a fresh world and the first round spawned.
func New(id string, progress Progress) *Session {
	now := time.Now()
	s := &Session{
		ID:           id,
		PlayerID:     progress.PlayerID,
		state:        StatePlaying,
		moves:        make(map[int]game.Vec2),
		totalMoney:   progress.TotalMoney,
		bestRound:    progress.BestRound,
		createdAt:    now,
		lastActivity: now,
	}
	s.world = newWorld(progress.Levels)
	return s
}

func newWorld(levels game.Levels) *game.World {
	w := game.New(levels, rand.Uint64())
	w.SpawnRound()
	return w
}

// SetMove records the aim vector for the slime at index.
func (s *Session) SetMove(index int, aim game.Vec2) error {
	if !aim.IsFinite() {
		return ErrInvalidAim
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePlaying || s.world.IsGameOver() {
		return ErrNotPlaying
	}
	b, ok := s.world.Ball(index)
	if !ok {
		return ErrUnknownBall
	}
	if !b.Type.IsPlayer() {
		return ErrNotPlayerBall
	}

	s.moves[index] = aim
	s.lastActivity = time.Now()
	return nil
}

// ClearMove drops the aim vector for index, if any.
func (s *Session) ClearMove(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePlaying {
		return ErrNotPlaying
	}
	delete(s.moves, index)
	s.lastActivity = time.Now()
	return nil
}

// Moves returns a copy of the pending aim vectors.
func (s *Session) Moves() map[int]game.Vec2 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.moves)
}

// Launch fires every pending move and puts the table in motion. Launching
// with no moves passes the turn.
func (s *Session) Launch() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePlaying || s.world.IsGameOver() {
		return ErrNotPlaying
	}

	s.world.LaunchRound(s.moves)
	s.moves = make(map[int]game.Vec2)
	s.state = StateRunning
	s.lastActivity = time.Now()
	return nil
}

// Advance runs up to ticks simulation steps. When the table comes to rest the
// next round is spawned and the session goes back to waiting for moves.
func (s *Session) Advance(ticks int) Step {
	s.mu.Lock()
	defer s.mu.Unlock()

	var step Step
	if s.state != StateRunning {
		return step
	}

	for step.Ticks < ticks {
		moving, sounds := s.world.Tick()
		step.Ticks++
		step.Sounds = step.Sounds.Merge(sounds)
		if !moving {
			s.state = StatePlaying
			// a table without slimes is over; no next round
			if !s.world.IsGameOver() {
				s.world.SpawnRound()
				step.RoundSpawned = true
				log.Printf("[SESSION] %s round %d spawned (money=%d balls=%d)",
					s.ID, s.world.Round(), s.world.Money(), len(s.world.Balls()))
			}
			break
		}
	}

	if s.world.IsGameOver() && !s.banked {
		r := s.bankLocked()
		step.Result = &r
	}
	return step
}

// bankLocked adds the finished game to the running totals. Callers hold mu.
func (s *Session) bankLocked() Result {
	s.totalMoney += s.world.Money()
	s.bestRound = max(s.bestRound, s.world.Round())
	s.banked = true

	log.Printf("[SESSION] %s game over at round %d (money=%d total=%d best=%d)",
		s.ID, s.world.Round(), s.world.Money(), s.totalMoney, s.bestRound)

	return Result{
		SessionID:  s.ID,
		PlayerID:   s.PlayerID,
		Money:      s.world.Money(),
		Round:      s.world.Round(),
		TotalMoney: s.totalMoney,
		BestRound:  s.bestRound,
	}
}

// BuyUpgrade raises kind by one level, paid from the banked total. The new
// level applies to the live world and to every later game.
func (s *Session) BuyUpgrade(kind game.UpgradeKind) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning {
		return 0, ErrNotPlaying
	}

	levels := s.world.Levels()
	level := levels.Get(kind)
	if level >= game.MaxUpgradeLevel {
		return level, ErrMaxLevel
	}
	price := Price(kind, level)
	if s.totalMoney < price {
		return level, ErrInsufficientFunds
	}

	s.totalMoney -= price
	s.world.SetLevels(levels.With(kind, level+1))
	s.lastActivity = time.Now()

	log.Printf("[SESSION] %s bought %s level %d for %d", s.ID, kind, level+1, price)
	return level + 1, nil
}

// Restart replaces the world with a new game at the current levels. A game
// abandoned before it ended is banked first; the returned result is non-nil
// in that case.
func (s *Session) Restart() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res *Result
	if !s.banked {
		r := s.bankLocked()
		res = &r
	}

	s.world = newWorld(s.world.Levels())
	s.state = StatePlaying
	s.moves = make(map[int]game.Vec2)
	s.banked = false
	s.lastActivity = time.Now()
	return res
}

// Abandon banks a game that has not ended yet and stops accepting moves.
// It returns nil when the game was already banked.
func (s *Session) Abandon() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.moves = make(map[int]game.Vec2)
	s.state = StatePlaying
	if s.banked {
		return nil
	}
	r := s.bankLocked()
	return &r
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) IsGameOver() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.world.IsGameOver()
}

func (s *Session) LastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

// Progress returns the persistent part of the session.
func (s *Session) Progress() Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Progress{
		PlayerID:   s.PlayerID,
		Levels:     s.world.Levels(),
		TotalMoney: s.totalMoney,
		BestRound:  s.bestRound,
	}
}

// Frame is the view of a session sent to clients.
type Frame struct {
	SessionID  string            `json:"session_id" msgpack:"session_id"`
	State      State             `json:"state" msgpack:"state"`
	Balls      []game.Ball       `json:"balls" msgpack:"balls"`
	Coins      []game.Coin       `json:"coins" msgpack:"coins"`
	Money      int               `json:"money" msgpack:"money"`
	Round      int               `json:"round" msgpack:"round"`
	GameOver   bool              `json:"game_over" msgpack:"game_over"`
	Levels     game.Levels       `json:"levels" msgpack:"levels"`
	AimAssist  float64           `json:"aim_assist" msgpack:"aim_assist"`
	TotalMoney int               `json:"total_money" msgpack:"total_money"`
	BestRound  int               `json:"best_round" msgpack:"best_round"`
	Moves      map[int]game.Vec2 `json:"moves" msgpack:"moves"`
	Sounds     []string          `json:"sounds" msgpack:"sounds"`
}

// Frame captures the current view together with the given sounds.
func (s *Session) Frame(sounds game.SoundSet) Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Frame{
		SessionID:  s.ID,
		State:      s.state,
		Balls:      s.world.Balls(),
		Coins:      s.world.Coins(),
		Money:      s.world.Money(),
		Round:      s.world.Round(),
		GameOver:   s.world.IsGameOver(),
		Levels:     s.world.Levels(),
		AimAssist:  s.world.AimAssist(),
		TotalMoney: s.totalMoney,
		BestRound:  s.bestRound,
		Moves:      maps.Clone(s.moves),
		Sounds:     sounds.Strings(),
	}
}

// Snapshot is the persisted form of a session.
type Snapshot struct {
	ID           string            `json:"id"`
	PlayerID     int               `json:"player_id"`
	State        State             `json:"state"`
	Moves        map[int]game.Vec2 `json:"moves"`
	TotalMoney   int               `json:"total_money"`
	BestRound    int               `json:"best_round"`
	Banked       bool              `json:"banked"`
	World        game.Snapshot     `json:"world"`
	CreatedAt    time.Time         `json:"created_at"`
	LastActivity time.Time         `json:"last_activity"`
}

func (s *Session) Snapshot() (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws, err := s.world.Snapshot()
	if err != nil {
		return Snapshot{}, fmt.Errorf("session %s: %w", s.ID, err)
	}
	return Snapshot{
		ID:           s.ID,
		PlayerID:     s.PlayerID,
		State:        s.state,
		Moves:        maps.Clone(s.moves),
		TotalMoney:   s.totalMoney,
		BestRound:    s.bestRound,
		Banked:       s.banked,
		World:        ws,
		CreatedAt:    s.createdAt,
		LastActivity: s.lastActivity,
	}, nil
}

// Restore rebuilds a session from its snapshot.
func Restore(snap Snapshot) (*Session, error) {
	w, err := game.Restore(snap.World)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", snap.ID, err)
	}
	if snap.State != StatePlaying && snap.State != StateRunning {
		return nil, fmt.Errorf("session %s: unknown state %q", snap.ID, snap.State)
	}

	moves := snap.Moves
	if moves == nil {
		moves = make(map[int]game.Vec2)
	}
	return &Session{
		ID:           snap.ID,
		PlayerID:     snap.PlayerID,
		world:        w,
		state:        snap.State,
		moves:        moves,
		totalMoney:   snap.TotalMoney,
		bestRound:    snap.BestRound,
		banked:       snap.Banked,
		createdAt:    snap.CreatedAt,
		lastActivity: snap.LastActivity,
	}, nil
}
