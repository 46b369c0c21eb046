package game

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// Balls returns a copy of the balls currently on the table.
func (w *World) Balls() []Ball {
	return slices.Clone(w.balls)
}

// Ball returns the ball at index i and whether it exists.
func (w *World) Ball(i int) (Ball, bool) {
	if i < 0 || i >= len(w.balls) {
		return Ball{}, false
	}
	return w.balls[i], true
}

// Coins returns a copy of the coins waiting on the table.
func (w *World) Coins() []Coin {
	return slices.Clone(w.coins)
}

func (w *World) Money() int         { return w.money }
func (w *World) Round() int         { return w.round }
func (w *World) IsGameOver() bool   { return w.gameOver }
func (w *World) Levels() Levels     { return w.levels }
func (w *World) Table() *Table      { return w.table }
func (w *World) AimAssist() float64 { return w.levels.aimAssist() }

// PlayerCount returns the number of slimes on the table.
func (w *World) PlayerCount() int {
	n := 0
	for i := range w.balls {
		if w.balls[i].Type.IsPlayer() {
			n++
		}
	}
	return n
}

// EnemyCount returns the number of enemy balls on the table.
func (w *World) EnemyCount() int {
	n := 0
	for i := range w.balls {
		if w.balls[i].Type.IsEnemy() {
			n++
		}
	}
	return n
}

// SetLevels changes the upgrade levels between rounds. Balls already on the
// table keep their friction; new fragments pick up the new values.
func (w *World) SetLevels(levels Levels) {
	levels.mustValidate()
	w.levels = levels
}

// AddBall puts a ball on the table as-is.
func (w *World) AddBall(b Ball) {
	w.balls = append(w.balls, b)
}

// AddCoin puts a coin on the table.
func (w *World) AddCoin(position Vec2) {
	w.coins = append(w.coins, Coin{Position: position})
}

// Snapshot is a serialisable copy of a World, random source included.
type Snapshot struct {
	Balls    []Ball `json:"balls"`
	Coins    []Coin `json:"coins"`
	Money    int    `json:"money"`
	Round    int    `json:"round"`
	GameOver bool   `json:"game_over"`
	Levels   Levels `json:"levels"`
	RNG      []byte `json:"rng"`
}

// Snapshot captures the full state of the world.
func (w *World) Snapshot() (Snapshot, error) {
	state, err := w.src.MarshalBinary()
	if err != nil {
		return Snapshot{}, fmt.Errorf("marshal random source: %w", err)
	}
	return Snapshot{
		Balls:    w.Balls(),
		Coins:    w.Coins(),
		Money:    w.money,
		Round:    w.round,
		GameOver: w.gameOver,
		Levels:   w.levels,
		RNG:      state,
	}, nil
}

// Restore rebuilds a world from a snapshot. The restored world continues the
// snapshot's random sequence.
func Restore(s Snapshot) (*World, error) {
	if !s.Levels.Valid() {
		return nil, fmt.Errorf("snapshot levels out of range: %+v", s.Levels)
	}
	if s.Money < 0 || s.Round < 0 {
		return nil, fmt.Errorf("snapshot counters negative: money=%d round=%d", s.Money, s.Round)
	}

	src := &rand.PCG{}
	if err := src.UnmarshalBinary(s.RNG); err != nil {
		return nil, fmt.Errorf("unmarshal random source: %w", err)
	}

	return &World{
		table:    NewSlimeTable(),
		balls:    slices.Clone(s.Balls),
		coins:    slices.Clone(s.Coins),
		money:    s.Money,
		round:    s.Round,
		gameOver: s.GameOver,
		levels:   s.Levels,
		src:      src,
		rng:      rand.New(src),
	}, nil
}
