package game

import (
	"fmt"
	"maps"
	"math"
	"slices"
)

// LaunchRound splits every aimed ball into two half-mass fragments shot in
// opposite directions. moves maps a ball index in the current collection to
// the raw aim vector. Indices outside the collection panic.
func (w *World) LaunchRound(moves map[int]Vec2) {
	if len(moves) == 0 {
		return
	}

	indices := slices.Sorted(maps.Keys(moves))
	for _, i := range indices {
		if i < 0 || i >= len(w.balls) {
			panic(fmt.Sprintf("game: launch of ball %d, only %d on the table", i, len(w.balls)))
		}
	}

	fragments := make([]Ball, 0, 2*len(indices))
	for _, i := range indices {
		f1, f2 := w.split(&w.balls[i], moves[i])
		fragments = append(fragments, f1, f2)
	}

	w.balls = removeIndices(w.balls, indices)
	w.balls = append(w.balls, fragments...)
}

// LaunchVelocity converts a raw aim vector into the velocity given to a
// fragment at the current max-speed level. The aim is clamped before it is
// scaled so huge aims cannot overflow.
func (w *World) LaunchVelocity(aim Vec2) Vec2 {
	return aim.ClampMagnitude(LaunchSpeedCap).Times(w.levels.maxSpeed())
}

// split returns the two fragments of b launched along aim.
func (w *World) split(b *Ball, aim Vec2) (Ball, Ball) {
	v := w.LaunchVelocity(aim)
	dir := v.NormalizeOrZero()

	radius := b.Radius / math.Sqrt2
	mass := b.Mass / 2

	friction := b.Friction
	if b.Type.IsPlayer() {
		friction = w.levels.sliding()
	}

	forward := NewBall(mass, b.Position.Plus(dir.Times(radius)), v, friction, radius, b.Type)
	backward := NewBall(mass, b.Position.Minus(dir.Times(radius)), v.Invert(), friction, radius, b.Type)
	return forward, backward
}
