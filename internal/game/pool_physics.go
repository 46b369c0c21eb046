package game

import (
	"math"
	"math/rand/v2"
	"slices"
)

// World runs the slime table simulation. It is not safe for concurrent use;
// callers serialise access.
type World struct {
	table    *Table
	balls    []Ball
	coins    []Coin
	money    int
	round    int
	gameOver bool
	levels   Levels

	src *rand.PCG
	rng *rand.Rand
}

// New creates a world with the given upgrade levels and one resting slime in
// the middle of the table. Out-of-range levels panic.
func New(levels Levels, seed uint64) *World {
	levels.mustValidate()

	src := newSource(seed)
	w := &World{
		table:  NewSlimeTable(),
		levels: levels,
		src:    src,
		rng:    rand.New(src),
	}

	center := NewVec2(TableWidth/2, TableHeight/2)
	w.balls = append(w.balls, newSlime(levels.startingMass(), center, levels.sliding()))
	return w
}

// Tick advances the simulation by one step. It reports whether any ball is
// still moving and the set of sounds produced during the step.
func (w *World) Tick() (bool, SoundSet) {
	var sounds SoundSet

	n := len(w.balls)
	removed := make([]bool, n)
	var ballRemovals []int
	var added []Ball

	for i := 0; i < n; i++ {
		// already fused into a ball that is appended after the pass
		if removed[i] {
			continue
		}

		a := &w.balls[i]
		a.integrate()

		if w.table.reflect(a) {
			sounds.Add(SoundBorder)
		}

		if _, ok := w.table.inPocket(a.Position); ok {
			removed[i] = true
			ballRemovals = append(ballRemovals, i)
			sounds.Add(SoundFalling)
			continue
		}

		for j := i + 1; j < n; j++ {
			if removed[j] {
				continue
			}
			b := &w.balls[j]

			res := collide(a, b)
			if !res.hit {
				continue
			}
			sounds.Add(res.sound)

			if res.merged != nil {
				removed[i] = true
				removed[j] = true
				ballRemovals = append(ballRemovals, i, j)
				added = append(added, *res.merged)
				break
			}
		}
	}

	var coinRemovals []int
	profit := CoinPrice * w.levels.profitability()
	for ci := range w.coins {
		for bi := range w.balls {
			if removed[bi] || !w.balls[bi].Type.IsPlayer() {
				continue
			}
			b := &w.balls[bi]
			if b.Radius+CoinRadius > b.Position.Distance(w.coins[ci].Position) {
				coinRemovals = append(coinRemovals, ci)
				w.money += profit
				sounds.Add(SoundCoin)
				break
			}
		}
	}

	w.balls = removeIndices(w.balls, ballRemovals)
	w.coins = removeIndices(w.coins, coinRemovals)
	w.balls = append(w.balls, added...)

	for i := range w.balls {
		if w.balls[i].Speed() > RestEpsilon {
			return true, sounds
		}
	}

	if w.PlayerCount() == 0 {
		w.gameOver = true
	}
	return false, sounds
}

// Simulate ticks until the table settles or maxTicks steps have run. It
// returns the number of ticks executed and every sound produced.
func (w *World) Simulate(maxTicks int) (int, SoundSet) {
	var all SoundSet
	for t := 1; t <= maxTicks; t++ {
		moving, sounds := w.Tick()
		all = all.Merge(sounds)
		if !moving {
			return t, all
		}
	}
	return maxTicks, all
}

// Settled reports whether every ball is at rest.
func (w *World) Settled() bool {
	for i := range w.balls {
		if w.balls[i].Speed() > RestEpsilon {
			return false
		}
	}
	return true
}

// reflect keeps the ball inside the cushions, bouncing it off the border.
func (t *Table) reflect(b *Ball) bool {
	hit := false

	if b.Position.X-b.Radius < t.Min.X {
		b.Position.X = t.Min.X + b.Radius
		b.Velocity.X = -b.Velocity.X
		hit = true
	} else if b.Position.X+b.Radius > t.Max.X {
		b.Position.X = t.Max.X - b.Radius
		b.Velocity.X = -b.Velocity.X
		hit = true
	}

	if b.Position.Y-b.Radius < t.Min.Y {
		b.Position.Y = t.Min.Y + b.Radius
		b.Velocity.Y = -b.Velocity.Y
		hit = true
	} else if b.Position.Y+b.Radius > t.Max.Y {
		b.Position.Y = t.Max.Y - b.Radius
		b.Velocity.Y = -b.Velocity.Y
		hit = true
	}

	return hit
}

// collision is the outcome of testing one pair of balls.
type collision struct {
	hit    bool
	sound  SoundEvent
	merged *Ball // set when two slimes fused
}

// collide resolves an overlapping pair. Slimes fuse; anything else bounces.
func collide(a, b *Ball) collision {
	overlap := a.Radius + b.Radius - a.Position.Distance(b.Position)
	if overlap <= 0 {
		return collision{}
	}

	if a.Type.IsPlayer() && b.Type.IsPlayer() {
		m := merge(a, b)
		return collision{hit: true, sound: SoundSlimeSlime, merged: &m}
	}

	push := a.Position.Minus(b.Position).NormalizeOrZero().Times(overlap * CollisionSmoothness)
	a.Velocity = a.Velocity.Plus(push.Times(b.Mass / a.Mass))
	b.Velocity = b.Velocity.Minus(push.Times(a.Mass / b.Mass))

	sound := SoundSlimeEnemy
	if a.Type.Kind == b.Type.Kind {
		sound = SoundEnemyEnemy
	}
	return collision{hit: true, sound: sound}
}

// merge fuses two slimes: mass adds up, area is preserved, and position and
// velocity are mass-weighted on both axes.
func merge(a, b *Ball) Ball {
	total := a.Mass + b.Mass

	friction := a.Friction
	if b.Mass > a.Mass {
		friction = b.Friction
	}

	return Ball{
		Mass:     total,
		Position: a.Position.Times(a.Mass).Plus(b.Position.Times(b.Mass)).Times(1 / total),
		Velocity: a.Velocity.Times(a.Mass).Plus(b.Velocity.Times(b.Mass)).Times(1 / total),
		Friction: friction,
		Radius:   math.Sqrt(a.Radius*a.Radius + b.Radius*b.Radius),
		Type:     PlayerType(),
	}
}

// removeIndices deletes the given positions from s. Indices are sorted and
// deduplicated, then removed from the highest down so earlier positions stay
// valid while the slice compacts.
func removeIndices[T any](s []T, indices []int) []T {
	if len(indices) == 0 {
		return s
	}
	slices.Sort(indices)
	indices = slices.Compact(indices)
	for k := len(indices) - 1; k >= 0; k-- {
		i := indices[k]
		s = slices.Delete(s, i, i+1)
	}
	return s
}
