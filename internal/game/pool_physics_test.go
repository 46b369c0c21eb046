package game

import (
	"math"
	"testing"
)

// newTestWorld returns a world holding exactly the given balls.
func newTestWorld(balls ...Ball) *World {
	w := New(Levels{}, 1)
	w.balls = append([]Ball(nil), balls...)
	return w
}

func slime(mass float64, x, y, vx, vy float64) Ball {
	return NewBall(mass, NewVec2(x, y), NewVec2(vx, vy), 0.99, PlayerRadius*math.Sqrt(mass), PlayerType())
}

func enemy(x, y, vx, vy float64) Ball {
	return NewBall(EnemyMass, NewVec2(x, y), NewVec2(vx, vy), EnemyFriction, EnemyRadius, EnemyType(EnemyTimer))
}

func TestRestingSlimeProducesNothing(t *testing.T) {
	w := New(Levels{}, 7)

	moving, sounds := w.Tick()

	if moving {
		t.Error("a single resting slime should not report motion")
	}
	if !sounds.IsEmpty() {
		t.Errorf("expected no sounds, got %s", sounds)
	}
	if w.IsGameOver() {
		t.Error("game should not be over with a slime on the table")
	}
}

func TestFrictionNeverSpeedsBallsUp(t *testing.T) {
	w := newTestWorld(slime(1, 1, 0.5, 0.001, 0.0005))

	prev := w.balls[0].Speed()
	for i := 0; i < 200; i++ {
		w.Tick()
		speed := w.balls[0].Speed()
		if speed > prev {
			t.Fatalf("tick %d: speed grew from %g to %g", i, prev, speed)
		}
		prev = speed
	}
}

func TestFrictionStopsBalls(t *testing.T) {
	w := newTestWorld(slime(1, 1, 0.5, 0.004, 0))

	ticks, _ := w.Simulate(100000)

	if !w.Settled() {
		t.Fatalf("ball still moving after %d ticks", ticks)
	}
	if w.IsGameOver() {
		t.Error("game over latched while a slime survived")
	}
}

func TestSlimesMergeOnContact(t *testing.T) {
	w := newTestWorld(
		slime(1, 0.90, 0.5, 0.001, 0),
		slime(2, 0.99, 0.5, -0.001, 0),
	)

	_, sounds := w.Tick()

	if len(w.balls) != 1 {
		t.Fatalf("expected 1 ball after merge, got %d", len(w.balls))
	}
	if !sounds.Has(SoundSlimeSlime) {
		t.Errorf("expected slime_slime sound, got %s", sounds)
	}
	if w.balls[0].Mass != 3 {
		t.Errorf("merged mass = %g, want 3", w.balls[0].Mass)
	}
	if !w.balls[0].Type.IsPlayer() {
		t.Error("merged ball should be a slime")
	}
}

func TestMergePreservesAreaAndWeightsBothAxes(t *testing.T) {
	a := slime(1, 0, 0, 0.003, 0.003)
	b := slime(2, 0.3, 0.6, 0, 0)

	m := merge(&a, &b)

	wantRadius := math.Sqrt(a.Radius*a.Radius + b.Radius*b.Radius)
	if math.Abs(m.Radius-wantRadius) > 1e-12 {
		t.Errorf("radius = %g, want %g", m.Radius, wantRadius)
	}
	if math.Abs(m.Position.X-0.2) > 1e-12 || math.Abs(m.Position.Y-0.4) > 1e-12 {
		t.Errorf("position = %+v, want (0.2, 0.4)", m.Position)
	}
	// Both axes divide by the total mass; older builds halved the y component.
	if math.Abs(m.Velocity.X-0.001) > 1e-12 || math.Abs(m.Velocity.Y-0.001) > 1e-12 {
		t.Errorf("velocity = %+v, want (0.001, 0.001)", m.Velocity)
	}
}

func TestSlimeMergesOncePerTick(t *testing.T) {
	w := newTestWorld(
		slime(1, 1.00, 0.5, 0, 0),
		slime(1, 1.01, 0.5, 0, 0),
		slime(1, 1.02, 0.5, 0, 0),
	)

	w.Tick()

	if len(w.balls) != 2 {
		t.Fatalf("expected 2 balls, got %d", len(w.balls))
	}
	total := 0.0
	for _, b := range w.balls {
		total += b.Mass
	}
	if total != 3 {
		t.Errorf("total mass = %g, want 3", total)
	}
	// The untouched third slime keeps its slot ahead of the appended merge.
	if w.balls[0].Mass != 1 || w.balls[1].Mass != 2 {
		t.Errorf("unexpected order: masses %g, %g", w.balls[0].Mass, w.balls[1].Mass)
	}
}

func TestSlimeBouncesOffEnemy(t *testing.T) {
	w := newTestWorld(
		slime(1, 0.90, 0.5, 0, 0),
		enemy(0.98, 0.5, 0, 0),
	)

	_, sounds := w.Tick()

	if len(w.balls) != 2 {
		t.Fatalf("bounce should keep both balls, got %d", len(w.balls))
	}
	if !sounds.Has(SoundSlimeEnemy) {
		t.Errorf("expected slime_enemy sound, got %s", sounds)
	}
	if w.balls[0].Velocity.X >= 0 {
		t.Errorf("slime should be pushed left, vx=%g", w.balls[0].Velocity.X)
	}
	if w.balls[1].Velocity.X <= 0 {
		t.Errorf("enemy should be pushed right, vx=%g", w.balls[1].Velocity.X)
	}
	// The slime was integrated before the pair was tested; the enemy moves
	// (and loses friction) after it was pushed.
	push := (PlayerRadius + EnemyRadius - 0.08) * CollisionSmoothness
	if math.Abs(w.balls[0].Velocity.X+push) > 1e-12 {
		t.Errorf("slime vx = %g, want %g", w.balls[0].Velocity.X, -push)
	}
	if math.Abs(w.balls[1].Velocity.X-push*EnemyFriction) > 1e-12 {
		t.Errorf("enemy vx = %g, want %g", w.balls[1].Velocity.X, push*EnemyFriction)
	}
}

func TestEnemiesBounceOffEachOther(t *testing.T) {
	w := newTestWorld(
		enemy(0.90, 0.5, 0, 0),
		enemy(0.95, 0.5, 0, 0),
	)

	_, sounds := w.Tick()

	if !sounds.Has(SoundEnemyEnemy) {
		t.Errorf("expected enemy_enemy sound, got %s", sounds)
	}
	if sounds.Has(SoundSlimeEnemy) {
		t.Error("enemy pair should not produce slime_enemy")
	}
}

func TestBorderReflectsVelocity(t *testing.T) {
	w := newTestWorld(slime(1, 1.9, 0.5, 0.01, 0))

	_, sounds := w.Tick()

	b := w.balls[0]
	if !sounds.Has(SoundBorder) {
		t.Errorf("expected border sound, got %s", sounds)
	}
	if b.Velocity.X >= 0 {
		t.Errorf("velocity should point back into the table, vx=%g", b.Velocity.X)
	}
	wantX := TableWidth - BorderSize - b.Radius
	if math.Abs(b.Position.X-wantX) > 1e-12 {
		t.Errorf("x = %g, want clamped %g", b.Position.X, wantX)
	}
}

func TestPocketCapture(t *testing.T) {
	table := NewSlimeTable()
	pocket := table.Pockets[1] // top middle
	w := newTestWorld(slime(1, pocket.Position.X, pocket.Position.Y+0.052, 0, 0))

	moving, sounds := w.Tick()

	if len(w.balls) != 0 {
		t.Fatalf("pocketed ball should leave the table, %d left", len(w.balls))
	}
	if !sounds.Has(SoundFalling) {
		t.Errorf("expected falling sound, got %s", sounds)
	}
	if moving {
		t.Error("an empty table cannot be moving")
	}
	if w.Money() != 0 {
		t.Errorf("pocketing pays nothing, money=%d", w.Money())
	}
	if !w.IsGameOver() {
		t.Error("losing the last slime should end the game")
	}
}

func TestCoinPickupPaysProfitability(t *testing.T) {
	w := newTestWorld(slime(1, 1, 0.5, 0, 0))
	w.levels.Profitability = 2
	w.AddCoin(NewVec2(1.03, 0.5))
	w.AddCoin(NewVec2(0.4, 0.4))

	_, sounds := w.Tick()

	if !sounds.Has(SoundCoin) {
		t.Errorf("expected coin sound, got %s", sounds)
	}
	if got, want := w.Money(), CoinPrice*ProfitabilityTable[2]; got != want {
		t.Errorf("money = %d, want %d", got, want)
	}
	if len(w.coins) != 1 || w.coins[0].Position != NewVec2(0.4, 0.4) {
		t.Errorf("only the touched coin should go, coins=%+v", w.coins)
	}
}

func TestEnemiesDoNotCollectCoins(t *testing.T) {
	w := newTestWorld(slime(1, 0.3, 0.3, 0, 0), enemy(1, 0.5, 0, 0))
	w.AddCoin(NewVec2(1.02, 0.5))

	w.Tick()

	if len(w.coins) != 1 || w.Money() != 0 {
		t.Errorf("enemy picked up a coin: coins=%d money=%d", len(w.coins), w.Money())
	}
}

func TestRemovalThenAddition(t *testing.T) {
	pocket := NewSlimeTable().Pockets[4]
	w := newTestWorld(
		slime(1, pocket.Position.X, pocket.Position.Y-0.055, 0, 0),
		slime(1, 0.50, 0.5, 0, 0),
		slime(1, 0.55, 0.5, 0, 0),
		enemy(1.5, 0.5, 0, 0),
	)
	enemyPos := w.balls[3].Position

	w.Tick()

	// 4 balls, 3 removed (one pocketed, two merged), 1 added.
	if len(w.balls) != 2 {
		t.Fatalf("expected 2 balls, got %d", len(w.balls))
	}
	if !w.balls[0].Type.IsEnemy() || w.balls[0].Position != enemyPos {
		t.Errorf("enemy should be compacted to index 0, got %+v", w.balls[0])
	}
	if !w.balls[1].Type.IsPlayer() || w.balls[1].Mass != 2 {
		t.Errorf("merged slime should be appended last, got %+v", w.balls[1])
	}
}

func TestGameOverIsMonotonic(t *testing.T) {
	w := newTestWorld(enemy(1, 0.5, 0, 0))

	w.Tick()
	if !w.IsGameOver() {
		t.Fatal("no slime left should latch game over")
	}

	w.AddBall(slime(1, 0.4, 0.5, 0, 0))
	w.Tick()
	w.SpawnRound()
	w.Tick()

	if !w.IsGameOver() {
		t.Error("game over must never reset")
	}
}

func TestDeterminism(t *testing.T) {
	run := func() []Ball {
		w := New(Levels{}, 99)
		w.SpawnRound()
		w.LaunchRound(map[int]Vec2{0: NewVec2(0.01, 0.004)})
		w.Simulate(100000)
		return w.Balls()
	}

	first, second := run(), run()
	if len(first) != len(second) {
		t.Fatalf("ball counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("ball %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestRemoveIndicesDescending(t *testing.T) {
	s := []int{10, 11, 12, 13, 14}

	got := removeIndices(s, []int{3, 1, 3, 0})

	want := []int{12, 14}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
