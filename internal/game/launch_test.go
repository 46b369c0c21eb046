package game

import (
	"math"
	"testing"
)

func TestLaunchSplitsBall(t *testing.T) {
	w := newTestWorld(slime(2, 1, 0.5, 0, 0))
	original := w.balls[0]
	aim := NewVec2(0.005, 0)

	w.LaunchRound(map[int]Vec2{0: aim})

	if len(w.balls) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(w.balls))
	}
	f1, f2 := w.balls[0], w.balls[1]

	if f1.Mass+f2.Mass != original.Mass || f1.Mass != f2.Mass {
		t.Errorf("fragment masses %g + %g, want halves of %g", f1.Mass, f2.Mass, original.Mass)
	}
	wantRadius := original.Radius / math.Sqrt2
	if math.Abs(f1.Radius-wantRadius) > 1e-12 || math.Abs(f2.Radius-wantRadius) > 1e-12 {
		t.Errorf("fragment radii %g, %g, want %g", f1.Radius, f2.Radius, wantRadius)
	}
	if f1.Velocity != f2.Velocity.Invert() {
		t.Errorf("fragments should fly apart: %+v vs %+v", f1.Velocity, f2.Velocity)
	}
	wantV := aim.Times(MaxSpeedTable[0])
	if math.Abs(f1.Velocity.X-wantV.X) > 1e-15 || f1.Velocity.Y != 0 {
		t.Errorf("forward velocity %+v, want %+v", f1.Velocity, wantV)
	}
	if math.Abs(f1.Position.X-(1+wantRadius)) > 1e-12 || math.Abs(f2.Position.X-(1-wantRadius)) > 1e-12 {
		t.Errorf("fragment positions %+v, %+v", f1.Position, f2.Position)
	}
	if f1.Friction != SlidingTable[0] {
		t.Errorf("slime fragments take the sliding coefficient, got %g", f1.Friction)
	}
}

func TestLaunchFragmentsDoNotMergeImmediately(t *testing.T) {
	w := New(Levels{}, 1)

	w.LaunchRound(map[int]Vec2{0: NewVec2(0.003, 0.002)})
	_, sounds := w.Tick()

	if len(w.balls) != 2 {
		t.Errorf("fragments merged on the first tick: %d balls", len(w.balls))
	}
	if sounds.Has(SoundSlimeSlime) {
		t.Error("unexpected slime_slime on launch tick")
	}
}

func TestLaunchZeroAim(t *testing.T) {
	w := newTestWorld(slime(1, 1, 0.5, 0, 0))

	w.LaunchRound(map[int]Vec2{0: {}})

	if len(w.balls) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(w.balls))
	}
	for i, f := range w.balls {
		if f.Position != NewVec2(1, 0.5) || !f.Velocity.IsZero() {
			t.Errorf("fragment %d = %+v, want resting at the origin point", i, f)
		}
	}
}

func TestLaunchSpeedIsCapped(t *testing.T) {
	w := newTestWorld(slime(1, 1, 0.5, 0, 0))
	w.levels.MaxSpeed = 3

	w.LaunchRound(map[int]Vec2{0: NewVec2(3, 4)})

	want := LaunchSpeedCap * MaxSpeedTable[3]
	if got := w.balls[0].Speed(); math.Abs(got-want) > 1e-12 {
		t.Errorf("speed = %g, want cap %g", got, want)
	}
}

func TestLaunchHugeAimStaysFinite(t *testing.T) {
	w := newTestWorld(slime(1, 1, 0.5, 0, 0))
	w.levels.MaxSpeed = 1

	w.LaunchRound(map[int]Vec2{0: NewVec2(1.7e308, 0)})

	want := LaunchSpeedCap * MaxSpeedTable[1]
	for i, f := range w.balls {
		if !f.Velocity.IsFinite() || !f.Position.IsFinite() {
			t.Fatalf("fragment %d not finite: %+v", i, f)
		}
		if math.Abs(f.Speed()-want) > 1e-12 {
			t.Errorf("fragment %d speed = %g, want cap %g", i, f.Speed(), want)
		}
	}

	for k := 0; k < 10; k++ {
		w.Tick()
	}
	for i, b := range w.balls {
		if !b.Velocity.IsFinite() || !b.Position.IsFinite() {
			t.Errorf("ball %d not finite after ticks: %+v", i, b)
		}
	}
}

func TestLaunchRemovesInDescendingOrder(t *testing.T) {
	w := newTestWorld(
		slime(1, 0.4, 0.5, 0, 0),
		enemy(1.0, 0.5, 0, 0),
		slime(4, 1.6, 0.5, 0, 0),
	)

	w.LaunchRound(map[int]Vec2{
		2: NewVec2(0, 0.001),
		0: NewVec2(0.001, 0),
	})

	if len(w.balls) != 5 {
		t.Fatalf("expected 5 balls, got %d", len(w.balls))
	}
	if !w.balls[0].Type.IsEnemy() {
		t.Errorf("untouched enemy should move to index 0, got %+v", w.balls[0])
	}
	masses := []float64{w.balls[1].Mass, w.balls[2].Mass, w.balls[3].Mass, w.balls[4].Mass}
	want := []float64{0.5, 0.5, 2, 2}
	for i := range want {
		if masses[i] != want[i] {
			t.Errorf("fragment masses %v, want %v", masses, want)
			break
		}
	}
}

func TestLaunchStaleIndexPanics(t *testing.T) {
	w := newTestWorld(slime(1, 1, 0.5, 0, 0))

	defer func() {
		if recover() == nil {
			t.Error("expected a panic for an index past the end")
		}
	}()
	w.LaunchRound(map[int]Vec2{3: NewVec2(0.001, 0)})
}
