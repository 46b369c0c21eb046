package game

import "math"

// BallKind tells slimes (player controlled) apart from enemy balls.
type BallKind string

const (
	KindPlayer BallKind = "player"
	KindEnemy  BallKind = "enemy"
)

// EnemyData is the mutable payload carried by enemy balls.
type EnemyData struct {
	Timer int `json:"timer" msgpack:"timer"` // rounds left before the enemy ends the game
}

// BallType is a tagged variant: Enemy is only meaningful when Kind is
// KindEnemy. The World updates Enemy.Timer in place every round.
type BallType struct {
	Kind  BallKind  `json:"kind" msgpack:"kind"`
	Enemy EnemyData `json:"enemy" msgpack:"enemy"`
}

func PlayerType() BallType {
	return BallType{Kind: KindPlayer}
}

func EnemyType(timer int) BallType {
	return BallType{Kind: KindEnemy, Enemy: EnemyData{Timer: timer}}
}

func (t BallType) IsPlayer() bool { return t.Kind == KindPlayer }
func (t BallType) IsEnemy() bool  { return t.Kind == KindEnemy }

// Ball is a physical disc on the table.
type Ball struct {
	Mass     float64  `json:"mass" msgpack:"mass"`
	Position Vec2     `json:"position" msgpack:"position"`
	Velocity Vec2     `json:"velocity" msgpack:"velocity"`
	Friction float64  `json:"friction" msgpack:"friction"` // velocity multiplier per tick, in (0,1)
	Radius   float64  `json:"radius" msgpack:"radius"`
	Type     BallType `json:"type" msgpack:"type"`
}

// NewBall creates a ball. Mass and radius must be positive and friction must
// lie in (0,1).
func NewBall(mass float64, position, velocity Vec2, friction, radius float64, kind BallType) Ball {
	return Ball{
		Mass:     mass,
		Position: position,
		Velocity: velocity,
		Friction: friction,
		Radius:   radius,
		Type:     kind,
	}
}

// newSlime creates a resting player ball whose area is proportional to mass.
func newSlime(mass float64, position Vec2, friction float64) Ball {
	return NewBall(mass, position, Vec2{}, friction, PlayerRadius*math.Sqrt(mass), PlayerType())
}

func newEnemy(position Vec2) Ball {
	return NewBall(EnemyMass, position, Vec2{}, EnemyFriction, EnemyRadius, EnemyType(EnemyTimer))
}

// Speed returns the magnitude of the ball's velocity.
func (b *Ball) Speed() float64 {
	return b.Velocity.Magnitude()
}

func (b *Ball) integrate() {
	b.Position = b.Position.Plus(b.Velocity)
	b.Velocity = b.Velocity.Times(b.Friction)
}

// Coin is a pickup collected by any slime that overlaps it.
type Coin struct {
	Position Vec2 `json:"position" msgpack:"position"`
}
