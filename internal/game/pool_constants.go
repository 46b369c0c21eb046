package game

// Table and physics constants for the slime table.
// Units are table units (the table is TableWidth x TableHeight) and ticks.

const (
	TableWidth  = 2.0
	TableHeight = 1.0
	BorderSize  = 0.068 // cushion thickness drawn around the playable cloth

	HoleRadius = 0.09

	CollisionSmoothness = 0.03
	RestEpsilon         = 1e-5 // speed under which a ball counts as settled

	PlayerRadius = 0.05 // radius of a unit-mass slime; radius grows with sqrt(mass)

	EnemyRadius   = 0.04
	EnemyMass     = 1.0
	EnemyFriction = 0.993
	EnemyTimer    = 5 // rounds an enemy survives before forcing game over

	CoinRadius = 0.02
	CoinPrice  = 1

	MinCoinsPerRound  = 1
	MaxCoinsPerRound  = 5
	PlacementAttempts = 100

	// LaunchSpeedCap bounds the magnitude of a launch vector before the
	// max-speed multiplier is applied.
	LaunchSpeedCap = 0.02
)

// EnemySpawnTable is the number of enemies spawned for each round index;
// rounds past the end wrap around.
var EnemySpawnTable = [...]int{1, 0, 1, 0, 1, 2, 1, 0, 3, 1, 0, 2, 0, 1, 2, 0, 1, 2, 3, 1}

// enemiesForRound returns how many enemies spawn at the given round.
func enemiesForRound(round int) int {
	if round < 0 {
		round = 0
	}
	return EnemySpawnTable[round%len(EnemySpawnTable)]
}
