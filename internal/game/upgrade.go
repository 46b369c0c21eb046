package game

import "fmt"

// MaxUpgradeLevel is the highest level of every upgrade table.
const MaxUpgradeLevel = 4

// Scaling tables indexed by upgrade level.
var (
	MaxSpeedTable      = [MaxUpgradeLevel + 1]float64{1.0, 1.3, 1.6, 2.0, 2.5}
	StartingMassTable  = [MaxUpgradeLevel + 1]float64{1.0, 1.5, 2.0, 2.5, 3.0}
	ProfitabilityTable = [MaxUpgradeLevel + 1]int{1, 2, 3, 4, 5}
	SlidingTable       = [MaxUpgradeLevel + 1]float64{0.990, 0.992, 0.994, 0.996, 0.998}
	AimAssistTable     = [MaxUpgradeLevel + 1]float64{1.0, 1.5, 2.0, 3.0, 4.0}
)

// UpgradeKind names one purchasable upgrade.
type UpgradeKind string

const (
	UpgradeMaxSpeed      UpgradeKind = "max_speed"
	UpgradeStartingMass  UpgradeKind = "starting_mass"
	UpgradeProfitability UpgradeKind = "profitability"
	UpgradeSliding       UpgradeKind = "sliding"
	UpgradeAimAssist     UpgradeKind = "aim_assist"
)

// UpgradeKinds lists every upgrade in shop order.
var UpgradeKinds = []UpgradeKind{
	UpgradeMaxSpeed,
	UpgradeStartingMass,
	UpgradeProfitability,
	UpgradeSliding,
	UpgradeAimAssist,
}

// ParseUpgradeKind validates a kind received from a client.
func ParseUpgradeKind(s string) (UpgradeKind, error) {
	for _, k := range UpgradeKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown upgrade %q", s)
}

// Levels holds the current level of every upgrade.
type Levels struct {
	MaxSpeed      int `json:"max_speed" msgpack:"max_speed" db:"max_speed_level"`
	StartingMass  int `json:"starting_mass" msgpack:"starting_mass" db:"starting_mass_level"`
	Profitability int `json:"profitability" msgpack:"profitability" db:"profitability_level"`
	Sliding       int `json:"sliding" msgpack:"sliding" db:"sliding_level"`
	AimAssist     int `json:"aim_assist" msgpack:"aim_assist" db:"aim_assist_level"`
}

// Get returns the level of the given upgrade.
func (l Levels) Get(kind UpgradeKind) int {
	switch kind {
	case UpgradeMaxSpeed:
		return l.MaxSpeed
	case UpgradeStartingMass:
		return l.StartingMass
	case UpgradeProfitability:
		return l.Profitability
	case UpgradeSliding:
		return l.Sliding
	case UpgradeAimAssist:
		return l.AimAssist
	}
	panic(fmt.Sprintf("game: unknown upgrade %q", kind))
}

// With returns a copy of l with the given upgrade set to level.
func (l Levels) With(kind UpgradeKind, level int) Levels {
	switch kind {
	case UpgradeMaxSpeed:
		l.MaxSpeed = level
	case UpgradeStartingMass:
		l.StartingMass = level
	case UpgradeProfitability:
		l.Profitability = level
	case UpgradeSliding:
		l.Sliding = level
	case UpgradeAimAssist:
		l.AimAssist = level
	default:
		panic(fmt.Sprintf("game: unknown upgrade %q", kind))
	}
	return l
}

// Valid reports whether every level indexes into its table.
func (l Levels) Valid() bool {
	for _, k := range UpgradeKinds {
		if v := l.Get(k); v < 0 || v > MaxUpgradeLevel {
			return false
		}
	}
	return true
}

// mustValidate panics on out-of-range levels: they are a caller bug.
func (l Levels) mustValidate() {
	if !l.Valid() {
		panic(fmt.Sprintf("game: upgrade levels out of range: %+v", l))
	}
}

func (l Levels) maxSpeed() float64     { return MaxSpeedTable[l.MaxSpeed] }
func (l Levels) startingMass() float64 { return StartingMassTable[l.StartingMass] }
func (l Levels) profitability() int    { return ProfitabilityTable[l.Profitability] }
func (l Levels) sliding() float64      { return SlidingTable[l.Sliding] }
func (l Levels) aimAssist() float64    { return AimAssistTable[l.AimAssist] }
