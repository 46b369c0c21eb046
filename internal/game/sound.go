package game

import "strings"

// SoundEvent tags something audible that happened during a tick. The
// simulation never plays sounds itself; the caller maps tags to playback.
type SoundEvent uint8

const (
	SoundSlimeSlime SoundEvent = iota
	SoundCoin
	SoundSlimeEnemy
	SoundEnemyEnemy
	SoundBorder
	SoundFalling

	numSoundEvents
)

var soundNames = [numSoundEvents]string{
	SoundSlimeSlime: "slime_slime",
	SoundCoin:       "coin",
	SoundSlimeEnemy: "slime_enemy",
	SoundEnemyEnemy: "enemy_enemy",
	SoundBorder:     "border",
	SoundFalling:    "falling",
}

func (e SoundEvent) String() string {
	if e >= numSoundEvents {
		return "unknown"
	}
	return soundNames[e]
}

// SoundSet is a set of sound events.
type SoundSet uint8

func (s *SoundSet) Add(e SoundEvent) {
	*s |= 1 << e
}

func (s SoundSet) Has(e SoundEvent) bool {
	return s&(1<<e) != 0
}

// Merge returns the union of s and o.
func (s SoundSet) Merge(o SoundSet) SoundSet {
	return s | o
}

func (s SoundSet) IsEmpty() bool {
	return s == 0
}

// Events lists the members in declaration order.
func (s SoundSet) Events() []SoundEvent {
	events := make([]SoundEvent, 0, numSoundEvents)
	for e := SoundEvent(0); e < numSoundEvents; e++ {
		if s.Has(e) {
			events = append(events, e)
		}
	}
	return events
}

// Strings lists the member tag names in declaration order.
func (s SoundSet) Strings() []string {
	events := s.Events()
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.String()
	}
	return names
}

func (s SoundSet) String() string {
	return "{" + strings.Join(s.Strings(), ",") + "}"
}
