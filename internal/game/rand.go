package game

import "math/rand/v2"

// newSource returns the PCG generator a World owns. The same seed always
// yields the same spawn placements.
func newSource(seed uint64) *rand.PCG {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// uniform returns a value in [min, max).
func uniform(rng *rand.Rand, min, max float64) float64 {
	return min + rng.Float64()*(max-min)
}
