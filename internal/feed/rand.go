package feed

import "math/rand/v2"

// Rand is a source of uniform values in [0, 1).
type Rand interface {
	Float64() float64
}

// NewRand returns a seeded source, or the runtime's global source when seed
// is zero.
func NewRand(seed uint64) Rand {
	if seed == 0 {
		return globalRand{}
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
