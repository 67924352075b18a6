package core

import "math/rand/v2"

// Streams separate the random sequences drawn from one run seed, so that e.g.
// changing the search does not change the train/test split.
const (
	StreamSplit  uint64 = 0x73706c6974 // "split"
	StreamSearch uint64 = 0x736561726368
	StreamModel  uint64 = 0x6d6f64656c
)

// NewRand returns a PCG-backed source for seed on the given stream.
func NewRand(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}
