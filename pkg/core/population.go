package core

import (
	"fmt"
	"math/rand/v2"
)

// Population is the ordered set of individuals of one generation.
// It is replaced wholesale between generations, never edited in place.
type Population struct {
	// Generation is the zero-based generation this population belongs to.
	Generation int
	// Members are the individuals, in order.
	Members []Individual
}

// NewPopulation draws size independent individuals from b.
func NewPopulation(size int, b Bounds, rng *rand.Rand) (*Population, error) {
	if size < 1 {
		return nil, fmt.Errorf("population size must be >= 1, got %d", size)
	}
	if rng == nil {
		return nil, fmt.Errorf("random source cannot be nil")
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	members := make([]Individual, size)
	for i := range members {
		members[i] = RandomIndividual(b, rng)
	}
	return &Population{Members: members}, nil
}

// Len returns the number of members.
func (p *Population) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Members)
}

// Next builds the population of the following generation from members.
func (p *Population) Next(members []Individual) *Population {
	return &Population{
		Generation: p.Generation + 1,
		Members:    members,
	}
}
