package solver

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/toolcrib/vbwear/pkg/core"
)

// Select returns the best len(members)/2 individuals, ascending by fitness.
// Ties keep their population order.
func Select(members []core.Individual, fitness []float64) ([]core.Individual, error) {
	if len(members) != len(fitness) {
		return nil, fmt.Errorf("%d members but %d fitness values", len(members), len(fitness))
	}
	order := make([]int, len(members))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return fitness[order[a]] < fitness[order[b]]
	})
	survivors := make([]core.Individual, len(members)/2)
	for i := range survivors {
		survivors[i] = members[order[i]]
	}
	return survivors, nil
}

// Crossover combines two parents into one child.
func Crossover(p1, p2 core.Individual, rng *rand.Rand) core.Individual {
	hidden := p1.HiddenUnits
	if rng.Float64() < 0.5 {
		hidden = p2.HiddenUnits
	}
	return core.Individual{
		HiddenUnits:  hidden,
		LearningRate: (p1.LearningRate + p2.LearningRate) / 2,
		Alpha:        (p1.Alpha + p2.Alpha) / 2,
	}
}

// Mutate perturbs each trait of ind with probability rate and clamps the
// result to b.
func Mutate(ind core.Individual, rate float64, b core.Bounds, rng *rand.Rand) core.Individual {
	if rng.Float64() < rate {
		ind.HiddenUnits = b.HiddenUnits.Min + rng.IntN(b.HiddenUnits.Max-b.HiddenUnits.Min+1)
	}
	if rng.Float64() < rate {
		ind.LearningRate *= logScale(rng)
	}
	if rng.Float64() < rate {
		ind.Alpha *= logScale(rng)
	}
	ind.LearningRate = b.LearningRate.Clamp(ind.LearningRate)
	ind.Alpha = b.Alpha.Clamp(ind.Alpha)
	return ind
}

// logScale is 10^u with u uniform over [-0.5, 0.5).
func logScale(rng *rand.Rand) float64 {
	return math.Pow(10, rng.Float64()-0.5)
}

// Recombine fills a population of size from survivors: the survivors first,
// then mutated children of two distinct survivors drawn uniformly.
func Recombine(survivors []core.Individual, size int, rate float64, b core.Bounds, rng *rand.Rand) ([]core.Individual, error) {
	if len(survivors) < 2 {
		return nil, fmt.Errorf("need at least 2 survivors to recombine, got %d", len(survivors))
	}
	if size < len(survivors) {
		return nil, fmt.Errorf("population size %d is smaller than %d survivors", size, len(survivors))
	}
	next := make([]core.Individual, 0, size)
	next = append(next, survivors...)
	for len(next) < size {
		i, j := sampleTwo(len(survivors), rng)
		child := Crossover(survivors[i], survivors[j], rng)
		next = append(next, Mutate(child, rate, b, rng))
	}
	return next, nil
}

// sampleTwo draws two distinct indices below n.
func sampleTwo(n int, rng *rand.Rand) (int, int) {
	i := rng.IntN(n)
	j := rng.IntN(n - 1)
	if j >= i {
		j++
	}
	return i, j
}
