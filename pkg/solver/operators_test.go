package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolcrib/vbwear/pkg/core"
)

func ind(h int, lr, alpha float64) core.Individual {
	return core.Individual{HiddenUnits: h, LearningRate: lr, Alpha: alpha}
}

func TestSelect(t *testing.T) {
	members := []core.Individual{
		ind(10, 1e-3, 1e-4),
		ind(20, 1e-3, 1e-4),
		ind(30, 1e-3, 1e-4),
		ind(40, 1e-3, 1e-4),
		ind(50, 1e-3, 1e-4),
	}
	fitness := []float64{0.5, 0.1, 0.5, 0.05, 0.9}

	survivors, err := Select(members, fitness)
	require.NoError(t, err)
	require.Len(t, survivors, 2)
	assert.Equal(t, 40, survivors[0].HiddenUnits)
	assert.Equal(t, 20, survivors[1].HiddenUnits)

	// ties keep population order
	survivors, err = Select(members[:4], []float64{1, 1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, []core.Individual{members[0], members[1]}, survivors)

	_, err = Select(members, fitness[:2])
	assert.Error(t, err)
}

func TestCrossover(t *testing.T) {
	rng := core.NewRand(1, core.StreamSearch)
	p1, p2 := ind(10, 1e-3, 1e-5), ind(90, 3e-3, 3e-5)
	fromP1, fromP2 := 0, 0
	for i := 0; i < 1000; i++ {
		c := Crossover(p1, p2, rng)
		assert.InDelta(t, 2e-3, c.LearningRate, 1e-15)
		assert.InDelta(t, 2e-5, c.Alpha, 1e-17)
		switch c.HiddenUnits {
		case 10:
			fromP1++
		case 90:
			fromP2++
		default:
			t.Fatalf("hidden units %d from neither parent", c.HiddenUnits)
		}
	}
	assert.InDelta(t, 500, fromP1, 80)
	assert.InDelta(t, 500, fromP2, 80)
}

func TestMutateStaysInBounds(t *testing.T) {
	b := core.DefaultBounds()
	rng := core.NewRand(2, core.StreamSearch)
	cur := core.RandomIndividual(b, rng)
	for i := 0; i < 10000; i++ {
		cur = Mutate(cur, 1, b, rng)
		require.NoError(t, cur.Validate(b), "mutation %d", i)
	}

	edge := ind(b.HiddenUnits.Max, b.LearningRate.Max, b.Alpha.Min)
	for i := 0; i < 10000; i++ {
		m := Mutate(edge, 0.2, b, rng)
		require.NoError(t, m.Validate(b), "mutation %d", i)
	}
}

func TestMutateRate(t *testing.T) {
	b := core.DefaultBounds()
	rng := core.NewRand(3, core.StreamSearch)
	orig := ind(50, 1e-3, 1e-4)

	for i := 0; i < 100; i++ {
		assert.Equal(t, orig, Mutate(orig, 0, b, rng))
	}

	changed := 0
	for i := 0; i < 100; i++ {
		m := Mutate(orig, 1, b, rng)
		if m.LearningRate != orig.LearningRate && m.Alpha != orig.Alpha {
			changed++
		}
	}
	assert.Equal(t, 100, changed)
}

func TestRecombine(t *testing.T) {
	b := core.DefaultBounds()
	rng := core.NewRand(4, core.StreamSearch)
	survivors := []core.Individual{ind(10, 1e-4, 1e-5), ind(20, 1e-2, 1e-3)}

	next, err := Recombine(survivors, 7, 0, b, rng)
	require.NoError(t, err)
	require.Len(t, next, 7)
	assert.Equal(t, survivors, next[:2])
	for _, c := range next[2:] {
		// without mutation every child averages the two distinct parents
		assert.InDelta(t, (1e-4+1e-2)/2, c.LearningRate, 1e-15)
		assert.Contains(t, []int{10, 20}, c.HiddenUnits)
	}

	_, err = Recombine(survivors[:1], 4, 0.2, b, rng)
	assert.Error(t, err)
	_, err = Recombine(survivors, 1, 0.2, b, rng)
	assert.Error(t, err)
}

func TestSampleTwo(t *testing.T) {
	rng := core.NewRand(5, core.StreamSearch)
	counts := make([]int, 3)
	for k := 0; k < 3000; k++ {
		i, j := sampleTwo(3, rng)
		require.NotEqual(t, i, j)
		counts[i]++
		counts[j]++
	}
	for _, c := range counts {
		assert.InDelta(t, 2000, c, 150)
	}
}
