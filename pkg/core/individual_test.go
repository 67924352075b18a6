package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomIndividualWithinBounds(t *testing.T) {
	b := DefaultBounds()
	rng := NewRand(7, StreamSearch)
	seenMin, seenMax := false, false
	for i := 0; i < 10000; i++ {
		ind := RandomIndividual(b, rng)
		require.NoError(t, ind.Validate(b), "draw %d", i)
		if ind.HiddenUnits == b.HiddenUnits.Min {
			seenMin = true
		}
		if ind.HiddenUnits == b.HiddenUnits.Max {
			seenMax = true
		}
	}
	assert.True(t, seenMin, "hidden units lower bound never drawn")
	assert.True(t, seenMax, "hidden units upper bound never drawn")
}

func TestLogUniformIsScaleFree(t *testing.T) {
	r := Range{Min: 1e-5, Max: 1e-1}
	rng := NewRand(11, StreamSearch)
	below := 0
	const n = 20000
	for i := 0; i < n; i++ {
		if LogUniform(r, rng) < 1e-3 {
			below++
		}
	}
	// 1e-3 is the geometric midpoint: half of the draws fall below it.
	assert.InDelta(t, 0.5, float64(below)/n, 0.02)
}

func TestRangeClamp(t *testing.T) {
	r := Range{Min: 1e-6, Max: 1e-2}
	assert.Equal(t, 1e-6, r.Clamp(1e-9))
	assert.Equal(t, 1e-2, r.Clamp(3))
	assert.Equal(t, 1e-4, r.Clamp(1e-4))
}

func TestIndividualValidate(t *testing.T) {
	b := DefaultBounds()
	tests := []struct {
		name    string
		ind     Individual
		wantErr bool
	}{
		{name: "inside", ind: Individual{HiddenUnits: 50, LearningRate: 1e-3, Alpha: 1e-4}},
		{name: "edges", ind: Individual{HiddenUnits: 5, LearningRate: 1e-1, Alpha: 1e-6}},
		{name: "too few units", ind: Individual{HiddenUnits: 4, LearningRate: 1e-3, Alpha: 1e-4}, wantErr: true},
		{name: "too many units", ind: Individual{HiddenUnits: 101, LearningRate: 1e-3, Alpha: 1e-4}, wantErr: true},
		{name: "lr too large", ind: Individual{HiddenUnits: 10, LearningRate: 0.2, Alpha: 1e-4}, wantErr: true},
		{name: "alpha NaN", ind: Individual{HiddenUnits: 10, LearningRate: 1e-3, Alpha: math.NaN()}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ind.Validate(b)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIndividualKey(t *testing.T) {
	a := Individual{HiddenUnits: 10, LearningRate: 0.01, Alpha: 1e-4}
	b := a
	c := a
	c.LearningRate = math.Nextafter(c.LearningRate, 1)
	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestNewPopulation(t *testing.T) {
	_, err := NewPopulation(0, DefaultBounds(), NewRand(1, StreamSearch))
	assert.Error(t, err)
	_, err = NewPopulation(3, DefaultBounds(), nil)
	assert.Error(t, err)

	p1, err := NewPopulation(30, DefaultBounds(), NewRand(1, StreamSearch))
	require.NoError(t, err)
	p2, err := NewPopulation(30, DefaultBounds(), NewRand(1, StreamSearch))
	require.NoError(t, err)
	assert.Equal(t, 30, p1.Len())
	assert.Equal(t, p1.Members, p2.Members, "same seed must give the same population")

	next := p1.Next(p1.Members[:15])
	assert.Equal(t, 1, next.Generation)
	assert.Equal(t, 15, next.Len())
}

func TestHistory(t *testing.T) {
	var h History
	_, ok := h.Last()
	assert.False(t, ok)

	for _, v := range []float64{3, 2, 2, 1.5} {
		h.Append(v)
	}
	last, ok := h.Last()
	assert.True(t, ok)
	assert.Equal(t, 1.5, last)
	assert.True(t, h.NonIncreasing(0))
	assert.InDelta(t, 1.5, h.Improvement(), 1e-12)

	h.Append(1.6)
	assert.False(t, h.NonIncreasing(0))
	assert.True(t, h.NonIncreasing(0.2))
}
