package core

import "math"

// History is the append-only record of the best fitness of every generation.
// It is diagnostic only and never feeds back into the search.
type History []float64

// Append records the best fitness of the next generation.
func (h *History) Append(best float64) {
	*h = append(*h, best)
}

// Last returns the most recent entry.
func (h History) Last() (float64, bool) {
	if len(h) == 0 {
		return 0, false
	}
	return h[len(h)-1], true
}

// NonIncreasing reports whether h[i+1] <= h[i]+tol for every i.
func (h History) NonIncreasing(tol float64) bool {
	for i := 1; i < len(h); i++ {
		if h[i] > h[i-1]+tol {
			return false
		}
	}
	return true
}

// Improvement returns h[0]-h[last], or 0 for fewer than two entries.
func (h History) Improvement() float64 {
	if len(h) < 2 {
		return 0
	}
	d := h[0] - h[len(h)-1]
	if math.IsNaN(d) {
		return 0
	}
	return d
}
