package evaluator

import "fmt"

// Fold is one train/held-out partition of row indices.
type Fold struct {
	Train []int
	Test  []int
}

// KFold partitions 0..n-1 into k contiguous held-out folds without shuffling.
// The first n%k folds hold one extra row.
func KFold(n, k int) ([]Fold, error) {
	if k < 2 {
		return nil, fmt.Errorf("number of folds must be >= 2, got %d", k)
	}
	if k > n {
		return nil, fmt.Errorf("cannot split %d rows into %d folds", n, k)
	}
	folds := make([]Fold, k)
	start := 0
	for i := range folds {
		size := n / k
		if i < n%k {
			size++
		}
		end := start + size
		test := make([]int, 0, size)
		train := make([]int, 0, n-size)
		for r := 0; r < n; r++ {
			if r >= start && r < end {
				test = append(test, r)
			} else {
				train = append(train, r)
			}
		}
		folds[i] = Fold{Train: train, Test: test}
		start = end
	}
	return folds, nil
}
