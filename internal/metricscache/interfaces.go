/*
Copyright 2025 The vbwear Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package metricscache

import (
	"time"

	"github.com/toolcrib/vbwear/pkg/core"
)

// Reader provides read-only access to the search statistics.
// This interface is used by reporting and the training pipeline.
type Reader interface {
	// Generations returns a copy of all recorded generations, in order.
	Generations() []core.GenerationStats

	// Latest returns the most recent generation.
	// The second result is false before the first generation is recorded.
	Latest() (core.GenerationStats, bool)

	// BestSoFar returns the generation holding the lowest best fitness; the
	// earliest one wins ties.
	BestSoFar() (core.GenerationStats, bool)

	// History returns the best fitness of every recorded generation.
	History() core.History

	// LastUpdateTime returns when the last generation was recorded.
	LastUpdateTime() time.Time
}

// Writer provides write access to the search statistics.
// This interface is used by the optimizer observer.
type Writer interface {
	// Record appends the statistics of one generation. Generations must be
	// recorded in increasing order.
	Record(stats core.GenerationStats) error

	// Reset drops all recorded generations.
	Reset()
}

// ReadWriter combines both read and write access to the cache.
type ReadWriter interface {
	Reader
	Writer
}
