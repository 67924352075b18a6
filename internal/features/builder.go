package features

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/toolcrib/vbwear/internal/collector"
	"github.com/toolcrib/vbwear/internal/logging"
	"github.com/toolcrib/vbwear/internal/utils/category"
	"github.com/toolcrib/vbwear/pkg/config"
	"github.com/toolcrib/vbwear/pkg/core"
)

// Split is a prepared, seeded train/test partition.
type Split struct {
	XTrain, XTest *mat.Dense
	YTrain, YTest []float64
	Schema        core.FeatureSchema

	// TrainRows and TestRows index the cleaned rows (after target drop).
	TrainRows, TestRows []int
	// SourceRows maps a cleaned row to its 0-based row in the source table.
	SourceRows []int
	// Dropped counts rows excluded for a missing target.
	Dropped int
	// Categories summarises the categorical column of the cleaned rows.
	Categories category.DiscoveryResult
}

// Len returns the number of cleaned rows.
func (s *Split) Len() int {
	return len(s.SourceRows)
}

// Prepare drops rows with a missing target, encodes the rest and splits them
// with a permutation drawn from rng.
func Prepare(ctx context.Context, table *collector.Table, spec config.FeatureSpec, rng *rand.Rand) (*Split, error) {
	logger := logging.FromContext(ctx)

	schema, err := SchemaFor(spec)
	if err != nil {
		return nil, err
	}
	cols, err := resolveColumns(table, schema)
	if err != nil {
		return nil, err
	}
	targetIdx, ok := table.ColumnIndex(schema.Target)
	if !ok {
		return nil, &DataError{Column: schema.Target, Reason: "target column not found"}
	}

	var (
		kept []int
		y    []float64
	)
	for i, row := range table.Rows {
		cell := row[targetIdx]
		if category.IsMissing(cell) {
			continue
		}
		v, err := parseNumber(cell)
		if err != nil {
			return nil, &DataError{Column: schema.Target, Row: i + 1, Reason: err.Error()}
		}
		kept = append(kept, i)
		y = append(y, v)
	}
	n := len(kept)
	if n == 0 {
		return nil, &DataError{Column: schema.Target, Reason: "no rows left after dropping missing targets"}
	}

	X, err := encode(table, schema, cols, kept)
	if err != nil {
		return nil, err
	}

	nTest := int(math.Ceil(spec.TestFraction * float64(n)))
	nTrain := n - nTest
	if nTrain < 1 || nTest < 1 {
		return nil, &DataError{Reason: fmt.Sprintf("%d rows cannot be split into train and test with fraction %g", n, spec.TestFraction)}
	}
	perm := rng.Perm(n)

	catValues := make([]string, n)
	for k, r := range kept {
		catValues[k] = table.Rows[r][cols.category]
	}

	split := &Split{
		Schema:     schema,
		TestRows:   perm[:nTest],
		TrainRows:  perm[nTest:],
		SourceRows: kept,
		Dropped:    table.Len() - n,
		Categories: category.Discover(ctx, catValues, encodingOf(schema)),
	}
	split.XTest, split.YTest = take(X, y, split.TestRows)
	split.XTrain, split.YTrain = take(X, y, split.TrainRows)

	logger.V(logging.DEBUG).Info("Prepared features",
		"source", table.Name,
		"rows", n,
		"dropped", split.Dropped,
		"train", nTrain,
		"test", nTest,
		"columns", schema.Width())
	return split, nil
}

// Build encodes every row of table with schema. It is the prediction-time
// counterpart of Prepare and does not need the target column.
func Build(table *collector.Table, schema core.FeatureSchema) (*mat.Dense, error) {
	if err := schema.Validate(); err != nil {
		return nil, &DataError{Reason: "invalid feature schema: " + err.Error()}
	}
	if table.Len() == 0 {
		return nil, &DataError{Reason: "dataset has no rows"}
	}
	cols, err := resolveColumns(table, schema)
	if err != nil {
		return nil, err
	}
	rows := make([]int, table.Len())
	for i := range rows {
		rows[i] = i
	}
	return encode(table, schema, cols, rows)
}

type columnIndex struct {
	numeric  []int
	category int
}

func resolveColumns(table *collector.Table, schema core.FeatureSchema) (columnIndex, error) {
	idx := columnIndex{numeric: make([]int, len(schema.NumericFields))}
	for i, name := range schema.NumericFields {
		c, ok := table.ColumnIndex(name)
		if !ok {
			return idx, &DataError{Column: name, Reason: "column not found"}
		}
		idx.numeric[i] = c
	}
	c, ok := table.ColumnIndex(schema.CategoricalField)
	if !ok {
		return idx, &DataError{Column: schema.CategoricalField, Reason: "column not found"}
	}
	idx.category = c
	return idx, nil
}

// encode writes the feature rows of the given table rows, numeric fields first,
// then the category indicators.
func encode(table *collector.Table, schema core.FeatureSchema, cols columnIndex, rows []int) (*mat.Dense, error) {
	enc := encodingOf(schema)
	width := schema.Width()
	X := mat.NewDense(len(rows), width, nil)
	for k, r := range rows {
		row := table.Rows[r]
		for j, c := range cols.numeric {
			cell := row[c]
			if category.IsMissing(cell) {
				return nil, &DataError{Column: schema.NumericFields[j], Row: r + 1, Reason: "missing value"}
			}
			v, err := parseNumber(cell)
			if err != nil {
				return nil, &DataError{Column: schema.NumericFields[j], Row: r + 1, Reason: err.Error()}
			}
			X.Set(k, j, v)
		}
		if idx := category.Match(row[cols.category], enc); idx != category.Unknown {
			X.Set(k, len(cols.numeric)+idx, 1)
		}
	}
	return X, nil
}

func parseNumber(cell string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as a number", cell)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", cell)
	}
	return v, nil
}

func take(X *mat.Dense, y []float64, rows []int) (*mat.Dense, []float64) {
	_, c := X.Dims()
	outX := mat.NewDense(len(rows), c, nil)
	outY := make([]float64, len(rows))
	for i, r := range rows {
		outX.SetRow(i, X.RawRowView(r))
		outY[i] = y[r]
	}
	return outX, outY
}
