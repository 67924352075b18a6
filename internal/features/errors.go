package features

import (
	"errors"
	"fmt"
)

// ErrDataError matches every *DataError with errors.Is.
var ErrDataError = errors.New("data error")

// DataError reports a dataset that cannot be turned into features.
type DataError struct {
	// Column is empty for errors that concern the dataset as a whole.
	Column string
	// Row is the 1-based data row of the source table, or 0.
	Row    int
	Reason string
}

func (e *DataError) Error() string {
	switch {
	case e.Column != "" && e.Row > 0:
		return fmt.Sprintf("data error in column %q, row %d: %s", e.Column, e.Row, e.Reason)
	case e.Column != "":
		return fmt.Sprintf("data error in column %q: %s", e.Column, e.Reason)
	default:
		return "data error: " + e.Reason
	}
}

// Is makes errors.Is(err, ErrDataError) true.
func (e *DataError) Is(target error) bool {
	return target == ErrDataError
}
