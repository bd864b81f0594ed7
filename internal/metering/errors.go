package metering

import "errors"

var (
	// ErrInvalidWindow means the aggregation time range is malformed
	// (zero bounds or start not before end).
	ErrInvalidWindow = errors.New("invalid aggregation window")

	// ErrInvalidFilter means a filter key is not an allowed usage
	// event column.
	ErrInvalidFilter = errors.New("invalid aggregation filter")
)
