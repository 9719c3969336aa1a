package grid

import (
	"errors"
	"fmt"
)

// ErrNoGrid is returned by consumers asked for grid data before any document
// has loaded successfully.
var ErrNoGrid = errors.New("no grid loaded")

// ErrorKind classifies document-format failures. Kinds are stable strings so
// API responses and load-history rows can carry them verbatim.
type ErrorKind string

const (
	ErrMissingTerminator  ErrorKind = "missing_terminator"
	ErrMissingGridInfo    ErrorKind = "missing_grid_info"
	ErrInsufficientFields ErrorKind = "insufficient_fields"
	ErrInvalidGridInfo    ErrorKind = "invalid_grid_info"
	ErrCountMismatch      ErrorKind = "count_mismatch"
	ErrNoValidSamples     ErrorKind = "no_valid_samples"
	ErrZeroHeightRange    ErrorKind = "zero_height_range"
)

// FormatError reports why a document could not be loaded. The whole load
// attempt fails with a single FormatError; the previously loaded grid (if
// any) stays active.
type FormatError struct {
	Kind   ErrorKind
	Detail string

	// Expected and Actual carry the sample counts for ErrCountMismatch and
	// are zero for every other kind.
	Expected int
	Actual   int
}

func (e *FormatError) Error() string {
	switch e.Kind {
	case ErrMissingTerminator:
		return "grid: no header terminator '@' line found"
	case ErrMissingGridInfo:
		if e.Detail != "" {
			return "grid: " + e.Detail
		}
		return "grid: no grid marker line found in header"
	case ErrInsufficientFields:
		return fmt.Sprintf("grid: dimension line has too few fields: %s", e.Detail)
	case ErrInvalidGridInfo:
		return fmt.Sprintf("grid: invalid dimensions or extents: %s", e.Detail)
	case ErrCountMismatch:
		return fmt.Sprintf("grid: expected %d samples, found %d", e.Expected, e.Actual)
	case ErrNoValidSamples:
		return "grid: no valid samples (every cell is null or non-finite)"
	case ErrZeroHeightRange:
		return "grid: all valid samples are equal; height range is zero"
	default:
		return fmt.Sprintf("grid: format error %q: %s", string(e.Kind), e.Detail)
	}
}

// AsFormatError unwraps err to a *FormatError when one is in the chain.
func AsFormatError(err error) (*FormatError, bool) {
	var fe *FormatError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
