package statediff

import (
	"errors"
	"fmt"
	"math"

	"github.com/star/stardiff/internal/transform"
)

// Precondition violations. Compare returns one of these (possibly wrapped)
// before writing anything to its sink.
var (
	ErrEmptyInput     = errors.New("statediff: no states to compare")
	ErrLengthMismatch = errors.New("statediff: state and epoch series have different lengths")
	ErrUnknownMode    = errors.New("statediff: unknown report mode")
	ErrNonFinite      = errors.New("statediff: non-finite value in input")
	ErrEpochRange     = errors.New("statediff: epoch outside calendar years 0001-9999")
)

func validate(a, b []State, epochs []float64) error {
	if len(a) == 0 {
		return ErrEmptyInput
	}
	if len(a) != len(b) || len(a) != len(epochs) {
		return fmt.Errorf("%w: a=%d b=%d epochs=%d", ErrLengthMismatch, len(a), len(b), len(epochs))
	}
	for i := range a {
		if !a[i].finite() {
			return fmt.Errorf("%w: series a, record %d", ErrNonFinite, i)
		}
		if !b[i].finite() {
			return fmt.Errorf("%w: series b, record %d", ErrNonFinite, i)
		}
		if math.IsNaN(epochs[i]) || math.IsInf(epochs[i], 0) {
			return fmt.Errorf("%w: epoch %d", ErrNonFinite, i)
		}
		if !transform.EpochInRange(epochs[i]) {
			return fmt.Errorf("%w: epoch %d is %g s past J2000", ErrEpochRange, i, epochs[i])
		}
	}
	return nil
}
