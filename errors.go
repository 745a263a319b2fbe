package redset

import (
	"errors"
	"fmt"
)

var (
	// ErrNoOperands is returned when a composite is built from nothing.
	ErrNoOperands = errors.New("redset: at least one operand is required")

	// ErrSortedDifference is returned when a difference is attempted over
	// sorted operands. Redis has no sorted-set counterpart to SDIFFSTORE
	// that this tree could name, so the construction is rejected outright.
	ErrSortedDifference = errors.New("redset: difference is not supported for sorted sets")

	// ErrOutOfRange is returned by indexed reads past the end of a sorted
	// result. It is distinct from an empty range.
	ErrOutOfRange = errors.New("redset: index out of range")

	// ErrWeightCount is returned when OpArgs.Weights does not line up with
	// the operand list.
	ErrWeightCount = errors.New("redset: weights must match operand count")

	// ErrWeightsRequireSorted rejects weighted plain-set composites.
	ErrWeightsRequireSorted = errors.New("redset: weights require sorted operands")

	// ErrDuplicateWeighted rejects a weighted composite naming the same
	// operand twice: the weight-to-operand mapping is keyed by the operand's
	// store-facing key, so a duplicate has no unambiguous weight.
	ErrDuplicateWeighted = errors.New("redset: weighted operands must be distinct")

	// ErrAggregateRequiresSorted rejects an aggregate on plain-set composites.
	ErrAggregateRequiresSorted = errors.New("redset: aggregate requires sorted operands")
)

// MixedOperandsError reports a composite call that mixed plain and sorted
// operands. Operand kinds are never coerced; the call fails as a whole.
type MixedOperandsError struct {
	Index int    // position of the offending operand in the call
	Key   string // the offending operand's key
}

func (e *MixedOperandsError) Error() string {
	return fmt.Sprintf("redset: sets and sorted sets cannot be mixed (operand %d: %q)", e.Index, e.Key)
}
