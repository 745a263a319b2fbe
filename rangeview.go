package redset

import (
	"context"
	"math"

	"github.com/unkn0wn-root/redset/store"
)

// End marks an open slice end ("to the last element") in RangeView.Slice.
const End int64 = math.MaxInt64

// RangeView is a read-only, restartable view over a sorted node's ordered
// members. WithScores and Descending return modified copies, so views can be
// built up and reused; no store round-trip happens until a terminal read
// (Range, Get, Slice, Members, Len), and each terminal read is exactly one
// round-trip.
type RangeView struct {
	n          *sortedNode
	withScores bool
	desc       bool
}

// WithScores makes terminal reads attach scores to the returned members.
func (v RangeView) WithScores() RangeView {
	v.withScores = true
	return v
}

// Descending makes terminal reads run from the highest score down.
func (v RangeView) Descending() RangeView {
	v.desc = true
	return v
}

// Range reads the inclusive position range [start, stop]. Negative positions
// count from the tail (-1 is the last element); bounds past the end clamp.
func (v RangeView) Range(ctx context.Context, start, stop int64) ([]store.Member, error) {
	if err := v.n.materialize(ctx); err != nil {
		return nil, err
	}
	return v.n.c.store.Range(ctx, v.n.storeKey(), start, stop, v.withScores, v.desc)
}

// Get returns the single member at index, or ErrOutOfRange when index is
// past the available elements. Absence is never conflated with a zero
// member.
func (v RangeView) Get(ctx context.Context, index int64) (store.Member, error) {
	res, err := v.Range(ctx, index, index)
	if err != nil {
		return store.Member{}, err
	}
	if len(res) == 0 {
		return store.Member{}, ErrOutOfRange
	}
	return res[0], nil
}

// Slice reads the half-open position range [start, stop). Pass End for stop
// to read through the last element; stop == start, and stop == 0 generally,
// yield an empty result without touching the store.
func (v RangeView) Slice(ctx context.Context, start, stop int64) ([]store.Member, error) {
	// stop == 0 must short-circuit before translation: 0 - 1 would read as
	// the "last element" tail sentinel, not an empty prefix.
	if stop == start || stop == 0 {
		return nil, nil
	}
	end := int64(-1)
	if stop != End {
		end = stop - 1
	}
	return v.Range(ctx, start, end)
}

// Members reads the full ordered membership. Calling it again issues a fresh
// round-trip, so iteration over a view restarts cleanly.
func (v RangeView) Members(ctx context.Context) ([]store.Member, error) {
	return v.Range(ctx, 0, -1)
}

// Len returns the cardinality of the underlying node.
func (v RangeView) Len(ctx context.Context) (int64, error) {
	return v.n.Cardinality(ctx)
}
