package redset

import (
	"context"

	"github.com/unkn0wn-root/redset/store"
)

// sortedNode adds the score-ordered read surface on top of node. Both sorted
// leaves and sorted composites are built from it.
type sortedNode struct {
	node
}

var _ SortedNode = (*sortedNode)(nil)

func (n *sortedNode) Score(ctx context.Context, member string) (float64, bool, error) {
	if err := n.materialize(ctx); err != nil {
		return 0, false, err
	}
	return n.c.store.Score(ctx, n.storeKey(), member)
}

func (n *sortedNode) Rank(ctx context.Context, member string, reverse bool) (int64, bool, error) {
	if err := n.materialize(ctx); err != nil {
		return 0, false, err
	}
	return n.c.store.Rank(ctx, n.storeKey(), member, reverse)
}

func (n *sortedNode) View() RangeView {
	return RangeView{n: n}
}

func (n *sortedNode) Range(ctx context.Context, start, stop int64) ([]store.Member, error) {
	return n.View().Range(ctx, start, stop)
}

func (n *sortedNode) Get(ctx context.Context, index int64) (store.Member, error) {
	return n.View().Get(ctx, index)
}

// SortedSet is a handle to an existing sorted set in the store. Like Set,
// construction is implicit; mutators exist only here, never on derived
// sorted nodes.
type SortedSet struct {
	sortedNode
}

// SortedSet references the sorted set stored under key.
func (c *Client) SortedSet(key string) *SortedSet {
	z := &SortedSet{sortedNode{node{c: c, key: key, kind: KindSortedSet, sorted: true}}}
	z.self = z
	return z
}

func (z *SortedSet) Add(ctx context.Context, members ...store.Member) error {
	return z.c.store.ScoredAdd(ctx, z.storeKey(), members...)
}

func (z *SortedSet) Remove(ctx context.Context, members ...string) error {
	return z.c.store.ScoredRemove(ctx, z.storeKey(), members...)
}

// Increment adds delta to the member's score and returns the new score,
// creating the member at delta when absent.
func (z *SortedSet) Increment(ctx context.Context, member string, delta float64) (float64, error) {
	return z.c.store.Increment(ctx, z.storeKey(), member, delta)
}

func (z *SortedSet) Decrement(ctx context.Context, member string, delta float64) (float64, error) {
	return z.Increment(ctx, member, -delta)
}

// RemoveRangeByRank deletes the inclusive position range [min, max] and
// returns the number of members removed.
func (z *SortedSet) RemoveRangeByRank(ctx context.Context, min, max int64) (int64, error) {
	return z.c.store.RemoveByRank(ctx, z.storeKey(), min, max)
}

// RemoveRangeByScore deletes members scoring within [min, max] and returns
// the number removed.
func (z *SortedSet) RemoveRangeByScore(ctx context.Context, min, max float64) (int64, error) {
	return z.c.store.RemoveByScore(ctx, z.storeKey(), min, max)
}
