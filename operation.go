package redset

import (
	"context"
	"fmt"
	"time"

	"github.com/unkn0wn-root/redset/store"
)

// operation is the derived-node payload: which algebra to run, over which
// children, and how long the result stays cached. A node holding one is a
// result cache, never a leaf.
type operation struct {
	kind      Kind
	children  []Node
	ttl       time.Duration
	aggregate store.Aggregate    // sorted kinds only
	weights   map[string]float64 // by store-facing child key; nil when unweighted
}

// OpArgs is the full-control form of composite construction, for when the
// variadic constructors don't cut it (weights, non-default aggregate, or a
// per-node TTL).
type OpArgs struct {
	Operands []Operand

	// Weights multiply each operand's scores before aggregation; parallel to
	// Operands. Sorted operands only, and the operands must be distinct:
	// weights bind to operands by store-facing key, so naming the same
	// operand twice is rejected with ErrDuplicateWeighted.
	Weights []float64

	// Aggregate combines scores of equal members across operands.
	// Defaults to SUM. Sorted operands only.
	Aggregate store.Aggregate

	// CacheTTL overrides the client's default for this node.
	CacheTTL time.Duration
}

// Intersection builds the intersection of the operands. A single operand is
// returned as-is (no degenerate node). Operands must be homogeneous: all
// plain or all sorted.
func (c *Client) Intersection(ops ...Operand) (Node, error) {
	return c.IntersectionArgs(OpArgs{Operands: ops})
}

func (c *Client) IntersectionArgs(args OpArgs) (Node, error) {
	return c.compose(KindIntersection, KindSortedIntersection, args)
}

// Union builds the union of the operands, under the same operand rules as
// Intersection.
func (c *Client) Union(ops ...Operand) (Node, error) {
	return c.UnionArgs(OpArgs{Operands: ops})
}

func (c *Client) UnionArgs(args OpArgs) (Node, error) {
	return c.compose(KindUnion, KindSortedUnion, args)
}

// Difference builds first-minus-rest. The first operand's position is
// load-bearing; the remaining operands commute. Sorted operands are rejected
// with ErrSortedDifference.
func (c *Client) Difference(ops ...Operand) (Node, error) {
	return c.DifferenceArgs(OpArgs{Operands: ops})
}

func (c *Client) DifferenceArgs(args OpArgs) (Node, error) {
	return c.compose(KindDifference, "", args)
}

// compose validates the operands and builds the derived node. sortedKind ==
// "" marks an operation with no sorted form.
func (c *Client) compose(plainKind, sortedKind Kind, args OpArgs) (Node, error) {
	children, sorted, err := c.resolveOperands(args.Operands)
	if err != nil {
		return nil, err
	}

	if sorted && sortedKind == "" {
		return nil, ErrSortedDifference
	}
	if args.Weights != nil {
		if !sorted {
			return nil, ErrWeightsRequireSorted
		}
		if len(args.Weights) != len(children) {
			return nil, ErrWeightCount
		}
	}
	if args.Aggregate != "" && !sorted {
		return nil, ErrAggregateRequiresSorted
	}

	// degenerate composite: hand the operand back untouched
	if len(children) == 1 {
		return children[0], nil
	}

	op := &operation{
		children: children,
		ttl:      coalesce(args.CacheTTL, c.defaultTTL),
	}

	if !sorted {
		op.kind = plainKind
		keys := make([]string, len(children))
		for i, ch := range children {
			keys[i] = ch.Key()
		}
		var key string
		if plainKind == KindDifference {
			key = canonicalDifference(keys)
		} else {
			key = canonicalCommutative(plainKind, keys)
		}
		n := &node{c: c, key: key, kind: plainKind, op: op}
		n.self = n
		return n, nil
	}

	op.kind = sortedKind
	op.aggregate = coalesce(args.Aggregate, store.AggregateSum)
	storeKeys := make([]string, len(children))
	for i, ch := range children {
		storeKeys[i] = ch.core().storeKey()
	}
	if args.Weights != nil {
		op.weights = make(map[string]float64, len(children))
		for i, key := range storeKeys {
			if _, ok := op.weights[key]; ok {
				return nil, ErrDuplicateWeighted
			}
			op.weights[key] = args.Weights[i]
		}
	}
	n := &sortedNode{node{
		c:      c,
		key:    canonicalSorted(sortedKind, storeKeys, op.aggregate, op.weights),
		kind:   sortedKind,
		sorted: true,
		op:     op,
	}}
	n.self = n
	return n, nil
}

// resolveOperands turns the operand sum type into nodes (a Key becomes a
// plain Set leaf) and enforces kind homogeneity.
func (c *Client) resolveOperands(ops []Operand) ([]Node, bool, error) {
	if len(ops) == 0 {
		return nil, false, ErrNoOperands
	}
	nodes := make([]Node, len(ops))
	for i, op := range ops {
		switch v := op.(type) {
		case Key:
			nodes[i] = c.Set(string(v))
		case Node:
			nodes[i] = v
		default:
			return nil, false, fmt.Errorf("redset: unsupported operand type %T", op)
		}
	}
	sorted := nodes[0].core().sorted
	for i, n := range nodes {
		if n.core().sorted != sorted {
			return nil, false, &MixedOperandsError{Index: i, Key: n.Key()}
		}
	}
	return nodes, sorted, nil
}

// materialize makes the node's result readable. Leaves are always readable.
// For a derived node, the cache marker's existence is the freshness state:
// present means the result is valid and nothing is touched, absent means the
// whole subtree is recomputed.
//
// Concurrent callers may both miss the marker and recompute; the result is
// the same either way, so no claim is taken around check-then-create.
func (n *node) materialize(ctx context.Context) error {
	if n.op == nil {
		return nil
	}

	marker := n.c.keys.marker(n.key)
	ok, err := n.c.store.Exists(ctx, marker)
	if err != nil {
		return err
	}
	if ok {
		n.c.log.Debug("cache hit", Fields{"key": n.key})
		return nil
	}

	// children fully resolved before this node's own operation runs
	for _, child := range n.op.children {
		if err := child.materialize(ctx); err != nil {
			return err
		}
	}

	dest := n.storeKey()
	if err := n.performOperation(ctx, dest); err != nil {
		return err
	}
	if err := n.c.store.CacheResult(ctx, marker, dest, n.op.ttl); err != nil {
		return err
	}
	n.c.log.Debug("materialized", Fields{"key": n.key, "kind": n.op.kind, "ttl": n.op.ttl})
	return nil
}

func (n *node) performOperation(ctx context.Context, dest string) error {
	sources := make([]string, len(n.op.children))
	for i, ch := range n.op.children {
		sources[i] = ch.core().storeKey()
	}

	switch n.op.kind {
	case KindIntersection:
		return n.c.store.StoreIntersection(ctx, dest, sources...)
	case KindUnion:
		return n.c.store.StoreUnion(ctx, dest, sources...)
	case KindDifference:
		return n.c.store.StoreDifference(ctx, dest, sources...)
	case KindSortedIntersection:
		return n.c.store.StoreScoredIntersection(ctx, dest, n.weightedSources(sources), n.op.aggregate)
	case KindSortedUnion:
		return n.c.store.StoreScoredUnion(ctx, dest, n.weightedSources(sources), n.op.aggregate)
	}
	return fmt.Errorf("redset: unknown operation kind %q", n.op.kind)
}

// weightedSources pairs each source key with its weight; unweighted operands
// carry the neutral weight 1.
func (n *node) weightedSources(sources []string) []store.Weighted {
	out := make([]store.Weighted, len(sources))
	for i, key := range sources {
		w := 1.0
		if n.op.weights != nil {
			w = n.op.weights[key]
		}
		out[i] = store.Weighted{Key: key, Weight: w}
	}
	return out
}
