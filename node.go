package redset

import (
	"context"

	"github.com/unkn0wn-root/redset/store"
)

// Kind names the store-side operation a node represents. For derived nodes
// it doubles as the canonical-name prefix.
type Kind string

const (
	KindSet                Kind = "set"
	KindSortedSet          Kind = "zset"
	KindIntersection       Kind = "intersection"
	KindUnion              Kind = "union"
	KindDifference         Kind = "difference"
	KindSortedIntersection Kind = "sortedintersection"
	KindSortedUnion        Kind = "sortedunion"
)

// Operand is anything a composite can be built from: an existing Node, or a
// Key naming a plain set leaf. The set of implementations is closed.
type Operand interface {
	isOperand()
}

// Key references an existing plain set by name, without constructing a Set
// handle first. It resolves once, at composite construction.
type Key string

func (Key) isOperand() {}

// Node is the read-only surface shared by every node in an operation tree.
// Reads transparently materialize derived results first; on a leaf they go
// straight to the store.
type Node interface {
	Operand

	// Key returns the canonical identifier, before any store-facing
	// prefixing. Structurally equal trees return equal keys.
	Key() string
	Kind() Kind

	Cardinality(ctx context.Context) (int64, error)
	Members(ctx context.Context) ([]string, error)
	Contains(ctx context.Context, member string) (bool, error)

	// Composition sugar: op(self, others...).
	Intersection(others ...Operand) (Node, error)
	Union(others ...Operand) (Node, error)
	Difference(others ...Operand) (Node, error)

	materialize(ctx context.Context) error
	core() *node
}

// SortedNode extends Node with score-ordered reads. Sorted leaves and sorted
// composites implement it; plain nodes never do.
type SortedNode interface {
	Node

	// Score returns the member's score, or false when absent.
	Score(ctx context.Context, member string) (float64, bool, error)

	// Rank returns the member's ordinal position (ascending, or descending
	// when reverse is set), or false when absent.
	Rank(ctx context.Context, member string, reverse bool) (int64, bool, error)

	// Range reads the inclusive position range [start, stop]; negative
	// positions count from the tail.
	Range(ctx context.Context, start, stop int64) ([]store.Member, error)

	// Get returns the member at index, or ErrOutOfRange.
	Get(ctx context.Context, index int64) (store.Member, error)

	View() RangeView
}

// node carries everything shared between leaves and derived nodes. A leaf
// has op == nil; reads on it are plain pass-throughs. self points at the
// outer value (Set, SortedSet, or the node itself) so composition sugar
// preserves the operand's identity.
type node struct {
	c      *Client
	key    string
	kind   Kind
	sorted bool
	self   Node
	op     *operation // nil for leaves
}

func (n *node) isOperand()  {}
func (n *node) core() *node { return n }
func (n *node) Key() string { return n.key }
func (n *node) Kind() Kind  { return n.kind }

// storeKey is the key the backend sees: derived nodes live under the
// generated prefix, leaves under the caller's own name.
func (n *node) storeKey() string {
	if n.op != nil {
		return n.c.keys.derived(n.key)
	}
	return n.c.keys.leaf(n.key)
}

func (n *node) Cardinality(ctx context.Context) (int64, error) {
	if err := n.materialize(ctx); err != nil {
		return 0, err
	}
	if n.sorted {
		return n.c.store.ScoredCardinality(ctx, n.storeKey())
	}
	return n.c.store.Cardinality(ctx, n.storeKey())
}

func (n *node) Members(ctx context.Context) ([]string, error) {
	if err := n.materialize(ctx); err != nil {
		return nil, err
	}
	if n.sorted {
		ms, err := n.c.store.Range(ctx, n.storeKey(), 0, -1, false, false)
		if err != nil {
			return nil, err
		}
		out := make([]string, len(ms))
		for i, m := range ms {
			out[i] = m.Value
		}
		return out, nil
	}
	return n.c.store.Members(ctx, n.storeKey())
}

func (n *node) Contains(ctx context.Context, member string) (bool, error) {
	if err := n.materialize(ctx); err != nil {
		return false, err
	}
	if n.sorted {
		// no store-level membership test on sorted sets; a score lookup
		// answers the same question
		_, ok, err := n.c.store.Score(ctx, n.storeKey(), member)
		return ok, err
	}
	return n.c.store.Contains(ctx, n.storeKey(), member)
}

func (n *node) Intersection(others ...Operand) (Node, error) {
	return n.c.Intersection(append([]Operand{n.self}, others...)...)
}

func (n *node) Union(others ...Operand) (Node, error) {
	return n.c.Union(append([]Operand{n.self}, others...)...)
}

func (n *node) Difference(others ...Operand) (Node, error) {
	return n.c.Difference(append([]Operand{n.self}, others...)...)
}
