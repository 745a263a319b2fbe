// Package store defines the backend abstraction used by redset.
//
// Implementations MUST provide atomic set/sorted-set primitives: the algebra
// (StoreIntersection etc.) computes its whole result into the destination key
// in one operation, and CacheResult installs the marker and result expiry as
// close to atomically as the backend allows. redset performs no retries and
// no locking around these calls; every error an implementation returns is
// surfaced to the caller unchanged.
//
// Important: keys under the "redset:" and "redset:cached:" prefixes are owned
// by the library. External code MUST NOT write values under these prefixes.
package store

import (
	"context"
	"time"
)

// Aggregate selects how scores of equal members are combined when sorted
// sets are merged.
type Aggregate string

const (
	AggregateSum Aggregate = "SUM"
	AggregateMin Aggregate = "MIN"
	AggregateMax Aggregate = "MAX"
)

// Member is a single sorted-set entry. Score is populated only on paths that
// request scores.
type Member struct {
	Value string
	Score float64
}

// Weighted pairs a source key with the multiplier applied to its scores
// before aggregation.
type Weighted struct {
	Key    string
	Weight float64
}

// Store is the sole boundary between redset and the backing store. Must be
// safe for concurrent use.
type Store interface {
	// Exists reports whether key is present and unexpired.
	Exists(ctx context.Context, key string) (bool, error)

	// Expire sets a TTL after which key is removed.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// CacheResult installs the cache marker and puts the same TTL on the
	// result key, pipelined into one round-trip where the backend allows it.
	CacheResult(ctx context.Context, markerKey, resultKey string, ttl time.Duration) error

	// Plain sets.
	Add(ctx context.Context, key string, members ...string) error
	Remove(ctx context.Context, key string, members ...string) error
	Cardinality(ctx context.Context, key string) (int64, error)
	Members(ctx context.Context, key string) ([]string, error)
	Contains(ctx context.Context, key, member string) (bool, error)
	StoreIntersection(ctx context.Context, dest string, sources ...string) error
	StoreUnion(ctx context.Context, dest string, sources ...string) error
	StoreDifference(ctx context.Context, dest string, sources ...string) error

	// Sorted sets. Range bounds are inclusive; negative positions count from
	// the tail. Score and Rank report absence via their bool result, never
	// through a zero value.
	ScoredAdd(ctx context.Context, key string, members ...Member) error
	ScoredRemove(ctx context.Context, key string, members ...string) error
	ScoredCardinality(ctx context.Context, key string) (int64, error)
	Range(ctx context.Context, key string, start, stop int64, withScores, reverse bool) ([]Member, error)
	Score(ctx context.Context, key, member string) (float64, bool, error)
	Rank(ctx context.Context, key, member string, reverse bool) (int64, bool, error)
	Increment(ctx context.Context, key, member string, delta float64) (float64, error)
	RemoveByRank(ctx context.Context, key string, min, max int64) (int64, error)
	RemoveByScore(ctx context.Context, key string, min, max float64) (int64, error)
	StoreScoredIntersection(ctx context.Context, dest string, sources []Weighted, aggregate Aggregate) error
	StoreScoredUnion(ctx context.Context, dest string, sources []Weighted, aggregate Aggregate) error

	// Close releases resources.
	Close(ctx context.Context) error
}
