// Package mem implements store.Store entirely in process. It mirrors the
// Redis semantics redset relies on (range clamping, ordering by score then
// member, TTL expiry) closely enough to stand in for a real backend in tests
// and single-process deployments.
package mem

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/unkn0wn-root/redset/store"
)

// ErrWrongType is returned when a key holds a value of a different kind than
// the operation expects, matching the Redis WRONGTYPE error.
var ErrWrongType = errors.New("mem store: operation against a key holding the wrong kind of value")

// Store keeps all keys in process behind one mutex. Expired keys are pruned
// lazily on access.
type Store struct {
	mu      sync.Mutex
	sets    map[string]map[string]struct{}
	zsets   map[string]map[string]float64
	markers map[string]struct{}
	expiry  map[string]time.Time // zero/absent => no TTL
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		sets:    make(map[string]map[string]struct{}),
		zsets:   make(map[string]map[string]float64),
		markers: make(map[string]struct{}),
		expiry:  make(map[string]time.Time),
	}
}

// prune drops key if its TTL has elapsed. Callers must hold mu.
func (s *Store) prune(key string) {
	exp, ok := s.expiry[key]
	if !ok || time.Now().Before(exp) {
		return
	}
	delete(s.sets, key)
	delete(s.zsets, key)
	delete(s.markers, key)
	delete(s.expiry, key)
}

func (s *Store) exists(key string) bool {
	s.prune(key)
	if _, ok := s.sets[key]; ok {
		return true
	}
	if _, ok := s.zsets[key]; ok {
		return true
	}
	_, ok := s.markers[key]
	return ok
}

func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exists(key), nil
}

func (s *Store) Expire(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exists(key) {
		s.expiry[key] = time.Now().Add(ttl)
	}
	return nil
}

func (s *Store) CacheResult(_ context.Context, markerKey, resultKey string, ttl time.Duration) error {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers[markerKey] = struct{}{}
	s.expiry[markerKey] = now.Add(ttl)
	if s.exists(resultKey) {
		s.expiry[resultKey] = now.Add(ttl)
	}
	return nil
}

// set returns the plain set at key, creating it when asked.
// Callers must hold mu.
func (s *Store) set(key string, create bool) (map[string]struct{}, error) {
	s.prune(key)
	if _, ok := s.zsets[key]; ok {
		return nil, ErrWrongType
	}
	m, ok := s.sets[key]
	if !ok && create {
		m = make(map[string]struct{})
		s.sets[key] = m
	}
	return m, nil
}

func (s *Store) zset(key string, create bool) (map[string]float64, error) {
	s.prune(key)
	if _, ok := s.sets[key]; ok {
		return nil, ErrWrongType
	}
	m, ok := s.zsets[key]
	if !ok && create {
		m = make(map[string]float64)
		s.zsets[key] = m
	}
	return m, nil
}

func (s *Store) Add(_ context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.set(key, true)
	if err != nil {
		return err
	}
	for _, v := range members {
		m[v] = struct{}{}
	}
	return nil
}

func (s *Store) Remove(_ context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.set(key, false)
	if err != nil {
		return err
	}
	for _, v := range members {
		delete(m, v)
	}
	return nil
}

func (s *Store) Cardinality(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.set(key, false)
	if err != nil {
		return 0, err
	}
	return int64(len(m)), nil
}

func (s *Store) Members(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.set(key, false)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(m))
	for v := range m {
		out = append(out, v)
	}
	return out, nil
}

func (s *Store) Contains(_ context.Context, key, member string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.set(key, false)
	if err != nil {
		return false, err
	}
	_, ok := m[member]
	return ok, nil
}

func (s *Store) StoreIntersection(_ context.Context, dest string, sources ...string) error {
	return s.combine(dest, sources, func(acc, next map[string]struct{}) map[string]struct{} {
		out := make(map[string]struct{})
		for v := range acc {
			if _, ok := next[v]; ok {
				out[v] = struct{}{}
			}
		}
		return out
	})
}

func (s *Store) StoreUnion(_ context.Context, dest string, sources ...string) error {
	return s.combine(dest, sources, func(acc, next map[string]struct{}) map[string]struct{} {
		for v := range next {
			acc[v] = struct{}{}
		}
		return acc
	})
}

func (s *Store) StoreDifference(_ context.Context, dest string, sources ...string) error {
	return s.combine(dest, sources, func(acc, next map[string]struct{}) map[string]struct{} {
		for v := range next {
			delete(acc, v)
		}
		return acc
	})
}

func (s *Store) combine(dest string, sources []string, merge func(acc, next map[string]struct{}) map[string]struct{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var acc map[string]struct{}
	for i, src := range sources {
		m, err := s.set(src, false)
		if err != nil {
			return err
		}
		if i == 0 {
			acc = make(map[string]struct{}, len(m))
			for v := range m {
				acc[v] = struct{}{}
			}
			continue
		}
		acc = merge(acc, m)
	}
	if acc == nil {
		acc = make(map[string]struct{})
	}
	delete(s.zsets, dest)
	delete(s.expiry, dest)
	s.sets[dest] = acc
	return nil
}

func (s *Store) ScoredAdd(_ context.Context, key string, members ...store.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.zset(key, true)
	if err != nil {
		return err
	}
	for _, mem := range members {
		m[mem.Value] = mem.Score
	}
	return nil
}

func (s *Store) ScoredRemove(_ context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.zset(key, false)
	if err != nil {
		return err
	}
	for _, v := range members {
		delete(m, v)
	}
	return nil
}

func (s *Store) ScoredCardinality(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.zset(key, false)
	if err != nil {
		return 0, err
	}
	return int64(len(m)), nil
}

func (s *Store) Range(_ context.Context, key string, start, stop int64, withScores, reverse bool) ([]store.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.zset(key, false)
	if err != nil {
		return nil, err
	}

	ordered := orderedMembers(m)
	if reverse {
		for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		}
	}

	// Redis rank-range normalization: negatives count from the tail, start
	// clamps to 0, stop clamps to the last element, inverted ranges are empty.
	n := int64(len(ordered))
	if start < 0 {
		start += n
		if start < 0 {
			start = 0
		}
	}
	if stop < 0 {
		stop += n
	}
	if start > stop || start >= n {
		return nil, nil
	}
	if stop >= n {
		stop = n - 1
	}

	out := make([]store.Member, 0, stop-start+1)
	for _, mem := range ordered[start : stop+1] {
		if !withScores {
			mem.Score = 0
		}
		out = append(out, mem)
	}
	return out, nil
}

func (s *Store) Score(_ context.Context, key, member string) (float64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.zset(key, false)
	if err != nil {
		return 0, false, err
	}
	v, ok := m[member]
	return v, ok, nil
}

func (s *Store) Rank(_ context.Context, key, member string, reverse bool) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.zset(key, false)
	if err != nil {
		return 0, false, err
	}
	if _, ok := m[member]; !ok {
		return 0, false, nil
	}
	ordered := orderedMembers(m)
	for i, mem := range ordered {
		if mem.Value == member {
			if reverse {
				return int64(len(ordered)-1) - int64(i), true, nil
			}
			return int64(i), true, nil
		}
	}
	return 0, false, nil
}

func (s *Store) Increment(_ context.Context, key, member string, delta float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.zset(key, true)
	if err != nil {
		return 0, err
	}
	m[member] += delta
	return m[member], nil
}

func (s *Store) RemoveByRank(_ context.Context, key string, min, max int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.zset(key, false)
	if err != nil {
		return 0, err
	}
	ordered := orderedMembers(m)
	n := int64(len(ordered))
	if min < 0 {
		min += n
		if min < 0 {
			min = 0
		}
	}
	if max < 0 {
		max += n
	}
	if min > max || min >= n {
		return 0, nil
	}
	if max >= n {
		max = n - 1
	}
	for _, mem := range ordered[min : max+1] {
		delete(m, mem.Value)
	}
	return max - min + 1, nil
}

func (s *Store) RemoveByScore(_ context.Context, key string, min, max float64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.zset(key, false)
	if err != nil {
		return 0, err
	}
	var removed int64
	for v, score := range m {
		if score >= min && score <= max {
			delete(m, v)
			removed++
		}
	}
	return removed, nil
}

func (s *Store) StoreScoredIntersection(_ context.Context, dest string, sources []store.Weighted, aggregate store.Aggregate) error {
	return s.combineScored(dest, sources, aggregate, true)
}

func (s *Store) StoreScoredUnion(_ context.Context, dest string, sources []store.Weighted, aggregate store.Aggregate) error {
	return s.combineScored(dest, sources, aggregate, false)
}

func (s *Store) combineScored(dest string, sources []store.Weighted, aggregate store.Aggregate, intersect bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scores := make(map[string]float64)
	seen := make(map[string]int)
	for _, src := range sources {
		m, err := s.zset(src.Key, false)
		if err != nil {
			return err
		}
		for v, score := range m {
			weighted := score * src.Weight
			if _, ok := seen[v]; !ok {
				scores[v] = weighted
				seen[v] = 1
				continue
			}
			seen[v]++
			switch aggregate {
			case store.AggregateMin:
				if weighted < scores[v] {
					scores[v] = weighted
				}
			case store.AggregateMax:
				if weighted > scores[v] {
					scores[v] = weighted
				}
			default:
				scores[v] += weighted
			}
		}
	}
	if intersect {
		for v, n := range seen {
			if n != len(sources) {
				delete(scores, v)
			}
		}
	}
	delete(s.sets, dest)
	delete(s.expiry, dest)
	s.zsets[dest] = scores
	return nil
}

func (s *Store) Close(context.Context) error { return nil }

// orderedMembers returns the zset ascending by score, ties broken
// lexicographically, as Redis orders them.
func orderedMembers(m map[string]float64) []store.Member {
	out := make([]store.Member, 0, len(m))
	for v, score := range m {
		out = append(out, store.Member{Value: v, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score < out[j].Score
		}
		return out[i].Value < out[j].Value
	})
	return out
}
