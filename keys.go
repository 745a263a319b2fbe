package redset

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/unkn0wn-root/redset/store"
)

const (
	// generatedKeyPrefix marks every key redset derives itself, so they are
	// distinguishable from caller-supplied leaf keys sharing the backend.
	generatedKeyPrefix = "redset"

	// cacheKeyPrefix marks the existence markers governing derived results.
	cacheKeyPrefix = "cached"
)

// keyMaker turns canonical node identifiers into store-facing keys. One
// instance per Client; the same policies apply uniformly to every key the
// client touches.
type keyMaker struct {
	prefix string // caller namespace, applied outermost
	hash   bool   // digest generated keys to bound their length
}

func (k keyMaker) make(key string, generated, cacheKey bool) string {
	if generated && k.hash {
		key = hashKey(key)
	}
	if cacheKey {
		key = cacheKeyPrefix + ":" + key
	}
	if generated {
		key = generatedKeyPrefix + ":" + key
	}
	if k.prefix != "" {
		key = k.prefix + ":" + key
	}
	return key
}

// leaf is the store-facing key for a caller-named set.
func (k keyMaker) leaf(key string) string { return k.make(key, false, false) }

// derived is the store-facing key for a computed result.
func (k keyMaker) derived(key string) string { return k.make(key, true, false) }

// marker is the store-facing key for a derived result's cache marker.
func (k keyMaker) marker(key string) string { return k.make(key, true, true) }

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", sum)
}

// canonicalCommutative names a commutative composite. Child keys are sorted
// so operand order never fragments the cache.
func canonicalCommutative(kind Kind, childKeys []string) string {
	ks := sortedCopy(childKeys)
	return fmt.Sprintf("%s(%s)", kind, strings.Join(ks, ","))
}

// canonicalDifference keeps the minuend in place and sorts the subtrahends.
func canonicalDifference(childKeys []string) string {
	rest := sortedCopy(childKeys[1:])
	all := append([]string{childKeys[0]}, rest...)
	return fmt.Sprintf("%s(%s)", KindDifference, strings.Join(all, ","))
}

// canonicalSorted names a sorted composite. The name carries the aggregate
// and the weight of each operand keyed by its store-facing key, so varying
// either yields a distinct cache entry, and the weight-to-operand mapping
// survives the sort.
func canonicalSorted(kind Kind, storeChildKeys []string, aggregate store.Aggregate, weights map[string]float64) string {
	ks := sortedCopy(storeChildKeys)
	ws := make([]string, 0, len(weights))
	for _, key := range ks {
		if w, ok := weights[key]; ok {
			ws = append(ws, key+"="+strconv.FormatFloat(w, 'g', -1, 64))
		}
	}
	return fmt.Sprintf("%s(%s)(aggregate=%s&weights=%s)",
		kind, strings.Join(ks, ","), aggregate, strings.Join(ws, ","))
}

func sortedCopy(keys []string) []string {
	out := make([]string, len(keys))
	copy(out, keys)
	sort.Strings(out)
	return out
}
