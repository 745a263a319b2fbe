package redset

import (
	"strings"
	"testing"

	"github.com/unkn0wn-root/redset/store"
)

// TestKeyMakerLayering checks prefix layering matches the documented key
// shapes for leaves, derived results and markers.
func TestKeyMakerLayering(t *testing.T) {
	km := keyMaker{prefix: "app"}

	if got := km.leaf("tags"); got != "app:tags" {
		t.Fatalf("leaf = %q", got)
	}
	if got := km.derived("union(a,b)"); got != "app:redset:union(a,b)" {
		t.Fatalf("derived = %q", got)
	}
	if got := km.marker("union(a,b)"); got != "app:redset:cached:union(a,b)" {
		t.Fatalf("marker = %q", got)
	}

	bare := keyMaker{}
	if got := bare.leaf("tags"); got != "tags" {
		t.Fatalf("unprefixed leaf = %q", got)
	}
	if got := bare.marker("k"); got != "redset:cached:k" {
		t.Fatalf("unprefixed marker = %q", got)
	}
}

// TestKeyMakerHashing: only generated keys are digested, deterministically.
func TestKeyMakerHashing(t *testing.T) {
	km := keyMaker{hash: true}

	if got := km.leaf("tags"); got != "tags" {
		t.Fatalf("leaf keys must never be hashed, got %q", got)
	}

	d1 := km.derived("union(a,b)")
	d2 := km.derived("union(a,b)")
	if d1 != d2 {
		t.Fatalf("hashing not deterministic: %q vs %q", d1, d2)
	}
	if !strings.HasPrefix(d1, "redset:") {
		t.Fatalf("derived = %q", d1)
	}
	if len(strings.TrimPrefix(d1, "redset:")) != 64 {
		t.Fatalf("digest length wrong: %q", d1)
	}
	if km.derived("union(a,c)") == d1 {
		t.Fatalf("distinct canonical names collide")
	}
}

// TestCanonicalNames pins the canonical formats.
func TestCanonicalNames(t *testing.T) {
	if got := canonicalCommutative(KindUnion, []string{"b", "a"}); got != "union(a,b)" {
		t.Fatalf("commutative = %q", got)
	}
	if got := canonicalDifference([]string{"m", "z", "a"}); got != "difference(m,a,z)" {
		t.Fatalf("difference = %q", got)
	}

	got := canonicalSorted(KindSortedUnion, []string{"z2", "z1"}, store.AggregateMax,
		map[string]float64{"z1": 2, "z2": 0.5})
	want := "sortedunion(z1,z2)(aggregate=MAX&weights=z1=2,z2=0.5)"
	if got != want {
		t.Fatalf("sorted = %q, want %q", got, want)
	}

	unweighted := canonicalSorted(KindSortedUnion, []string{"z2", "z1"}, store.AggregateSum, nil)
	if unweighted != "sortedunion(z1,z2)(aggregate=SUM&weights=)" {
		t.Fatalf("unweighted sorted = %q", unweighted)
	}
}
