// Package redset composes Redis set and sorted-set operations into lazy
// trees. Leaves are caller-managed sets; composites (intersection, union,
// difference) are computed server-side on first read and cached with a TTL.
// Structurally equal trees derive the same canonical key, so independent
// call sites share one cached result.
//
// Components:
//   - Node / SortedNode: read-only tree surface. Any read materializes the
//     node first (cache-marker check, children depth-first, one store call).
//   - Set / SortedSet: leaf handles carrying the mutators. Derived nodes have
//     none; immutability of results is enforced by the type system.
//   - store.Store: the backend boundary (Redis via store/redis, in-process
//     via store/mem, or your own).
//
// Keys:
//
//	<prefix>:redset:<canonical>         - derived results
//	<prefix>:redset:cached:<canonical>  - cache markers (existence == fresh)
//
// Concurrent callers racing on a cold cache may recompute the same result
// twice. Recomputation is a pure function of the leaves, so the outcome is
// identical either way; no locking is done around check-then-create.
package redset
