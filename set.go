package redset

import "context"

// Set is a handle to an existing plain set in the store. A set that was
// never written to is indistinguishable from an empty one, so construction
// is implicit: the first Add under a key brings it into being.
//
// Set is the only plain node with mutators; derived nodes expose none.
type Set struct {
	node
}

// Set references the plain set stored under key.
func (c *Client) Set(key string) *Set {
	s := &Set{node{c: c, key: key, kind: KindSet}}
	s.self = s
	return s
}

func (s *Set) Add(ctx context.Context, members ...string) error {
	return s.c.store.Add(ctx, s.storeKey(), members...)
}

func (s *Set) Remove(ctx context.Context, members ...string) error {
	return s.c.store.Remove(ctx, s.storeKey(), members...)
}
