package redset

import (
	"context"
	"fmt"
	"time"

	"github.com/unkn0wn-root/redset/store"
)

const defaultCacheTTL = 60 * time.Second

// Options tune a Client. Only Store is required; others have sensible
// defaults.
type Options struct {
	// Required.
	Store store.Store

	// KeyPrefix is prepended to every key this client touches, generated or
	// caller-supplied. Use it to partition environments sharing one backend.
	KeyPrefix string

	// HashGeneratedKeys replaces generated (derived/marker) key names with a
	// digest, bounding key length for deep trees. Off, names stay readable.
	HashGeneratedKeys bool

	// DefaultCacheTTL is how long a derived result stays valid when its
	// composite does not set a TTL of its own. 0 => 60s.
	DefaultCacheTTL time.Duration

	Logger Logger // if nil, NopLogger is used
}

// Client builds leaves and composites against one store. Safe for concurrent
// use; nodes built by it share the client's key policies and default TTL.
type Client struct {
	store      store.Store
	keys       keyMaker
	log        Logger
	defaultTTL time.Duration
}

func New(opts Options) (*Client, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("redset: store is required")
	}

	c := &Client{
		store: opts.Store,
		keys:  keyMaker{prefix: opts.KeyPrefix, hash: opts.HashGeneratedKeys},
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.defaultTTL = coalesce[time.Duration](opts.DefaultCacheTTL, defaultCacheTTL)

	return c, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.store.Close(ctx)
}
