// Package redis implements store.Store on top of go-redis.
package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/redset/store"
)

var ErrNilClient = errors.New("redis store: nil client")

type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
}

var _ store.Store = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this store exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
}

func (s *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Redis) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.rdb.Expire(ctx, key, ttl).Err()
}

// CacheResult pipelines SETEX on the marker and EXPIRE on the result so both
// entries land in a single round-trip with the same TTL.
func (s *Redis) CacheResult(ctx context.Context, markerKey, resultKey string, ttl time.Duration) error {
	_, err := s.rdb.Pipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, markerKey, 1, ttl)
		p.Expire(ctx, resultKey, ttl)
		return nil
	})
	return err
}

func (s *Redis) Add(ctx context.Context, key string, members ...string) error {
	return s.rdb.SAdd(ctx, key, anySlice(members)...).Err()
}

func (s *Redis) Remove(ctx context.Context, key string, members ...string) error {
	return s.rdb.SRem(ctx, key, anySlice(members)...).Err()
}

func (s *Redis) Cardinality(ctx context.Context, key string) (int64, error) {
	return s.rdb.SCard(ctx, key).Result()
}

func (s *Redis) Members(ctx context.Context, key string) ([]string, error) {
	return s.rdb.SMembers(ctx, key).Result()
}

func (s *Redis) Contains(ctx context.Context, key, member string) (bool, error) {
	return s.rdb.SIsMember(ctx, key, member).Result()
}

func (s *Redis) StoreIntersection(ctx context.Context, dest string, sources ...string) error {
	return s.rdb.SInterStore(ctx, dest, sources...).Err()
}

func (s *Redis) StoreUnion(ctx context.Context, dest string, sources ...string) error {
	return s.rdb.SUnionStore(ctx, dest, sources...).Err()
}

func (s *Redis) StoreDifference(ctx context.Context, dest string, sources ...string) error {
	return s.rdb.SDiffStore(ctx, dest, sources...).Err()
}

func (s *Redis) ScoredAdd(ctx context.Context, key string, members ...store.Member) error {
	zs := make([]goredis.Z, len(members))
	for i, m := range members {
		zs[i] = goredis.Z{Score: m.Score, Member: m.Value}
	}
	return s.rdb.ZAdd(ctx, key, zs...).Err()
}

func (s *Redis) ScoredRemove(ctx context.Context, key string, members ...string) error {
	return s.rdb.ZRem(ctx, key, anySlice(members)...).Err()
}

func (s *Redis) ScoredCardinality(ctx context.Context, key string) (int64, error) {
	return s.rdb.ZCard(ctx, key).Result()
}

func (s *Redis) Range(ctx context.Context, key string, start, stop int64, withScores, reverse bool) ([]store.Member, error) {
	if withScores {
		var zs []goredis.Z
		var err error
		if reverse {
			zs, err = s.rdb.ZRevRangeWithScores(ctx, key, start, stop).Result()
		} else {
			zs, err = s.rdb.ZRangeWithScores(ctx, key, start, stop).Result()
		}
		if err != nil {
			return nil, err
		}
		out := make([]store.Member, len(zs))
		for i, z := range zs {
			out[i] = store.Member{Value: z.Member.(string), Score: z.Score}
		}
		return out, nil
	}

	var vals []string
	var err error
	if reverse {
		vals, err = s.rdb.ZRevRange(ctx, key, start, stop).Result()
	} else {
		vals, err = s.rdb.ZRange(ctx, key, start, stop).Result()
	}
	if err != nil {
		return nil, err
	}
	out := make([]store.Member, len(vals))
	for i, v := range vals {
		out[i] = store.Member{Value: v}
	}
	return out, nil
}

func (s *Redis) Score(ctx context.Context, key, member string) (float64, bool, error) {
	v, err := s.rdb.ZScore(ctx, key, member).Result()
	if err == goredis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

func (s *Redis) Rank(ctx context.Context, key, member string, reverse bool) (int64, bool, error) {
	var v int64
	var err error
	if reverse {
		v, err = s.rdb.ZRevRank(ctx, key, member).Result()
	} else {
		v, err = s.rdb.ZRank(ctx, key, member).Result()
	}
	if err == goredis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

func (s *Redis) Increment(ctx context.Context, key, member string, delta float64) (float64, error) {
	return s.rdb.ZIncrBy(ctx, key, delta, member).Result()
}

func (s *Redis) RemoveByRank(ctx context.Context, key string, min, max int64) (int64, error) {
	return s.rdb.ZRemRangeByRank(ctx, key, min, max).Result()
}

func (s *Redis) RemoveByScore(ctx context.Context, key string, min, max float64) (int64, error) {
	return s.rdb.ZRemRangeByScore(ctx, key, formatScore(min), formatScore(max)).Result()
}

func (s *Redis) StoreScoredIntersection(ctx context.Context, dest string, sources []store.Weighted, aggregate store.Aggregate) error {
	return s.rdb.ZInterStore(ctx, dest, zstore(sources, aggregate)).Err()
}

func (s *Redis) StoreScoredUnion(ctx context.Context, dest string, sources []store.Weighted, aggregate store.Aggregate) error {
	return s.rdb.ZUnionStore(ctx, dest, zstore(sources, aggregate)).Err()
}

// Close releases the underlying redis client only when this store owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (s *Redis) Close(context.Context) error {
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

func zstore(sources []store.Weighted, aggregate store.Aggregate) *goredis.ZStore {
	z := &goredis.ZStore{
		Keys:      make([]string, len(sources)),
		Weights:   make([]float64, len(sources)),
		Aggregate: string(aggregate),
	}
	for i, src := range sources {
		z.Keys[i] = src.Key
		z.Weights[i] = src.Weight
	}
	return z
}

func anySlice(members []string) []any {
	out := make([]any, len(members))
	for i, m := range members {
		out[i] = m
	}
	return out
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
