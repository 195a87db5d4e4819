// Package redis wraps go-redis/v9 with the sorted-set and key operations the
// ranked lookup cache needs.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/config"
	"github.com/redis/go-redis/v9"
)

// Member is one scored entry of a sorted set.
type Member struct {
	Name  string
	Score float64
}

// Client wraps a go-redis client.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a Redis client and verifies the connection with a PING.
func NewClient(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// Get returns the string value for the given key.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.rdb.Get(ctx, key).Result()
}

// Del deletes one or more keys.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

// ReplaceSortedSet atomically swaps the contents of a sorted set and a
// companion string value. The set is built under a temporary key and renamed
// into place, so readers never observe a half-written ranking. A ttl of zero
// keeps both keys forever.
func (c *Client) ReplaceSortedSet(ctx context.Context, key string, members []Member, metaKey string, meta string, ttl time.Duration) error {
	tmp := key + ":staging"
	zs := make([]redis.Z, len(members))
	for i, m := range members {
		zs[i] = redis.Z{Score: m.Score, Member: m.Name}
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, tmp)
		for start := 0; start < len(zs); start += 1000 {
			end := min(start+1000, len(zs))
			pipe.ZAdd(ctx, tmp, zs[start:end]...)
		}
		if len(zs) > 0 {
			pipe.Rename(ctx, tmp, key)
		} else {
			pipe.Del(ctx, key)
		}
		pipe.Set(ctx, metaKey, meta, ttl)
		if ttl > 0 && len(zs) > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replacing sorted set %s: %w", key, err)
	}
	return nil
}

// TopMembers returns the members with the highest scores, best first.
func (c *Client) TopMembers(ctx context.Context, key string, limit int) ([]Member, error) {
	if limit <= 0 {
		return nil, nil
	}
	zs, err := c.rdb.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading top of %s: %w", key, err)
	}
	out := make([]Member, 0, len(zs))
	for _, z := range zs {
		name, _ := z.Member.(string)
		out = append(out, Member{Name: name, Score: z.Score})
	}
	return out, nil
}

// Rank returns the zero-based position of member counted from the highest
// score, and its score. found is false when the member is absent.
func (c *Client) Rank(ctx context.Context, key string, member string) (rank int64, score float64, found bool, err error) {
	rs, err := c.rdb.ZRevRankWithScore(ctx, key, member).Result()
	if IsNilError(err) {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, fmt.Errorf("ranking %q in %s: %w", member, key, err)
	}
	return rs.Rank, rs.Score, true, nil
}

// FlushByPattern scans for keys matching the glob pattern and deletes them,
// returning the number of keys removed.
func (c *Client) FlushByPattern(ctx context.Context, pattern string) (int64, error) {
	var deleted int64
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, fmt.Errorf("deleting key %s: %w", iter.Val(), err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("scanning pattern %s: %w", pattern, err)
	}
	return deleted, nil
}

// IsNilError reports whether err is a Redis nil (key-not-found) error.
func IsNilError(err error) bool {
	return errors.Is(err, redis.Nil)
}

// Close closes the underlying Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping sends a PING to Redis and returns any error.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
