package redisx

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Write operations. Only the synthetic data seeder uses these; the browser
// itself never writes values.

// Set stores a scalar value.
func (c *Client) Set(ctx context.Context, key, value string) error {
	if c.rdb == nil {
		return ErrNotConnected
	}
	return c.rdb.Set(ctx, key, value, 0).Err()
}

// HSet stores hash fields.
func (c *Client) HSet(ctx context.Context, key string, fields map[string]string) error {
	if c.rdb == nil {
		return ErrNotConnected
	}
	return c.rdb.HSet(ctx, key, fields).Err()
}

// RPush appends list elements.
func (c *Client) RPush(ctx context.Context, key string, values ...string) error {
	if c.rdb == nil {
		return ErrNotConnected
	}
	return c.rdb.RPush(ctx, key, values).Err()
}

// SAdd adds set members.
func (c *Client) SAdd(ctx context.Context, key string, members ...string) error {
	if c.rdb == nil {
		return ErrNotConnected
	}
	return c.rdb.SAdd(ctx, key, members).Err()
}

// ZAdd adds sorted-set members with scores.
func (c *Client) ZAdd(ctx context.Context, key string, members []Member) error {
	if c.rdb == nil {
		return ErrNotConnected
	}
	zs := make([]redis.Z, len(members))
	for i, m := range members {
		zs[i] = redis.Z{Member: m.Member, Score: m.Score}
	}
	return c.rdb.ZAdd(ctx, key, zs...).Err()
}

// XAdd appends one auto-ID stream entry.
func (c *Client) XAdd(ctx context.Context, key string, fields map[string]string) error {
	if c.rdb == nil {
		return ErrNotConnected
	}
	values := make(map[string]any, len(fields))
	for k, v := range fields {
		values[k] = v
	}
	return c.rdb.XAdd(ctx, &redis.XAddArgs{Stream: key, Values: values}).Err()
}

// JSONSet stores a RedisJSON document at the root path.
func (c *Client) JSONSet(ctx context.Context, key, doc string) error {
	if c.rdb == nil {
		return ErrNotConnected
	}
	return c.rdb.Do(ctx, "JSON.SET", key, "$", doc).Err()
}
