// Package seed fills a development database with a deterministic dataset
// covering every value type the browser renders: deep namespaces, large
// collections, streams, empty collections, binary payloads, and JSON
// documents. It flushes the target database first, so callers must enforce
// the dev-profile gate before invoking it.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mazdak/lazyredis/internal/redisx"
)

// Store is the write surface the seeder needs.
type Store interface {
	FlushDB(ctx context.Context) error
	Set(ctx context.Context, key, value string) error
	HSet(ctx context.Context, key string, fields map[string]string) error
	RPush(ctx context.Context, key string, values ...string) error
	SAdd(ctx context.Context, key string, members ...string) error
	ZAdd(ctx context.Context, key string, members []redisx.Member) error
	XAdd(ctx context.Context, key string, fields map[string]string) error
	JSONSet(ctx context.Context, key, doc string) error
	Do(ctx context.Context, args ...any) (string, error)
}

// Run flushes the selected database and writes the dataset. The first
// write error aborts; only the optional JSON documents are best-effort,
// since plain servers lack the JSON module.
func Run(ctx context.Context, store Store, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("flushing database before seeding")
	if err := store.FlushDB(ctx); err != nil {
		return fmt.Errorf("flush db: %w", err)
	}

	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("seed:simple:%d", i)
		if err := store.Set(ctx, key, fmt.Sprintf("Simple value %d", i)); err != nil {
			return fmt.Errorf("seed %s: %w", key, err)
		}
	}
	logger.Info("seeded simple keys", "count", 100)

	// Nested namespaces exercise folder navigation three levels deep.
	for i := 0; i < 10; i++ {
		for j := 0; j < 5; j++ {
			for k := 0; k < 5; k++ {
				key := fmt.Sprintf("seed:level1:%d:level2:%d:key:%d", i, j, k)
				if err := store.Set(ctx, key, "Value for "+key); err != nil {
					return fmt.Errorf("seed %s: %w", key, err)
				}
			}
		}
	}
	logger.Info("seeded nested keys", "count", 10*5*5)

	// Keys using other separators stay flat under the default delimiter.
	for i := 0; i < 20; i++ {
		for _, key := range []string{
			fmt.Sprintf("seed/path/num_%d", i),
			fmt.Sprintf("seed.dot.num_%d", i),
			fmt.Sprintf("seed-dash-num_%d", i),
		} {
			if err := store.Set(ctx, key, "Value for "+key); err != nil {
				return fmt.Errorf("seed %s: %w", key, err)
			}
		}
	}

	for i := 0; i < 5; i++ {
		fields := make(map[string]string, 50)
		for j := 0; j < 50; j++ {
			fields[fmt.Sprintf("field_%d", j)] = fmt.Sprintf("value_for_hash_%d_field_%d", i, j)
		}
		key := fmt.Sprintf("seed:large_hash:%d", i)
		if err := store.HSet(ctx, key, fields); err != nil {
			return fmt.Errorf("seed %s: %w", key, err)
		}
	}

	for i := 0; i < 5; i++ {
		items := make([]string, 100)
		for j := range items {
			items[j] = fmt.Sprintf("list_%d_item_%d", i, j)
		}
		key := fmt.Sprintf("seed:large_list:%d", i)
		if err := store.RPush(ctx, key, items...); err != nil {
			return fmt.Errorf("seed %s: %w", key, err)
		}
	}

	for i := 0; i < 5; i++ {
		members := make([]string, 75)
		for j := range members {
			members[j] = fmt.Sprintf("set_%d_member_%d", i, j)
		}
		key := fmt.Sprintf("seed:large_set:%d", i)
		if err := store.SAdd(ctx, key, members...); err != nil {
			return fmt.Errorf("seed %s: %w", key, err)
		}
	}

	for i := 0; i < 5; i++ {
		members := make([]redisx.Member, 100)
		for j := range members {
			members[j] = redisx.Member{Member: fmt.Sprintf("zset_%d_member_%d", i, j), Score: float64(j * 10)}
		}
		key := fmt.Sprintf("seed:large_zset:%d", i)
		if err := store.ZAdd(ctx, key, members); err != nil {
			return fmt.Errorf("seed %s: %w", key, err)
		}
	}

	for i := 0; i < 3; i++ {
		key := fmt.Sprintf("seed:large_stream:%d", i)
		for j := 0; j < 50; j++ {
			entry := map[string]string{
				"event_id":  fmt.Sprintf("%d-%d", i, j),
				"sensor_id": fmt.Sprintf("sensor_%d", i),
				"timestamp": fmt.Sprintf("%d", j*1000),
				"payload":   fmt.Sprintf("Data payload for event %d-%d", i, j),
			}
			if err := store.XAdd(ctx, key, entry); err != nil {
				return fmt.Errorf("seed %s: %w", key, err)
			}
		}
	}
	logger.Info("seeded collections and streams")

	if err := seedShowcaseKeys(ctx, store); err != nil {
		return err
	}

	// JSON documents need the server-side JSON module; skip quietly when
	// it is missing.
	docs := map[string]string{
		"seed:json:user":   `{"id":1,"name":"Ada","roles":["admin","ops"]}`,
		"seed:json:config": `{"retries":3,"timeout_ms":1500,"features":{"dark_mode":true}}`,
	}
	for key, doc := range docs {
		if err := store.JSONSet(ctx, key, doc); err != nil {
			logger.Debug("json seed skipped", "key", key, "error", err)
			break
		}
	}

	logger.Info("seeding complete")
	return nil
}

// seedShowcaseKeys writes the small, hand-picked keys used to eyeball each
// value view, including empty collections and a binary payload.
func seedShowcaseKeys(ctx context.Context, store Store) error {
	if err := store.Set(ctx, "seed:string", "Hello from the lazyredis seeder!"); err != nil {
		return fmt.Errorf("seed showcase string: %w", err)
	}
	if err := store.Set(ctx, "seed:binary", "\x00\x01\x02\xfe\xff"); err != nil {
		return fmt.Errorf("seed binary: %w", err)
	}
	if err := store.HSet(ctx, "seed:hash", map[string]string{
		"field1": "Value1",
		"field2": "Another Value",
	}); err != nil {
		return fmt.Errorf("seed showcase hash: %w", err)
	}
	if err := store.RPush(ctx, "seed:list", "Item 1", "Item 2", "Item 3"); err != nil {
		return fmt.Errorf("seed showcase list: %w", err)
	}
	if err := store.SAdd(ctx, "seed:set", "MemberA", "MemberB", "MemberC"); err != nil {
		return fmt.Errorf("seed showcase set: %w", err)
	}
	if err := store.ZAdd(ctx, "seed:zset", []redisx.Member{
		{Member: "One", Score: 1},
		{Member: "Five", Score: 5},
		{Member: "Ten", Score: 10},
		{Member: "Twenty", Score: 20},
	}); err != nil {
		return fmt.Errorf("seed showcase zset: %w", err)
	}
	for _, fields := range []map[string]string{
		{"fieldA": "valueA1", "fieldB": "valueB1"},
		{"sensor-id": "1234", "temperature": "19.8"},
		{"message": "Hello World", "user": "Alice"},
	} {
		if err := store.XAdd(ctx, "seed:stream", fields); err != nil {
			return fmt.Errorf("seed showcase stream: %w", err)
		}
	}

	// Empty collections: create then drain, so TYPE still reports them
	// where the server keeps the key, and the views get their "(empty)"
	// placeholders exercised.
	steps := [][]any{
		{"HSET", "seed:empty_hash", "placeholder", "x"},
		{"HDEL", "seed:empty_hash", "placeholder"},
		{"RPUSH", "seed:empty_list", "placeholder"},
		{"LPOP", "seed:empty_list"},
		{"SADD", "seed:empty_set", "placeholder"},
		{"SREM", "seed:empty_set", "placeholder"},
		{"ZADD", "seed:empty_zset", "1", "placeholder"},
		{"ZREM", "seed:empty_zset", "placeholder"},
	}
	for _, args := range steps {
		if _, err := store.Do(ctx, args...); err != nil {
			return fmt.Errorf("seed empty types: %w", err)
		}
	}
	return nil
}
