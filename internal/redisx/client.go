// Package redisx wraps the Redis client behind the narrow session surface
// the rest of the tool consumes: connect/select, cursor-paged enumeration,
// type-dispatched reads, batched deletes, and raw command passthrough.
package redisx

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotConnected is returned by every operation attempted before a
// successful Connect.
var ErrNotConnected = errors.New("not connected")

// Key types as reported by TYPE. TypeJSON is the RedisJSON module type.
const (
	TypeString  = "string"
	TypeHash    = "hash"
	TypeList    = "list"
	TypeSet     = "set"
	TypeZSet    = "zset"
	TypeStream  = "stream"
	TypeJSON    = "ReJSON-RL"
	TypeMissing = "none"
)

// Field is one name/value pair from a hash or stream entry.
type Field struct {
	Name  string
	Value string
}

// Member is one sorted-set member with its score, in store-native order.
type Member struct {
	Member string
	Score  float64
}

// StreamEntry is one stream entry: its ID and field/value pairs.
type StreamEntry struct {
	ID     string
	Fields []Field
}

// Store is the session surface consumed by the TUI, the delete
// orchestrator, and the seed tool. *Client implements it; tests mock it.
type Store interface {
	Connect(ctx context.Context, url string, db int) error
	SelectDB(ctx context.Context, db int) error
	DB() int

	ScanPage(ctx context.Context, cursor uint64, match string, count int64) (keys []string, next uint64, err error)

	Type(ctx context.Context, key string) (string, error)
	TTLSeconds(ctx context.Context, key string) (int64, error)
	GetString(ctx context.Context, key string) (value string, ok bool, err error)
	HashAll(ctx context.Context, key string) ([]Field, error)
	ListAll(ctx context.Context, key string) ([]string, error)
	SetMembers(ctx context.Context, key string) ([]string, error)
	SortedSetAll(ctx context.Context, key string) ([]Member, error)
	StreamRecent(ctx context.Context, key string, count int64) ([]StreamEntry, error)
	JSONGet(ctx context.Context, key string) (string, error)

	DeleteKey(ctx context.Context, key string) (bool, error)
	DeleteBatch(ctx context.Context, keys []string) (int64, error)

	Info(ctx context.Context) (string, error)
	FlushDB(ctx context.Context) error
	Do(ctx context.Context, args ...any) (string, error)
}

// Client is a live session against one server and one logical database.
// Not safe for concurrent use; the scheduler guarantees one operation in
// flight at a time.
type Client struct {
	rdb    *redis.Client
	url    string
	db     int
	useDel bool // UNLINK reported unsupported; stick with DEL
}

// New returns a disconnected client.
func New() *Client {
	return &Client{}
}

// Connect parses a redis:// URL, dials, and selects the given database.
// db < 0 keeps the database encoded in the URL. On failure the previous
// connection, if any, is left untouched.
func (c *Client) Connect(ctx context.Context, url string, db int) error {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return fmt.Errorf("parse url %q: %w", url, err)
	}
	if db >= 0 {
		opt.DB = db
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("connect %s: %w", url, err)
	}
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
	c.rdb = rdb
	c.url = url
	c.db = opt.DB
	c.useDel = false
	return nil
}

// SelectDB reconnects the session against another logical database of the
// same server.
func (c *Client) SelectDB(ctx context.Context, db int) error {
	if c.rdb == nil {
		return ErrNotConnected
	}
	return c.Connect(ctx, c.url, db)
}

// DB returns the currently selected logical database index.
func (c *Client) DB() int { return c.db }

// Connected reports whether a session is established.
func (c *Client) Connected() bool { return c.rdb != nil }

// Close tears down the session.
func (c *Client) Close() error {
	if c.rdb == nil {
		return nil
	}
	err := c.rdb.Close()
	c.rdb = nil
	return err
}

// ScanPage fetches one SCAN page. A returned cursor of 0 means the
// enumeration is complete.
func (c *Client) ScanPage(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error) {
	if c.rdb == nil {
		return nil, 0, ErrNotConnected
	}
	keys, next, err := c.rdb.Scan(ctx, cursor, match, count).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("scan %q: %w", match, err)
	}
	return keys, next, nil
}

// Type returns the declared type of a key ("none" when absent).
func (c *Client) Type(ctx context.Context, key string) (string, error) {
	if c.rdb == nil {
		return "", ErrNotConnected
	}
	return c.rdb.Type(ctx, key).Result()
}

// TTLSeconds returns the key's TTL in seconds, -1 for no expiry and -2
// when the key does not exist.
func (c *Client) TTLSeconds(ctx context.Context, key string) (int64, error) {
	if c.rdb == nil {
		return 0, ErrNotConnected
	}
	d, err := c.rdb.TTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	return ttlToSeconds(d), nil
}

// ttlToSeconds converts a TTL reply to whole seconds, rounding partial
// seconds up. The server sentinels -1 (no expiry) and -2 (missing key)
// arrive as raw Duration values rather than durations, so they are passed
// through unconverted.
func ttlToSeconds(d time.Duration) int64 {
	if d == -1 || d == -2 {
		return int64(d)
	}
	return int64((d + time.Second - 1) / time.Second)
}

// GetString fetches a scalar value. ok is false when the key is absent.
// A WRONGTYPE reply is returned as-is so the caller can re-dispatch on the
// declared type.
func (c *Client) GetString(ctx context.Context, key string) (string, bool, error) {
	if c.rdb == nil {
		return "", false, ErrNotConnected
	}
	v, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// IsWrongType reports whether err is the store's type-mismatch reply.
func IsWrongType(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "WRONGTYPE")
}

// HashAll fetches every field of a hash, sorted by field name for
// deterministic display.
func (c *Client) HashAll(ctx context.Context, key string) ([]Field, error) {
	if c.rdb == nil {
		return nil, ErrNotConnected
	}
	m, err := c.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	fields := make([]Field, 0, len(m))
	for name, value := range m {
		fields = append(fields, Field{Name: name, Value: value})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	return fields, nil
}

// ListAll fetches every element of a list in list order.
func (c *Client) ListAll(ctx context.Context, key string) ([]string, error) {
	if c.rdb == nil {
		return nil, ErrNotConnected
	}
	return c.rdb.LRange(ctx, key, 0, -1).Result()
}

// SetMembers fetches every member of a set, sorted for deterministic
// display (the store returns them in arbitrary order).
func (c *Client) SetMembers(ctx context.Context, key string) ([]string, error) {
	if c.rdb == nil {
		return nil, ErrNotConnected
	}
	members, err := c.rdb.SMembers(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(members)
	return members, nil
}

// SortedSetAll fetches every member with its score, in store-native
// (ascending score) order.
func (c *Client) SortedSetAll(ctx context.Context, key string) ([]Member, error) {
	if c.rdb == nil {
		return nil, ErrNotConnected
	}
	zs, err := c.rdb.ZRangeWithScores(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	members := make([]Member, len(zs))
	for i, z := range zs {
		members[i] = Member{Member: fmt.Sprint(z.Member), Score: z.Score}
	}
	return members, nil
}

// StreamRecent fetches the most recent count entries of a stream and
// returns them in chronological order. No consumer groups are involved.
func (c *Client) StreamRecent(ctx context.Context, key string, count int64) ([]StreamEntry, error) {
	if c.rdb == nil {
		return nil, ErrNotConnected
	}
	msgs, err := c.rdb.XRevRangeN(ctx, key, "+", "-", count).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]StreamEntry, len(msgs))
	for i, msg := range msgs {
		names := make([]string, 0, len(msg.Values))
		for name := range msg.Values {
			names = append(names, name)
		}
		sort.Strings(names)
		fields := make([]Field, len(names))
		for j, name := range names {
			fields[j] = Field{Name: name, Value: fmt.Sprint(msg.Values[name])}
		}
		// XREVRANGE is newest-first; display is chronological.
		entries[len(msgs)-1-i] = StreamEntry{ID: msg.ID, Fields: fields}
	}
	return entries, nil
}

// JSONGet fetches a RedisJSON document as its raw text.
func (c *Client) JSONGet(ctx context.Context, key string) (string, error) {
	if c.rdb == nil {
		return "", ErrNotConnected
	}
	return c.rdb.Do(ctx, "JSON.GET", key).Text()
}

// DeleteKey deletes one key. The bool reports whether the key existed;
// deleting an already-gone key is not an error.
func (c *Client) DeleteKey(ctx context.Context, key string) (bool, error) {
	if c.rdb == nil {
		return false, ErrNotConnected
	}
	n, err := c.rdb.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteBatch removes a batch of keys, preferring the non-blocking UNLINK.
// When the server does not know UNLINK the session downgrades to DEL and
// stays there, so later batches skip the failed attempt.
func (c *Client) DeleteBatch(ctx context.Context, keys []string) (int64, error) {
	if c.rdb == nil {
		return 0, ErrNotConnected
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if !c.useDel {
		n, err := c.rdb.Unlink(ctx, keys...).Result()
		if err == nil {
			return n, nil
		}
		if !isUnknownCommand(err) {
			return 0, err
		}
		c.useDel = true
	}
	return c.rdb.Del(ctx, keys...).Result()
}

func isUnknownCommand(err error) bool {
	return err != nil && strings.HasPrefix(strings.ToUpper(err.Error()), "ERR UNKNOWN COMMAND")
}

// Info fetches the server's INFO blob.
func (c *Client) Info(ctx context.Context) (string, error) {
	if c.rdb == nil {
		return "", ErrNotConnected
	}
	return c.rdb.Info(ctx).Result()
}

// FlushDB removes every key of the selected database. Callers enforce the
// dev-profile gate before reaching here.
func (c *Client) FlushDB(ctx context.Context) error {
	if c.rdb == nil {
		return ErrNotConnected
	}
	return c.rdb.FlushDB(ctx).Err()
}

// Do executes a raw command and renders the reply for display.
func (c *Client) Do(ctx context.Context, args ...any) (string, error) {
	if c.rdb == nil {
		return "", ErrNotConnected
	}
	v, err := c.rdb.Do(ctx, args...).Result()
	if errors.Is(err, redis.Nil) {
		return "(nil)", nil
	}
	if err != nil {
		return "", err
	}
	return FormatReply(v), nil
}

// FormatReply renders a raw command reply the way redis-cli would:
// scalars inline, arrays as numbered lines.
func FormatReply(v any) string {
	switch r := v.(type) {
	case nil:
		return "(nil)"
	case string:
		return r
	case int64:
		return fmt.Sprintf("(integer) %d", r)
	case []any:
		if len(r) == 0 {
			return "(empty array)"
		}
		lines := make([]string, len(r))
		for i, item := range r {
			lines[i] = fmt.Sprintf("%d) %s", i+1, FormatReply(item))
		}
		return strings.Join(lines, "\n")
	case map[any]any:
		if len(r) == 0 {
			return "(empty map)"
		}
		pairs := make([]string, 0, len(r))
		for k, val := range r {
			pairs = append(pairs, fmt.Sprintf("%s => %s", FormatReply(k), FormatReply(val)))
		}
		sort.Strings(pairs)
		return strings.Join(pairs, "\n")
	default:
		return fmt.Sprint(r)
	}
}
