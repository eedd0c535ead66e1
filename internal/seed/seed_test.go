package seed

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mazdak/lazyredis/internal/redisx"
)

// recordStore records every write so tests can assert on the dataset shape.
type recordStore struct {
	flushed   bool
	ops       []string
	strings   map[string]string
	hashes    map[string]map[string]string
	lists     map[string][]string
	sets      map[string][]string
	zsets     map[string][]redisx.Member
	streams   map[string]int
	jsonErr   error
	jsonDocs  map[string]string
	rawDirect []string
}

func newRecordStore() *recordStore {
	return &recordStore{
		strings:  map[string]string{},
		hashes:   map[string]map[string]string{},
		lists:    map[string][]string{},
		sets:     map[string][]string{},
		zsets:    map[string][]redisx.Member{},
		streams:  map[string]int{},
		jsonDocs: map[string]string{},
	}
}

func (r *recordStore) FlushDB(ctx context.Context) error {
	r.flushed = true
	r.ops = append(r.ops, "FLUSHDB")
	return nil
}

func (r *recordStore) Set(ctx context.Context, key, value string) error {
	r.ops = append(r.ops, "SET")
	r.strings[key] = value
	return nil
}

func (r *recordStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	r.ops = append(r.ops, "HSET")
	r.hashes[key] = fields
	return nil
}

func (r *recordStore) RPush(ctx context.Context, key string, values ...string) error {
	r.ops = append(r.ops, "RPUSH")
	r.lists[key] = append(r.lists[key], values...)
	return nil
}

func (r *recordStore) SAdd(ctx context.Context, key string, members ...string) error {
	r.ops = append(r.ops, "SADD")
	r.sets[key] = append(r.sets[key], members...)
	return nil
}

func (r *recordStore) ZAdd(ctx context.Context, key string, members []redisx.Member) error {
	r.ops = append(r.ops, "ZADD")
	r.zsets[key] = append(r.zsets[key], members...)
	return nil
}

func (r *recordStore) XAdd(ctx context.Context, key string, fields map[string]string) error {
	r.ops = append(r.ops, "XADD")
	r.streams[key]++
	return nil
}

func (r *recordStore) JSONSet(ctx context.Context, key, doc string) error {
	if r.jsonErr != nil {
		return r.jsonErr
	}
	r.jsonDocs[key] = doc
	return nil
}

func (r *recordStore) Do(ctx context.Context, args ...any) (string, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	r.rawDirect = append(r.rawDirect, strings.Join(parts, " "))
	return "OK", nil
}

func TestRunFlushesFirst(t *testing.T) {
	store := newRecordStore()
	if err := Run(t.Context(), store, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !store.flushed {
		t.Fatal("database was not flushed")
	}
	if store.ops[0] != "FLUSHDB" {
		t.Errorf("first op = %q, want FLUSHDB", store.ops[0])
	}
}

func TestRunWritesDatasetShape(t *testing.T) {
	store := newRecordStore()
	if err := Run(t.Context(), store, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Flat simple keys plus the three-level nested namespace.
	if got := store.strings["seed:simple:0"]; got != "Simple value 0" {
		t.Errorf("seed:simple:0 = %q", got)
	}
	if _, ok := store.strings["seed:simple:99"]; !ok {
		t.Error("seed:simple:99 missing")
	}
	if _, ok := store.strings["seed:level1:9:level2:4:key:4"]; !ok {
		t.Error("deepest nested key missing")
	}

	// Alternate-delimiter keys stay flat under the default ':' delimiter.
	for _, key := range []string{"seed/path/num_0", "seed.dot.num_19", "seed-dash-num_7"} {
		if _, ok := store.strings[key]; !ok {
			t.Errorf("alternate-delimiter key %q missing", key)
		}
	}

	if len(store.hashes["seed:large_hash:0"]) != 50 {
		t.Errorf("large hash fields = %d, want 50", len(store.hashes["seed:large_hash:0"]))
	}
	if len(store.lists["seed:large_list:4"]) != 100 {
		t.Errorf("large list items = %d, want 100", len(store.lists["seed:large_list:4"]))
	}
	if len(store.sets["seed:large_set:0"]) != 75 {
		t.Errorf("large set members = %d, want 75", len(store.sets["seed:large_set:0"]))
	}
	if len(store.zsets["seed:large_zset:0"]) != 100 {
		t.Errorf("large zset members = %d, want 100", len(store.zsets["seed:large_zset:0"]))
	}
	if store.streams["seed:large_stream:2"] != 50 {
		t.Errorf("large stream entries = %d, want 50", store.streams["seed:large_stream:2"])
	}
}

func TestRunWritesShowcaseKeys(t *testing.T) {
	store := newRecordStore()
	if err := Run(t.Context(), store, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if store.strings["seed:string"] != "Hello from the lazyredis seeder!" {
		t.Errorf("seed:string = %q", store.strings["seed:string"])
	}
	if store.strings["seed:binary"] != "\x00\x01\x02\xfe\xff" {
		t.Errorf("seed:binary = %x", store.strings["seed:binary"])
	}
	if store.hashes["seed:hash"]["field2"] != "Another Value" {
		t.Errorf("seed:hash = %v", store.hashes["seed:hash"])
	}
	wantList := []string{"Item 1", "Item 2", "Item 3"}
	if diff := cmp.Diff(wantList, store.lists["seed:list"]); diff != "" {
		t.Errorf("seed:list mismatch (-want +got):\n%s", diff)
	}
	if store.streams["seed:stream"] != 3 {
		t.Errorf("seed:stream entries = %d, want 3", store.streams["seed:stream"])
	}

	var twenty bool
	for _, m := range store.zsets["seed:zset"] {
		if m.Member == "Twenty" && m.Score == 20 {
			twenty = true
		}
	}
	if !twenty {
		t.Errorf("seed:zset = %v", store.zsets["seed:zset"])
	}
}

func TestRunDrainsEmptyCollections(t *testing.T) {
	store := newRecordStore()
	if err := Run(t.Context(), store, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{
		"HSET seed:empty_hash placeholder x",
		"HDEL seed:empty_hash placeholder",
		"RPUSH seed:empty_list placeholder",
		"LPOP seed:empty_list",
		"SADD seed:empty_set placeholder",
		"SREM seed:empty_set placeholder",
		"ZADD seed:empty_zset 1 placeholder",
		"ZREM seed:empty_zset placeholder",
	}
	if diff := cmp.Diff(want, store.rawDirect); diff != "" {
		t.Errorf("empty-collection commands mismatch (-want +got):\n%s", diff)
	}
}

func TestRunSkipsJSONWhenModuleMissing(t *testing.T) {
	store := newRecordStore()
	store.jsonErr = fmt.Errorf("ERR unknown command 'JSON.SET'")

	if err := Run(t.Context(), store, nil); err != nil {
		t.Fatalf("Run() must tolerate a missing JSON module, got %v", err)
	}
	if len(store.jsonDocs) != 0 {
		t.Errorf("jsonDocs = %v, want none", store.jsonDocs)
	}
}

func TestRunStopsOnWriteError(t *testing.T) {
	store := &failingStore{recordStore: newRecordStore(), failKey: "seed:large_hash:0"}
	err := Run(t.Context(), store, nil)
	if err == nil {
		t.Fatal("expected write error to abort the run")
	}
	if !strings.Contains(err.Error(), "seed:large_hash:0") {
		t.Errorf("error = %v, want failing key named", err)
	}
}

type failingStore struct {
	*recordStore
	failKey string
}

func (f *failingStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if key == f.failKey {
		return fmt.Errorf("connection reset")
	}
	return f.recordStore.HSet(ctx, key, fields)
}
