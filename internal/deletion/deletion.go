// Package deletion stages and executes bulk key removal: single keys,
// whole prefixes, and heterogeneous multi-selections. Work is issued in
// bounded batches so one confirm never turns into one request per key or
// one unbounded request.
package deletion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// DefaultBatchSize is the number of keys sent per delete call.
const DefaultBatchSize = 500

// scanCount is the page size used when expanding a prefix.
const scanCount = 100

// Store is the slice of the session surface the executor needs.
type Store interface {
	ScanPage(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error)
	DeleteKey(ctx context.Context, key string) (bool, error)
	DeleteBatch(ctx context.Context, keys []string) (int64, error)
}

// Target is one staged deletion: an exact key, or everything under a
// prefix. Exactly one field is set.
type Target struct {
	Key    string
	Prefix string
}

// Key stages an exact-key deletion.
func Key(k string) Target { return Target{Key: k} }

// Prefix stages a delete-everything-under deletion.
func Prefix(p string) Target { return Target{Prefix: p} }

func (t Target) String() string {
	if t.Prefix != "" {
		return t.Prefix + "*"
	}
	return t.Key
}

// Result aggregates a run: how many keys were removed and the per-batch
// errors of whatever failed. A partial failure still reports the removals
// that did happen; nothing is rolled back.
type Result struct {
	Deleted int64
	Errs    []string
}

// Failed reports whether any batch or scan failed.
func (r Result) Failed() bool { return len(r.Errs) > 0 }

// Summary renders the user-facing outcome line.
func (r Result) Summary() string {
	if !r.Failed() {
		return fmt.Sprintf("Deleted %d keys", r.Deleted)
	}
	return fmt.Sprintf("Deleted %d keys; %d errors: %s", r.Deleted, len(r.Errs), strings.Join(r.Errs, "; "))
}

// Executor runs staged deletions against a store session.
type Executor struct {
	store     Store
	batchSize int
	logger    *slog.Logger
}

// NewExecutor creates an executor with the default batch size.
func NewExecutor(store Store) *Executor {
	return &Executor{
		store:     store,
		batchSize: DefaultBatchSize,
		logger:    slog.Default(),
	}
}

// WithBatchSize overrides the batch size.
func (e *Executor) WithBatchSize(n int) *Executor {
	if n > 0 {
		e.batchSize = n
	}
	return e
}

// WithLogger sets the logger.
func (e *Executor) WithLogger(logger *slog.Logger) *Executor {
	e.logger = logger
	return e
}

// DeleteOne removes a single key. The bool reports whether the key existed;
// an already-gone key is a reportable outcome, not an error.
func (e *Executor) DeleteOne(ctx context.Context, key string) (bool, error) {
	return e.store.DeleteKey(ctx, key)
}

// Run executes a staged target list. Exact keys coalesce into one batching
// buffer; a prefix target flushes the buffer, then streams its SCAN pages
// through the same buffer, so every delete call stays within the batch
// size regardless of target order. Per-batch and per-scan failures are
// collected into the result and do not stop the run.
func (e *Executor) Run(ctx context.Context, targets []Target) Result {
	var res Result
	buf := make([]string, 0, e.batchSize)

	flush := func() {
		if len(buf) == 0 {
			return
		}
		n, err := e.store.DeleteBatch(ctx, buf)
		if err != nil {
			e.logger.Warn("delete batch failed", "keys", len(buf), "error", err)
			res.Errs = append(res.Errs, fmt.Sprintf("batch of %d: %v", len(buf), err))
		} else {
			res.Deleted += n
		}
		buf = buf[:0]
	}

	for _, t := range targets {
		if ctx.Err() != nil {
			res.Errs = append(res.Errs, ctx.Err().Error())
			break
		}
		if t.Prefix == "" {
			buf = append(buf, t.Key)
			if len(buf) >= e.batchSize {
				flush()
			}
			continue
		}

		// Prefix entry: flush buffered exact keys first, then stream the
		// prefix's keys through the same bounded buffer.
		flush()
		pattern := t.Prefix + "*"
		var cursor uint64
		for {
			keys, next, err := e.store.ScanPage(ctx, cursor, pattern, scanCount)
			if err != nil {
				e.logger.Warn("prefix scan failed", "prefix", t.Prefix, "error", err)
				res.Errs = append(res.Errs, fmt.Sprintf("scan %q: %v", pattern, err))
				break
			}
			for _, k := range keys {
				buf = append(buf, k)
				if len(buf) >= e.batchSize {
					flush()
				}
			}
			if next == 0 {
				break
			}
			cursor = next
		}
	}
	flush()

	e.logger.Info("deletion finished", "deleted", res.Deleted, "errors", len(res.Errs))
	return res
}
