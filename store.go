package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"maps"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

/* ─── Gateway contract ───────────────────────────────────────────────── */

// row is one flat string-keyed record as the backing store returns it.
// Numeric fields may carry locale formatting; the adapters in models.go are
// the only place row values get interpreted.
type row map[string]string

// Logical table names shared by every gateway implementation.
const (
	tabFoods    = "foods"
	tabEntries  = "entries"
	tabSettings = "settings"
)

// tableStore is the storage gateway: tabular append/update/delete/list keyed
// by the synthetic "id" field. Implementation-agnostic — the backing store
// only has to round-trip flat text records.
type tableStore interface {
	ListRows(ctx context.Context, table string) ([]row, error)
	AppendRow(ctx context.Context, table string, r row) error
	UpdateRow(ctx context.Context, table string, id int64, partial row) error
	DeleteRow(ctx context.Context, table string, id int64) error
}

// errStorageUnavailable is the single distinguishable failure surfaced after
// the gateway's retry budget is exhausted. Handlers map it to 503 so the
// frontend can show a retry affordance.
var errStorageUnavailable = errors.New("storage unavailable")

// errRowNotFound is returned by UpdateRow when no row carries the id.
// Not retried — absence is a stable answer, not a transient fault.
var errRowNotFound = errors.New("row not found")

// newRowID returns a time-derived synthetic id: millisecond timestamp shifted
// to leave room for a random suffix. Deliberately NOT max(id)+1 — that would
// need a read-before-write scan and two tabs writing at once could collide on
// a sequential counter.
func newRowID() int64 {
	return time.Now().UnixMilli()*1000 + rand.Int63n(1000)
}

/* ─── Postgres implementation ────────────────────────────────────────── */

// tableColumns declares each logical table's column set. Everything except id
// is TEXT in the schema: the gateway hands values through untouched and the
// normalization helpers own all interpretation, which keeps rows imported
// from the old spreadsheet (European decimals, slash dates) readable.
var tableColumns = map[string][]string{
	tabFoods:    {"id", "name", "category", "calories", "protein", "carbs", "fat"},
	tabEntries:  {"id", "user_id", "entry_date", "meal", "name", "grams", "calories", "protein", "carbs", "fat"},
	tabSettings: {"id", "key", "value"},
}

// pgStore is the PostgreSQL gateway. Every operation runs under a bounded
// exponential-backoff retry because the hosted database enforces a request
// quota and sheds load with transient errors.
type pgStore struct {
	pool *pgxpool.Pool
}

func newPGStore(pool *pgxpool.Pool) *pgStore {
	return &pgStore{pool: pool}
}

const (
	storeAttempts    = 4
	storeBackoffBase = 200 * time.Millisecond
)

// withRetry runs fn up to storeAttempts times with exponential backoff and
// jitter. Exhaustion wraps the last error in errStorageUnavailable; context
// cancellation aborts immediately.
func withRetry(ctx context.Context, op string, fn func() error) error {
	backoff := storeBackoffBase
	var err error
	for attempt := 1; attempt <= storeAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, errRowNotFound) {
			return err
		}
		if attempt == storeAttempts {
			break
		}
		log.Printf("[store] %s attempt %d failed, retrying: %v", op, attempt, err)
		delay := backoff + time.Duration(rand.Int63n(int64(backoff/2)))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
	return fmt.Errorf("%s: %w: %v", op, errStorageUnavailable, err)
}

func (s *pgStore) ListRows(ctx context.Context, table string) ([]row, error) {
	cols, ok := tableColumns[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}

	// Cast every column to text so the scan shape is uniform across tables.
	exprs := make([]string, len(cols))
	for i, c := range cols {
		exprs[i] = c + "::text"
	}
	sql := "SELECT " + strings.Join(exprs, ", ") + " FROM " + table + " ORDER BY id"

	var out []row
	err := withRetry(ctx, "list "+table, func() error {
		rows, err := s.pool.Query(ctx, sql)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = out[:0]
		vals := make([]*string, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		for rows.Next() {
			if err := rows.Scan(ptrs...); err != nil {
				return err
			}
			r := make(row, len(cols))
			for i, c := range cols {
				if vals[i] != nil {
					r[c] = *vals[i]
				}
			}
			out = append(out, r)
		}
		return rows.Err()
	})
	return out, err
}

func (s *pgStore) AppendRow(ctx context.Context, table string, r row) error {
	cols, ok := tableColumns[table]
	if !ok {
		return fmt.Errorf("unknown table %q", table)
	}

	names := make([]string, 0, len(cols))
	marks := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols))
	for _, c := range cols {
		v, present := r[c]
		if !present {
			continue
		}
		names = append(names, c)
		marks = append(marks, fmt.Sprintf("$%d", len(args)+1))
		if c == "id" {
			args = append(args, toID(v))
		} else {
			args = append(args, v)
		}
	}
	sql := "INSERT INTO " + table + " (" + strings.Join(names, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"

	return withRetry(ctx, "append "+table, func() error {
		_, err := s.pool.Exec(ctx, sql, args...)
		return err
	})
}

func (s *pgStore) UpdateRow(ctx context.Context, table string, id int64, partial row) error {
	cols, ok := tableColumns[table]
	if !ok {
		return fmt.Errorf("unknown table %q", table)
	}

	sets := make([]string, 0, len(partial))
	args := make([]any, 0, len(partial)+1)
	for _, c := range cols {
		if c == "id" {
			continue
		}
		v, present := partial[c]
		if !present {
			continue
		}
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", c, len(args)))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	sql := "UPDATE " + table + " SET " + strings.Join(sets, ", ") + fmt.Sprintf(" WHERE id = $%d", len(args))

	return withRetry(ctx, "update "+table, func() error {
		tag, err := s.pool.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%s id %d: %w", table, id, errRowNotFound)
		}
		return nil
	})
}

func (s *pgStore) DeleteRow(ctx context.Context, table string, id int64) error {
	if _, ok := tableColumns[table]; !ok {
		return fmt.Errorf("unknown table %q", table)
	}
	sql := "DELETE FROM " + table + " WHERE id = $1"
	return withRetry(ctx, "delete "+table, func() error {
		_, err := s.pool.Exec(ctx, sql, id)
		return err
	})
}

/* ─── In-memory implementation ───────────────────────────────────────── */

// memStore keeps tables in memory with the same contract as pgStore.
// Used by the test suite so handlers run without a database.
type memStore struct {
	mu     sync.Mutex
	tables map[string][]row
}

func newMemStore() *memStore {
	return &memStore{tables: make(map[string][]row)}
}

func (s *memStore) ListRows(_ context.Context, table string) ([]row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	src := s.tables[table]
	out := make([]row, len(src))
	for i, r := range src {
		out[i] = maps.Clone(r)
	}
	return out, nil
}

func (s *memStore) AppendRow(_ context.Context, table string, r row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = append(s.tables[table], maps.Clone(r))
	return nil
}

func (s *memStore) UpdateRow(_ context.Context, table string, id int64, partial row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.tables[table] {
		if toID(r["id"]) == id {
			maps.Copy(r, partial)
			r["id"] = formatID(id) // id itself is never rewritten by a partial
			return nil
		}
	}
	return fmt.Errorf("%s id %d: %w", table, id, errRowNotFound)
}

func (s *memStore) DeleteRow(_ context.Context, table string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.tables[table]
	for i, r := range rows {
		if toID(r["id"]) == id {
			s.tables[table] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}
	return nil
}
