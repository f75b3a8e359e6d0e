package fake_db

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Call struct {
	Sql  string
	Args []any
	// Deadline is set when the statement ran under a context with a deadline.
	Deadline bool
}

// DB answers the statements of the descriptors mounted on it.
type DB struct {
	mu      sync.Mutex
	queries map[string]func(args []any) (*Rows, error)
	execs   map[string]func(args []any) (int64, error)
	calls   []Call
}

func New() *DB {
	return &DB{
		queries: make(map[string]func(args []any) (*Rows, error)),
		execs:   make(map[string]func(args []any) (int64, error)),
	}
}

func (db *DB) OnQuery(sql string, f func(args []any) (*Rows, error)) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.queries[sql] = f
}

func (db *DB) OnExec(sql string, f func(args []any) (int64, error)) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.execs[sql] = f
}

func (db *DB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, deadline := ctx.Deadline()
	db.mu.Lock()
	db.calls = append(db.calls, Call{Sql: sql, Args: args, Deadline: deadline})
	f, ok := db.queries[sql]
	db.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unexpected query %q", sql)
	}
	return f(args)
}

func (db *DB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if err := ctx.Err(); err != nil {
		return pgconn.CommandTag{}, err
	}
	_, deadline := ctx.Deadline()
	db.mu.Lock()
	db.calls = append(db.calls, Call{Sql: sql, Args: args, Deadline: deadline})
	f, ok := db.execs[sql]
	db.mu.Unlock()
	if !ok {
		return pgconn.CommandTag{}, fmt.Errorf("unexpected exec %q", sql)
	}
	n, err := f(args)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	return pgconn.NewCommandTag(fmt.Sprintf("EXEC %d", n)), nil
}

// Calls returns the statements received so far, queries and execs alike.
func (db *DB) Calls() []Call {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]Call(nil), db.calls...)
}

// LastCall returns the most recent statement received.
func (db *DB) LastCall() (Call, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if len(db.calls) == 0 {
		return Call{}, false
	}
	return db.calls[len(db.calls)-1], true
}

// QueryCount is the number of calls received for sql.
func (db *DB) QueryCount(sql string) int {
	n := 0
	for _, c := range db.Calls() {
		if c.Sql == sql {
			n++
		}
	}
	return n
}
