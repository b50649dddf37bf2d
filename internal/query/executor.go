package query

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/electwix/querycache/internal/cache"
	"github.com/electwix/querycache/internal/logging"
)

// Result is a materialized query result. Rows are fully read before the
// result is returned or cached; nothing holds the underlying cursor open.
type Result struct {
	Columns []string
	Rows    []map[string]any
}

// Runner abstracts the database driver. Implementations materialize rows
// eagerly so results are safe to cache and share.
type Runner interface {
	// Run executes a read statement and materializes its rows.
	Run(ctx context.Context, query string, args []any) (*Result, error)
	// Exec executes a write statement and returns the affected row
	// count.
	Exec(ctx context.Context, query string, args []any) (int64, error)
}

// Executor runs statements through the result cache. Read-only statements
// (per IsCacheable) are served from cache when possible and stored after
// execution; writes pass through and fire annotation-driven invalidation.
type Executor struct {
	runner Runner
	cache  *cache.Manager
	log    logging.Logger
}

// NewExecutor wires a runner to a cache manager. mgr may be nil, in which
// case every statement executes uncached.
func NewExecutor(runner Runner, mgr *cache.Manager, log logging.Logger) *Executor {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Executor{runner: runner, cache: mgr, log: log}
}

// Query executes a read statement, consulting the cache first. The cached
// entry keeps the column list as metadata.
func (e *Executor) Query(ctx context.Context, query string, args ...any) (*Result, error) {
	if e.cache == nil || !IsCacheable(query) {
		return e.runner.Run(ctx, query, args)
	}
	if ann := ParseAnnotation(query); ann != nil && ann.Skip {
		return e.runner.Run(ctx, query, args)
	}

	if payload, ok := e.cache.Get(query, args); ok {
		if res, ok := payload.(*Result); ok {
			return res, nil
		}
		// A foreign payload under our key: treat as a miss.
		e.log.Warn("unexpected cached payload type", "query", query)
	}

	res, err := e.runner.Run(ctx, query, args)
	if err != nil {
		return nil, err
	}
	e.cache.Set(query, args, res, map[string]any{"columns": res.Columns})
	return res, nil
}

// Fetch executes a read statement without consulting or filling the
// cache. Used by warm-up, which stores results itself.
func (e *Executor) Fetch(ctx context.Context, query string, args ...any) (*Result, error) {
	return e.runner.Run(ctx, query, args)
}

// Exec executes a write statement. On success, patterns named by an
// `@cache invalidate=` annotation are removed from the cache.
func (e *Executor) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	affected, err := e.runner.Exec(ctx, query, args)
	if err != nil {
		return 0, err
	}

	if e.cache != nil {
		if ann := ParseAnnotation(query); ann != nil {
			for _, pattern := range ann.Invalidate {
				removed := e.cache.Invalidate(pattern)
				e.log.Debug("write invalidated cache entries",
					"pattern", pattern, "removed", removed)
			}
		}
	}
	return affected, nil
}

// DBTX is the subset of database/sql the SQL runner needs; *sql.DB and
// *sql.Tx both satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// SQLRunner materializes results through database/sql.
type SQLRunner struct {
	db DBTX
}

// NewSQLRunner wraps a database/sql handle.
func NewSQLRunner(db DBTX) *SQLRunner {
	return &SQLRunner{db: db}
}

// Run executes the statement and scans every row into a column-name map.
func (r *SQLRunner) Run(ctx context.Context, query string, args []any) (*Result, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	res := &Result{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return res, nil
}

// Exec executes a write statement.
func (r *SQLRunner) Exec(ctx context.Context, query string, args []any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("execute statement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil //nolint:nilerr // drivers without RowsAffected support still succeed
	}
	return affected, nil
}

var _ Runner = (*SQLRunner)(nil)
