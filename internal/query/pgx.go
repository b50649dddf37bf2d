package query

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxConn is the subset of pgx the runner needs; *pgxpool.Pool and
// *pgx.Conn both satisfy it.
type PgxConn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PgxRunner materializes results through pgx for PostgreSQL databases.
type PgxRunner struct {
	conn PgxConn
}

// NewPgxRunner wraps a pgx connection or pool.
func NewPgxRunner(conn PgxConn) *PgxRunner {
	return &PgxRunner{conn: conn}
}

// Run executes the statement and materializes every row.
func (r *PgxRunner) Run(ctx context.Context, query string, args []any) (*Result, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, fd := range fields {
		cols[i] = fd.Name
	}

	res := &Result{Columns: cols}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
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
func (r *PgxRunner) Exec(ctx context.Context, query string, args []any) (int64, error) {
	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("execute statement: %w", err)
	}
	return tag.RowsAffected(), nil
}

var _ Runner = (*PgxRunner)(nil)
