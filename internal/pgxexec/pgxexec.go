// Package pgxexec executes compiled statements on PostgreSQL through pgx
// without going through database/sql.
package pgxexec

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coregx/sqlstage/internal/core"
	"github.com/coregx/sqlstage/internal/dialects"
	"github.com/coregx/sqlstage/internal/logger"
	"github.com/coregx/sqlstage/internal/schema"
	"github.com/coregx/sqlstage/internal/tracer"
)

// ErrNoLastInsertID is returned by Result.LastInsertId. PostgreSQL reports
// generated keys through RETURNING instead.
var ErrNoLastInsertID = errors.New("pgxexec: LastInsertId is not supported, use RETURNING")

// Querier is the subset of *pgxpool.Pool, *pgx.Conn and pgx.Tx used here.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Executor implements core.Executor on a pgx Querier. Parameters are passed
// to pgx exactly as compiled and errors are returned unchanged.
type Executor struct {
	q         Querier
	logger    logger.Logger
	sanitizer *logger.Sanitizer
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logger.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New wraps q.
func New(q Querier, opts ...Option) *Executor {
	e := &Executor{q: q, logger: &logger.NoopLogger{}, sanitizer: logger.NewSanitizer(nil)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Connect opens a pgx pool for dsn. The returned close function releases it.
func Connect(ctx context.Context, dsn string, opts ...Option) (*Executor, func(), error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return New(pool, opts...), pool.Close, nil
}

// Insert starts a staged insert into table that executes through e.
func (e *Executor) Insert(table *schema.Table) *core.InsertQuery {
	return core.NewInsert(dialects.GetDialect("pgx"), table).WithExecutor(e)
}

// Exec implements core.Executor.
func (e *Executor) Exec(ctx context.Context, query string, params []interface{}) (sql.Result, error) {
	start := time.Now()
	tag, err := e.q.Exec(ctx, query, params...)
	e.log("statement executed", query, params, time.Since(start), tag.RowsAffected(), err)
	if err != nil {
		return nil, err
	}
	return Result{tag: tag}, nil
}

// QueryColumn implements core.Executor.
func (e *Executor) QueryColumn(ctx context.Context, query string, params []interface{}) ([]interface{}, error) {
	start := time.Now()
	values, err := e.queryColumn(ctx, query, params)
	e.log("statement returned rows", query, params, time.Since(start), int64(len(values)), err)
	if err != nil {
		return nil, err
	}
	return values, nil
}

func (e *Executor) log(msg, query string, params []interface{}, elapsed time.Duration, rows int64, err error) {
	logger.LogStatement(e.logger, msg, logger.Statement{
		SQL:          query,
		Params:       e.sanitizer.FormatParams(e.sanitizer.MaskParams(query, params)),
		Table:        tracer.DetectTable(query),
		Database:     "postgresql",
		Elapsed:      elapsed,
		RowsAffected: rows,
		Err:          err,
	})
}

func (e *Executor) queryColumn(ctx context.Context, query string, params []interface{}) ([]interface{}, error) {
	rows, err := e.q.Query(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []interface{}
	for rows.Next() {
		row, err := rows.Values()
		if err != nil {
			return nil, err
		}
		if len(row) > 0 {
			values = append(values, row[0])
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

// Result adapts a pgconn.CommandTag to sql.Result.
type Result struct {
	tag pgconn.CommandTag
}

// LastInsertId always fails; see ErrNoLastInsertID.
func (r Result) LastInsertId() (int64, error) {
	return 0, ErrNoLastInsertID
}

// RowsAffected returns the row count reported by the server.
func (r Result) RowsAffected() (int64, error) {
	return r.tag.RowsAffected(), nil
}

var _ core.Executor = (*Executor)(nil)
