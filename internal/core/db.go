// Package core provides statement compilation, the staged insert builder and
// the database/sql execution collaborator for sqlstage.
package core

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/coregx/sqlstage/internal/cache"
	"github.com/coregx/sqlstage/internal/dialects"
	"github.com/coregx/sqlstage/internal/logger"
	"github.com/coregx/sqlstage/internal/schema"
	"github.com/coregx/sqlstage/internal/security"
	"github.com/coregx/sqlstage/internal/tracer"
)

// DB is a database handle that builds inserts for its dialect and executes
// them with statement caching, logging and tracing.
type DB struct {
	sqlDB      *sql.DB
	driverName string
	dialect    dialects.Dialect
	stmtCache  *cache.StmtCache
	logger     logger.Logger
	sanitizer  *logger.Sanitizer
	tracer     tracer.Tracer
	queryHook  QueryHook
	auditor    *security.Auditor
	quote      QuoteMode
	ownsDB     bool

	healthInterval time.Duration
	health         *healthChecker
}

// Tx represents a database transaction.
type Tx struct {
	tx *sql.Tx
	db *DB
}

// TxOptions represents transaction options including isolation level.
type TxOptions struct {
	// Isolation level for the transaction (e.g., sql.LevelReadCommitted)
	Isolation sql.IsolationLevel
	// ReadOnly indicates whether the transaction is read-only
	ReadOnly bool
}

// Option is a functional option for configuring DB.
type Option func(*DB)

// WithMaxOpenConns sets the maximum number of open connections.
func WithMaxOpenConns(n int) Option {
	return func(db *DB) {
		db.sqlDB.SetMaxOpenConns(n)
	}
}

// WithMaxIdleConns sets the maximum number of idle connections.
func WithMaxIdleConns(n int) Option {
	return func(db *DB) {
		db.sqlDB.SetMaxIdleConns(n)
	}
}

// WithStmtCacheCapacity sets the prepared statement cache capacity.
func WithStmtCacheCapacity(capacity int) Option {
	return func(db *DB) {
		db.stmtCache = cache.NewStmtCacheWithCapacity(capacity)
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logger.Logger) Option {
	return func(db *DB) {
		if l != nil {
			db.logger = l
		}
	}
}

// WithSensitiveFields replaces the column names whose values are masked in logs.
func WithSensitiveFields(fields ...string) Option {
	return func(db *DB) {
		db.sanitizer = logger.NewSanitizer(fields)
	}
}

// WithTracer sets the tracer. The default is a no-op tracer.
func WithTracer(t tracer.Tracer) Option {
	return func(db *DB) {
		if t != nil {
			db.tracer = t
		}
	}
}

// WithQueryHook sets a callback invoked after every execution.
func WithQueryHook(hook QueryHook) Option {
	return func(db *DB) {
		db.queryHook = hook
	}
}

// WithAuditor records an audit event for executions selected by the
// auditor's level. Parameter values are digested, never logged.
func WithAuditor(a *security.Auditor) Option {
	return func(db *DB) {
		db.auditor = a
	}
}

// WithQuoteMode sets the identifier quoting policy of compiled statements.
func WithQuoteMode(mode QuoteMode) Option {
	return func(db *DB) {
		db.quote = mode
	}
}

func newDB(sqlDB *sql.DB, driverName string, owns bool) (*DB, error) {
	dialect, ok := dialects.Lookup(driverName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDialect, driverName)
	}
	return &DB{
		sqlDB:      sqlDB,
		driverName: driverName,
		dialect:    dialect,
		stmtCache:  cache.NewStmtCache(),
		logger:     &logger.NoopLogger{},
		sanitizer:  logger.NewSanitizer(nil),
		tracer:     &tracer.NoopTracer{},
		ownsDB:     owns,
	}, nil
}

// NewDB opens a database for a registered driver name. The dialect is chosen
// from the driver name.
func NewDB(driverName, dsn string) (*DB, error) {
	if _, ok := dialects.Lookup(driverName); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDialect, driverName)
	}
	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	return newDB(sqlDB, driverName, true)
}

// Open creates a new DB instance with options.
func Open(driverName, dsn string, opts ...Option) (*DB, error) {
	db, err := NewDB(driverName, dsn)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(db)
	}
	db.startHealthCheck()
	db.logger.Info("database opened",
		"driver", driverName,
		"dialect", db.dialect.ID().String(),
		"dsn", RedactDSN(driverName, dsn),
	)
	return db, nil
}

// WrapDB wraps an existing *sql.DB. driverName selects the dialect. Close
// releases cached statements but leaves the wrapped pool open.
func WrapDB(sqlDB *sql.DB, driverName string, opts ...Option) (*DB, error) {
	db, err := newDB(sqlDB, driverName, false)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(db)
	}
	db.startHealthCheck()
	return db, nil
}

// Close releases cached statements and, unless the pool was wrapped, the pool.
func (db *DB) Close() error {
	if db.health != nil {
		db.health.shutdown()
	}
	db.stmtCache.Clear()
	if !db.ownsDB {
		return nil
	}
	return db.sqlDB.Close()
}

// DriverName returns the driver name the DB was opened with.
func (db *DB) DriverName() string {
	return db.driverName
}

// Dialect returns the dialect statements are compiled for.
func (db *DB) Dialect() dialects.Dialect {
	return db.dialect
}

// SQLDB returns the underlying pool.
func (db *DB) SQLDB() *sql.DB {
	return db.sqlDB
}

// CacheStats returns prepared statement cache metrics.
func (db *DB) CacheStats() cache.Stats {
	return db.stmtCache.Stats()
}

// Insert starts a staged insert into table that executes on db.
func (db *DB) Insert(table *schema.Table) *InsertQuery {
	q := NewInsert(db.dialect, table).WithExecutor(db).WithQuoting(db.quote)
	q.logger = db.logger
	return q
}

// Compile compiles a statement or expression for this database's dialect.
func (db *DB) Compile(stmt dialects.Operand) (string, []interface{}, error) {
	return Compile(stmt, db.dialect, WithQuoting(db.quote))
}

// Exec implements Executor.
func (db *DB) Exec(ctx context.Context, sqlText string, params []interface{}) (sql.Result, error) {
	q := &query{sql: sqlText, params: params, db: db}
	return q.exec(ctx)
}

// QueryColumn implements Executor.
func (db *DB) QueryColumn(ctx context.Context, sqlText string, params []interface{}) ([]interface{}, error) {
	q := &query{sql: sqlText, params: params, db: db}
	return q.column(ctx)
}

// Begin starts a transaction with default options.
func (db *DB) Begin(ctx context.Context) (*Tx, error) {
	return db.BeginTx(ctx, nil)
}

// BeginTx starts a transaction with specified options.
func (db *DB) BeginTx(ctx context.Context, opts *TxOptions) (*Tx, error) {
	var sqlOpts *sql.TxOptions
	if opts != nil {
		sqlOpts = &sql.TxOptions{
			Isolation: opts.Isolation,
			ReadOnly:  opts.ReadOnly,
		}
	}

	tx, err := db.sqlDB.BeginTx(ctx, sqlOpts)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx, db: db}, nil
}

// Insert starts a staged insert into table that executes in the transaction.
func (tx *Tx) Insert(table *schema.Table) *InsertQuery {
	q := NewInsert(tx.db.dialect, table).WithExecutor(tx).WithQuoting(tx.db.quote)
	q.logger = tx.db.logger
	return q
}

// Exec implements Executor.
func (tx *Tx) Exec(ctx context.Context, sqlText string, params []interface{}) (sql.Result, error) {
	q := &query{sql: sqlText, params: params, db: tx.db, tx: tx.tx}
	return q.exec(ctx)
}

// QueryColumn implements Executor.
func (tx *Tx) QueryColumn(ctx context.Context, sqlText string, params []interface{}) ([]interface{}, error) {
	q := &query{sql: sqlText, params: params, db: tx.db, tx: tx.tx}
	return q.column(ctx)
}

// Commit commits the transaction.
func (tx *Tx) Commit() error {
	return tx.tx.Commit()
}

// Rollback rolls back the transaction.
func (tx *Tx) Rollback() error {
	return tx.tx.Rollback()
}

// ExecContext executes raw SQL, bypassing logging and the statement cache.
func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return db.sqlDB.ExecContext(ctx, query, args...)
}

// QueryContext executes raw SQL and returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.sqlDB.QueryContext(ctx, query, args...)
}

// QueryRowContext executes raw SQL expected to return at most one row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return db.sqlDB.QueryRowContext(ctx, query, args...)
}
