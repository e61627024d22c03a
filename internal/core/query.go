package core

import (
	"context"
	"database/sql"
	"time"

	"github.com/coregx/sqlstage/internal/logger"
	"github.com/coregx/sqlstage/internal/security"
	"github.com/coregx/sqlstage/internal/tracer"
)

// query is one execution of compiled SQL. When tx is not nil it runs inside
// that transaction and bypasses the statement cache.
type query struct {
	sql    string
	params []interface{}
	db     *DB
	tx     *sql.Tx
}

// prepareStatement prepares the SQL, using the transaction or the statement cache.
// The returned bool reports whether the caller must close the statement.
func (q *query) prepareStatement(ctx context.Context) (*sql.Stmt, bool, error) {
	if q.tx != nil {
		stmt, err := q.tx.PrepareContext(ctx, q.sql)
		if err != nil {
			return nil, false, err
		}
		return stmt, true, nil
	}
	stmt, err := q.db.stmtCache.Prepare(ctx, q.sql, q.db.sqlDB.PrepareContext)
	return stmt, false, err
}

// exec runs a statement that returns no rows. The driver is called exactly
// once and its error is returned unchanged.
func (q *query) exec(ctx context.Context) (sql.Result, error) {
	ctx, span := q.db.tracer.StartSpan(ctx, "sqlstage.exec")
	defer span.End()

	start := time.Now()
	stmt, needsClose, err := q.prepareStatement(ctx)
	if err != nil {
		q.finish(ctx, span, "statement preparation failed", time.Since(start), 0, err)
		return nil, err
	}
	if needsClose {
		defer func() { _ = stmt.Close() }()
	}

	result, err := stmt.ExecContext(ctx, q.params...)
	var rowsAffected int64
	if err == nil {
		rowsAffected, _ = result.RowsAffected()
	}
	q.finish(ctx, span, "statement executed", time.Since(start), rowsAffected, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// column runs a statement and collects the first column of every row.
func (q *query) column(ctx context.Context) ([]interface{}, error) {
	ctx, span := q.db.tracer.StartSpan(ctx, "sqlstage.query_column")
	defer span.End()

	start := time.Now()
	stmt, needsClose, err := q.prepareStatement(ctx)
	if err != nil {
		q.finish(ctx, span, "statement preparation failed", time.Since(start), 0, err)
		return nil, err
	}
	if needsClose {
		defer func() { _ = stmt.Close() }()
	}

	values, err := scanFirstColumn(stmt.QueryContext(ctx, q.params...))
	q.finish(ctx, span, "statement returned rows", time.Since(start), int64(len(values)), err)
	if err != nil {
		return nil, err
	}
	return values, nil
}

func scanFirstColumn(rows *sql.Rows, err error) ([]interface{}, error) {
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	dest := make([]interface{}, len(cols))
	for i := range dest {
		dest[i] = new(interface{})
	}

	var values []interface{}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		values = append(values, *(dest[0].(*interface{})))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

// finish logs the execution, annotates the span and invokes the query hook.
func (q *query) finish(ctx context.Context, span tracer.Span, msg string, elapsed time.Duration, rows int64, err error) {
	operation := tracer.DetectOperation(q.sql)
	table := tracer.DetectTable(q.sql)
	params := q.db.sanitizer.FormatParams(q.db.sanitizer.MaskParams(q.sql, q.params))

	logger.LogStatement(q.db.logger, msg, logger.Statement{
		SQL:          q.sql,
		Params:       params,
		Table:        table,
		Database:     q.db.driverName,
		Elapsed:      elapsed,
		RowsAffected: rows,
		Err:          err,
	})

	tracer.RecordStatement(span, tracer.Statement{
		SQL:          q.sql,
		ParamCount:   len(q.params),
		Elapsed:      elapsed,
		RowsAffected: rows,
		Err:          err,
		System:       q.db.dialect.ID().String(),
		Operation:    operation,
		Table:        table,
	})

	q.db.auditor.Record(ctx, security.Execution{
		Operation:    operation,
		Table:        table,
		SQL:          q.sql,
		Args:         q.params,
		RowsAffected: rows,
		Duration:     elapsed,
		Err:          err,
	})

	q.db.invokeHook(ctx, QueryEvent{
		SQL:          q.sql,
		Args:         q.params,
		Duration:     elapsed,
		RowsAffected: rows,
		Error:        err,
		Operation:    operation,
		Table:        table,
	})
}
