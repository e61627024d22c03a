package core

import (
	"context"
	"time"
)

// QueryEvent contains information about an executed statement.
// This is passed to QueryHook callbacks for logging, metrics, or tracing.
type QueryEvent struct {
	// SQL is the executed SQL text
	SQL string
	// Args are the bound parameters, unmasked
	Args []interface{}
	// Duration is how long the execution took
	Duration time.Duration
	// RowsAffected is the number of rows affected, or the number of rows returned by QueryColumn
	RowsAffected int64
	// Error is the error returned by the database (nil on success)
	Error error
	// Operation is the SQL operation type (INSERT, SELECT, ...)
	Operation string
	// Table is the target table of an INSERT, if it could be detected
	Table string
}

// QueryHook is a callback function invoked after each execution.
//
// Example:
//
//	db, _ := sqlstage.Open("sqlite", ":memory:",
//	    sqlstage.WithQueryHook(func(ctx context.Context, e sqlstage.QueryEvent) {
//	        slog.Info("insert", "sql", e.SQL, "duration", e.Duration, "err", e.Error)
//	    }))
type QueryHook func(ctx context.Context, event QueryEvent)

// invokeHook calls the query hook if set.
func (db *DB) invokeHook(ctx context.Context, event QueryEvent) {
	if db.queryHook != nil {
		db.queryHook(ctx, event)
	}
}
