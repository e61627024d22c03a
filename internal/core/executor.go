package core

import (
	"context"
	"database/sql"
)

// Executor sends compiled SQL to a database. It receives exactly the text and
// parameters produced by the compiler; placeholder i binds params[i].
// Implementations must not retry, and must return driver errors unchanged.
type Executor interface {
	// Exec runs a statement that returns no rows.
	Exec(ctx context.Context, query string, params []interface{}) (sql.Result, error)
	// QueryColumn runs a statement and returns the first column of every row.
	QueryColumn(ctx context.Context, query string, params []interface{}) ([]interface{}, error)
}

var (
	_ Executor = (*DB)(nil)
	_ Executor = (*Tx)(nil)
)
