package cache

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// countingDriver prepares statements that cannot run and counts how many
// reached the driver, so tests can tell cache hits from fresh prepares.
type countingDriver struct {
	prepared atomic.Int64
}

type countingConn struct {
	d *countingDriver
}

type countingStmt struct{}

func (d *countingDriver) Open(_ string) (driver.Conn, error) {
	return &countingConn{d: d}, nil
}

func (c *countingConn) Prepare(_ string) (driver.Stmt, error) {
	c.d.prepared.Add(1)
	return countingStmt{}, nil
}

func (c *countingConn) Close() error { return nil }

func (c *countingConn) Begin() (driver.Tx, error) { return nil, driver.ErrSkip }

func (countingStmt) Close() error  { return nil }
func (countingStmt) NumInput() int { return -1 }

func (countingStmt) Exec(_ []driver.Value) (driver.Result, error) {
	return driver.RowsAffected(1), nil
}

func (countingStmt) Query(_ []driver.Value) (driver.Rows, error) {
	return nil, driver.ErrSkip
}

var driverSeq atomic.Uint64

// newCountingDB registers a fresh counting driver and opens a pool on it.
func newCountingDB(t *testing.T) (*sql.DB, *countingDriver) {
	t.Helper()
	d := &countingDriver{}
	name := fmt.Sprintf("sqlstage-counting-%d", driverSeq.Add(1))
	sql.Register(name, d)

	db, err := sql.Open(name, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, d
}
