//go:build integration
// +build integration

package test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO required)

	"github.com/coregx/sqlstage"
)

// messages mirrors the table created by CreateMessagesTable.
var messages = sqlstage.NewTable("messages",
	sqlstage.NewColumn("id", sqlstage.TypeBigint).AsAutoID(),
	sqlstage.NewColumn("mailbox_id", sqlstage.TypeInt),
	sqlstage.NewColumn("user_id", sqlstage.TypeInt),
	sqlstage.NewColumn("uid", sqlstage.TypeInt),
	sqlstage.NewColumn("status", sqlstage.TypeInt).WithDefault(),
	sqlstage.NewColumn("size", sqlstage.TypeInt).WithDefault(),
	sqlstage.NewColumn("subject", sqlstage.TypeString).AsOptional(),
	sqlstage.NewColumn("created_at", sqlstage.TypeTimestamp).WithDefault(),
)

// DatabaseSetup encapsulates database connection and cleanup.
type DatabaseSetup struct {
	DB        *sqlstage.DB
	DSN       string
	Container testcontainers.Container
	Dialect   string
}

// Close cleans up database resources.
func (ds *DatabaseSetup) Close() {
	if ds.DB != nil {
		ds.DB.Close() //nolint:errcheck
	}
	if ds.Container != nil {
		ds.Container.Terminate(context.Background()) //nolint:errcheck
	}
}

// SetupPostgreSQLTestDB creates a PostgreSQL test database.
// Uses testcontainers if available, falls back to env DSN.
func SetupPostgreSQLTestDB(t *testing.T) *DatabaseSetup {
	ctx := context.Background()

	// Check for manual DSN first (allows testing without Docker)
	if dsn := os.Getenv("POSTGRES_TEST_DSN"); dsn != "" {
		db, err := sqlstage.Open("postgres", dsn)
		require.NoError(t, err)
		return &DatabaseSetup{DB: db, DSN: dsn, Dialect: "postgres"}
	}

	pgContainer, err := postgres.Run(
		ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skip("Docker not available for PostgreSQL integration tests: " + err.Error())
	}

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sqlstage.Open("postgres", dsn)
	require.NoError(t, err)

	return &DatabaseSetup{
		DB:        db,
		DSN:       dsn,
		Container: pgContainer,
		Dialect:   "postgres",
	}
}

// SetupMySQLTestDB creates a MySQL test database.
// Uses testcontainers if available, falls back to env DSN.
func SetupMySQLTestDB(t *testing.T) *DatabaseSetup {
	ctx := context.Background()

	if dsn := os.Getenv("MYSQL_TEST_DSN"); dsn != "" {
		// parseTime=true makes DATETIME columns scan into time.Time
		if !strings.Contains(dsn, "parseTime=true") {
			if strings.Contains(dsn, "?") {
				dsn += "&parseTime=true"
			} else {
				dsn += "?parseTime=true"
			}
		}
		db, err := sqlstage.Open("mysql", dsn)
		require.NoError(t, err)
		return &DatabaseSetup{DB: db, DSN: dsn, Dialect: "mysql"}
	}

	mysqlContainer, err := mysql.Run(
		ctx,
		"mysql:8.0",
		mysql.WithDatabase("testdb"),
		mysql.WithUsername("user"),
		mysql.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("port: 3306  MySQL Community Server").
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skip("Docker not available for MySQL integration tests: " + err.Error())
	}

	dsn, err := mysqlContainer.ConnectionString(ctx)
	require.NoError(t, err)
	dsn += "?parseTime=true"

	db, err := sqlstage.Open("mysql", dsn)
	require.NoError(t, err)

	return &DatabaseSetup{
		DB:        db,
		DSN:       dsn,
		Container: mysqlContainer,
		Dialect:   "mysql",
	}
}

// SetupSQLServerTestDB connects to the SQL Server named by SQLSERVER_TEST_DSN.
// There is no container fallback; the test is skipped without a DSN.
func SetupSQLServerTestDB(t *testing.T) *DatabaseSetup {
	dsn := os.Getenv("SQLSERVER_TEST_DSN")
	if dsn == "" {
		t.Skip("SQLSERVER_TEST_DSN not set")
	}
	db, err := sqlstage.Open("sqlserver", dsn)
	require.NoError(t, err)
	return &DatabaseSetup{DB: db, DSN: dsn, Dialect: "sqlserver"}
}

// SetupSQLiteTestDB creates an in-memory SQLite database.
// Always works, no external dependencies.
func SetupSQLiteTestDB(t *testing.T) *DatabaseSetup {
	db, err := sqlstage.Open("sqlite", ":memory:", sqlstage.WithMaxOpenConns(1))
	require.NoError(t, err)

	return &DatabaseSetup{
		DB:      db,
		DSN:     ":memory:",
		Dialect: "sqlite",
	}
}

// CreateMessagesTable drops and recreates the messages table.
func CreateMessagesTable(t *testing.T, db *sqlstage.DB, dialect string) {
	ctx := context.Background()
	var createSQL string

	switch dialect {
	case "postgres":
		createSQL = `
			CREATE TABLE messages (
				id SERIAL PRIMARY KEY,
				mailbox_id INTEGER NOT NULL,
				user_id INTEGER NOT NULL,
				uid INTEGER NOT NULL,
				status INTEGER NOT NULL DEFAULT 1,
				size INTEGER NOT NULL DEFAULT 0,
				subject TEXT,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`
	case "mysql":
		createSQL = `
			CREATE TABLE messages (
				id INT AUTO_INCREMENT PRIMARY KEY,
				mailbox_id INT NOT NULL,
				user_id INT NOT NULL,
				uid INT NOT NULL,
				status INT NOT NULL DEFAULT 1,
				size INT NOT NULL DEFAULT 0,
				subject TEXT,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`
	case "sqlserver":
		createSQL = `
			CREATE TABLE messages (
				id INT IDENTITY(1,1) PRIMARY KEY,
				mailbox_id INT NOT NULL,
				user_id INT NOT NULL,
				uid INT NOT NULL,
				status INT NOT NULL DEFAULT 1,
				size INT NOT NULL DEFAULT 0,
				subject NVARCHAR(255),
				created_at DATETIME2 NOT NULL DEFAULT SYSDATETIME()
			)
		`
	case "sqlite":
		createSQL = `
			CREATE TABLE messages (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				mailbox_id INTEGER NOT NULL,
				user_id INTEGER NOT NULL,
				uid INTEGER NOT NULL,
				status INTEGER NOT NULL DEFAULT 1,
				size INTEGER NOT NULL DEFAULT 0,
				subject TEXT,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`
	}

	_, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS messages")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, createSQL)
	require.NoError(t, err)
}

// CountMessages returns the number of rows matching a raw WHERE clause.
func CountMessages(t *testing.T, db *sqlstage.DB, where string) int {
	var n int
	err := db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM messages WHERE "+where).Scan(&n)
	require.NoError(t, err)
	return n
}

// forEachDatabase runs fn against every available backend.
func forEachDatabase(t *testing.T, fn func(t *testing.T, setup *DatabaseSetup)) {
	backends := []struct {
		name  string
		setup func(*testing.T) *DatabaseSetup
	}{
		{"sqlite", SetupSQLiteTestDB},
		{"postgres", SetupPostgreSQLTestDB},
		{"mysql", SetupMySQLTestDB},
		{"sqlserver", SetupSQLServerTestDB},
	}
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			setup := b.setup(t)
			defer setup.Close()
			CreateMessagesTable(t, setup.DB, setup.Dialect)
			fn(t, setup)
		})
	}
}
