// Package logger holds the structured logging used when staged inserts run.
//
// Executors describe each statement they run with a Statement and hand it to
// LogStatement, so every backend emits the same keys: sql, params, table,
// duration_ms, rows_affected, database and error.
package logger

import (
	"log/slog"
	"time"
)

// Logger receives key-value pairs in the log/slog convention.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NoopLogger discards everything. It is the default for DB and InsertQuery.
type NoopLogger struct{}

func (n *NoopLogger) Debug(_ string, _ ...any) {}
func (n *NoopLogger) Info(_ string, _ ...any)  {}
func (n *NoopLogger) Warn(_ string, _ ...any)  {}
func (n *NoopLogger) Error(_ string, _ ...any) {}

// SlogAdapter sends records to a *slog.Logger.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter wraps logger, which must not be nil.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

func (a *SlogAdapter) Debug(msg string, args ...any) { a.logger.Debug(msg, args...) }
func (a *SlogAdapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *SlogAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *SlogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }

// MsgFailed is logged for every statement whose execution returned an error.
const MsgFailed = "statement execution failed"

// Statement is one executed statement. Params must already be masked.
type Statement struct {
	SQL          string
	Params       string
	Table        string
	Database     string
	Elapsed      time.Duration
	RowsAffected int64
	Err          error
}

// Fields returns s as alternating keys and values. Table and params are
// omitted when empty; rows_affected only appears on success.
func (s Statement) Fields() []any {
	fields := make([]any, 0, 14)
	fields = append(fields, "sql", s.SQL)
	if s.Params != "" {
		fields = append(fields, "params", s.Params)
	}
	if s.Table != "" {
		fields = append(fields, "table", s.Table)
	}
	fields = append(fields, "duration_ms", s.Elapsed.Milliseconds())
	if s.Err != nil {
		return append(fields, "database", s.Database, "error", s.Err)
	}
	return append(fields, "rows_affected", s.RowsAffected, "database", s.Database)
}

// LogStatement writes s at Info under msg, or at Error under MsgFailed when
// s.Err is set.
func LogStatement(l Logger, msg string, s Statement) {
	if s.Err != nil {
		l.Error(MsgFailed, s.Fields()...)
		return
	}
	l.Info(msg, s.Fields()...)
}

// LogRejectedInsert records an insert that failed validation or compilation
// and never reached the database.
func LogRejectedInsert(l Logger, table string, err error) {
	l.Warn("insert not executed", "table", table, "error", err)
}
