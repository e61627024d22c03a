package core

import (
	"errors"
	"strings"

	"github.com/coregx/sqlstage/internal/dialects"
)

// Predefined errors returned by sqlstage. Usage errors are detected before any
// SQL is produced; execution errors from the database are returned unchanged.
var (
	// ErrIncomplete is returned when an insert lacks required columns.
	ErrIncomplete = errors.New("insert is missing required columns")
	// ErrNoTable is returned when a statement has no target table.
	ErrNoTable = errors.New("statement has no target table")
	// ErrNoAssignments is returned when an insert has no values, no default values and no select source.
	ErrNoAssignments = errors.New("insert has no values, default values or select source")
	// ErrIncompatibleSelect is returned when an insert source select exposes the wrong columns.
	ErrIncompatibleSelect = errors.New("select columns are incompatible with the insert target")
	// ErrUnknownColumn is returned when a column is not declared by the table.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrNoAutoID is returned when returning ids from a table without an autogenerated primary key.
	ErrNoAutoID = errors.New("table has no autogenerated primary key column")
	// ErrInvalidState is returned when an operation is not available in the builder's current mode.
	ErrInvalidState = errors.New("operation not available in the current builder mode")
	// ErrNoExecutor is returned when executing a statement built without an executor.
	ErrNoExecutor = errors.New("statement has no executor")
	// ErrUnsupportedDialect is returned when an unsupported database dialect is specified.
	ErrUnsupportedDialect = errors.New("unsupported database dialect")
	// ErrCapability is returned when the dialect cannot express an operation.
	ErrCapability = dialects.ErrCapability
)

// CapabilityError reports an operation the active dialect cannot express.
type CapabilityError = dialects.CapabilityError

// UsageError describes a statement that cannot be compiled. It unwraps to one
// of the sentinel errors above.
type UsageError struct {
	Op      string
	Table   string
	Columns []string
	Detail  string
	Err     error
}

func (e *UsageError) Error() string {
	var sb strings.Builder
	sb.WriteString("sqlstage: ")
	if e.Op != "" {
		sb.WriteString(e.Op)
		if e.Table != "" {
			sb.WriteString(" ")
			sb.WriteString(e.Table)
		}
		sb.WriteString(": ")
	}
	sb.WriteString(e.Err.Error())
	if len(e.Columns) > 0 {
		sb.WriteString(": ")
		sb.WriteString(strings.Join(e.Columns, ", "))
	}
	if e.Detail != "" {
		sb.WriteString(" (")
		sb.WriteString(e.Detail)
		sb.WriteString(")")
	}
	return sb.String()
}

// Unwrap returns the sentinel error.
func (e *UsageError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with additional context message.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
