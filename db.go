// Package sqlstage builds INSERT statements in stages against declared table
// schemas and compiles them, together with a typed expression and SELECT
// builder, for SQLite, PostgreSQL, MySQL, and SQL Server. An insert only
// becomes executable once every required column is assigned; execution goes
// through database/sql with prepared statement caching, structured logging,
// and OpenTelemetry tracing, or through pgx.
package sqlstage

import (
	"github.com/coregx/sqlstage/internal/core"
	"github.com/coregx/sqlstage/internal/dialects"
	"github.com/coregx/sqlstage/internal/logger"
	"github.com/coregx/sqlstage/internal/pgxexec"
	"github.com/coregx/sqlstage/internal/schema"
	"github.com/coregx/sqlstage/internal/security"
	"github.com/coregx/sqlstage/internal/tracer"
)

type (
	// DB represents the main database connection with caching and tracing capabilities.
	DB = core.DB
	// Option is a functional option for configuring DB.
	Option = core.Option
	// Tx represents a database transaction.
	Tx = core.Tx
	// TxOptions represents transaction options including isolation level.
	TxOptions = core.TxOptions
	// Config is the YAML-loadable database configuration.
	Config = core.Config
	// Executor runs compiled statements; DB, Tx and PgxExecutor implement it.
	Executor = core.Executor
	// QueryEvent describes one executed statement.
	QueryEvent = core.QueryEvent
	// QueryHook is called after every execution.
	QueryHook = core.QueryHook
	// HealthStatus is the result of the latest background health check.
	HealthStatus = core.HealthStatus
	// Auditor writes an audit trail of executed statements.
	Auditor = security.Auditor
	// AuditLevel selects which executions are audited.
	AuditLevel = security.AuditLevel

	// Table is a table or view definition.
	Table = schema.Table
	// Column describes one column of a table or view.
	Column = schema.Column
	// ValueType is the semantic type of a column or bound value.
	ValueType = schema.ValueType
	// TypeAdapter transforms application values before they are bound.
	TypeAdapter = schema.TypeAdapter
	// TypeAdapterFunc adapts a plain function to TypeAdapter.
	TypeAdapterFunc = schema.TypeAdapterFunc

	// InsertQuery is a staged INSERT builder.
	InsertQuery = core.InsertQuery
	// InsertState is the completeness of an insert under construction.
	InsertState = core.InsertState
	// ReturningInsert is an insert that yields the id of the inserted row.
	ReturningInsert = core.ReturningInsert
	// ReturningInsertMany is an insert that yields the ids of all inserted rows.
	ReturningInsertMany = core.ReturningInsertMany
	// Values maps column names to values or expressions.
	Values = core.Values
	// Statement is compiled SQL with its parameters.
	Statement = core.Statement
	// SelectQuery describes a SELECT used as an insert source or subquery.
	SelectQuery = core.SelectQuery

	// Expression represents a database expression.
	Expression = core.Expression
	// HashExp represents a hash-based expression using column-value pairs.
	HashExp = core.HashExp
	// ColumnExp references a column.
	ColumnExp = core.ColumnExp

	// Dialect is the SQL syntax strategy of one backend.
	Dialect = dialects.Dialect
	// OrderMode is the direction and null placement of an ORDER BY entry.
	OrderMode = dialects.OrderMode
	// QuoteMode controls when identifiers are quoted.
	QuoteMode = core.QuoteMode

	// UsageError reports misuse of a builder, detected before SQL is produced.
	UsageError = core.UsageError
	// CapabilityError reports an operation the active dialect cannot express.
	CapabilityError = core.CapabilityError

	// Logger is the structured logging interface.
	Logger = logger.Logger
	// Tracer creates spans for executed statements.
	Tracer = tracer.Tracer

	// PgxExecutor executes statements through pgx.
	PgxExecutor = pgxexec.Executor
)

// Value types.
const (
	TypeAny       = schema.TypeAny
	TypeString    = schema.TypeString
	TypeInt       = schema.TypeInt
	TypeBigint    = schema.TypeBigint
	TypeDouble    = schema.TypeDouble
	TypeBool      = schema.TypeBool
	TypeDate      = schema.TypeDate
	TypeTime      = schema.TypeTime
	TypeTimestamp = schema.TypeTimestamp
	TypeUUID      = schema.TypeUUID
	TypeBytes     = schema.TypeBytes
)

// Insert states.
const (
	StateEmpty      = core.StateEmpty
	StatePartial    = core.StatePartial
	StateExecutable = core.StateExecutable
)

// Order modes.
const (
	OrderDefault   = dialects.OrderDefault
	Asc            = dialects.Asc
	Desc           = dialects.Desc
	AscNullsFirst  = dialects.AscNullsFirst
	AscNullsLast   = dialects.AscNullsLast
	DescNullsFirst = dialects.DescNullsFirst
	DescNullsLast  = dialects.DescNullsLast
)

// Audit levels.
const (
	AuditNone     = security.AuditNone
	AuditFailures = security.AuditFailures
	AuditWrites   = security.AuditWrites
)

// Quote modes.
const (
	QuoteAlways   = core.QuoteAlways
	QuoteReserved = core.QuoteReserved
)

// Errors.
var (
	ErrIncomplete         = core.ErrIncomplete
	ErrNoTable            = core.ErrNoTable
	ErrNoAssignments      = core.ErrNoAssignments
	ErrIncompatibleSelect = core.ErrIncompatibleSelect
	ErrUnknownColumn      = core.ErrUnknownColumn
	ErrNoAutoID           = core.ErrNoAutoID
	ErrInvalidState       = core.ErrInvalidState
	ErrNoExecutor         = core.ErrNoExecutor
	ErrUnsupportedDialect = core.ErrUnsupportedDialect
	ErrCapability         = core.ErrCapability
)

// Re-export core functions.
var (
	Open                  = core.Open
	NewDB                 = core.NewDB
	WrapDB                = core.WrapDB
	LoadConfig            = core.LoadConfig
	ParseConfig           = core.ParseConfig
	OpenConfig            = core.OpenConfig
	RedactDSN             = core.RedactDSN
	WithMaxOpenConns      = core.WithMaxOpenConns
	WithMaxIdleConns      = core.WithMaxIdleConns
	WithStmtCacheCapacity = core.WithStmtCacheCapacity
	WithLogger            = core.WithLogger
	WithSensitiveFields   = core.WithSensitiveFields
	WithTracer            = core.WithTracer
	WithQueryHook         = core.WithQueryHook
	WithQuoteMode         = core.WithQuoteMode
	WithHealthCheck       = core.WithHealthCheck
	WithAuditor           = core.WithAuditor
	NewAuditor            = security.NewAuditor
	WithAuditUser         = security.WithUser
	WithAuditClientIP     = security.WithClientIP
	WithAuditRequestID    = security.WithRequestID
	ParseQuoteMode        = core.ParseQuoteMode
	ParseOrderMode        = dialects.ParseOrderMode
	GetDialect            = dialects.GetDialect
	Compile               = core.Compile
	WithQuoting           = core.WithQuoting

	NewSlogAdapter    = logger.NewSlogAdapter
	NewZerologAdapter = logger.NewZerologAdapter
	NewOtelTracer     = tracer.NewOtelTracer

	NewPgxExecutor = pgxexec.New
	ConnectPgx     = pgxexec.Connect

	// Schema
	NewTable  = schema.NewTable
	NewView   = schema.NewView
	NewColumn = schema.Col

	// Builders
	NewInsert = core.NewInsert
	Select    = core.Select

	// Expression builders
	Col            = core.Col
	TypedCol       = core.TypedCol
	TableCol       = core.TableCol
	Val            = core.Val
	TypedVal       = core.TypedVal
	AdaptedVal     = core.AdaptedVal
	NewExp         = core.NewExp
	Eq             = core.Eq
	NotEq          = core.NotEq
	GreaterThan    = core.GreaterThan
	LessThan       = core.LessThan
	GreaterOrEqual = core.GreaterOrEqual
	LessOrEqual    = core.LessOrEqual
	In             = core.In
	NotIn          = core.NotIn
	Between        = core.Between
	NotBetween     = core.NotBetween
	And            = core.And
	Or             = core.Or
	Not            = core.Not
	Subquery       = core.Subquery
	Exists         = core.Exists
	NotExists      = core.NotExists
	InSelect       = core.InSelect
	NotInSelect    = core.NotInSelect
	As             = core.As
	Is             = core.Is
	IsNot          = core.IsNot
	IsNull         = core.IsNull
	IsNotNull      = core.IsNotNull
	ValueWhenNull  = core.ValueWhenNull
	True           = core.True
	False          = core.False

	// Arithmetic
	Add      = core.Add
	Subtract = core.Subtract
	Multiply = core.Multiply
	Divide   = core.Divide
	Modulo   = core.Modulo

	// Pattern matching
	Like                     = core.Like
	NotLike                  = core.NotLike
	LikeInsensitive          = core.LikeInsensitive
	NotLikeInsensitive       = core.NotLikeInsensitive
	StartsWith               = core.StartsWith
	NotStartsWith            = core.NotStartsWith
	StartsWithInsensitive    = core.StartsWithInsensitive
	NotStartsWithInsensitive = core.NotStartsWithInsensitive
	EndsWith                 = core.EndsWith
	NotEndsWith              = core.NotEndsWith
	EndsWithInsensitive      = core.EndsWithInsensitive
	NotEndsWithInsensitive   = core.NotEndsWithInsensitive
	Contains                 = core.Contains
	NotContains              = core.NotContains
	ContainsInsensitive      = core.ContainsInsensitive
	NotContainsInsensitive   = core.NotContainsInsensitive

	// Aggregates and functions
	GroupConcat            = core.GroupConcat
	GroupConcatSep         = core.GroupConcatSep
	GroupConcatDistinct    = core.GroupConcatDistinct
	GroupConcatDistinctSep = core.GroupConcatDistinctSep
	Ln                     = core.Ln
	Log10                  = core.Log10
	Cbrt                   = core.Cbrt
	AsDouble               = core.AsDouble
	MinValue               = core.MinValue
	MaxValue               = core.MaxValue

	// Date and time
	DayOf            = core.DayOf
	HourOf           = core.HourOf
	MinuteOf         = core.MinuteOf
	SecondOf         = core.SecondOf
	MillisecondOf    = core.MillisecondOf
	MonthOf          = core.MonthOf
	YearOf           = core.YearOf
	WeekdayOf        = core.WeekdayOf
	EpochMillisOf    = core.EpochMillisOf
	CurrentDate      = core.CurrentDate
	CurrentTime      = core.CurrentTime
	CurrentTimestamp = core.CurrentTimestamp
)
