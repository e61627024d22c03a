// Package dialects provides database-specific SQL dialect implementations for
// SQLite, PostgreSQL, MySQL, and SQL Server. A dialect owns syntax choices only:
// identifier quoting, placeholders, null-safe comparison, pattern matching,
// date and string functions, pagination, and result-returning clauses.
package dialects

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coregx/sqlstage/internal/schema"
)

// ID identifies a supported backend.
type ID int

// Supported backends.
const (
	SQLite ID = iota + 1
	PostgreSQL
	MySQL
	SQLServer
)

func (id ID) String() string {
	switch id {
	case SQLite:
		return "sqlite"
	case PostgreSQL:
		return "postgresql"
	case MySQL:
		return "mysql"
	case SQLServer:
		return "sqlserver"
	}
	return fmt.Sprintf("dialect(%d)", int(id))
}

// ReturningStyle says how a dialect hands back autogenerated keys from an INSERT.
type ReturningStyle int

// Returning styles.
const (
	// ReturningNone relies on the driver's LastInsertId.
	ReturningNone ReturningStyle = iota
	// ReturningClause appends RETURNING after the VALUES/SELECT source.
	ReturningClause
	// ReturningOutput places OUTPUT INSERTED.* before the VALUES/SELECT source.
	ReturningOutput
)

// Capabilities is the immutable capability matrix of a dialect.
type Capabilities struct {
	// Returning reports support for returning the id of a single inserted row.
	Returning bool
	// ReturningMultiple reports support for returning the ids of a multi-row insert.
	ReturningMultiple bool
	// ReturningStyle selects how ids come back.
	ReturningStyle ReturningStyle
	// NativeNullsOrdering reports support for NULLS FIRST / NULLS LAST.
	NativeNullsOrdering bool
	// NullsSortFirstAscending reports whether NULL sorts before values in ascending order.
	NullsSortFirstAscending bool
	// DefaultInValues reports support for the DEFAULT keyword inside a VALUES row.
	DefaultInValues bool
	// DistinctStringAggregate reports support for DISTINCT inside string aggregation.
	DistinctStringAggregate bool
}

// ErrCapability is the sentinel behind every CapabilityError.
var ErrCapability = errors.New("operation not supported by dialect")

// CapabilityError reports an operation the active dialect cannot express.
type CapabilityError struct {
	Dialect    ID
	Capability string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s: %s does not support %s", ErrCapability.Error(), e.Dialect, e.Capability)
}

// Unwrap returns ErrCapability.
func (e *CapabilityError) Unwrap() error {
	return ErrCapability
}

// ErrMissingOperand is reported when a two-operand function such as min or
// max is built without its second operand.
var ErrMissingOperand = errors.New("function is missing its second operand")

// pairCall renders name(operand, arg).
func pairCall(r Renderer, name string, operand Operand, arg *Arg) string {
	if arg == nil {
		r.Fail(fmt.Errorf("%w: %s", ErrMissingOperand, name))
		return ""
	}
	return name + "(" + r.SQL(operand) + ", " + r.Value(*arg) + ")"
}

// Operand is an expression node that renders itself through a Renderer.
type Operand interface {
	WriteSQL(r Renderer) string
}

// Arg is the right-hand operand of a hook point. Value is either a literal,
// which is bound as a parameter, or an Operand, which is rendered inline.
type Arg struct {
	Value   interface{}
	Type    schema.ValueType
	Adapter schema.TypeAdapter
}

// Renderer is the compiler callback handed to every hook point. It owns the
// parameter array; hooks only choose syntax.
type Renderer interface {
	// SQL renders an operand.
	SQL(op Operand) string
	// SQLParens renders an operand, parenthesized when it is composite.
	SQLParens(op Operand) string
	// Value binds a literal and returns its placeholder, or renders an operand.
	Value(arg Arg) string
	// ValueParens is Value with composite operands parenthesized.
	ValueParens(arg Arg) string
	// LikeValue is Value with LIKE wildcards in the argument escaped first.
	LikeValue(arg Arg) string
	// Escape quotes an identifier according to the compiler's quoting policy.
	Escape(identifier string) string
	// Fail records an error; compilation returns it instead of SQL.
	Fail(err error)
	// Dialect returns the dialect being compiled for.
	Dialect() Dialect
}

// Dialect defines database-specific behaviors. Every method must be total:
// a hook that cannot express an operation reports a CapabilityError via Renderer.Fail.
type Dialect interface {
	ID() ID
	Capabilities() Capabilities
	IsReserved(word string) bool
	QuoteIdentifier(name string) string
	Placeholder(index int) string
	BoolLiteral(b bool) string
	LikeEscapes() []string
	TransformValueToDB(value interface{}, typ schema.ValueType) interface{}

	Is(r Renderer, left Operand, right Arg) string
	IsNot(r Renderer, left Operand, right Arg) string
	ValueWhenNull(r Renderer, left Operand, right Arg) string
	Arithmetic(r Renderer, op ArithOp, left Operand, right Arg) string
	Match(r Renderer, m Match, left Operand, right Arg) string
	StringConcat(r Renderer, operand Operand, separator *string, distinct bool) string
	Numeric(r Renderer, fn NumericFunc, operand Operand, arg *Arg) string
	DatePart(r Renderer, part DatePart, operand Operand) string
	CurrentDateTime(kind DateTimeKind) string
	OrderByItem(r Renderer, column string, mode OrderMode) string
	LimitOffset(r Renderer, limit, offset *int64, ordered bool) string
	DefaultValues(r Renderer) string
	InsertOutput(r Renderer, columns []string) string
	InsertReturning(r Renderer, columns []string) string
}

var dialects = make(map[string]Dialect)

// RegisterDialect registers a database dialect by driver name.
func RegisterDialect(name string, d Dialect) {
	dialects[name] = d
}

// GetDialect retrieves a registered dialect by driver name, panics if not found.
func GetDialect(name string) Dialect {
	if d, ok := dialects[name]; ok {
		return d
	}
	panic("unsupported dialect: " + name)
}

// Lookup retrieves a registered dialect by driver name.
func Lookup(name string) (Dialect, bool) {
	d, ok := dialects[name]
	return d, ok
}

// DefaultLikeEscape lists LIKE special characters at even positions and their
// escaped form at the following odd position. The escape character is backslash.
var DefaultLikeEscape = []string{`\`, `\\`, "%", `\%`, "_", `\_`}

// EscapeLike escapes LIKE wildcards in s using pairs in the DefaultLikeEscape layout.
func EscapeLike(s string, pairs []string) string {
	return strings.NewReplacer(pairs...).Replace(s)
}

// quoteString renders s as a single-quoted SQL string literal. It is used only
// where a grammar rejects placeholders.
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// reservedSet builds a case-insensitive lookup set.
func reservedSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[strings.ToUpper(w)] = struct{}{}
	}
	return m
}

func isReserved(set map[string]struct{}, word string) bool {
	_, ok := set[strings.ToUpper(word)]
	return ok
}
