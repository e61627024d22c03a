package dialects

import (
	"strconv"
	"strings"

	"github.com/coregx/sqlstage/internal/schema"
)

// MySQLDialect implements MySQL-specific SQL dialect.
type MySQLDialect struct{}

func init() {
	RegisterDialect("mysql", &MySQLDialect{})
}

var mysqlCapabilities = Capabilities{
	Returning:               true,
	ReturningStyle:          ReturningNone,
	NullsSortFirstAscending: true,
	DefaultInValues:         true,
	DistinctStringAggregate: true,
}

var mysqlSyntax = matchSyntax{
	concat: func(parts ...string) string { return "concat(" + strings.Join(parts, ", ") + ")" },
	escape: ` escape '\\'`,
}

// ID returns MySQL.
func (d *MySQLDialect) ID() ID { return MySQL }

// Capabilities returns the MySQL capability matrix.
func (d *MySQLDialect) Capabilities() Capabilities { return mysqlCapabilities }

// IsReserved reports whether word is a reserved MySQL keyword.
func (d *MySQLDialect) IsReserved(word string) bool {
	return isReserved(mysqlReserved, word)
}

// QuoteIdentifier quotes a MySQL identifier using backticks.
func (d *MySQLDialect) QuoteIdentifier(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// Placeholder returns MySQL placeholder format (always "?").
func (d *MySQLDialect) Placeholder(_ int) string {
	return "?"
}

// BoolLiteral spells booleans as true/false.
func (d *MySQLDialect) BoolLiteral(b bool) string {
	return strconv.FormatBool(b)
}

// LikeEscapes returns the backslash escape pairs.
func (d *MySQLDialect) LikeEscapes() []string { return DefaultLikeEscape }

// TransformValueToDB normalizes uuids to text.
func (d *MySQLDialect) TransformValueToDB(value interface{}, typ schema.ValueType) interface{} {
	if v, ok := normalizeUUID(value, typ); ok {
		return v
	}
	return value
}

// Is renders the null-safe equality operator.
func (d *MySQLDialect) Is(r Renderer, left Operand, right Arg) string {
	return r.SQLParens(left) + " <=> " + r.ValueParens(right)
}

// IsNot renders the negated null-safe equality operator.
func (d *MySQLDialect) IsNot(r Renderer, left Operand, right Arg) string {
	return "not (" + r.SQLParens(left) + " <=> " + r.ValueParens(right) + ")"
}

// ValueWhenNull renders ifnull(left, right).
func (d *MySQLDialect) ValueWhenNull(r Renderer, left Operand, right Arg) string {
	return "ifnull(" + r.SQL(left) + ", " + r.Value(right) + ")"
}

// Arithmetic renders arithmetic; division is done in double.
func (d *MySQLDialect) Arithmetic(r Renderer, op ArithOp, left Operand, right Arg) string {
	return renderArithmetic(r, op, left, right, "double")
}

// Match renders LIKE predicates built with concat().
func (d *MySQLDialect) Match(r Renderer, m Match, left Operand, right Arg) string {
	return renderMatch(r, m, left, right, mysqlSyntax)
}

// StringConcat renders group_concat. MySQL's SEPARATOR clause only accepts a
// string literal, so the separator is inlined as a quoted literal. A separator
// containing a backslash is rejected: its spelling depends on whether the
// session runs with NO_BACKSLASH_ESCAPES.
func (d *MySQLDialect) StringConcat(r Renderer, operand Operand, separator *string, distinct bool) string {
	inner := r.SQL(operand)
	if distinct {
		inner = "distinct " + inner
	}
	if separator == nil {
		return "group_concat(" + inner + ")"
	}
	if strings.Contains(*separator, `\`) {
		r.Fail(&CapabilityError{Dialect: MySQL, Capability: "a group_concat separator containing a backslash"})
		return ""
	}
	return "group_concat(" + inner + " separator " + quoteString(*separator) + ")"
}

// Numeric renders math functions.
func (d *MySQLDialect) Numeric(r Renderer, fn NumericFunc, operand Operand, arg *Arg) string {
	switch fn {
	case Ln:
		return "ln(" + r.SQL(operand) + ")"
	case Log10:
		return "log10(" + r.SQL(operand) + ")"
	case Cbrt:
		return "power(" + r.SQL(operand) + ", 1 / 3)"
	case AsDouble:
		return "cast(" + r.SQL(operand) + " as double)"
	case MinValue:
		return pairCall(r, "least", operand, arg)
	default:
		return pairCall(r, "greatest", operand, arg)
	}
}

// DatePart renders MySQL date functions.
func (d *MySQLDialect) DatePart(r Renderer, part DatePart, operand Operand) string {
	x := r.SQL(operand)
	switch part {
	case Day:
		return "dayofmonth(" + x + ")"
	case Hour:
		return "hour(" + x + ")"
	case Minute:
		return "minute(" + x + ")"
	case Second:
		return "second(" + x + ")"
	case Millisecond:
		return "floor(microsecond(" + x + ") / 1000)"
	case Month:
		return "month(" + x + ")"
	case Year:
		return "year(" + x + ")"
	case Weekday:
		return "dayofweek(" + x + ") - 1"
	default:
		return "round(unix_timestamp(" + x + ") * 1000)"
	}
}

// CurrentDateTime renders curdate()/curtime()/now().
func (d *MySQLDialect) CurrentDateTime(kind DateTimeKind) string {
	switch kind {
	case CurrentDate:
		return "curdate()"
	case CurrentTime:
		return "curtime()"
	default:
		return "now()"
	}
}

// OrderByItem renders an ORDER BY entry, emulating NULLS FIRST/LAST.
func (d *MySQLDialect) OrderByItem(_ Renderer, column string, mode OrderMode) string {
	return renderOrderBy(column, mode, mysqlCapabilities, isNullKey)
}

// mysqlNoLimit is the documented "all remaining rows" LIMIT value.
const mysqlNoLimit = "18446744073709551615"

// LimitOffset renders LIMIT/OFFSET; an offset alone gets the maximum limit.
func (d *MySQLDialect) LimitOffset(r Renderer, limit, offset *int64, _ bool) string {
	var sb strings.Builder
	if limit != nil {
		sb.WriteString(" limit ")
		sb.WriteString(r.Value(Arg{Value: *limit, Type: schema.TypeInt}))
	} else if offset != nil {
		sb.WriteString(" limit " + mysqlNoLimit)
	}
	if offset != nil {
		sb.WriteString(" offset ")
		sb.WriteString(r.Value(Arg{Value: *offset, Type: schema.TypeInt}))
	}
	return sb.String()
}

// DefaultValues renders an empty column list with an empty row.
func (d *MySQLDialect) DefaultValues(_ Renderer) string { return " () values ()" }

// InsertOutput returns "": ids come from LastInsertId.
func (d *MySQLDialect) InsertOutput(_ Renderer, _ []string) string { return "" }

// InsertReturning returns "": ids come from LastInsertId.
func (d *MySQLDialect) InsertReturning(_ Renderer, _ []string) string { return "" }
