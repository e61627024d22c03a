package dialects

import (
	"strings"
	"time"

	"github.com/coregx/sqlstage/internal/schema"
)

// SQLiteDialect implements SQLite-specific SQL dialect.
type SQLiteDialect struct{}

func init() {
	RegisterDialect("sqlite", &SQLiteDialect{})
	RegisterDialect("sqlite3", &SQLiteDialect{})
}

var sqliteCapabilities = Capabilities{
	Returning:               true,
	ReturningStyle:          ReturningNone,
	NullsSortFirstAscending: true,
	DistinctStringAggregate: true,
}

var sqliteSyntax = matchSyntax{
	concat: infixConcat(" || "),
	infix:  true,
	escape: ` escape '\'`,
}

// ID returns SQLite.
func (d *SQLiteDialect) ID() ID { return SQLite }

// Capabilities returns the SQLite capability matrix.
func (d *SQLiteDialect) Capabilities() Capabilities { return sqliteCapabilities }

// IsReserved reports whether word is an SQLite keyword.
func (d *SQLiteDialect) IsReserved(word string) bool {
	return isReserved(sqliteReserved, word)
}

// QuoteIdentifier quotes a SQLite identifier using double quotes.
func (d *SQLiteDialect) QuoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Placeholder returns SQLite placeholder format (always "?").
func (d *SQLiteDialect) Placeholder(_ int) string {
	return "?"
}

// BoolLiteral spells booleans as integers.
func (d *SQLiteDialect) BoolLiteral(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// LikeEscapes returns the backslash escape pairs.
func (d *SQLiteDialect) LikeEscapes() []string { return DefaultLikeEscape }

// TransformValueToDB stores booleans as 0/1 and times as ISO-8601 text, the
// forms SQLite's date functions understand.
func (d *SQLiteDialect) TransformValueToDB(value interface{}, typ schema.ValueType) interface{} {
	if v, ok := normalizeUUID(value, typ); ok {
		return v
	}
	switch v := value.(type) {
	case bool:
		if v {
			return int64(1)
		}
		return int64(0)
	case time.Time:
		switch typ {
		case schema.TypeDate:
			return v.Format("2006-01-02")
		case schema.TypeTime:
			return v.Format("15:04:05")
		default:
			return v.UTC().Format("2006-01-02 15:04:05.000")
		}
	}
	return value
}

// Is renders a null-safe equality.
func (d *SQLiteDialect) Is(r Renderer, left Operand, right Arg) string {
	return r.SQLParens(left) + " is " + r.ValueParens(right)
}

// IsNot renders a null-safe inequality.
func (d *SQLiteDialect) IsNot(r Renderer, left Operand, right Arg) string {
	return r.SQLParens(left) + " is not " + r.ValueParens(right)
}

// ValueWhenNull renders ifnull(left, right).
func (d *SQLiteDialect) ValueWhenNull(r Renderer, left Operand, right Arg) string {
	return "ifnull(" + r.SQL(left) + ", " + r.Value(right) + ")"
}

// Arithmetic renders arithmetic; division is done in real.
func (d *SQLiteDialect) Arithmetic(r Renderer, op ArithOp, left Operand, right Arg) string {
	return renderArithmetic(r, op, left, right, "real")
}

// Match renders LIKE predicates with a backslash escape.
func (d *SQLiteDialect) Match(r Renderer, m Match, left Operand, right Arg) string {
	return renderMatch(r, m, left, right, sqliteSyntax)
}

// StringConcat renders group_concat.
func (d *SQLiteDialect) StringConcat(r Renderer, operand Operand, separator *string, distinct bool) string {
	if distinct {
		// DISTINCT aggregates take exactly one argument; "," is the implicit separator.
		if separator != nil && *separator != "," {
			r.Fail(&CapabilityError{Dialect: SQLite, Capability: "distinct string aggregation with a custom separator"})
		}
		return "group_concat(distinct " + r.SQL(operand) + ")"
	}
	return renderStringConcat(r, "group_concat", operand, separator, false, "")
}

// Numeric renders math functions available since SQLite 3.35.
func (d *SQLiteDialect) Numeric(r Renderer, fn NumericFunc, operand Operand, arg *Arg) string {
	switch fn {
	case Ln:
		return "ln(" + r.SQL(operand) + ")"
	case Log10:
		return "log10(" + r.SQL(operand) + ")"
	case Cbrt:
		return "power(" + r.SQL(operand) + ", 1.0 / 3)"
	case AsDouble:
		return "cast(" + r.SQL(operand) + " as real)"
	case MinValue:
		return pairCall(r, "min", operand, arg)
	default:
		return pairCall(r, "max", operand, arg)
	}
}

// DatePart renders strftime-based extraction.
func (d *SQLiteDialect) DatePart(r Renderer, part DatePart, operand Operand) string {
	x := r.SQL(operand)
	switch part {
	case Day:
		return "cast(strftime('%d', " + x + ") as integer)"
	case Hour:
		return "cast(strftime('%H', " + x + ") as integer)"
	case Minute:
		return "cast(strftime('%M', " + x + ") as integer)"
	case Second:
		return "cast(strftime('%S', " + x + ") as integer)"
	case Millisecond:
		return "cast(strftime('%f', " + x + ") * 1000 as integer) % 1000"
	case Month:
		return "cast(strftime('%m', " + x + ") as integer)"
	case Year:
		return "cast(strftime('%Y', " + x + ") as integer)"
	case Weekday:
		return "cast(strftime('%w', " + x + ") as integer)"
	default:
		return "cast(round((julianday(" + x + ") - 2440587.5) * 86400000.0) as integer)"
	}
}

// CurrentDateTime renders date('now') and friends.
func (d *SQLiteDialect) CurrentDateTime(kind DateTimeKind) string {
	switch kind {
	case CurrentDate:
		return "date('now')"
	case CurrentTime:
		return "time('now')"
	default:
		return "datetime('now')"
	}
}

// OrderByItem renders an ORDER BY entry, emulating NULLS FIRST/LAST.
func (d *SQLiteDialect) OrderByItem(_ Renderer, column string, mode OrderMode) string {
	return renderOrderBy(column, mode, sqliteCapabilities, isNullKey)
}

// LimitOffset renders LIMIT/OFFSET. SQLite requires LIMIT before OFFSET, so an
// offset alone is paired with the unbounded limit -1.
func (d *SQLiteDialect) LimitOffset(r Renderer, limit, offset *int64, _ bool) string {
	var sb strings.Builder
	if limit != nil {
		sb.WriteString(" limit ")
		sb.WriteString(r.Value(Arg{Value: *limit, Type: schema.TypeInt}))
	} else if offset != nil {
		sb.WriteString(" limit -1")
	}
	if offset != nil {
		sb.WriteString(" offset ")
		sb.WriteString(r.Value(Arg{Value: *offset, Type: schema.TypeInt}))
	}
	return sb.String()
}

// DefaultValues renders an all-defaults insert source.
func (d *SQLiteDialect) DefaultValues(_ Renderer) string { return " default values" }

// InsertOutput returns "": ids come from LastInsertId.
func (d *SQLiteDialect) InsertOutput(_ Renderer, _ []string) string { return "" }

// InsertReturning returns "": ids come from LastInsertId.
func (d *SQLiteDialect) InsertReturning(_ Renderer, _ []string) string { return "" }
