package dialects

import (
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/coregx/sqlstage/internal/schema"
)

// PostgresDialect implements PostgreSQL-specific SQL dialect.
type PostgresDialect struct{}

func init() {
	RegisterDialect("postgres", &PostgresDialect{})
	RegisterDialect("postgresql", &PostgresDialect{})
	RegisterDialect("pgx", &PostgresDialect{})
}

var postgresCapabilities = Capabilities{
	Returning:               true,
	ReturningMultiple:       true,
	ReturningStyle:          ReturningClause,
	NativeNullsOrdering:     true,
	NullsSortFirstAscending: false,
	DefaultInValues:         true,
	DistinctStringAggregate: true,
}

var postgresSyntax = matchSyntax{
	concat: infixConcat(" || "),
	infix:  true,
	ilike:  "ilike",
	escape: ` escape '\'`,
}

// ID returns PostgreSQL.
func (d *PostgresDialect) ID() ID { return PostgreSQL }

// Capabilities returns the PostgreSQL capability matrix.
func (d *PostgresDialect) Capabilities() Capabilities { return postgresCapabilities }

// IsReserved reports whether word is a reserved PostgreSQL keyword.
func (d *PostgresDialect) IsReserved(word string) bool {
	return isReserved(postgresReserved, word)
}

// QuoteIdentifier quotes a PostgreSQL identifier using double quotes.
func (d *PostgresDialect) QuoteIdentifier(s string) string {
	return pq.QuoteIdentifier(s)
}

// Placeholder returns PostgreSQL placeholder format ($1, $2, etc.).
func (d *PostgresDialect) Placeholder(index int) string {
	return "$" + strconv.Itoa(index)
}

// BoolLiteral spells booleans as true/false.
func (d *PostgresDialect) BoolLiteral(b bool) string {
	return strconv.FormatBool(b)
}

// LikeEscapes returns the backslash escape pairs.
func (d *PostgresDialect) LikeEscapes() []string { return DefaultLikeEscape }

// TransformValueToDB normalizes uuids and truncates dates; drivers handle the rest.
func (d *PostgresDialect) TransformValueToDB(value interface{}, typ schema.ValueType) interface{} {
	if v, ok := normalizeUUID(value, typ); ok {
		return v
	}
	if t, ok := value.(time.Time); ok && typ == schema.TypeDate {
		return t.Format("2006-01-02")
	}
	return value
}

// Is renders IS NOT DISTINCT FROM.
func (d *PostgresDialect) Is(r Renderer, left Operand, right Arg) string {
	return r.SQLParens(left) + " is not distinct from " + r.ValueParens(right)
}

// IsNot renders IS DISTINCT FROM.
func (d *PostgresDialect) IsNot(r Renderer, left Operand, right Arg) string {
	return r.SQLParens(left) + " is distinct from " + r.ValueParens(right)
}

// ValueWhenNull renders coalesce(left, right).
func (d *PostgresDialect) ValueWhenNull(r Renderer, left Operand, right Arg) string {
	return "coalesce(" + r.SQL(left) + ", " + r.Value(right) + ")"
}

// Arithmetic renders arithmetic; division is done in double precision.
func (d *PostgresDialect) Arithmetic(r Renderer, op ArithOp, left Operand, right Arg) string {
	return renderArithmetic(r, op, left, right, "double precision")
}

// Match renders LIKE/ILIKE predicates.
func (d *PostgresDialect) Match(r Renderer, m Match, left Operand, right Arg) string {
	return renderMatch(r, m, left, right, postgresSyntax)
}

// StringConcat renders string_agg; the separator is mandatory there.
func (d *PostgresDialect) StringConcat(r Renderer, operand Operand, separator *string, distinct bool) string {
	return renderStringConcat(r, "string_agg", operand, separator, distinct, "','")
}

// Numeric renders math functions.
func (d *PostgresDialect) Numeric(r Renderer, fn NumericFunc, operand Operand, arg *Arg) string {
	switch fn {
	case Ln:
		return "ln(" + r.SQL(operand) + ")"
	case Log10:
		return "log(" + r.SQL(operand) + ")"
	case Cbrt:
		return "cbrt(" + r.SQL(operand) + ")"
	case AsDouble:
		return r.SQLParens(operand) + "::float"
	case MinValue:
		return pairCall(r, "least", operand, arg)
	default:
		return pairCall(r, "greatest", operand, arg)
	}
}

// DatePart renders extract().
func (d *PostgresDialect) DatePart(r Renderer, part DatePart, operand Operand) string {
	x := r.SQL(operand)
	switch part {
	case Day:
		return "extract(day from " + x + ")::integer"
	case Hour:
		return "extract(hour from " + x + ")::integer"
	case Minute:
		return "extract(minute from " + x + ")::integer"
	case Second:
		return "trunc(extract(second from " + x + "))::integer"
	case Millisecond:
		return "floor(extract(milliseconds from " + x + "))::integer % 1000"
	case Month:
		return "extract(month from " + x + ")::integer"
	case Year:
		return "extract(year from " + x + ")::integer"
	case Weekday:
		return "extract(dow from " + x + ")::integer"
	default:
		return "round(extract(epoch from " + x + ") * 1000)::bigint"
	}
}

// CurrentDateTime renders the SQL-standard current_* literals.
func (d *PostgresDialect) CurrentDateTime(kind DateTimeKind) string {
	switch kind {
	case CurrentDate:
		return "current_date"
	case CurrentTime:
		return "current_time"
	default:
		return "current_timestamp"
	}
}

// OrderByItem renders an ORDER BY entry with native NULLS FIRST/LAST.
func (d *PostgresDialect) OrderByItem(_ Renderer, column string, mode OrderMode) string {
	return renderOrderBy(column, mode, postgresCapabilities, isNullKey)
}

// LimitOffset renders independent LIMIT and OFFSET clauses.
func (d *PostgresDialect) LimitOffset(r Renderer, limit, offset *int64, _ bool) string {
	var sb strings.Builder
	if limit != nil {
		sb.WriteString(" limit ")
		sb.WriteString(r.Value(Arg{Value: *limit, Type: schema.TypeInt}))
	}
	if offset != nil {
		sb.WriteString(" offset ")
		sb.WriteString(r.Value(Arg{Value: *offset, Type: schema.TypeInt}))
	}
	return sb.String()
}

// DefaultValues renders an all-defaults insert source.
func (d *PostgresDialect) DefaultValues(_ Renderer) string { return " default values" }

// InsertOutput returns "": PostgreSQL uses RETURNING.
func (d *PostgresDialect) InsertOutput(_ Renderer, _ []string) string { return "" }

// InsertReturning renders RETURNING.
func (d *PostgresDialect) InsertReturning(r Renderer, columns []string) string {
	if len(columns) == 0 {
		return ""
	}
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = r.Escape(c)
	}
	return " returning " + strings.Join(quoted, ", ")
}
