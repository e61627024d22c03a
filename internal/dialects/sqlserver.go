package dialects

import (
	"strconv"
	"strings"

	"github.com/coregx/sqlstage/internal/schema"
)

// SQLServerDialect implements Microsoft SQL Server-specific SQL dialect.
type SQLServerDialect struct{}

func init() {
	RegisterDialect("sqlserver", &SQLServerDialect{})
	RegisterDialect("mssql", &SQLServerDialect{})
}

var sqlServerCapabilities = Capabilities{
	Returning:               true,
	ReturningMultiple:       true,
	ReturningStyle:          ReturningOutput,
	NullsSortFirstAscending: true,
	DefaultInValues:         true,
}

// LIKE in SQL Server also treats [ as a wildcard.
var sqlServerLikeEscape = []string{`\`, `\\`, "%", `\%`, "_", `\_`, "[", `\[`}

var sqlServerSyntax = matchSyntax{
	concat: infixConcat(" + "),
	infix:  true,
	escape: ` escape '\'`,
}

// ID returns SQLServer.
func (d *SQLServerDialect) ID() ID { return SQLServer }

// Capabilities returns the SQL Server capability matrix.
func (d *SQLServerDialect) Capabilities() Capabilities { return sqlServerCapabilities }

// IsReserved reports whether word is a reserved T-SQL keyword.
func (d *SQLServerDialect) IsReserved(word string) bool {
	return isReserved(sqlServerReserved, word)
}

// QuoteIdentifier quotes a T-SQL identifier using square brackets.
func (d *SQLServerDialect) QuoteIdentifier(s string) string {
	return "[" + strings.ReplaceAll(s, "]", "]]") + "]"
}

// Placeholder returns @p1, @p2, ... as expected by go-mssqldb.
func (d *SQLServerDialect) Placeholder(index int) string {
	return "@p" + strconv.Itoa(index)
}

// BoolLiteral spells booleans as bit values.
func (d *SQLServerDialect) BoolLiteral(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// LikeEscapes returns the backslash escape pairs including '['.
func (d *SQLServerDialect) LikeEscapes() []string { return sqlServerLikeEscape }

// TransformValueToDB normalizes uuids to text.
func (d *SQLServerDialect) TransformValueToDB(value interface{}, typ schema.ValueType) interface{} {
	if v, ok := normalizeUUID(value, typ); ok {
		return v
	}
	return value
}

// Is renders a null-safe equality via INTERSECT, which compares NULLs as equal.
func (d *SQLServerDialect) Is(r Renderer, left Operand, right Arg) string {
	return "exists(select " + r.SQL(left) + " intersect select " + r.Value(right) + ")"
}

// IsNot renders the negation of Is.
func (d *SQLServerDialect) IsNot(r Renderer, left Operand, right Arg) string {
	return "not exists(select " + r.SQL(left) + " intersect select " + r.Value(right) + ")"
}

// ValueWhenNull renders isnull(left, right).
func (d *SQLServerDialect) ValueWhenNull(r Renderer, left Operand, right Arg) string {
	return "isnull(" + r.SQL(left) + ", " + r.Value(right) + ")"
}

// Arithmetic renders arithmetic; division is done in float.
func (d *SQLServerDialect) Arithmetic(r Renderer, op ArithOp, left Operand, right Arg) string {
	return renderArithmetic(r, op, left, right, "float")
}

// Match renders LIKE predicates built with +.
func (d *SQLServerDialect) Match(r Renderer, m Match, left Operand, right Arg) string {
	return renderMatch(r, m, left, right, sqlServerSyntax)
}

// StringConcat renders string_agg, which has no DISTINCT form.
func (d *SQLServerDialect) StringConcat(r Renderer, operand Operand, separator *string, distinct bool) string {
	if distinct {
		r.Fail(&CapabilityError{Dialect: SQLServer, Capability: "distinct string aggregation"})
	}
	return renderStringConcat(r, "string_agg", operand, separator, false, "','")
}

// Numeric renders math functions.
func (d *SQLServerDialect) Numeric(r Renderer, fn NumericFunc, operand Operand, arg *Arg) string {
	switch fn {
	case Ln:
		return "log(" + r.SQL(operand) + ")"
	case Log10:
		return "log10(" + r.SQL(operand) + ")"
	case Cbrt:
		return "power(" + r.SQL(operand) + ", 1.0 / 3)"
	case AsDouble:
		return "cast(" + r.SQL(operand) + " as float)"
	case MinValue:
		return pairCall(r, "least", operand, arg)
	default:
		return pairCall(r, "greatest", operand, arg)
	}
}

// DatePart renders datepart(). Weekday is normalised with @@datefirst so
// Sunday is 0 under every language setting.
func (d *SQLServerDialect) DatePart(r Renderer, part DatePart, operand Operand) string {
	x := r.SQL(operand)
	switch part {
	case Day:
		return "datepart(day, " + x + ")"
	case Hour:
		return "datepart(hour, " + x + ")"
	case Minute:
		return "datepart(minute, " + x + ")"
	case Second:
		return "datepart(second, " + x + ")"
	case Millisecond:
		return "datepart(millisecond, " + x + ")"
	case Month:
		return "datepart(month, " + x + ")"
	case Year:
		return "datepart(year, " + x + ")"
	case Weekday:
		return "(datepart(weekday, " + x + ") + @@datefirst - 1) % 7"
	default:
		return "datediff_big(millisecond, '1970-01-01', " + x + ")"
	}
}

// CurrentDateTime renders getdate()-based literals.
func (d *SQLServerDialect) CurrentDateTime(kind DateTimeKind) string {
	switch kind {
	case CurrentDate:
		return "cast(getdate() as date)"
	case CurrentTime:
		return "cast(getdate() as time)"
	default:
		return "getdate()"
	}
}

// OrderByItem renders an ORDER BY entry. T-SQL cannot order by a boolean
// predicate, so the null key is a CASE expression.
func (d *SQLServerDialect) OrderByItem(_ Renderer, column string, mode OrderMode) string {
	return renderOrderBy(column, mode, sqlServerCapabilities, func(column string, nullsFirst bool) string {
		if nullsFirst {
			return "case when " + column + " is null then 0 else 1 end"
		}
		return "case when " + column + " is null then 1 else 0 end"
	})
}

// LimitOffset renders OFFSET ... FETCH, which requires an ORDER BY.
func (d *SQLServerDialect) LimitOffset(r Renderer, limit, offset *int64, ordered bool) string {
	if limit == nil && offset == nil {
		return ""
	}
	var sb strings.Builder
	if !ordered {
		sb.WriteString(" order by (select null)")
	}
	sb.WriteString(" offset ")
	if offset != nil {
		sb.WriteString(r.Value(Arg{Value: *offset, Type: schema.TypeInt}))
	} else {
		sb.WriteString("0")
	}
	sb.WriteString(" rows")
	if limit != nil {
		sb.WriteString(" fetch next ")
		sb.WriteString(r.Value(Arg{Value: *limit, Type: schema.TypeInt}))
		sb.WriteString(" rows only")
	}
	return sb.String()
}

// DefaultValues renders an all-defaults insert source.
func (d *SQLServerDialect) DefaultValues(_ Renderer) string { return " default values" }

// InsertOutput renders OUTPUT INSERTED.<col>.
func (d *SQLServerDialect) InsertOutput(r Renderer, columns []string) string {
	if len(columns) == 0 {
		return ""
	}
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = "inserted." + r.Escape(c)
	}
	return " output " + strings.Join(quoted, ", ")
}

// InsertReturning returns "": SQL Server uses OUTPUT.
func (d *SQLServerDialect) InsertReturning(_ Renderer, _ []string) string { return "" }
