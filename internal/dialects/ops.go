package dialects

import (
	"fmt"
	"strings"

	"github.com/coregx/sqlstage/internal/schema"
)

// ArithOp is a binary arithmetic operator.
type ArithOp int

// Arithmetic operators.
const (
	Add ArithOp = iota
	Subtract
	Multiply
	Divide
	Modulo
)

func (op ArithOp) symbol() string {
	switch op {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	default:
		return "%"
	}
}

// MatchKind selects a pattern-matching predicate.
type MatchKind int

// Pattern-matching predicates. Like and NotLike take the pattern as given;
// the others escape wildcards in the argument and add their own anchors.
const (
	Like MatchKind = iota
	NotLike
	StartsWith
	NotStartsWith
	EndsWith
	NotEndsWith
	Contains
	NotContains
)

// Match is a pattern-matching predicate plus its case sensitivity.
type Match struct {
	Kind        MatchKind
	Insensitive bool
}

func (k MatchKind) negated() bool {
	switch k {
	case NotLike, NotStartsWith, NotEndsWith, NotContains:
		return true
	}
	return false
}

// anchors reports whether the pattern gets a leading and trailing '%'.
func (k MatchKind) anchors() (leading, trailing bool) {
	switch k {
	case StartsWith, NotStartsWith:
		return false, true
	case EndsWith, NotEndsWith:
		return true, false
	case Contains, NotContains:
		return true, true
	}
	return false, false
}

// NumericFunc is a scalar numeric function.
type NumericFunc int

// Numeric functions. MinValue and MaxValue are pairwise and take an argument.
const (
	Ln NumericFunc = iota
	Log10
	Cbrt
	AsDouble
	MinValue
	MaxValue
)

// DatePart is a date/time component to extract.
type DatePart int

// Date parts. Weekday counts from Sunday = 0. EpochMillis is milliseconds since
// the Unix epoch.
const (
	Day DatePart = iota
	Hour
	Minute
	Second
	Millisecond
	Month
	Year
	Weekday
	EpochMillis
)

// DateTimeKind selects a current date/time literal.
type DateTimeKind int

// Current date/time literals.
const (
	CurrentDate DateTimeKind = iota
	CurrentTime
	CurrentTimestamp
)

// OrderMode is the direction and null placement of an ORDER BY entry.
type OrderMode int

// Order modes. OrderDefault renders the bare column.
const (
	OrderDefault OrderMode = iota
	Asc
	Desc
	AscNullsFirst
	AscNullsLast
	DescNullsFirst
	DescNullsLast
)

var orderModeNames = map[OrderMode]string{
	OrderDefault:   "",
	Asc:            "asc",
	Desc:           "desc",
	AscNullsFirst:  "asc nulls first",
	AscNullsLast:   "asc nulls last",
	DescNullsFirst: "desc nulls first",
	DescNullsLast:  "desc nulls last",
}

func (m OrderMode) String() string {
	return orderModeNames[m]
}

// ParseOrderMode parses "asc", "desc nulls last", and so on. Case and
// surrounding whitespace are ignored; the empty string is OrderDefault.
func ParseOrderMode(s string) (OrderMode, error) {
	norm := strings.Join(strings.Fields(strings.ToLower(s)), " ")
	for mode, name := range orderModeNames {
		if name == norm {
			return mode, nil
		}
	}
	return OrderDefault, fmt.Errorf("unknown order mode %q", s)
}

func (m OrderMode) descending() bool {
	return m == Desc || m == DescNullsFirst || m == DescNullsLast
}

// nullsPlacement returns whether the mode pins nulls, and whether first.
func (m OrderMode) nullsPlacement() (pinned, first bool) {
	switch m {
	case AscNullsFirst, DescNullsFirst:
		return true, true
	case AscNullsLast, DescNullsLast:
		return true, false
	}
	return false, false
}

// renderOrderBy renders one ORDER BY entry. Without native NULLS syntax a null
// test key is placed ahead of the direction key, and only when the requested
// placement differs from where the backend puts nulls anyway.
func renderOrderBy(column string, mode OrderMode, caps Capabilities, nullKey func(column string, nullsFirst bool) string) string {
	if mode == OrderDefault {
		return column
	}
	dir := " asc"
	if mode.descending() {
		dir = " desc"
	}
	pinned, first := mode.nullsPlacement()
	if !pinned {
		return column + dir
	}
	if caps.NativeNullsOrdering {
		if first {
			return column + dir + " nulls first"
		}
		return column + dir + " nulls last"
	}
	defaultFirst := caps.NullsSortFirstAscending != mode.descending()
	if first == defaultFirst {
		return column + dir
	}
	return nullKey(column, first) + ", " + column + dir
}

// isNullKey is the boolean ordering key for backends that sort false before true.
func isNullKey(column string, nullsFirst bool) string {
	if nullsFirst {
		return column + " is not null"
	}
	return column + " is null"
}

// matchSyntax captures how a dialect spells pattern concatenation and
// case-insensitive matching.
type matchSyntax struct {
	// concat joins pattern parts; infix reports whether the result needs
	// parentheses when used bare.
	concat func(parts ...string) string
	infix  bool
	// ilike is the native case-insensitive operator, or "" to fold with lower().
	ilike  string
	escape string
}

func renderMatch(r Renderer, m Match, left Operand, right Arg, syn matchSyntax) string {
	leading, trailing := m.Kind.anchors()

	var pattern string
	if m.Kind == Like || m.Kind == NotLike {
		pattern = r.Value(right)
	} else {
		parts := make([]string, 0, 3)
		if leading {
			parts = append(parts, "'%'")
		}
		parts = append(parts, r.LikeValue(right))
		if trailing {
			parts = append(parts, "'%'")
		}
		pattern = parts[0]
		if len(parts) > 1 {
			pattern = syn.concat(parts...)
			if syn.infix && !(m.Insensitive && syn.ilike == "") {
				pattern = "(" + pattern + ")"
			}
		}
	}

	op := "like"
	if m.Insensitive && syn.ilike != "" {
		op = syn.ilike
	}
	if m.Kind.negated() {
		op = "not " + op
	}

	if m.Insensitive && syn.ilike == "" {
		return "lower(" + r.SQL(left) + ") " + op + " lower(" + pattern + ")" + syn.escape
	}
	return r.SQLParens(left) + " " + op + " " + pattern + syn.escape
}

func infixConcat(sep string) func(parts ...string) string {
	return func(parts ...string) string {
		return strings.Join(parts, sep)
	}
}

// renderArithmetic renders a binary arithmetic operation; division casts both
// sides to castType so integer operands do not truncate.
func renderArithmetic(r Renderer, op ArithOp, left Operand, right Arg, castType string) string {
	if op == Divide {
		return "cast(" + r.SQL(left) + " as " + castType + ") / cast(" + r.Value(right) + " as " + castType + ")"
	}
	return r.SQLParens(left) + " " + op.symbol() + " " + r.ValueParens(right)
}

// renderStringConcat renders a group_concat style aggregate where the separator
// is a bound value. fn is the aggregate name; defaultSep is used when separator is nil
// and the aggregate requires one.
func renderStringConcat(r Renderer, fn string, operand Operand, separator *string, distinct bool, defaultSep string) string {
	inner := r.SQL(operand)
	if distinct {
		inner = "distinct " + inner
	}
	switch {
	case separator == nil && defaultSep == "":
		return fn + "(" + inner + ")"
	case separator == nil:
		return fn + "(" + inner + ", " + defaultSep + ")"
	case *separator == "":
		return fn + "(" + inner + ", '')"
	}
	return fn + "(" + inner + ", " + r.Value(Arg{Value: *separator, Type: schema.TypeString}) + ")"
}
