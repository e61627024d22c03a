package core

import (
	"errors"
	"regexp"
	"strings"

	"github.com/coregx/sqlstage/internal/dialects"
)

// QuoteMode controls when identifiers are quoted.
type QuoteMode int

const (
	// QuoteAlways quotes every identifier.
	QuoteAlways QuoteMode = iota
	// QuoteReserved quotes only reserved words and identifiers that are not
	// plain lower-case names.
	QuoteReserved
)

// ParseQuoteMode parses "always" or "reserved". The empty string is QuoteAlways.
func ParseQuoteMode(s string) (QuoteMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "always":
		return QuoteAlways, nil
	case "reserved":
		return QuoteReserved, nil
	}
	return QuoteAlways, errors.New("sqlstage: unknown quote mode " + s)
}

var plainIdentifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

var errNilExpression = errors.New("sqlstage: nil expression")

// CompileOption customizes a single compilation.
type CompileOption func(*compiler)

// WithQuoting sets the identifier quoting policy.
func WithQuoting(mode QuoteMode) CompileOption {
	return func(c *compiler) {
		c.quote = mode
	}
}

// compiler renders a statement or expression tree. It implements
// dialects.Renderer and owns the parameter array of one compilation.
type compiler struct {
	dialect dialects.Dialect
	enc     *ValueEncoder
	quote   QuoteMode
	err     error
}

// Compile renders stmt for dialect d and returns the SQL text and its
// parameters. It is pure: compiling the same statement twice yields the same
// text and an equal, freshly allocated parameter array. If any part of the
// tree fails, no SQL is returned.
func Compile(stmt dialects.Operand, d dialects.Dialect, opts ...CompileOption) (string, []interface{}, error) {
	if d == nil {
		return "", nil, ErrUnsupportedDialect
	}
	c := &compiler{dialect: d, enc: NewValueEncoder(d)}
	for _, opt := range opts {
		opt(c)
	}
	sql := c.SQL(stmt)
	if c.err != nil {
		return "", nil, c.err
	}
	return sql, c.enc.Params(), nil
}

// SQL renders op.
func (c *compiler) SQL(op dialects.Operand) string {
	if op == nil || isNil(op) {
		c.Fail(errNilExpression)
		return ""
	}
	return op.WriteSQL(c)
}

// SQLParens renders op, parenthesized unless it is atomic.
func (c *compiler) SQLParens(op dialects.Operand) string {
	s := c.SQL(op)
	if _, ok := op.(atomicExpression); ok {
		return s
	}
	return "(" + s + ")"
}

// Value binds a literal, or renders an expression passed as a value.
func (c *compiler) Value(arg dialects.Arg) string {
	if op, ok := arg.Value.(dialects.Operand); ok {
		return c.SQL(op)
	}
	return c.enc.Append(arg.Value, arg.Type, arg.Adapter)
}

// ValueParens is Value with non-atomic expressions parenthesized.
func (c *compiler) ValueParens(arg dialects.Arg) string {
	if op, ok := arg.Value.(dialects.Operand); ok {
		return c.SQLParens(op)
	}
	return c.enc.Append(arg.Value, arg.Type, arg.Adapter)
}

// LikeValue escapes LIKE wildcards before binding. String literals are
// escaped in Go; expressions are wrapped in replace() calls whose search and
// replacement strings are themselves bound parameters.
func (c *compiler) LikeValue(arg dialects.Arg) string {
	pairs := c.dialect.LikeEscapes()
	if op, ok := arg.Value.(dialects.Operand); ok {
		s := c.SQL(op)
		for i := 0; i+1 < len(pairs); i += 2 {
			from := c.enc.Append(pairs[i], arg.Type, nil)
			to := c.enc.Append(pairs[i+1], arg.Type, nil)
			s = "replace(" + s + ", " + from + ", " + to + ")"
		}
		return s
	}
	if s, ok := deref(arg.Value).(string); ok {
		arg.Value = dialects.EscapeLike(s, pairs)
	}
	return c.enc.Append(arg.Value, arg.Type, arg.Adapter)
}

// Escape quotes a possibly schema-qualified identifier.
func (c *compiler) Escape(identifier string) string {
	if identifier == "*" {
		return identifier
	}
	parts := strings.Split(identifier, ".")
	for i, part := range parts {
		if part == "*" {
			continue
		}
		if c.quote == QuoteReserved && plainIdentifier.MatchString(part) && !c.dialect.IsReserved(part) {
			continue
		}
		parts[i] = c.dialect.QuoteIdentifier(part)
	}
	return strings.Join(parts, ".")
}

// Fail records the first error of the compilation.
func (c *compiler) Fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// Dialect returns the target dialect.
func (c *compiler) Dialect() dialects.Dialect {
	return c.dialect
}
