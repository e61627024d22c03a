// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/coregx/sqlstage/internal/dialects"
	"github.com/coregx/sqlstage/internal/schema"
)

// Expression represents a database expression that can be embedded in a SQL statement.
// Expressions render themselves through the compiler, which owns the parameter
// array; every literal is bound through the value encoder.
//
// Example:
//
//	users := schema.NewTable("users", schema.Col("name", schema.TypeString))
//	sqlstage.Select(users).Where(
//	    sqlstage.Eq(sqlstage.TableCol(users, "name"), "alice"),
//	)
type Expression interface {
	dialects.Operand
}

// typedExpression is implemented by expressions that carry a semantic value
// type. Right-hand literals compared against them are encoded with that type.
type typedExpression interface {
	valueType() schema.ValueType
	valueAdapter() schema.TypeAdapter
}

// atomicExpression marks expressions that never need parentheses.
type atomicExpression interface {
	atomic()
}

// argFor binds v against the type and adapter of left.
func argFor(left Expression, v interface{}) dialects.Arg {
	arg := dialects.Arg{Value: v, Type: schema.TypeAny}
	if t, ok := left.(typedExpression); ok {
		arg.Type = t.valueType()
		arg.Adapter = t.valueAdapter()
	}
	return arg
}

// typeOf returns the value type of e, or TypeAny.
func typeOf(e Expression) schema.ValueType {
	if t, ok := e.(typedExpression); ok {
		return t.valueType()
	}
	return schema.TypeAny
}

// ColumnExp references a column, optionally qualified by its table.
type ColumnExp struct {
	Table   string
	Name    string
	Type    schema.ValueType
	Adapter schema.TypeAdapter
}

// Col references an unqualified column of unknown type.
func Col(name string) *ColumnExp {
	return &ColumnExp{Name: name, Type: schema.TypeAny}
}

// TypedCol references an unqualified column with a semantic type.
func TypedCol(name string, typ schema.ValueType) *ColumnExp {
	return &ColumnExp{Name: name, Type: typ}
}

// TableCol references a declared column of t, qualified by the table name.
// Literals compared against it are encoded with the column's type and adapter.
// It panics if t does not declare the column.
func TableCol(t *schema.Table, name string) *ColumnExp {
	c, ok := t.Column(name)
	if !ok {
		panic(fmt.Sprintf("sqlstage: table %q has no column %q", t.Name(), name))
	}
	return &ColumnExp{Table: t.Name(), Name: c.Name, Type: c.Type, Adapter: c.Adapter}
}

// WriteSQL renders the quoted column reference.
func (e *ColumnExp) WriteSQL(r dialects.Renderer) string {
	if e.Table == "" {
		return r.Escape(e.Name)
	}
	return r.Escape(e.Table) + "." + r.Escape(e.Name)
}

func (e *ColumnExp) valueType() schema.ValueType      { return e.Type }
func (e *ColumnExp) valueAdapter() schema.TypeAdapter { return e.Adapter }
func (e *ColumnExp) atomic()                          {}

// ValueExp is a literal bound as a parameter.
type ValueExp struct {
	Value   interface{}
	Type    schema.ValueType
	Adapter schema.TypeAdapter
}

// Val binds v as a parameter of unknown type.
func Val(v interface{}) *ValueExp {
	return &ValueExp{Value: v, Type: schema.TypeAny}
}

// TypedVal binds v as a parameter of the given semantic type.
func TypedVal(v interface{}, typ schema.ValueType) *ValueExp {
	return &ValueExp{Value: v, Type: typ}
}

// AdaptedVal binds v through a type adapter before the dialect transformation.
func AdaptedVal(v interface{}, typ schema.ValueType, adapter schema.TypeAdapter) *ValueExp {
	return &ValueExp{Value: v, Type: typ, Adapter: adapter}
}

// WriteSQL binds the value and returns its placeholder.
func (e *ValueExp) WriteSQL(r dialects.Renderer) string {
	return r.Value(dialects.Arg{Value: e.Value, Type: e.Type, Adapter: e.Adapter})
}

func (e *ValueExp) valueType() schema.ValueType      { return e.Type }
func (e *ValueExp) valueAdapter() schema.TypeAdapter { return e.Adapter }
func (e *ValueExp) atomic()                          {}

// RawExp represents a raw SQL expression with optional parameter bindings.
// Use this when you need to embed custom SQL that isn't covered by other expression types.
// Identifiers in raw SQL are not quoted.
//
// Example:
//
//	sqlstage.NewExp("age > ? and status = ?", 18, "active")
type RawExp struct {
	SQL  string
	Args []interface{}
}

// NewExp creates a new raw SQL expression with optional parameter bindings.
// Each ? outside a string literal is replaced with the dialect's placeholder
// for the next argument. Missing arguments bind as NULL.
func NewExp(sql string, args ...interface{}) *RawExp {
	return &RawExp{SQL: sql, Args: args}
}

// WriteSQL renders the raw SQL with its arguments bound in order.
func (e *RawExp) WriteSQL(r dialects.Renderer) string {
	var sb strings.Builder
	next := 0
	quoted := false
	for i := 0; i < len(e.SQL); i++ {
		ch := e.SQL[i]
		switch {
		case ch == '\'':
			quoted = !quoted
			sb.WriteByte(ch)
		case ch == '?' && !quoted:
			var v interface{}
			if next < len(e.Args) {
				v = e.Args[next]
			}
			next++
			sb.WriteString(r.Value(dialects.Arg{Value: v, Type: schema.TypeAny}))
		default:
			sb.WriteByte(ch)
		}
	}
	if next < len(e.Args) {
		r.Fail(fmt.Errorf("sqlstage: raw expression %q has %d placeholders for %d arguments", e.SQL, next, len(e.Args)))
	}
	return sb.String()
}

// HashExp represents a hash-based expression using a map of column-value pairs.
// It provides convenient syntax for common equality conditions.
//
// Special value handling:
//   - nil value → null-safe "column IS NULL" through the dialect
//   - []interface{} → "column in (...)"
//   - Expression → "column = (expression)"
//
// Map keys are sorted so the generated SQL is deterministic.
type HashExp map[string]interface{}

// WriteSQL renders the conditions joined with AND.
func (e HashExp) WriteSQL(r dialects.Renderer) string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	exps := make([]Expression, 0, len(keys))
	for _, key := range keys {
		switch v := e[key].(type) {
		case []interface{}:
			exps = append(exps, In(Col(key), v...))
		default:
			exps = append(exps, Eq(Col(key), v))
		}
	}
	return And(exps...).WriteSQL(r)
}

// CompareExp represents a binary comparison.
type CompareExp struct {
	Left  Expression
	Op    string
	Right interface{}
}

// Eq compares left with v. A nil v renders the dialect's null-safe IS
// comparison rather than "=", so the predicate keeps three-valued semantics.
func Eq(left Expression, v interface{}) Expression {
	if isNil(v) {
		return Is(left, nil)
	}
	return &CompareExp{Left: left, Op: "=", Right: v}
}

// NotEq is the negation of Eq; a nil v renders the dialect's IS NOT comparison.
func NotEq(left Expression, v interface{}) Expression {
	if isNil(v) {
		return IsNot(left, nil)
	}
	return &CompareExp{Left: left, Op: "<>", Right: v}
}

// LessThan creates a "<" comparison.
func LessThan(left Expression, v interface{}) Expression {
	return &CompareExp{Left: left, Op: "<", Right: v}
}

// LessOrEqual creates a "<=" comparison.
func LessOrEqual(left Expression, v interface{}) Expression {
	return &CompareExp{Left: left, Op: "<=", Right: v}
}

// GreaterThan creates a ">" comparison.
func GreaterThan(left Expression, v interface{}) Expression {
	return &CompareExp{Left: left, Op: ">", Right: v}
}

// GreaterOrEqual creates a ">=" comparison.
func GreaterOrEqual(left Expression, v interface{}) Expression {
	return &CompareExp{Left: left, Op: ">=", Right: v}
}

// WriteSQL renders the comparison.
func (e *CompareExp) WriteSQL(r dialects.Renderer) string {
	return r.SQLParens(e.Left) + " " + e.Op + " " + r.ValueParens(argFor(e.Left, e.Right))
}

// InExp represents an IN or NOT IN list.
type InExp struct {
	Left   Expression
	Values []interface{}
	Not    bool
}

// In creates an "in (...)" predicate. An empty list is always false.
func In(left Expression, values ...interface{}) Expression {
	return &InExp{Left: left, Values: values}
}

// NotIn creates a "not in (...)" predicate. An empty list is always true.
func NotIn(left Expression, values ...interface{}) Expression {
	return &InExp{Left: left, Values: values, Not: true}
}

// WriteSQL renders the predicate.
func (e *InExp) WriteSQL(r dialects.Renderer) string {
	if len(e.Values) == 0 {
		return r.Dialect().BoolLiteral(e.Not) + " = " + r.Dialect().BoolLiteral(true)
	}
	parts := make([]string, len(e.Values))
	for i, v := range e.Values {
		parts[i] = r.Value(argFor(e.Left, v))
	}
	op := " in ("
	if e.Not {
		op = " not in ("
	}
	return r.SQLParens(e.Left) + op + strings.Join(parts, ", ") + ")"
}

// BetweenExp represents a BETWEEN range test.
type BetweenExp struct {
	Left     Expression
	From, To interface{}
	Not      bool
}

// Between creates a "between ? and ?" predicate.
func Between(left Expression, from, to interface{}) Expression {
	return &BetweenExp{Left: left, From: from, To: to}
}

// NotBetween creates a "not between ? and ?" predicate.
func NotBetween(left Expression, from, to interface{}) Expression {
	return &BetweenExp{Left: left, From: from, To: to, Not: true}
}

// WriteSQL renders the predicate.
func (e *BetweenExp) WriteSQL(r dialects.Renderer) string {
	op := " between "
	if e.Not {
		op = " not between "
	}
	return r.SQLParens(e.Left) + op + r.ValueParens(argFor(e.Left, e.From)) +
		" and " + r.ValueParens(argFor(e.Left, e.To))
}

// AndOrExp represents an AND or OR combination of multiple expressions.
type AndOrExp struct {
	Exps []Expression
	Op   string // "and" or "or"
}

// And generates an AND expression which concatenates multiple expressions with AND.
// Nil expressions are automatically filtered out. An empty conjunction is true.
//
// Example:
//
//	sqlstage.And(
//	    sqlstage.Eq(sqlstage.Col("status"), 1),
//	    sqlstage.GreaterThan(sqlstage.Col("age"), 18),
//	)
//
// Generates: ("status" = ?) and ("age" > ?)
func And(exps ...Expression) Expression {
	return &AndOrExp{Exps: exps, Op: "and"}
}

// Or generates an OR expression which concatenates multiple expressions with OR.
// Nil expressions are automatically filtered out. An empty disjunction is false.
func Or(exps ...Expression) Expression {
	return &AndOrExp{Exps: exps, Op: "or"}
}

// WriteSQL renders the combination.
func (e *AndOrExp) WriteSQL(r dialects.Renderer) string {
	parts := make([]string, 0, len(e.Exps))
	for _, exp := range e.Exps {
		if exp == nil {
			continue
		}
		parts = append(parts, r.SQL(exp))
	}

	switch len(parts) {
	case 0:
		d := r.Dialect()
		return d.BoolLiteral(e.Op == "and") + " = " + d.BoolLiteral(true)
	case 1:
		return parts[0]
	}
	return "(" + strings.Join(parts, ") "+e.Op+" (") + ")"
}

// NotExp represents a NOT expression which prefixes NOT to an expression.
type NotExp struct {
	Exp Expression
}

// Not generates a NOT expression which prefixes "not" to the specified expression.
func Not(exp Expression) Expression {
	return &NotExp{Exp: exp}
}

// WriteSQL renders the negation.
func (e *NotExp) WriteSQL(r dialects.Renderer) string {
	return "not (" + r.SQL(e.Exp) + ")"
}

// SubqueryExp embeds a select as a scalar or row-set operand.
type SubqueryExp struct {
	Query *SelectQuery
}

// Subquery embeds q as a parenthesized operand.
func Subquery(q *SelectQuery) *SubqueryExp {
	return &SubqueryExp{Query: q}
}

// WriteSQL renders "(select ...)". Parameters of the subquery are bound in
// place, so placeholder order follows the text.
func (e *SubqueryExp) WriteSQL(r dialects.Renderer) string {
	return "(" + e.Query.WriteSQL(r) + ")"
}

func (e *SubqueryExp) atomic() {}

// ExistsExp represents EXISTS or NOT EXISTS over a subquery.
type ExistsExp struct {
	Query *SelectQuery
	Not   bool
}

// Exists creates an "exists (select ...)" predicate.
func Exists(q *SelectQuery) Expression {
	return &ExistsExp{Query: q}
}

// NotExists creates a "not exists (select ...)" predicate.
func NotExists(q *SelectQuery) Expression {
	return &ExistsExp{Query: q, Not: true}
}

// WriteSQL renders the predicate.
func (e *ExistsExp) WriteSQL(r dialects.Renderer) string {
	if e.Not {
		return "not exists (" + e.Query.WriteSQL(r) + ")"
	}
	return "exists (" + e.Query.WriteSQL(r) + ")"
}

// InSelect creates "left in (select ...)".
func InSelect(left Expression, q *SelectQuery) Expression {
	return &inSelectExp{left: left, query: q}
}

// NotInSelect creates "left not in (select ...)".
func NotInSelect(left Expression, q *SelectQuery) Expression {
	return &inSelectExp{left: left, query: q, not: true}
}

type inSelectExp struct {
	left  Expression
	query *SelectQuery
	not   bool
}

func (e *inSelectExp) WriteSQL(r dialects.Renderer) string {
	op := " in ("
	if e.not {
		op = " not in ("
	}
	return r.SQLParens(e.left) + op + e.query.WriteSQL(r) + ")"
}

// AliasExp names a projected expression.
type AliasExp struct {
	Exp   Expression
	Alias string
}

// As names exp in a select projection. The alias is what an insert-from-select
// matches against target columns.
func As(exp Expression, alias string) *AliasExp {
	return &AliasExp{Exp: exp, Alias: alias}
}

// WriteSQL renders "expression as alias".
func (e *AliasExp) WriteSQL(r dialects.Renderer) string {
	return r.SQL(e.Exp) + " as " + r.Escape(e.Alias)
}
