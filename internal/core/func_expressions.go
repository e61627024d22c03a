// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package core

import (
	"github.com/coregx/sqlstage/internal/dialects"
	"github.com/coregx/sqlstage/internal/schema"
)

// =============================================================================
// Null-safe comparison
// =============================================================================

// IsExp is a null-safe comparison. It never degrades to "=" or "<>": each
// dialect supplies its own IS / IS NOT spelling.
type IsExp struct {
	Left  Expression
	Right interface{}
	Not   bool
}

// Is creates a null-safe equality test.
//
// Example:
//
//	sqlstage.Is(sqlstage.Col("name"), nil)
//
// Generates on SQLite: "name" is ?   with params [nil]
func Is(left Expression, v interface{}) Expression {
	return &IsExp{Left: left, Right: v}
}

// IsNot creates a null-safe inequality test.
func IsNot(left Expression, v interface{}) Expression {
	return &IsExp{Left: left, Right: v, Not: true}
}

// IsNull tests left for NULL.
func IsNull(left Expression) Expression {
	return Is(left, nil)
}

// IsNotNull tests left for a non-NULL value.
func IsNotNull(left Expression) Expression {
	return IsNot(left, nil)
}

// WriteSQL renders the dialect's null-safe comparison.
func (e *IsExp) WriteSQL(r dialects.Renderer) string {
	if e.Not {
		return r.Dialect().IsNot(r, e.Left, argFor(e.Left, e.Right))
	}
	return r.Dialect().Is(r, e.Left, argFor(e.Left, e.Right))
}

// =============================================================================
// Null coalescing
// =============================================================================

// CoalesceExp returns Left, or Right when Left is NULL.
type CoalesceExp struct {
	Left  Expression
	Right interface{}
}

// ValueWhenNull returns left, or v when left is NULL.
//
// Generates on SQLite: ifnull("nickname", ?)
func ValueWhenNull(left Expression, v interface{}) *CoalesceExp {
	return &CoalesceExp{Left: left, Right: v}
}

// WriteSQL renders the dialect's coalescing function.
func (e *CoalesceExp) WriteSQL(r dialects.Renderer) string {
	return r.Dialect().ValueWhenNull(r, e.Left, argFor(e.Left, e.Right))
}

func (e *CoalesceExp) valueType() schema.ValueType      { return typeOf(e.Left) }
func (e *CoalesceExp) valueAdapter() schema.TypeAdapter { return nil }
func (e *CoalesceExp) atomic()                          {}

// =============================================================================
// Arithmetic
// =============================================================================

// ArithmeticExp is a binary arithmetic operation. Division is rendered with
// explicit floating point casts on both sides.
type ArithmeticExp struct {
	Op    dialects.ArithOp
	Left  Expression
	Right interface{}
}

// Add creates left + v.
func Add(left Expression, v interface{}) *ArithmeticExp {
	return &ArithmeticExp{Op: dialects.Add, Left: left, Right: v}
}

// Subtract creates left - v.
func Subtract(left Expression, v interface{}) *ArithmeticExp {
	return &ArithmeticExp{Op: dialects.Subtract, Left: left, Right: v}
}

// Multiply creates left * v.
func Multiply(left Expression, v interface{}) *ArithmeticExp {
	return &ArithmeticExp{Op: dialects.Multiply, Left: left, Right: v}
}

// Divide creates a floating point left / v.
func Divide(left Expression, v interface{}) *ArithmeticExp {
	return &ArithmeticExp{Op: dialects.Divide, Left: left, Right: v}
}

// Modulo creates left % v.
func Modulo(left Expression, v interface{}) *ArithmeticExp {
	return &ArithmeticExp{Op: dialects.Modulo, Left: left, Right: v}
}

// WriteSQL renders the operation.
func (e *ArithmeticExp) WriteSQL(r dialects.Renderer) string {
	return r.Dialect().Arithmetic(r, e.Op, e.Left, argFor(e.Left, e.Right))
}

func (e *ArithmeticExp) valueType() schema.ValueType {
	if e.Op == dialects.Divide {
		return schema.TypeDouble
	}
	return typeOf(e.Left)
}

func (e *ArithmeticExp) valueAdapter() schema.TypeAdapter { return nil }

// =============================================================================
// Pattern matching
// =============================================================================

// MatchExp is a LIKE-family predicate. Except for Like and NotLike, the
// right operand is matched literally: its wildcard characters are escaped
// before the anchoring wildcards are added.
type MatchExp struct {
	Match dialects.Match
	Left  Expression
	Right interface{}
}

func match(kind dialects.MatchKind, insensitive bool, left Expression, v interface{}) *MatchExp {
	return &MatchExp{Match: dialects.Match{Kind: kind, Insensitive: insensitive}, Left: left, Right: v}
}

// Like matches left against a LIKE pattern given as-is.
func Like(left Expression, pattern interface{}) *MatchExp {
	return match(dialects.Like, false, left, pattern)
}

// NotLike negates Like.
func NotLike(left Expression, pattern interface{}) *MatchExp {
	return match(dialects.NotLike, false, left, pattern)
}

// LikeInsensitive is a case-insensitive Like.
func LikeInsensitive(left Expression, pattern interface{}) *MatchExp {
	return match(dialects.Like, true, left, pattern)
}

// NotLikeInsensitive is a case-insensitive NotLike.
func NotLikeInsensitive(left Expression, pattern interface{}) *MatchExp {
	return match(dialects.NotLike, true, left, pattern)
}

// StartsWith tests that left begins with v.
//
// Example:
//
//	sqlstage.StartsWith(sqlstage.Col("code"), "50%_off")
//
// Generates on SQLite: "code" like (? || '%') escape '\'   with params ["50\%\_off"]
func StartsWith(left Expression, v interface{}) *MatchExp {
	return match(dialects.StartsWith, false, left, v)
}

// NotStartsWith negates StartsWith.
func NotStartsWith(left Expression, v interface{}) *MatchExp {
	return match(dialects.NotStartsWith, false, left, v)
}

// StartsWithInsensitive is a case-insensitive StartsWith.
func StartsWithInsensitive(left Expression, v interface{}) *MatchExp {
	return match(dialects.StartsWith, true, left, v)
}

// NotStartsWithInsensitive is a case-insensitive NotStartsWith.
func NotStartsWithInsensitive(left Expression, v interface{}) *MatchExp {
	return match(dialects.NotStartsWith, true, left, v)
}

// EndsWith tests that left ends with v.
func EndsWith(left Expression, v interface{}) *MatchExp {
	return match(dialects.EndsWith, false, left, v)
}

// NotEndsWith negates EndsWith.
func NotEndsWith(left Expression, v interface{}) *MatchExp {
	return match(dialects.NotEndsWith, false, left, v)
}

// EndsWithInsensitive is a case-insensitive EndsWith.
func EndsWithInsensitive(left Expression, v interface{}) *MatchExp {
	return match(dialects.EndsWith, true, left, v)
}

// NotEndsWithInsensitive is a case-insensitive NotEndsWith.
func NotEndsWithInsensitive(left Expression, v interface{}) *MatchExp {
	return match(dialects.NotEndsWith, true, left, v)
}

// Contains tests that left contains v.
func Contains(left Expression, v interface{}) *MatchExp {
	return match(dialects.Contains, false, left, v)
}

// NotContains negates Contains.
func NotContains(left Expression, v interface{}) *MatchExp {
	return match(dialects.NotContains, false, left, v)
}

// ContainsInsensitive is a case-insensitive Contains.
func ContainsInsensitive(left Expression, v interface{}) *MatchExp {
	return match(dialects.Contains, true, left, v)
}

// NotContainsInsensitive is a case-insensitive NotContains.
func NotContainsInsensitive(left Expression, v interface{}) *MatchExp {
	return match(dialects.NotContains, true, left, v)
}

// WriteSQL renders the dialect's pattern predicate.
func (e *MatchExp) WriteSQL(r dialects.Renderer) string {
	arg := argFor(e.Left, e.Right)
	if arg.Type == schema.TypeAny {
		arg.Type = schema.TypeString
	}
	return r.Dialect().Match(r, e.Match, e.Left, arg)
}

// =============================================================================
// String aggregation
// =============================================================================

// StringConcatExp aggregates the values of Operand into one string.
type StringConcatExp struct {
	Operand   Expression
	Separator *string
	Distinct  bool
}

// GroupConcat concatenates the values of x with the dialect's default separator.
func GroupConcat(x Expression) *StringConcatExp {
	return &StringConcatExp{Operand: x}
}

// GroupConcatSep concatenates the values of x separated by sep.
func GroupConcatSep(x Expression, sep string) *StringConcatExp {
	return &StringConcatExp{Operand: x, Separator: &sep}
}

// GroupConcatDistinct concatenates the distinct values of x.
func GroupConcatDistinct(x Expression) *StringConcatExp {
	return &StringConcatExp{Operand: x, Distinct: true}
}

// GroupConcatDistinctSep concatenates the distinct values of x separated by sep.
// Not every backend accepts a separator together with DISTINCT; those report
// a capability error at compile time.
func GroupConcatDistinctSep(x Expression, sep string) *StringConcatExp {
	return &StringConcatExp{Operand: x, Separator: &sep, Distinct: true}
}

// WriteSQL renders the dialect's aggregate.
func (e *StringConcatExp) WriteSQL(r dialects.Renderer) string {
	return r.Dialect().StringConcat(r, e.Operand, e.Separator, e.Distinct)
}

func (e *StringConcatExp) valueType() schema.ValueType      { return schema.TypeString }
func (e *StringConcatExp) valueAdapter() schema.TypeAdapter { return nil }
func (e *StringConcatExp) atomic()                          {}

// =============================================================================
// Numeric functions
// =============================================================================

// NumericExp applies a math function.
type NumericExp struct {
	Func    dialects.NumericFunc
	Operand Expression
	Arg     *dialects.Arg
}

// Ln is the natural logarithm.
func Ln(x Expression) *NumericExp {
	return &NumericExp{Func: dialects.Ln, Operand: x}
}

// Log10 is the base-10 logarithm.
func Log10(x Expression) *NumericExp {
	return &NumericExp{Func: dialects.Log10, Operand: x}
}

// Cbrt is the cube root.
func Cbrt(x Expression) *NumericExp {
	return &NumericExp{Func: dialects.Cbrt, Operand: x}
}

// AsDouble casts x to the backend's double precision type.
func AsDouble(x Expression) *NumericExp {
	return &NumericExp{Func: dialects.AsDouble, Operand: x}
}

// MinValue is the smaller of x and v.
func MinValue(x Expression, v interface{}) *NumericExp {
	arg := argFor(x, v)
	return &NumericExp{Func: dialects.MinValue, Operand: x, Arg: &arg}
}

// MaxValue is the larger of x and v.
func MaxValue(x Expression, v interface{}) *NumericExp {
	arg := argFor(x, v)
	return &NumericExp{Func: dialects.MaxValue, Operand: x, Arg: &arg}
}

// WriteSQL renders the dialect's function.
func (e *NumericExp) WriteSQL(r dialects.Renderer) string {
	return r.Dialect().Numeric(r, e.Func, e.Operand, e.Arg)
}

func (e *NumericExp) valueType() schema.ValueType {
	switch e.Func {
	case dialects.MinValue, dialects.MaxValue:
		return typeOf(e.Operand)
	}
	return schema.TypeDouble
}

func (e *NumericExp) valueAdapter() schema.TypeAdapter { return nil }

// =============================================================================
// Date and time
// =============================================================================

// DatePartExp extracts one component of a date, time or timestamp as an integer.
type DatePartExp struct {
	Part    dialects.DatePart
	Operand Expression
}

func datePart(part dialects.DatePart, x Expression) *DatePartExp {
	return &DatePartExp{Part: part, Operand: x}
}

// DayOf returns the day of the month.
func DayOf(x Expression) *DatePartExp { return datePart(dialects.Day, x) }

// HourOf returns the hour.
func HourOf(x Expression) *DatePartExp { return datePart(dialects.Hour, x) }

// MinuteOf returns the minute.
func MinuteOf(x Expression) *DatePartExp { return datePart(dialects.Minute, x) }

// SecondOf returns the whole seconds.
func SecondOf(x Expression) *DatePartExp { return datePart(dialects.Second, x) }

// MillisecondOf returns the millisecond within the second.
func MillisecondOf(x Expression) *DatePartExp { return datePart(dialects.Millisecond, x) }

// MonthOf returns the month, 1 through 12.
func MonthOf(x Expression) *DatePartExp { return datePart(dialects.Month, x) }

// YearOf returns the year.
func YearOf(x Expression) *DatePartExp { return datePart(dialects.Year, x) }

// WeekdayOf returns the day of the week, 0 for Sunday.
func WeekdayOf(x Expression) *DatePartExp { return datePart(dialects.Weekday, x) }

// EpochMillisOf returns milliseconds since the Unix epoch.
func EpochMillisOf(x Expression) *DatePartExp { return datePart(dialects.EpochMillis, x) }

// WriteSQL renders the dialect's extraction.
func (e *DatePartExp) WriteSQL(r dialects.Renderer) string {
	return r.Dialect().DatePart(r, e.Part, e.Operand)
}

func (e *DatePartExp) valueType() schema.ValueType {
	if e.Part == dialects.EpochMillis {
		return schema.TypeBigint
	}
	return schema.TypeInt
}

func (e *DatePartExp) valueAdapter() schema.TypeAdapter { return nil }

// CurrentDateTimeExp is the database's current date, time or timestamp.
type CurrentDateTimeExp struct {
	Kind dialects.DateTimeKind
}

// CurrentDate is the current date on the database server.
func CurrentDate() *CurrentDateTimeExp {
	return &CurrentDateTimeExp{Kind: dialects.CurrentDate}
}

// CurrentTime is the current time of day on the database server.
func CurrentTime() *CurrentDateTimeExp {
	return &CurrentDateTimeExp{Kind: dialects.CurrentTime}
}

// CurrentTimestamp is the current timestamp on the database server.
func CurrentTimestamp() *CurrentDateTimeExp {
	return &CurrentDateTimeExp{Kind: dialects.CurrentTimestamp}
}

// WriteSQL renders the dialect's literal.
func (e *CurrentDateTimeExp) WriteSQL(r dialects.Renderer) string {
	return r.Dialect().CurrentDateTime(e.Kind)
}

func (e *CurrentDateTimeExp) valueType() schema.ValueType {
	switch e.Kind {
	case dialects.CurrentDate:
		return schema.TypeDate
	case dialects.CurrentTime:
		return schema.TypeTime
	}
	return schema.TypeTimestamp
}

func (e *CurrentDateTimeExp) valueAdapter() schema.TypeAdapter { return nil }
func (e *CurrentDateTimeExp) atomic()                          {}

// =============================================================================
// Boolean literals
// =============================================================================

// BoolExp is a boolean literal in the dialect's spelling.
type BoolExp struct {
	Value bool
}

// True is the boolean literal true.
func True() *BoolExp { return &BoolExp{Value: true} }

// False is the boolean literal false.
func False() *BoolExp { return &BoolExp{Value: false} }

// WriteSQL renders the dialect's literal.
func (e *BoolExp) WriteSQL(r dialects.Renderer) string {
	return r.Dialect().BoolLiteral(e.Value)
}

func (e *BoolExp) valueType() schema.ValueType      { return schema.TypeBool }
func (e *BoolExp) valueAdapter() schema.TypeAdapter { return nil }
func (e *BoolExp) atomic()                          {}
