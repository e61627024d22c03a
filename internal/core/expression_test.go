package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/sqlstage/internal/dialects"
	"github.com/coregx/sqlstage/internal/schema"
)

var usersTable = schema.NewTable("users",
	schema.Col("id", schema.TypeBigint).AsAutoID(),
	schema.Col("name", schema.TypeString),
	schema.Col("email", schema.TypeString).AsOptional(),
	schema.Col("active", schema.TypeBool).WithDefault(),
)

func compileFor(t *testing.T, driver string, exp dialects.Operand) (string, []interface{}) {
	t.Helper()
	sql, params, err := Compile(exp, dialects.GetDialect(driver))
	require.NoError(t, err)
	return sql, params
}

// TestRawExp tests raw SQL expressions with and without args
func TestRawExp(t *testing.T) {
	tests := []struct {
		name     string
		dialect  string
		sql      string
		args     []interface{}
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			name:    "without args",
			dialect: "postgres",
			sql:     "age > 18 and status = 'active'",
			wantSQL: "age > 18 and status = 'active'",
		},
		{
			name:     "with args",
			dialect:  "postgres",
			sql:      "age > ? and status = ?",
			args:     []interface{}{18, "active"},
			wantSQL:  "age > $1 and status = $2",
			wantArgs: []interface{}{18, "active"},
		},
		{
			name:     "question mark in literal",
			dialect:  "sqlite",
			sql:      "note = '?' and id = ?",
			args:     []interface{}{7},
			wantSQL:  "note = '?' and id = ?",
			wantArgs: []interface{}{7},
		},
		{
			name:     "missing arg binds null",
			dialect:  "sqlite",
			sql:      "a = ? and b = ?",
			args:     []interface{}{1},
			wantSQL:  "a = ? and b = ?",
			wantArgs: []interface{}{1, nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := compileFor(t, tt.dialect, NewExp(tt.sql, tt.args...))
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestRawExp_TooManyArgs(t *testing.T) {
	_, _, err := Compile(NewExp("a = ?", 1, 2), dialects.GetDialect("sqlite"))
	assert.Error(t, err)
}

// TestHashExp tests hash expressions
func TestHashExp(t *testing.T) {
	sql, args := compileFor(t, "sqlite", HashExp{
		"status": "active",
		"age":    []interface{}{18, 21},
		"email":  nil,
	})
	assert.Equal(t, `("age" in (?, ?)) and ("email" is ?) and ("status" = ?)`, sql)
	assert.Equal(t, []interface{}{18, 21, nil, "active"}, args)

	sql, args = compileFor(t, "sqlite", HashExp{})
	assert.Equal(t, "1 = 1", sql)
	assert.Nil(t, args)
}

func TestEq_NilUsesNullSafeComparison(t *testing.T) {
	sql, args := compileFor(t, "sqlite", Eq(Col("name"), nil))
	assert.Equal(t, `"name" is ?`, sql)
	assert.Equal(t, []interface{}{nil}, args)

	sql, _ = compileFor(t, "postgres", NotEq(Col("name"), nil))
	assert.Equal(t, `"name" is distinct from $1`, sql)

	var p *string
	sql, args = compileFor(t, "sqlite", Eq(Col("name"), p))
	assert.Equal(t, `"name" is ?`, sql)
	assert.Equal(t, []interface{}{nil}, args)
}

func TestComparisons(t *testing.T) {
	tests := []struct {
		name string
		exp  Expression
		want string
	}{
		{"eq", Eq(Col("a"), 1), `"a" = ?`},
		{"not eq", NotEq(Col("a"), 1), `"a" <> ?`},
		{"lt", LessThan(Col("a"), 1), `"a" < ?`},
		{"le", LessOrEqual(Col("a"), 1), `"a" <= ?`},
		{"gt", GreaterThan(Col("a"), 1), `"a" > ?`},
		{"ge", GreaterOrEqual(Col("a"), 1), `"a" >= ?`},
		{"in", In(Col("a"), 1), `"a" in (?)`},
		{"not in", NotIn(Col("a"), 1), `"a" not in (?)`},
		{"between", Between(Col("a"), 1, 2), `"a" between ? and ?`},
		{"not between", NotBetween(Col("a"), 1, 2), `"a" not between ? and ?`},
		{"not", Not(Eq(Col("a"), 1)), `not ("a" = ?)`},
		{"or", Or(Eq(Col("a"), 1), Eq(Col("b"), 2)), `("a" = ?) or ("b" = ?)`},
		{"single and", And(Eq(Col("a"), 1)), `"a" = ?`},
		{"nil filtered", And(nil, Eq(Col("a"), 1), nil), `"a" = ?`},
		{"empty or", Or(), `0 = 1`},
		{"expression operand", Eq(Col("a"), Add(Col("b"), 1)), `"a" = ("b" + ?)`},
		{"column operand", Eq(Col("a"), Col("b")), `"a" = "b"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, _ := compileFor(t, "sqlite", tt.exp)
			assert.Equal(t, tt.want, sql)
		})
	}
}

func TestTableCol(t *testing.T) {
	sql, _ := compileFor(t, "postgres", TableCol(usersTable, "name"))
	assert.Equal(t, `"users"."name"`, sql)

	assert.Panics(t, func() { TableCol(usersTable, "missing") })
}

func TestTypedComparisonUsesColumnType(t *testing.T) {
	// bool columns are stored as integers on SQLite.
	_, args := compileFor(t, "sqlite", Eq(TableCol(usersTable, "active"), true))
	assert.Equal(t, []interface{}{int64(1)}, args)

	// An untyped column leaves the value for the driver.
	_, args = compileFor(t, "sqlite", Eq(Col("flag"), "x"))
	assert.Equal(t, []interface{}{"x"}, args)
}

func TestColumnAdapter(t *testing.T) {
	upper := schema.TypeAdapterFunc(func(v interface{}, typ schema.ValueType, next schema.DefaultTypeAdapter) interface{} {
		if s, ok := v.(string); ok {
			return next.TransformValueToDB("X-"+s, typ)
		}
		return next.TransformValueToDB(v, typ)
	})
	codes := schema.NewTable("codes", schema.Col("code", schema.TypeString).WithAdapter(upper))

	_, args := compileFor(t, "sqlite", In(TableCol(codes, "code"), "a", "b"))
	assert.Equal(t, []interface{}{"X-a", "X-b"}, args)
}

func TestSubqueries(t *testing.T) {
	sub := Select(usersTable).ColumnNames("id").Where(Eq(Col("name"), "bob"))

	sql, args := compileFor(t, "postgres", And(
		Eq(Col("owner"), 3),
		InSelect(Col("user_id"), sub),
	))
	assert.Equal(t, `("owner" = $1) and ("user_id" in (select "id" from "users" where "name" = $2))`, sql)
	assert.Equal(t, []interface{}{3, "bob"}, args)

	sql, _ = compileFor(t, "sqlite", NotExists(sub))
	assert.Equal(t, `not exists (select "id" from "users" where "name" = ?)`, sql)

	sql, _ = compileFor(t, "sqlite", Exists(sub))
	assert.Equal(t, `exists (select "id" from "users" where "name" = ?)`, sql)

	sql, _ = compileFor(t, "sqlite", GreaterThan(Col("n"), Subquery(Select(nil).Columns(Val(1)))))
	assert.Equal(t, `"n" > (select ?)`, sql)
}

func TestAlias(t *testing.T) {
	sql, _ := compileFor(t, "mysql", As(Col("mail"), "email"))
	assert.Equal(t, "`mail` as `email`", sql)
}
