package core

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/sqlstage/internal/dialects"
	"github.com/coregx/sqlstage/internal/schema"
)

var (
	contacts = schema.NewTable("contacts",
		schema.Col("id", schema.TypeBigint).AsAutoID(),
		schema.Col("name", schema.TypeString),
		schema.Col("email", schema.TypeString).AsOptional(),
		schema.Col("createdAt", schema.TypeTimestamp).WithDefault(),
	)
	settings = schema.NewTable("settings",
		schema.Col("key", schema.TypeString).WithDefault(),
		schema.Col("value", schema.TypeString).AsOptional(),
	)
	tags = schema.NewTable("tags",
		schema.Col("id", schema.TypeUUID).AsAutoID(),
		schema.Col("label", schema.TypeString),
	)
	contactView = schema.NewView("active_contacts",
		schema.Col("name", schema.TypeString),
	)
)

type recordedCall struct {
	method string
	sql    string
	params []interface{}
}

// recordingExecutor captures every call and replays canned results.
type recordingExecutor struct {
	calls  []recordedCall
	result sql.Result
	rows   []interface{}
	err    error
}

func (e *recordingExecutor) Exec(_ context.Context, query string, params []interface{}) (sql.Result, error) {
	e.calls = append(e.calls, recordedCall{method: "exec", sql: query, params: params})
	if e.err != nil {
		return nil, e.err
	}
	return e.result, nil
}

func (e *recordingExecutor) QueryColumn(_ context.Context, query string, params []interface{}) ([]interface{}, error) {
	e.calls = append(e.calls, recordedCall{method: "query_column", sql: query, params: params})
	if e.err != nil {
		return nil, e.err
	}
	return e.rows, nil
}

type fixedResult struct {
	id, rows int64
}

func (r fixedResult) LastInsertId() (int64, error) { return r.id, nil }
func (r fixedResult) RowsAffected() (int64, error) { return r.rows, nil }

func insertFor(driver string, table *schema.Table) *InsertQuery {
	return NewInsert(dialects.GetDialect(driver), table)
}

func TestInsert_States(t *testing.T) {
	q := insertFor("sqlite", contacts)
	assert.Equal(t, StateEmpty, q.State())
	assert.False(t, q.Executable())
	assert.Equal(t, []string{"name"}, q.Missing())

	q.Set(Values{"email": "a@b.com"})
	assert.Equal(t, StatePartial, q.State())
	assert.False(t, q.Executable())

	_, err := q.Build()
	var usage *UsageError
	require.ErrorAs(t, err, &usage)
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.Equal(t, []string{"name"}, usage.Columns)

	q.Set(Values{"name": "x"})
	assert.Equal(t, StateExecutable, q.State())
	assert.True(t, q.Executable())
	assert.Empty(t, q.Missing())
}

func TestInsert_StateStrings(t *testing.T) {
	assert.Equal(t, "empty", StateEmpty.String())
	assert.Equal(t, "partial", StatePartial.String())
	assert.Equal(t, "executable", StateExecutable.String())
}

func TestInsert_EmptyIsUsageError(t *testing.T) {
	_, err := insertFor("sqlite", contacts).Build()
	assert.ErrorIs(t, err, ErrNoAssignments)

	_, err = insertFor("sqlite", nil).Build()
	assert.ErrorIs(t, err, ErrNoTable)
}

func TestInsert_SetUnionAndOverride(t *testing.T) {
	q := insertFor("sqlite", contacts).
		Set(Values{"name": "a"}).
		Set(Values{"email": "e"})
	stmt, err := q.Build()
	require.NoError(t, err)
	assert.Equal(t, `insert into "contacts" ("name", "email") values (?, ?)`, stmt.SQL)
	assert.Equal(t, []interface{}{"a", "e"}, stmt.Params)

	q.Set(Values{"name": "b"})
	params, err := q.Params()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"b", "e"}, params)
}

func TestInsert_ColumnsInTableOrder(t *testing.T) {
	got, err := insertFor("postgres", contacts).
		Set(Values{"email": "e", "name": "n", "id": 5}).
		Query()
	require.NoError(t, err)
	assert.Equal(t, `insert into "contacts" ("id", "name", "email") values ($1, $2, $3)`, got)
}

func TestInsert_ConditionalSetters(t *testing.T) {
	q := insertFor("sqlite", contacts).
		SetIfValue(Values{"name": "n", "email": nil}).
		SetIfNotSet(Values{"name": "ignored", "email": "e1"}).
		SetIfSet(Values{"email": "e2", "createdAt": "never"})
	stmt, err := q.Build()
	require.NoError(t, err)
	assert.Equal(t, `insert into "contacts" ("name", "email") values (?, ?)`, stmt.SQL)
	assert.Equal(t, []interface{}{"n", "e2"}, stmt.Params)

	q = insertFor("sqlite", contacts).
		Set(Values{"name": "n"}).
		SetIfSetIfValue(Values{"name": nil}).
		SetIfNotSetIfValue(Values{"email": nil})
	stmt, err = q.Build()
	require.NoError(t, err)
	assert.Equal(t, `insert into "contacts" ("name") values (?)`, stmt.SQL)
	assert.Equal(t, []interface{}{"n"}, stmt.Params)

	q = insertFor("sqlite", contacts).
		Set(Values{"name": "n"}).
		SetIfSetIfValue(Values{"name": "m"}).
		SetIfNotSetIfValue(Values{"email": sql.NullString{}})
	stmt, err = q.Build()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"m"}, stmt.Params)
}

func TestInsert_SetNilBindsNull(t *testing.T) {
	stmt, err := insertFor("sqlite", contacts).Set(Values{"name": "n", "email": nil}).Build()
	require.NoError(t, err)
	assert.Equal(t, `insert into "contacts" ("name", "email") values (?, ?)`, stmt.SQL)
	assert.Equal(t, []interface{}{"n", nil}, stmt.Params)
}

func TestInsert_IgnoreIfSet(t *testing.T) {
	q := insertFor("sqlite", contacts).
		IgnoreIfSet("createdAt").
		Set(Values{"name": "n", "createdAt": time.Now()})
	stmt, err := q.Build()
	require.NoError(t, err)
	assert.Equal(t, `insert into "contacts" ("name") values (?)`, stmt.SQL)

	// Ignoring a required column makes the insert incomplete again.
	q.IgnoreIfSet("name")
	assert.Equal(t, StatePartial, q.State())
	assert.Equal(t, []string{"name"}, q.Missing())
	_, err = q.Build()
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestInsert_AllAssignmentsIgnoredUsesDefaults(t *testing.T) {
	stmt, err := insertFor("sqlite", settings).
		IgnoreIfSet("value").
		Set(Values{"value": "v"}).
		Build()
	require.NoError(t, err)
	assert.Equal(t, `insert into "settings" default values`, stmt.SQL)
	assert.Empty(t, stmt.Params)
}

func TestInsert_UnknownColumn(t *testing.T) {
	q := insertFor("sqlite", contacts).Set(Values{"name": "n", "phone": "1", "fax": "2"})
	_, err := q.Build()
	var usage *UsageError
	require.ErrorAs(t, err, &usage)
	assert.ErrorIs(t, err, ErrUnknownColumn)
	assert.Equal(t, []string{"fax", "phone"}, usage.Columns)
	assert.False(t, q.Executable())

	_, err = insertFor("sqlite", contacts).IgnoreIfSet("nope").Build()
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestInsert_View(t *testing.T) {
	_, err := insertFor("sqlite", contactView).Set(Values{"name": "n"}).Build()
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestInsert_ExpressionValue(t *testing.T) {
	stmt, err := insertFor("postgres", contacts).
		Set(Values{"name": ValueWhenNull(NewExp("current_setting(?)", "app.user"), "anon"), "createdAt": CurrentTimestamp()}).
		Build()
	require.NoError(t, err)
	assert.Equal(t, `insert into "contacts" ("name", "createdAt") values (coalesce(current_setting($1), $2), current_timestamp)`, stmt.SQL)
	assert.Equal(t, []interface{}{"app.user", "anon"}, stmt.Params)
}

func TestInsert_ValuesIsSet(t *testing.T) {
	a, err := insertFor("sqlite", contacts).Values(Values{"name": "n"}).Build()
	require.NoError(t, err)
	b, err := insertFor("sqlite", contacts).Set(Values{"name": "n"}).Build()
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestInsert_ValuesRows(t *testing.T) {
	q := insertFor("postgres", contacts).ValuesRows(
		Values{"name": "a", "email": "a@x"},
		Values{"name": "b", "createdAt": CurrentTimestamp()},
	)
	stmt, err := q.Build()
	require.NoError(t, err)
	assert.Equal(t,
		`insert into "contacts" ("name", "email", "createdAt") values ($1, $2, default), ($3, null, current_timestamp)`,
		stmt.SQL)
	assert.Equal(t, []interface{}{"a", "a@x", "b"}, stmt.Params)
}

func TestInsert_ValuesRowsMissingRequired(t *testing.T) {
	q := insertFor("sqlite", contacts).ValuesRows(Values{"name": "a"}, Values{"email": "b"})
	assert.Equal(t, StatePartial, q.State())
	assert.Equal(t, []string{"name"}, q.Missing())
	_, err := q.Build()
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestInsert_ValuesRowsDefaultUnsupported(t *testing.T) {
	// SQLite cannot write DEFAULT inside a VALUES row.
	_, err := insertFor("sqlite", contacts).ValuesRows(
		Values{"name": "a", "createdAt": time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		Values{"name": "b"},
	).Build()
	assert.ErrorIs(t, err, ErrCapability)

	stmt, err := insertFor("sqlite", contacts).ValuesRows(
		Values{"name": "a", "email": "x"},
		Values{"name": "b"},
	).Build()
	require.NoError(t, err)
	assert.Equal(t, `insert into "contacts" ("name", "email") values (?, ?), (?, null)`, stmt.SQL)
}

func TestInsert_ValuesRowsRequiresFreshBuilder(t *testing.T) {
	_, err := insertFor("sqlite", contacts).Set(Values{"name": "a"}).ValuesRows(Values{"name": "b"}).Build()
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = insertFor("sqlite", contacts).ValuesRows().Build()
	assert.ErrorIs(t, err, ErrNoAssignments)

	_, err = insertFor("sqlite", contacts).ValuesRows(Values{"name": "b"}).Set(Values{"name": "c"}).Build()
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestInsert_ValuesRowsCopiesInput(t *testing.T) {
	row := Values{"name": "a"}
	q := insertFor("sqlite", contacts).ValuesRows(row)
	row["name"] = "changed"
	params, err := q.Params()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"a"}, params)
}

func TestInsert_ValuesRowsAllEmpty(t *testing.T) {
	tests := []struct {
		driver string
		sql    string
	}{
		{"postgres", `insert into "settings" ("key") values (default), (default), (default)`},
		{"mysql", "insert into `settings` (`key`) values (default), (default), (default)"},
		{"sqlserver", `insert into [settings] ([key]) values (default), (default), (default)`},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			stmt, err := insertFor(tt.driver, settings).ValuesRows(Values{}, Values{}, Values{}).Build()
			require.NoError(t, err)
			assert.Equal(t, tt.sql, stmt.SQL)
			assert.Empty(t, stmt.Params)
		})
	}
}

func TestInsert_ValuesRowsAllIgnored(t *testing.T) {
	stmt, err := insertFor("postgres", settings).
		IgnoreIfSet("value").
		ValuesRows(Values{"value": "a"}, Values{"value": "b"}).
		Build()
	require.NoError(t, err)
	assert.Equal(t, `insert into "settings" ("key") values (default), (default)`, stmt.SQL)
	assert.Empty(t, stmt.Params)

	// Nothing left that can take DEFAULT.
	_, err = insertFor("postgres", settings).
		IgnoreIfSet("key").
		ValuesRows(Values{}, Values{}).
		Build()
	assert.ErrorIs(t, err, ErrCapability)
}

func TestInsert_ValuesRowsAllEmptyWithoutDefaultInValues(t *testing.T) {
	_, err := insertFor("sqlite", settings).ValuesRows(Values{}, Values{}).Build()
	var capErr *CapabilityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, dialects.SQLite, capErr.Dialect)

	// One empty row is still a plain default-values insert.
	stmt, err := insertFor("sqlite", settings).ValuesRows(Values{}).Build()
	require.NoError(t, err)
	assert.Equal(t, `insert into "settings" default values`, stmt.SQL)
}

func TestInsert_ValuesRowsAllEmptyIdentityOnSQLServer(t *testing.T) {
	counters := schema.NewTable("counters", schema.Col("id", schema.TypeBigint).AsAutoID())

	stmt, err := insertFor("postgres", counters).ValuesRows(Values{}, Values{}).Build()
	require.NoError(t, err)
	assert.Equal(t, `insert into "counters" ("id") values (default), (default)`, stmt.SQL)

	_, err = insertFor("sqlserver", counters).ValuesRows(Values{}, Values{}).Build()
	assert.ErrorIs(t, err, ErrCapability)
}

func TestInsert_DefaultValues(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{"sqlite", `insert into "settings" default values`},
		{"postgres", `insert into "settings" default values`},
		{"mysql", "insert into `settings` () values ()"},
		{"sqlserver", `insert into [settings] default values`},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			q := insertFor(tt.driver, settings).DefaultValues()
			assert.Equal(t, StateExecutable, q.State())
			got, err := q.Query()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := insertFor("sqlite", contacts).DefaultValues().Build()
	var usage *UsageError
	require.ErrorAs(t, err, &usage)
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.Equal(t, []string{"name"}, usage.Columns)
}

func TestInsert_FromSelect(t *testing.T) {
	staging := schema.NewTable("staging",
		schema.Col("full_name", schema.TypeString),
		schema.Col("mail", schema.TypeString).AsOptional(),
	)
	sel := Select(staging).
		Columns(As(Col("full_name"), "name"), As(Col("mail"), "email")).
		Where(IsNotNull(Col("mail"))).
		OrderBy("full_name", dialects.Asc).
		Limit(100)

	q := insertFor("postgres", contacts).From(sel)
	assert.Equal(t, StateExecutable, q.State())
	stmt, err := q.Build()
	require.NoError(t, err)
	assert.Equal(t,
		`insert into "contacts" ("name", "email") select "full_name" as "name", "mail" as "email" from "staging" where "mail" is distinct from $1 order by "full_name" asc limit $2`,
		stmt.SQL)
	assert.Equal(t, []interface{}{nil, int64(100)}, stmt.Params)
}

func TestInsert_FromSelectIncompatible(t *testing.T) {
	staging := schema.NewTable("staging",
		schema.Col("name", schema.TypeString),
		schema.Col("phone", schema.TypeString),
		schema.Col("mail", schema.TypeString),
	)

	tests := []struct {
		name string
		sel  *SelectQuery
		cols []string
	}{
		{"unknown column", Select(staging).ColumnNames("name", "phone"), []string{"phone"}},
		{"missing required", Select(staging).Columns(As(Col("mail"), "email")), []string{"name"}},
		{"duplicate", Select(staging).Columns(Col("name"), As(Col("mail"), "name")), []string{"name"}},
		{"unnamed expression", Select(staging).Columns(Col("name"), Add(Col("phone"), 1)), nil},
		{"star over foreign table", Select(staging), []string{"phone", "mail"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := insertFor("sqlite", contacts).From(tt.sel).Build()
			var usage *UsageError
			require.ErrorAs(t, err, &usage)
			assert.ErrorIs(t, err, ErrIncompatibleSelect)
			assert.Equal(t, tt.cols, usage.Columns)
		})
	}

	_, err := insertFor("sqlite", contacts).From(nil).Build()
	assert.ErrorIs(t, err, ErrIncompatibleSelect)
}

func TestInsert_FromSelectIgnoredColumns(t *testing.T) {
	staging := schema.NewTable("staging",
		schema.Col("name", schema.TypeString),
		schema.Col("email", schema.TypeString),
	)

	q := insertFor("sqlite", contacts).IgnoreIfSet("name").From(Select(staging).ColumnNames("name"))
	assert.False(t, q.Executable())
	_, err := q.Build()
	var usage *UsageError
	require.ErrorAs(t, err, &usage)
	assert.ErrorIs(t, err, ErrIncompatibleSelect)
	assert.Equal(t, []string{"name"}, usage.Columns)

	q = insertFor("sqlite", contacts).IgnoreIfSet("email").From(Select(staging).ColumnNames("name", "email"))
	_, err = q.Build()
	require.ErrorAs(t, err, &usage)
	assert.Equal(t, []string{"email"}, usage.Columns)

	// Ignoring a selected column after From is rejected too.
	q = insertFor("sqlite", contacts).From(Select(staging).ColumnNames("name", "email")).IgnoreIfSet("name")
	assert.Equal(t, StatePartial, q.State())
	assert.Equal(t, []string{"name"}, q.Missing())
	assert.False(t, q.Executable())
	_, err = q.Build()
	require.ErrorAs(t, err, &usage)
	assert.ErrorIs(t, err, ErrIncompatibleSelect)

	// Ignoring an unselected column leaves the insert executable.
	q = insertFor("sqlite", contacts).From(Select(staging).ColumnNames("name")).IgnoreIfSet("email")
	assert.True(t, q.Executable())
	stmt, err := q.Build()
	require.NoError(t, err)
	assert.Equal(t, `insert into "contacts" ("name") select "name" from "staging"`, stmt.SQL)
}

func TestInsert_SetStruct(t *testing.T) {
	type contact struct {
		ID        int64 `db:"id"`
		Name      string
		Email     *string   `db:"email"`
		CreatedAt time.Time `db:"createdAt,omitempty"`
		Notes     string    // not a column
		internal  int
	}

	q := insertFor("sqlite", contacts).SetStruct(&contact{Name: "n", internal: 1})
	stmt, err := q.Build()
	require.NoError(t, err)
	// Zero autogenerated id and zero omitempty time are skipped; nil pointer binds NULL.
	assert.Equal(t, `insert into "contacts" ("name", "email") values (?, ?)`, stmt.SQL)
	assert.Equal(t, []interface{}{"n", nil}, stmt.Params)

	mail := "m@x"
	stmt, err = insertFor("sqlite", contacts).SetStruct(contact{ID: 9, Name: "n", Email: &mail}).Build()
	require.NoError(t, err)
	assert.Equal(t, `insert into "contacts" ("id", "name", "email") values (?, ?, ?)`, stmt.SQL)
	assert.Equal(t, []interface{}{int64(9), "n", "m@x"}, stmt.Params)

	_, err = insertFor("sqlite", contacts).SetStruct(42).Build()
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestInsert_BuildIsPure(t *testing.T) {
	q := insertFor("postgres", contacts).Set(Values{"name": "n", "email": "e"})
	a, err := q.Build()
	require.NoError(t, err)
	b, err := q.Build()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestInsert_Quoting(t *testing.T) {
	got, err := insertFor("postgres", contacts).WithQuoting(QuoteReserved).Set(Values{"name": "n", "createdAt": "t"}).Query()
	require.NoError(t, err)
	assert.Equal(t, `insert into contacts (name, "createdAt") values ($1, $2)`, got)
}

func TestInsert_ExecuteInsert(t *testing.T) {
	exec := &recordingExecutor{result: fixedResult{id: 3, rows: 1}}
	n, err := insertFor("sqlite", contacts).
		WithExecutor(exec).
		Set(Values{"name": "n"}).
		ExecuteInsert(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.Len(t, exec.calls, 1)
	assert.Equal(t, recordedCall{method: "exec", sql: `insert into "contacts" ("name") values (?)`, params: []interface{}{"n"}}, exec.calls[0])
}

func TestInsert_ExecuteIncompleteNeverReachesExecutor(t *testing.T) {
	exec := &recordingExecutor{}
	_, err := insertFor("sqlite", contacts).WithExecutor(exec).Set(Values{"email": "e"}).ExecuteInsert(context.Background())
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.Empty(t, exec.calls)
}

func TestInsert_ExecuteWithoutExecutor(t *testing.T) {
	_, err := insertFor("sqlite", contacts).Set(Values{"name": "n"}).ExecuteInsert(context.Background())
	assert.ErrorIs(t, err, ErrNoExecutor)
}

func TestInsert_ExecutionErrorIsVerbatimAndNotRetried(t *testing.T) {
	boom := errors.New("UNIQUE constraint failed: contacts.name")
	exec := &recordingExecutor{err: boom}
	_, err := insertFor("sqlite", contacts).WithExecutor(exec).Set(Values{"name": "n"}).ExecuteInsert(context.Background())
	assert.Same(t, boom, err)
	assert.Len(t, exec.calls, 1)
}

func TestReturning_NotOfferedWithoutAutoID(t *testing.T) {
	for _, driver := range []string{"sqlite", "postgres", "mysql", "sqlserver"} {
		t.Run(driver, func(t *testing.T) {
			q := insertFor(driver, settings).Set(Values{"value": "v"})
			assert.False(t, q.CanReturnLastInsertedID())
			assert.False(t, q.CanReturnLastInsertedIDs())

			_, err := q.ReturningLastInsertedID()
			assert.ErrorIs(t, err, ErrNoAutoID)
			_, err = q.ReturningLastInsertedIDs()
			assert.ErrorIs(t, err, ErrNoAutoID)
		})
	}
}

func TestReturning_Capabilities(t *testing.T) {
	for _, driver := range []string{"sqlite", "mysql"} {
		q := insertFor(driver, contacts).ValuesRows(Values{"name": "a"}, Values{"name": "b"})
		assert.False(t, q.CanReturnLastInsertedIDs(), driver)
		_, err := q.ReturningLastInsertedIDs()
		assert.ErrorIs(t, err, ErrCapability, driver)
	}
	for _, driver := range []string{"postgres", "sqlserver"} {
		q := insertFor(driver, contacts).ValuesRows(Values{"name": "a"}, Values{"name": "b"})
		assert.True(t, q.CanReturnLastInsertedIDs(), driver)
		// A multi-row insert has no single last id.
		_, err := q.ReturningLastInsertedID()
		assert.ErrorIs(t, err, ErrInvalidState, driver)
	}
}

func TestReturning_SQL(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{"sqlite", `insert into "contacts" ("name") values (?)`},
		{"postgres", `insert into "contacts" ("name") values ($1) returning "id"`},
		{"mysql", "insert into `contacts` (`name`) values (?)"},
		{"sqlserver", `insert into [contacts] ([name]) output inserted.[id] values (@p1)`},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			r, err := insertFor(tt.driver, contacts).Set(Values{"name": "n"}).ReturningLastInsertedID()
			require.NoError(t, err)
			got, err := r.Query()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			params, err := r.Params()
			require.NoError(t, err)
			assert.Equal(t, []interface{}{"n"}, params)
		})
	}

	r, err := insertFor("sqlserver", settings).DefaultValues().ReturningLastInsertedIDs()
	assert.Nil(t, r)
	assert.ErrorIs(t, err, ErrNoAutoID)
}

func TestReturning_DefaultValuesOutput(t *testing.T) {
	autoOnly := schema.NewTable("tickets", schema.Col("id", schema.TypeInt).AsAutoID())
	r, err := insertFor("sqlserver", autoOnly).DefaultValues().ReturningLastInsertedID()
	require.NoError(t, err)
	got, err := r.Query()
	require.NoError(t, err)
	assert.Equal(t, `insert into [tickets] output inserted.[id] default values`, got)
}

func TestReturning_LastInsertIDPath(t *testing.T) {
	exec := &recordingExecutor{result: fixedResult{id: 41, rows: 1}}
	r, err := insertFor("sqlite", contacts).WithExecutor(exec).Set(Values{"name": "n"}).ReturningLastInsertedID()
	require.NoError(t, err)

	id, err := r.ExecuteInsert(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(41), id)
	require.Len(t, exec.calls, 1)
	assert.Equal(t, "exec", exec.calls[0].method)
}

func TestReturning_ClausePath(t *testing.T) {
	exec := &recordingExecutor{rows: []interface{}{int32(7)}}
	r, err := insertFor("postgres", contacts).WithExecutor(exec).Set(Values{"name": "n"}).ReturningLastInsertedID()
	require.NoError(t, err)

	id, err := r.ExecuteInsert(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.Equal(t, "query_column", exec.calls[0].method)

	exec.rows = nil
	_, err = r.ExecuteInsert(context.Background())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestReturning_UUIDDecoding(t *testing.T) {
	u := uuid.New()
	exec := &recordingExecutor{rows: []interface{}{u, [16]byte(u), u.String()}}
	r, err := insertFor("postgres", tags).WithExecutor(exec).ValuesRows(
		Values{"label": "a"}, Values{"label": "b"}, Values{"label": "c"},
	).ReturningLastInsertedIDs()
	require.NoError(t, err)

	ids, err := r.ExecuteInsert(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []interface{}{u.String(), u.String(), u.String()}, ids)
	assert.Equal(t, `insert into "tags" ("label") values ($1), ($2), ($3) returning "id"`, exec.calls[0].sql)
}

func TestReturning_ManyFromSelect(t *testing.T) {
	exec := &recordingExecutor{rows: []interface{}{int64(1), []byte("2")}}
	r, err := insertFor("sqlserver", contacts).
		WithExecutor(exec).
		From(Select(contacts).ColumnNames("name")).
		ReturningLastInsertedIDs()
	require.NoError(t, err)

	ids, err := r.ExecuteInsert(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(1), int64(2)}, ids)
	assert.Equal(t, `insert into [contacts] ([name]) output inserted.[id] select [name] from [contacts]`, exec.calls[0].sql)
}

func TestReturning_ExecutionError(t *testing.T) {
	boom := errors.New("deadlock detected")
	exec := &recordingExecutor{err: boom}
	r, err := insertFor("postgres", contacts).WithExecutor(exec).Set(Values{"name": "n"}).ReturningLastInsertedID()
	require.NoError(t, err)
	_, err = r.ExecuteInsert(context.Background())
	assert.Same(t, boom, err)
	assert.Len(t, exec.calls, 1)
}
