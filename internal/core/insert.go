package core

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/coregx/sqlstage/internal/dialects"
	"github.com/coregx/sqlstage/internal/logger"
	"github.com/coregx/sqlstage/internal/schema"
	"github.com/coregx/sqlstage/internal/util"
)

// InsertState is the completeness of an insert under construction.
type InsertState int

const (
	// StateEmpty means nothing has been assigned yet.
	StateEmpty InsertState = iota
	// StatePartial means some columns are assigned but required ones are missing.
	StatePartial
	// StateExecutable means every required column is assigned and not ignored.
	StateExecutable
)

func (s InsertState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePartial:
		return "partial"
	case StateExecutable:
		return "executable"
	}
	return fmt.Sprintf("InsertState(%d)", int(s))
}

// Values maps column names to values or expressions.
type Values map[string]interface{}

type insertMode int

const (
	modeValues insertMode = iota
	modeRows
	modeDefaults
	modeSelect
)

// Statement is compiled SQL with its parameters in placeholder order.
type Statement struct {
	SQL    string
	Params []interface{}
}

// InsertQuery is a staged INSERT builder. It becomes executable only once
// every required column of the target table is assigned and not ignored.
//
// Assignments only add or override and ignored columns only shrink the column
// list, so a builder never goes back to StateEmpty. Errors found while
// chaining (unknown columns, operations not valid in the current mode) are
// kept and returned by Build and ExecuteInsert.
//
// A builder is owned by one goroutine.
type InsertQuery struct {
	table    *schema.Table
	dialect  dialects.Dialect
	exec     Executor
	logger   logger.Logger
	quote    QuoteMode
	mode     insertMode
	sets     map[string]interface{}
	rows     []Values
	excluded map[string]struct{}
	source   *SelectQuery
	err      error
}

// NewInsert starts an insert into table for dialect d. The returned builder
// has no executor; use DB.Insert or Tx.Insert to get one that can execute.
func NewInsert(d dialects.Dialect, table *schema.Table) *InsertQuery {
	q := &InsertQuery{
		table:    table,
		dialect:  d,
		logger:   &logger.NoopLogger{},
		sets:     make(map[string]interface{}),
		excluded: make(map[string]struct{}),
	}
	if table != nil && table.IsView() {
		q.fail(&UsageError{Op: "insert into", Table: table.Name(), Detail: "target is a view", Err: ErrInvalidState})
	}
	return q
}

// WithExecutor sets the collaborator used by ExecuteInsert.
func (q *InsertQuery) WithExecutor(e Executor) *InsertQuery {
	q.exec = e
	return q
}

// WithQuoting sets the identifier quoting policy.
func (q *InsertQuery) WithQuoting(mode QuoteMode) *InsertQuery {
	q.quote = mode
	return q
}

func (q *InsertQuery) tableName() string {
	if q.table == nil {
		return ""
	}
	return q.table.Name()
}

func (q *InsertQuery) fail(err error) {
	if q.err == nil {
		q.err = err
	}
}

// checkColumns records an error for names the table does not declare and
// reports whether all of them are known.
func (q *InsertQuery) checkColumns(op string, names []string) bool {
	if q.table == nil {
		return false
	}
	var unknown []string
	for _, name := range names {
		if !q.table.Has(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return true
	}
	sort.Strings(unknown)
	q.fail(&UsageError{Op: op, Table: q.tableName(), Columns: unknown, Err: ErrUnknownColumn})
	return false
}

// requireFresh records an error unless the builder is still empty.
func (q *InsertQuery) requireFresh(op string) bool {
	if q.mode == modeValues && len(q.sets) == 0 {
		return true
	}
	q.fail(&UsageError{Op: op, Table: q.tableName(), Detail: "builder already has a source", Err: ErrInvalidState})
	return false
}

func (q *InsertQuery) assign(op string, values Values, accept func(column string, value interface{}) bool) *InsertQuery {
	if q.mode != modeValues {
		q.fail(&UsageError{Op: op, Table: q.tableName(), Detail: "not available after ValuesRows, DefaultValues or From", Err: ErrInvalidState})
		return q
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	if !q.checkColumns(op, names) {
		return q
	}
	for name, value := range values {
		if accept == nil || accept(name, value) {
			q.sets[name] = value
		}
	}
	return q
}

func (q *InsertQuery) isSet(column string) bool {
	_, ok := q.sets[column]
	return ok
}

// Set assigns every given column, overriding earlier assignments.
func (q *InsertQuery) Set(values Values) *InsertQuery {
	return q.assign("set", values, nil)
}

// SetIfValue is Set, skipping entries whose value is nil.
func (q *InsertQuery) SetIfValue(values Values) *InsertQuery {
	return q.assign("set if value", values, func(_ string, v interface{}) bool {
		return !isNil(v)
	})
}

// SetIfSet assigns only columns that an earlier call already assigned.
func (q *InsertQuery) SetIfSet(values Values) *InsertQuery {
	return q.assign("set if set", values, func(c string, _ interface{}) bool {
		return q.isSet(c)
	})
}

// SetIfNotSet assigns only columns that no earlier call assigned.
func (q *InsertQuery) SetIfNotSet(values Values) *InsertQuery {
	return q.assign("set if not set", values, func(c string, _ interface{}) bool {
		return !q.isSet(c)
	})
}

// SetIfSetIfValue combines SetIfSet and SetIfValue.
func (q *InsertQuery) SetIfSetIfValue(values Values) *InsertQuery {
	return q.assign("set if set if value", values, func(c string, v interface{}) bool {
		return q.isSet(c) && !isNil(v)
	})
}

// SetIfNotSetIfValue combines SetIfNotSet and SetIfValue.
func (q *InsertQuery) SetIfNotSetIfValue(values Values) *InsertQuery {
	return q.assign("set if not set if value", values, func(c string, v interface{}) bool {
		return !q.isSet(c) && !isNil(v)
	})
}

// SetStruct assigns the exported fields of a struct. Columns come from `db`
// tags or the snake_case field name; fields that name no column are skipped,
// as is a zero-valued autogenerated primary key.
func (q *InsertQuery) SetStruct(v interface{}) *InsertQuery {
	fields, err := util.StructToMap(v, DefaultFieldMapFunc)
	if err != nil {
		q.fail(&UsageError{Op: "set struct", Table: q.tableName(), Detail: err.Error(), Err: ErrInvalidState})
		return q
	}
	if q.table == nil {
		return q
	}
	values := make(Values, len(fields))
	for name, value := range fields {
		col, ok := q.table.Column(name)
		if !ok {
			continue
		}
		if col.AutoID && isZero(value) {
			continue
		}
		values[name] = value
	}
	return q.assign("set struct", values, nil)
}

// IgnoreIfSet excludes columns from the generated column list, including
// assignments made later.
func (q *InsertQuery) IgnoreIfSet(columns ...string) *InsertQuery {
	if !q.checkColumns("ignore if set", columns) {
		return q
	}
	for _, c := range columns {
		q.excluded[c] = struct{}{}
	}
	if q.mode == modeSelect {
		if selected := q.selectedIgnored(); len(selected) > 0 {
			q.fail(&UsageError{Op: "ignore if set", Table: q.tableName(), Columns: selected, Detail: "selected by the insert source", Err: ErrIncompatibleSelect})
		}
	}
	return q
}

// Values assigns one row. It is Set under another name.
func (q *InsertQuery) Values(row Values) *InsertQuery {
	return q.assign("values", row, nil)
}

// ValuesRows switches to a multi-row insert. Each row must assign every
// required column; a column missing from some rows is filled with DEFAULT
// where the backend allows it, or NULL when the column has no default.
func (q *InsertQuery) ValuesRows(rows ...Values) *InsertQuery {
	if !q.requireFresh("values rows") {
		return q
	}
	if len(rows) == 0 {
		q.fail(&UsageError{Op: "values rows", Table: q.tableName(), Err: ErrNoAssignments})
		return q
	}
	copied := make([]Values, len(rows))
	for i, row := range rows {
		names := make([]string, 0, len(row))
		copied[i] = make(Values, len(row))
		for name, v := range row {
			names = append(names, name)
			copied[i][name] = v
		}
		if !q.checkColumns("values rows", names) {
			return q
		}
	}
	q.mode = modeRows
	q.rows = copied
	return q
}

// DefaultValues selects an insert where every column takes its default. It
// is only valid for tables without required columns.
func (q *InsertQuery) DefaultValues() *InsertQuery {
	if q.table == nil || !q.requireFresh("default values") {
		return q
	}
	if required := q.table.RequiredColumns(); len(required) > 0 {
		q.fail(&UsageError{Op: "default values", Table: q.tableName(), Columns: required, Err: ErrIncomplete})
		return q
	}
	q.mode = modeDefaults
	return q
}

// From inserts the rows of a select. The select's result column names must
// all be target columns and must include every required column.
func (q *InsertQuery) From(sel *SelectQuery) *InsertQuery {
	if q.table == nil || !q.requireFresh("from") {
		return q
	}
	if sel == nil {
		q.fail(&UsageError{Op: "from", Table: q.tableName(), Detail: "nil select", Err: ErrIncompatibleSelect})
		return q
	}
	exposed, err := sel.exposedColumns()
	if err != nil {
		q.fail(&UsageError{Op: "from", Table: q.tableName(), Detail: err.Error(), Err: ErrIncompatibleSelect})
		return q
	}

	seen := make(map[string]struct{}, len(exposed))
	var unknown, dup, ignored []string
	for _, name := range exposed {
		if _, ok := seen[name]; ok {
			dup = append(dup, name)
		}
		seen[name] = struct{}{}
		if !q.table.Has(name) {
			unknown = append(unknown, name)
		}
		if _, ok := q.excluded[name]; ok {
			ignored = append(ignored, name)
		}
	}
	var missing []string
	for _, name := range q.table.RequiredColumns() {
		if _, ok := seen[name]; !ok {
			missing = append(missing, name)
		}
	}

	switch {
	case len(unknown) > 0:
		q.fail(&UsageError{Op: "from", Table: q.tableName(), Columns: unknown, Detail: "not columns of the target", Err: ErrIncompatibleSelect})
	case len(dup) > 0:
		q.fail(&UsageError{Op: "from", Table: q.tableName(), Columns: dup, Detail: "selected more than once", Err: ErrIncompatibleSelect})
	case len(ignored) > 0:
		q.fail(&UsageError{Op: "from", Table: q.tableName(), Columns: ignored, Detail: "ignored columns selected", Err: ErrIncompatibleSelect})
	case len(missing) > 0:
		q.fail(&UsageError{Op: "from", Table: q.tableName(), Columns: missing, Detail: "required columns not selected", Err: ErrIncompatibleSelect})
	default:
		q.mode = modeSelect
		q.source = sel
	}
	return q
}

// State reports how complete the insert is.
func (q *InsertQuery) State() InsertState {
	switch q.mode {
	case modeDefaults:
		return StateExecutable
	case modeSelect, modeRows:
		if len(q.Missing()) == 0 {
			return StateExecutable
		}
		return StatePartial
	}
	if len(q.sets) == 0 {
		return StateEmpty
	}
	if len(q.Missing()) == 0 {
		return StateExecutable
	}
	return StatePartial
}

// Executable reports whether Build would succeed.
func (q *InsertQuery) Executable() bool {
	return q.table != nil && q.err == nil && q.State() == StateExecutable
}

// Missing returns the required columns not yet assigned, or assigned but
// ignored, in table order. In multi-row mode a column is missing if any row
// lacks it.
func (q *InsertQuery) Missing() []string {
	if q.table == nil {
		return nil
	}
	var missing []string
	for _, name := range q.table.RequiredColumns() {
		if _, ignored := q.excluded[name]; ignored {
			missing = append(missing, name)
			continue
		}
		switch q.mode {
		case modeValues:
			if !q.isSet(name) {
				missing = append(missing, name)
			}
		case modeRows:
			for _, row := range q.rows {
				if _, ok := row[name]; !ok {
					missing = append(missing, name)
					break
				}
			}
		}
	}
	return missing
}

// selectedIgnored returns the select source's columns that IgnoreIfSet excludes.
func (q *InsertQuery) selectedIgnored() []string {
	exposed, err := q.source.exposedColumns()
	if err != nil {
		return nil
	}
	var names []string
	for _, name := range exposed {
		if _, ok := q.excluded[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// defaultColumn returns the first non-ignored column with a default,
// preferring plain defaults over autogenerated keys. A multi-row insert of
// empty rows names it so every row can be DEFAULT. SQL Server rejects DEFAULT
// for identity columns, so autoID is false there.
func (q *InsertQuery) defaultColumn(autoID bool) (string, bool) {
	var key string
	for _, c := range q.table.Columns() {
		if _, ignored := q.excluded[c.Name]; ignored || !c.HasDefault {
			continue
		}
		if !c.AutoID {
			return c.Name, true
		}
		if key == "" {
			key = c.Name
		}
	}
	return key, autoID && key != ""
}

// columns returns the assigned, non-ignored columns in table order.
func (q *InsertQuery) columns() []string {
	var names []string
	for _, c := range q.table.Columns() {
		if _, ignored := q.excluded[c.Name]; ignored {
			continue
		}
		switch q.mode {
		case modeValues:
			if q.isSet(c.Name) {
				names = append(names, c.Name)
			}
		case modeRows:
			for _, row := range q.rows {
				if _, ok := row[c.Name]; ok {
					names = append(names, c.Name)
					break
				}
			}
		}
	}
	return names
}

func (q *InsertQuery) validate() error {
	if q.table == nil {
		return &UsageError{Op: "insert", Err: ErrNoTable}
	}
	if q.err != nil {
		return q.err
	}
	switch q.State() {
	case StateEmpty:
		return &UsageError{Op: "insert into", Table: q.tableName(), Err: ErrNoAssignments}
	case StatePartial:
		return &UsageError{Op: "insert into", Table: q.tableName(), Columns: q.Missing(), Err: ErrIncomplete}
	}
	return nil
}

func (q *InsertQuery) build(returning []string) (*Statement, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	sqlText, params, err := Compile(&insertStatement{q: q, returning: returning}, q.dialect, WithQuoting(q.quote))
	if err != nil {
		return nil, err
	}
	return &Statement{SQL: sqlText, Params: params}, nil
}

// Build validates and compiles the insert. An incomplete statement returns
// a *UsageError and no SQL.
func (q *InsertQuery) Build() (*Statement, error) {
	return q.build(nil)
}

// Query returns the compiled SQL text.
func (q *InsertQuery) Query() (string, error) {
	stmt, err := q.Build()
	if err != nil {
		return "", err
	}
	return stmt.SQL, nil
}

// Params returns the compiled parameters in placeholder order.
func (q *InsertQuery) Params() ([]interface{}, error) {
	stmt, err := q.Build()
	if err != nil {
		return nil, err
	}
	return stmt.Params, nil
}

// ExecuteInsert compiles the insert, sends it to the executor once, and
// returns the number of affected rows. Execution errors are returned as is.
func (q *InsertQuery) ExecuteInsert(ctx context.Context) (int64, error) {
	stmt, err := q.prepareExecution()
	if err != nil {
		return 0, err
	}
	result, err := q.exec.Exec(ctx, stmt.SQL, stmt.Params)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (q *InsertQuery) prepareExecution(returning ...string) (*Statement, error) {
	stmt, err := q.build(returning)
	if err != nil {
		logger.LogRejectedInsert(q.logger, q.tableName(), err)
		return nil, err
	}
	if q.exec == nil {
		return nil, ErrNoExecutor
	}
	return stmt, nil
}

// CanReturnLastInsertedID reports whether ReturningLastInsertedID is available:
// the table has an autogenerated primary key, the backend can return it, and
// the insert produces a single row.
func (q *InsertQuery) CanReturnLastInsertedID() bool {
	return q.checkReturning(false) == nil
}

// CanReturnLastInsertedIDs reports whether ReturningLastInsertedIDs is available.
func (q *InsertQuery) CanReturnLastInsertedIDs() bool {
	return q.checkReturning(true) == nil
}

func (q *InsertQuery) checkReturning(multiple bool) error {
	if q.table == nil {
		return &UsageError{Op: "returning", Err: ErrNoTable}
	}
	if len(q.table.AutoIDColumns()) == 0 {
		return &UsageError{Op: "returning from", Table: q.tableName(), Err: ErrNoAutoID}
	}
	caps := q.dialect.Capabilities()
	if multiple {
		if !caps.ReturningMultiple {
			return &CapabilityError{Dialect: q.dialect.ID(), Capability: "returning ids of a multi-row insert"}
		}
		return nil
	}
	if !caps.Returning {
		return &CapabilityError{Dialect: q.dialect.ID(), Capability: "returning the last inserted id"}
	}
	if q.mode == modeRows || q.mode == modeSelect {
		return &UsageError{Op: "returning from", Table: q.tableName(), Detail: "insert may produce several rows; use ReturningLastInsertedIDs", Err: ErrInvalidState}
	}
	return nil
}

// ReturningLastInsertedID turns the insert into one that yields the
// autogenerated id of the inserted row. It fails immediately if the table
// has no autogenerated primary key or the backend cannot return it.
func (q *InsertQuery) ReturningLastInsertedID() (*ReturningInsert, error) {
	if err := q.checkReturning(false); err != nil {
		return nil, err
	}
	col, _ := q.table.Column(q.table.AutoIDColumns()[0])
	return &ReturningInsert{returningInsert{q: q, column: col}}, nil
}

// ReturningLastInsertedIDs turns the insert into one that yields the
// autogenerated ids of every inserted row.
func (q *InsertQuery) ReturningLastInsertedIDs() (*ReturningInsertMany, error) {
	if err := q.checkReturning(true); err != nil {
		return nil, err
	}
	col, _ := q.table.Column(q.table.AutoIDColumns()[0])
	return &ReturningInsertMany{returningInsert{q: q, column: col}}, nil
}

type returningInsert struct {
	q      *InsertQuery
	column schema.Column
}

// Build compiles the insert with its returning clause.
func (r *returningInsert) Build() (*Statement, error) {
	return r.q.build([]string{r.column.Name})
}

// Query returns the compiled SQL text.
func (r *returningInsert) Query() (string, error) {
	stmt, err := r.Build()
	if err != nil {
		return "", err
	}
	return stmt.SQL, nil
}

// Params returns the compiled parameters in placeholder order.
func (r *returningInsert) Params() ([]interface{}, error) {
	stmt, err := r.Build()
	if err != nil {
		return nil, err
	}
	return stmt.Params, nil
}

// ReturningInsert is an insert that yields the id of the inserted row.
type ReturningInsert struct {
	returningInsert
}

// ExecuteInsert runs the insert and returns the autogenerated id: int64 for
// integer columns, string for string and uuid columns.
func (r *ReturningInsert) ExecuteInsert(ctx context.Context) (interface{}, error) {
	stmt, err := r.q.prepareExecution(r.column.Name)
	if err != nil {
		return nil, err
	}
	if r.q.dialect.Capabilities().ReturningStyle == dialects.ReturningNone {
		result, err := r.q.exec.Exec(ctx, stmt.SQL, stmt.Params)
		if err != nil {
			return nil, err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, err
		}
		return decodeID(id, r.column.Type), nil
	}
	ids, err := r.q.exec.QueryColumn(ctx, stmt.SQL, stmt.Params)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, sql.ErrNoRows
	}
	return decodeID(ids[0], r.column.Type), nil
}

// ReturningInsertMany is an insert that yields the ids of all inserted rows.
type ReturningInsertMany struct {
	returningInsert
}

// ExecuteInsert runs the insert and returns the autogenerated ids in the
// order the database reports them.
func (r *ReturningInsertMany) ExecuteInsert(ctx context.Context) ([]interface{}, error) {
	stmt, err := r.q.prepareExecution(r.column.Name)
	if err != nil {
		return nil, err
	}
	ids, err := r.q.exec.QueryColumn(ctx, stmt.SQL, stmt.Params)
	if err != nil {
		return nil, err
	}
	for i, id := range ids {
		ids[i] = decodeID(id, r.column.Type)
	}
	return ids, nil
}

// insertStatement renders an InsertQuery.
type insertStatement struct {
	q         *InsertQuery
	returning []string
}

func (s *insertStatement) WriteSQL(r dialects.Renderer) string {
	q := s.q
	d := r.Dialect()

	var sb strings.Builder
	sb.WriteString("insert into ")
	sb.WriteString(r.Escape(q.table.Name()))

	var cols []string
	switch q.mode {
	case modeValues, modeRows:
		cols = q.columns()
	case modeSelect:
		cols, _ = q.source.exposedColumns()
	}

	if len(cols) == 0 && q.mode == modeRows && len(q.rows) > 1 {
		name, ok := q.defaultColumn(d.ID() != dialects.SQLServer)
		if !ok || !d.Capabilities().DefaultInValues {
			r.Fail(&CapabilityError{Dialect: d.ID(), Capability: fmt.Sprintf("a multi-row insert of %d rows that assign no columns", len(q.rows))})
			return ""
		}
		cols = []string{name}
	}

	if len(cols) == 0 {
		sb.WriteString(d.InsertOutput(r, s.returning))
		sb.WriteString(d.DefaultValues(r))
		sb.WriteString(d.InsertReturning(r, s.returning))
		return sb.String()
	}

	sb.WriteString(" (")
	for i, c := range cols {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(r.Escape(c))
	}
	sb.WriteString(")")
	sb.WriteString(d.InsertOutput(r, s.returning))

	switch q.mode {
	case modeSelect:
		sb.WriteString(" ")
		sb.WriteString(r.SQL(q.source))
	case modeRows:
		sb.WriteString(" values ")
		for i, row := range q.rows {
			if i > 0 {
				sb.WriteString(", ")
			}
			s.writeRow(&sb, r, cols, row)
		}
	default:
		sb.WriteString(" values ")
		s.writeRow(&sb, r, cols, q.sets)
	}

	sb.WriteString(d.InsertReturning(r, s.returning))
	return sb.String()
}

func (s *insertStatement) writeRow(sb *strings.Builder, r dialects.Renderer, cols []string, row map[string]interface{}) {
	sb.WriteString("(")
	for i, name := range cols {
		if i > 0 {
			sb.WriteString(", ")
		}
		col, _ := s.q.table.Column(name)
		value, ok := row[name]
		if ok {
			sb.WriteString(r.Value(dialects.Arg{Value: value, Type: col.Type, Adapter: col.Adapter}))
			continue
		}
		switch {
		case !col.HasDefault:
			sb.WriteString("null")
		case r.Dialect().Capabilities().DefaultInValues:
			sb.WriteString("default")
		default:
			r.Fail(&CapabilityError{Dialect: r.Dialect().ID(), Capability: "DEFAULT inside VALUES (column " + name + " is missing from a row)"})
		}
	}
	sb.WriteString(")")
}

func isZero(v interface{}) bool {
	if v == nil {
		return true
	}
	return reflect.ValueOf(v).IsZero()
}
