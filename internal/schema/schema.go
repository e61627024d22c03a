// Package schema describes the tables and views statements are built against:
// column names, semantic value types, and the insert-time flags that decide which
// columns a statement must supply.
package schema

import (
	"fmt"
	"sort"
)

// ValueType is the semantic type tag attached to columns and bound values.
// Dialects use it to pick casts and value transformations.
type ValueType string

// Supported value types.
const (
	TypeAny       ValueType = "any"
	TypeString    ValueType = "string"
	TypeInt       ValueType = "int"
	TypeBigint    ValueType = "bigint"
	TypeDouble    ValueType = "double"
	TypeBool      ValueType = "bool"
	TypeDate      ValueType = "date"
	TypeTime      ValueType = "time"
	TypeTimestamp ValueType = "timestamp"
	TypeUUID      ValueType = "uuid"
	TypeBytes     ValueType = "bytes"
)

// IsNumeric reports whether values of this type are numbers.
func (t ValueType) IsNumeric() bool {
	switch t {
	case TypeInt, TypeBigint, TypeDouble:
		return true
	}
	return false
}

// DefaultTypeAdapter is the dialect-level value transformation applied when no
// column adapter overrides it.
type DefaultTypeAdapter interface {
	TransformValueToDB(value interface{}, typ ValueType) interface{}
}

// TypeAdapter transforms application values before they are bound.
// Implementations call next to fall back to the dialect's default handling.
type TypeAdapter interface {
	TransformValueToDB(value interface{}, typ ValueType, next DefaultTypeAdapter) interface{}
}

// TypeAdapterFunc adapts a plain function to TypeAdapter.
type TypeAdapterFunc func(value interface{}, typ ValueType, next DefaultTypeAdapter) interface{}

// TransformValueToDB calls f.
func (f TypeAdapterFunc) TransformValueToDB(value interface{}, typ ValueType, next DefaultTypeAdapter) interface{} {
	return f(value, typ, next)
}

// Column describes one column of a table or view.
type Column struct {
	Name       string
	Type       ValueType
	Optional   bool // nullable, may be omitted on insert
	HasDefault bool // database supplies a value when omitted
	AutoID     bool // autogenerated primary key
	Adapter    TypeAdapter
}

// Col starts a column definition.
func Col(name string, typ ValueType) Column {
	return Column{Name: name, Type: typ}
}

// AsOptional marks the column nullable.
func (c Column) AsOptional() Column {
	c.Optional = true
	return c
}

// WithDefault marks the column as having a database default.
func (c Column) WithDefault() Column {
	c.HasDefault = true
	return c
}

// AsAutoID marks the column as an autogenerated primary key.
func (c Column) AsAutoID() Column {
	c.AutoID = true
	c.HasDefault = true
	return c
}

// WithAdapter attaches a value adapter used for every value bound to this column.
func (c Column) WithAdapter(a TypeAdapter) Column {
	c.Adapter = a
	return c
}

// Required reports whether an insert must assign this column.
func (c Column) Required() bool {
	return !c.Optional && !c.HasDefault && !c.AutoID
}

// Table is an immutable table or view definition.
type Table struct {
	name     string
	view     bool
	columns  []Column
	index    map[string]int
	required []string
	autoIDs  []string
}

// NewTable defines a table. It panics on an empty name or duplicate column,
// both of which are programming errors in a static definition.
func NewTable(name string, cols ...Column) *Table {
	return newTable(name, false, cols)
}

// NewView defines a view. Views can be selected from but never inserted into.
func NewView(name string, cols ...Column) *Table {
	return newTable(name, true, cols)
}

func newTable(name string, view bool, cols []Column) *Table {
	if name == "" {
		panic("schema: table name must not be empty")
	}
	t := &Table{
		name:    name,
		view:    view,
		columns: make([]Column, len(cols)),
		index:   make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		if c.Name == "" {
			panic(fmt.Sprintf("schema: table %s has a column without a name", name))
		}
		if _, dup := t.index[c.Name]; dup {
			panic(fmt.Sprintf("schema: table %s declares column %s twice", name, c.Name))
		}
		if c.Type == "" {
			c.Type = TypeAny
		}
		t.columns[i] = c
		t.index[c.Name] = i
		if c.Required() {
			t.required = append(t.required, c.Name)
		}
		if c.AutoID {
			t.autoIDs = append(t.autoIDs, c.Name)
		}
	}
	return t
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// IsView reports whether t was defined with NewView.
func (t *Table) IsView() bool { return t.view }

// Columns returns the columns in declaration order.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Column looks up a column by name.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

// Has reports whether the table declares the column.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Position returns the declaration index of a column, or -1.
func (t *Table) Position(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// RequiredColumns returns the columns every insert must assign, in declaration order.
func (t *Table) RequiredColumns() []string {
	return append([]string(nil), t.required...)
}

// AutoIDColumns returns the autogenerated primary key columns.
func (t *Table) AutoIDColumns() []string {
	return append([]string(nil), t.autoIDs...)
}

// SortByPosition orders column names by their declaration order in t.
// Unknown names sort last, alphabetically.
func (t *Table) SortByPosition(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		pi, pj := t.Position(names[i]), t.Position(names[j])
		switch {
		case pi < 0 && pj < 0:
			return names[i] < names[j]
		case pi < 0:
			return false
		case pj < 0:
			return true
		}
		return pi < pj
	})
}
