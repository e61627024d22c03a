package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orders() *Table {
	return NewTable("orders",
		Col("id", TypeBigint).AsAutoID(),
		Col("customer", TypeString),
		Col("note", TypeString).AsOptional(),
		Col("placed_at", TypeTimestamp).WithDefault(),
		Col("total", TypeDouble),
		Col("payload", ""),
	)
}

func TestTable_Flags(t *testing.T) {
	tbl := orders()
	assert.Equal(t, "orders", tbl.Name())
	assert.False(t, tbl.IsView())
	assert.Equal(t, []string{"customer", "total", "payload"}, tbl.RequiredColumns())
	assert.Equal(t, []string{"id"}, tbl.AutoIDColumns())

	id, ok := tbl.Column("id")
	require.True(t, ok)
	assert.True(t, id.HasDefault)
	assert.False(t, id.Required())

	payload, ok := tbl.Column("payload")
	require.True(t, ok)
	assert.Equal(t, TypeAny, payload.Type)

	_, ok = tbl.Column("missing")
	assert.False(t, ok)
	assert.False(t, tbl.Has("missing"))
}

func TestTable_ColumnsAreCopied(t *testing.T) {
	tbl := orders()
	cols := tbl.Columns()
	cols[0].Name = "changed"
	assert.True(t, tbl.Has("id"))

	req := tbl.RequiredColumns()
	req[0] = "changed"
	assert.Equal(t, "customer", tbl.RequiredColumns()[0])
}

func TestTable_SortByPosition(t *testing.T) {
	tbl := orders()
	names := []string{"zeta", "total", "id", "alpha", "customer"}
	tbl.SortByPosition(names)
	assert.Equal(t, []string{"id", "customer", "total", "alpha", "zeta"}, names)
	assert.Equal(t, 4, tbl.Position("total"))
	assert.Equal(t, -1, tbl.Position("nope"))
}

func TestNewView(t *testing.T) {
	v := NewView("recent_orders", Col("id", TypeBigint))
	assert.True(t, v.IsView())
	assert.Equal(t, []string{"id"}, v.RequiredColumns())
}

func TestNewTable_Panics(t *testing.T) {
	assert.Panics(t, func() { NewTable("") })
	assert.Panics(t, func() { NewTable("t", Col("", TypeInt)) })
	assert.PanicsWithValue(t, "schema: table t declares column a twice", func() {
		NewTable("t", Col("a", TypeInt), Col("a", TypeString))
	})
}

func TestValueType_IsNumeric(t *testing.T) {
	assert.True(t, TypeInt.IsNumeric())
	assert.True(t, TypeDouble.IsNumeric())
	assert.False(t, TypeString.IsNumeric())
	assert.False(t, TypeTimestamp.IsNumeric())
}

type exclaim struct{}

func (exclaim) TransformValueToDB(value interface{}, _ ValueType) interface{} {
	if s, ok := value.(string); ok {
		return s + "!"
	}
	return value
}

func TestTypeAdapterFunc(t *testing.T) {
	adapter := TypeAdapterFunc(func(value interface{}, typ ValueType, next DefaultTypeAdapter) interface{} {
		if typ == TypeBool {
			return "Y"
		}
		return next.TransformValueToDB(value, typ)
	})
	col := Col("flag", TypeBool).WithAdapter(adapter)
	assert.Equal(t, "Y", col.Adapter.TransformValueToDB(true, TypeBool, exclaim{}))
	assert.Equal(t, "x!", col.Adapter.TransformValueToDB("x", TypeString, exclaim{}))
}
