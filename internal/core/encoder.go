package core

import (
	"database/sql/driver"
	"reflect"

	"github.com/coregx/sqlstage/internal/dialects"
	"github.com/coregx/sqlstage/internal/schema"
)

// ValueEncoder binds literal values for one compilation. Each appended value
// is transformed for the target database and gets the next placeholder, so
// the parameter index always equals the placeholder's position in the text.
type ValueEncoder struct {
	dialect dialects.Dialect
	params  []interface{}
}

// NewValueEncoder creates an encoder with an empty parameter array.
func NewValueEncoder(d dialects.Dialect) *ValueEncoder {
	return &ValueEncoder{dialect: d}
}

// Append transforms value through adapter (or the dialect's default
// transformation when adapter is nil), binds it, and returns its placeholder.
func (e *ValueEncoder) Append(value interface{}, typ schema.ValueType, adapter schema.TypeAdapter) string {
	value = deref(value)
	if adapter != nil {
		value = adapter.TransformValueToDB(value, typ, e.dialect)
	} else if value != nil {
		value = e.dialect.TransformValueToDB(value, typ)
	}
	e.params = append(e.params, value)
	return e.dialect.Placeholder(len(e.params))
}

// Params returns the bound values in placeholder order.
func (e *ValueEncoder) Params() []interface{} {
	return e.params
}

// Len returns the number of bound values.
func (e *ValueEncoder) Len() int {
	return len(e.params)
}

// deref unwraps pointers so dialect transformations see the underlying value.
// Nil pointers become nil. Pointers implementing driver.Valuer are kept.
func deref(v interface{}) interface{} {
	for v != nil {
		if _, ok := v.(driver.Valuer); ok {
			return v
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Ptr {
			return v
		}
		if rv.IsNil() {
			return nil
		}
		v = rv.Elem().Interface()
	}
	return v
}
