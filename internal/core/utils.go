package core

import (
	"database/sql/driver"
	"reflect"
	"strings"
)

// DefaultFieldMapFunc converts Go struct field names to snake_case database column names.
func DefaultFieldMapFunc(field string) string {
	result := make([]rune, 0, len(field)+5)
	for i, r := range field {
		if i > 0 && 'A' <= r && r <= 'Z' {
			result = append(result, '_')
		}
		result = append(result, r)
	}
	return strings.ToLower(string(result))
}

// isNil reports whether v is nil, a typed nil pointer, or a driver.Valuer
// whose value is NULL.
func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		if rv.IsNil() {
			// nil []byte is an empty blob, not NULL.
			return rv.Kind() != reflect.Slice
		}
	}
	if valuer, ok := v.(driver.Valuer); ok {
		dv, err := valuer.Value()
		return err == nil && dv == nil
	}
	return false
}
