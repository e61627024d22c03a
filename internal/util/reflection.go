// Package util provides the reflection helpers used to turn structs into
// column assignments.
package util

import (
	"errors"
	"reflect"
	"strings"
)

// FieldMapFunc converts a Go field name to a column name.
type FieldMapFunc func(string) string

// parseDBTag parses a db tag.
//
// Supported formats:
//   - "column"           -> column="column"
//   - "column,omitempty" -> column="column", the field is skipped when zero
//   - ",omitempty"       -> column from the field name, skipped when zero
//   - "-"                -> column="-" (skip field)
func parseDBTag(tag string) (column string, omitEmpty bool) {
	parts := strings.Split(tag, ",")
	column = strings.TrimSpace(parts[0])
	for _, part := range parts[1:] {
		if strings.TrimSpace(part) == "omitempty" {
			omitEmpty = true
		}
	}
	return column, omitEmpty
}

// StructToMap converts a struct to map[string]interface{} keyed by column name.
//
// Rules:
//   - Unexported fields are skipped.
//   - db:"-" fields are skipped.
//   - db:"column_name" maps to column_name.
//   - Fields without a db column name use mapper(field name), or the field
//     name itself when mapper is nil.
//   - Untagged embedded structs are flattened; outer fields win on conflict.
//   - Zero values are included unless the tag says omitempty.
//
// Returns error if:
//   - data is not a struct or *struct.
//   - data is nil pointer.
func StructToMap(data interface{}, mapper FieldMapFunc) (map[string]interface{}, error) {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, errors.New("StructToMap: nil pointer")
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return nil, errors.New("StructToMap: expected struct, got " + v.Kind().String())
	}

	result := make(map[string]interface{})
	collectFields(v, mapper, result)
	return result, nil
}

func collectFields(v reflect.Value, mapper FieldMapFunc, result map[string]interface{}) {
	t := v.Type()
	var embedded []reflect.Value

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag, hasTag := field.Tag.Lookup("db")

		if field.Anonymous && !hasTag {
			fv := v.Field(i)
			if fv.Kind() == reflect.Ptr {
				if fv.IsNil() {
					continue
				}
				fv = fv.Elem()
			}
			if fv.Kind() == reflect.Struct {
				embedded = append(embedded, fv)
				continue
			}
		}

		if !field.IsExported() {
			continue
		}

		column, omitEmpty := parseDBTag(tag)
		if column == "-" {
			continue
		}
		if column == "" {
			column = field.Name
			if mapper != nil {
				column = mapper(field.Name)
			}
		}

		fieldValue := v.Field(i)
		if omitEmpty && fieldValue.IsZero() {
			continue
		}
		result[column] = fieldValue.Interface()
	}

	for _, ev := range embedded {
		inner := make(map[string]interface{})
		collectFields(ev, mapper, inner)
		for k, val := range inner {
			if _, exists := result[k]; !exists {
				result[k] = val
			}
		}
	}
}
