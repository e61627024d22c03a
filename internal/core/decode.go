package core

import (
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/coregx/sqlstage/internal/schema"
)

// decodeID converts a driver value holding a generated key to the Go type of
// its column: int64 for int and bigint, string for string and uuid. Values
// that do not convert are returned as the driver produced them.
func decodeID(v interface{}, typ schema.ValueType) interface{} {
	switch typ {
	case schema.TypeInt, schema.TypeBigint:
		if n, ok := toInt64(v); ok {
			return n
		}
	case schema.TypeString, schema.TypeUUID:
		if s, ok := toString(v); ok {
			return s
		}
	}
	return v
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int16:
		return int64(n), true
	case int8:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case []byte:
		i, err := strconv.ParseInt(string(n), 10, 64)
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	}
	return 0, false
}

func toString(v interface{}) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		if len(s) == 16 {
			if u, err := uuid.FromBytes(s); err == nil {
				return u.String(), true
			}
		}
		return string(s), true
	case [16]byte:
		return uuid.UUID(s).String(), true
	case uuid.UUID:
		return s.String(), true
	case int64:
		return strconv.FormatInt(s, 10), true
	case fmt.Stringer:
		return s.String(), true
	}
	return "", false
}
