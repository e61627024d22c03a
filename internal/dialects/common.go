package dialects

import (
	"github.com/google/uuid"

	"github.com/coregx/sqlstage/internal/schema"
)

// normalizeUUID renders uuid values in canonical text form. Strings that do not
// parse are passed through untouched so the database reports the error.
func normalizeUUID(value interface{}, typ schema.ValueType) (interface{}, bool) {
	switch v := value.(type) {
	case uuid.UUID:
		return v.String(), true
	case *uuid.UUID:
		if v == nil {
			return nil, true
		}
		return v.String(), true
	case string:
		if typ != schema.TypeUUID {
			return value, false
		}
		if u, err := uuid.Parse(v); err == nil {
			return u.String(), true
		}
	}
	return value, false
}
