package dao

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/schema"
)

// noValue is the sentinel for a failed strict coercion. A lookup that
// coerces to noValue returns "no match" instead of querying or erroring.
type noValueType struct{}

var noValue any = noValueType{}

// isNoValue reports whether a coerced value is the miss sentinel.
func isNoValue(v any) bool {
	_, miss := v.(noValueType)
	return miss
}

// coerceStrict converts a caller value to the native type of the target
// column. UUID columns parse strictly: an unparseable string becomes the
// noValue sentinel. Everything else is best-effort; values that cannot be
// converted pass through unchanged and typing is left to the driver.
func coerceStrict(field *schema.Field, isUUIDColumn bool, value any) any {
	if isUUIDColumn {
		s, ok := value.(string)
		if !ok {
			return noValue
		}
		parsed, err := uuid.Parse(s)
		if err != nil {
			return noValue
		}
		return parsed.String()
	}
	return coerceLoose(field, value)
}

// coerceLoose converts string inputs toward the column's type where that is
// unambiguous (digits to int, RFC 3339 to time). Inputs that fail
// conversion are preserved as-is so an IN-list keeps the caller's
// multiplicity; they simply will not match.
func coerceLoose(field *schema.Field, value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	switch logicalTypeOf(field) {
	case TypeNumber:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return int(n)
		}
	case TypeDateTime:
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.UTC()
		}
	}
	return value
}

// isAllDigits reports whether s is a non-empty decimal string, used to
// dispatch id-or-uuid lookups.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
