package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FormatValue renders a cell value as the string shown in candidate lists.
// Numbers use their shortest representation, nil renders empty.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// IsBlank reports whether a cell counts as empty: absent, nil, or a string
// with no non-space characters.
func IsBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	default:
		return false
	}
}

// isEmptyCell is the stricter emptiness used when filtering data rows on
// load: only nil and "" count, whitespace is content.
func isEmptyCell(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	default:
		return false
	}
}

// normalizeNumber folds integer types into float64 so a value decoded from
// JSON and one built in memory compare equal.
func normalizeNumber(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case float32:
		return float64(x)
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	default:
		return v
	}
}

// ValuesEqual is exact, type-sensitive equality. A number never equals its
// string rendering.
func ValuesEqual(a, b any) bool {
	a, b = normalizeNumber(a), normalizeNumber(b)
	switch x := a.(type) {
	case nil:
		return b == nil
	case string:
		y, ok := b.(string)
		return ok && x == y
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	default:
		return false
	}
}
