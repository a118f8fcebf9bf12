// Package params extracts and validates fields from the raw JSON parameter
// map a request body decodes into. Numeric fields are accepted either as JSON
// numbers or as decimal text, so form inputs can be forwarded untouched.
package params

import (
	"fmt"
	"math"
	"strconv"

	"github.com/zealotai/statistics-api/internal/shared/staterr"
)

// DefaultDecimals is the rounding precision applied when a request does not
// specify one.
const DefaultDecimals = 4

// coerce converts a single JSON-decoded value to float64.
func coerce(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Number extracts a numeric field. The second return value is false when the
// field is absent or not numeric.
func Number(p map[string]interface{}, key string) (float64, bool) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, false
	}
	f, ok := coerce(v)
	if !ok {
		return 0, false
	}
	return f, true
}

// RequireNumber extracts a numeric field that must be present and finite.
func RequireNumber(p map[string]interface{}, key string) (float64, error) {
	v, present := p[key]
	if !present || v == nil {
		return 0, staterr.InvalidInput("%s is required", key)
	}
	f, ok := coerce(v)
	if !ok {
		return 0, staterr.InvalidInput("%s must be numeric, got %v", key, v)
	}
	if err := checkFinite(f, key); err != nil {
		return 0, err
	}
	return f, nil
}

// Numbers extracts an array of numbers. Missing or empty arrays and
// non-numeric tokens are rejected before any computation begins.
func Numbers(p map[string]interface{}, key string) ([]float64, error) {
	raw, ok := p[key].([]interface{})
	if !ok || len(raw) == 0 {
		return nil, staterr.InvalidInput("%s array is required", key)
	}

	values := make([]float64, 0, len(raw))
	for i, v := range raw {
		f, ok := coerce(v)
		if !ok {
			return nil, staterr.InvalidInput("%s[%d] is not numeric: %v", key, i, v)
		}
		if err := checkFinite(f, fmt.Sprintf("%s[%d]", key, i)); err != nil {
			return nil, err
		}
		values = append(values, f)
	}
	return values, nil
}

// Int extracts an integer-valued field.
func Int(p map[string]interface{}, key string) (int, bool) {
	f, ok := Number(p, key)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// RequireInt extracts an integer field that must be present.
func RequireInt(p map[string]interface{}, key string) (int, error) {
	v, present := p[key]
	if !present || v == nil {
		return 0, staterr.InvalidInput("%s is required", key)
	}
	f, ok := coerce(v)
	if !ok || f != math.Trunc(f) {
		return 0, staterr.InvalidInput("%s must be an integer, got %v", key, v)
	}
	return int(f), nil
}

// String extracts a string field.
func String(p map[string]interface{}, key string) (string, bool) {
	s, ok := p[key].(string)
	return s, ok
}

// Bool extracts a boolean field.
func Bool(p map[string]interface{}, key string) bool {
	b, _ := p[key].(bool)
	return b
}

// Decimals extracts the rounding precision, clamped to the documented 0-10
// domain. Absent fields default to DefaultDecimals.
func Decimals(p map[string]interface{}) (int, error) {
	v, present := p["decimals"]
	if !present || v == nil {
		return DefaultDecimals, nil
	}
	f, ok := coerce(v)
	if !ok || f != math.Trunc(f) {
		return 0, staterr.InvalidInput("decimals must be an integer, got %v", v)
	}
	d := int(f)
	if d < 0 || d > 10 {
		return 0, staterr.InvalidRange("decimals must be between 0 and 10, got %d", d)
	}
	return d, nil
}

// Confidence extracts a confidence level and validates the open (0,1) domain.
// Absent fields fall back to def.
func Confidence(p map[string]interface{}, key string, def float64) (float64, error) {
	v, present := p[key]
	if !present || v == nil {
		return def, nil
	}
	c, ok := coerce(v)
	if !ok {
		return 0, staterr.InvalidInput("%s must be numeric, got %v", key, v)
	}
	if c <= 0 || c >= 1 {
		return 0, staterr.InvalidRange("%s must be between 0 and 1 exclusive, got %v", key, c)
	}
	return c, nil
}

func checkFinite(f float64, name string) error {
	if math.IsNaN(f) {
		return staterr.InvalidInput("%s is NaN", name)
	}
	if math.IsInf(f, 0) {
		return staterr.InvalidInput("%s is infinite", name)
	}
	return nil
}
