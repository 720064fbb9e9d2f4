package game

import (
	"fmt"
	"strconv"
	"strings"
)

// IntParam extracts an integer parameter. Strings are parsed, floats truncated.
func IntParam(params map[string]any, key string) (int, bool) {
	v, ok := params[key]
	if !ok {
		return 0, false
	}

	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		return int(val), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// FloatParam extracts a float parameter. A trailing "x" is accepted ("2.5x").
func FloatParam(params map[string]any, key string) (float64, bool) {
	v, ok := params[key]
	if !ok {
		return 0, false
	}

	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		s := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(val)), "x")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// StringParam extracts a lower-cased string parameter.
func StringParam(params map[string]any, key string) (string, bool) {
	v, ok := params[key]
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(val)), true
	case fmt.Stringer:
		return strings.ToLower(val.String()), true
	default:
		return "", false
	}
}

// RequireInt extracts an integer parameter or returns ErrBadParam.
func RequireInt(params map[string]any, key string) (int, error) {
	n, ok := IntParam(params, key)
	if !ok {
		return 0, fmt.Errorf("%w: %s is required", ErrBadParam, key)
	}
	return n, nil
}
