package edit

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// toFloat converts a scalar to float64. Numeric strings are accepted since
// values coming from the command line arrive as text.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// toFloats converts a sequence to []float64. A scalar is reported as such so
// the caller can broadcast it.
func toFloats(v any) (values []float64, scalar bool, ok bool) {
	switch x := v.(type) {
	case []float64:
		return append([]float64(nil), x...), false, true
	case []int:
		out := make([]float64, len(x))
		for i, n := range x {
			out[i] = float64(n)
		}
		return out, false, true
	case []string:
		out := make([]float64, len(x))
		for i, s := range x {
			f, ok := toFloat(s)
			if !ok {
				return nil, false, false
			}
			out[i] = f
		}
		return out, false, true
	case []any:
		out := make([]float64, len(x))
		for i, e := range x {
			f, ok := toFloat(e)
			if !ok {
				return nil, false, false
			}
			out[i] = f
		}
		return out, false, true
	}
	if f, ok := toFloat(v); ok {
		return []float64{f}, true, true
	}
	return nil, false, false
}

// toText renders a value the way the engine stores script parameters.
func toText(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case bool:
		return strconv.FormatBool(x), true
	case time.Time:
		return x.Format("2006-01-02"), true
	case fmt.Stringer:
		return x.String(), true
	case []any, []float64, []int, []string:
		if floats, _, ok := toFloats(x); ok {
			parts := make([]string, len(floats))
			for i, f := range floats {
				parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
			}
			return strings.Join(parts, ","), true
		}
		if ss, ok := toTexts(x); ok {
			return strings.Join(ss, ","), true
		}
		return "", false
	default:
		return fmt.Sprint(x), true
	}
}

func toTexts(v any) ([]string, bool) {
	switch x := v.(type) {
	case []string:
		return append([]string(nil), x...), true
	case []any:
		out := make([]string, len(x))
		for i, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out[i] = s
		}
		return out, true
	case string:
		return []string{x}, true
	default:
		return nil, false
	}
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// toDate parses an ISO-8601 date or accepts a time.Time.
func toDate(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
