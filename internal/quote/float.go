package quote

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Float coerces a provider field to a number. Missing, null, empty, "-" and
// anything unparsable become 0, which downstream code reads as "absent".
func Float(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		s := strings.TrimSpace(x)
		if s == "" || s == "-" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

// Field reads key from a payload with Float semantics.
func Field(data map[string]any, key string) float64 {
	if data == nil || key == "" {
		return 0
	}
	return Float(data[key])
}

// Text reads a string field; numbers are formatted, anything else is "".
func Text(data map[string]any, key string) string {
	switch x := data[key].(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	}
	return ""
}

// Round2 rounds half away from zero to two decimals.
func Round2(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}
