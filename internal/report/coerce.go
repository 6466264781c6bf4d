package report

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// missingTokens are string values upstream feeds use for "no data".
// Matched case-insensitively after trimming.
var missingTokens = map[string]bool{
	"":     true,
	"-":    true,
	"–":    true, // en dash
	"—":    true, // em dash
	"n/a":  true,
	"na":   true,
	"null": true,
	"none": true,
}

// Num converts an arbitrary decoded JSON scalar to a float, or nil when the
// value is absent, non-numeric, or a recognized missing-data token. It never
// fails: anything unparseable is nil.
//
// Strings tolerate thousands separators ("1,234.5"), currency prefixes
// ("$43,000"), and accounting-style parenthesized negatives ("(12.5)").
func Num(v any) *float64 {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int:
		return finite(float64(x))
	case int32:
		return finite(float64(x))
	case int64:
		return finite(float64(x))
	case json.Number:
		return NumString(x.String())
	case string:
		return NumString(x)
	default:
		return nil
	}
}

// NumString applies the string coercion rules of Num directly.
func NumString(s string) *float64 {
	s = strings.TrimSpace(s)
	if missingTokens[strings.ToLower(s)] {
		return nil
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, ",", "")
	for _, sym := range []string{"$", "€", "£", "¥"} {
		s = strings.TrimPrefix(s, sym)
	}
	s = strings.TrimSpace(s)

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	if neg {
		f = -f
	}
	return finite(f)
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// round2 rounds to 2 decimal places, the precision used for percent changes
// and dollar deltas in the report.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
