package report

import "strings"

// Row is one observation (typically an hourly candle) as decoded from JSON.
// Fields are accessed through the typed helpers below; anything missing or
// malformed reads as nil rather than failing.
type Row = map[string]any

// Label values recognized in a row's composite_label field. Anything else,
// including an absent label, counts as neutral.
const (
	LabelBullish = "bullish"
	LabelBearish = "bearish"
	LabelNeutral = "neutral"
)

// RowsOf extracts the ordered row sequence from a dataset document.
// A document that is not an object, has no rows field, or whose rows field
// is not an array yields an empty sequence. Elements that are not objects
// are dropped; the order of the rest is preserved.
func RowsOf(doc any) []Row {
	m, ok := doc.(map[string]any)
	if !ok {
		return nil
	}
	seq, ok := m["rows"].([]any)
	if !ok {
		return nil
	}

	rows := make([]Row, 0, len(seq))
	for _, el := range seq {
		if r, ok := el.(map[string]any); ok {
			rows = append(rows, r)
		}
	}
	return rows
}

func rowClose(r Row) *float64  { return Num(r["close"]) }
func rowHigh(r Row) *float64   { return Num(r["high"]) }
func rowLow(r Row) *float64    { return Num(r["low"]) }
func rowVolume(r Row) *float64 { return Num(r["volume"]) }

// rowTimeUTC returns the row's UTC timestamp string, or nil when absent or
// not a string.
func rowTimeUTC(r Row) *string {
	if s, ok := r["time_utc"].(string); ok {
		return &s
	}
	return nil
}

// rowLabel returns the canonical lower-cased composite label, defaulting to
// neutral for absent or unrecognized values.
func rowLabel(r Row) string {
	s, ok := r["composite_label"].(string)
	if !ok {
		return LabelNeutral
	}
	switch strings.ToLower(s) {
	case LabelBullish:
		return LabelBullish
	case LabelBearish:
		return LabelBearish
	default:
		return LabelNeutral
	}
}
