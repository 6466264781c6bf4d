package report

// Strip returns a copy of a decoded JSON tree with every entry keyed "raw"
// removed, at any depth. Upstream snapshots embed full exchange payloads
// under that key and they dwarf the rest of the report.
//
// Arrays keep their length, objects keep every other entry, and leaf values
// pass through untouched.
func Strip(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if k == "raw" {
				continue
			}
			out[k] = Strip(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = Strip(el)
		}
		return out
	default:
		return v
	}
}
