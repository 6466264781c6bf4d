package report

import "btcreport/pkg/model"

// Summarize reduces a dataset document to its compact report form. tailN > 0
// additionally retains the last tailN rows verbatim as a tail window.
//
// A document that was already summarized upstream (carries summary and
// label_counts, no rows) passes through unchanged, so summarizing twice is
// a no-op. Anything that is not an object summarizes as an empty dataset.
func Summarize(doc any, tailN int) any {
	m, isMap := doc.(map[string]any)
	if isMap && preSummarized(m) {
		return doc
	}

	rows := RowsOf(doc)
	sum, lc := Stats(rows)

	out := &model.DatasetSummary{
		OK:          true,
		Summary:     sum,
		LabelCounts: lc,
	}
	if isMap {
		if b, ok := m["ok"].(bool); ok {
			out.OK = b
		}
		out.Version = m["version"]
	}
	if len(rows) > 0 {
		last := rows[len(rows)-1]
		out.LatestLabel = last["composite_label"]
		out.LatestSignalEvents = last["signal_events"]
	}
	if tailN > 0 {
		out.TailRows = tail(rows, tailN)
	}
	return out
}

// preSummarized reports whether the document already holds a compact
// summary and no raw rows to recompute it from.
func preSummarized(m map[string]any) bool {
	_, hasSummary := m["summary"]
	_, hasCounts := m["label_counts"]
	_, hasRows := m["rows"]
	return hasSummary && hasCounts && !hasRows
}

// tail returns the last n rows in original order, or all of them when the
// sequence is shorter than n.
func tail(rows []Row, n int) []Row {
	if n >= len(rows) {
		return rows
	}
	return rows[len(rows)-n:]
}
