package report

import (
	"encoding/json"
	"fmt"
	"reflect"
	"testing"

	"btcreport/pkg/model"
)

func hourlyDataset(n int) map[string]any {
	rows := make([]any, n)
	for i := 0; i < n; i++ {
		rows[i] = map[string]any{
			"time_utc":        fmt.Sprintf("2024-01-01T%02d:00:00Z", i%24),
			"close":           100.0 + float64(i),
			"high":            101.0 + float64(i),
			"low":             99.0 + float64(i),
			"volume":          1.0,
			"composite_label": "neutral",
		}
	}
	return map[string]any{
		"ok":      true,
		"version": "v3",
		"count":   float64(n),
		"rows":    rows,
	}
}

func TestSummarize(t *testing.T) {
	doc := hourlyDataset(24)
	out := Summarize(doc, 0)

	ds, ok := out.(*model.DatasetSummary)
	if !ok {
		t.Fatalf("Expected *model.DatasetSummary, got %T", out)
	}

	if !ds.OK {
		t.Error("Expected ok to pass through as true")
	}
	if ds.Version != "v3" {
		t.Errorf("Expected version v3, got %v", ds.Version)
	}
	if ds.Summary.Count != 24 {
		t.Errorf("Expected count 24, got %d", ds.Summary.Count)
	}
	if ds.LabelCounts.Total != 24 || ds.LabelCounts.Neutral != 24 {
		t.Errorf("Unexpected label counts: %+v", ds.LabelCounts)
	}
	if ds.LatestLabel != "neutral" {
		t.Errorf("Expected latest_label neutral, got %v", ds.LatestLabel)
	}
	if ds.TailRows != nil {
		t.Errorf("Expected no tail_rows, got %d", len(ds.TailRows))
	}
}

func TestSummarizeDefaults(t *testing.T) {
	// No ok field defaults to true; absent version stays nil
	out := Summarize(map[string]any{"rows": []any{}}, 0)
	ds := out.(*model.DatasetSummary)

	if !ds.OK {
		t.Error("Expected ok to default to true")
	}
	if ds.Version != nil {
		t.Errorf("Expected nil version, got %v", ds.Version)
	}

	// An explicit false passes through
	out = Summarize(map[string]any{"ok": false}, 0)
	if out.(*model.DatasetSummary).OK {
		t.Error("Expected ok false to pass through")
	}
}

func TestSummarizeNonObject(t *testing.T) {
	out := Summarize([]any{1.0, 2.0}, 5)
	ds, ok := out.(*model.DatasetSummary)
	if !ok {
		t.Fatalf("Expected *model.DatasetSummary, got %T", out)
	}
	if ds.Summary.Count != 0 || ds.LabelCounts.Total != 0 {
		t.Errorf("Expected empty summary, got %+v", ds.Summary)
	}
}

func TestSummarizeTailWindow(t *testing.T) {
	doc := hourlyDataset(500)
	out := Summarize(doc, 72)

	ds := out.(*model.DatasetSummary)
	if len(ds.TailRows) != 72 {
		t.Fatalf("Expected 72 tail rows, got %d", len(ds.TailRows))
	}

	// The tail must be the last 72 rows in original order, verbatim
	rows := RowsOf(doc)
	for i, r := range ds.TailRows {
		want := rows[500-72+i]
		if !reflect.DeepEqual(r, want) {
			t.Fatalf("Tail row %d differs from source row", i)
		}
	}
}

func TestSummarizeTailShorterThanWindow(t *testing.T) {
	out := Summarize(hourlyDataset(3), 10)
	ds := out.(*model.DatasetSummary)
	if len(ds.TailRows) != 3 {
		t.Errorf("Expected 3 tail rows, got %d", len(ds.TailRows))
	}
}

func TestSummarizeLatestSignalEvents(t *testing.T) {
	doc := hourlyDataset(2)
	rows := doc["rows"].([]any)
	events := []any{map[string]any{"type": "macd_cross"}}
	rows[1].(map[string]any)["signal_events"] = events
	rows[1].(map[string]any)["composite_label"] = "bullish"

	ds := Summarize(doc, 0).(*model.DatasetSummary)
	if ds.LatestLabel != "bullish" {
		t.Errorf("Expected latest_label bullish, got %v", ds.LatestLabel)
	}
	if !reflect.DeepEqual(ds.LatestSignalEvents, events) {
		t.Errorf("Expected signal events to pass through, got %v", ds.LatestSignalEvents)
	}
}

func TestSummarizePreSummarizedPassThrough(t *testing.T) {
	doc := map[string]any{
		"ok":      true,
		"version": "v2",
		"summary": map[string]any{"count": 2160.0, "close_last": 43000.0},
		"label_counts": map[string]any{
			"bullish": 700.0, "neutral": 800.0, "bearish": 660.0, "total": 2160.0,
		},
	}

	out := Summarize(doc, 48)
	m, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("Expected pass-through map, got %T", out)
	}
	if !reflect.DeepEqual(m, doc) {
		t.Error("Pre-summarized document must pass through unchanged")
	}
}

func TestSummarizeIdempotent(t *testing.T) {
	// Summarizing a summarized document must be a no-op once it has been
	// through a JSON round trip, the way the assembler would see it again.
	first := Summarize(hourlyDataset(10), 4)

	data, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var roundTrip any
	if err := json.Unmarshal(data, &roundTrip); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	second := Summarize(roundTrip, 4)
	if !reflect.DeepEqual(second, roundTrip) {
		t.Error("Expected second summarize to pass through unchanged")
	}
}

func TestSummarizeRecomputesWhenRowsPresent(t *testing.T) {
	// A stale summary next to real rows is recomputed, not trusted
	doc := hourlyDataset(5)
	doc["summary"] = map[string]any{"count": 9999.0}
	doc["label_counts"] = map[string]any{"total": 9999.0}

	ds, ok := Summarize(doc, 0).(*model.DatasetSummary)
	if !ok {
		t.Fatal("Expected recomputation, got pass-through")
	}
	if ds.Summary.Count != 5 {
		t.Errorf("Expected count 5, got %d", ds.Summary.Count)
	}
}
