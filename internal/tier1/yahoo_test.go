package tier1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func chartServer(t *testing.T, wantPath, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantPath != "" && r.URL.Path != wantPath {
			t.Errorf("Unexpected path %s, want %s", r.URL.Path, wantPath)
		}
		if r.URL.Query().Get("range") != "5d" || r.URL.Query().Get("interval") != "1h" {
			t.Errorf("Unexpected query %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, body)
	}))
}

func TestFetchQuoteFromMeta(t *testing.T) {
	srv := chartServer(t, "/v8/finance/chart/DX-Y.NYB", `{
		"chart": {
			"result": [{
				"meta": {
					"currency": "USD",
					"symbol": "DX-Y.NYB",
					"exchangeName": "NYB",
					"instrumentType": "INDEX",
					"regularMarketPrice": 104.25,
					"previousClose": 103.9
				},
				"indicators": {"quote": [{"close": [103.5, 103.8, null]}]}
			}],
			"error": null
		}
	}`)
	defer srv.Close()

	q, err := testClient(srv).FetchQuote(context.Background(), SymbolDXY)
	if err != nil {
		t.Fatalf("FetchQuote: %v", err)
	}

	if q.Last != 104.25 {
		t.Errorf("Expected last 104.25 from meta, got %f", q.Last)
	}
	if q.Prev == nil || *q.Prev != 103.9 {
		t.Errorf("Expected prev 103.9, got %v", q.Prev)
	}
	if q.Symbol != SymbolDXY || q.Currency != "USD" || q.ExchangeName != "NYB" || q.InstrumentType != "INDEX" {
		t.Errorf("Unexpected quote metadata %+v", q)
	}
	if q.LastYieldPct != nil || q.PrevYieldPct != nil {
		t.Error("Expected no yield fields on a plain quote")
	}
}

func TestFetchQuoteCaretSymbol(t *testing.T) {
	// ^TNX must reach the server as an escaped path segment and decode back
	srv := chartServer(t, "/v8/finance/chart/^TNX", `{
		"chart": {
			"result": [{
				"meta": {"symbol": "^TNX", "currency": "USD", "regularMarketPrice": 4.253},
				"indicators": {"quote": [{"close": []}]}
			}],
			"error": null
		}
	}`)
	defer srv.Close()

	q, err := testClient(srv).FetchQuote(context.Background(), SymbolUS10Y)
	if err != nil {
		t.Fatalf("FetchQuote: %v", err)
	}
	if q.Last != 4.253 {
		t.Errorf("Expected yield quote 4.253 unscaled, got %f", q.Last)
	}
}

func TestFetchQuoteScansCloses(t *testing.T) {
	// No meta price at all: the close series is scanned backwards past nulls
	srv := chartServer(t, "", `{
		"chart": {
			"result": [{
				"meta": {"symbol": "ES=F", "currency": "USD"},
				"indicators": {"quote": [{"close": [5100.0, null, 5125.5, null, 5150.25, null]}]}
			}],
			"error": null
		}
	}`)
	defer srv.Close()

	q, err := testClient(srv).FetchQuote(context.Background(), SymbolES)
	if err != nil {
		t.Fatalf("FetchQuote: %v", err)
	}
	if q.Last != 5150.25 {
		t.Errorf("Expected last 5150.25 from scan, got %f", q.Last)
	}
	if q.Prev == nil || *q.Prev != 5125.5 {
		t.Errorf("Expected prev 5125.5 from scan, got %v", q.Prev)
	}
}

func TestFetchQuoteMetaPrevWins(t *testing.T) {
	// A meta previousClose survives even when last comes from the scan
	srv := chartServer(t, "", `{
		"chart": {
			"result": [{
				"meta": {"symbol": "NQ=F", "previousClose": 17900.0},
				"indicators": {"quote": [{"close": [17800.0, 17850.0]}]}
			}],
			"error": null
		}
	}`)
	defer srv.Close()

	q, err := testClient(srv).FetchQuote(context.Background(), SymbolNQ)
	if err != nil {
		t.Fatalf("FetchQuote: %v", err)
	}
	if q.Last != 17850.0 {
		t.Errorf("Expected last 17850 from scan, got %f", q.Last)
	}
	if q.Prev == nil || *q.Prev != 17900.0 {
		t.Errorf("Expected meta prev 17900 kept, got %v", q.Prev)
	}
}

func TestFetchQuoteChartError(t *testing.T) {
	srv := chartServer(t, "", `{
		"chart": {"result": null, "error": {"code": "Not Found", "description": "No data found, symbol may be delisted"}}
	}`)
	defer srv.Close()

	_, err := testClient(srv).FetchQuote(context.Background(), "BOGUS")

	var srcErr *SourceError
	if !errors.As(err, &srcErr) {
		t.Fatalf("Expected SourceError, got %v", err)
	}
	if srcErr.Source != "yahoo" || srcErr.Retryable {
		t.Errorf("Expected non-retryable yahoo error, got %+v", srcErr)
	}
}

func TestFetchQuoteNoCloses(t *testing.T) {
	srv := chartServer(t, "", `{
		"chart": {
			"result": [{
				"meta": {"symbol": "ES=F"},
				"indicators": {"quote": [{"close": [null, null]}]}
			}],
			"error": null
		}
	}`)
	defer srv.Close()

	if _, err := testClient(srv).FetchQuote(context.Background(), SymbolES); err == nil {
		t.Error("Expected error when no close value exists")
	}
}

func TestLastCloses(t *testing.T) {
	f := func(vs ...float64) []*float64 {
		out := make([]*float64, len(vs))
		for i := range vs {
			v := vs[i]
			out[i] = &v
		}
		return out
	}

	if last, prev := lastCloses(nil); last != nil || prev != nil {
		t.Error("Expected nils for empty quote list")
	}
	if last, prev := lastCloses([]chartQuote{{Close: f(42.0)}}); last == nil || *last != 42.0 || prev != nil {
		t.Errorf("Expected single close 42 with nil prev, got %v %v", last, prev)
	}
	if last, _ := lastCloses([]chartQuote{{Close: []*float64{nil, nil}}}); last != nil {
		t.Error("Expected nil last for all-null series")
	}
}
