package tier1

import (
	"context"

	"github.com/rs/zerolog"

	"btcreport/pkg/model"
)

// Macro symbols fetched into the snapshot.
const (
	SymbolDXY   = "DX-Y.NYB"
	SymbolUS10Y = "^TNX"
	SymbolES    = "ES=F"
	SymbolNQ    = "NQ=F"
)

// SourceCount is the number of fetch steps in one snapshot run.
const SourceCount = 7

// ProgressCallback is called after each source fetch completes
type ProgressCallback func(done, total int)

// Fetcher assembles a tier-1 market snapshot from the public sources
type Fetcher struct {
	client       *Client
	log          zerolog.Logger
	progressFunc ProgressCallback
}

// NewFetcher creates a new snapshot fetcher
func NewFetcher(client *Client, log zerolog.Logger) *Fetcher {
	return &Fetcher{client: client, log: log}
}

// SetProgressCallback sets the progress callback function
func (f *Fetcher) SetProgressCallback(fn ProgressCallback) {
	f.progressFunc = fn
}

// Snapshot fetches every tier-1 source. A failed source never aborts the
// snapshot: its section carries {"error": ...} in place of the data, which
// is what the report assembler expects to find.
func (f *Fetcher) Snapshot(ctx context.Context) *model.Tier1Snapshot {
	snap := &model.Tier1Snapshot{
		GeneratedUTC: utcNow(),
		Tier:         "tier1",
		Macro:        make(map[string]any, 4),
	}

	done := 0
	step := func() {
		done++
		if f.progressFunc != nil {
			f.progressFunc(done, SourceCount)
		}
	}

	if spot, err := f.client.FetchSpot(ctx); err != nil {
		f.log.Warn().Err(err).Msg("spot fetch failed")
		snap.Price = model.ErrorEntry{Error: err.Error()}
	} else {
		snap.Price = spot
	}
	step()

	snap.Macro["dxy"] = f.macroQuote(ctx, SymbolDXY, false)
	step()
	snap.Macro["us10y"] = f.macroQuote(ctx, SymbolUS10Y, true)
	step()
	snap.Macro["es_futures"] = f.macroQuote(ctx, SymbolES, false)
	step()
	snap.Macro["nq_futures"] = f.macroQuote(ctx, SymbolNQ, false)
	step()

	if funding, err := f.client.FetchFunding(ctx); err != nil {
		f.log.Warn().Err(err).Msg("funding fetch failed")
		snap.Funding = model.ErrorEntry{Error: err.Error()}
	} else {
		snap.Funding = funding
	}
	step()

	snap.ETFFlows = ETFFlowsStub()
	step()

	return snap
}

// macroQuote fetches one macro symbol, degrading to an error entry on
// failure. asYield mirrors the quote into the *_yield_pct fields for
// instruments whose quote already is a percent value; the ^TNX ten-year
// quote comes back as ~4.xx and must not be rescaled.
func (f *Fetcher) macroQuote(ctx context.Context, symbol string, asYield bool) any {
	q, err := f.client.FetchQuote(ctx, symbol)
	if err != nil {
		f.log.Warn().Str("symbol", symbol).Err(err).Msg("macro fetch failed")
		return model.ErrorEntry{Error: err.Error()}
	}
	if asYield {
		last := q.Last
		q.LastYieldPct = &last
		q.PrevYieldPct = q.Prev
	}
	return q
}
