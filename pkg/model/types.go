package model

// Report is the top-level aggregate artifact written to report.json.
type Report struct {
	GeneratedUTC string         `json:"generated_utc"`
	Schema       string         `json:"schema"`
	Status       Status         `json:"status"`
	Data         map[string]any `json:"data"`
}

// Status describes which configured inputs were missing or unreadable.
// OK is true only when both lists are empty.
type Status struct {
	OK           bool              `json:"ok"`
	MissingFiles []string          `json:"missing_files"`
	Errors       map[string]string `json:"errors"`
}

// Summary holds the aggregate statistics for one dataset's row sequence.
// Numeric fields are nil when no usable value existed in the rows.
type Summary struct {
	Count          int      `json:"count"`
	FirstTimeUTC   *string  `json:"first_time_utc"`
	LastTimeUTC    *string  `json:"last_time_utc"`
	CloseFirst     *float64 `json:"close_first"`
	CloseLast      *float64 `json:"close_last"`
	CloseChangePct *float64 `json:"close_change_pct"`
	HighMax        *float64 `json:"high_max"`
	LowMin         *float64 `json:"low_min"`
	VolumeSum      *float64 `json:"volume_sum"`
}

// LabelCounts tallies the composite labels of a row sequence.
// The three buckets always sum to Total.
type LabelCounts struct {
	Bullish int `json:"bullish"`
	Neutral int `json:"neutral"`
	Bearish int `json:"bearish"`
	Total   int `json:"total"`
}

// DatasetSummary is the compact form a summarized dataset takes inside the
// report. TailRows carries the most recent rows verbatim when a tail window
// was requested.
type DatasetSummary struct {
	OK                 bool             `json:"ok"`
	Version            any              `json:"version"`
	Summary            Summary          `json:"summary"`
	LabelCounts        LabelCounts      `json:"label_counts"`
	LatestLabel        any              `json:"latest_label"`
	LatestSignalEvents any              `json:"latest_signal_events"`
	TailRows           []map[string]any `json:"tail_rows,omitempty"`
}

// Tier1Snapshot is the tier-1 market context document written to tier1.json.
// Each section holds either its typed result or an ErrorEntry when the
// source failed.
type Tier1Snapshot struct {
	GeneratedUTC string         `json:"generated_utc"`
	Tier         string         `json:"tier"`
	Price        any            `json:"price"`
	Macro        map[string]any `json:"macro"`
	Funding      any            `json:"funding"`
	ETFFlows     any            `json:"etf_flows"`
}

// ErrorEntry replaces a snapshot section whose source fetch failed.
type ErrorEntry struct {
	Error string `json:"error"`
}

// SpotPrice is the spot quote section of a tier-1 snapshot.
// Raw keeps the upstream payload; the report build strips it.
type SpotPrice struct {
	Source string  `json:"source"`
	BTCUSD float64 `json:"btc_usd"`
	TSUTC  string  `json:"ts_utc"`
	Raw    any     `json:"raw"`
}

// MacroQuote is one macro instrument quote (index, yield, or future).
// LastYieldPct/PrevYieldPct are set only for yield instruments whose quote
// already is a percent value.
type MacroQuote struct {
	Symbol         string   `json:"symbol"`
	Last           float64  `json:"last"`
	Prev           *float64 `json:"prev"`
	Currency       string   `json:"currency"`
	ExchangeName   string   `json:"exchangeName"`
	InstrumentType string   `json:"instrumentType"`
	TSUTC          string   `json:"ts_utc"`
	LastYieldPct   *float64 `json:"last_yield_pct,omitempty"`
	PrevYieldPct   *float64 `json:"prev_yield_pct,omitempty"`
}

// FundingRate is the perpetual funding section of a tier-1 snapshot.
// Exchange timestamps are unix milliseconds as delivered upstream.
type FundingRate struct {
	Source            string   `json:"source"`
	Symbol            string   `json:"symbol"`
	FundingRate       *float64 `json:"fundingRate"`
	NextFundingRate   *float64 `json:"nextFundingRate"`
	TSExchangeMS      *int64   `json:"ts_exchange_ms"`
	NextFundingTimeMS *int64   `json:"nextFundingTime_ms"`
	TSUTC             string   `json:"ts_utc"`
	Raw               any      `json:"raw"`
}

// ETFFlows reports the ETF flow source state. The upstream table is behind
// a bot wall, so the fetcher emits a placeholder instead of failing the run.
type ETFFlows struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}
