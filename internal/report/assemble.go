package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"btcreport/pkg/model"
)

// Schema identifies the report artifact layout for downstream consumers.
const Schema = "btc-data-report-v1"

// Policy selects how a loaded dataset is folded into the report.
type Policy string

const (
	// PolicyKeep passes the document through untouched.
	PolicyKeep Policy = "keep"
	// PolicyStripRaw passes the document through minus embedded raw payloads.
	PolicyStripRaw Policy = "strip-raw"
	// PolicyLatestOnly truncates the document's rows to the newest one.
	PolicyLatestOnly Policy = "latest-only"
	// PolicySummarize reduces the document to summary statistics, keeping a
	// tail window of rows when the dataset entry asks for one.
	PolicySummarize Policy = "summarize"
)

// DatasetSpec names one expected input document and its fold policy.
type DatasetSpec struct {
	Key      string
	File     string
	Policy   Policy
	TailRows int
}

// Datasets returns the input table the assembler works through, in report
// order. The order fixes how missing files are listed in the status block.
// last24hTail and periodTail size the tail windows of the last-24h and
// period datasets; zero disables the tail.
func Datasets(last24hTail, periodTail int) []DatasetSpec {
	return []DatasetSpec{
		{Key: "dashboard", File: "dashboard.json", Policy: PolicyKeep},
		{Key: "tier1", File: "tier1.json", Policy: PolicyStripRaw},
		{Key: "latest", File: "latest.json", Policy: PolicyLatestOnly},
		{Key: "last-24h", File: "last-24h.json", Policy: PolicySummarize, TailRows: last24hTail},
		{Key: "90d", File: "90d.json", Policy: PolicySummarize, TailRows: periodTail},
		{Key: "ytd", File: "ytd.json", Policy: PolicySummarize, TailRows: periodTail},
		{Key: "2023", File: "2023.json", Policy: PolicySummarize, TailRows: periodTail},
		{Key: "2024", File: "2024.json", Policy: PolicySummarize, TailRows: periodTail},
	}
}

// Options configures an Assembler.
type Options struct {
	Dir             string // directory holding inputs and outputs
	OutputFile      string // report filename, e.g. report.json
	FullFile        string // full-bundle filename, empty disables the second write
	Last24hTailRows int
	PeriodTailRows  int
}

// Assembler folds the configured input documents into one report artifact.
// Missing or unreadable inputs degrade into the report's status block; the
// only fatal failure is being unable to write the output.
type Assembler struct {
	opts     Options
	datasets []DatasetSpec
	log      zerolog.Logger
}

// NewAssembler creates an assembler for the given options.
func NewAssembler(opts Options, log zerolog.Logger) *Assembler {
	return &Assembler{
		opts:     opts,
		datasets: Datasets(opts.Last24hTailRows, opts.PeriodTailRows),
		log:      log,
	}
}

// Run assembles the report and writes it to the configured output path,
// plus the full bundle when one is configured.
func (a *Assembler) Run() error {
	rep := a.Assemble()
	path := filepath.Join(a.opts.Dir, a.opts.OutputFile)
	if err := WriteJSON(path, rep); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	a.log.Info().Str("path", path).Bool("ok", rep.Status.OK).
		Int("datasets", len(rep.Data)).
		Int("missing", len(rep.Status.MissingFiles)).
		Int("errors", len(rep.Status.Errors)).
		Msg("report written")

	if a.opts.FullFile != "" {
		full := a.AssembleFull()
		fullPath := filepath.Join(a.opts.Dir, a.opts.FullFile)
		if err := WriteJSON(fullPath, full); err != nil {
			return fmt.Errorf("writing full bundle: %w", err)
		}
		a.log.Info().Str("path", fullPath).Msg("full bundle written")
	}
	return nil
}

// Assemble builds the compact report in memory. It never fails: every input
// problem is recorded in the status block instead.
func (a *Assembler) Assemble() *model.Report {
	return a.assemble(a.datasets)
}

// AssembleFull builds the full-bundle variant, which keeps every row of the
// datasets the compact report would summarize.
func (a *Assembler) AssembleFull() *model.Report {
	full := make([]DatasetSpec, len(a.datasets))
	copy(full, a.datasets)
	for i := range full {
		if full[i].Policy == PolicySummarize {
			full[i].Policy = PolicyKeep
		}
	}
	return a.assemble(full)
}

func (a *Assembler) assemble(specs []DatasetSpec) *model.Report {
	rep := &model.Report{
		GeneratedUTC: time.Now().UTC().Format(time.RFC3339Nano),
		Schema:       Schema,
		Status: model.Status{
			OK:           true,
			MissingFiles: []string{},
			Errors:       map[string]string{},
		},
		Data: map[string]any{},
	}

	for _, ds := range specs {
		path := filepath.Join(a.opts.Dir, ds.File)
		doc, err := loadJSON(path)
		if os.IsNotExist(err) {
			rep.Status.OK = false
			rep.Status.MissingFiles = append(rep.Status.MissingFiles, ds.File)
			a.log.Warn().Str("file", ds.File).Msg("input missing")
			continue
		}
		if err != nil {
			rep.Status.OK = false
			rep.Status.Errors[ds.File] = err.Error()
			a.log.Warn().Str("file", ds.File).Err(err).Msg("input unreadable")
			continue
		}

		rep.Data[ds.Key] = applyPolicy(ds, doc)
		a.log.Debug().Str("dataset", ds.Key).Str("policy", string(ds.Policy)).Msg("dataset loaded")
	}

	annotateTier1(rep.Data)
	return rep
}

func applyPolicy(ds DatasetSpec, doc any) any {
	switch ds.Policy {
	case PolicyStripRaw:
		return Strip(doc)
	case PolicyLatestOnly:
		return truncateLatest(doc)
	case PolicySummarize:
		return Summarize(doc, ds.TailRows)
	default:
		return doc
	}
}

// truncateLatest keeps only the newest row of a dataset meant to carry
// exactly one. Documents without a non-empty rows array pass through.
func truncateLatest(doc any) any {
	m, ok := doc.(map[string]any)
	if !ok {
		return doc
	}
	rows, ok := m["rows"].([]any)
	if !ok || len(rows) == 0 {
		return doc
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	out["rows"] = []any{rows[len(rows)-1]}
	out["count"] = 1
	return out
}

const tier1Note = "Tier-1 data is fetched at report build time (spot price, macro, funding). " +
	"It is not the authoritative hourly candle close from the primary pipeline."

// annotateTier1 cross-references the tier-1 spot price against the latest
// hourly close so consumers can see how far apart the two feeds sit. Both
// deltas are null when either side is unavailable or the close is zero.
func annotateTier1(data map[string]any) {
	t1, ok := data["tier1"].(map[string]any)
	if !ok {
		return
	}
	t1["note"] = tier1Note

	var spot, latestClose *float64
	if price, ok := t1["price"].(map[string]any); ok {
		spot = Num(price["btc_usd"])
	}
	if rows := RowsOf(data["latest"]); len(rows) > 0 {
		latestClose = rowClose(rows[len(rows)-1])
	}

	if spot != nil && latestClose != nil && *latestClose != 0 {
		delta := *spot - *latestClose
		t1["spot_vs_latest_close_usd"] = round2(delta)
		t1["spot_vs_latest_close_pct"] = round3(delta / *latestClose * 100)
	} else {
		t1["spot_vs_latest_close_usd"] = nil
		t1["spot_vs_latest_close_pct"] = nil
	}
}

func loadJSON(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// WriteJSON pretty-prints v to path, creating parent directories as needed.
func WriteJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
