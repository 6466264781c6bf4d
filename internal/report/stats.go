package report

import "btcreport/pkg/model"

// Stats reduces a row sequence to its summary statistics and label tally.
//
// Summary.Count and LabelCounts.Total always reflect the full input length.
// When no close value coerces at all, every other summary field stays nil.
// Once at least one does, high, low, and volume are coerced independently
// of close, so a row missing one field still feeds the others.
func Stats(rows []Row) (model.Summary, model.LabelCounts) {
	sum := model.Summary{Count: len(rows)}
	lc := model.LabelCounts{Total: len(rows)}

	for _, r := range rows {
		switch rowLabel(r) {
		case LabelBullish:
			lc.Bullish++
		case LabelBearish:
			lc.Bearish++
		default:
			lc.Neutral++
		}
	}

	for _, r := range rows {
		c := rowClose(r)
		if c == nil {
			continue
		}
		if sum.CloseFirst == nil {
			sum.CloseFirst = c
		}
		sum.CloseLast = c
	}

	// No rows, or nothing coerced: count and labels only.
	if sum.CloseLast == nil {
		return sum, lc
	}

	sum.FirstTimeUTC = rowTimeUTC(rows[0])
	sum.LastTimeUTC = rowTimeUTC(rows[len(rows)-1])

	for _, r := range rows {
		if h := rowHigh(r); h != nil {
			if sum.HighMax == nil || *h > *sum.HighMax {
				sum.HighMax = h
			}
		}
		if l := rowLow(r); l != nil {
			if sum.LowMin == nil || *l < *sum.LowMin {
				sum.LowMin = l
			}
		}
		if v := rowVolume(r); v != nil {
			if sum.VolumeSum == nil {
				sum.VolumeSum = new(float64)
			}
			*sum.VolumeSum += *v
		}
	}

	// Percent change only when the baseline is non-zero.
	if *sum.CloseFirst != 0 {
		pct := round2((*sum.CloseLast - *sum.CloseFirst) / *sum.CloseFirst * 100)
		sum.CloseChangePct = &pct
	}

	return sum, lc
}
