package tier1

import (
	"context"
	"fmt"
	"strconv"

	"btcreport/internal/report"
	"btcreport/pkg/model"
)

const okxSwapInstrument = "BTC-USDT-SWAP"

// fundingResponse mirrors the OKX v5 public funding-rate endpoint.
// OKX delivers every numeric field as a string.
type fundingResponse struct {
	Code string `json:"code"`
	Data []struct {
		InstID          string `json:"instId"`
		FundingRate     string `json:"fundingRate"`
		NextFundingRate string `json:"nextFundingRate"`
		NextFundingTime string `json:"nextFundingTime"`
		TS              string `json:"ts"`
	} `json:"data"`
}

// FetchFunding fetches the current perpetual funding rate for the BTC swap
// from OKX (public, no key).
func (c *Client) FetchFunding(ctx context.Context) (*model.FundingRate, error) {
	url := fmt.Sprintf("%s/api/v5/public/funding-rate?instId=%s", c.okxBase, okxSwapInstrument)

	var data fundingResponse
	raw, err := c.getJSON(ctx, "okx", url, &data)
	if err != nil {
		return nil, err
	}
	if len(data.Data) == 0 {
		return nil, &SourceError{Source: "okx", Err: fmt.Errorf("empty data"), Retryable: false}
	}

	d0 := data.Data[0]
	return &model.FundingRate{
		Source:            "okx_swap",
		Symbol:            okxSwapInstrument,
		FundingRate:       report.NumString(d0.FundingRate),
		NextFundingRate:   report.NumString(d0.NextFundingRate),
		TSExchangeMS:      millis(d0.TS),
		NextFundingTimeMS: millis(d0.NextFundingTime),
		TSUTC:             utcNow(),
		Raw:               raw,
	}, nil
}

// millis parses an upstream millisecond timestamp string, nil when absent
// or malformed.
func millis(s string) *int64 {
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
