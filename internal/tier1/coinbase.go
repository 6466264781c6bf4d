package tier1

import (
	"context"
	"fmt"

	"btcreport/internal/report"
	"btcreport/pkg/model"
)

// coinbaseSpotResponse mirrors the Coinbase v2 spot price endpoint
type coinbaseSpotResponse struct {
	Data struct {
		Amount   string `json:"amount"`
		Base     string `json:"base"`
		Currency string `json:"currency"`
	} `json:"data"`
}

// FetchSpot fetches the BTC-USD spot price from Coinbase (public, no key).
// The full upstream payload rides along under Raw until the report build
// strips it.
func (c *Client) FetchSpot(ctx context.Context) (*model.SpotPrice, error) {
	url := c.coinbaseBase + "/v2/prices/BTC-USD/spot"

	var data coinbaseSpotResponse
	raw, err := c.getJSON(ctx, "coinbase", url, &data)
	if err != nil {
		return nil, err
	}

	amount := report.NumString(data.Data.Amount)
	if amount == nil {
		return nil, &SourceError{Source: "coinbase", Err: fmt.Errorf("bad amount %q", data.Data.Amount), Retryable: false}
	}

	return &model.SpotPrice{
		Source: "coinbase_spot",
		BTCUSD: *amount,
		TSUTC:  utcNow(),
		Raw:    raw,
	}, nil
}
