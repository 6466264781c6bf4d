package tier1

import (
	"context"
	"fmt"
	"net/url"

	"btcreport/pkg/model"
)

// chartResponse mirrors the Yahoo Finance chart endpoint
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Currency           string   `json:"currency"`
		Symbol             string   `json:"symbol"`
		ExchangeName       string   `json:"exchangeName"`
		InstrumentType     string   `json:"instrumentType"`
		RegularMarketPrice *float64 `json:"regularMarketPrice"`
		PreviousClose      *float64 `json:"previousClose"`
	} `json:"meta"`
	Indicators struct {
		Quote []chartQuote `json:"quote"`
	} `json:"indicators"`
}

// chartQuote carries the close series. Yahoo pads buckets without trades
// with JSON nulls, hence the pointer elements.
type chartQuote struct {
	Close []*float64 `json:"close"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// FetchQuote fetches the latest and previous quote for a symbol from the
// Yahoo Finance chart endpoint (public, no key). The meta block is
// preferred; when it carries no price the hourly close series is scanned
// backwards for the last two non-null values.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (*model.MacroQuote, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=5d&interval=1h", c.yahooBase, url.PathEscape(symbol))

	var data chartResponse
	if _, err := c.getJSON(ctx, "yahoo", u, &data); err != nil {
		return nil, err
	}

	if data.Chart.Error != nil {
		return nil, &SourceError{Source: "yahoo", Err: fmt.Errorf("%s", data.Chart.Error.Description), Retryable: false}
	}
	if len(data.Chart.Result) == 0 {
		return nil, &SourceError{Source: "yahoo", Err: fmt.Errorf("no result for %s", symbol), Retryable: false}
	}

	r0 := data.Chart.Result[0]
	last := r0.Meta.RegularMarketPrice
	prev := r0.Meta.PreviousClose

	if last == nil {
		scanLast, scanPrev := lastCloses(r0.Indicators.Quote)
		last = scanLast
		if prev == nil {
			prev = scanPrev
		}
	}
	if last == nil {
		return nil, &SourceError{Source: "yahoo", Err: fmt.Errorf("no close for %s", symbol), Retryable: false}
	}

	return &model.MacroQuote{
		Symbol:         symbol,
		Last:           *last,
		Prev:           prev,
		Currency:       r0.Meta.Currency,
		ExchangeName:   r0.Meta.ExchangeName,
		InstrumentType: r0.Meta.InstrumentType,
		TSUTC:          utcNow(),
	}, nil
}

// lastCloses scans the close series backwards for the newest and
// second-newest non-null values.
func lastCloses(quotes []chartQuote) (last, prev *float64) {
	if len(quotes) == 0 {
		return nil, nil
	}
	closes := quotes[0].Close
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i] == nil {
			continue
		}
		if last == nil {
			last = closes[i]
			continue
		}
		prev = closes[i]
		break
	}
	return last, prev
}
