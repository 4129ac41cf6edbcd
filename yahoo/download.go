/*
Copyright 2024

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"chart"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Currency             string `json:"currency"`
		Symbol               string `json:"symbol"`
		ExchangeName         string `json:"exchangeName"`
		ExchangeTimezoneName string `json:"exchangeTimezoneName"`
	} `json:"meta"`
	Timestamp []int64 `json:"timestamp"`
	Events    struct {
		Dividends map[string]struct {
			Amount float64 `json:"amount"`
			Date   int64   `json:"date"`
		} `json:"dividends"`
		Splits map[string]struct {
			Date        int64   `json:"date"`
			Numerator   float64 `json:"numerator"`
			Denominator float64 `json:"denominator"`
		} `json:"splits"`
	} `json:"events"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// History downloads daily bars for ticker between start and end. The
// provider treats end as exclusive. A ticker the provider has no data for
// yields an empty slice and no error.
func (c *Client) History(ctx context.Context, ticker string, start, end time.Time) ([]*Eod, error) {
	subLog := log.With().Str("Ticker", ticker).Logger()

	params := map[string]string{
		"period1":  strconv.FormatInt(midnight(start).Unix(), 10),
		"period2":  strconv.FormatInt(midnight(end).Unix(), 10),
		"interval": "1d",
		"events":   "div,splits",
	}
	path := fmt.Sprintf("/v8/finance/chart/%s", url.PathEscape(ticker))

	subLog.Debug().Str("Path", path).Interface("Params", params).Msg("requesting price history")
	resp, err := c.get(ctx, path, params)
	if err != nil {
		return nil, fmt.Errorf("history for %s: %w", ticker, err)
	}

	var chart chartResponse
	// decoded here rather than by resty so a bad body is not reported as a
	// transport error
	if err := json.Unmarshal(resp.Body(), &chart); err != nil {
		subLog.Error().Err(err).Int("StatusCode", resp.StatusCode()).Msg("could not decode chart response")
		return nil, fmt.Errorf("%w: %s: %s", ErrMalformedHistory, ticker, err)
	}

	if chart.Chart.Error != nil {
		if chart.Chart.Error.Code == "Not Found" {
			subLog.Warn().Str("Description", chart.Chart.Error.Description).Msg("no price data found")
			return []*Eod{}, nil
		}
		return nil, fmt.Errorf("%w: %s: %s", ErrProvider, ticker, chart.Chart.Error.Description)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("%w: %s: status %d", ErrProvider, ticker, resp.StatusCode())
	}

	if len(chart.Chart.Result) == 0 {
		return []*Eod{}, nil
	}

	quotes, err := chart.Chart.Result[0].toEod(ticker)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrMalformedHistory, ticker, err)
	}

	subLog.Info().Int("NumRecords", len(quotes)).Msg("downloaded price history")
	return quotes, nil
}

func (r *chartResult) toEod(ticker string) ([]*Eod, error) {
	quotes := []*Eod{}
	if len(r.Timestamp) == 0 {
		return quotes, nil
	}
	if len(r.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%d timestamps but no quote indicators", len(r.Timestamp))
	}

	quote := r.Indicators.Quote[0]
	n := len(r.Timestamp)
	if len(quote.Open) != n || len(quote.High) != n || len(quote.Low) != n || len(quote.Close) != n || len(quote.Volume) != n {
		return nil, fmt.Errorf("indicator lengths do not match %d timestamps", n)
	}

	loc := exchangeLocation(r.Meta.ExchangeTimezoneName)
	day := func(ts int64) string {
		return time.Unix(ts, 0).In(loc).Format("2006-01-02")
	}

	dividends := make(map[string]float64, len(r.Events.Dividends))
	for _, div := range r.Events.Dividends {
		dividends[day(div.Date)] += div.Amount
	}

	splits := make(map[string]float64, len(r.Events.Splits))
	for _, split := range r.Events.Splits {
		if split.Denominator != 0 {
			splits[day(split.Date)] = split.Numerator / split.Denominator
		}
	}

	for idx, ts := range r.Timestamp {
		if quote.Open[idx] == nil && quote.High[idx] == nil && quote.Low[idx] == nil && quote.Close[idx] == nil {
			// holidays and half-filled bars
			continue
		}

		date := day(ts)
		quotes = append(quotes, &Eod{
			Date:     date,
			Ticker:   ticker,
			Exchange: r.Meta.ExchangeName,
			Currency: r.Meta.Currency,
			Open:     value(quote.Open[idx]),
			High:     value(quote.High[idx]),
			Low:      value(quote.Low[idx]),
			Close:    value(quote.Close[idx]),
			Volume:   int64(value(quote.Volume[idx])),
			Dividend: dividends[date],
			Split:    splits[date],
		})
	}

	sort.SliceStable(quotes, func(i, j int) bool { return quotes[i].Date < quotes[j].Date })
	return quotes, nil
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func exchangeLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn().Err(err).Str("Timezone", name).Msg("unknown exchange timezone, using UTC")
		return time.UTC
	}
	return loc
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
