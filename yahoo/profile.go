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
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const profileModules = "assetProfile,financialData,defaultKeyStatistics,price"

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile *struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"assetProfile"`
			FinancialData *struct {
				TotalDebt rawValue `json:"totalDebt"`
			} `json:"financialData"`
			DefaultKeyStatistics *struct {
				TotalAssets rawValue `json:"totalAssets"`
			} `json:"defaultKeyStatistics"`
			Price *struct {
				LongName  string `json:"longName"`
				ShortName string `json:"shortName"`
			} `json:"price"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"quoteSummary"`
}

// rawValue is the {"raw": 1, "fmt": "1"} wrapper used for numbers; empty
// objects stand for values that are not reported
type rawValue struct {
	Raw decimal.NullDecimal `json:"raw"`
}

func (v rawValue) amount() decimal.Decimal {
	if !v.Raw.Valid {
		return decimal.Zero
	}
	return v.Raw.Decimal
}

// Profile fetches sector and balance sheet information for ticker.
func (c *Client) Profile(ctx context.Context, ticker string) (*CompanyProfile, error) {
	subLog := log.With().Str("Ticker", ticker).Logger()

	crumb, err := c.crumb(ctx)
	if err != nil {
		return nil, fmt.Errorf("profile for %s: %w", ticker, err)
	}

	path := fmt.Sprintf("/v10/finance/quoteSummary/%s", url.PathEscape(ticker))
	resp, err := c.get(ctx, path, map[string]string{
		"modules": profileModules,
		"crumb":   crumb,
	})
	if err != nil {
		return nil, fmt.Errorf("profile for %s: %w", ticker, err)
	}

	var summary quoteSummaryResponse
	// decoded here rather than by resty so a bad body is not reported as a
	// transport error
	if err := json.Unmarshal(resp.Body(), &summary); err != nil {
		subLog.Error().Err(err).Int("StatusCode", resp.StatusCode()).Msg("could not decode quoteSummary response")
		return nil, fmt.Errorf("%w: %s: %s", ErrMalformedMetadata, ticker, err)
	}

	if summary.QuoteSummary.Error != nil {
		if summary.QuoteSummary.Error.Code == "Not Found" || resp.StatusCode() == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, ticker)
		}
		return nil, fmt.Errorf("%w: %s: %s", ErrProvider, ticker, summary.QuoteSummary.Error.Description)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("%w: %s: status %d", ErrProvider, ticker, resp.StatusCode())
	}

	if len(summary.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%w: %s: empty result", ErrMalformedMetadata, ticker)
	}

	result := summary.QuoteSummary.Result[0]
	profile := &CompanyProfile{
		Ticker:      ticker,
		TotalDebt:   decimal.Zero,
		TotalAssets: decimal.Zero,
	}
	if result.AssetProfile != nil {
		profile.Sector = result.AssetProfile.Sector
		profile.Industry = result.AssetProfile.Industry
	}
	if result.FinancialData != nil {
		profile.TotalDebt = result.FinancialData.TotalDebt.amount()
	}
	if result.DefaultKeyStatistics != nil {
		profile.TotalAssets = result.DefaultKeyStatistics.TotalAssets.amount()
	}
	if result.Price != nil {
		profile.Name = result.Price.LongName
		if profile.Name == "" {
			profile.Name = result.Price.ShortName
		}
	}

	subLog.Debug().
		Str("Sector", profile.Sector).
		Str("TotalDebt", profile.TotalDebt.String()).
		Str("TotalAssets", profile.TotalAssets.String()).
		Msg("fetched company profile")

	return profile, nil
}
