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
package sharia

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/penny-vault/import-sharia/yahoo"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

// Provider is the subset of the yahoo client the screener needs
type Provider interface {
	History(ctx context.Context, ticker string, start, end time.Time) ([]*yahoo.Eod, error)
	Profile(ctx context.Context, ticker string) (*yahoo.CompanyProfile, error)
}

type Screener struct {
	Provider Provider
	Rules    Rules

	// Progress receives the progress bar, nil renders to stderr
	Progress io.Writer
}

func NewScreener(provider Provider, rules Rules) *Screener {
	return &Screener{
		Provider: provider,
		Rules:    rules,
	}
}

// Check fetches the company profile for ticker and evaluates the rules on it
func (s *Screener) Check(ctx context.Context, ticker string) (Decision, error) {
	profile, err := s.Provider.Profile(ctx, ticker)
	if err != nil {
		return Decision{Ticker: ticker}, err
	}
	if profile.Ticker == "" {
		profile.Ticker = ticker
	}
	return s.Rules.Evaluate(profile), nil
}

// Collect screens every ticker in order and downloads the price history of
// those that pass. The first error aborts the batch; tickers screened before
// it are not returned.
func (s *Screener) Collect(ctx context.Context, tickers []string, start, end time.Time) (map[string][]*yahoo.Eod, error) {
	compliant := make(map[string][]*yahoo.Eod)
	seen := make(map[string]bool, len(tickers))

	bar := s.progressBar(len(tickers))
	defer bar.Finish()

	for _, ticker := range tickers {
		bar.Add(1)
		if seen[ticker] {
			continue
		}
		seen[ticker] = true

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		subLog := log.With().Str("Ticker", ticker).Logger()
		decision, err := s.Check(ctx, ticker)
		if err != nil {
			subLog.Error().Err(err).Msg("compliance check failed")
			return nil, fmt.Errorf("screen %s: %w", ticker, err)
		}

		if !decision.Compliant {
			subLog.Info().Str("Sector", decision.Sector).Str("DebtToAssets", decision.DebtToAssets.StringFixed(4)).Str("Reason", string(decision.Reason)).Msg("ticker is not compliant, skipping")
			continue
		}

		quotes, err := s.Provider.History(ctx, ticker, start, end)
		if err != nil {
			subLog.Error().Err(err).Msg("could not download price history")
			return nil, fmt.Errorf("download %s: %w", ticker, err)
		}

		subLog.Info().Int("NumRecords", len(quotes)).Msg("ticker is compliant")
		compliant[ticker] = quotes
	}

	return compliant, nil
}

func (s *Screener) progressBar(n int) *progressbar.ProgressBar {
	if s.Progress == nil {
		return progressbar.Default(int64(n))
	}
	return progressbar.NewOptions64(int64(n), progressbar.OptionSetWriter(s.Progress))
}
