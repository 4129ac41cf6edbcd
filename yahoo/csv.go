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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
)

// FileName returns the name a ticker's quotes are saved under on the given day
func FileName(ticker string, now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", ticker, now.Format("2006-01-02"))
}

// SaveToCSV writes one file per ticker into dir, named after the ticker and
// the date in now. A confirmation line for every file is printed to out. The
// names of the written files are returned in ticker order. Once ctx is done no
// further files are started; files already written are left in place.
func SaveToCSV(ctx context.Context, data map[string][]*Eod, dir string, now time.Time, out io.Writer) ([]string, error) {
	tickers := make([]string, 0, len(data))
	for ticker := range data {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	written := make([]string, 0, len(tickers))
	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			log.Warn().Int("NumWritten", len(written)).Int("NumSkipped", len(tickers)-len(written)).Msg("csv export cancelled")
			return written, err
		}

		fn := filepath.Join(dir, FileName(ticker, now))
		if err := writeCSV(fn, data[ticker]); err != nil {
			log.Error().Err(err).Str("Ticker", ticker).Str("FileName", fn).Msg("could not save csv")
			return written, err
		}
		written = append(written, fn)
		fmt.Fprintf(out, "Saved data for %s to %s\n", ticker, fn)
	}

	return written, nil
}

func writeCSV(fn string, quotes []*Eod) error {
	fh, err := os.Create(fn)
	if err != nil {
		return fmt.Errorf("create %s: %w", fn, err)
	}
	defer fh.Close()

	if quotes == nil {
		quotes = []*Eod{}
	}
	if err := gocsv.MarshalFile(&quotes, fh); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}

	log.Debug().Str("FileName", fn).Int("NumRecords", len(quotes)).Msg("csv write finished")
	return fh.Close()
}

// LoadCSV reads a file produced by SaveToCSV back into quotes for ticker
func LoadCSV(fn string, ticker string) ([]*Eod, error) {
	fh, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	quotes := []*Eod{}
	if err := gocsv.UnmarshalFile(fh, &quotes); err != nil {
		return nil, fmt.Errorf("read %s: %w", fn, err)
	}
	for _, q := range quotes {
		q.Ticker = ticker
	}

	return quotes, nil
}
