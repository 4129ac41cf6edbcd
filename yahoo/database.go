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

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog/log"
)

const source = "finance.yahoo.com"

const upsertEod = `INSERT INTO eod (
	"ticker",
	"composite_figi",
	"event_date",
	"open",
	"high",
	"low",
	"close",
	"volume",
	"dividend",
	"split_factor",
	"source"
) VALUES (
	$1,
	$2,
	$3,
	$4,
	$5,
	$6,
	$7,
	$8,
	$9,
	$10,
	$11
) ON CONFLICT ON CONSTRAINT eod_pkey
DO UPDATE SET
	open = EXCLUDED.open,
	high = EXCLUDED.high,
	low = EXCLUDED.low,
	close = EXCLUDED.close,
	volume = EXCLUDED.volume,
	dividend = EXCLUDED.dividend,
	split_factor = EXCLUDED.split_factor,
	source = EXCLUDED.source;`

// SaveToDatabase upserts quotes into the eod table in a single transaction.
// Quotes without a composite figi are skipped since they cannot satisfy the
// primary key.
func SaveToDatabase(ctx context.Context, quotes []*Eod, dsn string) error {
	log.Info().Int("NumRecords", len(quotes)).Msg("saving to database")
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		log.Error().Err(err).Msg("could not connect to database")
		return err
	}
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		log.Error().Err(err).Msg("could not begin transaction")
		return err
	}

	for _, quote := range quotes {
		if quote.CompositeFigi == "" {
			log.Warn().Str("Ticker", quote.Ticker).Str("EventDate", quote.Date).Msg("skipping quote without composite figi")
			continue
		}

		if _, err := tx.Exec(ctx, upsertEod,
			quote.Ticker, quote.CompositeFigi, quote.Date,
			quote.Open, quote.High, quote.Low, quote.Close, quote.Volume,
			quote.Dividend, splitFactor(quote.Split), source); err != nil {
			log.Error().Err(err).Str("Ticker", quote.Ticker).Str("EventDate", quote.Date).Msg("error saving EOD quote to database")
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("could not rollback transaction")
			}
			return fmt.Errorf("save %s %s: %w", quote.Ticker, quote.Date, err)
		}
	}

	return tx.Commit(ctx)
}

// splitFactor maps the "no split" value of 0 used in csv files to the
// neutral factor stored in the database
func splitFactor(split float64) float64 {
	if split == 0 {
		return 1
	}
	return split
}
