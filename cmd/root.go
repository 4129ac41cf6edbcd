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
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/penny-vault/import-sharia/sharia"
	"github.com/penny-vault/import-sharia/yahoo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const dateLayout = "2006-01-02"

var cfgFile string

var defaultTickers = []string{"SAP.DE", "DTE.DE", "BAS.DE", "ALV.DE", "BMW.DE"}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "import-sharia",
	Short: "Download end-of-day quotes of sharia compliant stocks from yahoo finance",
	Long: `Screen a list of tickers with a simple sharia compliance heuristic (sector
exclusion and debt to assets ratio), download the daily price history of the
compliant ones from yahoo finance and save one csv file per ticker.`,
	Run: func(cmd *cobra.Command, args []string) {
		settings, err := loadSettings()
		if err != nil {
			log.Fatal().Err(err).Msg("invalid configuration")
		}

		if err := runImport(cmd.Context(), settings); err != nil {
			log.Fatal().Err(err).Msg("import failed")
		}
	},
}

// settings is the import configuration resolved from flags, environment and
// config file
type settings struct {
	Tickers       []string
	Start         time.Time
	End           time.Time
	OutputDir     string
	Rules         sharia.Rules
	Yahoo         yahoo.Config
	ParquetFile   string
	DatabaseURL   string
	CompositeFigi map[string]string
}

func loadSettings() (*settings, error) {
	start, err := time.Parse(dateLayout, viper.GetString("start"))
	if err != nil {
		return nil, fmt.Errorf("start date: %w", err)
	}
	end, err := time.Parse(dateLayout, viper.GetString("end"))
	if err != nil {
		return nil, fmt.Errorf("end date: %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s is before start date %s", end.Format(dateLayout), start.Format(dateLayout))
	}

	tickers := listSetting("tickers")
	if len(tickers) == 0 {
		return nil, errors.New("no tickers configured")
	}

	maxRatio := viper.GetFloat64("sharia.max_debt_to_assets")
	if maxRatio <= 0 {
		return nil, fmt.Errorf("sharia.max_debt_to_assets must be positive, got %f", maxRatio)
	}

	figiMap := viper.GetStringMapString("composite_figi")
	figi := make(map[string]string, len(figiMap))
	for k, v := range figiMap {
		// viper lower cases map keys
		figi[strings.ToUpper(k)] = v
	}

	return &settings{
		Tickers:   tickers,
		Start:     start,
		End:       end,
		OutputDir: viper.GetString("output_dir"),
		Rules: sharia.Rules{
			ExcludedSectors: listSetting("sharia.excluded_sectors"),
			MaxDebtToAssets: decimal.NewFromFloat(maxRatio),
		},
		Yahoo: yahoo.Config{
			BaseURL:   viper.GetString("yahoo.base_url"),
			CookieURL: viper.GetString("yahoo.cookie_url"),
			RateLimit: viper.GetInt("yahoo_rate_limit"),
			Timeout:   viper.GetDuration("yahoo.timeout"),
		},
		ParquetFile:   viper.GetString("parquet_file"),
		DatabaseURL:   viper.GetString("database.url"),
		CompositeFigi: figi,
	}, nil
}

// listSetting reads a list that may come from a flag, a config file array or
// a comma separated environment variable. Environment values arrive as a
// single string, which viper would otherwise split on whitespace and break
// entries like "financial services".
func listSetting(key string) []string {
	var raw []string
	if str, ok := viper.Get(key).(string); ok {
		raw = []string{str}
	} else {
		raw = viper.GetStringSlice(key)
	}

	items := make([]string, 0, len(raw))
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				items = append(items, part)
			}
		}
	}
	return items
}

func runImport(ctx context.Context, s *settings) error {
	log.Info().
		Strs("Tickers", s.Tickers).
		Str("Start", s.Start.Format(dateLayout)).
		Str("End", s.End.Format(dateLayout)).
		Msg("screening tickers")

	screener := sharia.NewScreener(yahoo.New(s.Yahoo), s.Rules)
	data, err := screener.Collect(ctx, s.Tickers, s.Start, s.End)
	if err != nil {
		return err
	}

	quotes := make([]*yahoo.Eod, 0)
	for ticker, eods := range data {
		for _, eod := range eods {
			eod.CompositeFigi = s.CompositeFigi[strings.ToUpper(ticker)]
		}
		quotes = append(quotes, eods...)
	}

	if _, err := yahoo.SaveToCSV(ctx, data, s.OutputDir, time.Now(), os.Stdout); err != nil {
		return err
	}

	if s.ParquetFile != "" {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := yahoo.SaveToParquet(quotes, s.ParquetFile); err != nil {
			return err
		}
	}

	if s.DatabaseURL != "" {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := yahoo.SaveToDatabase(ctx, quotes, s.DatabaseURL); err != nil {
			return err
		}
	}

	log.Info().Int("NumCompliant", len(data)).Int("NumRecords", len(quotes)).Msg("import finished")
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		// restore default handling so a second interrupt kills the process
		<-ctx.Done()
		stop()
	}()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	cobra.OnInitialize(initLog)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is import-sharia.toml)")
	rootCmd.PersistentFlags().Bool("log.json", false, "print logs as json to stderr")
	viper.BindPFlag("log.json", rootCmd.PersistentFlags().Lookup("log.json"))

	// Local flags
	rootCmd.Flags().StringSliceP("tickers", "t", defaultTickers, "tickers to screen and download")
	viper.BindPFlag("tickers", rootCmd.Flags().Lookup("tickers"))

	rootCmd.Flags().String("start", "2023-01-01", "first day of price history (YYYY-MM-DD)")
	viper.BindPFlag("start", rootCmd.Flags().Lookup("start"))

	rootCmd.Flags().String("end", "2023-12-31", "end of price history (YYYY-MM-DD, exclusive)")
	viper.BindPFlag("end", rootCmd.Flags().Lookup("end"))

	rootCmd.Flags().StringP("output-dir", "o", ".", "directory csv files are written to")
	viper.BindPFlag("output_dir", rootCmd.Flags().Lookup("output-dir"))

	rootCmd.Flags().StringSlice("excluded-sectors", sharia.DefaultExcludedSectors, "sectors that are never compliant")
	viper.BindPFlag("sharia.excluded_sectors", rootCmd.Flags().Lookup("excluded-sectors"))

	maxRatio, _ := sharia.DefaultMaxDebtToAssets.Float64()
	rootCmd.Flags().Float64("max-debt-to-assets", maxRatio, "maximum total debt / total assets ratio")
	viper.BindPFlag("sharia.max_debt_to_assets", rootCmd.Flags().Lookup("max-debt-to-assets"))

	rootCmd.Flags().Int("yahoo-rate-limit", 2, "yahoo rate limit (requests per second)")
	viper.BindPFlag("yahoo_rate_limit", rootCmd.Flags().Lookup("yahoo-rate-limit"))

	rootCmd.Flags().Duration("yahoo-timeout", 0, "timeout of a single yahoo request, 0 keeps the client default")
	viper.BindPFlag("yahoo.timeout", rootCmd.Flags().Lookup("yahoo-timeout"))

	rootCmd.Flags().StringP("database-url", "d", "", "DSN for database connection, empty disables the database sink")
	viper.BindPFlag("database.url", rootCmd.Flags().Lookup("database-url"))

	rootCmd.Flags().String("parquet-file", "", "save results to parquet")
	viper.BindPFlag("parquet_file", rootCmd.Flags().Lookup("parquet-file"))

	viper.SetDefault("yahoo.base_url", yahoo.DefaultBaseURL)
	viper.SetDefault("yahoo.cookie_url", yahoo.DefaultCookieURL)
}

func initLog() {
	if !viper.GetBool("log.json") {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	log.Logger = log.With().Str("RunID", uuid.New().String()).Logger()
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath("/etc/import-sharia/")
		viper.AddConfigPath(fmt.Sprintf("%s/.import-sharia", home))
		viper.AddConfigPath(".")
		viper.SetConfigType("toml")
		viper.SetConfigName("import-sharia")
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Debug().Str("ConfigFile", viper.ConfigFileUsed()).Msg("Loaded config file")
	} else {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Debug().Msg("no config file found, using defaults")
		} else {
			log.Error().Err(err).Msg("error reading config file")
		}
	}
}
