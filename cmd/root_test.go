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
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/penny-vault/import-sharia/sharia"
	"github.com/penny-vault/import-sharia/yahoo"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	t.Cleanup(viper.Reset)
	viper.Reset()
	viper.SetDefault("tickers", defaultTickers)
	viper.SetDefault("start", "2023-01-01")
	viper.SetDefault("end", "2023-12-31")
	viper.SetDefault("output_dir", ".")
	viper.SetDefault("sharia.excluded_sectors", sharia.DefaultExcludedSectors)
	viper.SetDefault("sharia.max_debt_to_assets", 0.33)
}

func TestLoadSettingsDefaults(t *testing.T) {
	resetViper(t)
	viper.Set("composite_figi", map[string]string{"sap.de": "BBG000BG7DY8"})

	s, err := loadSettings()
	require.NoError(t, err)

	assert.Equal(t, []string{"SAP.DE", "DTE.DE", "BAS.DE", "ALV.DE", "BMW.DE"}, s.Tickers)
	assert.Equal(t, "2023-01-01", s.Start.Format(dateLayout))
	assert.Equal(t, "2023-12-31", s.End.Format(dateLayout))
	assert.Equal(t, sharia.DefaultExcludedSectors, s.Rules.ExcludedSectors)
	assert.Equal(t, "0.33", s.Rules.MaxDebtToAssets.String())
	assert.Equal(t, "BBG000BG7DY8", s.CompositeFigi["SAP.DE"])
	assert.Empty(t, s.DatabaseURL)
}

func TestLoadSettingsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
	}{
		{"bad start", "start", "01/01/2023"},
		{"bad end", "end", "2023-13-01"},
		{"end before start", "end", "2022-12-31"},
		{"no tickers", "tickers", []string{" "}},
		{"ratio", "sharia.max_debt_to_assets", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			viper.Set(tt.key, tt.value)
			_, err := loadSettings()
			assert.Error(t, err)
		})
	}
}

func TestLoadSettingsListsFromEnvironment(t *testing.T) {
	resetViper(t)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	t.Setenv("TICKERS", "SAP.DE, BMW.DE,,DTE.DE")
	t.Setenv("SHARIA_EXCLUDED_SECTORS", "financial services,tobacco")

	s, err := loadSettings()
	require.NoError(t, err)
	assert.Equal(t, []string{"SAP.DE", "BMW.DE", "DTE.DE"}, s.Tickers)
	assert.Equal(t, []string{"financial services", "tobacco"}, s.Rules.ExcludedSectors)
}

func TestLoadSettingsListsFromSlices(t *testing.T) {
	resetViper(t)
	viper.Set("tickers", []string{"SAP.DE,ALV.DE", " BMW.DE "})

	s, err := loadSettings()
	require.NoError(t, err)
	assert.Equal(t, []string{"SAP.DE", "ALV.DE", "BMW.DE"}, s.Tickers)
}

func TestInitConfigExampleFile(t *testing.T) {
	resetViper(t)
	require.NoError(t, rootCmd.PersistentFlags().Set("config", filepath.Join("..", "import-sharia.example.toml")))
	t.Cleanup(func() { cfgFile = "" })

	initConfig()
	require.Equal(t, filepath.Join("..", "import-sharia.example.toml"), viper.ConfigFileUsed())

	s, err := loadSettings()
	require.NoError(t, err)

	assert.Equal(t, []string{"SAP.DE", "DTE.DE", "BAS.DE", "ALV.DE", "BMW.DE"}, s.Tickers)
	assert.Equal(t, "2023-01-01", s.Start.Format(dateLayout))
	assert.Equal(t, "2023-12-31", s.End.Format(dateLayout))
	assert.Equal(t, ".", s.OutputDir)
	assert.Equal(t, sharia.DefaultExcludedSectors, s.Rules.ExcludedSectors)
	assert.Equal(t, "0.33", s.Rules.MaxDebtToAssets.String())
	assert.Equal(t, 2, s.Yahoo.RateLimit)
	assert.Equal(t, 30*time.Second, s.Yahoo.Timeout)
	assert.Empty(t, s.ParquetFile)
	assert.Empty(t, s.DatabaseURL)
	assert.Equal(t, "BBG000BG7DY8", s.CompositeFigi["SAP.DE"])

	assert.Equal(t, "SAP.DE_2024-06-02.csv", viper.GetString("report.file"))
	assert.Equal(t, 5, viper.GetInt("report.rows"))
}

func TestRunImportCancelled(t *testing.T) {
	srv := yahooStub(t)
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &settings{
		Tickers:   []string{"SAP.DE"},
		Start:     time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		OutputDir: dir,
		Rules:     sharia.DefaultRules(),
		Yahoo:     yahoo.Config{BaseURL: srv.URL, CookieURL: srv.URL + "/consent"},
	}

	err := runImport(ctx, s)
	assert.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// yahooStub serves the crumb handshake, a technology profile for SAP.DE, a
// bank for ALV.DE and a short price history
func yahooStub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/consent", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/v1/test/getcrumb", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "crumb")
	})
	mux.HandleFunc("/v10/finance/quoteSummary/", func(w http.ResponseWriter, r *http.Request) {
		sector := "Technology"
		if strings.HasSuffix(r.URL.Path, "ALV.DE") {
			sector = "Financial Services"
		}
		fmt.Fprintf(w, `{"quoteSummary":{"result":[{"assetProfile":{"sector":%q}}],"error":null}}`, sector)
	})
	mux.HandleFunc("/v8/finance/chart/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[{
			"meta":{"currency":"EUR","exchangeName":"GER","exchangeTimezoneName":"Europe/Berlin"},
			"timestamp":[1672642800,1672729200],
			"indicators":{"quote":[{"open":[98,99.5],"high":[99.9,101],"low":[97.5,99],"close":[99,100.5],"volume":[1000000,1200000]}]}
		}],"error":null}}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRunImport(t *testing.T) {
	srv := yahooStub(t)
	dir := t.TempDir()

	s := &settings{
		Tickers:   []string{"SAP.DE", "ALV.DE"},
		Start:     time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		OutputDir: dir,
		Rules:     sharia.DefaultRules(),
		Yahoo: yahoo.Config{
			BaseURL:   srv.URL,
			CookieURL: srv.URL + "/consent",
		},
		ParquetFile: filepath.Join(dir, "quotes.parquet"),
	}

	require.NoError(t, runImport(context.Background(), s))

	quotes, err := yahoo.LoadCSV(filepath.Join(dir, yahoo.FileName("SAP.DE", time.Now())), "SAP.DE")
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, "2023-01-02", quotes[0].Date)
	assert.InDelta(t, 100.5, quotes[1].Close, 1e-9)

	_, err = os.Stat(filepath.Join(dir, yahoo.FileName("ALV.DE", time.Now())))
	assert.ErrorIs(t, err, os.ErrNotExist, "non compliant tickers are never written")

	info, err := os.Stat(s.ParquetFile)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestPrintReport(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "SAP.DE_2024-06-02.csv")
	require.NoError(t, os.WriteFile(fn, []byte("Date,Close,Volume\n2023-01-02,99,1000000\n2023-01-03,100.5,1200000\n"), 0o644))

	var buf bytes.Buffer
	require.NoError(t, printReport(&buf, fn, 5))

	out := buf.String()
	assert.Contains(t, out, "2023-01-03")
	assert.Contains(t, out, "RangeIndex: 2 entries, 0 to 1")
	assert.Contains(t, out, "99.750000")
}

func TestPrintReportMissingFile(t *testing.T) {
	var buf bytes.Buffer
	err := printReport(&buf, filepath.Join(t.TempDir(), "missing.csv"), 5)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
