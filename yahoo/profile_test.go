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
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// profileServer mimics the cookie / crumb handshake and answers quoteSummary
// requests with body and status
func profileServer(t *testing.T, status int, body string) (*Client, *int) {
	t.Helper()
	crumbRequests := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/consent", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "A3", Value: "session", Path: "/"})
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/v1/test/getcrumb", func(w http.ResponseWriter, r *http.Request) {
		crumbRequests++
		cookie, err := r.Cookie("A3")
		if err != nil || cookie.Value != "session" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, "crumb-123")
	})
	mux.HandleFunc("/v10/finance/quoteSummary/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("crumb") != "crumb-123" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"finance":{"error":{"code":"Unauthorized","description":"Invalid Crumb"}}}`)
			return
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	})

	return newTestClient(t, mux), &crumbRequests
}

func TestProfile(t *testing.T) {
	client, crumbRequests := profileServer(t, http.StatusOK, `{"quoteSummary":{"result":[{
		"assetProfile":{"sector":"Technology","industry":"Software-Application"},
		"financialData":{"totalDebt":{"raw":9000000000,"fmt":"9B"}},
		"defaultKeyStatistics":{"totalAssets":{}},
		"price":{"longName":"SAP SE","shortName":"SAP"}
	}],"error":null}}`)

	profile, err := client.Profile(context.Background(), "SAP.DE")
	require.NoError(t, err)

	assert.Equal(t, "SAP.DE", profile.Ticker)
	assert.Equal(t, "SAP SE", profile.Name)
	assert.Equal(t, "Technology", profile.Sector)
	assert.True(t, profile.TotalDebt.Equal(decimal.NewFromInt(9000000000)))
	assert.True(t, profile.TotalAssets.IsZero(), "empty raw value is zero")

	_, err = client.Profile(context.Background(), "SAP.DE")
	require.NoError(t, err)
	assert.Equal(t, 1, *crumbRequests, "crumb is negotiated once per client")
}

func TestProfileMissingModules(t *testing.T) {
	client, _ := profileServer(t, http.StatusOK, `{"quoteSummary":{"result":[{}],"error":null}}`)

	profile, err := client.Profile(context.Background(), "DTE.DE")
	require.NoError(t, err)
	assert.Empty(t, profile.Sector)
	assert.True(t, profile.TotalDebt.IsZero())
	assert.True(t, profile.TotalAssets.IsZero())
}

func TestProfileErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unknown symbol", http.StatusNotFound, `{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"Quote not found for symbol: NOPE.DE"}}}`, ErrUnknownSymbol},
		{"empty result", http.StatusOK, `{"quoteSummary":{"result":[],"error":null}}`, ErrMalformedMetadata},
		{"not json", http.StatusOK, `{"quoteSummary":`, ErrMalformedMetadata},
		{"server error", http.StatusBadGateway, ``, ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := profileServer(t, tt.status, tt.body)
			_, err := client.Profile(context.Background(), "NOPE.DE")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
