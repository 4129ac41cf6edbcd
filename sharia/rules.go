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
	"strings"

	"github.com/penny-vault/import-sharia/yahoo"
	"github.com/shopspring/decimal"
)

// Reason explains a screening decision
type Reason string

const (
	ReasonCompliant      Reason = "compliant"
	ReasonExcludedSector Reason = "excluded sector"
	ReasonDebtRatio      Reason = "debt to assets ratio above threshold"
)

// DefaultExcludedSectors and DefaultMaxDebtToAssets are illustrative
// placeholders, not a certified screening standard.
var (
	DefaultExcludedSectors = []string{"financial services", "alcohol", "gambling", "pork"}
	DefaultMaxDebtToAssets = decimal.NewFromFloat(0.33)
)

// Rules is a two rule heuristic: reject excluded sectors, then reject
// companies whose debt to assets ratio exceeds MaxDebtToAssets.
type Rules struct {
	ExcludedSectors []string
	MaxDebtToAssets decimal.Decimal
}

type Decision struct {
	Ticker       string
	Sector       string
	Compliant    bool
	Reason       Reason
	DebtToAssets decimal.Decimal
}

func DefaultRules() Rules {
	sectors := make([]string, len(DefaultExcludedSectors))
	copy(sectors, DefaultExcludedSectors)
	return Rules{
		ExcludedSectors: sectors,
		MaxDebtToAssets: DefaultMaxDebtToAssets,
	}
}

// Evaluate applies the rules to profile. When total assets are zero or
// unreported the ratio check is skipped and only the sector can reject.
func (r Rules) Evaluate(profile *yahoo.CompanyProfile) Decision {
	decision := Decision{
		Ticker:       profile.Ticker,
		Sector:       profile.Sector,
		Compliant:    true,
		Reason:       ReasonCompliant,
		DebtToAssets: decimal.Zero,
	}

	if r.excluded(profile.Sector) {
		decision.Compliant = false
		decision.Reason = ReasonExcludedSector
		return decision
	}

	if profile.TotalAssets.IsPositive() {
		decision.DebtToAssets = profile.TotalDebt.Div(profile.TotalAssets)
		if decision.DebtToAssets.GreaterThan(r.MaxDebtToAssets) {
			decision.Compliant = false
			decision.Reason = ReasonDebtRatio
		}
	}

	return decision
}

func (r Rules) excluded(sector string) bool {
	sector = strings.ToLower(strings.TrimSpace(sector))
	if sector == "" {
		return false
	}
	for _, ex := range r.ExcludedSectors {
		if strings.ToLower(strings.TrimSpace(ex)) == sector {
			return true
		}
	}
	return false
}
