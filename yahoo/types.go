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

import "github.com/shopspring/decimal"

// Eod is a single trading day for one ticker
type Eod struct {
	Date          string  `json:"date" csv:"Date" parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Ticker        string  `json:"ticker" csv:"-" parquet:"name=ticker, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Exchange      string  `json:"exchange" csv:"-" parquet:"name=exchange, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Currency      string  `json:"currency" csv:"-" parquet:"name=currency, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	CompositeFigi string  `json:"compositeFigi" csv:"-" parquet:"name=compositeFigi, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Open          float64 `json:"open" csv:"Open" parquet:"name=open, type=DOUBLE"`
	High          float64 `json:"high" csv:"High" parquet:"name=high, type=DOUBLE"`
	Low           float64 `json:"low" csv:"Low" parquet:"name=low, type=DOUBLE"`
	Close         float64 `json:"close" csv:"Close" parquet:"name=close, type=DOUBLE"`
	Volume        int64   `json:"volume" csv:"Volume" parquet:"name=volume, type=INT64, convertedtype=INT_64"`
	Dividend      float64 `json:"divCash" csv:"Dividends" parquet:"name=dividend, type=DOUBLE"`
	Split         float64 `json:"splitFactor" csv:"Stock Splits" parquet:"name=split, type=DOUBLE"`
}

// CompanyProfile holds the descriptive and balance sheet fields used to
// screen a ticker. Fields the provider does not report are left at their
// zero value.
type CompanyProfile struct {
	Ticker      string
	Name        string
	Sector      string
	Industry    string
	TotalDebt   decimal.Decimal
	TotalAssets decimal.Decimal
}
