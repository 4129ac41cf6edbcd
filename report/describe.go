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
package report

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds the descriptive statistics of one numeric column
type Summary struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Q50    float64
	Q75    float64
	Max    float64
}

// Summaries describes every numeric column in column order. Statistics of
// columns without values are NaN, the standard deviation uses n-1.
func (f *Frame) Summaries() []Summary {
	summaries := make([]Summary, 0, len(f.Columns))
	for _, col := range f.Columns {
		if !col.Numeric() {
			continue
		}
		summaries = append(summaries, summarize(col.Name, col.Values()))
	}
	return summaries
}

func summarize(name string, vals []float64) Summary {
	nan := math.NaN()
	s := Summary{
		Column: name,
		Count:  len(vals),
		Mean:   nan,
		Std:    nan,
		Min:    nan,
		Q25:    nan,
		Q50:    nan,
		Q75:    nan,
		Max:    nan,
	}
	if len(vals) == 0 {
		return s
	}

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	s.Mean = stat.Mean(sorted, nil)
	if len(sorted) > 1 {
		s.Std = stat.StdDev(sorted, nil)
	}
	s.Min = floats.Min(sorted)
	s.Max = floats.Max(sorted)
	s.Q25 = Quantile(sorted, 0.25)
	s.Q50 = Quantile(sorted, 0.50)
	s.Q75 = Quantile(sorted, 0.75)

	return s
}

// Quantile returns the p-quantile of sorted using linear interpolation
// between the closest ranks, h = (n-1)p.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 || p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	h := float64(n-1) * p
	lo := math.Floor(h)
	frac := h - lo
	idx := int(lo)
	if idx+1 >= n {
		return sorted[n-1]
	}
	return sorted[idx] + frac*(sorted[idx+1]-sorted[idx])
}
