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
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"text/tabwriter"
)

const indexOverhead = 128

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
}

func row(tw io.Writer, cells ...string) {
	fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
}

// Head prints the first n rows with their index
func (f *Frame) Head(w io.Writer, n int) error {
	if n > f.Rows {
		n = f.Rows
	}
	if n < 0 {
		n = 0
	}

	tw := newTable(w)
	header := make([]string, 0, len(f.Columns)+1)
	header = append(header, "")
	for _, col := range f.Columns {
		header = append(header, col.Name)
	}
	row(tw, header...)

	for idx := 0; idx < n; idx++ {
		cells := make([]string, 0, len(f.Columns)+1)
		cells = append(cells, fmt.Sprintf("%d", idx))
		for _, col := range f.Columns {
			if col.Null[idx] {
				cells = append(cells, "NaN")
				continue
			}
			cells = append(cells, strings.TrimSpace(col.Raw[idx]))
		}
		row(tw, cells...)
	}

	return tw.Flush()
}

// Info prints the index range, every column with its non-null count and
// kind, and an estimate of the memory the frame occupies.
func (f *Frame) Info(w io.Writer) error {
	if f.Rows == 0 {
		fmt.Fprintln(w, "RangeIndex: 0 entries")
	} else {
		fmt.Fprintf(w, "RangeIndex: %d entries, 0 to %d\n", f.Rows, f.Rows-1)
	}
	fmt.Fprintf(w, "Data columns (total %d columns):\n", len(f.Columns))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, " #\tColumn\tNon-Null Count\tDtype\t")
	fmt.Fprintln(tw, "---\t------\t--------------\t-----\t")
	kinds := make(map[string]int)
	for idx, col := range f.Columns {
		fmt.Fprintf(tw, " %d\t%s\t%d non-null\t%s\t\n", idx, col.Name, col.NonNull(), col.Kind)
		kinds[col.Kind.String()]++
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s(%d)", name, kinds[name]))
	}
	fmt.Fprintf(w, "dtypes: %s\n", strings.Join(parts, ", "))
	fmt.Fprintf(w, "memory usage: %s\n", memoryUsage(f.MemoryUsage()))

	return nil
}

// MemoryUsage estimates bytes used by the frame, counting 8 bytes per cell
// plus a fixed overhead for the index.
func (f *Frame) MemoryUsage() int {
	return f.Rows*len(f.Columns)*8 + indexOverhead
}

func memoryUsage(bytes int) string {
	units := []string{"bytes", "KB", "MB", "GB"}
	size := float64(bytes)
	for _, unit := range units[:len(units)-1] {
		if size < 1024 {
			if unit == "bytes" {
				return fmt.Sprintf("%d+ %s", bytes, unit)
			}
			return fmt.Sprintf("%.1f+ %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.1f+ %s", size, units[len(units)-1])
}

// Describe prints count, mean, std, min, quartiles and max for every
// numeric column.
func (f *Frame) Describe(w io.Writer) error {
	summaries := f.Summaries()
	if len(summaries) == 0 {
		fmt.Fprintln(w, "no numeric columns to describe")
		return nil
	}

	tw := newTable(w)
	header := []string{""}
	for _, s := range summaries {
		header = append(header, s.Column)
	}
	row(tw, header...)

	stats := []struct {
		label string
		value func(Summary) float64
	}{
		{"count", func(s Summary) float64 { return float64(s.Count) }},
		{"mean", func(s Summary) float64 { return s.Mean }},
		{"std", func(s Summary) float64 { return s.Std }},
		{"min", func(s Summary) float64 { return s.Min }},
		{"25%", func(s Summary) float64 { return s.Q25 }},
		{"50%", func(s Summary) float64 { return s.Q50 }},
		{"75%", func(s Summary) float64 { return s.Q75 }},
		{"max", func(s Summary) float64 { return s.Max }},
	}
	for _, st := range stats {
		cells := []string{st.label}
		for _, s := range summaries {
			cells = append(cells, formatFloat(st.value(s)))
		}
		row(tw, cells...)
	}

	return tw.Flush()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.6f", v)
}
