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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

var ErrNoHeader = errors.New("csv file has no header row")

type Kind int

const (
	KindObject Kind = iota
	KindInt64
	KindFloat64
)

func (k Kind) String() string {
	switch k {
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	default:
		return "object"
	}
}

// Column is one typed column of a Frame. Numbers is only populated for
// numeric kinds and holds NaN for null cells.
type Column struct {
	Name    string
	Kind    Kind
	Raw     []string
	Null    []bool
	Numbers []float64
}

// Frame is a csv file loaded column by column with a 0 based row index
type Frame struct {
	Columns []*Column
	Rows    int
}

// Load reads the csv file at fn. The first row is the header, empty cells
// are treated as nulls.
func Load(fn string) (*Frame, error) {
	fh, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	frame, err := Read(fh)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", fn, err)
	}
	return frame, nil
}

func Read(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoHeader
	}

	header := records[0]
	body := records[1:]
	frame := &Frame{
		Columns: make([]*Column, len(header)),
		Rows:    len(body),
	}

	for idx, name := range header {
		col := &Column{
			Name: strings.TrimSpace(name),
			Raw:  make([]string, len(body)),
			Null: make([]bool, len(body)),
		}
		for row, record := range body {
			col.Raw[row] = record[idx]
			col.Null[row] = strings.TrimSpace(record[idx]) == ""
		}
		col.infer()
		frame.Columns[idx] = col
	}

	return frame, nil
}

func (c *Column) infer() {
	if len(c.Raw) == 0 {
		c.Kind = KindObject
		return
	}

	isInt, isFloat, hasNull := true, true, false
	numbers := make([]float64, len(c.Raw))

	for idx, raw := range c.Raw {
		if c.Null[idx] {
			hasNull = true
			numbers[idx] = math.NaN()
			continue
		}
		raw = strings.TrimSpace(raw)
		if isInt {
			if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
				isInt = false
			}
		}
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			isFloat = false
			break
		}
		numbers[idx] = val
	}

	switch {
	case !isFloat:
		c.Kind = KindObject
		return
	case isInt && !hasNull:
		c.Kind = KindInt64
	default:
		// integers with gaps and all-null columns are widened to float64
		c.Kind = KindFloat64
	}
	c.Numbers = numbers
}

func (c *Column) Numeric() bool {
	return c.Kind == KindInt64 || c.Kind == KindFloat64
}

func (c *Column) NonNull() int {
	cnt := 0
	for _, null := range c.Null {
		if !null {
			cnt++
		}
	}
	return cnt
}

// Values returns the non-null numbers of a numeric column
func (c *Column) Values() []float64 {
	vals := make([]float64, 0, len(c.Numbers))
	for idx, val := range c.Numbers {
		if !c.Null[idx] {
			vals = append(vals, val)
		}
	}
	return vals
}

func (f *Frame) Column(name string) *Column {
	for _, col := range f.Columns {
		if col.Name == name {
			return col
		}
	}
	return nil
}
