// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package dataset reads the government scheme reference table.
package dataset

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/poiesic/agrivoice/core"
)

// Column headers of the scheme table.
const (
	ColumnName        = "Scheme Name"
	ColumnDescription = "Description"
	ColumnEligibility = "Eligibility"
	ColumnBenefits    = "Benefits"
)

// DefaultSource names the embedded table in logs and manifests.
const DefaultSource = "embedded:gov_schemes.csv"

//go:embed data/gov_schemes.csv
var defaultSchemes []byte

var requiredColumns = []string{ColumnName, ColumnDescription, ColumnEligibility, ColumnBenefits}

// LoadSchemes parses a CSV table with a header row. Columns are located by
// header name, so their order does not matter and extra columns are ignored.
// Empty cells are kept as empty strings.
func LoadSchemes(r io.Reader) ([]core.SchemeRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: scheme table is empty", core.ErrDataLoad)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", core.ErrDataLoad, err)
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var rows []core.SchemeRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrDataLoad, err)
		}
		if isBlank(record) {
			continue
		}
		rows = append(rows, core.SchemeRow{
			Name:        cell(record, index[ColumnName]),
			Description: cell(record, index[ColumnDescription]),
			Eligibility: cell(record, index[ColumnEligibility]),
			Benefits:    cell(record, index[ColumnBenefits]),
		})
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: scheme table has no data rows", core.ErrDataLoad)
	}
	return rows, nil
}

// LoadSchemesFile parses the CSV file at path. An empty path loads the
// embedded default table.
func LoadSchemesFile(path string) ([]core.SchemeRow, error) {
	if path == "" {
		return DefaultSchemes()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrDataLoad, err)
	}
	defer f.Close()
	return LoadSchemes(f)
}

// DefaultSchemes returns the rows of the table compiled into the binary.
func DefaultSchemes() ([]core.SchemeRow, error) {
	return LoadSchemes(bytes.NewReader(defaultSchemes))
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(requiredColumns))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF"))
		for _, want := range requiredColumns {
			if strings.EqualFold(name, want) {
				index[want] = i
			}
		}
	}
	var missing []string
	for _, want := range requiredColumns {
		if _, ok := index[want]; !ok {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", core.ErrDataLoad, strings.Join(missing, ", "))
	}
	return index, nil
}

// cell returns the trimmed value at i, or "" for short rows.
func cell(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
