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

// Package dosage scales per-hectare pest treatment doses to a field area.
package dosage

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/poiesic/agrivoice/core"
	"gopkg.in/yaml.v3"
)

//go:embed data/treatments.yaml
var defaultTreatments []byte

// Treatment is one row of the lookup table.
type Treatment struct {
	Pest           string  `yaml:"pest"`
	Product        string  `yaml:"product"`
	DosePerHectare float64 `yaml:"dose_per_hectare"`
	Unit           string  `yaml:"unit"`
}

type tableFile struct {
	Treatments []Treatment `yaml:"treatments"`
}

// Dosage is a treatment scaled to an area.
type Dosage struct {
	Pest     string
	Product  string
	Area     float64 // hectares
	Quantity float64 // DosePerHectare * Area
	Unit     string
}

// Table is an immutable pest lookup keyed case-insensitively.
type Table struct {
	treatments map[string]Treatment
}

// Load parses a YAML treatment table.
func Load(r io.Reader) (*Table, error) {
	var file tableFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: treatment table: %w", core.ErrDataLoad, err)
	}
	if len(file.Treatments) == 0 {
		return nil, fmt.Errorf("%w: treatment table is empty", core.ErrDataLoad)
	}

	t := &Table{treatments: make(map[string]Treatment, len(file.Treatments))}
	for i, tr := range file.Treatments {
		key := normalize(tr.Pest)
		switch {
		case key == "":
			return nil, fmt.Errorf("%w: treatment %d has no pest", core.ErrDataLoad, i)
		case strings.TrimSpace(tr.Product) == "":
			return nil, fmt.Errorf("%w: treatment %q has no product", core.ErrDataLoad, tr.Pest)
		case !(tr.DosePerHectare > 0):
			return nil, fmt.Errorf("%w: treatment %q has invalid dose %g", core.ErrDataLoad, tr.Pest, tr.DosePerHectare)
		}
		if _, dup := t.treatments[key]; dup {
			return nil, fmt.Errorf("%w: duplicate treatment %q", core.ErrDataLoad, tr.Pest)
		}
		t.treatments[key] = tr
	}
	return t, nil
}

// LoadFile parses the table at path. An empty path loads the embedded table.
func LoadFile(path string) (*Table, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrDataLoad, err)
	}
	defer f.Close()
	return Load(f)
}

// Default returns the table compiled into the binary.
func Default() (*Table, error) {
	return Load(bytes.NewReader(defaultTreatments))
}

// Compute scales the treatment for pest to area hectares.
func (t *Table) Compute(pest string, area float64) (*Dosage, error) {
	if math.IsNaN(area) || math.IsInf(area, 0) || area <= 0 {
		return nil, fmt.Errorf("%w: got %g", core.ErrInvalidArea, area)
	}
	tr, ok := t.treatments[normalize(pest)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownPest, pest)
	}
	return &Dosage{
		Pest:     tr.Pest,
		Product:  tr.Product,
		Area:     area,
		Quantity: tr.DosePerHectare * area,
		Unit:     tr.Unit,
	}, nil
}

// Pests lists the known pests in alphabetical order.
func (t *Table) Pests() []string {
	pests := make([]string, 0, len(t.treatments))
	for _, tr := range t.treatments {
		pests = append(pests, tr.Pest)
	}
	sort.Strings(pests)
	return pests
}

func normalize(pest string) string {
	return strings.Join(strings.Fields(strings.ToLower(pest)), " ")
}

// Templates take quantity, unit, product, pest and area in that order.
var lineTemplates = core.LocalizedText{
	core.LocaleEnglish: "Apply %[1]s %[2]s of %[3]s for %[4]s on %[5]s hectares.",
	core.LocaleTelugu:  "%[4]s నివారణకు %[5]s హెక్టార్లకు %[1]s %[2]s %[3]s వాడండి.",
	core.LocaleHindi:   "%[4]s के लिए %[5]s हेक्टेयर में %[1]s %[2]s %[3]s का प्रयोग करें।",
}

// Line renders the dosage instruction in the given locale.
func (d *Dosage) Line(locale core.Locale) string {
	return fmt.Sprintf(lineTemplates.For(locale),
		formatAmount(d.Quantity), d.Unit, d.Product, d.Pest, formatAmount(d.Area))
}

// formatAmount rounds to two decimals and drops trailing zeros.
func formatAmount(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
