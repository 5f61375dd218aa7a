package dosage

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/agrivoice/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smallTable = `
treatments:
  - pest: Aphids
    product: Neem oil
    dose_per_hectare: 2.5
    unit: l
  - pest: stem borer
    product: Cartap
    dose_per_hectare: 10
    unit: kg
`

func loadSmall(t *testing.T) *Table {
	t.Helper()
	table, err := Load(strings.NewReader(smallTable))
	require.NoError(t, err)
	return table
}

func TestCompute(t *testing.T) {
	table := loadSmall(t)

	t.Run("scales linearly", func(t *testing.T) {
		d, err := table.Compute("aphids", 4)
		require.NoError(t, err)
		assert.Equal(t, "Aphids", d.Pest)
		assert.Equal(t, "Neem oil", d.Product)
		assert.InDelta(t, 10.0, d.Quantity, 1e-9)
		assert.Equal(t, "l", d.Unit)
	})

	t.Run("fractional area", func(t *testing.T) {
		d, err := table.Compute("stem borer", 0.25)
		require.NoError(t, err)
		assert.InDelta(t, 2.5, d.Quantity, 1e-9)
	})

	t.Run("pest lookup ignores case and spacing", func(t *testing.T) {
		_, err := table.Compute("  STEM   Borer ", 1)
		assert.NoError(t, err)
	})

	t.Run("unknown pest", func(t *testing.T) {
		_, err := table.Compute("locust", 1)
		assert.ErrorIs(t, err, core.ErrUnknownPest)
	})

	for _, area := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		t.Run("invalid area", func(t *testing.T) {
			_, err := table.Compute("aphids", area)
			assert.ErrorIs(t, err, core.ErrInvalidArea)
		})
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed yaml", "treatments: [\n"},
		{"empty table", "treatments: []\n"},
		{"missing pest", "treatments:\n  - product: X\n    dose_per_hectare: 1\n    unit: g\n"},
		{"missing product", "treatments:\n  - pest: a\n    dose_per_hectare: 1\n    unit: g\n"},
		{"zero dose", "treatments:\n  - pest: a\n    product: X\n    dose_per_hectare: 0\n    unit: g\n"},
		{"duplicate pest", "treatments:\n  - pest: a\n    product: X\n    dose_per_hectare: 1\n    unit: g\n  - pest: A\n    product: Y\n    dose_per_hectare: 2\n    unit: g\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, core.ErrDataLoad)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "treatments.yaml")
	require.NoError(t, os.WriteFile(path, []byte(smallTable), 0644))

	table, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Aphids", "stem borer"}, table.Pests())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, core.ErrDataLoad)
}

func TestDefault(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)
	assert.Contains(t, table.Pests(), "aphids")

	d, err := table.Compute("Aphids", 2)
	require.NoError(t, err)
	assert.InDelta(t, 250.0, d.Quantity, 1e-9)
}

func TestDosageLine(t *testing.T) {
	d := &Dosage{Pest: "aphids", Product: "Neem oil", Area: 1.5, Quantity: 3.75, Unit: "l"}

	assert.Equal(t, "Apply 3.75 l of Neem oil for aphids on 1.5 hectares.", d.Line(core.LocaleEnglish))
	assert.Equal(t, "aphids నివారణకు 1.5 హెక్టార్లకు 3.75 l Neem oil వాడండి.", d.Line(core.LocaleTelugu))
	assert.Equal(t, "aphids के लिए 1.5 हेक्टेयर में 3.75 l Neem oil का प्रयोग करें।", d.Line(core.LocaleHindi))

	d.Quantity = 1.0 / 3.0
	assert.Contains(t, d.Line(core.LocaleEnglish), "Apply 0.33 l")
}
