package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/agrivoice/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSchemes(t *testing.T) {
	t.Run("standard table", func(t *testing.T) {
		input := "Scheme Name,Description,Eligibility,Benefits\n" +
			"A,Farmers get loan,Small farmers,\"Low interest, no collateral\"\n" +
			"B,Farmers get tools,,\n"

		rows, err := LoadSchemes(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, core.SchemeRow{
			Name:        "A",
			Description: "Farmers get loan",
			Eligibility: "Small farmers",
			Benefits:    "Low interest, no collateral",
		}, rows[0])
		assert.Equal(t, "", rows[1].Eligibility)
		assert.Equal(t, "", rows[1].Benefits)
	})

	t.Run("reordered and extra columns", func(t *testing.T) {
		input := "\uFEFFID,Benefits,scheme name,Eligibility,Description,State\n" +
			"1,Cash,PM-KISAN,All farmers,Income support,All\n"

		rows, err := LoadSchemes(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "PM-KISAN", rows[0].Name)
		assert.Equal(t, "Income support", rows[0].Description)
		assert.Equal(t, "Cash", rows[0].Benefits)
	})

	t.Run("short rows and blank lines", func(t *testing.T) {
		input := "Scheme Name,Description,Eligibility,Benefits\n" +
			"A,Farmers get loan\n" +
			",,,\n"

		rows, err := LoadSchemes(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "", rows[0].Benefits)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := LoadSchemes(strings.NewReader(""))
		assert.ErrorIs(t, err, core.ErrDataLoad)
	})

	t.Run("header only", func(t *testing.T) {
		_, err := LoadSchemes(strings.NewReader("Scheme Name,Description,Eligibility,Benefits\n"))
		assert.ErrorIs(t, err, core.ErrDataLoad)
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := LoadSchemes(strings.NewReader("Scheme Name,Description,Benefits\nA,B,C\n"))
		assert.ErrorIs(t, err, core.ErrDataLoad)
		assert.Contains(t, err.Error(), "Eligibility")
	})

	t.Run("malformed quoting", func(t *testing.T) {
		input := "Scheme Name,Description,Eligibility,Benefits\nA,\"unterminated,x,y\n"
		_, err := LoadSchemes(strings.NewReader(input))
		assert.ErrorIs(t, err, core.ErrDataLoad)
	})
}

func TestLoadSchemesFile(t *testing.T) {
	t.Run("file on disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schemes.csv")
		require.NoError(t, os.WriteFile(path, []byte("Scheme Name,Description,Eligibility,Benefits\nA,B,C,D\n"), 0644))

		rows, err := LoadSchemesFile(path)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSchemesFile(filepath.Join(t.TempDir(), "nope.csv"))
		assert.ErrorIs(t, err, core.ErrDataLoad)
	})

	t.Run("empty path uses embedded table", func(t *testing.T) {
		rows, err := LoadSchemesFile("")
		require.NoError(t, err)
		assert.NotEmpty(t, rows)
	})
}

func TestDefaultSchemes(t *testing.T) {
	rows, err := DefaultSchemes()
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	names := make(map[string]bool, len(rows))
	for _, row := range rows {
		assert.NoError(t, core.ValidateSchemeRow(row), row.Name)
		assert.False(t, names[row.Name], "duplicate scheme %q", row.Name)
		names[row.Name] = true
	}
	assert.True(t, names["PM-KISAN"])
	assert.True(t, names["PMFBY"])
}
