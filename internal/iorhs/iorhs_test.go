package iorhs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeGrex(t *testing.T) {
	tests := []struct {
		msg  string
		grex string
		res  string
	}{
		{"plain name", "Sleeping Beauty", "Sleeping Beauty"},
		{
			"parentheses become brackets",
			"Memoria (Alba)",
			"Memoria [Alba]",
		},
		{"surrounding space", " Sleeping Beauty ", "Sleeping Beauty"},
	}

	for _, v := range tests {
		assert.Equal(t, v.res, SanitizeGrex(v.grex), v.msg)
	}
}

var resultsPage = []byte(`
<html><body>
<table>
  <tr><th>Grex</th><th>Seed parent</th><th>Pollen parent</th></tr>
  <tr>
    <td>Sleeping Giant</td>
    <td>C. lowianum</td>
    <td>Sleeping Nymph</td>
  </tr>
  <tr>
    <td>Sleeping Beauty</td>
    <td>C. insigne</td>
    <td>Sleeping Nymph</td>
  </tr>
</table>
</body></html>`)

func TestParseResults(t *testing.T) {
	t.Run("finds the matching row", func(t *testing.T) {
		reg, err := parseResults(
			resultsPage, "Cymbidium", "Sleeping Beauty",
		)
		require.NoError(t, err)

		assert.True(t, reg.Matched)
		assert.Equal(t, "Cymbidium", reg.Genus)
		assert.Equal(t, "Sleeping Beauty", reg.Epithet)
		// abbreviated parent genus expands to the queried genus
		assert.Equal(
			t, [2]string{"Cymbidium", "insigne"}, reg.PodParent,
		)
		// a plain parent cell is a grex of the same genus
		assert.Equal(
			t,
			[2]string{"Cymbidium", "Sleeping Nymph"},
			reg.PollenParent,
		)
	})

	t.Run("matches case-insensitively", func(t *testing.T) {
		reg, err := parseResults(
			resultsPage, "Cymbidium", "sleeping beauty",
		)
		require.NoError(t, err)
		assert.True(t, reg.Matched)
	})

	t.Run("no matching row", func(t *testing.T) {
		reg, err := parseResults(
			resultsPage, "Cymbidium", "Golden Elf",
		)
		require.NoError(t, err)
		assert.False(t, reg.Matched)
	})
}

func TestSplitParent(t *testing.T) {
	tests := []struct {
		msg   string
		cell  string
		genus string
		res   [2]string
	}{
		{
			msg:   "abbreviation expands",
			cell:  "C. insigne",
			genus: "Cymbidium",
			res:   [2]string{"Cymbidium", "insigne"},
		},
		{
			msg:   "grex name keeps the genus",
			cell:  "Sleeping Nymph",
			genus: "Cymbidium",
			res:   [2]string{"Cymbidium", "Sleeping Nymph"},
		},
		{
			msg:   "foreign abbreviation survives",
			cell:  "Paph. insigne",
			genus: "Cymbidium",
			res:   [2]string{"Paph", "insigne"},
		},
		{
			msg:  "empty cell",
			cell: "  ",
			res:  [2]string{},
		},
	}

	for _, v := range tests {
		assert.Equal(t, v.res, splitParent(v.cell, v.genus), v.msg)
	}
}
