package resolve

import (
	"github.com/agext/levenshtein"
	"github.com/gnames/gnrecon/pkg/schema"
)

var lvParams = levenshtein.NewParams()

// BestMatch finds the snapshot row whose name is closest to the query
// by normalized edit-distance similarity. Ties at the winning ratio
// are rejected, as is any candidate below the acceptance thresholds.
func BestMatch(
	name string,
	rows []schema.ReferenceTaxon,
) (schema.ReferenceTaxon, bool) {
	var best schema.ReferenceTaxon
	var bestRatio float64
	var tie bool

	for _, row := range rows {
		if row.Name == "" || row.Name == name {
			continue
		}
		ratio := levenshtein.Similarity(name, row.Name, lvParams)
		switch {
		case ratio > bestRatio:
			best = row
			bestRatio = ratio
			tie = false
		case ratio == bestRatio && row.Name != best.Name:
			tie = true
		}
	}

	if tie || !Acceptable(name, best.Name, bestRatio) {
		return schema.ReferenceTaxon{}, false
	}
	return best, true
}

// Acceptable applies the match thresholds: a ratio strictly above 0.9
// always passes; a ratio strictly above 0.8 passes only when fewer
// than 2 aligned characters differ and the lengths differ by less
// than 3. Boundary values fail.
func Acceptable(a, b string, ratio float64) bool {
	if ratio > 0.9 {
		return true
	}
	if ratio <= 0.8 {
		return false
	}
	return charDiffs(a, b) < 2 && lenDiff(a, b) < 3
}

// charDiffs counts positions where the two names disagree, compared
// rune by rune up to the shorter length.
func charDiffs(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	n := len(ra)
	if len(rb) < n {
		n = len(rb)
	}
	var res int
	for i := 0; i < n; i++ {
		if ra[i] != rb[i] {
			res++
		}
	}
	return res
}

func lenDiff(a, b string) int {
	d := len([]rune(a)) - len([]rune(b))
	if d < 0 {
		return -d
	}
	return d
}
