// Package normalize parses and canonicalizes free-text taxon names as
// they appear in the working catalog: abbreviated genera, ploidy
// annotations, numbered and quoted selections, form suffixes, hybrid
// markers and unnamed crosses.
//
// Two entry points serve two kinds of names. Parse handles
// cultivar/grex-style names (register lookups, cross parents), where a
// trailing "f. word" is a horticultural form suffix. SplitFields
// handles botanical names for classification, where "f." is the
// infraspecific rank abbreviation and the field count must be 2, 3 or
// 4.
//
// Normalization is deterministic: same input, same structured output.
// No randomness, no I/O.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gnames/gnrecon/pkg/schema"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	reGenusAbbrev = regexp.MustCompile(`^\w{1,5}\.`)
	rePloidy      = regexp.MustCompile(`\(.*\dn\)`)
	reNumberedSel = regexp.MustCompile(` #(\d+)`)
	reNamedSel    = regexp.MustCompile(` '(.+)'$`)
	reFormSuffix  = regexp.MustCompile(` f\. (\w+)`)
	reConjunction = regexp.MustCompile(`(?i) x `)
)

var titleCaser = cases.Title(language.English, cases.NoLower)

// Ranks are the infraspecific rank abbreviations the engine knows.
var Ranks = []string{"var.", "subsp.", "f."}

// Parsed is the structured form of a cultivar/grex-style name.
type Parsed struct {
	// Genus is the expanded genus, empty when the raw name carried
	// none and no genus hint was supplied.
	Genus string

	// Hybrid reports a hybrid marker in the name.
	Hybrid bool

	// Epithet is the remaining grex or species epithet after all
	// removals.
	Epithet string

	// Selection is an unquoted trailing cultivar name, empty when
	// none.
	Selection string

	// NumberedSelection is a trailing "#N" selection number, zero
	// when none.
	NumberedSelection int

	// Ploidy is a parenthesized ploidy annotation such as "(4n)".
	Ploidy string

	// Form is the word of a stripped "f. word" form suffix.
	Form string

	// HasQuoteArtifact marks a name that was redundantly wrapped in
	// single quotes; Epithet holds the unwrapped form, which is the
	// true grex, not a cultivar.
	HasQuoteArtifact bool

	// CrossParents holds both parent names when the whole string
	// denotes an unnamed cross between two other taxa.
	CrossParents []string
}

// Parse normalizes a raw taxon string. The genus argument expands an
// abbreviated genus prefix when the abbreviation matches; pass the
// empty string when no genus is known.
//
// Rules apply in a fixed order, each optional: genus abbreviation,
// ploidy annotation, numbered selection, quoted cultivar, form suffix,
// unnamed-cross conjunction. More than one conjunction token is
// invalid input.
func Parse(raw, genus string) (Parsed, error) {
	var res Parsed
	name := strings.TrimSpace(raw)

	if m := reGenusAbbrev.FindString(name); m != "" {
		res.Genus = ExpandGenus(m, genus)
		name = strings.TrimSpace(name[len(m):])
	} else if genus != "" {
		first, rest, found := strings.Cut(name, " ")
		if TitleGenus(first) == TitleGenus(genus) {
			res.Genus = TitleGenus(genus)
			if found {
				name = strings.TrimSpace(rest)
			} else {
				name = ""
			}
		} else {
			res.Genus = TitleGenus(genus)
		}
	}

	if m := rePloidy.FindString(name); m != "" {
		res.Ploidy = m
		name = collapse(strings.Replace(name, m, "", 1))
	}

	if m := reNumberedSel.FindStringSubmatch(name); m != nil {
		res.NumberedSelection, _ = strconv.Atoi(m[1])
		name = collapse(strings.Replace(name, m[0], "", 1))
	}

	name, res.Selection, res.HasQuoteArtifact = stripQuoted(name)

	if m := reFormSuffix.FindStringSubmatch(name); m != nil {
		res.Form = m[1]
		name = collapse(strings.Replace(name, m[0], "", 1))
	}

	conj := reConjunction.FindAllString(name, -1)
	switch len(conj) {
	case 0:
	case 1:
		parts := reConjunction.Split(strings.Trim(name, "()"), 2)
		if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
			res.CrossParents = []string{
				strings.TrimSpace(parts[0]),
				strings.TrimSpace(parts[1]),
			}
		} else {
			res.Hybrid = true
			name = collapse(reConjunction.ReplaceAllString(name, " "))
		}
	default:
		return res, fmt.Errorf(
			"more than one hybrid conjunction in %q", raw,
		)
	}

	res.Epithet = strings.TrimSpace(name)
	return res, nil
}

// stripQuoted removes a single-quoted trailing cultivar name. When the
// whole string was wrapped in quotes (quote-stripping shortens it by
// exactly two characters), the stripped form is the true grex and the
// quote artifact is flagged instead.
func stripQuoted(name string) (string, string, bool) {
	if strings.Count(name, "'") < 2 {
		return name, "", false
	}
	if m := reNamedSel.FindStringSubmatch(name); m != nil {
		rest := strings.TrimSpace(name[:len(name)-len(m[0])])
		if rest != "" {
			return rest, m[1], false
		}
	}
	cleaned := strings.Trim(name, "'")
	if len(cleaned) == len(name)-2 {
		return cleaned, "", true
	}
	return name, "", false
}

// Format reassembles a Parsed back into a display string. Applying
// Parse to the result yields the same structured output.
func Format(p Parsed) string {
	var b strings.Builder
	if p.Genus != "" {
		b.WriteString(p.Genus)
	}
	if p.Hybrid {
		b.WriteString(" " + schema.HybridToken)
	}
	if len(p.CrossParents) == 2 {
		writeSep(&b, p.CrossParents[0]+" x "+p.CrossParents[1])
	} else if p.Epithet != "" {
		writeSep(&b, p.Epithet)
	}
	if p.Form != "" {
		writeSep(&b, "f. "+p.Form)
	}
	if p.Selection != "" {
		writeSep(&b, "'"+p.Selection+"'")
	}
	if p.NumberedSelection > 0 {
		writeSep(&b, "#"+strconv.Itoa(p.NumberedSelection))
	}
	if p.Ploidy != "" {
		writeSep(&b, p.Ploidy)
	}
	return b.String()
}

func writeSep(b *strings.Builder, s string) {
	if b.Len() > 0 {
		b.WriteString(" ")
	}
	b.WriteString(s)
}

// ExpandGenus resolves a genus abbreviation ("Cym.") against a known
// genus. When the abbreviation does not match the genus initial, the
// trimmed abbreviation is returned as-is.
func ExpandGenus(abbrev, genus string) string {
	a := strings.TrimSuffix(strings.TrimSpace(abbrev), ".")
	if genus == "" {
		return a
	}
	g := TitleGenus(genus)
	if strings.HasPrefix(strings.ToLower(g), strings.ToLower(a[:1])) {
		return g
	}
	return a
}

// TitleGenus canonicalizes genus capitalization: "cymbidium" becomes
// "Cymbidium".
func TitleGenus(genus string) string {
	return titleCaser.String(strings.ToLower(strings.TrimSpace(genus)))
}

// SplitFields splits a botanical display name into its structural
// fields, removing the hybrid marker token and reporting its presence.
// Valid names have 2, 3 or 4 fields; anything else is a structural
// anomaly the caller should skip.
func SplitFields(fullName string) ([]string, bool) {
	fields := strings.Fields(fullName)
	hybrid := false
	res := fields[:0]
	for _, f := range fields {
		if f == schema.HybridToken || f == schema.HybridSymbol {
			hybrid = true
			continue
		}
		res = append(res, f)
	}
	return res, hybrid
}

// HasHybridMarker reports whether a display name carries the catalog's
// hybrid marker token.
func HasHybridMarker(name string) bool {
	_, hybrid := SplitFields(name)
	return hybrid
}

// AddHybridMarker inserts the hybrid marker after the genus:
// "Geranium oxonianum" becomes "Geranium x oxonianum". A name already
// carrying the marker is returned unchanged.
func AddHybridMarker(name, genus string) string {
	if HasHybridMarker(name) {
		return name
	}
	return strings.Replace(
		name, genus, genus+" "+schema.HybridToken, 1,
	)
}

// StripHybridMarker removes the hybrid marker from a display name:
// "Geranium x oxonianum" becomes "Geranium oxonianum".
func StripHybridMarker(name string) string {
	fields, _ := SplitFields(name)
	return strings.Join(fields, " ")
}

// SearchForm normalizes a name for a reference search: the catalog's
// bare "x" marker is dropped, since checklists either omit it or use
// the multiplication symbol.
func SearchForm(name string) string {
	return StripHybridMarker(name)
}

// IsTypeVariety reports whether a 4-field name is an autonymous type
// variety (pattern "Genus species rank species"), which the reference
// may have merged back into the species rank.
func IsTypeVariety(fields []string) bool {
	return len(fields) == 4 && fields[1] == fields[3]
}

func collapse(s string) string {
	return strings.TrimSpace(
		strings.ReplaceAll(s, "  ", " "),
	)
}
