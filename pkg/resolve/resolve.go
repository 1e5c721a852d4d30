// Package resolve maps catalog names the reference does not accept to
// their accepted replacements. Resolution tries, in order: the
// reference's own search, an autonymous type-variety retry, the
// secondary checklist, and finally fuzzy matching against the local
// snapshot. The first step that produces a verdict wins; a name that
// survives all steps is flagged with a warning.
package resolve

import (
	"context"
	"strings"

	"github.com/gnames/gnrecon/pkg/gnrecon"
	"github.com/gnames/gnrecon/pkg/normalize"
	"github.com/gnames/gnrecon/pkg/schema"
)

// Resolver resolves synonyms and not-found names against external
// sources.
type Resolver struct {
	Reference gnrecon.ReferenceSource

	// Secondary is consulted after the reference gives up. Nil
	// outside orchid runs.
	Secondary gnrecon.SecondarySource

	// Catalog backs the cross-genus duplicate check.
	Catalog gnrecon.WorkingCatalog

	// FuzzyDisabled turns the spellcheck fallback off.
	FuzzyDisabled bool
}

// Resolve finds the accepted replacement for one botanical-name group
// and writes the verdict into its records. Replacement names are added
// to updated so the missing-name scan does not re-propose them.
func (r *Resolver) Resolve(
	ctx context.Context,
	ds *schema.Dataset,
	group *schema.BotanicalGroup,
	updated schema.RenameSet,
) error {
	fullName := group.FullName()
	catalogHybrid := normalize.HasHybridMarker(fullName)
	searchName := normalize.SearchForm(fullName)

	res, err := r.Reference.SearchAccepted(ctx, searchName)
	if err != nil {
		return err
	}
	done, err := r.applySearch(
		ctx, ds, group, searchName, res, catalogHybrid,
	)
	if err != nil || done {
		return err
	}

	done, err = r.typeVarietyRetry(ctx, ds, group, fullName, updated)
	if err != nil || done {
		return err
	}

	if r.Secondary != nil {
		done, err = r.secondaryLookup(
			ctx, ds, group, searchName, fullName, updated,
		)
		if err != nil || done {
			return err
		}
	}

	if !r.FuzzyDisabled {
		done, err = r.fuzzyLookup(
			ctx, ds, group, searchName, fullName, updated,
		)
		if err != nil || done {
			return err
		}
	}

	note := res.Note
	if note == "" {
		note = "Not present in online sources"
	}
	group.Each(func(rec *schema.CatalogRecord) {
		rec.Decision.Warn(note)
	})
	return nil
}

// applySearch interprets the reference search result. An echo of the
// query means the name is independently accepted; a longer name
// containing the query suggests an incomplete reference and is not
// applied; anything else is a synonym reassignment.
func (r *Resolver) applySearch(
	ctx context.Context,
	ds *schema.Dataset,
	group *schema.BotanicalGroup,
	searchName string,
	res gnrecon.SearchResult,
	catalogHybrid bool,
) (bool, error) {
	retname := res.Name
	if retname == "" {
		return false, nil
	}
	fullName := group.FullName()
	if retname == fullName || retname == searchName {
		group.Each(func(rec *schema.CatalogRecord) {
			rec.Decision.Accepted = true
		})
		return true, nil
	}

	if len(strings.Fields(retname)) > len(strings.Fields(searchName)) &&
		strings.Contains(retname, searchName) {
		group.Each(func(rec *schema.CatalogRecord) {
			rec.Decision.Warn(
				"Reference lists only " + retname +
					" and may be incomplete",
			)
		})
		return true, nil
	}

	duplicate, err := r.isDuplicate(ctx, ds, retname)
	if err != nil {
		return false, err
	}

	group.Each(func(rec *schema.CatalogRecord) {
		rec.Decision.Changed = true
		rec.Decision.NewBotName = retname
		rec.Decision.Duplicate = duplicate
		if catalogHybrid {
			rec.Decision.Warn(
				"Listed as a natural hybrid, " +
					"but the reference resolves it to a synonym",
			)
		}
	})
	return true, nil
}

// typeVarietyRetry handles autonymous type varieties such as
// "Cymbidium insigne var. insigne": the reference may list only the
// binomial, so the lookup is retried with the 2-field form while the
// 4-field records receive the verdict.
func (r *Resolver) typeVarietyRetry(
	ctx context.Context,
	ds *schema.Dataset,
	group *schema.BotanicalGroup,
	fullName string,
	updated schema.RenameSet,
) (bool, error) {
	fields, _ := normalize.SplitFields(fullName)
	if !normalize.IsTypeVariety(fields) {
		return false, nil
	}

	short := fields[0] + " " + fields[1]
	res, err := r.Reference.SearchAccepted(ctx, short)
	if err != nil {
		return false, err
	}
	if res.Name == "" {
		return false, nil
	}
	if res.Name == fullName {
		group.Each(func(rec *schema.CatalogRecord) {
			rec.Decision.Accepted = true
		})
		return true, nil
	}

	duplicate, err := r.isDuplicate(ctx, ds, res.Name)
	if err != nil {
		return false, err
	}
	group.Each(func(rec *schema.CatalogRecord) {
		rec.Decision.Changed = true
		rec.Decision.NewBotName = res.Name
		rec.Decision.Duplicate = duplicate
	})
	updated.Add(res.Name)
	return true, nil
}

// secondaryLookup asks the secondary checklist. An unplaced taxon is
// reported but otherwise treated like an accepted one.
func (r *Resolver) secondaryLookup(
	ctx context.Context,
	ds *schema.Dataset,
	group *schema.BotanicalGroup,
	searchName, fullName string,
	updated schema.RenameSet,
) (bool, error) {
	sr, err := r.Secondary.LookupTaxon(ctx, searchName)
	if err != nil {
		return false, err
	}
	if sr.Status == "" {
		return false, nil
	}

	unplaced := strings.EqualFold(sr.Status, "unplaced")
	if sr.Name == "" || sr.Name == searchName || sr.Name == fullName {
		group.Each(func(rec *schema.CatalogRecord) {
			if unplaced {
				rec.Decision.Warn("Taxon is unplaced")
			} else {
				rec.Decision.Accepted = true
			}
		})
		return true, nil
	}

	duplicate, err := r.isDuplicate(ctx, ds, sr.Name)
	if err != nil {
		return false, err
	}
	group.Each(func(rec *schema.CatalogRecord) {
		rec.Decision.Changed = true
		rec.Decision.NewBotName = sr.Name
		rec.Decision.Duplicate = duplicate
		if unplaced {
			rec.Decision.Warn("Taxon is unplaced")
		}
	})
	updated.Add(sr.Name)
	return true, nil
}

// fuzzyLookup matches the name against every snapshot row and applies
// the closest acceptable candidate as a misspelling fix.
func (r *Resolver) fuzzyLookup(
	ctx context.Context,
	ds *schema.Dataset,
	group *schema.BotanicalGroup,
	searchName, fullName string,
	updated schema.RenameSet,
) (bool, error) {
	rows, err := r.Reference.SnapshotNames(ctx)
	if err != nil {
		return false, err
	}
	taxon, ok := BestMatch(searchName, rows)
	if !ok {
		return false, nil
	}

	accepted := strings.Contains(
		strings.ToLower(taxon.Status), "accepted",
	)
	group.Each(func(rec *schema.CatalogRecord) {
		rec.Decision.Changed = true
		rec.Decision.Rename = true
		rec.Decision.NewBotName = taxon.Name
		rec.Decision.Duplicate = ds.Has(taxon.Name)
		if !accepted {
			rec.Decision.Warn(
				"Misspelt in the catalog and a synonym in the reference",
			)
		} else if searchName != fullName {
			rec.Decision.Warn(
				"Misspelt natural hybrid; verify the hybrid marker",
			)
		}
	})
	updated.Add(taxon.Name)
	return true, nil
}

// isDuplicate reports whether the proposed replacement already exists
// as a catalog record. A replacement from another genus is searched
// across the whole catalog, and a hit is pulled into the dataset so
// the merge planner can pair its records.
func (r *Resolver) isDuplicate(
	ctx context.Context,
	ds *schema.Dataset,
	name string,
) (bool, error) {
	if ds.Has(name) {
		return true, nil
	}
	fields := strings.Fields(name)
	if len(fields) == 0 || fields[0] == ds.Genus {
		return false, nil
	}
	if r.Catalog == nil {
		return false, nil
	}
	groups, err := r.Catalog.Search(ctx, name)
	if err != nil {
		return false, err
	}
	g, ok := groups[name]
	if !ok {
		return false, nil
	}
	ds.Groups[name] = g
	return true, nil
}
