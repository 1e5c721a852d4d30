// Package scan walks every accepted species-level name in the local
// reference snapshot and finds the ones the working catalog lacks. A
// missing name whose synonyms do exist in the catalog becomes a
// reassignment of those records; a missing name with no catalog
// synonyms becomes a proposed addition.
package scan

import (
	"context"
	"sort"
	"strings"

	"github.com/gnames/gnrecon/pkg/classify"
	"github.com/gnames/gnrecon/pkg/gnrecon"
	"github.com/gnames/gnrecon/pkg/normalize"
	"github.com/gnames/gnrecon/pkg/schema"
)

// Scanner detects accepted names missing from the working catalog.
type Scanner struct {
	Reference gnrecon.ReferenceSource
	Catalog   gnrecon.WorkingCatalog
}

// Scan appends missing accepted names to ds.Additions and converts
// catalog records holding their synonyms into reassignments. Names in
// updated were already produced as rename targets this run and are
// not treated as missing.
func (s *Scanner) Scan(
	ctx context.Context,
	ds *schema.Dataset,
	updated schema.RenameSet,
) error {
	rows, err := s.Reference.SnapshotNames(ctx)
	if err != nil {
		return err
	}

	for _, row := range rows {
		if !strings.Contains(strings.ToLower(row.Status), "accepted") {
			continue
		}
		if len(strings.Fields(row.Name)) < 2 {
			continue
		}

		flags := classify.HybridStatus(
			row.HybridIndicator, row.Remarks, row.Distribution,
		)
		entry := row.Name
		final := entry
		var check bool
		switch {
		case !flags.Hybrid || flags.Questionable:
			check = !ds.Has(entry) && !updated.Has(entry)
		case flags.Natural:
			// Natural hybrids live in the catalog with the marker.
			final = normalize.AddHybridMarker(entry, ds.Genus)
			check = !ds.Has(final) && !ds.Has(entry) &&
				!updated.Has(final)
		default:
			// Hybrids without a wild distribution are not wanted.
			continue
		}
		if !check {
			continue
		}

		if err := s.checkMissing(ctx, ds, entry, final, updated); err != nil {
			return err
		}
	}
	return nil
}

// checkMissing decides the fate of one missing accepted name: rename
// its catalog synonyms when any exist, propose an addition otherwise.
func (s *Scanner) checkMissing(
	ctx context.Context,
	ds *schema.Dataset,
	entry, final string,
	updated schema.RenameSet,
) error {
	syns, err := s.Reference.LookupSynonyms(ctx, entry)
	if err != nil {
		return err
	}

	synGroups := make(map[string]*schema.BotanicalGroup)
	for _, syn := range syns {
		groups, err := s.Catalog.Search(ctx, syn)
		if err != nil {
			return err
		}
		g, ok := groups[syn]
		if !ok {
			continue
		}
		synGroups[syn] = g

		// A name can be both a synonym of one taxon and an
		// independently accepted name of another. When the source's
		// own search echoes the name back, the catalog record stands.
		res, err := s.Reference.SearchAccepted(ctx, syn)
		if err != nil {
			return err
		}
		if res.Name == syn {
			g.Each(func(rec *schema.CatalogRecord) {
				rec.Decision.Accepted = true
			})
		}
	}

	synNames := make([]string, 0, len(synGroups))
	for syn := range synGroups {
		synNames = append(synNames, syn)
	}
	sort.Strings(synNames)
	synDuplicate := len(synGroups) > 1

	var validSynonyms bool
	for _, syn := range synNames {
		found := synGroups[syn]
		dg := ds.Groups[syn]
		if dg == nil {
			ds.Groups[syn] = found
			dg = found
		} else {
			for sel, rec := range found.Records {
				if _, ok := dg.Records[sel]; !ok {
					dg.Records[sel] = rec
				}
			}
		}
		dg.Each(func(rec *schema.CatalogRecord) {
			if rec.Decision.Accepted {
				return
			}
			rec.Decision.Changed = true
			rec.Decision.NewBotName = final
			rec.Decision.Duplicate = synDuplicate
			validSynonyms = true
		})
	}

	if validSynonyms {
		updated.Add(final)
		return nil
	}
	ds.Additions = append(ds.Additions, final)
	return nil
}
