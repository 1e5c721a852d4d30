// Package classify determines the taxonomic disposition of working
// catalog entries against authoritative reference rows: accepted,
// synonym, misapplied/ambiguous, unknown, or not found, together with
// hybrid-marker consistency.
//
// Classification operates on whole botanical-name groups, never on
// individual records: hybrid and acceptance status is a property of
// the name, and every selection under it is marked uniformly.
package classify

import (
	"context"
	"strings"

	"github.com/gnames/gnrecon/pkg/gnrecon"
	"github.com/gnames/gnrecon/pkg/normalize"
	"github.com/gnames/gnrecon/pkg/schema"
)

// Outcome tells the caller how a group was dispatched.
type Outcome int

const (
	// OutcomeHandled means decisions were written to the group.
	OutcomeHandled Outcome = iota

	// OutcomeSynonym means the reference lists the name as a
	// synonym; the synonym resolver takes over.
	OutcomeSynonym

	// OutcomeNotFound means the reference has no row for the name;
	// the synonym resolver takes over with its not-found path.
	OutcomeNotFound
)

// HybridFlags is the hybrid disposition derived from a reference row.
type HybridFlags struct {
	// Hybrid reports any hybrid indication.
	Hybrid bool

	// Questionable is set when the indication carries a trailing
	// question mark.
	Questionable bool

	// Natural is set when the row also has a distribution: a hybrid
	// occurring in the wild.
	Natural bool
}

// HybridStatus derives hybrid flags from a reference row. The
// dedicated indicator field wins when present; otherwise the remarks
// are searched for the keyword (and its common misspelling).
func HybridStatus(indicator, remarks, distribution string) HybridFlags {
	var res HybridFlags
	text := strings.ToLower(indicator)
	if text == "" {
		rl := strings.ToLower(remarks)
		if strings.Contains(rl, "hybrid") ||
			strings.Contains(rl, "hyrbrid") {
			text = rl
		}
	}
	if text == "" {
		return res
	}
	res.Hybrid = true
	res.Questionable = strings.Contains(text, "?")
	res.Natural = strings.TrimSpace(distribution) != ""
	return res
}

// Classifier applies the status decision table to botanical-name
// groups.
type Classifier struct {
	// Catalog is consulted for parentage-field presence on natural
	// hybrids.
	Catalog gnrecon.WorkingCatalog

	// Secondary provides distribution and parentage data when the
	// reference row lacks it. Nil outside orchid runs.
	Secondary gnrecon.SecondarySource

	// GenusHybrid is set when the whole genus is a hybrid genus;
	// per-name hybrid markers are then redundant.
	GenusHybrid bool
}

// Classify applies the decision table to one group given its reference
// row (nil when the reference has no row). Renamed targets are added
// to updated so later passes do not double-propose them.
func (c *Classifier) Classify(
	ctx context.Context,
	ds *schema.Dataset,
	group *schema.BotanicalGroup,
	taxon *schema.ReferenceTaxon,
	updated schema.RenameSet,
) (Outcome, error) {
	if taxon == nil {
		return OutcomeNotFound, nil
	}

	status := strings.ToLower(taxon.Status)
	switch {
	case strings.Contains(status, "accepted"):
		err := c.classifyAccepted(ctx, ds, group, taxon, updated)
		if err != nil {
			return OutcomeHandled, err
		}
		return OutcomeHandled, nil
	case strings.Contains(status, "misapplied"),
		strings.Contains(status, "ambiguous"):
		group.Each(func(rec *schema.CatalogRecord) {
			rec.Decision.Warn("Misapplied or ambiguous name")
		})
		return OutcomeHandled, nil
	case strings.Contains(status, "synonym"):
		return OutcomeSynonym, nil
	default:
		reason := "Unknown taxonomic status: " + taxon.Status
		group.Each(func(rec *schema.CatalogRecord) {
			rec.Decision.Warn(reason)
		})
		return OutcomeHandled, nil
	}
}

func (c *Classifier) classifyAccepted(
	ctx context.Context,
	ds *schema.Dataset,
	group *schema.BotanicalGroup,
	taxon *schema.ReferenceTaxon,
	updated schema.RenameSet,
) error {
	fullName := group.FullName()
	catalogHybrid := normalize.HasHybridMarker(fullName)
	flags := HybridStatus(
		taxon.HybridIndicator, taxon.Remarks, taxon.Distribution,
	)

	var err error
	switch {
	case flags.Hybrid && flags.Natural && !flags.Questionable:
		err = c.markNaturalHybrid(
			ctx, ds, group, fullName, catalogHybrid, updated,
		)
	case flags.Hybrid && flags.Questionable:
		group.Each(func(rec *schema.CatalogRecord) {
			rec.Decision.PossibleHybrid = true
		})
	case flags.Hybrid:
		// Hybrid per the reference, but with no distribution: not a
		// natural hybrid unless a secondary source knows better.
		err = c.checkSecondaryDistribution(
			ctx, ds, group, fullName, catalogHybrid, updated,
		)
	case catalogHybrid:
		// The catalog says hybrid, the reference does not.
		group.Each(func(rec *schema.CatalogRecord) {
			rec.Decision.NotNaturalHybrid = !c.GenusHybrid
		})
	}
	if err != nil {
		return err
	}

	group.Each(func(rec *schema.CatalogRecord) {
		rec.Decision.Accepted = true
	})
	return nil
}

// markNaturalHybrid handles an unambiguous natural hybrid: the name
// keeps (or gains) its hybrid marker and parentage data is filled in
// when available.
func (c *Classifier) markNaturalHybrid(
	ctx context.Context,
	ds *schema.Dataset,
	group *schema.BotanicalGroup,
	fullName string,
	catalogHybrid bool,
	updated schema.RenameSet,
) error {
	needsMarker := !catalogHybrid && !c.GenusHybrid

	var hybName string
	var duplicate bool
	if needsMarker {
		hybName = normalize.AddHybridMarker(fullName, ds.Genus)
		duplicate = ds.Has(hybName)
		updated.Add(hybName)
	}

	var secondary *gnrecon.SecondaryResult
	nonHybName := normalize.StripHybridMarker(fullName)

	var outerErr error
	group.Each(func(rec *schema.CatalogRecord) {
		rec.Decision.NaturalHybrid = true
		rec.Decision.Changed = needsMarker
		rec.Decision.Rename = needsMarker
		if needsMarker {
			rec.Decision.NewBotName = hybName
			rec.Decision.Duplicate = duplicate
		}

		exists, err := c.parentageExists(ctx, rec)
		if err != nil {
			outerErr = err
			return
		}
		rec.Decision.ParentageExists = exists

		if c.Secondary != nil && !exists {
			if secondary == nil {
				r, err := c.Secondary.LookupTaxon(ctx, nonHybName)
				if err != nil {
					outerErr = err
					return
				}
				secondary = &r
			}
			if secondary.Parentage != nil {
				rec.Decision.Parentage = secondary.Parentage
			}
		}
	})
	return outerErr
}

// checkSecondaryDistribution covers reference rows flagged hybrid
// without a distribution. With orchid extensions the secondary source
// may still report one, turning the entry into a natural hybrid;
// otherwise the entry is flagged as not a natural hybrid.
func (c *Classifier) checkSecondaryDistribution(
	ctx context.Context,
	ds *schema.Dataset,
	group *schema.BotanicalGroup,
	fullName string,
	catalogHybrid bool,
	updated schema.RenameSet,
) error {
	if c.Secondary == nil {
		group.Each(func(rec *schema.CatalogRecord) {
			rec.Decision.NotNaturalHybrid = !c.GenusHybrid
		})
		return nil
	}

	nonHybName := normalize.StripHybridMarker(fullName)
	secondary, err := c.Secondary.LookupTaxon(ctx, nonHybName)
	if err != nil {
		return err
	}

	if secondary.Distribution == "" {
		group.Each(func(rec *schema.CatalogRecord) {
			rec.Decision.NotNaturalHybrid = !c.GenusHybrid
		})
		return nil
	}

	if catalogHybrid {
		// Marker already present and the secondary source confirms
		// a wild distribution; nothing to change.
		return nil
	}

	var hybName string
	var duplicate bool
	rename := !c.GenusHybrid
	if rename {
		hybName = normalize.AddHybridMarker(fullName, ds.Genus)
		duplicate = ds.Has(hybName)
		updated.Add(hybName)
	}

	var outerErr error
	group.Each(func(rec *schema.CatalogRecord) {
		rec.Decision.NaturalHybrid = true
		if rename {
			rec.Decision.NewBotName = hybName
			rec.Decision.Changed = true
			rec.Decision.Rename = true
			rec.Decision.Duplicate = duplicate
		}

		exists, err := c.parentageExists(ctx, rec)
		if err != nil {
			outerErr = err
			return
		}
		rec.Decision.ParentageExists = exists
		if !exists && secondary.Parentage != nil {
			rec.Decision.Parentage = secondary.Parentage
		}
	})
	return outerErr
}

// parentageExists reports whether a record already has parentage data.
// Lookup failures are conservative: the field is treated as populated
// so no automatic update is proposed for it.
func (c *Classifier) parentageExists(
	ctx context.Context,
	rec *schema.CatalogRecord,
) (bool, error) {
	if c.Catalog == nil {
		return false, nil
	}
	exists, err := c.Catalog.HasParentageField(ctx, rec)
	if err != nil {
		rec.Decision.Warn("Could not verify parentage field")
		return true, nil
	}
	return exists, nil
}
