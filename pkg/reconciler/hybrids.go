package reconciler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gnames/gnrecon/pkg/gnrecon"
	"github.com/gnames/gnrecon/pkg/normalize"
	"github.com/gnames/gnrecon/pkg/schema"
)

// registerPass checks every grex under the genus-level entries against
// the hybrid register: registration status, redundant quoting of the
// grex name, and the parentage formula when the catalog lacks one.
func (r *reconciler) registerPass(
	ctx context.Context,
	ds *schema.Dataset,
) {
	for _, name := range ds.GenusNames() {
		group := ds.Groups[name]

		var grexes []schema.Selection
		for _, sel := range group.Selections() {
			if !sel.IsType() {
				grexes = append(grexes, sel)
			}
		}
		if len(grexes) == 0 {
			continue
		}

		bar := newProgressBar(len(grexes), "Register: ")
		for _, sel := range grexes {
			bar.Increment()
			r.checkGrex(ctx, ds, group.Records[sel])
		}
		bar.Finish()
	}
}

// checkGrex resolves one grex record against the register.
func (r *reconciler) checkGrex(
	ctx context.Context,
	ds *schema.Dataset,
	rec *schema.CatalogRecord,
) {
	parsed, err := normalize.Parse(rec.Selection.Name(), ds.Genus)
	if err != nil {
		rec.Decision.Warn("Unparseable hybrid name")
		return
	}

	if parsed.HasQuoteArtifact {
		rec.Decision.HasQuoteArtifact = true
		rec.Decision.CleanedName = normalize.Format(parsed)
	}
	if parsed.Epithet == "" && len(parsed.CrossParents) != 2 {
		return
	}

	registered, registration, ok := r.lookupRegistration(ctx, ds.Genus, parsed)
	if !ok {
		return
	}
	rec.Decision.Registered = &registered

	if !registered || !r.cfg.Reconcile.ParentageCheck {
		return
	}
	exists, err := r.cat.HasParentageField(ctx, rec)
	if err != nil {
		slog.Warn(
			"parentage field check failed",
			"name", rec.FullName, "error", err,
		)
		return
	}
	rec.Decision.ParentageExists = exists
	if !exists && registration != nil {
		rec.Decision.Parentage = FormatParentage(ds.Genus, *registration)
	}
}

// lookupRegistration finds the register entry for a parsed grex. An
// unnamed cross counts as registered when both parents are; its
// parentage formula comes from the parents themselves.
func (r *reconciler) lookupRegistration(
	ctx context.Context,
	genus string,
	parsed normalize.Parsed,
) (bool, *gnrecon.Registration, bool) {
	if len(parsed.CrossParents) != 2 {
		reg, err := r.reg.Search(ctx, parsed.Genus, parsed.Epithet)
		if err != nil {
			slog.Warn(
				"register lookup failed",
				"grex", parsed.Epithet, "error", err,
			)
			return false, nil, false
		}
		return reg.Matched, &reg, true
	}

	var parents [2][2]string
	matched := true
	for i, parent := range parsed.CrossParents {
		pp, err := normalize.Parse(parent, genus)
		if err != nil || pp.Epithet == "" {
			return false, nil, false
		}
		reg, err := r.reg.Search(ctx, pp.Genus, pp.Epithet)
		if err != nil {
			slog.Warn(
				"register lookup failed",
				"grex", pp.Epithet, "error", err,
			)
			return false, nil, false
		}
		matched = matched && reg.Matched
		parents[i] = [2]string{pp.Genus, pp.Epithet}
	}

	cross := &gnrecon.Registration{
		Matched:      matched,
		Genus:        genus,
		PodParent:    parents[0],
		PollenParent: parents[1],
	}
	return matched, cross, true
}

// FormatParentage renders a register entry as the catalog's parentage
// formula. A parent from another genus, or a parent that is itself a
// species (all-lowercase epithet), is spelled in full; a same-genus
// hybrid parent is spelled by epithet alone. Pod parent comes first.
func FormatParentage(
	genus string,
	reg gnrecon.Registration,
) *schema.Parentage {
	pod, podInter := parentName(genus, reg.PodParent)
	pollen, pollenInter := parentName(genus, reg.PollenParent)
	if pod == "" || pollen == "" {
		return nil
	}
	return &schema.Parentage{
		Formula:      pod + " X " + pollen,
		Intergeneric: podInter || pollenInter,
	}
}

func parentName(genus string, parent [2]string) (string, bool) {
	pg, epithet := parent[0], parent[1]
	if epithet == "" {
		return "", false
	}
	if pg != "" && !strings.EqualFold(pg, genus) {
		return pg + " " + epithet, true
	}
	if epithet == strings.ToLower(epithet) {
		return genus + " " + epithet, false
	}
	return epithet, false
}
