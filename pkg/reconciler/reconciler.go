// Package reconciler orchestrates a full reconciliation run: fetch the
// genus from the working catalog, classify and resolve every botanical
// name against the reference, plan merges, scan for missing accepted
// names, check the hybrid register when enabled, and hand the verdicts
// to the proposer.
//
// The run is single-threaded. Decision passes are pure CPU over the
// dataset; the order of external lookups matters for the register
// attempt counters, and interleaving would reorder them.
package reconciler

import (
	"context"
	"io"
	"log/slog"

	"github.com/gnames/gn"
	"github.com/gnames/gnrecon/pkg/classify"
	"github.com/gnames/gnrecon/pkg/config"
	"github.com/gnames/gnrecon/pkg/gnrecon"
	"github.com/gnames/gnrecon/pkg/normalize"
	"github.com/gnames/gnrecon/pkg/plan"
	"github.com/gnames/gnrecon/pkg/propose"
	"github.com/gnames/gnrecon/pkg/resolve"
	"github.com/gnames/gnrecon/pkg/scan"
	"github.com/gnames/gnrecon/pkg/schema"
)

type reconciler struct {
	cfg config.Config
	ref gnrecon.ReferenceSource
	sec gnrecon.SecondarySource
	reg gnrecon.HybridRegister
	cat gnrecon.WorkingCatalog
	out io.Writer
}

// New creates a Reconciler over the given collaborators. The secondary
// source and hybrid register may be nil; the passes that need them are
// skipped.
func New(
	cfg config.Config,
	ref gnrecon.ReferenceSource,
	sec gnrecon.SecondarySource,
	reg gnrecon.HybridRegister,
	cat gnrecon.WorkingCatalog,
	out io.Writer,
) gnrecon.Reconciler {
	return &reconciler{
		cfg: cfg,
		ref: ref,
		sec: sec,
		reg: reg,
		cat: cat,
		out: out,
	}
}

// Reconcile runs all passes for one genus and returns the summary.
func (r *reconciler) Reconcile(
	ctx context.Context,
	genus string,
) (*gnrecon.Summary, error) {
	genus = normalize.TitleGenus(genus)

	gn.Info("Fetching <em>%s</em> records from the catalog", genus)
	ds, err := r.cat.FetchGenus(ctx, genus)
	if err != nil {
		return nil, FetchGenusError(genus, err)
	}
	for _, name := range ds.Names() {
		ds.Groups[name].ResetDecisions()
	}

	genusHybrid := r.checkGenusHybrid(ctx, genus)
	updated := make(schema.RenameSet)

	r.classifyAll(ctx, ds, genusHybrid, updated)

	planner := &plan.Planner{Catalog: r.cat}
	groups, err := planner.Plan(ctx, ds)
	if err != nil {
		return nil, PlanError(genus, err)
	}

	scanner := &scan.Scanner{Reference: r.ref, Catalog: r.cat}
	if err := scanner.Scan(ctx, ds, updated); err != nil {
		slog.Warn(
			"missing-name scan incomplete",
			"genus", genus, "error", err,
		)
		gn.Warn("Missing-name scan for <em>%s</em> is incomplete", genus)
	}

	if r.reg != nil {
		r.registerPass(ctx, ds)
	}

	proposer := &propose.Proposer{
		Catalog:    r.cat,
		Out:        r.out,
		CommonName: r.cfg.Reconcile.CommonName,
		Apply:      r.cfg.Reconcile.Propose,
		Existing:   r.cfg.Reconcile.Existing,
	}
	sum, err := proposer.Process(ctx, ds, groups)
	if err != nil {
		return sum, ProposalError(genus, err)
	}

	gn.Info(
		`Reconciliation of <em>%s</em> finished:
  renames: %d, merges: %d, additions: %d
  warnings: %d, manual merges: %d`,
		genus, sum.Renames, sum.Merges, sum.Additions,
		sum.Warnings, sum.ManualMerges,
	)
	return sum, nil
}

// checkGenusHybrid asks the secondary source whether the whole genus
// is a hybrid genus. Without a secondary source the answer is no.
func (r *reconciler) checkGenusHybrid(
	ctx context.Context,
	genus string,
) bool {
	if r.sec == nil {
		return false
	}
	sr, err := r.sec.LookupTaxon(ctx, genus)
	if err != nil {
		slog.Warn(
			"genus hybrid check failed",
			"genus", genus, "error", err,
		)
		return false
	}
	return sr.Hybrid
}

// classifyAll runs the classification and synonym-resolution pass over
// every species-level name in lexicographic order. Collaborator
// failures mark the affected group with a warning; the pass continues.
func (r *reconciler) classifyAll(
	ctx context.Context,
	ds *schema.Dataset,
	genusHybrid bool,
	updated schema.RenameSet,
) {
	cls := &classify.Classifier{
		Catalog:     r.cat,
		Secondary:   r.sec,
		GenusHybrid: genusHybrid,
	}
	res := &resolve.Resolver{
		Reference:     r.ref,
		Secondary:     r.sec,
		Catalog:       r.cat,
		FuzzyDisabled: r.cfg.Match.FuzzyDisabled,
	}

	names := ds.SpeciesNames()
	bar := newProgressBar(len(names), "Classify: ")
	defer bar.Finish()

	for _, name := range names {
		bar.Increment()
		group := ds.Groups[name]

		fields, _ := normalize.SplitFields(name)
		if len(fields) < 2 || len(fields) > 4 {
			slog.Warn("skipping structurally invalid name", "name", name)
			continue
		}

		taxon, err := r.ref.LookupTaxon(
			ctx, normalize.SearchForm(group.FullName()),
		)
		if err != nil {
			r.warnGroup(group, name, "reference lookup failed", err)
			continue
		}

		outcome, err := cls.Classify(ctx, ds, group, taxon, updated)
		if err != nil {
			r.warnGroup(group, name, "classification failed", err)
			continue
		}
		if outcome == classify.OutcomeHandled {
			continue
		}

		if err := res.Resolve(ctx, ds, group, updated); err != nil {
			r.warnGroup(group, name, "synonym resolution failed", err)
		}
	}
}

func (r *reconciler) warnGroup(
	group *schema.BotanicalGroup,
	name, reason string,
	err error,
) {
	slog.Warn(reason, "name", name, "error", err)
	group.Each(func(rec *schema.CatalogRecord) {
		rec.Decision.Warn("Remote lookup failed")
	})
}
