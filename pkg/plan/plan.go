// Package plan turns per-record rename decisions into executable merge
// plans. Renames whose target name already has records, and groups of
// names converging on one target, become ordered survivor/casualty
// merge steps; anything that risks data loss or ordering ambiguity is
// flagged for manual intervention instead.
//
// The planner is conservative: between an automatic merge and a manual
// flag, any doubt resolves to manual. Lower external ids always
// survive, and no id is ever targeted after it has been retired.
package plan

import (
	"context"
	"sort"

	"github.com/gnames/gnrecon/pkg/gnrecon"
	"github.com/gnames/gnrecon/pkg/schema"
)

// Planner computes merge plans over a classified dataset.
type Planner struct {
	// Catalog backs the data-richness checks. When nil, records are
	// assumed to carry no auxiliary data.
	Catalog gnrecon.WorkingCatalog
}

// Plan groups every reassignment by target name and computes the merge
// steps for each group. Plain renames into free names are not part of
// the result; they need no merge.
func (p *Planner) Plan(
	ctx context.Context,
	ds *schema.Dataset,
) ([]*schema.ReassignmentGroup, error) {
	targets := make(map[string][]string)
	for _, name := range ds.Names() {
		dec := representative(ds.Groups[name])
		if dec == nil {
			continue
		}
		if !dec.Changed || dec.Warning {
			continue
		}
		if dec.NewBotName == "" || dec.NewBotName == name {
			continue
		}
		targets[dec.NewBotName] = append(targets[dec.NewBotName], name)
	}

	names := make([]string, 0, len(targets))
	for target, sources := range targets {
		if len(sources) > 1 || ds.Has(target) {
			names = append(names, target)
		}
	}
	sort.Strings(names)

	var res []*schema.ReassignmentGroup
	for _, target := range names {
		sources := targets[target]
		sort.Strings(sources)
		grp := &schema.ReassignmentGroup{
			Target:  target,
			Sources: sources,
		}
		if ds.Has(target) {
			p.planIntoExisting(ctx, ds, grp)
		} else {
			p.planTargetMissing(ctx, ds, grp)
		}
		res = append(res, grp)
	}
	return res, nil
}

// representative returns the decision shared by a group's records: the
// type record's when present, otherwise the first selection's.
// Decisions are written uniformly per group, so any record serves.
func representative(g *schema.BotanicalGroup) *schema.Decision {
	if rec := g.Type(); rec != nil {
		return &rec.Decision
	}
	for _, sel := range g.Selections() {
		return &g.Records[sel].Decision
	}
	return nil
}

// planTargetMissing handles groups converging on a name with no
// catalog record yet: the oldest record among the sources is promoted
// to be the target, and every other record merges into it.
func (p *Planner) planTargetMissing(
	ctx context.Context,
	ds *schema.Dataset,
	grp *schema.ReassignmentGroup,
) {
	grp.TargetMissing = true

	var recs []*schema.CatalogRecord
	for _, source := range grp.Sources {
		ds.Groups[source].Each(func(rec *schema.CatalogRecord) {
			recs = append(recs, rec)
		})
	}
	if len(recs) < 2 {
		grp.ManualMerge = true
		return
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].ID < recs[j].ID
	})

	survivor := recs[0]
	var steps []schema.MergeStep
	for _, cas := range recs[1:] {
		if cas.ID == survivor.ID {
			grp.ManualMerge = true
			return
		}
		if !p.mergeable(ctx, cas) {
			grp.ManualMerge = true
			return
		}
		steps = append(steps, schema.MergeStep{
			Survivor:       survivor,
			Casualty:       cas,
			CommonNames:    cas.CommonNames,
			AlternateNames: cas.AlternateNames,
		})
	}
	grp.Steps = finalize(steps, grp)
}

// planIntoExisting pairs each source record with the target record of
// the same selection. A selection missing from the target cannot be
// paired and sends the whole group to manual review.
func (p *Planner) planIntoExisting(
	ctx context.Context,
	ds *schema.Dataset,
	grp *schema.ReassignmentGroup,
) {
	tg := ds.Groups[grp.Target]

	var steps []schema.MergeStep
	for _, source := range grp.Sources {
		sg := ds.Groups[source]
		for _, sel := range sg.Selections() {
			srec := sg.Records[sel]
			trec := tg.Records[sel]
			if trec == nil {
				grp.ManualMerge = true
				return
			}
			if srec.ID == trec.ID {
				grp.ManualMerge = true
				return
			}
			surv, cas := srec, trec
			if trec.ID < srec.ID {
				surv, cas = trec, srec
			}
			if !p.mergeable(ctx, cas) {
				grp.ManualMerge = true
				return
			}
			steps = append(steps, schema.MergeStep{
				Survivor:       surv,
				Casualty:       cas,
				CommonNames:    cas.CommonNames,
				AlternateNames: cas.AlternateNames,
			})
		}
	}
	grp.Steps = finalize(steps, grp)
}

// mergeable reports whether a record can be retired without data loss.
// A failed richness lookup counts as unmergeable.
func (p *Planner) mergeable(
	ctx context.Context,
	rec *schema.CatalogRecord,
) bool {
	if p.Catalog == nil {
		return true
	}
	richness, err := p.Catalog.CheckDataRichness(ctx, rec)
	if err != nil {
		return false
	}
	return richness.Empty()
}

// finalize orders the steps by ascending survivor id and enforces the
// retirement invariant: once an id has been retired as a casualty it
// can never serve as a later step's survivor. A violation sends the
// group to manual review.
func finalize(
	steps []schema.MergeStep,
	grp *schema.ReassignmentGroup,
) []schema.MergeStep {
	sort.SliceStable(steps, func(i, j int) bool {
		if steps[i].Survivor.ID != steps[j].Survivor.ID {
			return steps[i].Survivor.ID < steps[j].Survivor.ID
		}
		return steps[i].Casualty.ID < steps[j].Casualty.ID
	})

	retired := make(map[int]bool)
	for i := range steps {
		step := &steps[i]
		if err := step.Validate(); err != nil {
			grp.ManualMerge = true
			return nil
		}
		if retired[step.Survivor.ID] || retired[step.Casualty.ID] {
			grp.ManualMerge = true
			return nil
		}
		retired[step.Casualty.ID] = true
	}
	return steps
}
