// Package propose translates reconciliation decisions into ordered
// mutation requests and a status-coded report. It contains no decision
// logic of its own: every verdict was made upstream, and the proposer
// only renders and forwards it.
//
// Report codes:
//
//	W   warning, operator attention needed
//	NH  hybrid marker present but not a natural hybrid
//	PH  possibly a natural hybrid
//	MP  natural hybrid with an empty parentage field
//	CN  common name is just the genus
//	MC  common name missing
//	M   merge needs manual intervention
//	Q   grex name wrapped in redundant quotes
//	NR  grex not found in the hybrid register
//	A   accepted name missing from the catalog
package propose

import (
	"context"
	"fmt"
	"io"

	"github.com/gnames/gnrecon/pkg/gnrecon"
	"github.com/gnames/gnrecon/pkg/schema"
)

// Proposer renders decisions and, when enabled, applies the resulting
// mutations to the working catalog.
type Proposer struct {
	Catalog gnrecon.WorkingCatalog

	// Out receives the status-coded report.
	Out io.Writer

	// CommonName, when set, is applied to records with a missing or
	// genus-only common name.
	CommonName string

	// Apply submits mutations to the catalog. When false the run is
	// report-only.
	Apply bool

	// Existing checks pending new-plant proposals before proposing
	// additions.
	Existing bool
}

// Process renders the report for a reconciled dataset, builds the
// mutation list, and applies it when enabled. The returned summary
// carries the per-kind counts.
func (p *Proposer) Process(
	ctx context.Context,
	ds *schema.Dataset,
	groups []*schema.ReassignmentGroup,
) (*gnrecon.Summary, error) {
	sum := &gnrecon.Summary{Genus: ds.Genus}

	merging := make(map[string]bool)
	for _, grp := range groups {
		merging[grp.Target] = true
		for _, src := range grp.Sources {
			merging[src] = true
		}
	}

	var muts []schema.Mutation
	for _, name := range ds.Names() {
		ds.Groups[name].Each(func(rec *schema.CatalogRecord) {
			muts = append(
				muts, p.recordMutations(rec, merging[name], sum)...,
			)
		})
	}

	muts = append(muts, p.mergeMutations(groups, sum)...)

	addMuts, err := p.additionMutations(ctx, ds, sum)
	if err != nil {
		return sum, err
	}
	muts = append(muts, addMuts...)

	sum.ChangesPending = len(muts) > 0 || sum.ManualMerges > 0

	if p.Apply {
		if err := p.apply(ctx, muts); err != nil {
			return sum, err
		}
	}
	return sum, nil
}

// recordMutations renders one record's decision and emits its
// mutations. Records participating in a merge group are reported and
// mutated at the group level instead.
func (p *Proposer) recordMutations(
	rec *schema.CatalogRecord,
	inMerge bool,
	sum *gnrecon.Summary,
) []schema.Mutation {
	d := &rec.Decision

	if d.Warning {
		sum.Warnings++
		if d.NewBotName != "" {
			p.line("W", "%s -> %s (%s)",
				rec.FullName, d.NewBotName, d.WarningReason)
		} else {
			p.line("W", "%s (%s)", rec.FullName, d.WarningReason)
		}
		return nil
	}

	var muts []schema.Mutation

	if d.NotNaturalHybrid {
		sum.Warnings++
		p.line("NH", "%s", rec.FullName)
	}
	if d.PossibleHybrid {
		sum.Warnings++
		p.line("PH", "%s", rec.FullName)
	}

	if d.Changed && d.NewBotName != "" {
		if inMerge {
			return nil
		}
		sum.Renames++
		p.line("", "%s -> %s", rec.FullName, d.NewBotName)
		muts = append(muts, schema.Mutation{
			Kind:       schema.MutationRename,
			Record:     rec,
			NewName:    d.NewBotName,
			CommonName: p.commonNameFix(rec),
		})
		return muts
	}

	registered := d.Registered != nil && *d.Registered
	if !d.ParentageExists &&
		(d.NaturalHybrid || registered || d.Parentage != nil) {
		p.line("MP", "%s", rec.FullName)
		if d.Parentage != nil && !d.Parentage.Intergeneric {
			muts = append(muts, schema.Mutation{
				Kind:      schema.MutationUpdateData,
				Record:    rec,
				Parentage: d.Parentage,
			})
		} else {
			// No formula, or intergeneric parents: catalog rules
			// require a manual parentage entry.
			sum.Warnings++
		}
	}

	if d.HasQuoteArtifact && d.CleanedName != "" {
		sum.Renames++
		p.line("Q", "%s -> %s", rec.FullName, d.CleanedName)
		muts = append(muts, schema.Mutation{
			Kind:       schema.MutationRename,
			Record:     rec,
			NewName:    d.CleanedName,
			CommonName: p.commonNameFix(rec),
		})
	}

	if d.Registered != nil && !*d.Registered {
		sum.Warnings++
		p.line("NR", "%s", rec.FullName)
	}

	if cn := p.commonNameFix(rec); cn != "" && len(muts) == 0 {
		if rec.CommonNameIsGenus {
			p.line("CN", "%s", rec.FullName)
		} else {
			p.line("MC", "%s", rec.FullName)
		}
		sum.Renames++
		muts = append(muts, schema.Mutation{
			Kind:       schema.MutationRename,
			Record:     rec,
			NewName:    rec.BotanicalName,
			CommonName: cn,
		})
	}

	return muts
}

// commonNameFix returns the common name to set on a record during its
// next rename, empty when nothing needs fixing.
func (p *Proposer) commonNameFix(rec *schema.CatalogRecord) string {
	if p.CommonName == "" {
		return ""
	}
	if rec.CommonNameIsGenus || rec.CommonNameMissing {
		return p.CommonName
	}
	return ""
}

// mergeMutations renders the merge plans. Manual groups are reported
// and counted; automatic groups become ordered merge mutations.
func (p *Proposer) mergeMutations(
	groups []*schema.ReassignmentGroup,
	sum *gnrecon.Summary,
) []schema.Mutation {
	var muts []schema.Mutation
	for _, grp := range groups {
		if grp.ManualMerge {
			sum.ManualMerges++
			for _, src := range grp.Sources {
				p.line("M", "%s -> %s", src, grp.Target)
			}
			continue
		}
		for i := range grp.Steps {
			step := &grp.Steps[i]
			sum.Merges++
			p.line("", "merge %s [%d] -> %s [%d]",
				step.Casualty.FullName, step.Casualty.ID,
				step.Survivor.FullName, step.Survivor.ID)
			muts = append(muts, schema.Mutation{
				Kind:                schema.MutationMerge,
				Survivor:            step.Survivor,
				Casualty:            step.Casualty,
				MigratedCommonNames: step.CommonNames,
			})
		}
	}
	return muts
}

// additionMutations renders the missing accepted names. With pending
// proposal checking enabled, a name that already has a proposal is
// approved instead of re-proposed.
func (p *Proposer) additionMutations(
	ctx context.Context,
	ds *schema.Dataset,
	sum *gnrecon.Summary,
) ([]schema.Mutation, error) {
	if len(ds.Additions) == 0 {
		return nil, nil
	}

	var pending map[string]string
	if p.Existing {
		var err error
		pending, err = p.Catalog.PendingProposals(ctx)
		if err != nil {
			if p.Apply {
				return nil, err
			}
			// Report-only runs lose just the pending-proposal
			// annotation.
			pending = nil
		}
	}

	var muts []schema.Mutation
	for _, name := range ds.Additions {
		sum.Additions++
		if id, ok := pending[name]; ok {
			p.line("A", "%s (pending proposal %s)", name, id)
			muts = append(muts, schema.Mutation{
				Kind:       schema.MutationApprove,
				NewName:    name,
				ProposalID: id,
			})
			continue
		}
		p.line("A", "%s", name)
		muts = append(muts, schema.Mutation{
			Kind:       schema.MutationCreate,
			NewName:    name,
			CommonName: p.CommonName,
		})
	}
	return muts, nil
}

// apply submits the mutations in order. The first failure aborts;
// every mutation before it has already been applied.
func (p *Proposer) apply(ctx context.Context, muts []schema.Mutation) error {
	for i := range muts {
		m := &muts[i]
		var err error
		switch m.Kind {
		case schema.MutationRename:
			err = p.Catalog.ApplyRename(
				ctx, m.Record, m.NewName, m.CommonName,
			)
		case schema.MutationUpdateData:
			err = p.Catalog.ApplyDataUpdate(ctx, m.Record, m.Parentage)
		case schema.MutationMerge:
			err = p.Catalog.ApplyMerge(
				ctx, m.Casualty, m.Survivor, m.MigratedCommonNames,
			)
		case schema.MutationCreate:
			_, err = p.Catalog.ApplyCreate(ctx, m.NewName, m.CommonName)
		case schema.MutationApprove:
			err = p.Catalog.ApproveProposal(ctx, m.ProposalID)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Proposer) line(code, format string, args ...any) {
	if p.Out == nil {
		return
	}
	text := fmt.Sprintf(format, args...)
	fmt.Fprintf(p.Out, "%-4s%s\n", code, text)
}
