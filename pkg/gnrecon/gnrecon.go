// Package gnrecon defines the contracts between the reconciliation
// engine and its collaborators: the authoritative reference source,
// the secondary checklist, the hybrid register and the working
// catalog. Implementations live under internal/io*.
package gnrecon

import (
	"context"
	"errors"

	"github.com/gnames/gnrecon/pkg/schema"
)

// Version and Build are set by build flags.
var (
	Version = "dev"
	Build   = "n/a"
)

// ErrChangesPending signals a successful run that found changes the
// operator still needs to review or apply. The CLI maps it to a
// distinct exit code.
var ErrChangesPending = errors.New("changes pending")

// SearchResult is the outcome of a remote accepted-name search.
type SearchResult struct {
	// Name is the accepted name the source returned, empty when the
	// search found nothing usable.
	Name string

	// Note carries a diagnostic from the source, such as a warning
	// that the result set looked incomplete.
	Note string
}

// ReferenceSource is the authoritative taxonomic checklist: a local
// snapshot for row lookups plus the source's own search facility.
type ReferenceSource interface {
	// LookupTaxon returns the snapshot row matching a botanical
	// name, or nil when the snapshot has no row for it.
	LookupTaxon(ctx context.Context, name string) (*schema.ReferenceTaxon, error)

	// SearchAccepted queries the source for the accepted name of a
	// (possibly synonymous) botanical name.
	SearchAccepted(ctx context.Context, name string) (SearchResult, error)

	// LookupSynonyms returns the synonyms the source lists for an
	// accepted name, in source order.
	LookupSynonyms(ctx context.Context, name string) ([]string, error)

	// SnapshotNames returns every name in the local snapshot with
	// its status, used by the fuzzy matcher and the
	// missing-accepted-name scan.
	SnapshotNames(ctx context.Context) ([]schema.ReferenceTaxon, error)
}

// SecondaryResult is a secondary source's verdict on a name.
type SecondaryResult struct {
	// Name is the accepted name according to the source; equal to
	// the query when the name stands.
	Name string

	// Status is empty when the source does not know the name;
	// otherwise "Accepted" or "Unplaced".
	Status string

	// Distribution is the natural distribution, empty when none.
	Distribution string

	// Hybrid reports whether the source marks the name as a hybrid.
	Hybrid bool

	// Parentage is the hybrid parentage formula, when published.
	Parentage *schema.Parentage
}

// SecondarySource is a second, independent checklist consulted when
// the authoritative source has no answer.
type SecondarySource interface {
	// LookupTaxon searches the source for a name.
	LookupTaxon(ctx context.Context, name string) (SecondaryResult, error)
}

// Registration is a hybrid register entry for a grex.
type Registration struct {
	Matched bool
	Genus   string
	Epithet string

	// PodParent and PollenParent are (genus, epithet) pairs.
	PodParent    [2]string
	PollenParent [2]string
}

// HybridRegister is the registrar of named hybrid crosses, consulted
// only when orchid extensions are enabled.
type HybridRegister interface {
	// Search looks a grex up by genus and epithet.
	Search(ctx context.Context, genus, grex string) (Registration, error)
}

// WorkingCatalog is the gardening database under reconciliation. The
// engine never mutates it directly; all writes go through the Apply*
// methods, and only when proposing is enabled.
type WorkingCatalog interface {
	// FetchGenus loads every record of a genus.
	FetchGenus(ctx context.Context, genus string) (*schema.Dataset, error)

	// Search finds records by botanical name across the catalog,
	// grouped the same way FetchGenus groups them.
	Search(ctx context.Context, name string) (map[string]*schema.BotanicalGroup, error)

	// CheckDataRichness reports the populated auxiliary data of a
	// record. Merges that would discard any of it go manual.
	CheckDataRichness(ctx context.Context, rec *schema.CatalogRecord) (*schema.DataRichness, error)

	// HasParentageField reports whether a record's parentage field
	// is already populated.
	HasParentageField(ctx context.Context, rec *schema.CatalogRecord) (bool, error)

	// PendingProposals returns pending new-plant proposals keyed by
	// botanical name, with proposal ids as values.
	PendingProposals(ctx context.Context) (map[string]string, error)

	// ApplyRename proposes a name change for a record.
	ApplyRename(ctx context.Context, rec *schema.CatalogRecord, newName, commonName string) error

	// ApplyDataUpdate proposes a parentage update for a record.
	ApplyDataUpdate(ctx context.Context, rec *schema.CatalogRecord, parentage *schema.Parentage) error

	// ApplyMerge proposes merging the casualty into the survivor,
	// carrying over the migrated common names.
	ApplyMerge(ctx context.Context, casualty, survivor *schema.CatalogRecord, commonNames []string) error

	// ApplyCreate proposes a new record and returns its proposal id.
	ApplyCreate(ctx context.Context, name, commonName string) (string, error)

	// ApproveProposal approves an existing new-plant proposal.
	ApproveProposal(ctx context.Context, id string) error
}

// Summary reports the outcome of a reconciliation run.
type Summary struct {
	// Genus is the reconciled genus.
	Genus string

	// Renames, Merges, Additions and Warnings count the respective
	// outcomes of the run.
	Renames   int
	Merges    int
	Additions int
	Warnings  int

	// ManualMerges counts groups flagged for operator review.
	ManualMerges int

	// ChangesPending reports whether at least one unreviewed change
	// remains.
	ChangesPending bool
}

// Reconciler runs the full reconciliation of one genus.
type Reconciler interface {
	// Reconcile loads the genus, classifies and resolves every
	// botanical name, plans merges, scans for missing accepted
	// names, and emits (or applies) the resulting mutations.
	Reconcile(ctx context.Context, genus string) (*Summary, error)
}
