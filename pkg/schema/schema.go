// Package schema defines the data model shared by the reconciliation
// engine and its collaborators: catalog records, reference taxa,
// reassignment groups, merge plans and mutation requests.
//
// This is a pure package: no I/O, no external state. All types are
// plain data; behavior is limited to small accessors and invariant
// checks.
package schema

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// HybridToken is the hybrid marker as spelled in the working
	// catalog: a bare "x" between genus and epithet.
	HybridToken = "x"

	// HybridSymbol is the multiplication sign used by reference
	// checklists for the same marker. The two are interchangeable
	// during comparison, never distinct taxa.
	HybridSymbol = "×"
)

// Selection identifies an entry under a botanical name: either the
// unnamed type/species entry itself, or a named clone/cultivar.
// The zero value is the type entry.
type Selection struct {
	name string
}

// TypeSelection returns the Selection denoting the species/type entry.
func TypeSelection() Selection { return Selection{} }

// NamedSelection returns the Selection for a named clone or cultivar.
func NamedSelection(name string) Selection {
	return Selection{name: name}
}

// IsType reports whether s denotes the unnamed type entry.
func (s Selection) IsType() bool { return s.name == "" }

// Name returns the selection name, empty for the type entry.
func (s Selection) Name() string { return s.name }

func (s Selection) String() string {
	if s.IsType() {
		return "<type>"
	}
	return s.name
}

// Parentage is a formatted parentage formula for a hybrid, with a flag
// marking parents from different genera. Catalog rules do not allow
// automatic parentage updates when parents are intergeneric.
type Parentage struct {
	Formula      string
	Intergeneric bool
}

// Decision accumulates the per-record verdicts of a reconciliation
// run. Fields are write-once per pass and reset to defaults before
// each run; they are never raw input.
type Decision struct {
	// Changed is set when the record needs a new botanical name.
	Changed bool

	// Warning marks the record for operator attention. A rename
	// attached to a warning is display-only and never merged.
	Warning       bool
	WarningReason string

	// NewBotName is the proposed botanical name when Changed is set.
	NewBotName string

	// Rename marks an in-place name replacement (misspelling or
	// hybrid-marker fix) rather than a synonym reassignment.
	Rename bool

	// Duplicate is set when NewBotName already exists as a catalog
	// record; a blind overwrite would collide.
	Duplicate bool

	// Accepted is set when the reference lists the name as accepted.
	Accepted bool

	// NaturalHybrid, PossibleHybrid and NotNaturalHybrid capture the
	// hybrid disposition derived from the reference row.
	NaturalHybrid    bool
	PossibleHybrid   bool
	NotNaturalHybrid bool

	// Parentage holds a formula fetched from a secondary source or
	// hybrid register; ParentageExists reports whether the catalog
	// already has one.
	Parentage       *Parentage
	ParentageExists bool

	// Registered reports whether a hybrid (grex) entry was found in
	// the register. Nil until the register pass runs.
	Registered *bool

	// HasQuoteArtifact marks a grex name redundantly wrapped in
	// single quotes; CleanedName is the unwrapped form.
	HasQuoteArtifact bool
	CleanedName      string
}

// Reset restores all decision fields to their defaults. Called at the
// start of every reconciliation run.
func (d *Decision) Reset() {
	*d = Decision{}
}

// Warn sets the warning flag with a reason. The first reason wins;
// later warnings on an already-flagged record are ignored so that the
// root cause is reported.
func (d *Decision) Warn(reason string) {
	if d.Warning {
		return
	}
	d.Warning = true
	d.WarningReason = reason
}

// CatalogRecord is one (botanical name, selection) pair in the working
// catalog.
type CatalogRecord struct {
	// FullName is the display name as the catalog shows it.
	FullName string

	// URL is the catalog page for the record, used by data lookups.
	URL string

	// ID is the external record id. Ids are opaque but ordered:
	// lower ids are older and take precedence in merges.
	ID int

	// BotanicalName and Selection key the record within a dataset.
	BotanicalName string
	Selection     Selection

	// CommonNameIsGenus is set when the record's common name is just
	// the genus and should be replaced.
	CommonNameIsGenus bool

	// CommonNameMissing is set when the record has no common name.
	CommonNameMissing bool

	// CommonNames are the record's existing common names, migrated
	// to the survivor during merges.
	CommonNames []string

	// AlternateNames are additional botanical names already attached
	// to the record, migrated during merges.
	AlternateNames []string

	// Decision collects the verdicts of the current run.
	Decision Decision
}

// BotanicalGroup aggregates every selection under one botanical name.
// Classification operates on groups, not individual records: hybrid
// and acceptance status is a property of the name.
type BotanicalGroup struct {
	// Name is the botanical name keying the group.
	Name string

	// Records maps selections to their catalog records.
	Records map[Selection]*CatalogRecord
}

// NewBotanicalGroup returns an empty group for a botanical name.
func NewBotanicalGroup(name string) *BotanicalGroup {
	return &BotanicalGroup{
		Name:    name,
		Records: make(map[Selection]*CatalogRecord),
	}
}

// Type returns the unnamed type/species record, or nil when the group
// holds only named selections.
func (g *BotanicalGroup) Type() *CatalogRecord {
	return g.Records[TypeSelection()]
}

// FullName returns the display name of the group: the type record's
// full name when present, the group key otherwise.
func (g *BotanicalGroup) FullName() string {
	if rec := g.Type(); rec != nil {
		return rec.FullName
	}
	return g.Name
}

// Each visits the group's records in deterministic selection order.
func (g *BotanicalGroup) Each(fn func(*CatalogRecord)) {
	for _, sel := range g.Selections() {
		fn(g.Records[sel])
	}
}

// Selections returns the group's selection keys sorted by name, the
// type entry first.
func (g *BotanicalGroup) Selections() []Selection {
	res := make([]Selection, 0, len(g.Records))
	for sel := range g.Records {
		res = append(res, sel)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].name < res[j].name
	})
	return res
}

// ResetDecisions restores default decision fields on every record.
func (g *BotanicalGroup) ResetDecisions() {
	for _, rec := range g.Records {
		rec.Decision.Reset()
	}
}

// Dataset is the working catalog's view of one genus: botanical-name
// groups plus the genus-level entries that bucket unregistered-name
// hybrids (grexes).
type Dataset struct {
	// Genus is the genus the dataset was fetched for.
	Genus string

	// Groups maps botanical names to their groups. Genus-level
	// entries (single-word names) are included; their selections are
	// grex/clone names.
	Groups map[string]*BotanicalGroup

	// Additions collects reference-accepted names missing from the
	// catalog, in discovery order.
	Additions []string
}

// NewDataset returns an empty dataset for a genus.
func NewDataset(genus string) *Dataset {
	return &Dataset{
		Genus:  genus,
		Groups: make(map[string]*BotanicalGroup),
	}
}

// Group returns the group for a botanical name, creating it if absent.
func (d *Dataset) Group(name string) *BotanicalGroup {
	g, ok := d.Groups[name]
	if !ok {
		g = NewBotanicalGroup(name)
		d.Groups[name] = g
	}
	return g
}

// Has reports whether a botanical name exists in the dataset.
func (d *Dataset) Has(name string) bool {
	_, ok := d.Groups[name]
	return ok
}

// Names returns all botanical names in lexicographic order. Entries
// are always processed in this order so that multi-run diffs and test
// fixtures stay deterministic.
func (d *Dataset) Names() []string {
	res := make([]string, 0, len(d.Groups))
	for name := range d.Groups {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

// GenusNames returns the single-word (genus-level) names in the
// dataset in lexicographic order.
func (d *Dataset) GenusNames() []string {
	var res []string
	for name := range d.Groups {
		if len(strings.Fields(name)) == 1 {
			res = append(res, name)
		}
	}
	sort.Strings(res)
	return res
}

// SpeciesNames returns the multi-word botanical names in lexicographic
// order, excluding genus-level entries.
func (d *Dataset) SpeciesNames() []string {
	var res []string
	for name := range d.Groups {
		if len(strings.Fields(name)) > 1 {
			res = append(res, name)
		}
	}
	sort.Strings(res)
	return res
}

// RenameSet tracks botanical names already chosen as rename or
// reassignment targets during a run, so later passes do not propose
// them again as missing names.
type RenameSet map[string]struct{}

// Add records a name as an already-used rename target.
func (r RenameSet) Add(name string) {
	r[name] = struct{}{}
}

// Has reports whether a name was already used as a rename target.
func (r RenameSet) Has(name string) bool {
	_, ok := r[name]
	return ok
}

// ReferenceTaxon is one row from the authoritative source. It is used
// only for classification and never mutated.
type ReferenceTaxon struct {
	// Name is the assembled botanical name of the row.
	Name string

	// Status is free text; classification only checks, case
	// insensitively, for "accepted", "synonym", "misapplied" or
	// "ambiguous" within it.
	Status string

	// Distribution is the natural distribution, empty when none is
	// recorded. A hybrid with a distribution is a natural hybrid.
	Distribution string

	// Remarks is free-text taxon remarks, searched for hybrid
	// keywords when no dedicated indicator is present.
	Remarks string

	// HybridIndicator is the dedicated hybrid-indicator field, when
	// the source provides one. A trailing '?' marks a questionable
	// status.
	HybridIndicator string
}

// DataRichness lists the populated auxiliary data of a catalog record:
// cards (field groups) and databoxes (tables). A record with any of
// either cannot be merged away automatically.
type DataRichness struct {
	Cards     []string
	DataBoxes []string
}

// Empty reports whether the record carries no auxiliary data.
func (d *DataRichness) Empty() bool {
	return d == nil || (len(d.Cards) == 0 && len(d.DataBoxes) == 0)
}

// MergeStep is one ordered survivor/casualty pair of a merge plan,
// with the non-destructive data migrated from casualty to survivor
// before the casualty is retired.
type MergeStep struct {
	Survivor *CatalogRecord
	Casualty *CatalogRecord

	// CommonNames and AlternateNames are copied from the casualty to
	// the survivor as part of the step.
	CommonNames    []string
	AlternateNames []string
}

// Validate checks the step's id invariant: the survivor must be the
// older (lower-id) record, and the two ids must differ.
func (m *MergeStep) Validate() error {
	if m.Survivor == nil || m.Casualty == nil {
		return fmt.Errorf("merge step with missing record")
	}
	if m.Survivor.ID == m.Casualty.ID {
		return fmt.Errorf(
			"merge step with identical ids: %d", m.Survivor.ID,
		)
	}
	if m.Survivor.ID > m.Casualty.ID {
		return fmt.Errorf(
			"merge step survivor %d newer than casualty %d",
			m.Survivor.ID, m.Casualty.ID,
		)
	}
	return nil
}

// ReassignmentGroup collects the source botanical names whose records
// must merge into one target name, together with the computed plan or
// the manual-intervention flag.
type ReassignmentGroup struct {
	// Target is the botanical name the sources reassign to.
	Target string

	// Sources are the botanical names merging into Target, sorted.
	Sources []string

	// TargetMissing is set when Target has no catalog record yet and
	// the oldest grouped record is promoted to be the target.
	TargetMissing bool

	// ManualMerge is set whenever automatic merging risks data loss
	// or ordering is ambiguous. Never resolved automatically.
	ManualMerge bool

	// Steps is the ordered merge plan, empty when ManualMerge is set.
	Steps []MergeStep
}

// MutationKind enumerates the mutation requests the engine can emit.
type MutationKind int

const (
	// MutationRename replaces or reassigns a record's botanical name.
	MutationRename MutationKind = iota

	// MutationUpdateData fills a record's parentage field.
	MutationUpdateData

	// MutationMerge retires a casualty record into a survivor.
	MutationMerge

	// MutationCreate adds a missing accepted name to the catalog.
	MutationCreate

	// MutationApprove approves an existing new-plant proposal
	// instead of filing a duplicate one.
	MutationApprove
)

func (k MutationKind) String() string {
	switch k {
	case MutationRename:
		return "rename"
	case MutationUpdateData:
		return "update-data"
	case MutationMerge:
		return "merge"
	case MutationCreate:
		return "create"
	case MutationApprove:
		return "approve"
	default:
		return "unknown"
	}
}

// Mutation is one discrete request to the working-catalog
// collaborator. The proposer emits mutations in order; it never makes
// decisions of its own.
type Mutation struct {
	Kind MutationKind

	// Record is the subject for renames and data updates.
	Record *CatalogRecord

	// NewName is the botanical name for renames and creates.
	NewName string

	// CommonName is the common name to set or carry over.
	CommonName string

	// Parentage is the formula for data updates.
	Parentage *Parentage

	// Survivor and Casualty are set for merges.
	Survivor *CatalogRecord
	Casualty *CatalogRecord

	// MigratedCommonNames are carried casualty common names.
	MigratedCommonNames []string

	// ProposalID identifies an existing proposal for approvals.
	ProposalID string
}
