package reconciler_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/gnames/gnrecon/pkg/config"
	"github.com/gnames/gnrecon/pkg/gnrecon"
	"github.com/gnames/gnrecon/pkg/reconciler"
	"github.com/gnames/gnrecon/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRef struct {
	taxa   map[string]*schema.ReferenceTaxon
	search map[string]gnrecon.SearchResult
	rows   []schema.ReferenceTaxon
}

func (f *fakeRef) LookupTaxon(
	_ context.Context, name string,
) (*schema.ReferenceTaxon, error) {
	return f.taxa[name], nil
}

func (f *fakeRef) SearchAccepted(
	_ context.Context, name string,
) (gnrecon.SearchResult, error) {
	return f.search[name], nil
}

func (f *fakeRef) LookupSynonyms(
	_ context.Context, _ string,
) ([]string, error) {
	return nil, nil
}

func (f *fakeRef) SnapshotNames(
	_ context.Context,
) ([]schema.ReferenceTaxon, error) {
	return f.rows, nil
}

type fakeCatalog struct {
	gnrecon.WorkingCatalog
	ds *schema.Dataset
}

func (f *fakeCatalog) FetchGenus(
	_ context.Context, _ string,
) (*schema.Dataset, error) {
	return f.ds, nil
}

func (f *fakeCatalog) Search(
	_ context.Context, _ string,
) (map[string]*schema.BotanicalGroup, error) {
	return nil, nil
}

func (f *fakeCatalog) CheckDataRichness(
	_ context.Context, _ *schema.CatalogRecord,
) (*schema.DataRichness, error) {
	return &schema.DataRichness{}, nil
}

func (f *fakeCatalog) HasParentageField(
	_ context.Context, _ *schema.CatalogRecord,
) (bool, error) {
	return false, nil
}

type fakeRegister struct {
	entries map[string]gnrecon.Registration
}

func (f *fakeRegister) Search(
	_ context.Context, genus, grex string,
) (gnrecon.Registration, error) {
	if reg, ok := f.entries[grex]; ok {
		return reg, nil
	}
	return gnrecon.Registration{Genus: genus, Epithet: grex}, nil
}

func addRecord(
	ds *schema.Dataset,
	botName string,
	sel schema.Selection,
	id int,
) *schema.CatalogRecord {
	fullName := botName
	if !sel.IsType() {
		fullName = botName + " " + sel.Name()
	}
	rec := &schema.CatalogRecord{
		FullName:      fullName,
		BotanicalName: botName,
		Selection:     sel,
		ID:            id,
	}
	ds.Group(botName).Records[sel] = rec
	return rec
}

func TestReconcile(t *testing.T) {
	ds := schema.NewDataset("Geranium")
	addRecord(ds, "Geranium pratense", schema.TypeSelection(), 1)
	addRecord(ds, "Geranium versicolor", schema.TypeSelection(), 3)
	addRecord(ds, "Geranium striatum", schema.TypeSelection(), 9)

	ref := &fakeRef{
		taxa: map[string]*schema.ReferenceTaxon{
			"Geranium pratense": {
				Name: "Geranium pratense", Status: "accepted",
			},
			"Geranium versicolor": {
				Name: "Geranium versicolor", Status: "accepted",
			},
			"Geranium striatum": {
				Name: "Geranium striatum", Status: "synonym",
			},
		},
		search: map[string]gnrecon.SearchResult{
			"Geranium striatum": {Name: "Geranium versicolor"},
		},
		rows: []schema.ReferenceTaxon{
			{Name: "Geranium pratense", Status: "accepted"},
			{Name: "Geranium versicolor", Status: "accepted"},
			{Name: "Geranium striatum", Status: "synonym"},
			{Name: "Geranium albanum", Status: "accepted"},
		},
	}

	cfg := *config.New()
	cfg.Match.FuzzyDisabled = true

	var out bytes.Buffer
	rec := reconciler.New(cfg, ref, nil, nil, &fakeCatalog{ds: ds}, &out)

	sum, err := rec.Reconcile(context.Background(), "geranium")
	require.NoError(t, err)

	assert.Equal(t, "Geranium", sum.Genus)
	// the synonym merges into its accepted name
	assert.Equal(t, 1, sum.Merges)
	assert.Equal(t, 0, sum.ManualMerges)
	// the snapshot-only accepted name becomes an addition
	assert.Equal(t, 1, sum.Additions)
	assert.Equal(t, 0, sum.Warnings)
	assert.True(t, sum.ChangesPending)

	report := out.String()
	assert.Contains(
		t, report,
		"merge Geranium striatum [9] -> Geranium versicolor [3]",
	)
	assert.Contains(t, report, "A   Geranium albanum")
	assert.NotContains(t, report, "Geranium pratense")
}

func TestReconcileCleanGenus(t *testing.T) {
	ds := schema.NewDataset("Geranium")
	addRecord(ds, "Geranium pratense", schema.TypeSelection(), 1)

	ref := &fakeRef{
		taxa: map[string]*schema.ReferenceTaxon{
			"Geranium pratense": {
				Name: "Geranium pratense", Status: "accepted",
			},
		},
		rows: []schema.ReferenceTaxon{
			{Name: "Geranium pratense", Status: "accepted"},
		},
	}

	cfg := *config.New()
	cfg.Match.FuzzyDisabled = true

	var out bytes.Buffer
	rec := reconciler.New(cfg, ref, nil, nil, &fakeCatalog{ds: ds}, &out)

	sum, err := rec.Reconcile(context.Background(), "Geranium")
	require.NoError(t, err)

	assert.False(t, sum.ChangesPending)
	assert.Empty(t, out.String())
}

func TestReconcileRegisterPass(t *testing.T) {
	ds := schema.NewDataset("Cymbidium")
	addRecord(
		ds, "Cymbidium", schema.NamedSelection("Sleeping Beauty"), 5,
	)
	addRecord(
		ds, "Cymbidium", schema.NamedSelection("Nowhere"), 6,
	)

	reg := &fakeRegister{
		entries: map[string]gnrecon.Registration{
			"Sleeping Beauty": {
				Matched:      true,
				Genus:        "Cymbidium",
				Epithet:      "Sleeping Beauty",
				PodParent:    [2]string{"Cymbidium", "insigne"},
				PollenParent: [2]string{"Cymbidium", "Sleeping Nymph"},
			},
		},
	}

	cfg := *config.New()
	cfg.Match.FuzzyDisabled = true
	cfg.Reconcile.ParentageCheck = true

	var out bytes.Buffer
	rec := reconciler.New(
		cfg, &fakeRef{}, nil, reg, &fakeCatalog{ds: ds}, &out,
	)

	sum, err := rec.Reconcile(context.Background(), "Cymbidium")
	require.NoError(t, err)

	group := ds.Groups["Cymbidium"]
	matched := group.Records[schema.NamedSelection("Sleeping Beauty")]
	d := matched.Decision
	require.NotNil(t, d.Registered)
	assert.True(t, *d.Registered)
	require.NotNil(t, d.Parentage)
	assert.Equal(
		t,
		"Cymbidium insigne X Sleeping Nymph",
		d.Parentage.Formula,
	)

	missed := group.Records[schema.NamedSelection("Nowhere")]
	require.NotNil(t, missed.Decision.Registered)
	assert.False(t, *missed.Decision.Registered)

	report := out.String()
	assert.Contains(t, report, "MP  Cymbidium Sleeping Beauty")
	assert.Contains(t, report, "NR  Cymbidium Nowhere")
	// the matched grex yields a data update, only the miss warns
	assert.Equal(t, 1, sum.Warnings)
}

func TestFormatParentage(t *testing.T) {
	tests := []struct {
		msg string
		reg gnrecon.Registration
		res *schema.Parentage
	}{
		{
			msg: "species and grex parents",
			reg: gnrecon.Registration{
				PodParent:    [2]string{"Cymbidium", "insigne"},
				PollenParent: [2]string{"Cymbidium", "Sleeping Nymph"},
			},
			res: &schema.Parentage{
				Formula: "Cymbidium insigne X Sleeping Nymph",
			},
		},
		{
			msg: "intergeneric parent",
			reg: gnrecon.Registration{
				PodParent:    [2]string{"Cyperorchis", "elegans"},
				PollenParent: [2]string{"Cymbidium", "Alexanderi"},
			},
			res: &schema.Parentage{
				Formula:      "Cyperorchis elegans X Alexanderi",
				Intergeneric: true,
			},
		},
		{
			msg: "missing parent drops the formula",
			reg: gnrecon.Registration{
				PodParent: [2]string{"Cymbidium", "insigne"},
			},
		},
	}

	for _, v := range tests {
		res := reconciler.FormatParentage("Cymbidium", v.reg)
		if v.res == nil {
			assert.Nil(t, res, v.msg)
			continue
		}
		require.NotNil(t, res, v.msg)
		assert.Equal(t, *v.res, *res, v.msg)
	}
}
