package resolve_test

import (
	"context"
	"testing"

	"github.com/gnames/gnrecon/pkg/gnrecon"
	"github.com/gnames/gnrecon/pkg/resolve"
	"github.com/gnames/gnrecon/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRef struct {
	search map[string]gnrecon.SearchResult
	rows   []schema.ReferenceTaxon
}

func (f *fakeRef) LookupTaxon(
	_ context.Context, _ string,
) (*schema.ReferenceTaxon, error) {
	return nil, nil
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

type fakeSecondary struct {
	res gnrecon.SecondaryResult
}

func (f *fakeSecondary) LookupTaxon(
	_ context.Context, _ string,
) (gnrecon.SecondaryResult, error) {
	return f.res, nil
}

type fakeCatalog struct {
	gnrecon.WorkingCatalog
	found map[string]map[string]*schema.BotanicalGroup
}

func (f *fakeCatalog) Search(
	_ context.Context, name string,
) (map[string]*schema.BotanicalGroup, error) {
	return f.found[name], nil
}

func newGroup(ds *schema.Dataset, fullName, botName string) *schema.BotanicalGroup {
	g := ds.Group(botName)
	g.Records[schema.TypeSelection()] = &schema.CatalogRecord{
		FullName:      fullName,
		BotanicalName: botName,
	}
	return g
}

func TestResolveEcho(t *testing.T) {
	r := &resolve.Resolver{
		Reference: &fakeRef{
			search: map[string]gnrecon.SearchResult{
				"Geranium sanguineum": {Name: "Geranium sanguineum"},
			},
		},
		FuzzyDisabled: true,
	}
	ds := schema.NewDataset("Geranium")
	g := newGroup(ds, "Geranium sanguineum", "Geranium sanguineum")

	err := r.Resolve(context.Background(), ds, g, make(schema.RenameSet))
	require.NoError(t, err)

	d := g.Type().Decision
	assert.True(t, d.Accepted)
	assert.False(t, d.Changed)
}

func TestResolveSuperstring(t *testing.T) {
	// The reference returns a longer name containing the query: the
	// reference may simply be incomplete, so no reassignment happens.
	r := &resolve.Resolver{
		Reference: &fakeRef{
			search: map[string]gnrecon.SearchResult{
				"Cymbidium iridioides": {
					Name: "Cymbidium iridioides var. album",
				},
			},
		},
		FuzzyDisabled: true,
	}
	ds := schema.NewDataset("Cymbidium")
	g := newGroup(ds, "Cymbidium iridioides", "Cymbidium iridioides")

	err := r.Resolve(context.Background(), ds, g, make(schema.RenameSet))
	require.NoError(t, err)

	d := g.Type().Decision
	assert.False(t, d.Changed)
	assert.True(t, d.Warning)
	assert.Contains(t, d.WarningReason, "may be incomplete")
}

func TestResolveSynonym(t *testing.T) {
	r := &resolve.Resolver{
		Reference: &fakeRef{
			search: map[string]gnrecon.SearchResult{
				"Geranium striatum": {Name: "Geranium versicolor"},
			},
		},
		FuzzyDisabled: true,
	}

	t.Run("replacement not in catalog", func(t *testing.T) {
		ds := schema.NewDataset("Geranium")
		g := newGroup(ds, "Geranium striatum", "Geranium striatum")

		err := r.Resolve(
			context.Background(), ds, g, make(schema.RenameSet),
		)
		require.NoError(t, err)

		d := g.Type().Decision
		assert.True(t, d.Changed)
		assert.Equal(t, "Geranium versicolor", d.NewBotName)
		assert.False(t, d.Duplicate)
		assert.False(t, d.Warning)
	})

	t.Run("replacement already in catalog", func(t *testing.T) {
		ds := schema.NewDataset("Geranium")
		newGroup(ds, "Geranium versicolor", "Geranium versicolor")
		g := newGroup(ds, "Geranium striatum", "Geranium striatum")

		err := r.Resolve(
			context.Background(), ds, g, make(schema.RenameSet),
		)
		require.NoError(t, err)
		assert.True(t, g.Type().Decision.Duplicate)
	})

	t.Run("hybrid marker contradicts synonymy", func(t *testing.T) {
		rh := &resolve.Resolver{
			Reference: &fakeRef{
				search: map[string]gnrecon.SearchResult{
					"Geranium striatum": {
						Name: "Geranium versicolor",
					},
				},
			},
			FuzzyDisabled: true,
		}
		ds := schema.NewDataset("Geranium")
		g := newGroup(
			ds, "Geranium x striatum", "Geranium x striatum",
		)

		err := rh.Resolve(
			context.Background(), ds, g, make(schema.RenameSet),
		)
		require.NoError(t, err)

		d := g.Type().Decision
		assert.True(t, d.Changed)
		assert.True(t, d.Warning)
		assert.Contains(t, d.WarningReason, "natural hybrid")
	})
}

func TestResolveCrossGenusDuplicate(t *testing.T) {
	adopted := schema.NewBotanicalGroup("Pelargonium australe")
	adopted.Records[schema.TypeSelection()] = &schema.CatalogRecord{
		FullName:      "Pelargonium australe",
		BotanicalName: "Pelargonium australe",
		ID:            42,
	}

	r := &resolve.Resolver{
		Reference: &fakeRef{
			search: map[string]gnrecon.SearchResult{
				"Geranium australe": {Name: "Pelargonium australe"},
			},
		},
		Catalog: &fakeCatalog{
			found: map[string]map[string]*schema.BotanicalGroup{
				"Pelargonium australe": {
					"Pelargonium australe": adopted,
				},
			},
		},
		FuzzyDisabled: true,
	}
	ds := schema.NewDataset("Geranium")
	g := newGroup(ds, "Geranium australe", "Geranium australe")

	err := r.Resolve(context.Background(), ds, g, make(schema.RenameSet))
	require.NoError(t, err)

	d := g.Type().Decision
	assert.True(t, d.Changed)
	assert.True(t, d.Duplicate)
	// the foreign group joins the dataset for merge planning
	assert.True(t, ds.Has("Pelargonium australe"))
}

func TestResolveTypeVariety(t *testing.T) {
	r := &resolve.Resolver{
		Reference: &fakeRef{
			search: map[string]gnrecon.SearchResult{
				"Cymbidium insigne": {Name: "Cymbidium insigne"},
			},
		},
		FuzzyDisabled: true,
	}
	ds := schema.NewDataset("Cymbidium")
	g := newGroup(
		ds,
		"Cymbidium insigne var. insigne",
		"Cymbidium insigne var. insigne",
	)
	updated := make(schema.RenameSet)

	err := r.Resolve(context.Background(), ds, g, updated)
	require.NoError(t, err)

	d := g.Type().Decision
	assert.True(t, d.Changed)
	assert.Equal(t, "Cymbidium insigne", d.NewBotName)
	assert.True(t, updated.Has("Cymbidium insigne"))
}

func TestResolveSecondary(t *testing.T) {
	emptyRef := &fakeRef{}

	t.Run("reassignment from secondary", func(t *testing.T) {
		r := &resolve.Resolver{
			Reference: emptyRef,
			Secondary: &fakeSecondary{
				res: gnrecon.SecondaryResult{
					Name:   "Cymbidium aloifolium",
					Status: "Accepted",
				},
			},
			FuzzyDisabled: true,
		}
		ds := schema.NewDataset("Cymbidium")
		g := newGroup(
			ds, "Cymbidium pendulum", "Cymbidium pendulum",
		)
		updated := make(schema.RenameSet)

		err := r.Resolve(context.Background(), ds, g, updated)
		require.NoError(t, err)

		d := g.Type().Decision
		assert.True(t, d.Changed)
		assert.Equal(t, "Cymbidium aloifolium", d.NewBotName)
		assert.True(t, updated.Has("Cymbidium aloifolium"))
	})

	t.Run("unplaced taxon keeps its name", func(t *testing.T) {
		r := &resolve.Resolver{
			Reference: emptyRef,
			Secondary: &fakeSecondary{
				res: gnrecon.SecondaryResult{
					Name:   "Cymbidium pendulum",
					Status: "Unplaced",
				},
			},
			FuzzyDisabled: true,
		}
		ds := schema.NewDataset("Cymbidium")
		g := newGroup(
			ds, "Cymbidium pendulum", "Cymbidium pendulum",
		)

		err := r.Resolve(
			context.Background(), ds, g, make(schema.RenameSet),
		)
		require.NoError(t, err)

		d := g.Type().Decision
		assert.False(t, d.Changed)
		assert.Equal(t, "Taxon is unplaced", d.WarningReason)
	})
}

func TestResolveFuzzy(t *testing.T) {
	t.Run("misspelling fixed from the snapshot", func(t *testing.T) {
		r := &resolve.Resolver{
			Reference: &fakeRef{
				rows: []schema.ReferenceTaxon{
					{Name: "Geranium sanguineum", Status: "accepted"},
					{Name: "Geranium pratense", Status: "accepted"},
				},
			},
		}
		ds := schema.NewDataset("Geranium")
		g := newGroup(
			ds, "Geranium sanguinium", "Geranium sanguinium",
		)
		updated := make(schema.RenameSet)

		err := r.Resolve(context.Background(), ds, g, updated)
		require.NoError(t, err)

		d := g.Type().Decision
		assert.True(t, d.Changed)
		assert.True(t, d.Rename)
		assert.Equal(t, "Geranium sanguineum", d.NewBotName)
		assert.False(t, d.Warning)
		assert.True(t, updated.Has("Geranium sanguineum"))
	})

	t.Run("match on a synonym row warns", func(t *testing.T) {
		r := &resolve.Resolver{
			Reference: &fakeRef{
				rows: []schema.ReferenceTaxon{
					{Name: "Geranium sanguineum", Status: "synonym"},
				},
			},
		}
		ds := schema.NewDataset("Geranium")
		g := newGroup(
			ds, "Geranium sanguinium", "Geranium sanguinium",
		)

		err := r.Resolve(
			context.Background(), ds, g, make(schema.RenameSet),
		)
		require.NoError(t, err)

		d := g.Type().Decision
		assert.True(t, d.Changed)
		assert.Contains(t, d.WarningReason, "synonym in the reference")
	})

	t.Run("disabled fallback warns instead", func(t *testing.T) {
		r := &resolve.Resolver{
			Reference: &fakeRef{
				rows: []schema.ReferenceTaxon{
					{Name: "Geranium sanguineum", Status: "accepted"},
				},
			},
			FuzzyDisabled: true,
		}
		ds := schema.NewDataset("Geranium")
		g := newGroup(
			ds, "Geranium sanguinium", "Geranium sanguinium",
		)

		err := r.Resolve(
			context.Background(), ds, g, make(schema.RenameSet),
		)
		require.NoError(t, err)

		d := g.Type().Decision
		assert.False(t, d.Changed)
		assert.Equal(
			t, "Not present in online sources", d.WarningReason,
		)
	})
}
