package plan_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gnames/gnrecon/pkg/gnrecon"
	"github.com/gnames/gnrecon/pkg/plan"
	"github.com/gnames/gnrecon/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	gnrecon.WorkingCatalog

	// rich lists record ids whose pages carry auxiliary data
	rich map[int]bool
	err  error
}

func (f *fakeCatalog) CheckDataRichness(
	_ context.Context, rec *schema.CatalogRecord,
) (*schema.DataRichness, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.rich[rec.ID] {
		return &schema.DataRichness{Cards: []string{"Photos"}}, nil
	}
	return &schema.DataRichness{}, nil
}

// addRecord creates a record with a uniform reassignment decision.
func addRecord(
	ds *schema.Dataset,
	botName string,
	sel schema.Selection,
	id int,
	newName string,
) *schema.CatalogRecord {
	rec := &schema.CatalogRecord{
		FullName:      botName,
		BotanicalName: botName,
		Selection:     sel,
		ID:            id,
	}
	if newName != "" {
		rec.Decision.Changed = true
		rec.Decision.NewBotName = newName
	}
	ds.Group(botName).Records[sel] = rec
	return rec
}

func TestPlanTargetMissing(t *testing.T) {
	// two synonyms converge on an accepted name the catalog lacks: the
	// oldest record is promoted, the other merges into it
	p := &plan.Planner{}
	ds := schema.NewDataset("Geranium")
	addRecord(ds, "Geranium himalayense", schema.TypeSelection(), 10,
		"Geranium grandiflorum")
	addRecord(ds, "Geranium meeboldii", schema.TypeSelection(), 7,
		"Geranium grandiflorum")

	groups, err := p.Plan(context.Background(), ds)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	grp := groups[0]
	assert.Equal(t, "Geranium grandiflorum", grp.Target)
	assert.Equal(t, []string{
		"Geranium himalayense", "Geranium meeboldii",
	}, grp.Sources)
	assert.True(t, grp.TargetMissing)
	assert.False(t, grp.ManualMerge)

	require.Len(t, grp.Steps, 1)
	assert.Equal(t, 7, grp.Steps[0].Survivor.ID)
	assert.Equal(t, 10, grp.Steps[0].Casualty.ID)
}

func TestPlanIntoExisting(t *testing.T) {
	p := &plan.Planner{}

	t.Run("lower id survives", func(t *testing.T) {
		ds := schema.NewDataset("Geranium")
		addRecord(ds, "Geranium versicolor", schema.TypeSelection(),
			3, "")
		addRecord(ds, "Geranium striatum", schema.TypeSelection(),
			9, "Geranium versicolor")

		groups, err := p.Plan(context.Background(), ds)
		require.NoError(t, err)
		require.Len(t, groups, 1)

		grp := groups[0]
		assert.False(t, grp.TargetMissing)
		require.Len(t, grp.Steps, 1)
		assert.Equal(t, 3, grp.Steps[0].Survivor.ID)
		assert.Equal(t, 9, grp.Steps[0].Casualty.ID)
	})

	t.Run("newer target still loses to older source", func(t *testing.T) {
		ds := schema.NewDataset("Geranium")
		addRecord(ds, "Geranium versicolor", schema.TypeSelection(),
			9, "")
		addRecord(ds, "Geranium striatum", schema.TypeSelection(),
			3, "Geranium versicolor")

		groups, err := p.Plan(context.Background(), ds)
		require.NoError(t, err)
		require.Len(t, groups, 1)

		grp := groups[0]
		require.Len(t, grp.Steps, 1)
		assert.Equal(t, 3, grp.Steps[0].Survivor.ID)
		assert.Equal(t, 9, grp.Steps[0].Casualty.ID)
	})

	t.Run("unpaired selection goes manual", func(t *testing.T) {
		ds := schema.NewDataset("Geranium")
		addRecord(ds, "Geranium versicolor", schema.TypeSelection(),
			3, "")
		addRecord(ds, "Geranium striatum",
			schema.NamedSelection("Album"), 9,
			"Geranium versicolor")

		groups, err := p.Plan(context.Background(), ds)
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.True(t, groups[0].ManualMerge)
		assert.Empty(t, groups[0].Steps)
	})
}

func TestPlanSkips(t *testing.T) {
	p := &plan.Planner{}
	ds := schema.NewDataset("Geranium")

	// a plain rename into a free name needs no merge
	addRecord(ds, "Geranium striatum", schema.TypeSelection(), 9,
		"Geranium versicolor")
	// a warning-flagged rename is display-only
	warned := addRecord(ds, "Geranium dubium", schema.TypeSelection(),
		11, "Geranium phaeum")
	warned.Decision.Warn("Taxon is unplaced")
	// an unchanged record contributes nothing
	addRecord(ds, "Geranium pratense", schema.TypeSelection(), 12, "")

	groups, err := p.Plan(context.Background(), ds)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestPlanDataRichness(t *testing.T) {
	t.Run("rich casualty goes manual", func(t *testing.T) {
		p := &plan.Planner{
			Catalog: &fakeCatalog{rich: map[int]bool{9: true}},
		}
		ds := schema.NewDataset("Geranium")
		addRecord(ds, "Geranium versicolor", schema.TypeSelection(),
			3, "")
		addRecord(ds, "Geranium striatum", schema.TypeSelection(),
			9, "Geranium versicolor")

		groups, err := p.Plan(context.Background(), ds)
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.True(t, groups[0].ManualMerge)
	})

	t.Run("richness lookup failure goes manual", func(t *testing.T) {
		p := &plan.Planner{
			Catalog: &fakeCatalog{err: errors.New("timeout")},
		}
		ds := schema.NewDataset("Geranium")
		addRecord(ds, "Geranium versicolor", schema.TypeSelection(),
			3, "")
		addRecord(ds, "Geranium striatum", schema.TypeSelection(),
			9, "Geranium versicolor")

		groups, err := p.Plan(context.Background(), ds)
		require.NoError(t, err)
		require.Len(t, groups, 1)
		assert.True(t, groups[0].ManualMerge)
	})
}

func TestPlanCommonNameMigration(t *testing.T) {
	p := &plan.Planner{}
	ds := schema.NewDataset("Geranium")
	addRecord(ds, "Geranium versicolor", schema.TypeSelection(), 3, "")
	cas := addRecord(ds, "Geranium striatum", schema.TypeSelection(),
		9, "Geranium versicolor")
	cas.CommonNames = []string{"Cranesbill"}
	cas.AlternateNames = []string{"Geranium striatum hort."}

	groups, err := p.Plan(context.Background(), ds)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Steps, 1)

	step := groups[0].Steps[0]
	assert.Equal(t, []string{"Cranesbill"}, step.CommonNames)
	assert.Equal(
		t, []string{"Geranium striatum hort."}, step.AlternateNames,
	)
}
