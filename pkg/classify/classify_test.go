package classify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gnames/gnrecon/pkg/classify"
	"github.com/gnames/gnrecon/pkg/gnrecon"
	"github.com/gnames/gnrecon/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCatalog implements gnrecon.WorkingCatalog for parentage checks;
// the other methods are never reached by the classifier.
type fakeCatalog struct {
	gnrecon.WorkingCatalog
	hasParentage bool
	parentageErr error
}

func (f *fakeCatalog) HasParentageField(
	_ context.Context, _ *schema.CatalogRecord,
) (bool, error) {
	return f.hasParentage, f.parentageErr
}

type fakeSecondary struct {
	res gnrecon.SecondaryResult
	err error
}

func (f *fakeSecondary) LookupTaxon(
	_ context.Context, _ string,
) (gnrecon.SecondaryResult, error) {
	return f.res, f.err
}

func newGroup(ds *schema.Dataset, fullName, botName string) *schema.BotanicalGroup {
	g := ds.Group(botName)
	g.Records[schema.TypeSelection()] = &schema.CatalogRecord{
		FullName:      fullName,
		BotanicalName: botName,
	}
	return g
}

func TestHybridStatus(t *testing.T) {
	tests := []struct {
		msg          string
		indicator    string
		remarks      string
		distribution string
		res          classify.HybridFlags
	}{
		{
			msg: "no indication",
		},
		{
			msg:       "indicator only",
			indicator: "hybrid",
			res:       classify.HybridFlags{Hybrid: true},
		},
		{
			msg:          "indicator with distribution",
			indicator:    "hybrid",
			distribution: "Vietnam; China South-Central",
			res:          classify.HybridFlags{Hybrid: true, Natural: true},
		},
		{
			msg:       "questionable indicator",
			indicator: "hybrid?",
			res: classify.HybridFlags{
				Hybrid: true, Questionable: true,
			},
		},
		{
			msg:     "keyword in remarks",
			remarks: "Probably a hybrid between two local species.",
			res:     classify.HybridFlags{Hybrid: true},
		},
		{
			msg:     "misspelt keyword in remarks",
			remarks: "a natural hyrbrid",
			res:     classify.HybridFlags{Hybrid: true},
		},
		{
			msg:          "distribution without hybrid indication",
			distribution: "Mexico",
		},
	}

	for _, v := range tests {
		res := classify.HybridStatus(
			v.indicator, v.remarks, v.distribution,
		)
		assert.Equal(t, v.res, res, v.msg)
	}
}

func TestClassifyDispatch(t *testing.T) {
	ctx := context.Background()
	c := &classify.Classifier{}

	tests := []struct {
		msg     string
		taxon   *schema.ReferenceTaxon
		outcome classify.Outcome
		warning string
	}{
		{
			msg:     "no reference row",
			taxon:   nil,
			outcome: classify.OutcomeNotFound,
		},
		{
			msg:     "synonym defers to the resolver",
			taxon:   &schema.ReferenceTaxon{Status: "synonym"},
			outcome: classify.OutcomeSynonym,
		},
		{
			msg:     "misapplied gets a warning",
			taxon:   &schema.ReferenceTaxon{Status: "misapplied"},
			outcome: classify.OutcomeHandled,
			warning: "Misapplied or ambiguous name",
		},
		{
			msg:     "unknown status gets a warning",
			taxon:   &schema.ReferenceTaxon{Status: "doubtful"},
			outcome: classify.OutcomeHandled,
			warning: "Unknown taxonomic status: doubtful",
		},
	}

	for _, v := range tests {
		ds := schema.NewDataset("Geranium")
		g := newGroup(ds, "Geranium pratense", "Geranium pratense")
		updated := make(schema.RenameSet)

		outcome, err := c.Classify(ctx, ds, g, v.taxon, updated)
		require.NoError(t, err, v.msg)
		assert.Equal(t, v.outcome, outcome, v.msg)

		d := g.Type().Decision
		if v.warning == "" {
			assert.False(t, d.Warning, v.msg)
		} else {
			assert.Equal(t, v.warning, d.WarningReason, v.msg)
		}
	}
}

func TestClassifyNaturalHybrid(t *testing.T) {
	ctx := context.Background()
	c := &classify.Classifier{}

	taxon := &schema.ReferenceTaxon{
		Status:          "accepted",
		HybridIndicator: "hybrid",
		Distribution:    "Europe",
	}

	t.Run("marker missing proposes a rename", func(t *testing.T) {
		ds := schema.NewDataset("Geranium")
		g := newGroup(ds, "Geranium oxonianum", "Geranium oxonianum")
		updated := make(schema.RenameSet)

		outcome, err := c.Classify(ctx, ds, g, taxon, updated)
		require.NoError(t, err)
		assert.Equal(t, classify.OutcomeHandled, outcome)

		d := g.Type().Decision
		assert.True(t, d.NaturalHybrid)
		assert.True(t, d.Changed)
		assert.True(t, d.Rename)
		assert.True(t, d.Accepted)
		assert.Equal(t, "Geranium x oxonianum", d.NewBotName)
		assert.False(t, d.Duplicate)
		assert.True(t, updated.Has("Geranium x oxonianum"))
	})

	t.Run("marker already present", func(t *testing.T) {
		ds := schema.NewDataset("Geranium")
		g := newGroup(
			ds, "Geranium x oxonianum", "Geranium x oxonianum",
		)
		updated := make(schema.RenameSet)

		_, err := c.Classify(ctx, ds, g, taxon, updated)
		require.NoError(t, err)

		d := g.Type().Decision
		assert.True(t, d.NaturalHybrid)
		assert.False(t, d.Changed)
		assert.Empty(t, d.NewBotName)
	})

	t.Run("marked name already in catalog", func(t *testing.T) {
		ds := schema.NewDataset("Geranium")
		newGroup(ds, "Geranium x oxonianum", "Geranium x oxonianum")
		g := newGroup(ds, "Geranium oxonianum", "Geranium oxonianum")
		updated := make(schema.RenameSet)

		_, err := c.Classify(ctx, ds, g, taxon, updated)
		require.NoError(t, err)
		assert.True(t, g.Type().Decision.Duplicate)
	})

	t.Run("hybrid genus needs no marker", func(t *testing.T) {
		hc := &classify.Classifier{GenusHybrid: true}
		ds := schema.NewDataset("Fatshedera")
		g := newGroup(ds, "Fatshedera lizei", "Fatshedera lizei")
		updated := make(schema.RenameSet)

		_, err := hc.Classify(ctx, ds, g, taxon, updated)
		require.NoError(t, err)

		d := g.Type().Decision
		assert.True(t, d.NaturalHybrid)
		assert.False(t, d.Changed)
	})
}

func TestClassifyQuestionableHybrid(t *testing.T) {
	ctx := context.Background()
	c := &classify.Classifier{}
	ds := schema.NewDataset("Geranium")
	g := newGroup(ds, "Geranium monacense", "Geranium monacense")

	taxon := &schema.ReferenceTaxon{
		Status:          "accepted",
		HybridIndicator: "hybrid?",
		Distribution:    "Europe",
	}

	_, err := c.Classify(ctx, ds, g, taxon, make(schema.RenameSet))
	require.NoError(t, err)

	d := g.Type().Decision
	assert.True(t, d.PossibleHybrid)
	assert.False(t, d.NaturalHybrid)
	assert.False(t, d.Changed)
	assert.True(t, d.Accepted)
}

func TestClassifyMarkerWithoutEvidence(t *testing.T) {
	// The catalog says hybrid, the reference row is accepted with no
	// hybrid indication at all: the record keeps its name and is only
	// flagged as not a natural hybrid.
	ctx := context.Background()
	c := &classify.Classifier{}
	ds := schema.NewDataset("Geranium")
	g := newGroup(ds, "Geranium x oxonianum", "Geranium x oxonianum")

	taxon := &schema.ReferenceTaxon{Status: "accepted"}

	_, err := c.Classify(ctx, ds, g, taxon, make(schema.RenameSet))
	require.NoError(t, err)

	d := g.Type().Decision
	assert.True(t, d.NotNaturalHybrid)
	assert.False(t, d.Changed)
	assert.False(t, d.Warning)
	assert.True(t, d.Accepted)
}

func TestClassifySecondaryDistribution(t *testing.T) {
	ctx := context.Background()
	taxon := &schema.ReferenceTaxon{
		Status:          "accepted",
		HybridIndicator: "hybrid",
	}

	t.Run("no secondary source", func(t *testing.T) {
		c := &classify.Classifier{}
		ds := schema.NewDataset("Cymbidium")
		g := newGroup(
			ds, "Cymbidium gammieanum", "Cymbidium gammieanum",
		)

		_, err := c.Classify(ctx, ds, g, taxon, make(schema.RenameSet))
		require.NoError(t, err)
		assert.True(t, g.Type().Decision.NotNaturalHybrid)
	})

	t.Run("secondary reports a distribution", func(t *testing.T) {
		c := &classify.Classifier{
			Secondary: &fakeSecondary{
				res: gnrecon.SecondaryResult{
					Name:         "Cymbidium gammieanum",
					Status:       "Accepted",
					Distribution: "East Himalaya",
					Parentage: &schema.Parentage{
						Formula: "elegans X longifolium",
					},
				},
			},
		}
		ds := schema.NewDataset("Cymbidium")
		g := newGroup(
			ds, "Cymbidium gammieanum", "Cymbidium gammieanum",
		)
		updated := make(schema.RenameSet)

		_, err := c.Classify(ctx, ds, g, taxon, updated)
		require.NoError(t, err)

		d := g.Type().Decision
		assert.True(t, d.NaturalHybrid)
		assert.True(t, d.Changed)
		assert.Equal(t, "Cymbidium x gammieanum", d.NewBotName)
		require.NotNil(t, d.Parentage)
		assert.Equal(t, "elegans X longifolium", d.Parentage.Formula)
	})

	t.Run("secondary knows nothing", func(t *testing.T) {
		c := &classify.Classifier{
			Secondary: &fakeSecondary{},
		}
		ds := schema.NewDataset("Cymbidium")
		g := newGroup(
			ds, "Cymbidium gammieanum", "Cymbidium gammieanum",
		)

		_, err := c.Classify(ctx, ds, g, taxon, make(schema.RenameSet))
		require.NoError(t, err)
		assert.True(t, g.Type().Decision.NotNaturalHybrid)
	})
}

func TestClassifyParentage(t *testing.T) {
	ctx := context.Background()
	taxon := &schema.ReferenceTaxon{
		Status:          "accepted",
		HybridIndicator: "hybrid",
		Distribution:    "Europe",
	}

	t.Run("existing parentage blocks the fill", func(t *testing.T) {
		c := &classify.Classifier{
			Catalog: &fakeCatalog{hasParentage: true},
			Secondary: &fakeSecondary{
				res: gnrecon.SecondaryResult{
					Parentage: &schema.Parentage{Formula: "a X b"},
				},
			},
		}
		ds := schema.NewDataset("Geranium")
		g := newGroup(
			ds, "Geranium x oxonianum", "Geranium x oxonianum",
		)

		_, err := c.Classify(ctx, ds, g, taxon, make(schema.RenameSet))
		require.NoError(t, err)

		d := g.Type().Decision
		assert.True(t, d.ParentageExists)
		assert.Nil(t, d.Parentage)
	})

	t.Run("lookup failure is conservative", func(t *testing.T) {
		c := &classify.Classifier{
			Catalog: &fakeCatalog{
				parentageErr: errors.New("timeout"),
			},
		}
		ds := schema.NewDataset("Geranium")
		g := newGroup(
			ds, "Geranium x oxonianum", "Geranium x oxonianum",
		)

		_, err := c.Classify(ctx, ds, g, taxon, make(schema.RenameSet))
		require.NoError(t, err)

		d := g.Type().Decision
		assert.True(t, d.ParentageExists)
		assert.Equal(
			t, "Could not verify parentage field", d.WarningReason,
		)
	})
}
