package schema_test

import (
	"testing"

	"github.com/gnames/gnrecon/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelections(t *testing.T) {
	g := schema.NewBotanicalGroup("Geranium sanguineum")
	g.Records[schema.NamedSelection("Vision")] = &schema.CatalogRecord{}
	g.Records[schema.TypeSelection()] = &schema.CatalogRecord{}
	g.Records[schema.NamedSelection("Album")] = &schema.CatalogRecord{}

	sels := g.Selections()
	require.Len(t, sels, 3)

	// type entry sorts first, named selections alphabetically
	assert.True(t, sels[0].IsType())
	assert.Equal(t, "Album", sels[1].Name())
	assert.Equal(t, "Vision", sels[2].Name())
}

func TestGroupFullName(t *testing.T) {
	g := schema.NewBotanicalGroup("Geranium oxonianum")
	assert.Equal(t, "Geranium oxonianum", g.FullName())

	g.Records[schema.TypeSelection()] = &schema.CatalogRecord{
		FullName: "Geranium x oxonianum",
	}
	assert.Equal(t, "Geranium x oxonianum", g.FullName())
}

func TestDatasetNames(t *testing.T) {
	ds := schema.NewDataset("Cymbidium")
	for _, name := range []string{
		"Cymbidium insigne",
		"Cymbidium",
		"Cymbidium aloifolium",
	} {
		ds.Group(name)
	}

	assert.Equal(t, []string{
		"Cymbidium",
		"Cymbidium aloifolium",
		"Cymbidium insigne",
	}, ds.Names())
	assert.Equal(t, []string{"Cymbidium"}, ds.GenusNames())
	assert.Equal(t, []string{
		"Cymbidium aloifolium",
		"Cymbidium insigne",
	}, ds.SpeciesNames())
}

func TestDecisionWarn(t *testing.T) {
	var d schema.Decision
	d.Warn("first reason")
	d.Warn("second reason")

	assert.True(t, d.Warning)
	// first reason wins
	assert.Equal(t, "first reason", d.WarningReason)

	d.Reset()
	assert.False(t, d.Warning)
	assert.Empty(t, d.WarningReason)
}

func TestRenameSet(t *testing.T) {
	rs := make(schema.RenameSet)
	assert.False(t, rs.Has("Geranium sanguineum"))
	rs.Add("Geranium sanguineum")
	assert.True(t, rs.Has("Geranium sanguineum"))
}

func TestMergeStepValidate(t *testing.T) {
	rec := func(id int) *schema.CatalogRecord {
		return &schema.CatalogRecord{ID: id}
	}

	tests := []struct {
		msg  string
		step schema.MergeStep
		ok   bool
	}{
		{
			msg:  "survivor older than casualty",
			step: schema.MergeStep{Survivor: rec(7), Casualty: rec(10)},
			ok:   true,
		},
		{
			msg:  "identical ids",
			step: schema.MergeStep{Survivor: rec(7), Casualty: rec(7)},
		},
		{
			msg:  "survivor newer than casualty",
			step: schema.MergeStep{Survivor: rec(10), Casualty: rec(7)},
		},
		{
			msg:  "missing record",
			step: schema.MergeStep{Survivor: rec(7)},
		},
	}

	for _, v := range tests {
		err := v.step.Validate()
		if v.ok {
			assert.NoError(t, err, v.msg)
		} else {
			assert.Error(t, err, v.msg)
		}
	}
}

func TestDataRichnessEmpty(t *testing.T) {
	var nilRichness *schema.DataRichness
	assert.True(t, nilRichness.Empty())
	assert.True(t, (&schema.DataRichness{}).Empty())
	assert.False(t, (&schema.DataRichness{Cards: []string{"Photos"}}).Empty())
}
