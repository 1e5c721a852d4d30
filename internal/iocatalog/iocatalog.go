// Package iocatalog implements the working catalog collaborator over
// the catalog's web application: HTML listings for reads and proposal
// forms for writes. Every write is a proposal; nothing is changed in
// place.
package iocatalog

import (
	"context"
	"fmt"
	"net/url"

	"github.com/gnames/gnrecon/internal/iohttp"
	"github.com/gnames/gnrecon/pkg/gnrecon"
	"github.com/gnames/gnrecon/pkg/schema"
)

type iocatalog struct {
	client  *iohttp.Client
	baseURL string
}

// New creates the catalog collaborator for a base URL.
func New(client *iohttp.Client, baseURL string) gnrecon.WorkingCatalog {
	return &iocatalog{client: client, baseURL: baseURL}
}

// FetchGenus loads every record of a genus, grouped by botanical name.
func (c *iocatalog) FetchGenus(
	ctx context.Context,
	genus string,
) (*schema.Dataset, error) {
	listURL := fmt.Sprintf(
		"%s/plants/group/%s/", c.baseURL, url.PathEscape(genus),
	)
	body, err := c.client.Get(ctx, listURL)
	if err != nil {
		return nil, FetchError(genus, err)
	}

	recs, err := parseListing(body, c.baseURL, genus)
	if err != nil {
		return nil, ParseError(genus, err)
	}

	ds := schema.NewDataset(genus)
	for _, rec := range recs {
		group := ds.Group(rec.BotanicalName)
		if _, ok := group.Records[rec.Selection]; !ok {
			group.Records[rec.Selection] = rec
		}
	}
	return ds, nil
}

// Search finds records by botanical name across the whole catalog.
func (c *iocatalog) Search(
	ctx context.Context,
	name string,
) (map[string]*schema.BotanicalGroup, error) {
	searchURL := fmt.Sprintf(
		"%s/plants/search/text/?q=%s",
		c.baseURL, url.QueryEscape(name),
	)
	body, err := c.client.Get(ctx, searchURL)
	if err != nil {
		return nil, SearchError(name, err)
	}

	recs, err := parseListing(body, c.baseURL, "")
	if err != nil {
		return nil, ParseError(name, err)
	}

	res := make(map[string]*schema.BotanicalGroup)
	for _, rec := range recs {
		group, ok := res[rec.BotanicalName]
		if !ok {
			group = schema.NewBotanicalGroup(rec.BotanicalName)
			res[rec.BotanicalName] = group
		}
		if _, ok := group.Records[rec.Selection]; !ok {
			group.Records[rec.Selection] = rec
		}
	}
	return res, nil
}
