package iocatalog

import (
	"bytes"
	"context"
	"strings"

	"github.com/gnames/gnrecon/pkg/schema"
	"golang.org/x/net/html"
)

// CheckDataRichness reports the populated auxiliary data of a record:
// the titles of its cards (field groups) and databoxes (tables). Any
// of either blocks an automatic merge of the record.
func (c *iocatalog) CheckDataRichness(
	ctx context.Context,
	rec *schema.CatalogRecord,
) (*schema.DataRichness, error) {
	doc, err := c.fetchRecordPage(ctx, rec)
	if err != nil {
		return nil, err
	}

	var res schema.DataRichness
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case hasClass(n, "plant-card"):
				if title := headingText(n); title != "" {
					res.Cards = append(res.Cards, title)
				}
			case hasClass(n, "databox"):
				if title := headingText(n); title != "" {
					res.DataBoxes = append(res.DataBoxes, title)
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return &res, nil
}

// HasParentageField reports whether the record's page carries a
// populated parentage row.
func (c *iocatalog) HasParentageField(
	ctx context.Context,
	rec *schema.CatalogRecord,
) (bool, error) {
	doc, err := c.fetchRecordPage(ctx, rec)
	if err != nil {
		return false, err
	}

	var found bool
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		if n.Type == html.ElementNode && n.Data == "tr" {
			cells := rowCells(n)
			if len(cells) >= 2 &&
				strings.EqualFold(cells[0], "parentage") &&
				strings.TrimSpace(cells[1]) != "" {
				found = true
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return found, nil
}

func (c *iocatalog) fetchRecordPage(
	ctx context.Context,
	rec *schema.CatalogRecord,
) (*html.Node, error) {
	body, err := c.client.Get(ctx, rec.URL)
	if err != nil {
		return nil, RecordError(rec.FullName, err)
	}
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, ParseError(rec.FullName, err)
	}
	return doc, nil
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

// headingText returns the first h2/h3/caption text within a node.
func headingText(n *html.Node) string {
	var res string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if res != "" {
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h2", "h3", "caption":
				res = nodeText(n)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return res
}

func rowCells(n *html.Node) []string {
	var cells []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode &&
			(c.Data == "td" || c.Data == "th") {
			cells = append(cells, nodeText(c))
		}
	}
	return cells
}
