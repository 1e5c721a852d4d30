package iocatalog

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/gnames/gnrecon/pkg/schema"
	"golang.org/x/net/html"
)

var reProposalPath = regexp.MustCompile(`/plants/proposals/(\d+)(/|$)`)

// PendingProposals returns the pending new-plant proposals keyed by
// botanical name. Re-runs with --existing approve these instead of
// filing duplicates.
func (c *iocatalog) PendingProposals(
	ctx context.Context,
) (map[string]string, error) {
	listURL := fmt.Sprintf("%s/plants/proposals/pending/", c.baseURL)
	body, err := c.client.Get(ctx, listURL)
	if err != nil {
		return nil, ProposalError("pending proposals", err)
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, ParseError("pending proposals", err)
	}

	res := make(map[string]string)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			var href string
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					href = attr.Val
				}
			}
			if m := reProposalPath.FindStringSubmatch(href); m != nil {
				_, botanical := splitDisplay(nodeText(n))
				if botanical != "" {
					res[botanical] = m[1]
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return res, nil
}

// ApplyRename proposes a new botanical (and optionally common) name
// for a record.
func (c *iocatalog) ApplyRename(
	ctx context.Context,
	rec *schema.CatalogRecord,
	newName, commonName string,
) error {
	form := url.Values{}
	form.Set("botanical_name", newName)
	if commonName != "" {
		form.Set("common_name", commonName)
	}
	postURL := fmt.Sprintf(
		"%s/plants/propose/rename/%d/", c.baseURL, rec.ID,
	)
	if _, err := c.client.PostForm(ctx, postURL, form); err != nil {
		return ProposalError(rec.FullName, err)
	}
	return nil
}

// ApplyDataUpdate proposes filling the parentage field of a record.
func (c *iocatalog) ApplyDataUpdate(
	ctx context.Context,
	rec *schema.CatalogRecord,
	parentage *schema.Parentage,
) error {
	form := url.Values{}
	form.Set("parentage", parentage.Formula)
	postURL := fmt.Sprintf(
		"%s/plants/propose/databox/%d/", c.baseURL, rec.ID,
	)
	if _, err := c.client.PostForm(ctx, postURL, form); err != nil {
		return ProposalError(rec.FullName, err)
	}
	return nil
}

// ApplyMerge proposes merging the casualty record into the survivor.
// Common names migrate with the proposal so they survive the merge.
func (c *iocatalog) ApplyMerge(
	ctx context.Context,
	casualty, survivor *schema.CatalogRecord,
	commonNames []string,
) error {
	form := url.Values{}
	form.Set("target", fmt.Sprintf("%d", survivor.ID))
	if len(commonNames) > 0 {
		form.Set("common_names", strings.Join(commonNames, "; "))
	}
	postURL := fmt.Sprintf(
		"%s/plants/propose/merge/%d/", c.baseURL, casualty.ID,
	)
	if _, err := c.client.PostForm(ctx, postURL, form); err != nil {
		return ProposalError(casualty.FullName, err)
	}
	return nil
}

// ApplyCreate proposes a new record and returns the proposal id the
// catalog assigns to it.
func (c *iocatalog) ApplyCreate(
	ctx context.Context,
	name, commonName string,
) (string, error) {
	form := url.Values{}
	form.Set("botanical_name", name)
	if commonName != "" {
		form.Set("common_name", commonName)
	}
	postURL := fmt.Sprintf("%s/plants/propose/new/", c.baseURL)
	body, err := c.client.PostForm(ctx, postURL, form)
	if err != nil {
		return "", ProposalError(name, err)
	}

	m := reProposalPath.FindSubmatch(body)
	if m == nil {
		return "", ProposalError(
			name, fmt.Errorf("no proposal id in response"),
		)
	}
	return string(m[1]), nil
}

// ApproveProposal approves a pending new-plant proposal.
func (c *iocatalog) ApproveProposal(ctx context.Context, id string) error {
	postURL := fmt.Sprintf(
		"%s/plants/proposals/%s/approve/", c.baseURL, url.PathEscape(id),
	)
	if _, err := c.client.PostForm(ctx, postURL, url.Values{}); err != nil {
		return ProposalError("proposal "+id, err)
	}
	return nil
}
