// Package iokew implements the secondary checklist over a POWO-style
// two-step API: a name search returning taxon identifiers, then a
// taxon lookup carrying status, distribution and the hybrid formula.
package iokew

import (
	"context"
	"net/url"
	"strings"

	"github.com/gnames/gnfmt"
	"github.com/gnames/gnrecon/internal/iohttp"
	"github.com/gnames/gnrecon/pkg/gnrecon"
	"github.com/gnames/gnrecon/pkg/schema"
)

type iokew struct {
	client    *iohttp.Client
	searchURL string
}

// New creates the secondary source over the given search endpoint.
func New(client *iohttp.Client, searchURL string) gnrecon.SecondarySource {
	return &iokew{client: client, searchURL: searchURL}
}

type searchPayload struct {
	Results []struct {
		FqID     string `json:"fqId"`
		Name     string `json:"name"`
		Accepted bool   `json:"accepted"`
	} `json:"results"`
}

type taxonPayload struct {
	Name            string `json:"name"`
	TaxonomicStatus string `json:"taxonomicStatus"`
	Hybrid          bool   `json:"hybrid"`
	HybridFormula   string `json:"hybridFormula"`
	Accepted        struct {
		Name string `json:"name"`
	} `json:"accepted"`
	Distribution struct {
		Natives []struct {
			Name string `json:"name"`
		} `json:"natives"`
	} `json:"distribution"`
}

// LookupTaxon searches the source for a name. An empty Status in the
// result means the source does not know the name.
func (k *iokew) LookupTaxon(
	ctx context.Context,
	name string,
) (gnrecon.SecondaryResult, error) {
	query := url.Values{"q": {name}}
	body, err := k.client.Get(ctx, k.searchURL+"?"+query.Encode())
	if err != nil {
		return gnrecon.SecondaryResult{}, LookupError(name, err)
	}

	enc := gnfmt.GNjson{}
	var search searchPayload
	if err := enc.Decode(body, &search); err != nil {
		return gnrecon.SecondaryResult{}, LookupError(name, err)
	}
	hit := bestHit(&search, name)
	if hit < 0 {
		return gnrecon.SecondaryResult{}, nil
	}

	detail, err := k.fetchTaxon(ctx, search.Results[hit].FqID)
	if err != nil {
		return gnrecon.SecondaryResult{}, err
	}

	res := gnrecon.SecondaryResult{
		Name:   detail.Name,
		Status: detail.TaxonomicStatus,
		Hybrid: detail.Hybrid || strings.Contains(detail.Name, "×"),
	}
	if res.Status == "" {
		res.Status = "Accepted"
	}
	if detail.Accepted.Name != "" {
		res.Name = detail.Accepted.Name
	}
	res.Name = strings.ReplaceAll(res.Name, "× ", "")
	res.Name = strings.TrimSpace(res.Name)

	var areas []string
	for _, n := range detail.Distribution.Natives {
		areas = append(areas, n.Name)
	}
	res.Distribution = strings.Join(areas, "; ")
	res.Parentage = parseFormula(detail.HybridFormula)
	return res, nil
}

// bestHit prefers an exact name match, then the first accepted result.
func bestHit(search *searchPayload, name string) int {
	for i, r := range search.Results {
		plain := strings.ReplaceAll(r.Name, "× ", "")
		if plain == name || r.Name == name {
			return i
		}
	}
	for i, r := range search.Results {
		if r.Accepted {
			return i
		}
	}
	if len(search.Results) > 0 {
		return 0
	}
	return -1
}

func (k *iokew) fetchTaxon(
	ctx context.Context,
	fqID string,
) (*taxonPayload, error) {
	taxonURL := strings.Replace(k.searchURL, "/search", "/taxon", 1) +
		"/" + url.PathEscape(fqID) + "?fields=distribution"
	body, err := k.client.Get(ctx, taxonURL)
	if err != nil {
		return nil, LookupError(fqID, err)
	}

	enc := gnfmt.GNjson{}
	var detail taxonPayload
	if err := enc.Decode(body, &detail); err != nil {
		return nil, LookupError(fqID, err)
	}
	return &detail, nil
}

// parseFormula converts the source's hybrid formula ("A × B") into the
// catalog's parentage form. A formula that does not split into exactly
// two parents is dropped.
func parseFormula(formula string) *schema.Parentage {
	if formula == "" {
		return nil
	}
	formula = strings.ReplaceAll(formula, "×", schema.HybridToken)
	parts := strings.Split(formula, " "+schema.HybridToken+" ")
	if len(parts) != 2 {
		return nil
	}
	pod := strings.TrimSpace(parts[0])
	pollen := strings.TrimSpace(parts[1])
	if pod == "" || pollen == "" {
		return nil
	}

	podGenus := strings.Fields(pod)[0]
	pollenGenus := strings.Fields(pollen)[0]
	return &schema.Parentage{
		Formula:      pod + " X " + pollen,
		Intergeneric: !strings.EqualFold(podGenus, pollenGenus),
	}
}
