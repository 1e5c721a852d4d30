package iocol

import (
	"context"
	"database/sql"
	"net/url"
	"strings"

	"github.com/gnames/gnfmt"
	"github.com/gnames/gnrecon/pkg/gnrecon"
)

// searchPayload mirrors the reference search API response; only the
// fields the resolver needs are decoded.
type searchPayload struct {
	Total  int `json:"total"`
	Result []struct {
		Usage struct {
			Status string `json:"status"`
			Name   struct {
				ScientificName string `json:"scientificName"`
				CanonicalName  string `json:"canonicalName"`
			} `json:"name"`
			Accepted struct {
				Name struct {
					ScientificName string `json:"scientificName"`
					CanonicalName  string `json:"canonicalName"`
				} `json:"name"`
			} `json:"accepted"`
		} `json:"usage"`
	} `json:"result"`
}

// SearchAccepted resolves a name to its accepted form: the snapshot
// first, the remote search API when the snapshot has no usable row.
func (c *iocol) SearchAccepted(
	ctx context.Context,
	name string,
) (gnrecon.SearchResult, error) {
	res, found, err := c.searchSnapshot(ctx, name)
	if err != nil {
		return gnrecon.SearchResult{}, err
	}
	if found {
		return res, nil
	}
	return c.searchRemote(ctx, name)
}

// searchSnapshot follows the accepted_id chain of a synonym row. An
// accepted row resolves to itself.
func (c *iocol) searchSnapshot(
	ctx context.Context,
	name string,
) (gnrecon.SearchResult, bool, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT t.canonical, t.status,
		        COALESCE(a.canonical, '')
		 FROM taxa t
		 LEFT JOIN taxa a ON a.taxon_id = t.accepted_id
		 WHERE t.canonical = ?
		 ORDER BY CASE
		   WHEN lower(t.status) LIKE '%accepted%' THEN 0 ELSE 1
		 END
		 LIMIT 1`,
		name,
	)
	var canonical, status, accepted string
	err := row.Scan(&canonical, &status, &accepted)
	if err == sql.ErrNoRows {
		return gnrecon.SearchResult{}, false, nil
	}
	if err != nil {
		return gnrecon.SearchResult{}, false, QueryError(c.genus, err)
	}

	if strings.Contains(strings.ToLower(status), "accepted") {
		return gnrecon.SearchResult{Name: canonical}, true, nil
	}
	if accepted != "" {
		return gnrecon.SearchResult{Name: accepted}, true, nil
	}
	return gnrecon.SearchResult{}, false, nil
}

func (c *iocol) searchRemote(
	ctx context.Context,
	name string,
) (gnrecon.SearchResult, error) {
	query := url.Values{
		"q":       {name},
		"content": {"SCIENTIFIC_NAME"},
		"type":    {"EXACT"},
		"limit":   {"3"},
	}
	body, err := c.client.Get(
		ctx, c.searchURL+"?"+query.Encode(),
	)
	if err != nil {
		return gnrecon.SearchResult{}, SearchError(name, err)
	}

	var payload searchPayload
	enc := gnfmt.GNjson{}
	if err := enc.Decode(body, &payload); err != nil {
		return gnrecon.SearchResult{}, SearchError(name, err)
	}
	if len(payload.Result) == 0 {
		return gnrecon.SearchResult{
			Note: "Not found in the reference",
		}, nil
	}

	usage := payload.Result[0].Usage
	accepted := usage.Accepted.Name.CanonicalName
	if accepted == "" {
		accepted = usage.Accepted.Name.ScientificName
	}
	if accepted != "" {
		return gnrecon.SearchResult{Name: accepted}, nil
	}
	own := usage.Name.CanonicalName
	if own == "" {
		own = usage.Name.ScientificName
	}
	return gnrecon.SearchResult{Name: own}, nil
}

// LookupSynonyms lists the snapshot's synonyms of an accepted name.
func (c *iocol) LookupSynonyms(
	ctx context.Context,
	name string,
) ([]string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT s.canonical
		 FROM taxa s
		 JOIN taxa a ON a.taxon_id = s.accepted_id
		 WHERE a.canonical = ?
		   AND lower(s.status) LIKE '%synonym%'
		 ORDER BY s.canonical`,
		name,
	)
	if err != nil {
		return nil, SynonymsError(name, err)
	}
	defer rows.Close()

	var res []string
	seen := make(map[string]bool)
	for rows.Next() {
		var syn string
		if err := rows.Scan(&syn); err != nil {
			return nil, SynonymsError(name, err)
		}
		if syn == "" || syn == name || seen[syn] {
			continue
		}
		seen[syn] = true
		res = append(res, syn)
	}
	if err := rows.Err(); err != nil {
		return nil, SynonymsError(name, err)
	}
	return res, nil
}
