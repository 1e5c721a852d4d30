package iocatalog

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnrecon/pkg/errcode"
)

// FetchError creates an error for a failed genus listing fetch.
func FetchError(genus string, err error) error {
	msg := `Could not fetch catalog records for <em>%s</em>

<em>Probable causes:</em>
  1. The catalog is unreachable or down
  2. The catalog base URL in endpoints.yaml is wrong`

	vars := []any{genus}

	return &gn.Error{
		Code: errcode.CatalogFetchError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("catalog fetch failed: %w", err),
	}
}

// ParseError creates an error for unparseable catalog pages.
func ParseError(subject string, err error) error {
	msg := `Could not parse the catalog page for <em>%s</em>`
	vars := []any{subject}

	return &gn.Error{
		Code: errcode.CatalogParseError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("catalog parse failed: %w", err),
	}
}

// SearchError creates an error for a failed catalog search.
func SearchError(name string, err error) error {
	msg := `Catalog search failed for <em>%s</em>`
	vars := []any{name}

	return &gn.Error{
		Code: errcode.CatalogSearchError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("catalog search failed: %w", err),
	}
}

// RecordError creates an error for a failed record page fetch.
func RecordError(name string, err error) error {
	msg := `Could not fetch the catalog record page for <em>%s</em>`
	vars := []any{name}

	return &gn.Error{
		Code: errcode.CatalogRecordError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("catalog record fetch failed: %w", err),
	}
}

// ProposalError creates an error for a failed proposal submission.
func ProposalError(subject string, err error) error {
	msg := `Could not submit a catalog proposal for <em>%s</em>

<em>Note:</em> earlier proposals from this run are already filed.
Review pending proposals before re-running with <em>--propose</em>.`

	vars := []any{subject}

	return &gn.Error{
		Code: errcode.CatalogProposalError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("catalog proposal failed: %w", err),
	}
}
