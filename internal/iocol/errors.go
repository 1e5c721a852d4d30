package iocol

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnrecon/pkg/errcode"
)

// OpenError creates an error for when the snapshot database cannot be
// opened.
func OpenError(path string, err error) error {
	msg := `Cannot open the snapshot database <em>%s</em>

<em>How to fix:</em>
  1. Delete the file and re-run to rebuild the snapshot`

	vars := []any{path}

	return &gn.Error{
		Code: errcode.SnapshotOpenError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot open snapshot: %w", err),
	}
}

// QueryError creates an error for snapshot query failures.
func QueryError(genus string, err error) error {
	msg := `Snapshot query failed for genus <em>%s</em>`
	vars := []any{genus}

	return &gn.Error{
		Code: errcode.SnapshotQueryError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("snapshot query failed: %w", err),
	}
}

// SearchError creates an error for remote search failures.
func SearchError(name string, err error) error {
	msg := `Reference search failed for <em>%s</em>`
	vars := []any{name}

	return &gn.Error{
		Code: errcode.ReferenceSearchError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("reference search failed: %w", err),
	}
}

// SynonymsError creates an error for synonym listing failures.
func SynonymsError(name string, err error) error {
	msg := `Cannot list synonyms of <em>%s</em>`
	vars := []any{name}

	return &gn.Error{
		Code: errcode.ReferenceSynonymsError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("synonym lookup failed: %w", err),
	}
}
