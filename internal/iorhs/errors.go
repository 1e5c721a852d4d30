package iorhs

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnrecon/pkg/errcode"
)

// CacheError creates an error for register cache failures.
func CacheError(subject string, err error) error {
	msg := `Register cache operation failed for <em>%s</em>

<em>How to fix:</em>
  1. Delete the register cache database to rebuild it`

	vars := []any{subject}

	return &gn.Error{
		Code: errcode.RegisterCacheError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("register cache failed: %w", err),
	}
}

// LookupError creates an error for register search failures.
func LookupError(grex string, err error) error {
	msg := `Register search failed for <em>%s</em>`
	vars := []any{grex}

	return &gn.Error{
		Code: errcode.RegisterLookupError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("register search failed: %w", err),
	}
}
