package iokew

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnrecon/pkg/errcode"
)

// LookupError creates an error for secondary source failures.
func LookupError(name string, err error) error {
	msg := `Secondary source lookup failed for <em>%s</em>`
	vars := []any{name}

	return &gn.Error{
		Code: errcode.SecondaryLookupError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("secondary lookup failed: %w", err),
	}
}
