package reconciler

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnrecon/pkg/errcode"
)

// FetchGenusError creates an error for when the working catalog cannot
// deliver the genus records.
func FetchGenusError(genus string, err error) error {
	msg := `Cannot fetch records for genus <em>%s</em>

<em>Possible causes:</em>
  - Catalog service is unreachable
  - Genus is not present in the catalog

<em>How to fix:</em>
  1. Check network connectivity
  2. Verify the genus spelling`

	vars := []any{genus}

	return &gn.Error{
		Code: errcode.ReconcileInputError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot fetch genus '%s': %w", genus, err),
	}
}

// PlanError creates an error for merge planning failures.
func PlanError(genus string, err error) error {
	msg := `Merge planning failed for genus <em>%s</em>`
	vars := []any{genus}

	return &gn.Error{
		Code: errcode.ReconcilePlanError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("merge planning failed: %w", err),
	}
}

// ProposalError creates an error for failures while submitting
// mutations to the catalog.
func ProposalError(genus string, err error) error {
	msg := `Could not submit proposals for genus <em>%s</em>

Some mutations may already be applied; re-running the
reconciliation is safe, already-applied changes are detected
as no-ops.`
	vars := []any{genus}

	return &gn.Error{
		Code: errcode.CatalogProposalError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("proposal submission failed: %w", err),
	}
}
