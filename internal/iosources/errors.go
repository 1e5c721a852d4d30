package iosources

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnrecon/pkg/errcode"
)

// EndpointsConfigError creates an error for when endpoints.yaml
// cannot be loaded.
func EndpointsConfigError(path string, err error) error {
	msg := `Cannot load endpoints configuration

<em>Configuration file:</em> %s

<em>Possible causes:</em>
  - File does not exist
  - Invalid YAML format
  - Permission denied

<em>How to fix:</em>
  1. Check if file exists: <em>ls -l %s</em>
  2. Validate YAML syntax
  3. Delete the file to regenerate the default on the next run`

	vars := []any{path, path}

	return &gn.Error{
		Code: errcode.UnknownError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to load endpoints config: %w", err),
	}
}
