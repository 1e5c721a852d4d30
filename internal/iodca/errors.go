package iodca

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gnrecon/pkg/errcode"
)

// DownloadError creates an error for when the reference archive
// cannot be downloaded.
func DownloadError(genus string, err error) error {
	msg := `Cannot download the reference archive for <em>%s</em>

<em>Possible causes:</em>
  - Reference service is down or unreachable
  - The archive endpoint changed

<em>How to fix:</em>
  1. Check network connectivity
  2. Verify reference.archive_url in endpoints.yaml`

	vars := []any{genus}

	return &gn.Error{
		Code: errcode.SnapshotDownloadError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("archive download failed: %w", err),
	}
}

// ArchiveError creates an error for a malformed archive.
func ArchiveError(path string, err error) error {
	msg := `Reference archive <em>%s</em> cannot be read`
	vars := []any{path}

	return &gn.Error{
		Code: errcode.SnapshotArchiveError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("cannot read archive: %w", err),
	}
}

// ImportError creates an error for snapshot database build failures.
func ImportError(path string, err error) error {
	msg := `Cannot build the snapshot database <em>%s</em>`
	vars := []any{path}

	return &gn.Error{
		Code: errcode.SnapshotImportError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("snapshot import failed: %w", err),
	}
}
