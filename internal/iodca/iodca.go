// Package iodca maintains the local reference snapshots: one SQLite
// database per genus, built from the reference's Darwin Core Archive
// export. Snapshots are throwaway caches; deleting them only costs a
// re-download.
package iodca

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnrecon/internal/iohttp"
	"github.com/gnames/gnrecon/pkg/config"
)

// Snapshot provides fresh local snapshots of the reference checklist.
type Snapshot interface {
	// Ensure returns the path of a snapshot database for the genus,
	// downloading and importing the archive when the cached one is
	// missing or older than the configured age. A failed refresh
	// falls back to a stale cached snapshot when one exists.
	Ensure(ctx context.Context, genus string) (string, error)
}

type iodca struct {
	cfg        config.Config
	client     *iohttp.Client
	archiveURL string
}

// New creates a Snapshot provider downloading from the given archive
// URL template. The {taxon} placeholder is replaced with the genus.
func New(
	cfg config.Config,
	client *iohttp.Client,
	archiveURL string,
) Snapshot {
	return &iodca{cfg: cfg, client: client, archiveURL: archiveURL}
}

func (d *iodca) Ensure(ctx context.Context, genus string) (string, error) {
	dbPath := filepath.Join(
		config.SnapshotDir(d.cfg.HomeDir),
		strings.ToLower(genus)+".sqlite",
	)

	if age, ok := snapshotAge(dbPath); ok {
		maxAge := time.Duration(d.cfg.Cache.MaxAgeDays) * 24 * time.Hour
		if age < maxAge {
			gn.Info(
				"Using cached <em>%s</em> snapshot, downloaded %s",
				genus, humanize.Time(time.Now().Add(-age)),
			)
			return dbPath, nil
		}
	}

	archive := strings.ReplaceAll(
		d.archiveURL, "{taxon}", url.QueryEscape(genus),
	)
	zipPath := dbPath + ".zip"

	gn.Info("Downloading the <em>%s</em> reference archive", genus)
	if err := d.client.Download(ctx, archive, zipPath); err != nil {
		return d.fallback(genus, dbPath, DownloadError(genus, err))
	}
	defer os.Remove(zipPath)

	if err := importArchive(ctx, zipPath, dbPath); err != nil {
		return d.fallback(genus, dbPath, err)
	}
	return dbPath, nil
}

// fallback degrades to a stale snapshot when one exists; without one
// the refresh failure is fatal.
func (d *iodca) fallback(
	genus, dbPath string,
	err error,
) (string, error) {
	age, ok := snapshotAge(dbPath)
	if !ok {
		return "", err
	}
	gn.Warn(
		"Could not refresh the <em>%s</em> snapshot, "+
			"using a stale copy downloaded %s",
		genus, humanize.Time(time.Now().Add(-age)),
	)
	return dbPath, nil
}

func snapshotAge(path string) (time.Duration, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return 0, false
	}
	return time.Since(info.ModTime()), true
}
