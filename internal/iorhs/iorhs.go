// Package iorhs implements the hybrid (grex) register with a
// persistent lookup cache. The register is slow and rate-limited, so
// every result is cached by (genus, epithet); a grex that keeps
// failing is given up on after a fixed number of attempts.
package iorhs

import (
	"context"
	"database/sql"
	"net/url"
	"strings"

	"github.com/gnames/gnrecon/internal/iohttp"
	"github.com/gnames/gnrecon/pkg/config"
	"github.com/gnames/gnrecon/pkg/gnrecon"
	_ "modernc.org/sqlite"
)

// maxAttempts is how many failed searches are allowed before a grex is
// never queried again.
const maxAttempts = 5

const cacheSchema = `
CREATE TABLE IF NOT EXISTS registrations (
  genus TEXT NOT NULL,
  epithet TEXT NOT NULL,
  matched INTEGER NOT NULL DEFAULT 0,
  pod_genus TEXT NOT NULL DEFAULT '',
  pod_epithet TEXT NOT NULL DEFAULT '',
  pollen_genus TEXT NOT NULL DEFAULT '',
  pollen_epithet TEXT NOT NULL DEFAULT '',
  attempts INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (genus, epithet)
);
`

type iorhs struct {
	db        *sql.DB
	client    *iohttp.Client
	searchURL string
}

// New opens (creating when needed) the register cache database and
// returns the register collaborator.
func New(
	homeDir string,
	client *iohttp.Client,
	searchURL string,
) (gnrecon.HybridRegister, error) {
	path := config.RegisterDBPath(homeDir)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, CacheError(path, err)
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, CacheError(path, err)
	}
	return &iorhs{db: db, client: client, searchURL: searchURL}, nil
}

// Close releases the cache database handle.
func (r *iorhs) Close() error {
	return r.db.Close()
}

// Search looks a grex up, serving cached answers when possible. Cache
// rules: a match is permanent; a miss is retried on later runs until
// the attempt budget is spent.
func (r *iorhs) Search(
	ctx context.Context,
	genus, grex string,
) (gnrecon.Registration, error) {
	epithet := SanitizeGrex(grex)
	res := gnrecon.Registration{Genus: genus, Epithet: epithet}

	var matched bool
	var attempts int
	var podG, podE, polG, polE string
	row := r.db.QueryRowContext(ctx,
		`SELECT matched, pod_genus, pod_epithet,
		        pollen_genus, pollen_epithet, attempts
		 FROM registrations WHERE genus = ? AND epithet = ?`,
		genus, epithet,
	)
	err := row.Scan(&matched, &podG, &podE, &polG, &polE, &attempts)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return res, CacheError(epithet, err)
	case matched:
		res.Matched = true
		res.PodParent = [2]string{podG, podE}
		res.PollenParent = [2]string{polG, polE}
		return res, nil
	case attempts >= maxAttempts:
		return res, nil
	}

	reg, err := r.searchRemote(ctx, genus, epithet)
	if err != nil {
		return res, err
	}
	if !reg.Matched {
		if err := r.recordMiss(ctx, genus, epithet); err != nil {
			return res, err
		}
		return res, nil
	}
	if err := r.recordMatch(ctx, reg); err != nil {
		return reg, err
	}
	return reg, nil
}

func (r *iorhs) searchRemote(
	ctx context.Context,
	genus, epithet string,
) (gnrecon.Registration, error) {
	form := url.Values{
		"genus": {genus},
		"grex":  {epithet},
	}
	body, err := r.client.PostForm(ctx, r.searchURL, form)
	if err != nil {
		return gnrecon.Registration{}, LookupError(epithet, err)
	}
	return parseResults(body, genus, epithet)
}

func (r *iorhs) recordMatch(
	ctx context.Context,
	reg gnrecon.Registration,
) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO registrations
		   (genus, epithet, matched, pod_genus, pod_epithet,
		    pollen_genus, pollen_epithet, attempts)
		 VALUES (?,?,1,?,?,?,?,0)
		 ON CONFLICT (genus, epithet) DO UPDATE SET
		   matched = 1,
		   pod_genus = excluded.pod_genus,
		   pod_epithet = excluded.pod_epithet,
		   pollen_genus = excluded.pollen_genus,
		   pollen_epithet = excluded.pollen_epithet,
		   attempts = 0`,
		reg.Genus, reg.Epithet,
		reg.PodParent[0], reg.PodParent[1],
		reg.PollenParent[0], reg.PollenParent[1],
	)
	if err != nil {
		return CacheError(reg.Epithet, err)
	}
	return nil
}

func (r *iorhs) recordMiss(ctx context.Context, genus, epithet string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO registrations (genus, epithet, attempts)
		 VALUES (?,?,1)
		 ON CONFLICT (genus, epithet) DO UPDATE SET
		   attempts = attempts + 1`,
		genus, epithet,
	)
	if err != nil {
		return CacheError(epithet, err)
	}
	return nil
}

// SanitizeGrex prepares a grex name for the register's search form.
// The register chokes on parentheses, which some catalog names carry
// for disambiguation; brackets are accepted as equivalent.
func SanitizeGrex(grex string) string {
	grex = strings.ReplaceAll(grex, "(", "[")
	grex = strings.ReplaceAll(grex, ")", "]")
	return strings.TrimSpace(grex)
}
