// Package iocol implements the authoritative reference source: row
// lookups against the local genus snapshot and accepted-name searches
// that try the snapshot first and the reference's own search API
// second.
package iocol

import (
	"context"
	"database/sql"

	"github.com/gnames/gnrecon/internal/iodca"
	"github.com/gnames/gnrecon/internal/iohttp"
	"github.com/gnames/gnrecon/pkg/gnrecon"
	"github.com/gnames/gnrecon/pkg/schema"
	_ "modernc.org/sqlite"
)

type iocol struct {
	db        *sql.DB
	client    *iohttp.Client
	searchURL string
	genus     string
}

// New builds the reference source for a genus. The snapshot is
// refreshed through the Snapshot provider; a genus without any usable
// snapshot is a fatal condition, classification without ground truth
// would be unsound.
func New(
	ctx context.Context,
	snap iodca.Snapshot,
	client *iohttp.Client,
	searchURL, genus string,
) (gnrecon.ReferenceSource, error) {
	path, err := snap.Ensure(ctx, genus)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, OpenError(path, err)
	}
	return &iocol{
		db:        db,
		client:    client,
		searchURL: searchURL,
		genus:     genus,
	}, nil
}

// Close releases the snapshot database handle.
func (c *iocol) Close() error {
	return c.db.Close()
}

// LookupTaxon returns the snapshot row for a marker-free botanical
// name. When both an accepted and a synonym usage share the name, the
// accepted one wins.
func (c *iocol) LookupTaxon(
	ctx context.Context,
	name string,
) (*schema.ReferenceTaxon, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT t.canonical, t.status, t.remarks, t.hybrid,
		        COALESCE(group_concat(d.area, '; '), '')
		 FROM taxa t
		 LEFT JOIN distributions d ON d.taxon_id = t.taxon_id
		 WHERE t.canonical = ?
		 GROUP BY t.taxon_id
		 ORDER BY CASE
		   WHEN lower(t.status) LIKE '%accepted%' THEN 0 ELSE 1
		 END
		 LIMIT 1`,
		name,
	)
	var res schema.ReferenceTaxon
	err := row.Scan(
		&res.Name, &res.Status, &res.Remarks,
		&res.HybridIndicator, &res.Distribution,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, QueryError(c.genus, err)
	}
	return &res, nil
}

// SnapshotNames returns every snapshot row in canonical order, with
// distributions aggregated.
func (c *iocol) SnapshotNames(
	ctx context.Context,
) ([]schema.ReferenceTaxon, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT t.canonical, t.status, t.remarks, t.hybrid,
		        COALESCE(group_concat(d.area, '; '), '')
		 FROM taxa t
		 LEFT JOIN distributions d ON d.taxon_id = t.taxon_id
		 GROUP BY t.taxon_id
		 ORDER BY t.canonical`,
	)
	if err != nil {
		return nil, QueryError(c.genus, err)
	}
	defer rows.Close()

	var res []schema.ReferenceTaxon
	for rows.Next() {
		var taxon schema.ReferenceTaxon
		err := rows.Scan(
			&taxon.Name, &taxon.Status, &taxon.Remarks,
			&taxon.HybridIndicator, &taxon.Distribution,
		)
		if err != nil {
			return nil, QueryError(c.genus, err)
		}
		res = append(res, taxon)
	}
	if err := rows.Err(); err != nil {
		return nil, QueryError(c.genus, err)
	}
	return res, nil
}
