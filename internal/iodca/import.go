package iodca

import (
	"archive/zip"
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"runtime"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnlib/ent/nomcode"
	"github.com/gnames/gnparser"
	"github.com/gnames/gnuuid"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"
)

const snapshotSchema = `
CREATE TABLE taxa (
  taxon_id TEXT PRIMARY KEY,
  name_uuid TEXT NOT NULL,
  full_name TEXT NOT NULL,
  canonical TEXT NOT NULL,
  genus TEXT,
  specific_epithet TEXT,
  infraspecific_epithet TEXT,
  rank TEXT,
  status TEXT,
  accepted_id TEXT,
  remarks TEXT,
  hybrid TEXT
);
CREATE INDEX idx_taxa_canonical ON taxa (canonical);
CREATE INDEX idx_taxa_accepted ON taxa (accepted_id);
CREATE TABLE distributions (
  taxon_id TEXT NOT NULL,
  area TEXT NOT NULL
);
CREATE INDEX idx_distributions_taxon ON distributions (taxon_id);
`

type taxonRow struct {
	id         string
	name       string
	genus      string
	specific   string
	infra      string
	rank       string
	status     string
	acceptedID string
	remarks    string
}

type parsedRow struct {
	taxonRow
	canonical string
	uuid      string
	hybrid    string
}

var reHybridName = regexp.MustCompile(`×|(?i)\bx\b`)

// importArchive converts a Darwin Core Archive into a snapshot
// database. The database is built next to its final path and moved
// into place only after a complete import.
func importArchive(ctx context.Context, zipPath, dbPath string) error {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return ArchiveError(zipPath, err)
	}
	defer zr.Close()

	taxonFile := findEntry(zr, "taxon.tsv", "taxon.txt")
	if taxonFile == nil {
		return ArchiveError(
			zipPath, fmt.Errorf("archive has no taxon table"),
		)
	}
	distFile := findEntry(zr, "distribution.tsv", "distribution.txt")

	tmpPath := dbPath + ".tmp"
	os.Remove(tmpPath)
	db, err := sql.Open("sqlite", tmpPath)
	if err != nil {
		return ImportError(dbPath, err)
	}
	defer os.Remove(tmpPath)

	if _, err := db.ExecContext(ctx, snapshotSchema); err != nil {
		db.Close()
		return ImportError(dbPath, err)
	}

	count, err := importTaxa(ctx, db, taxonFile)
	if err != nil {
		db.Close()
		return ImportError(dbPath, err)
	}
	if distFile != nil {
		if err := importDistributions(ctx, db, distFile); err != nil {
			db.Close()
			return ImportError(dbPath, err)
		}
	}
	if err := db.Close(); err != nil {
		return ImportError(dbPath, err)
	}
	if err := os.Rename(tmpPath, dbPath); err != nil {
		return ImportError(dbPath, err)
	}

	gn.Info(
		"Imported <em>%s</em> reference rows",
		humanize.Comma(int64(count)),
	)
	return nil
}

func findEntry(zr *zip.ReadCloser, names ...string) *zip.File {
	for _, f := range zr.File {
		base := strings.ToLower(f.Name)
		if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
			base = base[idx+1:]
		}
		for _, name := range names {
			if base == name {
				return f
			}
		}
	}
	return nil
}

// importTaxa runs a three-stage pipeline: a reader feeding raw rows, N
// parser workers computing canonical forms and name UUIDs, and a
// single writer batching inserts.
func importTaxa(
	ctx context.Context,
	db *sql.DB,
	file *zip.File,
) (int, error) {
	chIn := make(chan taxonRow)
	chOut := make(chan parsedRow)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(chIn)
		return readTaxa(gCtx, file, chIn)
	})

	var wg sync.WaitGroup
	for range runtime.NumCPU() {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			return parseWorker(gCtx, chIn, chOut)
		})
	}
	go func() {
		wg.Wait()
		close(chOut)
	}()

	var count int
	g.Go(func() error {
		var err error
		count, err = writeTaxa(gCtx, db, chOut)
		return err
	})

	if err := g.Wait(); err != nil {
		return 0, err
	}
	return count, nil
}

func readTaxa(
	ctx context.Context,
	file *zip.File,
	chIn chan<- taxonRow,
) error {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	r.Comma = '\t'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return err
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if idx := strings.LastIndexByte(name, ':'); idx >= 0 {
			name = name[idx+1:]
		}
		cols[name] = i
	}
	field := func(rec []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[idx])
	}

	for {
		rec, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		row := taxonRow{
			id:         field(rec, "taxonid"),
			name:       field(rec, "scientificname"),
			genus:      field(rec, "genericname"),
			specific:   field(rec, "specificepithet"),
			infra:      field(rec, "infraspecificepithet"),
			rank:       field(rec, "taxonrank"),
			status:     field(rec, "taxonomicstatus"),
			acceptedID: field(rec, "acceptednameusageid"),
			remarks:    field(rec, "taxonremarks"),
		}
		if row.id == "" || row.name == "" {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chIn <- row:
		}
	}
}

// parseWorker computes the canonical form and its deterministic UUID
// for each row. Each worker owns its parser instance; gnparser
// initialization is cheap and instances are not safe for concurrent
// use.
func parseWorker(
	ctx context.Context,
	chIn <-chan taxonRow,
	chOut chan<- parsedRow,
) error {
	parser := gnparser.New(
		gnparser.NewConfig(gnparser.OptCode(nomcode.Botanical)),
	)

	for row := range chIn {
		res := parsedRow{taxonRow: row}
		parsed := parser.ParseName(row.name)
		if parsed.Parsed && parsed.Canonical != nil {
			res.canonical = parsed.Canonical.Simple
		} else {
			res.canonical = row.name
		}
		if reHybridName.MatchString(row.name) {
			res.hybrid = "×"
		}
		res.uuid = gnuuid.New(res.canonical).String()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case chOut <- res:
		}
	}
	return nil
}

func writeTaxa(
	ctx context.Context,
	db *sql.DB,
	chOut <-chan parsedRow,
) (int, error) {
	const batchSize = 500

	var count int
	var tx *sql.Tx
	var stmt *sql.Stmt

	begin := func() error {
		var err error
		tx, err = db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		stmt, err = tx.PrepareContext(ctx,
			`INSERT OR REPLACE INTO taxa
			 (taxon_id, name_uuid, full_name, canonical, genus,
			  specific_epithet, infraspecific_epithet, rank,
			  status, accepted_id, remarks, hybrid)
			 VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`)
		return err
	}
	commit := func() error {
		stmt.Close()
		return tx.Commit()
	}

	if err := begin(); err != nil {
		return 0, err
	}
	for row := range chOut {
		_, err := stmt.ExecContext(ctx,
			row.id, row.uuid, row.name, row.canonical, row.genus,
			row.specific, row.infra, row.rank,
			row.status, row.acceptedID, row.remarks, row.hybrid,
		)
		if err != nil {
			tx.Rollback()
			return 0, err
		}
		count++
		if count%batchSize == 0 {
			if err := commit(); err != nil {
				return 0, err
			}
			if err := begin(); err != nil {
				return 0, err
			}
		}
	}
	if err := commit(); err != nil {
		return 0, err
	}
	return count, nil
}

func importDistributions(
	ctx context.Context,
	db *sql.DB,
	file *zip.File,
) error {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	r.Comma = '\t'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return err
	}
	idIdx, areaIdx := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "taxonid":
			idIdx = i
		case "locality", "area", "countrycode":
			if areaIdx < 0 {
				areaIdx = i
			}
		}
	}
	if idIdx < 0 || areaIdx < 0 {
		return fmt.Errorf("distribution table has no usable columns")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO distributions (taxon_id, area) VALUES (?,?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			tx.Rollback()
			return err
		}
		if idIdx >= len(rec) || areaIdx >= len(rec) {
			continue
		}
		id := strings.TrimSpace(rec[idIdx])
		area := strings.TrimSpace(rec[areaIdx])
		if id == "" || area == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, id, area); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
