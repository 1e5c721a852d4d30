package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError

	// Logging errors
	CreateLogFileError

	// Snapshot (reference cache) errors
	SnapshotDownloadError
	SnapshotArchiveError
	SnapshotImportError
	SnapshotOpenError
	SnapshotQueryError
	SnapshotUnavailableError

	// Reference source errors
	ReferenceSearchError
	ReferenceSynonymsError

	// Secondary source errors
	SecondaryLookupError

	// Hybrid register errors
	RegisterCacheError
	RegisterLookupError

	// Working catalog errors
	CatalogFetchError
	CatalogParseError
	CatalogSearchError
	CatalogRecordError
	CatalogProposalError

	// Engine errors
	ReconcileInputError
	ReconcilePlanError
)
