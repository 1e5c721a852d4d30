// Package sources provides configuration and validation for the
// external service endpoints the reconciliation talks to.
//
// This package defines the schema for endpoints.yaml, which users can
// edit to point the engine at mirrors or test doubles of the
// authoritative reference, the secondary checklist, the hybrid
// register and the working catalog.
package sources

// Sources loads the endpoint configuration.
type Sources interface {
	Load() (*EndpointsConfig, error)
}

// EndpointsConfig represents the complete endpoints.yaml configuration
// file.
type EndpointsConfig struct {
	// Reference is the authoritative taxonomic checklist.
	Reference ReferenceEndpoints `yaml:"reference"`

	// Secondary is the second checklist consulted for orchid runs.
	Secondary SecondaryEndpoints `yaml:"secondary"`

	// Register is the hybrid (grex) register.
	Register RegisterEndpoints `yaml:"register"`

	// Catalog is the working gardening catalog.
	Catalog CatalogEndpoints `yaml:"catalog"`
}

// ReferenceEndpoints configures the authoritative checklist.
type ReferenceEndpoints struct {
	// SearchURL is the name-usage search endpoint.
	SearchURL string `yaml:"search_url"`

	// ArchiveURL is the Darwin Core Archive export endpoint. The
	// {taxon} placeholder is replaced with the genus name.
	ArchiveURL string `yaml:"archive_url"`
}

// SecondaryEndpoints configures the secondary checklist.
type SecondaryEndpoints struct {
	// SearchURL is the taxon search endpoint.
	SearchURL string `yaml:"search_url"`
}

// RegisterEndpoints configures the hybrid register.
type RegisterEndpoints struct {
	// SearchURL is the grex search endpoint.
	SearchURL string `yaml:"search_url"`
}

// CatalogEndpoints configures the working catalog.
type CatalogEndpoints struct {
	// BaseURL is the root of the catalog web application; all record,
	// search and proposal paths are relative to it.
	BaseURL string `yaml:"base_url"`
}
