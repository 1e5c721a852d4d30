// Package templates provides embedded YAML configuration templates.
package templates

import _ "embed"

// ConfigYAML contains the default config.yaml template for application
// configuration.
//
//go:embed config.yaml
var ConfigYAML string

// EndpointsYAML contains the default endpoints.yaml template for the
// external service endpoints.
//
//go:embed endpoints.yaml
var EndpointsYAML string
