// Package config provides configuration management for gnrecon.
//
// This package has no I/O dependencies (no file operations, no network
// calls). Validation functions may write user-facing warnings via
// gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml >
// defaults
//
// # Design Principles
//
//   - Default config (from New()) is always valid - no validation needed
//   - All mutations go through Option functions - the only way to modify
//     Config
//   - Invalid options are rejected with gn.Warn() - config remains in a
//     valid state
//   - ToOptions() converts persistent fields (those in config.yaml)
//   - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Cache: max_age_days
//   - HTTP: timeout_sec, retry_delay_sec
//   - Match: fuzzy_disabled
//   - Log: level, format, destination
//
// Runtime-only fields (CLI flags only):
//   - Reconcile.Propose, Existing, OrchidExtensions, CommonName,
//     ParentageCheck (per-command)
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use GNRECON_ prefix with underscores for nesting:
//
//	GNRECON_CACHE_MAX_AGE_DAYS=5
//	GNRECON_HTTP_TIMEOUT_SEC=30
//	GNRECON_LOG_LEVEL=info
package config

// Config represents the complete gnrecon configuration.
type Config struct {
	// Cache contains reference snapshot cache settings.
	Cache CacheConfig `mapstructure:"cache" yaml:"cache"`

	// HTTP contains settings shared by all remote collaborators.
	HTTP HTTPConfig `mapstructure:"http" yaml:"http"`

	// Match contains name-matching settings.
	Match MatchConfig `mapstructure:"match" yaml:"match"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// Reconcile contains settings specific to the reconcile command.
	Reconcile ReconcileConfig

	// HomeDir determines where config, cache and logs directories
	// reside. It must be set by CLI during init, there is no default
	// value for it.
	HomeDir string
}

// CacheConfig contains reference snapshot cache settings.
type CacheConfig struct {
	// MaxAgeDays is how long a downloaded genus snapshot stays
	// fresh. Older snapshots are rebuilt from the remote archive.
	MaxAgeDays int `mapstructure:"max_age_days" yaml:"max_age_days"`
}

// HTTPConfig contains settings for remote lookups.
type HTTPConfig struct {
	// TimeoutSec is the per-request timeout.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// RetryDelaySec is the fixed delay before the single retry of a
	// failed lookup. A second failure abandons the lookup's branch.
	RetryDelaySec int `mapstructure:"retry_delay_sec" yaml:"retry_delay_sec"`
}

// MatchConfig contains name-matching settings.
type MatchConfig struct {
	// FuzzyDisabled turns off the spellcheck fallback. All other
	// classification still functions without it.
	FuzzyDisabled bool `mapstructure:"fuzzy_disabled" yaml:"fuzzy_disabled"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Level is the minimum level to log: debug, info, warn, error.
	Level string `mapstructure:"level" yaml:"level"`

	// Format is the log output format: json or text.
	Format string `mapstructure:"format" yaml:"format"`

	// Destination is where logs go: file, stdout or stderr.
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// ReconcileConfig contains per-run settings supplied by CLI flags.
// None of these persist in config.yaml.
type ReconcileConfig struct {
	// Propose enables submitting mutations to the working catalog.
	// Without it the run is review-only.
	Propose bool

	// Existing enables checking for pending new-plant proposals
	// without approving them.
	Existing bool

	// OrchidExtensions enables the hybrid register pass and forces
	// the common name to "Orchid".
	OrchidExtensions bool

	// CommonName is the common name applied to all members of the
	// genus, empty when none was requested.
	CommonName string

	// ParentageCheck enables verifying parentage fields of
	// registered hybrids.
	ParentageCheck bool
}

// New creates a Config with all default values. The result is always
// valid.
func New() *Config {
	return &Config{
		Cache: CacheConfig{
			MaxAgeDays: 5,
		},
		HTTP: HTTPConfig{
			TimeoutSec:    30,
			RetryDelaySec: 1,
		},
		Log: LogConfig{
			Level:       "info",
			Format:      "json",
			Destination: "file",
		},
	}
}
