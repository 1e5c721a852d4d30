package config

import (
	"strings"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptCacheMaxAgeDays sets how many days a genus snapshot stays fresh.
func OptCacheMaxAgeDays(i int) Option {
	return func(c *Config) {
		if isValidInt("Cache Max Age", i) {
			c.Cache.MaxAgeDays = i
		}
	}
}

// OptHTTPTimeoutSec sets the per-request timeout for remote lookups.
func OptHTTPTimeoutSec(i int) Option {
	return func(c *Config) {
		if isValidInt("HTTP Timeout", i) {
			c.HTTP.TimeoutSec = i
		}
	}
}

// OptHTTPRetryDelaySec sets the delay before the single retry of a
// failed remote lookup.
func OptHTTPRetryDelaySec(i int) Option {
	return func(c *Config) {
		if isValidInt("HTTP Retry Delay", i) {
			c.HTTP.RetryDelaySec = i
		}
	}
}

// OptFuzzyDisabled turns the spellcheck fallback off or on.
func OptFuzzyDisabled(b bool) Option {
	return func(c *Config) {
		c.Match.FuzzyDisabled = b
	}
}

// OptLogLevel sets the minimum level to log.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the log output format.
// Valid values: "json", "text".
func OptLogFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogDestination sets where logs go.
// Valid values: "file", "stdout", "stderr".
func OptLogDestination(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptHomeDir sets the home directory for config, cache and logs.
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Directory", s) {
			c.HomeDir = s
		}
	}
}

// OptPropose enables submitting mutations to the working catalog.
func OptPropose(b bool) Option {
	return func(c *Config) {
		c.Reconcile.Propose = b
	}
}

// OptExisting enables checking pending new-plant proposals.
func OptExisting(b bool) Option {
	return func(c *Config) {
		c.Reconcile.Existing = b
	}
}

// OptOrchidExtensions enables orchid-specific features.
func OptOrchidExtensions(b bool) Option {
	return func(c *Config) {
		c.Reconcile.OrchidExtensions = b
		if b {
			// Orchid runs always use "Orchid" as the common name;
			// the flags are mutually exclusive at the CLI level.
			c.Reconcile.CommonName = "Orchid"
		}
	}
}

// OptCommonName sets the common name applied to genus members.
func OptCommonName(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		c.Reconcile.CommonName = s
	}
}

// OptParentageCheck enables parentage field verification for
// registered hybrids.
func OptParentageCheck(b bool) Option {
	return func(c *Config) {
		c.Reconcile.ParentageCheck = b
	}
}
