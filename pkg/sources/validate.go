package sources

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for errors. Secondary and register
// endpoints may be empty; they are only needed for orchid runs.
func (c *EndpointsConfig) Validate() error {
	if err := requireURL("reference.search_url", c.Reference.SearchURL); err != nil {
		return err
	}
	if err := requireURL("reference.archive_url", c.Reference.ArchiveURL); err != nil {
		return err
	}
	if !strings.Contains(c.Reference.ArchiveURL, "{taxon}") {
		return fmt.Errorf(
			"reference.archive_url must contain the {taxon} placeholder",
		)
	}
	if err := requireURL("catalog.base_url", c.Catalog.BaseURL); err != nil {
		return err
	}

	for name, val := range map[string]string{
		"secondary.search_url": c.Secondary.SearchURL,
		"register.search_url":  c.Register.SearchURL,
	} {
		if val != "" && !IsValidURL(val) {
			return fmt.Errorf("%s is not a valid URL: %s", name, val)
		}
	}
	return nil
}

func requireURL(name, val string) error {
	if val == "" {
		return fmt.Errorf("%s is required", name)
	}
	if !IsValidURL(val) {
		return fmt.Errorf("%s is not a valid URL: %s", name, val)
	}
	return nil
}

// IsValidURL checks if a string is a valid URL.
func IsValidURL(str string) bool {
	u, err := url.Parse(str)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}
