package sources_test

import (
	"testing"

	"github.com/gnames/gnrecon/pkg/sources"
	"github.com/stretchr/testify/assert"
)

func validConfig() sources.EndpointsConfig {
	return sources.EndpointsConfig{
		Reference: sources.ReferenceEndpoints{
			SearchURL:  "https://example.org/search",
			ArchiveURL: "https://example.org/archive/{taxon}.zip",
		},
		Catalog: sources.CatalogEndpoints{
			BaseURL: "https://example.org/catalog",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		msg    string
		mutate func(*sources.EndpointsConfig)
		errStr string
	}{
		{
			msg:    "minimal valid config",
			mutate: func(c *sources.EndpointsConfig) {},
		},
		{
			msg: "optional endpoints accepted",
			mutate: func(c *sources.EndpointsConfig) {
				c.Secondary.SearchURL = "https://example.org/powo"
				c.Register.SearchURL = "https://example.org/rhs"
			},
		},
		{
			msg: "missing reference search",
			mutate: func(c *sources.EndpointsConfig) {
				c.Reference.SearchURL = ""
			},
			errStr: "reference.search_url is required",
		},
		{
			msg: "archive without placeholder",
			mutate: func(c *sources.EndpointsConfig) {
				c.Reference.ArchiveURL = "https://example.org/archive.zip"
			},
			errStr: "{taxon}",
		},
		{
			msg: "missing catalog base",
			mutate: func(c *sources.EndpointsConfig) {
				c.Catalog.BaseURL = ""
			},
			errStr: "catalog.base_url is required",
		},
		{
			msg: "bad scheme",
			mutate: func(c *sources.EndpointsConfig) {
				c.Catalog.BaseURL = "ftp://example.org/catalog"
			},
			errStr: "not a valid URL",
		},
		{
			msg: "bad optional endpoint",
			mutate: func(c *sources.EndpointsConfig) {
				c.Register.SearchURL = "not a url"
			},
			errStr: "register.search_url",
		},
	}

	for _, v := range tests {
		cfg := validConfig()
		v.mutate(&cfg)
		err := cfg.Validate()
		if v.errStr == "" {
			assert.NoError(t, err, v.msg)
		} else {
			assert.ErrorContains(t, err, v.errStr, v.msg)
		}
	}
}

func TestIsValidURL(t *testing.T) {
	assert.True(t, sources.IsValidURL("https://example.org"))
	assert.True(t, sources.IsValidURL("http://example.org/x?y=1"))
	assert.False(t, sources.IsValidURL("example.org"))
	assert.False(t, sources.IsValidURL("file:///etc/passwd"))
}
