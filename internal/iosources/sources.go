// Package iosources loads the endpoints.yaml configuration from the
// user's config directory.
package iosources

import (
	"os"

	"github.com/gnames/gnrecon/pkg/config"
	"github.com/gnames/gnrecon/pkg/sources"
	"gopkg.in/yaml.v3"
)

type iosources struct {
	cfg *config.Config
}

func New(cfg *config.Config) sources.Sources {
	res := iosources{cfg: cfg}
	return &res
}

func (s *iosources) Load() (*sources.EndpointsConfig, error) {
	endpointsPath := config.EndpointsFilePath(s.cfg.HomeDir)
	endpoints, err := loadEndpointsConfig(endpointsPath)
	if err != nil {
		return nil, EndpointsConfigError(endpointsPath, err)
	}
	return endpoints, nil
}

func loadEndpointsConfig(path string) (*sources.EndpointsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var res sources.EndpointsConfig
	if err := yaml.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	return &res, nil
}
