package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/beetlebugorg/vectile/pkg/vectile"
)

// renderConfig is the YAML file behind -config. The style table follows the
// layer's property rule shape; hide rules are registered before the first
// tile loads.
//
//	style:
//	  kind:
//	    park: {fillColor: "#2e7d32", fillOpacity: 0.6}
//	    water: {color: "#1565c0", weight: 1}
//	hide:
//	  - property: kind
//	    value: construction
type renderConfig struct {
	Style map[string]map[any]vectile.Style `yaml:"style"`
	Hide  []hideRule                       `yaml:"hide"`
	Debug bool                             `yaml:"debug"`
}

type hideRule struct {
	Property string `yaml:"property"`
	Value    any    `yaml:"value"`
}

func loadConfig(path string) (renderConfig, error) {
	var cfg renderConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
