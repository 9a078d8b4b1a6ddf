package resources

import (
	_ "embed"
)

// DefaultConfig is the built-in YAML settings document.
//
//go:embed config.yaml
var DefaultConfig []byte
