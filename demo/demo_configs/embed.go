package demo_configs

import (
	"embed"
)

// FS provides embedded default search space YAMLs for external usage.
//
//go:embed *.yaml
var FS embed.FS
