// Package formregistry carries the build information of the field type registry.
package formregistry

import (
	_ "embed"
)

// BuildVersion is the build information written at release time.
//
//go:embed build_version.json
var BuildVersion string
