//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the module embedded at build time.
func Version() string { return strings.TrimSpace(version) }

const (
	// Name is the command name. It appears in help text, the default
	// configuration paths and environment variable names.
	Name = "petuh"
	// Description is a short summary of the project used in help output.
	Description = "Marker-driven function and class synthesis for petuhlang scripts"
)
