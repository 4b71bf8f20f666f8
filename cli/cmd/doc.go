// Package cmd implements the petuh subcommands.
//
//   - scan lists the names each script declares
//   - run activates and executes a script
//   - repl starts an interactive session
//   - init writes the configuration file
//   - version prints the program version
package cmd

import "github.com/alecthomas/kong"

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)

// Vars returns the kong variables referenced by the command flags.
func Vars() kong.Vars {
	return kong.Vars{"formatEnum": formatEnum}
}
