// Package cli contains the command line interface for petuh.
//
// # Usage
//
//	petuh [flags] <script>           run a script (the default command)
//	petuh run --watch <script>       run again whenever the script changes
//	petuh scan -o json <script>...   list declared functions and classes
//	petuh repl [<script>]            interactive session
//	petuh init                       write the configuration file
//
// # Configuration
//
// Flag defaults are read from config.toml in the configuration directory
// (see [pkg.ConfigDir]). Keys are flag names; tables nest their prefix:
//
//	[log]
//	level = "debug"
//	pretty = false
//
//	[run]
//	format = "json"
//
// Environment variables named after the flags, such as PETUH_LOG_LEVEL,
// override the file, and command-line flags override both.
//
// # Logging Options
//
//   - --log-level: minimum level (trace, debug, info, warn, error)
//   - --log-format: output format (json, text)
//   - --log-time-layout: timestamp layout (RFC3339, kitchen, ms, none, ...)
//   - --[no-]log-caller: include the caller's source position
//   - --[no-]log-pretty: colorized, human-readable records
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o petuh .
//
//   - --pprof-mode: profile to collect (cpu, heap, allocs, ...)
//   - --pprof-dir: output directory, by default pprof in the cache directory
package cli
