package cmd

import "github.com/InspiredImpact/petuhlang/lang"

// Error is the structured error type shared with the engine, so command
// failures and script failures log the same way.
type Error = lang.Error

// Command errors.
var (
	ErrJSONMarshal = lang.NewError("marshal JSON")
	ErrYAMLMarshal = lang.NewError("marshal YAML")
	ErrWriteConfig = lang.NewError("write configuration file")
	ErrFileExists  = lang.NewError("file exists (use --force to overwrite)")
	ErrOpenSource  = lang.NewError("open script")
	ErrFormat      = lang.NewError("unsupported output format")
	ErrWatch       = lang.NewError("watch script")
)
