package cli

import (
	"io"
	"log/slog"
	"maps"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/kong"

	"github.com/InspiredImpact/petuhlang/log"
)

// loadTOML is a [kong.ConfigurationLoader] for TOML configuration files.
//
// Keys are flag names, with either hyphens or underscores. Tables nest flag
// name prefixes, so these are equivalent:
//
//	log-level = "debug"
//
//	[log]
//	level = "debug"
//
// Command flags may be nested under a table named for the command.
// Command-line flags override configuration values. A file that fails to
// decode is logged and ignored, so that "petuh init --force" can still
// replace it.
func loadTOML(r io.Reader) (kong.Resolver, error) {
	var data map[string]any

	if _, err := toml.NewDecoder(r).Decode(&data); err != nil {
		log.Warn("ignoring configuration file", slog.Any("error", err))

		return config{}, nil
	}

	return flatten("", data), nil
}

// config implements [kong.Resolver] over flattened TOML keys.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver]. A flag of a command is looked up
// under the command's table first, so "[run] format" sets "run --format".
func (c config) Resolve(_ *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
	names := []string{flag.Name}
	if parent != nil && parent.Command != nil {
		names = append([]string{parent.Command.Name + "-" + flag.Name}, names...)
	}

	for _, name := range names {
		if value, ok := c[name]; ok {
			return value, nil
		}

		if value, ok := c[strings.ReplaceAll(name, "-", "_")]; ok {
			return value, nil
		}
	}

	return nil, nil
}

// flatten joins nested table keys with hyphens and converts numbers to the
// string form kong parses.
func flatten(prefix string, table map[string]any) config {
	out := config{}

	for key, value := range table {
		name := prefix + key

		switch v := value.(type) {
		case map[string]any:
			maps.Copy(out, flatten(name+"-", v))
		default:
			out[name] = scalar(v)
		}
	}

	return out
}

func scalar(v any) any {
	switch v := v.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = scalar(item)
		}

		return items
	default:
		return v
	}
}
