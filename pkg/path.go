package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// Prefix returns the name used for the configuration and cache directories
// and as the prefix of environment variable names.
//
// Prefix is the base name of the executable without extension, except:
//   - "__debug_bin" (default output of the dlv debugger) is replaced by Name
//   - leading dots are removed
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		return prefixOf(id)
	},
)

var prefixRules = []struct {
	rex *regexp.Regexp
	rep string
}{
	{regexp.MustCompile(`^__debug_bin\d*$`), Name},
	{regexp.MustCompile(`^\.+`), ""},
}

func prefixOf(path string) string {
	base := filepath.Base(path)
	id := strings.TrimSuffix(base, filepath.Ext(base))

	for _, rule := range prefixRules {
		id = rule.rex.ReplaceAllString(id, rule.rep)
	}

	if id == "" {
		return Name
	}

	return id
}

// EnvVar returns the environment variable name for key, such as
// PETUH_CONFIG_DIR for "config-dir".
func EnvVar(key string) string {
	name := strings.ToUpper(Prefix() + "_" + key)

	return strings.Map(func(r rune) rune {
		if r == '-' || r == '.' {
			return '_'
		}

		return r
	}, name)
}

// ConfigDir returns the configuration directory: $PREFIX_CONFIG_DIR if set,
// otherwise a directory named [Prefix] in the user configuration directory.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string {
		return userDir(EnvVar("config-dir"), os.UserConfigDir, ".config")
	},
)

// CacheDir returns the directory for transient files such as REPL history
// and profiles: $PREFIX_CACHE_DIR if set, otherwise a directory named
// [Prefix] in the user cache directory.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string {
		return userDir(EnvVar("cache-dir"), os.UserCacheDir, ".cache")
	},
)

// userDir resolves a per-user directory. The environment variable env wins;
// then base; then hidden under the home directory; then the working
// directory.
func userDir(env string, base func() (string, error), hidden string) string {
	if dir, ok := os.LookupEnv(env); ok && dir != "" {
		return dir
	}

	dir, err := base()
	if err != nil {
		dir, err = os.UserHomeDir()
		if err == nil {
			dir = filepath.Join(dir, hidden)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, Prefix())
}
