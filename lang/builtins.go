package lang

// Builtins are the names visible to every function body and script
// expression. A namespace binding with the same name shadows a builtin.

import (
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/mung"

	"github.com/InspiredImpact/petuhlang/log"
)

//nolint:gochecknoglobals
var (
	builtinOnce sync.Once
	builtinBase map[string]any
)

// Builtins returns a new builtin environment whose env function reads from
// processEnv (KEY=VALUE pairs). A nil processEnv uses [os.Environ].
func Builtins(processEnv []string) map[string]any {
	builtinOnce.Do(func() {
		builtinBase = map[string]any{
			"platform": getPlatform(),
			"hostname": getHostname(),

			"cwd": getCwd,

			"file": map[string]any{
				"exists": fileExists,
				"isDir":  fileIsDir,
			},

			"path": map[string]any{
				"abs": pathAbs,
				"cat": pathCat,
				"rel": pathRel,
			},

			"mung": map[string]any{
				"prefix":   mungPrefix,
				"prefixif": mungPrefixIf,
			},

			"cprint": log.NewConsole(os.Stdout).Sprint,

			"arg":   newArgBuiltin,
			"kwarg": newKwargBuiltin,
		}
	})

	env := maps.Clone(builtinBase)
	env["env"] = envFunc(processEnvMap(processEnv))

	return env
}

// BuiltinNames returns the top-level builtin names in lexical order.
func BuiltinNames() []string {
	return slices.Sorted(maps.Keys(Builtins(nil)))
}

func newArgBuiltin(name string, annotation ...any) *Arg {
	a := NewArg(name)
	if len(annotation) > 0 {
		a.Annotate(annotation[0])
	}

	return a
}

func newKwargBuiltin(name string, value any, annotation ...any) *Kwarg {
	k := NewKwarg(name, value)
	if len(annotation) > 0 {
		k.Annotate(annotation[0])
	}

	return k
}

// platform identifies the host using Go conventions.
type platform struct {
	OS   string
	Arch string
}

func getPlatform() platform {
	o, ok := os.LookupEnv("GOHOSTOS")
	if !ok {
		o = runtime.GOOS
	}

	a, ok := os.LookupEnv("GOHOSTARCH")
	if !ok {
		a = runtime.GOARCH
	}

	return platform{OS: o, Arch: a}
}

func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return ""
	}

	return hostname
}

func getCwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return pathAbs(".")
	}

	return cwd
}

func fileExists(path string) bool {
	_, err := os.Stat(path)

	return !os.IsNotExist(err)
}

func fileIsDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.IsDir()
}

func pathAbs(path string) string {
	p, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return p
}

func pathCat(elem ...string) string {
	return filepath.Join(elem...)
}

func pathRel(from, to string) string {
	p, err := filepath.Rel(pathAbs(from), pathAbs(to))
	if err != nil {
		return pathCat(from, to)
	}

	return p
}

func mungPrefix(key string, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(key),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String()
}

func mungPrefixIf(
	key string,
	predicate func(string) bool,
	prefix ...string,
) string {
	return mung.Make(
		mung.WithSubjectItems(key),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(predicate),
	).String()
}

// processEnvMap converts KEY=VALUE pairs to a map. A nil list uses
// [os.Environ].
func processEnvMap(list []string) map[string]string {
	if list == nil {
		list = os.Environ()
	}

	env := make(map[string]string, len(list))

	for _, entry := range list {
		if key, value, ok := strings.Cut(entry, "="); ok {
			env[key] = value
		}
	}

	return env
}

func envFunc(processEnv map[string]string) func(string) string {
	return func(key string) string {
		return processEnv[key]
	}
}
