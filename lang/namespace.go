package lang

import (
	"iter"
	"log/slog"
	"maps"
	"slices"

	"github.com/gobwas/glob"

	"github.com/InspiredImpact/petuhlang/log"
)

// Namespace is the name-to-object registry that all synthesis targets.
//
// Binding is insert-or-overwrite: the last writer for a name wins and no
// conflict is reported. Entries are never removed. A Namespace is not safe
// for concurrent use.
type Namespace struct {
	names    map[string]any
	builtins map[string]any
	logger   log.Logger
}

// NewNamespace returns an empty namespace that logs bindings to logger.
// A zero-valued logger disables logging.
func NewNamespace(logger log.Logger) *Namespace {
	return &Namespace{
		names:  make(map[string]any),
		logger: logger,
	}
}

func orNewNamespace(ns *Namespace) *Namespace {
	if ns == nil {
		return NewNamespace(log.Logger{})
	}

	return ns
}

// Bind stores obj under name, replacing any previous binding.
func (ns *Namespace) Bind(name string, obj any) {
	prev, replaced := ns.names[name]
	ns.names[name] = obj

	ns.logger.Trace("bind",
		slog.String("name", name),
		slog.String("kind", Kind(obj)),
		slog.Bool("replaced", replaced),
		slog.String("previous", kindOrEmpty(prev, replaced)),
	)
}

// SetProcessEnv replaces the process environment visible to the env builtin.
// Each element has the form KEY=VALUE. A nil env uses [os.Environ].
func (ns *Namespace) SetProcessEnv(env []string) {
	ns.builtins = Builtins(env)
}

func (ns *Namespace) builtinEnv() map[string]any {
	if ns.builtins == nil {
		ns.builtins = Builtins(nil)
	}

	return maps.Clone(ns.builtins)
}

// Lookup returns the object bound to name.
func (ns *Namespace) Lookup(name string) (any, bool) {
	obj, ok := ns.names[name]

	return obj, ok
}

// Len returns the number of bound names.
func (ns *Namespace) Len() int { return len(ns.names) }

// Names returns all bound names in lexical order.
func (ns *Namespace) Names() []string {
	return slices.Sorted(maps.Keys(ns.names))
}

// All returns an iterator over all bindings in lexical order of name.
func (ns *Namespace) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, name := range ns.Names() {
			if !yield(name, ns.names[name]) {
				return
			}
		}
	}
}

// Match returns the bound names matching the glob pattern, in lexical order.
// An empty pattern matches every name.
func (ns *Namespace) Match(pattern string) ([]string, error) {
	if pattern == "" {
		return ns.Names(), nil
	}

	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, ErrPattern.Wrap(err).
			With(slog.String("pattern", pattern))
	}

	var matched []string

	for _, name := range ns.Names() {
		if g.Match(name) {
			matched = append(matched, name)
		}
	}

	return matched, nil
}

// Kind returns a short description of what kind of object obj is, as seen by
// the namespace.
func Kind(obj any) string {
	switch obj.(type) {
	case *FunctionPlaceholder:
		return "function placeholder"
	case *ClassPlaceholder:
		return "class placeholder"
	case *Function:
		return "function"
	case *Constant:
		return "constant function"
	case *Type:
		return "type"
	case *Instance:
		return "instance"
	case nil:
		return "nil"
	default:
		return "value"
	}
}

func kindOrEmpty(obj any, ok bool) string {
	if !ok {
		return ""
	}

	return Kind(obj)
}
