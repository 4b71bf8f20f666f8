package lang

//go:generate go tool stringer --linecomment --type Category --output category_string.go

import (
	"iter"
	"log/slog"
	"strings"
)

// Category identifies a kind of marker, and therefore the kind of
// placeholder created for the names it declares.
type Category int

const (
	CategoryFunctions Category = iota // functions
	CategoryClasses                   // classes
)

// Categories returns an iterator over the built-in categories in activation
// order.
func Categories() iter.Seq[Category] {
	return func(yield func(Category) bool) {
		for _, c := range []Category{CategoryFunctions, CategoryClasses} {
			if !yield(c) {
				return
			}
		}
	}
}

// ParseCategory parses the tag of a built-in category.
func ParseCategory(s string) (Category, error) {
	for c := range Categories() {
		if strings.EqualFold(strings.TrimSpace(s), c.String()) {
			return c, nil
		}
	}

	return 0, ErrUnknownCategory.With(slog.String("category", s))
}

// Defaulter produces the default placeholder for one name.
type Defaulter interface {
	Default() any
}

// Factory constructs the [Defaulter] for name. Placeholders created through
// it bind themselves into ns when they resolve.
type Factory func(name string, ns *Namespace) Defaulter

// Strategy dispatches a category and name to the matching placeholder
// factory.
//
// Resolve never caches: each call returns an independent placeholder.
type Strategy struct {
	ns        *Namespace
	factories map[Category]Factory
}

// NewStrategy returns a Strategy with the built-in function and class
// factories registered against ns.
func NewStrategy(ns *Namespace) *Strategy {
	s := &Strategy{
		ns:        ns,
		factories: make(map[Category]Factory),
	}

	s.Register(CategoryFunctions, functionFactory)
	s.Register(CategoryClasses, classFactory)

	return s
}

// Register installs f as the factory for category c, replacing any existing
// factory.
func (s *Strategy) Register(c Category, f Factory) {
	s.factories[c] = f
}

// Resolve returns a new default placeholder for name in category c.
func (s *Strategy) Resolve(c Category, name string) (any, error) {
	f, ok := s.factories[c]
	if !ok {
		return nil, ErrUnknownCategory.
			With(slog.String("category", c.String()), slog.String("name", name))
	}

	return f(name, s.ns).Default(), nil
}

type functions struct {
	name string
	ns   *Namespace
}

func functionFactory(name string, ns *Namespace) Defaulter {
	return functions{name: name, ns: ns}
}

func (f functions) Default() any { return NewFunctionPlaceholder(f.name, f.ns) }

type classes struct {
	name string
	ns   *Namespace
}

func classFactory(name string, ns *Namespace) Defaulter {
	return classes{name: name, ns: ns}
}

func (c classes) Default() any { return NewClassPlaceholder(c.name, c.ns) }
