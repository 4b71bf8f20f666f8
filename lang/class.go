package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// RootType is the root capability marker shared by every synthesized type.
// It is always the first base of a synthesized type.
var RootType = &Type{name: "Object"}

// Type is a synthesized type descriptor.
type Type struct {
	name  string
	bases []*Type
	ns    *Namespace
}

// Name returns the type's name.
func (t *Type) Name() string { return t.name }

// Bases returns a copy of the type's direct bases in declaration order.
func (t *Type) Bases() []*Type { return slices.Clone(t.bases) }

// String implements fmt.Stringer.
func (t *Type) String() string { return "<class " + t.name + ">" }

// MRO returns the method resolution order of t: t itself, then its bases
// depth-first and left to right, each type listed once at its last
// occurrence so that shared ancestors such as [RootType] come after every
// type that derives from them.
func (t *Type) MRO() []*Type {
	var walk []*Type

	var visit func(*Type)
	visit = func(u *Type) {
		walk = append(walk, u)
		for _, b := range u.bases {
			visit(b)
		}
	}
	visit(t)

	seen := make(map[*Type]struct{}, len(walk))
	order := make([]*Type, 0, len(walk))

	for i := len(walk) - 1; i >= 0; i-- {
		if _, ok := seen[walk[i]]; ok {
			continue
		}

		seen[walk[i]] = struct{}{}
		order = append(order, walk[i])
	}

	slices.Reverse(order)

	return order
}

// IsSubtype reports whether t is u or derives from u.
func (t *Type) IsSubtype(u *Type) bool {
	if t == u {
		return true
	}

	for _, b := range t.bases {
		if b.IsSubtype(u) {
			return true
		}
	}

	return false
}

// New constructs an instance of t. The initializer accepts and discards any
// arguments, so construction never fails.
func (t *Type) New(args ...any) *Instance {
	return &Instance{
		id:   uuid.New(),
		typ:  t,
		args: args,
	}
}

// CreateInstance constructs an instance of t with the given arguments and
// binds it under bindTo in the namespace t was synthesized into.
func (t *Type) CreateInstance(
	bindTo string,
	args []any,
	kwargs map[string]any,
) (*Instance, error) {
	if bindTo == "" {
		return nil, ErrMissingBinding.With(slog.String("type", t.name))
	}

	inst := t.New(args...)
	inst.kwargs = maps.Clone(kwargs)

	if t.ns != nil {
		t.ns.Bind(bindTo, inst)
	}

	return inst, nil
}

// Instance is an object constructed from a synthesized [Type].
type Instance struct {
	id     uuid.UUID
	typ    *Type
	args   []any
	kwargs map[string]any
}

// ID returns the instance's identity.
func (i *Instance) ID() uuid.UUID { return i.id }

// Type returns the instance's type.
func (i *Instance) Type() *Type { return i.typ }

// Args returns a copy of the positional construction arguments.
func (i *Instance) Args() []any { return slices.Clone(i.args) }

// Kwargs returns a copy of the keyword construction arguments.
func (i *Instance) Kwargs() map[string]any { return maps.Clone(i.kwargs) }

// IsA reports whether the instance's type is t or derives from it.
func (i *Instance) IsA(t *Type) bool { return i.typ.IsSubtype(t) }

// String implements fmt.Stringer.
func (i *Instance) String() string {
	id := i.id.String()

	return "<" + i.typ.name + " object at " + id[:8] + ">"
}

// ClassPlaceholder stands in for a class declared by a marker but not yet
// synthesized.
type ClassPlaceholder struct {
	name string
	ns   *Namespace
}

// NewClassPlaceholder returns a placeholder that synthesizes into ns. A nil
// ns gets a new empty namespace of its own.
func NewClassPlaceholder(name string, ns *Namespace) *ClassPlaceholder {
	return &ClassPlaceholder{name: name, ns: orNewNamespace(ns)}
}

// Name returns the declared class name.
func (p *ClassPlaceholder) Name() string { return p.name }

// String implements fmt.Stringer.
func (p *ClassPlaceholder) String() string { return p.name }

// Synthesize validates extends, constructs a new [Type] named after the
// placeholder, binds it and returns it.
//
// Each element of extends is a *Type or a slice of them. With no extends the
// type derives from [RootType] only; otherwise its bases are RootType
// followed by extends in the given order. Nothing is constructed or bound
// unless every element is a type.
func (p *ClassPlaceholder) Synthesize(extends ...any) (*Type, error) {
	parents, err := p.parents(extends)
	if err != nil {
		return nil, err
	}

	t := &Type{
		name:  p.name,
		bases: append([]*Type{RootType}, parents...),
		ns:    p.ns,
	}

	p.ns.logger.Trace("synthesize class",
		slog.String("name", p.name),
		slog.Any("bases", typeNames(t.bases)),
	)

	p.ns.Bind(p.name, t)

	return t, nil
}

func (p *ClassPlaceholder) parents(extends []any) ([]*Type, error) {
	var (
		parents []*Type
		wrong   strings.Builder
	)

	seen := map[*Type]struct{}{RootType: {}}

	for _, elem := range flattenExtends(extends) {
		t, ok := elem.(*Type)
		if !ok || t == nil {
			fmt.Fprintf(&wrong, "%v(%T);", elem, elem)

			continue
		}

		if _, dup := seen[t]; dup {
			fmt.Fprintf(&wrong, "%v(duplicate base);", t)

			continue
		}

		seen[t] = struct{}{}
		parents = append(parents, t)
	}

	if wrong.Len() > 0 {
		return nil, ErrBadParentClass.
			Wrap(errors.New("expected classes for " + p.name + ", got " + wrong.String())).
			With(slog.String("name", p.name))
	}

	return parents, nil
}

// flattenExtends expands slice elements of extends by one level.
func flattenExtends(extends []any) []any {
	var flat []any

	for _, elem := range extends {
		switch v := elem.(type) {
		case []*Type:
			for _, t := range v {
				flat = append(flat, t)
			}
		case []any:
			flat = append(flat, v...)
		default:
			flat = append(flat, elem)
		}
	}

	return flat
}

func typeNames(types []*Type) []string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.name
	}

	return names
}
