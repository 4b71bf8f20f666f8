package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// ArgSpec declares one parameter of a synthesized function. It is
// implemented only by [*Arg] and [*Kwarg].
type ArgSpec interface {
	Name() string
	Annotation() any

	argSpec()
}

// Arg declares a positional parameter.
type Arg struct {
	name       string
	annotation any
}

// NewArg returns a positional parameter declaration.
func NewArg(name string) *Arg { return &Arg{name: name} }

// Name returns the parameter name.
func (a *Arg) Name() string { return a.name }

// Annotation returns the annotation set with [Arg.Annotate], if any.
func (a *Arg) Annotation() any { return a.annotation }

// Annotate records v as the parameter's annotation and returns a.
func (a *Arg) Annotate(v any) *Arg {
	a.annotation = v

	return a
}

// String implements fmt.Stringer.
func (a *Arg) String() string { return a.name }

func (*Arg) argSpec() {}

// Kwarg declares a keyword parameter with a default value.
type Kwarg struct {
	name       string
	value      any
	annotation any
}

// NewKwarg returns a keyword parameter declaration with default value.
func NewKwarg(name string, value any) *Kwarg {
	return &Kwarg{name: name, value: value}
}

// Name returns the parameter name.
func (k *Kwarg) Name() string { return k.name }

// Value returns the parameter's default value.
func (k *Kwarg) Value() any { return k.value }

// Annotation returns the annotation set with [Kwarg.Annotate], if any.
func (k *Kwarg) Annotation() any { return k.annotation }

// Annotate records v as the parameter's annotation and returns k.
func (k *Kwarg) Annotate(v any) *Kwarg {
	k.annotation = v

	return k
}

// String implements fmt.Stringer.
func (k *Kwarg) String() string { return k.name + "=" + formatDefault(k.value) }

func (*Kwarg) argSpec() {}

// FunctionPlaceholder stands in for a function declared by a marker but not
// yet defined. Defining it is a two-stage operation: [FunctionPlaceholder.Call]
// declares the parameters, then [FunctionInner.Index] supplies the body.
type FunctionPlaceholder struct {
	name string
	ns   *Namespace
}

// NewFunctionPlaceholder returns a placeholder that defines into ns. A nil
// ns gets a new empty namespace of its own.
func NewFunctionPlaceholder(name string, ns *Namespace) *FunctionPlaceholder {
	return &FunctionPlaceholder{name: name, ns: orNewNamespace(ns)}
}

// Name returns the declared function name.
func (p *FunctionPlaceholder) Name() string { return p.name }

// String implements fmt.Stringer.
func (p *FunctionPlaceholder) String() string { return p.name }

// Call validates the parameter declarations and returns the second stage.
// Every element of args must be an [*Arg] or a [*Kwarg].
func (p *FunctionPlaceholder) Call(args ...any) (*FunctionInner, error) {
	specs := make([]ArgSpec, 0, len(args))

	for _, arg := range args {
		switch spec := arg.(type) {
		case *Arg:
			if spec != nil {
				specs = append(specs, spec)

				continue
			}
		case *Kwarg:
			if spec != nil {
				specs = append(specs, spec)

				continue
			}
		}

		return nil, ErrBadFunctionArgument.
			Wrap(fmt.Errorf("all function arguments must be arg or kwarg, got %T", arg)).
			With(slog.String("name", p.name))
	}

	return &FunctionInner{name: p.name, ns: p.ns, args: specs}, nil
}

// FunctionInner holds a validated parameter list awaiting a body.
type FunctionInner struct {
	name string
	ns   *Namespace
	args []ArgSpec
}

// Name returns the function name.
func (fi *FunctionInner) Name() string { return fi.name }

// Args returns a copy of the validated parameter declarations.
func (fi *FunctionInner) Args() []ArgSpec { return slices.Clone(fi.args) }

// Index defines the function.
//
// A string payload is compiled as the function body. Any other payload
// becomes a [*Constant] that returns it. The result is bound under the
// function name and returned; nothing is bound if compilation fails.
func (fi *FunctionInner) Index(payload any) (Callable, error) {
	src, ok := payload.(string)
	if !ok {
		c := &Constant{name: fi.name, value: payload}
		fi.ns.Bind(fi.name, c)

		return c, nil
	}

	fn, err := fi.compile(src)
	if err != nil {
		return nil, err
	}

	fi.ns.Bind(fi.name, fn)

	return fn, nil
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (fi *FunctionInner) compile(src string) (*Function, error) {
	decl := Declaration(fi.name, fi.args, src)

	fail := func(err error) error {
		return ErrCompileFailure.Wrap(err).With(
			slog.String("name", fi.name),
			slog.String("source", decl),
		)
	}

	params := make([]Parameter, 0, len(fi.args))
	seen := make(map[string]struct{}, len(fi.args))

	for _, spec := range signatureOrder(fi.args) {
		name := spec.Name()
		if !identifier.MatchString(name) {
			return nil, fail(fmt.Errorf("invalid parameter name %q", name))
		}

		if _, dup := seen[name]; dup {
			return nil, fail(fmt.Errorf("duplicate parameter %q", name))
		}

		seen[name] = struct{}{}

		p := Parameter{
			Name:       name,
			Annotation: spec.Annotation(),
			Marker:     FutureArgument,
		}
		if kw, ok := spec.(*Kwarg); ok {
			p.Default, p.HasDefault = kw.value, true
		}

		params = append(params, p)
	}

	b, err := compileBody(src, slices.Collect(maps.Keys(seen)), fi.ns)
	if err != nil {
		return nil, fail(err)
	}

	fi.ns.logger.Trace("compile function",
		slog.String("name", fi.name),
		slog.String("signature", Signature(fi.args)),
		slog.Int("steps", len(b.steps)),
	)

	return &Function{
		name:   fi.name,
		params: params,
		decl:   decl,
		source: src,
		body:   b,
		ns:     fi.ns,
	}, nil
}

// Signature renders the parameter list of specs: positional names in
// declaration order, then name=value keyword pairs, all separated by ", ".
func Signature(specs []ArgSpec) string {
	parts := make([]string, 0, len(specs))

	for _, spec := range signatureOrder(specs) {
		switch s := spec.(type) {
		case *Arg:
			parts = append(parts, s.name)
		case *Kwarg:
			parts = append(parts, s.String())
		}
	}

	return strings.Join(parts, ", ")
}

// signatureOrder returns specs with every positional argument ahead of every
// keyword argument, each group keeping its declaration order.
func signatureOrder(specs []ArgSpec) []ArgSpec {
	ordered := make([]ArgSpec, 0, len(specs))

	for _, spec := range specs {
		if _, ok := spec.(*Arg); ok {
			ordered = append(ordered, spec)
		}
	}

	for _, spec := range specs {
		if _, ok := spec.(*Kwarg); ok {
			ordered = append(ordered, spec)
		}
	}

	return ordered
}

// Declaration renders the full text of a function definition: a header line
// followed by body with each non-blank line indented four spaces.
func Declaration(name string, specs []ArgSpec, body string) string {
	var sb strings.Builder

	sb.WriteString("function " + name + "(" + Signature(specs) + "):\n")

	for i, line := range strings.Split(body, "\n") {
		if i > 0 {
			sb.WriteByte('\n')
		}

		if strings.TrimSpace(line) != "" {
			sb.WriteString("    " + line)
		}
	}

	return sb.String()
}

func formatDefault(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(v)
	default:
		return fmt.Sprint(v)
	}
}

// Callable is a function bound in a [Namespace].
type Callable interface {
	Name() string
	Call(args []any, kwargs map[string]any) (any, error)
}

// Parameter describes one parameter of a compiled [Function].
type Parameter struct {
	Name       string  `json:"name"                 yaml:"name"`
	Default    any     `json:"default,omitempty"    yaml:"default,omitempty"`
	HasDefault bool    `json:"has_default"          yaml:"has_default"`
	Annotation any     `json:"annotation,omitempty" yaml:"annotation,omitempty"`
	Marker     *Future `json:"marker"               yaml:"marker"`
}

// Function is a function compiled from body text.
type Function struct {
	name   string
	params []Parameter
	decl   string
	source string
	body   *body
	ns     *Namespace
}

// Name returns the function name.
func (f *Function) Name() string { return f.name }

// Parameters returns a copy of the declared parameters.
func (f *Function) Parameters() []Parameter { return slices.Clone(f.params) }

// Marker returns the reserved-feature marker attached to parameter name.
func (f *Function) Marker(name string) (*Future, bool) {
	for _, p := range f.params {
		if p.Name == name {
			return p.Marker, true
		}
	}

	return nil, false
}

// Declaration returns the rendered definition text the function was
// compiled from.
func (f *Function) Declaration() string { return f.decl }

// Source returns the body text as supplied.
func (f *Function) Source() string { return f.source }

// String implements fmt.Stringer.
func (f *Function) String() string {
	header, _, _ := strings.Cut(f.decl, "\n")

	return "<" + strings.TrimSuffix(header, ":") + ">"
}

// Call binds args and kwargs to the parameters and evaluates the body.
func (f *Function) Call(args []any, kwargs map[string]any) (any, error) {
	locals, err := f.bind(args, kwargs)
	if err != nil {
		return nil, err
	}

	return f.body.run(f.name, locals, f.ns)
}

func (f *Function) bind(args []any, kwargs map[string]any) (map[string]any, error) {
	fail := func(format string, a ...any) error {
		return ErrArgumentCount.
			Wrap(fmt.Errorf(format, a...)).
			With(slog.String("name", f.name))
	}

	if len(args) > len(f.params) {
		return nil, fail("%s() takes %d arguments, %d given", f.name, len(f.params), len(args))
	}

	locals := make(map[string]any, len(f.params))

	for i, arg := range args {
		locals[f.params[i].Name] = arg
	}

	for _, key := range slices.Sorted(maps.Keys(kwargs)) {
		if !slices.ContainsFunc(f.params, func(p Parameter) bool { return p.Name == key }) {
			return nil, fail("%s() got an unexpected keyword argument %q", f.name, key)
		}

		if _, dup := locals[key]; dup {
			return nil, fail("%s() got multiple values for argument %q", f.name, key)
		}

		locals[key] = kwargs[key]
	}

	var missing []string

	for _, p := range f.params {
		if _, ok := locals[p.Name]; ok {
			continue
		}

		if p.HasDefault {
			locals[p.Name] = p.Default

			continue
		}

		missing = append(missing, strconv.Quote(p.Name))
	}

	if len(missing) > 0 {
		return nil, fail("%s() missing required arguments: %s", f.name, strings.Join(missing, ", "))
	}

	return locals, nil
}

// Constant is a callable that ignores its arguments and returns a fixed
// value.
type Constant struct {
	name  string
	value any
}

// Name returns the function name.
func (c *Constant) Name() string { return c.name }

// Value returns the constant value.
func (c *Constant) Value() any { return c.value }

// Call returns the constant value.
func (c *Constant) Call([]any, map[string]any) (any, error) { return c.value, nil }

// String implements fmt.Stringer.
func (c *Constant) String() string { return "<constant " + c.name + ">" }

// errUnresolved reports a call through a placeholder that was never defined.
func errUnresolved(name string) error {
	return ErrUnresolved.
		Wrap(errors.New(name + " is declared but has no definition")).
		With(slog.String("name", name))
}
