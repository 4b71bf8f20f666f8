package lang

import (
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/vm"
)

// Body text is translated line by line. Each logical line compiles to one
// expr-lang program, and the programs run in order against a shared set of
// locals:
//
//	NAME = EXPR          assign a local
//	return EXPR          stop and yield EXPR (bare return yields nil)
//	retrieve >> EXPR     same as return
//	pass, # comment      ignored
//	EXPR                 evaluated for effect
//
// Lines after the first return are unreachable and are not compiled.

type stepKind int

const (
	stepEval stepKind = iota
	stepAssign
	stepReturn
)

type step struct {
	program *vm.Program
	name    string
	source  string
	line    int
	kind    stepKind
}

type body struct {
	steps []step
}

var (
	assignment  = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*=([^=].*)$`)
	returnKW    = regexp.MustCompile(`^return(?:\s+(.*))?$`)
	retrieveKW  = regexp.MustCompile(`^retrieve\s*>>\s*(.*)$`)
	skippedLine = regexp.MustCompile(`^(?:#.*|pass)?$`)
)

// compileBody translates and compiles src. Names in params and every name
// bound in ns are visible to the body.
//
// Only the builtins are typed at compile time. Parameters, locals and
// namespace bindings are left undefined so expr types them as interface{};
// their values are supplied when the body runs.
func compileBody(src string, params []string, ns *Namespace) (*body, error) {
	env := ns.builtinEnv()
	bound := make(map[string]bool, len(params)+ns.Len())

	declare := func(name string) {
		delete(env, name)
		bound[name] = true
	}

	for name := range ns.names {
		declare(name)
	}

	for _, p := range params {
		declare(p)
	}

	var b body

	for n, line := range strings.Split(dedent(src), "\n") {
		line = strings.TrimSpace(line)
		if skippedLine.MatchString(line) {
			continue
		}

		st := step{line: n + 1, kind: stepEval, source: line}

		if m := assignment.FindStringSubmatch(line); m != nil {
			st.kind, st.name, st.source = stepAssign, m[1], strings.TrimSpace(m[2])
		} else if m := returnKW.FindStringSubmatch(line); m != nil {
			st.kind, st.source = stepReturn, strings.TrimSpace(m[1])
		} else if m := retrieveKW.FindStringSubmatch(line); m != nil {
			st.kind, st.source = stepReturn, strings.TrimSpace(m[1])
		}

		if st.source == "" {
			if st.kind != stepReturn {
				return nil, fmt.Errorf("line %d: empty expression", st.line)
			}

			st.source = "nil"
		}

		program, err := compileExpr(st.source, env, bound)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", st.line, err)
		}

		st.program = program
		b.steps = append(b.steps, st)

		if st.kind == stepAssign {
			declare(st.name)
		}

		if st.kind == stepReturn {
			break
		}
	}

	return &b, nil
}

// run evaluates the body with the given locals. Namespace bindings are read
// when run is called, so a body may refer to functions defined after it.
func (b *body) run(name string, locals map[string]any, ns *Namespace) (any, error) {
	env := ns.exprEnv()
	maps.Copy(env, locals)

	for _, st := range b.steps {
		out, err := expr.Run(st.program, env)
		if err != nil {
			return nil, ErrEvaluate.Wrap(err).With(
				slog.String("name", name),
				slog.Int("line", st.line),
				slog.String("source", st.source),
			)
		}

		switch st.kind {
		case stepAssign:
			env[st.name] = out
		case stepReturn:
			return out, nil
		case stepEval:
		}
	}

	return nil, nil
}

// compileExpr compiles src against env. Names in bound, or defined in env,
// shadow the literal identifiers True, False and None.
func compileExpr(src string, env map[string]any, bound map[string]bool) (*vm.Program, error) {
	return expr.Compile(src,
		expr.Env(env),
		expr.AllowUndefinedVariables(),
		expr.Patch(&literalPatcher{env: env, bound: bound}),
	)
}

// literalPatcher rewrites the identifiers True, False and None into the
// corresponding literals unless the name is bound.
type literalPatcher struct {
	env   map[string]any
	bound map[string]bool
}

// Visit implements ast.Visitor.
func (p *literalPatcher) Visit(node *ast.Node) {
	ident, ok := (*node).(*ast.IdentifierNode)
	if !ok {
		return
	}

	if _, defined := p.env[ident.Value]; defined || p.bound[ident.Value] {
		return
	}

	switch ident.Value {
	case "True":
		ast.Patch(node, &ast.BoolNode{Value: true})
	case "False":
		ast.Patch(node, &ast.BoolNode{Value: false})
	case "None":
		ast.Patch(node, &ast.NilNode{})
	}
}

// dedent removes the longest common leading whitespace from the non-blank
// lines of s.
func dedent(s string) string {
	lines := strings.Split(s, "\n")
	prefix := ""
	first := true

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]

		if first {
			prefix, first = indent, false

			continue
		}

		for !strings.HasPrefix(indent, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}

	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, prefix)
	}

	return strings.Join(lines, "\n")
}

// exprEnv returns the environment used to evaluate expressions: the
// builtins overlaid with the current namespace bindings.
func (ns *Namespace) exprEnv() map[string]any {
	env := ns.builtinEnv()
	for name, obj := range ns.names {
		env[name] = exprValue(obj)
	}

	return env
}

// exprValue adapts a namespace object for use inside an expression. Callables
// and function placeholders become Go functions so they can be invoked with
// call syntax; everything else is passed through.
func exprValue(obj any) any {
	switch v := obj.(type) {
	case Callable:
		return func(args ...any) (any, error) { return v.Call(args, nil) }
	case *FunctionPlaceholder:
		return func(...any) (any, error) { return nil, errUnresolved(v.name) }
	default:
		return obj
	}
}
