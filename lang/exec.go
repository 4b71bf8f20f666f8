package lang

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/klauspost/readahead"
)

// Statement keywords in the order they are documented.
var keywords = []string{"using", "function", "pyclass", "then", "retrieve"}

// Keywords returns the statement keywords.
func Keywords() []string { return slices.Clone(keywords) }

var (
	keywordStatement = regexp.MustCompile(`(?s)^([a-z]+)\s*>>\s*(.*)$`)
	thenIndex        = regexp.MustCompile(`(?s)^then\s*\[(.*)\]$`)
	declaredName     = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9_]*)`)
	bareIdentifier   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// IsStatement reports whether line begins with a statement keyword.
func IsStatement(line string) bool {
	line = strings.TrimSpace(line)
	if thenIndex.MatchString(line) {
		return true
	}

	m := keywordStatement.FindStringSubmatch(line)

	return m != nil && slices.Contains(keywords, m[1])
}

// Exec runs every statement of the script read from r. The name identifies
// the script in errors and logs. It returns the value of the last retrieve
// statement, or nil if there was none.
//
// Statements are separated by newlines. A statement with an unclosed
// parenthesis or bracket continues on the following lines. Blank lines and
// lines starting with # are ignored.
func (s *Session) Exec(ctx context.Context, name string, r io.Reader) (any, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	s.result, s.retrieved = nil, false

	var (
		pending []string
		start   int
		count   int
	)

	lines := bufio.NewScanner(ra)
	lines.Buffer(make([]byte, 0, 64*1024), 1<<24)

	for n := 1; lines.Scan(); n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line := lines.Text()

		if len(pending) == 0 {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				continue
			}

			start = n
		}

		pending = append(pending, line)

		src := strings.Join(pending, "\n")
		if bracketDepth(src) > 0 {
			continue
		}

		pending = pending[:0]
		count++

		if _, err := s.statement(ctx, strings.TrimSpace(src)); err != nil {
			return nil, WrapError(err).With(
				slog.String("script", name),
				slog.Int("line", start),
			)
		}
	}

	if err := lines.Err(); err != nil {
		return nil, ErrSourceRead.Wrap(err).With(slog.String("script", name))
	}

	if len(pending) > 0 {
		return nil, ErrStatement.
			Wrap(errors.New("unexpected end of script in unclosed statement")).
			With(slog.String("script", name), slog.Int("line", start))
	}

	s.logger.DebugContext(ctx, "exec",
		slog.String("script", name),
		slog.Int("statements", count),
		slog.Bool("retrieved", s.retrieved),
	)

	return s.result, nil
}

// ExecString runs the script src.
func (s *Session) ExecString(ctx context.Context, src string) (any, error) {
	return s.Exec(ctx, "<string>", strings.NewReader(src))
}

// ExecLine runs a single statement and returns the value it produced: the
// printed value of then, the recorded value of retrieve, or the object bound
// by a declaration.
func (s *Session) ExecLine(ctx context.Context, line string) (any, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, nil
	}

	return s.statement(ctx, line)
}

func (s *Session) statement(ctx context.Context, src string) (any, error) {
	if m := thenIndex.FindStringSubmatch(src); m != nil {
		return s.then(ctx, m[1])
	}

	m := keywordStatement.FindStringSubmatch(src)
	if m == nil {
		return nil, errStatement(src, "expected KEYWORD >> ...")
	}

	rest := strings.TrimSpace(m[2])

	switch m[1] {
	case "using":
		return nil, checkLanguage(rest)
	case "function":
		return s.function(rest)
	case "pyclass":
		return s.pyclass(rest)
	case "then":
		return s.then(ctx, rest)
	case "retrieve":
		v, err := s.value(rest)
		if err != nil {
			return nil, err
		}

		s.result, s.retrieved = v, true

		return v, nil
	default:
		return nil, errStatement(src, "unknown keyword "+m[1])
	}
}

// function handles "function >> NAME" and "function >> NAME(ARGS)[BODY]".
func (s *Session) function(rest string) (any, error) {
	name, tail, err := splitDeclared(rest)
	if err != nil {
		return nil, err
	}

	if tail == "" {
		return s.declareIfUnbound(CategoryFunctions, name)
	}

	argsSrc, after, ok := enclosed(tail, '(')
	if !ok {
		return nil, errStatement(rest, "expected (ARGS) after function name")
	}

	bodySrc, after, ok := enclosed(strings.TrimSpace(after), '[')
	if !ok || strings.TrimSpace(after) != "" {
		return nil, errStatement(rest, "expected [BODY] after function arguments")
	}

	args, err := s.list(argsSrc)
	if err != nil {
		return nil, err
	}

	payload, err := s.eval(bodySrc)
	if err != nil {
		return nil, err
	}

	obj, err := s.placeholder(CategoryFunctions, name)
	if err != nil {
		return nil, err
	}

	p, ok := obj.(*FunctionPlaceholder)
	if !ok {
		return nil, notCallable(name, obj)
	}

	inner, err := p.Call(args...)
	if err != nil {
		return nil, err
	}

	return inner.Index(payload)
}

// pyclass handles "pyclass >> NAME", "pyclass >> NAME(PARENTS)" and
// "pyclass >> NAME.createInstance(BIND, ARGS...)".
func (s *Session) pyclass(rest string) (any, error) {
	name, tail, err := splitDeclared(rest)
	if err != nil {
		return nil, err
	}

	switch {
	case tail == "":
		return s.declareIfUnbound(CategoryClasses, name)

	case strings.HasPrefix(tail, "("):
		parentsSrc, after, ok := enclosed(tail, '(')
		if !ok || strings.TrimSpace(after) != "" {
			return nil, errStatement(rest, "expected (PARENTS) after class name")
		}

		parents, err := s.list(parentsSrc)
		if err != nil {
			return nil, err
		}

		obj, err := s.placeholder(CategoryClasses, name)
		if err != nil {
			return nil, err
		}

		p, ok := obj.(*ClassPlaceholder)
		if !ok {
			return nil, notCallable(name, obj)
		}

		return p.Synthesize(parents...)

	case strings.HasPrefix(tail, ".createInstance"):
		argsSrc, after, ok := enclosed(strings.TrimPrefix(tail, ".createInstance"), '(')
		if !ok || strings.TrimSpace(after) != "" {
			return nil, errStatement(rest, "expected createInstance(BIND, ARGS...)")
		}

		return s.createInstance(name, argsSrc)

	default:
		return nil, errStatement(rest, "unexpected text after class name")
	}
}

func (s *Session) createInstance(name, argsSrc string) (*Instance, error) {
	obj, ok := s.ns.Lookup(name)
	if !ok {
		return nil, ErrUnresolved.With(slog.String("name", name))
	}

	var t *Type

	switch v := obj.(type) {
	case *Type:
		t = v
	case *ClassPlaceholder:
		return nil, errUnresolved(name)
	default:
		return nil, notCallable(name, obj)
	}

	args, err := s.list(argsSrc)
	if err != nil {
		return nil, err
	}

	bindTo := ""
	if len(args) > 0 {
		var ok bool
		if bindTo, ok = args[0].(string); !ok {
			return nil, errStatement(name+".createInstance("+argsSrc+")",
				fmt.Sprintf("binding name must be a string, got %T", args[0]))
		}

		args = args[1:]
	}

	return t.CreateInstance(bindTo, args, nil)
}

// then evaluates src, calls the result if it is callable, and prints it.
func (s *Session) then(ctx context.Context, src string) (any, error) {
	v, err := s.value(src)
	if err != nil {
		return nil, err
	}

	switch fn := v.(type) {
	case Callable:
		v, err = fn.Call(nil, nil)
	case *FunctionPlaceholder:
		err = errUnresolved(fn.name)
	case func(...any) (any, error):
		v, err = fn()
	}

	if err != nil {
		return nil, WrapError(err)
	}

	s.logger.TraceContext(ctx, "then", slog.String("source", src))

	if _, err := fmt.Fprintln(s.output, FormatResult(v)); err != nil {
		return nil, err
	}

	return v, nil
}

// value evaluates src. A bare bound name yields the bound object itself
// rather than its expression form.
func (s *Session) value(src string) (any, error) {
	if bareIdentifier.MatchString(src) {
		if obj, ok := s.ns.Lookup(src); ok {
			return obj, nil
		}
	}

	return s.eval(src)
}

func (s *Session) eval(src string) (any, error) {
	if strings.TrimSpace(src) == "" {
		return nil, errStatement(src, "empty expression")
	}

	env := s.ns.exprEnv()

	program, err := compileExpr(src, env, nil)
	if err != nil {
		return nil, ErrStatement.Wrap(err).With(slog.String("source", src))
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return nil, ErrEvaluate.Wrap(err).With(slog.String("source", src))
	}

	return out, nil
}

func (s *Session) list(src string) ([]any, error) {
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}

	out, err := s.eval("[" + src + "]")
	if err != nil {
		return nil, err
	}

	list, _ := out.([]any)

	return list, nil
}

// placeholder returns the placeholder bound to name, or a fresh one from the
// strategy if name is unbound or already defined. A fresh placeholder is not
// bound; defining it binds the result.
func (s *Session) placeholder(c Category, name string) (any, error) {
	if obj, ok := s.ns.Lookup(name); ok {
		switch obj.(type) {
		case *FunctionPlaceholder, *ClassPlaceholder:
			return obj, nil
		}
	}

	return s.strategy.Resolve(c, name)
}

func (s *Session) declareIfUnbound(c Category, name string) (any, error) {
	if obj, ok := s.ns.Lookup(name); ok {
		return obj, nil
	}

	obj, err := s.strategy.Resolve(c, name)
	if err != nil {
		return nil, err
	}

	s.ns.Bind(name, obj)

	return obj, nil
}

func splitDeclared(rest string) (name, tail string, err error) {
	m := declaredName.FindString(rest)
	if m == "" {
		return "", "", errStatement(rest, "expected a name")
	}

	return m, strings.TrimSpace(rest[len(m):]), nil
}

// enclosed returns the text between s[0], which must be open, and its
// matching closer, along with the text that follows the closer.
func enclosed(s string, open byte) (inner, after string, ok bool) {
	if s == "" || s[0] != open {
		return "", s, false
	}

	end := matchBracket(s)
	if end < 0 {
		return "", s, false
	}

	return s[1:end], s[end+1:], true
}

// matchBracket returns the index of the bracket closing s[0], ignoring
// brackets inside string literals, or -1 if it is never closed.
func matchBracket(s string) int {
	depth := 0
	quote := byte(0)

	for i := 0; i < len(s); i++ {
		c := s[i]

		if quote != 0 {
			switch {
			case c == '\\' && quote != '`':
				i++
			case c == quote:
				quote = 0
			}

			continue
		}

		switch c {
		case '"', '\'', '`':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

// bracketDepth returns the number of brackets left open at the end of s,
// ignoring brackets inside string literals. An unterminated raw string
// counts as an open bracket.
func bracketDepth(s string) int {
	depth := 0
	quote := byte(0)

	for i := 0; i < len(s); i++ {
		c := s[i]

		if quote != 0 {
			switch {
			case c == '\\' && quote != '`':
				i++
			case c == quote:
				quote = 0
			case c == '\n' && quote != '`':
				quote = 0
			}

			continue
		}

		switch c {
		case '"', '\'', '`':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
	}

	if quote == '`' {
		depth++
	}

	return depth
}

// Incomplete reports whether src ends inside an open bracket or raw string,
// so that a statement continues on the next line.
func Incomplete(src string) bool { return bracketDepth(src) > 0 }

// FormatResult renders v the way then statements print it.
func FormatResult(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case string:
		return v
	case []any:
		items := make([]string, len(v))
		for i, item := range v {
			if str, ok := item.(string); ok {
				items[i] = fmt.Sprintf("%q", str)
			} else {
				items[i] = FormatResult(item)
			}
		}

		return "[" + strings.Join(items, ", ") + "]"
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func errStatement(src, reason string) error {
	return ErrStatement.
		Wrap(errors.New(reason)).
		With(slog.String("source", src))
}

func notCallable(name string, obj any) error {
	return ErrNotCallable.
		Wrap(fmt.Errorf("%s is bound to %s", name, Kind(obj))).
		With(slog.String("name", name))
}
