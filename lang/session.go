package lang

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/InspiredImpact/petuhlang/log"
)

// Language is the only name accepted by [Session.Using].
const Language = "petuhlang"

// Session owns the namespace and strategy of one program and drives its two
// passes: activation binds a placeholder for every declared name, and
// execution then evaluates statements that define them.
type Session struct {
	ns         *Namespace
	strategy   *Strategy
	logger     log.Logger
	output     io.Writer
	entry      string
	result     any
	processEnv []string
	retrieved  bool
}

// SessionOption configures a [Session].
type SessionOption func(*Session)

// WithLogger sets the logger used by the session and its namespace.
func WithLogger(logger log.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

// WithOutput sets the writer that then statements print to.
// The default is [os.Stdout].
func WithOutput(w io.Writer) SessionOption {
	return func(s *Session) { s.output = w }
}

// WithProcessEnv sets the KEY=VALUE pairs visible to the env builtin.
func WithProcessEnv(env []string) SessionOption {
	return func(s *Session) { s.processEnv = env }
}

// WithNamespace makes the session operate on an existing namespace.
func WithNamespace(ns *Namespace) SessionOption {
	return func(s *Session) { s.ns = ns }
}

// NewSession returns a session with an empty namespace unless
// [WithNamespace] is given.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{output: os.Stdout}
	for _, opt := range opts {
		opt(s)
	}

	if s.ns == nil {
		s.ns = NewNamespace(s.logger)
	}

	if s.output == nil {
		s.output = io.Discard
	}

	s.ns.SetProcessEnv(s.processEnv)
	s.ns.builtins["cprint"] = log.NewConsole(s.output).Sprint
	s.strategy = NewStrategy(s.ns)

	return s
}

// Namespace returns the session's namespace.
func (s *Session) Namespace() *Namespace { return s.ns }

// Strategy returns the session's strategy.
func (s *Session) Strategy() *Strategy { return s.strategy }

// EntryFile returns the script path recorded by [Session.Using] or
// [Session.Run]. It is empty until one of them is given a path.
func (s *Session) EntryFile() string { return s.entry }

// Result returns the value of the most recent retrieve statement.
func (s *Session) Result() (any, bool) { return s.result, s.retrieved }

// Using checks language, then scans path and activates every name it
// declares. An empty path scans [Session.EntryFile]; if no entry file was
// recorded either, Using fails with [ErrSourceRead].
func (s *Session) Using(ctx context.Context, language, path string) error {
	if err := checkLanguage(language); err != nil {
		return err
	}

	if path != "" {
		s.entry = path
	}

	if s.entry == "" {
		return ErrSourceRead.Wrap(errors.New("no entry file"))
	}

	parsed, err := Scan(ctx, s.EntryFile(), WithScanLogger(s.logger))
	if err != nil {
		return err
	}

	return s.Activate(ctx, parsed)
}

// Activate binds a fresh placeholder for every name in parsed: all functions
// first, then all classes, each in textual order.
func (s *Session) Activate(ctx context.Context, parsed *ParsedFile) error {
	for c := range Categories() {
		for _, name := range parsed.Names(c) {
			if err := s.declare(c, name); err != nil {
				return err
			}
		}
	}

	s.logger.DebugContext(ctx, "activate",
		slog.Int("functions", len(parsed.Functions)),
		slog.Int("classes", len(parsed.Classes)),
	)

	return nil
}

// Run activates the script at path and executes its statements. It returns
// the value of the last retrieve statement.
func (s *Session) Run(ctx context.Context, path string) (any, error) {
	if err := s.Using(ctx, Language, path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, ErrSourceRead.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	return s.Exec(ctx, path, f)
}

func (s *Session) declare(c Category, name string) error {
	obj, err := s.strategy.Resolve(c, name)
	if err != nil {
		return err
	}

	s.ns.Bind(name, obj)

	return nil
}

func checkLanguage(language string) error {
	lang := strings.Trim(strings.TrimSpace(language), "\"'`")
	if strings.EqualFold(lang, Language) {
		return nil
	}

	return ErrUsing.
		Wrap(errors.New(Language + " expected, got " + language)).
		With(slog.String("language", language))
}
