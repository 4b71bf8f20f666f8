package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/InspiredImpact/petuhlang/lang"
	"github.com/InspiredImpact/petuhlang/log"
)

// watchDebounce is how long a script must stay unchanged before a rerun.
const watchDebounce = 100 * time.Millisecond

// Run activates and executes a script.
type Run struct {
	Script string `arg:""                              help:"Script file to run."                                 name:"script" type:"existingfile"`
	Show   string `                                    help:"After running, list bindings whose names match GLOB." placeholder:"GLOB"`
	Format string `default:"text" enum:"${formatEnum}" help:"Output format for the result and bindings."           short:"o"`
	Watch  bool   `                                    help:"Run again whenever the script changes."               short:"w"`

	out io.Writer
}

// runReport is what a run prints after the script's own output.
type runReport struct {
	Result    any       `json:"result,omitempty"   yaml:"result,omitempty"`
	Bindings  []binding `json:"bindings,omitempty" yaml:"bindings,omitempty"`
	Retrieved bool      `json:"retrieved"          yaml:"retrieved"`
}

// binding describes one namespace entry.
type binding struct {
	Name  string `json:"name"  yaml:"name"`
	Kind  string `json:"kind"  yaml:"kind"`
	Value string `json:"value" yaml:"value"`
}

func (r runReport) text() string {
	var sb strings.Builder

	if r.Retrieved {
		sb.WriteString(lang.FormatResult(r.Result) + "\n")
	}

	for _, b := range r.Bindings {
		fmt.Fprintf(&sb, "%s\t%s\t%s\n", b.Name, b.Kind, b.Value)
	}

	return sb.String()
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) error {
	if r.out == nil {
		r.out = os.Stdout
	}

	if !r.Watch {
		return r.once(ctx)
	}

	return r.watch(ctx)
}

// once runs the script in a fresh session and reports the outcome.
func (r *Run) once(ctx context.Context) error {
	s := lang.NewSession(
		lang.WithLogger(log.Default()),
		lang.WithOutput(r.out),
	)

	result, err := s.Run(ctx, r.Script)
	if err != nil {
		return err
	}

	_, retrieved := s.Result()
	rep := runReport{Result: plain(result), Retrieved: retrieved}

	if r.Show != "" {
		names, err := s.Namespace().Match(r.Show)
		if err != nil {
			return err
		}

		for _, name := range names {
			obj, _ := s.Namespace().Lookup(name)
			rep.Bindings = append(rep.Bindings, binding{
				Name:  name,
				Kind:  lang.Kind(obj),
				Value: lang.FormatResult(obj),
			})
		}
	}

	if r.Format == formatText && !rep.Retrieved && len(rep.Bindings) == 0 {
		return nil
	}

	return encode(r.out, r.Format, rep)
}

// watch runs the script, then runs it again after each change until ctx is
// canceled. Errors from individual runs are logged, not returned.
func (r *Run) watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrWatch.Wrap(err)
	}
	defer w.Close()

	path := filepath.Clean(r.Script)

	// Editors often replace the file on save, so watch its directory.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return ErrWatch.Wrap(err).With(slog.String("path", path))
	}

	rerun := func() {
		if err := r.once(ctx); err != nil {
			log.ErrorContext(ctx, "run failed", slog.Any("error", err))
		}
	}

	rerun()

	timer := time.NewTimer(watchDebounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != path ||
				!event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			log.TraceContext(ctx, "script changed", slog.String("op", event.Op.String()))
			timer.Reset(watchDebounce)

		case <-timer.C:
			log.InfoContext(ctx, "rerun", slog.String("script", path))
			lang.ClearScanCache()
			rerun()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			log.WarnContext(ctx, "watch error", slog.Any("error", err))
		}
	}
}

// plain returns v unchanged if it encodes naturally as JSON or YAML, and its
// printed form otherwise.
func plain(v any) any {
	switch v := v.(type) {
	case nil, bool, string, int, int64, float64:
		return v
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = plain(item)
		}

		return items
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, item := range v {
			m[k] = plain(item)
		}

		return m
	default:
		return lang.FormatResult(v)
	}
}
