package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used for pretty output. Styles are bound to a
// renderer for the destination writer, so color is dropped automatically
// when the writer is not a terminal.
type palette struct {
	key, str, num, dur, tim, null lipgloss.Style
	yes, no                       lipgloss.Style
	trace, debug, info, warn, err lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }

	return palette{
		key:   fg("8"),
		str:   fg("6"),
		num:   fg("3"),
		dur:   fg("5"),
		tim:   fg("4"),
		null:  fg("8"),
		yes:   fg("2"),
		no:    fg("1"),
		trace: fg("8"),
		debug: fg("4"),
		info:  fg("2"),
		warn:  fg("3"),
		err:   fg("1").Bold(true),
	}
}

func (p palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.err
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l >= slog.LevelDebug:
		return p.debug
	default:
		return p.trace
	}
}

// prettyHandler writes colorized records either as a single line of
// key=value pairs or as an indented JSON object.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	colors palette
	prefix string
	attrs  []slog.Attr
	json   bool
}

func newPrettyTextHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{opts: *opts, mu: &sync.Mutex{}, w: w, colors: newPalette(w)}
}

func newPrettyJSONHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	h := newPrettyTextHandler(w, opts)
	h.json = true

	return h
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}

	return level >= threshold
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], qualify(h.prefix, attrs)...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]slog.Attr, 0, 4+len(h.attrs)+r.NumAttrs())

	fields = h.builtin(fields, slog.Time(slog.TimeKey, r.Time), !r.Time.IsZero())
	fields = h.builtin(fields, slog.Any(slog.LevelKey, r.Level), true)

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			fields = append(fields, slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	fields = append(fields, slog.String(slog.MessageKey, r.Message))
	fields = append(fields, h.attrs...)

	var attrs []slog.Attr

	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)

		return true
	})

	fields = append(fields, qualify(h.prefix, attrs)...)

	buf := new(bytes.Buffer)
	h.render(buf, r.Level, fields)

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

// builtin appends a, as rewritten by the ReplaceAttr option, unless the
// rewrite removed it.
func (h *prettyHandler) builtin(fields []slog.Attr, a slog.Attr, ok bool) []slog.Attr {
	if !ok {
		return fields
	}

	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(nil, a)
	}

	if a.Key == "" {
		return fields
	}

	return append(fields, a)
}

func (h *prettyHandler) render(buf *bytes.Buffer, level slog.Level, fields []slog.Attr) {
	if h.json {
		buf.WriteString("{\n")
	}

	for i, a := range fields {
		switch {
		case h.json && i > 0:
			buf.WriteString(",\n  ")
		case h.json:
			buf.WriteString("  ")
		case i > 0:
			buf.WriteByte(' ')
		}

		if h.json {
			buf.WriteString(h.colors.key.Render(strconv.Quote(a.Key)))
			buf.WriteString(": ")
		} else {
			buf.WriteString(h.colors.key.Render(a.Key))
			buf.WriteByte('=')
		}

		if a.Key == slog.LevelKey {
			buf.WriteString(h.colors.level(level).Render(h.quote(a.Value.String())))

			continue
		}

		buf.WriteString(h.value(a.Value))
	}

	if h.json {
		buf.WriteString("\n}")
	}

	buf.WriteByte('\n')
}

func (h *prettyHandler) quote(s string) string {
	if h.json {
		return strconv.Quote(s)
	}

	return s
}

func (h *prettyHandler) value(v slog.Value) string {
	p := h.colors

	switch v.Kind() {
	case slog.KindString:
		return p.str.Render(h.quote(v.String()))
	case slog.KindInt64:
		return p.num.Render(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return p.num.Render(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		return p.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		if v.Bool() {
			return p.yes.Render("true")
		}

		return p.no.Render("false")
	case slog.KindDuration:
		return p.dur.Render(h.quote(v.Duration().String()))
	case slog.KindTime:
		return p.tim.Render(h.quote(v.Time().String()))
	default:
		if v.Any() == nil {
			return p.null.Render("null")
		}

		return p.str.Render(h.quote(v.String()))
	}
}

// qualify resolves attrs and flattens groups into dotted keys under prefix.
func qualify(prefix string, attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(attrs))

	for _, a := range attrs {
		a.Value = a.Value.Resolve()

		if a.Value.Kind() != slog.KindGroup {
			if a.Key != "" {
				out = append(out, slog.Attr{Key: prefix + a.Key, Value: a.Value})
			}

			continue
		}

		group := prefix
		if a.Key != "" {
			group += a.Key + "."
		}

		out = append(out, qualify(group, a.Value.Group())...)
	}

	return out
}
