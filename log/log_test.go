package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestMake_Defaults(t *testing.T) {
	t.Parallel()

	logger := Make(&bytes.Buffer{})

	if logger.Level() != LevelInfo {
		t.Errorf("Level() = %v, want %v", logger.Level(), LevelInfo)
	}

	if logger.Format() != FormatJSON {
		t.Errorf("Format() = %v, want %v", logger.Format(), FormatJSON)
	}

	if logger.config.caller {
		t.Error("caller enabled by default")
	}

	if !logger.config.pretty {
		t.Error("pretty disabled by default")
	}
}

func TestLogger_LevelFilters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		level Level
		log   func(Logger)
		want  bool
	}{
		{"trace at trace", LevelTrace, func(l Logger) { l.Trace("m") }, true},
		{"trace at debug", LevelDebug, func(l Logger) { l.Trace("m") }, false},
		{"debug at debug", LevelDebug, func(l Logger) { l.Debug("m") }, true},
		{"info at warn", LevelWarn, func(l Logger) { l.Info("m") }, false},
		{"warn at warn", LevelWarn, func(l Logger) { l.Warn("m") }, true},
		{"error at error", LevelError, func(l Logger) { l.Error("m") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			tt.log(Make(&buf, WithLevel(tt.level), WithPretty(false)))

			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("logged = %v, want %v (output %q)", got, tt.want, buf.String())
			}
		})
	}
}

func TestLogger_TraceLevelName(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelTrace), WithPretty(false))
	logger.TraceContext(context.Background(), "bind", slog.String("name", "f"))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}

	if rec["level"] != "TRACE" {
		t.Errorf("level = %v, want TRACE", rec["level"])
	}

	if rec["name"] != "f" {
		t.Errorf("name = %v, want f", rec["name"])
	}
}

func TestLogger_Formats(t *testing.T) {
	t.Parallel()

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		Make(&buf, WithFormat(FormatJSON), WithPretty(false)).
			Info("hello", slog.Int("n", 3))

		var rec map[string]any
		if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
			t.Fatalf("unmarshal %q: %v", buf.String(), err)
		}

		if rec["msg"] != "hello" || rec["n"] != float64(3) {
			t.Errorf("record = %v", rec)
		}
	})

	t.Run("text", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		Make(&buf, WithFormat(FormatText), WithPretty(false)).
			Info("hello", slog.String("key", "value"))

		out := buf.String()
		if !strings.Contains(out, "msg=hello") || !strings.Contains(out, "key=value") {
			t.Errorf("output = %q", out)
		}
	})
}

func TestLogger_TimeLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		layout string
		want   bool
	}{
		{"rfc3339", "RFC3339", true},
		{"kitchen", "kitchen", true},
		{"none", "none", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			Make(&buf, WithFormat(FormatText), WithPretty(false), WithTimeLayout(tt.layout)).
				Info("m")

			if got := strings.Contains(buf.String(), "time="); got != tt.want {
				t.Errorf("has time = %v, want %v (output %q)", got, tt.want, buf.String())
			}
		})
	}
}

func TestLogger_Caller(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	Make(&buf, WithCaller(true), WithPretty(false)).Info("m")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("source does not name the calling file: %q", buf.String())
	}
}

func TestLogger_WrapAndWith(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	base := Make(&buf, WithPretty(false))
	debug := base.Wrap(WithLevel(LevelDebug))

	if base.Level() != LevelInfo {
		t.Errorf("Wrap modified the original logger: level %v", base.Level())
	}

	debug.With(slog.String("component", "scan")).Debug("m")

	if !strings.Contains(buf.String(), `"component":"scan"`) {
		t.Errorf("output = %q", buf.String())
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	t.Parallel()

	var logger Logger

	logger.Trace("discarded")
	logger.Error("discarded")
	logger = logger.With(slog.String("k", "v"))

	if logger.Level() != DefaultLevel {
		t.Errorf("Level() = %v, want %v", logger.Level(), DefaultLevel)
	}

	var buf bytes.Buffer

	logger.Wrap(WithOutput(&buf), WithPretty(false)).Info("now visible")

	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("wrapped zero logger did not log: %q", buf.String())
	}
}

func TestLogger_Pretty(t *testing.T) {
	t.Parallel()

	t.Run("text", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		Make(&buf, WithFormat(FormatText), WithTimeLayout("none")).
			Info("hello", slog.Group("req", slog.String("id", "7")))

		// A bytes.Buffer is not a terminal, so no color codes are emitted.
		want := "level=INFO msg=hello req.id=7\n"
		if buf.String() != want {
			t.Errorf("output = %q, want %q", buf.String(), want)
		}
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer

		Make(&buf, WithFormat(FormatJSON), WithTimeLayout("none")).
			With(slog.Bool("ok", true)).
			Warn("hello", slog.Int("n", 2))

		var rec map[string]any
		if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
			t.Fatalf("pretty JSON is not valid JSON: %v\n%s", err, buf.String())
		}

		if rec["level"] != "WARN" || rec["ok"] != true || rec["n"] != float64(2) {
			t.Errorf("record = %v", rec)
		}
	})
}
