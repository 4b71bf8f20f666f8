package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/InspiredImpact/petuhlang/lang"
)

const runScript = `using >> "petuhlang"
function >> add
pyclass >> Animal
function >> add(arg("a"), arg("b"))["return a + b"]
pyclass >> Animal()
then >> add(1, 2)
retrieve >> add(20, 22)
`

func TestRunRun(t *testing.T) {
	t.Parallel()

	script := writeScript(t, t.TempDir(), "main.petuh", runScript)

	tests := []struct {
		name   string
		run    Run
		want   []string
		absent []string
	}{
		{
			name: "text",
			run:  Run{Format: formatText},
			want: []string{"3\n42\n"},
		},
		{
			name:   "show",
			run:    Run{Format: formatText, Show: "A*"},
			want:   []string{"3\n42\n", "Animal\ttype\t<class Animal>\n"},
			absent: []string{"add\t"},
		},
		{
			name: "json",
			run:  Run{Format: formatJSON, Show: "add"},
			want: []string{`"result": 42`, `"name": "add"`, `"kind": "function"`, `"retrieved": true`},
		},
		{
			name: "yaml",
			run:  Run{Format: formatYAML},
			want: []string{"result: 42", "retrieved: true"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer

			r := tt.run
			r.Script = script
			r.out = &out

			if err := r.Run(context.Background()); err != nil {
				t.Fatal(err)
			}

			for _, s := range tt.want {
				if !strings.Contains(out.String(), s) {
					t.Errorf("output missing %q:\n%s", s, out.String())
				}
			}

			for _, s := range tt.absent {
				if strings.Contains(out.String(), s) {
					t.Errorf("output contains %q:\n%s", s, out.String())
				}
			}
		})
	}
}

func TestRunRun_NoRetrieve(t *testing.T) {
	t.Parallel()

	script := writeScript(t, t.TempDir(), "main.petuh", "then >> 'hi'\n")

	var out bytes.Buffer

	r := Run{Script: script, Format: formatText, out: &out}
	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if out.String() != "hi\n" {
		t.Errorf("output = %q, want %q", out.String(), "hi\n")
	}
}

func TestRunRun_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tests := []struct {
		name   string
		script string
		show   string
		want   error
	}{
		{"undefined function", "function >> f\nthen >> f(1)\n", "", lang.ErrEvaluate},
		{"bad statement", "hello\n", "", lang.ErrStatement},
		{"bad pattern", "then >> 1\n", "[", lang.ErrPattern},
		{"wrong language", "using >> \"python\"\n", "", lang.ErrUsing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			script := writeScript(t, dir, strings.ReplaceAll(tt.name, " ", "_")+".petuh", tt.script)

			r := Run{Script: script, Show: tt.show, Format: formatText, out: &bytes.Buffer{}}
			if err := r.Run(context.Background()); !errors.Is(err, tt.want) {
				t.Errorf("Run() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRunWatch(t *testing.T) {
	t.Parallel()

	script := writeScript(t, t.TempDir(), "main.petuh", "then >> 'first'\n")

	out := &syncBuffer{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() {
		done <- (&Run{Script: script, Watch: true, Format: formatText, out: out}).Run(ctx)
	}()

	waitFor(t, out, "first\n")

	writeScript(t, "", script, "then >> 'second'\n")
	waitFor(t, out, "second\n")

	cancel()

	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func waitFor(t *testing.T, out *syncBuffer, s string) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(out.String(), s) {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %q, have %q", s, out.String())
		}

		time.Sleep(10 * time.Millisecond)
	}
}

func TestPlain(t *testing.T) {
	t.Parallel()

	got := plain([]any{1, "a", map[string]any{"t": &lang.Type{}}, nil})

	data, err := json.Marshal(got)
	if err != nil {
		t.Fatal(err)
	}

	if string(data) != `[1,"a",{"t":"\u003cclass \u003e"},null]` {
		t.Errorf("plain() = %s", data)
	}
}
