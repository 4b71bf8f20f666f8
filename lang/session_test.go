package lang

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/InspiredImpact/petuhlang/log"
)

func TestSession_Using(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "main.petuh")
	src := "pyclass >> Animal\nfunction >> speak\npyclass >> Dog\nfunction >> run\n"

	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}

	s := NewSession(WithOutput(nil))

	if err := s.Using(t.Context(), `"PetuhLang"`, path); err != nil {
		t.Fatalf("Using() error = %v", err)
	}

	if s.EntryFile() != path {
		t.Errorf("EntryFile() = %q, want %q", s.EntryFile(), path)
	}

	want := map[string]string{
		"Animal": "class placeholder",
		"Dog":    "class placeholder",
		"speak":  "function placeholder",
		"run":    "function placeholder",
	}

	if s.Namespace().Len() != len(want) {
		t.Errorf("Names() = %v", s.Namespace().Names())
	}

	for name, kind := range want {
		obj, ok := s.Namespace().Lookup(name)
		if !ok || Kind(obj) != kind {
			t.Errorf("%s = %s, want %s", name, Kind(obj), kind)
		}
	}
}

func TestSession_UsingRejectsLanguage(t *testing.T) {
	t.Parallel()

	for _, language := range []string{"python", "", "petuh", "petuhlang2"} {
		s := NewSession(WithOutput(nil))

		err := s.Using(t.Context(), language, filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, ErrUsing) {
			t.Errorf("Using(%q) error = %v, want ErrUsing", language, err)
		}
	}
}

func TestSession_UsingWithoutEntryFile(t *testing.T) {
	t.Parallel()

	s := NewSession(WithOutput(nil))

	err := s.Using(t.Context(), Language, "")
	if !errors.Is(err, ErrSourceRead) {
		t.Errorf("Using() error = %v, want ErrSourceRead", err)
	}

	if s.EntryFile() != "" {
		t.Errorf("EntryFile() = %q, want empty", s.EntryFile())
	}

	if s.Namespace().Len() != 0 {
		t.Errorf("failed Using bound %v", s.Namespace().Names())
	}
}

func TestSession_UsingMissingFile(t *testing.T) {
	t.Parallel()

	s := NewSession(WithOutput(nil))

	err := s.Using(t.Context(), Language, filepath.Join(t.TempDir(), "missing.petuh"))
	if !errors.Is(err, ErrSourceRead) {
		t.Errorf("Using() error = %v, want ErrSourceRead", err)
	}

	if s.Namespace().Len() != 0 {
		t.Errorf("failed Using bound %v", s.Namespace().Names())
	}
}

func TestSession_ActivateOrder(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := log.Make(&buf,
		log.WithLevel(log.LevelTrace),
		log.WithFormat(log.FormatText),
		log.WithPretty(false),
		log.WithTimeLayout("none"),
	)

	s := NewSession(WithLogger(logger), WithOutput(nil))

	parsed := ScanString("pyclass >> A\nfunction >> f\npyclass >> B\nfunction >> g\n")
	if err := s.Activate(t.Context(), parsed); err != nil {
		t.Fatal(err)
	}

	var order []string

	for _, line := range strings.Split(buf.String(), "\n") {
		if !strings.Contains(line, "msg=bind") {
			continue
		}

		_, rest, _ := strings.Cut(line, "name=")
		name, _, _ := strings.Cut(rest, " ")
		order = append(order, name)
	}

	if got := strings.Join(order, ","); got != "f,g,A,B" {
		t.Errorf("bind order = %s, want f,g,A,B", got)
	}

	if !strings.Contains(buf.String(), "msg=activate functions=2 classes=2") {
		t.Errorf("missing activate record in %q", buf.String())
	}
}

func TestSession_ActivateReplacesDefinitions(t *testing.T) {
	t.Parallel()

	s := NewSession(WithOutput(nil))
	define(t, s.Namespace(), "f", 1)

	if err := s.Activate(t.Context(), ScanString("function >> f\n")); err != nil {
		t.Fatal(err)
	}

	if obj, _ := s.Namespace().Lookup("f"); Kind(obj) != "function placeholder" {
		t.Errorf("f = %s after activation", Kind(obj))
	}
}

func TestSession_ProcessEnv(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	s := NewSession(WithOutput(&out), WithProcessEnv([]string{"HOME=/home/petuh", "EMPTY="}))

	if _, err := s.ExecString(t.Context(), `then >> env("HOME") + ":" + env("EMPTY") + ":" + env("UNSET")`); err != nil {
		t.Fatal(err)
	}

	if got := out.String(); got != "/home/petuh::\n" {
		t.Errorf("output = %q", got)
	}
}

func TestSession_Run(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "main.petuh")
	src := `using >> "petuhlang"

function >> main
function >> helper

function >> main()["return helper(20) + 1"]
function >> helper(arg("x"))["return x * 2"]

then >> main
retrieve >> main()
`

	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer

	s := NewSession(WithOutput(&out))

	result, err := s.Run(t.Context(), path)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result != 41 || out.String() != "41\n" {
		t.Errorf("Run() = %v, output %q", result, out.String())
	}

	if v, ok := s.Result(); !ok || v != 41 {
		t.Errorf("Result() = %v, %v", v, ok)
	}
}
