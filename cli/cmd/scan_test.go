package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
)

const scanScript = `using >> "petuhlang"
function >> add
pyclass >> Animal
function >> sub
pyclass >> Dog
`

func TestScanRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeScript(t, dir, "a.petuh", scanScript)
	b := writeScript(t, dir, "b.petuh", "then >> 1\n")

	want := scanReports{
		{Script: a, Functions: []string{"add", "sub"}, Classes: []string{"Animal", "Dog"}},
		{Script: b, Functions: []string{}, Classes: []string{}},
	}

	t.Run("text", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		if err := (&Scan{Scripts: []string{a, b}, Format: formatText}).run(context.Background(), &out); err != nil {
			t.Fatal(err)
		}

		for _, line := range []string{a, "  functions: add, sub", "  classes:   Animal, Dog", b} {
			if !strings.Contains(out.String(), line+"\n") {
				t.Errorf("output missing %q:\n%s", line, out.String())
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		if err := (&Scan{Scripts: []string{a, b}, Format: formatJSON}).run(context.Background(), &out); err != nil {
			t.Fatal(err)
		}

		var got scanReports
		if err := json.Unmarshal(out.Bytes(), &got); err != nil {
			t.Fatal(err)
		}

		if !equalReports(got, want) {
			t.Errorf("json = %+v, want %+v", got, want)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		if err := (&Scan{Scripts: []string{a, b}, Format: formatYAML, NoCache: true}).run(context.Background(), &out); err != nil {
			t.Fatal(err)
		}

		var got scanReports
		if err := yaml.Unmarshal(out.Bytes(), &got); err != nil {
			t.Fatal(err)
		}

		if !equalReports(got, want) {
			t.Errorf("yaml = %+v, want %+v", got, want)
		}
	})
}

func TestScanRun_BadFormat(t *testing.T) {
	t.Parallel()

	a := writeScript(t, t.TempDir(), "a.petuh", scanScript)

	err := (&Scan{Scripts: []string{a}, Format: "xml"}).run(context.Background(), &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), ErrFormat.Error()) {
		t.Errorf("run() error = %v, want %v", err, ErrFormat)
	}
}

func equalReports(a, b scanReports) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i].Script != b[i].Script ||
			strings.Join(a[i].Functions, ",") != strings.Join(b[i].Functions, ",") ||
			strings.Join(a[i].Classes, ",") != strings.Join(b[i].Classes, ",") {
			return false
		}
	}

	return true
}
