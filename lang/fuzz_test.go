package lang

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// FuzzScanString checks that every scanned name is a well-formed identifier
// that appears after a marker in the source.
func FuzzScanString(f *testing.F) {
	f.Add("function >> f\npyclass >> A\n")
	f.Add("function >> add(arg(\"a\"))[\"return a\"]")
	f.Add("  function >> indented")
	f.Add("function >>\npyclass >> \n")
	f.Add("pyclass >> Dog.createInstance(\"rex\")")

	f.Fuzz(func(t *testing.T, src string) {
		if !utf8.ValidString(src) {
			t.Skip("invalid UTF-8")
		}

		parsed := ScanString(src)

		for c := range Categories() {
			for _, name := range parsed.Names(c) {
				if !identifier.MatchString(name) || name[0] == '_' {
					t.Errorf("scanned malformed name %q", name)
				}

				if !strings.Contains(src, " >> "+name) {
					t.Errorf("scanned name %q not in source", name)
				}
			}
		}
	})
}

// FuzzBracketDepth checks that the statement splitter never panics and that
// balanced input is never treated as a continuation.
func FuzzBracketDepth(f *testing.F) {
	f.Add("f(")
	f.Add("f()[`x`]")
	f.Add(`f("\")`)
	f.Add("[`\n`]")

	f.Fuzz(func(t *testing.T, src string) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("panicked on %q: %v", src, r)
			}
		}()

		_ = bracketDepth(src)
		_ = matchBracket(src)

		if bracketDepth("(" + strings.Repeat("x", len(src)) + ")") != 0 {
			t.Error("balanced input reported open")
		}
	})
}
