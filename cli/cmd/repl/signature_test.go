package repl

import (
	"context"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/InspiredImpact/petuhlang/lang"
)

func newTestSession(t *testing.T, script string) *lang.Session {
	t.Helper()

	s := lang.NewSession(lang.WithOutput(io.Discard))
	if _, err := s.ExecString(context.Background(), script); err != nil {
		t.Fatalf("ExecString() error = %v", err)
	}

	return s
}

func TestDetectFunctionCall(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantName  string
		wantIndex int
		wantCall  bool
	}{
		{"no call", "greeting", 8, "", 0, false},
		{"first arg", "add(", 4, "add", 0, true},
		{"first arg typed", "add(1", 5, "add", 0, true},
		{"second arg", "add(1,", 6, "add", 1, true},
		{"second arg typed", "add(1, 2", 8, "add", 1, true},
		{"builtin table", "path.cat(", 9, "path.cat", 0, true},
		{"builtin table args", "path.cat('/a', '/b',", 20, "path.cat", 2, true},
		{"nested call closed", "add(mul(2, 3),", 14, "add", 1, true},
		{"cursor inside nested", "add(mul(2, 3), 4)", 8, "mul", 0, true},
		{"list argument", "add([1, 2], ", 12, "add", 1, true},
		{"inside index", "f[1, ", 5, "", 0, false},
		{"statement", "then >> add(1, ", 15, "add", 1, true},
		{"declaration", `function >> f(arg("a"), `, 24, "f", 1, true},
		{"bare paren", "(1, ", 4, "", 0, false},
		{"closed call", "add(1, 2)", 9, "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectFunctionCall(tt.input, tt.cursor)

			if got.name != tt.wantName || got.argIndex != tt.wantIndex || got.inCall != tt.wantCall {
				t.Errorf("detectFunctionCall(%q, %d) = %+v, want {%s %d %v}",
					tt.input, tt.cursor, got, tt.wantName, tt.wantIndex, tt.wantCall)
			}
		})
	}
}

func TestGetSignature(t *testing.T) {
	s := newTestSession(t, `function >> add(arg("a"), kwarg("b", 2))["return a + b"]
function >> hello(kwarg("who", "world"))["return 'hi ' + who"]
function >> answer()[42]
function >> later
pyclass >> A
`)

	tests := []struct {
		name       string
		funcName   string
		wantSig    string
		wantParams []string
	}{
		{"function", "add", "add(a, b=2)", []string{"a", "b=2"}},
		{"string default", "hello", `hello(who="world")`, []string{`who="world"`}},
		{"constant", "answer", "answer()", nil},
		{"placeholder", "later", "later(...arg)", []string{"...arg"}},
		{"class is not a function", "A", "", nil},
		{"builtin", "file.exists", "file.exists(string)", []string{"string"}},
		{"variadic builtin", "path.cat", "path.cat(...string)", []string{"...string"}},
		{"builtin two args", "path.rel", "path.rel(string, string)", []string{"string", "string"}},
		{"predicate builtin", "mung.prefixif", "mung.prefixif(string, func, ...string)", []string{"string", "func", "...string"}},
		{"arg builtin", "arg", "arg(string, ...any)", []string{"string", "...any"}},
		{"expression builtin", "join", "join(array, separator)", []string{"array", "separator"}},
		{"table is not a function", "path", "", nil},
		{"unknown", "doesnotexist", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, params := getSignature(s.Namespace(), tt.funcName)

			if sig != tt.wantSig {
				t.Errorf("getSignature(%q) signature = %q, want %q", tt.funcName, sig, tt.wantSig)
			}

			if !slices.Equal(params, tt.wantParams) {
				t.Errorf("getSignature(%q) params = %q, want %q", tt.funcName, params, tt.wantParams)
			}
		})
	}
}

func TestRenderSignatureHint(t *testing.T) {
	tests := []struct {
		name      string
		signature string
		params    []string
		argIndex  int
	}{
		{"no params", "answer()", nil, 0},
		{"first param", "add(a, b=2)", []string{"a", "b=2"}, 0},
		{"second param", "add(a, b=2)", []string{"a", "b=2"}, 1},
		{"past variadic", "path.cat(...string)", []string{"...string"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderSignatureHint(tt.signature, tt.params, tt.argIndex)

			name, _, _ := strings.Cut(tt.signature, "(")
			if !strings.Contains(got, name) {
				t.Errorf("renderSignatureHint() = %q, missing %q", got, name)
			}

			for _, p := range tt.params {
				if !strings.Contains(got, p) {
					t.Errorf("renderSignatureHint() = %q, missing %q", got, p)
				}
			}
		})
	}
}

func TestExprLangBuiltinNames(t *testing.T) {
	names := ExprLangBuiltinNames()

	if !slices.IsSorted(names) {
		t.Error("ExprLangBuiltinNames() is not sorted")
	}

	if len(names) != len(exprLangBuiltins) || !slices.Contains(names, "filter") {
		t.Errorf("ExprLangBuiltinNames() = %v", names)
	}
}
