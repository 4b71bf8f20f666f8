package repl

import (
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/InspiredImpact/petuhlang/lang"
)

// exprLangBuiltins describes the expression language's builtin functions
// (https://expr-lang.org/docs/language-definition).
var exprLangBuiltins = map[string]struct {
	signature string
	params    []string
}{
	"len":    {"len(v)", []string{"v"}},
	"all":    {"all(array, predicate)", []string{"array", "predicate"}},
	"any":    {"any(array, predicate)", []string{"array", "predicate"}},
	"one":    {"one(array, predicate)", []string{"array", "predicate"}},
	"none":   {"none(array, predicate)", []string{"array", "predicate"}},
	"map":    {"map(array, mapper)", []string{"array", "mapper"}},
	"filter": {"filter(array, predicate)", []string{"array", "predicate"}},
	"find":   {"find(array, predicate)", []string{"array", "predicate"}},
	"findIndex": {
		"findIndex(array, predicate)",
		[]string{"array", "predicate"},
	},
	"findLast": {
		"findLast(array, predicate)",
		[]string{"array", "predicate"},
	},
	"findLastIndex": {
		"findLastIndex(array, predicate)",
		[]string{"array", "predicate"},
	},
	"groupBy": {"groupBy(array, mapper)", []string{"array", "mapper"}},
	"sortBy":  {"sortBy(array, mapper)", []string{"array", "mapper"}},
	"count":   {"count(array, predicate)", []string{"array", "predicate"}},
	"sum":     {"sum(array)", []string{"array"}},
	"mean":    {"mean(array)", []string{"array"}},
	"median":  {"median(array)", []string{"array"}},
	"min":     {"min(array)", []string{"array"}},
	"max":     {"max(array)", []string{"array"}},
	"join":    {"join(array, separator)", []string{"array", "separator"}},
	"split": {
		"split(string, separator)",
		[]string{"string", "separator"},
	},
	"replace": {
		"replace(string, old, new)",
		[]string{"string", "old", "new"},
	},
	"trim":      {"trim(string)", []string{"string"}},
	"trimLeft":  {"trimLeft(string)", []string{"string"}},
	"trimRight": {"trimRight(string)", []string{"string"}},
	"upper":     {"upper(string)", []string{"string"}},
	"lower":     {"lower(string)", []string{"string"}},
	"title":     {"title(string)", []string{"string"}},
	"int":       {"int(v)", []string{"v"}},
	"float":     {"float(v)", []string{"v"}},
	"string":    {"string(v)", []string{"v"}},
	"type":      {"type(v)", []string{"v"}},
}

// ExprLangBuiltinNames returns the names of the expression language's
// builtin functions in lexical order.
func ExprLangBuiltinNames() []string {
	return slices.Sorted(maps.Keys(exprLangBuiltins))
}

// Styles for signature hints.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
	signatureSeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// functionCall describes the call enclosing the cursor.
type functionCall struct {
	name     string // dotted function name, such as "path.cat"
	argIndex int    // zero-based index of the argument at the cursor
	inCall   bool
}

// detectFunctionCall finds the innermost unclosed call before cursor and
// the index of the argument being typed.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(cursor, len(input))

	// Brackets are ASCII, so a byte scan cannot split a rune that matters.
	open, depth := -1, 0

	for i := cursor - 1; i >= 0 && open < 0; i-- {
		switch input[i] {
		case ')', ']':
			depth++
		case '[':
			depth--
		case '(':
			if depth == 0 {
				open = i
			} else {
				depth--
			}
		}

		if depth < 0 {
			return functionCall{}
		}
	}

	if open < 0 {
		return functionCall{}
	}

	start := open

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if r != '.' && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}

		start -= size
	}

	name := strings.Trim(input[start:open], ".")
	if name == "" {
		return functionCall{}
	}

	argIndex, nested := 0, 0

	for _, r := range input[open+1 : cursor] {
		switch r {
		case '(', '[', '{':
			nested++
		case ')', ']', '}':
			nested--
		case ',':
			if nested == 0 {
				argIndex++
			}
		}
	}

	return functionCall{name: name, argIndex: argIndex, inCall: true}
}

// getSignature returns the signature of the function called name and its
// rendered parameters. It looks in the namespace first, then the expression
// language and builtin functions. The signature is empty if name is unknown.
func getSignature(
	ns *lang.Namespace,
	funcName string,
) (signature string, params []string) {
	if obj, ok := ns.Lookup(funcName); ok {
		switch fn := obj.(type) {
		case *lang.Function:
			for _, p := range fn.Parameters() {
				param := p.Name
				if p.HasDefault {
					param += "=" + formatDefault(p.Default)
				}

				params = append(params, param)
			}

			return funcName + "(" + strings.Join(params, ", ") + ")", params

		case *lang.Constant:
			return funcName + "()", nil

		case *lang.FunctionPlaceholder:
			params = []string{"...arg"}

			return funcName + "(...arg)", params
		}
	}

	if builtin, ok := exprLangBuiltins[funcName]; ok {
		return builtin.signature, builtin.params
	}

	if sig, params, ok := getBuiltinSignature(funcName); ok {
		return sig, params
	}

	return "", nil
}

func formatDefault(v any) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}

	return lang.FormatResult(v)
}

// getBuiltinSignature uses reflection to describe a builtin function such as
// "path.cat".
func getBuiltinSignature(funcName string) (string, []string, bool) {
	current := builtinMember(funcName)

	t := reflect.TypeOf(current)
	if t == nil || t.Kind() != reflect.Func {
		return "", nil, false
	}

	var params []string

	numParams := t.NumIn()
	isVariadic := t.IsVariadic()

	for i := range numParams {
		paramType := t.In(i)

		if isVariadic && i == numParams-1 {
			params = append(params, "..."+formatTypeName(paramType.Elem()))
		} else {
			params = append(params, formatTypeName(paramType))
		}
	}

	return funcName + "(" + strings.Join(params, ", ") + ")", params, true
}

// isFuncValue reports whether v is a Go function.
func isFuncValue(v any) bool {
	t := reflect.TypeOf(v)

	return t != nil && t.Kind() == reflect.Func
}

// formatTypeName converts a reflect.Type to a readable parameter name.
func formatTypeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Func:
		return "func"
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "int"
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "uint"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.Bool:
		return "bool"
	case reflect.Slice:
		return "slice"
	case reflect.Map:
		return "map"
	case reflect.Interface:
		return "any"
	case reflect.Ptr:
		return formatTypeName(t.Elem())
	default:
		if t.Name() != "" {
			return t.Name()
		}

		return "arg"
	}
}

// renderSignatureHint renders signature with the parameter at argIndex
// highlighted. A variadic parameter stays highlighted for every later
// argument.
func renderSignatureHint(signature string, params []string, argIndex int) string {
	name, _, ok := strings.Cut(signature, "(")
	if !ok || !strings.HasSuffix(signature, ")") {
		return signatureStyle.Render(signature)
	}

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureSeparatorStyle.Render(", "))
		}

		current := argIndex == i
		if strings.HasPrefix(param, "...") {
			current = argIndex >= i
		}

		if current {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
