package lang_test

import (
	"context"
	"fmt"
	"os"

	"github.com/InspiredImpact/petuhlang/lang"
	"github.com/InspiredImpact/petuhlang/log"
)

func ExampleSession_ExecString() {
	s := lang.NewSession(lang.WithOutput(os.Stdout))

	_, err := s.ExecString(context.Background(), `using >> "petuhlang"
function >> greet(arg("name"), kwarg("greeting", "hello"))["return greeting + ', ' + name"]
then >> greet("world")
then >> greet("petuh", "bye")
pyclass >> Animal()
pyclass >> Dog(Animal)
then >> Dog`)
	if err != nil {
		fmt.Println(err)
	}

	// Output:
	// hello, world
	// bye, petuh
	// <class Dog>
}

func ExampleFunctionPlaceholder() {
	ns := lang.NewNamespace(log.Logger{})

	inner, err := lang.NewFunctionPlaceholder("area", ns).
		Call(lang.NewArg("w"), lang.NewKwarg("h", 1))
	if err != nil {
		fmt.Println(err)

		return
	}

	fn, err := inner.Index("return w * h")
	if err != nil {
		fmt.Println(err)

		return
	}

	v, _ := fn.Call([]any{3}, map[string]any{"h": 4})

	fmt.Println(fn)
	fmt.Println(v)

	// Output:
	// <function area(w, h=1)>
	// 12
}

func ExampleClassPlaceholder_Synthesize() {
	ns := lang.NewNamespace(log.Logger{})

	a, _ := lang.NewClassPlaceholder("A", ns).Synthesize()
	b, _ := lang.NewClassPlaceholder("B", ns).Synthesize(a)
	c, _ := lang.NewClassPlaceholder("C", ns).Synthesize(a)
	d, _ := lang.NewClassPlaceholder("D", ns).Synthesize(b, c)

	fmt.Println(d.MRO())

	_, err := lang.NewClassPlaceholder("E", ns).Synthesize(a, "B")
	fmt.Println(err)

	// Output:
	// [<class D> <class B> <class C> <class A> <class Object>]
	// bad parent class: expected classes for E, got B(string);
}

func ExampleScanString() {
	parsed := lang.ScanString(`function >> main
pyclass >> Config
function >> helper
`)

	fmt.Println(parsed.Functions, parsed.Classes)

	// Output:
	// [main helper] [Config]
}
