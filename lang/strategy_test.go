package lang

import (
	"errors"
	"slices"
	"testing"

	"github.com/InspiredImpact/petuhlang/log"
)

func TestStrategy_Resolve(t *testing.T) {
	t.Parallel()

	ns := NewNamespace(log.Logger{})
	s := NewStrategy(ns)

	fn, err := s.Resolve(CategoryFunctions, "greet")
	if err != nil {
		t.Fatal(err)
	}

	fp, ok := fn.(*FunctionPlaceholder)
	if !ok || fp.Name() != "greet" {
		t.Fatalf("Resolve(functions) = %#v", fn)
	}

	cls, err := s.Resolve(CategoryClasses, "Animal")
	if err != nil {
		t.Fatal(err)
	}

	cp, ok := cls.(*ClassPlaceholder)
	if !ok || cp.Name() != "Animal" {
		t.Fatalf("Resolve(classes) = %#v", cls)
	}

	if ns.Len() != 0 {
		t.Errorf("Resolve bound %d names, want 0", ns.Len())
	}
}

func TestStrategy_ResolveIsNotCached(t *testing.T) {
	t.Parallel()

	s := NewStrategy(NewNamespace(log.Logger{}))

	a, _ := s.Resolve(CategoryFunctions, "f")
	b, _ := s.Resolve(CategoryFunctions, "f")

	if a == b {
		t.Error("Resolve returned the same placeholder twice")
	}
}

func TestStrategy_UnknownCategory(t *testing.T) {
	t.Parallel()

	s := NewStrategy(NewNamespace(log.Logger{}))

	if _, err := s.Resolve(Category(7), "x"); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("Resolve() error = %v, want ErrUnknownCategory", err)
	}
}

type constantDefaulter struct{ v any }

func (c constantDefaulter) Default() any { return c.v }

func TestStrategy_Register(t *testing.T) {
	t.Parallel()

	const categoryConstants = Category(2)

	s := NewStrategy(NewNamespace(log.Logger{}))
	s.Register(categoryConstants, func(name string, _ *Namespace) Defaulter {
		return constantDefaulter{v: "const:" + name}
	})

	got, err := s.Resolve(categoryConstants, "pi")
	if err != nil {
		t.Fatal(err)
	}

	if got != "const:pi" {
		t.Errorf("Resolve() = %v, want const:pi", got)
	}
}

func TestParseCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{"functions", CategoryFunctions, false},
		{" Classes ", CategoryClasses, false},
		{"methods", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseCategory(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCategory() error = %v, wantErr %v", err, tt.wantErr)
			}

			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseCategory() = %v, want %v", got, tt.want)
			}
		})
	}

	if got := slices.Collect(Categories()); !slices.Equal(got, []Category{CategoryFunctions, CategoryClasses}) {
		t.Errorf("Categories() = %v", got)
	}
}
