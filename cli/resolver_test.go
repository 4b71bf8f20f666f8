package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func TestLoadTOML(t *testing.T) {
	t.Parallel()

	src := `
log-time-layout = "ms"
log_caller = true

[log]
level = "debug"

[run]
show = "*"
repeat = 3
ratio = 0.5
tags = ["a", 2]
`

	r, err := loadTOML(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		flag string
		want any
	}{
		{"log-time-layout", "ms"},
		{"log-caller", true},
		{"log-level", "debug"},
		{"run-show", "*"},
		{"run-repeat", "3"},
		{"run-ratio", "0.5"},
		{"missing", nil},
	}

	for _, tt := range tests {
		got, err := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: tt.flag}})
		if err != nil {
			t.Errorf("Resolve(%s) error = %v", tt.flag, err)
		}

		if got != tt.want {
			t.Errorf("Resolve(%s) = %v (%T), want %v", tt.flag, got, got, tt.want)
		}
	}

	run := &kong.Path{Command: &kong.Command{Name: "run"}}

	if got, _ := r.Resolve(nil, run, &kong.Flag{Value: &kong.Value{Name: "show"}}); got != "*" {
		t.Errorf("Resolve(run show) = %v, want *", got)
	}

	if got, _ := r.Resolve(nil, run, &kong.Flag{Value: &kong.Value{Name: "log-level"}}); got != "debug" {
		t.Errorf("Resolve(run log-level) = %v, want debug", got)
	}

	tags, _ := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: "run-tags"}})
	if items, ok := tags.([]any); !ok || len(items) != 2 || items[1] != "2" {
		t.Errorf("run-tags = %#v", tags)
	}
}

func TestLoadTOML_Invalid(t *testing.T) {
	t.Parallel()

	r, err := loadTOML(strings.NewReader("this is = = not toml"))
	if err != nil {
		t.Fatalf("loadTOML() error = %v", err)
	}

	if got, _ := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: "log-level"}}); got != nil {
		t.Errorf("Resolve() = %v on invalid input", got)
	}
}

func TestLogConfigScan(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		level  string
		pretty bool
		caller bool
		layout string
	}{
		{"defaults", nil, "", true, false, ""},
		{"separate value", []string{"--log-level", "debug"}, "debug", true, false, ""},
		{"assigned value", []string{"run", "--log-level=warn", "x.petuh"}, "warn", true, false, ""},
		{"negated", []string{"--no-log-pretty", "--log-caller"}, "", false, true, ""},
		{"assigned bool", []string{"--log-pretty=false", "--log-caller=true"}, "", false, true, ""},
		{"time layout", []string{"--log-time-layout", "none"}, "", true, false, "none"},
		{"value looks like flag", []string{"--log-level", "--log-caller"}, "", true, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := logConfig{Pretty: true}
			f.scan(tt.args)

			if string(f.Level) != tt.level || f.Pretty != tt.pretty ||
				f.Caller != tt.caller || f.TimeLayout != tt.layout {
				t.Errorf("scan(%q) = %+v", tt.args, f)
			}
		})
	}
}
