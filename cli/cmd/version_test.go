package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/InspiredImpact/petuhlang/pkg"
)

func TestVersionRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		short  bool
		prefix string
	}{
		{"full", false, pkg.Name + " " + pkg.Version() + " ("},
		{"short", true, pkg.Version() + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			v := &Version{Short: tt.short, out: &buf}
			if err := v.Run(); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			if got := buf.String(); !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("Run() = %q, want prefix %q", got, tt.prefix)
			}

			if tt.short && buf.String() != tt.prefix {
				t.Errorf("Run() = %q, want %q", buf.String(), tt.prefix)
			}
		})
	}
}
