package pkg

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	t.Parallel()

	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("read VERSION: %v", err)
	}

	if want := strings.TrimSpace(string(buf)); Version() != want {
		t.Errorf("Version() = %q, want %q", Version(), want)
	}

	if strings.ContainsAny(Version(), " \n") {
		t.Errorf("Version() = %q contains whitespace", Version())
	}
}

func TestPrefixOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"/usr/local/bin/petuh", "petuh"},
		{"petuh.exe", "petuh"},
		{"/tmp/__debug_bin3812", Name},
		{"/tmp/__debug_bin", Name},
		{"/home/u/.petuh", "petuh"},
		{"...", Name},
		{"renamed", "renamed"},
	}

	for _, tt := range tests {
		if got := prefixOf(tt.path); got != tt.want {
			t.Errorf("prefixOf(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestEnvVar(t *testing.T) {
	t.Parallel()

	want := strings.ToUpper(Prefix()) + "_CONFIG_DIR"
	if got := EnvVar("config-dir"); got != want {
		t.Errorf("EnvVar() = %q, want %q", got, want)
	}
}

func TestUserDir(t *testing.T) {
	override := t.TempDir()
	t.Setenv("PETUH_TEST_DIR", override)

	if got := userDir("PETUH_TEST_DIR", os.UserConfigDir, ".config"); got != override {
		t.Errorf("userDir() with env = %q, want %q", got, override)
	}

	base := t.TempDir()
	got := userDir("PETUH_TEST_UNSET", func() (string, error) { return base, nil }, ".config")

	if want := filepath.Join(base, Prefix()); got != want {
		t.Errorf("userDir() = %q, want %q", got, want)
	}

	home := t.TempDir()
	t.Setenv("HOME", home)

	got = userDir("PETUH_TEST_UNSET", func() (string, error) { return "", errors.New("unset") }, ".config")

	if want := filepath.Join(home, ".config", Prefix()); got != want {
		t.Errorf("userDir() fallback = %q, want %q", got, want)
	}
}
