package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/kong"
)

// testFlags mirrors the shape of the real flag set: a prefixed group and
// plain flags of several types.
type testFlags struct {
	Log struct {
		Level  string `default:"info"`
		Pretty bool   `default:"true" negatable:""`
	} `embed:"" group:"log" prefix:"log-"`

	PprofMode string   `default:"cpu"`
	Name      string   `default:"petuh"`
	Empty     string
	Count     int      `default:"3"`
	Tags      []string `default:"a,b"`
	Secret    string   `default:"x" hidden:""`
}

func initContext(t *testing.T, confPath string, args ...string) context.Context {
	t.Helper()

	var cli testFlags

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(context.Background(), ktx)
}

func TestInitRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{name: "create_new_config"},
		{name: "overwrite_existing_with_force", force: true, exists: true},
		{name: "fail_without_force", exists: true, wantErr: ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			confPath := filepath.Join(t.TempDir(), "config.toml")

			if tt.exists {
				if err := os.WriteFile(confPath, []byte("existing = true\n"), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			err := (&Init{Force: tt.force}).Run(initContext(t, confPath))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Init.Run() error = %v, want %v", err, tt.wantErr)
			}

			if tt.wantErr != nil {
				return
			}

			var got map[string]any
			if _, err := toml.DecodeFile(confPath, &got); err != nil {
				t.Fatalf("generated config is not valid TOML: %v", err)
			}

			if _, ok := got["existing"]; ok {
				t.Error("old content survived overwrite")
			}
		})
	}
}

func TestInitTable(t *testing.T) {
	t.Parallel()

	confPath := filepath.Join(t.TempDir(), "config.toml")
	ctx := initContext(t, confPath, "--log-level=debug", "--no-log-pretty", "--tags=x,y,z")

	if err := (&Init{}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	var got struct {
		Log struct {
			Level  string `toml:"level"`
			Pretty *bool  `toml:"pretty"`
		} `toml:"log"`
		Name  string   `toml:"name"`
		Count int      `toml:"count"`
		Tags  []string `toml:"tags"`
	}

	md, err := toml.DecodeFile(confPath, &got)
	if err != nil {
		t.Fatal(err)
	}

	if got.Log.Level != "debug" || got.Log.Pretty == nil || *got.Log.Pretty {
		t.Errorf("log table = %+v", got.Log)
	}

	if got.Name != "petuh" || got.Count != 3 || !slices.Equal(got.Tags, []string{"x", "y", "z"}) {
		t.Errorf("flags = %+v", got)
	}

	for _, key := range []string{"empty", "help", "pprof-mode", "secret"} {
		if md.IsDefined(key) {
			t.Errorf("%s was written", key)
		}
	}
}

func TestInitWithInvalidPath(t *testing.T) {
	t.Parallel()

	confPath := filepath.Join(t.TempDir(), "missing", "config.toml")

	err := (&Init{}).Run(initContext(t, confPath))
	if !errors.Is(err, ErrWriteConfig) {
		t.Errorf("Init.Run() error = %v, want %v", err, ErrWriteConfig)
	}
}
