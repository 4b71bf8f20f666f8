package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdinSource is the special source name for reading from stdin.
const stdinSource = "-"

// source is one opened script.
type source struct {
	name string
	io.ReadCloser
}

// fileKey identifies a file by its device and inode numbers, so the same
// file reached through a symlink or a relative path is opened once.
type fileKey struct {
	dev uint64
	ino uint64
}

// openSources opens each named script once, in order. Every "-" collapses
// into a single stdin source placed last. The caller closes the sources.
func openSources(paths []string) ([]source, error) {
	var (
		srcs     []source
		hasStdin bool
	)

	seen := make(map[fileKey]struct{})

	for _, path := range paths {
		if path == stdinSource {
			hasStdin = true

			continue
		}

		f, dup, err := openUnique(path, seen)
		if err != nil {
			closeSources(srcs)

			return nil, ErrOpenSource.Wrap(err).With(slog.String("path", path))
		}

		if !dup {
			srcs = append(srcs, source{name: path, ReadCloser: f})
		}
	}

	if hasStdin {
		srcs = append(srcs, source{name: "<stdin>", ReadCloser: io.NopCloser(os.Stdin)})
	}

	return srcs, nil
}

func closeSources(srcs []source) {
	for _, src := range srcs {
		_ = src.Close()
	}
}

// openUnique opens path unless a file with the same identity is in seen.
func openUnique(path string, seen map[fileKey]struct{}) (f *os.File, dup bool, err error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, false, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, false, err
	}

	if key, ok := makeFileKey(info); ok {
		if _, exists := seen[key]; exists {
			return nil, true, nil
		}

		seen[key] = struct{}{}
	}

	f, err = os.Open(resolved)

	return f, false, err
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}
