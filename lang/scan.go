package lang

import (
	"context"
	"io"
	"log/slog"
	"os"
	"regexp"
	"slices"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/InspiredImpact/petuhlang/log"
)

// Marker patterns. Each matches only at the start of a line and captures the
// declared identifier.
var (
	functionMarker = regexp.MustCompile(`(?m)^function >> ([a-zA-Z][a-zA-Z0-9_]*)`)
	classMarker    = regexp.MustCompile(`(?m)^pyclass >> ([a-zA-Z][a-zA-Z0-9_]*)`)
)

// ParsedFile is the immutable result of scanning one source text.
//
// Names appear in first-to-last textual order, duplicates included.
type ParsedFile struct {
	Functions []string `json:"functions" yaml:"functions"`
	Classes   []string `json:"classes"   yaml:"classes"`
}

// Names returns a copy of the names declared for category c.
func (p *ParsedFile) Names(c Category) []string {
	switch c {
	case CategoryFunctions:
		return slices.Clone(p.Functions)
	case CategoryClasses:
		return slices.Clone(p.Classes)
	default:
		return nil
	}
}

// Len returns the total number of declared names across all categories.
func (p *ParsedFile) Len() int { return len(p.Functions) + len(p.Classes) }

func (p *ParsedFile) clone() *ParsedFile {
	return &ParsedFile{
		Functions: slices.Clone(p.Functions),
		Classes:   slices.Clone(p.Classes),
	}
}

// ScanOption configures a scan.
type ScanOption func(*scanner)

type scanner struct {
	logger log.Logger
	cache  bool
}

// WithScanLogger sets the logger used for trace output during a scan.
func WithScanLogger(logger log.Logger) ScanOption {
	return func(s *scanner) { s.logger = logger }
}

// WithScanCache enables or disables the content-hash cache. Enabled by
// default.
func WithScanCache(enable bool) ScanOption {
	return func(s *scanner) { s.cache = enable }
}

func makeScanner(opts ...ScanOption) scanner {
	s := scanner{cache: true}
	for _, opt := range opts {
		opt(&s)
	}

	return s
}

// scanCache maps an xxh3 hash of source text to its *ParsedFile.
var scanCache sync.Map

// ClearScanCache drops all cached scan results.
func ClearScanCache() {
	scanCache.Clear()
}

// Scan reads the complete file at path and extracts its markers.
//
// The file is closed before Scan returns. Failure to open or read it is
// reported as [ErrSourceRead].
func Scan(ctx context.Context, path string, opts ...ScanOption) (*ParsedFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, ErrSourceRead.Wrap(err).
			With(slog.String("path", path))
	}
	defer file.Close()

	pf, err := ScanReader(ctx, file, opts...)
	if err != nil {
		return nil, WrapError(err).With(slog.String("path", path))
	}

	return pf, nil
}

// ScanReader reads r to EOF and extracts its markers.
func ScanReader(ctx context.Context, r io.Reader, opts ...ScanOption) (*ParsedFile, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrSourceRead.Wrap(err)
	}

	return makeScanner(opts...).scan(ctx, string(data)), nil
}

// ScanString extracts the markers from src.
func ScanString(src string) *ParsedFile {
	return makeScanner(WithScanCache(false)).scan(context.Background(), src)
}

func (s scanner) scan(ctx context.Context, src string) *ParsedFile {
	if !s.cache {
		return extract(src)
	}

	hash := xxh3.HashString(src)

	if cached, ok := scanCache.Load(hash); ok {
		if pf, ok := cached.(*ParsedFile); ok {
			s.logger.TraceContext(ctx, "scan cache hit",
				slog.String("hash", strconv.FormatUint(hash, 16)),
			)

			return pf.clone()
		}
	}

	pf := extract(src)
	scanCache.Store(hash, pf.clone())

	s.logger.TraceContext(ctx, "scan",
		slog.String("hash", strconv.FormatUint(hash, 16)),
		slog.Int("source_bytes", len(src)),
		slog.Int("functions", len(pf.Functions)),
		slog.Int("classes", len(pf.Classes)),
	)

	return pf
}

func extract(src string) *ParsedFile {
	return &ParsedFile{
		Functions: extractNames(src, functionMarker),
		Classes:   extractNames(src, classMarker),
	}
}

func extractNames(src string, pattern *regexp.Regexp) []string {
	matches := pattern.FindAllStringSubmatch(src, -1)
	names := make([]string, 0, len(matches))

	for _, m := range matches {
		names = append(names, m[1])
	}

	return names
}
