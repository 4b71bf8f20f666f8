package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/InspiredImpact/petuhlang/lang"
	"github.com/InspiredImpact/petuhlang/log"
)

// Scan lists the functions and classes each script declares, without
// executing anything.
type Scan struct {
	Scripts []string `arg:""                                 help:"Script files to scan, or '-' for stdin." name:"script"`
	Format  string   `default:"text" enum:"${formatEnum}" help:"Output format."                          short:"o"`
	NoCache bool     `                                        help:"Scan every input even if identical text was seen."`
}

// scanReport is the result of scanning one script.
type scanReport struct {
	Script    string   `json:"script"    yaml:"script"`
	Functions []string `json:"functions" yaml:"functions"`
	Classes   []string `json:"classes"   yaml:"classes"`
}

type scanReports []scanReport

func (r scanReports) text() string {
	var sb strings.Builder

	for _, rep := range r {
		fmt.Fprintf(&sb, "%s\n", rep.Script)
		fmt.Fprintf(&sb, "  functions: %s\n", strings.Join(rep.Functions, ", "))
		fmt.Fprintf(&sb, "  classes:   %s\n", strings.Join(rep.Classes, ", "))
	}

	return sb.String()
}

// Run executes the scan command.
func (s *Scan) Run(ctx context.Context) error {
	return s.run(ctx, os.Stdout)
}

func (s *Scan) run(ctx context.Context, w io.Writer) error {
	srcs, err := openSources(s.Scripts)
	if err != nil {
		return err
	}
	defer closeSources(srcs)

	reports := make(scanReports, 0, len(srcs))

	for _, src := range srcs {
		parsed, err := lang.ScanReader(ctx, src,
			lang.WithScanLogger(log.Default()),
			lang.WithScanCache(!s.NoCache),
		)
		if err != nil {
			return lang.WrapError(err).With(slog.String("script", src.name))
		}

		reports = append(reports, scanReport{
			Script:    src.name,
			Functions: nonNil(parsed.Functions),
			Classes:   nonNil(parsed.Classes),
		})
	}

	return encode(w, s.Format, reports)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
