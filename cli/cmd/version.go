package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/InspiredImpact/petuhlang/pkg"
)

// Version prints the program version.
type Version struct {
	Short bool `help:"Print only the version number." short:"s"`

	out io.Writer
}

// Run executes the version command.
func (v *Version) Run() error {
	if v.out == nil {
		v.out = os.Stdout
	}

	if v.Short {
		_, err := fmt.Fprintln(v.out, pkg.Version())

		return err
	}

	_, err := fmt.Fprintf(v.out, "%s %s (%s %s/%s)\n",
		pkg.Name, pkg.Version(), runtime.Version(), runtime.GOOS, runtime.GOARCH)

	return err
}
