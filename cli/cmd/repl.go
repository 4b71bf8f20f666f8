package cmd

import (
	"context"

	"github.com/InspiredImpact/petuhlang/cli/cmd/repl"
	"github.com/InspiredImpact/petuhlang/log"
)

// Repl starts an interactive session, optionally after running a script.
type Repl struct {
	Script string `arg:"" help:"Script to run before the first prompt." name:"script" optional:"" type:"existingfile"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	var cacheDir string
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	return repl.Run(ctx, r.Script, cacheDir, log.Default())
}
