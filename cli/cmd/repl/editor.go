package repl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/InspiredImpact/petuhlang/lang"
	"github.com/InspiredImpact/petuhlang/log"
)

const defaultEditor = "vi"

// editCommand implements [tea.ExecCommand]. It opens the session transcript
// in the user's editor and runs the result in a fresh session. If the run
// fails the user may edit again; declining exits the REPL.
type editCommand struct {
	ctxFunc    func() context.Context
	newSession func() *lang.Session
	transcript string
	out        *bytes.Buffer // output of the session made by newSession
	logger     log.Logger
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer

	session *lang.Session // set on success
	lines   []string
}

// SetStdin sets the stdin reader for the command.
func (c *editCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-run-retry loop. It returns [ErrEditDeclined] if the
// user declines to edit again after a failure.
func (c *editCommand) Run() error {
	ctx := c.ctxFunc()

	f, err := os.CreateTemp("", "petuh-repl-*.petuh")
	if err != nil {
		return err
	}

	path := f.Name()
	defer os.Remove(path)

	if _, err := io.WriteString(f, c.transcript+"\n"); err != nil {
		f.Close()

		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	for {
		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, path); err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		if strings.TrimSpace(string(data)) == "" {
			return nil
		}

		if c.out != nil {
			c.out.Reset()
		}

		s := c.newSession()

		_, runErr := s.Run(ctx, path)
		c.logger.TraceContext(ctx, "editor run attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", runErr == nil),
		)

		if runErr == nil {
			c.session = s
			c.lines = strings.Split(strings.TrimRight(string(data), "\n"), "\n")

			return nil
		}

		fmt.Fprintf(c.stderr, "\nerror: %s\n", runErr)
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}
	}
}

// runEditor opens path in $EDITOR and waits for it to exit.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout, stderr io.Writer,
	path string,
) error {
	args := strings.Fields(os.Getenv("EDITOR"))
	if len(args) == 0 {
		args = []string{defaultEditor}
	}

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
