package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/objref/dispatch"
	objerrors "github.com/wippyai/objref/errors"
)

func init() {
	rootCmd.AddCommand(newReplCmd())
}

func newReplCmd() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Dispatch commands interactively",
		Long: `Open a command picker when stdin is a terminal. Otherwise, or with --plain,
read one command per line:

  create 3.5
  compute 0 4.0
  count => 1

A trailing "=> N" requests N outputs. Blank lines and lines starting with #
are skipped. Failed commands are reported and the loop continues.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := current.session
			if !plain && cmd.InOrStdin() == os.Stdin && term.IsTerminal(int(os.Stdin.Fd())) {
				return runInteractive(s)
			}
			return runLines(cmd.Context(), s, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Read commands line by line even on a terminal")
	return cmd
}

// runLines dispatches each line of r against s and writes one result line
// per command to w.
func runLines(ctx context.Context, s *dispatch.Session, r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		kw, args, nout, err := parseLine(line)
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			continue
		}
		if kw == "" {
			fmt.Fprintln(w, "error: command keyword missing")
			continue
		}

		out, err := s.Call(ctx, kw, outputsFor(s.Commands(), kw, nout), args...)
		switch {
		case err != nil:
			fmt.Fprintf(w, "error [%s]: %v\n", objerrors.KindOf(err), err)
		case len(out) == 0:
			fmt.Fprintln(w, "ok")
		default:
			fmt.Fprintln(w, formatValues(out))
		}
	}
	return sc.Err()
}
