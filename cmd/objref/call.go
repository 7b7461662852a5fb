package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newCallCmd())
}

func newCallCmd() *cobra.Command {
	var outputs int

	cmd := &cobra.Command{
		Use:   "call <keyword> [args...]",
		Short: "Dispatch a single command",
		Long: `Dispatch one command and print its outputs on a single line.

Integer tokens are passed as signed integers and other numeric tokens as
numbers. Prefix a token with f:, i:, u: or s: to force a number, signed
integer, unsigned integer or text. Put -- before the keyword when an
argument is negative.`,
		Example: `  objref --state objs.db call create 3.5
  objref --state objs.db call compute 0 4.0
  objref call count --outputs 2
  objref call -- create -1.5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vals, err := parseTokens(args[1:])
			if err != nil {
				return err
			}
			s := current.session
			nout := outputsFor(s.Commands(), args[0], outputs)

			out, err := s.Call(cmd.Context(), args[0], nout, vals...)
			if err != nil {
				return err
			}
			if len(out) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatValues(out))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&outputs, "outputs", "n", -1, "Number of outputs to request (default: the command's own)")
	return cmd
}
