package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wippyai/objref/dispatch"
	"github.com/wippyai/objref/scenario"
)

func init() {
	rootCmd.AddCommand(newScenarioCmd())
}

func newScenarioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario <file.hcl>...",
		Short: "Run HCL scenario files",
		Long: `Run each scenario file against a fresh session using the file's layout.
The stored session selected by --state is not touched.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				sc, err := scenario.Load(path)
				if err != nil {
					return err
				}

				s, err := dispatch.NewSession(dispatch.WithLayout(sc.Layout), dispatch.WithLogger(current.logger))
				if err != nil {
					return err
				}
				rep := scenario.Run(cmd.Context(), s, sc)
				_ = s.Close()

				fmt.Fprintf(w, "%s (%s)\n%s", path, sc.Layout, rep)
				if !rep.OK() {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenarios failed", failed, len(args))
			}
			return nil
		},
	}
}
