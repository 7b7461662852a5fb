package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/objref/wasmhost"
)

func init() {
	rootCmd.AddCommand(newWasmCmd())
}

func newWasmCmd() *cobra.Command {
	var (
		entry    string
		maxPages uint32
	)

	cmd := &cobra.Command{
		Use:   "wasm <guest.wasm>",
		Short: "Run a WebAssembly guest against the session",
		Long: `Run a core WebAssembly module whose commands reach the session through the
"objref" host module. The guest's entry export takes no parameters.

Guests see the same handles as the other subcommands, so with --state the
objects a guest creates survive it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read file: %w", err)
			}

			ctx := cmd.Context()
			engine, err := wasmhost.NewEngine(ctx, current.session, &wasmhost.Config{
				Stdout:           cmd.OutOrStdout(),
				Stderr:           cmd.ErrOrStderr(),
				MemoryLimitPages: maxPages,
			})
			if err != nil {
				return err
			}
			defer engine.Close(ctx)

			if err := engine.Run(ctx, data, entry); err != nil {
				return err
			}
			current.logger.Info("guest finished",
				zap.String("file", args[0]),
				zap.Int("count", current.session.Count()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&entry, "entry", "e", "run", "Exported function to call")
	cmd.Flags().Uint32Var(&maxPages, "max-pages", 0, "Guest memory limit in 64KiB pages (0 for the runtime default)")
	return cmd
}
