package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/objref/config"
	"github.com/wippyai/objref/dispatch"
	"github.com/wippyai/objref/resource"
	"github.com/wippyai/objref/snapshot"
	"github.com/wippyai/objref/telemetry"
	"github.com/wippyai/objref/wasmhost"
)

var (
	// Global flags
	statePath   string
	sessionName string
	layoutName  string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "objref",
	Short: "Drive handle-addressed objects through a command dispatcher",
	Long: `objref keeps a table of live objects addressed by small integer handles
and routes keyword commands to them. Handles are allocated smallest-first and
reused after deletion.

With --state the session is stored in SQLite between invocations, so handles
returned by one call stay valid in the next.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&statePath, "state", "", "SQLite file holding session state (env OBJREF_STATE)")
	rootCmd.PersistentFlags().StringVar(&sessionName, "session", "", "Session name within the state file (env OBJREF_SESSION)")
	rootCmd.PersistentFlags().StringVar(&layoutName, "layout", "", "Handle table layout: sequence or slotmap (env OBJREF_LAYOUT)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log threshold: info, warn or fail (env OBJREF_LOG_LEVEL)")
}

func execute() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		config.Exitf("Error: %v", err)
	}
}

// run executes one invocation. The session is saved and released even when
// the subcommand fails.
func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	err := rootCmd.ExecuteContext(ctx)
	return errors.Join(err, teardown(ctx))
}

// app is the state shared by subcommands for one invocation.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	session  *dispatch.Session
	store    *snapshot.Store
	shutdown func(context.Context) error
}

var current *app

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("state") {
		cfg.StatePath = statePath
	}
	if flags.Changed("session") {
		cfg.Session = sessionName
	}
	if flags.Changed("layout") {
		cfg.Layout = layoutName
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := config.NewLogger(level)
	dispatch.SetLogger(logger)
	wasmhost.SetLogger(logger)
	resource.SetLogger(logger)

	shutdown, err := telemetry.Setup(cmd.Context(), cfg.OTelEndpoint, cfg.OTelEnabled)
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	}

	layout, _ := resource.ParseLayout(cfg.Layout)
	a := &app{cfg: cfg, logger: logger, shutdown: shutdown}
	if a.session, err = dispatch.NewSession(dispatch.WithLayout(layout), dispatch.WithLogger(logger)); err != nil {
		return err
	}

	if cfg.StatePath != "" {
		if a.store, err = snapshot.Open(cfg.StatePath); err != nil {
			return err
		}
		if err := a.store.Restore(cmd.Context(), cfg.Session, a.session); err != nil {
			_ = a.store.Close()
			return fmt.Errorf("restore session %q: %w", cfg.Session, err)
		}
		logger.Info("session loaded", zap.String("session", cfg.Session), zap.Int("count", a.session.Count()))
	}

	current = a
	return nil
}

func teardown(ctx context.Context) error {
	a := current
	if a == nil {
		return nil
	}
	current = nil

	var errs []error
	if a.store != nil {
		if err := a.store.SaveSession(ctx, a.cfg.Session, a.session); err != nil {
			errs = append(errs, fmt.Errorf("save session %q: %w", a.cfg.Session, err))
		}
		errs = append(errs, a.store.Close())
	}
	errs = append(errs, a.session.Close())
	if a.shutdown != nil {
		errs = append(errs, a.shutdown(context.Background()))
	}
	_ = a.logger.Sync()
	return errors.Join(errs...)
}
