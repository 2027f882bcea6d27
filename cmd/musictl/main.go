/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/friendsincode/musictl/internal/config"
	"github.com/friendsincode/musictl/internal/logging"
	"github.com/friendsincode/musictl/internal/probe"
	"github.com/friendsincode/musictl/internal/telemetry"
	"github.com/friendsincode/musictl/internal/version"
)

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return fmt.Sprintf("exit status %d", e.code)
}

// errCancelled is returned after the partial results of an interrupted run
// have been printed.
var errCancelled = &exitError{code: 130}

// app holds the state shared by every command of one invocation.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	metrics *telemetry.Metrics
	tracer  *telemetry.TracerProvider
	prober  *probe.Prober

	runID   string
	started time.Time
	span    trace.Span

	// progress receives progress bars; stderr in production.
	progress io.Writer
	// logOut receives diagnostics; stderr in production.
	logOut io.Writer

	configPath  string
	verbose     bool
	noRecursive bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root := newRootCmd(os.Stderr, os.Stderr)
	err := root.ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(os.Stderr, err))
}

func exitCode(stderr io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.msg != "" {
			fmt.Fprintf(stderr, "error: %s\n", ee.msg)
		}
		return ee.code
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	return 1
}

func newRootCmd(progress, logOut io.Writer) *cobra.Command {
	a := &app{progress: progress, logOut: logOut}

	root := &cobra.Command{
		Use:           "musictl",
		Short:         "musictl - audio library maintenance toolkit",
		Long:          "musictl repairs tag encodings, normalizes metadata, finds duplicates, checks album consistency and manages artwork across an audio library.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default $MUSICTL_CONFIG or $XDG_CONFIG_HOME/musictl/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Verbose diagnostics on stderr")
	root.PersistentFlags().BoolVarP(&a.noRecursive, "no-recursive", "R", false, "Do not descend into subdirectories")

	root.AddCommand(
		newTagsCmd(a),
		newScanCmd(a),
		newDupesCmd(a),
		newValidateCmd(a),
		newOrganizeCmd(a),
		newCleanCmd(a),
		newArtCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads configuration and starts logging, tracing and metrics for
// the invocation.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(config.ResolvePath(a.configPath))
	if err != nil {
		return &exitError{code: 1, msg: fmt.Sprintf("load config: %v", err)}
	}
	a.cfg = cfg

	level := logging.Level(cfg.General.LogLevel, a.verbose, cfg.IsDevelopment())
	a.logger = logging.SetupWithWriter(level, a.logOut)

	a.runID = uuid.NewString()
	a.started = time.Now()
	a.logger = a.logger.With().Str("run_id", a.runID).Logger()

	tp, err := telemetry.InitTracer(cmd.Context(), telemetry.TracerConfig{
		ServiceVersion: version.Version,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.TracingEnabled,
		SampleRate:     cfg.Telemetry.SampleRate,
	}, a.logger)
	if err != nil {
		a.logger.Warn().Err(err).Msg("tracing disabled")
	}
	a.tracer = tp

	ctx, span := telemetry.StartCommand(cmd.Context(), cmd.CommandPath(), a.runID)
	cmd.SetContext(ctx)
	a.span = span

	a.metrics = telemetry.NewMetrics()
	a.prober = probe.New(cfg.Probe.FFprobeBin, cfg.Probe.Timeout(), a.logger)
	return nil
}

// teardown ends the command span, flushes traces and writes the metrics
// textfile when configured.
func (a *app) teardown(cmd *cobra.Command, runErr error) {
	if a.span != nil {
		telemetry.EndSpan(a.span, runErr)
		a.span = nil
	}
	if a.metrics != nil {
		a.metrics.ObserveRun(cmd.CommandPath(), time.Since(a.started))
		if path := a.cfg.Telemetry.MetricsTextfile; path != "" {
			if err := a.metrics.WriteTextfile(path); err != nil {
				a.logger.Warn().Err(err).Str("path", path).Msg("failed to write metrics textfile")
			}
		}
	}
	if err := a.tracer.Shutdown(context.Background()); err != nil {
		a.logger.Debug().Err(err).Msg("failed to shutdown tracer provider")
	}
}

// run wraps a command body so the span, tracer and metrics are closed
// whether or not it fails.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		a.teardown(cmd, err)
		return err
	}
}

// recursive is the effective walk mode.
func (a *app) recursive() bool {
	return a.cfg.General.Recursive && !a.noRecursive
}

// applyChanges resolves --apply against the dry_run config default.
func (a *app) applyChanges(cmd *cobra.Command, flag bool) bool {
	if cmd.Flags().Changed("apply") {
		return flag
	}
	return !a.cfg.General.DryRun
}

// component returns a sub-logger tagged with name.
func (a *app) component(name string) zerolog.Logger {
	return a.logger.With().Str("component", name).Logger()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the musictl version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return nil
		},
	}
}
