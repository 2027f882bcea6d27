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
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/friendsincode/musictl/internal/audio"
	"github.com/friendsincode/musictl/internal/export"
	"github.com/friendsincode/musictl/internal/storage"
	"github.com/friendsincode/musictl/internal/telemetry"
	"github.com/friendsincode/musictl/internal/walker"
)

// collect walks path with the configured recursion. A missing path is a
// hard failure.
func (a *app) collect(ctx context.Context, path string, match func(string) bool) ([]string, error) {
	files, err := walker.Walk(ctx, path, walker.Options{Recursive: a.recursive(), Match: match})
	if errors.Is(err, walker.ErrNotFound) {
		return nil, &exitError{code: 1, msg: "Path not found: " + path}
	}
	if err != nil {
		return files, err
	}
	a.logger.Debug().Str("root", path).Int("files", len(files)).Bool("recursive", a.recursive()).Msg("walk complete")
	return files, nil
}

// collectAudio walks for supported audio files and prints a notice when
// there are none. It returns nil files in that case.
func (a *app) collectAudio(cmd *cobra.Command, path string) ([]string, error) {
	files, err := a.collect(cmd.Context(), path, nil)
	if err != nil {
		if isCancel(err) {
			return nil, a.interrupted(cmd, "")
		}
		return nil, err
	}
	if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No audio files found")
	}
	return files, nil
}

// onlyFormat keeps the files of one container.
func onlyFormat(files []string, f audio.Format) []string {
	var out []string
	for _, p := range files {
		if got, _ := audio.FormatOf(p); got == f {
			out = append(out, p)
		}
	}
	return out
}

func (a *app) newBar(total int, desc string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(a.progress),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetPredictTime(false),
	)
}

// readAll reads metadata for every file. On cancellation it returns what
// was read so far together with ctx.Err().
func (a *app) readAll(ctx context.Context, command string, files []string, desc string) ([]audio.Metadata, error) {
	bar := a.newBar(len(files), desc)
	defer bar.Finish()

	ctx, span := telemetry.StartSpan(ctx, "read metadata")
	out := make([]audio.Metadata, 0, len(files))
	failed := 0
	defer func() {
		telemetry.AddSpanAttributes(span, map[string]any{"files": len(files), "read": len(out), "failed": failed})
		span.End()
	}()

	for _, p := range files {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		md := audio.Read(ctx, p, a.prober)
		if md.OK() {
			a.metrics.FileProcessed(command)
		} else {
			failed++
			a.metrics.FileFailed(command)
			a.logger.Debug().Str("path", p).Str("error", md.Err).Msg("unreadable file")
		}
		out = append(out, md)
		_ = bar.Add(1)
	}
	return out, nil
}

// interrupted prints the cancellation notice plus an optional partial
// summary and returns the exit-130 error.
func (a *app) interrupted(cmd *cobra.Command, partial string, args ...any) error {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Operation cancelled by user")
	if partial != "" {
		fmt.Fprintf(w, partial+"\n", args...)
	}
	return errCancelled
}

func isCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// rel shortens path for display relative to root.
func rel(root, path string) string {
	if r, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(r, "..") && r != "." {
		return r
	}
	return path
}

func table(w io.Writer, header []string, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	_ = tw.Flush()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// exportFlags are shared by the scan reports that can be exported.
type exportFlags struct {
	dest   string
	format string
}

func (e *exportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&e.dest, "export", "", "Write the report to a file path or s3://bucket/key")
	cmd.Flags().StringVar(&e.format, "format", "csv", "Export format: csv or json")
}

// validate runs before any file is touched so a bad format fails fast.
func (e *exportFlags) validate() (export.Format, error) {
	if e.dest == "" {
		return "", nil
	}
	f, err := export.ParseFormat(e.format)
	if err != nil {
		return "", &exitError{code: 1, msg: fmt.Sprintf("Invalid format: %s (use csv or json)", e.format)}
	}
	return f, nil
}

// write exports r when --export was given.
func (a *app) export(cmd *cobra.Command, e *exportFlags, f export.Format, r export.Report) error {
	if e.dest == "" {
		return nil
	}
	ctx := cmd.Context()
	s3cfg := storage.S3Config{
		AccessKeyID:     a.cfg.S3.AccessKeyID,
		SecretAccessKey: a.cfg.S3.SecretAccessKey,
		Region:          a.cfg.S3.Region,
		Endpoint:        a.cfg.S3.Endpoint,
		UsePathStyle:    a.cfg.S3.UsePathStyle,
	}
	store, key, err := storage.ForDestination(ctx, e.dest, s3cfg, a.component("storage"))
	if err != nil {
		return err
	}
	written, err := export.Write(ctx, store, key, r, f, a.runID)
	if err != nil {
		return err
	}
	if written {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %s report to %s\n", r.Kind(), e.dest)
	}
	return nil
}
