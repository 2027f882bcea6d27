/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/friendsincode/musictl/internal/cache"
	"github.com/friendsincode/musictl/internal/db"
	"github.com/friendsincode/musictl/internal/dupes"
	"github.com/friendsincode/musictl/internal/library"
	"github.com/friendsincode/musictl/internal/telemetry"
)

// fileHasher returns the hasher for exact duplicate detection, backed by
// the SQLite hash cache when dupes.cache_path is set. The returned close
// function is always safe to call.
func (a *app) fileHasher() (dupes.FileHasher, func()) {
	path := a.cfg.Dupes.CachePath
	if path == "" {
		return dupes.FileHasher{}, func() {}
	}
	logger := a.component("cache")
	database, err := db.Connect(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("hash cache disabled")
		return dupes.FileHasher{}, func() {}
	}
	closeDB := func() {
		if err := db.Close(database); err != nil {
			logger.Debug().Err(err).Msg("failed to close hash cache")
		}
	}
	if err := db.Migrate(database); err != nil {
		logger.Warn().Err(err).Msg("hash cache disabled")
		closeDB()
		return dupes.FileHasher{}, func() {}
	}
	if err := db.RegisterCallbacks(database, a.metrics); err != nil {
		logger.Debug().Err(err).Msg("failed to register cache callbacks")
	}
	logger.Debug().Str("path", path).Msg("hash cache enabled")
	return dupes.FileHasher{Cache: cache.New(database, a.metrics, a.logger)}, closeDB
}

// findDupes runs exact or fuzzy detection over path. On cancellation the
// groups found so far are returned with the context error.
func (a *app) findDupes(cmd *cobra.Command, command, path string, fuzzy bool) ([]dupes.Group, error) {
	ctx := cmd.Context()
	files, err := a.collectAudio(cmd, path)
	if err != nil || len(files) == 0 {
		return nil, err
	}

	if fuzzy {
		mds, err := a.readAll(ctx, command, files, "Reading tags")
		if err != nil {
			return nil, err
		}
		res, err := dupes.FindFuzzy(ctx, mds)
		if res.Skipped > 0 {
			a.logger.Debug().Int("skipped", res.Skipped).Msg("files without artist or title")
		}
		return res.Groups, err
	}

	h, closeCache := a.fileHasher()
	defer closeCache()
	fmt.Fprintf(a.progress, "Hashing %d files...\n", len(files))
	ctx, span := telemetry.StartSpan(ctx, "find exact duplicates")
	res, err := dupes.FindExact(ctx, files, h)
	telemetry.AddSpanAttributes(span, map[string]any{
		"files":      len(files),
		"candidates": res.Candidates,
		"groups":     len(res.Groups),
		"cached":     h.Cache != nil,
	})
	span.End()
	for _, fe := range res.Errors {
		a.metrics.FileFailed(command)
		a.logger.Warn().Err(fe.Err).Str("path", fe.Path).Msg("cannot hash file")
	}
	a.logger.Debug().Int("candidates", res.Candidates).Int("groups", len(res.Groups)).Msg("exact scan complete")
	return res.Groups, err
}

func printGroups(w io.Writer, groups []dupes.Group, summaryOnly bool) {
	if !summaryOnly {
		for i, g := range groups {
			if g.Advisory {
				fmt.Fprintf(w, "Group %d: %s - %s (%ds)\n", i+1, g.Artist, g.Title, g.Duration)
			} else {
				fmt.Fprintf(w, "Group %d (%s each)\n", i+1, library.HumanSize(g.Keep().Size))
			}
			for _, m := range g.Members {
				detail := ""
				if g.Advisory {
					detail = fmt.Sprintf(" [%s %s]", m.Format, library.SampleRateLabel(m.SampleRate))
				}
				fmt.Fprintf(w, "  %-9s %s%s\n", m.Status, m.Path, detail)
			}
			fmt.Fprintln(w)
		}
	}
	s := dupes.Summarize(groups)
	fmt.Fprintf(w, "%d duplicate %s\n", s.Groups, plural(s.Groups, "group", "groups"))
	fmt.Fprintf(w, "%d duplicate %s\n", s.Duplicates, plural(s.Duplicates, "file", "files"))
	fmt.Fprintf(w, "Wasted space: %s\n", library.HumanSize(s.Wasted))
}

func newDupesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dupes",
		Short: "Find and remove duplicate audio files",
	}
	cmd.AddCommand(newDupesFindCmd(a))
	return cmd
}

func newDupesFindCmd(a *app) *cobra.Command {
	var fuzzy, apply bool
	cmd := &cobra.Command{
		Use:   "find PATH",
		Short: "Find duplicates; with --apply delete all but one copy of each exact group",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			if !fuzzy && a.cfg.Dupes.DefaultMode == "fuzzy" && !cmd.Flags().Changed("fuzzy") {
				fuzzy = true
			}
			// Fuzzy matches are only reported; an explicit --apply is an error.
			if fuzzy && apply && cmd.Flags().Changed("apply") {
				return &exitError{code: 1, msg: "Refusing to delete fuzzy matches: metadata duplicates must be reviewed manually"}
			}
			doApply := !fuzzy && a.applyChanges(cmd, apply)

			w := cmd.OutOrStdout()
			groups, err := a.findDupes(cmd, "dupes find", args[0], fuzzy)
			if err != nil {
				if isCancel(err) {
					s := dupes.Summarize(groups)
					return a.interrupted(cmd, "Found %d duplicate groups before interruption", s.Groups)
				}
				return err
			}
			if len(groups) == 0 {
				fmt.Fprintln(w, "No duplicates found")
				return nil
			}
			printGroups(w, groups, false)
			if fuzzy {
				return nil
			}

			actions, err := dupes.Plan(groups)
			if err != nil {
				return &exitError{code: 1, msg: err.Error()}
			}
			if !doApply {
				fmt.Fprintf(w, "Dry run: %d files would be deleted. Use --apply to delete.\n", len(actions))
				return nil
			}

			out, err := dupes.Apply(cmd.Context(), actions, nil)
			a.metrics.Action("dupes find", "delete", len(out.Deleted))
			for _, f := range out.Failed {
				a.metrics.FileFailed("dupes find")
				fmt.Fprintf(w, "Failed to delete %s: %v\n", f.Action.Path, f.Err)
			}
			if err != nil {
				if isCancel(err) {
					return a.interrupted(cmd, "Deleted %d files before interruption", len(out.Deleted))
				}
				return err
			}
			fmt.Fprintf(w, "Deleted %d files, freed %s\n", len(out.Deleted), library.HumanSize(out.Freed))
			if len(out.Failed) > 0 {
				fmt.Fprintf(w, "%d deletions failed\n", len(out.Failed))
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&fuzzy, "fuzzy", false, "Match on artist, title and duration instead of content")
	cmd.Flags().BoolVar(&apply, "apply", false, "Delete duplicates (default is a dry run)")
	return cmd
}
