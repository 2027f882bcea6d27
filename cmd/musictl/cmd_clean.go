/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/friendsincode/musictl/internal/clean"
	"github.com/friendsincode/musictl/internal/library"
	"github.com/friendsincode/musictl/internal/walker"
)

func newCleanCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove operating system junk files",
	}
	cmd.AddCommand(newCleanTempFilesCmd(a))
	return cmd
}

func newCleanTempFilesCmd(a *app) *cobra.Command {
	var apply bool
	cmd := &cobra.Command{
		Use:   "temp-files PATH",
		Short: "Find ._*, .DS_Store, Thumbs.db and similar files",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			doApply := a.applyChanges(cmd, apply)
			matches, err := clean.Find(cmd.Context(), args[0], a.recursive())
			switch {
			case errors.Is(err, walker.ErrNotFound):
				return &exitError{code: 1, msg: "Path not found: " + args[0]}
			case isCancel(err):
				return a.interrupted(cmd, "")
			case err != nil:
				return err
			}

			w := cmd.OutOrStdout()
			if len(matches) == 0 {
				fmt.Fprintln(w, "No temporary files found")
				return nil
			}
			for _, g := range clean.GroupByPattern(matches) {
				fmt.Fprintf(w, "%s: %d %s (%s)\n", g.Pattern, len(g.Files), plural(len(g.Files), "file", "files"), library.HumanSize(g.Size))
				for _, m := range g.Files {
					fmt.Fprintf(w, "  %s\n", rel(args[0], m.Path))
				}
			}
			total := library.HumanSize(clean.TotalSize(matches))
			if !doApply {
				fmt.Fprintf(w, "Dry run: %d files (%s) would be deleted. Use --apply to delete.\n", len(matches), total)
				return nil
			}

			out, err := clean.Remove(cmd.Context(), matches)
			a.metrics.Action("clean temp-files", "delete", len(out.Deleted))
			for _, f := range out.Failed {
				a.metrics.FileFailed("clean temp-files")
				fmt.Fprintf(w, "Failed to delete %s: %v\n", f.Path, f.Err)
			}
			if err != nil {
				return a.interrupted(cmd, "Deleted %d of %d files", len(out.Deleted), len(matches))
			}
			fmt.Fprintf(w, "Deleted %d files (%s)\n", len(out.Deleted), library.HumanSize(clean.TotalSize(out.Deleted)))
			return nil
		}),
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "Delete files (default is a dry run)")
	return cmd
}
