/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// errWidth bounds how much of a read error validate prints.
const errWidth = 60

func newValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that audio files can be read",
	}
	cmd.AddCommand(newValidateCheckCmd(a))
	return cmd
}

func newValidateCheckCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check PATH",
		Short: "Report files whose tags or stream properties cannot be read (-v lists valid files too)",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			files, err := a.collectAudio(cmd, args[0])
			if err != nil || len(files) == 0 {
				return err
			}
			mds, readErr := a.readAll(cmd.Context(), "validate check", files, "Validating")

			w := cmd.OutOrStdout()
			var rows [][]string
			valid := 0
			for _, md := range mds {
				if md.OK() {
					valid++
					if a.verbose {
						fmt.Fprintf(w, "OK   %s\n", rel(args[0], md.Path))
					}
					continue
				}
				rows = append(rows, []string{rel(args[0], md.Path), truncate(md.Err, errWidth)})
			}
			if len(rows) > 0 {
				table(w, []string{"FILE", "ERROR"}, rows)
				fmt.Fprintln(w)
			}
			if readErr != nil {
				return a.interrupted(cmd, "%d valid, %d invalid of %d checked", valid, len(rows), len(mds))
			}

			pct := 0.0
			if len(mds) > 0 {
				pct = float64(valid) / float64(len(mds)) * 100
			}
			fmt.Fprintf(w, "%d of %d files valid (%.1f%%)\n", valid, len(mds), pct)
			if len(rows) > 0 {
				fmt.Fprintf(w, "%d files with errors\n", len(rows))
			}
			return nil
		}),
	}
	return cmd
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
