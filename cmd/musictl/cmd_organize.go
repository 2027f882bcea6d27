/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/friendsincode/musictl/internal/audio"
	"github.com/friendsincode/musictl/internal/organize"
)

func newOrganizeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Move files into folders by format or sample rate",
	}
	cmd.AddCommand(
		newOrganizeByFormatCmd(a),
		newOrganizeBySampleRateCmd(a),
	)
	return cmd
}

func newOrganizeByFormatCmd(a *app) *cobra.Command {
	var dest string
	var apply bool
	cmd := &cobra.Command{
		Use:   "by-format PATH",
		Short: "Move files into DEST/<FORMAT>/",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			return a.organize(cmd, args[0], a.applyChanges(cmd, apply), func(files []audio.Metadata) organize.Plan {
				return organize.ByFormat(files, dest)
			})
		}),
	}
	cmd.Flags().StringVar(&dest, "dest", "", "Destination root")
	cmd.Flags().BoolVar(&apply, "apply", false, "Move files (default is a dry run)")
	_ = cmd.MarkFlagRequired("dest")
	return cmd
}

func newOrganizeBySampleRateCmd(a *app) *cobra.Command {
	var dest string
	var threshold int
	var apply bool
	cmd := &cobra.Command{
		Use:   "by-samplerate PATH",
		Short: "Move files above the threshold into DEST/",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("threshold") {
				threshold = a.cfg.Scan.HiResThreshold
			}
			return a.organize(cmd, args[0], a.applyChanges(cmd, apply), func(files []audio.Metadata) organize.Plan {
				return organize.BySampleRate(files, dest, threshold)
			})
		}),
	}
	cmd.Flags().StringVar(&dest, "dest", "", "Destination root")
	cmd.Flags().IntVar(&threshold, "threshold", 48000, "Sample rate in Hz; files strictly above it are moved")
	cmd.Flags().BoolVar(&apply, "apply", false, "Move files (default is a dry run)")
	_ = cmd.MarkFlagRequired("dest")
	return cmd
}

// organize reads every file, builds the plan and prints or executes it.
func (a *app) organize(cmd *cobra.Command, root string, apply bool, plan func([]audio.Metadata) organize.Plan) error {
	command := cmd.CommandPath()
	files, err := a.collectAudio(cmd, root)
	if err != nil || len(files) == 0 {
		return err
	}
	mds, err := a.readAll(cmd.Context(), command, files, "Reading")
	if err != nil {
		return a.interrupted(cmd, "Read %d of %d files, nothing moved", len(mds), len(files))
	}

	p := plan(mds)
	w := cmd.OutOrStdout()
	for _, md := range p.Skipped {
		fmt.Fprintf(w, "Skipping unreadable %s: %s\n", md.Path, md.Err)
	}
	if len(p.Moves) == 0 {
		fmt.Fprintln(w, "Nothing to move")
		return nil
	}

	for _, bc := range p.BucketCounts() {
		fmt.Fprintf(w, "%s: %d %s\n", bc.Bucket, bc.Files, plural(bc.Files, "file", "files"))
	}
	if !apply {
		for _, m := range p.Moves {
			fmt.Fprintf(w, "  %s -> %s\n", m.Source, m.Dest)
		}
		fmt.Fprintf(w, "Dry run: %d files would be moved. Use --apply to move.\n", len(p.Moves))
		return nil
	}

	out, err := organize.Execute(cmd.Context(), p)
	a.metrics.Action(command, "move", len(out.Moved))
	for _, f := range out.Failed {
		a.metrics.FileFailed(command)
		fmt.Fprintf(w, "Failed to move %s: %v\n", f.Move.Source, f.Err)
	}
	if err != nil {
		if isCancel(err) {
			return a.interrupted(cmd, "Moved %d of %d files", len(out.Moved), len(p.Moves))
		}
		return err
	}
	fmt.Fprintf(w, "Moved %d files\n", len(out.Moved))
	if len(out.Failed) > 0 {
		fmt.Fprintf(w, "%d moves failed\n", len(out.Failed))
	}
	return nil
}
