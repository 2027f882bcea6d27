/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/friendsincode/musictl/internal/audio"
	"github.com/friendsincode/musictl/internal/consistency"
	"github.com/friendsincode/musictl/internal/encoding"
	"github.com/friendsincode/musictl/internal/export"
	"github.com/friendsincode/musictl/internal/library"
)

// requiredFields are the tags scan missing expects on every file.
var requiredFields = []string{audio.FieldTitle, audio.FieldArtist, audio.FieldAlbum, audio.FieldDate}

// maxGuesses is how many candidate readings scan encoding shows per tag.
const maxGuesses = 3

func newScanCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Read-only library reports",
	}
	cmd.AddCommand(
		newScanLibraryCmd(a),
		newScanEncodingCmd(a),
		newScanHiResCmd(a),
		newScanMissingCmd(a),
		newScanConsistencyCmd(a),
		newScanDupesCmd(a),
	)
	return cmd
}

func newScanLibraryCmd(a *app) *cobra.Command {
	var ex exportFlags
	cmd := &cobra.Command{
		Use:   "library PATH",
		Short: "Format, sample rate and bit depth distribution",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			format, err := ex.validate()
			if err != nil {
				return err
			}
			files, err := a.collectAudio(cmd, args[0])
			if err != nil || len(files) == 0 {
				return err
			}

			stats := library.NewStats(args[0])
			mds, readErr := a.readAll(cmd.Context(), "scan library", files, "Scanning")
			for _, md := range mds {
				stats.Add(md)
			}
			printLibrary(cmd, stats)
			if readErr != nil {
				return a.interrupted(cmd, "Scanned %d of %d files", len(mds), len(files))
			}
			return a.export(cmd, &ex, format, export.LibraryReport{Stats: stats})
		}),
	}
	ex.register(cmd)
	return cmd
}

func printLibrary(cmd *cobra.Command, s *library.Stats) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Library: %s\n", s.ScanPath)
	fmt.Fprintf(w, "Total files: %d\n", s.Total)
	fmt.Fprintf(w, "Total duration: %s\n", library.HumanDuration(s.TotalDuration))
	fmt.Fprintf(w, "Total size: %s\n", library.HumanSize(s.TotalSize))
	if s.ID3v1 > 0 {
		fmt.Fprintf(w, "Files with ID3v1: %d\n", s.ID3v1)
	}
	if s.Errors > 0 {
		fmt.Fprintf(w, "Unreadable files: %d\n", s.Errors)
	}

	fmt.Fprintln(w)
	var rows [][]string
	for _, f := range s.Formats() {
		rows = append(rows, []string{
			string(f.Format),
			strconv.Itoa(f.Files),
			library.HumanDuration(f.Duration),
			library.HumanSize(f.Size),
			fmt.Sprintf("%.1f%%", s.Percent(f.Files)),
		})
	}
	table(w, []string{"FORMAT", "FILES", "DURATION", "SIZE", "SHARE"}, rows)

	if rates := s.SampleRates(); len(rates) > 0 {
		fmt.Fprintln(w)
		rows = rows[:0]
		for _, b := range rates {
			rows = append(rows, []string{library.SampleRateLabel(b.Value), strconv.Itoa(b.Files), fmt.Sprintf("%.1f%%", s.Percent(b.Files))})
		}
		table(w, []string{"SAMPLE RATE", "FILES", "SHARE"}, rows)
	}
	if depths := s.BitDepths(); len(depths) > 0 {
		fmt.Fprintln(w)
		rows = rows[:0]
		for _, b := range depths {
			rows = append(rows, []string{fmt.Sprintf("%d-bit", b.Value), strconv.Itoa(b.Files), fmt.Sprintf("%.1f%%", s.Percent(b.Files))})
		}
		table(w, []string{"BIT DEPTH", "FILES", "SHARE"}, rows)
	}
}

func newScanEncodingCmd(a *app) *cobra.Command {
	var ex exportFlags
	var from string
	cmd := &cobra.Command{
		Use:   "encoding PATH",
		Short: "Find MP3 tags that look like mojibake",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			format, err := ex.validate()
			if err != nil {
				return err
			}
			if from == "" {
				from = a.cfg.Encoding.DefaultSource
			}
			if _, err := encoding.Lookup(from); err != nil {
				return &exitError{code: 1, msg: fmt.Sprintf("Unknown encoding: %s", from)}
			}
			files, err := a.collectAudio(cmd, args[0])
			if err != nil || len(files) == 0 {
				return err
			}
			files = onlyFormat(files, audio.FormatMP3)

			w := cmd.OutOrStdout()
			report := export.EncodingReport{ScanPath: args[0], Total: len(files)}
			for i, p := range files {
				if cmd.Context().Err() != nil {
					return a.interrupted(cmd, "Checked %d of %d files, %d suspect", i, len(files), report.Files)
				}
				items, err := suspectTags(p, from)
				if err != nil {
					a.metrics.FileFailed("scan encoding")
					a.logger.Debug().Err(err).Str("path", p).Msg("cannot read tag")
					continue
				}
				a.metrics.FileProcessed("scan encoding")
				if len(items) == 0 {
					continue
				}
				report.Files++
				report.Tags = append(report.Tags, items...)

				fmt.Fprintln(w, rel(args[0], p))
				for _, it := range items {
					fmt.Fprintf(w, "  %s:\n", it.Tag)
					for _, g := range it.Guesses {
						fmt.Fprintf(w, "    %-10s %s\n", g.Encoding, g.Text)
					}
				}
			}

			if report.Files == 0 {
				fmt.Fprintln(w, "No encoding problems found")
			} else {
				fmt.Fprintf(w, "%d of %d files have suspect tags\n", report.Files, report.Total)
			}
			return a.export(cmd, &ex, format, report)
		}),
	}
	cmd.Flags().StringVar(&from, "from", "", "Legacy encoding to test against (default from config)")
	ex.register(cmd)
	return cmd
}

// suspectTags returns the suspect frames of one MP3 with their top
// candidate readings.
func suspectTags(path, from string) ([]export.EncodingItem, error) {
	t, err := audio.OpenMP3(path)
	if err != nil {
		return nil, err
	}
	defer t.Close()

	frames := t.TextFrames()
	ids := make([]string, 0, len(frames))
	for id := range frames {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var items []export.EncodingItem
	for _, id := range ids {
		s, ok := encoding.Detect(frames[id], from)
		if !ok {
			continue
		}
		guesses := encoding.Guess(s.Bytes)
		if len(guesses) > maxGuesses {
			guesses = guesses[:maxGuesses]
		}
		items = append(items, export.EncodingItem{Path: path, Tag: id, Guesses: guesses})
	}
	return items, nil
}

func newScanHiResCmd(a *app) *cobra.Command {
	var ex exportFlags
	var threshold int
	cmd := &cobra.Command{
		Use:   "hires PATH",
		Short: "List files above a sample-rate threshold",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			format, err := ex.validate()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("threshold") {
				threshold = a.cfg.Scan.HiResThreshold
			}
			files, err := a.collectAudio(cmd, args[0])
			if err != nil || len(files) == 0 {
				return err
			}

			mds, readErr := a.readAll(cmd.Context(), "scan hires", files, "Scanning")
			report := export.HiResReport{ScanPath: args[0], Threshold: threshold, Total: len(mds)}
			for _, md := range mds {
				if md.OK() && md.IsHiRes(threshold) {
					report.Files = append(report.Files, md)
				}
			}

			w := cmd.OutOrStdout()
			if len(report.Files) > 0 {
				rows := make([][]string, 0, len(report.Files))
				for _, md := range report.Files {
					rows = append(rows, []string{rel(args[0], md.Path), string(md.Format), md.SampleRateString(), fmt.Sprintf("%d-bit", md.BitDepth), md.DurationString()})
				}
				table(w, []string{"FILE", "FORMAT", "RATE", "DEPTH", "LENGTH"}, rows)
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "%d of %d files above %s\n", len(report.Files), report.Total, library.SampleRateLabel(threshold))
			if readErr != nil {
				return a.interrupted(cmd, "Scanned %d of %d files", len(mds), len(files))
			}
			return a.export(cmd, &ex, format, report)
		}),
	}
	cmd.Flags().IntVar(&threshold, "threshold", 48000, "Sample rate in Hz; files strictly above it are listed")
	ex.register(cmd)
	return cmd
}

func newScanMissingCmd(a *app) *cobra.Command {
	var ex exportFlags
	cmd := &cobra.Command{
		Use:   "missing PATH",
		Short: "List files missing title, artist, album or year",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			format, err := ex.validate()
			if err != nil {
				return err
			}
			files, err := a.collectAudio(cmd, args[0])
			if err != nil || len(files) == 0 {
				return err
			}

			mds, readErr := a.readAll(cmd.Context(), "scan missing", files, "Scanning")
			report := export.MissingReport{ScanPath: args[0], Total: len(mds)}
			for _, md := range mds {
				if !md.OK() {
					continue
				}
				var missing []string
				for _, f := range requiredFields {
					if md.Tag(f) == "" {
						missing = append(missing, f)
					}
				}
				if len(missing) > 0 {
					report.Files = append(report.Files, export.MissingItem{Path: md.Path, Format: md.Format, Missing: missing})
				}
			}

			w := cmd.OutOrStdout()
			for _, it := range report.Files {
				fmt.Fprintf(w, "%s: missing %v\n", rel(args[0], it.Path), it.Missing)
			}
			if readErr != nil {
				return a.interrupted(cmd, "%d files with incomplete metadata among %d scanned", len(report.Files), len(mds))
			}
			if len(report.Files) == 0 {
				fmt.Fprintln(w, "All files have complete metadata")
				return nil
			}
			fmt.Fprintf(w, "%d files with incomplete metadata out of %d total\n", len(report.Files), report.Total)
			return a.export(cmd, &ex, format, report)
		}),
	}
	ex.register(cmd)
	return cmd
}

func newScanConsistencyCmd(a *app) *cobra.Command {
	var summary bool
	cmd := &cobra.Command{
		Use:   "consistency PATH",
		Short: "Check albums for mismatched tags and track problems",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			files, err := a.collectAudio(cmd, args[0])
			if err != nil || len(files) == 0 {
				return err
			}
			mds, readErr := a.readAll(cmd.Context(), "scan consistency", files, "Reading tags")
			reports := consistency.CheckTree(mds)

			w := cmd.OutOrStdout()
			withIssues := 0
			for _, r := range reports {
				if !r.HasIssues() {
					continue
				}
				withIssues++
				if summary {
					continue
				}
				fmt.Fprintf(w, "%s (%d files)\n", rel(args[0], r.Dir), r.Files)
				for _, issue := range r.Issues {
					fmt.Fprintf(w, "  - %s\n", issue)
				}
				for _, hint := range r.Hints {
					fmt.Fprintf(w, "    hint: %s\n", hint)
				}
			}
			if readErr != nil {
				return a.interrupted(cmd, "%d albums checked, %d with issues", len(reports), withIssues)
			}
			if withIssues > 0 && !summary {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "%d albums checked, %d with issues\n", len(reports), withIssues)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&summary, "summary", false, "Only print the totals")
	return cmd
}

func newScanDupesCmd(a *app) *cobra.Command {
	var ex exportFlags
	var fuzzy, summary bool
	cmd := &cobra.Command{
		Use:   "dupes PATH",
		Short: "Report duplicate files without changing anything",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			format, err := ex.validate()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("fuzzy") && a.cfg.Dupes.DefaultMode == "fuzzy" {
				fuzzy = true
			}
			groups, err := a.findDupes(cmd, "scan dupes", args[0], fuzzy)
			if err != nil {
				if isCancel(err) {
					return a.interrupted(cmd, "Found %d duplicate groups before interruption", len(groups))
				}
				return err
			}
			w := cmd.OutOrStdout()
			if len(groups) == 0 {
				fmt.Fprintln(w, "No duplicates found")
				return nil
			}
			printGroups(w, groups, summary)

			mode := "exact"
			if fuzzy {
				mode = "fuzzy"
			}
			return a.export(cmd, &ex, format, export.DupesReport{ScanPath: args[0], Mode: mode, Groups: groups})
		}),
	}
	cmd.Flags().BoolVar(&fuzzy, "fuzzy", false, "Match on artist, title and duration instead of content")
	cmd.Flags().BoolVar(&summary, "summary", false, "Only print the totals")
	ex.register(cmd)
	return cmd
}
