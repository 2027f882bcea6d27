/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/friendsincode/musictl/internal/audio"
	"github.com/friendsincode/musictl/internal/encoding"
	"github.com/friendsincode/musictl/internal/id3v1"
	"github.com/friendsincode/musictl/internal/normalize"
	"github.com/friendsincode/musictl/internal/pattern"
)

func newTagsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Inspect and edit audio tags",
	}
	cmd.AddCommand(
		newTagsShowCmd(a),
		newTagsFixEncodingCmd(a),
		newTagsStripV1Cmd(a),
		newTagsNormalizeCmd(a),
		newTagsFromFilenameCmd(a),
		newTagsSetCmd(a),
		newTagsClearCmd(a),
	)
	return cmd
}

func newTagsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show PATH",
		Short: "Show properties and tags of audio files",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			files, err := a.collectAudio(cmd, args[0])
			if err != nil || len(files) == 0 {
				return err
			}
			w := cmd.OutOrStdout()
			for i, p := range files {
				if err := cmd.Context().Err(); err != nil {
					return a.interrupted(cmd, "Shown %d of %d files", i, len(files))
				}
				md := audio.Read(cmd.Context(), p, a.prober)
				fmt.Fprintf(w, "%s\n", p)
				if !md.OK() {
					a.metrics.FileFailed("tags show")
					fmt.Fprintf(w, "  Error: %s\n\n", md.Err)
					continue
				}
				a.metrics.FileProcessed("tags show")
				fmt.Fprintf(w, "  Format: %s  %s  %d-bit  %dch  %s\n",
					md.Format, md.SampleRateString(), md.BitDepth, md.Channels, md.DurationString())
				if md.Format == audio.FormatMP3 {
					fmt.Fprintf(w, "  ID3v1: %s  ID3v2: %s\n", yesNo(md.HasID3v1), yesNo(md.HasID3v2))
				}
				keys := make([]string, 0, len(md.Tags))
				for k := range md.Tags {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintf(w, "  %s: %s\n", k, md.Tags[k])
				}
				fmt.Fprintln(w)
			}
			return nil
		}),
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func newTagsFixEncodingCmd(a *app) *cobra.Command {
	var from string
	var apply bool
	cmd := &cobra.Command{
		Use:   "fix-encoding PATH",
		Short: "Repair mojibake in MP3 ID3v2 text frames",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			if from == "" {
				from = a.cfg.Encoding.DefaultSource
			}
			if _, err := encoding.Lookup(from); err != nil {
				return &exitError{code: 1, msg: fmt.Sprintf("Unknown encoding: %s (supported: %s)", from, strings.Join(encoding.Names(), ", "))}
			}
			doApply := a.applyChanges(cmd, apply)
			logger := a.component("fix-encoding")

			files, err := a.collectAudio(cmd, args[0])
			if err != nil || len(files) == 0 {
				return err
			}
			files = onlyFormat(files, audio.FormatMP3)

			w := cmd.OutOrStdout()
			var fixed, clean, failed int
			for _, p := range files {
				if cmd.Context().Err() != nil {
					return a.interrupted(cmd, "Fixed %d files, skipped %d", fixed, clean)
				}
				t, err := audio.OpenMP3(p)
				if err != nil {
					failed++
					a.metrics.FileFailed("tags fix-encoding")
					logger.Warn().Err(err).Str("path", p).Msg("cannot open tag")
					continue
				}
				frames := t.TextFrames()
				suspects := encoding.DetectFields(frames, from)
				if len(suspects) == 0 {
					clean++
					_ = t.Close()
					continue
				}

				fmt.Fprintln(w, p)
				ids := make([]string, 0, len(suspects))
				for id := range suspects {
					ids = append(ids, id)
				}
				sort.Strings(ids)
				for _, id := range ids {
					repaired, ok := encoding.Resolve(suspects[id], from)
					if !ok {
						continue
					}
					fmt.Fprintf(w, "  %s: %s -> %s\n", id, frames[id], repaired)
					if doApply {
						t.SetTextFrame(id, repaired)
					}
				}
				if doApply {
					if err := t.Save(); err != nil {
						failed++
						a.metrics.FileFailed("tags fix-encoding")
						fmt.Fprintf(w, "  Error: %v\n", err)
						_ = t.Close()
						continue
					}
					a.metrics.Action("tags fix-encoding", "fix", 1)
				}
				_ = t.Close()
				fixed++
			}

			if doApply {
				fmt.Fprintf(w, "Fixed %d files, skipped %d\n", fixed, clean)
			} else {
				fmt.Fprintf(w, "Dry run: %d files would be fixed, %d already OK\n", fixed, clean)
			}
			if failed > 0 {
				fmt.Fprintf(w, "%d files could not be processed\n", failed)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&from, "from", "", "Legacy encoding the tags were written in (default from config)")
	cmd.Flags().BoolVar(&apply, "apply", false, "Write changes (default is a dry run)")
	return cmd
}

func newTagsStripV1Cmd(a *app) *cobra.Command {
	var opts id3v1.Options
	var apply bool
	cmd := &cobra.Command{
		Use:   "strip-v1 PATH",
		Short: "Remove ID3v1 trailers from MP3 files",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			if err := opts.Validate(); err != nil {
				return &exitError{code: 1, msg: "--migrate and --force cannot be used together"}
			}
			doApply := a.applyChanges(cmd, apply)

			files, err := a.collectAudio(cmd, args[0])
			if err != nil || len(files) == 0 {
				return err
			}
			files = onlyFormat(files, audio.FormatMP3)

			w := cmd.OutOrStdout()
			counts := make(map[id3v1.Action]int)
			var migrated, failed int
			for _, p := range files {
				if cmd.Context().Err() != nil {
					return a.interrupted(cmd, "Stripped %d files", counts[id3v1.ActionStrip]+counts[id3v1.ActionMigrateStrip]+counts[id3v1.ActionForceStrip])
				}
				action, err := id3v1.Plan(p, opts)
				if err != nil {
					failed++
					fmt.Fprintf(w, "%s: %v\n", p, err)
					continue
				}
				if action == id3v1.ActionSkipV1Only {
					fmt.Fprintf(w, "%s: only ID3v1 present, use --migrate or --force\n", p)
				}
				if action.Strips() {
					fmt.Fprintf(w, "%s: %s\n", p, action)
					if doApply {
						m, err := id3v1.Execute(p, action)
						if err != nil {
							failed++
							a.metrics.FileFailed("tags strip-v1")
							fmt.Fprintf(w, "  Error: %v\n", err)
							continue
						}
						if m {
							migrated++
						}
						a.metrics.Action("tags strip-v1", string(action), 1)
					}
				}
				counts[action]++
			}

			stripped := counts[id3v1.ActionStrip] + counts[id3v1.ActionMigrateStrip] + counts[id3v1.ActionForceStrip]
			if doApply {
				fmt.Fprintf(w, "Stripped ID3v1 from %d files (%d migrated to ID3v2)\n", stripped, migrated)
			} else {
				fmt.Fprintf(w, "Dry run: ID3v1 would be stripped from %d files\n", stripped)
			}
			if n := counts[id3v1.ActionSkipV1Only]; n > 0 {
				fmt.Fprintf(w, "%d files have only ID3v1 and were skipped\n", n)
			}
			if failed > 0 {
				fmt.Fprintf(w, "%d files failed\n", failed)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&opts.Migrate, "migrate", false, "Copy ID3v1-only fields to ID3v2 before stripping")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Strip ID3v1 even when no ID3v2 tag exists")
	cmd.Flags().BoolVar(&apply, "apply", false, "Write changes (default is a dry run)")
	return cmd
}

func newTagsNormalizeCmd(a *app) *cobra.Command {
	var apply bool
	cmd := &cobra.Command{
		Use:   "normalize PATH",
		Short: "Trim whitespace and normalize tag values",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			doApply := a.applyChanges(cmd, apply)
			files, err := a.collectAudio(cmd, args[0])
			if err != nil || len(files) == 0 {
				return err
			}

			w := cmd.OutOrStdout()
			var changed, skipped, failed int
			for _, p := range files {
				if cmd.Context().Err() != nil {
					return a.interrupted(cmd, "Normalized %d files", changed)
				}
				t, err := audio.Open(p)
				if err != nil {
					failed++
					continue
				}
				if !t.Format().Writable() {
					skipped++
					_ = t.Close()
					continue
				}
				res := normalize.Normalize(t.Fields())
				if !res.Changed() {
					_ = t.Close()
					continue
				}
				fmt.Fprintln(w, p)
				for _, c := range res.Changes {
					if c.After == "" {
						fmt.Fprintf(w, "  %s: %q removed\n", c.Key, c.Before)
					} else {
						fmt.Fprintf(w, "  %s: %q -> %q\n", c.Key, c.Before, c.After)
					}
				}
				if doApply {
					if err := writeNormalized(t, res); err != nil {
						failed++
						a.metrics.FileFailed("tags normalize")
						fmt.Fprintf(w, "  Error: %v\n", err)
						_ = t.Close()
						continue
					}
					a.metrics.Action("tags normalize", "normalize", 1)
				}
				_ = t.Close()
				changed++
			}

			if doApply {
				fmt.Fprintf(w, "Normalized %d files\n", changed)
			} else {
				fmt.Fprintf(w, "Dry run: %d files would be normalized\n", changed)
			}
			readOnlyNote(w, skipped)
			if failed > 0 {
				fmt.Fprintf(w, "%d files failed\n", failed)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "Write changes (default is a dry run)")
	return cmd
}

func writeNormalized(t audio.Tagger, res normalize.Result) error {
	touched := make(map[string]bool)
	for _, c := range res.Changes {
		touched[c.Key] = true
	}
	for _, key := range res.Removed {
		if _, err := t.Delete(key); err != nil {
			return err
		}
		delete(touched, key)
	}
	for key := range touched {
		if err := t.Set(key, res.Tags[key]); err != nil {
			return err
		}
	}
	return t.Save()
}

// filenameFields maps pattern fields onto tag fields.
var filenameFields = map[string]string{
	pattern.FieldTrack: audio.FieldTrack,
	pattern.FieldYear:  audio.FieldDate,
}

func newTagsFromFilenameCmd(a *app) *cobra.Command {
	var tpl string
	var overwrite, apply bool
	cmd := &cobra.Command{
		Use:   "from-filename PATH",
		Short: "Fill tags from file names using a pattern like \"{track}. {title}\"",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			p, err := pattern.Compile(tpl)
			if err != nil {
				return &exitError{code: 1, msg: fmt.Sprintf("Invalid pattern: %v", err)}
			}
			doApply := a.applyChanges(cmd, apply)
			files, err := a.collectAudio(cmd, args[0])
			if err != nil || len(files) == 0 {
				return err
			}

			w := cmd.OutOrStdout()
			var updated, unmatched, skipped, failed int
			for _, path := range files {
				if cmd.Context().Err() != nil {
					return a.interrupted(cmd, "Updated %d files", updated)
				}
				values := p.Parse(path)
				if values == nil {
					unmatched++
					a.logger.Debug().Str("path", path).Msg("file name does not match pattern")
					continue
				}
				t, err := audio.Open(path)
				if err != nil {
					failed++
					continue
				}
				if !t.Format().Writable() {
					skipped++
					_ = t.Close()
					continue
				}
				existing := t.Fields()
				changes := make(map[string]string)
				for field, v := range values {
					key := field
					if mapped, ok := filenameFields[field]; ok {
						key = mapped
					}
					if v == "" || (!overwrite && audio.First(existing, key) != "") {
						continue
					}
					changes[key] = v
				}
				if len(changes) == 0 {
					_ = t.Close()
					continue
				}
				fmt.Fprintln(w, filepath.Base(path))
				if err := setFields(w, t, changes, doApply); err != nil {
					failed++
					a.metrics.FileFailed("tags from-filename")
					fmt.Fprintf(w, "  Error: %v\n", err)
					_ = t.Close()
					continue
				}
				_ = t.Close()
				updated++
				if doApply {
					a.metrics.Action("tags from-filename", "set", 1)
				}
			}

			if doApply {
				fmt.Fprintf(w, "Updated %d files\n", updated)
			} else {
				fmt.Fprintf(w, "Dry run: %d files would be updated\n", updated)
			}
			if unmatched > 0 {
				fmt.Fprintf(w, "%d files did not match the pattern\n", unmatched)
			}
			readOnlyNote(w, skipped)
			if failed > 0 {
				fmt.Fprintf(w, "%d files failed\n", failed)
			}
			return nil
		}),
	}
	cmd.Flags().StringVarP(&tpl, "pattern", "p", "", "File name pattern, e.g. \"{artist} - {title}\"")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing values")
	cmd.Flags().BoolVar(&apply, "apply", false, "Write changes (default is a dry run)")
	_ = cmd.MarkFlagRequired("pattern")
	return cmd
}

func readOnlyNote(w io.Writer, n int) {
	if n > 0 {
		fmt.Fprintf(w, "%d %s skipped (read-only format)\n", n, plural(n, "file", "files"))
	}
}

// setFields prints the changes in key order and writes them when apply is set.
func setFields(w io.Writer, t audio.Tagger, changes map[string]string, apply bool) error {
	keys := make([]string, 0, len(changes))
	for k := range changes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %s\n", k, changes[k])
		if apply {
			if err := t.Set(k, []string{changes[k]}); err != nil {
				return err
			}
		}
	}
	if apply {
		return t.Save()
	}
	return nil
}

func newTagsSetCmd(a *app) *cobra.Command {
	named := make(map[string]*string)
	var extra []string
	var overwrite, apply bool
	cmd := &cobra.Command{
		Use:   "set PATH",
		Short: "Set tag values on audio files",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			want := make(map[string]string)
			for field, v := range named {
				if *v != "" {
					want[field] = *v
				}
			}
			for _, kv := range extra {
				key, value, ok := strings.Cut(kv, "=")
				if !ok || strings.TrimSpace(key) == "" {
					return &exitError{code: 1, msg: fmt.Sprintf("Invalid --tag %q: expected key=value", kv)}
				}
				if field, ok := audio.CanonicalField(key); ok {
					key = field
				}
				want[key] = value
			}
			if len(want) == 0 {
				return &exitError{code: 1, msg: "No tags specified"}
			}
			doApply := a.applyChanges(cmd, apply)

			files, err := a.collectAudio(cmd, args[0])
			if err != nil || len(files) == 0 {
				return err
			}

			w := cmd.OutOrStdout()
			var updated, skipped, failed int
			for _, p := range files {
				if cmd.Context().Err() != nil {
					return a.interrupted(cmd, "Set tags in %d files", updated)
				}
				t, err := audio.Open(p)
				if err != nil {
					failed++
					continue
				}
				if !t.Format().Writable() {
					skipped++
					_ = t.Close()
					continue
				}
				existing := t.Fields()
				changes := make(map[string]string)
				for k, v := range want {
					if overwrite || audio.First(existing, k) == "" {
						changes[k] = v
					}
				}
				if len(changes) == 0 {
					_ = t.Close()
					continue
				}
				fmt.Fprintln(w, p)
				if err := setFields(w, t, changes, doApply); err != nil {
					failed++
					a.metrics.FileFailed("tags set")
					fmt.Fprintf(w, "  Error: %v\n", err)
					_ = t.Close()
					continue
				}
				_ = t.Close()
				updated++
				if doApply {
					a.metrics.Action("tags set", "set", 1)
				}
			}

			if doApply {
				fmt.Fprintf(w, "Set tags in %d files\n", updated)
			} else {
				fmt.Fprintf(w, "Dry run: would set tags in %d files\n", updated)
			}
			readOnlyNote(w, skipped)
			if failed > 0 {
				fmt.Fprintf(w, "%d files failed\n", failed)
			}
			return nil
		}),
	}
	for _, field := range []string{audio.FieldArtist, audio.FieldAlbum, audio.FieldTitle, audio.FieldAlbumArtist, audio.FieldGenre, audio.FieldComposer} {
		named[field] = cmd.Flags().String(field, "", "Set "+field)
	}
	named[audio.FieldDate] = cmd.Flags().String("year", "", "Set date")
	named[audio.FieldTrack] = cmd.Flags().String("track", "", "Set tracknumber")
	cmd.Flags().StringArrayVar(&extra, "tag", nil, "Set any tag as key=value (repeatable)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing values")
	cmd.Flags().BoolVar(&apply, "apply", false, "Write changes (default is a dry run)")
	return cmd
}

func newTagsClearCmd(a *app) *cobra.Command {
	var keys []string
	var apply bool
	cmd := &cobra.Command{
		Use:   "clear PATH",
		Short: "Remove tags from audio files",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			if len(keys) == 0 {
				return &exitError{code: 1, msg: "No tags specified"}
			}
			fields := make([]string, 0, len(keys))
			for _, k := range keys {
				if f, ok := audio.CanonicalField(k); ok {
					k = f
				}
				fields = append(fields, k)
			}
			doApply := a.applyChanges(cmd, apply)

			files, err := a.collectAudio(cmd, args[0])
			if err != nil || len(files) == 0 {
				return err
			}

			w := cmd.OutOrStdout()
			var cleared, untouched, skipped, failed int
			for _, p := range files {
				if cmd.Context().Err() != nil {
					return a.interrupted(cmd, "Cleared tags from %d files", cleared)
				}
				n, err := clearFields(p, fields, doApply)
				switch {
				case errors.Is(err, audio.ErrReadOnly):
					skipped++
				case err != nil:
					failed++
					a.metrics.FileFailed("tags clear")
					fmt.Fprintf(w, "%s: %v\n", p, err)
				case n == 0:
					untouched++
				default:
					cleared++
					fmt.Fprintf(w, "%s: %d %s\n", p, n, plural(n, "tag", "tags"))
					if doApply {
						a.metrics.Action("tags clear", "clear", n)
					}
				}
			}

			if doApply {
				fmt.Fprintf(w, "Cleared tags from %d files\n", cleared)
			} else {
				fmt.Fprintf(w, "Dry run: would clear tags from %d files\n", cleared)
			}
			if untouched > 0 {
				fmt.Fprintf(w, "%d files had none of the specified tags\n", untouched)
			}
			readOnlyNote(w, skipped)
			if failed > 0 {
				fmt.Fprintf(w, "%d files failed\n", failed)
			}
			return nil
		}),
	}
	cmd.Flags().StringArrayVar(&keys, "tag", nil, "Tag to remove (repeatable): "+strings.Join(audio.CanonicalFields(), ", "))
	cmd.Flags().BoolVar(&apply, "apply", false, "Write changes (default is a dry run)")
	return cmd
}

// clearFields counts the fields present and deletes them when apply is set.
// Files that cannot be written return audio.ErrReadOnly in both modes.
func clearFields(path string, fields []string, apply bool) (int, error) {
	tg, err := audio.Open(path)
	if err != nil {
		return 0, err
	}
	defer tg.Close()
	if !tg.Format().Writable() {
		return 0, audio.ErrReadOnly
	}

	existing := tg.Fields()
	n := 0
	for _, f := range fields {
		if len(existing[f]) == 0 {
			continue
		}
		n++
		if !apply {
			continue
		}
		if _, err := tg.Delete(f); err != nil {
			return 0, fmt.Errorf("delete %s: %w", f, err)
		}
	}
	if apply && n > 0 {
		return n, tg.Save()
	}
	return n, nil
}
