/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/friendsincode/musictl/internal/artwork"
	"github.com/friendsincode/musictl/internal/audio"
	"github.com/friendsincode/musictl/internal/library"
)

func newArtCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "art",
		Short: "Inspect and manage embedded cover art",
	}
	cmd.AddCommand(
		newArtShowCmd(a),
		newArtEmbedCmd(a),
		newArtExtractCmd(a),
		newArtRemoveCmd(a),
		newArtFromFolderCmd(a),
	)
	return cmd
}

func newArtShowCmd(a *app) *cobra.Command {
	var summary bool
	cmd := &cobra.Command{
		Use:   "show PATH",
		Short: "List embedded pictures",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			files, err := a.collectAudio(cmd, args[0])
			if err != nil || len(files) == 0 {
				return err
			}
			w := cmd.OutOrStdout()
			var with, without, failed int
			for i, p := range files {
				if cmd.Context().Err() != nil {
					return a.interrupted(cmd, "Checked %d of %d files: %d with artwork", i, len(files), with)
				}
				t, err := audio.Open(p)
				if err != nil {
					failed++
					a.metrics.FileFailed("art show")
					continue
				}
				pics := t.Pictures()
				_ = t.Close()
				a.metrics.FileProcessed("art show")
				if len(pics) == 0 {
					without++
					if !summary {
						fmt.Fprintf(w, "%s: no artwork\n", rel(args[0], p))
					}
					continue
				}
				with++
				if summary {
					continue
				}
				fmt.Fprintf(w, "%s\n", rel(args[0], p))
				for _, pic := range pics {
					r := artwork.RecordOf(pic)
					fmt.Fprintf(w, "  %s  %s  %s  %s\n", r.Type, r.MIME, r.Dimensions(), library.HumanSize(int64(r.Size)))
				}
			}
			fmt.Fprintf(w, "%d files with artwork, %d without\n", with, without)
			if failed > 0 {
				fmt.Fprintf(w, "%d files could not be read\n", failed)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&summary, "summary", false, "Only print the totals")
	return cmd
}

// embedOutcome totals an embed run.
type embedOutcome struct {
	embedded, skipped, failed int
}

// embed writes one cover into one file. Files that already have artwork
// are skipped unless overwrite is set.
func (a *app) embed(cmd *cobra.Command, command, path string, data []byte, mime string, overwrite, apply bool, out *embedOutcome) {
	t, err := audio.Open(path)
	if err != nil {
		out.failed++
		a.metrics.FileFailed(command)
		return
	}
	defer t.Close()
	if !t.Format().Writable() {
		out.skipped++
		return
	}
	if len(t.Pictures()) > 0 && !overwrite {
		out.skipped++
		return
	}
	out.embedded++
	if !apply {
		return
	}
	err = t.EmbedCover(data, mime, overwrite)
	if err == nil {
		err = t.Save()
	}
	if err != nil {
		out.embedded--
		out.failed++
		a.metrics.FileFailed(command)
		fmt.Fprintf(cmd.OutOrStdout(), "Failed to embed in %s: %v\n", path, err)
		return
	}
	a.metrics.Action(command, "embed", 1)
}

func readImage(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	mime, _, _ := artwork.DetectImage(data)
	if mime == artwork.MIMEUnknown {
		return nil, "", fmt.Errorf("%s is not a JPEG or PNG image", path)
	}
	return data, mime, nil
}

func newArtEmbedCmd(a *app) *cobra.Command {
	var image string
	var overwrite, apply bool
	cmd := &cobra.Command{
		Use:   "embed PATH",
		Short: "Embed an image as the front cover",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			data, mime, err := readImage(image)
			if err != nil {
				return &exitError{code: 1, msg: err.Error()}
			}
			doApply := a.applyChanges(cmd, apply)
			files, err := a.collectAudio(cmd, args[0])
			if err != nil || len(files) == 0 {
				return err
			}
			var out embedOutcome
			for _, p := range files {
				if cmd.Context().Err() != nil {
					return a.interrupted(cmd, "Embedded in %d files", out.embedded)
				}
				a.embed(cmd, "art embed", p, data, mime, overwrite, doApply, &out)
			}
			printEmbed(cmd, out, doApply)
			return nil
		}),
	}
	cmd.Flags().StringVar(&image, "image", "", "JPEG or PNG file to embed")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing artwork")
	cmd.Flags().BoolVar(&apply, "apply", false, "Write changes (default is a dry run)")
	_ = cmd.MarkFlagRequired("image")
	return cmd
}

func printEmbed(cmd *cobra.Command, out embedOutcome, apply bool) {
	w := cmd.OutOrStdout()
	if apply {
		fmt.Fprintf(w, "Embedded in %d files\n", out.embedded)
	} else {
		fmt.Fprintf(w, "Would embed in %d files\n", out.embedded)
	}
	if out.skipped > 0 {
		fmt.Fprintf(w, "%d files skipped (existing artwork or read-only format)\n", out.skipped)
	}
	if out.failed > 0 {
		fmt.Fprintf(w, "%d files failed\n", out.failed)
	}
}

// byDir groups file paths by parent directory, sorted.
func byDir(files []string) ([]string, map[string][]string) {
	groups := make(map[string][]string)
	for _, f := range files {
		d := filepath.Dir(f)
		groups[d] = append(groups[d], f)
	}
	dirs := make([]string, 0, len(groups))
	for d := range groups {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs, groups
}

func newArtExtractCmd(a *app) *cobra.Command {
	var dest string
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "extract PATH",
		Short: "Write the embedded cover of each album folder to a file",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			files, err := a.collectAudio(cmd, args[0])
			if err != nil || len(files) == 0 {
				return err
			}
			root := args[0]
			if st, err := os.Stat(root); err == nil && !st.IsDir() {
				root = filepath.Dir(root)
			}

			w := cmd.OutOrStdout()
			dirs, groups := byDir(files)
			var extracted, present, none int
			for _, dir := range dirs {
				if cmd.Context().Err() != nil {
					return a.interrupted(cmd, "Extracted %d covers", extracted)
				}
				pic, ok := firstPicture(groups[dir])
				if !ok {
					none++
					continue
				}
				outDir := dir
				if dest != "" {
					sub, err := filepath.Rel(root, dir)
					if err != nil || strings.HasPrefix(sub, "..") {
						sub = filepath.Base(dir)
					}
					outDir = filepath.Join(dest, sub)
				}
				target := filepath.Join(outDir, artwork.ExtractName(pic.MIME))
				if _, err := os.Stat(target); err == nil && !overwrite {
					present++
					continue
				}
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return fmt.Errorf("create %s: %w", outDir, err)
				}
				if err := os.WriteFile(target, pic.Data, 0o644); err != nil {
					fmt.Fprintf(w, "Failed to write %s: %v\n", target, err)
					continue
				}
				extracted++
				fmt.Fprintf(w, "%s\n", target)
			}
			a.metrics.Action("art extract", "extract", extracted)
			fmt.Fprintf(w, "Extracted %d covers\n", extracted)
			if present > 0 {
				fmt.Fprintf(w, "%d already exist (use --overwrite)\n", present)
			}
			if none > 0 {
				fmt.Fprintf(w, "%d directories have no embedded artwork\n", none)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&dest, "dest", "", "Write covers under this directory instead of next to the audio")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing cover files")
	return cmd
}

// firstPicture returns the front cover of the first file that has one,
// falling back to any picture.
func firstPicture(files []string) (artwork.Picture, bool) {
	var fallback *artwork.Picture
	for _, f := range files {
		t, err := audio.Open(f)
		if err != nil {
			continue
		}
		pics := t.Pictures()
		_ = t.Close()
		for i := range pics {
			if pics[i].Type == artwork.TypeFrontCover {
				return pics[i], true
			}
			if fallback == nil {
				fallback = &pics[i]
			}
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return artwork.Picture{}, false
}

func newArtRemoveCmd(a *app) *cobra.Command {
	var apply bool
	cmd := &cobra.Command{
		Use:   "remove PATH",
		Short: "Remove embedded pictures",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			doApply := a.applyChanges(cmd, apply)
			files, err := a.collectAudio(cmd, args[0])
			if err != nil || len(files) == 0 {
				return err
			}
			w := cmd.OutOrStdout()
			var changed, pictures, skipped, failed int
			for _, p := range files {
				if cmd.Context().Err() != nil {
					return a.interrupted(cmd, "Removed artwork from %d files", changed)
				}
				n, err := removePictures(p, doApply)
				if errors.Is(err, audio.ErrReadOnly) {
					skipped++
					continue
				}
				if err != nil {
					failed++
					a.metrics.FileFailed("art remove")
					fmt.Fprintf(w, "%s: %v\n", p, err)
					continue
				}
				if n > 0 {
					changed++
					pictures += n
					if doApply {
						a.metrics.Action("art remove", "remove", n)
					}
				}
			}
			if doApply {
				fmt.Fprintf(w, "Removed %d pictures from %d files\n", pictures, changed)
			} else {
				fmt.Fprintf(w, "Dry run: %d pictures would be removed from %d files\n", pictures, changed)
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

func removePictures(path string, apply bool) (int, error) {
	t, err := audio.Open(path)
	if err != nil {
		return 0, err
	}
	defer t.Close()
	if !t.Format().Writable() {
		return 0, audio.ErrReadOnly
	}
	n := len(t.Pictures())
	if n == 0 || !apply {
		return n, nil
	}
	if _, err := t.RemovePictures(); err != nil {
		return 0, err
	}
	return n, t.Save()
}

func newArtFromFolderCmd(a *app) *cobra.Command {
	var overwrite, apply bool
	cmd := &cobra.Command{
		Use:   "from-folder PATH",
		Short: "Embed cover.jpg, folder.jpg and similar images found next to the audio",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			doApply := a.applyChanges(cmd, apply)
			files, err := a.collectAudio(cmd, args[0])
			if err != nil || len(files) == 0 {
				return err
			}

			w := cmd.OutOrStdout()
			dirs, groups := byDir(files)
			var out embedOutcome
			noCover := 0
			for _, dir := range dirs {
				if cmd.Context().Err() != nil {
					return a.interrupted(cmd, "Embedded in %d files", out.embedded)
				}
				image := artwork.FindCoverImage(dir)
				if image == "" {
					noCover++
					a.logger.Debug().Str("dir", dir).Msg("no cover image")
					continue
				}
				data, mime, err := readImage(image)
				if err != nil {
					noCover++
					fmt.Fprintf(w, "%s: %v\n", dir, err)
					continue
				}
				fmt.Fprintf(w, "%s <- %s\n", rel(args[0], dir), filepath.Base(image))
				for _, p := range groups[dir] {
					if cmd.Context().Err() != nil {
						return a.interrupted(cmd, "Embedded in %d files", out.embedded)
					}
					a.embed(cmd, "art from-folder", p, data, mime, overwrite, doApply, &out)
				}
			}
			printEmbed(cmd, out, doApply)
			if noCover > 0 {
				fmt.Fprintf(w, "%d directories have no cover image\n", noCover)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing artwork")
	cmd.Flags().BoolVar(&apply, "apply", false, "Write changes (default is a dry run)")
	return cmd
}
