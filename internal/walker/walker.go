/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package walker enumerates audio files under a root path.
package walker

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/friendsincode/musictl/internal/audio"
)

// ErrNotFound is returned when the root does not exist.
var ErrNotFound = errors.New("path not found")

// Options controls a walk.
type Options struct {
	Recursive bool
	// Match selects files by path. Nil selects supported audio files.
	Match func(path string) bool
}

// IsAudio accepts supported audio files, skipping AppleDouble "._"
// companions that share the extension.
func IsAudio(path string) bool {
	return !strings.HasPrefix(filepath.Base(path), "._") && audio.IsSupported(path)
}

// Walk returns the matching files under root in lexicographic order. A
// root that is itself a matching file yields just that file.
func Walk(ctx context.Context, root string, opts Options) ([]string, error) {
	accept := opts.Match
	if accept == nil {
		accept = IsAudio
	}

	st, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !st.IsDir() {
		if accept(root) {
			return []string{root}, nil
		}
		return nil, nil
	}

	var files []string
	if !opts.Recursive {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				return files, err
			}
			p := filepath.Join(root, e.Name())
			if e.Type().IsRegular() && accept(p) {
				files = append(files, p)
			}
		}
		sort.Strings(files)
		return files, nil
	}

	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			// Unreadable subtrees are skipped rather than failing the walk.
			if d != nil && d.IsDir() && p != root {
				return fs.SkipDir
			}
			return err
		}
		if d.Type().IsRegular() && accept(p) {
			files = append(files, p)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}
