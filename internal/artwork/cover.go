/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package artwork

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Cover file stems in priority order.
var coverNames = []string{"cover", "front", "folder", "album"}

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// Subdirectories that commonly hold scans and covers.
var artSubdirs = []string{"Artwork", "Scans", "Covers", "Art"}

// FindCoverImage locates the cover image for an album directory. It looks
// in dir, then in the usual art subfolders, then in the parent directory
// (for multi-disc layouts). It returns "" when nothing suitable exists.
func FindCoverImage(dir string) string {
	if p := namedCover(dir); p != "" {
		return p
	}
	for _, sub := range artSubdirs {
		subdir, ok := findDirFold(dir, sub)
		if !ok {
			continue
		}
		if p := namedCover(subdir); p != "" {
			return p
		}
	}
	if parent := filepath.Dir(dir); parent != dir {
		if p := namedCover(parent); p != "" {
			return p
		}
	}

	// A single unnamed image is taken as the cover; several are ambiguous.
	images := listImages(dir)
	if len(images) == 1 {
		return images[0]
	}
	return ""
}

func namedCover(dir string) string {
	images := listImages(dir)
	for _, stem := range coverNames {
		for _, img := range images {
			base := filepath.Base(img)
			if strings.EqualFold(strings.TrimSuffix(base, filepath.Ext(base)), stem) {
				return img
			}
		}
	}
	return ""
}

func listImages(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), "._") {
			continue
		}
		if imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out
}

func findDirFold(parent, name string) (string, bool) {
	entries, err := os.ReadDir(parent)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if e.IsDir() && strings.EqualFold(e.Name(), name) {
			return filepath.Join(parent, e.Name()), true
		}
	}
	return "", false
}
