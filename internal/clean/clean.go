/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package clean finds and removes operating-system junk files.
package clean

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/friendsincode/musictl/internal/walker"
)

// Patterns are matched against file names in this order.
var Patterns = []string{
	"._*",
	".DS_Store",
	"Thumbs.db",
	"desktop.ini",
	".directory",
	"*.tmp",
	"*.bak",
	".AppleDouble",
	".Spotlight-V100",
	".Trashes",
}

// Match is a junk file and the pattern that selected it.
type Match struct {
	Path    string
	Pattern string
	Size    int64
}

// MatchName returns the first pattern matching a file name.
func MatchName(name string) (string, bool) {
	for _, p := range Patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return p, true
		}
	}
	return "", false
}

// Find lists junk files under root. Directories are never matched.
func Find(ctx context.Context, root string, recursive bool) ([]Match, error) {
	paths, err := walker.Walk(ctx, root, walker.Options{
		Recursive: recursive,
		Match:     isJunk,
	})
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(paths))
	for _, p := range paths {
		pattern, _ := MatchName(filepath.Base(p))
		m := Match{Path: p, Pattern: pattern}
		if st, err := os.Stat(p); err == nil {
			m.Size = st.Size()
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func isJunk(path string) bool {
	_, ok := MatchName(filepath.Base(path))
	return ok
}

// Group summarizes matches for one pattern.
type Group struct {
	Pattern string
	Files   []Match
	Size    int64
}

// GroupByPattern groups matches, sorted by pattern.
func GroupByPattern(matches []Match) []Group {
	idx := map[string]int{}
	var groups []Group
	for _, m := range matches {
		i, ok := idx[m.Pattern]
		if !ok {
			i = len(groups)
			idx[m.Pattern] = i
			groups = append(groups, Group{Pattern: m.Pattern})
		}
		groups[i].Files = append(groups[i].Files, m)
		groups[i].Size += m.Size
	}
	sort.Slice(groups, func(a, b int) bool { return groups[a].Pattern < groups[b].Pattern })
	return groups
}

// TotalSize sums the sizes of matches.
func TotalSize(matches []Match) int64 {
	var n int64
	for _, m := range matches {
		n += m.Size
	}
	return n
}

// Failure records a file that could not be removed.
type Failure struct {
	Path string
	Err  error
}

// Outcome of Remove.
type Outcome struct {
	Deleted []Match
	Failed  []Failure
}

// Remove deletes each match, continuing past failures. It stops early
// and returns ctx.Err() when the context is cancelled.
func Remove(ctx context.Context, matches []Match) (Outcome, error) {
	var out Outcome
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if err := os.Remove(m.Path); err != nil {
			out.Failed = append(out.Failed, Failure{Path: m.Path, Err: err})
			continue
		}
		out.Deleted = append(out.Deleted, m)
	}
	return out, nil
}
