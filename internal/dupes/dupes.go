/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package dupes finds byte-identical and metadata-equivalent audio files.
package dupes

import (
	"context"
	"errors"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/friendsincode/musictl/internal/audio"
)

// ErrFuzzyApply is returned when a deletion plan is requested for groups
// found by metadata matching.
var ErrFuzzyApply = errors.New("--apply is not supported for fuzzy duplicates")

// Status marks a group member as retained or redundant.
type Status string

const (
	StatusKeep      Status = "keep"
	StatusDuplicate Status = "duplicate"
)

// Member is one file of a group.
type Member struct {
	Path       string
	Size       int64
	Status     Status
	Format     audio.Format
	SampleRate int
	BitDepth   int
}

// Group is a set of files judged to be the same recording. Members[0] is
// the one to keep.
type Group struct {
	Members []Member
	// Advisory groups come from metadata matching and are never deleted
	// automatically.
	Advisory bool
	// Set for advisory groups.
	Artist   string
	Title    string
	Duration int
}

// Keep returns the retained member.
func (g Group) Keep() Member { return g.Members[0] }

// Duplicates returns every member but the retained one.
func (g Group) Duplicates() []Member { return g.Members[1:] }

// Wasted is the space the duplicates occupy.
func (g Group) Wasted() int64 {
	var n int64
	for _, m := range g.Duplicates() {
		n += m.Size
	}
	return n
}

// FileError records a file that could not be hashed.
type FileError struct {
	Path string
	Err  error
}

// ExactResult is the outcome of FindExact.
type ExactResult struct {
	Groups []Group
	Errors []FileError
	// Candidates is the number of files that survived the quick-hash phase.
	Candidates int
}

// Summary totals for a set of groups.
type Summary struct {
	Groups     int
	Duplicates int
	Wasted     int64
}

// Summarize totals groups.
func Summarize(groups []Group) Summary {
	s := Summary{Groups: len(groups)}
	for _, g := range groups {
		s.Duplicates += len(g.Members) - 1
		s.Wasted += g.Wasted()
	}
	return s
}

// FindExact groups byte-identical files. A cheap quick hash partitions
// paths first; only files sharing a quick hash are fully hashed. Hash
// failures are recorded and skipped. On cancellation the groups found so
// far are returned together with ctx.Err().
func FindExact(ctx context.Context, paths []string, h Hasher) (ExactResult, error) {
	var res ExactResult

	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	quick := map[string][]string{}
	var order []string
	for _, p := range sorted {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		sum, err := h.QuickHash(p)
		if err != nil {
			res.Errors = append(res.Errors, FileError{Path: p, Err: err})
			continue
		}
		if _, seen := quick[sum]; !seen {
			order = append(order, sum)
		}
		quick[sum] = append(quick[sum], p)
	}

	full := map[string][]string{}
	for _, q := range order {
		bucket := quick[q]
		if len(bucket) < 2 {
			continue
		}
		res.Candidates += len(bucket)
		for _, p := range bucket {
			if err := ctx.Err(); err != nil {
				res.Groups = buildExactGroups(full)
				return res, err
			}
			sum, err := h.FullHash(p)
			if err != nil {
				res.Errors = append(res.Errors, FileError{Path: p, Err: err})
				continue
			}
			full[sum] = append(full[sum], p)
		}
	}
	res.Groups = buildExactGroups(full)
	return res, nil
}

func buildExactGroups(full map[string][]string) []Group {
	var groups []Group
	for _, files := range full {
		if len(files) < 2 {
			continue
		}
		sort.Strings(files)
		g := Group{}
		for i, p := range files {
			m := Member{Path: p, Status: StatusDuplicate}
			if i == 0 {
				m.Status = StatusKeep
			}
			if st, err := os.Stat(p); err == nil {
				m.Size = st.Size()
			}
			m.Format, _ = audio.FormatOf(p)
			g.Members = append(g.Members, m)
		}
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Keep().Path < groups[j].Keep().Path
	})
	return groups
}

type fuzzyKey struct {
	artist   string
	title    string
	duration int
}

// FuzzyResult is the outcome of FindFuzzy.
type FuzzyResult struct {
	Groups []Group
	// Skipped counts files without a readable artist and title.
	Skipped int
}

// FindFuzzy groups files whose artist, title and rounded duration agree,
// ignoring case and surrounding whitespace. Within a group the highest
// sample rate is kept, ties going to the lexicographically first path.
func FindFuzzy(ctx context.Context, files []audio.Metadata) (FuzzyResult, error) {
	var res FuzzyResult
	buckets := map[fuzzyKey][]audio.Metadata{}
	for _, md := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if !md.OK() {
			res.Skipped++
			continue
		}
		artist := strings.ToLower(strings.TrimSpace(md.Tag(audio.FieldArtist)))
		title := strings.ToLower(strings.TrimSpace(md.Tag(audio.FieldTitle)))
		if artist == "" || title == "" {
			res.Skipped++
			continue
		}
		k := fuzzyKey{artist: artist, title: title, duration: int(math.RoundToEven(md.Duration))}
		buckets[k] = append(buckets[k], md)
	}

	keys := make([]fuzzyKey, 0, len(buckets))
	for k, v := range buckets {
		if len(v) > 1 {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.artist != b.artist {
			return a.artist < b.artist
		}
		if a.title != b.title {
			return a.title < b.title
		}
		return a.duration < b.duration
	})

	for _, k := range keys {
		mds := buckets[k]
		sort.SliceStable(mds, func(i, j int) bool {
			if mds[i].SampleRate != mds[j].SampleRate {
				return mds[i].SampleRate > mds[j].SampleRate
			}
			return mds[i].Path < mds[j].Path
		})
		g := Group{Advisory: true, Artist: k.artist, Title: k.title, Duration: k.duration}
		for i, md := range mds {
			m := Member{
				Path:       md.Path,
				Size:       md.Size,
				Status:     StatusDuplicate,
				Format:     md.Format,
				SampleRate: md.SampleRate,
				BitDepth:   md.BitDepth,
			}
			if i == 0 {
				m.Status = StatusKeep
			}
			g.Members = append(g.Members, m)
		}
		res.Groups = append(res.Groups, g)
	}
	return res, nil
}
