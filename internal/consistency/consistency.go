/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package consistency checks that the files of one album directory agree
// on their album-level tags and track numbering.
package consistency

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	edlib "github.com/hbollon/go-edlib"

	"github.com/friendsincode/musictl/internal/audio"
)

// SimilarAlbumThreshold is the Jaro-Winkler similarity above which two
// differing album names are reported as probable typos of each other.
const SimilarAlbumThreshold = 0.9

// maxListedGaps is the largest gap count whose numbers are listed one by one.
const maxListedGaps = 5

var essentialFields = []string{audio.FieldTitle, audio.FieldArtist, audio.FieldAlbum}

// Report holds the findings for one directory.
type Report struct {
	Dir    string
	Files  int
	Issues []string
	// Hints are advisory notes attached to issues.
	Hints []string
	// Unreadable counts files skipped because their tags could not be read.
	Unreadable int
}

// HasIssues reports whether any check failed.
func (r Report) HasIssues() bool { return len(r.Issues) > 0 }

// Check runs every rule over the files of one directory. A directory with
// fewer than two readable files never has issues.
func Check(dir string, files []audio.Metadata) Report {
	r := Report{Dir: dir, Files: len(files)}

	var valid []audio.Metadata
	for _, md := range files {
		if !md.OK() {
			r.Unreadable++
			continue
		}
		valid = append(valid, md)
	}
	if len(valid) < 2 {
		return r
	}

	albums := distinct(valid, audio.FieldAlbum)
	if len(albums) > 1 {
		r.Issues = append(r.Issues, "Mismatched album: "+quoteJoin(albums))
		r.Hints = append(r.Hints, similarPairs(albums)...)
	}

	if carries(valid, audio.FieldAlbumArtist) {
		if aa := distinct(valid, audio.FieldAlbumArtist); len(aa) > 1 {
			r.Issues = append(r.Issues, "Mismatched album artist: "+quoteJoin(aa))
		}
	}

	counts := map[int]int{}
	missingTrack := 0
	for _, md := range valid {
		n, parsed := TrackNumber(md.Tag(audio.FieldTrack))
		if !parsed {
			missingTrack++
			continue
		}
		counts[n]++
	}
	if missingTrack > 0 {
		r.Issues = append(r.Issues, fmt.Sprintf("Missing track number: %d files", missingTrack))
	}

	numbers := make([]int, 0, len(counts))
	for n := range counts {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	var dups []string
	for _, n := range numbers {
		if counts[n] > 1 {
			dups = append(dups, fmt.Sprintf("#%d (%dx)", n, counts[n]))
		}
	}
	if len(dups) > 0 {
		r.Issues = append(r.Issues, "Duplicate tracks: "+strings.Join(dups, ", "))
	}

	if len(numbers) > 0 {
		var gaps []int
		for n := numbers[0]; n <= numbers[len(numbers)-1]; n++ {
			if counts[n] == 0 {
				gaps = append(gaps, n)
			}
		}
		switch {
		case len(gaps) == 0:
		case len(gaps) <= maxListedGaps:
			parts := make([]string, len(gaps))
			for i, g := range gaps {
				parts[i] = strconv.Itoa(g)
			}
			r.Issues = append(r.Issues, "Track gaps: "+strings.Join(parts, ", "))
		default:
			r.Issues = append(r.Issues, fmt.Sprintf("Track gaps: %d missing", len(gaps)))
		}
	}

	missingEssential := 0
	for _, md := range valid {
		for _, f := range essentialFields {
			if strings.TrimSpace(md.Tag(f)) == "" {
				missingEssential++
				break
			}
		}
	}
	if missingEssential > 0 {
		r.Issues = append(r.Issues, fmt.Sprintf("Missing essential tags: %d files", missingEssential))
	}

	return r
}

// CheckTree groups files by parent directory and checks each group.
// Reports are sorted by directory.
func CheckTree(files []audio.Metadata) []Report {
	byDir := map[string][]audio.Metadata{}
	for _, md := range files {
		dir := filepath.Dir(md.Path)
		byDir[dir] = append(byDir[dir], md)
	}
	dirs := make([]string, 0, len(byDir))
	for d := range byDir {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	reports := make([]Report, 0, len(dirs))
	for _, d := range dirs {
		reports = append(reports, Check(d, byDir[d]))
	}
	return reports
}

// TrackNumber parses "N" or "N/total".
func TrackNumber(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '/'); i >= 0 {
		raw = strings.TrimSpace(raw[:i])
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func distinct(files []audio.Metadata, field string) []string {
	seen := map[string]bool{}
	var out []string
	for _, md := range files {
		v := strings.TrimSpace(md.Tag(field))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func carries(files []audio.Metadata, field string) bool {
	for _, md := range files {
		if _, ok := md.Tags[field]; ok {
			return true
		}
	}
	return false
}

func quoteJoin(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return strings.Join(quoted, ", ")
}

func similarPairs(values []string) []string {
	var hints []string
	for i := 0; i < len(values); i++ {
		for j := i + 1; j < len(values); j++ {
			sim, err := edlib.StringsSimilarity(strings.ToLower(values[i]), strings.ToLower(values[j]), edlib.JaroWinkler)
			if err != nil || sim < SimilarAlbumThreshold {
				continue
			}
			hints = append(hints, fmt.Sprintf("Album names differ only slightly: '%s' ~ '%s'", values[i], values[j]))
		}
	}
	return hints
}
