/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/friendsincode/musictl/internal/audio"
	"github.com/friendsincode/musictl/internal/dupes"
	"github.com/friendsincode/musictl/internal/encoding"
	"github.com/friendsincode/musictl/internal/library"
)

func seconds(d float64) string { return strconv.FormatFloat(d, 'f', 2, 64) }

// LibraryReport exports library statistics.
type LibraryReport struct {
	Stats *library.Stats
}

func (r LibraryReport) Kind() string { return "library" }
func (r LibraryReport) Path() string { return r.Stats.ScanPath }
func (r LibraryReport) Empty() bool  { return r.Stats.Total == 0 }

func (r LibraryReport) Rows() [][]string {
	s := r.Stats
	rows := [][]string{
		{"Library Statistics"},
		{"Scan Path", s.ScanPath},
		{"Total Files", strconv.Itoa(s.Total)},
		{"Total Duration (seconds)", seconds(s.TotalDuration)},
		{"Total Size (bytes)", strconv.FormatInt(s.TotalSize, 10)},
		{"Files with ID3v1", strconv.Itoa(s.ID3v1)},
		{"Files with Errors", strconv.Itoa(s.Errors)},
		{},
		{"Format", "Files", "Duration (seconds)", "Size (bytes)", "Percentage"},
	}
	for _, f := range s.Formats() {
		rows = append(rows, []string{
			string(f.Format),
			strconv.Itoa(f.Files),
			seconds(f.Duration),
			strconv.FormatInt(f.Size, 10),
			fmt.Sprintf("%.1f", s.Percent(f.Files)),
		})
	}
	rows = append(rows, []string{}, []string{"Sample Rate (Hz)", "Files", "Percentage"})
	for _, b := range s.SampleRates() {
		rows = append(rows, []string{strconv.Itoa(b.Value), strconv.Itoa(b.Files), fmt.Sprintf("%.1f", s.Percent(b.Files))})
	}
	return rows
}

type librarySummary struct {
	TotalFiles    int      `json:"total_files"`
	TotalDuration float64  `json:"total_duration"`
	TotalSize     int64    `json:"total_size"`
	ID3v1Files    int      `json:"id3v1_files"`
	ErrorFiles    int      `json:"error_files"`
	SampleRates   []bucket `json:"sample_rates"`
	BitDepths     []bucket `json:"bit_depths"`
}

type bucket struct {
	Value int `json:"value"`
	Files int `json:"files"`
}

type formatItem struct {
	Format   string  `json:"format"`
	Files    int     `json:"files"`
	Duration float64 `json:"duration"`
	Size     int64   `json:"size"`
}

func toBuckets(in []library.Bucket) []bucket {
	out := make([]bucket, 0, len(in))
	for _, b := range in {
		out = append(out, bucket{Value: b.Value, Files: b.Files})
	}
	return out
}

func (r LibraryReport) Summary() any {
	s := r.Stats
	return librarySummary{
		TotalFiles:    s.Total,
		TotalDuration: s.TotalDuration,
		TotalSize:     s.TotalSize,
		ID3v1Files:    s.ID3v1,
		ErrorFiles:    s.Errors,
		SampleRates:   toBuckets(s.SampleRates()),
		BitDepths:     toBuckets(s.BitDepths()),
	}
}

func (r LibraryReport) Items() any {
	items := []formatItem{}
	for _, f := range r.Stats.Formats() {
		items = append(items, formatItem{Format: string(f.Format), Files: f.Files, Duration: f.Duration, Size: f.Size})
	}
	return items
}

// HiResReport exports files above a sample-rate threshold.
type HiResReport struct {
	ScanPath  string
	Threshold int
	Total     int
	Files     []audio.Metadata
}

func (r HiResReport) Kind() string { return "hires" }
func (r HiResReport) Path() string { return r.ScanPath }
func (r HiResReport) Empty() bool  { return len(r.Files) == 0 }

func (r HiResReport) Rows() [][]string {
	rows := [][]string{{"File Path", "Format", "Sample Rate (Hz)", "Bit Depth", "Duration (seconds)", "Channels"}}
	for _, md := range r.Files {
		rows = append(rows, []string{
			md.Path,
			string(md.Format),
			strconv.Itoa(md.SampleRate),
			strconv.Itoa(md.BitDepth),
			seconds(md.Duration),
			strconv.Itoa(md.Channels),
		})
	}
	return rows
}

type hiresItem struct {
	Path       string  `json:"path"`
	Format     string  `json:"format"`
	SampleRate int     `json:"sample_rate"`
	BitDepth   int     `json:"bit_depth"`
	Duration   float64 `json:"duration"`
	Channels   int     `json:"channels"`
}

func (r HiResReport) Summary() any {
	return map[string]int{"threshold": r.Threshold, "total_files": r.Total, "hires_files": len(r.Files)}
}

func (r HiResReport) Items() any {
	items := make([]hiresItem, 0, len(r.Files))
	for _, md := range r.Files {
		items = append(items, hiresItem{
			Path:       md.Path,
			Format:     string(md.Format),
			SampleRate: md.SampleRate,
			BitDepth:   md.BitDepth,
			Duration:   md.Duration,
			Channels:   md.Channels,
		})
	}
	return items
}

// MissingItem is a file lacking required tags.
type MissingItem struct {
	Path    string       `json:"path"`
	Format  audio.Format `json:"format"`
	Missing []string     `json:"missing_tags"`
}

// MissingReport exports files with incomplete metadata.
type MissingReport struct {
	ScanPath string
	Total    int
	Files    []MissingItem
}

func (r MissingReport) Kind() string { return "missing" }
func (r MissingReport) Path() string { return r.ScanPath }
func (r MissingReport) Empty() bool  { return len(r.Files) == 0 }

func (r MissingReport) Rows() [][]string {
	rows := [][]string{{"File Path", "Format", "Missing Tags"}}
	for _, f := range r.Files {
		rows = append(rows, []string{f.Path, string(f.Format), strings.Join(f.Missing, "; ")})
	}
	return rows
}

func (r MissingReport) Summary() any {
	return map[string]int{"total_files": r.Total, "incomplete_files": len(r.Files)}
}

func (r MissingReport) Items() any { return r.Files }

// EncodingItem is one suspect tag with its candidate readings.
type EncodingItem struct {
	Path    string               `json:"path"`
	Tag     string               `json:"tag"`
	Guesses []encoding.Candidate `json:"guesses"`
}

// EncodingReport exports MP3 tags suspected of mojibake.
type EncodingReport struct {
	ScanPath string
	Total    int
	Files    int
	Tags     []EncodingItem
}

func (r EncodingReport) Kind() string { return "encoding" }
func (r EncodingReport) Path() string { return r.ScanPath }
func (r EncodingReport) Empty() bool  { return len(r.Tags) == 0 }

func (r EncodingReport) Rows() [][]string {
	rows := [][]string{{"File Path", "Tag", "Possible Encoding", "Description", "Decoded Text"}}
	for _, it := range r.Tags {
		for _, g := range it.Guesses {
			rows = append(rows, []string{it.Path, it.Tag, g.Encoding, g.Description, g.Text})
		}
	}
	return rows
}

func (r EncodingReport) Summary() any {
	return map[string]int{"total_files": r.Total, "suspect_files": r.Files}
}

func (r EncodingReport) Items() any { return r.Tags }

// DupesReport exports duplicate groups.
type DupesReport struct {
	ScanPath string
	Mode     string
	Groups   []dupes.Group
}

func (r DupesReport) Kind() string { return "dupes" }
func (r DupesReport) Path() string { return r.ScanPath }
func (r DupesReport) Empty() bool  { return len(r.Groups) == 0 }

func (r DupesReport) Rows() [][]string {
	rows := [][]string{{"Group", "File", "Size", "Status"}}
	for i, g := range r.Groups {
		for _, m := range g.Members {
			rows = append(rows, []string{strconv.Itoa(i + 1), m.Path, strconv.FormatInt(m.Size, 10), string(m.Status)})
		}
	}
	return rows
}

type dupesSummary struct {
	Mode           string `json:"mode"`
	Groups         int    `json:"groups"`
	DuplicateFiles int    `json:"duplicate_files"`
	WastedBytes    int64  `json:"wasted_bytes"`
}

type dupeMember struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	Status string `json:"status"`
}

type dupeGroup struct {
	Group   int          `json:"group"`
	Wasted  int64        `json:"wasted_bytes"`
	Members []dupeMember `json:"members"`
}

func (r DupesReport) Summary() any {
	s := dupes.Summarize(r.Groups)
	return dupesSummary{Mode: r.Mode, Groups: s.Groups, DuplicateFiles: s.Duplicates, WastedBytes: s.Wasted}
}

func (r DupesReport) Items() any {
	items := make([]dupeGroup, 0, len(r.Groups))
	for i, g := range r.Groups {
		dg := dupeGroup{Group: i + 1, Wasted: g.Wasted()}
		for _, m := range g.Members {
			dg.Members = append(dg.Members, dupeMember{Path: m.Path, Size: m.Size, Status: string(m.Status)})
		}
		items = append(items, dg)
	}
	return items
}
