/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package library aggregates per-file metadata into library-wide statistics.
package library

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/friendsincode/musictl/internal/audio"
)

// FormatStats totals one container format.
type FormatStats struct {
	Format   audio.Format
	Files    int
	Duration float64
	Size     int64
}

// Bucket is one row of a distribution.
type Bucket struct {
	Value int
	Files int
}

// Stats accumulates metadata for a library scan.
type Stats struct {
	ScanPath      string
	Total         int
	Errors        int
	ID3v1         int
	TotalDuration float64
	TotalSize     int64

	formats     map[audio.Format]*FormatStats
	sampleRates map[int]int
	bitDepths   map[int]int
}

// NewStats returns an empty accumulator for root.
func NewStats(root string) *Stats {
	return &Stats{
		ScanPath:    root,
		formats:     map[audio.Format]*FormatStats{},
		sampleRates: map[int]int{},
		bitDepths:   map[int]int{},
	}
}

// Add folds one file into the totals. Unreadable files count toward Total,
// TotalSize and Errors only.
func (s *Stats) Add(md audio.Metadata) {
	s.Total++
	s.TotalSize += md.Size
	if !md.OK() {
		s.Errors++
		return
	}

	fs, ok := s.formats[md.Format]
	if !ok {
		fs = &FormatStats{Format: md.Format}
		s.formats[md.Format] = fs
	}
	fs.Files++
	fs.Duration += md.Duration
	fs.Size += md.Size

	s.sampleRates[md.SampleRate]++
	s.bitDepths[md.BitDepth]++
	s.TotalDuration += md.Duration
	if md.HasID3v1 {
		s.ID3v1++
	}
}

// Formats returns per-format totals sorted by format name.
func (s *Stats) Formats() []FormatStats {
	out := make([]FormatStats, 0, len(s.formats))
	for _, fs := range s.formats {
		out = append(out, *fs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Format < out[j].Format })
	return out
}

// SampleRates returns the known sample rates, highest first.
func (s *Stats) SampleRates() []Bucket { return buckets(s.sampleRates) }

// BitDepths returns the known bit depths, highest first.
func (s *Stats) BitDepths() []Bucket { return buckets(s.bitDepths) }

func buckets(m map[int]int) []Bucket {
	var out []Bucket
	for v, n := range m {
		if v > 0 {
			out = append(out, Bucket{Value: v, Files: n})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}

// Percent is n as a share of all scanned files.
func (s *Stats) Percent(n int) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(n) / float64(s.Total) * 100
}

// HumanSize renders a byte count.
func HumanSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// HumanDuration renders seconds as "Hh Mm Ss", dropping the hours when zero.
func HumanDuration(seconds float64) string {
	total := int(seconds)
	h, rem := total/3600, total%3600
	m, sec := rem/60, rem%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, sec)
	}
	return fmt.Sprintf("%dm %ds", m, sec)
}

// SampleRateLabel renders a rate as kHz when at least 1000 Hz.
func SampleRateLabel(rate int) string {
	if rate >= 1000 {
		return fmt.Sprintf("%.1f kHz", float64(rate)/1000)
	}
	return fmt.Sprintf("%d Hz", rate)
}
