/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package organize plans and performs file moves into format or
// sample-rate based destination folders.
package organize

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/friendsincode/musictl/internal/audio"
)

// Move relocates one file.
type Move struct {
	Source string
	Dest   string
	// Bucket is the destination folder label (format name, or the
	// threshold bucket for sample-rate moves).
	Bucket     string
	SampleRate int
}

// Plan is the full set of moves. Dry runs print it and Execute performs
// exactly these moves.
type Plan struct {
	Moves []Move
	// Skipped are files whose metadata could not be read.
	Skipped []audio.Metadata
	// Remaining counts readable files left in place.
	Remaining int
}

// BucketCounts returns the number of moves per bucket, sorted by bucket.
func (p Plan) BucketCounts() []BucketCount {
	counts := map[string]int{}
	for _, m := range p.Moves {
		counts[m.Bucket]++
	}
	out := make([]BucketCount, 0, len(counts))
	for b, n := range counts {
		out = append(out, BucketCount{Bucket: b, Files: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bucket < out[j].Bucket })
	return out
}

// BucketCount is one row of the plan summary.
type BucketCount struct {
	Bucket string
	Files  int
}

// ByFormat moves every readable file to dest/<FORMAT>/.
func ByFormat(files []audio.Metadata, dest string) Plan {
	var p Plan
	r := newReserver()
	for _, md := range sortedByPath(files) {
		if !md.OK() {
			p.Skipped = append(p.Skipped, md)
			continue
		}
		dir := filepath.Join(dest, string(md.Format))
		p.Moves = append(p.Moves, Move{
			Source:     md.Path,
			Dest:       r.reserve(dir, filepath.Base(md.Path)),
			Bucket:     string(md.Format),
			SampleRate: md.SampleRate,
		})
	}
	return p
}

// BySampleRate moves files whose sample rate is strictly above threshold
// into dest. Other readable files remain in place.
func BySampleRate(files []audio.Metadata, dest string, threshold int) Plan {
	var p Plan
	r := newReserver()
	for _, md := range sortedByPath(files) {
		if !md.OK() {
			p.Skipped = append(p.Skipped, md)
			continue
		}
		if !md.IsHiRes(threshold) {
			p.Remaining++
			continue
		}
		p.Moves = append(p.Moves, Move{
			Source:     md.Path,
			Dest:       r.reserve(dest, filepath.Base(md.Path)),
			Bucket:     fmt.Sprintf(">%d Hz", threshold),
			SampleRate: md.SampleRate,
		})
	}
	return p
}

func sortedByPath(files []audio.Metadata) []audio.Metadata {
	out := append([]audio.Metadata(nil), files...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// reserver hands out destination names that neither exist on disk nor were
// handed out earlier in the same plan, appending _N before the extension.
type reserver struct {
	taken map[string]bool
}

func newReserver() *reserver { return &reserver{taken: map[string]bool{}} }

func (r *reserver) reserve(dir, name string) string {
	candidate := filepath.Join(dir, name)
	ext := filepath.Ext(name)
	stem := name[:len(name)-len(ext)]
	for i := 1; r.taken[candidate] || exists(candidate); i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
	}
	r.taken[candidate] = true
	return candidate
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// MoveError is a move that failed.
type MoveError struct {
	Move Move
	Err  error
}

// Outcome of Execute.
type Outcome struct {
	Moved  []Move
	Failed []MoveError
}

// Execute performs the planned moves, continuing past failures. It stops
// before the next move once ctx is cancelled.
func Execute(ctx context.Context, p Plan) (Outcome, error) {
	var out Outcome
	for _, m := range p.Moves {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if err := os.MkdirAll(filepath.Dir(m.Dest), 0o755); err != nil {
			out.Failed = append(out.Failed, MoveError{Move: m, Err: fmt.Errorf("create destination: %w", err)})
			continue
		}
		if err := moveFile(m.Source, m.Dest); err != nil {
			out.Failed = append(out.Failed, MoveError{Move: m, Err: err})
			continue
		}
		out.Moved = append(out.Moved, m)
	}
	return out, nil
}

// moveFile moves a file, with fallback to copy+delete if cross-device
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove source: %w", err)
	}
	return nil
}

// copyFile copies a file preserving permissions
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, srcInfo.Mode())
	if err != nil {
		return err
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return err
	}
	return dstFile.Sync()
}
