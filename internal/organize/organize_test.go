/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package organize

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/friendsincode/musictl/internal/audio"
	"github.com/friendsincode/musictl/internal/testutil"
)

func md(path string, f audio.Format, rate int) audio.Metadata {
	return audio.Metadata{Path: path, Format: f, SampleRate: rate}
}

func TestByFormatPlan(t *testing.T) {
	src := t.TempDir()
	dest := t.TempDir()
	files := []audio.Metadata{
		md(filepath.Join(src, "b", "song.mp3"), audio.FormatMP3, 44100),
		md(filepath.Join(src, "a", "song.mp3"), audio.FormatMP3, 44100),
		md(filepath.Join(src, "a", "x.flac"), audio.FormatFLAC, 96000),
		{Path: filepath.Join(src, "bad.ogg"), Err: "corrupt"},
	}

	p := ByFormat(files, dest)
	if len(p.Moves) != 3 || len(p.Skipped) != 1 {
		t.Fatalf("moves=%d skipped=%d", len(p.Moves), len(p.Skipped))
	}
	want := map[string]string{
		filepath.Join(src, "a", "song.mp3"): filepath.Join(dest, "MP3", "song.mp3"),
		filepath.Join(src, "b", "song.mp3"): filepath.Join(dest, "MP3", "song_1.mp3"),
		filepath.Join(src, "a", "x.flac"):   filepath.Join(dest, "FLAC", "x.flac"),
	}
	for _, m := range p.Moves {
		if want[m.Source] != m.Dest {
			t.Fatalf("%s -> %s, want %s", m.Source, m.Dest, want[m.Source])
		}
	}

	counts := p.BucketCounts()
	if len(counts) != 2 || counts[0].Bucket != "FLAC" || counts[1].Files != 2 {
		t.Fatalf("counts = %+v", counts)
	}
}

func TestPlanAvoidsExistingFiles(t *testing.T) {
	dest := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dest, "hi.flac"), []byte("taken"))

	p := BySampleRate([]audio.Metadata{
		md("/src/hi.flac", audio.FormatFLAC, 96000),
		md("/src/lo.flac", audio.FormatFLAC, 44100),
		md("/src/edge.flac", audio.FormatFLAC, 48000),
	}, dest, 48000)

	if len(p.Moves) != 1 || p.Remaining != 2 {
		t.Fatalf("moves=%d remaining=%d", len(p.Moves), p.Remaining)
	}
	if got := p.Moves[0].Dest; got != filepath.Join(dest, "hi_1.flac") {
		t.Fatalf("dest = %s", got)
	}
}

func TestExecuteMatchesPlan(t *testing.T) {
	src := t.TempDir()
	dest := filepath.Join(t.TempDir(), "sorted")
	a := testutil.WriteFile(t, filepath.Join(src, "one", "t.mp3"), []byte("one"))
	b := testutil.WriteFile(t, filepath.Join(src, "two", "t.mp3"), []byte("two"))

	p := ByFormat([]audio.Metadata{md(a, audio.FormatMP3, 0), md(b, audio.FormatMP3, 0)}, dest)
	out, err := Execute(context.Background(), p)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(out.Moved) != len(p.Moves) || len(out.Failed) != 0 {
		t.Fatalf("moved=%d failed=%d", len(out.Moved), len(out.Failed))
	}
	for _, m := range p.Moves {
		if _, err := os.Stat(m.Dest); err != nil {
			t.Fatalf("missing %s: %v", m.Dest, err)
		}
		if _, err := os.Stat(m.Source); !os.IsNotExist(err) {
			t.Fatalf("source %s still present", m.Source)
		}
	}
	data, _ := os.ReadFile(filepath.Join(dest, "MP3", "t_1.mp3"))
	if string(data) != "two" {
		t.Fatalf("second file content = %q", data)
	}
}

func TestExecuteRecordsFailures(t *testing.T) {
	dest := t.TempDir()
	p := Plan{Moves: []Move{{Source: filepath.Join(dest, "missing.mp3"), Dest: filepath.Join(dest, "MP3", "missing.mp3")}}}
	out, err := Execute(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Failed) != 1 {
		t.Fatalf("failed = %d", len(out.Failed))
	}
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := Plan{Moves: []Move{{Source: "a", Dest: "b"}}}
	out, err := Execute(ctx, p)
	if err == nil || len(out.Moved) != 0 {
		t.Fatalf("expected cancellation, got %v", err)
	}
}
