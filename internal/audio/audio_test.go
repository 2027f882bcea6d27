/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package audio

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/friendsincode/musictl/internal/probe"
	"github.com/friendsincode/musictl/internal/testutil"
)

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"a/song.mp3", FormatMP3, true},
		{"SONG.FLAC", FormatFLAC, true},
		{"x.opus", FormatOpus, true},
		{"x.m4a", FormatM4A, true},
		{"x.aiff", FormatAIFF, true},
		{"cover.jpg", "", false},
		{"noext", "", false},
	}
	for _, tt := range tests {
		got, ok := FormatOf(tt.path)
		if got != tt.want || ok != tt.ok {
			t.Errorf("FormatOf(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSupportedExtensions(t *testing.T) {
	exts := SupportedExtensions()
	if len(exts) != 8 {
		t.Fatalf("got %d extensions: %v", len(exts), exts)
	}
	for i := 1; i < len(exts); i++ {
		if exts[i-1] >= exts[i] {
			t.Fatalf("extensions not sorted: %v", exts)
		}
	}
}

func TestCanonicalField(t *testing.T) {
	tests := map[string]string{
		"Artist":       "artist",
		"year":         "date",
		"track":        "tracknumber",
		"disc":         "discnumber",
		"album_artist": "albumartist",
		"albumartist":  "albumartist",
	}
	for in, want := range tests {
		got, ok := CanonicalField(in)
		if !ok || got != want {
			t.Errorf("CanonicalField(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := CanonicalField("mood"); ok {
		t.Error("unknown field accepted")
	}
}

func TestMetadataStrings(t *testing.T) {
	m := Metadata{SampleRate: 44100, Duration: 185.9}
	if got := m.SampleRateString(); got != "44.1 kHz" {
		t.Errorf("SampleRateString = %q", got)
	}
	if got := m.DurationString(); got != "3:05" {
		t.Errorf("DurationString = %q", got)
	}
	m.SampleRate = 800
	if got := m.SampleRateString(); got != "800 Hz" {
		t.Errorf("SampleRateString = %q", got)
	}
	if !(Metadata{SampleRate: 96000}).IsHiRes(48000) {
		t.Error("96 kHz should be hi-res")
	}
	if (Metadata{SampleRate: 48000}).IsHiRes(48000) {
		t.Error("threshold itself is not hi-res")
	}
}

func TestReadMP3(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteTaggedMP3(t, filepath.Join(dir, "a.mp3"), map[string]string{
		"TIT2": "Song",
		"TPE1": "Artist",
		"TALB": "Album",
		"TPE2": "Band",
		"TRCK": "3/10",
	})

	md := Read(context.Background(), path, nil)
	if !md.OK() {
		t.Fatalf("unexpected error: %s", md.Err)
	}
	if md.Format != FormatMP3 {
		t.Errorf("Format = %q", md.Format)
	}
	if md.SampleRate != 44100 || md.Channels != 2 {
		t.Errorf("SampleRate=%d Channels=%d", md.SampleRate, md.Channels)
	}
	if md.Bitrate != 128000 {
		t.Errorf("Bitrate = %d", md.Bitrate)
	}
	wantDur := float64(40*testutil.MPEGFrameLen*8) / 128000
	if math.Abs(md.Duration-wantDur) > 0.01 {
		t.Errorf("Duration = %f, want %f", md.Duration, wantDur)
	}
	if !md.HasID3v2 || md.HasID3v1 {
		t.Errorf("HasID3v2=%v HasID3v1=%v", md.HasID3v2, md.HasID3v1)
	}
	for key, want := range map[string]string{
		FieldTitle: "Song", FieldArtist: "Artist", FieldAlbum: "Album",
		FieldAlbumArtist: "Band", FieldTrack: "3/10",
	} {
		if got := md.Tag(key); got != want {
			t.Errorf("tag %s = %q, want %q", key, got, want)
		}
	}
}

func TestReadMP3WithID3v1(t *testing.T) {
	path := testutil.WriteMP3(t, filepath.Join(t.TempDir(), "v1.mp3"))
	testutil.AppendID3v1(t, path, testutil.ID3v1Block("T", "A", "B", "1999", ""))

	md := Read(context.Background(), path, nil)
	if !md.OK() {
		t.Fatalf("unexpected error: %s", md.Err)
	}
	if !md.HasID3v1 || md.HasID3v2 {
		t.Errorf("HasID3v1=%v HasID3v2=%v", md.HasID3v1, md.HasID3v2)
	}
}

func TestReadCorruptMP3(t *testing.T) {
	path := testutil.WriteFile(t, filepath.Join(t.TempDir(), "bad.mp3"), []byte("this is not audio at all"))
	md := Read(context.Background(), path, nil)
	if md.OK() {
		t.Fatal("expected an error for a corrupt file")
	}
}

func TestReadUnsupported(t *testing.T) {
	path := testutil.WriteFile(t, filepath.Join(t.TempDir(), "notes.txt"), []byte("x"))
	md := Read(context.Background(), path, nil)
	if md.Err != ErrUnsupportedFormat.Error() {
		t.Fatalf("Err = %q", md.Err)
	}
}

func TestReadFLAC(t *testing.T) {
	path := testutil.WriteFLAC(t, filepath.Join(t.TempDir(), "a.flac"), 96000, 2, 24, 96000*3)

	md := Read(context.Background(), path, nil)
	if !md.OK() {
		t.Fatalf("unexpected error: %s", md.Err)
	}
	if md.SampleRate != 96000 || md.BitDepth != 24 || md.Channels != 2 {
		t.Errorf("got %d Hz / %d bit / %d ch", md.SampleRate, md.BitDepth, md.Channels)
	}
	if math.Abs(md.Duration-3) > 1e-9 {
		t.Errorf("Duration = %f", md.Duration)
	}
}

func TestReadFLACWithoutFrames(t *testing.T) {
	path := testutil.WriteFile(t, filepath.Join(t.TempDir(), "a.flac"), testutil.FLACMetadataOnly(44100, 2, 16, 44100))

	md := Read(context.Background(), path, nil)
	if md.OK() {
		t.Fatal("expected an error for a FLAC file without frames")
	}
	if !strings.Contains(md.Err, ErrNoAudioFrames.Error()) {
		t.Errorf("Err = %q", md.Err)
	}

	if _, err := Open(path); !errors.Is(err, ErrNoAudioFrames) {
		t.Errorf("Open err = %v", err)
	}
}

func TestReadWAV(t *testing.T) {
	path := testutil.WriteFile(t, filepath.Join(t.TempDir(), "a.wav"), testutil.WAV(48000, 2, 16, 4800))

	md := Read(context.Background(), path, nil)
	if !md.OK() {
		t.Fatalf("unexpected error: %s", md.Err)
	}
	if md.SampleRate != 48000 || md.BitDepth != 16 || md.Channels != 2 {
		t.Errorf("got %d Hz / %d bit / %d ch", md.SampleRate, md.BitDepth, md.Channels)
	}
}

type stubProber struct {
	props probe.Properties
	calls int
}

func (s *stubProber) Probe(context.Context, string) (probe.Properties, error) {
	s.calls++
	return s.props, nil
}

func TestReadFallsBackToProber(t *testing.T) {
	// dhowden/tag cannot read WMA, so stream values come from the prober.
	path := testutil.WriteFile(t, filepath.Join(t.TempDir(), "a.wma"), []byte("0&\xb2u"))
	p := &stubProber{props: probe.Properties{SampleRate: 44100, BitDepth: 16, Channels: 2, Duration: 12}}

	md := Read(context.Background(), path, p)
	if p.calls != 1 {
		t.Fatalf("prober called %d times", p.calls)
	}
	if md.SampleRate != 44100 || md.BitDepth != 16 || md.Duration != 12 {
		t.Errorf("fallback not applied: %+v", md)
	}
}

func TestReadSkipsProberWhenNativeValuesExist(t *testing.T) {
	path := testutil.WriteFLAC(t, filepath.Join(t.TempDir(), "a.flac"), 44100, 2, 16, 44100)
	p := &stubProber{}
	Read(context.Background(), path, p)
	if p.calls != 0 {
		t.Fatalf("prober called %d times", p.calls)
	}
}

func TestMP3TaggerSetAndDelete(t *testing.T) {
	path := testutil.WriteTaggedMP3(t, filepath.Join(t.TempDir(), "a.mp3"), map[string]string{"TIT2": "Old"})

	tg, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := tg.Set(FieldTitle, []string{"Новая песня"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := tg.Set(FieldComment, []string{"note"}); err != nil {
		t.Fatalf("Set comment: %v", err)
	}
	if err := tg.Set("mood", []string{"x"}); err == nil {
		t.Error("expected error for a field without a frame")
	}
	if err := tg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	tg.Close()

	tg, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	fields := tg.Fields()
	if First(fields, FieldTitle) != "Новая песня" {
		t.Errorf("title = %q", First(fields, FieldTitle))
	}
	if First(fields, FieldComment) != "note" {
		t.Errorf("comment = %q", First(fields, FieldComment))
	}
	found, err := tg.Delete(FieldComment)
	if err != nil || !found {
		t.Fatalf("Delete = %v, %v", found, err)
	}
	found, _ = tg.Delete(FieldGenre)
	if found {
		t.Error("genre was never set")
	}
	if err := tg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	tg.Close()

	md := Read(context.Background(), path, nil)
	if _, ok := md.Tags[FieldComment]; ok {
		t.Error("comment survived delete")
	}
	if md.SampleRate != 44100 {
		t.Errorf("audio stream damaged: %+v", md)
	}
}

func TestMP3TextFrames(t *testing.T) {
	path := testutil.WriteTaggedMP3(t, filepath.Join(t.TempDir(), "a.mp3"), map[string]string{
		"TIT2": "Title", "TSSE": "LAME",
	})
	tg, err := OpenMP3(path)
	if err != nil {
		t.Fatalf("OpenMP3: %v", err)
	}
	defer tg.Close()

	frames := tg.TextFrames()
	if frames["TIT2"] != "Title" || frames["TSSE"] != "LAME" {
		t.Fatalf("TextFrames = %v", frames)
	}
	if got := tg.Fields()["TSSE"]; len(got) != 1 || got[0] != "LAME" {
		t.Errorf("native key not exposed: %v", got)
	}
}

func TestMP3Pictures(t *testing.T) {
	path := testutil.WriteMP3(t, filepath.Join(t.TempDir(), "a.mp3"))
	img := testutil.PNG(4, 3)

	tg, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := tg.EmbedCover(img, "image/png", false); err != nil {
		t.Fatalf("EmbedCover: %v", err)
	}
	if err := tg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	tg.Close()

	tg, _ = Open(path)
	pics := tg.Pictures()
	if len(pics) != 1 || pics[0].MIME != "image/png" || len(pics[0].Data) != len(img) {
		t.Fatalf("Pictures = %+v", pics)
	}
	n, err := tg.RemovePictures()
	if err != nil || n != 1 {
		t.Fatalf("RemovePictures = %d, %v", n, err)
	}
	tg.Save()
	tg.Close()

	tg, _ = Open(path)
	defer tg.Close()
	if len(tg.Pictures()) != 0 {
		t.Fatal("pictures survived removal")
	}
}

func TestFLACTaggerRoundTrip(t *testing.T) {
	path := testutil.WriteFLAC(t, filepath.Join(t.TempDir(), "a.flac"), 44100, 2, 16, 44100*2)

	tg, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := tg.Set(FieldArtist, []string{"One", "Two"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := tg.Set(FieldAlbum, []string{"LP"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := tg.EmbedCover(testutil.PNG(8, 8), "image/png", true); err != nil {
		t.Fatalf("EmbedCover: %v", err)
	}
	if err := tg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	md := Read(context.Background(), path, nil)
	if !md.OK() {
		t.Fatalf("read after save: %s", md.Err)
	}
	if md.Tag(FieldArtist) != "One; Two" || md.Tag(FieldAlbum) != "LP" {
		t.Errorf("tags = %v", md.Tags)
	}
	if md.SampleRate != 44100 || md.BitDepth != 16 {
		t.Errorf("streaminfo damaged: %+v", md)
	}

	tg, _ = Open(path)
	pics := tg.Pictures()
	if len(pics) != 1 || pics[0].Width != 8 || pics[0].Height != 8 {
		t.Fatalf("Pictures = %+v", pics)
	}
	if found, _ := tg.Delete("ARTIST"); !found {
		t.Error("delete is case-insensitive")
	}
}

func TestGenericTaggerIsReadOnly(t *testing.T) {
	path := testutil.WriteFile(t, filepath.Join(t.TempDir(), "a.wma"), []byte("0&\xb2u"))
	tg, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer tg.Close()
	if err := tg.Set(FieldTitle, []string{"x"}); err == nil {
		t.Fatal("expected ErrReadOnly")
	}
	if tg.Format().Writable() {
		t.Fatal("WMA reported writable")
	}
}

func TestReadMissingFile(t *testing.T) {
	md := Read(context.Background(), filepath.Join(t.TempDir(), "gone.mp3"), nil)
	if md.OK() {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(md.Path); err == nil {
		t.Fatal("file should not exist")
	}
}
