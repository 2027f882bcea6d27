/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package library

import (
	"testing"

	"github.com/friendsincode/musictl/internal/audio"
)

func TestStatsAccumulates(t *testing.T) {
	s := NewStats("/music")
	s.Add(audio.Metadata{Format: audio.FormatFLAC, SampleRate: 96000, BitDepth: 24, Duration: 100, Size: 1000})
	s.Add(audio.Metadata{Format: audio.FormatFLAC, SampleRate: 44100, BitDepth: 16, Duration: 50, Size: 500})
	s.Add(audio.Metadata{Format: audio.FormatMP3, SampleRate: 44100, Duration: 30, Size: 300, HasID3v1: true})
	s.Add(audio.Metadata{Format: audio.FormatMP3, Size: 7, Err: "corrupt"})

	if s.Total != 4 || s.Errors != 1 || s.ID3v1 != 1 {
		t.Fatalf("totals = %+v", s)
	}
	if s.TotalSize != 1807 || s.TotalDuration != 180 {
		t.Fatalf("size/duration = %d/%v", s.TotalSize, s.TotalDuration)
	}

	formats := s.Formats()
	if len(formats) != 2 || formats[0].Format != audio.FormatFLAC || formats[0].Files != 2 || formats[0].Size != 1500 {
		t.Fatalf("formats = %+v", formats)
	}

	rates := s.SampleRates()
	if len(rates) != 2 || rates[0].Value != 96000 || rates[1].Files != 2 {
		t.Fatalf("rates = %+v", rates)
	}
	depths := s.BitDepths()
	if len(depths) != 2 || depths[0].Value != 24 {
		t.Fatalf("bit depths should skip unknown: %+v", depths)
	}
	if got := s.Percent(1); got != 25 {
		t.Fatalf("percent = %v", got)
	}
}

func TestHumanHelpers(t *testing.T) {
	if got := HumanDuration(3725); got != "1h 2m 5s" {
		t.Fatalf("duration = %q", got)
	}
	if got := HumanDuration(65.9); got != "1m 5s" {
		t.Fatalf("duration = %q", got)
	}
	if got := HumanSize(2048); got != "2.0 KiB" {
		t.Fatalf("size = %q", got)
	}
	if got := SampleRateLabel(44100); got != "44.1 kHz" {
		t.Fatalf("rate = %q", got)
	}
	if got := SampleRateLabel(800); got != "800 Hz" {
		t.Fatalf("rate = %q", got)
	}
}
