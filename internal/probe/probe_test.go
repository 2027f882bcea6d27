/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package probe

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseStreams(t *testing.T) {
	out := []byte(`{"streams":[{"index":0,"codec_name":"alac","sample_rate":"96000",
		"channels":2,"bits_per_raw_sample":"24","duration":"183.250000"}]}`)

	props, err := ParseStreams(out)
	if err != nil {
		t.Fatalf("ParseStreams: %v", err)
	}
	want := Properties{SampleRate: 96000, BitDepth: 24, Channels: 2, Duration: 183.25}
	if props != want {
		t.Fatalf("got %+v, want %+v", props, want)
	}
}

func TestParseStreamsNoStreams(t *testing.T) {
	props, err := ParseStreams([]byte(`{"streams":[]}`))
	if err != nil {
		t.Fatalf("ParseStreams: %v", err)
	}
	if props != (Properties{}) {
		t.Fatalf("expected zero properties, got %+v", props)
	}
}

func TestParseStreamsMissingFields(t *testing.T) {
	props, err := ParseStreams([]byte(`{"streams":[{"channels":1}]}`))
	if err != nil {
		t.Fatalf("ParseStreams: %v", err)
	}
	if props.Channels != 1 || props.SampleRate != 0 || props.BitDepth != 0 {
		t.Fatalf("unexpected %+v", props)
	}
}

func TestParseStreamsMalformed(t *testing.T) {
	if _, err := ParseStreams([]byte("not json")); err == nil {
		t.Fatal("expected error for malformed output")
	}
}

func TestProbeMissingBinary(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "no-such-ffprobe")
	p := New(bin, time.Second, zerolog.Nop())

	props, err := p.Probe(context.Background(), "song.wma")
	if err != nil {
		t.Fatalf("missing binary should not be an error: %v", err)
	}
	if props != (Properties{}) {
		t.Fatalf("expected zero properties, got %+v", props)
	}
}

func TestNewDefaults(t *testing.T) {
	p := New("", 0, zerolog.Nop())
	if p.Bin != "ffprobe" {
		t.Fatalf("Bin = %q", p.Bin)
	}
	if p.Timeout != DefaultTimeout {
		t.Fatalf("Timeout = %v", p.Timeout)
	}
}
