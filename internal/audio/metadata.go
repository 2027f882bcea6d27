/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package audio reads stream properties and tags from audio files and
// edits tags in the containers that support writing.
package audio

import (
	"context"
	"fmt"
	"os"
	"strings"

	mflac "github.com/mewkiz/flac"

	"github.com/friendsincode/musictl/internal/id3v1"
	"github.com/friendsincode/musictl/internal/probe"
)

// Metadata is the read-only view of one audio file used by the scanners.
type Metadata struct {
	Path       string
	Format     Format
	SampleRate int
	BitDepth   int
	Channels   int
	Duration   float64 // seconds
	Bitrate    int     // bit/s
	Size       int64
	Tags       map[string]string
	HasID3v1   bool
	HasID3v2   bool
	Err        string
}

// OK reports whether the file was read without error.
func (m Metadata) OK() bool { return m.Err == "" }

// Tag returns a tag value or "".
func (m Metadata) Tag(key string) string { return m.Tags[key] }

// SampleRateString renders e.g. "44.1 kHz"; rates below 1000 print in Hz.
func (m Metadata) SampleRateString() string {
	if m.SampleRate >= 1000 {
		return fmt.Sprintf("%.1f kHz", float64(m.SampleRate)/1000)
	}
	return fmt.Sprintf("%d Hz", m.SampleRate)
}

// DurationString renders the duration as m:ss.
func (m Metadata) DurationString() string {
	total := int(m.Duration)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// IsHiRes reports whether the sample rate exceeds threshold.
func (m Metadata) IsHiRes(threshold int) bool {
	return m.SampleRate > threshold
}

// Prober supplies stream properties for containers without a native reader.
type Prober interface {
	Probe(ctx context.Context, path string) (probe.Properties, error)
}

type streamInfo struct {
	SampleRate int
	BitDepth   int
	Channels   int
	Duration   float64
	Bitrate    int
}

// Read gathers properties and tags for path. It does not return an error;
// failures are recorded in Metadata.Err. prober may be nil.
func Read(ctx context.Context, path string, prober Prober) Metadata {
	md := Metadata{Path: path, Tags: map[string]string{}}

	format, ok := FormatOf(path)
	if !ok {
		md.Err = ErrUnsupportedFormat.Error()
		return md
	}
	md.Format = format

	st, err := os.Stat(path)
	if err != nil {
		md.Err = err.Error()
		return md
	}
	md.Size = st.Size()

	info, err := nativeProperties(format, path)
	if err != nil {
		md.Err = err.Error()
		return md
	}

	tagger, err := Open(path)
	if err != nil {
		md.Err = err.Error()
		return md
	}
	for key, values := range tagger.Fields() {
		if len(values) > 0 {
			md.Tags[key] = strings.Join(values, "; ")
		}
	}
	_ = tagger.Close()

	md.SampleRate = info.SampleRate
	md.BitDepth = info.BitDepth
	md.Channels = info.Channels
	md.Duration = info.Duration
	md.Bitrate = info.Bitrate

	if format == FormatMP3 {
		md.HasID3v1, md.HasID3v2, _ = id3v1.Detect(path)
	}

	if md.SampleRate == 0 && md.BitDepth == 0 && prober != nil {
		props, err := prober.Probe(ctx, path)
		if err == nil {
			md.fill(props)
		}
	}
	return md
}

// fill copies probed values into fields that are still zero.
func (m *Metadata) fill(p probe.Properties) {
	if m.SampleRate == 0 {
		m.SampleRate = p.SampleRate
	}
	if m.BitDepth == 0 {
		m.BitDepth = p.BitDepth
	}
	if m.Channels == 0 {
		m.Channels = p.Channels
	}
	if m.Duration == 0 {
		m.Duration = p.Duration
	}
}

func nativeProperties(format Format, path string) (streamInfo, error) {
	switch format {
	case FormatMP3:
		return mpegProperties(path)
	case FormatFLAC:
		return flacProperties(path)
	case FormatWAV:
		return wavProperties(path)
	}
	return streamInfo{}, nil
}

func flacProperties(path string) (streamInfo, error) {
	stream, err := mflac.Open(path)
	if err != nil {
		return streamInfo{}, fmt.Errorf("read streaminfo: %w", err)
	}
	defer stream.Close()

	si := stream.Info
	info := streamInfo{
		SampleRate: int(si.SampleRate),
		BitDepth:   int(si.BitsPerSample),
		Channels:   int(si.NChannels),
	}
	if si.SampleRate > 0 {
		info.Duration = float64(si.NSamples) / float64(si.SampleRate)
	}
	if info.Duration > 0 {
		if st, err := os.Stat(path); err == nil {
			info.Bitrate = int(float64(st.Size()*8) / info.Duration)
		}
	}
	return info, nil
}
