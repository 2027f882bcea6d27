/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package probe asks ffprobe for stream properties of containers that have
// no native reader.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single ffprobe invocation.
const DefaultTimeout = 10 * time.Second

// Properties are the audio stream values ffprobe reports.
type Properties struct {
	SampleRate int
	BitDepth   int
	Channels   int
	Duration   float64
}

// Prober runs ffprobe.
type Prober struct {
	Bin     string
	Timeout time.Duration
	logger  zerolog.Logger
}

// New returns a Prober. An empty bin means "ffprobe" from PATH.
func New(bin string, timeout time.Duration, logger zerolog.Logger) *Prober {
	if bin == "" {
		bin = "ffprobe"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{
		Bin:     bin,
		Timeout: timeout,
		logger:  logger.With().Str("component", "probe").Logger(),
	}
}

// Probe inspects the first audio stream of path. A missing binary, a
// timeout or a failing run yields zero Properties and no error; only
// unparseable output is reported.
func (p *Prober) Probe(ctx context.Context, path string) (Properties, error) {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.Bin,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "a:0",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		var execErr *exec.Error
		switch {
		case errors.As(err, &execErr):
			p.logger.Debug().Str("bin", p.Bin).Msg("ffprobe not available")
		case ctx.Err() != nil:
			p.logger.Debug().Str("path", path).Msg("ffprobe timed out")
		default:
			p.logger.Debug().Err(err).Str("path", path).Msg("ffprobe failed")
		}
		return Properties{}, nil
	}
	return ParseStreams(output)
}

type streamsDoc struct {
	Streams []struct {
		SampleRate       string `json:"sample_rate"`
		BitsPerRawSample string `json:"bits_per_raw_sample"`
		Channels         int    `json:"channels"`
		Duration         string `json:"duration"`
	} `json:"streams"`
}

// ParseStreams decodes `ffprobe -show_streams` JSON output.
func ParseStreams(data []byte) (Properties, error) {
	var doc streamsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return Properties{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(doc.Streams) == 0 {
		return Properties{}, nil
	}
	s := doc.Streams[0]
	props := Properties{Channels: s.Channels}
	props.SampleRate, _ = strconv.Atoi(s.SampleRate)
	props.BitDepth, _ = strconv.Atoi(s.BitsPerRawSample)
	props.Duration, _ = strconv.ParseFloat(s.Duration, 64)
	return props, nil
}
