/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package audio

import (
	"errors"
	"os"

	"github.com/go-audio/wav"
)

var errNotWAV = errors.New("not a valid WAV file")

// openWAV reads RIFF INFO tags. WAV tags are read-only.
func openWAV(path string) (*genericTagger, error) {
	t := &genericTagger{format: FormatWAV, fields: map[string][]string{}}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, errNotWAV
	}
	d.ReadMetadata()
	if d.Err() != nil || d.Metadata == nil {
		return t, nil
	}
	m := d.Metadata
	t.add(FieldTitle, m.Title)
	t.add(FieldArtist, m.Artist)
	t.add(FieldAlbum, m.Product)
	t.add(FieldGenre, m.Genre)
	t.add(FieldComment, m.Comments)
	t.add(FieldTrack, m.TrackNbr)
	t.add(FieldDate, m.CreationDate)
	return t, nil
}

// wavProperties reads the fmt chunk.
func wavProperties(path string) (streamInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return streamInfo{}, err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	d.ReadInfo()
	if err := d.Err(); err != nil {
		return streamInfo{}, err
	}
	if d.SampleRate == 0 {
		return streamInfo{}, errNotWAV
	}
	info := streamInfo{
		SampleRate: int(d.SampleRate),
		BitDepth:   int(d.BitDepth),
		Channels:   int(d.NumChans),
	}
	if dur, err := d.Duration(); err == nil {
		info.Duration = dur.Seconds()
	}
	if info.Duration > 0 {
		info.Bitrate = info.SampleRate * info.BitDepth * info.Channels
	}
	return info, nil
}
