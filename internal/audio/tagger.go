/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package audio

import (
	"errors"
	"fmt"

	"github.com/friendsincode/musictl/internal/artwork"
)

// ErrReadOnly is returned by mutating Tagger methods on containers that
// cannot be written.
var ErrReadOnly = errors.New("tag writing is not supported for this format")

// ErrUnsupportedFormat is returned by Open for unknown extensions.
var ErrUnsupportedFormat = errors.New("unsupported or unreadable audio format")

// ErrNoAudioFrames is returned for FLAC files whose metadata is not followed
// by a frame, e.g. a truncated download.
var ErrNoAudioFrames = errors.New("no audio frames after metadata")

// Tagger reads and edits the tag block of one file. Changes are held in
// memory until Save.
type Tagger interface {
	Format() Format
	// Fields returns every text field keyed by canonical name where one
	// exists and by the native key otherwise.
	Fields() map[string][]string
	Set(field string, values []string) error
	// Delete removes a field and reports whether it was present.
	Delete(field string) (bool, error)
	Pictures() []artwork.Picture
	EmbedCover(data []byte, mime string, replace bool) error
	// RemovePictures deletes embedded images and returns how many were removed.
	RemovePictures() (int, error)
	Save() error
	Close() error
}

// Open returns a Tagger appropriate to the file's container.
func Open(path string) (Tagger, error) {
	format, ok := FormatOf(path)
	if !ok {
		return nil, ErrUnsupportedFormat
	}
	switch format {
	case FormatMP3:
		return openMP3(path)
	case FormatFLAC:
		return openFLAC(path)
	case FormatWAV:
		return openWAV(path)
	default:
		return openGeneric(path, format)
	}
}

// First returns the first value of a field or "".
func First(fields map[string][]string, key string) string {
	if v := fields[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func readOnlyErr(format Format) error {
	return fmt.Errorf("%s: %w", format, ErrReadOnly)
}
