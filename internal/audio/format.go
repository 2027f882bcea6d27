/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package audio

import (
	"path/filepath"
	"sort"
	"strings"
)

// Format is the container type of an audio file.
type Format string

const (
	FormatMP3  Format = "MP3"
	FormatFLAC Format = "FLAC"
	FormatOGG  Format = "OGG"
	FormatOpus Format = "OPUS"
	FormatM4A  Format = "M4A"
	FormatWMA  Format = "WMA"
	FormatWAV  Format = "WAV"
	FormatAIFF Format = "AIFF"
)

var extFormats = map[string]Format{
	".mp3":  FormatMP3,
	".flac": FormatFLAC,
	".ogg":  FormatOGG,
	".opus": FormatOpus,
	".m4a":  FormatM4A,
	".wma":  FormatWMA,
	".wav":  FormatWAV,
	".aiff": FormatAIFF,
}

// FormatOf determines the container from the file extension.
func FormatOf(path string) (Format, bool) {
	f, ok := extFormats[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

// IsSupported reports whether the file extension is a supported audio type.
func IsSupported(path string) bool {
	_, ok := FormatOf(path)
	return ok
}

// SupportedExtensions returns the handled extensions, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extFormats))
	for ext := range extFormats {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Writable reports whether tags in this container can be written.
func (f Format) Writable() bool {
	return f == FormatMP3 || f == FormatFLAC
}
