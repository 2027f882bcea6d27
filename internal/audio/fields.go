/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package audio

import "strings"

// Canonical field names shared by every container.
const (
	FieldTitle       = "title"
	FieldArtist      = "artist"
	FieldAlbum       = "album"
	FieldAlbumArtist = "albumartist"
	FieldDate        = "date"
	FieldTrack       = "tracknumber"
	FieldDisc        = "discnumber"
	FieldGenre       = "genre"
	FieldComposer    = "composer"
	FieldComment     = "comment"
	FieldLyrics      = "lyrics"
)

var canonicalFields = []string{
	FieldTitle, FieldArtist, FieldAlbum, FieldAlbumArtist, FieldDate,
	FieldTrack, FieldDisc, FieldGenre, FieldComposer, FieldComment, FieldLyrics,
}

var fieldAliases = map[string]string{
	"year":         FieldDate,
	"track":        FieldTrack,
	"disc":         FieldDisc,
	"album_artist": FieldAlbumArtist,
	"album artist": FieldAlbumArtist,
}

// CanonicalFields returns the field names accepted by set and clear.
func CanonicalFields() []string {
	out := make([]string, len(canonicalFields))
	copy(out, canonicalFields)
	return out
}

// CanonicalField resolves a user supplied name or alias.
func CanonicalField(name string) (string, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := fieldAliases[n]; ok {
		return alias, true
	}
	for _, f := range canonicalFields {
		if f == n {
			return f, true
		}
	}
	return "", false
}

// id3Frames maps canonical fields to ID3v2.4 frame IDs.
var id3Frames = map[string]string{
	FieldTitle:       "TIT2",
	FieldArtist:      "TPE1",
	FieldAlbum:       "TALB",
	FieldAlbumArtist: "TPE2",
	FieldDate:        "TDRC",
	FieldTrack:       "TRCK",
	FieldDisc:        "TPOS",
	FieldGenre:       "TCON",
	FieldComposer:    "TCOM",
	FieldComment:     "COMM",
	FieldLyrics:      "USLT",
}

// id3Fields is the reverse of id3Frames, plus the ID3v2.3 year frame.
var id3Fields = func() map[string]string {
	m := map[string]string{"TYER": FieldDate}
	for field, id := range id3Frames {
		m[id] = field
	}
	return m
}()

// vorbisKey returns the Vorbis comment name for a field.
func vorbisKey(field string) string {
	return strings.ToUpper(field)
}
