/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package audio

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dhowden/tag"

	"github.com/friendsincode/musictl/internal/artwork"
)

// genericTagger reads OGG, Opus, M4A and the other containers through
// dhowden/tag. It never writes.
type genericTagger struct {
	format   Format
	fields   map[string][]string
	pictures []artwork.Picture
}

func openGeneric(path string, format Format) (*genericTagger, error) {
	t := &genericTagger{format: format, fields: map[string][]string{}}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) || !dhowdenReads(format) {
			return t, nil
		}
		return nil, fmt.Errorf("read tags: %w", err)
	}

	t.add(FieldTitle, m.Title())
	t.add(FieldArtist, m.Artist())
	t.add(FieldAlbum, m.Album())
	t.add(FieldAlbumArtist, m.AlbumArtist())
	t.add(FieldComposer, m.Composer())
	t.add(FieldGenre, m.Genre())
	t.add(FieldComment, m.Comment())
	t.add(FieldLyrics, m.Lyrics())
	if y := m.Year(); y > 0 {
		t.add(FieldDate, strconv.Itoa(y))
	}
	if n, total := m.Track(); n > 0 {
		t.add(FieldTrack, numberOf(n, total))
	}
	if n, total := m.Disc(); n > 0 {
		t.add(FieldDisc, numberOf(n, total))
	}

	if p := m.Picture(); p != nil {
		t.pictures = append(t.pictures, artwork.Picture{
			Type:        pictureTypeOf(p.Type),
			MIME:        p.MIMEType,
			Description: p.Description,
			Data:        p.Data,
		})
	}
	return t, nil
}

// dhowdenReads reports whether dhowden/tag understands the container.
func dhowdenReads(format Format) bool {
	switch format {
	case FormatOGG, FormatOpus, FormatM4A:
		return true
	}
	return false
}

func (t *genericTagger) add(key, value string) {
	if value != "" {
		t.fields[key] = append(t.fields[key], value)
	}
}

func numberOf(n, total int) string {
	if total > 0 {
		return fmt.Sprintf("%d/%d", n, total)
	}
	return strconv.Itoa(n)
}

func pictureTypeOf(desc string) artwork.PictureType {
	switch d := strings.ToLower(desc); {
	case strings.Contains(d, "front"):
		return artwork.TypeFrontCover
	case strings.Contains(d, "back"):
		return artwork.TypeBackCover
	case strings.Contains(d, "leaflet"):
		return artwork.TypeLeaflet
	case strings.Contains(d, "media"):
		return artwork.TypeMedia
	case strings.Contains(d, "lead artist"):
		return artwork.TypeLeadArtist
	}
	return artwork.TypeOther
}

func (t *genericTagger) Format() Format { return t.format }

func (t *genericTagger) Fields() map[string][]string {
	out := make(map[string][]string, len(t.fields))
	for k, v := range t.fields {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func (t *genericTagger) Pictures() []artwork.Picture { return t.pictures }

func (t *genericTagger) Set(string, []string) error { return readOnlyErr(t.format) }
func (t *genericTagger) Delete(string) (bool, error) { return false, readOnlyErr(t.format) }
func (t *genericTagger) RemovePictures() (int, error) { return 0, readOnlyErr(t.format) }
func (t *genericTagger) Save() error { return nil }
func (t *genericTagger) Close() error { return nil }
func (t *genericTagger) EmbedCover([]byte, string, bool) error {
	return readOnlyErr(t.format)
}
