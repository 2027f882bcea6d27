/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package audio

import (
	"fmt"
	"strings"

	"github.com/bogem/id3v2/v2"

	"github.com/friendsincode/musictl/internal/artwork"
)

type mp3Tagger struct {
	tag   *id3v2.Tag
	dirty bool
}

func openMP3(path string) (*mp3Tagger, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("open id3v2: %w", err)
	}
	return &mp3Tagger{tag: tag}, nil
}

// OpenMP3 returns the ID3v2 tagger for an MP3 file, which additionally
// exposes raw text frames.
func OpenMP3(path string) (*MP3Tagger, error) {
	t, err := openMP3(path)
	if err != nil {
		return nil, err
	}
	return &MP3Tagger{t}, nil
}

// MP3Tagger is the MP3 Tagger with access to ID3v2 text frames by ID.
type MP3Tagger struct {
	*mp3Tagger
}

func (t *mp3Tagger) Format() Format { return FormatMP3 }

func (t *mp3Tagger) Fields() map[string][]string {
	out := make(map[string][]string)
	for id, frames := range t.tag.AllFrames() {
		for _, f := range frames {
			switch fr := f.(type) {
			case id3v2.TextFrame:
				key := id
				if field, ok := id3Fields[id]; ok {
					key = field
				}
				out[key] = append(out[key], splitNull(fr.Text)...)
			case id3v2.CommentFrame:
				out[FieldComment] = append(out[FieldComment], fr.Text)
			case id3v2.UnsynchronisedLyricsFrame:
				out[FieldLyrics] = append(out[FieldLyrics], fr.Lyrics)
			case id3v2.UserDefinedTextFrame:
				key := "TXXX:" + fr.Description
				out[key] = append(out[key], fr.Value)
			}
		}
	}
	return out
}

func (t *mp3Tagger) Set(field string, values []string) error {
	text := strings.Join(values, "\x00")
	switch {
	case field == FieldComment:
		t.tag.DeleteFrames("COMM")
		t.tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding: id3v2.EncodingUTF8,
			Language: "eng",
			Text:     text,
		})
	case field == FieldLyrics:
		t.tag.DeleteFrames("USLT")
		t.tag.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
			Encoding: id3v2.EncodingUTF8,
			Language: "eng",
			Lyrics:   text,
		})
	case strings.HasPrefix(field, "TXXX:"):
		desc := strings.TrimPrefix(field, "TXXX:")
		t.deleteUserText(desc)
		t.tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
			Encoding:    id3v2.EncodingUTF8,
			Description: desc,
			Value:       text,
		})
	default:
		id, err := t.frameID(field)
		if err != nil {
			return err
		}
		if id == "TDRC" {
			t.tag.DeleteFrames("TYER")
		}
		t.tag.DeleteFrames(id)
		t.tag.AddTextFrame(id, id3v2.EncodingUTF8, text)
	}
	t.dirty = true
	return nil
}

func (t *mp3Tagger) Delete(field string) (bool, error) {
	if strings.HasPrefix(field, "TXXX:") {
		found := t.deleteUserText(strings.TrimPrefix(field, "TXXX:"))
		t.dirty = t.dirty || found
		return found, nil
	}
	id, err := t.frameID(field)
	if err != nil {
		return false, err
	}
	ids := []string{id}
	if id == "TDRC" {
		ids = append(ids, "TYER")
	}
	found := false
	for _, fid := range ids {
		if len(t.tag.GetFrames(fid)) > 0 {
			t.tag.DeleteFrames(fid)
			found = true
		}
	}
	t.dirty = t.dirty || found
	return found, nil
}

func (t *mp3Tagger) deleteUserText(desc string) bool {
	frames := t.tag.GetFrames("TXXX")
	if len(frames) == 0 {
		return false
	}
	found := false
	t.tag.DeleteFrames("TXXX")
	for _, f := range frames {
		udf, ok := f.(id3v2.UserDefinedTextFrame)
		if ok && udf.Description == desc {
			found = true
			continue
		}
		t.tag.AddFrame("TXXX", f)
	}
	return found
}

// frameID maps a canonical field or a raw four-character text frame ID.
func (t *mp3Tagger) frameID(field string) (string, error) {
	if id, ok := id3Frames[field]; ok {
		return id, nil
	}
	if len(field) == 4 && strings.HasPrefix(field, "T") && strings.ToUpper(field) == field {
		return field, nil
	}
	return "", fmt.Errorf("no ID3v2 frame for field %q", field)
}

func (t *mp3Tagger) Pictures() []artwork.Picture {
	var out []artwork.Picture
	for _, f := range t.tag.GetFrames(t.tag.CommonID("Attached picture")) {
		pic, ok := f.(id3v2.PictureFrame)
		if !ok {
			continue
		}
		out = append(out, artwork.Picture{
			Type:        artwork.PictureType(pic.PictureType),
			MIME:        pic.MimeType,
			Description: pic.Description,
			Data:        pic.Picture,
		})
	}
	return out
}

func (t *mp3Tagger) EmbedCover(data []byte, mime string, replace bool) error {
	if replace {
		t.tag.DeleteFrames("APIC")
	}
	t.tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    mime,
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     data,
	})
	t.dirty = true
	return nil
}

func (t *mp3Tagger) RemovePictures() (int, error) {
	n := len(t.tag.GetFrames("APIC"))
	if n > 0 {
		t.tag.DeleteFrames("APIC")
		t.dirty = true
	}
	return n, nil
}

func (t *mp3Tagger) Save() error {
	if !t.dirty {
		return nil
	}
	t.tag.SetVersion(4)
	if err := t.tag.Save(); err != nil {
		return fmt.Errorf("save id3v2: %w", err)
	}
	t.dirty = false
	return nil
}

func (t *mp3Tagger) Close() error {
	return t.tag.Close()
}

// TextFrames returns the text of every T*** frame except TXXX, keyed by
// frame ID.
func (t *MP3Tagger) TextFrames() map[string]string {
	out := make(map[string]string)
	for id, frames := range t.tag.AllFrames() {
		if !strings.HasPrefix(id, "T") || id == "TXXX" {
			continue
		}
		var parts []string
		for _, f := range frames {
			if tf, ok := f.(id3v2.TextFrame); ok {
				parts = append(parts, tf.Text)
			}
		}
		if len(parts) > 0 {
			out[id] = strings.Join(parts, "\x00")
		}
	}
	return out
}

// SetTextFrame replaces a text frame by ID, writing UTF-8.
func (t *MP3Tagger) SetTextFrame(id, text string) {
	t.tag.DeleteFrames(id)
	t.tag.AddTextFrame(id, id3v2.EncodingUTF8, text)
	t.dirty = true
}

func splitNull(s string) []string {
	s = strings.TrimRight(s, "\x00")
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\x00")
}
