/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package audio

import (
	"fmt"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	goflac "github.com/go-flac/go-flac"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"

	"github.com/friendsincode/musictl/internal/artwork"
)

const flacVendor = "musictl"

type flacTagger struct {
	path     string
	file     *goflac.File
	comments *flacvorbis.MetaDataBlockVorbisComment
	dirty    bool
}

func openFLAC(path string) (*flacTagger, error) {
	f, err := parseFLAC(path)
	if err != nil {
		return nil, err
	}
	t := &flacTagger{path: path, file: f}
	for _, meta := range f.Meta {
		if meta.Type != goflac.VorbisComment {
			continue
		}
		cmts, err := flacvorbis.ParseFromMetaDataBlock(*meta)
		if err != nil {
			return nil, fmt.Errorf("parse vorbis comment: %w", err)
		}
		t.comments = cmts
		break
	}
	if t.comments == nil {
		t.comments = flacvorbis.New()
		t.comments.Vendor = flacVendor
	}
	return t, nil
}

// parseFLAC reads the file with go-flac, which indexes the first bytes of
// the frame data without checking their length.
func parseFLAC(path string) (f *goflac.File, err error) {
	defer func() {
		if r := recover(); r != nil {
			f, err = nil, fmt.Errorf("parse flac: %w", ErrNoAudioFrames)
		}
	}()
	f, err = goflac.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse flac: %w", err)
	}
	return f, nil
}

func (t *flacTagger) Format() Format { return FormatFLAC }

func (t *flacTagger) Fields() map[string][]string {
	out := make(map[string][]string)
	for _, c := range t.comments.Comments {
		key, value, ok := strings.Cut(c, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(key)
		out[key] = append(out[key], value)
	}
	return out
}

func (t *flacTagger) Set(field string, values []string) error {
	t.removeKey(field)
	name := vorbisKey(field)
	for _, v := range values {
		t.comments.Comments = append(t.comments.Comments, name+"="+v)
	}
	t.dirty = true
	return nil
}

func (t *flacTagger) Delete(field string) (bool, error) {
	found := t.removeKey(field)
	t.dirty = t.dirty || found
	return found, nil
}

// removeKey drops every comment whose name matches field, ignoring case.
func (t *flacTagger) removeKey(field string) bool {
	kept := t.comments.Comments[:0]
	found := false
	for _, c := range t.comments.Comments {
		key, _, _ := strings.Cut(c, "=")
		if strings.EqualFold(key, field) {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	t.comments.Comments = kept
	return found
}

func (t *flacTagger) Pictures() []artwork.Picture {
	var out []artwork.Picture
	for _, meta := range t.file.Meta {
		if meta.Type != goflac.Picture {
			continue
		}
		pic, err := flacpicture.ParseFromMetaDataBlock(*meta)
		if err != nil {
			continue
		}
		out = append(out, artwork.Picture{
			Type:        artwork.PictureType(pic.PictureType),
			MIME:        pic.MIME,
			Description: pic.Description,
			Width:       int(pic.Width),
			Height:      int(pic.Height),
			Data:        pic.ImageData,
		})
	}
	return out
}

func (t *flacTagger) EmbedCover(data []byte, mime string, replace bool) error {
	pic, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "Cover", data, mime)
	if err != nil {
		return fmt.Errorf("build picture block: %w", err)
	}
	if replace {
		t.dropPictures()
	}
	block := pic.Marshal()
	t.file.Meta = append(t.file.Meta, &block)
	t.dirty = true
	return nil
}

func (t *flacTagger) RemovePictures() (int, error) {
	n := t.dropPictures()
	t.dirty = t.dirty || n > 0
	return n, nil
}

func (t *flacTagger) dropPictures() int {
	kept := t.file.Meta[:0]
	n := 0
	for _, meta := range t.file.Meta {
		if meta.Type == goflac.Picture {
			n++
			continue
		}
		kept = append(kept, meta)
	}
	t.file.Meta = kept
	return n
}

func (t *flacTagger) Save() error {
	if !t.dirty {
		return nil
	}
	block := t.comments.Marshal()
	replaced := false
	for i, meta := range t.file.Meta {
		if meta.Type == goflac.VorbisComment {
			t.file.Meta[i] = &block
			replaced = true
			break
		}
	}
	if !replaced {
		t.file.Meta = append(t.file.Meta, &block)
	}
	if err := t.file.Save(t.path); err != nil {
		return fmt.Errorf("save flac: %w", err)
	}
	t.dirty = false
	return nil
}

func (t *flacTagger) Close() error { return nil }
