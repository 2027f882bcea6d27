/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package id3v1 handles the 128-byte legacy tag at the end of MP3 files.
package id3v1

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bogem/id3v2/v2"
	"golang.org/x/text/encoding/charmap"
)

// Size is the fixed length of an ID3v1 block.
const Size = 128

var (
	ErrNotPresent = errors.New("no ID3v1 tag")
	// ErrConflictingOptions is returned when Migrate and Force are both set.
	ErrConflictingOptions = errors.New("cannot use both --migrate and --force")
)

// Tag is a decoded ID3v1 or ID3v1.1 block.
type Tag struct {
	Title   string
	Artist  string
	Album   string
	Year    string
	Comment string
	Track   int
	Genre   byte
}

// Empty reports whether every text field is blank.
func (t Tag) Empty() bool {
	return t.Title == "" && t.Artist == "" && t.Album == "" && t.Year == "" && t.Comment == ""
}

// Parse decodes a 128-byte block.
func Parse(block []byte) (*Tag, error) {
	if len(block) != Size || string(block[:3]) != "TAG" {
		return nil, ErrNotPresent
	}
	t := &Tag{
		Title:  field(block[3:33]),
		Artist: field(block[33:63]),
		Album:  field(block[63:93]),
		Year:   field(block[93:97]),
		Genre:  block[127],
	}
	// ID3v1.1 stores the track in the last comment byte after a zero.
	if block[125] == 0 && block[126] != 0 {
		t.Comment = field(block[97:125])
		t.Track = int(block[126])
	} else {
		t.Comment = field(block[97:127])
	}
	return t, nil
}

func field(b []byte) string {
	b = bytes.TrimRight(b, "\x00")
	s, _ := charmap.ISO8859_1.NewDecoder().Bytes(b)
	return strings.TrimRight(string(s), " ")
}

// Read returns the ID3v1 tag of the file at path.
func Read(path string) (*Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	block, err := trailer(f)
	if err != nil {
		return nil, err
	}
	return Parse(block)
}

func trailer(f *os.File) ([]byte, error) {
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if st.Size() < Size {
		return nil, ErrNotPresent
	}
	block := make([]byte, Size)
	if _, err := f.ReadAt(block, st.Size()-Size); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return block, nil
}

// Detect reports whether path carries ID3v1 (trailing "TAG") and ID3v2
// (leading "ID3") blocks.
func Detect(path string) (hasV1, hasV2 bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return false, false, err
	}
	defer f.Close()

	head := make([]byte, 3)
	if n, _ := f.ReadAt(head, 0); n == 3 {
		hasV2 = string(head) == "ID3"
	}
	block, err := trailer(f)
	if err != nil {
		if errors.Is(err, ErrNotPresent) {
			return false, hasV2, nil
		}
		return false, hasV2, err
	}
	return string(block[:3]) == "TAG", hasV2, nil
}

// Strip truncates the trailing ID3v1 block. The marker is re-checked so a
// file without one is never shortened.
func Strip(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	block, err := trailer(f)
	if err != nil {
		return err
	}
	if string(block[:3]) != "TAG" {
		return ErrNotPresent
	}
	st, err := f.Stat()
	if err != nil {
		return err
	}
	if err := f.Truncate(st.Size() - Size); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	return nil
}

// Migrate copies the non-empty fields of tag into the file's ID3v2 tag as
// UTF-8 frames. Existing frames with the same ID are replaced.
func Migrate(path string, tag *Tag) error {
	v2, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open id3v2: %w", err)
	}
	defer v2.Close()

	v2.SetVersion(4)
	text := []struct{ id, value string }{
		{"TIT2", tag.Title},
		{"TPE1", tag.Artist},
		{"TALB", tag.Album},
		{"TDRC", tag.Year},
	}
	for _, f := range text {
		if f.value == "" {
			continue
		}
		v2.DeleteFrames(f.id)
		v2.AddTextFrame(f.id, id3v2.EncodingUTF8, f.value)
	}
	if tag.Comment != "" {
		v2.DeleteFrames("COMM")
		v2.AddCommentFrame(id3v2.CommentFrame{
			Encoding: id3v2.EncodingUTF8,
			Language: "eng",
			Text:     tag.Comment,
		})
	}
	if err := v2.Save(); err != nil {
		return fmt.Errorf("save id3v2: %w", err)
	}
	return nil
}
