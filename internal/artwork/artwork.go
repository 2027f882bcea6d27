/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package artwork describes embedded pictures and locates cover images on disk.
package artwork

import (
	"encoding/binary"
	"fmt"
)

// MIME types recognised by DetectImage.
const (
	MIMEJPEG    = "image/jpeg"
	MIMEPNG     = "image/png"
	MIMEUnknown = "application/octet-stream"
)

// PictureType is the APIC / FLAC picture type code.
type PictureType int

const (
	TypeOther      PictureType = 0
	TypeFrontCover PictureType = 3
	TypeBackCover  PictureType = 4
	TypeLeaflet    PictureType = 5
	TypeMedia      PictureType = 6
	TypeLeadArtist PictureType = 7
	TypeArtist     PictureType = 8
)

var typeNames = map[PictureType]string{
	TypeOther:      "Other",
	TypeFrontCover: "Front Cover",
	TypeBackCover:  "Back Cover",
	TypeLeaflet:    "Leaflet",
	TypeMedia:      "Media",
	TypeLeadArtist: "Lead Artist",
	TypeArtist:     "Artist",
}

func (t PictureType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type %d", int(t))
}

// Picture is one embedded image as stored in a tag.
type Picture struct {
	Type        PictureType
	MIME        string
	Description string
	Width       int
	Height      int
	Data        []byte
}

// Record summarizes a picture for display.
type Record struct {
	MIME   string
	Size   int
	Type   string
	Width  int
	Height int
}

// Dimensions renders "WxH", or "-" when unknown.
func (r Record) Dimensions() string {
	if r.Width > 0 && r.Height > 0 {
		return fmt.Sprintf("%dx%d", r.Width, r.Height)
	}
	return "-"
}

// RecordOf builds a Record, sniffing dimensions when the tag did not store them.
func RecordOf(p Picture) Record {
	r := Record{
		MIME:   p.MIME,
		Size:   len(p.Data),
		Type:   p.Type.String(),
		Width:  p.Width,
		Height: p.Height,
	}
	if r.Width == 0 || r.Height == 0 {
		_, w, h := DetectImage(p.Data)
		r.Width, r.Height = w, h
	}
	return r
}

// DetectImage returns the MIME type and, where the header allows, the
// pixel dimensions of an encoded image.
func DetectImage(data []byte) (mime string, width, height int) {
	if len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		w, h := jpegSize(data)
		return MIMEJPEG, w, h
	}
	if len(data) >= 8 && string(data[:8]) == "\x89PNG\r\n\x1a\n" {
		if len(data) >= 24 {
			width = int(binary.BigEndian.Uint32(data[16:20]))
			height = int(binary.BigEndian.Uint32(data[20:24]))
		}
		return MIMEPNG, width, height
	}
	return MIMEUnknown, 0, 0
}

// jpegSize walks JPEG markers until a start-of-frame segment.
func jpegSize(data []byte) (int, int) {
	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			return 0, 0
		}
		marker := data[i+1]
		if marker == 0xFF {
			i++
			continue
		}
		if marker == 0xD8 || marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7) {
			i += 2
			continue
		}
		segLen := int(binary.BigEndian.Uint16(data[i+2 : i+4]))
		if segLen < 2 {
			return 0, 0
		}
		if isSOF(marker) {
			if i+9 > len(data) {
				return 0, 0
			}
			h := int(binary.BigEndian.Uint16(data[i+5 : i+7]))
			w := int(binary.BigEndian.Uint16(data[i+7 : i+9]))
			return w, h
		}
		i += 2 + segLen
	}
	return 0, 0
}

// SOF0..SOF15 excluding DHT (C4), JPG (C8) and DAC (CC).
func isSOF(m byte) bool {
	return m >= 0xC0 && m <= 0xCF && m != 0xC4 && m != 0xC8 && m != 0xCC
}

// ExtractName is the file name used when writing a cover out of a tag.
func ExtractName(mime string) string {
	if mime == MIMEPNG {
		return "cover.png"
	}
	return "cover.jpg"
}
