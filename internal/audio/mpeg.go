/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
)

var errNoMPEGFrame = errors.New("no MPEG audio frame found")

// How far past the ID3v2 tag to search for the first frame sync.
const mpegSearchWindow = 64 * 1024

const (
	mpeg1  = 3
	mpeg2  = 2
	mpeg25 = 0
)

var mpegBitrates = map[[2]int][16]int{
	{mpeg1, 1}: {0, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320, 352, 384, 416, 448, 0},
	{mpeg1, 2}: {0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384, 0},
	{mpeg1, 3}: {0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0},
	{mpeg2, 1}: {0, 32, 48, 56, 64, 80, 96, 112, 128, 144, 160, 176, 192, 224, 256, 0},
	{mpeg2, 2}: {0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0},
	{mpeg2, 3}: {0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0},
}

var mpegSampleRates = map[int][3]int{
	mpeg1:  {44100, 48000, 32000},
	mpeg2:  {22050, 24000, 16000},
	mpeg25: {11025, 12000, 8000},
}

type mpegHeader struct {
	version    int
	layer      int
	bitrate    int // kbit/s
	sampleRate int
	padding    bool
	mono       bool
}

func parseMPEGHeader(b []byte) (mpegHeader, bool) {
	if len(b) < 4 || b[0] != 0xFF || b[1]&0xE0 != 0xE0 {
		return mpegHeader{}, false
	}
	h := mpegHeader{version: int(b[1]>>3) & 0x3}
	if h.version == 1 {
		return h, false
	}
	switch (b[1] >> 1) & 0x3 {
	case 3:
		h.layer = 1
	case 2:
		h.layer = 2
	case 1:
		h.layer = 3
	default:
		return h, false
	}
	table := h.version
	if table == mpeg25 {
		table = mpeg2
	}
	brIdx := int(b[2] >> 4)
	srIdx := int(b[2]>>2) & 0x3
	if brIdx == 0 || brIdx == 15 || srIdx == 3 {
		return h, false
	}
	h.bitrate = mpegBitrates[[2]int{table, h.layer}][brIdx]
	h.sampleRate = mpegSampleRates[h.version][srIdx]
	h.padding = b[2]&0x2 != 0
	h.mono = b[3]>>6 == 3
	return h, true
}

func (h mpegHeader) samplesPerFrame() int {
	switch {
	case h.layer == 1:
		return 384
	case h.layer == 3 && h.version != mpeg1:
		return 576
	}
	return 1152
}

func (h mpegHeader) frameLength() int {
	if h.layer == 1 {
		n := 12 * h.bitrate * 1000 / h.sampleRate
		if h.padding {
			n++
		}
		return n * 4
	}
	n := h.samplesPerFrame() / 8 * h.bitrate * 1000 / h.sampleRate
	if h.padding {
		n++
	}
	return n
}

// sideInfoLen is the Layer III side information size, which sits
// between the header and a Xing/Info block.
func (h mpegHeader) sideInfoLen() int {
	switch {
	case h.version == mpeg1 && h.mono:
		return 17
	case h.version == mpeg1:
		return 32
	case h.mono:
		return 9
	}
	return 17
}

// id3v2Size returns the total length of a leading ID3v2 tag, or 0.
func id3v2Size(head []byte) int64 {
	if len(head) < 10 || string(head[:3]) != "ID3" {
		return 0
	}
	size := int64(head[6]&0x7F)<<21 | int64(head[7]&0x7F)<<14 | int64(head[8]&0x7F)<<7 | int64(head[9]&0x7F)
	total := 10 + size
	if head[5]&0x10 != 0 {
		total += 10
	}
	return total
}

// mpegProperties locates the first frame and derives duration from a
// Xing/Info or VBRI header, falling back to a constant bitrate estimate.
func mpegProperties(path string) (streamInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return streamInfo{}, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return streamInfo{}, err
	}
	size := st.Size()

	head := make([]byte, 10)
	if _, err := io.ReadFull(f, head); err != nil {
		return streamInfo{}, errNoMPEGFrame
	}
	start := id3v2Size(head)

	buf := make([]byte, mpegSearchWindow)
	n, err := f.ReadAt(buf, start)
	if err != nil && !errors.Is(err, io.EOF) {
		return streamInfo{}, err
	}
	buf = buf[:n]

	off, h, ok := findFrame(buf)
	if !ok {
		return streamInfo{}, errNoMPEGFrame
	}
	audioStart := start + int64(off)
	audioBytes := size - audioStart
	if hasV1Trailer(f, size) {
		audioBytes -= 128
	}

	info := streamInfo{SampleRate: h.sampleRate, Channels: 2}
	if h.mono {
		info.Channels = 1
	}

	frame := buf[off:]
	if frames := vbrFrameCount(frame, h); frames > 0 {
		info.Duration = float64(frames) * float64(h.samplesPerFrame()) / float64(h.sampleRate)
		if info.Duration > 0 {
			info.Bitrate = int(float64(audioBytes*8) / info.Duration)
		}
		return info, nil
	}
	info.Bitrate = h.bitrate * 1000
	info.Duration = float64(audioBytes*8) / float64(info.Bitrate)
	return info, nil
}

// findFrame returns the first offset holding a valid header that is
// followed by another valid header, or by the end of the buffer.
func findFrame(buf []byte) (int, mpegHeader, bool) {
	for i := 0; i+4 <= len(buf); i++ {
		if buf[i] != 0xFF {
			continue
		}
		h, ok := parseMPEGHeader(buf[i:])
		if !ok {
			continue
		}
		next := i + h.frameLength()
		if next+4 > len(buf) {
			return i, h, true
		}
		if _, ok := parseMPEGHeader(buf[next:]); ok {
			return i, h, true
		}
	}
	return 0, mpegHeader{}, false
}

func vbrFrameCount(frame []byte, h mpegHeader) int {
	xing := 4 + h.sideInfoLen()
	if len(frame) >= xing+12 {
		tag := frame[xing : xing+4]
		if bytes.Equal(tag, []byte("Xing")) || bytes.Equal(tag, []byte("Info")) {
			flags := binary.BigEndian.Uint32(frame[xing+4 : xing+8])
			if flags&0x1 != 0 {
				return int(binary.BigEndian.Uint32(frame[xing+8 : xing+12]))
			}
		}
	}
	const vbri = 4 + 32
	if len(frame) >= vbri+18 && bytes.Equal(frame[vbri:vbri+4], []byte("VBRI")) {
		return int(binary.BigEndian.Uint32(frame[vbri+14 : vbri+18]))
	}
	return 0
}

func hasV1Trailer(f *os.File, size int64) bool {
	if size < 128 {
		return false
	}
	marker := make([]byte, 3)
	if _, err := f.ReadAt(marker, size-128); err != nil {
		return false
	}
	return string(marker) == "TAG"
}
