/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package testutil synthesizes small audio and image files for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
)

// MPEG-1 Layer III, 128 kbit/s, 44.1 kHz, joint stereo.
var mpegHeader = []byte{0xFF, 0xFB, 0x90, 0x64}

// MPEGFrameLen is the length of one frame produced by MPEGFrames.
const MPEGFrameLen = 417

// MPEGFrames returns n back-to-back silent MPEG audio frames.
func MPEGFrames(n int) []byte {
	frame := make([]byte, MPEGFrameLen)
	copy(frame, mpegHeader)
	return bytes.Repeat(frame, n)
}

// WriteMP3 writes a tagless MP3 of 40 frames (about one second) and
// returns its path.
func WriteMP3(t testing.TB, path string) string {
	t.Helper()
	mkdir(t, path)
	if err := os.WriteFile(path, MPEGFrames(40), 0o644); err != nil {
		t.Fatalf("write mp3: %v", err)
	}
	return path
}

// WriteTaggedMP3 writes an MP3 and adds UTF-8 ID3v2.4 text frames keyed by
// frame ID.
func WriteTaggedMP3(t testing.TB, path string, frames map[string]string) string {
	t.Helper()
	WriteMP3(t, path)
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("open id3v2: %v", err)
	}
	defer tag.Close()
	tag.SetVersion(4)
	for id, text := range frames {
		tag.AddTextFrame(id, id3v2.EncodingUTF8, text)
	}
	if err := tag.Save(); err != nil {
		t.Fatalf("save id3v2: %v", err)
	}
	return path
}

// ID3v1Block builds a 128-byte ID3v1 tag.
func ID3v1Block(title, artist, album, year, comment string) []byte {
	b := make([]byte, 128)
	copy(b, "TAG")
	copy(b[3:33], title)
	copy(b[33:63], artist)
	copy(b[63:93], album)
	copy(b[93:97], year)
	copy(b[97:127], comment)
	b[127] = 255
	return b
}

// AppendID3v1 appends a v1 block to an existing file.
func AppendID3v1(t testing.TB, path string, block []byte) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	if _, err := f.Write(block); err != nil {
		t.Fatalf("append id3v1: %v", err)
	}
}

// FLACStream returns a minimal FLAC file: a STREAMINFO block followed by
// the start of a frame header.
func FLACStream(sampleRate, channels, bitsPerSample int, samples uint64) []byte {
	b := FLACMetadataOnly(sampleRate, channels, bitsPerSample, samples)
	return append(b, 0xFF, 0xF8, 0x69, 0x08, 0x00, 0x00)
}

// FLACMetadataOnly returns a STREAMINFO block with no frames after it, as
// left by a truncated download.
func FLACMetadataOnly(sampleRate, channels, bitsPerSample int, samples uint64) []byte {
	var buf bytes.Buffer
	buf.WriteString("fLaC")
	buf.Write([]byte{0x80, 0x00, 0x00, 34})

	info := make([]byte, 34)
	binary.BigEndian.PutUint16(info[0:2], 4096)
	binary.BigEndian.PutUint16(info[2:4], 4096)
	packed := uint64(sampleRate)<<44 |
		uint64(channels-1)<<41 |
		uint64(bitsPerSample-1)<<36 |
		samples&0xFFFFFFFFF
	binary.BigEndian.PutUint64(info[10:18], packed)
	buf.Write(info)
	return buf.Bytes()
}

// WriteFLAC writes FLACStream output to path.
func WriteFLAC(t testing.TB, path string, sampleRate, channels, bitsPerSample int, samples uint64) string {
	t.Helper()
	mkdir(t, path)
	if err := os.WriteFile(path, FLACStream(sampleRate, channels, bitsPerSample, samples), 0o644); err != nil {
		t.Fatalf("write flac: %v", err)
	}
	return path
}

// WAV returns a PCM RIFF/WAVE file of silent samples.
func WAV(sampleRate, channels, bitDepth, frames int) []byte {
	blockAlign := channels * bitDepth / 8
	dataLen := frames * blockAlign

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitDepth))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(make([]byte, dataLen))
	return buf.Bytes()
}

// PNG encodes a solid w×h image.
func PNG(w, h int) []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, solid(w, h))
	return buf.Bytes()
}

// JPEG encodes a solid w×h image.
func JPEG(w, h int) []byte {
	var buf bytes.Buffer
	_ = jpeg.Encode(&buf, solid(w, h), nil)
	return buf.Bytes()
}

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	return img
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) string {
	t.Helper()
	mkdir(t, path)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func mkdir(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
}
