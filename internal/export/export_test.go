/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/friendsincode/musictl/internal/audio"
	"github.com/friendsincode/musictl/internal/dupes"
	"github.com/friendsincode/musictl/internal/encoding"
	"github.com/friendsincode/musictl/internal/library"
	"github.com/friendsincode/musictl/internal/storage"
)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)
	return rows
}

func hiresReport() HiResReport {
	return HiResReport{
		ScanPath:  "/music",
		Threshold: 48000,
		Total:     3,
		Files: []audio.Metadata{
			{Path: "/music/a.flac", Format: audio.FormatFLAC, SampleRate: 96000, BitDepth: 24, Duration: 12.5, Channels: 2},
		},
	}
}

func TestHiResCSV(t *testing.T) {
	data, err := Render(hiresReport(), FormatCSV, "run-1")
	require.NoError(t, err)
	rows := readCSV(t, data)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"File Path", "Format", "Sample Rate (Hz)", "Bit Depth", "Duration (seconds)", "Channels"}, rows[0])
	assert.Equal(t, []string{"/music/a.flac", "FLAC", "96000", "24", "12.50", "2"}, rows[1])
}

func TestHiResJSON(t *testing.T) {
	data, err := Render(hiresReport(), FormatJSON, "run-1")
	require.NoError(t, err)

	var doc struct {
		RunID    string         `json:"run_id"`
		Report   string         `json:"report"`
		ScanPath string         `json:"scan_path"`
		Summary  map[string]int `json:"summary"`
		Items    []hiresItem    `json:"items"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "run-1", doc.RunID)
	assert.Equal(t, "hires", doc.Report)
	assert.Equal(t, "/music", doc.ScanPath)
	assert.Equal(t, 1, doc.Summary["hires_files"])
	require.Len(t, doc.Items, 1)
	assert.Equal(t, 96000, doc.Items[0].SampleRate)
}

func TestDupesCSV(t *testing.T) {
	r := DupesReport{
		ScanPath: "/music",
		Mode:     "exact",
		Groups: []dupes.Group{{Members: []dupes.Member{
			{Path: "/music/a.mp3", Size: 10, Status: dupes.StatusKeep},
			{Path: "/music/b.mp3", Size: 10, Status: dupes.StatusDuplicate},
		}}},
	}
	data, err := Render(r, FormatCSV, "")
	require.NoError(t, err)
	rows := readCSV(t, data)
	assert.Equal(t, [][]string{
		{"Group", "File", "Size", "Status"},
		{"1", "/music/a.mp3", "10", "keep"},
		{"1", "/music/b.mp3", "10", "duplicate"},
	}, rows)

	data, err = Render(r, FormatJSON, "abc")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	summary := doc["summary"].(map[string]any)
	assert.EqualValues(t, 10, summary["wasted_bytes"])
	assert.EqualValues(t, 1, summary["duplicate_files"])
}

func TestMissingAndEncodingCSV(t *testing.T) {
	missing := MissingReport{ScanPath: "/m", Total: 2, Files: []MissingItem{
		{Path: "/m/a.mp3", Format: audio.FormatMP3, Missing: []string{"title", "year"}},
	}}
	data, err := Render(missing, FormatCSV, "")
	require.NoError(t, err)
	rows := readCSV(t, data)
	assert.Equal(t, []string{"/m/a.mp3", "MP3", "title; year"}, rows[1])

	enc := EncodingReport{ScanPath: "/m", Total: 1, Files: 1, Tags: []EncodingItem{{
		Path: "/m/a.mp3",
		Tag:  "title",
		Guesses: []encoding.Candidate{
			{Encoding: "cp1251", Description: "Windows-1251 (Cyrillic)", Text: "Привет"},
			{Encoding: "koi8-r", Description: "KOI8-R (Russian)", Text: "оПХБЕР"},
		},
	}}}
	data, err = Render(enc, FormatCSV, "")
	require.NoError(t, err)
	rows = readCSV(t, data)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"File Path", "Tag", "Possible Encoding", "Description", "Decoded Text"}, rows[0])
	assert.Equal(t, "cp1251", rows[1][2])
}

func TestLibraryReport(t *testing.T) {
	s := library.NewStats("/music")
	s.Add(audio.Metadata{Format: audio.FormatFLAC, SampleRate: 44100, BitDepth: 16, Duration: 60, Size: 100})
	s.Add(audio.Metadata{Format: audio.FormatMP3, SampleRate: 44100, Duration: 30, Size: 50})

	data, err := Render(LibraryReport{Stats: s}, FormatCSV, "")
	require.NoError(t, err)
	rows := readCSV(t, data)
	assert.Equal(t, []string{"Library Statistics"}, rows[0])
	assert.Equal(t, []string{"Scan Path", "/music"}, rows[1])
	assert.Equal(t, []string{"Total Files", "2"}, rows[2])
	assert.Contains(t, rows, []string{"FLAC", "1", "60.00", "100", "50.0"})
	assert.Contains(t, rows, []string{"44100", "2", "100.0"})

	data, err = Render(LibraryReport{Stats: s}, FormatJSON, "r")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc["items"], 2)
}

func TestWriteSkipsEmptyReports(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.csv")
	store := storage.NewFilesystemStore("", zerolog.Nop())

	written, err := Write(context.Background(), store, dest, HiResReport{ScanPath: "/m"}, FormatCSV, "")
	require.NoError(t, err)
	assert.False(t, written)
	_, err = os.Stat(dest)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	written, err = Write(context.Background(), store, dest, hiresReport(), FormatCSV, "")
	require.NoError(t, err)
	assert.True(t, written)
	assert.FileExists(t, dest)
}
