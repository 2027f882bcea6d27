/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package artwork

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/friendsincode/musictl/internal/testutil"
)

func TestDetectImage(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		wantMIME string
		wantW    int
		wantH    int
	}{
		{"png", testutil.PNG(12, 7), MIMEPNG, 12, 7},
		{"jpeg", testutil.JPEG(30, 20), MIMEJPEG, 30, 20},
		{"garbage", []byte("not an image"), MIMEUnknown, 0, 0},
		{"empty", nil, MIMEUnknown, 0, 0},
		{"truncated png", []byte("\x89PNG\r\n\x1a\n"), MIMEPNG, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, w, h := DetectImage(tt.data)
			if mime != tt.wantMIME || w != tt.wantW || h != tt.wantH {
				t.Fatalf("DetectImage = (%q, %d, %d), want (%q, %d, %d)", mime, w, h, tt.wantMIME, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestPictureTypeString(t *testing.T) {
	if got := TypeFrontCover.String(); got != "Front Cover" {
		t.Fatalf("front cover = %q", got)
	}
	if got := PictureType(17).String(); got != "Type 17" {
		t.Fatalf("unknown type = %q", got)
	}
}

func TestRecordOfSniffsDimensions(t *testing.T) {
	r := RecordOf(Picture{Type: TypeBackCover, MIME: MIMEPNG, Data: testutil.PNG(4, 5)})
	if r.Dimensions() != "4x5" {
		t.Fatalf("dimensions = %q", r.Dimensions())
	}
	if r.Type != "Back Cover" {
		t.Fatalf("type = %q", r.Type)
	}
	if (Record{}).Dimensions() != "-" {
		t.Fatal("zero record should render '-'")
	}
}

func TestExtractName(t *testing.T) {
	if ExtractName(MIMEPNG) != "cover.png" {
		t.Fatal("png should extract to cover.png")
	}
	if ExtractName(MIMEJPEG) != "cover.jpg" || ExtractName("image/gif") != "cover.jpg" {
		t.Fatal("everything else extracts to cover.jpg")
	}
}

func touch(t *testing.T, path string) string {
	t.Helper()
	return testutil.WriteFile(t, path, []byte("img"))
}

func TestFindCoverImage(t *testing.T) {
	t.Run("named cover wins by priority", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, filepath.Join(dir, "folder.jpg"))
		want := touch(t, filepath.Join(dir, "Cover.PNG"))
		if got := FindCoverImage(dir); got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
	})

	t.Run("art subdirectory", func(t *testing.T) {
		dir := t.TempDir()
		want := touch(t, filepath.Join(dir, "scans", "front.jpeg"))
		if got := FindCoverImage(dir); got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
	})

	t.Run("parent of disc folder", func(t *testing.T) {
		album := t.TempDir()
		disc := filepath.Join(album, "CD1")
		if err := os.Mkdir(disc, 0o755); err != nil {
			t.Fatal(err)
		}
		want := touch(t, filepath.Join(album, "cover.jpg"))
		if got := FindCoverImage(disc); got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
	})

	t.Run("single unnamed image", func(t *testing.T) {
		parent := t.TempDir()
		dir := filepath.Join(parent, "album")
		want := touch(t, filepath.Join(dir, "scan001.jpg"))
		touch(t, filepath.Join(dir, "._scan002.jpg"))
		if got := FindCoverImage(dir); got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
	})

	t.Run("ambiguous images", func(t *testing.T) {
		parent := t.TempDir()
		dir := filepath.Join(parent, "album")
		touch(t, filepath.Join(dir, "a.jpg"))
		touch(t, filepath.Join(dir, "b.png"))
		if got := FindCoverImage(dir); got != "" {
			t.Fatalf("got %q, want none", got)
		}
	})
}
