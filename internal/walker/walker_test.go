/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package walker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func tree(t *testing.T) string {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.mp3"))
	touch(t, filepath.Join(root, "a.FLAC"))
	touch(t, filepath.Join(root, "cover.jpg"))
	touch(t, filepath.Join(root, "._a.flac"))
	touch(t, filepath.Join(root, "sub", "c.ogg"))
	touch(t, filepath.Join(root, "sub", "deeper", "d.wav"))
	return root
}

func rel(root string, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		r, _ := filepath.Rel(root, p)
		out[i] = filepath.ToSlash(r)
	}
	return out
}

func TestWalkRecursive(t *testing.T) {
	root := tree(t)
	files, err := Walk(context.Background(), root, Options{Recursive: true})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	want := []string{"a.FLAC", "b.mp3", "sub/c.ogg", "sub/deeper/d.wav"}
	if got := rel(root, files); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestWalkFlat(t *testing.T) {
	root := tree(t)
	files, err := Walk(context.Background(), root, Options{})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	want := []string{"a.FLAC", "b.mp3"}
	if got := rel(root, files); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestWalkFileRoot(t *testing.T) {
	root := tree(t)
	files, err := Walk(context.Background(), filepath.Join(root, "b.mp3"), Options{Recursive: true})
	if err != nil || len(files) != 1 {
		t.Fatalf("Walk = %v, %v", files, err)
	}
	files, err = Walk(context.Background(), filepath.Join(root, "cover.jpg"), Options{Recursive: true})
	if err != nil || len(files) != 0 {
		t.Fatalf("unsupported file root = %v, %v", files, err)
	}
}

func TestWalkNotFound(t *testing.T) {
	_, err := Walk(context.Background(), filepath.Join(t.TempDir(), "missing"), Options{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestWalkCustomMatch(t *testing.T) {
	root := tree(t)
	files, err := Walk(context.Background(), root, Options{
		Recursive: true,
		Match:     func(p string) bool { return strings.HasSuffix(p, ".jpg") },
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if got := rel(root, files); !reflect.DeepEqual(got, []string{"cover.jpg"}) {
		t.Fatalf("got %v", got)
	}
}

func TestWalkCancelled(t *testing.T) {
	root := tree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Walk(ctx, root, Options{Recursive: true}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}
