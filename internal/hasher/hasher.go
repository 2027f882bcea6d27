/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package hasher computes content fingerprints used by duplicate detection.
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
)

// ChunkSize is the number of bytes read from each edge of a file by QuickHash.
const ChunkSize = 8192

// QuickHash returns a cheap fingerprint combining the file size with its
// first and last chunk. Files no longer than two chunks only contribute the
// first chunk.
func QuickHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	size := info.Size()

	h := sha256.New()
	h.Write([]byte(strconv.FormatInt(size, 10)))

	buf := make([]byte, ChunkSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("read head: %w", err)
	}
	h.Write(buf[:n])

	if size > 2*ChunkSize {
		if _, err := f.Seek(-ChunkSize, io.SeekEnd); err != nil {
			return "", fmt.Errorf("seek tail: %w", err)
		}
		n, err := io.ReadFull(f, buf)
		if err != nil && err != io.ErrUnexpectedEOF {
			return "", fmt.Errorf("read tail: %w", err)
		}
		h.Write(buf[:n])
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// FullHash computes the SHA-256 hash of the whole file.
func FullHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
