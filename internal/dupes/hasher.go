/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package dupes

import (
	"os"

	"github.com/friendsincode/musictl/internal/cache"
	"github.com/friendsincode/musictl/internal/hasher"
)

// Hasher produces the two fingerprints used by FindExact.
type Hasher interface {
	QuickHash(path string) (string, error)
	FullHash(path string) (string, error)
}

// FileHasher hashes files on disk, consulting Cache for full hashes when
// one is configured.
type FileHasher struct {
	Cache *cache.HashCache
}

func (FileHasher) QuickHash(path string) (string, error) {
	return hasher.QuickHash(path)
}

func (h FileHasher) FullHash(path string) (string, error) {
	if h.Cache == nil {
		return hasher.FullHash(path)
	}
	st, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if sum, ok := h.Cache.Lookup(path, st.Size(), st.ModTime()); ok {
		return sum, nil
	}
	sum, err := hasher.FullHash(path)
	if err != nil {
		return "", err
	}
	// A failed store only costs a rehash next run.
	_ = h.Cache.Store(path, st.Size(), st.ModTime(), sum)
	return sum, nil
}
