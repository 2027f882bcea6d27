/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package normalize canonicalises tag values: whitespace, "Various Artists"
// spellings, genre names and empty values.
package normalize

import (
	"sort"
	"strings"
	"unicode"
)

// Change records a single rewritten value. After is empty when the value was dropped.
type Change struct {
	Key    string
	Before string
	After  string
}

// Result is the outcome of Normalize.
type Result struct {
	Tags    map[string][]string
	Changes []Change
	// Removed lists keys whose every value was dropped.
	Removed []string
}

// Changed reports whether anything differs from the input.
func (r Result) Changed() bool {
	return len(r.Changes) > 0
}

// Normalize applies the rules to every value and returns a new mapping.
// The input is not modified. Lyrics keys pass through untouched.
func Normalize(tags map[string][]string) Result {
	res := Result{Tags: make(map[string][]string, len(tags))}

	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		values := tags[key]
		if IsLyricsKey(key) {
			res.Tags[key] = append([]string(nil), values...)
			continue
		}

		kept := make([]string, 0, len(values))
		for _, v := range values {
			nv := Value(key, v)
			if nv != v {
				res.Changes = append(res.Changes, Change{Key: key, Before: v, After: nv})
			}
			if nv != "" {
				kept = append(kept, nv)
			}
		}

		if len(kept) == 0 {
			if len(values) > 0 {
				res.Removed = append(res.Removed, key)
			}
			continue
		}
		res.Tags[key] = kept
	}

	return res
}

// Value normalises a single value for the given key.
func Value(key, value string) string {
	if IsLyricsKey(key) {
		return value
	}

	v := strings.Join(strings.Fields(value), " ")
	lk := strings.ToLower(key)

	if artistKeys[lk] && variousArtistsVariants[strings.ToLower(v)] {
		v = CanonicalVariousArtists
	}

	if genreKeys[lk] && v != "" {
		if canonical, ok := genreMappings[strings.ToLower(v)]; ok {
			v = canonical
		} else {
			v = TitleCase(v)
		}
	}

	return v
}

// IsLyricsKey reports whether a key carries lyrics, whose formatting is kept verbatim.
func IsLyricsKey(key string) bool {
	lk := strings.ToLower(key)
	return lyricsKeys[lk] || strings.HasPrefix(lk, "uslt")
}

// TitleCase upper-cases the first cased letter of every word and lower-cases
// the rest. Any non-cased character starts a new word.
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevCased := false
	for _, r := range s {
		cased := unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
		switch {
		case cased && prevCased:
			b.WriteRune(unicode.ToLower(r))
		case cased:
			b.WriteRune(unicode.ToTitle(r))
		default:
			b.WriteRune(r)
		}
		prevCased = cased
	}
	return b.String()
}
