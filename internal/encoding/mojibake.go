/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package encoding

import (
	"strings"
)

// Pattern identifies which reversal produced a fix.
type Pattern int

const (
	// PatternNone means no reversal applied.
	PatternNone Pattern = iota
	// PatternUTF8 reverses UTF-8 bytes that were decoded through the legacy
	// code page: encode with the code page, decode as UTF-8.
	PatternUTF8
	// PatternLegacy reverses legacy bytes that were decoded as Latin-1:
	// encode as Latin-1, decode with the code page.
	PatternLegacy
)

func (p Pattern) String() string {
	switch p {
	case PatternUTF8:
		return "utf8-double-encoding"
	case PatternLegacy:
		return "wrong-header"
	default:
		return "none"
	}
}

// Suspect is an accepted mojibake repair for a single value.
type Suspect struct {
	// Bytes are the intermediate bytes from the successful encode step.
	Bytes   []byte
	Pattern Pattern
	Fixed   string
}

// SuspectTagMap maps a tag key to the intermediate bytes of its repair.
type SuspectTagMap map[string][]byte

type candidate struct {
	bytes []byte
	fixed string
}

type hypothesis struct {
	pattern Pattern
	try     func(text string, enc Encoding) (candidate, bool)
}

// hypotheses are tried in order; the first structurally valid result that
// differs from the input is the only one judged by the acceptance gate.
var hypotheses = []hypothesis{
	{pattern: PatternUTF8, try: tryUTF8DoubleEncoding},
	{pattern: PatternLegacy, try: tryWrongHeader},
}

func tryUTF8DoubleEncoding(text string, enc Encoding) (candidate, bool) {
	raw, err := enc.Encode(text)
	if err != nil {
		return candidate{}, false
	}
	fixed, err := decodeUTF8(raw)
	if err != nil {
		return candidate{}, false
	}
	return candidate{bytes: raw, fixed: fixed}, true
}

func tryWrongHeader(text string, enc Encoding) (candidate, bool) {
	raw, err := encodeLatin1(text)
	if err != nil {
		return candidate{}, false
	}
	fixed, err := enc.Decode(raw)
	if err != nil {
		return candidate{}, false
	}
	return candidate{bytes: raw, fixed: fixed}, true
}

// Detect reports whether text looks like mojibake relative to the named
// encoding and returns the accepted repair. Unknown encodings and codec
// failures simply yield false.
func Detect(text, encodingName string) (Suspect, bool) {
	enc, err := Lookup(encodingName)
	if err != nil {
		return Suspect{}, false
	}
	return detect(text, enc)
}

func detect(text string, enc Encoding) (Suspect, bool) {
	if isASCII(text) {
		return Suspect{}, false
	}

	for _, h := range hypotheses {
		c, ok := h.try(text, enc)
		if !ok || c.fixed == text {
			continue
		}
		if !accept(text, c.fixed, enc.Name) {
			return Suspect{}, false
		}
		return Suspect{Bytes: c.bytes, Pattern: h.pattern, Fixed: c.fixed}, true
	}
	return Suspect{}, false
}

// DetectFields runs Detect over every value and keeps the accepted repairs.
func DetectFields(fields map[string]string, encodingName string) SuspectTagMap {
	enc, err := Lookup(encodingName)
	if err != nil {
		return nil
	}
	out := make(SuspectTagMap)
	for key, value := range fields {
		if s, ok := detect(value, enc); ok {
			out[key] = s.Bytes
		}
	}
	return out
}

// Resolve materialises a repair from intermediate bytes: UTF-8 first
// (double-encoding repairs), then the legacy code page (wrong-header repairs).
func Resolve(intermediate []byte, encodingName string) (string, bool) {
	if s, err := decodeUTF8(intermediate); err == nil {
		return s, true
	}
	enc, err := Lookup(encodingName)
	if err != nil {
		return "", false
	}
	s, err := enc.Decode(intermediate)
	if err != nil {
		return "", false
	}
	return s, true
}

// accept is the safety gate: the repair must contain strictly fewer
// characters outside the script expected for the encoding. Encodings without
// a script rule accept any differing repair; that fallback is deliberately
// permissive.
func accept(original, fixed, encodingName string) bool {
	inRange := scriptFor(encodingName)
	if inRange == nil {
		return fixed != original
	}
	return countAnomalies(fixed, inRange) < countAnomalies(original, inRange)
}

func scriptFor(name string) func(rune) bool {
	switch {
	case strings.HasPrefix(name, "cp1251"), strings.HasPrefix(name, "koi8"):
		return isBasicCyrillic
	case strings.HasPrefix(name, "shift_jis"), strings.HasPrefix(name, "euc-jp"):
		return isJapanese
	case strings.HasPrefix(name, "gb"), strings.HasPrefix(name, "big5"):
		return isCJK
	default:
		return nil
	}
}

// AnomalyCount counts characters outside the script expected for the
// encoding. It returns -1 for encodings without a script rule.
func AnomalyCount(text, encodingName string) int {
	inRange := scriptFor(encodingName)
	if inRange == nil {
		return -1
	}
	return countAnomalies(text, inRange)
}

func countAnomalies(text string, inRange func(rune) bool) int {
	n := 0
	for _, r := range text {
		if !inRange(r) {
			n++
		}
	}
	return n
}

func isBasicCyrillic(r rune) bool { return r >= 0x0410 && r <= 0x044F }

func isCJK(r rune) bool { return r >= 0x4E00 && r <= 0x9FFF }

func isJapanese(r rune) bool { return (r >= 0x3040 && r <= 0x30FF) || isCJK(r) }

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
