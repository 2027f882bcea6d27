/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package encoding detects and reverses mojibake produced by decoding text
// through the wrong legacy code page.
package encoding

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	xenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// ErrUnknownEncoding is returned for names outside the registry.
var ErrUnknownEncoding = errors.New("unknown encoding")

// errUndecodable marks byte sequences the codec cannot represent.
var errUndecodable = errors.New("undecodable byte sequence")

// Encoding is a registered legacy code page.
type Encoding struct {
	Name        string
	Description string
	codec       xenc.Encoding
}

// registry holds the supported legacy encodings in presentation order.
var registry = []Encoding{
	{Name: "cp1251", Description: "Windows-1251 (Cyrillic)", codec: charmap.Windows1251},
	{Name: "cp1252", Description: "Windows-1252 (Western European)", codec: charmap.Windows1252},
	{Name: "koi8-r", Description: "KOI8-R (Russian)", codec: charmap.KOI8R},
	{Name: "koi8-u", Description: "KOI8-U (Ukrainian)", codec: charmap.KOI8U},
	{Name: "iso-8859-1", Description: "ISO 8859-1 (Latin-1)", codec: charmap.ISO8859_1},
	{Name: "iso-8859-5", Description: "ISO 8859-5 (Cyrillic)", codec: charmap.ISO8859_5},
	{Name: "shift_jis", Description: "Shift JIS (Japanese)", codec: japanese.ShiftJIS},
	{Name: "gb2312", Description: "GB2312 (Chinese)", codec: simplifiedchinese.GBK},
	{Name: "euc-kr", Description: "EUC-KR (Korean)", codec: korean.EUCKR},
}

// Names returns the registered encoding names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for _, e := range registry {
		names = append(names, e.Name)
	}
	return names
}

// Lookup finds a registered encoding by name (case-insensitive).
func Lookup(name string) (Encoding, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, e := range registry {
		if e.Name == n {
			return e, nil
		}
	}
	return Encoding{}, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownEncoding, name, strings.Join(Names(), ", "))
}

// Encode converts text to the code page. Runes the code page cannot
// represent are an error.
func (e Encoding) Encode(text string) ([]byte, error) {
	return e.codec.NewEncoder().Bytes([]byte(text))
}

// Decode converts bytes from the code page. Sequences that do not map to a
// character are an error.
func (e Encoding) Decode(data []byte) (string, error) {
	out, err := e.codec.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(out) || strings.ContainsRune(string(out), utf8.RuneError) {
		return "", errUndecodable
	}
	return string(out), nil
}

// decodeUTF8 is a strict UTF-8 decode.
func decodeUTF8(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errUndecodable
	}
	return string(data), nil
}

// encodeLatin1 maps every rune to a single byte, failing above U+00FF.
func encodeLatin1(text string) ([]byte, error) {
	out := make([]byte, 0, len(text))
	for _, r := range text {
		if r > 0xFF {
			return nil, fmt.Errorf("rune %U not representable in latin-1", r)
		}
		out = append(out, byte(r))
	}
	return out, nil
}
