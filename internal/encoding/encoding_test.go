/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package encoding

import (
	"errors"
	"testing"
)

// corruptUTF8 simulates UTF-8 bytes decoded through a legacy code page.
func corruptUTF8(t *testing.T, original, name string) string {
	t.Helper()
	enc, err := Lookup(name)
	if err != nil {
		t.Fatalf("lookup %s: %v", name, err)
	}
	s, err := enc.Decode([]byte(original))
	if err != nil {
		t.Fatalf("cannot build mojibake for %q via %s: %v", original, name, err)
	}
	return s
}

// corruptLatin1 simulates legacy bytes decoded as Latin-1.
func corruptLatin1(t *testing.T, original, name string) string {
	t.Helper()
	enc, err := Lookup(name)
	if err != nil {
		t.Fatalf("lookup %s: %v", name, err)
	}
	raw, err := enc.Encode(original)
	if err != nil {
		t.Fatalf("encode %q as %s: %v", original, name, err)
	}
	runes := make([]rune, len(raw))
	for i, b := range raw {
		runes[i] = rune(b)
	}
	return string(runes)
}

func TestDetectUTF8DoubleEncoding(t *testing.T) {
	original := "Аквариум"
	corrupted := corruptUTF8(t, original, "cp1251")
	if corrupted == original {
		t.Fatal("corruption did not change the text")
	}

	s, ok := Detect(corrupted, "cp1251")
	if !ok {
		t.Fatalf("expected %q to be flagged", corrupted)
	}
	if s.Pattern != PatternUTF8 {
		t.Fatalf("expected utf8 pattern, got %v", s.Pattern)
	}
	if s.Fixed != original {
		t.Fatalf("fixed = %q, want %q", s.Fixed, original)
	}
	if AnomalyCount(s.Fixed, "cp1251") >= AnomalyCount(corrupted, "cp1251") {
		t.Fatal("fix must reduce anomalies")
	}

	got, ok := Resolve(s.Bytes, "cp1251")
	if !ok || got != original {
		t.Fatalf("resolve = %q (%v), want %q", got, ok, original)
	}
}

func TestDetectWrongHeader(t *testing.T) {
	original := "Тест"
	corrupted := corruptLatin1(t, original, "cp1251")

	s, ok := Detect(corrupted, "cp1251")
	if !ok {
		t.Fatalf("expected %q to be flagged", corrupted)
	}
	if s.Pattern != PatternLegacy {
		t.Fatalf("expected legacy pattern, got %v", s.Pattern)
	}
	got, ok := Resolve(s.Bytes, "cp1251")
	if !ok || got != original {
		t.Fatalf("resolve = %q (%v), want %q", got, ok, original)
	}
}

func TestDetectJapaneseWrongHeader(t *testing.T) {
	original := "こんにちは"
	corrupted := corruptLatin1(t, original, "shift_jis")

	s, ok := Detect(corrupted, "shift_jis")
	if !ok {
		t.Fatalf("expected %q to be flagged", corrupted)
	}
	if s.Fixed != original {
		t.Fatalf("fixed = %q, want %q", s.Fixed, original)
	}
}

func TestDetectCorrectTextUntouched(t *testing.T) {
	for _, text := range []string{"Привет", "Кино", "Группа крови", "Ёлка"} {
		if _, ok := Detect(text, "cp1251"); ok {
			t.Errorf("correct text %q must not be flagged", text)
		}
	}
}

func TestDetectASCIIImmunity(t *testing.T) {
	samples := []string{"", "Hello World", "AC/DC - Back in Black", "~!@#$%^&*()_+", "01. Track"}
	for _, name := range Names() {
		for _, text := range samples {
			if _, ok := Detect(text, name); ok {
				t.Errorf("ASCII %q flagged for %s", text, name)
			}
		}
	}
}

func TestDetectPermissiveFallback(t *testing.T) {
	// cp1252 has no script rule, so any differing reversal is accepted.
	s, ok := Detect("Ã©tÃ©", "cp1252")
	if !ok {
		t.Fatal("expected permissive fallback to accept the repair")
	}
	if s.Fixed != "été" {
		t.Fatalf("fixed = %q", s.Fixed)
	}
	if AnomalyCount("x", "cp1252") != -1 {
		t.Fatal("cp1252 has no anomaly rule")
	}
}

func TestDetectUnknownEncoding(t *testing.T) {
	if _, ok := Detect("РђРєРІР°", "utf-16"); ok {
		t.Fatal("unknown encoding must degrade to not suspect")
	}
	if _, err := Lookup("utf-16"); !errors.Is(err, ErrUnknownEncoding) {
		t.Fatalf("expected ErrUnknownEncoding, got %v", err)
	}
}

func TestDetectFields(t *testing.T) {
	fields := map[string]string{
		"TIT2": corruptUTF8(t, "Группа крови", "cp1251"),
		"TPE1": "Kino",
		"TALB": "Привет",
	}
	got := DetectFields(fields, "cp1251")
	if len(got) != 1 {
		t.Fatalf("expected exactly one suspect, got %v", got)
	}
	raw, ok := got["TIT2"]
	if !ok {
		t.Fatal("TIT2 should be suspect")
	}
	fixed, ok := Resolve(raw, "cp1251")
	if !ok || fixed != "Группа крови" {
		t.Fatalf("resolve = %q", fixed)
	}
}

func TestGuess(t *testing.T) {
	raw := []byte{0xCF, 0xF0, 0xE8, 0xE2, 0xE5, 0xF2}
	candidates := Guess(raw)
	if len(candidates) == 0 {
		t.Fatal("expected candidates")
	}

	found := map[string]string{}
	for _, c := range candidates {
		if c.Description == "" {
			t.Errorf("candidate %s missing description", c.Encoding)
		}
		found[c.Encoding] = c.Text
	}
	if found["cp1251"] != "Привет" {
		t.Fatalf("cp1251 reading = %q", found["cp1251"])
	}
	if _, ok := found["iso-8859-1"]; !ok {
		t.Fatal("latin-1 always decodes")
	}
	if candidates[0].Encoding != "cp1251" {
		t.Fatalf("candidates must follow registry order, first = %s", candidates[0].Encoding)
	}
}

func TestRegistry(t *testing.T) {
	want := []string{"cp1251", "cp1252", "koi8-r", "koi8-u", "iso-8859-1", "iso-8859-5", "shift_jis", "gb2312", "euc-kr"}
	got := Names()
	if len(got) != len(want) {
		t.Fatalf("names = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("names[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if _, err := Lookup(" CP1251 "); err != nil {
		t.Fatalf("lookup should be case-insensitive: %v", err)
	}
}
