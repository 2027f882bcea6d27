/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package pattern compiles filename templates such as "{artist} - {title}"
// into anchored matchers and extracts tag values from file names.
package pattern

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Recognised template fields.
const (
	FieldArtist      = "artist"
	FieldAlbum       = "album"
	FieldTitle       = "title"
	FieldTrack       = "track"
	FieldYear        = "year"
	FieldAlbumArtist = "albumartist"
)

var (
	// ErrUnknownField is returned when a template names a field outside the supported set.
	ErrUnknownField = errors.New("unknown pattern field")
	// ErrNoFields is returned for templates without any placeholder.
	ErrNoFields = errors.New("pattern must contain at least one field")
	// ErrDuplicateField is returned when a placeholder appears twice.
	ErrDuplicateField = errors.New("duplicate pattern field")
)

var placeholderRe = regexp.MustCompile(`\{(\w+)\}`)

var fieldExpr = map[string]string{
	FieldArtist:      `.+?`,
	FieldAlbum:       `.+?`,
	FieldTitle:       `.+?`,
	FieldAlbumArtist: `.+?`,
	FieldTrack:       `\d+`,
	FieldYear:        `\d{4}`,
}

// SupportedFields lists the placeholders a template may use.
func SupportedFields() []string {
	return []string{FieldArtist, FieldAlbum, FieldTitle, FieldTrack, FieldYear, FieldAlbumArtist}
}

// Pattern is an immutable compiled filename template.
type Pattern struct {
	template string
	fields   []string
	re       *regexp.Regexp
}

// Compile turns a template into a Pattern. Literal text is matched verbatim,
// {track} matches digits, {year} matches exactly four digits and every other
// field matches non-greedily. The matcher covers the whole file name and
// tolerates a trailing extension.
func Compile(template string) (*Pattern, error) {
	var (
		b      strings.Builder
		fields []string
		seen   = make(map[string]bool)
		last   int
	)

	b.WriteString("^")
	for _, loc := range placeholderRe.FindAllStringSubmatchIndex(template, -1) {
		name := template[loc[2]:loc[3]]
		expr, ok := fieldExpr[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownField, name, strings.Join(SupportedFields(), ", "))
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateField, name)
		}
		seen[name] = true
		fields = append(fields, name)

		b.WriteString(regexp.QuoteMeta(template[last:loc[0]]))
		fmt.Fprintf(&b, "(?P<%s>%s)", name, expr)
		last = loc[1]
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoFields, template)
	}
	b.WriteString(regexp.QuoteMeta(template[last:]))
	b.WriteString(`(?:\.\w+)?$`)

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", template, err)
	}

	return &Pattern{template: template, fields: fields, re: re}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(template string) *Pattern {
	p, err := Compile(template)
	if err != nil {
		panic(err)
	}
	return p
}

// Template returns the original template string.
func (p *Pattern) Template() string { return p.template }

// Fields returns the placeholders in template order.
func (p *Pattern) Fields() []string {
	out := make([]string, len(p.fields))
	copy(out, p.fields)
	return out
}

// String returns the generated regular expression.
func (p *Pattern) String() string { return p.re.String() }

// Parse matches a file name (directory components are ignored) and returns the
// extracted fields, or nil when the name does not match the whole pattern.
func (p *Pattern) Parse(filename string) map[string]string {
	name := filepath.Base(filename)
	m := p.re.FindStringSubmatch(name)
	if m == nil {
		return nil
	}

	result := make(map[string]string, len(p.fields))
	for i, group := range p.re.SubexpNames() {
		if group == "" {
			continue
		}
		value := strings.TrimSpace(m[i])
		if group == FieldTrack {
			if n, err := strconv.Atoi(value); err == nil {
				value = strconv.Itoa(n)
			}
		}
		result[group] = value
	}
	return result
}
