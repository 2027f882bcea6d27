/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package export renders scan results as CSV or JSON and writes them to a
// local path or an object store.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/friendsincode/musictl/internal/storage"
)

// ErrInvalidFormat is returned by ParseFormat for anything but csv or json.
var ErrInvalidFormat = errors.New("invalid format")

// Format is an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts csv or json in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q (expected csv or json)", ErrInvalidFormat, s)
}

// Report is a result set that can be exported.
type Report interface {
	// Kind names the report in JSON output.
	Kind() string
	// Empty reports whether there is nothing to export.
	Empty() bool
	// Rows returns the CSV records, header first.
	Rows() [][]string
	// Summary holds the report-level figures for JSON output.
	Summary() any
	// Items is the JSON list of findings.
	Items() any
	Path() string
}

type document struct {
	RunID    string `json:"run_id"`
	Report   string `json:"report"`
	ScanPath string `json:"scan_path"`
	Summary  any    `json:"summary"`
	Items    any    `json:"items"`
}

// Render encodes r in format f. runID is stamped on JSON documents.
func Render(r Report, f Format, runID string) ([]byte, error) {
	var buf bytes.Buffer
	switch f {
	case FormatCSV:
		w := csv.NewWriter(&buf)
		if err := w.WriteAll(r.Rows()); err != nil {
			return nil, fmt.Errorf("write csv: %w", err)
		}
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		doc := document{
			RunID:    runID,
			Report:   r.Kind(),
			ScanPath: r.Path(),
			Summary:  r.Summary(),
			Items:    r.Items(),
		}
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, f)
	}
	return buf.Bytes(), nil
}

// Write renders r and stores it under key. Nothing is written for an empty
// report, in which case written is false.
func Write(ctx context.Context, store storage.ObjectStore, key string, r Report, f Format, runID string) (written bool, err error) {
	if r.Empty() {
		return false, nil
	}
	data, err := Render(r, f, runID)
	if err != nil {
		return false, err
	}
	if err := store.Put(ctx, key, data); err != nil {
		return false, fmt.Errorf("export %s: %w", key, err)
	}
	return true, nil
}
