/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package encoding

// Candidate is one possible reading of raw bytes.
type Candidate struct {
	Encoding    string `json:"encoding"`
	Description string `json:"description"`
	Text        string `json:"text"`
}

// Guess decodes raw bytes with every registered encoding and returns the
// readings that succeed. No acceptance gate applies; the result is meant for
// manual inspection.
func Guess(raw []byte) []Candidate {
	var out []Candidate
	for _, enc := range registry {
		text, err := enc.Decode(raw)
		if err != nil || text == "" {
			continue
		}
		out = append(out, Candidate{Encoding: enc.Name, Description: enc.Description, Text: text})
	}
	return out
}
