/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package version

import (
	"strings"
	"testing"
)

func TestStringIncludesCommit(t *testing.T) {
	old := Commit
	t.Cleanup(func() { Commit = old })

	Commit = "0123456789abcdef"
	got := String()
	if !strings.HasPrefix(got, "musictl "+Version) {
		t.Fatalf("unexpected version line %q", got)
	}
	if !strings.Contains(got, "0123456789ab,") {
		t.Fatalf("commit should be shortened: %q", got)
	}
}
