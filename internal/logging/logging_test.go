/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetupWithWriterFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupWithWriter("warn", &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Str("component", "walker").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "component=walker") {
		t.Fatalf("missing warn line: %q", out)
	}
}

func TestSetupWithWriterUnknownLevel(t *testing.T) {
	logger := SetupWithWriter("chatty", &bytes.Buffer{})
	if logger.GetLevel() != zerolog.WarnLevel {
		t.Fatalf("level = %s", logger.GetLevel())
	}
}

func TestLevel(t *testing.T) {
	if Level("error", true, false) != "debug" {
		t.Fatal("verbose should force debug")
	}
	if Level("error", false, true) != "debug" {
		t.Fatal("development should force debug")
	}
	if Level("error", false, false) != "error" {
		t.Fatal("configured level should pass through")
	}
}
