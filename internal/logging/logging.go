/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures zerolog for the process. Diagnostics go to stderr so
// command output on stdout stays clean.
func Setup(level string) zerolog.Logger {
	return SetupWithWriter(level, nil)
}

// SetupWithWriter configures zerolog to write to w instead of stderr.
// An unknown level falls back to warn.
func SetupWithWriter(level string, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}

	if w == nil {
		w = os.Stderr
	}
	// Console writer for human-readable output
	consoleWriter := zerolog.ConsoleWriter{Out: w, NoColor: w != os.Stderr}

	logger := zerolog.New(consoleWriter).With().Timestamp().Logger().Level(lvl)
	log.Logger = logger
	return logger
}

// Level picks the effective level from the configured one and the
// --verbose flag.
func Level(configured string, verbose, development bool) string {
	if verbose || development {
		return zerolog.LevelDebugValue
	}
	return configured
}
