/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package id3v1

import "fmt"

// Options controls how files holding only ID3v1 are treated.
type Options struct {
	// Migrate copies ID3v1 fields into a new ID3v2 tag before stripping.
	Migrate bool
	// Force strips even when no ID3v2 tag exists, losing the metadata.
	Force bool
}

func (o Options) Validate() error {
	if o.Migrate && o.Force {
		return ErrConflictingOptions
	}
	return nil
}

// Action is the decision for one file.
type Action string

const (
	ActionSkipNoV1     Action = "skip-no-v1"
	ActionSkipV1Only   Action = "skip-v1-only"
	ActionStrip        Action = "strip"
	ActionMigrateStrip Action = "migrate-strip"
	ActionForceStrip   Action = "force-strip"
)

// Strips reports whether the action removes the ID3v1 block.
func (a Action) Strips() bool {
	return a == ActionStrip || a == ActionMigrateStrip || a == ActionForceStrip
}

// Decide picks the action from the tag presence flags.
func Decide(hasV1, hasV2 bool, opts Options) Action {
	switch {
	case !hasV1:
		return ActionSkipNoV1
	case hasV2:
		return ActionStrip
	case opts.Migrate:
		return ActionMigrateStrip
	case opts.Force:
		return ActionForceStrip
	}
	return ActionSkipV1Only
}

// Plan inspects path and decides what to do with it.
func Plan(path string, opts Options) (Action, error) {
	hasV1, hasV2, err := Detect(path)
	if err != nil {
		return "", err
	}
	return Decide(hasV1, hasV2, opts), nil
}

// Execute carries out a planned action. migrated is true when ID3v1
// fields were written to ID3v2.
func Execute(path string, action Action) (migrated bool, err error) {
	switch action {
	case ActionMigrateStrip:
		tag, err := Read(path)
		if err != nil {
			return false, err
		}
		if !tag.Empty() {
			if err := Migrate(path, tag); err != nil {
				return false, fmt.Errorf("migrate: %w", err)
			}
			migrated = true
		}
		return migrated, Strip(path)
	case ActionStrip, ActionForceStrip:
		return false, Strip(path)
	}
	return false, nil
}
