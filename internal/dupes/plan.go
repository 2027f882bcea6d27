/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package dupes

import (
	"context"
	"os"
)

// Action deletes one redundant file.
type Action struct {
	Group int // 1-based
	Path  string
	Keep  string
	Size  int64
}

// Plan lists one deletion per non-keep member. Dry runs print the plan and
// Apply executes the same plan, so both always agree.
func Plan(groups []Group) ([]Action, error) {
	var actions []Action
	for i, g := range groups {
		if g.Advisory {
			return nil, ErrFuzzyApply
		}
		for _, m := range g.Duplicates() {
			actions = append(actions, Action{
				Group: i + 1,
				Path:  m.Path,
				Keep:  g.Keep().Path,
				Size:  m.Size,
			})
		}
	}
	return actions, nil
}

// Remover deletes a file. os.Remove in production.
type Remover func(path string) error

// ActionError is a deletion that failed.
type ActionError struct {
	Action Action
	Err    error
}

// Outcome of Apply.
type Outcome struct {
	Deleted []Action
	Failed  []ActionError
	Freed   int64
}

// Apply executes a plan, continuing past individual failures. It stops at
// the next action once ctx is cancelled.
func Apply(ctx context.Context, actions []Action, remove Remover) (Outcome, error) {
	if remove == nil {
		remove = os.Remove
	}
	var out Outcome
	for _, a := range actions {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if err := remove(a.Path); err != nil {
			out.Failed = append(out.Failed, ActionError{Action: a, Err: err})
			continue
		}
		out.Deleted = append(out.Deleted, a)
		out.Freed += a.Size
	}
	return out, nil
}
