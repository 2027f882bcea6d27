/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import "time"

// FileHash caches the full SHA-256 of a file. A row is valid only while
// the file's size and modification time still match.
type FileHash struct {
	Path      string `gorm:"primaryKey"`
	Size      int64
	ModTime   int64  `gorm:"column:mod_time"` // unix nanoseconds
	SHA256    string `gorm:"column:sha256;type:varchar(64);index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
