/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cache keeps full-file hashes between runs so repeated duplicate
// scans only rehash files that changed.
package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/friendsincode/musictl/internal/models"
	"github.com/friendsincode/musictl/internal/telemetry"
)

// HashCache is a SQLite-backed path → SHA-256 store keyed additionally by
// size and mtime.
type HashCache struct {
	db      *gorm.DB
	metrics *telemetry.Metrics
	logger  zerolog.Logger
}

// New wraps an open database. The schema must already be migrated.
func New(db *gorm.DB, metrics *telemetry.Metrics, logger zerolog.Logger) *HashCache {
	return &HashCache{
		db:      db,
		metrics: metrics,
		logger:  logger.With().Str("component", "cache").Logger(),
	}
}

// Lookup returns the cached hash when the stored size and mtime match.
func (c *HashCache) Lookup(path string, size int64, modTime time.Time) (string, bool) {
	var row models.FileHash
	err := c.db.Where("path = ?", path).Take(&row).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.logger.Debug().Err(err).Str("path", path).Msg("cache lookup failed")
		}
		c.metrics.CacheResult(false)
		return "", false
	}
	if row.Size != size || row.ModTime != modTime.UnixNano() {
		c.metrics.CacheResult(false)
		return "", false
	}
	c.metrics.CacheResult(true)
	return row.SHA256, true
}

// Store records a hash, replacing any previous row for path.
func (c *HashCache) Store(path string, size int64, modTime time.Time, sum string) error {
	row := models.FileHash{
		Path:    path,
		Size:    size,
		ModTime: modTime.UnixNano(),
		SHA256:  sum,
	}
	err := c.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{"size", "mod_time", "sha256", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("store hash: %w", err)
	}
	return nil
}

// Forget drops the row for path, used after a file is deleted.
func (c *HashCache) Forget(path string) error {
	return c.db.Where("path = ?", path).Delete(&models.FileHash{}).Error
}

// Len returns the number of cached rows.
func (c *HashCache) Len() (int64, error) {
	var n int64
	err := c.db.Model(&models.FileHash{}).Count(&n).Error
	return n, err
}
