/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the per-run counters. A CLI run has no scrape endpoint, so
// the registry is written out in textfile-collector format at exit.
type Metrics struct {
	Registry *prometheus.Registry

	FilesProcessed     *prometheus.CounterVec
	FileErrors         *prometheus.CounterVec
	Actions            *prometheus.CounterVec
	CommandDuration    *prometheus.GaugeVec
	CacheLookups       *prometheus.CounterVec
	CacheQueryDuration *prometheus.HistogramVec
	CacheErrors        *prometheus.CounterVec
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		FilesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "musictl_files_processed_total",
			Help: "Audio files examined, by command.",
		}, []string{"command"}),
		FileErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "musictl_file_errors_total",
			Help: "Files that could not be read or changed, by command.",
		}, []string{"command"}),
		Actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "musictl_actions_total",
			Help: "Changes applied to disk, by command and action.",
		}, []string{"command", "action"}),
		CommandDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "musictl_command_duration_seconds",
			Help: "Wall time of the last run, by command.",
		}, []string{"command"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "musictl_hash_cache_lookups_total",
			Help: "Full-hash cache lookups, by result.",
		}, []string{"result"}),
		CacheQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "musictl_hash_cache_query_duration_seconds",
			Help:    "Hash cache database operation latency.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"operation", "table"}),
		CacheErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "musictl_hash_cache_errors_total",
			Help: "Hash cache database errors, by operation.",
		}, []string{"operation"}),
	}
	m.Registry.MustRegister(
		m.FilesProcessed,
		m.FileErrors,
		m.Actions,
		m.CommandDuration,
		m.CacheLookups,
		m.CacheQueryDuration,
		m.CacheErrors,
	)
	return m
}

// FileProcessed counts one examined file.
func (m *Metrics) FileProcessed(command string) {
	if m != nil {
		m.FilesProcessed.WithLabelValues(command).Inc()
	}
}

// FileFailed counts one failed file.
func (m *Metrics) FileFailed(command string) {
	if m != nil {
		m.FileErrors.WithLabelValues(command).Inc()
	}
}

// Action counts applied changes.
func (m *Metrics) Action(command, action string, n int) {
	if m != nil && n > 0 {
		m.Actions.WithLabelValues(command, action).Add(float64(n))
	}
}

// ObserveRun records the command's wall time.
func (m *Metrics) ObserveRun(command string, d time.Duration) {
	if m != nil {
		m.CommandDuration.WithLabelValues(command).Set(d.Seconds())
	}
}

// CacheResult counts a cache hit or miss.
func (m *Metrics) CacheResult(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// WriteTextfile writes the registry for node_exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
