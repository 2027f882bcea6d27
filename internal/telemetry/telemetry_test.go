/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package telemetry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.FileProcessed("scan library")
	m.FileProcessed("scan library")
	m.FileFailed("scan library")
	m.Action("dupes find", "delete", 3)
	m.Action("dupes find", "delete", 0)
	m.CacheResult(true)
	m.CacheResult(false)
	m.CacheResult(false)

	if got := testutil.ToFloat64(m.FilesProcessed.WithLabelValues("scan library")); got != 2 {
		t.Errorf("files processed = %v", got)
	}
	if got := testutil.ToFloat64(m.FileErrors.WithLabelValues("scan library")); got != 1 {
		t.Errorf("file errors = %v", got)
	}
	if got := testutil.ToFloat64(m.Actions.WithLabelValues("dupes find", "delete")); got != 3 {
		t.Errorf("actions = %v", got)
	}
	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")); got != 2 {
		t.Errorf("cache misses = %v", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.FileProcessed("x")
	m.FileFailed("x")
	m.Action("x", "y", 1)
	m.ObserveRun("x", time.Second)
	m.CacheResult(true)
}

func TestWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.FileProcessed("scan hires")
	m.ObserveRun("scan hires", 1500*time.Millisecond)

	path := filepath.Join(t.TempDir(), "musictl.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{
		`musictl_files_processed_total{command="scan hires"} 1`,
		`musictl_command_duration_seconds{command="scan hires"} 1.5`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("textfile missing %q:\n%s", want, out)
		}
	}
}

func TestDisabledTracerIsNoop(t *testing.T) {
	tp, err := InitTracer(context.Background(), TracerConfig{Enabled: false}, zerolog.Nop())
	if err != nil {
		t.Fatalf("InitTracer: %v", err)
	}
	ctx, span := StartCommand(context.Background(), "scan", "run-1")
	_, child := StartSpan(ctx, "walk")
	AddSpanAttributes(child, map[string]any{"files": 3, "path": "/music"})
	EndSpan(child, errors.New("boom"))
	EndSpan(span, nil)
	if span.SpanContext().IsValid() {
		t.Error("no-op provider should produce invalid span contexts")
	}
	if err := tp.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestSamplerFor(t *testing.T) {
	for _, tt := range []struct {
		rate float64
		want string
	}{
		{1, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{0.25, "TraceIDRatioBased{0.25}"},
	} {
		if got := samplerFor(tt.rate).Description(); got != tt.want {
			t.Errorf("samplerFor(%v) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}
