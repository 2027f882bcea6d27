/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.General.DryRun || !cfg.General.Recursive {
		t.Fatal("expected dry-run and recursive defaults")
	}
	if cfg.Encoding.DefaultSource != "cp1251" || cfg.Scan.HiResThreshold != 48000 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Probe.Timeout() != 10*time.Second {
		t.Fatalf("probe timeout = %v", cfg.Probe.Timeout())
	}
	if cfg.Path != "" {
		t.Fatalf("path should be empty for a missing file, got %q", cfg.Path)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "general:\n  dry_run: false\nscan:\n  hires_threshold: 96000\nencoding:\n  default_source: shift_jis\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.General.DryRun {
		t.Fatal("dry_run should be false")
	}
	if !cfg.General.Recursive {
		t.Fatal("unset keys keep their defaults")
	}
	if cfg.Scan.HiResThreshold != 96000 || cfg.Encoding.DefaultSource != "shift_jis" {
		t.Fatalf("unexpected values: %+v", cfg)
	}
	if cfg.Path != path {
		t.Fatalf("path = %q", cfg.Path)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("empty file should load: %v", err)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("general: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MUSICTL_DRY_RUN", "no")
	t.Setenv("MUSICTL_HIRES_THRESHOLD", "88200")
	t.Setenv("MUSICTL_S3_ENDPOINT", "http://minio:9000")
	t.Setenv("MUSICTL_S3_USE_PATH_STYLE", "true")
	t.Setenv("MUSICTL_ENV", "development")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.General.DryRun {
		t.Fatal("env should disable dry run")
	}
	if cfg.Scan.HiResThreshold != 88200 {
		t.Fatalf("threshold = %d", cfg.Scan.HiResThreshold)
	}
	if cfg.S3.Endpoint != "http://minio:9000" || !cfg.S3.UsePathStyle {
		t.Fatalf("s3 = %+v", cfg.S3)
	}
	if !cfg.IsDevelopment() {
		t.Fatal("expected development environment")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown encoding", func(c *Config) { c.Encoding.DefaultSource = "klingon" }},
		{"bad dupes mode", func(c *Config) { c.Dupes.DefaultMode = "sloppy" }},
		{"zero threshold", func(c *Config) { c.Scan.HiResThreshold = 0 }},
		{"sample rate above one", func(c *Config) { c.Telemetry.SampleRate = 1.5 }},
		{"zero probe timeout", func(c *Config) { c.Probe.TimeoutSeconds = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestResolvePath(t *testing.T) {
	t.Setenv("MUSICTL_CONFIG", "/etc/musictl.yaml")
	if got := ResolvePath("/tmp/flag.yaml"); got != "/tmp/flag.yaml" {
		t.Fatalf("flag should win, got %q", got)
	}
	if got := ResolvePath(""); got != "/etc/musictl.yaml" {
		t.Fatalf("env should be used, got %q", got)
	}
	t.Setenv("MUSICTL_CONFIG", "")
	if got := ResolvePath(""); !strings.HasSuffix(got, filepath.Join("musictl", "config.yaml")) {
		t.Fatalf("default path = %q", got)
	}
}

func TestWriteExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := WriteExample(path); err != nil {
		t.Fatalf("write example: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("example must load: %v", err)
	}
	if cfg.Dupes.DefaultMode != "exact" {
		t.Fatalf("mode = %q", cfg.Dupes.DefaultMode)
	}
	if err := WriteExample(path); !errors.Is(err, ErrExists) {
		t.Fatalf("second write err = %v", err)
	}
}
