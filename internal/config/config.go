/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/friendsincode/musictl/internal/encoding"
)

// ErrExists is returned by WriteExample when the target file is present.
var ErrExists = errors.New("config file already exists")

// Config holds every tunable of the tool. It is loaded once per process and
// passed to whatever needs it.
type Config struct {
	General   GeneralConfig   `yaml:"general"`
	Encoding  EncodingConfig  `yaml:"encoding"`
	Scan      ScanConfig      `yaml:"scan"`
	Dupes     DupesConfig     `yaml:"dupes"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	S3        S3Config        `yaml:"s3"`
	Probe     ProbeConfig     `yaml:"probe"`

	// Path is the file the configuration was read from, empty when none.
	Path string `yaml:"-"`
}

type GeneralConfig struct {
	// DryRun false makes mutating commands apply changes by default.
	DryRun      bool   `yaml:"dry_run"`
	Recursive   bool   `yaml:"recursive"`
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
}

type EncodingConfig struct {
	DefaultSource string `yaml:"default_source"`
}

type ScanConfig struct {
	HiResThreshold int `yaml:"hires_threshold"`
}

type DupesConfig struct {
	DefaultMode string `yaml:"default_mode"`
	// CachePath enables the full-hash cache when set.
	CachePath string `yaml:"cache_path"`
}

type TelemetryConfig struct {
	TracingEnabled  bool    `yaml:"tracing_enabled"`
	OTLPEndpoint    string  `yaml:"otlp_endpoint"`
	SampleRate      float64 `yaml:"sample_rate"`
	MetricsTextfile string  `yaml:"metrics_textfile"`
}

// S3Config is used when exports target an s3:// URL.
type S3Config struct {
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"` // For S3-compatible services (MinIO, Spaces, etc.)
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UsePathStyle    bool   `yaml:"use_path_style"` // Required for MinIO
}

type ProbeConfig struct {
	FFprobeBin     string `yaml:"ffprobe_bin"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the ffprobe wait bound.
func (p ProbeConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		General: GeneralConfig{
			DryRun:      true,
			Recursive:   true,
			Environment: "production",
			LogLevel:    "warn",
		},
		Encoding: EncodingConfig{DefaultSource: "cp1251"},
		Scan:     ScanConfig{HiResThreshold: 48000},
		Dupes:    DupesConfig{DefaultMode: "exact"},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		S3:    S3Config{Region: "us-east-1"},
		Probe: ProbeConfig{FFprobeBin: "ffprobe", TimeoutSeconds: 10},
	}
}

// DefaultPath is the per-user config location.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "musictl", "config.yaml")
}

// ResolvePath picks the config file: the explicit flag value, then
// MUSICTL_CONFIG, then the XDG default.
func ResolvePath(flag string) string {
	if flag != "" {
		return flag
	}
	return getEnv("MUSICTL_CONFIG", DefaultPath())
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		cfg.Path = path
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.General.DryRun = getEnvBoolAny([]string{"MUSICTL_DRY_RUN"}, c.General.DryRun)
	c.General.Recursive = getEnvBoolAny([]string{"MUSICTL_RECURSIVE"}, c.General.Recursive)
	c.General.Environment = getEnvAny([]string{"MUSICTL_ENV", "MUSICTL_ENVIRONMENT"}, c.General.Environment)
	c.General.LogLevel = getEnvAny([]string{"MUSICTL_LOG_LEVEL"}, c.General.LogLevel)

	c.Encoding.DefaultSource = getEnvAny([]string{"MUSICTL_DEFAULT_ENCODING"}, c.Encoding.DefaultSource)
	c.Scan.HiResThreshold = getEnvIntAny([]string{"MUSICTL_HIRES_THRESHOLD"}, c.Scan.HiResThreshold)
	c.Dupes.DefaultMode = getEnvAny([]string{"MUSICTL_DUPES_MODE"}, c.Dupes.DefaultMode)
	c.Dupes.CachePath = getEnvAny([]string{"MUSICTL_CACHE_PATH"}, c.Dupes.CachePath)

	c.Telemetry.TracingEnabled = getEnvBoolAny([]string{"MUSICTL_TRACING_ENABLED"}, c.Telemetry.TracingEnabled)
	c.Telemetry.OTLPEndpoint = getEnvAny([]string{"MUSICTL_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT"}, c.Telemetry.OTLPEndpoint)
	c.Telemetry.SampleRate = getEnvFloatAny([]string{"MUSICTL_TRACING_SAMPLE_RATE"}, c.Telemetry.SampleRate)
	c.Telemetry.MetricsTextfile = getEnvAny([]string{"MUSICTL_METRICS_TEXTFILE"}, c.Telemetry.MetricsTextfile)

	c.S3.Region = getEnvAny([]string{"MUSICTL_S3_REGION", "AWS_REGION"}, c.S3.Region)
	c.S3.Endpoint = getEnvAny([]string{"MUSICTL_S3_ENDPOINT", "S3_ENDPOINT"}, c.S3.Endpoint)
	c.S3.AccessKeyID = getEnvAny([]string{"MUSICTL_S3_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID"}, c.S3.AccessKeyID)
	c.S3.SecretAccessKey = getEnvAny([]string{"MUSICTL_S3_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY"}, c.S3.SecretAccessKey)
	c.S3.UsePathStyle = getEnvBoolAny([]string{"MUSICTL_S3_USE_PATH_STYLE", "S3_USE_PATH_STYLE"}, c.S3.UsePathStyle)

	c.Probe.FFprobeBin = getEnvAny([]string{"MUSICTL_FFPROBE_BIN"}, c.Probe.FFprobeBin)
	c.Probe.TimeoutSeconds = getEnvIntAny([]string{"MUSICTL_FFPROBE_TIMEOUT"}, c.Probe.TimeoutSeconds)
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	if _, err := encoding.Lookup(c.Encoding.DefaultSource); err != nil {
		return fmt.Errorf("encoding.default_source %q: %w", c.Encoding.DefaultSource, err)
	}
	if c.Dupes.DefaultMode != "exact" && c.Dupes.DefaultMode != "fuzzy" {
		return fmt.Errorf("dupes.default_mode must be exact or fuzzy, got %q", c.Dupes.DefaultMode)
	}
	if c.Scan.HiResThreshold <= 0 {
		return fmt.Errorf("scan.hires_threshold must be positive, got %d", c.Scan.HiResThreshold)
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return fmt.Errorf("telemetry.sample_rate must be within [0,1], got %g", c.Telemetry.SampleRate)
	}
	if c.Probe.TimeoutSeconds <= 0 {
		return fmt.Errorf("probe.timeout_seconds must be positive, got %d", c.Probe.TimeoutSeconds)
	}
	return nil
}

// IsDevelopment reports whether verbose development logging is wanted.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.General.Environment, "development")
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// WriteExample writes the default configuration to path, refusing to
// replace an existing file.
func WriteExample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s: %w", path, ErrExists)
	}
	data, err := Default().Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	header := []byte("# musictl configuration\n")
	return os.WriteFile(path, append(header, data...), 0o644)
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

// getEnvIntAny returns the first set integer environment variable value from keys, or def.
func getEnvIntAny(keys []string, def int) int {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				return parsed
			}
		}
	}
	return def
}

// getEnvBoolAny returns the first set boolean environment variable value from keys, or def.
func getEnvBoolAny(keys []string, def bool) bool {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "true" || v == "1" || v == "yes" {
				return true
			}
			if v == "false" || v == "0" || v == "no" {
				return false
			}
		}
	}
	return def
}

// getEnvFloatAny returns the first set float environment variable value from keys, or def.
func getEnvFloatAny(keys []string, def float64) float64 {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				return parsed
			}
		}
	}
	return def
}
