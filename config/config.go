// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads the simulator configuration.
//
// The configuration comes from a single file named by the --config flag
// or, failing that, the PINTOS_CONFIG environment variable. With neither,
// Default is used. YAML (.yaml, .yml) and JSON with comments (.json, .jsonc)
// are accepted.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable consulted by Resolve.
const EnvVar = "PINTOS_CONFIG"

// DefaultMaxFiles is the default per-process open file limit.
const DefaultMaxFiles = 128

// Config is the simulator configuration.
type Config struct {
	// Disk is the path of a txtar disk image, optionally zstd-compressed.
	// Empty means the image built into the userprog package.
	Disk string `yaml:"disk" json:"disk"`

	// MaxFiles bounds the descriptors a process may hold open.
	MaxFiles int `yaml:"max_files" json:"max_files"`

	// Frames bounds the pages each process may map. Zero is unlimited.
	Frames int `yaml:"frames" json:"frames"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Trace is the path of a ktrace file to write. Empty disables tracing.
	Trace string `yaml:"trace" json:"trace"`

	// Console is the path the console is written to. Empty is standard output.
	Console string `yaml:"console" json:"console"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		MaxFiles: DefaultMaxFiles,
		LogLevel: "warn",
	}
}

// Load reads the configuration file at path.
// Fields absent from the file keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%s: unknown config format %q", path, ext)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Resolve loads the configuration named by flagPath, or by $PINTOS_CONFIG
// when flagPath is empty, or returns Default when both are empty.
func Resolve(flagPath string) (*Config, error) {
	path := flagPath
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.MaxFiles < 0 {
		return errors.New("max_files must not be negative")
	}
	if c.Frames < 0 {
		return errors.New("frames must not be negative")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns LogLevel as a slog level.
func (c *Config) Level() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log_level %q", c.LogLevel)
}
