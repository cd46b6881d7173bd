/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package config loads the user configuration: a YAML file in the per-user
// config directory, merged over defaults, with SNC_* environment variables as
// read-only overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	applog "snapcanvas/internal/log"
)

// CurrentVersion is written into new config files. Bump on incompatible changes.
const CurrentVersion = 1

type StageConfig struct {
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
}

type SnapConfig struct {
	Tolerance float32 `yaml:"tolerance"`
	Enabled   bool    `yaml:"enabled"`
}

type UndoConfig struct {
	MaxBytes      int `yaml:"max_bytes"`
	MaxPerBoard   int `yaml:"max_per_board"`
	MinIntervalMs int `yaml:"min_interval_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// LogOptions converts the logging section into logger options.
func (l LoggingConfig) LogOptions() applog.Options {
	return applog.Options{Level: l.Level, Format: l.Format, AddSource: l.Source, File: l.File}
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Stage         StageConfig   `yaml:"stage"`
	Snap          SnapConfig    `yaml:"snap"`
	Undo          UndoConfig    `yaml:"undo"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: CurrentVersion,
		Stage:         StageConfig{Width: 1200, Height: 800},
		Snap:          SnapConfig{Tolerance: 5, Enabled: true},
		Undo:          UndoConfig{MaxBytes: 16 << 20, MaxPerBoard: 100, MinIntervalMs: 250},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvSnapTolerance = "SNC_SNAP_TOLERANCE"
	EnvSnapEnabled   = "SNC_SNAP_ENABLED"
	EnvStageWidth    = "SNC_STAGE_WIDTH"
	EnvStageHeight   = "SNC_STAGE_HEIGHT"
	EnvConfigFile    = "SNC_CONFIG"
)

// envKeys maps dotted config keys to the variables that override them.
var envKeys = map[string]string{
	"snap.tolerance": EnvSnapTolerance,
	"snap.enabled":   EnvSnapEnabled,
	"stage.width":    EnvStageWidth,
	"stage.height":   EnvStageHeight,
	"logging.level":  applog.EnvLevel,
	"logging.format": applog.EnvFormat,
	"logging.source": applog.EnvSource,
	"logging.file":   applog.EnvFile,
}

// ConfigPath returns the per-user config file path. SNC_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "SnapCanvas")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "SnapCanvas")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "snapcanvas")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "snapcanvas")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present) and applies env overrides.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFile(path)
}

// LoadFile is Load for an explicit path. A missing file yields the defaults;
// a malformed one is an error.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			applyEnvOverrides(&cfg)
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg, data)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the config YAML to the user config path.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

func SaveFile(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// mergeInto copies set fields of src over dst. raw is consulted for booleans
// so an absent key keeps its default instead of becoming false.
func mergeInto(dst *AppConfig, src *AppConfig, raw []byte) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.Stage.Width > 0 {
		dst.Stage.Width = src.Stage.Width
	}
	if src.Stage.Height > 0 {
		dst.Stage.Height = src.Stage.Height
	}
	if src.Snap.Tolerance > 0 {
		dst.Snap.Tolerance = src.Snap.Tolerance
	}
	if hasKey(raw, "snap", "enabled") {
		dst.Snap.Enabled = src.Snap.Enabled
	}
	if src.Undo.MaxBytes > 0 {
		dst.Undo.MaxBytes = src.Undo.MaxBytes
	}
	if src.Undo.MaxPerBoard > 0 {
		dst.Undo.MaxPerBoard = src.Undo.MaxPerBoard
	}
	if src.Undo.MinIntervalMs > 0 {
		dst.Undo.MinIntervalMs = src.Undo.MinIntervalMs
	}
	if v := strings.TrimSpace(src.Logging.Level); v != "" {
		dst.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Logging.Format); v != "" {
		dst.Logging.Format = strings.ToLower(v)
	}
	dst.Logging.Source = src.Logging.Source
	if v := strings.TrimSpace(src.Logging.File); v != "" {
		dst.Logging.File = v
	}
}

func hasKey(raw []byte, section, key string) bool {
	var m map[string]map[string]any
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return false
	}
	_, ok := m[section][key]
	return ok
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func envFloat(key string, dst *float32) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if f, err := strconv.ParseFloat(v, 32); err == nil && f > 0 {
		*dst = float32(f)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	envFloat(EnvSnapTolerance, &cfg.Snap.Tolerance)
	envFloat(EnvStageWidth, &cfg.Stage.Width)
	envFloat(EnvStageHeight, &cfg.Stage.Height)
	if v := strings.TrimSpace(os.Getenv(EnvSnapEnabled)); v != "" {
		cfg.Snap.Enabled = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(applog.EnvLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(applog.EnvFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(applog.EnvSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(applog.EnvFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the dotted key is currently
// overridden by the environment.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}
