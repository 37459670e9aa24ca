/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"pagelayout/internal/snap"
	"pagelayout/internal/undo"
	"pagelayout/internal/viewport"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type GeneralConfig struct {
	// Autosave saves the layout after every committed gesture.
	Autosave bool `yaml:"autosave"`
	// KeepBackups bounds the manifest backups kept per layout (0 keeps all).
	KeepBackups int `yaml:"keep_backups"`
	// KeepHistory bounds the persisted undo snapshots per page.
	KeepHistory int `yaml:"keep_history"`
	PageWidth   float64 `yaml:"page_width"`
	PageHeight  float64 `yaml:"page_height"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int              `yaml:"config_version"`
	General       GeneralConfig    `yaml:"general"`
	Logging       LoggingConfig    `yaml:"logging"`
	Snapping      snap.Options     `yaml:"snapping"`
	Viewport      viewport.Options `yaml:"viewport"`
	Undo          undo.Config      `yaml:"undo"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{Autosave: true, KeepBackups: 20, KeepHistory: 200, PageWidth: 595, PageHeight: 842},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
		Snapping:      snap.Defaults(),
		Viewport:      viewport.DefaultOptions(),
		Undo:          undo.Config{MaxBytes: 16 * 1024 * 1024, MaxPerPage: 100, MinInterval: 250 * time.Millisecond},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath = "PL_CONFIG"
	EnvAutosave   = "PL_AUTOSAVE"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "PL_LOG_LEVEL"
	EnvLogFormat = "PL_LOG_FORMAT"
	EnvLogSource = "PL_LOG_SOURCE"
	EnvLogFile   = "PL_LOG_FILE"
	// Snapping and viewport envs
	EnvSnapGridSize    = "PL_SNAP_GRID_SIZE"
	EnvSnapTolerance   = "PL_SNAP_TOLERANCE"
	EnvShowGrid        = "PL_SHOW_GRID"
	EnvViewportMargin  = "PL_VIEWPORT_MARGIN"
	EnvResizeThreshold = "PL_RESIZE_THRESHOLD"
)

// ConfigPath returns the per-user config file path. PL_CONFIG replaces it.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "PageLayout")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "PageLayout")
	default:
		base = filepath.Join(os.Getenv("HOME"), ".config", "pagelayout")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	if data, err := os.ReadFile(path); err == nil {
		// decode over defaults so keys missing from the file keep their default
		fileCfg := Defaults()
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// SnapOptions returns the snapping options with unset sizes defaulted.
func (c AppConfig) SnapOptions() snap.Options {
	o := c.Snapping
	d := snap.Defaults()
	if o.SnapGridSize <= 0 {
		o.SnapGridSize = d.SnapGridSize
	}
	if o.VisualGridSize <= 0 {
		o.VisualGridSize = d.VisualGridSize
	}
	if o.Tolerance <= 0 {
		o.Tolerance = d.Tolerance
	}
	if o.RotationTolerance < 0 {
		o.RotationTolerance = d.RotationTolerance
	}
	return o
}

// ViewportOptions returns the viewport engine options.
func (c AppConfig) ViewportOptions() viewport.Options { return c.Viewport }

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.Autosave = src.General.Autosave
	if src.General.KeepBackups != 0 {
		dst.General.KeepBackups = src.General.KeepBackups
	}
	if src.General.KeepHistory != 0 {
		dst.General.KeepHistory = src.General.KeepHistory
	}
	if src.General.PageWidth > 0 {
		dst.General.PageWidth = src.General.PageWidth
	}
	if src.General.PageHeight > 0 {
		dst.General.PageHeight = src.General.PageHeight
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
	// snapping
	s, d := src.Snapping, &dst.Snapping
	d.SnapToGrid, d.SnapToObjects, d.SnapToCanvas = s.SnapToGrid, s.SnapToObjects, s.SnapToCanvas
	d.SnapRotation, d.ShowGrid = s.SnapRotation, s.ShowGrid
	if s.SnapGridSize > 0 {
		d.SnapGridSize = s.SnapGridSize
	}
	if s.VisualGridSize > 0 {
		d.VisualGridSize = s.VisualGridSize
	}
	if s.Tolerance > 0 {
		d.Tolerance = s.Tolerance
	}
	if s.RotationTolerance > 0 {
		d.RotationTolerance = s.RotationTolerance
	}
	// viewport
	v, dv := src.Viewport, &dst.Viewport
	if v.Margin > 0 {
		dv.Margin = v.Margin
	}
	if v.ResizeThreshold > 0 {
		dv.ResizeThreshold = v.ResizeThreshold
	}
	if v.MinZoom > 0 {
		dv.MinZoom = v.MinZoom
	}
	if v.MaxZoom > 0 {
		dv.MaxZoom = v.MaxZoom
	}
	if v.WheelBase > 0 {
		dv.WheelBase = v.WheelBase
	}
	if v.ZoomStep > 0 {
		dv.ZoomStep = v.ZoomStep
	}
	// undo
	if src.Undo.MaxBytes > 0 {
		dst.Undo.MaxBytes = src.Undo.MaxBytes
	}
	if src.Undo.MaxPerPage > 0 {
		dst.Undo.MaxPerPage = src.Undo.MaxPerPage
	}
	if src.Undo.MinInterval > 0 {
		dst.Undo.MinInterval = src.Undo.MinInterval
	}
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func envFloat(key string, set func(float64)) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			set(f)
		}
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvAutosave)); v != "" {
		cfg.General.Autosave = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvShowGrid)); v != "" {
		cfg.Snapping.ShowGrid = truthy(v)
	}
	envFloat(EnvSnapGridSize, func(f float64) { cfg.Snapping.SnapGridSize = f })
	envFloat(EnvSnapTolerance, func(f float64) { cfg.Snapping.Tolerance = f })
	envFloat(EnvViewportMargin, func(f float64) { cfg.Viewport.Margin = f })
	envFloat(EnvResizeThreshold, func(f float64) { cfg.Viewport.ResizeThreshold = f })
}

var envKeys = map[string]string{
	"general.autosave":          EnvAutosave,
	"logging.level":             EnvLogLevel,
	"logging.format":            EnvLogFormat,
	"logging.source":            EnvLogSource,
	"logging.file":              EnvLogFile,
	"snapping.show_grid":        EnvShowGrid,
	"snapping.snap_grid_size":   EnvSnapGridSize,
	"snapping.tolerance":        EnvSnapTolerance,
	"viewport.margin":           EnvViewportMargin,
	"viewport.resize_threshold": EnvResizeThreshold,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}
