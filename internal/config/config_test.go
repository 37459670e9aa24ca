/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points the config path at a temp file.
func isolate(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(EnvConfigPath, p)
	return p
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.Snapping.SnapToGrid || cfg.Snapping.SnapGridSize != 10 || cfg.Viewport.ResizeThreshold != 20 {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	p := isolate(t)
	data := []byte("snapping:\n  snap_grid_size: 25\n  show_grid: true\nviewport:\n  margin: 0.9\nundo:\n  min_interval: 1s\n")
	if err := os.WriteFile(p, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Snapping.SnapGridSize != 25 || !cfg.Snapping.ShowGrid {
		t.Fatalf("snapping not read from file: %#v", cfg.Snapping)
	}
	if !cfg.Snapping.SnapToObjects || !cfg.General.Autosave {
		t.Fatalf("missing keys lost their defaults: %#v", cfg)
	}
	if cfg.Viewport.Margin != 0.9 || cfg.Viewport.MaxZoom != 1 {
		t.Fatalf("viewport = %#v", cfg.Viewport)
	}
	if cfg.Undo.MinInterval != time.Second {
		t.Fatalf("undo interval = %v", cfg.Undo.MinInterval)
	}
}

func TestSaveThenLoad(t *testing.T) {
	isolate(t)
	cfg := Defaults()
	cfg.Snapping.SnapToCanvas = false
	cfg.Logging.Level = "debug"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Snapping.SnapToCanvas || got.Logging.Level != "debug" {
		t.Fatalf("saved values not loaded: %#v", got)
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "C:/tmp/pl.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "C:/tmp/pl.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "X:/pl.log")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "X:/pl.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestEnvOverridesSnappingAndViewport(t *testing.T) {
	isolate(t)
	t.Setenv(EnvSnapGridSize, "8")
	t.Setenv(EnvSnapTolerance, "garbage")
	t.Setenv(EnvResizeThreshold, "32")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.SnapOptions().SnapGridSize != 8 {
		t.Fatalf("grid size = %v", cfg.SnapOptions().SnapGridSize)
	}
	if cfg.SnapOptions().Tolerance != 6 {
		t.Fatalf("unparsable tolerance should keep default, got %v", cfg.SnapOptions().Tolerance)
	}
	if cfg.ViewportOptions().ResizeThreshold != 32 {
		t.Fatalf("threshold = %v", cfg.ViewportOptions().ResizeThreshold)
	}
	if env, ok := EnvOverrideFor("viewport.resize_threshold"); !ok || env != EnvResizeThreshold {
		t.Fatalf("EnvOverrideFor = %q, %v", env, ok)
	}
	if _, ok := EnvOverrideFor("viewport.margin"); ok {
		t.Fatalf("margin is not overridden")
	}
}
