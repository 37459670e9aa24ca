/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package snap computes snapping corrections and guide lines for objects being
// dragged, resized or rotated. Everything except Store is a pure function of
// its inputs so identical scenes always give identical results.
package snap

import "sync"

// Source identifies where a snap candidate came from.
type Source int

const (
	SourceNone Source = iota
	SourceGrid
	SourceCanvas
	SourceObject
)

func (s Source) String() string {
	switch s {
	case SourceGrid:
		return "grid"
	case SourceCanvas:
		return "canvas"
	case SourceObject:
		return "object"
	default:
		return "none"
	}
}

// DefaultPrecedence breaks distance ties: sibling alignment first, page
// bounds next, grid last.
var DefaultPrecedence = []Source{SourceObject, SourceCanvas, SourceGrid}

const (
	DefaultTolerance         = 6
	DefaultRotationTolerance = 5
	DefaultSnapGridSize      = 10
	DefaultVisualGridSize    = 20
)

// Options is the snapping configuration read on every tick.
type Options struct {
	SnapToGrid    bool `yaml:"snap_to_grid" json:"snapToGrid"`
	SnapToObjects bool `yaml:"snap_to_objects" json:"snapToObjects"`
	SnapToCanvas  bool `yaml:"snap_to_canvas" json:"snapToCanvas"`
	SnapRotation  bool `yaml:"snap_rotation" json:"snapRotation"`
	ShowGrid      bool `yaml:"show_grid" json:"showGrid"`
	// SnapGridSize is the movement snapping step; VisualGridSize is the
	// spacing of the rendered dot grid. They are independent.
	SnapGridSize   float64 `yaml:"snap_grid_size" json:"snapGridSize"`
	VisualGridSize float64 `yaml:"visual_grid_size" json:"visualGridSize"`
	// Tolerance is the maximum accepted distance, inclusive.
	Tolerance         float64 `yaml:"tolerance" json:"tolerance"`
	RotationTolerance float64 `yaml:"rotation_tolerance" json:"rotationTolerance"`
	// Precedence overrides DefaultPrecedence when non-empty.
	Precedence []Source `yaml:"-" json:"-"`
}

// Defaults returns the initial snapping configuration.
func Defaults() Options {
	return Options{
		SnapToGrid:        true,
		SnapToObjects:     true,
		SnapToCanvas:      true,
		SnapRotation:      true,
		ShowGrid:          false,
		SnapGridSize:      DefaultSnapGridSize,
		VisualGridSize:    DefaultVisualGridSize,
		Tolerance:         DefaultTolerance,
		RotationTolerance: DefaultRotationTolerance,
	}
}

// Enabled reports whether any positional snapping source is on.
func (o Options) Enabled() bool { return o.SnapToGrid || o.SnapToObjects || o.SnapToCanvas }

func (o Options) rank(s Source) int {
	p := o.Precedence
	if len(p) == 0 {
		p = DefaultPrecedence
	}
	for i, x := range p {
		if x == s {
			return len(p) - i
		}
	}
	return 0
}

func (o Options) tolerance() float64 {
	if o.Tolerance <= 0 {
		return DefaultTolerance
	}
	return o.Tolerance
}

// Store owns the canonical Options for the settings UI. Engines never read
// it directly; callers take a Snapshot per tick.
type Store struct {
	mu   sync.RWMutex
	opts Options
	subs []func(Options)
}

func NewStore(initial Options) *Store { return &Store{opts: initial} }

// Snapshot returns a copy of the current options.
func (s *Store) Snapshot() Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o := s.opts
	o.Precedence = append([]Source(nil), s.opts.Precedence...)
	return o
}

// Subscribe registers fn to be called after every change.
func (s *Store) Subscribe(fn func(Options)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *Store) update(fn func(*Options)) {
	s.mu.Lock()
	fn(&s.opts)
	o := s.opts
	subs := append([]func(Options){}, s.subs...)
	s.mu.Unlock()
	for _, sub := range subs {
		sub(o)
	}
}

func (s *Store) ToggleSnapToGrid()    { s.update(func(o *Options) { o.SnapToGrid = !o.SnapToGrid }) }
func (s *Store) ToggleSnapToObjects() { s.update(func(o *Options) { o.SnapToObjects = !o.SnapToObjects }) }
func (s *Store) ToggleSnapToCanvas()  { s.update(func(o *Options) { o.SnapToCanvas = !o.SnapToCanvas }) }
func (s *Store) ToggleSnapRotation()  { s.update(func(o *Options) { o.SnapRotation = !o.SnapRotation }) }
func (s *Store) ToggleGrid()          { s.update(func(o *Options) { o.ShowGrid = !o.ShowGrid }) }

// ToggleSnapping turns all positional sources off if any is on, otherwise
// turns them all on.
func (s *Store) ToggleSnapping() {
	s.update(func(o *Options) {
		on := !o.Enabled()
		o.SnapToGrid, o.SnapToObjects, o.SnapToCanvas = on, on, on
	})
}

// SetSnapGridSize sets the movement grid step. Non-positive sizes are ignored.
func (s *Store) SetSnapGridSize(px float64) {
	if px <= 0 {
		return
	}
	s.update(func(o *Options) { o.SnapGridSize = px })
}

// SetVisualGridSize sets the rendered grid spacing. Non-positive sizes are ignored.
func (s *Store) SetVisualGridSize(px float64) {
	if px <= 0 {
		return
	}
	s.update(func(o *Options) { o.VisualGridSize = px })
}

// SetTolerance sets the pixel tolerance. Non-positive values are ignored.
func (s *Store) SetTolerance(px float64) {
	if px <= 0 {
		return
	}
	s.update(func(o *Options) { o.Tolerance = px })
}

// Replace swaps in a full configuration, e.g. after loading preferences.
func (s *Store) Replace(o Options) { s.update(func(cur *Options) { *cur = o }) }
