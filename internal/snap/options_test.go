/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import (
	"testing"

	"pagelayout/internal/vector"
)

func TestSnapAngle(t *testing.T) {
	cases := []struct {
		angle, tol float64
		want       float64
		snapped    bool
	}{
		{91, 1, 90, true},
		{91, 5, 90, true},
		{95, 1, 95, false},
		{-2, 3, 0, true},
		{358, 3, 0, true},
		{272, 5, 270, true},
		{45, 5, 45, false},
	}
	for _, c := range cases {
		o := Options{SnapRotation: true, RotationTolerance: c.tol}
		got, ok := SnapAngle(c.angle, o)
		if got != c.want || ok != c.snapped {
			t.Fatalf("SnapAngle(%v, tol %v) = %v,%v want %v,%v", c.angle, c.tol, got, ok, c.want, c.snapped)
		}
	}
	if got, ok := SnapAngle(91, Options{RotationTolerance: 5}); ok || got != 91 {
		t.Fatalf("disabled rotation snapping must not change angle, got %v", got)
	}
}

func TestGridLines(t *testing.T) {
	o := Options{ShowGrid: true, VisualGridSize: 20}
	xs, ys := GridLines(vector.R(-5, 0, 50, 30), o)
	if len(xs) != 3 || xs[0] != 0 || xs[2] != 40 {
		t.Fatalf("unexpected xs: %v", xs)
	}
	if len(ys) != 2 || ys[1] != 20 {
		t.Fatalf("unexpected ys: %v", ys)
	}
	o.ShowGrid = false
	if xs, ys := GridLines(vector.R(0, 0, 100, 100), o); xs != nil || ys != nil {
		t.Fatalf("hidden grid should produce no lines")
	}
}

func TestStoreSetters(t *testing.T) {
	s := NewStore(Defaults())
	var calls int
	s.Subscribe(func(Options) { calls++ })

	s.ToggleSnapToGrid()
	if s.Snapshot().SnapToGrid {
		t.Fatalf("expected grid snapping off after toggle")
	}
	s.ToggleSnapToGrid()
	if !s.Snapshot().SnapToGrid {
		t.Fatalf("expected grid snapping back on")
	}
	s.ToggleGrid()
	s.ToggleSnapRotation()
	s.ToggleSnapToCanvas()
	s.ToggleSnapToObjects()
	o := s.Snapshot()
	if !o.ShowGrid || o.SnapRotation || o.SnapToCanvas || o.SnapToObjects {
		t.Fatalf("unexpected toggled state: %+v", o)
	}

	s.SetSnapGridSize(8)
	s.SetSnapGridSize(8)
	s.SetSnapGridSize(-1)
	s.SetVisualGridSize(32)
	s.SetVisualGridSize(0)
	o = s.Snapshot()
	if o.SnapGridSize != 8 || o.VisualGridSize != 32 {
		t.Fatalf("unexpected sizes: %+v", o)
	}
	if calls != 9 {
		t.Fatalf("expected 9 notifications, got %d", calls)
	}
}

func TestStoreToggleSnapping(t *testing.T) {
	s := NewStore(Defaults())
	s.ToggleSnapping()
	if s.Snapshot().Enabled() {
		t.Fatalf("expected all positional snapping off")
	}
	s.ToggleSnapping()
	o := s.Snapshot()
	if !o.SnapToGrid || !o.SnapToObjects || !o.SnapToCanvas {
		t.Fatalf("expected all positional snapping on, got %+v", o)
	}
}
