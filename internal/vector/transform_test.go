/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "testing"

func TestAbsoluteBounds_NoGroup(t *testing.T) {
	b := AbsoluteBounds(Size{100, 50}, Transform{Left: 10, Top: 20, ScaleX: 2, ScaleY: 1}, nil)
	if b != R(10, 20, 200, 50) {
		t.Fatalf("unexpected bounds: %+v", b)
	}
}

func TestAbsoluteBounds_RotatedEnvelope(t *testing.T) {
	// 100x50 rotated 90deg about its origin at (0,0) occupies x in [-50,0], y in [0,100].
	b := AbsoluteBounds(Size{100, 50}, Transform{Angle: 90}, nil)
	if b != R(-50, 0, 50, 100) {
		t.Fatalf("unexpected rotated bounds: %+v", b)
	}
	// 45deg widens the box beyond the unrotated size.
	b = AbsoluteBounds(Size{10, 10}, Transform{Angle: 45}, nil)
	if b.W <= 10 || b.H <= 10 {
		t.Fatalf("expected envelope larger than box, got %+v", b)
	}
}

func TestAbsoluteBounds_GroupChain(t *testing.T) {
	group := Transform{Left: 100, Top: 100, ScaleX: 2, ScaleY: 2}
	outer := Transform{Left: 10, Top: 0}
	b := AbsoluteBounds(Size{10, 10}, Transform{Left: 5, Top: 5}, []Transform{group, outer})
	// member origin (5,5) -> group (110,110) -> outer (120,110); size doubled
	if b != R(120, 110, 20, 20) {
		t.Fatalf("unexpected chained bounds: %+v", b)
	}
}

func TestAbsoluteBounds_ZeroSize(t *testing.T) {
	b := AbsoluteBounds(Size{}, Transform{Left: 3, Top: 4, Angle: 30}, nil)
	if b.W != 0 || b.H != 0 || b.X != 3 || b.Y != 4 {
		t.Fatalf("expected zero-area box at origin, got %+v", b)
	}
}

func TestEffectiveScale(t *testing.T) {
	sx, sy := EffectiveScale(Transform{ScaleX: 2, ScaleY: 3}, []Transform{{ScaleX: 0.5, ScaleY: 2}, {}})
	if sx != 1 || sy != 6 {
		t.Fatalf("unexpected effective scale: %v,%v", sx, sy)
	}
}

func TestToLocalRoundTrip(t *testing.T) {
	groups := []Transform{{Left: 50, Top: 20, Angle: 90, ScaleX: 2, ScaleY: 2}, {Left: -10, Top: 5}}
	abs := Pt{77, 33}
	local := ToLocal(abs, groups)
	back := ToAbsolute(local, groups)
	if !near(back.X, abs.X) || !near(back.Y, abs.Y) {
		t.Fatalf("round trip mismatch: %+v -> %+v -> %+v", abs, local, back)
	}
}

func TestDeltaToLocal(t *testing.T) {
	d := DeltaToLocal(Pt{10, 0}, []Transform{{Left: 500, Top: 500, ScaleX: 2, ScaleY: 2, Angle: 90}})
	// absolute +x inside a 90deg, 2x group is local -y/2
	if !near(d.X, 0) || !near(d.Y, -5) {
		t.Fatalf("unexpected local delta: %+v", d)
	}
}
