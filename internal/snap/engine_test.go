/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import (
	"reflect"
	"testing"

	"pagelayout/internal/vector"
)

func objectsOnly(tol float64) Options {
	return Options{SnapToObjects: true, Tolerance: tol}
}

func TestCompute_TieBreakPrefersObject(t *testing.T) {
	// Every comparison point is exactly 3 away from a sibling, page and grid line.
	opts := Options{SnapToGrid: true, SnapToCanvas: true, SnapToObjects: true, SnapGridSize: 10, Tolerance: 6}
	in := Input{
		Moving:     vector.R(103, 1003, 40, 40),
		Options:    opts,
		Siblings:   []vector.Rect{vector.R(100, 600, 40, 40)},
		Workspaces: []vector.Rect{vector.R(100, 0, 800, 500)},
	}
	res := Compute(in)
	if !res.X.Snapped || res.X.Source != SourceObject {
		t.Fatalf("expected object source to win the X tie, got %+v", res.X)
	}
	if res.Rect.X != 100 {
		t.Fatalf("expected X snapped to 100, got %v", res.Rect.X)
	}
	if !res.Y.Snapped || res.Y.Source != SourceGrid || res.Rect.Y != 1000 {
		t.Fatalf("expected Y snapped to grid 1000, got %+v rect=%+v", res.Y, res.Rect)
	}
}

func TestCompute_CanvasBeatsGridOnTie(t *testing.T) {
	opts := Options{SnapToGrid: true, SnapToCanvas: true, SnapGridSize: 10, Tolerance: 6}
	res := Compute(Input{
		Moving:     vector.R(2, 2000, 10, 10),
		Options:    opts,
		Workspaces: []vector.Rect{vector.R(0, 0, 300, 300)},
	})
	if res.X.Source != SourceCanvas {
		t.Fatalf("expected canvas to beat grid, got %v", res.X.Source)
	}
}

func TestCompute_PrecedenceOverride(t *testing.T) {
	opts := Options{SnapToGrid: true, SnapToObjects: true, SnapGridSize: 10, Tolerance: 6,
		Precedence: []Source{SourceGrid, SourceCanvas, SourceObject}}
	res := Compute(Input{
		Moving:   vector.R(103, 5000, 40, 40),
		Options:  opts,
		Siblings: []vector.Rect{vector.R(100, 0, 40, 40)},
	})
	if res.X.Source != SourceGrid {
		t.Fatalf("expected grid to win with overridden precedence, got %v", res.X.Source)
	}
}

func TestCompute_ToleranceBoundaryInclusive(t *testing.T) {
	sib := []vector.Rect{vector.R(0, 0, 10, 10)}
	res := Compute(Input{Moving: vector.R(20, 500, 10, 10), Options: objectsOnly(10), Siblings: sib})
	if !res.X.Snapped || res.Rect.X != 10 {
		t.Fatalf("candidate at exactly tolerance should snap, got %+v", res)
	}
	res = Compute(Input{Moving: vector.R(20.000001, 500, 10, 10), Options: objectsOnly(10), Siblings: sib})
	if res.X.Snapped || res.Rect.X != 20.000001 {
		t.Fatalf("candidate beyond tolerance should not snap, got %+v", res)
	}
	if len(res.Lines) != 0 {
		t.Fatalf("no guide expected without snap, got %+v", res.Lines)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	in := Input{
		Moving:     vector.R(47, 52, 30, 20),
		Options:    Options{SnapToGrid: true, SnapToCanvas: true, SnapToObjects: true, SnapGridSize: 25, Tolerance: 5},
		Siblings:   []vector.Rect{vector.R(0, 0, 50, 50), vector.R(80, 50, 20, 20)},
		Workspaces: []vector.Rect{vector.R(0, 0, 400, 300)},
	}
	a := Compute(in)
	b := Compute(in)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("identical input produced different results:\n%+v\n%+v", a, b)
	}
}

func TestCompute_NoCandidatesMovesFreely(t *testing.T) {
	m := vector.R(13, 17, 5, 5)
	res := Compute(Input{Moving: m, Options: Options{Tolerance: 6}})
	if res.Rect != m || res.X.Snapped || res.Y.Snapped || res.Lines != nil {
		t.Fatalf("expected untouched result, got %+v", res)
	}
	res = Compute(Input{Moving: m, Options: objectsOnly(6)})
	if res.Rect != m {
		t.Fatalf("expected untouched rect with no siblings, got %+v", res.Rect)
	}
}

func TestCompute_FarEdgeAlignsToPage(t *testing.T) {
	res := Compute(Input{
		Moving:     vector.R(397, 1000, 100, 40),
		Options:    Options{SnapToCanvas: true, Tolerance: 6},
		Workspaces: []vector.Rect{vector.R(0, 0, 500, 500)},
	})
	if res.X.Source != SourceCanvas || res.Rect.X != 400 {
		t.Fatalf("expected right edge flush with page, got %+v", res)
	}
	if res.X.Point != PointEnd || res.X.Value != 500 {
		t.Fatalf("expected the right edge to match the page edge, got %+v", res.X)
	}
	if len(res.Lines) != 1 || res.Lines[0].Position != 500 {
		t.Fatalf("expected one guide on the page edge at 500, got %+v", res.Lines)
	}
}

func TestCompute_FarEdgeVertical(t *testing.T) {
	res := Compute(Input{
		Moving:     vector.R(1000, 456, 40, 40),
		Options:    Options{SnapToCanvas: true, Tolerance: 6},
		Workspaces: []vector.Rect{vector.R(0, 0, 500, 500)},
	})
	if res.Rect.Y != 460 || res.Y.Value != 500 {
		t.Fatalf("expected bottom edge on the page bottom, got %+v", res.Y)
	}
}

func TestCompute_SkipsEmptyWorkspaces(t *testing.T) {
	res := Compute(Input{
		Moving:     vector.R(2, 2, 10, 10),
		Options:    Options{SnapToCanvas: true, Tolerance: 6},
		Workspaces: []vector.Rect{vector.R(0, 0, 0, 100)},
	})
	if res.X.Snapped || res.Y.Snapped {
		t.Fatalf("zero-size workspace must not produce candidates: %+v", res)
	}
}

func TestCompute_GuideLineExtents(t *testing.T) {
	res := Compute(Input{
		Moving:   vector.R(3, 200, 50, 50),
		Options:  objectsOnly(6),
		Siblings: []vector.Rect{vector.R(0, 0, 100, 100)},
	})
	if len(res.Lines) != 1 {
		t.Fatalf("expected one guide, got %+v", res.Lines)
	}
	g := res.Lines[0]
	if g.Orientation != Vertical || g.Position != 0 || g.Source != SourceObject {
		t.Fatalf("unexpected guide: %+v", g)
	}
	if g.From != (vector.Pt{X: 0, Y: 0}) || g.To != (vector.Pt{X: 0, Y: 250}) {
		t.Fatalf("unexpected guide extents: %+v -> %+v", g.From, g.To)
	}
}

func TestCompute_CenterAlignment(t *testing.T) {
	// centre of moving (x=48..68 -> 58) near sibling centre 60
	res := Compute(Input{
		Moving:   vector.R(48, 500, 20, 20),
		Options:  objectsOnly(3),
		Siblings: []vector.Rect{vector.R(40, 0, 40, 40)},
	})
	if res.X.Point != PointCenter || res.Rect.X != 50 {
		t.Fatalf("expected centre alignment to x=50, got %+v", res)
	}
}

func TestComputeResize_MovesOnlyDraggedEdge(t *testing.T) {
	in := Input{
		Moving:   vector.R(0, 0, 97, 50),
		Options:  objectsOnly(6),
		Siblings: []vector.Rect{vector.R(100, 300, 20, 20)},
	}
	res := ComputeResize(in, EdgeRight, 1)
	if res.Rect.X != 0 || res.Rect.W != 100 {
		t.Fatalf("expected right edge snapped to 100, got %+v", res.Rect)
	}
	in.Moving = vector.R(3, 0, 97, 50)
	in.Siblings = []vector.Rect{vector.R(-50, 300, 50, 20)}
	res = ComputeResize(in, EdgeLeft|EdgeTop, 1)
	if res.Rect.X != 0 || res.Rect.W != 100 || res.Rect.Y != 0 {
		t.Fatalf("expected left edge snapped to 0 keeping right edge, got %+v", res.Rect)
	}
}

func TestComputeResize_RejectsCollapse(t *testing.T) {
	in := Input{
		Moving:   vector.R(0, 0, 4, 50),
		Options:  objectsOnly(6),
		Siblings: []vector.Rect{vector.R(0, 300, 20, 20)},
	}
	res := ComputeResize(in, EdgeRight, 1)
	if res.X.Snapped || res.Rect.W != 4 {
		t.Fatalf("snap collapsing the box should be rejected, got %+v", res)
	}
}
