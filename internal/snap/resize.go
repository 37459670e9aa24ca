/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import "math"

// Edges is a set of box edges moved by a resize handle.
type Edges uint8

const (
	EdgeLeft Edges = 1 << iota
	EdgeRight
	EdgeTop
	EdgeBottom
)

// Has reports whether e contains all of x.
func (e Edges) Has(x Edges) bool { return e&x == x }

// ComputeResize snaps only the edges being dragged by a resize handle; the
// opposite edges stay where they are. The box never collapses below
// minSize on a snapped axis.
func ComputeResize(in Input, edges Edges, minSize float64) Result {
	res := Result{Rect: in.Moving}
	if !in.Options.Enabled() || edges == 0 {
		return res
	}
	cands := Candidates(in)
	if p, ok := resizePoint(edges, EdgeLeft, EdgeRight); ok {
		res.X = best(cands, AxisX, in.Moving, []Point{p}, in.Options)
	}
	if p, ok := resizePoint(edges, EdgeTop, EdgeBottom); ok {
		res.Y = best(cands, AxisY, in.Moving, []Point{p}, in.Options)
	}
	minSize = math.Max(minSize, 0)
	if res.X.Snapped {
		r := res.Rect
		if res.X.Point == PointStart {
			r.X += res.X.Delta
			r.W -= res.X.Delta
		} else {
			r.W += res.X.Delta
		}
		if r.W >= minSize {
			res.Rect = r
		} else {
			res.X = AxisResult{}
		}
	}
	if res.Y.Snapped {
		r := res.Rect
		if res.Y.Point == PointStart {
			r.Y += res.Y.Delta
			r.H -= res.Y.Delta
		} else {
			r.H += res.Y.Delta
		}
		if r.H >= minSize {
			res.Rect = r
		} else {
			res.Y = AxisResult{}
		}
	}
	res.Lines = lines(res, cands)
	return res
}

func resizePoint(e, start, end Edges) (Point, bool) {
	switch {
	case e.Has(start):
		return PointStart, true
	case e.Has(end):
		return PointEnd, true
	}
	return 0, false
}
