/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import (
	"math"

	"pagelayout/internal/vector"
)

// Axis selects the X or Y coordinate.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Point is one of the three comparison points of a box on an axis.
type Point int

const (
	PointStart  Point = iota // left / top
	PointCenter              // horizontal / vertical centre
	PointEnd                 // right / bottom
)

// Orientation of a guide line.
type Orientation string

const (
	Vertical   Orientation = "vertical"
	Horizontal Orientation = "horizontal"
)

// Candidate is a coordinate a comparison point may lock onto.
type Candidate struct {
	Axis   Axis
	Value  float64
	Source Source
	// Extent is the region the candidate was derived from, used to size the
	// guide line. Empty for grid candidates.
	Extent vector.Rect
}

// AxisResult is the outcome on one axis.
type AxisResult struct {
	Snapped bool
	// Value is the candidate coordinate the comparison point aligned to.
	Value float64
	// Delta is the correction applied to the box position.
	Delta  float64
	Source Source
	Point  Point
}

// Line is a guide to render for the current tick.
type Line struct {
	Orientation Orientation
	Position    float64
	Source      Source
	From, To    vector.Pt
}

// Input describes one drag tick.
type Input struct {
	// Moving is the proposed absolute box of the dragged object(s).
	Moving     vector.Rect
	Options    Options
	Siblings   []vector.Rect
	Workspaces []vector.Rect
}

// Result is the snapped box and its guide lines.
type Result struct {
	Rect  vector.Rect
	X, Y  AxisResult
	Lines []Line
}

// tieEps treats distances this close as equal so precedence decides.
const tieEps = 1e-9

// Compute snaps a moving box independently on X and Y.
func Compute(in Input) Result {
	res := Result{Rect: in.Moving}
	if !in.Options.Enabled() {
		return res
	}
	cands := Candidates(in)
	all := [3]Point{PointStart, PointCenter, PointEnd}
	res.X = best(cands, AxisX, in.Moving, all[:], in.Options)
	res.Y = best(cands, AxisY, in.Moving, all[:], in.Options)
	res.Rect.X += res.X.Delta
	res.Rect.Y += res.Y.Delta
	res.Lines = lines(res, cands)
	return res
}

// Candidates builds the candidate set for in, X candidates first. The order is
// deterministic: grid, canvas, objects, each in input order.
func Candidates(in Input) []Candidate {
	var out []Candidate
	o := in.Options
	m := in.Moving
	if o.SnapToGrid && o.SnapGridSize > 0 {
		out = append(out, gridCandidates(AxisX, m, o)...)
		out = append(out, gridCandidates(AxisY, m, o)...)
	}
	if o.SnapToCanvas {
		for _, ws := range in.Workspaces {
			if ws.IsEmpty() {
				continue
			}
			out = append(out,
				Candidate{Axis: AxisX, Value: ws.X, Source: SourceCanvas, Extent: ws},
				Candidate{Axis: AxisX, Value: ws.Center().X, Source: SourceCanvas, Extent: ws},
				Candidate{Axis: AxisX, Value: ws.Right(), Source: SourceCanvas, Extent: ws},
				Candidate{Axis: AxisY, Value: ws.Y, Source: SourceCanvas, Extent: ws},
				Candidate{Axis: AxisY, Value: ws.Center().Y, Source: SourceCanvas, Extent: ws},
				Candidate{Axis: AxisY, Value: ws.Bottom(), Source: SourceCanvas, Extent: ws},
			)
		}
	}
	if o.SnapToObjects {
		for _, s := range in.Siblings {
			c := s.Center()
			out = append(out,
				Candidate{Axis: AxisX, Value: s.X, Source: SourceObject, Extent: s},
				Candidate{Axis: AxisX, Value: c.X, Source: SourceObject, Extent: s},
				Candidate{Axis: AxisX, Value: s.Right(), Source: SourceObject, Extent: s},
				Candidate{Axis: AxisY, Value: s.Y, Source: SourceObject, Extent: s},
				Candidate{Axis: AxisY, Value: c.Y, Source: SourceObject, Extent: s},
				Candidate{Axis: AxisY, Value: s.Bottom(), Source: SourceObject, Extent: s},
			)
		}
	}
	return out
}

// gridCandidates returns the grid lines bracketing each comparison point that
// lie within tolerance of it.
func gridCandidates(axis Axis, m vector.Rect, o Options) []Candidate {
	g := o.SnapGridSize
	tol := o.tolerance()
	var out []Candidate
	seen := map[float64]bool{}
	for _, p := range [3]Point{PointStart, PointCenter, PointEnd} {
		v := pointValue(m, axis, p)
		for _, line := range [2]float64{math.Floor(v/g) * g, math.Ceil(v/g) * g} {
			if seen[line] || math.Abs(line-v) > tol {
				continue
			}
			seen[line] = true
			out = append(out, Candidate{Axis: axis, Value: line, Source: SourceGrid})
		}
	}
	return out
}

func pointValue(r vector.Rect, axis Axis, p Point) float64 {
	start, size := r.X, r.W
	if axis == AxisY {
		start, size = r.Y, r.H
	}
	switch p {
	case PointCenter:
		return start + size/2
	case PointEnd:
		return start + size
	default:
		return start
	}
}

type match struct {
	dist float64
	res  AxisResult
	rank int
}

// best picks the closest candidate within tolerance on one axis. Ties go to
// the higher-precedence source, then the earlier comparison point, then the
// smaller coordinate.
func best(cands []Candidate, axis Axis, m vector.Rect, points []Point, o Options) AxisResult {
	tol := o.tolerance()
	var cur *match
	for _, c := range cands {
		if c.Axis != axis {
			continue
		}
		for _, p := range points {
			d := c.Value - pointValue(m, axis, p)
			dist := math.Abs(d)
			if dist > tol {
				continue
			}
			next := match{
				dist: dist,
				rank: o.rank(c.Source),
				res:  AxisResult{Snapped: true, Value: c.Value, Delta: d, Source: c.Source, Point: p},
			}
			if cur == nil || better(next, *cur) {
				n := next
				cur = &n
			}
		}
	}
	if cur == nil {
		return AxisResult{}
	}
	return cur.res
}

func better(a, b match) bool {
	if a.dist < b.dist-tieEps {
		return true
	}
	if a.dist > b.dist+tieEps {
		return false
	}
	if a.rank != b.rank {
		return a.rank > b.rank
	}
	if a.res.Point != b.res.Point {
		return a.res.Point < b.res.Point
	}
	return a.res.Value < b.res.Value
}

// lines builds at most one guide per snapped axis spanning the snapped box and
// the region the winning candidate came from.
func lines(res Result, cands []Candidate) []Line {
	var out []Line
	if res.X.Snapped {
		span := spanFor(res.Rect, cands, AxisX, res.X)
		x := vector.FloatRound(res.X.Value, 3)
		out = append(out, Line{Orientation: Vertical, Position: x, Source: res.X.Source,
			From: vector.Pt{X: x, Y: span.Y}, To: vector.Pt{X: x, Y: span.Bottom()}})
	}
	if res.Y.Snapped {
		span := spanFor(res.Rect, cands, AxisY, res.Y)
		y := vector.FloatRound(res.Y.Value, 3)
		out = append(out, Line{Orientation: Horizontal, Position: y, Source: res.Y.Source,
			From: vector.Pt{X: span.X, Y: y}, To: vector.Pt{X: span.Right(), Y: y}})
	}
	return out
}

func spanFor(moving vector.Rect, cands []Candidate, axis Axis, r AxisResult) vector.Rect {
	span := moving
	for _, c := range cands {
		if c.Axis == axis && c.Source == r.Source && c.Value == r.Value && !c.Extent.IsEmpty() {
			span = span.Union(c.Extent)
		}
	}
	return span
}
