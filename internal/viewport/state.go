/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package viewport fits page workspaces into a resizable container and keeps
// the zoom/pan transform stable across container resizes and user zooming.
package viewport

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"pagelayout/internal/vector"
)

// State maps canvas space to screen space for a container of Width x Height
// pixels. Clip, when set, limits rendering to a single page.
type State struct {
	Matrix vector.Affine2D `json:"matrix"`
	Width  float64         `json:"width"`
	Height float64         `json:"height"`
	Clip   *vector.Rect    `json:"clip,omitempty"`
}

// Zoom is the uniform scale factor of the transform.
func (s State) Zoom() float64 { return s.Matrix.A }

// CanvasToScreen maps a canvas point into container pixels.
func (s State) CanvasToScreen(p vector.Pt) vector.Pt { return s.Matrix.Apply(p) }

// ScreenToCanvas maps a container pixel back into canvas space.
func (s State) ScreenToCanvas(p vector.Pt) vector.Pt { return s.Matrix.Invert().Apply(p) }

// Visible returns the canvas-space rectangle shown in the container.
func (s State) Visible() vector.Rect {
	return vector.Bounds(vector.R(0, 0, s.Width, s.Height), s.Matrix.Invert())
}

// Equal compares two states within eps.
func (s State) Equal(o State, eps float64) bool {
	a := []float64{s.Matrix.A, s.Matrix.B, s.Matrix.C, s.Matrix.D, s.Matrix.E, s.Matrix.F, s.Width, s.Height}
	b := []float64{o.Matrix.A, o.Matrix.B, o.Matrix.C, o.Matrix.D, o.Matrix.E, o.Matrix.F, o.Width, o.Height}
	if !floats.EqualApprox(a, b, eps) {
		return false
	}
	if (s.Clip == nil) != (o.Clip == nil) {
		return false
	}
	if s.Clip == nil {
		return true
	}
	return floats.EqualApprox(
		[]float64{s.Clip.X, s.Clip.Y, s.Clip.W, s.Clip.H},
		[]float64{o.Clip.X, o.Clip.Y, o.Clip.W, o.Clip.H}, eps)
}

// Fit computes the state that shows every usable workspace centred in a
// width x height container, scaled by margin. A single workspace also
// becomes the clip region; several workspaces are not clipped so the space
// between pages stays visible. It reports false when there is nothing to fit
// or the container has no size.
func Fit(workspaces []vector.Rect, width, height, margin float64) (State, bool) {
	if !(width > 0) || !(height > 0) {
		return State{}, false
	}
	var (
		bbox  vector.Rect
		count int
	)
	for _, ws := range workspaces {
		if ws.IsEmpty() {
			continue
		}
		if count == 0 {
			bbox = ws
		} else {
			bbox = bbox.Union(ws)
		}
		count++
	}
	if count == 0 {
		return State{}, false
	}
	scale := math.Min(width/bbox.W, height/bbox.H) * margin

	// Reset to identity, scale about the container centre, then pan so the
	// bbox centre lands on the container centre. Collapsed into one matrix:
	// p -> scale*p + (centre - scale*bboxCentre).
	centre := vector.Pt{X: width / 2, Y: height / 2}
	bc := bbox.Center()
	st := State{
		Matrix: vector.Affine2D{A: scale, D: scale, E: centre.X - scale*bc.X, F: centre.Y - scale*bc.Y},
		Width:  width,
		Height: height,
	}
	if count == 1 {
		clip := bbox
		st.Clip = &clip
	}
	return st, true
}
