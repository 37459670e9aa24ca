/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Transform is the decomposed placement of an object: origin, scale and
// rotation in degrees. Rotation and scale happen about the origin.
type Transform struct {
	Left, Top      float64
	ScaleX, ScaleY float64
	Angle          float64
}

// Matrix returns T(left,top)·R(angle)·S(sx,sy). Zero scales are treated as 1
// so an unset Transform behaves as identity.
func (t Transform) Matrix() Affine2D {
	sx, sy := t.scale()
	return Translate(t.Left, t.Top).Mul(RotateDeg(t.Angle)).Mul(Scale(sx, sy))
}

func (t Transform) scale() (float64, float64) {
	sx, sy := t.ScaleX, t.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return sx, sy
}

// ChainMatrix composes own with its ancestor group transforms. ancestors are
// ordered nearest first (parent, grandparent, ...).
func ChainMatrix(own Transform, ancestors []Transform) Affine2D {
	m := own.Matrix()
	for _, a := range ancestors {
		m = a.Matrix().Mul(m)
	}
	return m
}

// GroupMatrix maps a group's local space to canvas space. groups are ordered
// innermost first.
func GroupMatrix(groups []Transform) Affine2D {
	m := Identity
	for _, g := range groups {
		m = g.Matrix().Mul(m)
	}
	return m
}

// AbsoluteBounds returns the canvas-space bounding box of an object with the
// given unscaled box size. Rotation anywhere in the chain widens the box to
// the rotated corner envelope.
func AbsoluteBounds(box Size, own Transform, ancestors []Transform) Rect {
	return Bounds(Rect{W: box.W, H: box.H}, ChainMatrix(own, ancestors))
}

// EffectiveScale multiplies the object's scale with every ancestor scale.
func EffectiveScale(own Transform, ancestors []Transform) (sx, sy float64) {
	sx, sy = own.scale()
	for _, a := range ancestors {
		ax, ay := a.scale()
		sx *= ax
		sy *= ay
	}
	return sx, sy
}

// ToLocal expresses an absolute point in the local space of the innermost
// group in groups.
func ToLocal(p Pt, groups []Transform) Pt {
	return GroupMatrix(groups).Invert().Apply(p)
}

// ToAbsolute is the inverse of ToLocal.
func ToAbsolute(p Pt, groups []Transform) Pt {
	return GroupMatrix(groups).Apply(p)
}

// DeltaToLocal converts an absolute displacement into the displacement of an
// origin inside groups. Translation does not affect vectors.
func DeltaToLocal(d Pt, groups []Transform) Pt {
	inv := GroupMatrix(groups).Invert()
	inv.E, inv.F = 0, 0
	return inv.Apply(d)
}
