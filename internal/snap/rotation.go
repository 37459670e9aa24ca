/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import "math"

// SnapAngle clamps angle (degrees) to the nearest multiple of 90 when it lies
// within RotationTolerance of it, inclusive. The snapped angle is normalised
// to [0, 360). Angles outside tolerance are returned unchanged.
func SnapAngle(angle float64, o Options) (float64, bool) {
	if !o.SnapRotation || math.IsNaN(angle) || math.IsInf(angle, 0) {
		return angle, false
	}
	tol := o.RotationTolerance
	if tol < 0 {
		tol = 0
	}
	target := math.Round(angle/90) * 90
	if math.Abs(angle-target) > tol {
		return angle, false
	}
	n := math.Mod(target, 360)
	if n < 0 {
		n += 360
	}
	return n + 0, true // +0 folds -0 into 0
}
