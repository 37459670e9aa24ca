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

// maxGridLines bounds GridLines output when zoomed far out.
const maxGridLines = 4096

// GridLines returns the x and y coordinates of the visual grid inside view,
// spaced by size. Zero when the grid is hidden or would be too dense.
func GridLines(view vector.Rect, o Options) (xs, ys []float64) {
	size := o.VisualGridSize
	if !o.ShowGrid || size <= 0 || view.IsEmpty() {
		return nil, nil
	}
	if view.W/size > maxGridLines || view.H/size > maxGridLines {
		return nil, nil
	}
	for x := math.Ceil(view.X/size) * size; x <= view.Right(); x += size {
		xs = append(xs, x)
	}
	for y := math.Ceil(view.Y/size) * size; y <= view.Bottom(); y += size {
		ys = append(ys, y)
	}
	return xs, ys
}
