/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

import (
	"encoding/json"
	"fmt"
	"time"

	"pagelayout/internal/scene"
)

// Capture serializes the canvas into a snapshot for page.
func Capture(c *scene.Canvas, page int, label string, ts time.Time) (Snapshot, error) {
	if !c.Alive() {
		return Snapshot{}, scene.ErrDisposed
	}
	blob, err := json.Marshal(c.Export())
	if err != nil {
		return Snapshot{}, fmt.Errorf("capture %s: %w", label, err)
	}
	return Snapshot{PageNumber: page, Label: label, Blob: blob, TS: ts}, nil
}

// Materialize rebuilds a canvas from a snapshot.
func Materialize(s Snapshot) (*scene.Canvas, error) {
	var objs []scene.Object
	if err := json.Unmarshal(s.Blob, &objs); err != nil {
		return nil, fmt.Errorf("restore %s: %w", s.Label, err)
	}
	return scene.Load(objs)
}

// Apply restores s into c in place.
func Apply(c *scene.Canvas, s Snapshot) error {
	var objs []scene.Object
	if err := json.Unmarshal(s.Blob, &objs); err != nil {
		return fmt.Errorf("restore %s: %w", s.Label, err)
	}
	return c.Replace(objs)
}
