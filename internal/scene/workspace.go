/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"pagelayout/internal/vector"
)

// Workspace naming: a single page is "clip", pages of a multi-page layout are
// "clip-page-<n>". The engines discover page boundaries only through this tag.
const (
	SingleWorkspaceName = "clip"
	pagePrefix          = "clip-page-"
)

var pageNameRe = regexp.MustCompile(`^clip-page-(\d+)$`)

// WorkspaceName returns the tag for page n.
func WorkspaceName(n int) string { return fmt.Sprintf("%s%d", pagePrefix, n) }

// IsWorkspaceName reports whether name follows the workspace tagging scheme.
func IsWorkspaceName(name string) bool {
	return name == SingleWorkspaceName || pageNameRe.MatchString(name)
}

// PageNumberFromName extracts n from "clip-page-<n>"; "clip" is page 1.
func PageNumberFromName(name string) (int, bool) {
	if name == SingleWorkspaceName {
		return 1, true
	}
	m := pageNameRe.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Workspace is a read-only view of a page region on the canvas.
type Workspace struct {
	ID         string
	Name       string
	PageNumber int
	Bounds     vector.Rect
}

// Workspaces returns every workspace on the canvas ordered by page number.
func (c *Canvas) Workspaces() []Workspace {
	if c == nil {
		return nil
	}
	var out []Workspace
	for _, o := range c.Filter(IsWorkspace) {
		n, _ := PageNumberFromName(o.Name)
		if o.PageNumber > 0 {
			n = o.PageNumber
		}
		b, _ := c.AbsoluteBounds(o.ID)
		out = append(out, Workspace{ID: o.ID, Name: o.Name, PageNumber: n, Bounds: b})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PageNumber < out[j].PageNumber })
	return out
}

// WorkspaceRects returns just the bounds of Workspaces.
func (c *Canvas) WorkspaceRects() []vector.Rect {
	ws := c.Workspaces()
	out := make([]vector.Rect, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Bounds)
	}
	return out
}

// NewWorkspace builds an unselectable workspace object for page n of total.
// A single-page layout uses the "clip" tag.
func NewWorkspace(n, total int, bounds vector.Rect) *Object {
	name := SingleWorkspaceName
	if total > 1 {
		name = WorkspaceName(n)
	}
	return &Object{
		Name:       name,
		Kind:       KindWorkspace,
		Left:       bounds.X,
		Top:        bounds.Y,
		Width:      bounds.W,
		Height:     bounds.H,
		ScaleX:     1,
		ScaleY:     1,
		PageNumber: n,
	}
}
