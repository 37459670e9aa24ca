/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"testing"

	"pagelayout/internal/vector"
)

func TestWorkspaceNaming(t *testing.T) {
	cases := []struct {
		name string
		ok   bool
		page int
	}{
		{"clip", true, 1},
		{"clip-page-3", true, 3},
		{"clip-page-", false, 0},
		{"clip-page-x", false, 0},
		{"clipboard", false, 0},
	}
	for _, c := range cases {
		if IsWorkspaceName(c.name) != c.ok {
			t.Fatalf("IsWorkspaceName(%q) = %v", c.name, !c.ok)
		}
		n, ok := PageNumberFromName(c.name)
		if ok != c.ok || n != c.page {
			t.Fatalf("PageNumberFromName(%q) = %d,%v", c.name, n, ok)
		}
	}
	if WorkspaceName(12) != "clip-page-12" {
		t.Fatalf("unexpected workspace name %q", WorkspaceName(12))
	}
}

func TestWorkspacesSortedByPage(t *testing.T) {
	c := NewCanvas()
	_ = c.Add(NewWorkspace(2, 2, vector.R(600, 0, 500, 400)))
	_ = c.Add(NewWorkspace(1, 2, vector.R(0, 0, 500, 400)))
	_ = c.Add(&Object{Kind: KindImage, Name: "photo", Width: 5, Height: 5})
	ws := c.Workspaces()
	if len(ws) != 2 || ws[0].PageNumber != 1 || ws[1].PageNumber != 2 {
		t.Fatalf("unexpected workspaces: %+v", ws)
	}
	if ws[1].Bounds != vector.R(600, 0, 500, 400) {
		t.Fatalf("unexpected bounds: %+v", ws[1].Bounds)
	}
	if NewWorkspace(1, 1, vector.R(0, 0, 1, 1)).Name != "clip" {
		t.Fatalf("single page should use the clip tag")
	}
}

func TestLoadTwoPhaseResolvesForwardReferences(t *testing.T) {
	// The image and the member appear before the frame and group they refer to.
	objs := []Object{
		{ID: "img", Kind: KindFramedImage, Width: 200, Height: 200, LinkID: "frame"},
		{ID: "m1", Kind: KindShape, Left: 5, Top: 5, Width: 10, Height: 10, GroupID: "g"},
		{ID: "g", Kind: KindGroup, Left: 100, Top: 100, Width: 50, Height: 50},
		{ID: "frame", Kind: KindImageFrame, Left: 20, Top: 30, Width: 80, Height: 60, LinkID: "img"},
		{ID: "orphan", Kind: KindShape, GroupID: "missing", Width: 1, Height: 1},
		{ID: "half", Kind: KindImage, LinkID: "frame", Width: 1, Height: 1},
	}
	c, err := Load(objs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	img, _ := c.Get("img")
	if img.Clip == nil || *img.Clip != vector.R(20, 30, 80, 60) {
		t.Fatalf("expected clip resolved in second pass, got %+v", img.Clip)
	}
	if bb, _ := c.AbsoluteBounds("m1"); bb != vector.R(105, 105, 10, 10) {
		t.Fatalf("member not attached to group: %+v", bb)
	}
	orphan, _ := c.Get("orphan")
	if orphan.GroupID != "" {
		t.Fatalf("dangling group reference should be dropped")
	}
	half, _ := c.Get("half")
	if half.LinkID != "" {
		t.Fatalf("one-sided link should be dropped")
	}
	if got := len(c.TopLevel()); got != 5 {
		t.Fatalf("expected 5 top-level objects, got %d", got)
	}

	again, err := Load(c.Export())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Len() != c.Len() {
		t.Fatalf("export/load changed object count: %d vs %d", again.Len(), c.Len())
	}
}

func TestLoadRejectsMissingID(t *testing.T) {
	if _, err := Load([]Object{{Kind: KindShape}}); err == nil {
		t.Fatalf("expected error for missing id")
	}
}
