/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pagelayout/internal/scene"
	"pagelayout/internal/snap"
)

var a4 = PageSize{Width: 595, Height: 842}

func TestInitLayoutCreatesStructureAndManifest(t *testing.T) {
	root := t.TempDir()
	h, err := InitLayout(root, NewDocument("Album", 2, a4))
	if err != nil {
		t.Fatalf("InitLayout error: %v", err)
	}
	b, err := os.ReadFile(h.ManifestPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var got Document
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal manifest: %v", err)
	}
	if got.Name != "Album" || got.Version != FormatVersion {
		t.Fatalf("manifest mismatch: %+v", got)
	}
	if len(got.Objects) != 2 || got.Objects[1].Name != scene.WorkspaceName(2) {
		t.Fatalf("expected two page workspaces, got %+v", got.Objects)
	}
	if got.Objects[1].Left != a4.Width+DefaultPageGap {
		t.Fatalf("second page at %v", got.Objects[1].Left)
	}
	for _, d := range []string{"assets", "exports", BackupsDirName} {
		p := filepath.Join(root, d)
		if fi, err := os.Stat(p); err != nil || !fi.IsDir() {
			t.Fatalf("expected directory %s to exist", p)
		}
	}
}

func TestSingleWorkspaceUsesClipName(t *testing.T) {
	doc := NewDocument("One", 1, a4)
	if doc.Objects[0].Name != scene.SingleWorkspaceName {
		t.Fatalf("single page named %q", doc.Objects[0].Name)
	}
}

func TestSaveCreatesTimestampedBackup(t *testing.T) {
	root := t.TempDir()
	h, err := InitLayout(root, NewDocument("Backup", 1, a4))
	if err != nil {
		t.Fatalf("InitLayout error: %v", err)
	}
	h.Doc.Name = "Backup 2"
	if err := Save(h); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	ents, err := os.ReadDir(filepath.Join(root, BackupsDirName))
	if err != nil {
		t.Fatalf("read backups dir: %v", err)
	}
	var bakCount int
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, ManifestFileName+".") && strings.HasSuffix(name, ".bak") {
			bakCount++
		}
	}
	if bakCount == 0 {
		t.Fatalf("expected at least one backup file, found 0")
	}
	if n, err := PruneBackups(root, 0); err != nil || n != bakCount {
		t.Fatalf("PruneBackups removed %d of %d: %v", n, bakCount, err)
	}
}

func TestOpenFallsBackToLatestBackupOnCorruption(t *testing.T) {
	root := t.TempDir()
	h, err := InitLayout(root, NewDocument("From Backup", 1, a4))
	if err != nil {
		t.Fatalf("InitLayout error: %v", err)
	}
	if err := Save(h); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := os.WriteFile(h.ManifestPath, []byte("{ this is not json"), 0o644); err != nil {
		t.Fatalf("corrupt manifest: %v", err)
	}
	opened, err := Open(root)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if opened.Doc.Name != "From Backup" {
		t.Fatalf("opened name mismatch: %q", opened.Doc.Name)
	}
}

func TestSaveCanvasRoundTripsGroupsAndLinks(t *testing.T) {
	root := t.TempDir()
	h, err := InitLayout(root, NewDocument("Canvas", 1, a4))
	if err != nil {
		t.Fatalf("InitLayout error: %v", err)
	}
	c, err := h.Canvas()
	if err != nil {
		t.Fatalf("Canvas: %v", err)
	}
	c.Add(&scene.Object{ID: "f", Kind: scene.KindImageFrame, Left: 10, Top: 10, Width: 100, Height: 80, Selectable: true})
	c.Add(&scene.Object{ID: "i", Kind: scene.KindFramedImage, Left: 0, Top: 0, Width: 300, Height: 200, Selectable: true})
	if err := c.Link("f", "i"); err != nil {
		t.Fatalf("link: %v", err)
	}
	c.Add(&scene.Object{ID: "s1", Kind: scene.KindShape, Left: 200, Top: 200, Width: 10, Height: 10, Selectable: true})
	c.Add(&scene.Object{ID: "s2", Kind: scene.KindShape, Left: 240, Top: 220, Width: 10, Height: 10, Selectable: true})
	g, err := c.Group("s1", "s2")
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	opts := snap.Defaults()
	opts.ShowGrid = true
	if err := h.SaveCanvas(c, opts); err != nil {
		t.Fatalf("SaveCanvas: %v", err)
	}

	opened, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !opened.Doc.Snapping.ShowGrid {
		t.Fatalf("snapping options not persisted")
	}
	back, err := opened.Canvas()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	img, ok := back.Linked("f")
	if !ok || img.ID != "i" || img.Clip == nil {
		t.Fatalf("frame link not restored: %+v", img)
	}
	rg, ok := back.Get(g.ID)
	if !ok || len(rg.Members) != 2 {
		t.Fatalf("group not restored: %+v", rg)
	}
	b, _ := back.AbsoluteBounds("s2")
	if b.X != 240 || b.Y != 220 {
		t.Fatalf("member absolute position = %+v", b)
	}
	if err := ValidateLayout(root); err != nil {
		t.Fatalf("saved manifest invalid: %v", err)
	}
}

func TestAutosaveCrashSnapshotWritesLiveCanvas(t *testing.T) {
	root := t.TempDir()
	h, err := InitLayout(root, NewDocument("Crash", 1, a4))
	if err != nil {
		t.Fatalf("InitLayout error: %v", err)
	}
	c, err := h.Canvas()
	if err != nil {
		t.Fatalf("Canvas error: %v", err)
	}
	if err := c.Add(&scene.Object{ID: "unsaved", Kind: scene.KindShape, Width: 10, Height: 10, Selectable: true}); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	path, err := AutosaveCrashSnapshot(h, c, snap.Defaults())
	if err != nil {
		t.Fatalf("AutosaveCrashSnapshot error: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(root, BackupsDirName) {
		t.Fatalf("crash snapshot outside backups: %s", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var got Document
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if got.Name != "Crash" || len(got.Objects) != 2 {
		t.Fatalf("snapshot content mismatch: %q with %d objects", got.Name, len(got.Objects))
	}
	reopened, err := Open(root)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if len(reopened.Doc.Objects) != 1 {
		t.Fatalf("manifest must stay untouched, got %d objects", len(reopened.Doc.Objects))
	}

	// without a canvas the loaded document is written
	path, err = AutosaveCrashSnapshot(h, nil, snap.Defaults())
	if err != nil {
		t.Fatalf("AutosaveCrashSnapshot without canvas: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot missing: %v", err)
	}
}
