/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

import (
	"testing"
	"time"

	"pagelayout/internal/scene"
)

func snap(page int, label, blob string, ts time.Time) Snapshot {
	return Snapshot{PageNumber: page, Label: label, Blob: []byte(blob), TS: ts}
}

func TestUndoRedoBasic(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024 * 1024, MaxPerPage: 10, MinInterval: 10 * time.Millisecond})
	pg := 1
	t0 := time.Now()
	m.Reset(snap(pg, "open", "a", t0))
	m.Push(snap(pg, "move", "b", t0.Add(20*time.Millisecond)))
	if _, pages, total := m.Stats(); pages != 1 || total != 2 {
		t.Fatalf("expected 1 page and 2 snapshots, got pages=%d total=%d", pages, total)
	}
	s, ok := m.Undo(pg)
	if !ok || string(s.Blob) != "a" {
		t.Fatalf("undo expected 'a', got ok=%v blob=%q", ok, string(s.Blob))
	}
	if _, ok := m.Undo(pg); ok {
		t.Fatalf("baseline must not be undone")
	}
	s, ok = m.Redo(pg)
	if !ok || string(s.Blob) != "b" {
		t.Fatalf("redo expected 'b', got ok=%v blob=%q", ok, string(s.Blob))
	}
	if m.CanRedo(pg) || !m.CanUndo(pg) {
		t.Fatalf("unexpected can-undo/redo state")
	}
}

func TestPushClearsRedo(t *testing.T) {
	m := NewManager(Config{})
	t0 := time.Now()
	m.Reset(snap(1, "open", "a", t0))
	m.Push(snap(1, "move", "b", t0.Add(time.Second)))
	m.Undo(1)
	m.Push(snap(1, "rotate", "c", t0.Add(2*time.Second)))
	if m.CanRedo(1) {
		t.Fatalf("new change must clear redo")
	}
}

func TestCoalesceSameLabel(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024 * 1024, MaxPerPage: 10, MinInterval: 50 * time.Millisecond})
	pg := 2
	t0 := time.Now()
	m.Reset(snap(pg, "open", "0", t0))
	m.Push(snap(pg, "nudge", "1", t0.Add(time.Millisecond)))
	m.Push(snap(pg, "nudge", "2", t0.Add(10*time.Millisecond)))
	m.Push(snap(pg, "move", "3", t0.Add(20*time.Millisecond)))
	if _, _, total := m.Stats(); total != 3 {
		t.Fatalf("expected 3 snapshots after coalescing, got %d", total)
	}
	s, _ := m.Undo(pg)
	if string(s.Blob) != "2" {
		t.Fatalf("expected coalesced nudge '2', got %q", string(s.Blob))
	}
}

func TestCaps(t *testing.T) {
	m := NewManager(Config{MaxBytes: 20, MaxPerPage: 2, MinInterval: time.Millisecond})
	pg := 3
	t0 := time.Now()
	for i := 0; i < 10; i++ {
		m.Push(snap(pg, "move", "xxxxx", t0.Add(time.Duration(i)*time.Second)))
	}
	bytes, _, total := m.Stats()
	if total > 2 || bytes > 20 {
		t.Fatalf("caps not enforced: total=%d bytes=%d", total, bytes)
	}
}

func TestCapsKeepBaseline(t *testing.T) {
	m := NewManager(Config{MaxBytes: 15, MaxPerPage: 3, MinInterval: time.Millisecond})
	pg := 4
	t0 := time.Now()
	m.Reset(snap(pg, "open", "base0", t0))
	for i := 1; i <= 6; i++ {
		m.Push(snap(pg, "move", "xxxxx", t0.Add(time.Duration(i)*time.Second)))
	}
	bytes, _, total := m.Stats()
	if total != 3 || bytes != 15 {
		t.Fatalf("expected baseline plus two entries within 15 bytes, got total=%d bytes=%d", total, bytes)
	}
	var last Snapshot
	for {
		s, ok := m.Undo(pg)
		if !ok {
			break
		}
		last = s
	}
	if string(last.Blob) != "base0" {
		t.Fatalf("expected undo to reach the baseline, got %q", string(last.Blob))
	}
}

func TestCaptureMaterialize(t *testing.T) {
	c := scene.NewCanvas()
	if err := c.Add(&scene.Object{ID: "a", Kind: scene.KindShape, Left: 5, Top: 6, Width: 10, Height: 10, Selectable: true}); err != nil {
		t.Fatalf("add: %v", err)
	}
	s, err := Capture(c, 1, "open", time.Now())
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	c.MoveBy("a", 100, 0)
	back, err := Materialize(s)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	o, ok := back.Get("a")
	if !ok || o.Left != 5 {
		t.Fatalf("restored object = %+v", o)
	}
	c.Dispose()
	if _, err := Capture(c, 1, "x", time.Now()); err == nil {
		t.Fatalf("expected error on disposed canvas")
	}
}
