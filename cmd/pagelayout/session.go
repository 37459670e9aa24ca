/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pagelayout/internal/config"
	"pagelayout/internal/interact"
	applog "pagelayout/internal/log"
	"pagelayout/internal/scene"
	"pagelayout/internal/snap"
	"pagelayout/internal/storage"
	"pagelayout/internal/undo"
	"pagelayout/internal/vector"
	"pagelayout/internal/viewport"
)

// viewAllPages keys the viewport state of the whole spread.
const viewAllPages = 0

// session is one editing run of the CLI: a loaded layout driven through the
// interaction controller with an identity viewport, so screen points are
// canvas points.
type session struct {
	ctx    context.Context
	cfg    config.AppConfig
	h      *storage.Handle
	canvas *scene.Canvas
	snaps  *snap.Store
	ctl    *interact.Controller
	label  string
	page   int
	saved  bool
	log    *slog.Logger
}

func openSession(ctx context.Context, root string, cfg config.AppConfig, label string) (*session, error) {
	h, err := storage.Open(root)
	if err != nil {
		return nil, err
	}
	guard.Attach(h)
	c, err := h.Canvas()
	if err != nil {
		return nil, err
	}
	opts := h.Doc.Snapping
	if opts.SnapGridSize <= 0 {
		opts = cfg.SnapOptions()
	}
	s := &session{
		ctx:    ctx,
		cfg:    cfg,
		h:      h,
		canvas: c,
		snaps:  snap.NewStore(opts),
		label:  label,
		page:   1,
		log:    applog.WithComponent("session"),
	}
	view := viewport.NewEngine(cfg.ViewportOptions(), c.WorkspaceRects)
	view.Restore(viewport.State{Matrix: vector.Identity})
	d := interact.Deps{
		Canvas:  c,
		View:    view,
		Snaps:   s.snaps,
		History: undo.NewManager(cfg.Undo),
	}
	if cfg.General.Autosave {
		d.Save = s.persist
	}
	s.ctl = interact.New(d)
	guard.Watch(c, s.snaps, view)
	return s, nil
}

// newObject builds a selectable object of kind at x,y with size w x h.
func newObject(kind string, x, y, w, h float64) *scene.Object {
	return &scene.Object{
		Kind:       scene.Kind(kind),
		Left:       x,
		Top:        y,
		Width:      w,
		Height:     h,
		Selectable: true,
	}
}

// add inserts o on the page containing its centre.
func (s *session) add(o *scene.Object) error {
	s.page = s.pageOf(vector.R(o.Left, o.Top, o.Width, o.Height))
	guard.SetPage(s.page)
	return s.ctl.Add(o)
}

// drag moves id so its bounding box starts near target, snapping on the way.
func (s *session) drag(id string, target vector.Pt) (vector.Rect, error) {
	b, ok := s.canvas.AbsoluteBounds(id)
	if !ok {
		return vector.Rect{}, fmt.Errorf("object %q not found", id)
	}
	s.page = s.pageOf(b)
	guard.SetPage(s.page)
	from := vector.Pt{X: b.X, Y: b.Y}
	if !s.ctl.BeginDrag(from, id) {
		return vector.Rect{}, fmt.Errorf("object %q cannot be moved", id)
	}
	s.ctl.DragTo(target)
	for _, ln := range s.ctl.Lines() {
		s.log.Debug("guide", slog.String("orientation", string(ln.Orientation)), slog.Float64("position", ln.Position), slog.String("source", ln.Source.String()))
	}
	if err := s.ctl.PointerUp(interact.ButtonLeft); err != nil {
		return vector.Rect{}, err
	}
	b, _ = s.canvas.AbsoluteBounds(id)
	return b, nil
}

func (s *session) pageOf(b vector.Rect) int {
	centre := b.Center()
	for _, ws := range s.canvas.Workspaces() {
		if ws.Bounds.Contains(centre) {
			return ws.PageNumber
		}
	}
	return 1
}

// persist saves the manifest and records the committed state in the index.
func (s *session) persist() error {
	if err := s.h.SaveCanvas(s.canvas, s.snaps.Snapshot()); err != nil {
		return err
	}
	s.saved = true
	if keep := s.cfg.General.KeepBackups; keep > 0 {
		if _, err := storage.PruneBackups(s.h.Root, keep); err != nil {
			s.log.Warn("prune backups failed", slog.Any("err", err))
		}
	}
	snapshot, err := undo.Capture(s.canvas, s.page, s.label, time.Now())
	if err != nil {
		return err
	}
	if err := storage.SaveSnapshot(s.ctx, s.h, snapshot); err != nil {
		return fmt.Errorf("record snapshot: %w", err)
	}
	if keep := s.cfg.General.KeepHistory; keep > 0 {
		if _, err := storage.PruneOldSnapshots(s.ctx, s.h, s.page, keep); err != nil {
			s.log.Warn("prune snapshots failed", slog.Any("err", err))
		}
	}
	return nil
}

// finish persists once when autosave is off.
func (s *session) finish() error {
	if s.saved || s.cfg.General.Autosave {
		return nil
	}
	return s.persist()
}
