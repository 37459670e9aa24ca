/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package interact turns pointer, wheel and keyboard input into viewport
// changes and snapped object-model mutations.
package interact

import (
	"context"
	"log/slog"
	"time"

	applog "pagelayout/internal/log"
	"pagelayout/internal/scene"
	"pagelayout/internal/snap"
	"pagelayout/internal/undo"
	"pagelayout/internal/vector"
	"pagelayout/internal/viewport"
)

// SaveFunc persists the layout. It runs after committed changes only,
// never per drag tick.
type SaveFunc func() error

const (
	DefaultPasteOffset = 10
	DefaultMinSize     = 1
)

// Deps wires a controller. Canvas, View and Snaps are required; the rest
// is optional.
type Deps struct {
	Canvas  *scene.Canvas
	View    *viewport.Engine
	Snaps   *snap.Store
	Save    SaveFunc
	History *undo.Manager
	// Page keys the undo history.
	Page        int
	PasteOffset float64
	MinSize     float64
	Now         func() time.Time
}

// Controller owns gesture state for one canvas. Like the canvas it is
// driven from the UI event loop only.
type Controller struct {
	canvas  *scene.Canvas
	view    *viewport.Engine
	snaps   *snap.Store
	save    SaveFunc
	history *undo.Manager
	page    int
	offset  float64
	minSize float64
	now     func() time.Time
	log     *slog.Logger

	selection []string
	clipboard []string
	pastes    int

	panning bool
	panLast vector.Pt

	gesture *gesture
	lines   []snap.Line
}

func New(d Deps) *Controller {
	c := &Controller{
		canvas:  d.Canvas,
		view:    d.View,
		snaps:   d.Snaps,
		save:    d.Save,
		history: d.History,
		page:    d.Page,
		offset:  d.PasteOffset,
		minSize: d.MinSize,
		now:     d.Now,
		log:     applog.WithComponent("interact"),
	}
	if c.page == 0 {
		c.page = 1
	}
	if c.offset == 0 {
		c.offset = DefaultPasteOffset
	}
	if c.minSize <= 0 {
		c.minSize = DefaultMinSize
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.snaps == nil {
		c.snaps = snap.NewStore(snap.Defaults())
	}
	if c.history != nil && c.alive() {
		if s, err := undo.Capture(c.canvas, c.page, "open", c.now()); err == nil {
			c.history.Reset(s)
		}
	}
	return c
}

func (c *Controller) alive() bool {
	return c != nil && c.canvas.Alive()
}

// Canvas returns the controlled canvas.
func (c *Controller) Canvas() *scene.Canvas { return c.canvas }

// Lines returns the guide lines of the current drag tick.
func (c *Controller) Lines() []snap.Line { return c.lines }

// Selection returns the selected ids.
func (c *Controller) Selection() []string { return append([]string(nil), c.selection...) }

// Select replaces the selection, keeping only existing selectable objects.
func (c *Controller) Select(ids ...string) {
	if !c.alive() {
		return
	}
	var keep []string
	for _, id := range ids {
		if o, ok := c.canvas.Get(id); ok && o.Selectable && !scene.IsWorkspace(o) {
			keep = append(keep, id)
		}
	}
	c.selection = c.outermost(keep)
}

// outermost drops duplicates and ids whose enclosing group is also listed,
// so a member never moves twice.
func (c *Controller) outermost(ids []string) []string {
	in := make(map[string]bool, len(ids))
	for _, id := range ids {
		in[id] = true
	}
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		o, ok := c.canvas.Get(id)
		nested := false
		for ok && o.GroupID != "" {
			if in[o.GroupID] {
				nested = true
				break
			}
			o, ok = c.canvas.Get(o.GroupID)
		}
		if !nested {
			out = append(out, id)
		}
	}
	return out
}

// SelectAll selects every top-level selectable object. Workspaces are
// never selected.
func (c *Controller) SelectAll() {
	if !c.alive() {
		return
	}
	c.selection = c.selection[:0]
	for _, o := range c.canvas.TopLevel() {
		if o.Selectable && !scene.IsWorkspace(o) {
			c.selection = append(c.selection, o.ID)
		}
	}
	c.canvas.RequestRender()
}

// Add inserts o and commits.
func (c *Controller) Add(o *scene.Object) error {
	if !c.alive() {
		return scene.ErrDisposed
	}
	if err := c.canvas.Add(o); err != nil {
		return err
	}
	return c.commit("add")
}

// Save invokes the persistence hook directly.
func (c *Controller) Save() error {
	if !c.alive() || c.save == nil {
		return nil
	}
	return c.save()
}

// commit finalizes a change: derived clips, a repaint, one history entry
// and one save.
func (c *Controller) commit(label string) error {
	c.canvas.ApplyFrameClips()
	c.canvas.RequestRender()
	ctx := applog.ContextWithGesture(context.Background(), label)
	if c.history != nil {
		s, err := undo.Capture(c.canvas, c.page, label, c.now())
		if err != nil {
			return err
		}
		c.history.Push(s)
	}
	c.log.DebugContext(ctx, "commit", slog.Int("selected", len(c.selection)))
	if c.save == nil {
		return nil
	}
	if err := c.save(); err != nil {
		c.log.ErrorContext(ctx, "save failed", slog.Any("err", err))
		return err
	}
	return nil
}

// snapOptions reads the options for this tick with the tolerance converted
// from screen pixels to canvas units.
func (c *Controller) snapOptions() snap.Options {
	o := c.snaps.Snapshot()
	if z := c.view.State().Zoom(); z > 0 {
		tol := o.Tolerance
		if tol <= 0 {
			tol = snap.DefaultTolerance
		}
		o.Tolerance = tol / z
	}
	return o
}

func (c *Controller) prune() {
	kept := c.selection[:0]
	for _, id := range c.selection {
		if _, ok := c.canvas.Get(id); ok {
			kept = append(kept, id)
		}
	}
	c.selection = kept
}
