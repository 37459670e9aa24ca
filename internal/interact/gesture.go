/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interact

import (
	"fmt"
	"math"

	"pagelayout/internal/scene"
	"pagelayout/internal/snap"
	"pagelayout/internal/vector"
)

type gestureKind int

const (
	gestureMove gestureKind = iota
	gestureResize
)

// gesture is the state of one drag or resize. It is dropped on end or
// cancel so nothing leaks into the next gesture.
type gesture struct {
	kind  gestureKind
	ids   []string
	start vector.Pt   // canvas point under the pointer at begin
	box   vector.Rect // combined absolute bounds at begin
	cur   vector.Rect // combined absolute bounds after the last tick
	edges snap.Edges
	// scale of the resized object at begin
	sx, sy float64
	// aligned is set when the resized object's absolute rotation is a
	// quarter turn; quarter is set for odd quarter turns, where the local
	// axes are swapped on screen.
	aligned, quarter bool
	// start transform and unscaled box of the resized object
	m0   vector.Affine2D
	w, h float64
}

// BeginDrag starts moving ids from the screen point. Workspaces and
// unknown ids are skipped.
func (c *Controller) BeginDrag(screen vector.Pt, ids ...string) bool {
	if !c.alive() {
		return false
	}
	c.gesture = nil
	c.lines = nil
	var (
		keep []string
		box  vector.Rect
	)
	for _, id := range c.outermost(ids) {
		o, ok := c.canvas.Get(id)
		if !ok || scene.IsWorkspace(o) {
			continue
		}
		b, _ := c.canvas.AbsoluteBounds(id)
		if len(keep) == 0 {
			box = b
		} else {
			box = box.Union(b)
		}
		keep = append(keep, id)
	}
	if len(keep) == 0 {
		return false
	}
	c.gesture = &gesture{
		kind:  gestureMove,
		ids:   keep,
		start: c.view.State().ScreenToCanvas(screen),
		box:   box,
		cur:   box,
	}
	return true
}

// BeginResize starts dragging the given edges of id.
func (c *Controller) BeginResize(screen vector.Pt, id string, edges snap.Edges) bool {
	if !c.alive() || edges == 0 {
		return false
	}
	o, ok := c.canvas.Get(id)
	if !ok || scene.IsWorkspace(o) {
		return false
	}
	b, _ := c.canvas.AbsoluteBounds(id)
	c.lines = nil
	c.gesture = &gesture{
		kind:  gestureResize,
		ids:   []string{id},
		start: c.view.State().ScreenToCanvas(screen),
		box:   b,
		cur:   b,
		edges: edges,
		sx:    o.ScaleX,
		sy:    o.ScaleY,
		m0:    vector.ChainMatrix(o.Transform(), c.canvas.Ancestors(o)),
		w:     o.Width,
		h:     o.Height,
	}
	angle := o.Angle
	for _, a := range c.canvas.Ancestors(o) {
		angle += a.Angle
	}
	turns := math.Round(angle / 90)
	c.gesture.aligned = math.Abs(angle-turns*90) < 1e-9
	c.gesture.quarter = math.Mod(math.Abs(turns), 2) == 1
	return true
}

// Dragging reports whether a gesture is active.
func (c *Controller) Dragging() bool { return c.gesture != nil }

// DragTo and ResizeTo advance the active gesture to the screen point.
func (c *Controller) DragTo(screen vector.Pt)   { c.PointerMove(screen) }
func (c *Controller) ResizeTo(screen vector.Pt) { c.PointerMove(screen) }

func (c *Controller) advance(screen vector.Pt) {
	g := c.gesture
	p := c.view.State().ScreenToCanvas(screen)
	d := p.Sub(g.start)
	in := snap.Input{
		Options:    c.snapOptions(),
		Siblings:   c.siblings(g.ids),
		Workspaces: c.canvas.WorkspaceRects(),
	}
	switch g.kind {
	case gestureMove:
		in.Moving = g.box.Offset(d.X, d.Y)
		res := snap.Compute(in)
		for _, id := range g.ids {
			c.canvas.MoveBy(id, res.Rect.X-g.cur.X, res.Rect.Y-g.cur.Y)
		}
		g.cur = res.Rect
		c.lines = res.Lines
	case gestureResize:
		if !g.aligned {
			c.applyLocalResize(g, d)
			c.lines = nil
			break
		}
		in.Moving = c.resized(g, d)
		res := snap.ComputeResize(in, g.edges, c.minSize)
		c.applyResize(g, res.Rect)
		c.lines = res.Lines
	}
	c.canvas.RequestRender()
}

// resized applies the pointer delta to the dragged edges of the start box,
// never letting it collapse below the minimum size.
func (c *Controller) resized(g *gesture, d vector.Pt) vector.Rect {
	r := g.box
	if g.edges.Has(snap.EdgeLeft) {
		dx := math.Min(d.X, r.W-c.minSize)
		r.X += dx
		r.W -= dx
	} else if g.edges.Has(snap.EdgeRight) {
		r.W = math.Max(r.W+d.X, c.minSize)
	}
	if g.edges.Has(snap.EdgeTop) {
		dy := math.Min(d.Y, r.H-c.minSize)
		r.Y += dy
		r.H -= dy
	} else if g.edges.Has(snap.EdgeBottom) {
		r.H = math.Max(r.H+d.Y, c.minSize)
	}
	return r
}

// applyResize scales an axis-aligned object so its absolute bounds become r.
func (c *Controller) applyResize(g *gesture, r vector.Rect) {
	id := g.ids[0]
	o, ok := c.canvas.Get(id)
	if !ok || g.box.W == 0 || g.box.H == 0 {
		return
	}
	rx, ry := r.W/g.box.W, r.H/g.box.H
	if g.quarter {
		rx, ry = ry, rx
	}
	o.ScaleX = g.sx * rx
	o.ScaleY = g.sy * ry
	c.canvas.SetAbsolutePosition(id, r.Min())
	g.cur = r
}

// applyLocalResize resizes a rotated object in its own frame: the pointer
// delta moves the dragged edges of the unrotated box and the opposite edges
// stay where they were. No snapping applies.
func (c *Controller) applyLocalResize(g *gesture, d vector.Pt) {
	id := g.ids[0]
	o, ok := c.canvas.Get(id)
	if !ok || g.w == 0 || g.h == 0 {
		return
	}
	inv := g.m0.Invert()
	inv.E, inv.F = 0, 0
	l := inv.Apply(d)

	minW, minH := c.minSize, c.minSize
	if ux := math.Hypot(g.m0.A, g.m0.B); ux > 0 {
		minW = c.minSize / ux
	}
	if uy := math.Hypot(g.m0.C, g.m0.D); uy > 0 {
		minH = c.minSize / uy
	}
	x0, x1, y0, y1 := 0.0, g.w, 0.0, g.h
	if g.edges.Has(snap.EdgeLeft) {
		x0 = math.Min(l.X, g.w-minW)
	} else if g.edges.Has(snap.EdgeRight) {
		x1 = math.Max(g.w+l.X, minW)
	}
	if g.edges.Has(snap.EdgeTop) {
		y0 = math.Min(l.Y, g.h-minH)
	} else if g.edges.Has(snap.EdgeBottom) {
		y1 = math.Max(g.h+l.Y, minH)
	}

	o.ScaleX = g.sx * (x1 - x0) / g.w
	o.ScaleY = g.sy * (y1 - y0) / g.h
	origin := vector.ToLocal(g.m0.Apply(vector.Pt{X: x0, Y: y0}), c.canvas.Ancestors(o))
	o.Left, o.Top = origin.X, origin.Y
	g.cur, _ = c.canvas.AbsoluteBounds(id)
}

// siblings lists the absolute bounds of selectable top-level objects that
// are not being dragged. Workspaces and locked objects are never targets.
func (c *Controller) siblings(exclude []string) []vector.Rect {
	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}
	var out []vector.Rect
	for _, o := range c.canvas.TopLevel() {
		if skip[o.ID] || !o.Selectable || scene.IsWorkspace(o) {
			continue
		}
		if b, ok := c.canvas.AbsoluteBounds(o.ID); ok {
			out = append(out, b)
		}
	}
	return out
}

// EndDrag commits the gesture: one save when something moved, none for a
// plain click. Guide lines are cleared either way.
func (c *Controller) EndDrag() error {
	if !c.alive() || c.gesture == nil {
		return nil
	}
	return c.end()
}

// EndResize commits a resize gesture.
func (c *Controller) EndResize() error { return c.EndDrag() }

func (c *Controller) end() error {
	g := c.gesture
	c.gesture = nil
	c.lines = nil
	if g.cur == g.box {
		return nil
	}
	label := "move"
	if g.kind == gestureResize {
		label = "resize"
	}
	return c.commit(label)
}

// CancelDrag puts the dragged objects back where the gesture started.
func (c *Controller) CancelDrag() {
	if !c.alive() || c.gesture == nil {
		return
	}
	g := c.gesture
	c.gesture = nil
	c.lines = nil
	switch g.kind {
	case gestureMove:
		for _, id := range g.ids {
			c.canvas.MoveBy(id, g.box.X-g.cur.X, g.box.Y-g.cur.Y)
		}
	case gestureResize:
		if o, ok := c.canvas.Get(g.ids[0]); ok {
			o.ScaleX, o.ScaleY = g.sx, g.sy
			c.canvas.SetAbsolutePosition(o.ID, g.box.Min())
		}
	}
	c.canvas.ApplyFrameClips()
	c.canvas.RequestRender()
}

// Rotate sets the angle of id in degrees, snapping to the nearest quarter
// turn when rotation snapping is on, and commits. It returns the applied
// angle.
func (c *Controller) Rotate(id string, angle float64) (float64, error) {
	if !c.alive() {
		return 0, scene.ErrDisposed
	}
	o, ok := c.canvas.Get(id)
	if !ok {
		return 0, fmt.Errorf("%w: %s", scene.ErrNotFound, id)
	}
	if a, snapped := snap.SnapAngle(angle, c.snaps.Snapshot()); snapped {
		angle = a
	}
	if o.Angle == angle {
		return angle, nil
	}
	o.Angle = angle
	return angle, c.commit("rotate")
}
