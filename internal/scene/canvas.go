/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"pagelayout/internal/vector"
)

var (
	ErrDisposed     = errors.New("canvas disposed")
	ErrNotFound     = errors.New("object not found")
	ErrDuplicateID  = errors.New("duplicate object id")
	ErrNotGroup     = errors.New("object is not a group")
	ErrMixedParents = errors.New("objects belong to different groups")
)

// Canvas owns the object table. It is not safe for concurrent use; the UI
// event loop is its only owner.
type Canvas struct {
	objects  map[string]*Object
	order    []string // top-level z-order
	onRender func()
	renders  int
	disposed bool
}

func NewCanvas() *Canvas {
	return &Canvas{objects: make(map[string]*Object)}
}

// SetRenderHook installs the callback invoked by RequestRender.
func (c *Canvas) SetRenderHook(fn func()) { c.onRender = fn }

// RequestRender asks the host to repaint.
func (c *Canvas) RequestRender() {
	if c == nil || c.disposed {
		return
	}
	c.renders++
	if c.onRender != nil {
		c.onRender()
	}
}

// Renders returns how many renders were requested.
func (c *Canvas) Renders() int { return c.renders }

// Dispose releases the table; later calls become no-ops.
func (c *Canvas) Dispose() {
	c.disposed = true
	c.objects = nil
	c.order = nil
}

// Alive reports whether c can still be acted upon.
func (c *Canvas) Alive() bool { return c != nil && !c.disposed }

// Len returns the number of objects including group members.
func (c *Canvas) Len() int {
	if !c.Alive() {
		return 0
	}
	return len(c.objects)
}

// Add inserts o. An empty ID gets a fresh uuid. If o.GroupID is set the group
// must already exist and o is appended to its members.
func (c *Canvas) Add(o *Object) error {
	if !c.Alive() {
		return ErrDisposed
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if _, ok := c.objects[o.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, o.ID)
	}
	if o.ScaleX == 0 {
		o.ScaleX = 1
	}
	if o.ScaleY == 0 {
		o.ScaleY = 1
	}
	if o.GroupID != "" {
		g, ok := c.objects[o.GroupID]
		if !ok || g.Kind != KindGroup {
			return fmt.Errorf("%w: group %s", ErrNotFound, o.GroupID)
		}
		g.Members = append(g.Members, o.ID)
	} else {
		c.order = append(c.order, o.ID)
	}
	c.objects[o.ID] = o
	return nil
}

// Get looks up an object by id.
func (c *Canvas) Get(id string) (*Object, bool) {
	if !c.Alive() {
		return nil, false
	}
	o, ok := c.objects[id]
	return o, ok
}

// Objects returns all objects depth first in z-order (a group precedes its
// members).
func (c *Canvas) Objects() []*Object {
	if !c.Alive() {
		return nil
	}
	out := make([]*Object, 0, len(c.objects))
	var walk func(ids []string)
	walk = func(ids []string) {
		for _, id := range ids {
			o, ok := c.objects[id]
			if !ok {
				continue
			}
			out = append(out, o)
			if o.Kind == KindGroup {
				walk(o.Members)
			}
		}
	}
	walk(c.order)
	return out
}

// TopLevel returns the canvas-owned objects in z-order.
func (c *Canvas) TopLevel() []*Object {
	if !c.Alive() {
		return nil
	}
	out := make([]*Object, 0, len(c.order))
	for _, id := range c.order {
		if o, ok := c.objects[id]; ok {
			out = append(out, o)
		}
	}
	return out
}

// Filter returns objects matching pred in Objects order.
func (c *Canvas) Filter(pred func(*Object) bool) []*Object {
	var out []*Object
	for _, o := range c.Objects() {
		if pred(o) {
			out = append(out, o)
		}
	}
	return out
}

// Ancestors returns the transforms of o's groups, nearest first. Used only
// for coordinate resolution.
func (c *Canvas) Ancestors(o *Object) []vector.Transform {
	var chain []vector.Transform
	seen := map[string]bool{o.ID: true}
	for gid := o.GroupID; gid != ""; {
		g, ok := c.objects[gid]
		if !ok || seen[gid] {
			break
		}
		seen[gid] = true
		chain = append(chain, g.Transform())
		gid = g.GroupID
	}
	return chain
}

// AbsoluteBounds returns o's bounding box in canvas space.
func (c *Canvas) AbsoluteBounds(id string) (vector.Rect, bool) {
	o, ok := c.Get(id)
	if !ok {
		return vector.Rect{}, false
	}
	return vector.AbsoluteBounds(o.Box(), o.Transform(), c.Ancestors(o)), true
}

// Center returns the centre of o's absolute bounding box.
func (c *Canvas) Center(id string) (vector.Pt, bool) {
	b, ok := c.AbsoluteBounds(id)
	if !ok {
		return vector.Pt{}, false
	}
	return b.Center(), true
}

// EffectiveScale returns o's scale including all ancestor groups.
func (c *Canvas) EffectiveScale(id string) (float64, float64, bool) {
	o, ok := c.Get(id)
	if !ok {
		return 0, 0, false
	}
	sx, sy := vector.EffectiveScale(o.Transform(), c.Ancestors(o))
	return sx, sy, true
}

// MoveBy translates o by an absolute (canvas space) displacement.
func (c *Canvas) MoveBy(id string, dx, dy float64) bool {
	o, ok := c.Get(id)
	if !ok {
		return false
	}
	d := vector.DeltaToLocal(vector.Pt{X: dx, Y: dy}, c.Ancestors(o))
	o.Left += d.X
	o.Top += d.Y
	return true
}

// SetAbsolutePosition moves o so its absolute bounding box starts at p.
func (c *Canvas) SetAbsolutePosition(id string, p vector.Pt) bool {
	b, ok := c.AbsoluteBounds(id)
	if !ok {
		return false
	}
	return c.MoveBy(id, p.X-b.X, p.Y-b.Y)
}

// Remove deletes the given objects (and group members) in one step and
// returns the ids actually removed.
func (c *Canvas) Remove(ids ...string) []string {
	if !c.Alive() {
		return nil
	}
	var removed []string
	for _, id := range ids {
		removed = append(removed, c.remove(id)...)
	}
	return removed
}

func (c *Canvas) remove(id string) []string {
	o, ok := c.objects[id]
	if !ok {
		return nil
	}
	var removed []string
	for _, m := range o.Members {
		removed = append(removed, c.remove(m)...)
	}
	if o.GroupID != "" {
		if g, ok := c.objects[o.GroupID]; ok {
			g.Members = without(g.Members, id)
		}
	} else {
		c.order = without(c.order, id)
	}
	delete(c.objects, id)
	return append(removed, id)
}

// Linked returns the counterpart of a frame/image link. A dangling link
// reports false.
func (c *Canvas) Linked(id string) (*Object, bool) {
	o, ok := c.Get(id)
	if !ok || o.LinkID == "" {
		return nil, false
	}
	l, ok := c.objects[o.LinkID]
	if !ok || l.LinkID != o.ID {
		return nil, false
	}
	return l, true
}

// Link pairs a frame with an image and refreshes the image clip.
func (c *Canvas) Link(frameID, imageID string) error {
	f, ok := c.Get(frameID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, frameID)
	}
	img, ok := c.Get(imageID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, imageID)
	}
	f.LinkID = img.ID
	img.LinkID = f.ID
	c.ApplyFrameClips()
	return nil
}

// RemoveCascade removes ids together with their linked frame/image
// counterparts. Counterparts are resolved before anything is removed so
// the whole set disappears in one step.
func (c *Canvas) RemoveCascade(ids ...string) []string {
	if !c.Alive() {
		return nil
	}
	set := make([]string, 0, len(ids)*2)
	seen := map[string]bool{}
	for _, id := range ids {
		if _, ok := c.objects[id]; !ok || seen[id] {
			continue
		}
		seen[id] = true
		set = append(set, id)
		if l, ok := c.Linked(id); ok && !seen[l.ID] {
			seen[l.ID] = true
			set = append(set, l.ID)
		}
	}
	return c.Remove(set...)
}

// ApplyFrameClips derives the clip region of every framed image from the
// absolute bounds of its frame.
func (c *Canvas) ApplyFrameClips() {
	for _, o := range c.Objects() {
		if !IsFrameType(o) {
			continue
		}
		img, ok := c.Linked(o.ID)
		if !ok {
			continue
		}
		b, _ := c.AbsoluteBounds(o.ID)
		img.Clip = &b
	}
}

// Group wraps top-level or sibling objects into a new group positioned at
// their combined bounding box. Member placements become group-relative.
func (c *Canvas) Group(ids ...string) (*Object, error) {
	if !c.Alive() {
		return nil, ErrDisposed
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: empty selection", ErrNotFound)
	}
	var (
		bbox   vector.Rect
		parent string
	)
	for i, id := range ids {
		o, ok := c.objects[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if i > 0 && o.GroupID != parent {
			return nil, ErrMixedParents
		}
		parent = o.GroupID
		// bounds in the parent's local space
		b := vector.Bounds(vector.Rect{W: o.Width, H: o.Height}, o.Transform().Matrix())
		if i == 0 {
			bbox = b
		} else {
			bbox = bbox.Union(b)
		}
	}
	origin := bbox.Min()
	g := &Object{Kind: KindGroup, Left: origin.X, Top: origin.Y, Width: bbox.W, Height: bbox.H, Selectable: true, GroupID: parent}
	if err := c.Add(g); err != nil {
		return nil, err
	}
	for _, id := range ids {
		o := c.objects[id]
		if parent != "" {
			p := c.objects[parent]
			p.Members = without(p.Members, id)
		} else {
			c.order = without(c.order, id)
		}
		o.Left -= origin.X
		o.Top -= origin.Y
		o.GroupID = g.ID
		g.Members = append(g.Members, id)
	}
	return g, nil
}

// Ungroup dissolves a group, folding its transform into each member.
func (c *Canvas) Ungroup(id string) ([]string, error) {
	g, ok := c.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if g.Kind != KindGroup {
		return nil, ErrNotGroup
	}
	gm := g.Transform().Matrix()
	gsx, gsy := g.Transform().ScaleX, g.Transform().ScaleY
	members := append([]string(nil), g.Members...)
	for _, mid := range members {
		m, ok := c.objects[mid]
		if !ok {
			continue
		}
		p := gm.Apply(vector.Pt{X: m.Left, Y: m.Top})
		m.Left, m.Top = p.X, p.Y
		m.Angle = math.Mod(m.Angle+g.Angle, 360)
		m.ScaleX *= nonZero(gsx)
		m.ScaleY *= nonZero(gsy)
		m.GroupID = g.GroupID
		if g.GroupID != "" {
			if p, ok := c.objects[g.GroupID]; ok {
				p.Members = append(p.Members, mid)
			}
		} else {
			c.order = append(c.order, mid)
		}
	}
	g.Members = nil
	c.Remove(id)
	return members, nil
}

// Clone copies an object (and its members) with fresh ids, offset by dx,dy
// in its own coordinate space. Links are not carried over.
func (c *Canvas) Clone(id string, dx, dy float64) (*Object, error) {
	o, ok := c.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cp := o.clone()
	cp.ID = ""
	cp.LinkID = ""
	cp.Clip = nil
	cp.Members = nil
	cp.Left += dx
	cp.Top += dy
	if err := c.Add(cp); err != nil {
		return nil, err
	}
	for _, mid := range o.Members {
		m, ok := c.objects[mid]
		if !ok {
			continue
		}
		mc, err := c.Clone(mid, 0, 0)
		if err != nil {
			return nil, err
		}
		// re-home the member clone under the new group
		if m.GroupID != "" {
			if p, ok := c.objects[m.GroupID]; ok {
				p.Members = without(p.Members, mc.ID)
			}
		}
		mc.GroupID = cp.ID
		cp.Members = append(cp.Members, mc.ID)
	}
	return cp, nil
}

func without(ids []string, id string) []string {
	out := ids[:0:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
