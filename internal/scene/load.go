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
	"log/slog"

	applog "pagelayout/internal/log"
)

// Load builds a canvas from serialized objects in two passes: first every
// object is materialized into the table, then cross-object references
// (group membership, frame/image links, derived clips) are resolved over the
// complete set. Input order is the z-order.
//
// Dangling references are dropped rather than failing the load.
func Load(objs []Object) (*Canvas, error) {
	l := applog.WithOperation(applog.WithComponent("scene"), "load")
	c := NewCanvas()

	// materialize
	for i := range objs {
		o := objs[i]
		o.Members = nil
		o.Clip = nil
		if o.ID == "" {
			return nil, fmt.Errorf("object %d: missing id", i)
		}
		if _, dup := c.objects[o.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, o.ID)
		}
		if o.ScaleX == 0 {
			o.ScaleX = 1
		}
		if o.ScaleY == 0 {
			o.ScaleY = 1
		}
		c.objects[o.ID] = &o
	}

	// resolve
	for i := range objs {
		o := c.objects[objs[i].ID]
		if o.GroupID != "" {
			g, ok := c.objects[o.GroupID]
			if ok && g.Kind == KindGroup && g.ID != o.ID {
				g.Members = append(g.Members, o.ID)
				continue
			}
			l.Warn("dropping dangling group reference", slog.String("id", o.ID), slog.String("group", o.GroupID))
			o.GroupID = ""
		}
		c.order = append(c.order, o.ID)
	}
	for _, o := range c.objects {
		if o.LinkID == "" {
			continue
		}
		peer, ok := c.objects[o.LinkID]
		if !ok || peer.LinkID != o.ID {
			l.Debug("dropping dangling link", slog.String("id", o.ID), slog.String("link", o.LinkID))
			o.LinkID = ""
		}
	}
	c.ApplyFrameClips()
	l.Debug("canvas loaded", slog.Int("objects", len(c.objects)))
	return c, nil
}

// Export returns the objects in z-order, suitable for Load.
func (c *Canvas) Export() []Object {
	objs := c.Objects()
	out := make([]Object, 0, len(objs))
	for _, o := range objs {
		cp := *o.clone()
		cp.Members = nil
		cp.Clip = nil
		out = append(out, cp)
	}
	return out
}

// Replace swaps the contents of c for the loaded objs, keeping the render
// hook so the host keeps painting the same canvas.
func (c *Canvas) Replace(objs []Object) error {
	if !c.Alive() {
		return ErrDisposed
	}
	next, err := Load(objs)
	if err != nil {
		return err
	}
	c.objects = next.objects
	c.order = next.order
	return nil
}
