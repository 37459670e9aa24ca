/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interact

import (
	"pagelayout/internal/undo"
	"pagelayout/internal/vector"
)

// Button identifies a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// Wheel zooms anchored at the pointer.
func (c *Controller) Wheel(deltaY float64, screen vector.Pt) {
	if !c.alive() {
		return
	}
	if c.view.Wheel(deltaY, screen) {
		c.canvas.RequestRender()
	}
}

// PointerDown starts a middle-button pan. Other buttons are left to the
// host's hit-testing, which calls BeginDrag or BeginResize.
func (c *Controller) PointerDown(b Button, screen vector.Pt) {
	if !c.alive() || b != ButtonMiddle {
		return
	}
	c.panning = true
	c.panLast = screen
}

// PointerMove pans or advances the active gesture.
func (c *Controller) PointerMove(screen vector.Pt) {
	if !c.alive() {
		return
	}
	if c.panning {
		c.view.Pan(screen.X-c.panLast.X, screen.Y-c.panLast.Y)
		c.panLast = screen
		c.canvas.RequestRender()
		return
	}
	if c.gesture != nil {
		c.advance(screen)
	}
}

// PointerUp is fed from the window, not the canvas element, so a release
// outside the canvas still ends the pan or gesture.
func (c *Controller) PointerUp(b Button) error {
	if !c.alive() {
		return nil
	}
	if b == ButtonMiddle && c.panning {
		c.panning = false
		return nil
	}
	if c.gesture != nil {
		return c.end()
	}
	return nil
}

// LostCapture cancels whatever the pointer was doing.
func (c *Controller) LostCapture() {
	if !c.alive() {
		return
	}
	c.panning = false
	c.CancelDrag()
}

// Panning reports whether a middle-button pan is in progress.
func (c *Controller) Panning() bool { return c.panning }

// ContextMenuAllowed is false while panning.
func (c *Controller) ContextMenuAllowed() bool { return !c.panning }

// AutoFit refits the viewport to the workspaces.
func (c *Controller) AutoFit() {
	if !c.alive() {
		return
	}
	if c.view.Fit() {
		c.canvas.RequestRender()
	}
}

func (c *Controller) ZoomIn() {
	if c.alive() && c.view.ZoomIn() {
		c.canvas.RequestRender()
	}
}

func (c *Controller) ZoomOut() {
	if c.alive() && c.view.ZoomOut() {
		c.canvas.RequestRender()
	}
}

// Undo restores the previous state of the page.
func (c *Controller) Undo() error {
	if !c.alive() || c.history == nil {
		return nil
	}
	s, ok := c.history.Undo(c.page)
	if !ok {
		return nil
	}
	return c.restore(s)
}

// Redo reapplies the last undone change.
func (c *Controller) Redo() error {
	if !c.alive() || c.history == nil {
		return nil
	}
	s, ok := c.history.Redo(c.page)
	if !ok {
		return nil
	}
	return c.restore(s)
}

func (c *Controller) restore(s undo.Snapshot) error {
	c.gesture = nil
	c.lines = nil
	if err := undo.Apply(c.canvas, s); err != nil {
		return err
	}
	c.prune()
	c.canvas.RequestRender()
	if c.save != nil {
		return c.save()
	}
	return nil
}
