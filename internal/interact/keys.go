/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interact

import (
	"strings"

	"pagelayout/internal/snap"
)

// KeyEvent is a key press. Key uses DOM key names ("z", "ArrowLeft",
// "Delete", ...); letters are matched case-insensitively.
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Meta  bool
	Shift bool
	Alt   bool
}

// Action is what a shortcut resolves to.
type Action int

const (
	ActionNone Action = iota
	ActionUndo
	ActionRedo
	ActionCopy
	ActionPaste
	ActionSave
	ActionSelectAll
	ActionToggleGrid
	ActionToggleSnapping
	ActionZoomIn
	ActionZoomOut
	ActionAutoFit
	ActionNudgeLeft
	ActionNudgeRight
	ActionNudgeUp
	ActionNudgeDown
	ActionDelete
)

var actionNames = [...]string{
	"none", "undo", "redo", "copy", "paste", "save", "select-all", "toggle-grid",
	"toggle-snapping", "zoom-in", "zoom-out", "auto-fit", "nudge-left", "nudge-right",
	"nudge-up", "nudge-down", "delete",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "unknown"
	}
	return actionNames[a]
}

// Shortcut maps a key press to an action. Cmd is treated like Ctrl.
func Shortcut(ev KeyEvent) Action {
	mod := ev.Ctrl || ev.Meta
	if ev.Alt {
		return ActionNone
	}
	if !mod {
		switch ev.Key {
		case "ArrowLeft":
			return ActionNudgeLeft
		case "ArrowRight":
			return ActionNudgeRight
		case "ArrowUp":
			return ActionNudgeUp
		case "ArrowDown":
			return ActionNudgeDown
		case "Delete", "Backspace":
			return ActionDelete
		}
		return ActionNone
	}
	k := strings.ToLower(ev.Key)
	if ev.Shift {
		if k == "g" {
			return ActionToggleGrid
		}
		if k == "+" {
			return ActionZoomIn
		}
		return ActionNone
	}
	switch k {
	case "z":
		return ActionUndo
	case "y":
		return ActionRedo
	case "c":
		return ActionCopy
	case "v":
		return ActionPaste
	case "s":
		return ActionSave
	case "a":
		return ActionSelectAll
	case "'":
		return ActionToggleSnapping
	case "=", "+":
		return ActionZoomIn
	case "-":
		return ActionZoomOut
	case "0":
		return ActionAutoFit
	}
	return ActionNone
}

// HandleKey resolves ev and performs the action. It returns the action so
// the host can suppress the browser default for handled keys.
func (c *Controller) HandleKey(ev KeyEvent) (Action, error) {
	a := Shortcut(ev)
	if a == ActionNone || !c.alive() {
		return ActionNone, nil
	}
	var err error
	switch a {
	case ActionUndo:
		err = c.Undo()
	case ActionRedo:
		err = c.Redo()
	case ActionCopy:
		c.Copy()
	case ActionPaste:
		err = c.Paste()
	case ActionSave:
		err = c.Save()
	case ActionSelectAll:
		c.SelectAll()
	case ActionToggleGrid:
		c.snaps.ToggleGrid()
		c.canvas.RequestRender()
	case ActionToggleSnapping:
		c.snaps.ToggleSnapping()
	case ActionZoomIn:
		c.ZoomIn()
	case ActionZoomOut:
		c.ZoomOut()
	case ActionAutoFit:
		c.AutoFit()
	case ActionNudgeLeft:
		err = c.Nudge(-1, 0)
	case ActionNudgeRight:
		err = c.Nudge(1, 0)
	case ActionNudgeUp:
		err = c.Nudge(0, -1)
	case ActionNudgeDown:
		err = c.Nudge(0, 1)
	case ActionDelete:
		_, err = c.DeleteSelected()
	}
	return a, err
}

// Nudge moves the selection by one snap grid step per unit of dx/dy and
// commits once.
func (c *Controller) Nudge(dx, dy int) error {
	if !c.alive() || len(c.selection) == 0 || (dx == 0 && dy == 0) {
		return nil
	}
	step := c.snaps.Snapshot().SnapGridSize
	if step <= 0 {
		step = snap.DefaultSnapGridSize
	}
	for _, id := range c.selection {
		c.canvas.MoveBy(id, float64(dx)*step, float64(dy)*step)
	}
	return c.commit("nudge")
}

// DeleteSelected removes the selection together with linked frame/image
// counterparts in one step and returns the removed ids.
func (c *Controller) DeleteSelected() ([]string, error) {
	if !c.alive() || len(c.selection) == 0 {
		return nil, nil
	}
	c.CancelDrag()
	removed := c.canvas.RemoveCascade(c.selection...)
	c.selection = c.selection[:0]
	if len(removed) == 0 {
		return nil, nil
	}
	return removed, c.commit("delete")
}

// Copy remembers the selection for Paste.
func (c *Controller) Copy() {
	if !c.alive() {
		return
	}
	c.clipboard = append(c.clipboard[:0], c.selection...)
	c.pastes = 0
}

// Paste clones the copied objects, each paste shifted a little further,
// and selects the clones.
func (c *Controller) Paste() error {
	if !c.alive() || len(c.clipboard) == 0 {
		return nil
	}
	c.pastes++
	off := c.offset * float64(c.pastes)
	var pasted []string
	for _, id := range c.clipboard {
		cp, err := c.canvas.Clone(id, off, off)
		if err != nil {
			continue
		}
		pasted = append(pasted, cp.ID)
	}
	if len(pasted) == 0 {
		return nil
	}
	c.selection = pasted
	return c.commit("paste")
}
