/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a crash report and an autosave of the
// layout being edited.
package crash

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	applog "pagelayout/internal/log"
	"pagelayout/internal/scene"
	"pagelayout/internal/snap"
	"pagelayout/internal/storage"
	"pagelayout/internal/version"
	"pagelayout/internal/viewport"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Guard tracks the editing state a crash should preserve. Attach and Watch
// are called as layouts and canvases are opened.
//
// Usage: defer guard.Recover()
type Guard struct {
	mu     sync.Mutex
	h      *storage.Handle
	canvas *scene.Canvas
	snaps  *snap.Store
	view   *viewport.Engine
	page   int
}

func NewGuard() *Guard { return &Guard{page: 1} }

// Attach records the open layout.
func (g *Guard) Attach(h *storage.Handle) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.h = h
}

// Watch records the live canvas, snapping options and viewport of the
// attached layout. Any of them may be nil.
func (g *Guard) Watch(c *scene.Canvas, s *snap.Store, v *viewport.Engine) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.canvas, g.snaps, g.view = c, s, v
}

// SetPage records the page being edited.
func (g *Guard) SetPage(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n > 0 {
		g.page = n
	}
}

// state is what a crash report describes.
type state struct {
	h      *storage.Handle
	canvas *scene.Canvas
	opts   snap.Options
	view   *viewport.State
	page   int
}

func (g *Guard) snapshot() state {
	g.mu.Lock()
	defer g.mu.Unlock()
	st := state{h: g.h, canvas: g.canvas, page: g.page}
	switch {
	case g.snaps != nil:
		st.opts = g.snaps.Snapshot()
	case g.h != nil:
		st.opts = g.h.Doc.Snapping
	}
	if g.view != nil {
		v := g.view.State()
		st.view = &v
	}
	return st
}

// Recover captures a panic, logs it with the stack, writes a crash report,
// autosaves the live canvas next to the backups and remembers the viewport
// of the page being edited, then exits with status 2.
func (g *Guard) Recover() {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	st := g.snapshot()
	reportPath, err := writeReport(st, r, stack)
	if err != nil {
		l.Error("write crash report failed", slog.Any("err", err))
	}
	preserve(l, st)

	if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
		l.Error("failed to write crash message to stderr", slog.Any("err", err))
	}
	exitFn(2)
}

// preserve autosaves the layout and stores the viewport. Failures are logged
// only; the process is going down either way.
func preserve(l *slog.Logger, st state) {
	if st.h == nil || st.h.Root == "" {
		return
	}
	if path, err := storage.AutosaveCrashSnapshot(st.h, st.canvas, st.opts); err != nil {
		l.Error("autosave crash snapshot failed", slog.Any("err", err))
	} else {
		l.Info("autosave crash snapshot written", slog.String("path", path))
	}
	if st.view == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := storage.SaveViewportState(ctx, st.h, st.page, *st.view); err != nil {
		l.Error("save viewport on crash failed", slog.Any("err", err))
	}
}

func writeReport(st state, panicVal any, stack []byte) (string, error) {
	dir := os.TempDir()
	if st.h != nil && st.h.Root != "" {
		dir = filepath.Join(st.h.Root, storage.BackupsDirName)
		_ = os.MkdirAll(dir, 0o755)
	}
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", time.Now().Format("20060102-150405.000")))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Page Layout Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if st.h != nil {
		_, _ = fmt.Fprintf(&buf, "Layout: %s\n", st.h.Doc.Name)
		_, _ = fmt.Fprintf(&buf, "LayoutRoot: %s\n", st.h.Root)
	}
	_, _ = fmt.Fprintf(&buf, "Page: %d\n", st.page)
	if st.canvas.Alive() {
		_, _ = fmt.Fprintf(&buf, "Objects: %d\n", st.canvas.Len())
		for _, ws := range st.canvas.Workspaces() {
			if ws.PageNumber == st.page {
				_, _ = fmt.Fprintf(&buf, "PageBounds: %g,%g %gx%g\n", ws.Bounds.X, ws.Bounds.Y, ws.Bounds.W, ws.Bounds.H)
			}
		}
	}
	if st.view != nil {
		v := st.view
		_, _ = fmt.Fprintf(&buf, "Viewport: zoom=%g translate=%g,%g size=%gx%g\n", v.Zoom(), v.Matrix.E, v.Matrix.F, v.Width, v.Height)
	}
	_, _ = fmt.Fprintf(&buf, "Snapping: grid=%t objects=%t canvas=%t gridSize=%g\n",
		st.opts.SnapToGrid, st.opts.SnapToObjects, st.opts.SnapToCanvas, st.opts.SnapGridSize)
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	return path, nil
}
