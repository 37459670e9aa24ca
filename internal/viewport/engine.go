/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package viewport

import (
	"context"
	"log/slog"
	"math"

	applog "pagelayout/internal/log"
	"pagelayout/internal/vector"
)

const (
	DefaultMargin          = 0.85
	DefaultResizeThreshold = 20
	DefaultMinZoom         = 0.01
	DefaultMaxZoom         = 1.0
	DefaultWheelBase       = 0.999
	DefaultZoomStep        = 1.1
)

// Options tunes the engine.
type Options struct {
	Margin float64 `yaml:"margin"`
	// ResizeThreshold is the container size change in pixels, on either axis,
	// since the last refit that triggers a new fit.
	ResizeThreshold float64 `yaml:"resize_threshold"`
	MinZoom         float64 `yaml:"min_zoom"`
	MaxZoom         float64 `yaml:"max_zoom"`
	WheelBase       float64 `yaml:"wheel_base"`
	ZoomStep        float64 `yaml:"zoom_step"`
}

func DefaultOptions() Options {
	return Options{
		Margin:          DefaultMargin,
		ResizeThreshold: DefaultResizeThreshold,
		MinZoom:         DefaultMinZoom,
		MaxZoom:         DefaultMaxZoom,
		WheelBase:       DefaultWheelBase,
		ZoomStep:        DefaultZoomStep,
	}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.Margin <= 0 {
		o.Margin = d.Margin
	}
	if o.ResizeThreshold < 0 {
		o.ResizeThreshold = d.ResizeThreshold
	}
	if o.MinZoom <= 0 {
		o.MinZoom = d.MinZoom
	}
	if o.MaxZoom <= 0 || o.MaxZoom < o.MinZoom {
		o.MaxZoom = d.MaxZoom
	}
	if o.WheelBase <= 0 || o.WheelBase >= 1 {
		o.WheelBase = d.WheelBase
	}
	if o.ZoomStep <= 1 {
		o.ZoomStep = d.ZoomStep
	}
	return o
}

// WorkspaceSource lists the current workspace bounds in canvas space.
type WorkspaceSource func() []vector.Rect

// Engine owns the viewport state of one canvas. It is driven from the UI
// event loop and is not safe for concurrent use.
type Engine struct {
	opts       Options
	workspaces WorkspaceSource
	state      State
	fitted     bool

	observed    vector.Size // last container size seen
	lastTrigger vector.Size // container size at the last refit trigger
	fits        int
}

func NewEngine(opts Options, ws WorkspaceSource) *Engine {
	return &Engine{opts: opts.normalized(), workspaces: ws}
}

// State returns the current viewport state.
func (e *Engine) State() State { return e.state }

// Options returns the normalized options.
func (e *Engine) Options() Options { return e.opts }

// Fits counts how many fit computations have been applied.
func (e *Engine) Fits() int { return e.fits }

// Restore replaces the state, e.g. from a saved session.
func (e *Engine) Restore(s State) {
	if !(s.Width > 0) || !(s.Height > 0) || s.Matrix.A == 0 {
		return
	}
	e.state = s
	e.fitted = true
	e.observed = vector.Size{W: s.Width, H: s.Height}
	e.lastTrigger = e.observed
}

// Fit recomputes the fit for the current container size. Zero workspaces or
// a container without size leave the state untouched.
func (e *Engine) Fit() bool {
	var ws []vector.Rect
	if e.workspaces != nil {
		ws = e.workspaces()
	}
	st, ok := Fit(ws, e.state.Width, e.state.Height, e.opts.Margin)
	if !ok {
		return false
	}
	e.state = st
	e.fitted = true
	e.fits++
	applog.WithComponent("viewport").Debug("fit applied",
		slog.Float64("zoom", st.Zoom()), slog.Int("workspaces", len(ws)), slog.Bool("clipped", st.Clip != nil))
	return true
}

// Resize reacts to a container size notification. A change larger than the
// threshold since the last trigger refits; smaller changes keep zoom and pan,
// shifting the translation by half the delta so the visual centre stays put.
// It reports whether a refit was applied.
func (e *Engine) Resize(width, height float64) bool {
	if !(width > 0) || !(height > 0) {
		return false
	}
	size := vector.Size{W: width, H: height}
	if !e.fitted {
		e.state.Width, e.state.Height = width, height
		e.observed = size
		e.lastTrigger = size
		return e.Fit()
	}
	if math.Abs(width-e.lastTrigger.W) > e.opts.ResizeThreshold || math.Abs(height-e.lastTrigger.H) > e.opts.ResizeThreshold {
		e.state.Width, e.state.Height = width, height
		e.observed = size
		e.lastTrigger = size
		return e.Fit()
	}
	dx := width - e.observed.W
	dy := height - e.observed.H
	e.state.Width, e.state.Height = width, height
	e.state.Matrix.E += dx / 2
	e.state.Matrix.F += dy / 2
	e.observed = size
	return false
}

// Watch applies size notifications from sizes until ctx is done or the
// channel closes, calling onChange after each one.
func (e *Engine) Watch(ctx context.Context, sizes <-chan vector.Size, onChange func(State, bool)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s, ok := <-sizes:
			if !ok {
				return nil
			}
			refit := e.Resize(s.W, s.H)
			if onChange != nil {
				onChange(e.state, refit)
			}
		}
	}
}

// ClampZoom limits z to the configured zoom range.
func (e *Engine) ClampZoom(z float64) float64 {
	return math.Min(math.Max(z, e.opts.MinZoom), e.opts.MaxZoom)
}

// ZoomToPoint sets the zoom to z (clamped) keeping the canvas point under
// screen fixed on screen.
func (e *Engine) ZoomToPoint(z float64, screen vector.Pt) bool {
	if e.state.Matrix.A == 0 || math.IsNaN(z) {
		return false
	}
	z = e.ClampZoom(z)
	q := e.state.ScreenToCanvas(screen)
	e.state.Matrix = vector.Affine2D{A: z, D: z, E: screen.X - z*q.X, F: screen.Y - z*q.Y}
	return true
}

// Wheel zooms by WheelBase^deltaY anchored at the pointer.
func (e *Engine) Wheel(deltaY float64, screen vector.Pt) bool {
	return e.ZoomToPoint(e.state.Zoom()*math.Pow(e.opts.WheelBase, deltaY), screen)
}

// SetZoom sets an absolute zoom about the container centre.
func (e *Engine) SetZoom(z float64) bool { return e.ZoomToPoint(z, e.centre()) }

// ZoomIn and ZoomOut step the zoom about the container centre.
func (e *Engine) ZoomIn() bool  { return e.ZoomToPoint(e.state.Zoom()*e.opts.ZoomStep, e.centre()) }
func (e *Engine) ZoomOut() bool { return e.ZoomToPoint(e.state.Zoom()/e.opts.ZoomStep, e.centre()) }

// Pan shifts the view by a screen-space delta.
func (e *Engine) Pan(dx, dy float64) {
	if e.state.Matrix.A == 0 {
		return
	}
	e.state.Matrix.E += dx
	e.state.Matrix.F += dy
}

func (e *Engine) centre() vector.Pt {
	return vector.Pt{X: e.state.Width / 2, Y: e.state.Height / 2}
}
