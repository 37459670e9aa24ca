/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package scene is the object model the layout engines operate on: a canvas
// owning positioned, transformable objects, groups that own their members,
// page workspaces and frame/image links.
package scene

import "pagelayout/internal/vector"

// Kind tags the variant of an object.
type Kind string

const (
	KindImage       Kind = "image"
	KindText        Kind = "text"
	KindShape       Kind = "shape"
	KindGroup       Kind = "group"
	KindWorkspace   Kind = "workspace"
	KindImageFrame  Kind = "imageFrame"
	KindCircleFrame Kind = "circleFrame"
	KindFramedImage Kind = "framedImage"
)

// frameKinds is the set of placeholder variants that clip a linked image.
// It is open: new frame shapes register themselves with RegisterFrameKind.
var frameKinds = map[Kind]bool{
	KindImageFrame:  true,
	KindCircleFrame: true,
}

// RegisterFrameKind adds k to the frame-like variants.
func RegisterFrameKind(k Kind) { frameKinds[k] = true }

// IsFrame reports whether k is a frame placeholder variant.
func (k Kind) IsFrame() bool { return frameKinds[k] }

// Object is a positioned, transformable entity on the canvas.
//
// Left/Top are absolute for top-level objects and relative to the owning
// group's local space for members. GroupID is a lookup key into the canvas
// table, never an owner: the canvas owns top-level objects and a group owns
// the ids listed in Members.
type Object struct {
	ID         string  `json:"id"`
	Name       string  `json:"name,omitempty"`
	Kind       Kind    `json:"kind"`
	Left       float64 `json:"left"`
	Top        float64 `json:"top"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	ScaleX     float64 `json:"scaleX"`
	ScaleY     float64 `json:"scaleY"`
	Angle      float64 `json:"angle"`
	Selectable bool    `json:"selectable"`
	GroupID    string  `json:"groupId,omitempty"`
	// Members lists owned children in z-order. Only set on groups.
	Members []string `json:"members,omitempty"`
	// LinkID pairs a frame with the image clipped to it (and vice versa).
	LinkID     string `json:"linkId,omitempty"`
	PageNumber int    `json:"pageNumber,omitempty"`
	Src        string `json:"src,omitempty"`

	// Clip is derived from the linked frame on load and after frame moves.
	Clip *vector.Rect `json:"-"`
}

// Transform returns the object's own placement.
func (o *Object) Transform() vector.Transform {
	return vector.Transform{Left: o.Left, Top: o.Top, ScaleX: o.ScaleX, ScaleY: o.ScaleY, Angle: o.Angle}
}

// Box is the unscaled size.
func (o *Object) Box() vector.Size { return vector.Size{W: o.Width, H: o.Height} }

// IsFrameType reports whether o is one of the frame placeholder variants.
func IsFrameType(o *Object) bool { return o != nil && o.Kind.IsFrame() }

// IsWorkspace reports whether o is tagged as a page workspace.
func IsWorkspace(o *Object) bool { return o != nil && IsWorkspaceName(o.Name) }

func (o *Object) clone() *Object {
	c := *o
	c.Members = append([]string(nil), o.Members...)
	if o.Clip != nil {
		r := *o.Clip
		c.Clip = &r
	}
	return &c
}
