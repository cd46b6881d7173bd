/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package snap implements alignment guides for dragging shapes: candidate
// lines are collected from the stage and the sibling shapes, matched against
// the edges and center of the moving selection, drawn on the layer, and the
// selection is shifted onto the closest guide.
//
// All matching happens in unscaled stage-local units. Every call is a pure
// function of the scene passed in, apart from RenderGuides, ClearGuides and
// CorrectSelection, which are the only writers.
package snap

import (
	"snapcanvas/internal/scene"
	"snapcanvas/internal/vector"
)

// DefaultTolerance is the maximum distance, in stage-local pixels, at which a
// guide and a selection edge are considered aligned.
const DefaultTolerance float32 = 5

// Orientation of a guide line: V is a vertical line at some x, H a horizontal line at some y.
type Orientation uint8

const (
	V Orientation = iota
	H
)

func (o Orientation) String() string {
	if o == H {
		return "H"
	}
	return "V"
}

// SnapKind tells which feature of the selection box a target represents.
type SnapKind uint8

const (
	Start SnapKind = iota
	Center
	End
)

func (k SnapKind) String() string {
	switch k {
	case Center:
		return "center"
	case End:
		return "end"
	}
	return "start"
}

// Stops are candidate guide coordinates: x values for vertical guides, y for horizontal.
type Stops struct {
	Vertical   []float32
	Horizontal []float32
}

// Target is one alignment point of the selection box on one axis. Offset is
// the distance from the selection anchor to the point.
type Target struct {
	Guide  float32
	Offset float32
	Snap   SnapKind
}

type Targets struct {
	Vertical   []Target
	Horizontal []Target
}

// Guide is the winning match on one axis.
type Guide struct {
	LineGuide   float32
	Offset      float32
	Orientation Orientation
	Snap        SnapKind
}

// Scene is the explicit context every engine call works on.
type Scene struct {
	Stage     *scene.Stage
	Layer     *scene.Layer
	Selection *scene.Selection
}

// Result reports what a DragMove did.
type Result struct {
	Guides []Guide
	// Delta is the stage-local correction subtracted from every selected node.
	Delta vector.Pt
	// Cleared counts guide primitives removed before recomputing.
	Cleared int
}
