/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"github.com/google/uuid"

	"snapcanvas/internal/vector"
)

// Defaults used by the shape factories.
const (
	DefaultX          = 100
	DefaultY          = 50
	DefaultSize       = 100
	DefaultTextWidth  = 200
	DefaultFontSize   = 28
	DefaultTextPad    = 5
	DefaultTextString = "Hello Canvas"
)

// NewID returns a fresh shape identifier.
func NewID() string { return uuid.NewString() }

func newElement(kind Kind) *Shape {
	return &Shape{
		ID:        NewID(),
		Kind:      kind,
		Name:      ElementName,
		X:         DefaultX,
		Y:         DefaultY,
		ScaleX:    1,
		ScaleY:    1,
		Draggable: true,
	}
}

// NewRectangle returns a 100x100 rectangle with a random fill.
func NewRectangle() *Shape {
	s := newElement(KindRect)
	s.W, s.H = DefaultSize, DefaultSize
	s.Fill = vector.RandomColor(nil)
	return s
}

// NewCircle returns a circle whose bounding box starts at the default position.
func NewCircle() *Shape {
	s := newElement(KindCircle)
	s.W, s.H = DefaultSize, DefaultSize
	// circles are centered on X/Y; shift so the box corner sits there instead
	s.OffsetX, s.OffsetY = -DefaultSize/2, -DefaultSize/2
	s.Fill = vector.RandomColor(nil)
	return s
}

// NewText returns a text block with auto height.
func NewText() *Shape {
	s := newElement(KindText)
	s.W = DefaultTextWidth
	s.Fill = vector.Black
	s.Text = &TextAttrs{
		Content:    DefaultTextString,
		FontSize:   DefaultFontSize,
		FontFamily: "Arial",
		FontStyle:  "normal",
		Decoration: "none",
		Align:      "left",
		Padding:    DefaultTextPad,
		LineHeight: 1,
	}
	return s
}

// NewLine returns a line primitive with the given flat points.
func NewLine(name string, points []float32, stroke vector.Stroke) *Shape {
	return &Shape{
		ID:     NewID(),
		Kind:   KindLine,
		Name:   name,
		ScaleX: 1,
		ScaleY: 1,
		Points: append([]float32(nil), points...),
		Stroke: stroke,
	}
}
