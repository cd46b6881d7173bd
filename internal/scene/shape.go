/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package scene holds the editable scene graph: a stage with a single layer of
// shapes and the current selection. Shapes carry their own transform; the stage
// transform maps layer-local coordinates to absolute (container) coordinates.
package scene

import (
	"fmt"
	"strings"

	"snapcanvas/internal/vector"
)

// Kind is the closed set of shape variants a layer can hold.
type Kind uint8

const (
	KindRect Kind = iota
	KindCircle
	KindText
	KindLine
)

var kindNames = [...]string{"Rect", "Circle", "Text", "Line"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ParseKind accepts the String form as well as a few lowercase aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rect", "rectangle":
		return KindRect, nil
	case "circle":
		return KindCircle, nil
	case "text":
		return KindText, nil
	case "line":
		return KindLine, nil
	}
	return 0, fmt.Errorf("unknown shape kind %q", s)
}

// ElementName tags shapes that take part in alignment.
const ElementName = "element"

// TextAttrs are only meaningful for KindText.
type TextAttrs struct {
	Content    string
	FontSize   float32
	FontFamily string
	FontStyle  string // normal, bold, italic, "italic bold"
	Decoration string // none, underline
	Align      string // left, center, right
	Padding    float32
	LineHeight float32
}

// Shape is a node of the layer. X/Y are layer-local.
type Shape struct {
	ID        string
	Kind      Kind
	Name      string
	X, Y      float32
	W, H      float32
	OffsetX   float32
	OffsetY   float32
	ScaleX    float32
	ScaleY    float32
	Fill      vector.Color
	Stroke    vector.Stroke
	Draggable bool
	Text      *TextAttrs
	// Points are flat x,y pairs for KindLine.
	Points []float32
}

func (s *Shape) scale() (float32, float32) {
	sx, sy := s.ScaleX, s.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return sx, sy
}

// Height returns the effective height. Text without an explicit height grows
// with its line count.
func (s *Shape) Height() float32 {
	if s.Kind != KindText || s.H > 0 || s.Text == nil {
		return s.H
	}
	lh := s.Text.LineHeight
	if lh <= 0 {
		lh = 1
	}
	lines := float32(strings.Count(s.Text.Content, "\n") + 1)
	return lines*s.Text.FontSize*lh + 2*s.Text.Padding
}

// SelfRect is the untransformed bounding box in the shape's own space.
func (s *Shape) SelfRect() vector.Rect {
	switch s.Kind {
	case KindCircle:
		return vector.R(-s.W/2, -s.H/2, s.W, s.H)
	case KindLine:
		if len(s.Points) < 2 {
			return vector.Rect{}
		}
		minX, minY := s.Points[0], s.Points[1]
		maxX, maxY := minX, minY
		for i := 2; i+1 < len(s.Points); i += 2 {
			minX = min(minX, s.Points[i])
			maxX = max(maxX, s.Points[i])
			minY = min(minY, s.Points[i+1])
			maxY = max(maxY, s.Points[i+1])
		}
		return vector.R(minX, minY, maxX-minX, maxY-minY)
	default:
		return vector.R(0, 0, s.W, s.Height())
	}
}

// Transform maps shape space into layer space.
func (s *Shape) Transform() vector.Affine2D {
	sx, sy := s.scale()
	return vector.Translate(s.X, s.Y).Mul(vector.Scale(sx, sy)).Mul(vector.Translate(-s.OffsetX, -s.OffsetY))
}

// AbsoluteTransform maps shape space into absolute space.
func (s *Shape) AbsoluteTransform(st *Stage) vector.Affine2D {
	return st.Transform().Mul(s.Transform())
}

// ClientRect is the absolute axis-aligned bounding box.
func (s *Shape) ClientRect(st *Stage) vector.Rect {
	return s.AbsoluteTransform(st).ApplyRect(s.SelfRect())
}

func (s *Shape) AbsolutePosition(st *Stage) vector.Pt {
	return st.Transform().Apply(vector.Pt{X: s.X, Y: s.Y})
}

func (s *Shape) SetAbsolutePosition(st *Stage, p vector.Pt) {
	local := st.InverseTransform().Apply(p)
	s.X, s.Y = local.X, local.Y
}

// Hit reports whether the absolute point p lies on the shape.
func (s *Shape) Hit(st *Stage, p vector.Pt) bool {
	q := s.AbsoluteTransform(st).Invert().Apply(p)
	r := s.SelfRect()
	if s.Kind != KindCircle {
		return r.Contains(q)
	}
	rx, ry := r.W/2, r.H/2
	if rx == 0 || ry == 0 {
		return false
	}
	dx := q.X / rx
	dy := q.Y / ry
	return dx*dx+dy*dy <= 1
}

// Clone returns a deep copy; the ID is kept.
func (s *Shape) Clone() *Shape {
	c := *s
	if s.Text != nil {
		t := *s.Text
		c.Text = &t
	}
	c.Points = append([]float32(nil), s.Points...)
	c.Stroke.Dash = append([]float32(nil), s.Stroke.Dash...)
	return &c
}
