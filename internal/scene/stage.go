/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import "snapcanvas/internal/vector"

// Stage is the root of the scene. Scale is uniform; X/Y pan the content.
type Stage struct {
	Width, Height float32
	Scale         float32
	X, Y          float32
}

func NewStage(width, height float32) *Stage {
	return &Stage{Width: width, Height: height, Scale: 1}
}

// ScaleFactor returns Scale, treating zero as 1.
func (s *Stage) ScaleFactor() float32 {
	if s.Scale == 0 {
		return 1
	}
	return s.Scale
}

func (s *Stage) Transform() vector.Affine2D {
	k := s.ScaleFactor()
	return vector.Translate(s.X, s.Y).Mul(vector.Scale(k, k))
}

func (s *Stage) InverseTransform() vector.Affine2D { return s.Transform().Invert() }

// ToLocal converts an absolute rect into unscaled stage-local units.
func (s *Stage) ToLocal(r vector.Rect) vector.Rect {
	o := s.InverseTransform().Apply(r.Min())
	k := s.ScaleFactor()
	return vector.R(o.X, o.Y, r.W/k, r.H/k)
}

// Layer is an ordered list of shapes drawn bottom to top.
type Layer struct {
	children  []*Shape
	draws     int
	listeners []func()
}

func NewLayer() *Layer { return &Layer{} }

func (l *Layer) Add(shapes ...*Shape) {
	for _, s := range shapes {
		if s != nil {
			l.children = append(l.children, s)
		}
	}
}

// Remove deletes s by identity and reports whether it was present.
func (l *Layer) Remove(s *Shape) bool {
	for i, c := range l.children {
		if c == s {
			l.children = append(l.children[:i], l.children[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveWhere deletes every child matching fn and returns the count.
func (l *Layer) RemoveWhere(fn func(*Shape) bool) int {
	kept := l.children[:0]
	removed := 0
	for _, c := range l.children {
		if fn(c) {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	for i := len(kept); i < len(l.children); i++ {
		l.children[i] = nil
	}
	l.children = kept
	return removed
}

// Find returns children whose Name equals name, in draw order.
func (l *Layer) Find(name string) []*Shape {
	var out []*Shape
	for _, c := range l.children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

func (l *Layer) FindByID(id string) *Shape {
	for _, c := range l.children {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (l *Layer) Children() []*Shape { return append([]*Shape(nil), l.children...) }
func (l *Layer) Len() int           { return len(l.children) }

// TopmostAt returns the top-most element under the absolute point p.
func (l *Layer) TopmostAt(st *Stage, p vector.Pt) *Shape {
	for i := len(l.children) - 1; i >= 0; i-- {
		c := l.children[i]
		if c.Name == ElementName && c.Hit(st, p) {
			return c
		}
	}
	return nil
}

// BatchDraw requests a redraw from every registered listener.
func (l *Layer) BatchDraw() {
	l.draws++
	for _, fn := range l.listeners {
		fn()
	}
}

func (l *Layer) Draws() int { return l.draws }

// OnDraw registers fn to run on every BatchDraw.
func (l *Layer) OnDraw(fn func()) { l.listeners = append(l.listeners, fn) }
