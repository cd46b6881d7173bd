/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import "snapcanvas/internal/vector"

// Selection is the ordered set of shapes the transformer is attached to.
// It never owns the shapes; the layer does.
type Selection struct {
	nodes []*Shape
}

func NewSelection() *Selection { return &Selection{} }

// Set replaces the selection, dropping nils and duplicates while keeping order.
func (s *Selection) Set(nodes ...*Shape) {
	s.nodes = s.nodes[:0]
	for _, n := range nodes {
		if n != nil && !s.Contains(n) {
			s.nodes = append(s.nodes, n)
		}
	}
}

func (s *Selection) Nodes() []*Shape { return append([]*Shape(nil), s.nodes...) }
func (s *Selection) Len() int        { return len(s.nodes) }
func (s *Selection) Empty() bool     { return len(s.nodes) == 0 }
func (s *Selection) Clear()          { s.nodes = nil }

func (s *Selection) Contains(n *Shape) bool {
	for _, c := range s.nodes {
		if c == n {
			return true
		}
	}
	return false
}

// ClientRect is the union of the absolute client rects of all nodes.
func (s *Selection) ClientRect(st *Stage) (vector.Rect, bool) {
	if len(s.nodes) == 0 {
		return vector.Rect{}, false
	}
	b := s.nodes[0].ClientRect(st)
	for _, n := range s.nodes[1:] {
		b = b.Union(n.ClientRect(st))
	}
	return b, true
}

// AbsolutePosition is the transformer anchor: the top-left corner of the
// selection box. Rotation is disabled, so the box corner is the anchor.
func (s *Selection) AbsolutePosition(st *Stage) vector.Pt {
	b, _ := s.ClientRect(st)
	return b.Min()
}

// CurrentShapeType names the selection: "" when empty, the kind of a single
// shape, or "group" for several.
func CurrentShapeType(sel *Selection) string {
	switch {
	case sel.Len() == 1:
		return sel.nodes[0].Kind.String()
	case sel.Len() > 1:
		return "group"
	}
	return ""
}
