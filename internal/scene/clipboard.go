/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package scene

// PasteOffset shifts pasted shapes so they do not cover their source.
const PasteOffset = 50

// Clipboard keeps detached clones of previously copied shapes.
type Clipboard struct {
	items []*Shape
}

// Copy stores clones of the selection; an empty selection empties the clipboard.
func (c *Clipboard) Copy(sel *Selection) {
	c.items = cloneAll(sel.nodes)
}

func (c *Clipboard) Len() int { return len(c.items) }

// Paste inserts the clipboard contents and selects them. The clipboard then
// holds the pasted shapes so repeated pastes keep cascading.
func (c *Clipboard) Paste(l *Layer, sel *Selection) []*Shape {
	out := pasteClones(l, sel, c.items)
	if len(out) > 0 {
		c.Copy(sel)
	}
	return out
}

// Duplicate pastes clones of the current selection without touching any clipboard.
func Duplicate(l *Layer, sel *Selection) []*Shape {
	return pasteClones(l, sel, sel.nodes)
}

func pasteClones(l *Layer, sel *Selection, src []*Shape) []*Shape {
	if len(src) == 0 {
		return nil
	}
	out := make([]*Shape, 0, len(src))
	for _, s := range src {
		c := s.Clone()
		c.ID = NewID()
		c.X += PasteOffset
		c.Y += PasteOffset
		l.Add(c)
		out = append(out, c)
	}
	sel.Set(out...)
	l.BatchDraw()
	return out
}

// DeleteSelected removes every selected shape from the layer and clears the selection.
func DeleteSelected(l *Layer, sel *Selection) int {
	n := 0
	for _, s := range sel.nodes {
		if l.Remove(s) {
			n++
		}
	}
	sel.Clear()
	return n
}

func cloneAll(src []*Shape) []*Shape {
	if len(src) == 0 {
		return nil
	}
	out := make([]*Shape, len(src))
	for i, s := range src {
		out[i] = s.Clone()
	}
	return out
}
