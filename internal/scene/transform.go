/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"fmt"
	"strings"

	"snapcanvas/internal/vector"
)

// MinTextWidth bounds horizontal text resizing from a middle handle.
const MinTextWidth = 50

// NormalizeTextTransform folds the scale of a text shape into its geometry so
// the glyphs never render stretched. Middle handles only change the wrap width;
// corner handles also scale the font.
func NormalizeTextTransform(s *Shape, anchor string) {
	if s.Kind != KindText || s.Text == nil {
		return
	}
	sx, _ := s.scale()
	if strings.Contains(anchor, "middle") {
		s.W = max(s.W*sx, MinTextWidth)
	} else {
		s.W *= sx
		s.Text.FontSize *= sx
	}
	s.ScaleX, s.ScaleY = 1, 1
}

// ScaleSelection resizes every selected node by sx, sy around the selection
// box origin, keeping the relative layout. Text nodes are normalized with anchor.
func ScaleSelection(st *Stage, sel *Selection, sx, sy float32, anchor string) {
	box, ok := sel.ClientRect(st)
	if !ok || sx <= 0 || sy <= 0 {
		return
	}
	origin := box.Min()
	for _, n := range sel.nodes {
		p := n.AbsolutePosition(st).Sub(origin)
		n.SetAbsolutePosition(st, vector.Pt{X: origin.X + p.X*sx, Y: origin.Y + p.Y*sy})
		cx, cy := n.scale()
		n.ScaleX, n.ScaleY = cx*sx, cy*sy
		NormalizeTextTransform(n, anchor)
	}
}

// SizeLabel is the "W x H" caption shown next to the transformer while resizing.
func SizeLabel(st *Stage, sel *Selection) string {
	box, ok := sel.ClientRect(st)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d x %d", int(vector.Round(box.W)), int(vector.Round(box.H)))
}
