/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import (
	"snapcanvas/internal/scene"
	"snapcanvas/internal/vector"
)

// CorrectSelection moves the selection so its anchor lands on the guides.
// The anchor's snapped axes become LineGuide+Offset; the resulting stage-local
// delta is applied to every node alike, so a multi-shape selection moves as a
// rigid group. It returns the delta (original minus corrected anchor).
func CorrectSelection(st *scene.Stage, sel *scene.Selection, guides []Guide) vector.Pt {
	if len(guides) == 0 || sel.Empty() {
		return vector.Pt{}
	}
	anchor := st.InverseTransform().Apply(sel.AbsolutePosition(st))
	return shiftSelection(st, sel, anchor, guides)
}

func shiftSelection(st *scene.Stage, sel *scene.Selection, anchor vector.Pt, guides []Guide) vector.Pt {
	pos := anchor
	for _, g := range guides {
		if g.Orientation == V {
			pos.X = g.LineGuide + g.Offset
		} else {
			pos.Y = g.LineGuide + g.Offset
		}
	}
	delta := anchor.Sub(pos)
	absDelta := st.Transform().ApplyVector(delta)
	for _, n := range sel.Nodes() {
		n.SetAbsolutePosition(st, n.AbsolutePosition(st).Sub(absDelta))
	}
	return delta
}
