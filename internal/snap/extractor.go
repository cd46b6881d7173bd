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

// ExtractTargets derives the start, center and end points of the selection
// box on both axes, in stage-local units rounded to whole pixels. It also
// returns the stage-local anchor the offsets are relative to. ok is false for
// an empty selection or a box that is not finite.
func ExtractTargets(st *scene.Stage, sel *scene.Selection) (Targets, vector.Pt, bool) {
	abs, ok := sel.ClientRect(st)
	if !ok {
		return Targets{}, vector.Pt{}, false
	}
	box := st.ToLocal(abs)
	anchor := st.InverseTransform().Apply(sel.AbsolutePosition(st))
	if !box.Finite() || !finitePt(anchor) {
		return Targets{}, vector.Pt{}, false
	}
	return Targets{
		Vertical:   axisTargets(box.X, box.W, anchor.X),
		Horizontal: axisTargets(box.Y, box.H, anchor.Y),
	}, anchor, true
}

func axisTargets(start, size, anchor float32) []Target {
	points := [...]struct {
		at   float32
		kind SnapKind
	}{
		{start, Start},
		{start + size/2, Center},
		{start + size, End},
	}
	out := make([]Target, 0, len(points))
	for _, p := range points {
		out = append(out, Target{
			Guide:  vector.Round(p.at),
			Offset: vector.Round(anchor - p.at),
			Snap:   p.kind,
		})
	}
	return out
}

func finitePt(p vector.Pt) bool { return vector.R(p.X, p.Y, 0, 0).Finite() }
