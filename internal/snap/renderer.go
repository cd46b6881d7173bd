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

// GuideLineName tags the line primitives drawn for guides.
const GuideLineName = "guide-line"

// guideReach is the half length of a guide line; long enough to cross any stage.
const guideReach = 6000

// GuideStroke is the dashed hairline used for guides.
func GuideStroke() vector.Stroke {
	return vector.Stroke{Color: vector.GuideBlue, Width: 1, Dash: []float32{4, 6}, Enabled: true}
}

// RenderGuides adds one line primitive per guide to the layer and returns them.
// Vertical guides sit at x = LineGuide, horizontal ones at y = LineGuide.
func RenderGuides(l *scene.Layer, guides []Guide) []*scene.Shape {
	out := make([]*scene.Shape, 0, len(guides))
	for _, g := range guides {
		var line *scene.Shape
		if g.Orientation == H {
			line = scene.NewLine(GuideLineName, []float32{-guideReach, 0, guideReach, 0}, GuideStroke())
			line.Y = g.LineGuide
		} else {
			line = scene.NewLine(GuideLineName, []float32{0, -guideReach, 0, guideReach}, GuideStroke())
			line.X = g.LineGuide
		}
		l.Add(line)
		out = append(out, line)
	}
	return out
}

// ClearGuides removes every guide primitive from the layer. Safe to call on a
// layer without guides.
func ClearGuides(l *scene.Layer) int {
	return l.RemoveWhere(func(s *scene.Shape) bool { return s.Name == GuideLineName })
}
