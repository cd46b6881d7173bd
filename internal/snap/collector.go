/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import (
	"log/slog"

	"snapcanvas/internal/scene"
)

// CollectStops gathers candidate guide coordinates: the stage edges and
// midline, then the edges and midline of every element that is not selected.
// Order is stage first, then shapes in layer order. Shapes with non-finite
// bounds are skipped.
func CollectStops(st *scene.Stage, l *scene.Layer, sel *scene.Selection) Stops {
	stops := Stops{
		Vertical:   []float32{0, st.Width / 2, st.Width},
		Horizontal: []float32{0, st.Height / 2, st.Height},
	}
	for _, s := range l.Find(scene.ElementName) {
		if sel != nil && sel.Contains(s) {
			continue
		}
		box := st.ToLocal(s.ClientRect(st))
		if !box.Finite() {
			logger().Debug("skip shape with non-finite bounds", slog.String("id", s.ID))
			continue
		}
		stops.Vertical = append(stops.Vertical, box.X, box.X+box.W, box.X+box.W/2)
		stops.Horizontal = append(stops.Horizontal, box.Y, box.Y+box.H, box.Y+box.H/2)
	}
	return stops
}
