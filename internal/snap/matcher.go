/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import "snapcanvas/internal/vector"

// MatchGuides pairs every stop with every target per axis and returns at most
// one guide per axis: the pair with the smallest distance strictly below
// tolerance. The axes never influence each other. On equal distances the pair
// enumerated first wins (stops in collection order, then start, center, end).
// The vertical guide, if any, precedes the horizontal one.
func MatchGuides(stops Stops, targets Targets, tolerance float32) []Guide {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	var guides []Guide
	if g, ok := bestMatch(stops.Vertical, targets.Vertical, tolerance, V); ok {
		guides = append(guides, g)
	}
	if g, ok := bestMatch(stops.Horizontal, targets.Horizontal, tolerance, H); ok {
		guides = append(guides, g)
	}
	return guides
}

func bestMatch(stops []float32, targets []Target, tolerance float32, o Orientation) (Guide, bool) {
	var best Guide
	bestDist := tolerance
	found := false
	for _, stop := range stops {
		for _, t := range targets {
			d := vector.Abs(stop - t.Guide)
			if d >= tolerance {
				continue
			}
			if !found || d < bestDist {
				best = Guide{LineGuide: stop, Offset: t.Offset, Orientation: o, Snap: t.Snap}
				bestDist = d
				found = true
			}
		}
	}
	return best, found
}
