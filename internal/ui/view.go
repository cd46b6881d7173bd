/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"math"

	"snapcanvas/internal/vector"
)

const (
	minZoom = 0.1
	maxZoom = 8
)

func clampZoom(z float32) float32 {
	if z < minZoom || math.IsNaN(float64(z)) {
		return minZoom
	}
	if z > maxZoom {
		return maxZoom
	}
	return z
}

// zoomAbout returns the stage offset that keeps the absolute point p fixed
// when the scale changes from old to next.
func zoomAbout(p, offset vector.Pt, old, next float32) vector.Pt {
	if old == 0 {
		return offset
	}
	k := next / old
	return vector.Pt{X: p.X - (p.X-offset.X)*k, Y: p.Y - (p.Y-offset.Y)*k}
}

// clipSegment clips a-b to r (Liang-Barsky).
func clipSegment(a, b vector.Pt, r vector.Rect) (vector.Pt, vector.Pt, bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	t0, t1 := float32(0), float32(1)
	edges := [4][2]float32{
		{-dx, a.X - r.X},
		{dx, r.X + r.W - a.X},
		{-dy, a.Y - r.Y},
		{dy, r.Y + r.H - a.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return a, b, false
			}
			t0 = max(t0, t)
		} else {
			if t < t0 {
				return a, b, false
			}
			t1 = min(t1, t)
		}
	}
	return vector.Pt{X: a.X + t0*dx, Y: a.Y + t0*dy}, vector.Pt{X: a.X + t1*dx, Y: a.Y + t1*dy}, true
}

func dist(a, b vector.Pt) float32 {
	return float32(math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y)))
}

// dashSegments returns the visible "on" pieces of a dashed line from a to b
// inside clip. The dash phase is measured from a, so panning does not make
// the pattern crawl. An empty or invalid pattern yields one solid piece.
func dashSegments(a, b vector.Pt, dash []float32, clip vector.Rect) [][2]vector.Pt {
	ca, cb, ok := clipSegment(a, b, clip)
	if !ok {
		return nil
	}
	length := dist(ca, cb)
	if length == 0 {
		return nil
	}
	var period float32
	for _, d := range dash {
		if d < 0 {
			period = 0
			break
		}
		period += d
	}
	if period <= 0 {
		return [][2]vector.Pt{{ca, cb}}
	}
	if len(dash)%2 == 1 {
		dash = append(append([]float32(nil), dash...), dash...)
		period *= 2
	}
	ux, uy := (cb.X-ca.X)/length, (cb.Y-ca.Y)/length
	at := func(s float32) vector.Pt { return vector.Pt{X: ca.X + ux*s, Y: ca.Y + uy*s} }

	phase := float32(math.Mod(float64(dist(a, ca)), float64(period)))
	i := 0
	for phase >= dash[i] {
		phase -= dash[i]
		i = (i + 1) % len(dash)
	}
	var out [][2]vector.Pt
	pos, rem := float32(0), dash[i]-phase
	for pos < length {
		step := min(rem, length-pos)
		if i%2 == 0 && step > 0 {
			out = append(out, [2]vector.Pt{at(pos), at(pos + step)})
		}
		pos += step
		i = (i + 1) % len(dash)
		rem = dash[i]
	}
	return out
}
