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
	"testing"

	"snapcanvas/internal/vector"
)

func near(a, b float32) bool { return math.Abs(float64(a-b)) < 1e-3 }

func TestClampZoom(t *testing.T) {
	cases := map[float32]float32{0: minZoom, -1: minZoom, 1: 1, 100: maxZoom}
	for in, want := range cases {
		if got := clampZoom(in); got != want {
			t.Fatalf("clampZoom(%v)=%v want %v", in, got, want)
		}
	}
	if got := clampZoom(float32(math.NaN())); got != minZoom {
		t.Fatalf("NaN zoom: %v", got)
	}
}

func TestZoomAboutKeepsPointFixed(t *testing.T) {
	p := vector.Pt{X: 300, Y: 200}
	off := vector.Pt{X: 10, Y: 20}
	next := zoomAbout(p, off, 1, 2)
	// local point under p before: (p-off)/1; after: (p-next)/2
	if !near((p.X-off.X)/1, (p.X-next.X)/2) || !near((p.Y-off.Y)/1, (p.Y-next.Y)/2) {
		t.Fatalf("point moved: off=%v next=%v", off, next)
	}
	if got := zoomAbout(p, off, 0, 2); got != off {
		t.Fatalf("zero scale must keep offset, got %v", got)
	}
}

func TestClipSegment(t *testing.T) {
	r := vector.R(0, 0, 50, 50)
	a, b, ok := clipSegment(vector.Pt{X: -100, Y: 10}, vector.Pt{X: 100, Y: 10}, r)
	if !ok || !near(a.X, 0) || !near(b.X, 50) || !near(a.Y, 10) {
		t.Fatalf("clip: %v %v %v", a, b, ok)
	}
	if _, _, ok := clipSegment(vector.Pt{X: -100, Y: 60}, vector.Pt{X: 100, Y: 60}, r); ok {
		t.Fatalf("segment outside must be rejected")
	}
}

func TestDashSegments(t *testing.T) {
	r := vector.R(0, 0, 50, 50)
	segs := dashSegments(vector.Pt{X: -100, Y: 10}, vector.Pt{X: 100, Y: 10}, []float32{4, 6}, r)
	if len(segs) != 5 {
		t.Fatalf("want 5 dashes, got %d: %v", len(segs), segs)
	}
	for i, s := range segs {
		x0 := float32(i * 10)
		if !near(s[0].X, x0) || !near(s[1].X, x0+4) {
			t.Fatalf("dash %d = %v", i, s)
		}
	}
	// phase carries over from the unclipped start
	segs = dashSegments(vector.Pt{X: -2, Y: 10}, vector.Pt{X: 100, Y: 10}, []float32{4, 6}, r)
	if len(segs) == 0 || !near(segs[0][0].X, 0) || !near(segs[0][1].X, 2) {
		t.Fatalf("first dash should be the tail of a clipped one: %v", segs)
	}
	solid := dashSegments(vector.Pt{X: 10, Y: -10}, vector.Pt{X: 10, Y: 100}, nil, r)
	if len(solid) != 1 || !near(solid[0][0].Y, 0) || !near(solid[0][1].Y, 50) {
		t.Fatalf("solid: %v", solid)
	}
}
