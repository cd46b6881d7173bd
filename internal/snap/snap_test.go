/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import (
	"math"
	"testing"

	"snapcanvas/internal/scene"
	"snapcanvas/internal/vector"
)

func rect(x, y, w, h float32) *scene.Shape {
	s := scene.NewRectangle()
	s.X, s.Y, s.W, s.H = x, y, w, h
	return s
}

// board returns a 1200x800 stage with a selected shape a and a fixed neighbour b at (400,300).
func board(a *scene.Shape) (Scene, *scene.Shape) {
	st := scene.NewStage(1200, 800)
	l := scene.NewLayer()
	b := rect(400, 300, 100, 100)
	l.Add(a, b)
	sel := scene.NewSelection()
	sel.Set(a)
	return Scene{Stage: st, Layer: l, Selection: sel}, b
}

func guideCount(l *scene.Layer) int { return len(l.Find(GuideLineName)) }

func TestCollectStopsStageAndSiblings(t *testing.T) {
	a := rect(100, 50, 100, 100)
	sc, _ := board(a)
	stops := CollectStops(sc.Stage, sc.Layer, sc.Selection)
	wantV := []float32{0, 600, 1200, 400, 500, 450}
	wantH := []float32{0, 400, 800, 300, 400, 350}
	if len(stops.Vertical) != len(wantV) || len(stops.Horizontal) != len(wantH) {
		t.Fatalf("unexpected stops: %+v", stops)
	}
	for i := range wantV {
		if stops.Vertical[i] != wantV[i] || stops.Horizontal[i] != wantH[i] {
			t.Fatalf("stop %d: got V=%v H=%v", i, stops.Vertical[i], stops.Horizontal[i])
		}
	}
}

func TestCollectStopsSkipsGuidesAndNonFinite(t *testing.T) {
	a := rect(100, 50, 100, 100)
	sc, _ := board(a)
	RenderGuides(sc.Layer, []Guide{{LineGuide: 10, Orientation: V}})
	bad := rect(float32(math.NaN()), 0, 10, 10)
	sc.Layer.Add(bad)
	stops := CollectStops(sc.Stage, sc.Layer, sc.Selection)
	if len(stops.Vertical) != 6 {
		t.Fatalf("expected stage + one sibling, got %v", stops.Vertical)
	}
}

func TestExtractTargetsRounding(t *testing.T) {
	a := rect(296.5, 50, 100, 100)
	sc, _ := board(a)
	tg, anchor, ok := ExtractTargets(sc.Stage, sc.Selection)
	if !ok {
		t.Fatalf("expected targets")
	}
	if anchor.X != 296.5 || anchor.Y != 50 {
		t.Fatalf("anchor=%+v", anchor)
	}
	want := []Target{{297, 0, Start}, {347, -50, Center}, {397, -100, End}}
	for i, w := range want {
		if tg.Vertical[i] != w {
			t.Fatalf("target %d: got %+v want %+v", i, tg.Vertical[i], w)
		}
	}
}

func TestExtractTargetsEmptySelection(t *testing.T) {
	if _, _, ok := ExtractTargets(scene.NewStage(10, 10), scene.NewSelection()); ok {
		t.Fatalf("empty selection must not produce targets")
	}
}

func TestMatchGuidesStrictTolerance(t *testing.T) {
	stops := Stops{Vertical: []float32{100}, Horizontal: []float32{100}}
	targets := Targets{
		Vertical:   []Target{{Guide: 105, Snap: Start}},
		Horizontal: []Target{{Guide: 104, Snap: Start}},
	}
	g := MatchGuides(stops, targets, 5)
	if len(g) != 1 || g[0].Orientation != H || g[0].LineGuide != 100 {
		t.Fatalf("expected only the horizontal guide, got %+v", g)
	}
}

func TestMatchGuidesPicksClosestThenFirst(t *testing.T) {
	stops := Stops{Vertical: []float32{10, 14, 13}}
	targets := Targets{Vertical: []Target{
		{Guide: 12, Offset: 0, Snap: Start},
		{Guide: 16, Offset: -4, Snap: End},
	}}
	g := MatchGuides(stops, targets, DefaultTolerance)
	// 13 vs 12 is the unique closest pair
	if len(g) != 1 || g[0].LineGuide != 13 || g[0].Snap != Start {
		t.Fatalf("got %+v", g)
	}

	stops.Vertical = []float32{10, 14}
	g = MatchGuides(stops, targets, DefaultTolerance)
	// 10-12, 14-12 and 14-16 are all 2 apart; the first enumerated pair wins
	if g[0].LineGuide != 10 || g[0].Snap != Start {
		t.Fatalf("tie not resolved by enumeration order: %+v", g)
	}
}

func TestMatchGuidesDefaultTolerance(t *testing.T) {
	stops := Stops{Vertical: []float32{0}}
	targets := Targets{Vertical: []Target{{Guide: 4}}}
	if g := MatchGuides(stops, targets, 0); len(g) != 1 {
		t.Fatalf("zero tolerance should fall back to default, got %+v", g)
	}
}

func TestRenderAndClearGuides(t *testing.T) {
	l := scene.NewLayer()
	lines := RenderGuides(l, []Guide{{LineGuide: 400, Orientation: V}, {LineGuide: 300, Orientation: H}})
	if len(lines) != 2 || guideCount(l) != 2 {
		t.Fatalf("expected two guide lines")
	}
	v, h := lines[0], lines[1]
	if v.X != 400 || v.Points[1] != -6000 || v.Points[3] != 6000 {
		t.Fatalf("vertical line wrong: %+v", v)
	}
	if h.Y != 300 || h.Points[0] != -6000 || h.Points[2] != 6000 {
		t.Fatalf("horizontal line wrong: %+v", h)
	}
	if v.Stroke.Color != vector.GuideBlue || len(v.Stroke.Dash) != 2 || v.Draggable {
		t.Fatalf("unexpected guide style: %+v", v.Stroke)
	}
	if n := ClearGuides(l); n != 2 {
		t.Fatalf("cleared %d, want 2", n)
	}
	if n := ClearGuides(l); n != 0 {
		t.Fatalf("second clear removed %d", n)
	}
}

func TestDragMoveSnapsEndToNeighbour(t *testing.T) {
	a := rect(297, 50, 100, 100)
	sc, _ := board(a)
	e := New(Options{})
	res := e.DragMove(sc)
	if len(res.Guides) != 1 {
		t.Fatalf("guides=%+v", res.Guides)
	}
	g := res.Guides[0]
	if g.Orientation != V || g.LineGuide != 400 || g.Offset != -100 || g.Snap != End {
		t.Fatalf("unexpected guide %+v", g)
	}
	if a.X != 300 || a.Y != 50 {
		t.Fatalf("position not corrected: (%v,%v)", a.X, a.Y)
	}
	if res.Delta.X != -3 || res.Delta.Y != 0 {
		t.Fatalf("delta=%+v", res.Delta)
	}
	if guideCount(sc.Layer) != 1 || sc.Layer.Draws() != 1 {
		t.Fatalf("guides=%d draws=%d", guideCount(sc.Layer), sc.Layer.Draws())
	}
}

func TestDragMoveAtToleranceDoesNotSnap(t *testing.T) {
	a := rect(295, 50, 100, 100)
	sc, _ := board(a)
	res := New(Options{}).DragMove(sc)
	if len(res.Guides) != 0 || a.X != 295 {
		t.Fatalf("distance 5 must not snap: %+v x=%v", res.Guides, a.X)
	}
}

func TestDragMoveBothAxes(t *testing.T) {
	a := rect(297, 298, 100, 100)
	sc, _ := board(a)
	res := New(Options{}).DragMove(sc)
	if len(res.Guides) != 2 || res.Guides[0].Orientation != V || res.Guides[1].Orientation != H {
		t.Fatalf("guides=%+v", res.Guides)
	}
	// stage midline 400 precedes the neighbour's top edge 300 at equal distance
	if h := res.Guides[1]; h.LineGuide != 400 || h.Snap != End {
		t.Fatalf("horizontal guide=%+v", h)
	}
	if a.X != 300 || a.Y != 300 {
		t.Fatalf("position=(%v,%v)", a.X, a.Y)
	}
}

func TestDragMoveMovesGroupRigidly(t *testing.T) {
	a := rect(288, 50, 60, 60)
	c := rect(348, 200, 50, 50)
	sc, _ := board(a)
	sc.Layer.Add(c)
	sc.Selection.Set(a, c)
	res := New(Options{}).DragMove(sc)
	if len(res.Guides) != 1 || res.Guides[0].LineGuide != 400 {
		t.Fatalf("guides=%+v", res.Guides)
	}
	if a.X != 290 || c.X != 350 || a.Y != 50 || c.Y != 200 {
		t.Fatalf("group not moved rigidly: a=(%v,%v) c=(%v,%v)", a.X, a.Y, c.X, c.Y)
	}
}

func TestDragMoveScaledStage(t *testing.T) {
	a := rect(597, 50, 100, 100)
	sc, _ := board(a)
	sc.Stage.Scale = 2
	res := New(Options{}).DragMove(sc)
	if len(res.Guides) != 1 || res.Guides[0].LineGuide != 600 || res.Guides[0].Snap != Start {
		t.Fatalf("guides=%+v", res.Guides)
	}
	if a.X != 600 {
		t.Fatalf("x=%v want 600", a.X)
	}
}

func TestDragMoveReplacesGuides(t *testing.T) {
	a := rect(297, 50, 100, 100)
	sc, _ := board(a)
	e := New(Options{})
	e.DragMove(sc)
	res := e.DragMove(sc)
	if res.Cleared != 1 || guideCount(sc.Layer) != 1 {
		t.Fatalf("cleared=%d guides=%d", res.Cleared, guideCount(sc.Layer))
	}
	if a.X != 300 {
		t.Fatalf("already aligned shape moved to %v", a.X)
	}
	if n := e.DragEnd(sc); n != 1 || guideCount(sc.Layer) != 0 {
		t.Fatalf("drag end left guides")
	}
	if n := e.DragEnd(sc); n != 0 {
		t.Fatalf("second drag end removed %d", n)
	}
}

func TestDragMoveEmptySelectionIsNoop(t *testing.T) {
	sc, _ := board(rect(297, 50, 100, 100))
	sc.Selection.Clear()
	RenderGuides(sc.Layer, []Guide{{LineGuide: 1}})
	res := New(Options{}).DragMove(sc)
	if res.Cleared != 0 || len(res.Guides) != 0 || sc.Layer.Draws() != 0 || guideCount(sc.Layer) != 1 {
		t.Fatalf("empty selection changed the scene: %+v", res)
	}
}

func TestDragMoveDisabled(t *testing.T) {
	a := rect(297, 50, 100, 100)
	sc, _ := board(a)
	res := New(Options{Disabled: true}).DragMove(sc)
	if len(res.Guides) != 0 || a.X != 297 {
		t.Fatalf("disabled engine snapped: %+v", res)
	}
}

func TestComputeGuidesIsReadOnly(t *testing.T) {
	a := rect(297, 50, 100, 100)
	sc, _ := board(a)
	e := New(Options{Tolerance: 2})
	if g := e.ComputeGuides(sc); len(g) != 0 {
		t.Fatalf("tolerance 2 should reject distance 3: %+v", g)
	}
	e = New(Options{Tolerance: 10})
	g := e.ComputeGuides(sc)
	if len(g) != 1 || a.X != 297 || guideCount(sc.Layer) != 0 {
		t.Fatalf("compute mutated the scene or missed the guide: %+v", g)
	}
	e.RenderGuides(sc, g)
	e.CorrectSelection(sc, g)
	if a.X != 300 || guideCount(sc.Layer) != 1 {
		t.Fatalf("explicit steps did not apply: x=%v", a.X)
	}
}

func TestMatchGuidesMinimumOfThree(t *testing.T) {
	stops := Stops{Vertical: []float32{13, 11, 14}}
	targets := Targets{Vertical: []Target{{Guide: 10, Snap: Center}}}
	g := MatchGuides(stops, targets, 5)
	if len(g) != 1 || g[0].LineGuide != 11 {
		t.Fatalf("diffs 3,1,4 should pick 1, got %+v", g)
	}
}

func TestCenterSnapsToStageMidline(t *testing.T) {
	st := scene.NewStage(1000, 600)
	l := scene.NewLayer()
	a := rect(448, 50, 100, 100)
	l.Add(a)
	sel := scene.NewSelection()
	sel.Set(a)
	res := New(Options{Tolerance: 5}).DragMove(Scene{Stage: st, Layer: l, Selection: sel})
	if len(res.Guides) != 1 {
		t.Fatalf("want one guide, got %+v", res.Guides)
	}
	g := res.Guides[0]
	if g.Orientation != V || g.LineGuide != 500 || g.Snap != Center {
		t.Fatalf("unexpected guide %+v", g)
	}
	if c := a.ClientRect(st).Center().X; c != 500 {
		t.Fatalf("center at %v, want 500", c)
	}
}

func TestRigidPairShiftsTogether(t *testing.T) {
	st := scene.NewStage(1200, 800)
	l := scene.NewLayer()
	a := rect(100, 50, 50, 50)
	b := rect(200, 50, 50, 50)
	anchor := rect(102, 500, 10, 10)
	l.Add(a, b, anchor)
	sel := scene.NewSelection()
	sel.Set(a, b)
	res := New(Options{}).DragMove(Scene{Stage: st, Layer: l, Selection: sel})
	if len(res.Guides) != 1 || res.Guides[0].LineGuide != 102 {
		t.Fatalf("guides: %+v", res.Guides)
	}
	if a.X != 102 || b.X != 202 || a.Y != 50 || b.Y != 50 {
		t.Fatalf("a=(%v,%v) b=(%v,%v)", a.X, a.Y, b.X, b.Y)
	}
}

func TestMatchGuidesAxesIndependent(t *testing.T) {
	vStops := []float32{0, 100, 600}
	vTargets := []Target{
		{Guide: 98, Offset: 0, Snap: Start},
		{Guide: 148, Offset: -50, Snap: Center},
		{Guide: 198, Offset: -100, Snap: End},
	}
	hTargets := []Target{
		{Guide: 50, Offset: 0, Snap: Start},
		{Guide: 75, Offset: -25, Snap: Center},
		{Guide: 100, Offset: -50, Snap: End},
	}
	want := Guide{LineGuide: 100, Offset: 0, Orientation: V, Snap: Start}
	for name, hStops := range map[string][]float32{
		"none": nil,
		"far":  {400},
		"near": {77},
	} {
		g := MatchGuides(Stops{Vertical: vStops, Horizontal: hStops}, Targets{Vertical: vTargets, Horizontal: hTargets}, 5)
		if len(g) == 0 || g[0] != want {
			t.Fatalf("%s: vertical guide changed: %+v", name, g)
		}
		wantLen := 1
		if name == "near" {
			wantLen = 2
			if g[1].Orientation != H || g[1].LineGuide != 77 || g[1].Snap != Center {
				t.Fatalf("near: horizontal guide %+v", g[1])
			}
		}
		if len(g) != wantLen {
			t.Fatalf("%s: got %d guides", name, len(g))
		}
	}
}
