/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"testing"

	"snapcanvas/internal/vector"
)

func TestFactoriesShareDefaultBox(t *testing.T) {
	st := NewStage(1000, 800)
	r := NewRectangle()
	c := NewCircle()
	if r.ID == "" || c.ID == "" || r.ID == c.ID {
		t.Fatalf("expected distinct non-empty ids: %q %q", r.ID, c.ID)
	}
	rb, cb := r.ClientRect(st), c.ClientRect(st)
	if rb != cb {
		t.Fatalf("rect and circle boxes differ: %+v vs %+v", rb, cb)
	}
	if rb != vector.R(100, 50, 100, 100) {
		t.Fatalf("unexpected default box: %+v", rb)
	}
	if r.Name != ElementName || !r.Draggable {
		t.Fatalf("factory shapes must be draggable elements")
	}
}

func TestTextAutoHeight(t *testing.T) {
	tx := NewText()
	if got := tx.Height(); got != 38 { // 28 font + 2*5 padding
		t.Fatalf("Height() = %v, want 38", got)
	}
	tx.Text.Content = "a\nb"
	if got := tx.Height(); got != 66 {
		t.Fatalf("two-line Height() = %v, want 66", got)
	}
}

func TestClientRectUnderStageTransform(t *testing.T) {
	st := &Stage{Width: 1000, Height: 800, Scale: 2, X: 10, Y: 20}
	r := NewRectangle()
	b := r.ClientRect(st)
	if b != vector.R(210, 120, 200, 200) {
		t.Fatalf("unexpected absolute box: %+v", b)
	}
	if local := st.ToLocal(b); local != vector.R(100, 50, 100, 100) {
		t.Fatalf("ToLocal mismatch: %+v", local)
	}
	r.SetAbsolutePosition(st, vector.Pt{X: 410, Y: 220})
	if r.X != 200 || r.Y != 100 {
		t.Fatalf("SetAbsolutePosition local = (%v,%v)", r.X, r.Y)
	}
	if p := r.AbsolutePosition(st); p != (vector.Pt{X: 410, Y: 220}) {
		t.Fatalf("AbsolutePosition = %+v", p)
	}
}

func TestHitCircleAndRect(t *testing.T) {
	st := NewStage(500, 500)
	c := NewCircle()
	if !c.Hit(st, vector.Pt{X: 150, Y: 100}) {
		t.Fatalf("circle center should hit")
	}
	if c.Hit(st, vector.Pt{X: 101, Y: 51}) {
		t.Fatalf("box corner is outside the circle")
	}
	l := NewLayer()
	r := NewRectangle()
	l.Add(r, c)
	if got := l.TopmostAt(st, vector.Pt{X: 150, Y: 100}); got != c {
		t.Fatalf("expected top-most circle")
	}
	if got := l.TopmostAt(st, vector.Pt{X: 101, Y: 51}); got != r {
		t.Fatalf("expected rectangle under corner")
	}
}

func TestLayerFindRemove(t *testing.T) {
	l := NewLayer()
	a, b := NewRectangle(), NewRectangle()
	g := NewLine("guide-line", []float32{0, -10, 0, 10}, vector.Stroke{})
	l.Add(a, g, b, nil)
	if l.Len() != 3 {
		t.Fatalf("Len() = %d", l.Len())
	}
	if els := l.Find(ElementName); len(els) != 2 || els[0] != a || els[1] != b {
		t.Fatalf("Find returned %v", els)
	}
	if n := l.RemoveWhere(func(s *Shape) bool { return s.Name == "guide-line" }); n != 1 {
		t.Fatalf("RemoveWhere removed %d", n)
	}
	if !l.Remove(a) || l.Remove(a) {
		t.Fatalf("Remove must succeed once")
	}
	if l.FindByID(b.ID) != b || l.FindByID(a.ID) != nil {
		t.Fatalf("FindByID mismatch")
	}
	draws := 0
	l.OnDraw(func() { draws++ })
	l.BatchDraw()
	if draws != 1 || l.Draws() != 1 {
		t.Fatalf("draw listener not called")
	}
}

func TestSelectionBoxAndType(t *testing.T) {
	st := NewStage(1000, 800)
	sel := NewSelection()
	if CurrentShapeType(sel) != "" {
		t.Fatalf("empty selection must have no type")
	}
	if _, ok := sel.ClientRect(st); ok {
		t.Fatalf("empty selection has no box")
	}
	a, b := NewRectangle(), NewText()
	b.X, b.Y = 300, 200
	sel.Set(a, b, a)
	if sel.Len() != 2 {
		t.Fatalf("duplicates must be dropped, Len() = %d", sel.Len())
	}
	if CurrentShapeType(sel) != "group" {
		t.Fatalf("two nodes should be a group")
	}
	box, _ := sel.ClientRect(st)
	if box != vector.R(100, 50, 400, 188) {
		t.Fatalf("union box = %+v", box)
	}
	if p := sel.AbsolutePosition(st); p != (vector.Pt{X: 100, Y: 50}) {
		t.Fatalf("anchor = %+v", p)
	}
	sel.Set(b)
	if CurrentShapeType(sel) != "Text" {
		t.Fatalf("single text type = %q", CurrentShapeType(sel))
	}
}

func TestApplyFontChange(t *testing.T) {
	sel := NewSelection()
	cur := DefaultFontAttributes()
	r := NewRectangle()
	sel.Set(r)
	if ApplyFontChange(sel, &cur, FontChange{Attr: AttrBold, On: true}) {
		t.Fatalf("font changes must be ignored for non-text")
	}
	tx := NewText()
	sel.Set(tx)
	ApplyFontChange(sel, &cur, FontChange{Attr: AttrItalic, On: true})
	ApplyFontChange(sel, &cur, FontChange{Attr: AttrBold, On: true})
	if tx.Text.FontStyle != "italic bold" {
		t.Fatalf("FontStyle = %q", tx.Text.FontStyle)
	}
	ApplyFontChange(sel, &cur, FontChange{Attr: AttrItalic, On: false})
	if tx.Text.FontStyle != "bold" {
		t.Fatalf("FontStyle after italic off = %q", tx.Text.FontStyle)
	}
	ApplyFontChange(sel, &cur, FontChange{Attr: AttrUnderline, On: true})
	ApplyFontChange(sel, &cur, FontChange{Attr: AttrAlignRight})
	ApplyFontChange(sel, &cur, FontChange{Attr: AttrFontSize, Size: 40})
	if tx.Text.Decoration != "underline" || tx.Text.Align != "right" || tx.Text.FontSize != 40 {
		t.Fatalf("unexpected text attrs: %+v", *tx.Text)
	}
	back, ok := FontAttributesOf(tx)
	if !ok || back != cur {
		t.Fatalf("FontAttributesOf = %+v, toolbar = %+v", back, cur)
	}
}

func TestClipboardPasteCascades(t *testing.T) {
	l := NewLayer()
	sel := NewSelection()
	r := NewRectangle()
	l.Add(r)
	sel.Set(r)

	var cb Clipboard
	cb.Copy(sel)
	first := cb.Paste(l, sel)
	second := cb.Paste(l, sel)
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected one shape per paste")
	}
	if first[0].ID == r.ID || first[0].X != 150 || second[0].X != 200 || second[0].Y != 150 {
		t.Fatalf("paste offsets wrong: first=(%v,%v) second=(%v,%v)", first[0].X, first[0].Y, second[0].X, second[0].Y)
	}
	if l.Len() != 3 || sel.Len() != 1 || !sel.Contains(second[0]) {
		t.Fatalf("paste must add to layer and select result")
	}

	sel.Clear()
	cb.Copy(sel)
	if cb.Len() != 0 || cb.Paste(l, sel) != nil {
		t.Fatalf("copying an empty selection must clear the clipboard")
	}
}

func TestDuplicateAndDelete(t *testing.T) {
	l := NewLayer()
	sel := NewSelection()
	a, b := NewRectangle(), NewCircle()
	l.Add(a, b)
	sel.Set(a, b)
	dup := Duplicate(l, sel)
	if len(dup) != 2 || l.Len() != 4 {
		t.Fatalf("duplicate failed: %d shapes, layer %d", len(dup), l.Len())
	}
	if n := DeleteSelected(l, sel); n != 2 || !sel.Empty() || l.Len() != 2 {
		t.Fatalf("delete removed %d, layer %d", n, l.Len())
	}
}

func TestNormalizeTextTransform(t *testing.T) {
	tx := NewText()
	tx.ScaleX, tx.ScaleY = 0.1, 0.1
	NormalizeTextTransform(tx, "middle-right")
	if tx.W != MinTextWidth || tx.Text.FontSize != DefaultFontSize || tx.ScaleX != 1 {
		t.Fatalf("middle anchor: W=%v font=%v scale=%v", tx.W, tx.Text.FontSize, tx.ScaleX)
	}
	tx.ScaleX, tx.ScaleY = 2, 2
	NormalizeTextTransform(tx, "bottom-right")
	if tx.W != 100 || tx.Text.FontSize != 56 || tx.ScaleY != 1 {
		t.Fatalf("corner anchor: W=%v font=%v", tx.W, tx.Text.FontSize)
	}
}

func TestScaleSelectionKeepsLayoutAndLabels(t *testing.T) {
	st := NewStage(1000, 800)
	sel := NewSelection()
	a, b := NewRectangle(), NewRectangle()
	b.X = 300
	sel.Set(a, b)
	if got := SizeLabel(st, sel); got != "300 x 100" {
		t.Fatalf("SizeLabel = %q", got)
	}
	ScaleSelection(st, sel, 2, 1, "middle-right")
	if b.X != 500 || b.ScaleX != 2 || a.X != 100 {
		t.Fatalf("unexpected layout after scale: a.X=%v b.X=%v b.ScaleX=%v", a.X, b.X, b.ScaleX)
	}
	if got := SizeLabel(st, sel); got != "600 x 100" {
		t.Fatalf("SizeLabel after scale = %q", got)
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"rect": KindRect, "Circle": KindCircle, "TEXT": KindText, "line": KindLine} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseKind("hexagon"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
