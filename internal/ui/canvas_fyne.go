//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image/color"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"snapcanvas/internal/editor"
	"snapcanvas/internal/scene"
	"snapcanvas/internal/vector"
)

var (
	backdropColor  = color.NRGBA{R: 30, G: 30, B: 34, A: 255}
	selectionColor = color.NRGBA{R: 0, G: 170, B: 255, A: 255}
)

// BoardCanvas draws the editor's layer and forwards pointer input to it.
// Widget coordinates are the stage's absolute coordinates; zoom and pan live
// in the stage transform.
type BoardCanvas struct {
	widget.BaseWidget

	ed       *editor.Editor
	// OnChange runs after every edit or view change.
	OnChange func()

	moving  bool
	panning bool
}

func NewBoardCanvas(ed *editor.Editor) *BoardCanvas {
	c := &BoardCanvas{ed: ed}
	c.ExtendBaseWidget(c)
	return c
}

func (c *BoardCanvas) changed() {
	c.Refresh()
	if c.OnChange != nil {
		c.OnChange()
	}
}

func toPt(p fyne.Position) vector.Pt { return vector.Pt{X: p.X, Y: p.Y} }

func (c *BoardCanvas) Tapped(e *fyne.PointEvent) {
	c.ed.SelectAt(toPt(e.Position))
	c.changed()
}

// Dragged moves the selection when the drag started on an element and pans
// the view otherwise.
func (c *BoardCanvas) Dragged(e *fyne.DragEvent) {
	if !c.moving && !c.panning {
		start := toPt(e.Position).Sub(vector.Pt{X: e.Dragged.DX, Y: e.Dragged.DY})
		hit := c.ed.Layer().TopmostAt(c.ed.Stage(), start)
		switch {
		case hit != nil && hit.Name == scene.ElementName:
			if !c.ed.Selection().Contains(hit) {
				c.ed.SelectAt(start)
			}
			c.moving = true
		default:
			c.panning = true
		}
	}
	if c.moving {
		c.ed.DragSelection(e.Dragged.DX, e.Dragged.DY)
	} else {
		st := c.ed.Stage()
		c.ed.SetView(st.Scale, st.X+e.Dragged.DX, st.Y+e.Dragged.DY)
	}
	c.changed()
}

func (c *BoardCanvas) DragEnd() {
	if c.moving {
		c.ed.EndDrag()
	}
	c.moving, c.panning = false, false
	c.changed()
}

// Scrolled zooms about the pointer.
func (c *BoardCanvas) Scrolled(e *fyne.ScrollEvent) {
	st := c.ed.Stage()
	old := st.ScaleFactor()
	next := clampZoom(old * (1 + e.Scrolled.DY*0.002))
	off := zoomAbout(toPt(e.Position), vector.Pt{X: st.X, Y: st.Y}, old, next)
	c.ed.SetView(next, off.X, off.Y)
	c.changed()
}

// ResetView returns to 100% with the stage at the origin.
func (c *BoardCanvas) ResetView() {
	c.ed.SetView(1, 0, 0)
	c.changed()
}

func (c *BoardCanvas) MinSize() fyne.Size { return fyne.NewSize(400, 300) }

func (c *BoardCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := &boardRenderer{c: c, bg: canvas.NewRectangle(backdropColor), page: canvas.NewRectangle(color.White)}
	r.rebuild(c.Size())
	return r
}

// boardRenderer rebuilds its objects from the layer on every refresh.
type boardRenderer struct {
	c       *BoardCanvas
	bg      *canvas.Rectangle
	page    *canvas.Rectangle
	objects []fyne.CanvasObject
}

func (r *boardRenderer) Destroy()                     {}
func (r *boardRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *boardRenderer) MinSize() fyne.Size           { return r.c.MinSize() }
func (r *boardRenderer) Layout(size fyne.Size)        { r.rebuild(size) }

func (r *boardRenderer) Refresh() {
	r.rebuild(r.c.Size())
	canvas.Refresh(r.c)
}

func (r *boardRenderer) rebuild(size fyne.Size) {
	st := r.c.ed.Stage()
	view := vector.R(0, 0, size.Width, size.Height)

	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
	page := st.Transform().ApplyRect(vector.R(0, 0, st.Width, st.Height))
	r.page.Resize(fyne.NewSize(page.W, page.H))
	r.page.Move(fyne.NewPos(page.X, page.Y))

	objs := []fyne.CanvasObject{r.bg, r.page}
	for _, s := range r.c.ed.Layer().Children() {
		objs = append(objs, shapeObjects(st, s, view)...)
	}
	if box, ok := r.c.ed.Selection().ClientRect(st); ok {
		sel := canvas.NewRectangle(color.Transparent)
		sel.StrokeColor = selectionColor
		sel.StrokeWidth = 1
		sel.Resize(fyne.NewSize(box.W, box.H))
		sel.Move(fyne.NewPos(box.X, box.Y))
		objs = append(objs, sel)
	}
	r.objects = objs
}

func nrgba(c vector.Color) color.NRGBA { return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

func shapeObjects(st *scene.Stage, s *scene.Shape, view vector.Rect) []fyne.CanvasObject {
	box := s.ClientRect(st)
	switch s.Kind {
	case scene.KindRect:
		o := canvas.NewRectangle(nrgba(s.Fill))
		applyStroke(&o.StrokeColor, &o.StrokeWidth, s.Stroke, st.ScaleFactor())
		o.Resize(fyne.NewSize(box.W, box.H))
		o.Move(fyne.NewPos(box.X, box.Y))
		return []fyne.CanvasObject{o}
	case scene.KindCircle:
		o := canvas.NewCircle(nrgba(s.Fill))
		applyStroke(&o.StrokeColor, &o.StrokeWidth, s.Stroke, st.ScaleFactor())
		o.Position1 = fyne.NewPos(box.X, box.Y)
		o.Position2 = fyne.NewPos(box.X+box.W, box.Y+box.H)
		return []fyne.CanvasObject{o}
	case scene.KindText:
		return textObjects(st, s, box)
	case scene.KindLine:
		return lineObjects(st, s, view)
	}
	return nil
}

func applyStroke(c *color.Color, w *float32, s vector.Stroke, scale float32) {
	if !s.Enabled || s.Width <= 0 {
		return
	}
	*c = nrgba(s.Color)
	*w = s.Width * scale
}

func textObjects(st *scene.Stage, s *scene.Shape, box vector.Rect) []fyne.CanvasObject {
	t := s.Text
	if t == nil {
		return nil
	}
	k := st.ScaleFactor()
	size := t.FontSize * k
	lh := t.LineHeight
	if lh <= 0 {
		lh = 1
	}
	style := fyne.TextStyle{
		Bold:   strings.Contains(t.FontStyle, "bold"),
		Italic: strings.Contains(t.FontStyle, "italic"),
	}
	pad := t.Padding * k
	inner := box.W - 2*pad
	var out []fyne.CanvasObject
	for i, line := range strings.Split(t.Content, "\n") {
		o := canvas.NewText(line, nrgba(s.Fill))
		o.TextSize = size
		o.TextStyle = style
		w := fyne.MeasureText(line, size, style).Width
		x := box.X + pad
		switch t.Align {
		case "center":
			x += (inner - w) / 2
		case "right":
			x += inner - w
		}
		y := box.Y + pad + float32(i)*size*lh
		o.Move(fyne.NewPos(x, y))
		out = append(out, o)
		if t.Decoration == "underline" {
			u := canvas.NewLine(nrgba(s.Fill))
			u.StrokeWidth = max(1, size/14)
			u.Position1 = fyne.NewPos(x, y+size)
			u.Position2 = fyne.NewPos(x+w, y+size)
			out = append(out, u)
		}
	}
	return out
}

// lineObjects draws a polyline, splitting dashed strokes into segments that
// fall inside the view.
func lineObjects(st *scene.Stage, s *scene.Shape, view vector.Rect) []fyne.CanvasObject {
	if !s.Stroke.Enabled {
		return nil
	}
	m := s.AbsoluteTransform(st)
	var out []fyne.CanvasObject
	for i := 0; i+3 < len(s.Points); i += 2 {
		a := m.Apply(vector.Pt{X: s.Points[i], Y: s.Points[i+1]})
		b := m.Apply(vector.Pt{X: s.Points[i+2], Y: s.Points[i+3]})
		for _, seg := range dashSegments(a, b, s.Stroke.Dash, view) {
			l := canvas.NewLine(nrgba(s.Stroke.Color))
			l.StrokeWidth = max(1, s.Stroke.Width)
			l.Position1 = fyne.NewPos(seg[0].X, seg[0].Y)
			l.Position2 = fyne.NewPos(seg[1].X, seg[1].Y)
			out = append(out, l)
		}
	}
	return out
}
