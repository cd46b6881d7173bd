/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"snapcanvas/internal/scene"
	"snapcanvas/internal/vector"
)

func renderPNG(w io.Writer, st *scene.Stage, items []*scene.Shape, opts Options) error {
	k := opts.scale()
	pw := int(math.Ceil(float64(st.Width * k)))
	ph := int(math.Ceil(float64(st.Height * k)))
	img := image.NewRGBA(image.Rect(0, 0, pw, ph))
	draw.Draw(img, img.Bounds(), image.NewUniform(toRGBA(opts.background())), image.Point{}, draw.Src)

	for _, s := range items {
		switch s.Kind {
		case scene.KindRect:
			r := scaled(bounds(s), k)
			if s.Fill.A > 0 {
				fillRect(img, r, toRGBA(s.Fill))
			}
			if s.Stroke.Enabled {
				strokeRect(img, r, toRGBA(s.Stroke.Color))
			}
		case scene.KindCircle:
			r := scaled(bounds(s), k)
			if s.Fill.A > 0 {
				fillEllipse(img, r, toRGBA(s.Fill))
			}
		case scene.KindText:
			drawText(img, s, k)
		case scene.KindLine:
			pts := segments(s)
			for i := 1; i < len(pts); i++ {
				drawLine(img, pts[i-1].X*k, pts[i-1].Y*k, pts[i].X*k, pts[i].Y*k, s.Stroke.Dash, toRGBA(s.Stroke.Color))
			}
		}
	}
	return png.Encode(w, img)
}

func toRGBA(c vector.Color) color.RGBA { return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

func scaled(r vector.Rect, k float32) vector.Rect { return vector.R(r.X*k, r.Y*k, r.W*k, r.H*k) }

// pixelSpan converts [a, a+n) to the integer pixel range whose centers fall inside.
func pixelSpan(a, n float32) (int, int) {
	return int(math.Round(float64(a))), int(math.Round(float64(a+n))) - 1
}

func fillRect(img *image.RGBA, r vector.Rect, c color.RGBA) {
	x0, x1 := pixelSpan(r.X, r.W)
	y0, y1 := pixelSpan(r.Y, r.H)
	draw.Draw(img, image.Rect(x0, y0, x1+1, y1+1), image.NewUniform(c), image.Point{}, draw.Over)
}

func strokeRect(img *image.RGBA, r vector.Rect, c color.RGBA) {
	x0, x1 := pixelSpan(r.X, r.W)
	y0, y1 := pixelSpan(r.Y, r.H)
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, c)
		img.SetRGBA(x, y1, c)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, c)
		img.SetRGBA(x1, y, c)
	}
}

func fillEllipse(img *image.RGBA, r vector.Rect, c color.RGBA) {
	rx, ry := float64(r.W)/2, float64(r.H)/2
	if rx <= 0 || ry <= 0 {
		return
	}
	cx, cy := float64(r.X)+rx, float64(r.Y)+ry
	x0, x1 := pixelSpan(r.X, r.W)
	y0, y1 := pixelSpan(r.Y, r.H)
	for y := y0; y <= y1; y++ {
		dy := (float64(y) + 0.5 - cy) / ry
		for x := x0; x <= x1; x++ {
			dx := (float64(x) + 0.5 - cx) / rx
			if dx*dx+dy*dy <= 1 {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

// drawLine walks the segment one pixel at a time, honoring the dash pattern.
// Pixels outside the image are clipped by SetRGBA.
func drawLine(img *image.RGBA, x0, y0, x1, y1 float32, dash []float32, c color.RGBA) {
	dx, dy := float64(x1-x0), float64(y1-y0)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	ux, uy := dx/length, dy/length
	b := img.Bounds()
	for t := 0.0; t <= length; t++ {
		x := float64(x0) + ux*t
		y := float64(y0) + uy*t
		px, py := int(math.Floor(x)), int(math.Floor(y))
		if !image.Pt(px, py).In(b) || !dashOn(dash, float32(t)) {
			continue
		}
		img.SetRGBA(px, py, c)
	}
}

func dashOn(dash []float32, at float32) bool {
	var period float32
	for _, d := range dash {
		period += d
	}
	if period <= 0 {
		return true
	}
	pos := float32(math.Mod(float64(at), float64(period)))
	for i, d := range dash {
		if pos < d {
			return i%2 == 0
		}
		pos -= d
	}
	return true
}

// drawText renders with the fixed 7x13 face; font size only drives line spacing.
func drawText(img *image.RGBA, s *scene.Shape, k float32) {
	t := s.Text
	if t == nil {
		return
	}
	box := scaled(bounds(s), k)
	face := basicfont.Face7x13
	ascent := face.Metrics().Ascent.Round()
	col := image.NewUniform(toRGBA(s.Fill))
	step := lineStep(t) * k
	pad := t.Padding * k
	under := styleOf(t).underline
	for i, line := range textLines(t) {
		width := font.MeasureString(face, line).Round()
		x := int(box.X + pad)
		switch t.Align {
		case "center":
			x = int(box.X+box.W/2) - width/2
		case "right":
			x = int(box.X+box.W-pad) - width
		}
		baseline := int(box.Y+pad+float32(i)*step) + ascent
		d := &font.Drawer{Dst: img, Src: col, Face: face, Dot: fixed.P(x, baseline)}
		d.DrawString(line)
		if under {
			for ux := x; ux < x+width; ux++ {
				img.Set(ux, baseline+2, col.C)
			}
		}
	}
}
