/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"io"

	"github.com/jung-kurt/gofpdf"

	"snapcanvas/internal/scene"
	"snapcanvas/internal/vector"
	"snapcanvas/internal/version"
)

// renderPDF draws one page the size of the stage, one point per stage unit.
func renderPDF(w io.Writer, st *scene.Stage, items []*scene.Shape, opts Options) error {
	pw, ph := float64(st.Width), float64(st.Height)
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pw, Ht: ph},
	})
	pdf.SetCreator("snapcanvas "+version.Version, false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.AddPage()

	setFillColor(pdf, opts.background())
	pdf.Rect(0, 0, pw, ph, "F")

	for _, s := range items {
		switch s.Kind {
		case scene.KindRect:
			r := bounds(s)
			if style := paintStyle(pdf, s); style != "" {
				pdf.Rect(float64(r.X), float64(r.Y), float64(r.W), float64(r.H), style)
			}
		case scene.KindCircle:
			r := bounds(s)
			c := r.Center()
			if style := paintStyle(pdf, s); style != "" {
				pdf.Ellipse(float64(c.X), float64(c.Y), float64(r.W/2), float64(r.H/2), 0, style)
			}
		case scene.KindText:
			pdfText(pdf, s)
		case scene.KindLine:
			applyStroke(pdf, s.Stroke)
			pts := segments(s)
			for i := 1; i < len(pts); i++ {
				pdf.Line(float64(pts[i-1].X), float64(pts[i-1].Y), float64(pts[i].X), float64(pts[i].Y))
			}
			pdf.SetDashPattern(nil, 0)
		}
	}
	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

// paintStyle sets colors for s and returns the gofpdf style string.
func paintStyle(pdf *gofpdf.Fpdf, s *scene.Shape) string {
	style := ""
	if s.Fill.A > 0 {
		setFillColor(pdf, s.Fill)
		style += "F"
	}
	if s.Stroke.Enabled {
		applyStroke(pdf, s.Stroke)
		style += "D"
	}
	return style
}

func applyStroke(pdf *gofpdf.Fpdf, s vector.Stroke) {
	pdf.SetDrawColor(int(s.Color.R), int(s.Color.G), int(s.Color.B))
	pdf.SetLineWidth(float64(s.Width))
	pdf.SetLineCapStyle(capStyle(s.Cap))
	pdf.SetLineJoinStyle(joinStyle(s.Join))
	dash := make([]float64, len(s.Dash))
	for i, d := range s.Dash {
		dash[i] = float64(d)
	}
	pdf.SetDashPattern(dash, 0)
}

func capStyle(c vector.LineCap) string {
	switch c {
	case vector.CapRound:
		return "round"
	case vector.CapSquare:
		return "square"
	}
	return "butt"
}

func joinStyle(j vector.LineJoin) string {
	switch j {
	case vector.JoinRound:
		return "round"
	case vector.JoinBevel:
		return "bevel"
	}
	return "miter"
}

func setFillColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

// pdfText uses the built-in Helvetica so no font has to be embedded.
func pdfText(pdf *gofpdf.Fpdf, s *scene.Shape) {
	t := s.Text
	if t == nil || t.FontSize <= 0 {
		return
	}
	st := styleOf(t)
	fontStyle := ""
	if st.bold {
		fontStyle += "B"
	}
	if st.italic {
		fontStyle += "I"
	}
	if st.underline {
		fontStyle += "U"
	}
	pdf.SetFont("Helvetica", fontStyle, float64(t.FontSize))
	pdf.SetTextColor(int(s.Fill.R), int(s.Fill.G), int(s.Fill.B))
	r := bounds(s)
	step := float64(lineStep(t))
	pad := float64(t.Padding)
	top := float64(r.Y) + pad
	for i, line := range textLines(t) {
		lw := pdf.GetStringWidth(line)
		x := float64(r.X) + pad
		switch t.Align {
		case "center":
			x = float64(r.X+r.W/2) - lw/2
		case "right":
			x = float64(r.X+r.W) - pad - lw
		}
		// Text takes a baseline; approximate the ascent as 0.8 em
		pdf.Text(x, top+float64(i)*step+0.8*float64(t.FontSize), line)
	}
}
