/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"strings"

	"snapcanvas/internal/scene"
	"snapcanvas/internal/vector"
)

func renderSVG(w io.Writer, st *scene.Stage, items []*scene.Shape, opts Options) error {
	bw := bufio.NewWriter(w)
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(bw, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%g\" height=\"%g\" viewBox=\"0 0 %g %g\">\n",
		st.Width, st.Height, st.Width, st.Height)
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"%s\"/>\n", st.Width, st.Height, opts.background().Hex())

	for _, s := range items {
		switch s.Kind {
		case scene.KindRect:
			r := bounds(s)
			wf("  <rect id=\"%s\" x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"%s\"%s/>\n",
				s.ID, r.X, r.Y, r.W, r.H, svgFill(s.Fill), svgStroke(s.Stroke))
		case scene.KindCircle:
			r := bounds(s)
			c := r.Center()
			wf("  <ellipse id=\"%s\" cx=\"%g\" cy=\"%g\" rx=\"%g\" ry=\"%g\" fill=\"%s\"%s/>\n",
				s.ID, c.X, c.Y, r.W/2, r.H/2, svgFill(s.Fill), svgStroke(s.Stroke))
		case scene.KindText:
			if s.Text != nil {
				wf("%s", svgText(s))
			}
		case scene.KindLine:
			pts := segments(s)
			for i := 1; i < len(pts); i++ {
				wf("  <line class=\"%s\" x1=\"%g\" y1=\"%g\" x2=\"%g\" y2=\"%g\" fill=\"none\"%s/>\n",
					s.Name, pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y, svgStroke(s.Stroke))
			}
		}
	}
	wf("</svg>\n")
	if werr != nil {
		return werr
	}
	return bw.Flush()
}

func svgFill(c vector.Color) string {
	if c.A == 0 {
		return "none"
	}
	return c.Hex()
}

func svgStroke(s vector.Stroke) string {
	if !s.Enabled {
		return ""
	}
	out := fmt.Sprintf(" stroke=\"%s\" stroke-width=\"%g\"", s.Color.Hex(), s.Width)
	if len(s.Dash) > 0 {
		parts := make([]string, len(s.Dash))
		for i, d := range s.Dash {
			parts[i] = fmt.Sprintf("%g", d)
		}
		out += fmt.Sprintf(" stroke-dasharray=\"%s\"", strings.Join(parts, " "))
	}
	return out
}

func svgText(s *scene.Shape) string {
	t := s.Text
	r := bounds(s)
	style := styleOf(t)
	x, anchor := r.X+t.Padding, "start"
	switch t.Align {
	case "center":
		x, anchor = r.X+r.W/2, "middle"
	case "right":
		x, anchor = r.X+r.W-t.Padding, "end"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "  <text id=\"%s\" x=\"%g\" y=\"%g\" font-family=\"%s\" font-size=\"%g\" fill=\"%s\" text-anchor=\"%s\" dominant-baseline=\"hanging\"",
		s.ID, x, r.Y+t.Padding, html.EscapeString(t.FontFamily), t.FontSize, svgFill(s.Fill), anchor)
	if style.bold {
		b.WriteString(" font-weight=\"bold\"")
	}
	if style.italic {
		b.WriteString(" font-style=\"italic\"")
	}
	if style.underline {
		b.WriteString(" text-decoration=\"underline\"")
	}
	b.WriteString(">")
	for i, line := range textLines(t) {
		dy := float32(0)
		if i > 0 {
			dy = lineStep(t)
		}
		fmt.Fprintf(&b, "<tspan x=\"%g\" dy=\"%g\">%s</tspan>", x, dy, html.EscapeString(line))
	}
	b.WriteString("</text>\n")
	return b.String()
}
