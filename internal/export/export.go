/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a board to PNG, SVG or PDF. Output covers the stage
// in unscaled stage-local units; view zoom and pan are ignored.
package export

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	applog "snapcanvas/internal/log"
	"snapcanvas/internal/scene"
	"snapcanvas/internal/snap"
	"snapcanvas/internal/vector"
)

type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
)

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))); f {
	case FormatPNG, FormatSVG, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// Options controls rendering.
type Options struct {
	// IncludeGuides also draws the alignment guides currently on the layer.
	IncludeGuides bool
	// Scale multiplies the PNG pixel size; 0 means 1. Vector formats ignore it.
	Scale float32
	// Background defaults to white when fully transparent.
	Background vector.Color
}

func (o Options) scale() float32 {
	if o.Scale <= 0 {
		return 1
	}
	return o.Scale
}

func (o Options) background() vector.Color {
	if o.Background.A == 0 {
		return vector.White
	}
	return o.Background
}

// Render writes the stage and layer in format f to w.
func Render(w io.Writer, f Format, st *scene.Stage, l *scene.Layer, opts Options) error {
	if st == nil || l == nil {
		return errors.New("export: stage and layer are required")
	}
	if st.Width <= 0 || st.Height <= 0 {
		return fmt.Errorf("export: invalid stage size %vx%v", st.Width, st.Height)
	}
	items := paintList(l, opts.IncludeGuides)
	switch f {
	case FormatPNG:
		return renderPNG(w, st, items, opts)
	case FormatSVG:
		return renderSVG(w, st, items, opts)
	case FormatPDF:
		return renderPDF(w, st, items, opts)
	}
	return fmt.Errorf("unsupported export format %q", f)
}

// WriteFile renders into path, creating parent directories.
func WriteFile(path string, f Format, st *scene.Stage, l *scene.Layer, opts Options) (err error) {
	log := applog.WithOperation(applog.WithComponent("export"), string(f))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", f, err)
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	if err := Render(out, f, st, l, opts); err != nil {
		log.Error("export failed", slog.String("path", path), slog.Any("err", err))
		return err
	}
	log.Info("exported", slog.String("path", path), slog.Int("shapes", l.Len()))
	return nil
}

// paintList returns the shapes to draw, bottom to top.
func paintList(l *scene.Layer, guides bool) []*scene.Shape {
	var out []*scene.Shape
	for _, s := range l.Children() {
		switch {
		case s.Name == scene.ElementName:
			out = append(out, s)
		case guides && s.Name == snap.GuideLineName:
			out = append(out, s)
		}
	}
	return out
}

// bounds is the shape's box in stage-local units.
func bounds(s *scene.Shape) vector.Rect { return s.Transform().ApplyRect(s.SelfRect()) }

// segments returns the line's polyline points in stage-local units.
func segments(s *scene.Shape) []vector.Pt {
	m := s.Transform()
	pts := make([]vector.Pt, 0, len(s.Points)/2)
	for i := 0; i+1 < len(s.Points); i += 2 {
		pts = append(pts, m.Apply(vector.Pt{X: s.Points[i], Y: s.Points[i+1]}))
	}
	return pts
}

type textStyle struct {
	bold, italic, underline bool
}

func styleOf(t *scene.TextAttrs) textStyle {
	fs := strings.ToLower(t.FontStyle)
	return textStyle{
		bold:      strings.Contains(fs, "bold"),
		italic:    strings.Contains(fs, "italic"),
		underline: t.Decoration == "underline",
	}
}

func textLines(t *scene.TextAttrs) []string { return strings.Split(t.Content, "\n") }

// lineStep is the baseline distance in stage units.
func lineStep(t *scene.TextAttrs) float32 {
	lh := t.LineHeight
	if lh <= 0 {
		lh = 1
	}
	return t.FontSize * lh
}
