/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"fmt"
	"time"

	"snapcanvas/internal/scene"
	"snapcanvas/internal/vector"
)

// DocumentVersion is the board file format written by this build.
const DocumentVersion = 1

// StageDoc is the persisted stage geometry. Zoom and pan are view state and
// are not stored.
type StageDoc struct {
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

type StrokeDoc struct {
	Color string    `json:"color"`
	Width float32   `json:"width"`
	Dash  []float32 `json:"dash,omitempty"`
}

type TextDoc struct {
	Content    string  `json:"content"`
	FontSize   float32 `json:"fontSize"`
	FontFamily string  `json:"fontFamily,omitempty"`
	FontStyle  string  `json:"fontStyle,omitempty"`
	Decoration string  `json:"textDecoration,omitempty"`
	Align      string  `json:"align,omitempty"`
	Padding    float32 `json:"padding,omitempty"`
	LineHeight float32 `json:"lineHeight,omitempty"`
}

// ShapeDoc is one persisted shape. Guide lines are never persisted.
type ShapeDoc struct {
	ID        string     `json:"id"`
	Kind      string     `json:"kind"`
	X         float32    `json:"x"`
	Y         float32    `json:"y"`
	Width     float32    `json:"width"`
	Height    float32    `json:"height,omitempty"`
	OffsetX   float32    `json:"offsetX,omitempty"`
	OffsetY   float32    `json:"offsetY,omitempty"`
	ScaleX    float32    `json:"scaleX,omitempty"`
	ScaleY    float32    `json:"scaleY,omitempty"`
	Fill      string     `json:"fill,omitempty"`
	Stroke    *StrokeDoc `json:"stroke,omitempty"`
	Draggable bool       `json:"draggable"`
	Text      *TextDoc   `json:"text,omitempty"`
}

// Document is the canonical board file (board.json).
type Document struct {
	Version int        `json:"version"`
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Stage   StageDoc   `json:"stage"`
	Shapes  []ShapeDoc `json:"shapes"`
	Created time.Time  `json:"created"`
	Updated time.Time  `json:"updated"`
}

// NewDocument returns an empty board with a fresh ID.
func NewDocument(name string, width, height float32) Document {
	now := time.Now().UTC()
	return Document{
		Version: DocumentVersion,
		ID:      scene.NewID(),
		Name:    name,
		Stage:   StageDoc{Width: width, Height: height},
		Shapes:  []ShapeDoc{},
		Created: now,
		Updated: now,
	}
}

// Capture replaces the document's stage and shapes with the scene contents.
// Only named elements are kept, so guides and other helper primitives drop out.
func (d *Document) Capture(st *scene.Stage, l *scene.Layer) {
	d.Stage = StageDoc{Width: st.Width, Height: st.Height}
	d.Shapes = d.Shapes[:0]
	for _, s := range l.Find(scene.ElementName) {
		d.Shapes = append(d.Shapes, shapeDoc(s))
	}
	if d.Shapes == nil {
		d.Shapes = []ShapeDoc{}
	}
	d.Updated = time.Now().UTC()
}

// Scene builds a stage and a layer from the document.
func (d Document) Scene() (*scene.Stage, *scene.Layer, error) {
	if d.Stage.Width <= 0 || d.Stage.Height <= 0 {
		return nil, nil, fmt.Errorf("invalid stage size %vx%v", d.Stage.Width, d.Stage.Height)
	}
	st := scene.NewStage(d.Stage.Width, d.Stage.Height)
	l := scene.NewLayer()
	var errs []error
	for i, sd := range d.Shapes {
		s, err := sd.shape()
		if err != nil {
			errs = append(errs, fmt.Errorf("shape %d: %w", i, err))
			continue
		}
		l.Add(s)
	}
	return st, l, errors.Join(errs...)
}

func shapeDoc(s *scene.Shape) ShapeDoc {
	sd := ShapeDoc{
		ID:        s.ID,
		Kind:      kindName(s.Kind),
		X:         s.X,
		Y:         s.Y,
		Width:     s.W,
		Height:    s.H,
		OffsetX:   s.OffsetX,
		OffsetY:   s.OffsetY,
		ScaleX:    s.ScaleX,
		ScaleY:    s.ScaleY,
		Draggable: s.Draggable,
	}
	if s.Fill.A > 0 {
		sd.Fill = s.Fill.Hex()
	}
	if s.Stroke.Enabled {
		sd.Stroke = &StrokeDoc{Color: s.Stroke.Color.Hex(), Width: s.Stroke.Width, Dash: s.Stroke.Dash}
	}
	if t := s.Text; t != nil {
		sd.Text = &TextDoc{
			Content:    t.Content,
			FontSize:   t.FontSize,
			FontFamily: t.FontFamily,
			FontStyle:  t.FontStyle,
			Decoration: t.Decoration,
			Align:      t.Align,
			Padding:    t.Padding,
			LineHeight: t.LineHeight,
		}
	}
	return sd
}

func (sd ShapeDoc) shape() (*scene.Shape, error) {
	kind, err := scene.ParseKind(sd.Kind)
	if err != nil {
		return nil, err
	}
	if kind == scene.KindLine {
		return nil, errors.New("line shapes are not board elements")
	}
	s := &scene.Shape{
		ID:        sd.ID,
		Kind:      kind,
		Name:      scene.ElementName,
		X:         sd.X,
		Y:         sd.Y,
		W:         sd.Width,
		H:         sd.Height,
		OffsetX:   sd.OffsetX,
		OffsetY:   sd.OffsetY,
		ScaleX:    sd.ScaleX,
		ScaleY:    sd.ScaleY,
		Draggable: sd.Draggable,
	}
	if s.ID == "" {
		s.ID = scene.NewID()
	}
	if sd.Fill != "" {
		if s.Fill, err = vector.ParseHex(sd.Fill); err != nil {
			return nil, err
		}
	}
	if sd.Stroke != nil {
		c, err := vector.ParseHex(sd.Stroke.Color)
		if err != nil {
			return nil, err
		}
		s.Stroke = vector.Stroke{Color: c, Width: sd.Stroke.Width, Dash: sd.Stroke.Dash, Enabled: true}
	}
	if kind == scene.KindText {
		if sd.Text == nil {
			return nil, errors.New("text shape without text attributes")
		}
		t := *sd.Text
		s.Text = &scene.TextAttrs{
			Content:    t.Content,
			FontSize:   t.FontSize,
			FontFamily: t.FontFamily,
			FontStyle:  t.FontStyle,
			Decoration: t.Decoration,
			Align:      t.Align,
			Padding:    t.Padding,
			LineHeight: t.LineHeight,
		}
	}
	return s, nil
}

func kindName(k scene.Kind) string {
	switch k {
	case scene.KindCircle:
		return "circle"
	case scene.KindText:
		return "text"
	case scene.KindLine:
		return "line"
	}
	return "rect"
}
