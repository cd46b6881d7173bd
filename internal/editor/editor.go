/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor is the board editing facade used by the CLI and the desktop
// host. It owns the scene, selection, clipboard, toolbar font state, snapping
// engine and undo history of one board.
package editor

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"snapcanvas/internal/config"
	applog "snapcanvas/internal/log"
	"snapcanvas/internal/scene"
	"snapcanvas/internal/snap"
	"snapcanvas/internal/storage"
	"snapcanvas/internal/undo"
	"snapcanvas/internal/vector"
)

// ErrUnknownShape is returned when an ID does not name a shape on the board.
var ErrUnknownShape = errors.New("unknown shape")

type Options struct {
	Snap   snap.Options
	Undo   undo.Config
	Logger *slog.Logger
}

// OptionsFromConfig maps the snap and undo sections of the app config.
func OptionsFromConfig(cfg config.AppConfig) Options {
	return Options{
		Snap: snap.Options{Tolerance: cfg.Snap.Tolerance, Disabled: !cfg.Snap.Enabled},
		Undo: undo.Config{
			MaxBytes:    cfg.Undo.MaxBytes,
			MaxPerBoard: cfg.Undo.MaxPerBoard,
			MinInterval: time.Duration(cfg.Undo.MinIntervalMs) * time.Millisecond,
		},
	}
}

// Editor is safe for use from several goroutines; every operation holds one lock.
type Editor struct {
	mu     sync.Mutex
	doc    storage.Document
	stage  *scene.Stage
	layer  *scene.Layer
	sel    *scene.Selection
	clip   scene.Clipboard
	font   scene.FontAttributes
	engine *snap.Engine
	undo   *undo.Manager
	log    *slog.Logger
	now    func() time.Time

	dragging  bool
	dragStart []byte
	// dragOrigin holds each dragged node's absolute position at drag start;
	// dragTotal is the pointer travel since then.
	dragOrigin map[*scene.Shape]vector.Pt
	dragTotal  vector.Pt
}

// New opens doc for editing.
func New(doc storage.Document, opts Options) (*Editor, error) {
	st, l, err := doc.Scene()
	if err != nil {
		return nil, fmt.Errorf("load board: %w", err)
	}
	lg := opts.Logger
	if lg == nil {
		lg = applog.WithComponent("editor")
	}
	if opts.Snap.Logger == nil {
		opts.Snap.Logger = applog.WithComponent("snap")
	}
	return &Editor{
		doc:    doc,
		stage:  st,
		layer:  l,
		sel:    scene.NewSelection(),
		font:   scene.DefaultFontAttributes(),
		engine: snap.New(opts.Snap),
		undo:   undo.NewManager(opts.Undo),
		log:    lg.With(slog.String("board", doc.ID)),
		now:    time.Now,
	}, nil
}

// Stage, Layer and Selection expose the live scene to a rendering host.
// Callers must not mutate them concurrently with editor operations.
func (e *Editor) Stage() *scene.Stage         { return e.stage }
func (e *Editor) Layer() *scene.Layer         { return e.layer }
func (e *Editor) Selection() *scene.Selection { return e.sel }

func (e *Editor) BoardID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.ID
}

func (e *Editor) snapScene() snap.Scene {
	return snap.Scene{Stage: e.stage, Layer: e.layer, Selection: e.sel}
}

// SetView changes zoom and pan. Snapping keeps working in stage-local units.
func (e *Editor) SetView(scale, x, y float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if scale <= 0 {
		scale = 1
	}
	e.stage.Scale, e.stage.X, e.stage.Y = scale, x, y
	e.layer.BatchDraw()
}

func (e *Editor) AddRectangle() *scene.Shape { return e.add(scene.NewRectangle()) }
func (e *Editor) AddCircle() *scene.Shape    { return e.add(scene.NewCircle()) }
func (e *Editor) AddText() *scene.Shape      { return e.add(scene.NewText()) }

func (e *Editor) add(s *scene.Shape) *scene.Shape {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recordLocked()
	e.layer.Add(s)
	e.layer.BatchDraw()
	e.log.Debug("shape added", slog.String("id", s.ID), slog.String("kind", s.Kind.String()))
	return s
}

// Select replaces the selection with the given shapes. Unknown IDs leave the
// selection untouched.
func (e *Editor) Select(ids ...string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	nodes := make([]*scene.Shape, 0, len(ids))
	for _, id := range ids {
		s := e.layer.FindByID(id)
		if s == nil || s.Name != scene.ElementName {
			return fmt.Errorf("%w: %s", ErrUnknownShape, id)
		}
		nodes = append(nodes, s)
	}
	e.setSelectionLocked(nodes...)
	return nil
}

// SelectAt selects the topmost shape under the absolute point p, or clears
// the selection when p hits the empty stage. It returns the hit shape.
func (e *Editor) SelectAt(p vector.Pt) *scene.Shape {
	e.mu.Lock()
	defer e.mu.Unlock()
	hit := e.layer.TopmostAt(e.stage, p)
	if hit == nil || hit.Name != scene.ElementName {
		e.setSelectionLocked()
		return nil
	}
	e.setSelectionLocked(hit)
	return hit
}

func (e *Editor) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setSelectionLocked()
}

func (e *Editor) setSelectionLocked(nodes ...*scene.Shape) {
	e.sel.Set(nodes...)
	if len(nodes) == 1 {
		if fa, ok := scene.FontAttributesOf(nodes[0]); ok {
			e.font = fa
		}
	}
	e.layer.BatchDraw()
}

// CurrentShapeType reports "", a kind name, or "group".
func (e *Editor) CurrentShapeType() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return scene.CurrentShapeType(e.sel)
}

// DragSelection runs one snapping tick for a pointer step of (dx, dy)
// absolute pixels. Nodes are placed at their drag-start position plus the
// total pointer travel before snapping, so a snapped node follows the pointer
// off a guide once the travel leaves the tolerance. The first call of a drag
// remembers the state for undo.
func (e *Editor) DragSelection(dx, dy float32) snap.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sel.Empty() {
		return snap.Result{}
	}
	if !e.dragging {
		e.dragging = true
		e.dragStart = e.encodeLocked()
		e.dragTotal = vector.Pt{}
		e.dragOrigin = make(map[*scene.Shape]vector.Pt, e.sel.Len())
		for _, n := range e.sel.Nodes() {
			if n.Draggable {
				e.dragOrigin[n] = n.AbsolutePosition(e.stage)
			}
		}
	}
	e.dragTotal = e.dragTotal.Add(vector.Pt{X: dx, Y: dy})
	for n, p := range e.dragOrigin {
		n.SetAbsolutePosition(e.stage, p.Add(e.dragTotal))
	}
	return e.engine.DragMove(e.snapScene())
}

// EndDrag removes the guides and closes the drag as one undo step.
func (e *Editor) EndDrag() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := e.engine.DragEnd(e.snapScene())
	if e.dragging {
		e.dragging = false
		if before := e.dragStart; before != nil && !bytes.Equal(before, e.encodeLocked()) {
			e.pushLocked(before)
		}
		e.dragStart = nil
		e.dragOrigin, e.dragTotal = nil, vector.Pt{}
	}
	return n
}

// Guides returns the guide lines currently drawn.
func (e *Editor) Guides() []*scene.Shape {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.layer.Find(snap.GuideLineName)
}

func (e *Editor) Copy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clip.Copy(e.sel)
}

func (e *Editor) Paste() []*scene.Shape {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.clip.Len() == 0 {
		return nil
	}
	e.recordLocked()
	return e.clip.Paste(e.layer, e.sel)
}

func (e *Editor) Duplicate() []*scene.Shape {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sel.Empty() {
		return nil
	}
	e.recordLocked()
	return scene.Duplicate(e.layer, e.sel)
}

func (e *Editor) Delete() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sel.Empty() {
		return 0
	}
	e.recordLocked()
	n := scene.DeleteSelected(e.layer, e.sel)
	e.layer.BatchDraw()
	return n
}

// FontAttributes is the toolbar state.
func (e *Editor) FontAttributes() scene.FontAttributes {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.font
}

// SetFontAttribute applies a toolbar action to the single selected text.
func (e *Editor) SetFontAttribute(ch scene.FontChange) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	before := e.encodeLocked()
	if !scene.ApplyFontChange(e.sel, &e.font, ch) {
		return false
	}
	e.pushLocked(before)
	e.layer.BatchDraw()
	return true
}

// TransformSelection scales the selection about its box origin; anchor is the
// transformer handle name (e.g. "middle-right", "bottom-right").
func (e *Editor) TransformSelection(sx, sy float32, anchor string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sel.Empty() {
		return
	}
	e.recordLocked()
	scene.ScaleSelection(e.stage, e.sel, sx, sy, anchor)
	// a corner transform bakes into the font size; round it on the text and
	// the toolbar alike
	if e.sel.Len() == 1 {
		if fa, ok := scene.FontAttributesOf(e.sel.Nodes()[0]); ok {
			e.font = fa
			scene.ApplyFontChange(e.sel, &e.font, scene.FontChange{Attr: scene.AttrFontSize, Size: vector.Round(fa.FontSize)})
		}
	}
	e.layer.BatchDraw()
}

func (e *Editor) SizeLabel() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return scene.SizeLabel(e.stage, e.sel)
}

func (e *Editor) CanUndo() bool { return e.undo.CanUndo(e.BoardID()) }
func (e *Editor) CanRedo() bool { return e.undo.CanRedo(e.BoardID()) }

// Undo restores the state before the last change.
func (e *Editor) Undo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.undo.Undo(e.doc.ID, e.encodeLocked())
	if !ok {
		return false
	}
	return e.restoreLocked(s.Blob)
}

func (e *Editor) Redo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.undo.Redo(e.doc.ID, e.encodeLocked())
	if !ok {
		return false
	}
	return e.restoreLocked(s.Blob)
}

// Document captures the board as a persistable document. Guides are left out.
func (e *Editor) Document() storage.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.documentLocked()
}

func (e *Editor) documentLocked() storage.Document {
	d := e.doc
	d.Shapes = nil
	d.Capture(e.stage, e.layer)
	return d
}

// LoadDocument replaces the board. Undo history of the previous board is dropped.
func (e *Editor) LoadDocument(doc storage.Document) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, l, err := doc.Scene()
	if err != nil {
		return err
	}
	e.undo.Clear(e.doc.ID)
	e.doc = doc
	e.log = e.log.With(slog.String("board", doc.ID))
	e.replaceSceneLocked(st, l)
	return nil
}

func (e *Editor) replaceSceneLocked(st *scene.Stage, l *scene.Layer) {
	e.stage.Width, e.stage.Height = st.Width, st.Height
	e.layer.RemoveWhere(func(*scene.Shape) bool { return true })
	e.layer.Add(l.Children()...)
	e.sel.Clear()
	e.dragging, e.dragStart = false, nil
	e.dragOrigin, e.dragTotal = nil, vector.Pt{}
	e.layer.BatchDraw()
}

// encodeLocked serializes the board for undo. Updated is pinned so equal
// scenes encode to equal bytes.
func (e *Editor) encodeLocked() []byte {
	d := e.documentLocked()
	d.Updated = e.doc.Updated
	data, err := storage.EncodeBoard(d)
	if err != nil {
		e.log.Error("encode board for undo failed", slog.Any("err", err))
		return nil
	}
	return data
}

// recordLocked pushes the current state before a change.
func (e *Editor) recordLocked() { e.pushLocked(e.encodeLocked()) }

func (e *Editor) pushLocked(blob []byte) {
	if blob == nil {
		return
	}
	e.undo.Push(undo.Snapshot{Board: e.doc.ID, Blob: blob, TS: e.now()})
}

func (e *Editor) restoreLocked(blob []byte) bool {
	doc, err := storage.DecodeBoard(blob)
	if err != nil {
		e.log.Error("restore board failed", slog.Any("err", err))
		return false
	}
	st, l, err := doc.Scene()
	if err != nil {
		e.log.Error("restore board failed", slog.Any("err", err))
		return false
	}
	e.doc.Name = doc.Name
	e.replaceSceneLocked(st, l)
	return true
}
