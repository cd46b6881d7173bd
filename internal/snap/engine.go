/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import (
	"log/slog"

	applog "snapcanvas/internal/log"
)

func logger() *slog.Logger { return applog.WithComponent("snap") }

// Options configures an Engine.
type Options struct {
	// Tolerance in stage-local pixels; values <= 0 mean DefaultTolerance.
	Tolerance float32
	// Disabled turns DragMove into guide clearing only.
	Disabled bool
	Logger   *slog.Logger
}

// Engine composes the guide pipeline for a host's drag events. It keeps no
// state between calls.
//
// Hosts must call DragMove for every drag-move event and DragEnd once the
// drag finishes. Within DragMove the order is fixed: clear the old guides,
// compute, render, then correct positions, so guides are never computed
// against an already corrected position.
type Engine struct {
	tolerance float32
	disabled  bool
	log       *slog.Logger
}

func New(opts Options) *Engine {
	tol := opts.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	l := opts.Logger
	if l == nil {
		l = logger()
	}
	return &Engine{tolerance: tol, disabled: opts.Disabled, log: l}
}

func (e *Engine) Tolerance() float32 { return e.tolerance }

// ComputeGuides returns the 0-2 guides for the current selection without
// touching the scene.
func (e *Engine) ComputeGuides(sc Scene) []Guide {
	if sc.Selection == nil || sc.Selection.Empty() {
		return nil
	}
	targets, _, ok := ExtractTargets(sc.Stage, sc.Selection)
	if !ok {
		return nil
	}
	return MatchGuides(CollectStops(sc.Stage, sc.Layer, sc.Selection), targets, e.tolerance)
}

func (e *Engine) RenderGuides(sc Scene, guides []Guide) { RenderGuides(sc.Layer, guides) }

func (e *Engine) ClearGuides(sc Scene) int { return ClearGuides(sc.Layer) }

func (e *Engine) CorrectSelection(sc Scene, guides []Guide) {
	CorrectSelection(sc.Stage, sc.Selection, guides)
}

// DragMove handles one drag-move tick. An empty selection is a no-op.
func (e *Engine) DragMove(sc Scene) Result {
	if sc.Selection == nil || sc.Selection.Empty() {
		return Result{}
	}
	res := Result{Cleared: ClearGuides(sc.Layer)}
	if e.disabled {
		if res.Cleared > 0 {
			sc.Layer.BatchDraw()
		}
		return res
	}
	targets, anchor, ok := ExtractTargets(sc.Stage, sc.Selection)
	if !ok {
		e.log.Debug("selection box not usable, skipping snap")
		return res
	}
	stops := CollectStops(sc.Stage, sc.Layer, sc.Selection)
	res.Guides = MatchGuides(stops, targets, e.tolerance)
	if len(res.Guides) == 0 {
		if res.Cleared > 0 {
			sc.Layer.BatchDraw()
		}
		return res
	}
	RenderGuides(sc.Layer, res.Guides)
	res.Delta = shiftSelection(sc.Stage, sc.Selection, anchor, res.Guides)
	sc.Layer.BatchDraw()
	for _, g := range res.Guides {
		e.log.Debug("snapped",
			slog.String("orientation", g.Orientation.String()),
			slog.String("snap", g.Snap.String()),
			slog.Float64("line", float64(g.LineGuide)),
		)
	}
	return res
}

// DragEnd removes all guides. Positions are left as they are.
func (e *Engine) DragEnd(sc Scene) int {
	n := ClearGuides(sc.Layer)
	sc.Layer.BatchDraw()
	return n
}
