/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"snapcanvas/internal/config"
	"snapcanvas/internal/crash"
	"snapcanvas/internal/editor"
	"snapcanvas/internal/export"
	applog "snapcanvas/internal/log"
	"snapcanvas/internal/storage"
	"snapcanvas/internal/ui"
	"snapcanvas/internal/version"
)

// historyKeep bounds the checkpoints kept per board.
const historyKeep = 50

func usage(w io.Writer) {
	fmt.Fprintln(w, "SnapCanvas - shape board with alignment snapping")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  snapcanvas version|-v|--version                    Show version")
	fmt.Fprintln(w, "  snapcanvas init <dir> <name> [width height]        Create a board at <dir>")
	fmt.Fprintln(w, "  snapcanvas open <dir>                              Print a board summary")
	fmt.Fprintln(w, "  snapcanvas add <dir> rect|circle|text              Add a shape and save")
	fmt.Fprintln(w, "  snapcanvas list <dir>                              List shapes")
	fmt.Fprintln(w, "  snapcanvas drag <dir> <dx> <dy> <id>... [--snapshot <file>]")
	fmt.Fprintln(w, "                                                     Move shapes with snapping and save")
	fmt.Fprintln(w, "  snapcanvas export <dir> png|svg|pdf <out>          Render the board")
	fmt.Fprintln(w, "  snapcanvas history <dir> [limit]                   List history checkpoints")
	fmt.Fprintln(w, "  snapcanvas history-reset <dir>                     Check and rebuild the history database")
	fmt.Fprintln(w, "  snapcanvas config [save]                           Show or write the effective config")
	fmt.Fprintln(w, "  snapcanvas ui [<dir>]                              Launch desktop UI (build with -tags fyne)")
}

// cli carries per-invocation state.
type cli struct {
	cfg config.AppConfig
	out io.Writer
	log *slog.Logger
	// bh is the open board, reported by the crash handler.
	bh  *storage.BoardHandle
}

func main() {
	cfg, cfgErr := config.Load()
	applog.Init(cfg.Logging.LogOptions())
	defer applog.Close()
	c := &cli{cfg: cfg, out: os.Stdout, log: applog.WithComponent("cli")}
	if cfgErr != nil {
		c.log.Warn("config load failed; using defaults", slog.Any("err", cfgErr))
	}
	defer crash.RecoverFunc(func() *storage.BoardHandle { return c.bh })

	code := c.run(os.Args[1:])
	if code != 0 {
		applog.Close()
		os.Exit(code)
	}
}

// run executes one command and returns the process exit code.
func (c *cli) run(args []string) int {
	c.log.Debug("start", slog.Int("args", len(args)))
	if len(args) == 0 {
		usage(c.out)
		return 0
	}
	var err error
	switch args[0] {
	case "version", "--version", "-v":
		fmt.Fprintln(c.out, "SnapCanvas")
		fmt.Fprintln(c.out, version.String())
		return 0
	case "init":
		err = c.initBoard(args[1:])
	case "open":
		err = c.withBoard(args[1:], 1, c.summary)
	case "add":
		err = c.withBoard(args[1:], 2, c.add)
	case "list":
		err = c.withBoard(args[1:], 1, c.list)
	case "drag":
		err = c.withBoard(args[1:], 4, c.drag)
	case "export":
		err = c.withBoard(args[1:], 3, c.export)
	case "history":
		err = c.withBoard(args[1:], 1, c.history)
	case "history-reset":
		err = c.historyReset(args[1:])
	case "config":
		err = c.config(args[1:])
	case "ui":
		var dir string
		if len(args) > 1 {
			dir = args[1]
		}
		err = ui.Run(dir)
	default:
		usage(c.out)
		return 2
	}
	if err != nil {
		if ue, ok := err.(usageError); ok {
			fmt.Fprintln(c.out, string(ue))
			usage(c.out)
			return 2
		}
		c.log.Error(args[0]+" failed", slog.Any("err", err))
		fmt.Fprintln(c.out, "Error:", err)
		return 1
	}
	return 0
}

type usageError string

func (u usageError) Error() string { return string(u) }

func (c *cli) initBoard(args []string) error {
	if len(args) < 2 {
		return usageError("init requires <dir> and <name>")
	}
	w, h := c.cfg.Stage.Width, c.cfg.Stage.Height
	if len(args) >= 4 {
		pw, err1 := strconv.ParseFloat(args[2], 32)
		ph, err2 := strconv.ParseFloat(args[3], 32)
		if err1 != nil || err2 != nil {
			return usageError("width and height must be numbers")
		}
		w, h = float32(pw), float32(ph)
	}
	abs, _ := filepath.Abs(args[0])
	c.log.Info("init board", slog.String("root", abs), slog.String("name", args[1]))
	bh, err := storage.InitBoard(abs, storage.NewDocument(args[1], w, h))
	if err != nil {
		return err
	}
	c.bh = bh
	fmt.Fprintln(c.out, "Created board at", abs)
	return nil
}

// withBoard opens args[0] and an editor on it, then calls fn with the
// remaining arguments.
func (c *cli) withBoard(args []string, minArgs int, fn func(ed *editor.Editor, rest []string) error) error {
	if len(args) < minArgs {
		return usageError(fmt.Sprintf("expected at least %d argument(s), starting with <dir>", minArgs))
	}
	abs, _ := filepath.Abs(args[0])
	bh, err := storage.Open(abs)
	if err != nil {
		return err
	}
	c.bh = bh
	if bh.Recovered {
		fmt.Fprintln(c.out, "Warning: board.json was unreadable; loaded the newest backup")
	}
	ed, err := editor.New(bh.Board, editor.OptionsFromConfig(c.cfg))
	if err != nil {
		return err
	}
	return fn(ed, args[1:])
}

// save writes the editor's board and records a history checkpoint.
func (c *cli) save(ed *editor.Editor, label string) error {
	c.bh.Board = ed.Document()
	if err := storage.Save(c.bh); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := storage.Checkpoint(ctx, c.bh, label, historyKeep); err != nil {
		c.log.Warn("history checkpoint failed", slog.Any("err", err))
	}
	return nil
}

func (c *cli) summary(ed *editor.Editor, _ []string) error {
	d := ed.Document()
	fmt.Fprintf(c.out, "Opened board: %s\n", d.Name)
	fmt.Fprintf(c.out, "Stage: %gx%g\n", d.Stage.Width, d.Stage.Height)
	fmt.Fprintf(c.out, "Shapes: %d\n", len(d.Shapes))
	fmt.Fprintln(c.out, "Root:", c.bh.Root)
	return nil
}

func (c *cli) add(ed *editor.Editor, rest []string) error {
	switch strings.ToLower(rest[0]) {
	case "rect", "rectangle":
		ed.AddRectangle()
	case "circle":
		ed.AddCircle()
	case "text":
		ed.AddText()
	default:
		return usageError("add requires rect, circle or text")
	}
	if err := c.save(ed, "add "+rest[0]); err != nil {
		return err
	}
	d := ed.Document()
	fmt.Fprintln(c.out, "Added", d.Shapes[len(d.Shapes)-1].ID)
	return nil
}

func (c *cli) list(ed *editor.Editor, _ []string) error {
	st := ed.Stage()
	for _, s := range ed.Layer().Children() {
		r := s.ClientRect(st)
		fmt.Fprintf(c.out, "%s\t%s\t%g,%g\t%gx%g\n", s.ID, s.Kind, r.X, r.Y, r.W, r.H)
	}
	return nil
}

// drag runs a single drag tick on the given shapes, reports the guides it
// snapped to, optionally exports a snapshot with the guides visible, then
// ends the drag and saves.
func (c *cli) drag(ed *editor.Editor, rest []string) error {
	dx, err1 := strconv.ParseFloat(rest[0], 32)
	dy, err2 := strconv.ParseFloat(rest[1], 32)
	if err1 != nil || err2 != nil {
		return usageError("drag requires numeric <dx> <dy>")
	}
	var ids []string
	var snapshot string
	for i := 2; i < len(rest); i++ {
		if rest[i] == "--snapshot" && i+1 < len(rest) {
			snapshot = rest[i+1]
			i++
			continue
		}
		ids = append(ids, rest[i])
	}
	if len(ids) == 0 {
		return usageError("drag requires at least one shape <id>")
	}
	if err := ed.Select(ids...); err != nil {
		return err
	}
	res := ed.DragSelection(float32(dx), float32(dy))
	for _, g := range res.Guides {
		fmt.Fprintf(c.out, "snapped %s %s to %g\n", g.Orientation, g.Snap, g.LineGuide)
	}
	if snapshot != "" {
		f, err := export.ParseFormat(filepath.Ext(snapshot))
		if err != nil {
			return err
		}
		if err := export.WriteFile(snapshot, f, ed.Stage(), ed.Layer(), export.Options{IncludeGuides: true}); err != nil {
			return err
		}
	}
	ed.EndDrag()
	if err := c.save(ed, "drag"); err != nil {
		return err
	}
	st := ed.Stage()
	for _, id := range ids {
		if s := ed.Layer().FindByID(id); s != nil {
			p := s.AbsolutePosition(st)
			fmt.Fprintf(c.out, "%s at %g,%g\n", id, p.X, p.Y)
		}
	}
	return nil
}

func (c *cli) export(ed *editor.Editor, rest []string) error {
	f, err := export.ParseFormat(rest[0])
	if err != nil {
		return err
	}
	out := rest[1]
	if !filepath.IsAbs(out) && filepath.Dir(out) == "." {
		out = filepath.Join(c.bh.Root, storage.ExportsDirName, out)
	}
	if err := export.WriteFile(out, f, ed.Stage(), ed.Layer(), export.Options{}); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Exported", out)
	return nil
}

func (c *cli) history(ed *editor.Editor, rest []string) error {
	limit := 20
	if len(rest) > 0 {
		n, err := strconv.Atoi(rest[0])
		if err != nil || n <= 0 {
			return usageError("history limit must be a positive number")
		}
		limit = n
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	h, err := storage.OpenHistory(ctx, c.bh.Root)
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()
	entries, err := h.List(ctx, ed.BoardID(), limit)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(c.out, "%d\t%s\t%s\t%d bytes\n", e.ID, e.TS.Local().Format(time.DateTime), e.Label, len(e.Blob))
	}
	return nil
}

func (c *cli) historyReset(args []string) error {
	if len(args) < 1 {
		return usageError("history-reset requires <dir>")
	}
	abs, _ := filepath.Abs(args[0])
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	reset, err := storage.DetectAndResetHistory(ctx, abs)
	if err != nil {
		return err
	}
	if reset {
		fmt.Fprintln(c.out, "History database was damaged and has been rebuilt")
	} else {
		fmt.Fprintln(c.out, "History database is healthy")
	}
	return nil
}

func (c *cli) config(args []string) error {
	if len(args) > 0 && args[0] == "save" {
		if err := config.Save(c.cfg); err != nil {
			return err
		}
		p, _ := config.ConfigPath()
		fmt.Fprintln(c.out, "Wrote", p)
		return nil
	}
	cfg := c.cfg
	fmt.Fprintf(c.out, "stage: %gx%g\n", cfg.Stage.Width, cfg.Stage.Height)
	fmt.Fprintf(c.out, "snap: enabled=%t tolerance=%g\n", cfg.Snap.Enabled, cfg.Snap.Tolerance)
	fmt.Fprintf(c.out, "undo: max_bytes=%d max_per_board=%d min_interval_ms=%d\n", cfg.Undo.MaxBytes, cfg.Undo.MaxPerBoard, cfg.Undo.MinIntervalMs)
	fmt.Fprintf(c.out, "logging: level=%s format=%s\n", cfg.Logging.Level, cfg.Logging.Format)
	for _, key := range []string{"snap.tolerance", "snap.enabled", "stage.width", "stage.height"} {
		if env, ok := config.EnvOverrideFor(key); ok {
			fmt.Fprintf(c.out, "%s is overridden by %s\n", key, env)
		}
	}
	return nil
}
