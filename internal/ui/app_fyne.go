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
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"snapcanvas/internal/config"
	"snapcanvas/internal/crash"
	"snapcanvas/internal/editor"
	"snapcanvas/internal/export"
	applog "snapcanvas/internal/log"
	"snapcanvas/internal/scene"
	"snapcanvas/internal/storage"
	"snapcanvas/internal/version"
)

// checkpointKeep is how many history entries a board keeps.
const checkpointKeep = 50

var fontSizes = []string{"10", "12", "14", "18", "24", "28", "32", "48", "64"}

// Run starts the Fyne desktop editor. boardDir, if set, is opened immediately;
// otherwise an unsaved board sized from the config is shown.
func Run(boardDir string) error {
	cfg, cfgErr := config.Load()
	applog.Init(cfg.Logging.LogOptions())
	l := applog.WithComponent("ui")
	if cfgErr != nil {
		l.Warn("config load failed; using defaults", slog.Any("err", cfgErr))
	}
	l.Info("starting UI")

	var (
		bh *storage.BoardHandle
		ed *editor.Editor
	)
	defer crash.RecoverFunc(func() *storage.BoardHandle {
		if bh != nil && ed != nil {
			bh.Board = ed.Document()
		}
		return bh
	})

	ed, err := editor.New(storage.NewDocument("Untitled", cfg.Stage.Width, cfg.Stage.Height), editor.OptionsFromConfig(cfg))
	if err != nil {
		return err
	}

	fyneApp := app.NewWithID("snapcanvas")
	w := fyneApp.NewWindow("SnapCanvas")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	board := NewBoardCanvas(ed)

	setTitle := func() {
		name := ed.Document().Name
		if bh != nil {
			name += " - " + bh.Root
		}
		w.SetTitle("SnapCanvas - " + name)
	}

	// Font controls mirror the single selected text; syncing suppresses
	// their change callbacks while they are being updated.
	syncing := false
	boldCheck := widget.NewCheck("Bold", nil)
	italicCheck := widget.NewCheck("Italic", nil)
	underlineCheck := widget.NewCheck("Underline", nil)
	sizeSelect := widget.NewSelect(fontSizes, nil)
	alignRadio := widget.NewRadioGroup([]string{"left", "center", "right"}, nil)
	alignRadio.Horizontal = true
	fontBox := container.NewHBox(widget.NewLabel("Text:"), sizeSelect, boldCheck, italicCheck, underlineCheck, alignRadio)

	var undoBtn, redoBtn *widget.Button
	refreshControls := func() {
		syncing = true
		defer func() { syncing = false }()
		fa := ed.FontAttributes()
		isText := ed.CurrentShapeType() == scene.KindText.String()
		boldCheck.SetChecked(fa.Bold)
		italicCheck.SetChecked(fa.Italic)
		underlineCheck.SetChecked(fa.Underline)
		sizeSelect.SetSelected(strconv.Itoa(int(fa.FontSize)))
		alignRadio.SetSelected(fa.Align)
		for _, o := range []fyne.Disableable{boldCheck, italicCheck, underlineCheck, sizeSelect, alignRadio} {
			if isText {
				o.Enable()
			} else {
				o.Disable()
			}
		}
		if undoBtn != nil {
			setEnabled(undoBtn, ed.CanUndo())
			setEnabled(redoBtn, ed.CanRedo())
		}
		kind := ed.CurrentShapeType()
		if kind == "" {
			kind = "nothing selected"
		}
		st := ed.Stage()
		status.SetText(fmt.Sprintf("%s   %s   zoom %d%%", kind, ed.SizeLabel(), int(st.ScaleFactor()*100+0.5)))
	}
	board.OnChange = refreshControls

	applyFont := func(ch scene.FontChange) {
		if syncing {
			return
		}
		if ed.SetFontAttribute(ch) {
			l.Debug("font attribute", slog.Int("attr", int(ch.Attr)))
		}
		board.changed()
	}
	boldCheck.OnChanged = func(on bool) { applyFont(scene.FontChange{Attr: scene.AttrBold, On: on}) }
	italicCheck.OnChanged = func(on bool) { applyFont(scene.FontChange{Attr: scene.AttrItalic, On: on}) }
	underlineCheck.OnChanged = func(on bool) { applyFont(scene.FontChange{Attr: scene.AttrUnderline, On: on}) }
	sizeSelect.OnChanged = func(s string) {
		if v, err := strconv.ParseFloat(s, 32); err == nil {
			applyFont(scene.FontChange{Attr: scene.AttrFontSize, Size: float32(v)})
		}
	}
	alignRadio.OnChanged = func(s string) {
		switch s {
		case "left":
			applyFont(scene.FontChange{Attr: scene.AttrAlignLeft})
		case "center":
			applyFont(scene.FontChange{Attr: scene.AttrAlignCenter})
		case "right":
			applyFont(scene.FontChange{Attr: scene.AttrAlignRight})
		}
	}

	edit := func(name string, fn func()) func() {
		return func() {
			l.Debug("action", slog.String("name", name))
			fn()
			board.changed()
		}
	}
	doUndo := edit("undo", func() { ed.Undo() })
	doRedo := edit("redo", func() { ed.Redo() })
	doCopy := edit("copy", ed.Copy)
	doPaste := edit("paste", func() { ed.Paste() })
	doDuplicate := edit("duplicate", func() { ed.Duplicate() })
	doDelete := edit("delete", func() { ed.Delete() })

	undoBtn = widget.NewButtonWithIcon("", theme.ContentUndoIcon(), doUndo)
	redoBtn = widget.NewButtonWithIcon("", theme.ContentRedoIcon(), doRedo)
	shapeBar := container.NewHBox(
		widget.NewButton("Rectangle", edit("add rect", func() { _ = ed.Select(ed.AddRectangle().ID) })),
		widget.NewButton("Circle", edit("add circle", func() { _ = ed.Select(ed.AddCircle().ID) })),
		widget.NewButton("Text", edit("add text", func() { _ = ed.Select(ed.AddText().ID) })),
		widget.NewSeparator(),
		undoBtn, redoBtn,
		widget.NewButtonWithIcon("", theme.ContentCopyIcon(), doCopy),
		widget.NewButtonWithIcon("", theme.ContentPasteIcon(), doPaste),
		widget.NewButtonWithIcon("", theme.DeleteIcon(), doDelete),
		widget.NewSeparator(),
		widget.NewButtonWithIcon("", theme.ZoomFitIcon(), board.ResetView),
	)

	// Board lifecycle
	openBoard := func(dir string) error {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return err
		}
		h, err := storage.Open(abs)
		if err != nil {
			return err
		}
		if err := ed.LoadDocument(h.Board); err != nil {
			return err
		}
		bh = h
		addRecentBoard(prefs, abs)
		if h.Recovered {
			status.SetText("Recovered board from backup")
			l.Warn("board recovered from backup", slog.String("root", abs))
		}
		setTitle()
		board.changed()
		return nil
	}
	saveBoard := func() error {
		if bh == nil {
			return fmt.Errorf("board has no folder yet; use Save As")
		}
		bh.Board = ed.Document()
		if err := storage.Save(bh); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := storage.Checkpoint(ctx, bh, "save", checkpointKeep); err != nil {
			l.Warn("history checkpoint failed", slog.Any("err", err))
		}
		status.SetText("Saved " + bh.ManifestPath)
		return nil
	}
	saveBoardAs := func(dir string) error {
		doc := ed.Document()
		if bh == nil {
			h, err := storage.InitBoard(dir, doc)
			if err != nil {
				return err
			}
			bh = h
		} else {
			bh.Board = doc
			if err := storage.SaveAs(bh, dir); err != nil {
				return err
			}
		}
		addRecentBoard(prefs, dir)
		setTitle()
		return saveBoard()
	}

	chooseFolder := func(title string, fn func(dir string) error) {
		fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uri == nil {
				return
			}
			if err := fn(uri.Path()); err != nil {
				l.Error(title+" failed", slog.Any("err", err))
				dialog.ShowError(err, w)
			}
		}, w)
		fd.Show()
	}

	newItem := fyne.NewMenuItem("New Board…", func() {
		nameEntry := widget.NewEntry()
		nameEntry.SetText("Untitled")
		wEntry := widget.NewEntry()
		wEntry.SetText(strconv.Itoa(int(cfg.Stage.Width)))
		hEntry := widget.NewEntry()
		hEntry.SetText(strconv.Itoa(int(cfg.Stage.Height)))
		dialog.ShowForm("New Board", "Create", "Cancel", []*widget.FormItem{
			widget.NewFormItem("Name", nameEntry),
			widget.NewFormItem("Width", wEntry),
			widget.NewFormItem("Height", hEntry),
		}, func(ok bool) {
			if !ok {
				return
			}
			bw, err1 := strconv.ParseFloat(wEntry.Text, 32)
			bhgt, err2 := strconv.ParseFloat(hEntry.Text, 32)
			if err1 != nil || err2 != nil || bw <= 0 || bhgt <= 0 {
				dialog.ShowInformation("New Board", "Width and height must be positive numbers.", w)
				return
			}
			name := strings.TrimSpace(nameEntry.Text)
			if name == "" {
				name = "Untitled"
			}
			if err := ed.LoadDocument(storage.NewDocument(name, float32(bw), float32(bhgt))); err != nil {
				dialog.ShowError(err, w)
				return
			}
			bh = nil
			setTitle()
			board.ResetView()
		}, w)
	})
	openItem := fyne.NewMenuItem("Open Board…", func() { chooseFolder("open board", openBoard) })
	saveItem := fyne.NewMenuItem("Save", func() {
		if bh == nil {
			chooseFolder("save board", saveBoardAs)
			return
		}
		if err := saveBoard(); err != nil {
			dialog.ShowError(err, w)
		}
	})
	saveAsItem := fyne.NewMenuItem("Save As…", func() { chooseFolder("save board as", saveBoardAs) })
	revertItem := fyne.NewMenuItem("Revert to Last Checkpoint", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		doc, ok, err := storage.LatestCheckpoint(ctx, bh)
		switch {
		case err != nil:
			dialog.ShowError(err, w)
		case !ok:
			dialog.ShowInformation("Revert", "This board has no checkpoints yet.", w)
		default:
			if err := ed.LoadDocument(doc); err != nil {
				dialog.ShowError(err, w)
				return
			}
			board.changed()
		}
	})
	recentItem := fyne.NewMenuItem("Open Recent", nil)
	recentItem.ChildMenu = fyne.NewMenu("")
	for _, dir := range loadRecentBoards(prefs) {
		recentItem.ChildMenu.Items = append(recentItem.ChildMenu.Items, fyne.NewMenuItem(dir, func() {
			if err := openBoard(dir); err != nil {
				dialog.ShowError(err, w)
			}
		}))
	}
	newItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyN, Modifier: fyne.KeyModifierShortcutDefault}
	openItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierShortcutDefault}
	saveItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierShortcutDefault}
	fileMenu := fyne.NewMenu("File", newItem, openItem, recentItem, fyne.NewMenuItemSeparator(), saveItem, saveAsItem, revertItem)

	undoItem := fyne.NewMenuItem("Undo", doUndo)
	redoItem := fyne.NewMenuItem("Redo", doRedo)
	copyItem := fyne.NewMenuItem("Copy", doCopy)
	pasteItem := fyne.NewMenuItem("Paste", doPaste)
	dupItem := fyne.NewMenuItem("Duplicate", doDuplicate)
	delItem := fyne.NewMenuItem("Delete", doDelete)
	widenItem := fyne.NewMenuItem("Widen 10%", edit("widen", func() { ed.TransformSelection(1.1, 1, "middle-right") }))
	growItem := fyne.NewMenuItem("Enlarge 10%", edit("enlarge", func() { ed.TransformSelection(1.1, 1.1, "bottom-right") }))
	undoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}
	redoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault | fyne.KeyModifierShift}
	copyItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyC, Modifier: fyne.KeyModifierShortcutDefault}
	pasteItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyV, Modifier: fyne.KeyModifierShortcutDefault}
	dupItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyD, Modifier: fyne.KeyModifierShortcutDefault}
	editMenu := fyne.NewMenu("Edit", undoItem, redoItem, fyne.NewMenuItemSeparator(), copyItem, pasteItem, dupItem, delItem, fyne.NewMenuItemSeparator(), widenItem, growItem)

	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyDelete || ev.Name == fyne.KeyBackspace {
			doDelete()
		}
	})

	exportItem := func(f export.Format) *fyne.MenuItem {
		return fyne.NewMenuItem(strings.ToUpper(string(f))+"…", func() {
			save := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
				if err != nil {
					dialog.ShowError(err, w)
					return
				}
				if wc == nil {
					return
				}
				path := wc.URI().Path()
				_ = wc.Close()
				if err := export.WriteFile(path, f, ed.Stage(), ed.Layer(), export.Options{}); err != nil {
					dialog.ShowError(err, w)
					return
				}
				status.SetText("Exported " + path)
			}, w)
			save.SetFileName(fmt.Sprintf("%s.%s", ed.Document().Name, f))
			save.SetFilter(fstorage.NewExtensionFileFilter([]string{"." + string(f)}))
			if bh != nil {
				if lu, err := fstorage.ListerForURI(fstorage.NewFileURI(filepath.Join(bh.Root, storage.ExportsDirName))); err == nil {
					save.SetLocation(lu)
				}
			}
			save.Show()
		})
	}
	exportMenu := fyne.NewMenu("Export", exportItem(export.FormatPNG), exportItem(export.FormatSVG), exportItem(export.FormatPDF))

	aboutItem := fyne.NewMenuItem("About SnapCanvas", func() {
		exe, _ := os.Executable()
		info := fmt.Sprintf("SnapCanvas\nVersion: %s\nOS: %s\nArch: %s\nExecutable: %s",
			version.String(), runtime.GOOS, runtime.GOARCH, exe)
		dialog.ShowInformation("About", info, w)
	})
	w.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, exportMenu, fyne.NewMenu("About", aboutItem)))

	top := container.NewVBox(shapeBar, fontBox)
	w.SetContent(container.NewBorder(top, status, nil, nil, board))

	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		w.Close()
	})

	if boardDir != "" {
		if err := openBoard(boardDir); err != nil {
			l.Error("auto-open board failed", slog.Any("err", err))
		}
	}
	setTitle()
	refreshControls()

	w.ShowAndRun()
	return nil
}

func setEnabled(b *widget.Button, on bool) {
	if on {
		b.Enable()
	} else {
		b.Disable()
	}
}
