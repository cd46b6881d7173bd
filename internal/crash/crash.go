/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a crash report plus an autosave of the
// open board, then exits.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "snapcanvas/internal/log"
	"snapcanvas/internal/storage"
	"snapcanvas/internal/version"
)

// exitFn is replaced in tests.
var exitFn = os.Exit

// Recover must be deferred directly:
//
//	defer crash.Recover(bh)
func Recover(bh *storage.BoardHandle) {
	if r := recover(); r != nil {
		handle(r, debug.Stack(), func() *storage.BoardHandle { return bh })
	}
}

// RecoverFunc is Recover for hosts whose board state lives elsewhere; fn is
// called at panic time to obtain a handle carrying the current document.
func RecoverFunc(fn func() *storage.BoardHandle) {
	if r := recover(); r != nil {
		handle(r, debug.Stack(), fn)
	}
}

func handle(r any, stack []byte, fn func() *storage.BoardHandle) {
	l := applog.WithComponent("crash")
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	bh := currentHandle(l, fn)
	reportPath, err := writeReport(bh, r, stack)
	if err != nil {
		l.Error("write crash report failed", slog.Any("err", err))
	}
	if bh != nil {
		if path, err := storage.AutosaveCrashSnapshot(bh); err != nil {
			l.Error("autosave crash snapshot failed", slog.Any("err", err))
		} else {
			l.Info("autosave crash snapshot written", slog.String("path", path))
		}
	}
	_, _ = fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath)
	_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	_ = applog.Close()
	exitFn(2)
}

// currentHandle calls fn, tolerating a second panic inside it.
func currentHandle(l *slog.Logger, fn func() *storage.BoardHandle) (bh *storage.BoardHandle) {
	if fn == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			l.Error("board capture panicked", slog.Any("panic", r))
			bh = nil
		}
	}()
	return fn()
}

func writeReport(bh *storage.BoardHandle, panicVal any, stack []byte) (string, error) {
	dir := os.TempDir()
	if bh != nil && bh.Root != "" {
		dir = filepath.Join(bh.Root, storage.BackupsDirName)
		_ = os.MkdirAll(dir, 0o755)
	}
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", time.Now().Format("20060102-150405.000")))

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "SnapCanvas Crash Report\n")
	fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&buf, "Version: %s\n", version.String())
	fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if bh != nil {
		fmt.Fprintf(&buf, "BoardRoot: %s\n", bh.Root)
		fmt.Fprintf(&buf, "BoardID: %s\n", bh.Board.ID)
		fmt.Fprintf(&buf, "Shapes: %d\n", len(bh.Board.Shapes))
	}
	fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	fmt.Fprintf(&buf, "Stack:\n%s\n", stack)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	return path, nil
}
