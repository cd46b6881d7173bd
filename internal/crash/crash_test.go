/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"snapcanvas/internal/storage"
)

// silenceStderr swallows the user-facing crash message for the test's duration.
func silenceStderr(t *testing.T) {
	t.Helper()
	old := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stderr = w
	done := make(chan struct{})
	go func() { _, _ = io.Copy(io.Discard, r); close(done) }()
	t.Cleanup(func() {
		_ = w.Close()
		<-done
		os.Stderr = old
	})
}

func interceptExit(t *testing.T) *int {
	t.Helper()
	code := -1
	old := exitFn
	exitFn = func(c int) { code = c }
	t.Cleanup(func() { exitFn = old })
	return &code
}

func findFile(t *testing.T, dir, prefix, suffix string) string {
	t.Helper()
	ents, _ := os.ReadDir(dir)
	for _, e := range ents {
		if strings.HasPrefix(e.Name(), prefix) && strings.HasSuffix(e.Name(), suffix) {
			return filepath.Join(dir, e.Name())
		}
	}
	return ""
}

func TestRecoverWritesReportAndAutosave(t *testing.T) {
	silenceStderr(t)
	code := interceptExit(t)
	root := t.TempDir()
	bh := &storage.BoardHandle{Root: root, ManifestPath: filepath.Join(root, storage.ManifestFileName),
		Board: storage.NewDocument("crashy", 100, 100)}

	func() {
		defer Recover(bh)
		panic("boom")
	}()

	if *code != 2 {
		t.Fatalf("expected exit code 2, got %d", *code)
	}
	bdir := filepath.Join(root, storage.BackupsDirName)
	report := findFile(t, bdir, "crash-", ".log")
	if report == "" {
		t.Fatalf("expected crash report under backups dir")
	}
	b, _ := os.ReadFile(report)
	if !strings.Contains(string(b), "Panic: boom") || !strings.Contains(string(b), "BoardID: "+bh.Board.ID) {
		t.Fatalf("report content: %s", b)
	}
	if findFile(t, bdir, storage.ManifestFileName+".", ".crash") == "" {
		t.Fatalf("expected crash autosave of the board")
	}
}

func TestRecoverFuncCapturesLazily(t *testing.T) {
	silenceStderr(t)
	interceptExit(t)
	root := t.TempDir()
	name := "before"
	func() {
		defer RecoverFunc(func() *storage.BoardHandle {
			return &storage.BoardHandle{Root: root, Board: storage.NewDocument(name, 10, 10)}
		})
		name = "at panic"
		panic("late")
	}()
	bdir := filepath.Join(root, storage.BackupsDirName)
	snap := findFile(t, bdir, storage.ManifestFileName+".", ".crash")
	if snap == "" {
		t.Fatalf("no autosave written")
	}
	b, _ := os.ReadFile(snap)
	if !strings.Contains(string(b), `"name": "at panic"`) {
		t.Fatalf("autosave did not use state at panic time: %s", b)
	}
}

func TestRecoverFuncSurvivesCapturePanic(t *testing.T) {
	silenceStderr(t)
	code := interceptExit(t)
	func() {
		defer RecoverFunc(func() *storage.BoardHandle { panic("capture") })
		panic("first")
	}()
	if *code != 2 {
		t.Fatalf("expected exit 2, got %d", *code)
	}
}

func TestRecoverWithoutPanicIsNoop(t *testing.T) {
	code := interceptExit(t)
	func() {
		defer Recover(nil)
	}()
	if *code != -1 {
		t.Fatalf("exit called without panic")
	}
}

func TestWriteReportInTemp(t *testing.T) {
	path, err := writeReport(nil, "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	t.Cleanup(func() { _ = os.Remove(path) })
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(b), "SnapCanvas Crash Report") || !strings.Contains(string(b), "Panic: boom") {
		t.Fatalf("unexpected report: %s", b)
	}
}
