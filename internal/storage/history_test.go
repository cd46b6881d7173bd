/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestHistory(t *testing.T, root string) *History {
	t.Helper()
	h, err := OpenHistory(context.Background(), root)
	if err != nil {
		t.Fatalf("OpenHistory: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestHistorySaveLatestList(t *testing.T) {
	ctx := context.Background()
	h := openTestHistory(t, t.TempDir())
	if _, ok, err := h.Latest(ctx, "b1"); err != nil || ok {
		t.Fatalf("expected no snapshot, ok=%v err=%v", ok, err)
	}
	t0 := time.Now()
	for i := 0; i < 3; i++ {
		if err := h.Save(ctx, "b1", fmt.Sprintf("step %d", i), []byte{byte(i)}, t0.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	if err := h.Save(ctx, "b2", "other", []byte("x"), t0); err != nil {
		t.Fatalf("Save b2: %v", err)
	}
	e, ok, err := h.Latest(ctx, "b1")
	if err != nil || !ok || e.Label != "step 2" || e.Blob[0] != 2 {
		t.Fatalf("Latest=%+v ok=%v err=%v", e, ok, err)
	}
	list, err := h.List(ctx, "b1", 2)
	if err != nil || len(list) != 2 || list[0].Label != "step 2" || list[1].Label != "step 1" {
		t.Fatalf("List=%+v err=%v", list, err)
	}
	if !list[1].TS.Before(list[0].TS) {
		t.Fatalf("timestamps not newest first")
	}
}

func TestHistoryPrune(t *testing.T) {
	ctx := context.Background()
	h := openTestHistory(t, t.TempDir())
	t0 := time.Now()
	for i := 0; i < 5; i++ {
		_ = h.Save(ctx, "b", "", []byte("x"), t0.Add(time.Duration(i)*time.Second))
	}
	n, err := h.Prune(ctx, "b", 2)
	if err != nil || n != 3 {
		t.Fatalf("Prune removed %d, err=%v", n, err)
	}
	list, _ := h.List(ctx, "b", 0)
	if len(list) != 2 {
		t.Fatalf("expected 2 left, got %d", len(list))
	}
	if n, _ := h.Prune(ctx, "b", 0); n != 0 {
		t.Fatalf("keepLast 0 must be a no-op")
	}
}

func TestHistoryMigratesV1(t *testing.T) {
	root := t.TempDir()
	path := HistoryPath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	for _, q := range []string{
		`CREATE TABLE version (id INTEGER PRIMARY KEY CHECK(id=1), schema INTEGER NOT NULL, app TEXT, created_at TEXT NOT NULL, updated_at TEXT NOT NULL);`,
		`INSERT INTO version VALUES(1, 1, 'test', '2020-01-01T00:00:00Z', '2020-01-01T00:00:00Z');`,
		`CREATE TABLE snapshots (id INTEGER PRIMARY KEY, board_id TEXT NOT NULL, ts TEXT NOT NULL, doc_blob BLOB NOT NULL);`,
		`INSERT INTO snapshots(board_id, ts, doc_blob) VALUES('b', '2020-01-01T00:00:00Z', x'01');`,
	} {
		if _, err := db.ExecContext(ctx, q); err != nil {
			t.Fatalf("seed v1: %v (q=%s)", err, q)
		}
	}
	_ = db.Close()

	h := openTestHistory(t, root)
	v, err := h.SchemaVersion(ctx)
	if err != nil || v != historySchema {
		t.Fatalf("schema=%d err=%v", v, err)
	}
	e, ok, err := h.Latest(ctx, "b")
	if err != nil || !ok || e.Label != "" || len(e.Blob) != 1 {
		t.Fatalf("v1 row unreadable after migration: %+v %v %v", e, ok, err)
	}
}

func TestDetectAndResetHistory(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	h, err := OpenHistory(ctx, root)
	if err != nil {
		t.Fatalf("OpenHistory: %v", err)
	}
	_ = h.Close()
	if reset, err := DetectAndResetHistory(ctx, root); err != nil || reset {
		t.Fatalf("healthy db reset=%v err=%v", reset, err)
	}
	if err := os.WriteFile(HistoryPath(root), []byte("THIS IS NOT SQLITE"), 0o644); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	reset, err := DetectAndResetHistory(ctx, root)
	if err != nil || !reset {
		t.Fatalf("expected reset, got %v %v", reset, err)
	}
	ents, _ := os.ReadDir(filepath.Join(root, HistoryDirName, BackupsDirName))
	if len(ents) == 0 {
		t.Fatalf("expected the corrupt file to be kept as backup")
	}
	h = openTestHistory(t, root)
	if _, ok, err := h.Latest(ctx, "b"); err != nil || ok {
		t.Fatalf("reset db should be empty: %v %v", ok, err)
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	ctx := context.Background()
	bh, err := InitBoard(t.TempDir(), sampleDoc())
	if err != nil {
		t.Fatalf("InitBoard: %v", err)
	}
	if _, ok, err := LatestCheckpoint(ctx, bh); err != nil || ok {
		t.Fatalf("fresh board: ok=%v err=%v", ok, err)
	}
	for i := 0; i < 3; i++ {
		bh.Board.Name = fmt.Sprintf("rev %d", i)
		if err := Checkpoint(ctx, bh, "drag", 2); err != nil {
			t.Fatalf("Checkpoint: %v", err)
		}
	}
	doc, ok, err := LatestCheckpoint(ctx, bh)
	if err != nil || !ok || doc.Name != "rev 2" || len(doc.Shapes) != len(bh.Board.Shapes) {
		t.Fatalf("latest: ok=%v err=%v name=%q", ok, err, doc.Name)
	}
	h := openTestHistory(t, bh.Root)
	list, err := h.List(ctx, bh.Board.ID, 10)
	if err != nil || len(list) != 2 {
		t.Fatalf("prune keep=2: len=%d err=%v", len(list), err)
	}
	if err := Checkpoint(ctx, nil, "x", 0); err == nil {
		t.Fatalf("nil handle must fail")
	}
}
