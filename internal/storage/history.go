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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"snapcanvas/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// HistoryDirName holds per-board derived data under the board root.
	HistoryDirName  = ".snapcanvas"
	HistoryFileName = "history.sqlite"

	// historySchema is the current SQLite schema version. Bump it together
	// with a new step in runMigrations.
	historySchema = 2
)

// tsLayout is fixed width so stored timestamps sort as text.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// language=SQL
// dialect=SQLite
const insertSnapshotSQL = `INSERT INTO snapshots(board_id, ts, label, doc_blob) VALUES (?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestSnapshotSQL = `SELECT id, ts, label, doc_blob FROM snapshots WHERE board_id = ? ORDER BY ts DESC, id DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const listSnapshotsSQL = `SELECT id, ts, label, doc_blob FROM snapshots WHERE board_id = ? ORDER BY ts DESC, id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneOldSnapshotsSQL = `DELETE FROM snapshots WHERE board_id = ? AND id NOT IN (
	SELECT id FROM snapshots WHERE board_id = ? ORDER BY ts DESC, id DESC LIMIT ?
)`

// HistoryEntry is one persisted board state.
type HistoryEntry struct {
	ID    int64
	TS    time.Time
	Label string
	Blob  []byte
}

// History is the per-board snapshot database at <root>/.snapcanvas/history.sqlite.
// It is derived data: deleting it loses history but never the board.
type History struct {
	db   *sql.DB
	path string
}

// HistoryPath returns the history database path for a board root.
func HistoryPath(root string) string {
	return filepath.Join(root, HistoryDirName, HistoryFileName)
}

// OpenHistory opens or creates the history database, enables WAL and runs
// migrations.
func OpenHistory(ctx context.Context, root string) (*History, error) {
	l := logger("history_open").With(slog.String("root", root))
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("board root is required")
	}
	if err := os.MkdirAll(filepath.Join(root, HistoryDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create %s dir: %w", HistoryDirName, err)
	}
	path := HistoryPath(root)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("history ready", slog.String("path", path))
	return &History{db: db, path: path}, nil
}

func (h *History) Close() error { return h.db.Close() }

// SchemaVersion reports the schema recorded in the version table.
func (h *History) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := h.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&v)
	return v, err
}

// Save appends a snapshot of a board.
func (h *History) Save(ctx context.Context, boardID, label string, blob []byte, ts time.Time) error {
	if boardID == "" {
		return errors.New("board id is required")
	}
	_, err := h.db.ExecContext(ctx, insertSnapshotSQL, boardID, ts.UTC().Format(tsLayout), label, blob)
	return err
}

// Latest returns the newest snapshot, or ok=false if the board has none.
func (h *History) Latest(ctx context.Context, boardID string) (HistoryEntry, bool, error) {
	e, err := scanEntry(h.db.QueryRowContext(ctx, selectLatestSnapshotSQL, boardID))
	if errors.Is(err, sql.ErrNoRows) {
		return HistoryEntry{}, false, nil
	}
	if err != nil {
		return HistoryEntry{}, false, err
	}
	return e, true, nil
}

// List returns up to limit snapshots, newest first. limit <= 0 means 50.
func (h *History) List(ctx context.Context, boardID string, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := h.db.QueryContext(ctx, listSnapshotsSQL, boardID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []HistoryEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Prune keeps the newest keepLast snapshots of a board and returns how many
// were deleted.
func (h *History) Prune(ctx context.Context, boardID string, keepLast int) (int64, error) {
	if keepLast <= 0 {
		return 0, nil
	}
	res, err := h.db.ExecContext(ctx, pruneOldSnapshotsSQL, boardID, boardID, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(r rowScanner) (HistoryEntry, error) {
	var e HistoryEntry
	var ts string
	var label sql.NullString
	if err := r.Scan(&e.ID, &ts, &label, &e.Blob); err != nil {
		return e, err
	}
	e.TS, _ = time.Parse(time.RFC3339Nano, ts)
	e.Label = label.String
	return e, nil
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			id       INTEGER PRIMARY KEY,
			board_id TEXT NOT NULL,
			ts       TEXT NOT NULL,
			doc_blob BLOB NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// a fresh database starts at 1 and is brought forward by runMigrations
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, 1, ?, ?, ?)`, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// runMigrations applies schema steps up to historySchema. Newer databases
// are left alone.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for cur < historySchema {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			stmts = []string{
				`ALTER TABLE snapshots ADD COLUMN label TEXT;`,
				`CREATE INDEX IF NOT EXISTS idx_snapshots_board_ts ON snapshots(board_id, ts);`,
			}
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

// DetectAndResetHistory checks the history database and, when it cannot be
// opened or fails quick_check, moves it aside and creates an empty one. It
// returns true when a reset happened.
func DetectAndResetHistory(ctx context.Context, root string) (bool, error) {
	path := HistoryPath(root)
	h, err := OpenHistory(ctx, root)
	if err == nil {
		var chk string
		qerr := h.db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk)
		_ = h.Close()
		if qerr == nil && strings.EqualFold(strings.TrimSpace(chk), "ok") {
			return false, nil
		}
	}
	logger("history_reset").Warn("history database unusable, resetting", slog.String("path", path), slog.Any("err", err))
	backupHistoryFile(path)
	for _, suffix := range []string{"", "-wal", "-shm"} {
		_ = os.Remove(path + suffix)
	}
	h, err = OpenHistory(ctx, root)
	if err != nil {
		return false, fmt.Errorf("recreate history: %w", err)
	}
	return true, h.Close()
}

func backupHistoryFile(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return
	}
	_ = copyFile(path, filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", HistoryFileName, stamp())))
}

// Checkpoint records the handle's board in the history database and keeps the
// newest keep entries (keep <= 0 keeps everything).
func Checkpoint(ctx context.Context, bh *BoardHandle, label string, keep int) error {
	if bh == nil {
		return errors.New("no board open")
	}
	blob, err := EncodeBoard(bh.Board)
	if err != nil {
		return err
	}
	h, err := OpenHistory(ctx, bh.Root)
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()
	if err := h.Save(ctx, bh.Board.ID, label, blob, time.Now()); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	if keep > 0 {
		if _, err := h.Prune(ctx, bh.Board.ID, keep); err != nil {
			return fmt.Errorf("prune history: %w", err)
		}
	}
	return nil
}

// LatestCheckpoint decodes the newest history entry of the handle's board.
// ok is false when the board has no history yet.
func LatestCheckpoint(ctx context.Context, bh *BoardHandle) (doc Document, ok bool, err error) {
	if bh == nil {
		return Document{}, false, errors.New("no board open")
	}
	h, err := OpenHistory(ctx, bh.Root)
	if err != nil {
		return Document{}, false, err
	}
	defer func() { _ = h.Close() }()
	e, ok, err := h.Latest(ctx, bh.Board.ID)
	if err != nil || !ok {
		return Document{}, false, err
	}
	doc, err = DecodeBoard(e.Blob)
	if err != nil {
		return Document{}, false, fmt.Errorf("decode checkpoint %d: %w", e.ID, err)
	}
	return doc, true, nil
}
