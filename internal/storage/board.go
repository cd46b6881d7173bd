/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	applog "snapcanvas/internal/log"
)

const (
	ManifestFileName = "board.json"
	BackupsDirName   = "backups"
	ExportsDirName   = "exports"
	crashSuffix      = ".crash"
)

var standardSubDirs = []string{BackupsDirName, ExportsDirName}

// BoardHandle is a board directory loaded from or saved to disk.
type BoardHandle struct {
	Root         string
	ManifestPath string
	Board        Document
	// Recovered is set when Open fell back to a backup.
	Recovered bool
}

func logger(op string) *slog.Logger {
	return applog.WithOperation(applog.WithComponent("storage"), op)
}

// InitBoard creates a board directory at root with the standard subfolders
// and writes doc as its manifest.
func InitBoard(root string, doc Document) (*BoardHandle, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if err := scaffold(root); err != nil {
		return nil, err
	}
	bh := &BoardHandle{Root: root, ManifestPath: filepath.Join(root, ManifestFileName), Board: doc}
	if err := Save(bh); err != nil {
		return nil, err
	}
	logger("init").Info("board created", slog.String("root", root), slog.String("id", doc.ID))
	return bh, nil
}

func scaffold(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create board root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return fmt.Errorf("create subdir %s: %w", d, err)
		}
	}
	return nil
}

// Open loads the board at root. A manifest that is missing, unparsable or
// fails schema validation is replaced by the newest readable backup.
func Open(root string) (*BoardHandle, error) {
	mpath := filepath.Join(root, ManifestFileName)
	doc, err := readBoard(mpath)
	if err == nil {
		return &BoardHandle{Root: root, ManifestPath: mpath, Board: doc}, nil
	}
	bdoc, berr := openFromLatestBackup(root)
	if berr != nil {
		return nil, fmt.Errorf("open board: %w; backup attempt: %v", err, berr)
	}
	logger("open").Warn("manifest unusable, loaded backup", slog.String("root", root), slog.Any("err", err))
	return &BoardHandle{Root: root, ManifestPath: mpath, Board: bdoc, Recovered: true}, nil
}

// DecodeBoard validates and parses board JSON.
func DecodeBoard(data []byte) (Document, error) {
	var doc Document
	if err := ValidateBoard(data); err != nil {
		return doc, err
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parse board: %w", err)
	}
	return doc, nil
}

// EncodeBoard renders the document in its on-disk form.
func EncodeBoard(doc Document) ([]byte, error) {
	if doc.Version == 0 {
		doc.Version = DocumentVersion
	}
	if doc.Shapes == nil {
		doc.Shapes = []ShapeDoc{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal board: %w", err)
	}
	return append(data, '\n'), nil
}

func readBoard(path string) (Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	return DecodeBoard(b)
}

// Save writes the board transactionally, keeping a timestamped backup of the
// previous manifest.
func Save(bh *BoardHandle) error {
	if bh == nil {
		return errors.New("nil BoardHandle")
	}
	if bh.Root == "" || bh.ManifestPath == "" {
		return errors.New("invalid BoardHandle: missing paths")
	}
	data, err := EncodeBoard(bh.Board)
	if err != nil {
		return err
	}
	if err := ValidateBoard(data); err != nil {
		return err
	}
	bdir := filepath.Join(bh.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	if _, statErr := os.Stat(bh.ManifestPath); statErr == nil {
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", ManifestFileName, stamp()))
		if cerr := copyFile(bh.ManifestPath, bpath); cerr != nil {
			return fmt.Errorf("backup current manifest: %w", cerr)
		}
	}
	return replaceFile(bh.ManifestPath, data)
}

// SaveAs moves the handle to newRoot and saves there.
func SaveAs(bh *BoardHandle, newRoot string) error {
	if bh == nil {
		return errors.New("nil BoardHandle")
	}
	if newRoot == "" {
		return errors.New("new root is empty")
	}
	if err := scaffold(newRoot); err != nil {
		return err
	}
	bh.Root = newRoot
	bh.ManifestPath = filepath.Join(newRoot, ManifestFileName)
	return Save(bh)
}

// AutosaveCrashSnapshot writes the in-memory board next to the backups
// without touching the manifest. It returns the written path.
func AutosaveCrashSnapshot(bh *BoardHandle) (string, error) {
	if bh == nil || bh.Root == "" {
		return "", errors.New("invalid BoardHandle")
	}
	data, err := EncodeBoard(bh.Board)
	if err != nil {
		return "", err
	}
	bdir := filepath.Join(bh.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(bdir, fmt.Sprintf("%s.%s%s", ManifestFileName, stamp(), crashSuffix))
	if err := writeFileSync(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// Backups lists backup and crash files, oldest first.
func Backups(root string) ([]string, error) {
	bdir := filepath.Join(root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	var out []string
	for _, e := range ents {
		name := e.Name()
		if !strings.HasPrefix(name, ManifestFileName+".") {
			continue
		}
		if strings.HasSuffix(name, ".bak") || strings.HasSuffix(name, crashSuffix) {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	// the timestamp in the name sorts chronologically
	sort.Strings(out)
	return out, nil
}

func stamp() string { return time.Now().Format("20060102-150405.000000") }

func openFromLatestBackup(root string) (Document, error) {
	candidates, err := Backups(root)
	if err != nil {
		return Document{}, err
	}
	if len(candidates) == 0 {
		return Document{}, errors.New("no backups found")
	}
	var lastErr error
	for i := len(candidates) - 1; i >= 0; i-- {
		doc, err := readBoard(candidates[i])
		if err == nil {
			return doc, nil
		}
		lastErr = err
	}
	return Document{}, fmt.Errorf("no readable backup: %w", lastErr)
}

// replaceFile writes to a temp file in the same directory and renames it over path.
func replaceFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		return fmt.Errorf("write temp manifest: %w", err)
	}
	// Windows cannot rename over an existing file
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if err := os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}

func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
