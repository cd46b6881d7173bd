/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package undo keeps per-board undo/redo history of opaque document states.
package undo

import (
	"sync"
	"time"
)

// Snapshot is one recorded board state. The blob is opaque to the manager and
// counted as len(Blob) bytes. TS is when the state was captured.
type Snapshot struct {
	Board string
	Blob  []byte
	TS    time.Time
}

// Config controls memory and depth caps and coalescing.
type Config struct {
	// MaxBytes is a soft cap over all boards; the oldest states go first.
	MaxBytes int
	// MaxPerBoard limits undo depth per board (0 means unlimited).
	MaxPerBoard int
	// MinInterval merges a push into the previous one when they are closer
	// than this, so a burst of edits undoes as one step.
	MinInterval time.Duration
}

// Manager records the state before each change. Undo hands back the previous
// state and remembers the current one for Redo. It is safe for concurrent use.
type Manager struct {
	cfg        Config
	mu         sync.Mutex
	undo       map[string][]Snapshot
	redo       map[string][]Snapshot
	totalBytes int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 << 20
	}
	if cfg.MinInterval < 0 {
		cfg.MinInterval = 0
	}
	return &Manager{cfg: cfg, undo: make(map[string][]Snapshot), redo: make(map[string][]Snapshot)}
}

// Push records the state a board had before a change and clears its redo
// stack. A push within MinInterval of the previous one keeps the older state.
func (m *Manager) Push(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropRedoLocked(s.Board)
	stack := m.undo[s.Board]
	if n := len(stack); n > 0 && m.cfg.MinInterval > 0 && s.TS.Sub(stack[n-1].TS) < m.cfg.MinInterval {
		stack[n-1].TS = s.TS
		return
	}
	m.undo[s.Board] = append(stack, s)
	m.totalBytes += len(s.Blob)
	m.enforceCapsLocked(s.Board)
}

// Undo returns the last recorded state of the board and stores current for Redo.
func (m *Manager) Undo(board string, current []byte) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[board]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	s := stack[len(stack)-1]
	m.undo[board] = stack[:len(stack)-1]
	m.totalBytes -= len(s.Blob)
	m.redo[board] = append(m.redo[board], Snapshot{Board: board, Blob: current, TS: time.Now()})
	m.totalBytes += len(current)
	return s, true
}

// Redo reverses the last Undo, storing current back on the undo stack.
func (m *Manager) Redo(board string, current []byte) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.redo[board]
	if len(r) == 0 {
		return Snapshot{}, false
	}
	s := r[len(r)-1]
	m.redo[board] = r[:len(r)-1]
	m.totalBytes -= len(s.Blob)
	m.undo[board] = append(m.undo[board], Snapshot{Board: board, Blob: current, TS: time.Now()})
	m.totalBytes += len(current)
	m.enforceCapsLocked(board)
	return s, true
}

func (m *Manager) CanUndo(board string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo[board]) > 0
}

func (m *Manager) CanRedo(board string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo[board]) > 0
}

// Clear drops all history of a board.
func (m *Manager) Clear(board string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.undo[board] {
		m.totalBytes -= len(s.Blob)
	}
	m.dropRedoLocked(board)
	delete(m.undo, board)
	m.totalBytes = max(m.totalBytes, 0)
}

// Stats returns current sizes for diagnostics. Snapshots counts undo entries only.
func (m *Manager) Stats() (totalBytes int, boards int, snapshots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.undo {
		if len(v) > 0 {
			boards++
		}
		snapshots += len(v)
	}
	return m.totalBytes, boards, snapshots
}

func (m *Manager) dropRedoLocked(board string) {
	for _, s := range m.redo[board] {
		m.totalBytes -= len(s.Blob)
	}
	delete(m.redo, board)
}

func (m *Manager) enforceCapsLocked(board string) {
	if m.cfg.MaxPerBoard > 0 {
		stack := m.undo[board]
		if extra := len(stack) - m.cfg.MaxPerBoard; extra > 0 {
			for _, s := range stack[:extra] {
				m.totalBytes -= len(s.Blob)
			}
			m.undo[board] = append([]Snapshot(nil), stack[extra:]...)
		}
	}
	// global cap: prune the oldest undo entry across boards
	for m.totalBytes > m.cfg.MaxBytes {
		oldest := ""
		var oldestTS time.Time
		found := false
		for b, stack := range m.undo {
			if len(stack) == 0 {
				continue
			}
			if !found || stack[0].TS.Before(oldestTS) {
				oldest, oldestTS, found = b, stack[0].TS, true
			}
		}
		if !found {
			break
		}
		stack := m.undo[oldest]
		m.totalBytes -= len(stack[0].Blob)
		if len(stack) == 1 {
			delete(m.undo, oldest)
		} else {
			m.undo[oldest] = stack[1:]
		}
	}
}
