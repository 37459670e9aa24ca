/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package undo keeps per-page canvas history for the interaction controller.
package undo

import (
	"sync"
	"time"
)

// Snapshot is the serialized state of one page after a committed change.
// Blob content is opaque to the manager; size is estimated as len(Blob).
type Snapshot struct {
	PageNumber int
	// Label names the gesture that produced the state ("move", "nudge", ...).
	Label string
	Blob  []byte
	TS    time.Time
	// base marks the state a page was opened with; it is never coalesced.
	base bool
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap; older entries are pruned when exceeded.
	MaxBytes int `yaml:"max_bytes"`
	// MaxPerPage limits number of snapshots per page kept in memory (0 means unlimited).
	MaxPerPage int `yaml:"max_per_page"`
	// MinInterval merges commits with the same label on the same page into one
	// history step, so a burst of arrow-key nudges undoes in one go.
	MinInterval time.Duration `yaml:"min_interval"`
}

// Manager holds an undo/redo stack per page. The top of a page's undo stack
// is always its current state. It is safe for concurrent use.
type Manager struct {
	cfg        Config
	mu         sync.Mutex
	undo       map[int][]Snapshot
	redo       map[int][]Snapshot
	totalBytes int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024 // 16 MiB
	}
	if cfg.MinInterval < 0 {
		cfg.MinInterval = 0
	}
	return &Manager{cfg: cfg, undo: make(map[int][]Snapshot), redo: make(map[int][]Snapshot)}
}

// Reset drops the page history and records s as its baseline.
func (m *Manager) Reset(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked(s.PageNumber)
	s.base = true
	m.undo[s.PageNumber] = []Snapshot{s}
	m.totalBytes += len(s.Blob)
	m.enforceCapsLocked(s.PageNumber)
}

// Push records the state after a committed change and clears redo for the page.
// A push with the same label within MinInterval of the previous one replaces it.
func (m *Manager) Push(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[s.PageNumber]
	m.redo[s.PageNumber] = nil
	if n := len(stack); n > 0 {
		last := stack[n-1]
		if !last.base && last.Label == s.Label && s.TS.Sub(last.TS) < m.cfg.MinInterval {
			m.totalBytes += len(s.Blob) - len(last.Blob)
			stack[n-1] = s
			m.enforceCapsLocked(s.PageNumber)
			return
		}
	}
	m.undo[s.PageNumber] = append(stack, s)
	m.totalBytes += len(s.Blob)
	m.enforceCapsLocked(s.PageNumber)
}

// Undo moves the current state of the page onto the redo stack and returns
// the state to restore. It reports false when there is nothing to undo.
func (m *Manager) Undo(pageNumber int) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[pageNumber]
	if len(stack) < 2 {
		return Snapshot{}, false
	}
	cur := stack[len(stack)-1]
	m.undo[pageNumber] = stack[:len(stack)-1]
	m.totalBytes -= len(cur.Blob)
	m.redo[pageNumber] = append(m.redo[pageNumber], cur)
	return stack[len(stack)-2], true
}

// Redo reapplies the most recently undone state.
func (m *Manager) Redo(pageNumber int) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.redo[pageNumber]
	if len(r) == 0 {
		return Snapshot{}, false
	}
	s := r[len(r)-1]
	m.redo[pageNumber] = r[:len(r)-1]
	m.undo[pageNumber] = append(m.undo[pageNumber], s)
	m.totalBytes += len(s.Blob)
	m.enforceCapsLocked(pageNumber)
	return s, true
}

// CanUndo and CanRedo drive menu state.
func (m *Manager) CanUndo(pageNumber int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo[pageNumber]) > 1
}

func (m *Manager) CanRedo(pageNumber int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo[pageNumber]) > 0
}

// ClearPage clears undo/redo stacks for a page to free memory.
func (m *Manager) ClearPage(pageNumber int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked(pageNumber)
}

func (m *Manager) clearLocked(pageNumber int) {
	for _, s := range m.undo[pageNumber] {
		m.totalBytes -= len(s.Blob)
	}
	delete(m.undo, pageNumber)
	delete(m.redo, pageNumber)
	if m.totalBytes < 0 {
		m.totalBytes = 0
	}
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, pages int, totalSnapshots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pages = len(m.undo)
	for _, v := range m.undo {
		totalSnapshots += len(v)
	}
	return m.totalBytes, pages, totalSnapshots
}

// prunable returns the index of the oldest entry that may be dropped: never
// the baseline and never the current state. It returns -1 when there is none.
func prunable(stack []Snapshot) int {
	for i := 0; i < len(stack)-1; i++ {
		if !stack[i].base {
			return i
		}
	}
	return -1
}

func (m *Manager) dropLocked(pageNumber, i int) {
	stack := m.undo[pageNumber]
	m.totalBytes -= len(stack[i].Blob)
	m.undo[pageNumber] = append(append([]Snapshot{}, stack[:i]...), stack[i+1:]...)
}

func (m *Manager) enforceCapsLocked(pageNumber int) {
	if m.cfg.MaxPerPage > 0 {
		for len(m.undo[pageNumber]) > m.cfg.MaxPerPage {
			i := prunable(m.undo[pageNumber])
			if i < 0 {
				break
			}
			m.dropLocked(pageNumber, i)
		}
	}
	// Global memory cap: prune the oldest droppable entry across pages.
	for m.cfg.MaxBytes > 0 && m.totalBytes > m.cfg.MaxBytes {
		oldestPage, oldestIdx := 0, -1
		var oldestTS time.Time
		for page, stack := range m.undo {
			i := prunable(stack)
			if i < 0 {
				continue
			}
			if oldestIdx < 0 || stack[i].TS.Before(oldestTS) {
				oldestPage, oldestIdx = page, i
				oldestTS = stack[i].TS
			}
		}
		if oldestIdx < 0 {
			break
		}
		m.dropLocked(oldestPage, oldestIdx)
	}
}
