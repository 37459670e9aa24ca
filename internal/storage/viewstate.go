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
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pagelayout/internal/viewport"
)

// language=SQL
// dialect=SQLite
const upsertViewportSQL = `INSERT INTO viewport_states(page_id, state, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(page_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`

// language=SQL
// dialect=SQLite
const selectViewportSQL = `SELECT state FROM viewport_states WHERE page_id = ?`

// SaveViewportState remembers zoom and pan for a page.
func SaveViewportState(ctx context.Context, h *Handle, pageNumber int, st viewport.State) error {
	if h == nil {
		return errors.New("nil Handle")
	}
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal viewport state: %w", err)
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	_, err = db.ExecContext(ctx, upsertViewportSQL, pageNumber, string(data), time.Now().UTC().Format(time.RFC3339))
	return err
}

// LoadViewportState returns the stored state for a page; ok is false when
// none was saved.
func LoadViewportState(ctx context.Context, h *Handle, pageNumber int) (viewport.State, bool, error) {
	if h == nil {
		return viewport.State{}, false, errors.New("nil Handle")
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return viewport.State{}, false, err
	}
	defer func() { _ = db.Close() }()
	var raw string
	err = db.QueryRowContext(ctx, selectViewportSQL, pageNumber).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return viewport.State{}, false, nil
	}
	if err != nil {
		return viewport.State{}, false, err
	}
	var st viewport.State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return viewport.State{}, false, fmt.Errorf("parse viewport state: %w", err)
	}
	return st, true, nil
}
