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
	"time"

	"pagelayout/internal/undo"
)

// language=SQL
// dialect=SQLite
const insertSnapshotSQL = `INSERT INTO snapshots(page_id, label, ts, blob) VALUES (?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectLatestSnapshotSQL = `SELECT label, ts, blob FROM snapshots WHERE page_id = ? ORDER BY ts DESC, id DESC LIMIT 1`

// language=SQL
// dialect=SQLite
const listSnapshotsSQL = `SELECT label, ts, blob FROM snapshots WHERE page_id = ? ORDER BY ts DESC, id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const pruneOldSnapshotsSQL = `DELETE FROM snapshots WHERE page_id = ? AND id NOT IN (
	SELECT id FROM snapshots WHERE page_id = ? ORDER BY ts DESC, id DESC LIMIT ?
)`

// SaveSnapshot persists a committed page state.
func SaveSnapshot(ctx context.Context, h *Handle, s undo.Snapshot) error {
	if h == nil {
		return errors.New("nil Handle")
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	_, err = db.ExecContext(ctx, insertSnapshotSQL, s.PageNumber, s.Label, s.TS.UTC().Format(time.RFC3339Nano), s.Blob)
	return err
}

// GetLatestSnapshot returns the newest snapshot of a page; ok is false when
// there is none.
func GetLatestSnapshot(ctx context.Context, h *Handle, pageNumber int) (s undo.Snapshot, ok bool, err error) {
	if h == nil {
		return undo.Snapshot{}, false, errors.New("nil Handle")
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return undo.Snapshot{}, false, err
	}
	defer func() { _ = db.Close() }()
	var tsStr string
	s.PageNumber = pageNumber
	err = db.QueryRowContext(ctx, selectLatestSnapshotSQL, pageNumber).Scan(&s.Label, &tsStr, &s.Blob)
	if errors.Is(err, sql.ErrNoRows) {
		return undo.Snapshot{}, false, nil
	}
	if err != nil {
		return undo.Snapshot{}, false, err
	}
	s.TS, _ = time.Parse(time.RFC3339Nano, tsStr) // keep the blob even if ts is unreadable
	return s, true, nil
}

// ListSnapshots returns up to limit most recent snapshots for a page.
func ListSnapshots(ctx context.Context, h *Handle, pageNumber int, limit int) ([]undo.Snapshot, error) {
	if h == nil {
		return nil, errors.New("nil Handle")
	}
	if limit <= 0 {
		limit = 50
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()
	rows, err := db.QueryContext(ctx, listSnapshotsSQL, pageNumber, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []undo.Snapshot
	for rows.Next() {
		s := undo.Snapshot{PageNumber: pageNumber}
		var tsStr string
		if err := rows.Scan(&s.Label, &tsStr, &s.Blob); err != nil {
			return nil, err
		}
		s.TS, _ = time.Parse(time.RFC3339Nano, tsStr)
		out = append(out, s)
	}
	return out, rows.Err()
}

// PruneOldSnapshots keeps at most keepLast snapshots for the page.
func PruneOldSnapshots(ctx context.Context, h *Handle, pageNumber int, keepLast int) (int64, error) {
	if h == nil {
		return 0, errors.New("nil Handle")
	}
	if keepLast <= 0 {
		return 0, nil
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()
	res, err := db.ExecContext(ctx, pruneOldSnapshotsSQL, pageNumber, pageNumber, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
