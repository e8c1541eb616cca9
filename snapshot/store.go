// Copyright © 2025 Loom contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: snapshot/store.go
// Summary: SQLite-backed persistence for workspace captures.
//
// Captures are stored as JSON rows with a SHA-1 integrity digest.
// Rows whose digest no longer matches are skipped on load rather than
// restored into a corrupt workspace.

package snapshot

import (
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const storeSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at INTEGER NOT NULL,      -- UnixNano
    digest TEXT NOT NULL,             -- SHA-1 of payload
    payload TEXT NOT NULL             -- JSON WorkspaceCapture
);

CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at);
`

// keepSnapshots bounds table growth; older rows are pruned on save.
const keepSnapshots = 20

// Store persists workspace captures in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the snapshot database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("snapshot dir: %w", err)
	}

	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=temp_store(MEMORY)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect snapshot db: %w", err)
	}
	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("snapshot schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Save writes a capture and prunes old rows.
func (s *Store) Save(cap WorkspaceCapture) error {
	payload, err := json.Marshal(cap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	sum := sha1.Sum(payload)

	_, err = s.db.Exec(
		"INSERT INTO snapshots (created_at, digest, payload) VALUES (?, ?, ?)",
		time.Now().UnixNano(), hex.EncodeToString(sum[:]), string(payload),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	_, err = s.db.Exec(`
		DELETE FROM snapshots WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY created_at DESC LIMIT ?
		)`, keepSnapshots)
	if err != nil {
		log.Printf("[snapshot] prune failed: %v", err)
	}
	return nil
}

// Latest returns the newest capture that passes its integrity check.
// ok is false when no usable snapshot exists.
func (s *Store) Latest() (WorkspaceCapture, bool, error) {
	rows, err := s.db.Query(
		"SELECT digest, payload FROM snapshots ORDER BY created_at DESC LIMIT ?",
		keepSnapshots,
	)
	if err != nil {
		return WorkspaceCapture{}, false, fmt.Errorf("load snapshot: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var digest, payload string
		if err := rows.Scan(&digest, &payload); err != nil {
			continue
		}
		sum := sha1.Sum([]byte(payload))
		if hex.EncodeToString(sum[:]) != digest {
			log.Printf("[snapshot] digest mismatch, skipping row")
			continue
		}
		var cap WorkspaceCapture
		if err := json.Unmarshal([]byte(payload), &cap); err != nil {
			log.Printf("[snapshot] undecodable row: %v", err)
			continue
		}
		return cap, true, nil
	}
	return WorkspaceCapture{}, false, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
