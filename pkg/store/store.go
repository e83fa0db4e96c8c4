// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package store is the durable tabular graph store backing every jnkn
// subsystem. It holds three logical tables - nodes, edges, scan_metadata -
// plus a node_files table recording which files own each node, and
// guarantees that per-file replacement is atomic: a reader never
// observes a half-applied file.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/kraklabs/jnkn/pkg/graph"
)

// ScanMetadata records the last parse outcome for a single file.
type ScanMetadata struct {
	Path      string `json:"path"`
	Hash      string `json:"hash"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
	Timestamp int64  `json:"ts"`
}

// Store is the sqlite-backed persistent graph store. It permits many
// concurrent readers and at most one writer.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// Open opens (creating if absent) the sqlite database at path and ensures
// its schema exists. The returned Store is safe for concurrent use.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// The single-writer model is enforced at the application level (via
	// s.mu); cap sqlite's own pool so WAL readers never contend with each
	// other over one connection.
	db.SetMaxOpenConns(8)

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Path returns the filesystem path of the backing database.
func (s *Store) Path() string {
	return s.path
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	type          TEXT NOT NULL,
	path          TEXT NOT NULL DEFAULT '',
	metadata_json TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_nodes_path ON nodes(path);
CREATE INDEX IF NOT EXISTS idx_nodes_type ON nodes(type);

CREATE TABLE IF NOT EXISTS edges (
	source_id     TEXT NOT NULL,
	target_id     TEXT NOT NULL,
	type          TEXT NOT NULL,
	confidence    REAL NOT NULL,
	metadata_json TEXT NOT NULL DEFAULT '{}',
	PRIMARY KEY (source_id, target_id, type)
);
CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id);

CREATE TABLE IF NOT EXISTS scan_metadata (
	path       TEXT PRIMARY KEY,
	hash       TEXT NOT NULL,
	node_count INTEGER NOT NULL,
	edge_count INTEGER NOT NULL,
	ts         INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS node_files (
	node_id TEXT NOT NULL,
	path    TEXT NOT NULL,
	PRIMARY KEY (node_id, path)
);
CREATE INDEX IF NOT EXISTS idx_node_files_path ON node_files(path);
`

// ensureSchema creates the jnkn tables if they do not already exist. It is
// idempotent and safe to call on every open.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(schema)
	return err
}

// UpsertNodes inserts or replaces a batch of nodes, idempotent by id. It
// also records which source file each node came from, so a later
// DeleteNodesByFile can find it even if the node's own Path field is
// empty (e.g. an env_var node surfaced by two different files).
func (s *Store) UpsertNodes(ctx context.Context, file string, nodes []graph.Node) error {
	if len(nodes) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert nodes: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := upsertNodesTx(ctx, tx, file, nodes); err != nil {
		return err
	}
	return tx.Commit()
}

func upsertNodesTx(ctx context.Context, tx *sql.Tx, file string, nodes []graph.Node) error {
	nodeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (id, name, type, path, metadata_json)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			path = excluded.path,
			metadata_json = excluded.metadata_json
	`)
	if err != nil {
		return fmt.Errorf("prepare node upsert: %w", err)
	}
	defer nodeStmt.Close()

	fileStmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO node_files (node_id, path) VALUES (?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare node_files insert: %w", err)
	}
	defer fileStmt.Close()

	for _, n := range nodes {
		metaJSON, err := json.Marshal(n.Metadata)
		if err != nil {
			return fmt.Errorf("marshal node metadata for %s: %w", n.ID, err)
		}
		if _, err := nodeStmt.ExecContext(ctx, n.ID, n.Name, string(n.Type), n.Path, string(metaJSON)); err != nil {
			return fmt.Errorf("upsert node %s: %w", n.ID, err)
		}
		if file != "" {
			if _, err := fileStmt.ExecContext(ctx, n.ID, file); err != nil {
				return fmt.Errorf("record node_files for %s: %w", n.ID, err)
			}
		}
	}
	return nil
}

// UpsertEdges inserts or replaces a batch of edges, idempotent by the
// (source, target, type) primary key.
func (s *Store) UpsertEdges(ctx context.Context, edges []graph.Edge) error {
	if len(edges) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert edges: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := upsertEdgesTx(ctx, tx, edges); err != nil {
		return err
	}
	return tx.Commit()
}

func upsertEdgesTx(ctx context.Context, tx *sql.Tx, edges []graph.Edge) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO edges (source_id, target_id, type, confidence, metadata_json)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(source_id, target_id, type) DO UPDATE SET
			confidence = excluded.confidence,
			metadata_json = excluded.metadata_json
	`)
	if err != nil {
		return fmt.Errorf("prepare edge upsert: %w", err)
	}
	defer stmt.Close()

	for _, e := range edges {
		metaJSON, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("marshal edge metadata for %s->%s: %w", e.SourceID, e.TargetID, err)
		}
		if _, err := stmt.ExecContext(ctx, e.SourceID, e.TargetID, string(e.Type), e.Confidence, string(metaJSON)); err != nil {
			return fmt.Errorf("upsert edge %s->%s: %w", e.SourceID, e.TargetID, err)
		}
	}
	return nil
}

// DeleteNodesByFile removes every node that file contributed and was not
// also contributed by another live file, cascading to any edge incident on
// a removed node.
func (s *Store) DeleteNodesByFile(ctx context.Context, file string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete nodes by file: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := deleteNodesByFileTx(ctx, tx, file); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteNodesByFileTx(ctx context.Context, tx *sql.Tx, file string) error {
	rows, err := tx.QueryContext(ctx, `SELECT node_id FROM node_files WHERE path = ?`, file)
	if err != nil {
		return fmt.Errorf("query node_files: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scan node_files: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	if _, err := tx.ExecContext(ctx, `DELETE FROM node_files WHERE path = ?`, file); err != nil {
		return fmt.Errorf("delete node_files: %w", err)
	}

	for _, id := range ids {
		var stillOwned int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM node_files WHERE node_id = ?`, id).Scan(&stillOwned); err != nil {
			return fmt.Errorf("check remaining owners of %s: %w", id, err)
		}
		if stillOwned > 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM edges WHERE source_id = ? OR target_id = ?`, id, id); err != nil {
			return fmt.Errorf("cascade delete edges for %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete node %s: %w", id, err)
		}
	}
	return nil
}

// DeleteScanMetadata removes the scan_metadata row for file, if any.
func (s *Store) DeleteScanMetadata(ctx context.Context, file string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM scan_metadata WHERE path = ?`, file)
	if err != nil {
		return fmt.Errorf("delete scan metadata for %s: %w", file, err)
	}
	return nil
}

// SaveScanMetadata upserts the scan_metadata row for a file.
func (s *Store) SaveScanMetadata(ctx context.Context, meta ScanMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return saveScanMetadataTx(ctx, s.db, meta)
}

func saveScanMetadataTx(ctx context.Context, execer interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}, meta ScanMetadata) error {
	_, err := execer.ExecContext(ctx, `
		INSERT INTO scan_metadata (path, hash, node_count, edge_count, ts)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			hash = excluded.hash,
			node_count = excluded.node_count,
			edge_count = excluded.edge_count,
			ts = excluded.ts
	`, meta.Path, meta.Hash, meta.NodeCount, meta.EdgeCount, meta.Timestamp)
	if err != nil {
		return fmt.Errorf("save scan metadata for %s: %w", meta.Path, err)
	}
	return nil
}

// ScanMetadataFor returns the stored scan metadata for path, and whether a
// row existed.
func (s *Store) ScanMetadataFor(ctx context.Context, path string) (ScanMetadata, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var meta ScanMetadata
	row := s.db.QueryRowContext(ctx, `SELECT path, hash, node_count, edge_count, ts FROM scan_metadata WHERE path = ?`, path)
	err := row.Scan(&meta.Path, &meta.Hash, &meta.NodeCount, &meta.EdgeCount, &meta.Timestamp)
	if err == sql.ErrNoRows {
		return ScanMetadata{}, false, nil
	}
	if err != nil {
		return ScanMetadata{}, false, fmt.Errorf("load scan metadata for %s: %w", path, err)
	}
	return meta, true, nil
}

// ReplaceFile performs the hot-path atomic per-file replacement: delete
// nodes-by-file(path), insert new nodes, insert new edges, write scan
// metadata, all within a single transaction. A reader that begins before
// this call sees the old state; one that begins after sees the new state;
// partial states are never visible.
func (s *Store) ReplaceFile(ctx context.Context, path string, nodes []graph.Node, edges []graph.Edge, meta ScanMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace file: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := deleteNodesByFileTx(ctx, tx, path); err != nil {
		return err
	}
	if err := upsertNodesTx(ctx, tx, path, nodes); err != nil {
		return err
	}
	if err := upsertEdgesTx(ctx, tx, edges); err != nil {
		return err
	}
	if err := saveScanMetadataTx(ctx, tx, meta); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadGraph hydrates the full in-memory view from the store. It is the
// only operation pkg/memgraph needs to build a snapshot.
func (s *Store) LoadGraph(ctx context.Context) ([]graph.Node, []graph.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes, err := s.loadAllNodes(ctx)
	if err != nil {
		return nil, nil, err
	}
	edges, err := s.loadAllEdges(ctx)
	if err != nil {
		return nil, nil, err
	}
	return nodes, edges, nil
}

func (s *Store) loadAllNodes(ctx context.Context) ([]graph.Node, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, type, path, metadata_json FROM nodes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	var out []graph.Node
	for rows.Next() {
		var n graph.Node
		var nodeType, metaJSON string
		if err := rows.Scan(&n.ID, &n.Name, &nodeType, &n.Path, &metaJSON); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		n.Type = graph.NodeType(nodeType)
		if metaJSON != "" && metaJSON != "{}" {
			if err := json.Unmarshal([]byte(metaJSON), &n.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata for %s: %w", n.ID, err)
			}
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) loadAllEdges(ctx context.Context) ([]graph.Edge, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT source_id, target_id, type, confidence, metadata_json FROM edges ORDER BY source_id, target_id, type`)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	var out []graph.Edge
	for rows.Next() {
		var e graph.Edge
		var edgeType, metaJSON string
		if err := rows.Scan(&e.SourceID, &e.TargetID, &edgeType, &e.Confidence, &metaJSON); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		e.Type = graph.EdgeType(edgeType)
		if metaJSON != "" && metaJSON != "{}" {
			if err := json.Unmarshal([]byte(metaJSON), &e.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata for %s->%s: %w", e.SourceID, e.TargetID, err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
