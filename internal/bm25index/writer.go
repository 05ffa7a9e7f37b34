package bm25index

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure Go SQLite driver

	cgerrors "codegraph/internal/errors"
)

const dbFileName = "bm25.db"

// bm25WeightArgs mirrors the bm25_docs column order for bm25()'s positional
// weight arguments: entity_id, name, path, kind, content. entity_id and kind
// are stored but not weighted (spec.md §4.6 "exact-term" fields only serve
// filtering, not ranking); name outranks path, which outranks content.
const bm25WeightArgs = "0.0, 10.0, 5.0, 0.0, 1.0"

// Writer owns the on-disk FTS5 segment for one sparse-index build. It is
// created, used for exactly one bulk rewrite, and dropped per build
// (spec.md §5).
type Writer struct {
	db      *sql.DB
	baseDir string
	epoch   string
}

// OpenWriter opens (creating if needed) the BM25 segment under baseDir.
func OpenWriter(baseDir string) (*Writer, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, cgerrors.IOError("failed to create bm25 base dir", err)
	}
	dbPath := filepath.Join(baseDir, dbFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, cgerrors.IOError("failed to open bm25 database", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, cgerrors.IOError("failed to set bm25 pragma", err)
		}
	}

	w := &Writer{db: db, baseDir: baseDir}
	if err := w.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) initSchema() error {
	_, err := w.db.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS bm25_docs USING fts5(
			entity_id UNINDEXED,
			name,
			path,
			kind UNINDEXED,
			content
		)
	`)
	if err != nil {
		return cgerrors.SchemaCorruptionError("failed to create bm25_docs table", err)
	}
	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS bm25_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	if err != nil {
		return cgerrors.SchemaCorruptionError("failed to create bm25_meta table", err)
	}
	return nil
}

// Rebuild performs the full bulk-rewrite lifecycle: delete every existing
// document, insert every document in docs, then commit and bump the
// session epoch so readers know to reload (spec.md §5).
func (w *Writer) Rebuild(ctx context.Context, docs []Document) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return cgerrors.IOError("failed to begin bm25 rebuild transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM bm25_docs"); err != nil {
		return cgerrors.IOError("failed to clear bm25_docs", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bm25_docs (entity_id, name, path, kind, content)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return cgerrors.IOError("failed to prepare bm25 insert", err)
	}
	defer stmt.Close()

	for _, d := range docs {
		if _, err := stmt.ExecContext(ctx, d.EntityID, d.Name, d.Path, d.Kind, d.Content); err != nil {
			return cgerrors.IOError(fmt.Sprintf("failed to insert document %s", d.EntityID), err)
		}
	}

	epoch := uuid.NewString()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO bm25_meta (key, value) VALUES ('epoch', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, epoch); err != nil {
		return cgerrors.IOError("failed to record bm25 epoch", err)
	}

	if err := tx.Commit(); err != nil {
		return cgerrors.IOError("failed to commit bm25 rebuild", err)
	}
	w.epoch = epoch
	return nil
}

// NewReader opens a reader pinned to the writer's current snapshot. Readers
// opened before a later Rebuild continue to see the prior snapshot until
// Reload is called (spec.md §5).
func (w *Writer) NewReader(ctx context.Context) (*Reader, error) {
	tx, err := w.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, cgerrors.IOError("failed to open bm25 reader snapshot", err)
	}
	// SQLite starts a deferred transaction's read snapshot at its first
	// read, so read once now to pin the snapshot to this moment.
	var n int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM bm25_meta").Scan(&n); err != nil {
		_ = tx.Rollback()
		return nil, cgerrors.IOError("failed to pin bm25 reader snapshot", err)
	}
	return &Reader{db: w.db, tx: tx, epoch: w.epoch}, nil
}

// Close releases the writer's database handle.
func (w *Writer) Close() error {
	return w.db.Close()
}
