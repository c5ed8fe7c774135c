// Copyright (c) 2026 Bernard Field, GNU GPL-v3.0.

// Package library persists scraped card records and builds a search
// index over them.
package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bfield1/pfcards/pkg/types"
)

const (
	itemsDir  = "items"
	spellsDir = "spells"
	indexDir  = "index"
	dbFile    = "cards.db"
)

// Store manages the card library SQLite database.
type Store struct {
	db         *sql.DB
	libraryDir string
	maxResults int
}

// NewStore opens or creates the card database at libraryDir/index/cards.db,
// creating the schema if it does not exist.
func NewStore(cfg types.LibraryConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.Dir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		libraryDir: cfg.Dir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS cards (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			source TEXT,
			url TEXT,
			path TEXT NOT NULL,
			data TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cards_kind ON cards(kind)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			path TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='cards_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE cards_fts USING fts5(name, data, content=cards, content_rowid=rowid)`,
			`CREATE TRIGGER cards_ai AFTER INSERT ON cards BEGIN
				INSERT INTO cards_fts(rowid, name, data) VALUES (new.rowid, new.name, new.data);
			END`,
			`CREATE TRIGGER cards_ad AFTER DELETE ON cards BEGIN
				INSERT INTO cards_fts(cards_fts, rowid, name, data) VALUES('delete', old.rowid, old.name, old.data);
			END`,
			`CREATE TRIGGER cards_au AFTER UPDATE ON cards BEGIN
				INSERT INTO cards_fts(cards_fts, rowid, name, data) VALUES('delete', old.rowid, old.name, old.data);
				INSERT INTO cards_fts(rowid, name, data) VALUES (new.rowid, new.name, new.data);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from a library indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads card JSON files from dirs and populates the database,
// detecting new, changed, and unchanged files for incremental updates.
// When dirs is empty the library's items/ and spells/ directories are
// read. On success it writes export.yaml.
func (s *Store) Ingest(ctx context.Context, dirs []string, w io.Writer) (IngestSummary, error) {
	if len(dirs) == 0 {
		dirs = []string{
			filepath.Join(s.libraryDir, itemsDir),
			filepath.Join(s.libraryDir, spellsDir),
		}
	}

	var summary IngestSummary

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(w, "skipping %s: no such directory\n", dir)
			continue
		}
		if err != nil {
			return summary, fmt.Errorf("reading card directory %s: %w", dir, err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}

			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			default:
			}

			name := strings.TrimSuffix(entry.Name(), ".json")
			path := filepath.Join(dir, entry.Name())

			info, err := entry.Info()
			if err != nil {
				fmt.Fprintf(w, "failed  %s: %v\n", name, err)
				summary.Failed++
				continue
			}
			modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

			// Check whether the file has changed since last indexing.
			var storedModTime string
			err = s.db.QueryRowContext(ctx,
				`SELECT file_mod_time FROM indexing_status WHERE path = ?`, path,
			).Scan(&storedModTime)

			if err == nil && storedModTime == modTime {
				fmt.Fprintf(w, "skipped %s\n", name)
				summary.Skipped++
				continue
			}

			isUpdate := err == nil

			card, data, err := readCard(path)
			if err != nil {
				fmt.Fprintf(w, "failed  %s: %v\n", name, err)
				summary.Failed++
				continue
			}

			if err := s.ingestCard(ctx, card, path, string(data), modTime, isUpdate); err != nil {
				fmt.Fprintf(w, "failed  %s: %v\n", name, err)
				summary.Failed++
				continue
			}

			if isUpdate {
				fmt.Fprintf(w, "updated %s\n", name)
				summary.Updated++
			} else {
				fmt.Fprintf(w, "indexed %s\n", name)
				summary.Indexed++
			}
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	// Refresh export.yaml after successful ingestion.
	if summary.Indexed > 0 || summary.Updated > 0 {
		if err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}

	return summary, nil
}

// readCard loads a record file and derives the indexable card from it.
func readCard(path string) (Card, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Card{}, nil, err
	}

	var record map[string]any
	if err := json.Unmarshal(data, &record); err != nil {
		return Card{}, nil, fmt.Errorf("parse error: %v", err)
	}

	name, _ := record["name"].(string)
	if name == "" {
		return Card{}, nil, fmt.Errorf("record has no name")
	}

	kind := detectKind(record)
	if kind == "" {
		return Card{}, nil, fmt.Errorf("cannot tell item from spell")
	}

	card := Card{
		ID:   kind + "/" + slugify(name),
		Kind: kind,
		Name: name,
	}
	card.Source, _ = record["source"].(string)
	card.URL, _ = record["url"].(string)
	return card, data, nil
}

// detectKind tells items from spells by their distinguishing keys.
// Spell records always carry sr; item records carry at least one of
// the item-only fields.
func detectKind(record map[string]any) string {
	for _, key := range []string{"sr", "school", "classes"} {
		if _, ok := record[key]; ok {
			return "spell"
		}
	}
	for _, key := range []string{"aura", "slot", "cl", "price", "feat"} {
		if _, ok := record[key]; ok {
			return "item"
		}
	}
	return ""
}

// slugify lowercases a card name into a filesystem-safe id fragment.
func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '/':
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

func (s *Store) ingestCard(ctx context.Context, card Card, path, data, modTime string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Remove the old row if updating, so the FTS triggers stay in sync.
	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE path = ?`, path); err != nil {
			return fmt.Errorf("deleting old card: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO cards (id, kind, name, source, url, path, data)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			kind=excluded.kind, name=excluded.name, source=excluded.source,
			url=excluded.url, path=excluded.path, data=excluded.data`,
		card.ID, card.Kind, card.Name, card.Source, card.URL, path, data,
	)
	if err != nil {
		return fmt.Errorf("upserting card: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (path, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(path) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		path, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}
