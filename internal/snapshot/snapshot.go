// Package snapshot persists a built project to a SQLite file so that it can
// be queried without walking the project again.
package snapshot

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ryotapoi/mdref/internal/core"
	"github.com/ryotapoi/mdref/internal/logger"
)

// FileName is the snapshot file inside the project's data directory.
const FileName = "index.sqlite"

var log = logger.GetLogger("snapshot")

// Path returns the snapshot location for the project at root.
func Path(root string) string {
	return filepath.Join(root, core.DataDirName, FileName)
}

// BuildInfo identifies one snapshot.
type BuildInfo struct {
	ID        string    `json:"build_id"`
	CreatedAt time.Time `json:"created_at"`
	Root      string    `json:"root"`
}

type dbExecer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

func openDBAt(path string) (*sql.DB, error) {
	return sql.Open("sqlite", fmt.Sprintf("file:%s", path))
}

func initSchema(db dbExecer) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS entries (
			path              TEXT PRIMARY KEY,
			display_name      TEXT NOT NULL,
			kind              TEXT NOT NULL,
			is_character      INTEGER NOT NULL DEFAULT 0,
			glossary          INTEGER NOT NULL DEFAULT 0,
			has_foreshadowing INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_entries_kind ON entries(kind);`,
		`CREATE TABLE IF NOT EXISTS edges (
			id       INTEGER PRIMARY KEY,
			source   TEXT NOT NULL,
			target   TEXT NOT NULL,
			position INTEGER NOT NULL,
			UNIQUE(source, target)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source);`,
		`CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target);`,
		`CREATE TABLE IF NOT EXISTS invalid_refs (
			id     INTEGER PRIMARY KEY,
			source TEXT NOT NULL,
			target TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_invalid_source ON invalid_refs(source);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Write stores the loaded state of p in <root>/.mdref/index.sqlite. The
// file is written next to its final location and renamed into place, so a
// failed write leaves the previous snapshot intact.
func Write(p *core.Project) (*BuildInfo, error) {
	dir := filepath.Join(p.Root, core.DataDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	final := Path(p.Root)
	tmpPath := final + ".tmp"
	_ = os.Remove(tmpPath)
	defer os.Remove(tmpPath)

	db, err := openDBAt(tmpPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := initSchema(db); err != nil {
		return nil, err
	}

	info := &BuildInfo{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Root:      p.Root,
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	if err := fill(tx, p, info); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if err := db.Close(); err != nil {
		return nil, err
	}
	if err := os.Rename(tmpPath, final); err != nil {
		return nil, err
	}
	log.Infof("snapshot %s written to %s", info.ID, final)
	return info, nil
}

func fill(db dbExecer, p *core.Project, info *BuildInfo) error {
	meta := map[string]string{
		"build_id":   info.ID,
		"created_at": info.CreatedAt.Format(time.RFC3339),
		"root":       info.Root,
	}
	for k, v := range meta {
		if _, err := db.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return err
		}
	}

	for _, e := range p.Files.Entries() {
		_, err := db.Exec(
			`INSERT INTO entries (path, display_name, kind, is_character, glossary, has_foreshadowing)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			e.Path, e.DisplayName, string(e.Kind), boolInt(e.IsCharacter), boolInt(e.Glossary), boolInt(e.HasForeshadowing),
		)
		if err != nil {
			return err
		}
	}

	for _, src := range p.Refs.Sources() {
		for i, target := range p.Refs.GetReferences(src).References {
			if _, err := db.Exec(
				`INSERT INTO edges (source, target, position) VALUES (?, ?, ?)`,
				src, target, i,
			); err != nil {
				return err
			}
		}
		for _, bad := range p.Refs.GetInvalidReferences(src) {
			if _, err := db.Exec(`INSERT INTO invalid_refs (source, target) VALUES (?, ?)`, src, bad); err != nil {
				return err
			}
		}
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Snapshot is an open, read-only view of a written snapshot.
type Snapshot struct {
	db   *sql.DB
	path string
}

// Open opens the snapshot of the project at root. It returns
// core.ErrIndexMissing when none has been written yet.
func Open(root string) (*Snapshot, error) {
	p := Path(root)
	if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
		return nil, core.ErrIndexMissing
	}
	db, err := openDBAt(p)
	if err != nil {
		return nil, err
	}
	return &Snapshot{db: db, path: p}, nil
}

// Close releases the database handle.
func (s *Snapshot) Close() error {
	return s.db.Close()
}

// BuildInfo returns the identity of the snapshot.
func (s *Snapshot) BuildInfo() (*BuildInfo, error) {
	rows, err := s.db.Query(`SELECT key, value FROM meta`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	info := &BuildInfo{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		switch k {
		case "build_id":
			info.ID = v
		case "root":
			info.Root = v
		case "created_at":
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return nil, fmt.Errorf("snapshot %s: bad created_at %q: %w", s.path, v, err)
			}
			info.CreatedAt = t
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if info.ID == "" {
		return nil, fmt.Errorf("snapshot %s: missing build id", s.path)
	}
	return info, nil
}
