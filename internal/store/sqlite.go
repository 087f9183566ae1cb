// Package store persists the tracker document. The whole document lives
// under a single key, so load/save are atomic from the caller's viewpoint.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/JPE-Studio/time-tracker/internal/tracker"
)

// DocumentKey is the single key the application document is stored under.
const DocumentKey = "time-tracker:data"

const initDocumentsSQL = `
CREATE TABLE IF NOT EXISTS documents (
	key TEXT PRIMARY KEY,
	data TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLite keeps the serialized document in one row of a documents table.
type SQLite struct {
	db  *sql.DB
	key string
}

// OpenSQLite opens (creating directories and schema as needed) the database
// at path.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(initDocumentsSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLite{db: db, key: DocumentKey}, nil
}

// Load returns the stored document. A missing row yields the empty default
// document; so does a row that no longer parses, which is logged and treated
// as no data rather than surfaced as an error.
func (s *SQLite) Load() (tracker.Document, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM documents WHERE key = ?`, s.key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return tracker.NewDocument(), nil
	}
	if err != nil {
		return tracker.Document{}, fmt.Errorf("load document: %w", err)
	}

	doc := tracker.NewDocument()
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		slog.Warn("stored document is corrupt, starting from empty", "key", s.key, "error", err)
		return tracker.NewDocument(), nil
	}
	if doc.Clients == nil {
		doc.Clients = []tracker.Client{}
	}
	if doc.Projects == nil {
		doc.Projects = []tracker.Project{}
	}
	if doc.TimeEntries == nil {
		doc.TimeEntries = []tracker.TimeEntry{}
	}
	return doc, nil
}

// Save serializes the document and upserts it in a single statement.
func (s *SQLite) Save(doc tracker.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO documents (key, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		s.key, string(data), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
