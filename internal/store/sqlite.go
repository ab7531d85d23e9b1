package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/memoryreel/memoryreel/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	project_id TEXT PRIMARY KEY,
	phase      TEXT NOT NULL,
	progress   INTEGER NOT NULL,
	state      TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// SQLiteStore is the production ProjectStore, a single-file embedded
// database. The full state is stored as one JSON document per project;
// phase and progress are duplicated into columns for cheap listing.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create store dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cannot open project store: %w", err)
	}

	// modernc.org/sqlite is not safe for concurrent writers on one file;
	// a single connection serializes access.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA synchronous=NORMAL;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma failed: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot bootstrap schema: %w", err)
	}

	log.Printf("✅ Project store opened: %s", path)
	return &SQLiteStore{db: db}, nil
}

// Save upserts the full project snapshot.
func (s *SQLiteStore) Save(state *models.ProjectState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("cannot serialize project %s: %w", state.ProjectID, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO projects (project_id, phase, progress, state, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET
			phase = excluded.phase,
			progress = excluded.progress,
			state = excluded.state,
			updated_at = excluded.updated_at
	`, state.ProjectID, string(state.Status.Phase), state.Status.Progress,
		string(data), state.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("cannot save project %s: %w", state.ProjectID, err)
	}
	return nil
}

// Load retrieves a project snapshot by id.
func (s *SQLiteStore) Load(projectID string) (*models.ProjectState, error) {
	var data string
	err := s.db.QueryRow(
		`SELECT state FROM projects WHERE project_id = ?`, projectID,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cannot load project %s: %w", projectID, err)
	}

	var state models.ProjectState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("cannot deserialize project %s: %w", projectID, err)
	}
	return &state, nil
}

// List returns project ids, most recently updated first.
func (s *SQLiteStore) List() ([]string, error) {
	rows, err := s.db.Query(`SELECT project_id FROM projects ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("cannot list projects: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("cannot scan project id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Delete removes a project snapshot.
func (s *SQLiteStore) Delete(projectID string) error {
	if _, err := s.db.Exec(`DELETE FROM projects WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("cannot delete project %s: %w", projectID, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
