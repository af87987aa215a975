package tracker

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLStore keeps runs in a SQLite database. Config, tags and artifacts are
// stored as JSON columns.
type SQLStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	config      TEXT NOT NULL,
	tags        TEXT NOT NULL,
	artifacts   TEXT NOT NULL,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_fingerprint ON runs (fingerprint);
`

// NewSQLStore opens (creating if needed) a SQLite run database at path.
func NewSQLStore(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open run database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init run database: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Save(run Run) error {
	if run.ID == "" {
		return fmt.Errorf("run has no id")
	}
	config, err := json.Marshal(run.Config)
	if err != nil {
		return err
	}
	tags, err := json.Marshal(run.Tags)
	if err != nil {
		return err
	}
	artifacts, err := json.Marshal(run.Artifacts)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO runs
		(id, name, fingerprint, config, tags, artifacts, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Name, run.Fingerprint, string(config), string(tags),
		string(artifacts), run.CreatedAt.Format(time.RFC3339Nano))
	return err
}

func (s *SQLStore) Load(id string) (Run, error) {
	row := s.db.QueryRow(`SELECT id, name, fingerprint, config, tags, artifacts, created_at
		FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return Run{}, fmt.Errorf("run %q not found", id)
	}
	return run, err
}

func (s *SQLStore) List() ([]Run, error) {
	rows, err := s.db.Query(`SELECT id, name, fingerprint, config, tags, artifacts, created_at
		FROM runs ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLStore) FilterByTag(tag string) ([]Run, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	var out []Run
	for _, run := range all {
		if run.HasTag(tag) {
			out = append(out, run)
		}
	}
	return out, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(r rowScanner) (Run, error) {
	var run Run
	var config, tags, artifacts, created string
	if err := r.Scan(&run.ID, &run.Name, &run.Fingerprint, &config, &tags, &artifacts, &created); err != nil {
		return Run{}, err
	}
	if err := json.Unmarshal([]byte(config), &run.Config); err != nil {
		return Run{}, fmt.Errorf("decode run %q config: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(tags), &run.Tags); err != nil {
		return Run{}, err
	}
	if err := json.Unmarshal([]byte(artifacts), &run.Artifacts); err != nil {
		return Run{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Run{}, fmt.Errorf("decode run %q timestamp: %w", run.ID, err)
	}
	run.CreatedAt = t
	return run, nil
}
