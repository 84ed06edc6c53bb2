package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/underwrite-cli/internal/model"
	"github.com/sells-group/underwrite-cli/internal/schedule"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS basket_values (
	id         TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	basket_id  TEXT NOT NULL,
	doc        TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE(project_id, basket_id)
);

CREATE TABLE IF NOT EXISTS rate_tracks (
	id         TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	name       TEXT NOT NULL,
	steps      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE(project_id, name)
);

CREATE INDEX IF NOT EXISTS idx_basket_values_project ON basket_values(project_id);
CREATE INDEX IF NOT EXISTS idx_rate_tracks_project ON rate_tracks(project_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) LoadBasket(ctx context.Context, projectID, basketID string) (model.ValueMap, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM basket_values WHERE project_id = ? AND basket_id = ?`,
		projectID, basketID,
	).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: load basket %s/%s", projectID, basketID)
	}

	var values model.ValueMap
	if err := json.Unmarshal([]byte(doc), &values); err != nil {
		return nil, eris.Wrapf(err, "sqlite: decode basket %s/%s", projectID, basketID)
	}
	return values, nil
}

func (s *SQLiteStore) SaveBasket(ctx context.Context, projectID, basketID string, values model.ValueMap) error {
	doc, err := json.Marshal(values)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal basket values")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO basket_values (id, project_id, basket_id, doc, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(project_id, basket_id) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		uuid.New().String(), projectID, basketID, string(doc), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: save basket %s/%s", projectID, basketID)
}

func (s *SQLiteStore) ListProjects(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT project_id FROM basket_values ORDER BY project_id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list projects")
	}
	defer rows.Close()

	var projects []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan project id")
		}
		projects = append(projects, id)
	}
	return projects, eris.Wrap(rows.Err(), "sqlite: iterate projects")
}

func (s *SQLiteStore) LoadTracks(ctx context.Context, projectID string) ([]schedule.Track, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, steps FROM rate_tracks WHERE project_id = ? ORDER BY name`,
		projectID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: load tracks %s", projectID)
	}
	defer rows.Close()

	var tracks []schedule.Track
	for rows.Next() {
		var name, stepsJSON string
		if err := rows.Scan(&name, &stepsJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan track")
		}
		var steps []schedule.Step
		if err := json.Unmarshal([]byte(stepsJSON), &steps); err != nil {
			return nil, eris.Wrapf(err, "sqlite: decode track %s", name)
		}
		tracks = append(tracks, schedule.Track{Name: name, Steps: steps})
	}
	return tracks, eris.Wrap(rows.Err(), "sqlite: iterate tracks")
}

func (s *SQLiteStore) SaveTrack(ctx context.Context, projectID string, track schedule.Track) error {
	steps, err := json.Marshal(track.Steps)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal track steps")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO rate_tracks (id, project_id, name, steps, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(project_id, name) DO UPDATE SET steps = excluded.steps, updated_at = excluded.updated_at`,
		uuid.New().String(), projectID, track.Name, string(steps), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: save track %s/%s", projectID, track.Name)
}
