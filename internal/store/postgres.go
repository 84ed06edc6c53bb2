package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/underwrite-cli/internal/model"
	"github.com/sells-group/underwrite-cli/internal/schedule"
)

// Pool is the subset of pgxpool.Pool the store needs; pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS basket_values (
	id         TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	basket_id  TEXT NOT NULL,
	doc        JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE(project_id, basket_id)
);

CREATE TABLE IF NOT EXISTS rate_tracks (
	id         TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	name       TEXT NOT NULL,
	steps      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE(project_id, name)
);

CREATE INDEX IF NOT EXISTS idx_basket_values_project ON basket_values(project_id);
CREATE INDEX IF NOT EXISTS idx_rate_tracks_project ON rate_tracks(project_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) LoadBasket(ctx context.Context, projectID, basketID string) (model.ValueMap, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM basket_values WHERE project_id = $1 AND basket_id = $2`,
		projectID, basketID,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: load basket %s/%s", projectID, basketID)
	}

	var values model.ValueMap
	if err := json.Unmarshal(doc, &values); err != nil {
		return nil, eris.Wrapf(err, "postgres: decode basket %s/%s", projectID, basketID)
	}
	return values, nil
}

func (s *PostgresStore) SaveBasket(ctx context.Context, projectID, basketID string, values model.ValueMap) error {
	doc, err := json.Marshal(values)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal basket values")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO basket_values (id, project_id, basket_id, doc, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (project_id, basket_id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`,
		uuid.New().String(), projectID, basketID, doc, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: save basket %s/%s", projectID, basketID)
}

func (s *PostgresStore) ListProjects(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT project_id FROM basket_values ORDER BY project_id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list projects")
	}
	defer rows.Close()

	var projects []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "postgres: scan project id")
		}
		projects = append(projects, id)
	}
	return projects, eris.Wrap(rows.Err(), "postgres: iterate projects")
}

func (s *PostgresStore) LoadTracks(ctx context.Context, projectID string) ([]schedule.Track, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, steps FROM rate_tracks WHERE project_id = $1 ORDER BY name`,
		projectID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: load tracks %s", projectID)
	}
	defer rows.Close()

	var tracks []schedule.Track
	for rows.Next() {
		var name string
		var stepsJSON []byte
		if err := rows.Scan(&name, &stepsJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan track")
		}
		var steps []schedule.Step
		if err := json.Unmarshal(stepsJSON, &steps); err != nil {
			return nil, eris.Wrapf(err, "postgres: decode track %s", name)
		}
		tracks = append(tracks, schedule.Track{Name: name, Steps: steps})
	}
	return tracks, eris.Wrap(rows.Err(), "postgres: iterate tracks")
}

func (s *PostgresStore) SaveTrack(ctx context.Context, projectID string, track schedule.Track) error {
	steps, err := json.Marshal(track.Steps)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal track steps")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO rate_tracks (id, project_id, name, steps, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (project_id, name) DO UPDATE SET steps = EXCLUDED.steps, updated_at = EXCLUDED.updated_at`,
		uuid.New().String(), projectID, track.Name, steps, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: save track %s/%s", projectID, track.Name)
}
