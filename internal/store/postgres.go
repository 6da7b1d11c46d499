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

	"github.com/leonali030/policyengine-app/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies
// it for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS metadata_cache (
	id         TEXT PRIMARY KEY,
	country_id TEXT NOT NULL,
	payload    JSONB NOT NULL,
	cached_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS policy_cache (
	id         TEXT PRIMARY KEY,
	country_id TEXT NOT NULL,
	policy_id  TEXT NOT NULL,
	payload    JSONB NOT NULL,
	cached_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_metadata_cache_country ON metadata_cache(country_id);
CREATE INDEX IF NOT EXISTS idx_metadata_cache_expires ON metadata_cache(expires_at);
CREATE INDEX IF NOT EXISTS idx_policy_cache_lookup ON policy_cache(country_id, policy_id);
CREATE INDEX IF NOT EXISTS idx_policy_cache_expires ON policy_cache(expires_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) GetCachedMetadata(ctx context.Context, countryID string) (*model.Metadata, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM metadata_cache WHERE country_id = $1 AND expires_at > now() ORDER BY cached_at DESC LIMIT 1`,
		countryID,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get cached metadata %s", countryID)
	}
	var meta model.Metadata
	if err := json.Unmarshal(payload, &meta); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal cached metadata")
	}
	return &meta, nil
}

func (s *PostgresStore) SetCachedMetadata(ctx context.Context, countryID string, meta *model.Metadata, ttl time.Duration) error {
	payload, err := json.Marshal(meta)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal metadata")
	}
	now := time.Now().UTC()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO metadata_cache (id, country_id, payload, cached_at, expires_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), countryID, payload, now, now.Add(ttl),
	)
	return eris.Wrapf(err, "postgres: set cached metadata %s", countryID)
}

func (s *PostgresStore) GetCachedPolicy(ctx context.Context, countryID, policyID string) (*model.Policy, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM policy_cache WHERE country_id = $1 AND policy_id = $2 AND expires_at > now() ORDER BY cached_at DESC LIMIT 1`,
		countryID, policyID,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get cached policy %s/%s", countryID, policyID)
	}
	var policy model.Policy
	if err := json.Unmarshal(payload, &policy); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal cached policy")
	}
	return &policy, nil
}

func (s *PostgresStore) SetCachedPolicy(ctx context.Context, countryID string, policy *model.Policy, ttl time.Duration) error {
	payload, err := json.Marshal(policy)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal policy")
	}
	now := time.Now().UTC()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO policy_cache (id, country_id, policy_id, payload, cached_at, expires_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New().String(), countryID, policy.ID, payload, now, now.Add(ttl),
	)
	return eris.Wrapf(err, "postgres: set cached policy %s/%s", countryID, policy.ID)
}

func (s *PostgresStore) DeleteExpired(ctx context.Context) (int, error) {
	total := 0
	for _, table := range []string{"metadata_cache", "policy_cache"} {
		tag, err := s.pool.Exec(ctx, `DELETE FROM `+table+` WHERE expires_at <= now()`)
		if err != nil {
			return total, eris.Wrapf(err, "postgres: delete expired %s", table)
		}
		total += int(tag.RowsAffected())
	}
	return total, nil
}
