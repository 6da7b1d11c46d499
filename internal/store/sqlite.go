package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/leonali030/policyengine-app/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode.
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
CREATE TABLE IF NOT EXISTS metadata_cache (
	id         TEXT PRIMARY KEY,
	country_id TEXT NOT NULL,
	payload    TEXT NOT NULL,
	cached_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS policy_cache (
	id         TEXT PRIMARY KEY,
	country_id TEXT NOT NULL,
	policy_id  TEXT NOT NULL,
	payload    TEXT NOT NULL,
	cached_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_metadata_cache_country ON metadata_cache(country_id);
CREATE INDEX IF NOT EXISTS idx_metadata_cache_expires ON metadata_cache(expires_at);
CREATE INDEX IF NOT EXISTS idx_policy_cache_lookup ON policy_cache(country_id, policy_id);
CREATE INDEX IF NOT EXISTS idx_policy_cache_expires ON policy_cache(expires_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetCachedMetadata(ctx context.Context, countryID string) (*model.Metadata, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM metadata_cache WHERE country_id = ? AND expires_at > datetime('now') ORDER BY cached_at DESC LIMIT 1`,
		countryID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get cached metadata %s", countryID)
	}
	var meta model.Metadata
	if err := json.Unmarshal([]byte(payload), &meta); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal cached metadata")
	}
	return &meta, nil
}

// sqliteTimeLayout matches datetime('now') so timestamps compare
// lexicographically inside queries.
const sqliteTimeLayout = "2006-01-02 15:04:05"

func (s *SQLiteStore) SetCachedMetadata(ctx context.Context, countryID string, meta *model.Metadata, ttl time.Duration) error {
	payload, err := json.Marshal(meta)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal metadata")
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO metadata_cache (id, country_id, payload, cached_at, expires_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), countryID, string(payload),
		now.Format(sqliteTimeLayout), now.Add(ttl).Format(sqliteTimeLayout),
	)
	return eris.Wrapf(err, "sqlite: set cached metadata %s", countryID)
}

func (s *SQLiteStore) GetCachedPolicy(ctx context.Context, countryID, policyID string) (*model.Policy, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM policy_cache WHERE country_id = ? AND policy_id = ? AND expires_at > datetime('now') ORDER BY cached_at DESC LIMIT 1`,
		countryID, policyID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get cached policy %s/%s", countryID, policyID)
	}
	var policy model.Policy
	if err := json.Unmarshal([]byte(payload), &policy); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal cached policy")
	}
	return &policy, nil
}

func (s *SQLiteStore) SetCachedPolicy(ctx context.Context, countryID string, policy *model.Policy, ttl time.Duration) error {
	payload, err := json.Marshal(policy)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal policy")
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO policy_cache (id, country_id, policy_id, payload, cached_at, expires_at) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), countryID, policy.ID, string(payload),
		now.Format(sqliteTimeLayout), now.Add(ttl).Format(sqliteTimeLayout),
	)
	return eris.Wrapf(err, "sqlite: set cached policy %s/%s", countryID, policy.ID)
}

func (s *SQLiteStore) DeleteExpired(ctx context.Context) (int, error) {
	total := 0
	for _, table := range []string{"metadata_cache", "policy_cache"} {
		res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE expires_at <= datetime('now')`)
		if err != nil {
			return total, eris.Wrapf(err, "sqlite: delete expired %s", table)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, eris.Wrap(err, "sqlite: rows affected")
		}
		total += int(n)
	}
	return total, nil
}
