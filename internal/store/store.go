// Package store caches metadata snapshots and resolved policies so
// repeated invocations don't refetch them from the policy API.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/leonali030/policyengine-app/internal/model"
)

// Store is the persistence interface for the snapshot cache. Get methods
// return (nil, nil) on a cache miss or an expired entry.
type Store interface {
	GetCachedMetadata(ctx context.Context, countryID string) (*model.Metadata, error)
	SetCachedMetadata(ctx context.Context, countryID string, meta *model.Metadata, ttl time.Duration) error

	GetCachedPolicy(ctx context.Context, countryID, policyID string) (*model.Policy, error)
	SetCachedPolicy(ctx context.Context, countryID string, policy *model.Policy, ttl time.Duration) error

	DeleteExpired(ctx context.Context) (int, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "sqlite":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(ctx, dsn)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
