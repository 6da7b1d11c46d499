package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/leonali030/policyengine-app/internal/model"
	"github.com/leonali030/policyengine-app/internal/store"
	"github.com/leonali030/policyengine-app/pkg/policyengine"
)

// env bundles the client and cache shared by all commands.
type env struct {
	client policyengine.Client
	store  store.Store
}

func initEnv(ctx context.Context) (*env, error) {
	client := policyengine.NewClient(
		policyengine.WithBaseURL(cfg.API.BaseURL),
		policyengine.WithRateLimit(rate.Limit(cfg.API.RatePerSec), cfg.API.Burst),
		policyengine.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.API.TimeoutSecs) * time.Second,
		}),
	)

	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	return &env{client: client, store: st}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		zap.L().Warn("close store", zap.Error(err))
	}
}

// loadMetadata returns the country's metadata snapshot, from the cache
// when fresh.
func (e *env) loadMetadata(ctx context.Context, countryID string) (*model.Metadata, error) {
	cached, err := e.store.GetCachedMetadata(ctx, countryID)
	if err != nil {
		zap.L().Warn("metadata cache read failed", zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	meta, err := e.client.GetMetadata(ctx, countryID)
	if err != nil {
		return nil, err
	}
	if err := e.store.SetCachedMetadata(ctx, countryID, meta, cfg.Cache.TTL()); err != nil {
		zap.L().Warn("metadata cache write failed", zap.Error(err))
	}
	return meta, nil
}

// loadPolicy resolves a policy id, from the cache when fresh.
func (e *env) loadPolicy(ctx context.Context, countryID, policyID string) (*model.Policy, error) {
	cached, err := e.store.GetCachedPolicy(ctx, countryID, policyID)
	if err != nil {
		zap.L().Warn("policy cache read failed", zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	policy, err := e.client.GetPolicy(ctx, countryID, policyID)
	if err != nil {
		return nil, err
	}
	if err := e.store.SetCachedPolicy(ctx, countryID, policy, cfg.Cache.TTL()); err != nil {
		zap.L().Warn("policy cache write failed", zap.Error(err))
	}
	return policy, nil
}
