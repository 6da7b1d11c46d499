// Package policyengine is a client for the PolicyEngine policy API:
// metadata snapshots, policy resolution and policy naming.
package policyengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/leonali030/policyengine-app/internal/model"
)

const (
	defaultBaseURL = "https://api.policyengine.org"

	// maxRetryAttempts bounds retries on 429/5xx responses.
	maxRetryAttempts = 3
	baseBackoff      = 250 * time.Millisecond
)

// Client talks to the policy API.
type Client interface {
	// GetMetadata fetches the country's metadata snapshot.
	GetMetadata(ctx context.Context, countryID string) (*model.Metadata, error)
	// GetPolicy resolves a policy id to its reform payload.
	GetPolicy(ctx context.Context, countryID, policyID string) (*model.Policy, error)
	// GetNewPolicyID submits a reform under a candidate name. A conflict
	// is a normal outcome, reported on NamingResult rather than as an
	// error.
	GetNewPolicyID(ctx context.Context, countryID string, data model.ReformData, label string) (*NamingResult, error)
}

// NamingResult is the outcome of a naming request.
type NamingResult struct {
	PolicyID string
	Conflict bool
	Message  string
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default client-side rate limit.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(r, burst)
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a policy API client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type apiEnvelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func (c *httpClient) GetMetadata(ctx context.Context, countryID string) (*model.Metadata, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/%s/metadata", countryID), nil)
	if err != nil {
		return nil, err
	}
	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, eris.Wrap(err, "policyengine: unmarshal metadata envelope")
	}
	var meta model.Metadata
	if err := json.Unmarshal(env.Result, &meta); err != nil {
		return nil, eris.Wrap(err, "policyengine: unmarshal metadata")
	}
	if meta.CountryID == "" {
		meta.CountryID = countryID
	}
	return &meta, nil
}

type policyResult struct {
	ID    json.Number      `json:"id"`
	Label string           `json:"label"`
	Data  model.ReformData `json:"policy_json"`
}

func (c *httpClient) GetPolicy(ctx context.Context, countryID, policyID string) (*model.Policy, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/%s/policy/%s", countryID, policyID), nil)
	if err != nil {
		return nil, err
	}
	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, eris.Wrap(err, "policyengine: unmarshal policy envelope")
	}
	var res policyResult
	if err := json.Unmarshal(env.Result, &res); err != nil {
		return nil, eris.Wrap(err, "policyengine: unmarshal policy")
	}
	id := res.ID.String()
	if id == "" {
		id = policyID
	}
	return &model.Policy{ID: id, Label: res.Label, Data: res.Data}, nil
}

type createPolicyRequest struct {
	Data  model.ReformData `json:"data"`
	Label string           `json:"label"`
}

type createPolicyResult struct {
	PolicyID json.Number `json:"policy_id"`
}

func (c *httpClient) GetNewPolicyID(ctx context.Context, countryID string, data model.ReformData, label string) (*NamingResult, error) {
	payload, err := json.Marshal(createPolicyRequest{Data: data, Label: label})
	if err != nil {
		return nil, eris.Wrap(err, "policyengine: marshal naming request")
	}
	body, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/%s/policy", countryID), payload)
	if err != nil {
		return nil, err
	}
	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, eris.Wrap(err, "policyengine: unmarshal naming envelope")
	}
	// A truthy status is the server's naming-conflict signal.
	if env.Status != 0 {
		return &NamingResult{Conflict: true, Message: env.Message}, nil
	}
	var res createPolicyResult
	if len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, &res); err != nil {
			return nil, eris.Wrap(err, "policyengine: unmarshal naming result")
		}
	}
	return &NamingResult{PolicyID: res.PolicyID.String()}, nil
}

// do performs one rate-limited request with retries on 429 and 5xx.
func (c *httpClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetryAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepBackoff(ctx, attempt); err != nil {
				return nil, err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "policyengine: rate limit wait")
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return nil, eris.Wrap(err, "policyengine: create request")
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "policyengine: send request")
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, eris.Wrap(err, "policyengine: read response")
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}
		lastErr = eris.Errorf("policyengine: unexpected status %d: %s", resp.StatusCode, string(body))
		if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// sleepBackoff waits with exponential backoff and jitter, honoring
// context cancellation.
func sleepBackoff(ctx context.Context, attempt int) error {
	delay := time.Duration(float64(baseBackoff) * math.Pow(2, float64(attempt-1)))
	delay += time.Duration(rand.Int63n(int64(delay) / 2))
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
