// Package naming runs the asynchronous policy-rename workflow against
// the policy API's naming endpoint.
package naming

import (
	"context"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/leonali030/policyengine-app/internal/compare"
	"github.com/leonali030/policyengine-app/internal/model"
	"github.com/leonali030/policyengine-app/pkg/policyengine"
)

// Outcome is the result of one rename attempt, delivered asynchronously.
type Outcome struct {
	Generation uint64
	PolicyID   string
	Conflict   bool
	Message    string
	Err        error
}

// Service submits candidate names for a reform. Calls never block; the
// outcome is delivered to the provided callback when the response
// arrives. Overlapping calls are allowed to race with no cancellation;
// the last response to arrive wins the displayed result. The generation
// counter makes the race observable in logs without suppressing it.
type Service struct {
	client   policyengine.Client
	debounce *Debouncer

	gen  atomic.Uint64
	mu   sync.Mutex
	last Outcome
}

// NewService creates a naming service. debounce is the trailing delay
// applied by SubmitDebounced; Rename itself is immediate.
func NewService(client policyengine.Client, debounce time.Duration) *Service {
	return &Service{
		client:   client,
		debounce: NewDebouncer(debounce),
	}
}

// Rename fires a naming request and returns immediately. deliver is
// called exactly once with the outcome; it may be nil.
func (s *Service) Rename(ctx context.Context, countryID string, data model.ReformData, name string, deliver func(Outcome)) {
	gen := s.gen.Add(1)
	go func() {
		res, err := s.client.GetNewPolicyID(ctx, countryID, data, name)
		out := Outcome{Generation: gen, Err: err}
		if err == nil {
			out.PolicyID = res.PolicyID
			out.Conflict = res.Conflict
			out.Message = res.Message
		}

		s.mu.Lock()
		s.last = out
		s.mu.Unlock()

		switch {
		case out.Err != nil:
			zap.L().Warn("rename failed", zap.Uint64("generation", gen), zap.Error(out.Err))
		case out.Conflict:
			zap.L().Info("rename conflict", zap.Uint64("generation", gen), zap.String("message", out.Message))
		default:
			zap.L().Info("rename accepted", zap.Uint64("generation", gen), zap.String("policy_id", out.PolicyID))
		}

		if deliver != nil {
			deliver(out)
		}
	}()
}

// SubmitDebounced schedules Rename after the debounce delay; rapid
// successive submissions keep only the latest name.
func (s *Service) SubmitDebounced(ctx context.Context, countryID string, data model.ReformData, name string, deliver func(Outcome)) {
	s.debounce.Debounce(func() {
		s.Rename(ctx, countryID, data, name, deliver)
	})
}

// Last returns the most recently arrived outcome.
func (s *Service) Last() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// ApplyOutcome folds a rename outcome into the URL parameters. A success
// marks renamed=true; conflicts and failures leave the parameters
// untouched. No other comparison key is ever modified.
func ApplyOutcome(params url.Values, out Outcome) url.Values {
	if out.Err != nil || out.Conflict {
		return params
	}
	next := make(url.Values, len(params)+1)
	for k, vs := range params {
		next[k] = append([]string(nil), vs...)
	}
	next.Set(compare.KeyRenamed, "true")
	return next
}
