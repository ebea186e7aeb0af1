package screening

import (
	"context"
	"log/slog"

	dErrors "regula/pkg/domain-errors"
	"regula/pkg/platform/circuit"
	"regula/pkg/requestcontext"
)

// Screener runs parties through the provider, consulting the cache first.
type Screener struct {
	provider Provider
	cache    Cache
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

// Option configures the Screener.
type Option func(*Screener)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Screener) { s.logger = logger }
}

// WithBreaker guards provider calls with a circuit breaker. While the
// circuit is open, parties come back as potential matches so a provider
// outage can never wave someone through unscreened.
func WithBreaker(breaker *circuit.Breaker) Option {
	return func(s *Screener) { s.breaker = breaker }
}

// New constructs a Screener. Cache may be nil, in which case every check
// hits the provider.
func New(provider Provider, cache Cache, opts ...Option) *Screener {
	s := &Screener{
		provider: provider,
		cache:    cache,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScreenParty checks one party, serving from cache when a fresh result
// exists. Cache write failures are logged, not returned: a screening result
// we could not cache is still a valid result.
func (s *Screener) ScreenParty(ctx context.Context, party Party) (Result, error) {
	key := cacheKey(party.FullName)
	if s.cache != nil {
		if cached, err := s.cache.Find(ctx, key); err == nil {
			result := *cached
			// The cached outcome stands, but identity fields follow the
			// party being screened now.
			result.PartyID = party.ID
			result.PartyName = party.FullName
			return result, nil
		}
	}

	if s.breaker != nil && s.breaker.IsOpen() {
		return s.fallbackResult(ctx, party), nil
	}

	result, err := s.provider.Check(ctx, party)
	if err != nil {
		if s.breaker != nil {
			useFallback, change := s.breaker.RecordFailure()
			if change.Opened {
				s.logger.WarnContext(ctx, "screening provider circuit opened",
					"breaker", s.breaker.Name(),
					"error", err.Error(),
				)
			}
			if useFallback {
				return s.fallbackResult(ctx, party), nil
			}
		}
		return Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "sanctions check failed")
	}
	if s.breaker != nil {
		if _, change := s.breaker.RecordSuccess(); change.Closed {
			s.logger.InfoContext(ctx, "screening provider circuit closed",
				"breaker", s.breaker.Name())
		}
	}

	if s.cache != nil {
		if err := s.cache.Save(ctx, key, &result); err != nil {
			s.logger.WarnContext(ctx, "could not cache screening result",
				"party_id", party.ID.String(),
				"error", err.Error(),
			)
		}
	}
	return result, nil
}

// fallbackResult is the conservative answer given while the provider is
// unavailable: flag the party so adjudication happens manually. Fallback
// results are never cached.
func (s *Screener) fallbackResult(ctx context.Context, party Party) Result {
	return Result{
		PartyID:      party.ID,
		PartyName:    party.FullName,
		Outcome:      OutcomePotentialMatch,
		ListsChecked: party.Lists,
		Source:       "provider unavailable",
		CheckedAt:    requestcontext.Now(ctx),
	}
}

// ScreenAll checks every party in order. The first provider failure aborts
// the run; partial results are not returned.
func (s *Screener) ScreenAll(ctx context.Context, parties []Party) ([]Result, error) {
	results := make([]Result, 0, len(parties))
	for _, party := range parties {
		result, err := s.ScreenParty(ctx, party)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}
