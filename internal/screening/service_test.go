package screening

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regula/pkg/platform/circuit"
	"regula/pkg/platform/sentinel"
	"regula/pkg/requestcontext"
)

type countingProvider struct {
	inner Provider
	calls int
}

func (p *countingProvider) Check(ctx context.Context, party Party) (Result, error) {
	p.calls++
	return p.inner.Check(ctx, party)
}

func ctxAt(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}

func TestScreenParty(t *testing.T) {
	base := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	t.Run("clear outcome for unlisted party", func(t *testing.T) {
		screener := New(MockProvider{}, nil)
		result, err := screener.ScreenParty(ctxAt(base), Party{
			ID: "person_001", FullName: "Jane Smith", Lists: []string{"OFAC", "UN", "EU"},
		})
		require.NoError(t, err)
		assert.Equal(t, OutcomeClear, result.Outcome)
		assert.Equal(t, []string{"OFAC", "UN", "EU"}, result.ListsChecked)
		assert.Equal(t, "mock_sanctions", result.Source)
		assert.Equal(t, base, result.CheckedAt)
	})

	t.Run("potential match for watchlisted party", func(t *testing.T) {
		screener := New(MockProvider{Watchlist: map[string]bool{"bad actor": true}}, nil)
		result, err := screener.ScreenParty(ctxAt(base), Party{
			ID: "person_002", FullName: "  Bad   Actor ",
		})
		require.NoError(t, err)
		assert.Equal(t, OutcomePotentialMatch, result.Outcome)
		assert.Equal(t, []string{"OFAC", "UN"}, result.ListsChecked)
	})

	t.Run("cache hit skips provider", func(t *testing.T) {
		provider := &countingProvider{inner: MockProvider{}}
		screener := New(provider, NewInMemoryCache(time.Hour))

		_, err := screener.ScreenParty(ctxAt(base), Party{ID: "person_001", FullName: "Jane Smith"})
		require.NoError(t, err)
		result, err := screener.ScreenParty(ctxAt(base.Add(time.Minute)), Party{
			ID: "person_009", FullName: "Jane Smith",
		})
		require.NoError(t, err)

		assert.Equal(t, 1, provider.calls)
		// Identity fields follow the current party, not the cached one.
		assert.Equal(t, "person_009", result.PartyID.String())
	})

	t.Run("expired cache entry hits provider again", func(t *testing.T) {
		provider := &countingProvider{inner: MockProvider{}}
		screener := New(provider, NewInMemoryCache(time.Minute))

		_, err := screener.ScreenParty(ctxAt(base), Party{ID: "person_001", FullName: "Jane Smith"})
		require.NoError(t, err)
		_, err = screener.ScreenParty(ctxAt(base.Add(2*time.Minute)), Party{
			ID: "person_001", FullName: "Jane Smith",
		})
		require.NoError(t, err)

		assert.Equal(t, 2, provider.calls)
	})
}

func TestScreenAll(t *testing.T) {
	base := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	screener := New(MockProvider{Watchlist: map[string]bool{"bad actor": true}}, NewInMemoryCache(time.Hour))

	results, err := screener.ScreenAll(ctxAt(base), []Party{
		{ID: "person_001", FullName: "Jane Smith", Lists: []string{"OFAC", "UN", "EU"}},
		{ID: "person_002", FullName: "John Director"},
		{ID: "person_003", FullName: "Bad Actor"},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, OutcomeClear, results[0].Outcome)
	assert.Equal(t, OutcomeClear, results[1].Outcome)
	assert.Equal(t, OutcomePotentialMatch, results[2].Outcome)
}

func TestInMemoryCacheMiss(t *testing.T) {
	cache := NewInMemoryCache(time.Hour)
	_, err := cache.Find(context.Background(), "nobody")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

type failingProvider struct {
	calls int
}

func (p *failingProvider) Check(context.Context, Party) (Result, error) {
	p.calls++
	return Result{}, errors.New("list provider unreachable")
}

func TestBreakerFallback(t *testing.T) {
	base := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	t.Run("errors surface until the circuit opens", func(t *testing.T) {
		provider := &failingProvider{}
		screener := New(provider, nil,
			WithBreaker(circuit.New("screening", circuit.WithFailureThreshold(2))))

		_, err := screener.ScreenParty(ctxAt(base), Party{ID: "person_001", FullName: "Jane Smith"})
		require.Error(t, err)

		// The second failure opens the circuit and serves the fallback.
		result, err := screener.ScreenParty(ctxAt(base), Party{ID: "person_001", FullName: "Jane Smith"})
		require.NoError(t, err)
		assert.Equal(t, OutcomePotentialMatch, result.Outcome)
		assert.Equal(t, "provider unavailable", result.Source)
	})

	t.Run("open circuit skips the provider", func(t *testing.T) {
		provider := &failingProvider{}
		breaker := circuit.New("screening", circuit.WithFailureThreshold(1))
		screener := New(provider, nil, WithBreaker(breaker))

		_, err := screener.ScreenParty(ctxAt(base), Party{ID: "person_001", FullName: "Jane Smith"})
		require.NoError(t, err)
		require.True(t, breaker.IsOpen())

		result, err := screener.ScreenParty(ctxAt(base), Party{ID: "person_002", FullName: "John Director"})
		require.NoError(t, err)
		assert.Equal(t, OutcomePotentialMatch, result.Outcome)
		assert.Equal(t, 1, provider.calls)
	})

	t.Run("fallback results are not cached", func(t *testing.T) {
		provider := &failingProvider{}
		cache := NewInMemoryCache(time.Hour)
		breaker := circuit.New("screening", circuit.WithFailureThreshold(1))
		screener := New(provider, cache, WithBreaker(breaker))

		_, err := screener.ScreenParty(ctxAt(base), Party{ID: "person_001", FullName: "Jane Smith"})
		require.NoError(t, err)

		_, err = cache.Find(context.Background(), "jane smith")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
