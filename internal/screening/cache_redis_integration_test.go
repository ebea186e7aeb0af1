//go:build integration

package screening_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"regula/internal/screening"
	"regula/pkg/platform/sentinel"
	"regula/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *screening.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.cache = screening.NewRedisCache(s.redis.Client, 5*time.Minute)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestRoundTrip() {
	ctx := context.Background()
	result := &screening.Result{
		PartyID:      "person_001",
		PartyName:    "Jane Smith",
		Outcome:      screening.OutcomeClear,
		ListsChecked: []string{"OFAC", "UN", "EU"},
		Source:       "mock_sanctions",
		CheckedAt:    time.Now().UTC().Truncate(time.Second),
	}

	s.Require().NoError(s.cache.Save(ctx, "jane smith", result))

	found, err := s.cache.Find(ctx, "jane smith")
	s.Require().NoError(err)
	s.Equal(result.PartyID, found.PartyID)
	s.Equal(result.Outcome, found.Outcome)
	s.Equal(result.ListsChecked, found.ListsChecked)
	s.Equal(result.Source, found.Source)
}

func (s *RedisCacheSuite) TestMissReturnsErrNotFound() {
	_, err := s.cache.Find(context.Background(), "nobody")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisCacheSuite) TestTTLEviction() {
	ctx := context.Background()
	shortTTLCache := screening.NewRedisCache(s.redis.Client, 50*time.Millisecond)

	result := &screening.Result{
		PartyID:   "person_001",
		PartyName: "Jane Smith",
		Outcome:   screening.OutcomeClear,
		CheckedAt: time.Now(),
	}
	s.Require().NoError(shortTTLCache.Save(ctx, "jane smith", result))

	time.Sleep(90 * time.Millisecond)

	_, err := shortTTLCache.Find(ctx, "jane smith")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
