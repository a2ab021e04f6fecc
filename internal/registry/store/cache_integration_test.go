//go:build integration

package store_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"echoid/internal/registry/derive"
	"echoid/internal/registry/models"
	"echoid/internal/registry/store"
	"echoid/pkg/platform/sentinel"
	"echoid/pkg/testutil/containers"
)

type CacheStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	inner *store.InMemory
	cache *store.Cache
}

func TestCacheStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CacheStoreSuite))
}

func (s *CacheStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *CacheStoreSuite) SetupTest() {
	s.redis.FlushAll(s.T())
	s.inner = store.NewInMemory()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	s.cache = store.NewCache(s.inner, s.redis.Client, time.Minute, logger)
}

func (s *CacheStoreSuite) TestReadThrough() {
	ctx := context.Background()
	account := newAliasAccount(s.T(), "alice", "myapp")
	s.Require().NoError(s.cache.Create(ctx, account))

	// First read populates the cache, second is served from it. The cached
	// copy must round-trip every field.
	for range 2 {
		found, err := s.cache.Get(ctx, account.ID)
		s.Require().NoError(err)
		s.Equal(store.KindAlias, found.Kind)
		s.Equal(account.Alias.Username, found.Alias.Username)
		s.Equal(account.Alias.ChainMappings, found.Alias.ChainMappings)
		s.Equal(account.Alias.Reputation, found.Alias.Reputation)
	}
}

func (s *CacheStoreSuite) TestCachedReadSurvivesInnerDeletion() {
	ctx := context.Background()
	account := newAliasAccount(s.T(), "alice", "myapp")
	s.Require().NoError(s.cache.Create(ctx, account))

	_, err := s.cache.Get(ctx, account.ID)
	s.Require().NoError(err)

	// Swap in an empty inner store. The cached entry still answers reads,
	// proving the second Get never touched the backend.
	s.cache = store.NewCache(store.NewInMemory(), s.redis.Client, time.Minute,
		slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	found, err := s.cache.Get(ctx, account.ID)
	s.Require().NoError(err)
	s.Equal(account.Alias.Username, found.Alias.Username)
}

func (s *CacheStoreSuite) TestMutateInvalidates() {
	ctx := context.Background()
	account := newAliasAccount(s.T(), "alice", "myapp")
	s.Require().NoError(s.cache.Create(ctx, account))

	_, err := s.cache.Get(ctx, account.ID)
	s.Require().NoError(err)

	_, err = s.cache.Mutate(ctx, account.ID, func(a *store.Account) error {
		a.Alias.ApplyReputationDelta(5, time.Now().UnixNano())
		return nil
	})
	s.Require().NoError(err)

	found, err := s.cache.Get(ctx, account.ID)
	s.Require().NoError(err)
	s.Equal(models.InitialReputation+5, found.Alias.Reputation)
}

func (s *CacheStoreSuite) TestMissPassesThrough() {
	_, err := s.cache.Get(context.Background(), derive.AliasID("nobody", "nowhere"))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
