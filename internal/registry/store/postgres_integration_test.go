//go:build integration

package store_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"echoid/internal/registry/derive"
	"echoid/internal/registry/models"
	"echoid/internal/registry/store"
	"echoid/pkg/platform/sentinel"
	"echoid/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())

	schema, err := os.ReadFile("schema.sql")
	s.Require().NoError(err)
	s.postgres.Exec(s.T(), string(schema))

	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.postgres.Exec(s.T(), "TRUNCATE accounts")
}

func newAliasAccount(t *testing.T, username, suffix string) *store.Account {
	t.Helper()
	alias, err := models.NewAliasAccount("owner-key", username, suffix,
		models.ChainMapping{ChainType: models.ChainTypeEVM, ChainID: 1, Address: "0x1234"},
		time.Now().UnixNano())
	if err != nil {
		t.Fatalf("new alias account: %v", err)
	}
	return &store.Account{
		ID:    derive.AliasID(username, suffix),
		Kind:  store.KindAlias,
		Alias: alias,
	}
}

func (s *PostgresStoreSuite) TestCreateGetRoundTrip() {
	ctx := context.Background()
	account := newAliasAccount(s.T(), "alice", "myapp")
	s.Require().NoError(s.store.Create(ctx, account))

	found, err := s.store.Get(ctx, account.ID)
	s.Require().NoError(err)
	s.Equal(store.KindAlias, found.Kind)
	s.Equal(account.Alias.Username, found.Alias.Username)
	s.Equal(account.Alias.ChainMappings, found.Alias.ChainMappings)
	s.Equal(models.InitialReputation, found.Alias.Reputation)
}

func (s *PostgresStoreSuite) TestGetNotFound() {
	_, err := s.store.Get(context.Background(), derive.AliasID("nobody", "nowhere"))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

// Exactly one of many concurrent creators of the same identifier may win;
// this is the uniqueness mechanism the whole registry leans on.
func (s *PostgresStoreSuite) TestConcurrentCreateOneWinner() {
	ctx := context.Background()
	const goroutines = 50

	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Create(ctx, newAliasAccount(s.T(), "alice", "myapp"))
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load())
	s.Equal(int32(goroutines-1), conflictCount.Load())
}

func (s *PostgresStoreSuite) TestMutateAtomicity() {
	ctx := context.Background()
	account := newAliasAccount(s.T(), "alice", "myapp")
	s.Require().NoError(s.store.Create(ctx, account))

	boom := errors.New("boom")
	_, err := s.store.Mutate(ctx, account.ID, func(a *store.Account) error {
		a.Alias.Reputation = -1000
		return boom
	})
	s.Require().ErrorIs(err, boom)

	found, err := s.store.Get(ctx, account.ID)
	s.Require().NoError(err)
	s.Equal(models.InitialReputation, found.Alias.Reputation)
}

// Row locking serializes writers on the same account; every increment must
// land.
func (s *PostgresStoreSuite) TestConcurrentMutations() {
	ctx := context.Background()
	account := newAliasAccount(s.T(), "alice", "myapp")
	s.Require().NoError(s.store.Create(ctx, account))

	const workers = 16
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Mutate(ctx, account.ID, func(a *store.Account) error {
				a.Alias.ApplyReputationDelta(1, time.Now().UnixNano())
				return nil
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	found, err := s.store.Get(ctx, account.ID)
	s.Require().NoError(err)
	s.Equal(models.InitialReputation+workers, found.Alias.Reputation)
}
