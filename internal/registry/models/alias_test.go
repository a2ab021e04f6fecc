package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "echoid/pkg/domain-errors"
)

type AliasAccountSuite struct {
	suite.Suite
}

func TestAliasAccountSuite(t *testing.T) {
	suite.Run(t, new(AliasAccountSuite))
}

func (s *AliasAccountSuite) mapping() ChainMapping {
	return ChainMapping{ChainType: ChainTypeEVM, ChainID: 1, Address: "0x1234567890"}
}

func (s *AliasAccountSuite) TestNewAliasAccount() {
	s.Run("fresh alias starts at initial reputation with one mapping", func() {
		now := time.Now().UnixNano()
		a, err := NewAliasAccount("owner-key", "alice", "myapp", s.mapping(), now)
		s.Require().NoError(err)
		s.Equal(InitialReputation, a.Reputation)
		s.Len(a.ChainMappings, 1)
		s.Equal(now, a.ReputationUpdatedAt)
		s.Equal("alice@myapp", a.Handle())
	})

	s.Run("missing owner violates invariant", func() {
		_, err := NewAliasAccount("", "alice", "myapp", s.mapping(), time.Now().UnixNano())
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeInvariantViolation))
	})

	s.Run("non-positive time violates invariant", func() {
		_, err := NewAliasAccount("owner-key", "alice", "myapp", s.mapping(), 0)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeInvariantViolation))
	})
}

func (s *AliasAccountSuite) TestAppendChainMapping() {
	a, err := NewAliasAccount("owner-key", "alice", "myapp", s.mapping(), time.Now().UnixNano())
	s.Require().NoError(err)

	s.Run("append grows the list by exactly one", func() {
		next := ChainMapping{ChainType: ChainTypeSVM, ChainID: 1, Address: "SoLAddReSs"}
		a.AppendChainMapping(next)
		s.Require().Len(a.ChainMappings, 2)
		s.Equal(next, a.ChainMappings[1])
	})

	s.Run("duplicates are recorded as-is", func() {
		before := len(a.ChainMappings)
		a.AppendChainMapping(a.ChainMappings[0])
		s.Len(a.ChainMappings, before+1)
	})
}

func (s *AliasAccountSuite) TestApplyReputationDelta() {
	a, err := NewAliasAccount("owner-key", "alice", "myapp", s.mapping(), time.Now().UnixNano())
	s.Require().NoError(err)

	s.Run("delta applies without clamping", func() {
		a.ApplyReputationDelta(-50, time.Now().UnixNano())
		s.Equal(InitialReputation-50, a.Reputation)
	})

	s.Run("timestamp strictly increases across a burst", func() {
		prev := a.ReputationUpdatedAt
		now := time.Now().UnixNano()
		for range 1000 {
			// Same clock reading every iteration: the logical bump must
			// still force strict ordering.
			a.ApplyReputationDelta(1, now)
			s.Greater(a.ReputationUpdatedAt, prev)
			prev = a.ReputationUpdatedAt
		}
	})

	s.Run("wall clock wins when it is ahead", func() {
		future := a.ReputationUpdatedAt + int64(time.Second)
		a.ApplyReputationDelta(0, future)
		s.Equal(future, a.ReputationUpdatedAt)
	})
}

func (s *AliasAccountSuite) TestClone() {
	a, err := NewAliasAccount("owner-key", "alice", "myapp", s.mapping(), time.Now().UnixNano())
	s.Require().NoError(err)

	cp := a.Clone()
	cp.AppendChainMapping(ChainMapping{ChainType: ChainTypeSVM, ChainID: 2, Address: "other"})
	cp.Reputation = -999

	s.Len(a.ChainMappings, 1)
	s.Equal(InitialReputation, a.Reputation)
}
