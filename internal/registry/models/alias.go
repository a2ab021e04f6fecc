package models

import (
	dErrors "echoid/pkg/domain-errors"
)

// InitialReputation is assigned to every alias at registration.
const InitialReputation int64 = 10

// AliasAccount is the aggregate root for one registered alias.
//
// Invariants:
//   - Username and ProjectSuffix are immutable after registration; together
//     they determine the account identifier.
//   - ChainMappings holds at least one entry and only ever grows.
//   - Reputation starts at InitialReputation and moves by admin-applied
//     signed deltas with no floor or ceiling.
//   - ReputationUpdatedAt (unix nanoseconds) strictly increases across
//     successive updates, even when updates land inside the same clock tick.
//
// Ownership never transfers: the signer that registered the alias is its
// only writer for the account's lifetime.
type AliasAccount struct {
	Owner               SignerKey      `json:"owner"`
	Username            string         `json:"username"`
	ProjectSuffix       string         `json:"project_suffix"`
	ChainMappings       []ChainMapping `json:"chain_mappings"`
	Reputation          int64          `json:"reputation"`
	ReputationUpdatedAt int64          `json:"reputation_updated_at"`
}

// NewAliasAccount constructs a freshly registered alias with its initial
// chain mapping. Callers validate username, suffix, and mapping fields
// before construction; this constructor enforces the structural invariants.
func NewAliasAccount(owner SignerKey, username, projectSuffix string, initial ChainMapping, nowNanos int64) (*AliasAccount, error) {
	if owner.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "alias owner is required")
	}
	if nowNanos <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "registration time must be positive")
	}
	return &AliasAccount{
		Owner:               owner,
		Username:            username,
		ProjectSuffix:       projectSuffix,
		ChainMappings:       []ChainMapping{initial},
		Reputation:          InitialReputation,
		ReputationUpdatedAt: nowNanos,
	}, nil
}

// Handle renders the alias in its canonical "username@suffix" form.
func (a *AliasAccount) Handle() string {
	return a.Username + "@" + a.ProjectSuffix
}

// AppendChainMapping adds one mapping to the append-only list. No
// uniqueness check runs against existing entries: duplicate chain/address
// pairs are recorded as-is.
func (a *AliasAccount) AppendChainMapping(m ChainMapping) {
	a.ChainMappings = append(a.ChainMappings, m)
}

// ApplyReputationDelta applies a signed, unbounded delta and advances
// ReputationUpdatedAt. The stored timestamp is max(nowNanos, prev+1): the
// logical +1 fallback forces strict monotonicity even when two updates read
// the same clock value, without retry loops or observable intermediate
// state.
func (a *AliasAccount) ApplyReputationDelta(delta int64, nowNanos int64) {
	a.Reputation += delta
	if nowNanos <= a.ReputationUpdatedAt {
		nowNanos = a.ReputationUpdatedAt + 1
	}
	a.ReputationUpdatedAt = nowNanos
}

// Clone returns a deep copy. Stores hand out clones so callers can never
// mutate committed state outside a transaction.
func (a *AliasAccount) Clone() *AliasAccount {
	cp := *a
	cp.ChainMappings = append([]ChainMapping(nil), a.ChainMappings...)
	return &cp
}
