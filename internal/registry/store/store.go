// Package store persists registry accounts keyed by their derived
// identifiers.
//
// The store exposes exactly three primitives: create-if-absent, read, and
// atomic read-modify-write. Those are sufficient for every registry
// transition, and keeping the surface this small is what makes the
// uniqueness and atomicity guarantees easy to audit.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"echoid/internal/registry/derive"
	"echoid/internal/registry/models"
)

// Kind discriminates the account union.
type Kind string

const (
	KindAdminConfig   Kind = "admin_config"
	KindProjectSuffix Kind = "project_suffix"
	KindAlias         Kind = "alias"
)

// Account is the stored envelope: one derived identifier, one kind, and
// exactly one non-nil payload matching that kind.
type Account struct {
	ID        derive.AccountID
	Kind      Kind
	Admin     *models.AdminConfig
	Suffix    *models.ProjectSuffix
	Alias     *models.AliasAccount
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is the persistence port for registry accounts.
//
// Implementations guarantee:
//   - Create fails with sentinel.ErrConflict when the identifier is taken,
//     leaving existing state untouched.
//   - Get and Mutate fail with sentinel.ErrNotFound for absent identifiers.
//   - Mutate runs fn with exclusive write access to the account; a non-nil
//     fn error aborts with no observable change, and the returned account
//     reflects the committed state.
//   - Returned accounts are private copies; mutating them does not touch
//     committed state.
type Store interface {
	Create(ctx context.Context, account *Account) error
	Get(ctx context.Context, id derive.AccountID) (*Account, error)
	Mutate(ctx context.Context, id derive.AccountID, fn func(*Account) error) (*Account, error)
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	cp := *a
	if a.Admin != nil {
		admin := *a.Admin
		cp.Admin = &admin
	}
	if a.Suffix != nil {
		suffix := *a.Suffix
		cp.Suffix = &suffix
	}
	if a.Alias != nil {
		cp.Alias = a.Alias.Clone()
	}
	return &cp
}

// payload returns the JSON encoding of the kind-matching payload.
func (a *Account) payload() ([]byte, error) {
	switch a.Kind {
	case KindAdminConfig:
		return json.Marshal(a.Admin)
	case KindProjectSuffix:
		return json.Marshal(a.Suffix)
	case KindAlias:
		return json.Marshal(a.Alias)
	default:
		return nil, fmt.Errorf("unknown account kind %q", a.Kind)
	}
}

// setPayload decodes raw into the payload slot matching kind.
func (a *Account) setPayload(kind Kind, raw []byte) error {
	a.Kind = kind
	switch kind {
	case KindAdminConfig:
		a.Admin = &models.AdminConfig{}
		return json.Unmarshal(raw, a.Admin)
	case KindProjectSuffix:
		a.Suffix = &models.ProjectSuffix{}
		return json.Unmarshal(raw, a.Suffix)
	case KindAlias:
		a.Alias = &models.AliasAccount{}
		return json.Unmarshal(raw, a.Alias)
	default:
		return fmt.Errorf("unknown account kind %q", kind)
	}
}
