package service

import (
	"context"
	"errors"

	"echoid/internal/registry/derive"
	"echoid/internal/registry/models"
	"echoid/internal/registry/store"
	dErrors "echoid/pkg/domain-errors"
	"echoid/pkg/platform/sentinel"
)

// requireAdmin verifies the signer is the registered admin. Side-effect
// free: it reads the singleton admin config and compares keys. An
// uninitialized registry has no admin, so nobody is authorized.
func (s *Service) requireAdmin(ctx context.Context, signer models.SignerKey) error {
	account, err := s.store.Get(ctx, derive.AdminID())
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeRegistryUnauthorized, "registry is not initialized")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load admin config")
	}
	if account.Kind != store.KindAdminConfig || account.Admin == nil {
		return dErrors.Wrap(sentinel.ErrInvalidState, dErrors.CodeInternal, "admin account is malformed")
	}
	if account.Admin.Admin != signer {
		return dErrors.New(dErrors.CodeRegistryUnauthorized, "signer is not the registry admin")
	}
	return nil
}

// requireOwner verifies the signer is the alias's recorded owner.
func requireOwner(signer models.SignerKey, alias *models.AliasAccount) error {
	if alias.Owner != signer {
		return dErrors.New(dErrors.CodeRegistryUnauthorized, "signer is not the alias owner")
	}
	return nil
}
