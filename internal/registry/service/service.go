// Package service implements the registry's state transitions.
//
// Each operation is one indivisible transaction over the accounts it
// touches: validation and authorization run before any state change, and
// every mutation goes through the store's create-if-absent or atomic
// read-modify-write primitive, so a failure at any point leaves no
// observable partial state.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"echoid/internal/registry/derive"
	"echoid/internal/registry/metrics"
	"echoid/internal/registry/models"
	"echoid/internal/registry/store"
	dErrors "echoid/pkg/domain-errors"
	"echoid/pkg/platform/audit"
	"echoid/pkg/platform/sentinel"
	"echoid/pkg/requestcontext"
)

// RegisterAliasParams carries the inputs for alias registration. The initial
// chain mapping is mandatory: an alias without at least one address would
// resolve to nothing.
type RegisterAliasParams struct {
	Username      string
	ProjectSuffix string
	ChainType     models.ChainType
	ChainID       int64
	Address       string
}

// AddChainMappingParams carries the inputs for appending one chain mapping
// to an existing alias.
type AddChainMappingParams struct {
	Username      string
	ProjectSuffix string
	ChainType     models.ChainType
	ChainID       int64
	Address       string
}

// Service orchestrates registry state transitions over an account store.
type Service struct {
	store          store.Store
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher audit.Publisher
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

// New constructs a Service.
func New(accounts store.Store, opts ...Option) (*Service, error) {
	if accounts == nil {
		return nil, errors.New("account store is required")
	}
	s := &Service{store: accounts, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Initialize creates the singleton admin config with the caller as admin.
//
// Errors: AlreadyInitialized when the registry already has an admin.
func (s *Service) Initialize(ctx context.Context, signer models.SignerKey) (*models.AdminConfig, error) {
	start := time.Now()
	var opErr error
	defer func() { s.record("initialize", opErr, start) }()

	if signer.IsZero() {
		opErr = dErrors.New(dErrors.CodeInvalidInput, "signer is required")
		return nil, opErr
	}

	admin := &models.AdminConfig{
		Admin:     signer,
		CreatedAt: requestcontext.Now(ctx),
	}
	err := s.store.Create(ctx, &store.Account{
		ID:    derive.AdminID(),
		Kind:  store.KindAdminConfig,
		Admin: admin,
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			opErr = dErrors.New(dErrors.CodeAlreadyInitialized, "registry is already initialized")
			return nil, opErr
		}
		opErr = dErrors.Wrap(err, dErrors.CodeInternal, "failed to initialize registry")
		return nil, opErr
	}

	s.logAudit(ctx, audit.Event{Action: audit.ActionRegistryInitialized, SignerKey: signer.String()})
	s.logger.InfoContext(ctx, "registry initialized",
		"request_id", requestcontext.RequestID(ctx),
		"admin", signer,
	)
	return admin, nil
}

// RegisterProjectSuffix creates a new namespace for aliases. Admin only.
//
// Errors: Unauthorized when the caller is not the admin; InvalidSuffix on
// malformed input; SuffixAlreadyRegistered when the suffix account exists.
func (s *Service) RegisterProjectSuffix(ctx context.Context, signer models.SignerKey, suffix string) (*models.ProjectSuffix, error) {
	start := time.Now()
	var opErr error
	defer func() { s.record("register_project_suffix", opErr, start) }()

	if opErr = s.requireAdmin(ctx, signer); opErr != nil {
		return nil, opErr
	}
	if opErr = models.ValidateSuffix(suffix); opErr != nil {
		return nil, opErr
	}

	record := &models.ProjectSuffix{
		Suffix:       suffix,
		RegisteredBy: signer,
		CreatedAt:    requestcontext.Now(ctx),
	}
	err := s.store.Create(ctx, &store.Account{
		ID:     derive.SuffixID(suffix),
		Kind:   store.KindProjectSuffix,
		Suffix: record,
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			opErr = dErrors.Newf(dErrors.CodeSuffixAlreadyRegistered, "suffix %q is already registered", suffix)
			return nil, opErr
		}
		opErr = dErrors.Wrap(err, dErrors.CodeInternal, "failed to register suffix")
		return nil, opErr
	}

	s.logAudit(ctx, audit.Event{Action: audit.ActionSuffixRegistered, SignerKey: signer.String(), Suffix: suffix})
	s.logger.InfoContext(ctx, "project suffix registered",
		"request_id", requestcontext.RequestID(ctx),
		"suffix", suffix,
	)
	return record, nil
}

// RegisterAlias creates an alias under an existing suffix with its initial
// chain mapping. The caller becomes the alias owner.
//
// Errors: InvalidUsername, EmptyAddress, UnknownChainType on malformed
// input (checked in that order, before any state is read);
// UnknownProjectSuffix when the namespace does not exist;
// AliasAlreadyRegistered when the (username, suffix) tuple is taken.
func (s *Service) RegisterAlias(ctx context.Context, signer models.SignerKey, params RegisterAliasParams) (*models.AliasAccount, error) {
	start := time.Now()
	var opErr error
	defer func() { s.record("register_alias", opErr, start) }()

	if signer.IsZero() {
		opErr = dErrors.New(dErrors.CodeInvalidInput, "signer is required")
		return nil, opErr
	}
	if opErr = models.ValidateUsername(params.Username); opErr != nil {
		return nil, opErr
	}
	if opErr = models.ValidateAddress(params.Address); opErr != nil {
		return nil, opErr
	}
	if !params.ChainType.IsValid() {
		opErr = dErrors.Newf(dErrors.CodeUnknownChainType, "unsupported chain type %q", params.ChainType)
		return nil, opErr
	}

	if _, err := s.getSuffix(ctx, params.ProjectSuffix); err != nil {
		opErr = err
		return nil, opErr
	}

	alias, err := models.NewAliasAccount(signer, params.Username, params.ProjectSuffix,
		models.ChainMapping{
			ChainType: params.ChainType,
			ChainID:   params.ChainID,
			Address:   params.Address,
		},
		requestcontext.Now(ctx).UnixNano(),
	)
	if err != nil {
		opErr = err
		return nil, opErr
	}

	err = s.store.Create(ctx, &store.Account{
		ID:    derive.AliasID(params.Username, params.ProjectSuffix),
		Kind:  store.KindAlias,
		Alias: alias,
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			opErr = dErrors.Newf(dErrors.CodeAliasAlreadyRegistered, "alias %q is already registered", alias.Handle())
			return nil, opErr
		}
		opErr = dErrors.Wrap(err, dErrors.CodeInternal, "failed to register alias")
		return nil, opErr
	}

	s.logAudit(ctx, audit.Event{
		Action:    audit.ActionAliasRegistered,
		SignerKey: signer.String(),
		Username:  params.Username,
		Suffix:    params.ProjectSuffix,
	})
	s.logger.InfoContext(ctx, "alias registered",
		"request_id", requestcontext.RequestID(ctx),
		"alias", alias.Handle(),
	)
	return alias, nil
}

// AddChainMapping appends one mapping to an alias. Owner only. No
// uniqueness check runs against existing entries: duplicates are permitted.
//
// Errors: AliasNotFound when the alias does not exist; Unauthorized when
// the caller is not the owner; EmptyAddress, UnknownChainType on malformed
// input. Any failure leaves the mapping list untouched.
func (s *Service) AddChainMapping(ctx context.Context, signer models.SignerKey, params AddChainMappingParams) (*models.AliasAccount, error) {
	start := time.Now()
	var opErr error
	defer func() { s.record("add_chain_mapping", opErr, start) }()

	id := derive.AliasID(params.Username, params.ProjectSuffix)
	account, err := s.store.Mutate(ctx, id, func(a *store.Account) error {
		if a.Kind != store.KindAlias {
			return dErrors.Newf(dErrors.CodeAliasNotFound, "alias %q@%q not found", params.Username, params.ProjectSuffix)
		}
		if err := requireOwner(signer, a.Alias); err != nil {
			return err
		}
		if err := models.ValidateAddress(params.Address); err != nil {
			return err
		}
		if !params.ChainType.IsValid() {
			return dErrors.Newf(dErrors.CodeUnknownChainType, "unsupported chain type %q", params.ChainType)
		}
		a.Alias.AppendChainMapping(models.ChainMapping{
			ChainType: params.ChainType,
			ChainID:   params.ChainID,
			Address:   params.Address,
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			opErr = dErrors.Newf(dErrors.CodeAliasNotFound, "alias %q@%q not found", params.Username, params.ProjectSuffix)
			return nil, opErr
		}
		if !isDomainError(err) {
			opErr = dErrors.Wrap(err, dErrors.CodeInternal, "failed to add chain mapping")
			return nil, opErr
		}
		opErr = err
		return nil, opErr
	}

	s.logAudit(ctx, audit.Event{
		Action:    audit.ActionChainMappingAdded,
		SignerKey: signer.String(),
		Username:  params.Username,
		Suffix:    params.ProjectSuffix,
		Detail:    string(params.ChainType),
	})
	s.logger.InfoContext(ctx, "chain mapping added",
		"request_id", requestcontext.RequestID(ctx),
		"alias", account.Alias.Handle(),
		"chain_type", params.ChainType,
		"mappings", len(account.Alias.ChainMappings),
	)
	return account.Alias, nil
}

// UpdateReputation applies a signed, unbounded delta to an alias's
// reputation. Admin only. The stored update timestamp strictly increases
// across successive calls, even back-to-back ones.
//
// Errors: Unauthorized when the caller is not the admin; AliasNotFound
// when the alias does not exist.
func (s *Service) UpdateReputation(ctx context.Context, signer models.SignerKey, username, projectSuffix string, delta int64) (*models.AliasAccount, error) {
	start := time.Now()
	var opErr error
	defer func() { s.record("update_reputation", opErr, start) }()

	if opErr = s.requireAdmin(ctx, signer); opErr != nil {
		return nil, opErr
	}

	id := derive.AliasID(username, projectSuffix)
	nowNanos := requestcontext.Now(ctx).UnixNano()
	account, err := s.store.Mutate(ctx, id, func(a *store.Account) error {
		if a.Kind != store.KindAlias {
			return dErrors.Newf(dErrors.CodeAliasNotFound, "alias %q@%q not found", username, projectSuffix)
		}
		a.Alias.ApplyReputationDelta(delta, nowNanos)
		return nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			opErr = dErrors.Newf(dErrors.CodeAliasNotFound, "alias %q@%q not found", username, projectSuffix)
			return nil, opErr
		}
		if !isDomainError(err) {
			opErr = dErrors.Wrap(err, dErrors.CodeInternal, "failed to update reputation")
			return nil, opErr
		}
		opErr = err
		return nil, opErr
	}

	s.logAudit(ctx, audit.Event{
		Action:    audit.ActionReputationUpdated,
		SignerKey: signer.String(),
		Username:  username,
		Suffix:    projectSuffix,
	})
	s.logger.InfoContext(ctx, "reputation updated",
		"request_id", requestcontext.RequestID(ctx),
		"alias", account.Alias.Handle(),
		"delta", delta,
		"reputation", account.Alias.Reputation,
	)
	return account.Alias, nil
}

// Resolve looks up an alias by its (username, suffix) tuple. Read-only,
// no authorization required: the derived identifier is public knowledge.
//
// Errors: AliasNotFound when absent.
func (s *Service) Resolve(ctx context.Context, username, projectSuffix string) (*models.AliasAccount, error) {
	start := time.Now()
	var opErr error
	defer func() { s.record("resolve", opErr, start) }()

	account, err := s.store.Get(ctx, derive.AliasID(username, projectSuffix))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			opErr = dErrors.Newf(dErrors.CodeAliasNotFound, "alias %q@%q not found", username, projectSuffix)
			return nil, opErr
		}
		opErr = dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve alias")
		return nil, opErr
	}
	if account.Kind != store.KindAlias {
		opErr = dErrors.Newf(dErrors.CodeAliasNotFound, "alias %q@%q not found", username, projectSuffix)
		return nil, opErr
	}
	return account.Alias, nil
}

// getSuffix loads a project suffix account, translating absence into the
// registry's stable code.
func (s *Service) getSuffix(ctx context.Context, suffix string) (*models.ProjectSuffix, error) {
	account, err := s.store.Get(ctx, derive.SuffixID(suffix))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeUnknownProjectSuffix, "suffix %q is not registered", suffix)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load suffix")
	}
	if account.Kind != store.KindProjectSuffix {
		return nil, dErrors.Newf(dErrors.CodeUnknownProjectSuffix, "suffix %q is not registered", suffix)
	}
	return account.Suffix, nil
}

func (s *Service) logAudit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = requestcontext.Now(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}

func (s *Service) record(operation string, err error, start time.Time) {
	outcome := "ok"
	if err != nil {
		outcome = string(dErrors.GetCode(err))
	}
	s.metrics.RecordOperation(operation, outcome, time.Since(start))
}

func isDomainError(err error) bool {
	var de *dErrors.Error
	return errors.As(err, &de)
}
