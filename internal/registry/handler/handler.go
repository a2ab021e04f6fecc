package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"echoid/internal/platform/middleware"
	"echoid/internal/registry/models"
	"echoid/internal/registry/service"
	dErrors "echoid/pkg/domain-errors"
	"echoid/pkg/platform/httputil"
	"echoid/pkg/requestcontext"
)

// Service defines the registry operations the handler exposes.
type Service interface {
	Initialize(ctx context.Context, signer models.SignerKey) (*models.AdminConfig, error)
	RegisterProjectSuffix(ctx context.Context, signer models.SignerKey, suffix string) (*models.ProjectSuffix, error)
	RegisterAlias(ctx context.Context, signer models.SignerKey, params service.RegisterAliasParams) (*models.AliasAccount, error)
	AddChainMapping(ctx context.Context, signer models.SignerKey, params service.AddChainMappingParams) (*models.AliasAccount, error)
	UpdateReputation(ctx context.Context, signer models.SignerKey, username, projectSuffix string, delta int64) (*models.AliasAccount, error)
	Resolve(ctx context.Context, username, projectSuffix string) (*models.AliasAccount, error)
}

// Handler serves the registry HTTP endpoints.
type Handler struct {
	logger    *slog.Logger
	registry  Service
	validator middleware.SignerValidator
}

// New creates a registry Handler.
func New(registry Service, validator middleware.SignerValidator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		registry:  registry,
		validator: validator,
	}
}

// Register registers the registry routes with the chi router. Mutating
// routes require an authenticated signer; resolution is public.
func (h *Handler) Register(r chi.Router) {
	r.Route("/registry", func(r chi.Router) {
		r.Get("/aliases/{alias}", h.handleResolve)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSigner(h.validator, h.logger))
			r.Post("/initialize", h.handleInitialize)
			r.Post("/suffixes", h.handleRegisterSuffix)
			r.Post("/aliases", h.handleRegisterAlias)
			r.Post("/aliases/{alias}/mappings", h.handleAddChainMapping)
			r.Post("/aliases/{alias}/reputation", h.handleUpdateReputation)
		})
	})
}

func (h *Handler) handleInitialize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	signer, ok := h.signer(w, ctx)
	if !ok {
		return
	}

	cfg, err := h.registry.Initialize(ctx, signer)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, initializeResponse{
		Admin:     cfg.Admin.String(),
		CreatedAt: cfg.CreatedAt,
	})
}

func (h *Handler) handleRegisterSuffix(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	signer, ok := h.signer(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[registerSuffixRequest](w, r, h.logger)
	if !ok {
		return
	}

	record, err := h.registry.RegisterProjectSuffix(ctx, signer, req.Suffix)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, suffixResponse{
		Suffix:       record.Suffix,
		RegisteredBy: record.RegisteredBy.String(),
		CreatedAt:    record.CreatedAt,
	})
}

func (h *Handler) handleRegisterAlias(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	signer, ok := h.signer(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[registerAliasRequest](w, r, h.logger)
	if !ok {
		return
	}

	alias, err := h.registry.RegisterAlias(ctx, signer, service.RegisterAliasParams{
		Username:      req.Username,
		ProjectSuffix: req.ProjectSuffix,
		ChainType:     models.ChainType(req.ChainType),
		ChainID:       req.ChainID,
		Address:       req.Address,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toAliasResponse(alias))
}

func (h *Handler) handleAddChainMapping(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	signer, ok := h.signer(w, ctx)
	if !ok {
		return
	}

	username, suffix, err := splitAlias(chi.URLParam(r, "alias"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[addChainMappingRequest](w, r, h.logger)
	if !ok {
		return
	}

	alias, err := h.registry.AddChainMapping(ctx, signer, service.AddChainMappingParams{
		Username:      username,
		ProjectSuffix: suffix,
		ChainType:     models.ChainType(req.ChainType),
		ChainID:       req.ChainID,
		Address:       req.Address,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toAliasResponse(alias))
}

func (h *Handler) handleUpdateReputation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	signer, ok := h.signer(w, ctx)
	if !ok {
		return
	}

	username, suffix, err := splitAlias(chi.URLParam(r, "alias"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[updateReputationRequest](w, r, h.logger)
	if !ok {
		return
	}

	alias, err := h.registry.UpdateReputation(ctx, signer, username, suffix, req.Delta)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toAliasResponse(alias))
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username, suffix, err := splitAlias(chi.URLParam(r, "alias"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	alias, err := h.registry.Resolve(ctx, username, suffix)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toAliasResponse(alias))
}

// signer pulls the authenticated signer the auth middleware put in context.
func (h *Handler) signer(w http.ResponseWriter, ctx context.Context) (models.SignerKey, bool) {
	signer, err := models.ParseSignerKey(requestcontext.SignerKey(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "signer missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return "", false
	}
	return signer, true
}
