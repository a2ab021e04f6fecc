package handler

import (
	"strings"
	"time"

	"echoid/internal/registry/models"
	dErrors "echoid/pkg/domain-errors"
)

type initializeResponse struct {
	Admin     string    `json:"admin"`
	CreatedAt time.Time `json:"created_at"`
}

type registerSuffixRequest struct {
	Suffix string `json:"suffix"`
}

type suffixResponse struct {
	Suffix       string    `json:"suffix"`
	RegisteredBy string    `json:"registered_by"`
	CreatedAt    time.Time `json:"created_at"`
}

type registerAliasRequest struct {
	Username      string `json:"username"`
	ProjectSuffix string `json:"project_suffix"`
	ChainType     string `json:"chain_type"`
	ChainID       int64  `json:"chain_id"`
	Address       string `json:"address"`
}

type addChainMappingRequest struct {
	ChainType string `json:"chain_type"`
	ChainID   int64  `json:"chain_id"`
	Address   string `json:"address"`
}

type updateReputationRequest struct {
	Delta int64 `json:"delta"`
}

type chainMappingResponse struct {
	ChainType string `json:"chain_type"`
	ChainID   int64  `json:"chain_id"`
	Address   string `json:"address"`
}

type aliasResponse struct {
	Alias               string                 `json:"alias"`
	Username            string                 `json:"username"`
	ProjectSuffix       string                 `json:"project_suffix"`
	Owner               string                 `json:"owner"`
	ChainMappings       []chainMappingResponse `json:"chain_mappings"`
	Reputation          int64                  `json:"reputation"`
	ReputationUpdatedAt int64                  `json:"reputation_updated_at"`
}

func toAliasResponse(a *models.AliasAccount) aliasResponse {
	mappings := make([]chainMappingResponse, len(a.ChainMappings))
	for i, m := range a.ChainMappings {
		mappings[i] = chainMappingResponse{
			ChainType: m.ChainType.String(),
			ChainID:   m.ChainID,
			Address:   m.Address,
		}
	}
	return aliasResponse{
		Alias:               a.Handle(),
		Username:            a.Username,
		ProjectSuffix:       a.ProjectSuffix,
		Owner:               a.Owner.String(),
		ChainMappings:       mappings,
		Reputation:          a.Reputation,
		ReputationUpdatedAt: a.ReputationUpdatedAt,
	}
}

// splitAlias splits a username@suffix handle on the last separator. Any
// extra separator stays in the username part, where validation rejects it.
func splitAlias(alias string) (username, suffix string, err error) {
	idx := strings.LastIndex(alias, "@")
	if idx <= 0 || idx == len(alias)-1 {
		return "", "", dErrors.New(dErrors.CodeBadRequest, "alias must be of the form username@suffix")
	}
	return alias[:idx], alias[idx+1:], nil
}
