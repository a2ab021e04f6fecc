package models

import (
	dErrors "echoid/pkg/domain-errors"
)

// ChainType tags which kind of external chain an address lives on. The set
// is closed: adding a new kind is additive and never breaks stored data,
// but unknown tags are rejected at the trust boundary.
//
// Usage: construct via ParseChainType at trust boundaries; direct casting
// bypasses validation.
type ChainType string

// Supported chain kinds.
const (
	ChainTypeEVM ChainType = "evm"
	ChainTypeSVM ChainType = "svm"
)

// validChainTypes is the single source of truth for supported chain kinds.
var validChainTypes = map[ChainType]bool{
	ChainTypeEVM: true,
	ChainTypeSVM: true,
}

// ParseChainType constructs a ChainType from external input.
//
// Errors: UnknownChainType when the tag is empty or outside the supported
// set; no other errors are expected.
func ParseChainType(s string) (ChainType, error) {
	t := ChainType(s)
	if !t.IsValid() {
		return "", dErrors.Newf(dErrors.CodeUnknownChainType, "unsupported chain type %q", s)
	}
	return t, nil
}

// IsValid checks if the chain type is one of the supported enum values.
func (t ChainType) IsValid() bool {
	return validChainTypes[t]
}

func (t ChainType) String() string {
	return string(t)
}

// ChainMapping binds an alias to one address on one external chain.
// Immutable once appended to an alias; the owning list only grows.
// Duplicate mappings are permitted: the registry records claims, it does
// not deduplicate them.
type ChainMapping struct {
	ChainType ChainType `json:"chain_type"`
	ChainID   int64     `json:"chain_id"`
	Address   string    `json:"address"`
}
