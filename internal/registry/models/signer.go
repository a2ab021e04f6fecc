package models

import (
	dErrors "echoid/pkg/domain-errors"
)

// SignerKey identifies the party authorizing an operation. It is opaque to
// the registry: ownership of the key on any particular chain is never
// verified here.
//
// Usage: construct via ParseSignerKey at trust boundaries; direct casting
// bypasses validation.
type SignerKey string

// ParseSignerKey constructs a SignerKey from external input.
func ParseSignerKey(s string) (SignerKey, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "signer key cannot be empty")
	}
	return SignerKey(s), nil
}

func (k SignerKey) String() string {
	return string(k)
}

// IsZero reports whether no signer was provided.
func (k SignerKey) IsZero() bool {
	return k == ""
}
