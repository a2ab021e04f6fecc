package models

import (
	"strings"

	dErrors "echoid/pkg/domain-errors"
)

// Field length caps. Exported so callers can size their inputs without
// round-tripping a rejection.
const (
	MaxSuffixLen   = 32
	MaxUsernameLen = 64
)

// ValidateSuffix checks a project suffix string.
//
// Errors: InvalidSuffix when empty or over MaxSuffixLen.
func ValidateSuffix(suffix string) error {
	if suffix == "" {
		return dErrors.New(dErrors.CodeInvalidSuffix, "suffix cannot be empty")
	}
	if len(suffix) > MaxSuffixLen {
		return dErrors.Newf(dErrors.CodeInvalidSuffix, "suffix must be %d characters or less", MaxSuffixLen)
	}
	return nil
}

// ValidateUsername checks an alias username.
//
// Errors: InvalidUsername when empty, over MaxUsernameLen, or containing
// the reserved "@" separator (which would let distinct (username, suffix)
// tuples render as the same alias).
func ValidateUsername(username string) error {
	if username == "" {
		return dErrors.New(dErrors.CodeInvalidUsername, "username cannot be empty")
	}
	if len(username) > MaxUsernameLen {
		return dErrors.Newf(dErrors.CodeInvalidUsername, "username must be %d characters or less", MaxUsernameLen)
	}
	if strings.Contains(username, "@") {
		return dErrors.New(dErrors.CodeInvalidUsername, `username cannot contain "@"`)
	}
	return nil
}

// ValidateAddress checks a chain address string. The registry stores the
// address verbatim; it never proves the signer controls it on-chain.
//
// Errors: EmptyAddress when the address is empty.
func ValidateAddress(address string) error {
	if address == "" {
		return dErrors.New(dErrors.CodeEmptyAddress, "address cannot be empty")
	}
	return nil
}
