package jwtauth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "echoid/pkg/domain-errors"
)

func TestMintValidateRoundTrip(t *testing.T) {
	svc := New("test-signing-key", "echoid-test")

	token, err := svc.Mint("signer-pubkey-1", time.Minute)
	require.NoError(t, err)

	signer, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "signer-pubkey-1", signer)
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	svc := New("test-signing-key", "echoid-test")
	other := New("different-key", "echoid-test")

	token, err := other.Mint("signer-pubkey-1", time.Minute)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := New("test-signing-key", "echoid-test")

	token, err := svc.Mint("signer-pubkey-1", -time.Minute)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := New("test-signing-key", "echoid-test")
	_, err := svc.Validate("not-a-jwt")
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}
