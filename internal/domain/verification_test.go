package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerificationGate(t *testing.T) {
	gate := NewVerificationGate(0)
	assert.Equal(t, DefaultVerificationThreshold, gate.Threshold)

	r, _ := NewFundRequest("owner", draft("100"), now)

	_, err := gate.Endorse(r, "owner", false, now)
	assert.ErrorIs(t, err, ErrSelfVerificationNotAllowed)
	_, err = gate.Endorse(r, "", false, now)
	assert.ErrorIs(t, err, ErrInvalidInput)

	for i, verifier := range []string{"a", "b"} {
		e, err := gate.Endorse(r, verifier, false, now)
		require.NoError(t, err)
		assert.Equal(t, r.ID, e.FundRequestID)
		assert.Equal(t, verifier, e.VerifierID)
		assert.Equal(t, i+1, r.VerificationCount)
		assert.False(t, r.IsVerified)
	}

	_, err = gate.Endorse(r, "a", true, now)
	assert.ErrorIs(t, err, ErrDuplicateEndorsement)
	assert.Equal(t, 2, r.VerificationCount)

	_, err = gate.Endorse(r, "c", false, now)
	require.NoError(t, err)
	assert.True(t, r.IsVerified)
	assert.Equal(t, 3, r.VerificationCount)

	_, err = gate.Endorse(r, "d", false, now)
	require.NoError(t, err)
	assert.True(t, r.IsVerified)
}

func TestVerificationGateCustomThreshold(t *testing.T) {
	gate := NewVerificationGate(5)
	r, _ := NewFundRequest("owner", draft("100"), now)
	for _, v := range []string{"a", "b", "c", "d"} {
		_, err := gate.Endorse(r, v, false, now)
		require.NoError(t, err)
	}
	assert.False(t, r.IsVerified)
	_, err := gate.Endorse(r, "e", false, now)
	require.NoError(t, err)
	assert.True(t, r.IsVerified)
}
