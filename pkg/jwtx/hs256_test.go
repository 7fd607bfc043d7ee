package jwtx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHS256SignVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	hs := NewHS256([]byte("unit-test-secret"), VerifyOptions{Issuer: "atrium"})

	claims := NewClaims(
		"01JD00000000000000000000AA",
		"alice@example.com",
		[]string{"USER"},
		true,
		time.Hour,
		"atrium",
		time.Now(),
	)

	token, err := hs.Sign(claims)
	require.NoError(t, err)
	require.Len(t, strings.Split(token, "."), 3, "compact JWT has three segments")

	got, err := hs.Verify(token)
	require.NoError(t, err)
	require.Equal(t, claims.Subject, got.Subject)
	require.Equal(t, "alice@example.com", got.Email)
	require.Equal(t, []string{"USER"}, got.Roles)
	require.True(t, got.IsActive)
}

func TestHS256RejectsWrongSecret(t *testing.T) {
	t.Parallel()

	signer := NewHS256([]byte("secret-a"), VerifyOptions{})
	verifier := NewHS256([]byte("secret-b"), VerifyOptions{})

	token, err := signer.Sign(NewClaims("u1", "a@x.com", []string{"USER"}, true, time.Hour, "atrium", time.Now()))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestHS256SecretsAreNotInterchangeable(t *testing.T) {
	t.Parallel()

	// A refresh token signed with the refresh secret must never verify
	// against the access secret.
	access := NewHS256([]byte("access-secret"), VerifyOptions{})
	refresh := NewHS256([]byte("refresh-secret"), VerifyOptions{})

	token, err := refresh.Sign(NewClaims("u1", "a@x.com", nil, true, time.Hour, "atrium", time.Now()))
	require.NoError(t, err)

	_, err = access.Verify(token)
	require.Error(t, err)
}

func TestHS256RejectsExpired(t *testing.T) {
	t.Parallel()

	hs := NewHS256([]byte("secret"), VerifyOptions{})

	token, err := hs.Sign(NewClaims("u1", "a@x.com", nil, true, time.Minute, "atrium", time.Now().Add(-2*time.Minute)))
	require.NoError(t, err)

	_, err = hs.Verify(token)
	require.ErrorIs(t, err, ErrExpired)
}

func TestHS256ExpiredWithinLeeway(t *testing.T) {
	t.Parallel()

	signer := NewHS256([]byte("secret"), VerifyOptions{})
	lenient := NewHS256([]byte("secret"), VerifyOptions{Leeway: 5 * time.Minute})

	token, err := signer.Sign(NewClaims("u1", "a@x.com", nil, true, time.Minute, "atrium", time.Now().Add(-2*time.Minute)))
	require.NoError(t, err)

	_, err = lenient.Verify(token)
	require.NoError(t, err)
}

func TestHS256RejectsMalformed(t *testing.T) {
	t.Parallel()

	hs := NewHS256([]byte("secret"), VerifyOptions{})

	for _, token := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := hs.Verify(token)
		require.ErrorIs(t, err, ErrMalformed, "token %q", token)
	}
}

func TestHS256EnforcesIssuer(t *testing.T) {
	t.Parallel()

	signer := NewHS256([]byte("secret"), VerifyOptions{})
	verifier := NewHS256([]byte("secret"), VerifyOptions{Issuer: "atrium"})

	token, err := signer.Sign(NewClaims("u1", "a@x.com", nil, true, time.Hour, "someone-else", time.Now()))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrIssuer)
}
