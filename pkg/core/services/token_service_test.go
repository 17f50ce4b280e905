package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/shortly/pkg/core/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("s3cret", time.Hour)

	token, err := svc.Issue(domain.User{ID: "u1", Username: "alice"})
	require.NoError(t, err)

	id, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, &domain.Identity{ID: "u1", Username: "alice"}, id)
}

func TestTokenVerifyRejects(t *testing.T) {
	svc := NewTokenService("s3cret", time.Hour)
	valid, err := svc.Issue(domain.User{ID: "u1", Username: "alice"})
	require.NoError(t, err)

	expired := NewTokenService("s3cret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.Issue(domain.User{ID: "u1", Username: "alice"})
	require.NoError(t, err)

	otherKey, err := NewTokenService("other", time.Hour).Issue(domain.User{ID: "u1", Username: "alice"})
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &TokenClaims{ID: "u1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &TokenClaims{Username: "alice"}).
		SignedString([]byte("s3cret"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		message string
	}{
		{name: "empty", token: "", message: "Missing Authorization header"},
		{name: "garbage", token: "not.a.token", message: "Invalid or expired token"},
		{name: "expired", token: expiredToken, message: "Invalid or expired token"},
		{name: "wrong key", token: otherKey, message: "Invalid or expired token"},
		{name: "alg none", token: unsigned, message: "Invalid or expired token"},
		{name: "no id", token: noID, message: "Invalid or expired token"},
		{name: "tampered", token: valid + "x", message: "Invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := svc.Verify(tt.token)
			assert.Nil(t, id)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
			assert.Equal(t, tt.message, domain.Message(err, ""))
		})
	}
}
