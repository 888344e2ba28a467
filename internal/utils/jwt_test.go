package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

func TestParseBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "valid", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "surrounding spaces", header: "  Bearer tok  ", want: "tok"},
		{name: "missing token", header: "Bearer ", wantErr: true},
		{name: "no scheme", header: "tok", wantErr: true},
		{name: "empty", header: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBearerToken(tt.header)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenExpiresAt(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := signedToken(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)})

	got, err := TokenExpiresAt(tok)
	require.NoError(t, err)
	assert.True(t, exp.Equal(got))
}

func TestTokenExpiresAt_NoClaim(t *testing.T) {
	tok := signedToken(t, jwt.RegisteredClaims{Subject: "1"})

	_, err := TokenExpiresAt(tok)
	assert.ErrorIs(t, err, ErrNoExpiration)
}

func TestTokenExpiresAt_Malformed(t *testing.T) {
	_, err := TokenExpiresAt("not-a-jwt")
	assert.Error(t, err)
}

func TestIsTokenExpired(t *testing.T) {
	now := time.Now()
	expired := signedToken(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))})
	fresh := signedToken(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))})

	assert.True(t, IsTokenExpired(expired, now))
	assert.False(t, IsTokenExpired(fresh, now))
	assert.False(t, IsTokenExpired("opaque-token", now), "opaque tokens are left to the server")
}
