package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiration is returned by [TokenExpiresAt] when the token carries no
// "exp" claim.
var ErrNoExpiration = errors.New("token has no expiration claim")

// ParseBearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func ParseBearerToken(authorizationHeader string) (string, error) {
	parts := strings.Split(strings.TrimSpace(authorizationHeader), " ")
	if len(parts) != 2 || parts[1] == "" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}

// TokenExpiresAt reads the "exp" claim of a JWT without verifying its
// signature. The client cannot verify tokens; it only needs to know when the
// server will start rejecting one.
func TokenExpiresAt(tokenString string) (time.Time, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("error parsing token: %w", err)
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("error reading token expiration: %w", err)
	}
	if exp == nil {
		return time.Time{}, ErrNoExpiration
	}

	return exp.Time, nil
}

// IsTokenExpired reports whether tokenString is a JWT whose "exp" claim is at
// or before now. Opaque tokens and tokens without "exp" are never reported as
// expired; the server stays the authority for them.
func IsTokenExpired(tokenString string, now time.Time) bool {
	exp, err := TokenExpiresAt(tokenString)
	if err != nil {
		return false
	}
	return !now.Before(exp)
}
