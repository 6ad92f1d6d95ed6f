// Package token decodes and inspects Filebox bearer credentials. The
// credential is a compact JWT issued by the server; the client never holds
// the signing key, so claims are parsed without signature verification —
// the server remains the authority, this package only reads the embedded
// expiry and role for local decisions (route guards, display).
//
// Decoding is pure: no I/O, no mutation, deterministic given the same
// input string and clock reading. Any malformed input degrades to
// "unusable credential" rather than partial data.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleUser is the default role when a credential carries no role claim.
const RoleUser = "USER"

// ErrDecode indicates a credential that could not be parsed: missing
// segments, invalid base64url, or a non-JSON payload. Callers must treat
// such a credential as absent/expired, never trust it partially.
var ErrDecode = errors.New("token: malformed credential")

// Claims is the decoded claim set of a credential.
type Claims struct {
	Subject   string
	Role      string
	IssuedAt  time.Time // zero when the iat claim is absent
	ExpiresAt time.Time // zero when the exp claim is absent
}

// HasRole reports whether the claim set carries the given role.
func (c *Claims) HasRole(role string) bool {
	return c.Role == role
}

// payloadClaims mirrors the JWT payload JSON. Unexported — callers see
// Claims via the normalization in Decode.
type payloadClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Decode parses the claim set out of a compact credential without
// verifying its signature. Returns ErrDecode (wrapped) on any structural
// problem; never panics, never returns partial claims.
func Decode(credential string) (*Claims, error) {
	var pc payloadClaims

	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(credential, &pc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	claims := &Claims{
		Subject: pc.Subject,
		Role:    pc.Role,
	}

	if claims.Role == "" {
		claims.Role = RoleUser
	}

	if pc.IssuedAt != nil {
		claims.IssuedAt = pc.IssuedAt.Time
	}

	if pc.ExpiresAt != nil {
		claims.ExpiresAt = pc.ExpiresAt.Time
	}

	return claims, nil
}

// IsExpiredAt reports whether the credential is expired as of now.
// Fail-closed: an unreadable credential, or one without an exp claim,
// reports expired rather than being trusted.
func IsExpiredAt(credential string, now time.Time) bool {
	claims, err := Decode(credential)
	if err != nil {
		return true
	}

	if claims.ExpiresAt.IsZero() {
		return true
	}

	return !now.Before(claims.ExpiresAt)
}

// IsExpired is IsExpiredAt against the wall clock.
func IsExpired(credential string) bool {
	return IsExpiredAt(credential, time.Now())
}
