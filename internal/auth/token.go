// Package auth implements the session lifecycle: signed token issue,
// verification against the revocation ledger, and the authorization
// policy checks handlers apply on top of a verified identity.
package auth

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sliceworks/pizza-backend/internal/model"
)

// ErrInvalidToken is returned when a token is malformed or its
// signature does not verify.
var ErrInvalidToken = errors.New("invalid token")

// ErrTokenRevoked is returned when a token's signature verifies but its
// ledger row is gone.  A revoked token is permanently unusable.
var ErrTokenRevoked = errors.New("token revoked")

// Token is a parsed session token in compact JWT form.  Signature is
// the third dot-delimited segment, extracted once at parse time; it
// keys the revocation ledger instead of the whole token to bound row
// size and to survive rotation of the signing material.
type Token struct {
	Raw       string
	Signature string
}

// ParseToken splits a compact token and captures its signature segment.
// No cryptographic verification happens here.
func ParseToken(raw string) (Token, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 || parts[2] == "" {
		return Token{}, ErrInvalidToken
	}
	return Token{Raw: raw, Signature: parts[2]}, nil
}

// Claims is the payload embedded in every session token: the user's
// identity plus the role assignments authorization decisions read.
type Claims struct {
	Name  string                 `json:"name"`
	Email string                 `json:"email"`
	Roles []model.RoleAssignment `json:"roles"`
	jwt.RegisteredClaims
}
