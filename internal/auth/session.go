package auth

import (
	"context"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sliceworks/pizza-backend/internal/model"
	"github.com/sliceworks/pizza-backend/internal/repository"
)

// Sessions issues and verifies session tokens.  A token is usable only
// while its signature row exists in the ledger; the signature check and
// the ledger check are both required, in that order.
type Sessions struct {
	secret []byte
	ledger *repository.TokenRepo
}

func NewSessions(secret string, ledger *repository.TokenRepo) *Sessions {
	return &Sessions{secret: []byte(secret), ledger: ledger}
}

// Issue signs an HS256 token embedding the user's identity and role
// assignments and records its signature in the ledger.  Because the
// signature is a function of the payload, re-issuing for the same user
// upserts the same row; a collision across users cannot occur.
func (s *Sessions) Issue(ctx context.Context, u *model.User) (string, error) {
	claims := Claims{
		Name:  u.Name,
		Email: u.Email,
		Roles: u.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  strconv.FormatUint(u.ID, 10),
			IssuedAt: jwt.NewNumericDate(time.Now().UTC()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", err
	}
	tok, err := ParseToken(signed)
	if err != nil {
		return "", err
	}
	if err := s.ledger.Upsert(ctx, tok.Signature, u.ID); err != nil {
		return "", err
	}
	return signed, nil
}

// Verify checks the token's signature, then its ledger row, and
// returns the decoded identity.  ErrInvalidToken covers malformed
// tokens and signature failures; ErrTokenRevoked means the ledger row
// is gone even though the signature still verifies.
func (s *Sessions) Verify(ctx context.Context, raw string) (*model.User, error) {
	tok, err := ParseToken(raw)
	if err != nil {
		return nil, err
	}

	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}

	active, err := s.ledger.Exists(ctx, tok.Signature)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrTokenRevoked
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &model.User{
		ID:    id,
		Name:  claims.Name,
		Email: claims.Email,
		Roles: claims.Roles,
	}, nil
}

// Revoke deletes the token's ledger row.  Revoking an already-revoked
// token is not an error.
func (s *Sessions) Revoke(ctx context.Context, raw string) error {
	tok, err := ParseToken(raw)
	if err != nil {
		return err
	}
	return s.ledger.Delete(ctx, tok.Signature)
}

// IsActive is the pure ledger existence check, independent of
// cryptographic verification.  Useful to short-circuit before the more
// expensive Verify.
func (s *Sessions) IsActive(ctx context.Context, raw string) (bool, error) {
	tok, err := ParseToken(raw)
	if err != nil {
		return false, nil
	}
	return s.ledger.Exists(ctx, tok.Signature)
}
