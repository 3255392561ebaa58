package repository

import (
	"context"
	"database/sql"
	"errors"
)

// TokenRepo is the session revocation ledger.  A row (signature ->
// user id) exists exactly while the token is usable; signature
// verification alone is never sufficient.  Only the signature segment
// of a token is stored, which bounds row size and survives rotation of
// the signing material's keying scheme.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Upsert records a token signature for a user, replacing any existing
// row with the same signature.  Re-issuing the identical token is
// therefore idempotent.
func (r *TokenRepo) Upsert(ctx context.Context, signature string, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"REPLACE INTO auth_tokens (token_signature, user_id) VALUES (?,?)",
		signature, userID)
	return err
}

// Exists reports whether a ledger row for the signature is present.
func (r *TokenRepo) Exists(ctx context.Context, signature string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM auth_tokens WHERE token_signature=? LIMIT 1",
		signature).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes the ledger row for the signature.  Deleting an absent
// row is not an error, so revocation is idempotent.
func (r *TokenRepo) Delete(ctx context.Context, signature string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM auth_tokens WHERE token_signature=?", signature)
	return err
}
