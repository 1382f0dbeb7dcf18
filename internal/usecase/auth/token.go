package auth

import "context"

// TokenIssuer issues, resolves and revokes bearer tokens bound to a user id.
type TokenIssuer interface {
	// Issue creates a fresh token for userID.
	Issue(ctx context.Context, userID string) (string, error)
	// Resolve returns the user id bound to token, or ErrTokenInvalid when the
	// token is malformed, expired, unknown or revoked.
	Resolve(ctx context.Context, token string) (string, error)
	// Revoke invalidates token. Unknown or already revoked tokens return
	// ErrTokenNotFound.
	Revoke(ctx context.Context, token string) error
}
